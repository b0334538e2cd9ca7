// Package monochromator contains an abstract interface for a
// monochromator drive and an HTTP wrapper layer for it.
package monochromator

import (
	"encoding/json"
	"net/http"

	"github.com/ifgw-pl/golabspec/generichttp"
	"github.com/ifgw-pl/golabspec/server"

	"goji.io/pat"
)

// Controller describes the motion of a monochromator grating drive
type Controller interface {
	// Move slews the grating from the displayed wavelength to the target
	Move(display, target float64) error

	// StepForward advances the wavelength by step display units
	StepForward(step float64) error

	// StepBackward reduces the wavelength by step display units
	StepBackward(step float64) error
}

// moveT is the json body of a move request
type moveT struct {
	Display float64 `json:"display"`
	Target  float64 `json:"target"`
}

// HTTPWrapper wraps a monochromator controller with HTTP
type HTTPWrapper struct {
	Controller

	// Display caches the wavelength the instrument front panel shows,
	// updated on each successful move
	Display float64

	RouteTable server.RouteTable
}

// NewHTTPWrapper returns a new HTTP wrapper with the route table pre-configured
func NewHTTPWrapper(c Controller, display float64) *HTTPWrapper {
	w := &HTTPWrapper{Controller: c, Display: display}
	rt := server.RouteTable{
		pat.Get("/wavelength"):  generichttp.GetFloat(w.wavelength),
		pat.Post("/wavelength"): w.SetWavelength,

		pat.Post("/step/fwd"): w.StepFwd,
		pat.Post("/step/rev"): w.StepRev,
	}
	w.RouteTable = rt
	return w
}

// RT satisfies the HTTPer interface
func (h *HTTPWrapper) RT() server.RouteTable {
	return h.RouteTable
}

func (h *HTTPWrapper) wavelength() (float64, error) {
	return h.Display, nil
}

// SetWavelength moves the grating to a target wavelength.  The body
// carries {"display": ..., "target": ...}; display may be omitted to
// move from the cached value.
func (h *HTTPWrapper) SetWavelength(w http.ResponseWriter, r *http.Request) {
	body := moveT{Display: h.Display}
	err := json.NewDecoder(r.Body).Decode(&body)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.Controller.Move(body.Display, body.Target)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.Display = body.Target
	w.WriteHeader(http.StatusOK)
}

// StepFwd advances the wavelength by the step in the request body
func (h *HTTPWrapper) StepFwd(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.Controller.StepForward, 1)
}

// StepRev reduces the wavelength by the step in the request body
func (h *HTTPWrapper) StepRev(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.Controller.StepBackward, -1)
}

func (h *HTTPWrapper) step(w http.ResponseWriter, r *http.Request, fcn func(float64) error, sign float64) {
	f := server.FloatT{}
	err := json.NewDecoder(r.Body).Decode(&f)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = fcn(f.F64)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.Display += sign * f.F64
	w.WriteHeader(http.StatusOK)
}
