package minolta

import (
	"encoding/json"
	"net/http"

	"github.com/ifgw-pl/golabspec/server"

	"goji.io/pat"
)

// HTTPWrapper exposes a colorimeter over HTTP
type HTTPWrapper struct {
	*CS100A

	RouteTable server.RouteTable
}

// NewHTTPWrapper returns a new HTTP wrapper with the route table pre-configured
func NewHTTPWrapper(cs *CS100A) *HTTPWrapper {
	w := &HTTPWrapper{CS100A: cs}
	rt := server.RouteTable{
		pat.Get("/measurement"): w.Measurement,
		pat.Post("/clear"):      w.Clear,
	}
	w.RouteTable = rt
	return w
}

// RT satisfies the HTTPer interface
func (h *HTTPWrapper) RT() server.RouteTable {
	return h.RouteTable
}

// Measurement triggers a measurement and returns it as json
// {"luminance": ..., "x": ..., "y": ...}
func (h *HTTPWrapper) Measurement(w http.ResponseWriter, r *http.Request) {
	c, err := h.Measure()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(c)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Clear erases the meter's stored measurement data
func (h *HTTPWrapper) Clear(w http.ResponseWriter, r *http.Request) {
	err := h.ClearMemory()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
