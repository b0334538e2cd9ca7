package lakeshore

import (
	"github.com/ifgw-pl/golabspec/generichttp"
	"github.com/ifgw-pl/golabspec/server"
	"github.com/ifgw-pl/golabspec/temperature"

	"goji.io/pat"
)

// HTTPWrapper exposes a temperature controller over HTTP
type HTTPWrapper struct {
	*TempController

	RouteTable server.RouteTable
}

// NewHTTPWrapper returns a new HTTP wrapper with the route table pre-configured
func NewHTTPWrapper(tc *TempController) *HTTPWrapper {
	w := &HTTPWrapper{TempController: tc}
	rt := server.RouteTable{
		pat.Get("/id"): generichttp.GetString(tc.ID),

		pat.Get("/temperature/control"): generichttp.GetFloat(w.controlTemp),
		pat.Get("/temperature/sample"):  generichttp.GetFloat(w.sampleTemp),

		pat.Get("/setpoint"):  generichttp.GetFloat(w.setpoint),
		pat.Post("/setpoint"): generichttp.SetFloat(w.setSetpoint),

		pat.Post("/heater-range"): generichttp.SetString(tc.SetHeaterRange),
		pat.Get("/heater-output"): generichttp.GetFloat(tc.HeaterOutput),
	}
	w.RouteTable = rt
	return w
}

// RT satisfies the HTTPer interface
func (h *HTTPWrapper) RT() server.RouteTable {
	return h.RouteTable
}

func (h *HTTPWrapper) controlTemp() (float64, error) {
	k, err := h.ReadKelvin("A")
	return float64(k), err
}

func (h *HTTPWrapper) sampleTemp() (float64, error) {
	k, err := h.ReadKelvin("B")
	return float64(k), err
}

func (h *HTTPWrapper) setpoint() (float64, error) {
	k, err := h.Setpoint("1")
	return float64(k), err
}

func (h *HTTPWrapper) setSetpoint(f float64) error {
	return h.SetSetpoint(temperature.Kelvin(f))
}
