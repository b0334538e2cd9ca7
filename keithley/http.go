package keithley

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ifgw-pl/golabspec/generichttp"
	"github.com/ifgw-pl/golabspec/server"

	"goji.io/pat"
)

// HTTPWrapper exposes a model 2400 SourceMeter over HTTP
type HTTPWrapper struct {
	*K2400

	RouteTable server.RouteTable
}

// NewHTTPWrapper returns a new HTTP wrapper with the route table pre-configured
func NewHTTPWrapper(k *K2400) *HTTPWrapper {
	w := &HTTPWrapper{K2400: k}
	rt := server.RouteTable{
		pat.Get("/id"): generichttp.GetString(k.Identification),

		pat.Post("/voltage"): generichttp.SetFloat(k.SetSourceVoltage),
		pat.Get("/current"):  generichttp.GetFloat(k.MeasureCurrent),
		pat.Post("/output"):  generichttp.SetBool(k.SetOutput),

		pat.Get("/sweep"): w.DoSweep,
	}
	w.RouteTable = rt
	return w
}

// RT satisfies the HTTPer interface
func (h *HTTPWrapper) RT() server.RouteTable {
	return h.RouteTable
}

// DoSweep runs an IV sweep with start, stop, and step query parameters
// and returns the points as json
func (h *HTTPWrapper) DoSweep(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := [3]float64{}
	for i, name := range []string{"start", "stop", "step"} {
		f, err := strconv.ParseFloat(q.Get(name), 64)
		if err != nil {
			http.Error(w, "query parameter "+name+" missing or not a number", http.StatusBadRequest)
			return
		}
		params[i] = f
	}
	pts, err := h.Sweep(params[0], params[1], params[2])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(pts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
