// Package server contains the plumbing shared by all of the HTTP
// adapted devices, a route table type bindable to a goji mux and a
// payload type that encodes either json or plain text depending on
// what the client asks for.
package server

import (
	"encoding/json"
	"fmt"
	"go/types"
	"log"
	"net/http"
	"strconv"

	"goji.io"
	"goji.io/pat"
)

// RouteTable maps goji patterns to handler funcs
type RouteTable map[*pat.Pattern]http.HandlerFunc

// Endpoints returns the path specs in the route table
func (rt RouteTable) Endpoints() []string {
	routes := make([]string, 0, len(rt))
	for k := range rt {
		routes = append(routes, k.String())
	}
	return routes
}

// Bind attaches each route in the table to a mux
func (rt RouteTable) Bind(mux *goji.Mux) {
	for ptrn, handler := range rt {
		mux.HandleFunc(ptrn, handler)
	}
}

// HTTPer is an object with a route table that can respond to HTTP requests
type HTTPer interface {
	RT() RouteTable
}

// FloatT is a struct with a single field F64, used for json requests
// and responses
type FloatT struct {
	F64 float64 `json:"f64"`
}

// IntT is a struct with a single field Int
type IntT struct {
	Int int `json:"int"`
}

// StrT is a struct with a single field Str
type StrT struct {
	Str string `json:"str"`
}

// BoolT is a struct with a single field Bool
type BoolT struct {
	Bool bool `json:"bool"`
}

// HumanPayload is a struct containing the basic types and their
// accompanying kind flag.  It is used to send a value as json or plain
// text without the caller writing the content negotiation every time.
type HumanPayload struct {
	// T holds the type of the data
	T types.BasicKind

	// Bool holds a binary value
	Bool bool

	// Int holds an integer value
	Int int

	// Float holds a floating point value
	Float float64

	// String holds a text value
	String string
}

// EncodeAndRespond converts the payload to json, or plain text if the
// client sends Accept: text/plain, and writes it to w
func (hp *HumanPayload) EncodeAndRespond(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Accept") == "text/plain" {
		w.Header().Set("Content-Type", "text/plain")
		var out string
		switch hp.T {
		case types.Bool:
			out = strconv.FormatBool(hp.Bool)
		case types.Int:
			out = strconv.Itoa(hp.Int)
		case types.Float64:
			out = strconv.FormatFloat(hp.Float, 'G', -1, 64)
		case types.String:
			out = hp.String
		}
		fmt.Fprintln(w, out)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	var err error
	enc := json.NewEncoder(w)
	switch hp.T {
	case types.Bool:
		err = enc.Encode(BoolT{Bool: hp.Bool})
	case types.Int:
		err = enc.Encode(IntT{Int: hp.Int})
	case types.Float64:
		err = enc.Encode(FloatT{F64: hp.Float})
	case types.String:
		err = enc.Encode(StrT{Str: hp.String})
	default:
		err = fmt.Errorf("unknown payload kind %v", hp.T)
	}
	if err != nil {
		fstr := fmt.Sprintf("error encoding response to json %q", err)
		log.Println(fstr)
		http.Error(w, fstr, http.StatusInternalServerError)
	}
}
