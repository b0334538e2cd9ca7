package server

import (
	"encoding/json"
	"go/types"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"goji.io"
	"goji.io/pat"
)

func TestRouteTableEndpoints(t *testing.T) {
	rt := RouteTable{
		pat.Get("/wavelength"):  func(w http.ResponseWriter, r *http.Request) {},
		pat.Post("/wavelength"): func(w http.ResponseWriter, r *http.Request) {},
		pat.Post("/step-fwd"):   func(w http.ResponseWriter, r *http.Request) {},
	}
	eps := rt.Endpoints()
	sort.Strings(eps)
	expected := []string{"/step-fwd", "/wavelength", "/wavelength"}
	if len(eps) != len(expected) {
		t.Fatalf("expected %d endpoints, got %d", len(expected), len(eps))
	}
	for i := range expected {
		if eps[i] != expected[i] {
			t.Errorf("endpoint %d: expected %s, got %s", i, expected[i], eps[i])
		}
	}
}

func TestRouteTableBind(t *testing.T) {
	called := false
	rt := RouteTable{
		pat.Get("/busy"): func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		},
	}
	mux := goji.NewMux()
	rt.Bind(mux)
	req := httptest.NewRequest(http.MethodGet, "/busy", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if !called {
		t.Error("bound handler was not invoked")
	}
}

func TestHumanPayloadJSON(t *testing.T) {
	hp := HumanPayload{T: types.Float64, Float: 632.8}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	hp.EncodeAndRespond(rec, req)
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %s", ct)
	}
	var f FloatT
	if err := json.NewDecoder(rec.Body).Decode(&f); err != nil {
		t.Fatal(err)
	}
	if f.F64 != 632.8 {
		t.Errorf("expected 632.8, got %v", f.F64)
	}
}

func TestHumanPayloadPlainText(t *testing.T) {
	hp := HumanPayload{T: types.Bool, Bool: true}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "text/plain")
	rec := httptest.NewRecorder()
	hp.EncodeAndRespond(rec, req)
	if body := strings.TrimSpace(rec.Body.String()); body != "true" {
		t.Errorf("expected body 'true', got %q", body)
	}
}
