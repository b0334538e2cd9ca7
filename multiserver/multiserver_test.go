package multiserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ifgw-pl/golabspec/server"
	"github.com/ifgw-pl/golabspec/server/middleware/locker"

	"goji.io/pat"
)

type fakeHTTPer struct {
	rt server.RouteTable
}

func (f fakeHTTPer) RT() server.RouteTable { return f.rt }

func TestLoadYaml(t *testing.T) {
	doc := `
addr: ":8000"
jarrellAshes:
  - endpoint: /omc/mono
    serialNumber: 6902
    display: 546.1
lakeshores:
  - addr: /dev/ttyUSB1
    endpoint: /omc/cryo
`
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadYaml(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":8000" {
		t.Errorf("expected listen addr :8000, got %s", cfg.Addr)
	}
	if len(cfg.JarrellAshes) != 1 || cfg.JarrellAshes[0].SerialNumber != 6902 {
		t.Errorf("jarrell-ash setup not parsed, got %+v", cfg.JarrellAshes)
	}
	if cfg.JarrellAshes[0].Display != 546.1 {
		t.Errorf("expected display 546.1, got %v", cfg.JarrellAshes[0].Display)
	}
	if len(cfg.Lakeshores) != 1 || cfg.Lakeshores[0].Addr != "/dev/ttyUSB1" {
		t.Errorf("lakeshore setup not parsed, got %+v", cfg.Lakeshores)
	}
}

func TestBuildMuxMountsRoutesUnderStems(t *testing.T) {
	hit := false
	httper := fakeHTTPer{rt: server.RouteTable{
		pat.Get("/wavelength"): func(w http.ResponseWriter, r *http.Request) {
			hit = true
			w.WriteHeader(http.StatusOK)
		},
	}}
	mux := buildMux([]string{"/omc/mono"}, []server.HTTPer{httper}, nil)

	req := httptest.NewRequest(http.MethodGet, "/omc/mono/wavelength", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if !hit {
		t.Error("device route was not reachable under its stem")
	}

	req = httptest.NewRequest(http.MethodGet, "/endpoints", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /endpoints, got %d", rec.Code)
	}
	graph := map[string][]string{}
	if err := json.NewDecoder(rec.Body).Decode(&graph); err != nil {
		t.Fatal(err)
	}
	eps, ok := graph["/omc/mono/"]
	if !ok || len(eps) != 1 || eps[0] != "/wavelength" {
		t.Errorf("unexpected endpoint graph %v", graph)
	}
}

func TestLockedDeviceRejectsRequests(t *testing.T) {
	httper := fakeHTTPer{rt: server.RouteTable{
		pat.Get("/wavelength"): func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
	}}
	lock := locker.New()
	locker.Inject(httper, lock)
	mux := buildMux([]string{"/omc/mono"}, []server.HTTPer{httper},
		map[int]*locker.Locker{0: lock})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	if rec := do(http.MethodPost, "/omc/mono/lock", `{"bool": true}`); rec.Code != http.StatusOK {
		t.Fatalf("could not lock, got %d", rec.Code)
	}
	if rec := do(http.MethodGet, "/omc/mono/wavelength", ""); rec.Code != http.StatusLocked {
		t.Errorf("expected 423 while locked, got %d", rec.Code)
	}
	if rec := do(http.MethodPost, "/omc/mono/lock", `{"bool": false}`); rec.Code != http.StatusOK {
		t.Fatalf("could not unlock, got %d", rec.Code)
	}
	if rec := do(http.MethodGet, "/omc/mono/wavelength", ""); rec.Code != http.StatusOK {
		t.Errorf("expected 200 after unlock, got %d", rec.Code)
	}
}
