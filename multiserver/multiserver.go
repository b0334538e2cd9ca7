// Package multiserver builds a single HTTP mux serving every
// instrument described in a yaml config file.
package multiserver

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/ifgw-pl/golabspec/gpib"
	"github.com/ifgw-pl/golabspec/gpib/vcp"
	"github.com/ifgw-pl/golabspec/jarrellash"
	"github.com/ifgw-pl/golabspec/keithley"
	"github.com/ifgw-pl/golabspec/lakeshore"
	"github.com/ifgw-pl/golabspec/minolta"
	"github.com/ifgw-pl/golabspec/monochromator"
	"github.com/ifgw-pl/golabspec/parport"
	"github.com/ifgw-pl/golabspec/server"
	"github.com/ifgw-pl/golabspec/server/middleware/locker"
	"github.com/ifgw-pl/golabspec/spex"

	"github.com/go-yaml/yaml"
	"goji.io"
	"goji.io/pat"
)

// ObjSetup holds the args for a New<device> call.  Only the fields a
// given device type uses need to be populated in the config file.
type ObjSetup struct {
	// Addr holds the network or filesystem address of the remote device,
	// e.g. 192.168.100.123:1394 for a SourceMeter on ethernet, or
	// /dev/ttyUSB0 for an RS232 device on a serial cable
	Addr string `yaml:"addr"`

	// URL is the prefix the routes from this device will be served
	// under, ex. URL="/omc/mono" produces routes of /omc/mono/wavelength, etc.
	URL string `yaml:"endpoint"`

	// SerialNumber selects a known monochromator unit (Jarrell-Ash only)
	SerialNumber int `yaml:"serialNumber"`

	// GPIB is the device's bus address behind a GPIB adapter (Spex only)
	GPIB int `yaml:"gpib"`

	// Display is the wavelength the instrument front panel shows at
	// startup (monochromators only)
	Display float64 `yaml:"display"`
}

// Config holds the initialization parameters for the HTTP adapted
// devices.  It is to be populated by a yaml unmarshal call.
type Config struct {
	// Addr is the address to listen at
	Addr string `yaml:"addr"`

	// JarrellAshes is a list of setup parameters that will automap to
	// Jarrell-Ash 82-410 monochromators on the parallel port
	JarrellAshes []ObjSetup `yaml:"jarrellAshes"`

	// Spexes is a list of setup parameters that will automap to
	// Spex 500M monochromators behind GPIB adapters
	Spexes []ObjSetup `yaml:"spexes"`

	// Lakeshores is a list of setup parameters that will automap to
	// Lake Shore 335 temperature controllers
	Lakeshores []ObjSetup `yaml:"lakeshores"`

	// Minoltas is a list of setup parameters that will automap to
	// CS-100A colorimeters
	Minoltas []ObjSetup `yaml:"minoltas"`

	// Keithley2400s is a list of setup parameters that will automap to
	// model 2400 SourceMeters on ethernet
	Keithley2400s []ObjSetup `yaml:"keithley2400s"`
}

// LoadYaml converts a (path to a) yaml file into a Config struct
func LoadYaml(path string) (Config, error) {
	cfg := Config{}
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	err = yaml.NewDecoder(f).Decode(&cfg)
	return cfg, err
}

// BuildMux initializes every device in the config and constructs a
// goji mux with their handlers mounted under their URLs.  The mux
// serves a special route, /endpoints, which returns a map of all
// routes as JSON.
func (c Config) BuildMux() (*goji.Mux, error) {
	stems := []string{}
	httpers := []server.HTTPer{}
	locks := map[int]*locker.Locker{}

	// monochromators get a lock route so a client cannot interrupt
	// another client's slew
	addMono := func(url string, w *monochromator.HTTPWrapper) {
		lock := locker.New()
		locker.Inject(w, lock)
		locks[len(stems)] = lock
		stems = append(stems, url)
		httpers = append(httpers, w)
	}

	for _, setup := range c.JarrellAshes {
		port, err := parport.NewDataPort(parport.DefaultDataAddr)
		if err != nil {
			return nil, err
		}
		mono, err := jarrellash.New(setup.SerialNumber, port)
		if err != nil {
			return nil, err
		}
		addMono(setup.URL, monochromator.NewHTTPWrapper(mono, setup.Display))
	}

	for _, setup := range c.Spexes {
		conn, err := vcp.Open(setup.Addr)
		if err != nil {
			return nil, err
		}
		ctl, err := gpib.NewController(conn, setup.GPIB, false)
		if err != nil {
			return nil, err
		}
		drive := spex.New(ctl)
		addMono(setup.URL, monochromator.NewHTTPWrapper(spex.Mono{S: drive}, setup.Display))
	}

	for _, setup := range c.Lakeshores {
		tc, err := lakeshore.NewController(setup.Addr)
		if err != nil {
			return nil, err
		}
		stems = append(stems, setup.URL)
		httpers = append(httpers, lakeshore.NewHTTPWrapper(tc))
	}

	for _, setup := range c.Minoltas {
		cs, err := minolta.NewCS100A(setup.Addr)
		if err != nil {
			return nil, err
		}
		stems = append(stems, setup.URL)
		httpers = append(httpers, minolta.NewHTTPWrapper(cs))
	}

	for _, setup := range c.Keithley2400s {
		smu := keithley.NewK2400(setup.Addr)
		stems = append(stems, setup.URL)
		httpers = append(httpers, keithley.NewHTTPWrapper(smu))
	}

	return buildMux(stems, httpers, locks), nil
}

func buildMux(stems []string, httpers []server.HTTPer, locks map[int]*locker.Locker) *goji.Mux {
	root := goji.NewMux()
	supergraph := map[string][]string{}
	for idx := 0; idx < len(stems); idx++ {
		stem := stems[idx]
		httper := httpers[idx]
		mux := goji.SubMux()
		if lock, ok := locks[idx]; ok {
			mux.Use(lock.Check)
		}
		if !strings.HasPrefix(stem, "/") {
			stem = "/" + stem
		}
		if !strings.HasSuffix(stem, "/") {
			stem = stem + "/"
		}
		supergraph[stem] = httper.RT().Endpoints()
		root.Handle(pat.New(stem+"*"), mux)
		httper.RT().Bind(mux)
	}
	root.HandleFunc(pat.Get("/endpoints"), func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		err := json.NewEncoder(w).Encode(supergraph)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	return root
}
