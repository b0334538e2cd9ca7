// Command labmon scrapes a Lake Shore 335 and exposes the cryostat
// temperatures as prometheus metrics.
package main

import (
	"flag"
	"log"
	"math"
	"net/http"

	"github.com/ifgw-pl/golabspec/lakeshore"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	addr   = flag.String("addr", "/dev/ttyUSB0", "serial port the controller is connected to")
	listen = flag.String("listen", ":8080", "address to serve metrics at")
)

// gauge wraps a temperature reading so a scrape failure shows up as
// NaN in the timeseries instead of killing the exporter
func gauge(read func(string) (float64, error), input string) func() float64 {
	return func() float64 {
		f, err := read(input)
		if err != nil {
			log.Printf("error reading input %s: %v", input, err)
			return math.NaN()
		}
		return f
	}
}

func main() {
	flag.Parse()
	tc, err := lakeshore.NewController(*addr)
	if err != nil {
		log.Fatalf("could not open the temperature controller, %v", err)
	}
	defer tc.Close()

	readKelvin := func(input string) (float64, error) {
		k, err := tc.ReadKelvin(input)
		return float64(k), err
	}
	setpoint := func(loop string) (float64, error) {
		k, err := tc.Setpoint(loop)
		return float64(k), err
	}

	for _, g := range []struct {
		name, help string
		fcn        func() float64
	}{
		{"cryostat_control_temp_kelvin", "Temperature at the cold finger control sensor.", gauge(readKelvin, "A")},
		{"cryostat_sample_temp_kelvin", "Temperature at the sample mount sensor.", gauge(readKelvin, "B")},
		{"cryostat_setpoint_kelvin", "Control loop setpoint.", gauge(setpoint, "1")},
	} {
		err := prometheus.Register(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Subsystem: "lab",
				Name:      g.name,
				Help:      g.help,
			},
			g.fcn,
		))
		if err != nil {
			log.Fatal(err)
		}
	}

	root := chi.NewRouter()
	root.Use(middleware.Logger)
	root.Handle("/metrics", promhttp.Handler())
	log.Println("now serving metrics at ", *listen)
	log.Fatal(http.ListenAndServe(*listen, root))
}
