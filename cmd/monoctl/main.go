//go:build linux

// Command monoctl drives a Jarrell-Ash monochromator from the terminal.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ifgw-pl/golabspec/jarrellash"
	"github.com/ifgw-pl/golabspec/parport"

	"github.com/theckman/yacspin"
)

var (
	sn       = flag.Int("sn", 6902, "serial number of the monochromator")
	display  = flag.Float64("display", 0, "wavelength currently shown on the front panel counter")
	target   = flag.Float64("target", 0, "wavelength to move to")
	fwd      = flag.Float64("fwd", 0, "spectral units to step forward instead of moving")
	rev      = flag.Float64("rev", 0, "spectral units to step backward instead of moving")
	gpiochip = flag.String("gpiochip", "", "drive GPIO lines on this chip (e.g. /dev/gpiochip0) instead of the parallel port")
	offsets  = flag.String("offsets", "", "comma separated pin=lineOffset pairs for -gpiochip, e.g. 6=17,7=27,8=22,9=23")
)

func parseOffsets(s string) (map[int]int, error) {
	table := map[int]int{}
	for _, pair := range strings.Split(s, ",") {
		var pin, offset int
		if _, err := fmt.Sscanf(pair, "%d=%d", &pin, &offset); err != nil {
			return nil, fmt.Errorf("could not parse -offsets entry %q, want pin=lineOffset", pair)
		}
		table[pin] = offset
	}
	return table, nil
}

func spinner(msg string) (*yacspin.Spinner, error) {
	cfg := yacspin.Config{
		Frequency:       100 * time.Millisecond,
		CharSet:         yacspin.CharSets[59],
		Suffix:          " " + msg,
		SuffixAutoColon: true,
		StopCharacter:   "✓",
		StopColors:      []string{"fgGreen"},
	}
	s, err := yacspin.New(cfg)
	if err != nil {
		return nil, err
	}
	return s, s.Start()
}

func main() {
	flag.Parse()
	if *fwd == 0 && *rev == 0 && *target == 0 {
		fmt.Println("nothing to do, pass -target, -fwd, or -rev")
		flag.Usage()
		os.Exit(2)
	}

	var (
		port interface {
			parport.PinSetter
			Close() error
		}
		err error
	)
	if *gpiochip != "" {
		table, perr := parseOffsets(*offsets)
		if perr != nil {
			log.Fatal(perr)
		}
		port, err = parport.NewLines(*gpiochip, table)
	} else {
		port, err = parport.NewDataPort(parport.DefaultDataAddr)
	}
	if err != nil {
		log.Fatalf("could not open the pin driver, %v", err)
	}
	defer port.Close()
	mono, err := jarrellash.New(*sn, port)
	if err != nil {
		log.Fatal(err)
	}

	switch {
	case *fwd != 0:
		s, err := spinner(fmt.Sprintf("stepping forward %v", *fwd))
		if err != nil {
			log.Fatal(err)
		}
		err = mono.StepForward(*fwd)
		s.Stop()
		if err != nil {
			log.Fatal(err)
		}
	case *rev != 0:
		s, err := spinner(fmt.Sprintf("stepping backward %v", *rev))
		if err != nil {
			log.Fatal(err)
		}
		err = mono.StepBackward(*rev)
		s.Stop()
		if err != nil {
			log.Fatal(err)
		}
	default:
		s, err := spinner(fmt.Sprintf("moving %v to %v", *display, *target))
		if err != nil {
			log.Fatal(err)
		}
		err = mono.Move(*display, *target)
		s.Stop()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println("update the front panel counter to", *target)
	}
}
