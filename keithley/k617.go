package keithley

import (
	"fmt"
	"strconv"
	"strings"
)

// option tables for the model 617 electrometer

// ElectrometerFunctions maps measurement function names to F commands
var ElectrometerFunctions = map[string]string{
	"Volts":             "F0",
	"Amps":              "F1",
	"Ohms":              "F2",
	"Coulombs":          "F3",
	"External feedback": "F4",
	"V/I Ohms":          "F5",
}

// AmpsRanges maps current range names to R commands
var AmpsRanges = map[string]string{
	"Auto":               "R0",
	"2 pA":               "R1",
	"20 pA":              "R2",
	"200 pA":             "R3",
	"2 nA":               "R4",
	"20 nA":              "R5",
	"200 nA":             "R6",
	"2 uA":               "R7",
	"20 uA":              "R8",
	"200 uA":             "R9",
	"2 mA":               "R10",
	"20 mA":              "R11",
	"Cancel Autoranging": "R12",
}

// ZeroChecks maps zero check states to C commands
var ZeroChecks = map[string]string{
	"Off": "C0",
	"On":  "C1",
}

// ZeroCorrects maps zero correct states to Z commands
var ZeroCorrects = map[string]string{
	"Disabled": "Z0",
	"Enabled":  "Z1",
}

// TriggerModes maps trigger mode names to T commands
var TriggerModes = map[string]string{
	"Continuous trigger by talk": "T0",
	"One-shot trigger by talk":   "T1",
	"Continuous trigger by GET":  "T2",
	"One-shot trigger by GET":    "T3",
	"Continuous trigger by X":    "T4",
	"One-shot trigger by X":      "T5",
}

// Meter modes accepted by AutoConfigure, mapping bench names onto
// measurement functions
var meterModes = map[string]string{
	"Voltmeter":    "Volts",
	"Amperemeter":  "Amps",
	"Ohmmeter":     "Ohms",
	"Coulombmeter": "Coulombs",
}

// K617 is a model 617 programmable electrometer on a GPIB bus
type K617 struct {
	bus bus
}

// NewK617 returns a driver for the electrometer at the other end of bus
func NewK617(bus bus) *K617 {
	return &K617{bus: bus}
}

// AutoConfigure sets up the instrument for one-shot readings in the
// given meter mode ("Voltmeter", "Amperemeter", "Ohmmeter",
// "Coulombmeter"): autorange, zero check and correct off, baseline
// suppression off, electrometer display and reading, data store off,
// reading output without prefix, one-shot trigger on X.
func (k *K617) AutoConfigure(meterMode string) error {
	function, ok := meterModes[meterMode]
	if !ok {
		return fmt.Errorf("unknown meter mode %q", meterMode)
	}
	pieces := []string{
		ElectrometerFunctions[function],
		AmpsRanges["Auto"],
		ZeroChecks["Off"],
		ZeroCorrects["Disabled"],
		"N0", // baseline suppression disabled
		"D0", // electrometer display
		"B0", // electrometer reading
		"Q7", // data store disabled
		"G1", // reading without prefix
		TriggerModes["One-shot trigger by X"],
		"M0", // SRQ disabled
		"X",
	}
	return k.bus.Command(strings.Join(pieces, ""))
}

// Read triggers a one-shot reading and returns it
func (k *K617) Read() (float64, error) {
	resp, err := k.bus.Query("X")
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(resp), 64)
}

// ZeroCorrect runs the zero check / zero correct cycle the manual
// prescribes before low-current measurements
func (k *K617) ZeroCorrect() error {
	for _, cmd := range []string{
		ZeroChecks["On"] + "X",
		ZeroCorrects["Enabled"] + "X",
		ZeroChecks["Off"] + "X",
	} {
		if err := k.bus.Command(cmd); err != nil {
			return err
		}
	}
	return nil
}
