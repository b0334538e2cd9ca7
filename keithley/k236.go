package keithley

import (
	"fmt"
	"strconv"

	"github.com/ifgw-pl/golabspec/util"
)

// option tables for the model 236, keyed the way the manual names them

// Functions maps source/function names to their F commands
var Functions = map[string]string{
	"Volts - dc":    "F0,0X",
	"Volts - sweep": "F0,1X",
	"Amps - dc":     "F1,0X",
	"Amps - sweep":  "F1,1X",
}

// Filters maps measurement filter names to their P commands
var Filters = map[string]string{
	"Disabled":    "P0X",
	"2 readings":  "P1X",
	"4 readings":  "P2X",
	"8 readings":  "P3X",
	"16 readings": "P4X",
	"32 readings": "P5X",
}

// IntegrationTimes maps integration time names to their S commands
var IntegrationTimes = map[string]string{
	"Fast":             "S0X", // 416 usec, 4-digit resolution
	"Medium":           "S1X", // 4 msec, 5-digit
	"LineCycle (60Hz)": "S2X", // 16.67 msec
	"LineCycle (50Hz)": "S3X", // 20 msec
}

// output data format pieces; G<items>,<format>,<lines>
const (
	outputMeasureValue  = "G4,"
	outputASCIIBare     = "2," // no prefix or suffix
	outputOneLinePerRun = "0X"
)

// bit positions of the serial poll status byte
const (
	srqWarning = iota
	srqSweepDone
	srqTriggerOut
	srqReadingDone
	srqReadyForTrigger
	srqError
	_ // bit 6 is the SRQ line itself
	srqCompliance
)

// SerialPoll is the decoded serial poll status byte
type SerialPoll struct {
	Warning         bool
	SweepDone       bool
	TriggerOut      bool
	ReadingDone     bool
	ReadyForTrigger bool
	Error           bool
	Compliance      bool
}

// DecodeSerialPoll unpacks the serial poll status byte of the 236
func DecodeSerialPoll(b byte) SerialPoll {
	return SerialPoll{
		Warning:         util.GetBit(b, srqWarning),
		SweepDone:       util.GetBit(b, srqSweepDone),
		TriggerOut:      util.GetBit(b, srqTriggerOut),
		ReadingDone:     util.GetBit(b, srqReadingDone),
		ReadyForTrigger: util.GetBit(b, srqReadyForTrigger),
		Error:           util.GetBit(b, srqError),
		Compliance:      util.GetBit(b, srqCompliance),
	}
}

// K236 is a model 236 source-measure unit on a GPIB bus.
//
// Measurements are source-delay-measure cycles: the instrument sets the
// source level, waits out the delay, and measures.
type K236 struct {
	bus bus
}

// NewK236 returns a driver for the SMU at the other end of bus
func NewK236(bus bus) *K236 {
	return &K236{bus: bus}
}

// StartUp configures the instrument for dc bias measurements: source
// function, filter, and integration time by their manual names, bare
// ASCII measure-value output, local sense, operate.
func (k *K236) StartUp(function, filter, integrationTime string) error {
	fcn, ok := Functions[function]
	if !ok {
		return fmt.Errorf("unknown source function %q", function)
	}
	flt, ok := Filters[filter]
	if !ok {
		return fmt.Errorf("unknown filter %q", filter)
	}
	itg, ok := IntegrationTimes[integrationTime]
	if !ok {
		return fmt.Errorf("unknown integration time %q", integrationTime)
	}
	for _, cmd := range []string{
		fcn,
		flt,
		itg,
		outputMeasureValue + outputASCIIBare + outputOneLinePerRun,
		"O0X", // local sense
		"N1X", // operate
	} {
		if err := k.bus.Command(cmd); err != nil {
			return err
		}
	}
	return nil
}

// Standby places the source in standby; the output relays open
func (k *K236) Standby() error {
	return k.bus.Command("N0X")
}

// Operate closes the output relays
func (k *K236) Operate() error {
	return k.bus.Command("N1X")
}

// Reset returns the bias source to zero on autorange with no delay
func (k *K236) Reset() error {
	return k.bus.Command("B0,0,0X")
}

// Run sources volts with the given compliance (A) and source-delay (s),
// triggers immediately, and returns the measured value.
func (k *K236) Run(volts, delay, compliance float64) (float64, error) {
	err := k.bus.Command("L%v,0X", compliance)
	if err != nil {
		return 0, err
	}
	// delay is in ms on the wire
	err = k.bus.Command("B%v,0,%d", volts, int(delay*1000))
	if err != nil {
		return 0, err
	}
	resp, err := k.bus.Query("H0X")
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(resp, 64)
}
