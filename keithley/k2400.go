package keithley

import (
	"fmt"
	"time"

	"github.com/ifgw-pl/golabspec/comm"
	"github.com/ifgw-pl/golabspec/scpi"
)

// IVPoint is one point of a current-voltage sweep
type IVPoint struct {
	V float64 `json:"v"`
	I float64 `json:"i"`
}

// K2400 is a model 2400 SourceMeter.  Unlike the older instruments it
// speaks SCPI, and here it is reached over a LAN-GPIB gateway or
// terminal server rather than the model 500 converter.
type K2400 struct {
	s scpi.SCPI
}

// NewK2400 returns a driver for the SourceMeter at addr
// (host:port of its gateway)
func NewK2400(addr string) *K2400 {
	maker := comm.BackingOffTCPConnMaker(addr, 3*time.Second)
	pool := comm.NewPool(1, 30*time.Second, maker)
	return &K2400{s: scpi.SCPI{Pool: pool}}
}

// Identification returns the *IDN? response
func (k *K2400) Identification() (string, error) {
	return k.s.ReadString("*IDN?")
}

// Reset restores the power-on defaults
func (k *K2400) Reset() error {
	return k.s.Write("*RST")
}

// SetupVoltageSource configures the instrument to source voltage on
// autorange and sense dc current on autorange, with the given current
// compliance (A) and source delay.
func (k *K2400) SetupVoltageSource(compliance float64, delay time.Duration) error {
	cmds := []string{
		":SOUR:FUNC VOLT",
		":SOUR:VOLT:RANG:AUTO 1",
		":SENS:FUNC 'CURR:DC'",
		":SENS:CURR:RANG:AUTO 1",
		":FORM:ELEM CURR",
		fmt.Sprintf(":SENS:CURR:PROT %v", compliance),
		fmt.Sprintf(":SOUR:DEL %v", delay.Seconds()),
	}
	for _, cmd := range cmds {
		if err := k.s.Write(cmd); err != nil {
			return err
		}
	}
	return nil
}

// SetSourceVoltage sets the source level in volts
func (k *K2400) SetSourceVoltage(v float64) error {
	return k.s.Write(fmt.Sprintf(":SOUR:VOLT:LEV %v", v))
}

// SetOutput opens or closes the output relay
func (k *K2400) SetOutput(on bool) error {
	if on {
		return k.s.Write(":OUTP ON")
	}
	return k.s.Write(":OUTP OFF")
}

// MeasureCurrent triggers a measurement and returns the current in A
func (k *K2400) MeasureCurrent() (float64, error) {
	return k.s.ReadFloat(":MEAS?")
}

// Sweep sources voltages from start to stop in increments of step and
// measures the current at each level.  The output is left off and the
// source at zero when the sweep finishes or fails.
func (k *K2400) Sweep(start, stop, step float64) ([]IVPoint, error) {
	if step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %v", step)
	}
	if stop < start {
		return nil, fmt.Errorf("stop %v is below start %v", stop, start)
	}
	var points []IVPoint
	cleanup := func() {
		k.s.Write(":OUTP OFF")
		k.s.Write(":SOUR:VOLT:LEV 0")
	}
	if err := k.SetSourceVoltage(start); err != nil {
		return points, err
	}
	if err := k.SetOutput(true); err != nil {
		return points, err
	}
	defer cleanup()
	for v := start; v <= stop; v += step {
		if err := k.SetSourceVoltage(v); err != nil {
			return points, err
		}
		i, err := k.MeasureCurrent()
		if err != nil {
			return points, err
		}
		points = append(points, IVPoint{V: v, I: i})
	}
	return points, nil
}

// Raw passes a raw SCPI command through, returning the response if it
// was a query
func (k *K2400) Raw(cmd string) (string, error) {
	return k.s.Raw(cmd)
}
