/*Package jarrellash controls Thermo Jarrell Ash grating monochromators.

These instruments have no controller of their own: the grating is turned
by a 4-phase stepper motor wired straight to a parallel port, and the
only indication of wavelength is the mechanical counter on the front
panel.  All moves are therefore relative and open loop; the operator
reads the counter, asks for a target, and the driver emits the right
number of steps.  The software never knows where the grating really is
and does not pretend to.

The grating train has mechanical slack which only takes up when the
drive reverses into it, so any move toward shorter wavelengths is
followed by a fixed overshoot-and-return (see Backlash).  Moves toward
longer wavelengths need no compensation.

Usage:

	port, _ := parport.NewDataPort(parport.DefaultDataAddr)
	mono, err := jarrellash.New(34575, port)
	// handle err
	err = mono.Move(600, 600.05) // counter reads 600.0 nm, go to 600.05 nm
*/
package jarrellash

import (
	"fmt"
	"math"
	"time"

	"github.com/ifgw-pl/golabspec/parport"
	"github.com/ifgw-pl/golabspec/stepmotor"
)

// backlashUnits is the size of the overshoot-and-return applied when the
// drive reverses, in spectral units (nm of counter travel)
const backlashUnits = 5

// Device describes one monochromator's drive train calibration
type Device struct {
	// Brand and Model identify the instrument
	Brand string
	Model string

	// SerialNumber is the serial number on the chassis plate
	SerialNumber int

	// StepFactor is the number of motor steps per spectral unit (nm)
	// of counter travel.  It must be positive.
	StepFactor float64

	// PinSequence is the parallel port pin of each winding phase, in
	// phase order
	PinSequence []int

	// PulseWidth is the hold time between motor steps
	PulseWidth time.Duration
}

// devices holds the calibration of the instruments on the bench,
// keyed by serial number
var devices = map[int]Device{
	6902: {
		Brand:        "Thermo Jarrell Ash",
		Model:        "82-415a",
		SerialNumber: 6902,
		StepFactor:   24,
		PinSequence:  []int{6, 7, 8, 9},
		PulseWidth:   4 * time.Millisecond,
	},
	34575: {
		Brand:        "Thermo Jarrell Ash",
		Model:        "82-020",
		SerialNumber: 34575,
		StepFactor:   120,
		PinSequence:  []int{3, 2, 4, 5},
		PulseWidth:   4 * time.Millisecond,
	},
}

// Monochromator drives one Jarrell Ash grating through a stepper motor.
// It holds no position state; the physical counter is the only record
// of where the grating is.
type Monochromator struct {
	dev   Device
	motor *stepmotor.StepMotor
}

// New looks up the device table by serial number and returns a
// Monochromator driving its motor through port
func New(serialNumber int, port parport.PinSetter) (*Monochromator, error) {
	dev, ok := devices[serialNumber]
	if !ok {
		return nil, fmt.Errorf("no calibration on file for serial number %d", serialNumber)
	}
	return NewCustom(dev, port)
}

// NewCustom returns a Monochromator for a device not in the table.
// The step factor must be positive and the pin sequence must have one
// pin per winding phase.
func NewCustom(dev Device, port parport.PinSetter) (*Monochromator, error) {
	if dev.StepFactor <= 0 {
		return nil, fmt.Errorf("step factor must be positive, got %v", dev.StepFactor)
	}
	motor, err := stepmotor.New(port, dev.PulseWidth, dev.PinSequence)
	if err != nil {
		return nil, err
	}
	return &Monochromator{dev: dev, motor: motor}, nil
}

// Device returns the calibration in use
func (m *Monochromator) Device() Device {
	return m.dev
}

// steps converts a spectral distance to a whole number of motor steps.
// Fractional step counts are rounded to nearest; a half step of travel
// is below the resolution of the counter either way.
func (m *Monochromator) steps(units float64) int {
	return int(math.Round(units * m.dev.StepFactor))
}

// Move turns the grating from the wavelength on the counter to the
// target wavelength, both in nm.  Moves toward shorter wavelengths
// reverse the drive and are followed by backlash compensation; moves
// toward longer wavelengths are direct.  Equal wavelengths do nothing.
//
// Move blocks for the full pulse train.
func (m *Monochromator) Move(display, target float64) error {
	delta := m.steps(target - display)
	switch {
	case delta < 0:
		if err := m.motor.Counterclockwise(-delta); err != nil {
			return err
		}
		return m.Backlash()
	case delta > 0:
		return m.motor.Clockwise(delta)
	}
	return nil
}

// Backlash takes up the drive train slack by overshooting 5 spectral
// units further counterclockwise and returning.  The net grating motion
// is zero; the slack ends up loaded in the clockwise direction.
func (m *Monochromator) Backlash() error {
	backsteps := m.steps(backlashUnits)
	if err := m.motor.Counterclockwise(backsteps); err != nil {
		return err
	}
	return m.motor.Clockwise(backsteps)
}

// StepForward advances the grating by step spectral units toward longer
// wavelengths.  No backlash compensation is applied.
func (m *Monochromator) StepForward(step float64) error {
	return m.motor.Clockwise(m.steps(step))
}

// StepBackward retreats the grating by step spectral units toward
// shorter wavelengths, then compensates backlash.
func (m *Monochromator) StepBackward(step float64) error {
	if err := m.motor.Counterclockwise(m.steps(step)); err != nil {
		return err
	}
	return m.Backlash()
}

// Startup positions the grating from the counter reading to the start
// of a spectral scan.  It is Move under the name the bench crews use.
func (m *Monochromator) Startup(display, spectralStart float64) error {
	return m.Move(display, spectralStart)
}
