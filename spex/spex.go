/*Package spex controls Spex 500M grating monochromators.

Unlike the Jarrell Ash instruments, the Spex has its own motor
controller, reached over GPIB.  The protocol is a single-letter command
language; the controller answers almost everything with an "o"
confirmation byte, followed by data for queries.  On power-up the
controller sits in its BOOT program and must be handed over to MAIN
before the motor commands work.

The controller keeps a step-position register which the driver trusts
for relative moves; there is still no encoder on the grating, so the
register is only as good as the calibration poked into it with
Calibrate.
*/
package spex

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ifgw-pl/golabspec/util"
)

const (
	// stepsPerUnit is the number of motor steps per spectral unit of
	// grating travel
	stepsPerUnit = 4000

	// backlashSteps is the overshoot-and-return applied when reversing,
	// 5 spectral units worth of steps
	backlashSteps = 5 * stepsPerUnit

	// busyPoll is the delay between motor busy checks
	busyPoll = 100 * time.Millisecond
)

// default motor ramp profile, steps/sec and ms
const (
	defaultMinFreq  = 1000
	defaultMaxFreq  = 36000
	defaultRampTime = 3000
)

// Bus is the capability the driver needs from a GPIB controller.
// gpib.Controller satisfies it.
type Bus interface {
	Command(format string, a ...interface{}) error
	Query(cmd string) (string, error)
	Read() (string, error)
}

// Spex500 drives one monochromator through a GPIB bus handle
type Spex500 struct {
	bus Bus
}

// New returns a Spex500 speaking through bus
func New(bus Bus) *Spex500 {
	return &Spex500{bus: bus}
}

// confirm runs a command and checks the controller's "o" acknowledgement
func (s *Spex500) confirm(cmd string) error {
	resp, err := s.bus.Query(cmd)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(resp, "o") {
		return fmt.Errorf("command %q not confirmed, controller sent %q", cmd, resp)
	}
	return nil
}

// query runs a query and strips the "o" acknowledgement off the data
func (s *Spex500) query(cmd string) (string, error) {
	resp, err := s.bus.Query(cmd)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(resp, "o") {
		return "", fmt.Errorf("query %q not confirmed, controller sent %q", cmd, resp)
	}
	return resp[1:], nil
}

// WhereAmI asks which program the controller is running: "B" for BOOT,
// "F" for MAIN, "*" right after autobauding.
func (s *Spex500) WhereAmI() (string, error) {
	return s.bus.Query(" ")
}

// Startup brings the controller from an unknown state to a ready MAIN
// program with the motor initialized.  Motor init can take up to 100
// seconds on a cold controller.
func (s *Spex500) Startup() error {
	// reboot if hung; the controller sends nothing back
	if err := s.bus.Command("222"); err != nil {
		return err
	}
	where, err := s.WhereAmI()
	if err != nil {
		return err
	}
	if where == "B" {
		// hand control from BOOT to MAIN
		if err := s.bus.Command("O2000" + "\x00"); err != nil {
			return err
		}
		if _, err := s.bus.Read(); err != nil {
			return err
		}
	}
	time.Sleep(500 * time.Millisecond)
	return s.confirm("A")
}

// MainVersion returns the MAIN program version, e.g. "V3.3"
func (s *Spex500) MainVersion() (string, error) {
	return s.query("z")
}

// BootVersion returns the BOOT program version, e.g. "V2.3"
func (s *Spex500) BootVersion() (string, error) {
	return s.query("y")
}

// SetSpeed programs the motor ramp: min and max frequency in steps/sec
// and ramp time in ms
func (s *Spex500) SetSpeed(minFreq, maxFreq, rampTime int) error {
	return s.confirm("B0," + util.IntSliceToCSV([]int{minFreq, maxFreq, rampTime}))
}

// Calibrate tells the controller where the grating actually is: it
// programs the default ramp and sets the step-position register from
// the wavelength on the instrument's mechanical counter.
func (s *Spex500) Calibrate(displayWavelength float64) error {
	err := s.SetSpeed(defaultMinFreq, defaultMaxFreq, defaultRampTime)
	if err != nil {
		return err
	}
	return s.confirm(fmt.Sprintf("G0,%d", toSteps(displayWavelength)))
}

// Position reads the controller's step-position register
func (s *Spex500) Position() (int, error) {
	resp, err := s.query("H0")
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(resp))
}

// Busy reports whether the motor is still moving
func (s *Spex500) Busy() (bool, error) {
	resp, err := s.query("E")
	if err != nil {
		return false, err
	}
	return resp != "z", nil
}

// waitIdle polls the motor busy check until the move completes
func (s *Spex500) waitIdle() error {
	for {
		busy, err := s.Busy()
		if err != nil {
			return err
		}
		if !busy {
			return nil
		}
		time.Sleep(busyPoll)
	}
}

// MoveRelative commands a relative move of the given number of steps
// and waits for the motor to finish
func (s *Spex500) MoveRelative(steps int) error {
	if err := s.confirm(fmt.Sprintf("F0,%d", steps)); err != nil {
		return err
	}
	return s.waitIdle()
}

// Move slews the grating to the target wavelength.  The distance comes
// from the controller's position register; moves toward shorter
// wavelengths overshoot by 5 spectral units and return, loading the
// drive train slack in the forward direction.
func (s *Spex500) Move(target float64) error {
	pos, err := s.Position()
	if err != nil {
		return err
	}
	delta := toSteps(target) - pos
	if delta == 0 {
		return nil
	}
	if delta < 0 {
		if err := s.MoveRelative(delta - backlashSteps); err != nil {
			return err
		}
		return s.MoveRelative(backlashSteps)
	}
	return s.MoveRelative(delta)
}

// Stop halts the grating motor
func (s *Spex500) Stop() error {
	return s.confirm("L")
}

func toSteps(wavelength float64) int {
	return int(math.Round(wavelength * stepsPerUnit))
}

// Mono adapts the drive to the wavelength oriented interface used by
// the HTTP layer.  The 500M tracks its own position, so the display
// argument to Move is ignored.
type Mono struct {
	S *Spex500
}

// Move slews to the target wavelength
func (m Mono) Move(display, target float64) error {
	return m.S.Move(target)
}

// StepForward advances the grating by step spectral units
func (m Mono) StepForward(step float64) error {
	return m.S.MoveRelative(toSteps(step))
}

// StepBackward reduces the wavelength by step spectral units,
// overshooting and returning to unload the drive train slack
func (m Mono) StepBackward(step float64) error {
	if err := m.S.MoveRelative(-toSteps(step) - backlashSteps); err != nil {
		return err
	}
	return m.S.MoveRelative(backlashSteps)
}
