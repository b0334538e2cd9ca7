/*Package stepmotor pulses a 4-wire stepper motor winding, one pin at a time.

The motor advances one step per winding activation.  Walking the pin
sequence forward turns the shaft one way, walking it in reverse turns it
the other; the driver holds each pin for a fixed pulse width before the
next activation overrides it on the shared port.  There is no position
feedback, the motor's state lives in the motor.

Sequencing is fully synchronous: Clockwise(n) occupies the calling
goroutine for n pulse widths.

Usage:

	port, err := parport.NewDataPort(parport.DefaultDataAddr)
	// handle err
	motor, err := stepmotor.New(port, 4*time.Millisecond, []int{2, 3, 4, 5})
	// handle err
	err = motor.Clockwise(200) // one revolution of a 200 step/rev motor
*/
package stepmotor

import (
	"fmt"
	"time"

	"github.com/ifgw-pl/golabspec/parport"
)

// WindingPins is the number of control lines of a 4-phase winding
const WindingPins = 4

// StepMotor sequences pulses onto a 4-wire winding through a PinSetter.
// All fields are fixed at construction; a StepMotor is a single-owner
// handle to its port and is not safe for concurrent use.
type StepMotor struct {
	port  parport.PinSetter
	pulse time.Duration
	pins  [WindingPins]int
}

// New returns a StepMotor which drives the given pins, in phase order,
// holding each activation for pulse.  The pin sequence must have exactly
// one pin per winding phase and the pulse width must be positive.
func New(port parport.PinSetter, pulse time.Duration, pins []int) (*StepMotor, error) {
	if len(pins) != WindingPins {
		return nil, fmt.Errorf("pin sequence must have exactly %d pins, got %d", WindingPins, len(pins))
	}
	if pulse <= 0 {
		return nil, fmt.Errorf("pulse width must be positive, got %v", pulse)
	}
	m := &StepMotor{port: port, pulse: pulse}
	copy(m.pins[:], pins)
	return m, nil
}

// PulseWidth returns the hold time between successive pin activations
func (m *StepMotor) PulseWidth() time.Duration {
	return m.pulse
}

// Clockwise turns the motor steps steps clockwise by walking the pin
// sequence in reverse order.  It blocks for steps pulse widths.
func (m *StepMotor) Clockwise(steps int) error {
	var reversed [WindingPins]int
	for i := 0; i < WindingPins; i++ {
		reversed[i] = m.pins[WindingPins-1-i]
	}
	return m.run(reversed, steps)
}

// Counterclockwise turns the motor steps steps counterclockwise by
// walking the pin sequence in phase order.  It blocks for steps pulse
// widths.
func (m *StepMotor) Counterclockwise(steps int) error {
	return m.run(m.pins, steps)
}

func (m *StepMotor) run(seq [WindingPins]int, steps int) error {
	if steps < 0 {
		return fmt.Errorf("step count must be non-negative, got %d", steps)
	}
	for i := 0; i < steps; i++ {
		if err := m.port.Activate(seq[i%WindingPins]); err != nil {
			return err
		}
		time.Sleep(m.pulse)
	}
	return nil
}
