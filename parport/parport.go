/*Package parport drives individual output pins of a PC parallel port.

The port exposes two registers of interest for bit-banging: the data
register (pins 2..9) and the control register (pins 1, 14, 16, 17).
Writing a byte to a register sets the whole pin group at once, so
activating one pin implicitly returns every other pin in the group to
its idle level.  The stepper drivers in this repository rely on that:
they never write an explicit "off", the next activation overrides the
previous one.

Pin-to-byte mappings follow the hardware:

	data register (base, typically 0x378)
	pin   2  3  4  5   6   7   8    9
	byte  1  2  4  8  16  32  64  128    idle 0, all high 255

	control register (typically 0x37f)
	pin    1  14  16  17
	byte  10   9  15  13    idle 11, all high 4

The control lines are inverted in hardware, which is why the idle and
all-high values are not 0 and 255 there.

A Port is a single-owner handle; two Ports over the same register will
corrupt each other's pin state and nothing here defends against that.
*/
package parport

import (
	"fmt"
	"io"
	"os"
)

// Common port register addresses.  The actual address varies by machine
// and is reported by the OS (e.g. lspci or the Windows device manager).
const (
	DefaultDataAddr    = 0x378
	DefaultControlAddr = 0x37f
)

const portDevice = "/dev/port"

// ErrUnknownPin is returned when a pin outside the register's pin group
// is activated
var ErrUnknownPin = fmt.Errorf("pin is not part of the port's pin group")

// PinSetter can drive exactly one abstract output line high
type PinSetter interface {
	Activate(pin int) error
}

// register describes one parallel port register's pin group
type register struct {
	masks map[int]byte // pin number -> byte to write
	idle  byte         // all pins at rest
	high  byte         // all pins driven
}

var (
	dataRegister = register{
		masks: map[int]byte{2: 1, 3: 2, 4: 4, 5: 8, 6: 16, 7: 32, 8: 64, 9: 128},
		idle:  0,
		high:  255,
	}
	controlRegister = register{
		masks: map[int]byte{1: 10, 14: 9, 16: 15, 17: 13},
		idle:  11,
		high:  4,
	}
)

// Port is one parallel port register opened for pin-banging.
// It implements PinSetter.
type Port struct {
	w      io.WriterAt
	closer io.Closer
	addr   int64
	reg    register
}

// NewDataPort opens the data register (pins 2..9) at the given address.
// Pass DefaultDataAddr unless the machine reports otherwise.
func NewDataPort(addr int64) (*Port, error) {
	return openPort(addr, dataRegister)
}

// NewControlPort opens the control register (pins 1, 14, 16, 17) at the
// given address.  Pass DefaultControlAddr unless the machine reports
// otherwise.
func NewControlPort(addr int64) (*Port, error) {
	return openPort(addr, controlRegister)
}

func openPort(addr int64, reg register) (*Port, error) {
	f, err := os.OpenFile(portDevice, os.O_WRONLY, 0)
	if err != nil {
		return nil, err
	}
	return &Port{w: f, closer: f, addr: addr, reg: reg}, nil
}

func newPort(w io.WriterAt, addr int64, reg register) *Port {
	return &Port{w: w, addr: addr, reg: reg}
}

// Activate drives the given pin high, returning the rest of the register's
// pins to their idle level
func (p *Port) Activate(pin int) error {
	mask, ok := p.reg.masks[pin]
	if !ok {
		return fmt.Errorf("%w: pin %d", ErrUnknownPin, pin)
	}
	return p.poke(mask)
}

// AllLow returns every pin of the register to its idle level
func (p *Port) AllLow() error {
	return p.poke(p.reg.idle)
}

// AllHigh drives every pin of the register
func (p *Port) AllHigh() error {
	return p.poke(p.reg.high)
}

// Close releases the underlying port device
func (p *Port) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

func (p *Port) poke(b byte) error {
	_, err := p.w.WriteAt([]byte{b}, p.addr)
	return err
}
