//go:build linux

package parport

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
	"go.uber.org/multierr"
)

// Lines drives a pin group through the Linux GPIO character device
// instead of a legacy LPT register.  It is for benches where the motor
// driver has been rewired to an SBC header; the pin numbers keep their
// original meaning and map onto GPIO line offsets via the table given
// at construction.
//
// Like Port, activating one pin drops every other pin in the group.
// Lines implements PinSetter.
type Lines struct {
	chip  *gpiocdev.Chip
	lines map[int]*gpiocdev.Line
}

// NewLines requests the GPIO lines named in pinToOffset (pin number ->
// line offset) on the given chip (e.g. "/dev/gpiochip0") as outputs,
// initially low.
func NewLines(chipPath string, pinToOffset map[int]int) (*Lines, error) {
	chip, err := gpiocdev.NewChip(chipPath)
	if err != nil {
		return nil, err
	}
	l := &Lines{chip: chip, lines: make(map[int]*gpiocdev.Line, len(pinToOffset))}
	for pin, offset := range pinToOffset {
		line, err := chip.RequestLine(offset,
			gpiocdev.AsOutput(0),
			gpiocdev.WithConsumer("golabspec-parport"))
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("requesting line %d for pin %d: %w", offset, pin, err)
		}
		l.lines[pin] = line
	}
	return l, nil
}

// Activate drives the given pin high and every other pin in the group low
func (l *Lines) Activate(pin int) error {
	if _, ok := l.lines[pin]; !ok {
		return fmt.Errorf("%w: pin %d", ErrUnknownPin, pin)
	}
	var err error
	for p, line := range l.lines {
		v := 0
		if p == pin {
			v = 1
		}
		err = multierr.Append(err, line.SetValue(v))
	}
	return err
}

// AllLow drops every pin in the group
func (l *Lines) AllLow() error {
	var err error
	for _, line := range l.lines {
		err = multierr.Append(err, line.SetValue(0))
	}
	return err
}

// Close drops all pins and releases the lines and chip
func (l *Lines) Close() error {
	var err error
	for _, line := range l.lines {
		_ = line.SetValue(0)
		err = multierr.Append(err, line.Close())
	}
	if l.chip != nil {
		err = multierr.Append(err, l.chip.Close())
	}
	return err
}
