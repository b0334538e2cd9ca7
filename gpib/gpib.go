/*Package gpib speaks to instruments through a Prologix-style GPIB
controller-in-charge.

The adapter itself is reached over a byte pipe (USB virtual COM port or
an Ethernet socket); anything sent down the pipe is forwarded verbatim
to the currently addressed instrument, except lines starting with "++"
which configure the adapter.  See the vcp subpackage for opening the
serial flavor.

The controller is a single-owner handle; instruments on the same bus are
addressed one at a time through it.
*/
package gpib

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"go.uber.org/multierr"
)

// Controller models a GPIB controller-in-charge.
type Controller struct {
	rw          io.ReadWriter
	primaryAddr int
	auto        bool
	term        byte
	readTimeout int // milliseconds, as the adapter wants it
}

// Option applies a configuration option to the controller.
type Option func(*Controller)

// WithReadTimeout sets the adapter's read timeout in milliseconds.
// The default is 500.
func WithReadTimeout(ms int) Option {
	return func(c *Controller) { c.readTimeout = ms }
}

// NewController creates a controller-in-charge for the instrument at the
// given primary address, speaking through rw.  Enable clear to send the
// Selected Device Clear message to the instrument during setup.
func NewController(rw io.ReadWriter, addr int, clear bool, opts ...Option) (*Controller, error) {
	c := &Controller{
		rw:          rw,
		primaryAddr: addr,
		auto:        false,
		term:        '\n',
		readTimeout: 500,
	}
	for _, opt := range opts {
		opt(c)
	}
	if addr < 0 || addr > 30 {
		return nil, fmt.Errorf("invalid primary address %d (must be 0-30)", addr)
	}

	cmds := []string{
		"savecfg 0", // don't wear out the adapter's EPROM
		fmt.Sprintf("addr %d", c.primaryAddr),
		"mode 1", // controller-in-charge
		"auto 0", // no read-after-write; we address the instrument to talk explicitly
		"eoi 1",  // assert EOI with the last character
		"eos 0",  // CRLF GPIB termination
		fmt.Sprintf("read_tmo_ms %d", c.readTimeout),
		fmt.Sprintf("eot_char %d", c.term),
		"eot_enable 1", // append term when EOI detected, so reads have a delimiter
	}
	if clear {
		cmds = append(cmds, "clr")
	}
	for _, cmd := range cmds {
		if err := c.CommandController(cmd); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Command formats according to a format specifier if provided and sends
// the resulting ASCII command to the addressed instrument.
func (c *Controller) Command(format string, a ...interface{}) error {
	cmd := format
	if len(a) > 0 {
		cmd = fmt.Sprintf(format, a...)
	}
	_, err := fmt.Fprintf(c.rw, "%s%c", strings.TrimSpace(cmd), c.term)
	return err
}

// Query sends the given command to the addressed instrument, addresses
// it to talk, and returns its response with the termination stripped.
func (c *Controller) Query(cmd string) (string, error) {
	if err := c.Command(cmd); err != nil {
		return "", fmt.Errorf("error writing command: %w", err)
	}
	return c.Read()
}

// Read addresses the instrument to talk and returns one response with
// the termination stripped.  Use it when an instrument answers a
// command that was sent separately.
func (c *Controller) Read() (string, error) {
	if !c.auto {
		if err := c.CommandController("read eoi"); err != nil {
			return "", err
		}
	}
	s, err := bufio.NewReader(c.rw).ReadString(c.term)
	if err == io.EOF {
		err = nil
	}
	return strings.TrimRight(s, "\r\n"), err
}

// CommandController sends the given command to the adapter itself.  The
// "++" prefix and termination are added here.
func (c *Controller) CommandController(cmd string) error {
	_, err := fmt.Fprintf(c.rw, "++%s%c", strings.ToLower(strings.TrimSpace(cmd)), c.term)
	return err
}

// QueryController sends the given command to the adapter itself and
// returns its response.
func (c *Controller) QueryController(cmd string) (string, error) {
	if err := c.CommandController(cmd); err != nil {
		return "", err
	}
	s, err := bufio.NewReader(c.rw).ReadString(c.term)
	return strings.TrimRight(s, "\r\n"), err
}

// Version returns the adapter's version string.
func (c *Controller) Version() (string, error) {
	return c.QueryController("ver")
}

// Close returns the instrument to local control and, if the underlying
// pipe is a Closer, closes it.
func (c *Controller) Close() error {
	err := c.CommandController("loc")
	if closer, ok := c.rw.(io.Closer); ok {
		err = multierr.Append(err, closer.Close())
	}
	return err
}
