package comm

import (
	"bufio"
	"errors"
	"io"
	"net"
	"time"
)

// ErrTerminatorNotFound is generated when the termination byte is not found
// in a response
var ErrTerminatorNotFound = errors.New("termination byte not found")

// Terminator wraps a ReadWriter, appending the Tx terminator to each write
// and consuming through the Rx terminator on each read.  The terminators
// never appear in the data seen by the consumer.
type Terminator struct {
	rw  io.ReadWriter
	tx  byte
	rx  byte
	buf *bufio.Reader
}

// NewTerminator returns a Terminator wrapping rw with the given terminator
// bytes
func NewTerminator(rw io.ReadWriter, rx, tx byte) *Terminator {
	return &Terminator{rw: rw, tx: tx, rx: rx, buf: bufio.NewReader(rw)}
}

// Write sends p followed by the Tx terminator
func (t *Terminator) Write(p []byte) (int, error) {
	n, err := t.rw.Write(append(p, t.tx))
	if n > len(p) {
		n = len(p) // do not let the consumer see the terminator in the count
	}
	return n, err
}

// Read reads up to and including the Rx terminator, copying everything
// before the terminator into p
func (t *Terminator) Read(p []byte) (int, error) {
	data, err := t.buf.ReadBytes(t.rx)
	if err != nil {
		return copy(p, data), err
	}
	if len(data) == 0 || data[len(data)-1] != t.rx {
		return copy(p, data), ErrTerminatorNotFound
	}
	return copy(p, data[:len(data)-1]), nil
}

// deadliner is implemented by net.Conn and anything else which can have
// an I/O deadline applied
type deadliner interface {
	SetDeadline(time.Time) error
}

// timeout wraps a ReadWriter, applying a deadline before each read or write
type timeout struct {
	rw io.ReadWriter
	d  deadliner
	t  time.Duration
}

// NewTimeout wraps rw such that each Read or Write must complete within t.
// If rw does not support deadlines (e.g., a serial port with its own
// timeout configuration) rw is returned unchanged with a nil error.
func NewTimeout(rw io.ReadWriter, t time.Duration) (io.ReadWriter, error) {
	if d, ok := rw.(deadliner); ok {
		return &timeout{rw: rw, d: d, t: t}, nil
	}
	return rw, nil
}

func (t *timeout) Read(p []byte) (int, error) {
	err := t.d.SetDeadline(time.Now().Add(t.t))
	if err != nil {
		return 0, err
	}
	return t.rw.Read(p)
}

func (t *timeout) Write(p []byte) (int, error) {
	err := t.d.SetDeadline(time.Now().Add(t.t))
	if err != nil {
		return 0, err
	}
	return t.rw.Write(p)
}

// TCPSetup opens a new TCP connection and sets a timeout on connect, read, and write
func TCPSetup(addr string, timeout time.Duration) (net.Conn, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	deadline := time.Now().Add(timeout)
	conn.SetReadDeadline(deadline)
	conn.SetWriteDeadline(deadline)
	return conn, nil
}
