package keithley

import (
	"io"
	"time"

	"github.com/tarm/serial"
)

// per the model 500 serial interface: 9600 baud, 8 data bits, no
// parity, 2 stop bits, hardware flow control
func makeK500SerConf(addr string) *serial.Config {
	return &serial.Config{
		Name:        addr,
		Baud:        9600,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop2,
		ReadTimeout: 10 * time.Second}
}

// initCommands is the converter's bring-up sequence: wake it, disable
// echo, enable handshake and hold-off, set terminator and timeout codes
var initCommands = []string{
	"I",    // initialize
	"EC;0", // echo off
	"H;1",  // handshake on
	"X;0",  // transmit unmodified
	"TC;2", // GPIB terminator CR LF
	"TB;4", // serial terminator
}

// K500 is a model 500 serial-GPIB converter.  It fronts the GPIB bus
// for machines that only have an RS-232 port; once initialized, bytes
// written to the serial port are forwarded to the addressed instrument.
type K500 struct {
	conn io.ReadWriteCloser
}

// NewK500 opens the converter on the given serial port
func NewK500(addr string) (*K500, error) {
	conn, err := serial.OpenPort(makeK500SerConf(addr))
	if err != nil {
		return nil, err
	}
	return &K500{conn: conn}, nil
}

// Initialize brings the converter up.  The sequence is repeated a few
// times because the converter drops characters while autobauding; the
// last pass wins.
func (k *K500) Initialize() error {
	for i := 0; i < 5; i++ {
		if err := k.send("\r"); err != nil {
			return err
		}
		time.Sleep(100 * time.Millisecond)
		for _, cmd := range initCommands {
			if err := k.send(cmd); err != nil {
				return err
			}
		}
		time.Sleep(500 * time.Millisecond)
		// clear the bus, then remote enable the instrument at
		// address 9 and pulse interface clear
		if err := k.send("C"); err != nil {
			return err
		}
		if err := k.send("OA;09;IFC"); err != nil {
			return err
		}
	}
	return nil
}

func (k *K500) send(cmd string) error {
	_, err := k.conn.Write([]byte(cmd))
	return err
}

// Close releases the serial port
func (k *K500) Close() error {
	return k.conn.Close()
}
