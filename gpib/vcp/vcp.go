// Package vcp opens the USB virtual COM port of a Prologix-style GPIB
// adapter.
package vcp

import (
	"time"

	"go.bug.st/serial"
)

// Open opens the virtual COM port at the given filesystem address
// (e.g. /dev/ttyUSB0) with the adapter's fixed line settings.  The
// returned port satisfies io.ReadWriteCloser and can be handed straight
// to gpib.NewController.
func Open(addr string) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(addr, mode)
	if err != nil {
		return nil, err
	}
	err = port.SetReadTimeout(time.Second)
	if err != nil {
		port.Close()
		return nil, err
	}
	return port, nil
}
