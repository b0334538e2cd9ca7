// Package minolta provides an interface to Konica Minolta CS-100A colorimeters.
package minolta

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tarm/serial"
)

// settleTime is how long the meter needs between a command and its reply
const settleTime = 100 * time.Millisecond

var (
	// Calibrations maps calibration channel names from the front panel
	// to their MDS codes
	Calibrations = map[string]string{
		"PRESET": "00",
		"VARI.":  "01",
	}

	// MeasurementModes maps measurement mode names to their MDS codes
	MeasurementModes = map[string]string{
		"ABS.":  "04",
		"DIFF.": "05",
	}

	// Responses maps response speed names to their MDS codes
	Responses = map[string]string{
		"FAST": "06",
		"SLOW": "07",
	}

	// statusCodes maps the four byte status prefix of each reply to a
	// human readable description, per the CS-100A manual
	statusCodes = map[string]string{
		"OK00": "normal operation",
		"OK11": "chromaticity measuring range over",
		"OK12": "luminance display range over",
		"OK13": "luminance display range under",
		"ER00": "command error",
		"ER01": "setting error",
		"ER11": "memory value error",
		"ER10": "luminance and chromaticity measuring range over",
		"ER12": "luminance and chromaticity display range simultaneous over",
		"ER20": "EEPROM error",
		"ER30": "battery out",
	}
)

// Chromaticity is a single colorimetric measurement in CIE xyY space
type Chromaticity struct {
	// Luminance is the Y tristimulus value in cd/m^2
	Luminance float64 `json:"luminance"`

	// X is the x chromaticity coordinate
	X float64 `json:"x"`

	// Y is the y chromaticity coordinate
	Y float64 `json:"y"`
}

func makeSerConf(addr string) *serial.Config {
	return &serial.Config{
		Name:        addr,
		Baud:        4800,
		Size:        7,
		Parity:      serial.ParityEven,
		StopBits:    serial.Stop2,
		ReadTimeout: 10 * time.Second,
	}
}

// CS100A talks to a CS-100A colorimeter over RS-232.  The meter must be
// powered on while holding the F key to enable remote mode.
type CS100A struct {
	conn io.ReadWriteCloser
}

// NewCS100A opens the serial link to a colorimeter on the given port,
// e.g. /dev/ttyUSB2
func NewCS100A(addr string) (*CS100A, error) {
	conn, err := serial.OpenPort(makeSerConf(addr))
	if err != nil {
		return nil, err
	}
	return &CS100A{conn: conn}, nil
}

func (cs *CS100A) writeRead(cmd string, replyLen int) (string, error) {
	_, err := io.WriteString(cs.conn, cmd+"\r\n")
	if err != nil {
		return "", err
	}
	time.Sleep(settleTime)
	buf := make([]byte, replyLen)
	n, err := io.ReadAtLeast(cs.conn, buf, 4)
	if err != nil {
		return "", err
	}
	return string(buf[:n]), nil
}

// checkStatus validates the four byte status prefix of a reply and
// returns the payload after it
func checkStatus(reply string) (string, error) {
	if len(reply) < 4 {
		return "", fmt.Errorf("reply %q too short to carry a status code", reply)
	}
	code := reply[:4]
	if code != "OK00" {
		desc, ok := statusCodes[code]
		if !ok {
			desc = "unrecognized status"
		}
		return "", fmt.Errorf("colorimeter returned %s: %s", code, desc)
	}
	return reply[4:], nil
}

func (cs *CS100A) setMode(code string) error {
	reply, err := cs.writeRead("MDS,"+code, 6)
	if err != nil {
		return err
	}
	_, err = checkStatus(reply)
	return err
}

// StartUp configures the calibration channel, measurement mode, and
// response speed.  The names are those printed on the front panel, see
// the package level maps for the recognized values.
func (cs *CS100A) StartUp(calibration, mode, response string) error {
	cal, ok := Calibrations[calibration]
	if !ok {
		return fmt.Errorf("calibration %q not recognized, must be PRESET or VARI.", calibration)
	}
	meas, ok := MeasurementModes[mode]
	if !ok {
		return fmt.Errorf("measurement mode %q not recognized, must be ABS. or DIFF.", mode)
	}
	resp, ok := Responses[response]
	if !ok {
		return fmt.Errorf("response speed %q not recognized, must be FAST or SLOW", response)
	}
	for _, code := range []string{cal, meas, resp} {
		if err := cs.setMode(code); err != nil {
			return err
		}
	}
	return nil
}

// Measure triggers a measurement and returns the luminance and
// chromaticity coordinates
func (cs *CS100A) Measure() (Chromaticity, error) {
	var c Chromaticity
	reply, err := cs.writeRead("MES", 28)
	if err != nil {
		return c, err
	}
	payload, err := checkStatus(strings.TrimRight(reply, "\r\n"))
	if err != nil {
		return c, err
	}
	fields := strings.Fields(payload)
	if len(fields) < 3 {
		return c, fmt.Errorf("measurement reply %q did not carry three values", reply)
	}
	out := make([]float64, 3)
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(strings.TrimSuffix(fields[i], ","), 64)
		if err != nil {
			return c, err
		}
		out[i] = f
	}
	c.Luminance = out[0]
	c.X = out[1]
	c.Y = out[2]
	return c, nil
}

// ClearMemory erases the stored measurement data
func (cs *CS100A) ClearMemory() error {
	reply, err := cs.writeRead("CLE", 6)
	if err != nil {
		return err
	}
	_, err = checkStatus(reply)
	return err
}

// Close releases the serial port
func (cs *CS100A) Close() error {
	return cs.conn.Close()
}
