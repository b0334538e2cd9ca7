/*Package lakeshore provides tools for working with Lakeshore 335
temperature controllers.*/
package lakeshore

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tarm/serial"
	"golang.org/x/time/rate"

	"github.com/ifgw-pl/golabspec/temperature"
)

// per the Lakeshore 335 manual, the temperature controller serial
// interface uses the following schema:
//
// baud 57600
// 10 bits per character, 1 start, 7 data, 1 parity, 1 stop
// odd parity
// terminator CRLF
// < 20 commands per second
//
// command messages look like <command><space><parameter data><terminators>
// query messages look like <query mnemonic><?><space><parameter data><terminators>
var terminators = []byte("\r\n")

// HeaterRanges maps heater range names to their RANGE codes
var HeaterRanges = map[string]string{
	"Off":    "0",
	"Low":    "1",
	"Medium": "2",
	"High":   "3",
}

func makeSerConf(addr string) *serial.Config {
	return &serial.Config{
		Name:        addr,
		Baud:        57600,
		Size:        7,
		Parity:      serial.ParityOdd,
		StopBits:    serial.Stop1,
		ReadTimeout: 1 * time.Second}
}

// TempController has a serial connection and can make commands
type TempController struct {
	conn io.ReadWriteCloser

	// the manual caps the interface at 20 commands per second; the
	// limiter keeps polling loops legal
	limiter *rate.Limiter
}

// NewController returns a new TempController instance
func NewController(addr string) (*TempController, error) {
	conn, err := serial.OpenPort(makeSerConf(addr))
	if err != nil {
		return nil, err
	}
	return &TempController{
		conn:    conn,
		limiter: rate.NewLimiter(rate.Limit(20), 1),
	}, nil
}

// MkMsg generates a message that conforms to the IEEE standard
func MkMsg(cmd, parameter string) []byte {
	if parameter != "" {
		cmd = cmd + " " + parameter
	}
	return append([]byte(cmd), terminators...)
}

// Send sends a command to the controller, appending terminators
func (tc *TempController) Send(cmd, parameter string) error {
	err := tc.limiter.Wait(context.Background())
	if err != nil {
		return err
	}
	_, err = tc.conn.Write(MkMsg(cmd, parameter))
	return err
}

// Recv reads a reply from the hardware and converts it to a string
func (tc *TempController) Recv() (string, error) {
	reader := bufio.NewReader(tc.conn)
	bytes, err := reader.ReadBytes('\n')
	return strings.TrimRight(string(bytes), "\r\n"), err
}

func (tc *TempController) queryFloat(cmd, parameter string) (float64, error) {
	err := tc.Send(cmd, parameter)
	if err != nil {
		return 0, err
	}
	txt, err := tc.Recv()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(txt, 64)
}

// ID returns the *IDN? response from the controller
func (tc *TempController) ID() (string, error) {
	err := tc.Send("*IDN?", "")
	if err != nil {
		return "", err
	}
	return tc.Recv()
}

// StartUp clears the interface and labels the sensor inputs the way
// the bench is wired: input A controls, input B reads the sample
func (tc *TempController) StartUp() error {
	for _, msg := range [][2]string{
		{"*CLS", ""},
		{"INNAME", "A,Control"},
		{"INNAME", "B,Sample"},
	} {
		if err := tc.Send(msg[0], msg[1]); err != nil {
			return err
		}
	}
	return nil
}

// ReadKelvin reads the temperature of the given input ("A" or "B") in K
func (tc *TempController) ReadKelvin(input string) (temperature.Kelvin, error) {
	f, err := tc.queryFloat("KRDG?", input)
	return temperature.Kelvin(f), err
}

// ReadCelsius reads the temperature of the given input in C
func (tc *TempController) ReadCelsius(input string) (temperature.Celsius, error) {
	k, err := tc.ReadKelvin(input)
	return temperature.K2C(k), err
}

// Setpoint reads the control setpoint of the given loop in K
func (tc *TempController) Setpoint(loop string) (temperature.Kelvin, error) {
	f, err := tc.queryFloat("SETP?", loop)
	return temperature.Kelvin(f), err
}

// SetSetpoint writes the control setpoint of loop 1 in K
func (tc *TempController) SetSetpoint(sp temperature.Kelvin) error {
	return tc.Send("SETP", fmt.Sprintf("1,%v", float64(sp)))
}

// SetHeaterRange sets the loop 1 heater range by its front panel name
// ("Off", "Low", "Medium", "High")
func (tc *TempController) SetHeaterRange(rng string) error {
	code, ok := HeaterRanges[rng]
	if !ok {
		return fmt.Errorf("unknown heater range %q", rng)
	}
	return tc.Send("RANGE", "1,"+code)
}

// HeaterOutput reads the loop 1 heater output in percent
func (tc *TempController) HeaterOutput() (float64, error) {
	return tc.queryFloat("HTR?", "1")
}

// PID reads the loop 1 control constants:
// kP - linear / proportional term
// kI - integral term
// kD - derivative term
func (tc *TempController) PID() ([]float64, error) {
	err := tc.Send("PID?", "1")
	if err != nil {
		return []float64{0, 0, 0}, err
	}
	txt, err := tc.Recv()
	if err != nil {
		return []float64{0, 0, 0}, err
	}
	pieces := strings.Split(txt, ",")
	numeric := make([]float64, 3)
	for i, v := range pieces {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return numeric, err
		}
		numeric[i] = f
	}
	return numeric, nil
}

// WaitSettle polls input B until it is within tol of the loop 1
// setpoint, or ctx expires.  The command rate limiter keeps the polling
// legal, no extra sleep is needed.
func (tc *TempController) WaitSettle(ctx context.Context, tol temperature.Kelvin) error {
	sp, err := tc.Setpoint("1")
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		t, err := tc.ReadKelvin("B")
		if err != nil {
			return err
		}
		if math.Abs(float64(t-sp)) <= float64(tol) {
			return nil
		}
	}
}

// Close releases the serial port
func (tc *TempController) Close() error {
	return tc.conn.Close()
}
