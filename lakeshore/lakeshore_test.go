package lakeshore

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

type fakeConn struct {
	wrote   bytes.Buffer
	replies []string
}

func (f *fakeConn) Write(p []byte) (int, error) { return f.wrote.Write(p) }
func (f *fakeConn) Read(p []byte) (int, error) {
	if len(f.replies) == 0 {
		return 0, nil
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return copy(p, reply+"\r\n"), nil
}
func (f *fakeConn) Close() error { return nil }

func testController(conn *fakeConn) *TempController {
	return &TempController{conn: conn, limiter: rate.NewLimiter(rate.Inf, 1)}
}

func TestMkMsgTerminatesCRLF(t *testing.T) {
	msg := MkMsg("KRDG?", "B")
	if string(msg) != "KRDG? B\r\n" {
		t.Errorf("expected 'KRDG? B\\r\\n', got %q", msg)
	}
	msg = MkMsg("*CLS", "")
	if string(msg) != "*CLS\r\n" {
		t.Errorf("expected '*CLS\\r\\n', got %q", msg)
	}
}

func TestReadKelvin(t *testing.T) {
	conn := &fakeConn{replies: []string{"+295.12"}}
	tc := testController(conn)
	k, err := tc.ReadKelvin("B")
	if err != nil {
		t.Fatal(err)
	}
	if float64(k) != 295.12 {
		t.Errorf("expected 295.12 K, got %v", k)
	}
	if conn.wrote.String() != "KRDG? B\r\n" {
		t.Errorf("unexpected wire traffic %q", conn.wrote.String())
	}
}

func TestReadCelsiusConverts(t *testing.T) {
	conn := &fakeConn{replies: []string{"+273.15"}}
	tc := testController(conn)
	c, err := tc.ReadCelsius("A")
	if err != nil {
		t.Fatal(err)
	}
	if float64(c) != 0 {
		t.Errorf("expected 0 C, got %v", c)
	}
}

func TestSetHeaterRangeUsesFrontPanelNames(t *testing.T) {
	conn := &fakeConn{}
	tc := testController(conn)
	if err := tc.SetHeaterRange("Medium"); err != nil {
		t.Fatal(err)
	}
	if conn.wrote.String() != "RANGE 1,2\r\n" {
		t.Errorf("unexpected wire traffic %q", conn.wrote.String())
	}
	if err := tc.SetHeaterRange("Scorching"); err == nil {
		t.Error("expected error for unknown range name")
	}
}

func TestStartUpNamesInputs(t *testing.T) {
	conn := &fakeConn{}
	tc := testController(conn)
	if err := tc.StartUp(); err != nil {
		t.Fatal(err)
	}
	sent := conn.wrote.String()
	for _, cmd := range []string{"*CLS\r\n", "INNAME A,Control\r\n", "INNAME B,Sample\r\n"} {
		if !strings.Contains(sent, cmd) {
			t.Errorf("startup did not send %q", cmd)
		}
	}
}

func TestPID(t *testing.T) {
	conn := &fakeConn{replies: []string{"+50.0,+20.0,+0.0"}}
	tc := testController(conn)
	pid, err := tc.PID()
	if err != nil {
		t.Fatal(err)
	}
	if pid[0] != 50 || pid[1] != 20 || pid[2] != 0 {
		t.Errorf("expected [50 20 0], got %v", pid)
	}
}

func TestWaitSettleReturnsWhenWithinTolerance(t *testing.T) {
	conn := &fakeConn{replies: []string{
		"+300.00", // setpoint
		"+295.00", // far
		"+299.50", // closer
		"+299.95", // settled
	}}
	tc := testController(conn)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := tc.WaitSettle(ctx, 0.1); err != nil {
		t.Fatal(err)
	}
}

func TestWaitSettleHonorsContext(t *testing.T) {
	conn := &fakeConn{replies: []string{"+300.00"}}
	// all subsequent reads return empty, which fails the float parse;
	// use an already-cancelled context so we never get that far
	tc := testController(conn)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tc.WaitSettle(ctx, 0.1); err == nil {
		t.Error("expected context error")
	}
}
