package stepmotor_test

import (
	"testing"
	"time"

	"github.com/ifgw-pl/golabspec/stepmotor"
)

type pinRecorder struct {
	pins []int
}

func (p *pinRecorder) Activate(pin int) error {
	p.pins = append(p.pins, pin)
	return nil
}

func newMotor(t *testing.T, rec *pinRecorder) *stepmotor.StepMotor {
	t.Helper()
	m, err := stepmotor.New(rec, time.Microsecond, []int{2, 3, 4, 5})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestNewRejectsBadPinCount(t *testing.T) {
	_, err := stepmotor.New(&pinRecorder{}, time.Microsecond, []int{2, 3, 4})
	if err == nil {
		t.Error("expected error for 3 pin sequence")
	}
	_, err = stepmotor.New(&pinRecorder{}, time.Microsecond, []int{2, 3, 4, 5, 6})
	if err == nil {
		t.Error("expected error for 5 pin sequence")
	}
}

func TestNewRejectsNonPositivePulse(t *testing.T) {
	_, err := stepmotor.New(&pinRecorder{}, 0, []int{2, 3, 4, 5})
	if err == nil {
		t.Error("expected error for zero pulse width")
	}
}

func TestCounterclockwiseWalksPinOrder(t *testing.T) {
	rec := &pinRecorder{}
	m := newMotor(t, rec)
	if err := m.Counterclockwise(6); err != nil {
		t.Fatal(err)
	}
	expected := []int{2, 3, 4, 5, 2, 3}
	if len(rec.pins) != len(expected) {
		t.Fatalf("expected %d activations, got %d", len(expected), len(rec.pins))
	}
	for i, pin := range expected {
		if rec.pins[i] != pin {
			t.Errorf("activation %d: expected pin %d, got %d", i, pin, rec.pins[i])
		}
	}
}

func TestClockwiseWalksReversedPinOrder(t *testing.T) {
	rec := &pinRecorder{}
	m := newMotor(t, rec)
	if err := m.Clockwise(6); err != nil {
		t.Fatal(err)
	}
	expected := []int{5, 4, 3, 2, 5, 4}
	if len(rec.pins) != len(expected) {
		t.Fatalf("expected %d activations, got %d", len(expected), len(rec.pins))
	}
	for i, pin := range expected {
		if rec.pins[i] != pin {
			t.Errorf("activation %d: expected pin %d, got %d", i, pin, rec.pins[i])
		}
	}
}

func TestZeroStepsIsANoop(t *testing.T) {
	rec := &pinRecorder{}
	m := newMotor(t, rec)
	if err := m.Clockwise(0); err != nil {
		t.Fatal(err)
	}
	if err := m.Counterclockwise(0); err != nil {
		t.Fatal(err)
	}
	if len(rec.pins) != 0 {
		t.Errorf("expected no activations, got %d", len(rec.pins))
	}
}

func TestNegativeStepsIsAnError(t *testing.T) {
	rec := &pinRecorder{}
	m := newMotor(t, rec)
	if err := m.Clockwise(-1); err == nil {
		t.Error("expected error for negative step count")
	}
	if len(rec.pins) != 0 {
		t.Error("activations were emitted for a rejected step count")
	}
}

func TestRoundTripVisitsSamePinsInReverse(t *testing.T) {
	rec := &pinRecorder{}
	m := newMotor(t, rec)
	n := 8
	if err := m.Clockwise(n); err != nil {
		t.Fatal(err)
	}
	if err := m.Counterclockwise(n); err != nil {
		t.Fatal(err)
	}
	if len(rec.pins) != 2*n {
		t.Fatalf("expected %d activations, got %d", 2*n, len(rec.pins))
	}
	cw, ccw := rec.pins[:n], rec.pins[n:]
	for i := 0; i < n; i++ {
		if cw[i] != ccw[n-1-i] {
			t.Errorf("activation %d: clockwise pin %d does not mirror counterclockwise pin %d", i, cw[i], ccw[n-1-i])
		}
	}
}

func TestStepCountIsExact(t *testing.T) {
	rec := &pinRecorder{}
	m := newMotor(t, rec)
	for _, n := range []int{1, 3, 4, 7, 200} {
		rec.pins = rec.pins[:0]
		if err := m.Clockwise(n); err != nil {
			t.Fatal(err)
		}
		if len(rec.pins) != n {
			t.Errorf("clockwise(%d): %d activations", n, len(rec.pins))
		}
	}
}
