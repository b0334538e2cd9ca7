package keithley

import (
	"fmt"
	"strings"
	"testing"
)

// busRecorder records commands and answers queries with a fixed reading
type busRecorder struct {
	cmds    []string
	reading string
}

func (b *busRecorder) Command(format string, a ...interface{}) error {
	b.cmds = append(b.cmds, fmt.Sprintf(format, a...))
	return nil
}

func (b *busRecorder) Query(cmd string) (string, error) {
	b.cmds = append(b.cmds, cmd)
	return b.reading, nil
}

func TestK236StartUpSendsManualCommands(t *testing.T) {
	rec := &busRecorder{}
	k := NewK236(rec)
	err := k.StartUp("Volts - dc", "Disabled", "LineCycle (60Hz)")
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{"F0,0X", "P0X", "S2X", "G4,2,0X", "O0X", "N1X"}
	if len(rec.cmds) != len(expected) {
		t.Fatalf("expected %d commands, got %v", len(expected), rec.cmds)
	}
	for i, cmd := range expected {
		if rec.cmds[i] != cmd {
			t.Errorf("command %d: expected %q, got %q", i, cmd, rec.cmds[i])
		}
	}
}

func TestK236StartUpRejectsUnknownOptions(t *testing.T) {
	k := NewK236(&busRecorder{})
	if err := k.StartUp("Volts - ac", "Disabled", "Fast"); err == nil {
		t.Error("expected error for unknown function")
	}
	if err := k.StartUp("Volts - dc", "64 readings", "Fast"); err == nil {
		t.Error("expected error for unknown filter")
	}
	if err := k.StartUp("Volts - dc", "Disabled", "Slow"); err == nil {
		t.Error("expected error for unknown integration time")
	}
}

func TestK236RunBiasesAndMeasures(t *testing.T) {
	rec := &busRecorder{reading: "+1.234E-9"}
	k := NewK236(rec)
	i, err := k.Run(5, 0.5, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if i != 1.234e-9 {
		t.Errorf("expected 1.234e-9, got %v", i)
	}
	joined := strings.Join(rec.cmds, ";")
	if !strings.Contains(joined, "L0.1,0X") {
		t.Errorf("compliance not set: %v", rec.cmds)
	}
	if !strings.Contains(joined, "B5,0,500") {
		t.Errorf("bias not set: %v", rec.cmds)
	}
	if rec.cmds[len(rec.cmds)-1] != "H0X" {
		t.Errorf("expected immediate trigger last, got %v", rec.cmds)
	}
}

func TestDecodeSerialPoll(t *testing.T) {
	sp := DecodeSerialPoll(0b1000_1010)
	if !sp.SweepDone || !sp.ReadingDone || !sp.Compliance {
		t.Errorf("expected sweep done, reading done, compliance; got %+v", sp)
	}
	if sp.Warning || sp.Error || sp.ReadyForTrigger || sp.TriggerOut {
		t.Errorf("unexpected flags set: %+v", sp)
	}
}

func TestK617AutoConfigureBuildsOneCommandString(t *testing.T) {
	rec := &busRecorder{}
	k := NewK617(rec)
	if err := k.AutoConfigure("Coulombmeter"); err != nil {
		t.Fatal(err)
	}
	if len(rec.cmds) != 1 {
		t.Fatalf("expected a single buffered command, got %v", rec.cmds)
	}
	cmd := rec.cmds[0]
	if !strings.HasPrefix(cmd, "F3") {
		t.Errorf("expected coulombs function first, got %q", cmd)
	}
	if !strings.HasSuffix(cmd, "X") {
		t.Errorf("expected trailing execute, got %q", cmd)
	}
	for _, piece := range []string{"R0", "C0", "Z0", "Q7", "G1", "T5", "M0"} {
		if !strings.Contains(cmd, piece) {
			t.Errorf("expected %q in %q", piece, cmd)
		}
	}
}

func TestK617AutoConfigureRejectsUnknownMode(t *testing.T) {
	k := NewK617(&busRecorder{})
	if err := k.AutoConfigure("Wattmeter"); err == nil {
		t.Error("expected error for unknown meter mode")
	}
}

func TestK617Read(t *testing.T) {
	rec := &busRecorder{reading: "-2.5E-12\r\n"}
	k := NewK617(rec)
	v, err := k.Read()
	if err != nil {
		t.Fatal(err)
	}
	if v != -2.5e-12 {
		t.Errorf("expected -2.5e-12, got %v", v)
	}
}
