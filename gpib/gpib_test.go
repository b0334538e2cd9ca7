package gpib_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ifgw-pl/golabspec/gpib"
)

// pipe records writes and replays canned responses
type pipe struct {
	wrote bytes.Buffer
	reply bytes.Buffer
}

func (p *pipe) Write(b []byte) (int, error) { return p.wrote.Write(b) }
func (p *pipe) Read(b []byte) (int, error)  { return p.reply.Read(b) }

func TestNewControllerConfiguresAdapter(t *testing.T) {
	p := &pipe{}
	_, err := gpib.NewController(p, 16, false)
	if err != nil {
		t.Fatal(err)
	}
	sent := p.wrote.String()
	for _, cmd := range []string{"++addr 16\n", "++mode 1\n", "++auto 0\n", "++eoi 1\n", "++read_tmo_ms 500\n"} {
		if !strings.Contains(sent, cmd) {
			t.Errorf("setup did not send %q", cmd)
		}
	}
	if strings.Contains(sent, "++clr") {
		t.Error("clear was sent without being requested")
	}
}

func TestNewControllerRejectsBadAddress(t *testing.T) {
	for _, addr := range []int{-1, 31} {
		if _, err := gpib.NewController(&pipe{}, addr, false); err == nil {
			t.Errorf("expected error for address %d", addr)
		}
	}
}

func TestCommandGoesToInstrumentVerbatim(t *testing.T) {
	p := &pipe{}
	c, err := gpib.NewController(p, 5, false)
	if err != nil {
		t.Fatal(err)
	}
	p.wrote.Reset()
	if err := c.Command("F0R0X"); err != nil {
		t.Fatal(err)
	}
	if got := p.wrote.String(); got != "F0R0X\n" {
		t.Errorf("expected terminated instrument command, got %q", got)
	}
}

func TestQueryAddressesInstrumentToTalk(t *testing.T) {
	p := &pipe{}
	c, err := gpib.NewController(p, 5, false)
	if err != nil {
		t.Fatal(err)
	}
	p.wrote.Reset()
	p.reply.WriteString("+1.234E-9\n")
	resp, err := c.Query("X")
	if err != nil {
		t.Fatal(err)
	}
	if resp != "+1.234E-9" {
		t.Errorf("expected stripped response, got %q", resp)
	}
	sent := p.wrote.String()
	if !strings.Contains(sent, "X\n") || !strings.Contains(sent, "++read eoi\n") {
		t.Errorf("expected command then read-after-write, got %q", sent)
	}
}
