package relay

import (
	"errors"
	"strings"
	"testing"
	"time"

	"relaycode-go/errcode"
	"relaycode-go/platform"
)

type fakeTransport struct {
	sent    []string
	offline bool
	sendErr error
	inbox   []string
	polls   int
}

func (f *fakeTransport) SendLine(line []byte) error {
	if f.offline {
		return errcode.Offline
	}
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, string(line))
	return nil
}

func (f *fakeTransport) Connected() bool { return !f.offline }
func (f *fakeTransport) Poll(time.Time) { f.polls++ }

func (f *fakeTransport) TryReceiveLine() ([]byte, bool) {
	if len(f.inbox) == 0 {
		return nil, false
	}
	line := f.inbox[0]
	f.inbox = f.inbox[1:]
	return []byte(line), true
}

type diagRec struct {
	codes []errcode.Code
	msgs  []string
}

func (d *diagRec) fn() Diag {
	return func(code errcode.Code, msg string) {
		d.codes = append(d.codes, code)
		d.msgs = append(d.msgs, msg)
	}
}

func newTestCore(tr *fakeTransport) (*Core, *platform.LoopUART, *platform.LoopUART, *platform.FakePin, *diagRec) {
	up := platform.NewLoopUART()
	cmd := platform.NewLoopUART()
	pin := platform.NewFakePin(15)
	d := &diagRec{}
	c := NewCore(Options{
		Transport: tr,
		Upstream:  up,
		Commands:  cmd,
		Heater:    pin,
		LineMax:   64,
		Diag:      d.fn(),
	})
	return c, up, cmd, pin, d
}

func TestCore_ForwardsUpstreamLines(t *testing.T) {
	tr := &fakeTransport{}
	c, up, _, _, _ := newTestCore(tr)

	up.Inject([]byte("one\r\ntwo\n"))
	c.Step(time.Now())

	if len(tr.sent) != 2 || tr.sent[0] != "one" || tr.sent[1] != "two" {
		t.Fatalf("sent = %q", tr.sent)
	}
	if c.Packets() != 2 {
		t.Fatalf("packets = %d, want 2", c.Packets())
	}
	if tr.polls != 1 {
		t.Fatalf("polls = %d, want 1", tr.polls)
	}
}

func TestCore_DropsEmptyLines(t *testing.T) {
	tr := &fakeTransport{}
	c, up, _, _, _ := newTestCore(tr)

	up.Inject([]byte("\n\r\n\n"))
	c.Step(time.Now())

	if len(tr.sent) != 0 {
		t.Fatalf("sent = %q, want none", tr.sent)
	}
	if c.Packets() != 0 {
		t.Fatalf("packets = %d, want 0", c.Packets())
	}
}

func TestCore_OfflineSkipsSilently(t *testing.T) {
	tr := &fakeTransport{offline: true}
	c, up, _, _, d := newTestCore(tr)

	up.Inject([]byte("lost\n"))
	c.Step(time.Now())

	if c.Packets() != 0 {
		t.Fatalf("packets = %d, want 0", c.Packets())
	}
	if len(d.codes) != 0 {
		t.Fatalf("diags = %v, want none for an offline link", d.codes)
	}
}

func TestCore_SendFailureDiag(t *testing.T) {
	tr := &fakeTransport{sendErr: errors.New("io broke")}
	c, up, _, _, d := newTestCore(tr)

	up.Inject([]byte("x\n"))
	c.Step(time.Now())

	if len(d.codes) != 1 || d.codes[0] != errcode.SendFailed {
		t.Fatalf("diags = %v, want one SendFailed", d.codes)
	}
}

func TestCore_OverflowDiagOncePerSegment(t *testing.T) {
	tr := &fakeTransport{}
	c, up, _, _, d := newTestCore(tr)

	up.Inject([]byte(strings.Repeat("a", 200) + "\nok\n"))
	c.Step(time.Now())

	if len(tr.sent) != 1 || tr.sent[0] != "ok" {
		t.Fatalf("sent = %q, want only the line after the oversized one", tr.sent)
	}
	if len(d.codes) != 1 || d.codes[0] != errcode.Overflow {
		t.Fatalf("diags = %v, want one Overflow", d.codes)
	}
}

func TestCore_HeaterCommandsFromWire(t *testing.T) {
	tr := &fakeTransport{}
	c, _, cmd, pin, _ := newTestCore(tr)

	if pin.Get() {
		t.Fatal("heater must be off at boot")
	}

	cmd.Inject([]byte("  HEATER_ON \r\n"))
	c.Step(time.Now())
	if !c.HeaterOn() || !pin.Get() {
		t.Fatal("heater not on after HEATER_ON")
	}
	if len(tr.sent) != 1 || tr.sent[0] != `{"type":"heater","state":"on"}` {
		t.Fatalf("confirmation = %q", tr.sent)
	}

	cmd.Inject([]byte("HEATER_OFF\n"))
	c.Step(time.Now())
	if c.HeaterOn() || pin.Get() {
		t.Fatal("heater not off after HEATER_OFF")
	}
	if len(tr.sent) != 2 || tr.sent[1] != `{"type":"heater","state":"off"}` {
		t.Fatalf("confirmation = %q", tr.sent)
	}
}

func TestCore_UnknownLinesIgnored(t *testing.T) {
	tr := &fakeTransport{}
	c, _, cmd, pin, d := newTestCore(tr)

	cmd.Inject([]byte("heater_on\nbanana\n\n"))
	c.Step(time.Now())

	if c.HeaterOn() || pin.Get() {
		t.Fatal("unknown lines must not drive the heater")
	}
	if len(tr.sent) != 0 || len(d.codes) != 0 {
		t.Fatalf("sent = %q, diags = %v, want none", tr.sent, d.codes)
	}
}

func TestCore_ConfirmationsNotCounted(t *testing.T) {
	tr := &fakeTransport{inbox: []string{"HEATER_ON"}}
	c, _, _, _, _ := newTestCore(tr)

	c.Step(time.Now())

	if len(tr.sent) != 1 || tr.sent[0] != `{"type":"heater","state":"on"}` {
		t.Fatalf("sent = %q, want only the confirmation", tr.sent)
	}
	if c.Packets() != 0 {
		t.Fatalf("Packets() = %d after zero forwarded data lines, want 0", c.Packets())
	}

	// Forwarded data lines still count.
	c.Forward([]byte("data"))
	if c.Packets() != 1 {
		t.Fatalf("Packets() = %d after one forwarded data line, want 1", c.Packets())
	}
}

func TestCore_CommandsFromTransportReturnChannel(t *testing.T) {
	tr := &fakeTransport{inbox: []string{"HEATER_ON"}}
	c, _, _, pin, _ := newTestCore(tr)

	c.Step(time.Now())
	if !c.HeaterOn() || !pin.Get() {
		t.Fatal("heater not on after inbound transport command")
	}
}

func TestCore_NilOptionalPorts(t *testing.T) {
	tr := &fakeTransport{inbox: []string{"HEATER_ON"}}
	c := NewCore(Options{Transport: tr, LineMax: 64})

	c.Step(time.Now())
	if !c.HeaterOn() {
		t.Fatal("core without pins/ports must still track heater state")
	}
}
