package transport

import (
	"testing"
	"time"

	"relaycode-go/errcode"
	"relaycode-go/platform"
)

func TestDirectLink_SendAppendsNewline(t *testing.T) {
	u := platform.NewLoopUART()
	d := NewDirectLink(u)

	if !d.Connected() {
		t.Fatal("direct link must always report connected")
	}
	if err := d.SendLine([]byte(`{"type":"heater","state":"on"}`)); err != nil {
		t.Fatalf("SendLine: %v", err)
	}
	want := "{\"type\":\"heater\",\"state\":\"on\"}\n"
	if got := string(u.Written()); got != want {
		t.Fatalf("wrote %q, want %q", got, want)
	}
	if _, ok := d.TryReceiveLine(); ok {
		t.Fatal("direct link has no inbound channel")
	}
}

func TestWirelessSerial_UnpairedDropsButMirrors(t *testing.T) {
	radio := platform.NewLoopUART()
	debug := platform.NewLoopUART()
	w := NewWirelessSerial(radio, debug, 0)

	err := w.SendLine([]byte("abc"))
	if errcode.Of(err) != errcode.Offline {
		t.Fatalf("err = %v, want Offline", err)
	}
	if got := string(radio.Written()); got != "" {
		t.Fatalf("radio got %q while unpaired", got)
	}
	if got := string(debug.Written()); got != "abc\n" {
		t.Fatalf("debug mirror got %q, want %q", got, "abc\n")
	}
}

func TestWirelessSerial_PairedSendsAndMirrors(t *testing.T) {
	radio := platform.NewLoopUART()
	debug := platform.NewLoopUART()
	w := NewWirelessSerial(radio, debug, 0)
	w.SetPaired(true)

	if !w.Connected() {
		t.Fatal("paired link must report connected")
	}
	if err := w.SendLine([]byte("abc")); err != nil {
		t.Fatalf("SendLine: %v", err)
	}
	if got := string(radio.Written()); got != "abc\n" {
		t.Fatalf("radio got %q, want %q", got, "abc\n")
	}
	if got := string(debug.Written()); got != "abc\n" {
		t.Fatalf("debug mirror got %q, want %q", got, "abc\n")
	}
}

func TestWirelessSerial_NilDebug(t *testing.T) {
	w := NewWirelessSerial(platform.NewLoopUART(), nil, 0)
	w.SetPaired(true)
	if err := w.SendLine([]byte("abc")); err != nil {
		t.Fatalf("SendLine: %v", err)
	}
}

func TestWirelessSerial_ReceivesFramedLines(t *testing.T) {
	radio := platform.NewLoopUART()
	w := NewWirelessSerial(radio, nil, 0)

	radio.Inject([]byte("HEATER_ON\r\n\nHEATER_OFF\npartial"))
	w.Poll(time.Now())

	line, ok := w.TryReceiveLine()
	if !ok || string(line) != "HEATER_ON" {
		t.Fatalf("first line = %q, %v", line, ok)
	}
	// The empty line between the commands is swallowed by the transport.
	line, ok = w.TryReceiveLine()
	if !ok || string(line) != "HEATER_OFF" {
		t.Fatalf("second line = %q, %v", line, ok)
	}
	if _, ok := w.TryReceiveLine(); ok {
		t.Fatal("partial line must not surface")
	}

	radio.Inject([]byte("\n"))
	w.Poll(time.Now())
	line, ok = w.TryReceiveLine()
	if !ok || string(line) != "partial" {
		t.Fatalf("completed partial = %q, %v", line, ok)
	}
}
