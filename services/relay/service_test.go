package relay

import (
	"context"
	"strings"
	"testing"
	"time"

	"relaycode-go/bus"
	"relaycode-go/platform"
)

type testUARTs struct {
	m map[string]*platform.LoopUART
}

func newTestUARTs(ids ...string) *testUARTs {
	f := &testUARTs{m: make(map[string]*platform.LoopUART)}
	for _, id := range ids {
		f.m[id] = platform.NewLoopUART()
	}
	return f
}

func (f *testUARTs) ByID(id string) (platform.UARTPort, bool) {
	u, ok := f.m[id]
	return u, ok
}

func publishConfig(conn *bus.Connection, section string, payload map[string]any) {
	conn.Publish(&bus.Message{Topic: bus.T("config", section), Payload: payload, Retained: true})
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for " + what)
		}
		time.Sleep(time.Millisecond)
	}
}

func waitState(t *testing.T, conn *bus.Connection, topic bus.Topic, want string) {
	t.Helper()
	sub := conn.Subscribe(topic)
	defer conn.Unsubscribe(sub)
	deadline := time.After(2 * time.Second)
	for {
		select {
		case m := <-sub.Channel():
			if s, ok := m.Payload.(string); ok && s == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %v = %q", topic, want)
		}
	}
}

func TestService_PeerMode_ForwardsAndExecutesCommands(t *testing.T) {
	b := bus.NewBus(16)
	pub := b.NewConnection("test-pub")
	publishConfig(pub, "relay", map[string]any{
		"mode":       "peer",
		"tick_ms":    float64(1),
		"line_max":   float64(64),
		"heater_pin": float64(15),
		"upstream":   "uart1",
		"command":    "uart2",
	})
	publishConfig(pub, "transport", map[string]any{
		"kind":   "directlink",
		"uart":   "uart0",
		"device": "relay-test",
	})
	publishConfig(pub, "sensor", map[string]any{})

	uarts := newTestUARTs("uart0", "uart1", "uart2")
	pins := platform.DefaultPinFactory()
	svc := NewService(Deps{Pins: pins, UARTs: uarts})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	conn := b.NewConnection("relay-svc")
	if err := svc.Start(ctx, conn); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitState(t, pub, bus.T("relay", "state"), "running")

	// Upstream line is forwarded over the transport port.
	uarts.m["uart1"].Inject([]byte("upstream-data\n"))
	waitUntil(t, "forwarded line", func() bool {
		return strings.Contains(string(uarts.m["uart0"].Written()), "upstream-data\n")
	})

	// Wired command drives the heater and produces a confirmation.
	uarts.m["uart2"].Inject([]byte("HEATER_ON\n"))
	waitUntil(t, "heater confirmation", func() bool {
		return strings.Contains(string(uarts.m["uart0"].Written()), `{"type":"heater","state":"on"}`+"\n")
	})
	pin, _ := pins.ByNumber(15)
	if !pin.Get() {
		t.Fatal("heater pin not high after HEATER_ON")
	}

	// Stats show up retained once a second; confirmations don't count, so
	// only the forwarded upstream line does.
	waitUntil(t, "stats", func() bool {
		sub := pub.Subscribe(bus.T("relay", "stats"))
		defer pub.Unsubscribe(sub)
		select {
		case m := <-sub.Channel():
			stats, ok := m.Payload.(map[string]any)
			if !ok {
				return false
			}
			n, _ := stats["packets"].(uint32)
			return n == 1
		case <-time.After(50 * time.Millisecond):
			return false
		}
	})

	// Status is answered on request.
	reqCtx, reqCancel := context.WithTimeout(ctx, 2*time.Second)
	defer reqCancel()
	reply, err := pub.RequestWait(reqCtx, pub.NewMessage(bus.T("relay", "status", "get"), nil, false))
	if err != nil {
		t.Fatalf("status request: %v", err)
	}
	status, ok := reply.Payload.(map[string]any)
	if !ok {
		t.Fatalf("status payload type = %T", reply.Payload)
	}
	if n, _ := status["packets"].(uint32); n != 1 {
		t.Fatalf("status packets = %v, want 1", status["packets"])
	}
	if on, _ := status["heater"].(bool); !on {
		t.Fatal("status heater = false, want true")
	}

	cancel()
	waitState(t, pub, bus.T("relay", "state"), "stopped")
}

func TestService_WirelessPairingOverBus(t *testing.T) {
	b := bus.NewBus(16)
	pub := b.NewConnection("test-pub")
	publishConfig(pub, "relay", map[string]any{
		"mode":     "peer",
		"tick_ms":  float64(1),
		"line_max": float64(64),
		"upstream": "uart2",
	})
	publishConfig(pub, "transport", map[string]any{
		"kind":   "wirelessserial",
		"uart":   "uart0",
		"debug":  "uart1",
		"device": "relay-test",
	})
	publishConfig(pub, "sensor", map[string]any{})

	uarts := newTestUARTs("uart0", "uart1", "uart2")
	svc := NewService(Deps{UARTs: uarts})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	conn := b.NewConnection("relay-svc")
	if err := svc.Start(ctx, conn); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitState(t, pub, bus.T("transport", "state"), "offline")

	// Unpaired: the line reaches the debug mirror but not the radio.
	uarts.m["uart2"].Inject([]byte("lost-line\n"))
	waitUntil(t, "debug mirror", func() bool {
		return strings.Contains(string(uarts.m["uart1"].Written()), "lost-line\n")
	})
	if strings.Contains(string(uarts.m["uart0"].Written()), "lost-line") {
		t.Fatal("unpaired radio must not transmit")
	}

	// Pairing over the bus brings the link up.
	pub.Publish(&bus.Message{Topic: bus.T("transport", "pair"), Payload: true})
	waitState(t, pub, bus.T("transport", "state"), "connected")

	uarts.m["uart2"].Inject([]byte("live-line\n"))
	waitUntil(t, "radio transmit", func() bool {
		return strings.Contains(string(uarts.m["uart0"].Written()), "live-line\n")
	})
}

func TestService_UnknownTransportKind(t *testing.T) {
	b := bus.NewBus(16)
	pub := b.NewConnection("test-pub")
	publishConfig(pub, "relay", map[string]any{"mode": "peer", "tick_ms": float64(1)})
	publishConfig(pub, "transport", map[string]any{"kind": "carrier-pigeon"})
	publishConfig(pub, "sensor", map[string]any{})

	svc := NewService(Deps{UARTs: newTestUARTs("uart0")})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	conn := b.NewConnection("relay-svc")
	if err := svc.Start(ctx, conn); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitState(t, pub, bus.T("relay", "state"), "error")
}
