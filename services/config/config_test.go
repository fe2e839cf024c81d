// config/config_test.go
package config

import (
	"context"
	"testing"
	"time"

	"relaycode-go/bus"
)

func TestConfig_PublishEmbedded_RetainedPerSection(t *testing.T) {
	// Override lookup for this test.
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) {
		if device != "relay-test" {
			return nil, false
		}
		return []byte(`{
			"relay": {"mode": "sampler", "interval_ms": 1000},
			"transport": {"kind": "directlink", "device": "relay-test"},
			"heartbeat": {"interval": 2}
		}`), true
	}
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	b := bus.NewBus(16)
	conn := b.NewConnection("test-config")
	svc := NewConfigService()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "relay-test")
	svc.Start(ctx, conn)

	// Retained messages arrive whenever we subscribe, even after Start.
	sub := conn.Subscribe(bus.T(configPrefix, "#"))

	wantCount := 3 // relay, transport, heartbeat
	got := map[string]any{}

	deadline := time.Now().Add(600 * time.Millisecond)
	for len(got) < wantCount && time.Now().Before(deadline) {
		select {
		case m := <-sub.Channel():
			if len(m.Topic) != 2 || m.Topic[0] != configPrefix {
				t.Fatalf("unexpected topic: %v", m.Topic)
			}
			got[m.Topic[1]] = m.Payload
		case <-time.After(10 * time.Millisecond):
		}
	}
	if len(got) != wantCount {
		t.Fatalf("expected %d retained sections, got %d (%v)", wantCount, len(got), got)
	}

	relaySec, ok := got["relay"].(map[string]any)
	if !ok {
		t.Fatalf("relay payload type = %T, want map[string]any", got["relay"])
	}
	if mode, _ := relaySec["mode"].(string); mode != "sampler" {
		t.Fatalf("relay.mode = %#v, want \"sampler\"", relaySec["mode"])
	}
	if iv, _ := relaySec["interval_ms"].(float64); iv != 1000 {
		t.Fatalf("relay.interval_ms = %#v, want 1000", relaySec["interval_ms"])
	}

	trSec, ok := got["transport"].(map[string]any)
	if !ok {
		t.Fatalf("transport payload type = %T, want map[string]any", got["transport"])
	}
	if kind, _ := trSec["kind"].(string); kind != "directlink" {
		t.Fatalf("transport.kind = %#v, want \"directlink\"", trSec["kind"])
	}
}

func TestConfig_PublishConfig_MissingDevice(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test-missing-device")
	svc := NewConfigService()

	// No device ID in context.
	if err := svc.publishConfig(context.Background(), conn); err == nil {
		t.Fatal("expected error for missing device ID, got nil")
	}
}

func TestConfig_PublishConfig_NoConfigFound(t *testing.T) {
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) { return nil, false }
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	b := bus.NewBus(4)
	conn := b.NewConnection("test-no-config")
	svc := NewConfigService()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "unknown-device")
	if err := svc.publishConfig(ctx, conn); err == nil {
		t.Fatal("expected error for missing embedded config, got nil")
	}
}

func TestConfig_EmbeddedDefaultsDecode(t *testing.T) {
	// The shipped per-device configs must stay decodable.
	for device := range embeddedConfigs {
		b := bus.NewBus(16)
		conn := b.NewConnection("test-" + device)
		svc := NewConfigService()
		ctx := context.WithValue(context.Background(), CtxDeviceKey, device)
		if err := svc.publishConfig(ctx, conn); err != nil {
			t.Errorf("%s: %v", device, err)
		}
	}
}
