// Firmware entry point: bus, config, relay and heartbeat services.
package main

import (
	"context"
	"time"

	"relaycode-go/bus"
	"relaycode-go/services/config"
	"relaycode-go/services/heartbeat"
	relaysvc "relaycode-go/services/relay"
)

// deviceID selects the embedded config. Override at build time with
// -ldflags "-X main.deviceID=relay-02".
var deviceID = "relay-01"

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("[main] boot, device:", deviceID)

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, deviceID)

	b := bus.NewBus(8)

	// Diagnostics monitor: anything the relay reports goes to the console.
	monConn := b.NewConnection("monitor")
	diagSub := monConn.Subscribe(bus.T("relay", "diag"))
	go func() {
		for m := range diagSub.Channel() {
			if d, ok := m.Payload.(map[string]any); ok {
				code, _ := d["code"].(string)
				msg, _ := d["msg"].(string)
				println("[diag]", code, msg)
			}
		}
	}()
	stateSub := monConn.Subscribe(bus.T("+", "state"))
	go func() {
		for m := range stateSub.Channel() {
			if s, ok := m.Payload.(string); ok && len(m.Topic) == 2 {
				println("[state]", m.Topic[0], s)
			}
		}
	}()

	println("[main] starting config service")
	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	println("[main] starting relay service")
	svc := relaysvc.NewService(relaysvc.Deps{})
	if err := svc.Start(ctx, b.NewConnection("relay")); err != nil {
		println("[main] relay start failed:", err.Error())
	}

	println("[main] starting heartbeat service")
	hb := &heartbeat.Service{}
	if err := hb.Start(ctx, b.NewConnection("heartbeat")); err != nil {
		println("[main] heartbeat start failed:", err.Error())
	}

	select {}
}
