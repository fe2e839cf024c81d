// Package sensor owns the environmental sensor: probing it at init and
// reading temperature, humidity and pressure during steady state.
package sensor

import (
	"time"

	"github.com/jonboulle/clockwork"

	"relaycode-go/errcode"
)

// Values is one sample in engineering units: °C, %RH, hPa.
type Values struct {
	Temp     float64
	Humidity float64
	Pressure float64
}

// Env reads one sample of all three channels.
type Env interface {
	Read() (Values, error)
}

// Chip is the probe-level view of a candidate sensor at one bus address.
type Chip interface {
	Configure()
	Connected() bool
	Env
}

// Factory builds a Chip bound to one address on an already-configured bus.
type Factory func(addr uint16) Chip

// Config controls the init-phase probe.
type Config struct {
	Addr         uint16        // primary address (0x76 on most modules)
	FallbackAddr uint16        // alternate (0x77, SDO pulled high); 0 disables
	Retry        time.Duration // delay between probe rounds in WaitFor
}

// Probe tries the primary then the fallback address once each.
func Probe(f Factory, primary, fallback uint16) (Chip, error) {
	for _, addr := range [2]uint16{primary, fallback} {
		if addr == 0 {
			continue
		}
		c := f(addr)
		c.Configure()
		if c.Connected() {
			return c, nil
		}
	}
	return nil, errcode.SensorNotFound
}

// WaitFor blocks until a sensor answers at either address, re-probing both on
// a fixed delay. Without a sensor the device is unusable, so this is the one
// place the firmware is allowed to block; it runs during init only, never in
// the steady-state loop.
func WaitFor(f Factory, cfg Config, clk clockwork.Clock) Chip {
	retry := cfg.Retry
	if retry <= 0 {
		retry = 2 * time.Second
	}
	for {
		c, err := Probe(f, cfg.Addr, cfg.FallbackAddr)
		if err == nil {
			return c
		}
		println("[sensor] not detected; check wiring, retrying")
		clk.Sleep(retry)
	}
}
