package relay

import (
	"math"
	"time"

	"relaycode-go/errcode"
	"relaycode-go/sensor"
	"relaycode-go/wire"
)

// Sampler reads the environmental sensor on a fixed period and hands each
// good sample to the core's forwarding path, exactly as an upstream line
// would arrive. Used when the board has no upstream peer.
type Sampler struct {
	env      sensor.Env
	core     *Core
	interval time.Duration
	last     time.Time
	boot     time.Time
	buf      []byte
	diag     Diag
}

// NewSampler builds a sampler whose timestamps count seconds since boot.
// The sensor probe can delay the first tick, so boot must be captured before
// it, not at the first sample.
func NewSampler(env sensor.Env, core *Core, interval time.Duration, boot time.Time, diag Diag) *Sampler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Sampler{
		env:      env,
		core:     core,
		interval: interval,
		boot:     boot,
		buf:      make([]byte, 0, 96),
		diag:     diag,
	}
}

// Tick samples if the period has elapsed. A sample containing any NaN is
// discarded whole with one diagnostic; the heater flag and the seconds-since-
// boot timestamp are stamped at format time.
func (s *Sampler) Tick(now time.Time) {
	if s.boot.IsZero() {
		s.boot = now
	}
	if !s.last.IsZero() && now.Sub(s.last) < s.interval {
		return
	}
	s.last = now

	v, err := s.env.Read()
	if err != nil {
		s.diagf(errcode.Of(err), "sensor read failed")
		return
	}
	if math.IsNaN(v.Temp) || math.IsNaN(v.Humidity) || math.IsNaN(v.Pressure) {
		s.diagf(errcode.SensorReadInvalid, "sensor returned NaN, sample dropped")
		return
	}

	s.buf = wire.AppendSensorLine(s.buf[:0], wire.SensorReading{
		Temp:     v.Temp,
		Humidity: v.Humidity,
		Pressure: v.Pressure,
		HeaterOn: s.core.HeaterOn(),
		TS:       uint32(now.Sub(s.boot) / time.Second),
	})
	s.core.Forward(s.buf)
}

func (s *Sampler) diagf(code errcode.Code, msg string) {
	if s.diag != nil {
		s.diag(code, msg)
	}
}
