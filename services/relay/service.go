// Package relay (services/relay) assembles the relay from device config and
// runs its tick loop. It owns the glue only; the loop logic itself lives in
// the core relay package.
package relay

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"relaycode-go/bus"
	"relaycode-go/errcode"
	"relaycode-go/platform"
	"relaycode-go/relay"
	"relaycode-go/sensor"
	"relaycode-go/transport"
	"relaycode-go/types"
	"relaycode-go/x/strconvx"
)

var (
	topicConfigRelay     = bus.T("config", "relay")
	topicConfigTransport = bus.T("config", "transport")
	topicConfigSensor    = bus.T("config", "sensor")
	topicRelayState      = bus.T("relay", "state")
	topicRelayStats      = bus.T("relay", "stats")
	topicRelayStatusGet  = bus.T("relay", "status", "get")
	topicRelayDiag       = bus.T("relay", "diag")
	topicTransportState  = bus.T("transport", "state")
	topicTransportPair   = bus.T("transport", "pair")
)

// Deps injects the hardware surface and clock. Zero fields get platform
// defaults; tests substitute fakes.
type Deps struct {
	Pins  platform.PinFactory
	UARTs platform.UARTFactory
	I2C   platform.I2CBusFactory
	Clock clockwork.Clock
	Dial  transport.DialFunc // socketlink only; nil means real TCP
}

type Service struct {
	deps Deps
}

func NewService(deps Deps) *Service {
	if deps.Pins == nil {
		deps.Pins = platform.DefaultPinFactory()
	}
	if deps.UARTs == nil {
		deps.UARTs = platform.DefaultUARTFactory()
	}
	if deps.I2C == nil {
		deps.I2C = platform.DefaultI2CFactory()
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	return &Service{deps: deps}
}

// Start launches the relay in a goroutine.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	boot := s.deps.Clock.Now()
	cfg := types.RelayConfigFromMap(s.waitSection(ctx, conn, topicConfigRelay))
	tcfg := types.TransportConfigFromMap(s.waitSection(ctx, conn, topicConfigTransport))
	scfg := types.SensorConfigFromMap(s.waitSection(ctx, conn, topicConfigSensor))

	diag := func(code errcode.Code, msg string) {
		conn.Publish(&bus.Message{
			Topic:   topicRelayDiag,
			Payload: map[string]any{"code": string(code), "msg": msg},
		})
	}

	tr, ws, err := s.buildTransport(tcfg, cfg.LineMax)
	if err != nil {
		s.publishState(conn, "error")
		diag(errcode.Of(err), err.Error())
		return
	}

	var heater platform.GPIOPin
	if cfg.HeaterPin >= 0 {
		heater, _ = s.deps.Pins.ByNumber(cfg.HeaterPin)
	}
	var upstream, command platform.UARTPort
	if cfg.Upstream != "" {
		upstream, _ = s.deps.UARTs.ByID(cfg.Upstream)
	}
	if cfg.Command != "" {
		command, _ = s.deps.UARTs.ByID(cfg.Command)
	}

	core := relay.NewCore(relay.Options{
		Transport: tr,
		Upstream:  upstream,
		Commands:  command,
		Heater:    heater,
		LineMax:   cfg.LineMax,
		Diag:      diag,
	})

	var sampler *relay.Sampler
	if cfg.Mode == "sampler" {
		i2c, ok := s.deps.I2C.ByID(scfg.Bus)
		if !ok {
			s.publishState(conn, "error")
			diag(errcode.InvalidParams, "unknown i2c bus: "+scfg.Bus)
			return
		}
		chip := sensor.WaitFor(sensor.NewBME280Factory(i2c), sensor.Config{
			Addr:         uint16(scfg.Addr),
			FallbackAddr: uint16(scfg.FallbackAddr),
			Retry:        time.Duration(scfg.RetryMs) * time.Millisecond,
		}, s.deps.Clock)
		interval := time.Duration(cfg.IntervalMs) * time.Millisecond
		sampler = relay.NewSampler(chip, core, interval, boot, diag)
	}

	// Wireless pairing status arrives over the bus from whoever watches the
	// radio module's status line.
	var pairSub *bus.Subscription
	if ws != nil {
		pairSub = conn.Subscribe(topicTransportPair)
		defer conn.Unsubscribe(pairSub)
	}

	// On-demand status for other services (heartbeat polls this).
	statusSub := conn.Subscribe(topicRelayStatusGet)
	defer conn.Unsubscribe(statusSub)

	s.publishState(conn, "running")

	tickEvery := time.Duration(cfg.TickMs) * time.Millisecond
	ticker := s.deps.Clock.NewTicker(tickEvery)
	defer ticker.Stop()

	linkUp := tr.Connected()
	s.publishLink(conn, linkUp)
	lastStats := s.deps.Clock.Now()

	for {
		select {
		case <-ctx.Done():
			s.publishState(conn, "stopped")
			return
		case msg := <-s.pairChan(pairSub):
			if up, ok := msg.Payload.(bool); ok {
				ws.SetPaired(up)
			}
		case req := <-statusSub.Channel():
			conn.Reply(req, map[string]any{
				"packets": core.Packets(),
				"heater":  core.HeaterOn(),
				"link":    tr.Connected(),
			}, false)
		case <-ticker.Chan():
			now := s.deps.Clock.Now()
			core.Step(now)
			if sampler != nil {
				sampler.Tick(now)
			}
			if up := tr.Connected(); up != linkUp {
				linkUp = up
				s.publishLink(conn, up)
			}
			if now.Sub(lastStats) >= time.Second {
				lastStats = now
				conn.Publish(&bus.Message{
					Topic:    topicRelayStats,
					Payload:  map[string]any{"packets": core.Packets(), "heater": core.HeaterOn()},
					Retained: true,
				})
			}
		}
	}
}

// pairChan makes a nil subscription safe to select on.
func (s *Service) pairChan(sub *bus.Subscription) <-chan *bus.Message {
	if sub == nil {
		return nil
	}
	return sub.Channel()
}

func (s *Service) buildTransport(tcfg types.TransportConfig, lineMax int) (transport.Transport, *transport.WirelessSerial, error) {
	switch transport.Kind(tcfg.Kind) {
	case transport.KindDirectLink:
		port, ok := s.deps.UARTs.ByID(tcfg.UART)
		if !ok {
			return nil, nil, &errcode.E{C: errcode.InvalidParams, Msg: "unknown uart: " + tcfg.UART}
		}
		return transport.NewDirectLink(port), nil, nil
	case transport.KindWirelessSerial:
		port, ok := s.deps.UARTs.ByID(tcfg.UART)
		if !ok {
			return nil, nil, &errcode.E{C: errcode.InvalidParams, Msg: "unknown uart: " + tcfg.UART}
		}
		var debug platform.UARTPort
		if tcfg.Debug != "" {
			debug, _ = s.deps.UARTs.ByID(tcfg.Debug)
		}
		ws := transport.NewWirelessSerial(port, debug, lineMax)
		return ws, ws, nil
	case transport.KindSocketLink:
		addr := tcfg.Host + ":" + strconvx.Itoa(tcfg.Port)
		sl := transport.NewSocketLink(transport.SocketConfig{
			Addr:      addr,
			Device:    tcfg.Device,
			Reconnect: time.Duration(tcfg.ReconnectMs) * time.Millisecond,
		}, s.deps.Clock, s.deps.Dial)
		return sl, nil, nil
	default:
		return nil, nil, &errcode.E{C: errcode.InvalidParams, Msg: "unknown transport kind: " + tcfg.Kind}
	}
}

// waitSection blocks for one retained config section, falling back to an
// empty map (all defaults) when none shows up in time.
func (s *Service) waitSection(ctx context.Context, conn *bus.Connection, topic bus.Topic) map[string]any {
	sub := conn.Subscribe(topic)
	defer conn.Unsubscribe(sub)
	select {
	case m := <-sub.Channel():
		if mm, ok := m.Payload.(map[string]any); ok {
			return mm
		}
	case <-ctx.Done():
	case <-s.deps.Clock.After(2 * time.Second):
	}
	return map[string]any{}
}

func (s *Service) publishState(conn *bus.Connection, state string) {
	conn.Publish(&bus.Message{Topic: topicRelayState, Payload: state, Retained: true})
}

func (s *Service) publishLink(conn *bus.Connection, up bool) {
	payload := "offline"
	if up {
		payload = "connected"
	}
	conn.Publish(&bus.Message{Topic: topicTransportState, Payload: payload, Retained: true})
}
