// Package heartbeat emits a periodic liveness line carrying uptime and the
// relay's packet counter, so a bench log shows the device is alive even when
// the transport is down.
package heartbeat

import (
	"context"
	"time"

	"relaycode-go/bus"
	"relaycode-go/x/strconvx"
)

var (
	topicConfigHeartbeat = bus.T("config", "heartbeat")
	topicRelayStatusGet  = bus.T("relay", "status", "get")
	topicHeartbeat       = bus.T("heartbeat")
)

type Service struct{}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)

	start := time.Now()
	var packets uint32

	tick := time.NewTicker(5 * time.Second)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("Info: heartbeat service stopping")
			return
		case <-tick.C:
			// Poll the relay for its counters; keep the last known value if
			// it is not up yet.
			if n, ok := s.queryPackets(ctx, conn); ok {
				packets = n
			}
			uptime := uint64(time.Since(start) / time.Second)
			println("Info: heartbeat uptime=" + strconvx.FormatUint(uptime, 10) +
				"s packets=" + strconvx.FormatUint(uint64(packets), 10))
			conn.Publish(&bus.Message{
				Topic:   topicHeartbeat,
				Payload: map[string]any{"uptime": uptime, "packets": packets},
			})
		case msg := <-cfgSub.Channel():
			if m, ok := msg.Payload.(map[string]any); ok {
				if iv, ok := m["interval"].(float64); ok && iv > 0 {
					tick.Reset(time.Duration(iv * float64(time.Second)))
					println("Info: heartbeat interval set to", iv, "seconds")
				}
			}
		}
	}
}

func (s *Service) queryPackets(ctx context.Context, conn *bus.Connection) (uint32, bool) {
	reqCtx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	reply, err := conn.RequestWait(reqCtx, conn.NewMessage(topicRelayStatusGet, nil, false))
	if err != nil {
		return 0, false
	}
	m, ok := reply.Payload.(map[string]any)
	if !ok {
		return 0, false
	}
	n, ok := m["packets"].(uint32)
	return n, ok
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
