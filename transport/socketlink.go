package transport

import (
	"net"
	"time"

	"github.com/jonboulle/clockwork"

	"relaycode-go/errcode"
	"relaycode-go/frame"
	"relaycode-go/wire"
)

// SocketLink state machine.
type sockState uint8

const (
	sockDisconnected sockState = iota
	sockConnecting
	sockConnected
)

// DialFunc opens the upstream connection. The default dials TCP with the
// reconnect interval as timeout; tests substitute net.Pipe.
type DialFunc func(addr string) (net.Conn, error)

// writeTimeout bounds each send so a stalled peer cannot hold the scheduler
// tick; a timed-out write tears the link down instead.
const writeTimeout = 250 * time.Millisecond

// SocketConfig configures a SocketLink.
type SocketConfig struct {
	Addr      string        // host:port
	Device    string        // name announced in the hello line
	Reconnect time.Duration // min spacing between dial attempts; 0 means 3 s
}

// SocketLink is the TCP client variant. Poll owns all state transitions and
// never blocks: dialing and reading run on helper goroutines that hand their
// results back over channels Poll drains. Reconnects are spaced by the
// configured interval, timed from the start of the previous attempt, so a
// flapping server sees at most one dial per interval. On entering Connected
// exactly one hello line identifying the device goes out before any data.
type SocketLink struct {
	addr     string
	device   string
	interval time.Duration
	clk      clockwork.Clock
	dial     DialFunc

	state       sockState
	lastAttempt time.Time
	conn        net.Conn

	dialc chan dialResult
	lines chan []byte
	dead  chan struct{}

	wbuf []byte
}

type dialResult struct {
	conn net.Conn
	err  error
}

func NewSocketLink(cfg SocketConfig, clk clockwork.Clock, dial DialFunc) *SocketLink {
	if cfg.Reconnect <= 0 {
		cfg.Reconnect = 3 * time.Second
	}
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	s := &SocketLink{
		addr:     cfg.Addr,
		device:   cfg.Device,
		interval: cfg.Reconnect,
		clk:      clk,
		dial:     dial,
		dialc:    make(chan dialResult, 1),
		wbuf:     make([]byte, 0, 128),
	}
	if s.dial == nil {
		s.dial = func(addr string) (net.Conn, error) {
			return net.DialTimeout("tcp", addr, cfg.Reconnect)
		}
	}
	return s
}

func (s *SocketLink) Connected() bool { return s.state == sockConnected }

func (s *SocketLink) Poll(now time.Time) {
	switch s.state {
	case sockDisconnected:
		if !s.lastAttempt.IsZero() && now.Sub(s.lastAttempt) < s.interval {
			return
		}
		s.lastAttempt = now
		s.state = sockConnecting
		go func() {
			c, err := s.dial(s.addr)
			s.dialc <- dialResult{conn: c, err: err}
		}()
	case sockConnecting:
		select {
		case r := <-s.dialc:
			if r.err != nil {
				s.state = sockDisconnected
				return
			}
			s.conn = r.conn
			s.lines = make(chan []byte, 8)
			s.dead = make(chan struct{})
			go readLoop(r.conn, s.lines, s.dead)
			s.state = sockConnected
			s.sendHello()
		default:
		}
	case sockConnected:
		select {
		case <-s.dead:
			s.drop(now)
		default:
		}
	}
}

func (s *SocketLink) SendLine(line []byte) error {
	if s.state != sockConnected {
		return errcode.Offline
	}
	s.wbuf = append(s.wbuf[:0], line...)
	s.wbuf = append(s.wbuf, '\n')
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := s.conn.Write(s.wbuf); err != nil {
		s.drop(s.clk.Now())
		return &errcode.E{C: errcode.SendFailed, Op: "socketlink", Err: err}
	}
	return nil
}

func (s *SocketLink) TryReceiveLine() ([]byte, bool) {
	if s.lines == nil {
		return nil, false
	}
	select {
	case line := <-s.lines:
		return line, true
	default:
		return nil, false
	}
}

func (s *SocketLink) sendHello() {
	hello := wire.HelloLine(s.device)
	s.wbuf = append(s.wbuf[:0], hello...)
	s.wbuf = append(s.wbuf, '\n')
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := s.conn.Write(s.wbuf); err != nil {
		s.drop(s.clk.Now())
	}
}

// drop tears the connection down and restarts the reconnect interval, so the
// next dial happens a full interval after the failure.
func (s *SocketLink) drop(now time.Time) {
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	s.lines = nil
	s.state = sockDisconnected
	s.lastAttempt = now
}

// readLoop frames inbound bytes into lines until the connection dies. Lines
// are copied out of the framer; when the consumer lags the oldest pending
// lines are dropped rather than blocking the reader.
func readLoop(conn net.Conn, lines chan<- []byte, dead chan<- struct{}) {
	fr := frame.New(frame.DefaultCap)
	buf := make([]byte, 64)
	for {
		n, err := conn.Read(buf)
		for _, b := range buf[:n] {
			line, ok := fr.Feed(b)
			if !ok || len(line) == 0 {
				continue
			}
			cp := append([]byte(nil), line...)
			select {
			case lines <- cp:
			default:
			}
		}
		if err != nil {
			close(dead)
			return
		}
	}
}
