package transport

import (
	"time"

	"relaycode-go/errcode"
	"relaycode-go/frame"
	"relaycode-go/platform"
)

// WirelessSerial drives a transparent-serial radio module (HC-12 class). The
// module pairs out of band, so the transport only tracks whether a peer is
// currently paired: unpaired sends report Offline and are dropped. Every
// outbound line is additionally mirrored to an always-on debug port so a
// bench cable sees the full stream regardless of pairing.
type WirelessSerial struct {
	port   platform.UARTPort // radio
	debug  platform.UARTPort // mirror, may be nil
	paired bool

	fr    *frame.Framer
	inbox [][]byte
	wbuf  []byte
}

func NewWirelessSerial(port, debug platform.UARTPort, lineMax int) *WirelessSerial {
	return &WirelessSerial{
		port:  port,
		debug: debug,
		fr:    frame.New(lineMax),
		wbuf:  make([]byte, 0, 128),
	}
}

// SetPaired records the pairing state reported by the module's status line.
func (w *WirelessSerial) SetPaired(p bool) { w.paired = p }

func (w *WirelessSerial) Connected() bool { return w.paired }

func (w *WirelessSerial) SendLine(line []byte) error {
	w.wbuf = append(w.wbuf[:0], line...)
	w.wbuf = append(w.wbuf, '\n')
	if w.debug != nil {
		_, _ = w.debug.Write(w.wbuf)
	}
	if !w.paired {
		return errcode.Offline
	}
	if _, err := w.port.Write(w.wbuf); err != nil {
		return &errcode.E{C: errcode.SendFailed, Op: "wirelessserial", Err: err}
	}
	return nil
}

// Poll drains whatever the radio buffered since the last pass. Completed
// non-empty lines queue for TryReceiveLine; each is copied because the framer
// reuses its buffer.
func (w *WirelessSerial) Poll(time.Time) {
	for w.port.Buffered() > 0 {
		b, err := w.port.ReadByte()
		if err != nil {
			return
		}
		if line, ok := w.fr.Feed(b); ok && len(line) > 0 {
			w.inbox = append(w.inbox, append([]byte(nil), line...))
		}
	}
}

func (w *WirelessSerial) TryReceiveLine() ([]byte, bool) {
	if len(w.inbox) == 0 {
		return nil, false
	}
	line := w.inbox[0]
	w.inbox = w.inbox[1:]
	return line, true
}
