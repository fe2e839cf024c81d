package transport

import (
	"time"

	"relaycode-go/errcode"
	"relaycode-go/platform"
)

// DirectLink is the wired UART variant. The cable either works or it does
// not, so the link is always considered connected and writes are synchronous.
// Inbound bytes on the same port belong to the relay's command source, not to
// the transport, so TryReceiveLine never reports anything.
type DirectLink struct {
	port platform.UARTPort
	wbuf []byte
}

func NewDirectLink(port platform.UARTPort) *DirectLink {
	return &DirectLink{port: port, wbuf: make([]byte, 0, 128)}
}

func (d *DirectLink) SendLine(line []byte) error {
	d.wbuf = append(d.wbuf[:0], line...)
	d.wbuf = append(d.wbuf, '\n')
	if _, err := d.port.Write(d.wbuf); err != nil {
		return &errcode.E{C: errcode.SendFailed, Op: "directlink", Err: err}
	}
	return nil
}

func (d *DirectLink) Connected() bool                { return true }
func (d *DirectLink) Poll(time.Time)                 {}
func (d *DirectLink) TryReceiveLine() ([]byte, bool) { return nil, false }
