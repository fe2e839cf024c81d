// Package transport carries framed lines between the relay and its peer over
// one of three interchangeable links: a wired UART, a paired wireless serial
// module, or a TCP socket. The relay core talks to the Transport interface
// only; which variant runs is a config decision made at service start.
package transport

import "time"

// Kind selects a transport variant in device config.
type Kind string

const (
	KindDirectLink     Kind = "directlink"
	KindWirelessSerial Kind = "wirelessserial"
	KindSocketLink     Kind = "socketlink"
)

// Transport is one relay link. All methods are non-blocking and are called
// from the single scheduler goroutine.
//
// SendLine takes one unterminated line; the transport appends the newline.
// A down link reports errcode.Offline, which callers treat as a silent skip,
// not a fault. Poll advances internal state once per scheduler pass.
// TryReceiveLine surfaces inbound lines on transports that have a return
// channel; the others always report false.
type Transport interface {
	SendLine(line []byte) error
	Connected() bool
	Poll(now time.Time)
	TryReceiveLine() ([]byte, bool)
}
