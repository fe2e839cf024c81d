// Package relay holds the device's main loop logic: forwarding upstream
// lines to the active transport, executing heater commands from downstream,
// and (when no upstream peer exists) sampling the sensor itself.
//
// Everything here runs on one goroutine. Step is called once per scheduler
// tick and does a bounded amount of non-blocking work; delivery is
// at-most-once with no queueing, so a down link simply loses lines.
package relay

import (
	"time"

	"relaycode-go/errcode"
	"relaycode-go/frame"
	"relaycode-go/platform"
	"relaycode-go/transport"
	"relaycode-go/wire"
)

// Diag receives non-fatal diagnostics. May be nil.
type Diag func(code errcode.Code, msg string)

// Options configures a Core. Upstream and Commands are optional byte
// sources; Heater is optional for boards without the actuator fitted.
type Options struct {
	Transport transport.Transport
	Upstream  platform.UARTPort // peer whose lines we forward
	Commands  platform.UARTPort // wired command input
	Heater    platform.GPIOPin
	LineMax   int
	Diag      Diag
}

type Core struct {
	tr     transport.Transport
	up     platform.UARTPort
	cmd    platform.UARTPort
	heater platform.GPIOPin

	upFramer  *frame.Framer
	cmdFramer *frame.Framer

	heaterOn    bool
	packets     uint32
	upOverflows uint32
	diag        Diag
}

// NewCore wires a core together. The heater pin is driven low immediately so
// the actuator is off from boot regardless of pin reset state.
func NewCore(o Options) *Core {
	c := &Core{
		tr:        o.Transport,
		up:        o.Upstream,
		cmd:       o.Commands,
		heater:    o.Heater,
		upFramer:  frame.New(o.LineMax),
		cmdFramer: frame.New(o.LineMax),
		diag:      o.Diag,
	}
	if c.heater != nil {
		_ = c.heater.ConfigureOutput(false)
	}
	return c
}

// Step runs one scheduler pass: advance the transport, forward upstream
// lines, then execute any pending commands.
func (c *Core) Step(now time.Time) {
	c.tr.Poll(now)
	c.drainUpstream()
	c.drainCommands()
}

// Forward sends one data line to the peer and counts it on success. Empty
// lines are dropped here rather than in the framer; an Offline link loses
// the line silently.
func (c *Core) Forward(line []byte) {
	if c.send(line) {
		c.packets++
	}
}

// send delivers one line without touching the packet counter; heater
// confirmations go through here so the counter tracks data lines only.
func (c *Core) send(line []byte) bool {
	if len(line) == 0 {
		return false
	}
	err := c.tr.SendLine(line)
	switch errcode.Of(err) {
	case errcode.OK:
		return true
	case errcode.Offline:
		// Link down. At-most-once: no queue, no retry.
	default:
		c.diagf(errcode.SendFailed, "transport send failed")
	}
	return false
}

func (c *Core) drainUpstream() {
	if c.up == nil {
		return
	}
	for c.up.Buffered() > 0 {
		b, err := c.up.ReadByte()
		if err != nil {
			return
		}
		if line, ok := c.upFramer.Feed(b); ok {
			c.Forward(line)
		}
	}
	if ov := c.upFramer.Overflows(); ov != c.upOverflows {
		c.upOverflows = ov
		c.diagf(errcode.Overflow, "upstream line exceeded buffer, discarded")
	}
}

func (c *Core) drainCommands() {
	if c.cmd != nil {
		for c.cmd.Buffered() > 0 {
			b, err := c.cmd.ReadByte()
			if err != nil {
				break
			}
			if line, ok := c.cmdFramer.Feed(b); ok {
				c.handleLine(line)
			}
		}
	}
	for {
		line, ok := c.tr.TryReceiveLine()
		if !ok {
			return
		}
		c.handleLine(line)
	}
}

// handleLine interprets one downstream line. Unrecognized lines are ignored
// without a diagnostic; the return channel is shared with chatty tooling.
func (c *Core) handleLine(line []byte) {
	switch wire.ParseCommand(line) {
	case wire.CmdHeaterOn:
		c.setHeater(true)
	case wire.CmdHeaterOff:
		c.setHeater(false)
	}
}

func (c *Core) setHeater(on bool) {
	c.heaterOn = on
	if c.heater != nil {
		c.heater.Set(on)
	}
	c.send(wire.HeaterLine(on))
}

// HeaterOn reports the current actuator state.
func (c *Core) HeaterOn() bool { return c.heaterOn }

// Packets counts data lines delivered since boot, excluding heater
// confirmations. Diagnostics only.
func (c *Core) Packets() uint32 { return c.packets }

func (c *Core) diagf(code errcode.Code, msg string) {
	if c.diag != nil {
		c.diag(code, msg)
	}
}
