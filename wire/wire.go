// Package wire builds and interprets the single-line messages exchanged with
// the host. Records are JSON objects with a fixed field order so the bytes
// on the wire are reproducible; floats carry exactly one decimal place.
//
//	{"type":"sensor","temp":24.4,"humidity":43.9,"pressure":1018.3,"heater":false,"ts":42}
//	{"type":"heater","state":"on"}
//	{"type":"hello","device":"relay-01"}
package wire

import (
	"relaycode-go/x/strconvx"
)

// Record type tags.
const (
	TypeSensor = "sensor"
	TypeHeater = "heater"
	TypeHello  = "hello"
)

// SensorReading is one formatted sample. TS is seconds since boot.
type SensorReading struct {
	Temp     float64
	Humidity float64
	Pressure float64
	HeaterOn bool
	TS       uint32
}

// AppendSensorLine appends the sensor record (no trailing newline) to dst.
func AppendSensorLine(dst []byte, r SensorReading) []byte {
	dst = append(dst, `{"type":"sensor","temp":`...)
	dst = strconvx.AppendFixed(dst, r.Temp, 1)
	dst = append(dst, `,"humidity":`...)
	dst = strconvx.AppendFixed(dst, r.Humidity, 1)
	dst = append(dst, `,"pressure":`...)
	dst = strconvx.AppendFixed(dst, r.Pressure, 1)
	dst = append(dst, `,"heater":`...)
	dst = appendBool(dst, r.HeaterOn)
	dst = append(dst, `,"ts":`...)
	dst = strconvx.AppendUint(dst, uint64(r.TS))
	return append(dst, '}')
}

// SensorLine is the allocating convenience form of AppendSensorLine.
func SensorLine(r SensorReading) []byte {
	return AppendSensorLine(make([]byte, 0, 96), r)
}

// HeaterLine builds the actuator confirmation record.
func HeaterLine(on bool) []byte {
	if on {
		return []byte(`{"type":"heater","state":"on"}`)
	}
	return []byte(`{"type":"heater","state":"off"}`)
}

// HelloLine builds the one-time identification record sent on connect.
func HelloLine(device string) []byte {
	dst := append(make([]byte, 0, 32+len(device)), `{"type":"hello","device":"`...)
	dst = appendEscaped(dst, device)
	return append(dst, '"', '}')
}

func appendBool(dst []byte, b bool) []byte {
	if b {
		return append(dst, "true"...)
	}
	return append(dst, "false"...)
}

func appendEscaped(dst []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			dst = append(dst, '\\', c)
		default:
			dst = append(dst, c)
		}
	}
	return dst
}

// -----------------------------------------------------------------------------
// Host commands
// -----------------------------------------------------------------------------

// Command is a recognized host-to-device control token.
type Command uint8

const (
	CmdNone Command = iota // empty or unrecognized; callers ignore it
	CmdHeaterOn
	CmdHeaterOff
)

// Command vocabulary. Matching is exact and case-sensitive after trimming
// surrounding ASCII whitespace.
const (
	TokenHeaterOn  = "HEATER_ON"
	TokenHeaterOff = "HEATER_OFF"
)

// ParseCommand interprets one inbound line as a command.
func ParseCommand(line []byte) Command {
	line = trimSpace(line)
	switch string(line) {
	case TokenHeaterOn:
		return CmdHeaterOn
	case TokenHeaterOff:
		return CmdHeaterOff
	default:
		return CmdNone
	}
}

func trimSpace(b []byte) []byte {
	start := 0
	for start < len(b) && isSpace(b[start]) {
		start++
	}
	end := len(b)
	for end > start && isSpace(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	}
	return false
}
