// Package platform supplies the hardware surface the relay runs against:
// GPIO pins, UART ports and I²C buses, resolved by id through small
// factories. The default build provides host-side fakes so the firmware and
// its tests run anywhere; rp2040/rp2350 builds map the same interfaces onto
// machine and uartx.
package platform

import (
	"tinygo.org/x/drivers"
)

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

type GPIOPin interface {
	ConfigureInput(pull Pull) error
	ConfigureOutput(initial bool) error
	Set(level bool)
	Get() bool
	Toggle()
	Number() int
}

// UARTPort is a non-blocking byte port. Readers check Buffered before
// ReadByte; neither side may stall the scheduler loop.
type UARTPort interface {
	// TX
	WriteByte(b byte) error
	Write(p []byte) (int, error)

	// RX
	Buffered() int
	ReadByte() (byte, error)
	Read(p []byte) (int, error)
}

// PinFactory supplies GPIO pins by the configured number scheme.
type PinFactory interface {
	ByNumber(n int) (GPIOPin, bool)
}

// UARTFactory supplies configured UART ports by id ("uart0", "uart1", ...).
type UARTFactory interface {
	ByID(id string) (UARTPort, bool)
}

// I2CBusFactory injects configured I²C instances by id.
// Uses the TinyGo drivers.I2C interface to remain compatible on MCU builds.
type I2CBusFactory interface {
	ByID(id string) (drivers.I2C, bool)
}
