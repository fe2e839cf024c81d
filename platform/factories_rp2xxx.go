// platform/factories_rp2xxx.go
//go:build rp2040 || rp2350

package platform

import (
	"context"
	"io"
	"machine"
	"sync"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers"
)

// -----------------------------------------------------------------------------
// Defaults used on Raspberry Pi Pico / Pico 2 (RP2 family)
// -----------------------------------------------------------------------------

// ----------------------------- GPIO ------------------------------------------

type rp2PinFactory struct{}
type rp2Pin struct {
	p machine.Pin
	n int
}

// DefaultPinFactory maps logical numbers directly to machine.Pin(n).
// This matches Pico/Pico 2 GP numbering.
func DefaultPinFactory() PinFactory { return rp2PinFactory{} }

func (rp2PinFactory) ByNumber(n int) (GPIOPin, bool) {
	if n < 0 || n > 28 {
		return nil, false
	}
	return &rp2Pin{p: machine.Pin(n), n: n}, true
}

func (r *rp2Pin) ConfigureInput(p Pull) error {
	var mode machine.PinMode
	switch p {
	case PullUp:
		mode = machine.PinInputPullup
	case PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	r.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (r *rp2Pin) ConfigureOutput(initial bool) error {
	r.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.p.Set(initial)
	return nil
}
func (r *rp2Pin) Set(b bool) { r.p.Set(b) }
func (r *rp2Pin) Get() bool  { return r.p.Get() }
func (r *rp2Pin) Toggle() {
	if r.p.Get() {
		r.p.Low()
	} else {
		r.p.High()
	}
}
func (r *rp2Pin) Number() int { return r.n }

// ----------------------------- UART ------------------------------------------

// rxCap bounds the software receive buffer per port; when the scheduler lags
// the oldest bytes are dropped, matching the framer's recover-at-terminator
// behavior.
const rxCap = 1024

// rp2UART adapts uartx to the non-blocking UARTPort. A pump goroutine parks
// in RecvSomeContext and feeds a bounded buffer the tick loop drains.
type rp2UART struct {
	u  *uartx.UART
	mu sync.Mutex
	rx []byte
}

func newRP2UART(u *uartx.UART) *rp2UART {
	p := &rp2UART{u: u}
	go p.pump()
	return p
}

func (p *rp2UART) pump() {
	buf := make([]byte, 64)
	for {
		n, err := p.u.RecvSomeContext(context.Background(), buf)
		if n > 0 {
			p.mu.Lock()
			p.rx = append(p.rx, buf[:n]...)
			if over := len(p.rx) - rxCap; over > 0 {
				p.rx = p.rx[over:]
			}
			p.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

func (p *rp2UART) WriteByte(b byte) error {
	var one [1]byte
	one[0] = b
	_, err := p.u.Write(one[:])
	return err
}

func (p *rp2UART) Write(b []byte) (int, error) { return p.u.Write(b) }

func (p *rp2UART) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.rx)
}

func (p *rp2UART) ReadByte() (byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.rx) == 0 {
		return 0, io.EOF
	}
	b := p.rx[0]
	p.rx = p.rx[1:]
	return b, nil
}

func (p *rp2UART) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := copy(b, p.rx)
	p.rx = p.rx[n:]
	return n, nil
}

type rp2UARTFactory struct {
	ports map[string]UARTPort
}

func (f *rp2UARTFactory) ByID(id string) (UARTPort, bool) {
	p, ok := f.ports[id]
	return p, ok
}

// DefaultUARTFactory configures uart0 and uart1 on board-default pins at
// 115200 baud. Pin overrides belong in per-board setup code, not here.
func DefaultUARTFactory() UARTFactory {
	f := &rp2UARTFactory{ports: make(map[string]UARTPort)}

	u0 := uartx.UART0
	_ = u0.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})
	f.ports["uart0"] = newRP2UART(u0)

	u1 := uartx.UART1
	_ = u1.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       machine.UART1_TX_PIN,
		RX:       machine.UART1_RX_PIN,
	})
	f.ports["uart1"] = newRP2UART(u1)

	return f
}

// ----------------------------- I²C -------------------------------------------

type rp2I2CFactory struct {
	buses map[string]drivers.I2C
}

func (f *rp2I2CFactory) ByID(id string) (drivers.I2C, bool) {
	b, ok := f.buses[id]
	return b, ok
}

// DefaultI2CFactory configures i2c0 and i2c1 with board-default pins at 400 kHz.
func DefaultI2CFactory() I2CBusFactory {
	f := &rp2I2CFactory{buses: make(map[string]drivers.I2C)}

	b0 := machine.I2C0
	_ = b0.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	})
	f.buses["i2c0"] = b0

	b1 := machine.I2C1
	_ = b1.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C1_SDA_PIN,
		SCL:       machine.I2C1_SCL_PIN,
	})
	f.buses["i2c1"] = b1

	return f
}
