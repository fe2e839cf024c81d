// platform/factories_host.go
//go:build !rp2040 && !rp2350

package platform

import (
	"io"
	"sync"

	"tinygo.org/x/drivers"
)

// ----------------------------- GPIO (host) -----------------------------------

// FakePin implements GPIOPin for host-side runs and tests.
type FakePin struct {
	mu    sync.Mutex
	n     int
	level bool
	mode  string // "", "input", "output"
	pull  Pull
}

func NewFakePin(n int) *FakePin { return &FakePin{n: n} }

func (f *FakePin) ConfigureInput(pull Pull) error {
	f.mu.Lock()
	f.mode, f.pull = "input", pull
	f.mu.Unlock()
	return nil
}

func (f *FakePin) ConfigureOutput(initial bool) error {
	f.mu.Lock()
	f.mode, f.level = "output", initial
	f.mu.Unlock()
	return nil
}

func (f *FakePin) Set(level bool) {
	f.mu.Lock()
	f.level = level
	f.mu.Unlock()
}

func (f *FakePin) Get() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.level
}

func (f *FakePin) Toggle() {
	f.mu.Lock()
	f.level = !f.level
	f.mu.Unlock()
}

func (f *FakePin) Number() int { return f.n }

type hostPinFactory struct {
	mu   sync.Mutex
	pins map[int]*FakePin
}

func (f *hostPinFactory) ByNumber(n int) (GPIOPin, bool) {
	if n < 0 || n > 28 {
		return nil, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pins[n]
	if !ok {
		p = NewFakePin(n)
		f.pins[n] = p
	}
	return p, true
}

// DefaultPinFactory returns fake pins keyed by GP number.
func DefaultPinFactory() PinFactory {
	return &hostPinFactory{pins: make(map[int]*FakePin)}
}

// ----------------------------- UART (host) -----------------------------------

// LoopUART is an in-memory UARTPort. Tests inject inbound bytes with Inject
// and inspect outbound bytes with Written.
type LoopUART struct {
	mu sync.Mutex
	rx []byte
	tx []byte
}

func NewLoopUART() *LoopUART { return &LoopUART{} }

// Inject queues bytes for the device side to read.
func (u *LoopUART) Inject(p []byte) {
	u.mu.Lock()
	u.rx = append(u.rx, p...)
	u.mu.Unlock()
}

// Written returns a copy of everything the device side wrote.
func (u *LoopUART) Written() []byte {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]byte(nil), u.tx...)
}

// ClearWritten drops captured output.
func (u *LoopUART) ClearWritten() {
	u.mu.Lock()
	u.tx = u.tx[:0]
	u.mu.Unlock()
}

func (u *LoopUART) WriteByte(b byte) error {
	u.mu.Lock()
	u.tx = append(u.tx, b)
	u.mu.Unlock()
	return nil
}

func (u *LoopUART) Write(p []byte) (int, error) {
	u.mu.Lock()
	u.tx = append(u.tx, p...)
	u.mu.Unlock()
	return len(p), nil
}

func (u *LoopUART) Buffered() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.rx)
}

func (u *LoopUART) ReadByte() (byte, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.rx) == 0 {
		return 0, io.EOF
	}
	b := u.rx[0]
	u.rx = u.rx[1:]
	return b, nil
}

func (u *LoopUART) Read(p []byte) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := copy(p, u.rx)
	u.rx = u.rx[n:]
	return n, nil
}

type hostUARTFactory struct {
	ports map[string]UARTPort
}

func (f *hostUARTFactory) ByID(id string) (UARTPort, bool) {
	p, ok := f.ports[id]
	return p, ok
}

// DefaultUARTFactory creates loopback ports "uart0" and "uart1".
func DefaultUARTFactory() UARTFactory {
	return &hostUARTFactory{
		ports: map[string]UARTPort{
			"uart0": NewLoopUART(),
			"uart1": NewLoopUART(),
		},
	}
}

// ----------------------------- I²C (host) ------------------------------------

// HostI2C implements tinygo drivers.I2C for host-side tests. It records the
// last transaction and answers reads with zeros.
type HostI2C struct {
	mu     sync.Mutex
	LastTx struct {
		Addr uint16
		W    []byte
		Rn   int
	}
}

func (h *HostI2C) Tx(addr uint16, w, r []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LastTx.Addr = addr
	h.LastTx.W = append([]byte(nil), w...)
	h.LastTx.Rn = len(r)
	for i := range r {
		r[i] = 0
	}
	return nil
}

type hostI2CFactory struct {
	buses map[string]drivers.I2C
}

func (f *hostI2CFactory) ByID(id string) (drivers.I2C, bool) {
	b, ok := f.buses[id]
	return b, ok
}

// DefaultI2CFactory creates inert host I²C buses "i2c0" and "i2c1".
func DefaultI2CFactory() I2CBusFactory {
	return &hostI2CFactory{
		buses: map[string]drivers.I2C{
			"i2c0": &HostI2C{},
			"i2c1": &HostI2C{},
		},
	}
}
