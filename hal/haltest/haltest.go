// Package haltest provides in-memory implementations of the hal interfaces
// that record every register access for inspection by tests.
package haltest

import (
	"errors"
	"strconv"
	"sync"

	"watchcore/hal"
)

// SPIM is a fake SPIM register block.
type SPIM struct {
	mu sync.Mutex

	sck, mosi, miso hal.Pin
	frequency       uint32
	config          uint32
	inten           uint32
	enabled         bool
	events          map[hal.Event]bool

	// Chunks holds a copy of every TXD span submitted with Start.
	Chunks [][]byte
	txd    []byte
	rxd    []byte
	starts int

	// FinishOnStart raises EVENTS_END as soon as START is triggered.
	FinishOnStart bool

	// StickyEnable is the number of Disable writes ignored before the
	// ENABLE register latches.
	StickyEnable int

	// DisableWrites counts Disable calls.
	DisableWrites int

	// OnStart, when set, runs after every START trigger with the mutex
	// released.
	OnStart func()
}

// NewSPIM returns a fake SPIM with all registers at reset values.
func NewSPIM() *SPIM {
	return &SPIM{events: make(map[hal.Event]bool)}
}

func (s *SPIM) SetPins(sck, mosi, miso hal.Pin) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sck, s.mosi, s.miso = sck, mosi, miso
}

func (s *SPIM) SCK() hal.Pin {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sck
}

// Pins returns the programmed pin-select registers.
func (s *SPIM) Pins() (sck, mosi, miso hal.Pin) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sck, s.mosi, s.miso
}

func (s *SPIM) SetFrequency(v uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frequency = v
}

// Frequency returns the FREQUENCY register.
func (s *SPIM) Frequency() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frequency
}

func (s *SPIM) SetConfig(v uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = v
}

// Config returns the CONFIG register.
func (s *SPIM) Config() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

func (s *SPIM) SetTXD(buf []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txd = buf
}

func (s *SPIM) SetRXD(buf []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rxd = buf
}

// RXD returns the receive span currently programmed.
func (s *SPIM) RXD() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rxd
}

func (s *SPIM) EventPending(ev hal.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[ev]
}

func (s *SPIM) ClearEvent(ev hal.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev] = false
}

// Raise sets an event flag the way the peripheral would.
func (s *SPIM) Raise(ev hal.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev] = true
}

func (s *SPIM) EnableInterrupts(mask uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inten |= mask
}

func (s *SPIM) DisableInterrupts(mask uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inten &^= mask
}

func (s *SPIM) InterruptsEnabled() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inten
}

func (s *SPIM) Enable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = true
}

func (s *SPIM) Disable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DisableWrites++
	if s.StickyEnable > 0 {
		s.StickyEnable--
		return
	}
	s.enabled = false
}

func (s *SPIM) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

func (s *SPIM) Start() {
	s.mu.Lock()
	s.starts++
	chunk := make([]byte, len(s.txd))
	copy(chunk, s.txd)
	s.Chunks = append(s.Chunks, chunk)
	if s.FinishOnStart {
		s.events[hal.EventEnd] = true
	}
	hook := s.OnStart
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
}

// Starts returns how many times START was triggered.
func (s *SPIM) Starts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}

// ChunkLengths returns the length of every submitted chunk in order.
func (s *SPIM) ChunkLengths() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := make([]int, len(s.Chunks))
	for i, c := range s.Chunks {
		n[i] = len(c)
	}
	return n
}

// Sent returns every submitted byte concatenated.
func (s *SPIM) Sent() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []byte
	for _, c := range s.Chunks {
		out = append(out, c...)
	}
	return out
}

// PinMode is the configuration recorded by GPIO for a pin.
type PinMode uint8

const (
	ModeReset PinMode = iota
	ModeOutput
	ModeInput
	ModeSense
	ModeDefault
)

// PinState is the recorded configuration and level of one pin.
type PinState struct {
	Mode  PinMode
	Pull  hal.Pull
	Sense hal.Sense
	High  bool
}

// GPIO is a fake port that records pin configuration and levels.
type GPIO struct {
	mu   sync.Mutex
	pins map[hal.Pin]PinState

	// Log records every call as "op:pin".
	Log []string
}

// NewGPIO returns a fake GPIO port.
func NewGPIO() *GPIO {
	return &GPIO{pins: make(map[hal.Pin]PinState)}
}

func (g *GPIO) update(op string, pin hal.Pin, fn func(*PinState)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := g.pins[pin]
	fn(&st)
	g.pins[pin] = st
	g.Log = append(g.Log, op+":"+strconv.Itoa(int(pin)))
}

func (g *GPIO) ConfigureOutput(pin hal.Pin) {
	g.update("out", pin, func(s *PinState) { s.Mode = ModeOutput })
}

func (g *GPIO) ConfigureInput(pin hal.Pin, pull hal.Pull) {
	g.update("in", pin, func(s *PinState) { s.Mode, s.Pull = ModeInput, pull })
}

func (g *GPIO) ConfigureSense(pin hal.Pin, pull hal.Pull, sense hal.Sense) {
	g.update("sense", pin, func(s *PinState) { s.Mode, s.Pull, s.Sense = ModeSense, pull, sense })
}

func (g *GPIO) ConfigureDefault(pin hal.Pin) {
	g.update("default", pin, func(s *PinState) { *s = PinState{Mode: ModeDefault} })
}

func (g *GPIO) Set(pin hal.Pin) {
	g.update("set", pin, func(s *PinState) { s.High = true })
}

func (g *GPIO) Clear(pin hal.Pin) {
	g.update("clear", pin, func(s *PinState) { s.High = false })
}

// State returns the recorded state of pin.
func (g *GPIO) State(pin hal.Pin) PinState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pins[pin]
}

// High reports the latched output level of pin.
func (g *GPIO) High(pin hal.Pin) bool {
	return g.State(pin).High
}

// Router is a fake GPIOTE/PPI event router.
type Router struct {
	mu        sync.Mutex
	active    bool
	pin       hal.Pin
	Routes    int
	Teardowns int
}

func (r *Router) RouteToggleToStop(pin hal.Pin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active, r.pin = true, pin
	r.Routes++
}

func (r *Router) Teardown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active, r.pin = false, hal.NoPin
	r.Teardowns++
}

// Active reports whether a route is installed and the pin it watches.
func (r *Router) Active() (bool, hal.Pin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active, r.pin
}

// ErrPinInUse is returned when a second handler is registered on a pin.
var ErrPinInUse = errors.New("haltest: pin already has an edge handler")

// PinInterrupts is a fake edge-interrupt controller.
type PinInterrupts struct {
	mu       sync.Mutex
	handlers map[hal.Pin]hal.EdgeHandler
	edges    map[hal.Pin]hal.Edge
}

// NewPinInterrupts returns an empty controller.
func NewPinInterrupts() *PinInterrupts {
	return &PinInterrupts{
		handlers: make(map[hal.Pin]hal.EdgeHandler),
		edges:    make(map[hal.Pin]hal.Edge),
	}
}

func (p *PinInterrupts) SetEdgeHandler(pin hal.Pin, edge hal.Edge, fn hal.EdgeHandler) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.handlers[pin]; ok {
		return ErrPinInUse
	}
	p.handlers[pin] = fn
	p.edges[pin] = edge
	return nil
}

// Registered reports whether pin has a handler and its edge.
func (p *PinInterrupts) Registered(pin hal.Pin) (hal.Edge, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.handlers[pin]
	return p.edges[pin], ok
}

// Fire invokes the handler registered on pin, if any.
func (p *PinInterrupts) Fire(pin hal.Pin) {
	p.mu.Lock()
	fn := p.handlers[pin]
	p.mu.Unlock()
	if fn != nil {
		fn(pin)
	}
}
