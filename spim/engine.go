// Package spim drives an nRF52 EasyDMA SPI master as a transmit-only
// streaming engine.
//
// A session starts with Write and keeps chip select asserted while the
// completion interrupt chains DMA chunks, first through the written buffer
// and then through whatever a BufferSource yields. The session ends when
// the source is exhausted.
package spim

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"tinygo.org/x/drivers"

	"watchcore/hal"
)

// MaxChunk is the largest span EasyDMA moves in one operation (MAXCNT is
// 8 bits wide on the nRF52832).
const MaxChunk = 255

var (
	ErrNilBuffer          = errors.New("spim: nil buffer")
	ErrEmptyBuffer        = errors.New("spim: empty buffer")
	ErrNotInitialized     = errors.New("spim: engine not initialized")
	ErrAsleep             = errors.New("spim: engine asleep")
	ErrBusy               = errors.New("spim: bus busy")
	ErrTimeout            = errors.New("spim: transfer did not complete")
	ErrReceiveUnsupported = errors.New("spim: receive not supported")
)

// BufferSource supplies follow-on data for a session once the current
// buffer is exhausted. NextBuffer is called from interrupt context and must
// not block. Returning ok=false (or an empty span) ends the session.
type BufferSource interface {
	NextBuffer() (buf []byte, ok bool)
}

// Hardware is the register surface used by an Engine.
type Hardware struct {
	// Buses holds the SPIM instances indexed by Module, and Routers the
	// event router bound to each. Init rejects a module missing either.
	Buses   [NumModules]hal.SPIM
	Routers [NumModules]hal.EventRouter
	GPIO    hal.GPIO
}

// Engine owns one SPIM instance and its chip select line.
//
// busy, remaining and inflight are shared between the task calling Write
// and the completion interrupt. Write only touches them while the bus is
// idle (or inside a critical section), and OnEndEvent returns early once
// busy is cleared.
type Engine struct {
	cfg    Config
	hw     Hardware
	bus    hal.SPIM
	router hal.EventRouter
	logger *slog.Logger

	busy       atomic.Bool
	asleep     atomic.Bool
	remaining  []byte
	inflight   []byte
	workaround workaroundMode

	chunks atomic.Uint32
}

var _ drivers.SPI = (*Engine)(nil)

// New returns an engine for cfg. Call Init before writing.
func New(cfg Config, hw Hardware) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		cfg:    cfg,
		hw:     hw,
		logger: cfg.Logger,
	}
}

// Init configures the pins and the peripheral and enables it. It stops at
// the first invalid setting, before any interrupt is enabled. Any session
// left over from before a sleep is discarded.
func (e *Engine) Init() error {
	p := e.cfg.Params
	g := e.hw.GPIO

	state := hal.DisableInterrupts()
	e.remaining = nil
	e.inflight = nil
	e.busy.Store(false)
	hal.RestoreInterrupts(state)

	g.Set(p.SCK)
	g.ConfigureOutput(p.SCK)
	g.Clear(p.MOSI)
	g.ConfigureOutput(p.MOSI)
	g.ConfigureInput(p.MISO, hal.PullNone)
	g.ConfigureOutput(p.CS)

	if e.cfg.Module >= NumModules || e.hw.Buses[e.cfg.Module] == nil || e.hw.Routers[e.cfg.Module] == nil {
		return fmt.Errorf("%w: %d", ErrInvalidModule, e.cfg.Module)
	}
	bus := e.hw.Buses[e.cfg.Module]

	bus.SetPins(p.SCK, p.MOSI, p.MISO)
	g.Set(p.CS) // Inactive high.

	freq, err := p.Frequency.register()
	if err != nil {
		return err
	}
	bus.SetFrequency(freq)

	conf, err := configRegister(p.BitOrder, p.Mode)
	if err != nil {
		return err
	}
	bus.SetConfig(conf)

	bus.ClearEvent(hal.EventEndRX)
	bus.ClearEvent(hal.EventEndTX)
	bus.ClearEvent(hal.EventEnd)
	bus.ClearEvent(hal.EventStarted)
	bus.ClearEvent(hal.EventStopped)

	bus.EnableInterrupts(engineInterrupts)
	bus.Enable()

	e.bus = bus
	e.router = e.hw.Routers[e.cfg.Module]
	e.workaround = workaroundOff
	e.asleep.Store(false)
	e.debug("spim:init", slog.Int("module", int(e.cfg.Module)), slog.Uint64("config", uint64(conf)))
	return nil
}

// Write starts a session clocking out data. Transfers of two or more bytes
// return once the first chunk is started and finish in OnEndEvent; data
// must stay untouched until Busy reports false. A one-byte write completes
// before Write returns.
func (e *Engine) Write(data []byte) error {
	if data == nil {
		return ErrNilBuffer
	}
	if len(data) == 0 {
		return ErrEmptyBuffer
	}
	if e.bus == nil {
		return ErrNotInitialized
	}
	if e.asleep.Load() {
		return ErrAsleep
	}
	if !e.waitIdle(e.cfg.BusyTimeout) {
		e.debug("spim:write busy", slog.Int("len", len(data)))
		return ErrBusy
	}
	// Sleep may have ended the session we were waiting on.
	if e.asleep.Load() {
		return ErrAsleep
	}

	mode := workaroundFor(len(data))
	e.applyWorkaround(mode)

	e.hw.GPIO.Clear(e.cfg.Params.CS)

	state := hal.DisableInterrupts()
	e.remaining = data
	e.busy.Store(true)
	e.submit()
	hal.RestoreInterrupts(state)

	if mode != workaroundOn {
		return nil
	}

	// The completion interrupt is masked under the workaround: poll END.
	deadline := time.Now().Add(e.cfg.CompletionTimeout)
	for !e.bus.EventPending(hal.EventEnd) {
		if time.Now().After(deadline) {
			e.release()
			e.logerr("spim:single-byte write timed out")
			return ErrTimeout
		}
		runtime.Gosched()
	}
	e.bus.ClearEvent(hal.EventEnd)
	e.release()
	return nil
}

// submit hands the next chunk of remaining to EasyDMA and starts it.
func (e *Engine) submit() {
	n := min(MaxChunk, len(e.remaining))
	e.inflight = e.remaining[:n]
	e.prepareTx(e.inflight)
	e.remaining = e.remaining[n:]
	e.chunks.Add(1)
	e.bus.Start()
}

func (e *Engine) prepareTx(chunk []byte) {
	e.bus.SetTXD(chunk)
	e.bus.SetRXD(nil)
	e.bus.ClearEvent(hal.EventEnd)
}

// release ends the session. CS goes high before busy is cleared so that
// anyone observing busy=false also observes the bus released.
func (e *Engine) release() {
	e.remaining = nil
	e.inflight = nil
	e.hw.GPIO.Set(e.cfg.Params.CS)
	e.busy.Store(false)
}

// OnEndEvent handles a completed DMA chunk. It continues the current
// buffer, then asks src for the next one, and releases the bus when src has
// nothing left. It is a no-op when no session is active.
func (e *Engine) OnEndEvent(src BufferSource) {
	if !e.busy.Load() {
		return
	}
	if len(e.remaining) > 0 {
		e.submit()
		return
	}
	if src != nil {
		if buf, ok := src.NextBuffer(); ok && len(buf) > 0 {
			e.remaining = buf
			e.submit()
			return
		}
	}
	e.release()
}

// OnStartedEvent handles the STARTED event. Nothing is paced on it yet.
func (e *Engine) OnStartedEvent(src BufferSource) {
	if !e.busy.Load() {
		return
	}
}

// HandleIRQ is the SPIM interrupt service routine. Each event is serviced
// only when its interrupt is enabled.
func (e *Engine) HandleIRQ(src BufferSource) {
	bus := e.bus
	if bus == nil {
		return
	}
	enabled := bus.InterruptsEnabled()
	if enabled&hal.IntEnd != 0 && bus.EventPending(hal.EventEnd) {
		bus.ClearEvent(hal.EventEnd)
		e.OnEndEvent(src)
	}
	if enabled&hal.IntStarted != 0 && bus.EventPending(hal.EventStarted) {
		bus.ClearEvent(hal.EventStarted)
		e.OnStartedEvent(src)
	}
	if enabled&hal.IntStopped != 0 && bus.EventPending(hal.EventStopped) {
		bus.ClearEvent(hal.EventStopped)
	}
}

// Busy reports whether a session holds the bus.
func (e *Engine) Busy() bool {
	return e.busy.Load()
}

// WorkaroundActive reports whether the anomaly 58 route is installed.
func (e *Engine) WorkaroundActive() bool {
	return e.workaround == workaroundOn
}

// Chunks returns the number of DMA operations started since boot.
func (e *Engine) Chunks() uint32 {
	return e.chunks.Load()
}

// WaitIdle blocks until the current session ends or timeout elapses.
func (e *Engine) WaitIdle(timeout time.Duration) error {
	if !e.waitIdle(timeout) {
		return ErrTimeout
	}
	return nil
}

func (e *Engine) waitIdle(timeout time.Duration) bool {
	if !e.busy.Load() {
		return true
	}
	deadline := time.Now().Add(timeout)
	for e.busy.Load() {
		if time.Now().After(deadline) {
			return false
		}
		runtime.Gosched()
	}
	return true
}

// Sleep powers the peripheral down and parks its pins. A session still in
// progress is abandoned; completion interrupts that arrive later are
// ignored. Write fails with ErrAsleep until Wakeup.
func (e *Engine) Sleep() {
	if e.bus == nil {
		return
	}
	e.asleep.Store(true)
	if e.busy.Load() {
		state := hal.DisableInterrupts()
		e.remaining = nil
		e.inflight = nil
		e.busy.Store(false)
		hal.RestoreInterrupts(state)
		e.info("spim:sleep abandoned session")
	}

	// ENABLE may not latch on the first write.
	for e.bus.Enabled() {
		e.bus.Disable()
	}

	p := e.cfg.Params
	e.hw.GPIO.ConfigureDefault(p.SCK)
	e.hw.GPIO.ConfigureDefault(p.MOSI)
	e.hw.GPIO.ConfigureDefault(p.MISO)
	e.hw.GPIO.ConfigureDefault(p.CS)
}

// Asleep reports whether Sleep was called without a successful Wakeup.
func (e *Engine) Asleep() bool {
	return e.asleep.Load()
}

// Wakeup re-runs Init.
func (e *Engine) Wakeup() error {
	return e.Init()
}

// Tx implements drivers.SPI. It writes w and waits for the session to end.
// The engine is transmit-only: a non-empty r is rejected.
func (e *Engine) Tx(w, r []byte) error {
	if len(r) != 0 {
		return ErrReceiveUnsupported
	}
	if len(w) == 0 {
		return nil
	}
	if err := e.Write(w); err != nil {
		return err
	}
	return e.WaitIdle(e.txTimeout(len(w)))
}

// byteTime is one byte at 8 MHz, doubled for the gaps between chunks.
const byteTime = 2 * time.Microsecond

// txTimeout bounds the wait for a session of n bytes.
func (e *Engine) txTimeout(n int) time.Duration {
	return e.cfg.CompletionTimeout + time.Duration(n)*byteTime
}

// Transfer implements drivers.SPI. It writes b; the read value is always 0.
func (e *Engine) Transfer(b byte) (byte, error) {
	return 0, e.Tx([]byte{b}, nil)
}
