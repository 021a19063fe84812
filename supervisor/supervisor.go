// Package supervisor brings the watch up and runs its power state machine.
//
// Pin edges arrive from interrupt handlers; the button (and the touch line
// while asleep) arm a debounce timer whose expiry toggles between Running
// and Sleeping. Only the loop in Run changes the power state. Every loop
// wakeup resynchronizes the logical clock with the tick counter.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"watchcore/ble"
	"watchcore/datetime"
	"watchcore/display/st7789"
	"watchcore/gfx"
	"watchcore/hal"
	"watchcore/spim"
	"watchcore/ui"
)

// PowerState is the supervisor's view of the device.
type PowerState uint32

const (
	Running PowerState = iota
	Sleeping
)

func (p PowerState) String() string {
	if p == Sleeping {
		return "Sleeping"
	}
	return "Running"
}

// Message is a request to the supervisor loop.
type Message uint8

const (
	GoToSleep Message = iota + 1
	GoToRunning

	// debounceExpired toggles the power state.
	debounceExpired
)

var (
	ErrNotStarted = errors.New("supervisor: not started")
	ErrSleeping   = errors.New("supervisor: display asleep")
)

// Device is a peripheral brought up by Start.
type Device interface {
	Init() error
}

// Battery samples the battery level.
type Battery interface {
	Init() error
	Update()
}

// Board constructs the peripherals in dependency order: the display
// borrows the transfer engine and the graphics layer borrows the display.
type Board interface {
	NewTransferEngine() *spim.Engine
	NewDisplay(bus *spim.Engine) *st7789.Device
	NewGraphics(lcd *st7789.Device) *gfx.Gfx
	NewTouch() Device
}

// Deps are the collaborators the supervisor drives.
type Deps struct {
	Board   Board
	GPIO    hal.GPIO
	Pins    hal.PinInterrupts
	Ticks   hal.TickCounter
	Battery Battery
	Clock   *datetime.Controller
	BLE     *ble.Controller
	UI      ui.Notifier

	// NewTimer defaults to NewRuntimeTimer.
	NewTimer NewTimerFunc
}

// Supervisor owns the transfer engine and the peripherals built on it.
type Supervisor struct {
	cfg    Config
	deps   Deps
	logger *slog.Logger

	// display is held across every use of the LCD after Start: drawing
	// through Draw and the sleep and wake sequences. The power state only
	// changes under it.
	display  sync.Mutex
	engine   *spim.Engine
	lcd      *st7789.Device
	graphics *gfx.Gfx
	touch    Device

	debounce debouncer
	queue    chan Message
	state    atomic.Uint32
	dropped  atomic.Uint32
}

// New returns a supervisor. The queue exists from here on, so requests
// pushed before Start are kept.
func New(cfg Config, deps Deps) *Supervisor {
	cfg = cfg.withDefaults()
	if deps.NewTimer == nil {
		deps.NewTimer = NewRuntimeTimer
	}
	return &Supervisor{
		cfg:    cfg,
		deps:   deps,
		logger: cfg.Logger,
		queue:  make(chan Message, cfg.QueueSize),
	}
}

// Start constructs and initializes the peripherals, then enables the
// button and touch inputs. A transfer engine or display failure is fatal;
// touch and battery failures are logged.
func (s *Supervisor) Start() error {
	b := s.deps.Board
	s.engine = b.NewTransferEngine()
	s.lcd = b.NewDisplay(s.engine)
	s.graphics = b.NewGraphics(s.lcd)
	s.touch = b.NewTouch()

	if err := s.engine.Init(); err != nil {
		return fmt.Errorf("supervisor: transfer engine: %w", err)
	}
	if err := s.lcd.Init(); err != nil {
		return fmt.Errorf("supervisor: display: %w", err)
	}
	if err := s.touch.Init(); err != nil {
		s.logerr("supervisor:touch init", slog.String("err", err.Error()))
	}
	if err := s.deps.Battery.Init(); err != nil {
		s.logerr("supervisor:battery init", slog.String("err", err.Error()))
	}

	s.deps.Battery.Update()
	s.deps.UI.PushMessage(ui.UpdateBatteryLevel)

	s.debounce = debouncer{timer: s.deps.NewTimer(s.onDebounceExpired), window: s.cfg.Debounce}

	g := s.deps.GPIO
	g.ConfigureSense(s.cfg.ButtonPin, hal.PullDown, hal.SenseHigh)
	g.ConfigureOutput(s.cfg.ButtonEnablePin)
	g.Set(s.cfg.ButtonEnablePin)
	if err := s.deps.Pins.SetEdgeHandler(s.cfg.ButtonPin, hal.EdgeFalling, s.OnPinEdge); err != nil {
		return fmt.Errorf("supervisor: button: %w", err)
	}

	g.ConfigureSense(s.cfg.TouchIRQPin, hal.PullUp, hal.SenseLow)
	if err := s.deps.Pins.SetEdgeHandler(s.cfg.TouchIRQPin, hal.EdgeFalling, s.OnPinEdge); err != nil {
		return fmt.Errorf("supervisor: touch irq: %w", err)
	}

	s.info("supervisor:started")
	return nil
}

// OnPinEdge is the edge handler for the button and touch lines. It runs in
// interrupt context.
func (s *Supervisor) OnPinEdge(pin hal.Pin) {
	switch pin {
	case s.cfg.TouchIRQPin:
		s.deps.UI.PushMessage(ui.TouchEvent)
		// A touch only wakes the device; it never puts it to sleep.
		if s.State() != Sleeping {
			return
		}
	case s.cfg.ButtonPin:
	default:
		return
	}
	s.debounce.Arm()
}

func (s *Supervisor) onDebounceExpired() {
	s.debounce.Stop()
	s.push(debounceExpired)
}

// PushMessage requests a power state. It does not block and may be called
// from interrupt context; a full queue drops the request.
func (s *Supervisor) PushMessage(m Message) {
	if m != GoToSleep && m != GoToRunning {
		return
	}
	s.push(m)
}

func (s *Supervisor) push(m Message) {
	select {
	case s.queue <- m:
	default:
		s.dropped.Add(1)
	}
}

// Run is the supervisor loop. It returns when ctx is done.
func (s *Supervisor) Run(ctx context.Context) error {
	if s.engine == nil {
		return ErrNotStarted
	}
	wait := time.NewTimer(s.pollInterval())
	defer wait.Stop()

	var dropped uint32
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m := <-s.queue:
			s.handle(m)
		case <-wait.C:
		}

		if n := s.dropped.Load(); n != dropped {
			s.logerr("supervisor:queue full", slog.Uint64("dropped", uint64(n-dropped)))
			dropped = n
		}
		s.deps.Clock.UpdateTime(s.deps.Ticks.Ticks())

		if !wait.Stop() {
			select {
			case <-wait.C:
			default:
			}
		}
		wait.Reset(s.pollInterval())
	}
}

func (s *Supervisor) pollInterval() time.Duration {
	if s.State() == Sleeping {
		return s.cfg.SleepPoll
	}
	return s.cfg.ActivePoll
}

func (s *Supervisor) handle(m Message) {
	sleeping := s.State() == Sleeping
	switch m {
	case debounceExpired:
		if sleeping {
			s.wake()
		} else {
			s.sleep()
		}
	case GoToRunning:
		if sleeping {
			s.wake()
		}
	case GoToSleep:
		if !sleeping {
			s.sleep()
		}
	}
}

func (s *Supervisor) wake() {
	s.display.Lock()
	defer s.display.Unlock()

	if err := s.engine.Wakeup(); err != nil {
		s.logerr("supervisor:wake transfer engine", slog.String("err", err.Error()))
	}
	if err := s.lcd.Wakeup(); err != nil {
		s.logerr("supervisor:wake display", slog.String("err", err.Error()))
	}
	s.state.Store(uint32(Running))
	s.deps.UI.PushMessage(ui.GoToRunning)
	s.deps.Battery.Update()
	s.deps.UI.PushMessage(ui.UpdateBatteryLevel)
	s.info("supervisor:running")
}

func (s *Supervisor) sleep() {
	s.display.Lock()
	defer s.display.Unlock()

	s.deps.UI.PushMessage(ui.GoToSleep)
	if err := s.lcd.Sleep(); err != nil {
		s.logerr("supervisor:sleep display", slog.String("err", err.Error()))
	}
	if err := s.engine.WaitIdle(s.cfg.IdleTimeout); err != nil {
		s.info("supervisor:abandoning transfer")
	}
	// Rows of an abandoned fill must not follow the next transfer.
	s.graphics.Reset()
	s.engine.Sleep()
	s.state.Store(uint32(Sleeping))
	s.info("supervisor:sleeping")
}

// Draw runs fn with exclusive use of the display. It fails with
// ErrSleeping, without calling fn, unless the device is running. Rows fn
// leaves streaming finish before the display can be put to sleep.
func (s *Supervisor) Draw(fn func(g *gfx.Gfx) error) error {
	if s.graphics == nil {
		return ErrNotStarted
	}
	s.display.Lock()
	defer s.display.Unlock()
	if s.State() != Running {
		return ErrSleeping
	}
	return fn(s.graphics)
}

// OnBleConnection is called by the BLE stack when a central connects.
func (s *Supervisor) OnBleConnection() {
	s.deps.BLE.Connect()
	s.deps.UI.PushMessage(ui.UpdateBleConnection)
}

// OnBleDisconnection is called by the BLE stack when the link drops.
func (s *Supervisor) OnBleDisconnection() {
	s.deps.BLE.Disconnect()
	s.deps.UI.PushMessage(ui.UpdateBleConnection)
}

// OnNewTime anchors the clock to cal at the current tick count.
func (s *Supervisor) OnNewTime(cal datetime.Calendar) error {
	if err := s.deps.Clock.SetTime(cal, s.deps.Ticks.Ticks()); err != nil {
		s.logerr("supervisor:set time", slog.String("err", err.Error()))
		return err
	}
	s.debug("supervisor:time set", slog.Time("now", s.deps.Clock.Now()))
	return nil
}

// HandleTransferInterrupt dispatches the SPIM interrupt to the engine,
// with the graphics layer as its buffer source.
func (s *Supervisor) HandleTransferInterrupt() {
	if s.engine == nil {
		return
	}
	var src spim.BufferSource
	if s.graphics != nil {
		src = s.graphics
	}
	s.engine.HandleIRQ(src)
}

// State returns the current power state.
func (s *Supervisor) State() PowerState {
	return PowerState(s.state.Load())
}

// Dropped returns how many requests were lost on a full queue.
func (s *Supervisor) Dropped() uint32 {
	return s.dropped.Load()
}

// Engine returns the transfer engine, nil before Start.
func (s *Supervisor) Engine() *spim.Engine {
	return s.engine
}

// Graphics returns the graphics layer, nil before Start.
func (s *Supervisor) Graphics() *gfx.Gfx {
	return s.graphics
}
