package supervisor

import (
	"log/slog"
	"time"

	"watchcore/board"
	"watchcore/hal"
)

// Config holds the supervisor's pins and timing.
type Config struct {
	ButtonPin       hal.Pin
	ButtonEnablePin hal.Pin
	TouchIRQPin     hal.Pin

	// Debounce is the quiet period after the last edge before the power
	// state toggles.
	Debounce time.Duration

	// ActivePoll and SleepPoll bound the main loop's wait while running and
	// while sleeping. Every wakeup resynchronizes the clock.
	ActivePoll time.Duration
	SleepPoll  time.Duration

	// QueueSize is the capacity of the message queue fed from interrupts.
	QueueSize int

	// IdleTimeout bounds how long going to sleep waits for the transfer
	// engine to finish its session.
	IdleTimeout time.Duration

	Logger *slog.Logger
}

// DefaultConfig returns the PineTime configuration.
func DefaultConfig() Config {
	return Config{
		ButtonPin:       board.PinButton,
		ButtonEnablePin: board.PinButtonEnable,
		TouchIRQPin:     board.PinCst816sIrq,
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Debounce == 0 {
		c.Debounce = 200 * time.Millisecond
	}
	if c.ActivePoll == 0 {
		c.ActivePoll = time.Second
	}
	if c.SleepPoll == 0 {
		c.SleepPoll = time.Hour
	}
	if c.QueueSize == 0 {
		c.QueueSize = 10
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 250 * time.Millisecond
	}
	return c
}
