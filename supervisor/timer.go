package supervisor

import (
	"time"

	"watchcore/hal"
)

// Timer is a one-shot software timer. Reset (re)arms it for d, restarting
// any countdown in progress; Stop disarms it.
type Timer interface {
	Reset(d time.Duration) bool
	Stop() bool
}

// NewTimerFunc creates a stopped timer that calls fn on expiry.
type NewTimerFunc func(fn func()) Timer

// NewRuntimeTimer is the default NewTimerFunc, backed by time.AfterFunc.
func NewRuntimeTimer(fn func()) Timer {
	t := time.AfterFunc(time.Hour, fn)
	t.Stop()
	return t
}

// debouncer coalesces bursts of edges into a single expiry. Arm and Stop
// run from the pin interrupt and from the timer callback; both go through
// a critical section so they cannot interleave on targets where those
// contexts preempt each other.
type debouncer struct {
	timer  Timer
	window time.Duration
}

func (d *debouncer) Arm() {
	state := hal.DisableInterrupts()
	d.timer.Reset(d.window)
	hal.RestoreInterrupts(state)
}

func (d *debouncer) Stop() {
	state := hal.DisableInterrupts()
	d.timer.Stop()
	hal.RestoreInterrupts(state)
}
