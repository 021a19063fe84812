package hal

import "sync/atomic"

// ManualTicks is a TickCounter whose value is set by software. Hosts and
// simulations use it in place of the RTC counter.
type ManualTicks struct {
	v atomic.Uint32
}

// Ticks returns the current tick value.
func (m *ManualTicks) Ticks() uint32 {
	return m.v.Load()
}

// Set stores ticks.
func (m *ManualTicks) Set(ticks uint32) {
	m.v.Store(ticks)
}

// Advance adds delta and returns the new value. It wraps at 32 bits.
func (m *ManualTicks) Advance(delta uint32) uint32 {
	return m.v.Add(delta)
}
