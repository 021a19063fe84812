package spim

import "watchcore/hal"

// workaroundMode is the configuration of the event router for nRF52832
// anomaly 58 (FTPAN-58): a one-byte transfer clocks out extra bytes unless
// the peripheral is stopped on the first SCK edge.
type workaroundMode uint8

const (
	workaroundOff workaroundMode = iota
	workaroundOn
)

// engineInterrupts are the sources the completion path depends on.
const engineInterrupts = hal.IntEnd | hal.IntStopped | hal.IntStarted

func workaroundFor(length int) workaroundMode {
	if length == 1 {
		return workaroundOn
	}
	return workaroundOff
}

// applyWorkaround installs mode. It is applied on every Write, before the
// chip select is asserted.
func (e *Engine) applyWorkaround(mode workaroundMode) {
	switch mode {
	case workaroundOn:
		// Stop the instance when SCK toggles. The engine's own interrupts
		// stay masked; Write waits on the END flag instead.
		e.router.RouteToggleToStop(e.bus.SCK())
		e.bus.DisableInterrupts(engineInterrupts)
	default:
		e.router.Teardown()
		e.bus.EnableInterrupts(engineInterrupts)
	}
	e.workaround = mode
}
