//go:build tinygo

package hal

import "runtime/interrupt"

// State is the saved interrupt mask.
type State = interrupt.State

// DisableInterrupts masks interrupts and returns the previous state.
func DisableInterrupts() State {
	return interrupt.Disable()
}

// RestoreInterrupts restores a state returned by DisableInterrupts.
func RestoreInterrupts(state State) {
	interrupt.Restore(state)
}
