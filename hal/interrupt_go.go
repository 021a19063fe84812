//go:build !tinygo

package hal

// State stands in for the saved interrupt mask on the host.
type State uintptr

// DisableInterrupts does nothing on the host.
func DisableInterrupts() State {
	return 0
}

func RestoreInterrupts(state State) {}
