// Package hal describes the peripheral surface the control core drives.
// Platform-specific implementations live under targets/; host tests use
// the fakes in hal/haltest.
package hal

// Pin identifies a GPIO line on port 0.
type Pin uint8

// NoPin marks an unused pin slot.
const NoPin Pin = 0xFF

// Pull selects the input bias resistor.
type Pull uint8

const (
	PullNone Pull = iota
	PullDown
	PullUp
)

// Sense selects the level that wakes the chip from system-off.
type Sense uint8

const (
	SenseDisabled Sense = iota
	SenseHigh
	SenseLow
)

// Edge selects which transition raises a pin interrupt.
type Edge uint8

const (
	EdgeFalling Edge = iota
	EdgeRising
	EdgeToggle
)

// GPIO configures and drives port pins.
type GPIO interface {
	// ConfigureOutput makes pin a push-pull output, keeping its latched level.
	ConfigureOutput(pin Pin)

	// ConfigureInput makes pin a connected input with the given bias.
	ConfigureInput(pin Pin, pull Pull)

	// ConfigureSense makes pin an input that can wake the chip.
	ConfigureSense(pin Pin, pull Pull, sense Sense)

	// ConfigureDefault returns pin to its reset state: disconnected input.
	ConfigureDefault(pin Pin)

	// Set drives pin high.
	Set(pin Pin)

	// Clear drives pin low.
	Clear(pin Pin)
}

// EdgeHandler is called from interrupt context when a pin edge fires.
type EdgeHandler func(pin Pin)

// PinInterrupts attaches edge handlers to input pins.
type PinInterrupts interface {
	SetEdgeHandler(pin Pin, edge Edge, fn EdgeHandler) error
}

// TickCounter exposes the free-running hardware tick register.
type TickCounter interface {
	Ticks() uint32
}
