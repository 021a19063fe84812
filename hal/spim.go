package hal

// Event identifies a SPIM event register.
type Event uint8

const (
	EventStopped Event = iota
	EventEndRX
	EventEnd
	EventEndTX
	EventStarted
)

// Interrupt enable bits. Positions match the nRF52 SPIM INTENSET register.
const (
	IntStopped uint32 = 1 << 1
	IntEndRX   uint32 = 1 << 4
	IntEnd     uint32 = 1 << 6
	IntEndTX   uint32 = 1 << 8
	IntStarted uint32 = 1 << 19
)

// SPIM is the register block of one EasyDMA SPI master instance.
type SPIM interface {
	// SetPins programs PSEL.SCK, PSEL.MOSI and PSEL.MISO.
	SetPins(sck, mosi, miso Pin)

	// SCK reads back PSEL.SCK.
	SCK() Pin

	SetFrequency(v uint32)
	SetConfig(v uint32)

	// SetTXD points the transmit DMA channel at buf (PTR, MAXCNT, LIST=0).
	// A nil buf clears the channel. The caller keeps buf alive until END.
	SetTXD(buf []byte)

	// SetRXD points the receive DMA channel at buf, or clears it when nil.
	SetRXD(buf []byte)

	EventPending(ev Event) bool
	ClearEvent(ev Event)

	// EnableInterrupts writes mask to INTENSET.
	EnableInterrupts(mask uint32)

	// DisableInterrupts writes mask to INTENCLR.
	DisableInterrupts(mask uint32)

	// InterruptsEnabled reads INTENSET.
	InterruptsEnabled() uint32

	// Enable and Disable write the ENABLE register. Enabled reads it back;
	// the hardware may need more than one write to latch.
	Enable()
	Disable()
	Enabled() bool

	// Start triggers TASKS_START.
	Start()
}

// EventRouter wires hardware events to tasks without CPU involvement
// (GPIOTE + PPI on nRF52). It is bound to one SPIM instance.
type EventRouter interface {
	// RouteToggleToStop makes any toggle of pin trigger the bound
	// instance's STOP task.
	RouteToggleToStop(pin Pin)

	// Teardown disconnects the route and frees the channel.
	Teardown()
}
