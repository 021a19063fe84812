package spim

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"watchcore/hal"
)

// Module selects one of the SPIM peripheral instances.
type Module uint8

const (
	SPI0 Module = iota
	SPI1

	NumModules = 2
)

// Frequency is the SCK frequency class.
type Frequency uint8

const (
	Freq8MHz Frequency = iota
)

// BitOrder selects which bit of each byte is shifted out first.
type BitOrder uint8

const (
	MSBFirst BitOrder = iota
	LSBFirst
)

// Mode is the SPI clock polarity/phase mode.
// Mode 0: CPOL=0, CPHA=0 (clock idle low, sample on leading edge)
// Mode 1: CPOL=0, CPHA=1 (clock idle low, sample on trailing edge)
// Mode 2: CPOL=1, CPHA=0 (clock idle high, sample on leading edge)
// Mode 3: CPOL=1, CPHA=1 (clock idle high, sample on trailing edge)
type Mode uint8

const (
	Mode0 Mode = iota
	Mode1
	Mode2
	Mode3
)

// Params is the immutable electrical configuration of one engine. It is
// re-applied verbatim on every wake.
type Params struct {
	BitOrder  BitOrder
	Mode      Mode
	Frequency Frequency
	SCK       hal.Pin
	MOSI      hal.Pin
	MISO      hal.Pin
	CS        hal.Pin
}

// Config holds the construction parameters of an Engine.
type Config struct {
	Module Module
	Params Params

	// BusyTimeout bounds how long Write waits for a previous session to
	// release the bus.
	BusyTimeout time.Duration

	// CompletionTimeout bounds synchronous waits for hardware completion:
	// single-byte writes and Tx.
	CompletionTimeout time.Duration

	Logger *slog.Logger
}

const (
	defaultBusyTimeout       = 50 * time.Millisecond
	defaultCompletionTimeout = 10 * time.Millisecond
)

func (c Config) withDefaults() Config {
	if c.BusyTimeout == 0 {
		c.BusyTimeout = defaultBusyTimeout
	}
	if c.CompletionTimeout == 0 {
		c.CompletionTimeout = defaultCompletionTimeout
	}
	return c
}

var (
	ErrInvalidModule    = errors.New("spim: invalid module")
	ErrInvalidFrequency = errors.New("spim: unsupported frequency")
	ErrInvalidBitOrder  = errors.New("spim: invalid bit order")
	ErrInvalidMode      = errors.New("spim: invalid mode")
)

// FREQUENCY register values.
const (
	frequencyM8 uint32 = 0x80000000
)

// CONFIG register layout.
const (
	configOrderLSB uint32 = 1 << 0
	configModePos         = 1
)

func (f Frequency) register() (uint32, error) {
	switch f {
	case Freq8MHz:
		return frequencyM8, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidFrequency, f)
	}
}

// configRegister encodes bit order and mode into the CONFIG register: bit 0
// is ORDER, bit 1 is CPHA and bit 2 is CPOL.
func configRegister(order BitOrder, mode Mode) (uint32, error) {
	var reg uint32
	switch order {
	case MSBFirst:
	case LSBFirst:
		reg |= configOrderLSB
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidBitOrder, order)
	}

	switch mode {
	case Mode0, Mode1, Mode2, Mode3:
		reg |= uint32(mode) << configModePos
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidMode, mode)
	}
	return reg, nil
}
