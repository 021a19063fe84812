package cst816s

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchcore/hal"
	"watchcore/hal/haltest"
)

const pinReset hal.Pin = 10

// fakeI2C answers register reads from a map.
type fakeI2C struct {
	regs map[uint8][]byte
	err  error
	addr []uint16
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	f.addr = append(f.addr, addr)
	if f.err != nil {
		return f.err
	}
	copy(r, f.regs[w[0]])
	return nil
}

func (f *fakeI2C) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return f.Tx(uint16(addr), []byte{reg}, buf)
}

func (f *fakeI2C) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	return f.err
}

func TestInitPulsesReset(t *testing.T) {
	gpio := haltest.NewGPIO()
	bus := &fakeI2C{regs: map[uint8][]byte{regChipID: {0xB4}}}
	var slept time.Duration
	d := New(bus, gpio, pinReset, func(d time.Duration) { slept += d })

	require.NoError(t, d.Init())
	assert.Equal(t, uint8(0xB4), d.ChipID())
	assert.Equal(t, []uint16{Address}, bus.addr)
	assert.True(t, gpio.High(pinReset))
	assert.Equal(t, []string{"out:10", "set:10", "clear:10", "set:10"}, gpio.Log)
	assert.Equal(t, 105*time.Millisecond, slept)
}

func TestInitBusError(t *testing.T) {
	d := New(&fakeI2C{err: assert.AnError}, haltest.NewGPIO(), pinReset, func(time.Duration) {})
	assert.ErrorIs(t, d.Init(), assert.AnError)
}

func TestRead(t *testing.T) {
	bus := &fakeI2C{regs: map[uint8][]byte{
		regGesture: {byte(GestureSingleTap), 0x01, 0x40, 0x78, 0x80, 0x3C},
	}}
	d := New(bus, haltest.NewGPIO(), pinReset, func(time.Duration) {})

	p, err := d.Read()
	require.NoError(t, err)
	assert.Equal(t, Point{Gesture: GestureSingleTap, Touched: true, X: 0x78, Y: 0x3C}, p)
}
