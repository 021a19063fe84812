package gfx

import (
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchcore/display/st7789"
	"watchcore/hal"
	"watchcore/hal/haltest"
	"watchcore/spim"
)

type fakeDisplay struct {
	w, h    int16
	windows [][4]int16
	drawn   [][]byte
	err     error
}

func (d *fakeDisplay) BeginDrawBitmap(x, y, w, h int16) error {
	d.windows = append(d.windows, [4]int16{x, y, w, h})
	return nil
}

func (d *fakeDisplay) DrawBuffer(b []byte) error {
	if d.err != nil {
		return d.err
	}
	d.drawn = append(d.drawn, b)
	return nil
}

func (d *fakeDisplay) Size() (int16, int16) { return d.w, d.h }

func drain(g *Gfx) int {
	n := 0
	for {
		if _, ok := g.NextBuffer(); !ok {
			return n
		}
		n++
	}
}

func TestFillRectangleRows(t *testing.T) {
	lcd := &fakeDisplay{w: 240, h: 240}
	g := New(lcd)

	require.NoError(t, g.FillRectangle(10, 20, 4, 3, color.RGBA{R: 0xFF}))
	assert.Equal(t, [][4]int16{{10, 20, 4, 3}}, lcd.windows)
	require.Len(t, lcd.drawn, 1)
	assert.Equal(t, []byte{0xF8, 0, 0xF8, 0, 0xF8, 0, 0xF8, 0}, lcd.drawn[0])

	assert.Equal(t, 2, drain(g), "first row is drawn directly")
}

func TestFillRectangleClips(t *testing.T) {
	lcd := &fakeDisplay{w: 240, h: 240}
	g := New(lcd)

	require.NoError(t, g.FillRectangle(200, 230, 100, 100, color.RGBA{}))
	assert.Equal(t, [][4]int16{{200, 230, 40, 10}}, lcd.windows)
	assert.Len(t, lcd.drawn[0], 80)
	assert.Equal(t, 9, drain(g))

	assert.ErrorIs(t, g.FillRectangle(240, 0, 1, 1, color.RGBA{}), ErrOutOfBounds)
	assert.ErrorIs(t, g.FillRectangle(0, -1, 1, 1, color.RGBA{}), ErrOutOfBounds)
	assert.NoError(t, g.FillRectangle(0, 0, 0, 5, color.RGBA{}))
	assert.Len(t, lcd.windows, 1)
}

func TestNextBufferIdle(t *testing.T) {
	g := New(&fakeDisplay{w: 8, h: 8})
	buf, ok := g.NextBuffer()
	assert.False(t, ok)
	assert.Nil(t, buf)
}

// A full-screen clear through the real engine and driver: every 480-byte
// row goes out as a 255-byte and a 225-byte chunk under one chip select.
func TestClearScreenThroughEngine(t *testing.T) {
	bus := haltest.NewSPIM()
	bus.FinishOnStart = true
	gpio := haltest.NewGPIO()
	const cs hal.Pin = 25

	eng := spim.New(spim.Config{
		Module: spim.SPI0,
		Params: spim.Params{
			Mode: spim.Mode3, Frequency: spim.Freq8MHz,
			SCK: 2, MOSI: 3, MISO: 4, CS: cs,
		},
	}, spim.Hardware{
		Buses:   [spim.NumModules]hal.SPIM{bus},
		Routers: [spim.NumModules]hal.EventRouter{&haltest.Router{}},
		GPIO:    gpio,
	})
	require.NoError(t, eng.Init())

	lcd := st7789.New(eng, gpio, st7789.Config{
		Width: 240, Height: 240, DataCommand: 18, Reset: hal.NoPin,
		Delay: func(time.Duration) {},
	})
	g := New(lcd)

	// Deliver the completion interrupt as soon as a chunk starts.
	bus.OnStart = func() {
		if bus.InterruptsEnabled()&hal.IntEnd == 0 {
			return
		}
		assert.False(t, gpio.High(cs), "chip select released during session")
		eng.HandleIRQ(g)
	}
	require.NoError(t, g.ClearScreen())
	assert.False(t, eng.Busy())
	assert.True(t, gpio.High(cs))

	lengths := bus.ChunkLengths()
	require.Greater(t, len(lengths), 2*240)
	rows := lengths[len(lengths)-2*240:]
	for i := 0; i < len(rows); i += 2 {
		assert.Equal(t, 255, rows[i])
		assert.Equal(t, 225, rows[i+1])
	}
	// CASET, its arguments, RASET, its arguments and RAMWR precede the rows.
	assert.Equal(t, []int{1, 4, 1, 4, 1}, lengths[len(lengths)-2*240-5:len(lengths)-2*240])
}

func TestResetDropsOwedRows(t *testing.T) {
	g := New(&fakeDisplay{w: 240, h: 240})
	require.NoError(t, g.FillRectangle(0, 0, 240, 240, color.RGBA{R: 0xFF}))
	require.Equal(t, 239, g.Pending())

	g.Reset()
	assert.Zero(t, g.Pending())
	buf, ok := g.NextBuffer()
	assert.False(t, ok, "a later session was handed a stale row")
	assert.Nil(t, buf)
}

func TestFailedDrawResets(t *testing.T) {
	lcd := &fakeDisplay{w: 240, h: 240}
	g := New(lcd)
	require.NoError(t, g.FillRectangle(0, 0, 240, 10, color.RGBA{}))

	lcd.err = assert.AnError
	assert.ErrorIs(t, g.FillRectangle(0, 0, 240, 10, color.RGBA{}), assert.AnError)
	assert.Zero(t, g.Pending())
}
