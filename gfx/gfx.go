// Package gfx draws filled shapes by streaming a single line buffer
// through the display, one row per transfer-engine buffer request.
package gfx

import (
	"errors"
	"image/color"
	"sync/atomic"

	"watchcore/display/st7789"
)

// Display is the panel the graphics layer draws on.
type Display interface {
	BeginDrawBitmap(x, y, w, h int16) error
	DrawBuffer(b []byte) error
	Size() (int16, int16)
}

var ErrOutOfBounds = errors.New("gfx: rectangle outside the display")

// Gfx is the transfer engine's BufferSource while a fill is in progress.
type Gfx struct {
	lcd  Display
	line []byte

	// row is the span handed out by NextBuffer; rows counts how many more
	// times it is to be sent. Both are set before the first row starts and
	// read from the completion interrupt.
	row  []byte
	rows atomic.Int32
}

// New returns a graphics layer sized for lcd.
func New(lcd Display) *Gfx {
	w, _ := lcd.Size()
	return &Gfx{lcd: lcd, line: make([]byte, 2*int(w))}
}

// ClearScreen fills the whole panel with black.
func (g *Gfx) ClearScreen() error {
	w, h := g.lcd.Size()
	return g.FillRectangle(0, 0, w, h, color.RGBA{A: 0xFF})
}

// FillRectangle fills the rectangle with c, clipped to the panel. It
// returns once the first row is started; the remaining rows are pulled by
// the transfer engine through NextBuffer.
func (g *Gfx) FillRectangle(x, y, w, h int16, c color.RGBA) error {
	width, height := g.lcd.Size()
	if x < 0 || y < 0 || x >= width || y >= height {
		return ErrOutOfBounds
	}
	w = min(w, width-x)
	h = min(h, height-y)
	if w <= 0 || h <= 0 {
		return nil
	}

	// Waits for the previous fill to drain before the line is reused.
	if err := g.lcd.BeginDrawBitmap(x, y, w, h); err != nil {
		g.Reset()
		return err
	}

	px := st7789.RGB565(c)
	row := g.line[:2*int(w)]
	for i := 0; i < len(row); i += 2 {
		row[i] = byte(px >> 8)
		row[i+1] = byte(px)
	}
	g.row = row
	g.rows.Store(int32(h) - 1)
	if err := g.lcd.DrawBuffer(row); err != nil {
		g.Reset()
		return err
	}
	return nil
}

// Reset drops the rows still owed by an unfinished fill, so that a later
// transfer on the bus is not followed by stale pixels. Call it whenever
// the session carrying a fill is abandoned.
func (g *Gfx) Reset() {
	g.rows.Store(0)
}

// Pending returns the number of rows not yet handed to the engine.
func (g *Gfx) Pending() int {
	return int(max(g.rows.Load(), 0))
}

// NextBuffer implements spim.BufferSource.
func (g *Gfx) NextBuffer() ([]byte, bool) {
	if g.rows.Load() <= 0 {
		return nil, false
	}
	g.rows.Add(-1)
	return g.row, true
}
