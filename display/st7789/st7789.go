// Package st7789 drives the ST7789 LCD controller over a borrowed
// transfer engine.
package st7789

import (
	"image/color"
	"time"

	"tinygo.org/x/drivers"

	"watchcore/hal"
)

// Command set used by this driver.
const (
	cmdSWRESET = 0x01
	cmdSLPIN   = 0x10
	cmdSLPOUT  = 0x11
	cmdNORON   = 0x13
	cmdINVON   = 0x21
	cmdDISPON  = 0x29
	cmdCASET   = 0x2A
	cmdRASET   = 0x2B
	cmdRAMWR   = 0x2C
	cmdMADCTL  = 0x36
	cmdCOLMOD  = 0x3A
)

// colmod16 selects 65k colours, 16 bits per pixel.
const colmod16 = 0x55

// Bus is the part of the transfer engine the driver uses. Multi-byte writes
// may complete asynchronously; the driver waits for idle before toggling
// the data/command line.
type Bus interface {
	Write(data []byte) error
	WaitIdle(timeout time.Duration) error
}

// Config describes the panel and its control lines.
type Config struct {
	Width, Height int16
	DataCommand   hal.Pin
	// Reset is the hardware reset line, or hal.NoPin.
	Reset hal.Pin
	// IdleTimeout bounds each wait for the bus.
	IdleTimeout time.Duration
	// Delay is used for the controller's settle times. Defaults to
	// time.Sleep.
	Delay func(time.Duration)
}

// Device is an ST7789 panel.
type Device struct {
	bus  Bus
	gpio hal.GPIO
	cfg  Config
}

var _ drivers.Displayer = (*Device)(nil)

// New returns a driver bound to bus. Call Init before drawing.
func New(bus Bus, gpio hal.GPIO, cfg Config) *Device {
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 250 * time.Millisecond
	}
	if cfg.Delay == nil {
		cfg.Delay = time.Sleep
	}
	return &Device{bus: bus, gpio: gpio, cfg: cfg}
}

// Init resets the controller and turns the panel on.
func (d *Device) Init() error {
	d.gpio.ConfigureOutput(d.cfg.DataCommand)
	d.gpio.Set(d.cfg.DataCommand)
	if d.cfg.Reset != hal.NoPin {
		d.gpio.ConfigureOutput(d.cfg.Reset)
		d.gpio.Clear(d.cfg.Reset)
		d.cfg.Delay(10 * time.Millisecond)
		d.gpio.Set(d.cfg.Reset)
	}

	if err := d.command(cmdSWRESET); err != nil {
		return err
	}
	d.cfg.Delay(150 * time.Millisecond)
	if err := d.command(cmdSLPOUT); err != nil {
		return err
	}
	if err := d.command(cmdCOLMOD, colmod16); err != nil {
		return err
	}
	d.cfg.Delay(10 * time.Millisecond)
	if err := d.command(cmdMADCTL, 0x00); err != nil {
		return err
	}
	if err := d.setWindow(0, 0, d.cfg.Width, d.cfg.Height); err != nil {
		return err
	}
	for _, cmd := range []byte{cmdINVON, cmdNORON, cmdDISPON} {
		if err := d.command(cmd); err != nil {
			return err
		}
	}
	return nil
}

// Sleep puts the controller in sleep-in mode.
func (d *Device) Sleep() error {
	if err := d.command(cmdSLPIN); err != nil {
		return err
	}
	d.cfg.Delay(5 * time.Millisecond)
	return nil
}

// Wakeup leaves sleep-in mode.
func (d *Device) Wakeup() error {
	if err := d.command(cmdSLPOUT); err != nil {
		return err
	}
	d.cfg.Delay(5 * time.Millisecond)
	return d.command(cmdDISPON)
}

// BeginDrawBitmap selects the window that following pixel data fills.
func (d *Device) BeginDrawBitmap(x, y, w, h int16) error {
	if err := d.setWindow(x, y, w, h); err != nil {
		return err
	}
	return d.command(cmdRAMWR)
}

// DrawBuffer starts clocking pixel data into the current window. It
// returns once the transfer is started; b must stay untouched until the
// bus is idle.
func (d *Device) DrawBuffer(b []byte) error {
	return d.data(b)
}

func (d *Device) setWindow(x, y, w, h int16) error {
	x1, y1 := x+w-1, y+h-1
	if err := d.command(cmdCASET, byte(x>>8), byte(x), byte(x1>>8), byte(x1)); err != nil {
		return err
	}
	return d.command(cmdRASET, byte(y>>8), byte(y), byte(y1>>8), byte(y1))
}

func (d *Device) command(cmd byte, args ...byte) error {
	if err := d.bus.WaitIdle(d.cfg.IdleTimeout); err != nil {
		return err
	}
	d.gpio.Clear(d.cfg.DataCommand)
	if err := d.bus.Write([]byte{cmd}); err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	return d.data(args)
}

func (d *Device) data(b []byte) error {
	if err := d.bus.WaitIdle(d.cfg.IdleTimeout); err != nil {
		return err
	}
	d.gpio.Set(d.cfg.DataCommand)
	return d.bus.Write(b)
}

// Size implements drivers.Displayer.
func (d *Device) Size() (int16, int16) {
	return d.cfg.Width, d.cfg.Height
}

// SetPixel implements drivers.Displayer. Pixels outside the panel are
// ignored.
func (d *Device) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= d.cfg.Width || y >= d.cfg.Height {
		return
	}
	if d.BeginDrawBitmap(x, y, 1, 1) != nil {
		return
	}
	px := RGB565(c)
	d.data([]byte{byte(px >> 8), byte(px)})
}

// Display implements drivers.Displayer. Drawing goes straight to panel
// memory, so it only waits for the last transfer.
func (d *Device) Display() error {
	return d.bus.WaitIdle(d.cfg.IdleTimeout)
}

// RGB565 packs c into the panel's 16-bit pixel format.
func RGB565(c color.RGBA) uint16 {
	return uint16(c.R&0xF8)<<8 | uint16(c.G&0xFC)<<3 | uint16(c.B)>>3
}
