// Package cst816s reads the CST816S capacitive touch controller.
package cst816s

import (
	"fmt"
	"time"

	"tinygo.org/x/drivers"

	"watchcore/hal"
)

// Address is the controller's 7-bit I2C address.
const Address = 0x15

const (
	regGesture = 0x01
	regChipID  = 0xA7
)

// Gesture is reported by the controller firmware.
type Gesture uint8

const (
	GestureNone       Gesture = 0x00
	GestureSlideDown  Gesture = 0x01
	GestureSlideUp    Gesture = 0x02
	GestureSlideLeft  Gesture = 0x03
	GestureSlideRight Gesture = 0x04
	GestureSingleTap  Gesture = 0x05
	GestureDoubleTap  Gesture = 0x0B
	GestureLongPress  Gesture = 0x0C
)

// Point is one touch report.
type Point struct {
	Gesture Gesture
	Touched bool
	X, Y    uint16
}

type Device struct {
	bus   drivers.I2C
	gpio  hal.GPIO
	reset hal.Pin
	delay func(time.Duration)
	id    uint8
}

// New returns a driver for the controller on bus with its reset line on
// reset. delay defaults to time.Sleep.
func New(bus drivers.I2C, gpio hal.GPIO, reset hal.Pin, delay func(time.Duration)) *Device {
	if delay == nil {
		delay = time.Sleep
	}
	return &Device{bus: bus, gpio: gpio, reset: reset, delay: delay}
}

// Init pulses reset and checks the controller answers.
func (d *Device) Init() error {
	d.gpio.ConfigureOutput(d.reset)
	d.gpio.Set(d.reset)
	d.delay(50 * time.Millisecond)
	d.gpio.Clear(d.reset)
	d.delay(5 * time.Millisecond)
	d.gpio.Set(d.reset)
	d.delay(50 * time.Millisecond)

	var id [1]byte
	if err := d.bus.Tx(Address, []byte{regChipID}, id[:]); err != nil {
		return fmt.Errorf("cst816s: read chip id: %w", err)
	}
	d.id = id[0]
	return nil
}

// ChipID returns the id read by Init.
func (d *Device) ChipID() uint8 {
	return d.id
}

// Read fetches the current touch report.
func (d *Device) Read() (Point, error) {
	var buf [6]byte
	if err := d.bus.Tx(Address, []byte{regGesture}, buf[:]); err != nil {
		return Point{}, fmt.Errorf("cst816s: read: %w", err)
	}
	return Point{
		Gesture: Gesture(buf[0]),
		Touched: buf[1]&0x0F != 0,
		X:       uint16(buf[2]&0x0F)<<8 | uint16(buf[3]),
		Y:       uint16(buf[4]&0x0F)<<8 | uint16(buf[5]),
	}, nil
}
