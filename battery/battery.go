// Package battery converts battery voltage samples to a charge level.
package battery

import (
	"errors"
	"sync/atomic"
)

// Sampler reads the battery ADC channel scaled to 16 bits.
// machine.ADC satisfies it.
type Sampler interface {
	Get() uint16
}

// Conversion constants for the PineTime: the ADC spans 3.6 V behind a
// 1:2 divider, and the cell is treated as empty at 3.45 V and full at
// 4.18 V.
const (
	fullScaleMillivolts = 3600 * 2
	emptyMillivolts     = 3450
	fullMillivolts      = 4180
)

var ErrNoSampler = errors.New("battery: no sampler")

// Controller holds the last sampled level. Update is called by the
// supervisor; the display application reads Level and Voltage.
type Controller struct {
	adc       Sampler
	millivolt atomic.Uint32
	percent   atomic.Uint32
}

func New(adc Sampler) *Controller {
	return &Controller{adc: adc}
}

func (c *Controller) Init() error {
	if c.adc == nil {
		return ErrNoSampler
	}
	return nil
}

// Update samples the ADC once.
func (c *Controller) Update() {
	if c.adc == nil {
		return
	}
	mv := uint32(c.adc.Get()) * fullScaleMillivolts / 0xFFFF
	c.millivolt.Store(mv)
	c.percent.Store(uint32(Percent(mv)))
}

// Voltage returns the last sample in millivolts.
func (c *Controller) Voltage() uint32 {
	return c.millivolt.Load()
}

// Level returns the last sample as a percentage.
func (c *Controller) Level() uint8 {
	return uint8(c.percent.Load())
}

// Percent maps a cell voltage linearly onto 0..100.
func Percent(millivolts uint32) uint8 {
	switch {
	case millivolts <= emptyMillivolts:
		return 0
	case millivolts >= fullMillivolts:
		return 100
	}
	return uint8((millivolts - emptyMillivolts) * 100 / (fullMillivolts - emptyMillivolts))
}
