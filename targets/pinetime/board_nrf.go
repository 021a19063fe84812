//go:build nrf52

package main

import (
	"device/nrf"
	"log/slog"
	"machine"

	"watchcore/board"
	"watchcore/display/st7789"
	"watchcore/gfx"
	"watchcore/spim"
	"watchcore/supervisor"
	"watchcore/touch/cst816s"
)

// spimBlocks are the SPIM register blocks indexed by spim.Module.
var spimBlocks = [spim.NumModules]*nrf.SPIM_Type{nrf.SPIM0, nrf.SPIM1}

// pinetime constructs the peripherals on their nRF52832 register blocks.
type pinetime struct {
	logger *slog.Logger
	spi    spim.Config
	touch  *cst816s.Device
}

func newPinetime(logger *slog.Logger) *pinetime {
	cfg := board.SPIConfig()
	cfg.Logger = logger
	return &pinetime{
		logger: logger,
		spi:    cfg,
		touch:  cst816s.New(machine.I2C1, gpioPort{}, board.PinCst816sReset, nil),
	}
}

func (b *pinetime) NewTransferEngine() *spim.Engine {
	hw := spim.Hardware{GPIO: gpioPort{}}
	for i, block := range spimBlocks {
		hw.Buses[i] = spimRegs{block}
		hw.Routers[i] = stopRouter{bus: block}
	}
	return spim.New(b.spi, hw)
}

func (*pinetime) NewDisplay(bus *spim.Engine) *st7789.Device {
	return st7789.New(bus, gpioPort{}, board.LCDConfig())
}

func (*pinetime) NewGraphics(lcd *st7789.Device) *gfx.Gfx {
	return gfx.New(lcd)
}

func (b *pinetime) NewTouch() supervisor.Device {
	return touchPanel{b.touch}
}

// touchPanel brings up the I2C bus before the controller.
type touchPanel struct {
	*cst816s.Device
}

func (t touchPanel) Init() error {
	err := machine.I2C1.Configure(machine.I2CConfig{
		SCL:       machine.Pin(board.PinTwiScl),
		SDA:       machine.Pin(board.PinTwiSda),
		Frequency: 400 * machine.KHz,
	})
	if err != nil {
		return err
	}
	return t.Device.Init()
}
