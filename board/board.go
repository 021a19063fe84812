// Package board holds the PineTime pin map and the default peripheral
// configuration derived from it.
package board

import (
	"watchcore/display/st7789"
	"watchcore/hal"
	"watchcore/spim"
)

const (
	PinCst816sReset     hal.Pin = 10
	PinButton           hal.Pin = 13
	PinButtonEnable     hal.Pin = 15
	PinCst816sIrq       hal.Pin = 28
	PinBatteryVoltage   hal.Pin = 31
	PinSpiSck           hal.Pin = 2
	PinSpiMosi          hal.Pin = 3
	PinSpiMiso          hal.Pin = 4
	PinSpiLcdCsn        hal.Pin = 25
	PinLcdDataCommand   hal.Pin = 18
	PinLcdReset         hal.Pin = 26
	PinLcdBacklightHigh hal.Pin = 23
	PinTwiScl           hal.Pin = 7
	PinTwiSda           hal.Pin = 6
)

// LCD panel geometry.
const (
	LcdWidth  = 240
	LcdHeight = 240
)

// SPIConfig returns the transfer engine configuration for the LCD bus.
func SPIConfig() spim.Config {
	return spim.Config{
		Module: spim.SPI0,
		Params: spim.Params{
			BitOrder:  spim.MSBFirst,
			Mode:      spim.Mode3,
			Frequency: spim.Freq8MHz,
			SCK:       PinSpiSck,
			MOSI:      PinSpiMosi,
			MISO:      PinSpiMiso,
			CS:        PinSpiLcdCsn,
		},
	}
}

// LCDConfig returns the panel configuration for the ST7789.
func LCDConfig() st7789.Config {
	return st7789.Config{
		Width:       LcdWidth,
		Height:      LcdHeight,
		DataCommand: PinLcdDataCommand,
		Reset:       PinLcdReset,
	}
}
