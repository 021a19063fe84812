package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchcore/hal"
	"watchcore/hal/haltest"
	"watchcore/spim"
)

func TestSPIConfigInitializes(t *testing.T) {
	bus := haltest.NewSPIM()
	eng := spim.New(SPIConfig(), spim.Hardware{
		Buses:   [spim.NumModules]hal.SPIM{bus},
		Routers: [spim.NumModules]hal.EventRouter{&haltest.Router{}},
		GPIO:    haltest.NewGPIO(),
	})
	require.NoError(t, eng.Init())

	sck, mosi, miso := bus.Pins()
	assert.Equal(t, []hal.Pin{PinSpiSck, PinSpiMosi, PinSpiMiso}, []hal.Pin{sck, mosi, miso})
	assert.Equal(t, uint32(0x80000000), bus.Frequency())
	assert.Equal(t, uint32(3<<1), bus.Config(), "MSB first, mode 3")
}

func TestPinsDistinct(t *testing.T) {
	pins := []hal.Pin{
		PinCst816sReset, PinButton, PinButtonEnable, PinCst816sIrq, PinBatteryVoltage,
		PinSpiSck, PinSpiMosi, PinSpiMiso, PinSpiLcdCsn, PinLcdDataCommand, PinLcdReset,
		PinLcdBacklightHigh, PinTwiScl, PinTwiSda,
	}
	seen := map[hal.Pin]bool{}
	for _, p := range pins {
		assert.False(t, seen[p], "pin %d assigned twice", p)
		seen[p] = true
	}
	lcd := LCDConfig()
	assert.Equal(t, int16(LcdWidth), lcd.Width)
	assert.Equal(t, PinLcdDataCommand, lcd.DataCommand)
}
