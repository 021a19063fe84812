package battery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fixedSampler uint16

func (s fixedSampler) Get() uint16 { return uint16(s) }

func TestPercent(t *testing.T) {
	assert.Equal(t, uint8(0), Percent(0))
	assert.Equal(t, uint8(0), Percent(emptyMillivolts))
	assert.Equal(t, uint8(50), Percent(3815))
	assert.Equal(t, uint8(100), Percent(fullMillivolts))
	assert.Equal(t, uint8(100), Percent(5000))
}

func TestUpdate(t *testing.T) {
	// 0x8000 of full scale is 3600 mV at the cell.
	c := New(fixedSampler(0x8000))
	assert.NoError(t, c.Init())
	assert.Zero(t, c.Level())

	c.Update()
	assert.Equal(t, uint32(3600), c.Voltage())
	assert.Equal(t, uint8(20), c.Level())
}

func TestNoSampler(t *testing.T) {
	c := New(nil)
	assert.ErrorIs(t, c.Init(), ErrNoSampler)
	c.Update()
	assert.Zero(t, c.Voltage())
}
