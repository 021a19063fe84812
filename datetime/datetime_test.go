package datetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var anchor = Calendar{Year: 2024, Month: 2, Day: 28, DayOfWeek: Wednesday, Hour: 23, Minute: 59, Second: 58}

func TestUpdateTimeCarriesSubSecondTicks(t *testing.T) {
	c := NewController(0, 0)
	require.NoError(t, c.SetTime(anchor, 1000))

	c.UpdateTime(1000 + 512)
	assert.Equal(t, anchor.Time(), c.Now())

	c.UpdateTime(1000 + 1024)
	assert.Equal(t, anchor.Time().Add(time.Second), c.Now())

	c.UpdateTime(1000 + 3*1024 + 100)
	assert.Equal(t, anchor.Time().Add(3*time.Second), c.Now())
	assert.Equal(t, Calendar{Year: 2024, Month: 2, Day: 29, DayOfWeek: Thursday, Hour: 0, Minute: 0, Second: 1}, c.Calendar())
}

func TestUpdateTimeAcrossCounterWrap(t *testing.T) {
	c := NewController(DefaultTickRate, DefaultCounterMask)
	start := uint32(DefaultCounterMask - 1023)
	require.NoError(t, c.SetTime(anchor, start))

	// 1024 ticks to reach the wrap point plus 2048 after it.
	c.UpdateTime(2048)
	assert.Equal(t, anchor.Time().Add(3*time.Second), c.Now())
}

func TestUpdateTimeIgnoresHighCounterBits(t *testing.T) {
	c := NewController(32768, DefaultCounterMask)
	require.NoError(t, c.SetTime(anchor, 0xFF000000))
	c.UpdateTime(0xAB000000 | 32768*2)
	assert.Equal(t, anchor.Time().Add(2*time.Second), c.Now())
}

func TestSetTimeValidates(t *testing.T) {
	c := NewController(0, 0)
	before := c.Now()

	bad := anchor
	bad.Month = 13
	assert.ErrorIs(t, c.SetTime(bad, 0), ErrInvalidTime)

	bad = anchor
	bad.Hour = 24
	assert.ErrorIs(t, c.SetTime(bad, 0), ErrInvalidTime)
	assert.Equal(t, before, c.Now())
}

func TestFromTimeSunday(t *testing.T) {
	cal := FromTime(time.Date(2024, time.March, 3, 8, 30, 0, 0, time.UTC))
	assert.Equal(t, Sunday, cal.DayOfWeek)
	assert.NoError(t, cal.Validate())
}
