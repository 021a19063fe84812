// Package datetime keeps wall-clock time from snapshots of a wrapping
// hardware tick counter.
package datetime

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultTickRate is the kernel tick rate of the nRF52 RTC port, in Hz.
	DefaultTickRate = 1024

	// DefaultCounterMask covers the 24-bit RTC COUNTER register.
	DefaultCounterMask = 0x00FFFFFF
)

// DayOfWeek follows the Bluetooth Current Time Service encoding.
type DayOfWeek uint8

const (
	UnknownDay DayOfWeek = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Calendar is a broken-down timestamp as delivered by a time-sync source.
type Calendar struct {
	Year      uint16
	Month     uint8
	Day       uint8
	DayOfWeek DayOfWeek
	Hour      uint8
	Minute    uint8
	Second    uint8
}

// ErrInvalidTime is returned by SetTime for out-of-range fields.
var ErrInvalidTime = errors.New("datetime: invalid calendar time")

// Validate checks every field against its range.
func (c Calendar) Validate() error {
	switch {
	case c.Month < 1 || c.Month > 12:
		return fmt.Errorf("%w: month %d", ErrInvalidTime, c.Month)
	case c.Day < 1 || c.Day > 31:
		return fmt.Errorf("%w: day %d", ErrInvalidTime, c.Day)
	case c.DayOfWeek > Sunday:
		return fmt.Errorf("%w: day of week %d", ErrInvalidTime, c.DayOfWeek)
	case c.Hour > 23 || c.Minute > 59 || c.Second > 59:
		return fmt.Errorf("%w: %02d:%02d:%02d", ErrInvalidTime, c.Hour, c.Minute, c.Second)
	}
	return nil
}

// Time converts c to a UTC time.Time.
func (c Calendar) Time() time.Time {
	return time.Date(int(c.Year), time.Month(c.Month), int(c.Day),
		int(c.Hour), int(c.Minute), int(c.Second), 0, time.UTC)
}

// FromTime builds a Calendar from t.
func FromTime(t time.Time) Calendar {
	dow := DayOfWeek(t.Weekday())
	if dow == 0 {
		dow = Sunday
	}
	return Calendar{
		Year:      uint16(t.Year()),
		Month:     uint8(t.Month()),
		Day:       uint8(t.Day()),
		DayOfWeek: dow,
		Hour:      uint8(t.Hour()),
		Minute:    uint8(t.Minute()),
		Second:    uint8(t.Second()),
	}
}

// Controller is the logical clock.
type Controller struct {
	mu       sync.Mutex
	rate     uint32
	mask     uint32
	now      time.Time
	prev     uint32
	subTicks uint32
}

// NewController returns a clock for a counter running at rate Hz whose
// value wraps at mask. Zero values select the defaults. The clock boots at
// 2020-01-01 00:00:00 UTC.
func NewController(rate, mask uint32) *Controller {
	if rate == 0 {
		rate = DefaultTickRate
	}
	if mask == 0 {
		mask = DefaultCounterMask
	}
	return &Controller{
		rate: rate,
		mask: mask,
		now:  time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// SetTime anchors the clock at cal, observed when the counter read ticks.
func (c *Controller) SetTime(cal Calendar, ticks uint32) error {
	if err := cal.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = cal.Time()
	c.prev = ticks & c.mask
	c.subTicks = 0
	return nil
}

// UpdateTime advances the clock to the counter value ticks. The counter
// may have wrapped at most once since the previous call.
func (c *Controller) UpdateTime(ticks uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ticks &= c.mask
	delta := (ticks - c.prev) & c.mask
	c.prev = ticks

	total := uint64(c.subTicks) + uint64(delta)
	secs := total / uint64(c.rate)
	c.subTicks = uint32(total % uint64(c.rate))
	c.now = c.now.Add(time.Duration(secs) * time.Second)
}

// Now returns the current logical time, truncated to whole seconds.
func (c *Controller) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Calendar returns Now broken down.
func (c *Controller) Calendar() Calendar {
	return FromTime(c.Now())
}
