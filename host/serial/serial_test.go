package serial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyUSB0")
	assert.Equal(t, "/dev/ttyUSB0", cfg.Device)
	assert.Equal(t, 115200, cfg.Baud)
	assert.Equal(t, 100, cfg.ReadTimeout)
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(nil)
	assert.ErrorIs(t, err, ErrNilConfig)

	_, err = Open(DefaultConfig("/nonexistent/tty"))
	assert.ErrorContains(t, err, "/nonexistent/tty")
}
