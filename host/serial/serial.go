// Package serial opens the host side of the watch's debug UART.
package serial

import (
	"io"
)

// Port is an open serial line.
type Port interface {
	io.ReadWriteCloser
	Flush() error
}

// Config holds serial port configuration.
type Config struct {
	// Device path, e.g. "/dev/ttyUSB0" or "COM3".
	Device string

	// Baud must match the firmware's UART setting.
	Baud int

	// ReadTimeout in milliseconds, 0 blocks.
	ReadTimeout int
}

// DefaultConfig returns the configuration matching the firmware UART.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100,
	}
}
