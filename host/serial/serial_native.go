package serial

import (
	"errors"
	"fmt"
	"time"

	"github.com/tarm/serial"
)

var ErrNilConfig = errors.New("serial: nil config")

// NativePort is a Port backed by the operating system's serial driver.
type NativePort struct {
	port *serial.Port
	cfg  *Config
}

// Open opens the port described by cfg.
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", cfg.Device, err)
	}
	return &NativePort{port: port, cfg: cfg}, nil
}

func (p *NativePort) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

func (p *NativePort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

func (p *NativePort) Close() error {
	if p.port == nil {
		return nil
	}
	return p.port.Close()
}

// Flush discards data received but not yet read.
func (p *NativePort) Flush() error {
	return p.port.Flush()
}
