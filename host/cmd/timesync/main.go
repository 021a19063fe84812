// Command timesync keeps a bench watch's clock set by writing the host's
// wall-clock time to its debug UART.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"watchcore/host/serial"
	"watchcore/timesync"
)

var (
	device   = flag.String("device", "/dev/ttyUSB0", "Serial device path")
	baud     = flag.Int("baud", 115200, "Baud rate")
	interval = flag.Duration("interval", 0, "Resend period; 0 sends once")
	verbose  = flag.Bool("verbose", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud
	port, err := serial.Open(cfg)
	if err != nil {
		return err
	}
	defer port.Close()

	s := timesync.NewSender(port)
	send := func() error {
		now := time.Now().UTC()
		if err := s.Send(now); err != nil {
			return fmt.Errorf("send: %w", err)
		}
		logger.Debug("timesync:sent", slog.Time("time", now))
		return nil
	}

	if err := send(); err != nil {
		return err
	}
	logger.Info("timesync:clock set", slog.String("device", cfg.Device))
	if *interval <= 0 {
		return nil
	}

	tick := time.NewTicker(*interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			if err := send(); err != nil {
				return err
			}
		}
	}
}
