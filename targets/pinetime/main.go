//go:build nrf52

package main

import (
	"context"
	"errors"
	"image/color"
	"log/slog"
	"machine"
	"time"

	"watchcore/battery"
	"watchcore/ble"
	"watchcore/board"
	"watchcore/datetime"
	"watchcore/gfx"
	"watchcore/supervisor"
	"watchcore/timesync"
	"watchcore/touch/cst816s"
	"watchcore/ui"
)

func main() {
	logger := slog.New(slog.NewTextHandler(machine.Serial, &slog.HandlerOptions{Level: slog.LevelInfo}))

	machine.InitADC()
	adc := machine.ADC{Pin: machine.Pin(board.PinBatteryVoltage)}
	adc.Configure(machine.ADCConfig{})
	bat := battery.New(adc)

	// Backlight is active low.
	gpioPort{}.ConfigureOutput(board.PinLcdBacklightHigh)
	gpioPort{}.Clear(board.PinLcdBacklightHigh)

	hw := newPinetime(logger)
	queue := ui.NewQueue(16)
	cfg := supervisor.DefaultConfig()
	cfg.Logger = logger
	sup := supervisor.New(cfg, supervisor.Deps{
		Board:   hw,
		GPIO:    gpioPort{},
		Pins:    pinInterrupts{},
		Ticks:   startTicks(),
		Battery: bat,
		Clock:   datetime.NewController(datetime.DefaultTickRate, datetime.DefaultCounterMask),
		BLE:     &ble.Controller{},
		UI:      queue,
	})

	enableTransferInterrupt(sup, hw.spi.Module)
	if err := sup.Start(); err != nil {
		logger.Error("pinetime:bring-up failed", slog.String("err", err.Error()))
		for {
			time.Sleep(time.Hour)
		}
	}

	go timeSyncLoop(sup, logger)
	go displayLoop(sup, queue, bat, hw.touch, logger)

	sup.Run(context.Background())
}

// timeSyncLoop anchors the clock from set-time frames on the debug UART.
func timeSyncLoop(sup *supervisor.Supervisor, logger *slog.Logger) {
	var dec timesync.Decoder
	buf := make([]byte, 0, 64)
	for {
		buf = buf[:0]
		for len(buf) < cap(buf) && machine.Serial.Buffered() > 0 {
			b, err := machine.Serial.ReadByte()
			if err != nil {
				break
			}
			buf = append(buf, b)
		}
		if len(buf) == 0 {
			time.Sleep(20 * time.Millisecond)
			continue
		}
		dec.Feed(buf, func(cal datetime.Calendar, seq uint8) {
			if sup.OnNewTime(cal) == nil {
				logger.Info("pinetime:time synced", slog.Int("seq", int(seq)))
			}
		})
	}
}

// displayLoop is a minimal display application. It repaints on wake,
// draws the battery level as a bar along the top edge, marks touch points
// and sends the watch to sleep on a long press. All drawing goes through
// sup.Draw, which refuses while the display is asleep.
func displayLoop(sup *supervisor.Supervisor, queue *ui.Queue, bat *battery.Controller, touch *cst816s.Device, logger *slog.Logger) {
	sup.Draw(func(g *gfx.Gfx) error { return g.ClearScreen() })
	for m := range queue.Messages() {
		logger.Debug("pinetime:ui", slog.String("msg", m.String()))
		var err error
		switch m {
		case ui.GoToRunning:
			err = sup.Draw(func(g *gfx.Gfx) error { return g.ClearScreen() })
		case ui.UpdateBatteryLevel:
			width := int16(int(board.LcdWidth) * int(bat.Level()) / 100)
			err = sup.Draw(func(g *gfx.Gfx) error {
				if err := g.FillRectangle(0, 0, board.LcdWidth, 8, color.RGBA{A: 0xFF}); err != nil || width == 0 {
					return err
				}
				return g.FillRectangle(0, 0, width, 8, color.RGBA{G: 0xFF, A: 0xFF})
			})
		case ui.TouchEvent:
			err = onTouch(sup, touch, logger)
		}
		if err != nil && !errors.Is(err, supervisor.ErrSleeping) {
			logger.Error("pinetime:draw", slog.String("msg", m.String()), slog.String("err", err.Error()))
		}
	}
}

func onTouch(sup *supervisor.Supervisor, touch *cst816s.Device, logger *slog.Logger) error {
	p, err := touch.Read()
	if err != nil {
		return err
	}
	logger.Debug("pinetime:touch", slog.Int("x", int(p.X)), slog.Int("y", int(p.Y)), slog.Int("gesture", int(p.Gesture)))
	if p.Gesture == cst816s.GestureLongPress {
		sup.PushMessage(supervisor.GoToSleep)
		return nil
	}
	if !p.Touched {
		return nil
	}
	x, y := int16(p.X)-2, int16(p.Y)-2
	return sup.Draw(func(g *gfx.Gfx) error {
		return g.FillRectangle(max(x, 0), max(y, 0), 4, 4, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
	})
}
