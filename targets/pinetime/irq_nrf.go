//go:build nrf52

package main

import (
	"device/nrf"
	"machine"
	"runtime/interrupt"

	"watchcore/hal"
	"watchcore/spim"
	"watchcore/supervisor"
)

// owner receives the SPIM interrupt. It is set once, before Start.
var owner *supervisor.Supervisor

func handleSPIM(interrupt.Interrupt) {
	if owner != nil {
		owner.HandleTransferInterrupt()
	}
}

// enableTransferInterrupt routes the interrupt of module's SPIM instance
// to s. The IRQ number has to be a constant, hence one New per instance.
func enableTransferInterrupt(s *supervisor.Supervisor, module spim.Module) {
	owner = s
	var intr interrupt.Interrupt
	switch module {
	case spim.SPI1:
		intr = interrupt.New(nrf.IRQ_SPIM1_SPIS1_TWIM1_TWIS1_SPI1_TWI1, handleSPIM)
	default:
		intr = interrupt.New(nrf.IRQ_SPIM0_SPIS0_TWIM0_TWIS0_SPI0_TWI0, handleSPIM)
	}
	intr.SetPriority(0x40)
	intr.Enable()
}

// pinInterrupts registers edge handlers through machine's GPIOTE support.
type pinInterrupts struct{}

func (pinInterrupts) SetEdgeHandler(pin hal.Pin, edge hal.Edge, fn hal.EdgeHandler) error {
	change := machine.PinFalling
	switch edge {
	case hal.EdgeRising:
		change = machine.PinRising
	case hal.EdgeToggle:
		change = machine.PinToggle
	}
	return machine.Pin(pin).SetInterrupt(change, func(machine.Pin) { fn(pin) })
}

// rtcTicks counts at 1024 Hz on RTC2; the runtime owns RTC1.
type rtcTicks struct{}

func startTicks() rtcTicks {
	nrf.RTC2.TASKS_STOP.Set(1)
	nrf.RTC2.PRESCALER.Set(31)
	nrf.RTC2.TASKS_CLEAR.Set(1)
	nrf.RTC2.TASKS_START.Set(1)
	return rtcTicks{}
}

func (rtcTicks) Ticks() uint32 {
	return nrf.RTC2.COUNTER.Get()
}
