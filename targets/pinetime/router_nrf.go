//go:build nrf52

package main

import (
	"device/nrf"
	"unsafe"

	"watchcore/hal"
)

// machine hands out GPIOTE channels for pin interrupts from 0 upward, so
// the stop route takes the last one.
const (
	routeGPIOTE = 7
	routePPI    = 0
)

// stopRouter connects a GPIOTE toggle event on SCK to the STOP task of
// one SPIM instance through a PPI channel.
type stopRouter struct {
	bus *nrf.SPIM_Type
}

func (r stopRouter) RouteToggleToStop(pin hal.Pin) {
	nrf.GPIOTE.CONFIG[routeGPIOTE].Set(
		nrf.GPIOTE_CONFIG_MODE_Event<<nrf.GPIOTE_CONFIG_MODE_Pos |
			uint32(pin)<<nrf.GPIOTE_CONFIG_PSEL_Pos |
			nrf.GPIOTE_CONFIG_POLARITY_Toggle<<nrf.GPIOTE_CONFIG_POLARITY_Pos)

	ch := &nrf.PPI.CH[routePPI]
	ch.EEP.Set(uint32(uintptr(unsafe.Pointer(&nrf.GPIOTE.EVENTS_IN[routeGPIOTE]))))
	ch.TEP.Set(uint32(uintptr(unsafe.Pointer(&r.bus.TASKS_STOP))))
	nrf.PPI.CHENSET.Set(1 << routePPI)
}

func (r stopRouter) Teardown() {
	nrf.PPI.CHENCLR.Set(1 << routePPI)
	nrf.GPIOTE.CONFIG[routeGPIOTE].Set(0)
	ch := &nrf.PPI.CH[routePPI]
	ch.EEP.Set(0)
	ch.TEP.Set(0)
}
