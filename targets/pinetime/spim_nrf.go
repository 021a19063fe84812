//go:build nrf52

package main

import (
	"device/nrf"
	"runtime/volatile"
	"unsafe"

	"watchcore/hal"
)

// spimRegs adapts an SPIM register block to hal.SPIM.
type spimRegs struct {
	r *nrf.SPIM_Type
}

func (s spimRegs) SetPins(sck, mosi, miso hal.Pin) {
	s.r.PSEL.SCK.Set(uint32(sck))
	s.r.PSEL.MOSI.Set(uint32(mosi))
	s.r.PSEL.MISO.Set(uint32(miso))
}

func (s spimRegs) SCK() hal.Pin {
	return hal.Pin(s.r.PSEL.SCK.Get())
}

func (s spimRegs) SetFrequency(v uint32) { s.r.FREQUENCY.Set(v) }
func (s spimRegs) SetConfig(v uint32)    { s.r.CONFIG.Set(v) }

func (s spimRegs) SetTXD(buf []byte) {
	s.r.TXD.PTR.Set(bufferAddress(buf))
	s.r.TXD.MAXCNT.Set(uint32(len(buf)))
	s.r.TXD.LIST.Set(0)
}

func (s spimRegs) SetRXD(buf []byte) {
	s.r.RXD.PTR.Set(bufferAddress(buf))
	s.r.RXD.MAXCNT.Set(uint32(len(buf)))
	s.r.RXD.LIST.Set(0)
}

func bufferAddress(buf []byte) uint32 {
	if len(buf) == 0 {
		return 0
	}
	return uint32(uintptr(unsafe.Pointer(&buf[0])))
}

func (s spimRegs) event(ev hal.Event) *volatile.Register32 {
	switch ev {
	case hal.EventStopped:
		return &s.r.EVENTS_STOPPED
	case hal.EventEndRX:
		return &s.r.EVENTS_ENDRX
	case hal.EventEndTX:
		return &s.r.EVENTS_ENDTX
	case hal.EventStarted:
		return &s.r.EVENTS_STARTED
	default:
		return &s.r.EVENTS_END
	}
}

func (s spimRegs) EventPending(ev hal.Event) bool { return s.event(ev).Get() != 0 }
func (s spimRegs) ClearEvent(ev hal.Event)        { s.event(ev).Set(0) }

func (s spimRegs) EnableInterrupts(mask uint32)  { s.r.INTENSET.Set(mask) }
func (s spimRegs) DisableInterrupts(mask uint32) { s.r.INTENCLR.Set(mask) }
func (s spimRegs) InterruptsEnabled() uint32     { return s.r.INTENSET.Get() }

func (s spimRegs) Enable()  { s.r.ENABLE.Set(nrf.SPIM_ENABLE_ENABLE_Enabled) }
func (s spimRegs) Disable() { s.r.ENABLE.Set(nrf.SPIM_ENABLE_ENABLE_Disabled) }

func (s spimRegs) Enabled() bool {
	return s.r.ENABLE.Get() != nrf.SPIM_ENABLE_ENABLE_Disabled
}

func (s spimRegs) Start() { s.r.TASKS_START.Set(1) }
