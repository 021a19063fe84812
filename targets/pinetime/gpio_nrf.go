//go:build nrf52

package main

import (
	"device/nrf"

	"watchcore/hal"
)

// gpioPort drives port 0 through PIN_CNF and OUTSET/OUTCLR.
type gpioPort struct{}

const (
	cnfOutput = nrf.GPIO_PIN_CNF_DIR_Output<<nrf.GPIO_PIN_CNF_DIR_Pos |
		nrf.GPIO_PIN_CNF_INPUT_Disconnect<<nrf.GPIO_PIN_CNF_INPUT_Pos
	cnfInput = nrf.GPIO_PIN_CNF_DIR_Input<<nrf.GPIO_PIN_CNF_DIR_Pos |
		nrf.GPIO_PIN_CNF_INPUT_Connect<<nrf.GPIO_PIN_CNF_INPUT_Pos
	// Reset value: disconnected input.
	cnfDefault = nrf.GPIO_PIN_CNF_DIR_Input<<nrf.GPIO_PIN_CNF_DIR_Pos |
		nrf.GPIO_PIN_CNF_INPUT_Disconnect<<nrf.GPIO_PIN_CNF_INPUT_Pos
)

func pullBits(p hal.Pull) uint32 {
	switch p {
	case hal.PullDown:
		return nrf.GPIO_PIN_CNF_PULL_Pulldown << nrf.GPIO_PIN_CNF_PULL_Pos
	case hal.PullUp:
		return nrf.GPIO_PIN_CNF_PULL_Pullup << nrf.GPIO_PIN_CNF_PULL_Pos
	default:
		return nrf.GPIO_PIN_CNF_PULL_Disabled << nrf.GPIO_PIN_CNF_PULL_Pos
	}
}

func senseBits(s hal.Sense) uint32 {
	switch s {
	case hal.SenseHigh:
		return nrf.GPIO_PIN_CNF_SENSE_High << nrf.GPIO_PIN_CNF_SENSE_Pos
	case hal.SenseLow:
		return nrf.GPIO_PIN_CNF_SENSE_Low << nrf.GPIO_PIN_CNF_SENSE_Pos
	default:
		return nrf.GPIO_PIN_CNF_SENSE_Disabled << nrf.GPIO_PIN_CNF_SENSE_Pos
	}
}

func (gpioPort) ConfigureOutput(pin hal.Pin) {
	nrf.P0.PIN_CNF[pin].Set(cnfOutput)
}

func (gpioPort) ConfigureInput(pin hal.Pin, pull hal.Pull) {
	nrf.P0.PIN_CNF[pin].Set(cnfInput | pullBits(pull))
}

func (gpioPort) ConfigureSense(pin hal.Pin, pull hal.Pull, sense hal.Sense) {
	nrf.P0.PIN_CNF[pin].Set(cnfInput | pullBits(pull) | senseBits(sense))
}

func (gpioPort) ConfigureDefault(pin hal.Pin) {
	nrf.P0.PIN_CNF[pin].Set(cnfDefault)
}

func (gpioPort) Set(pin hal.Pin)   { nrf.P0.OUTSET.Set(1 << pin) }
func (gpioPort) Clear(pin hal.Pin) { nrf.P0.OUTCLR.Set(1 << pin) }
