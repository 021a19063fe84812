// Package ble tracks the state the BLE stack reports through its callbacks.
package ble

import "sync/atomic"

// Controller holds the connection state. It is written from the BLE
// stack's callbacks and read by the display application.
type Controller struct {
	connected atomic.Bool
}

func (c *Controller) Connect()          { c.connected.Store(true) }
func (c *Controller) Disconnect()       { c.connected.Store(false) }
func (c *Controller) IsConnected() bool { return c.connected.Load() }
