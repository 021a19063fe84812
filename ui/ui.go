// Package ui defines the notifications the control core raises for the
// display application.
package ui

import "sync/atomic"

// Message is a fire-and-forget notification to the display application.
type Message uint8

const (
	TouchEvent Message = iota
	GoToSleep
	GoToRunning
	UpdateBatteryLevel
	UpdateBleConnection
)

func (m Message) String() string {
	switch m {
	case TouchEvent:
		return "TouchEvent"
	case GoToSleep:
		return "GoToSleep"
	case GoToRunning:
		return "GoToRunning"
	case UpdateBatteryLevel:
		return "UpdateBatteryLevel"
	case UpdateBleConnection:
		return "UpdateBleConnection"
	default:
		return "Message(?)"
	}
}

// Notifier accepts messages. PushMessage must not block: it is called from
// interrupt handlers.
type Notifier interface {
	PushMessage(m Message)
}

// Queue is a bounded Notifier drained by the display application.
type Queue struct {
	ch      chan Message
	dropped atomic.Uint32
}

// NewQueue returns a queue holding up to size pending messages.
func NewQueue(size int) *Queue {
	return &Queue{ch: make(chan Message, size)}
}

// PushMessage enqueues m, dropping it if the queue is full.
func (q *Queue) PushMessage(m Message) {
	select {
	case q.ch <- m:
	default:
		q.dropped.Add(1)
	}
}

// Messages returns the receive side of the queue.
func (q *Queue) Messages() <-chan Message {
	return q.ch
}

// Dropped returns how many messages were discarded on a full queue.
func (q *Queue) Dropped() uint32 {
	return q.dropped.Load()
}
