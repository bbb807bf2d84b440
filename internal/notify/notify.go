// Package notify emits debounced position events so the client sees
// meaningful movement without the transport being flooded by
// sub-resolution jitter.
package notify

import (
	"fmt"

	"github.com/cjeanneret/RotGo/internal/debug"
)

// Sender carries a fire-and-forget event payload to the client.
type Sender interface {
	SendEvent(payload string) error
}

// Notifier tracks one axis. Observe is called once per control-loop
// tick; an event ("az:181") goes out only when the position has moved
// more than the deadband since the last value actually reported.
type Notifier struct {
	tag      string
	deadband int
	last     int
	sender   Sender
}

// New creates a notifier primed with the axis's startup position, so
// boot does not produce a spurious event.
func New(tag string, deadband, initial int, s Sender) *Notifier {
	return &Notifier{tag: tag, deadband: deadband, last: initial, sender: s}
}

// Observe compares pos against the last reported value and emits at
// most one event.
func (n *Notifier) Observe(pos int) {
	delta := pos - n.last
	if delta < 0 {
		delta = -delta
	}
	if delta <= n.deadband {
		return
	}
	payload := fmt.Sprintf("%s:%d", n.tag, pos)
	if err := n.sender.SendEvent(payload); err != nil {
		debug.Error(err)
		return
	}
	n.last = pos
	debug.Event(payload)
}
