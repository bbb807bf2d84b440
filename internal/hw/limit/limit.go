package limit

import (
	"github.com/cjeanneret/RotGo/internal/debug"
	"github.com/cjeanneret/RotGo/internal/hw/gpio"
)

// Pair reads the two end-of-travel switches of one axis. Switches are
// wired active-low: the input reads LOW when the switch is pressed.
type Pair struct {
	gpio   gpio.Driver
	fwdPin int
	revPin int
}

func New(g gpio.Driver, fwdPin, revPin int) *Pair {
	_ = g.SetupPin(fwdPin, gpio.Input)
	_ = g.SetupPin(revPin, gpio.Input)
	return &Pair{gpio: g, fwdPin: fwdPin, revPin: revPin}
}

// Forward reports whether the forward (end of span) switch is tripped.
func (p *Pair) Forward() bool {
	return p.tripped(p.fwdPin)
}

// Reverse reports whether the reverse (home) switch is tripped.
func (p *Pair) Reverse() bool {
	return p.tripped(p.revPin)
}

func (p *Pair) tripped(pin int) bool {
	level, err := p.gpio.ReadPin(pin)
	if err != nil {
		debug.Error(err)
		// An unreadable switch is treated as tripped so motion stops.
		return true
	}
	return level == gpio.Low
}
