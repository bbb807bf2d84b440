package motor

import (
	"github.com/cjeanneret/RotGo/internal/debug"
	"github.com/cjeanneret/RotGo/internal/hw/gpio"
)

// Direction of motor travel. Forward increases the axis angle.
type Direction int

const (
	Forward Direction = iota
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Config holds the hardware configuration for one H-bridge channel.
type Config struct {
	Name   string // axis name, for logging
	DirPin int    // direction select (HIGH=forward)
	PWMPin int    // speed, PWM duty 0-100
}

// Motor drives a single DC motor through an H-bridge style driver:
// one direction pin plus a PWM speed pin. Calls are fire-and-forget;
// the axis controller closes the loop from sensor feedback.
type Motor struct {
	gpio gpio.Driver
	cfg  Config
}

// New creates a motor channel and forces it to a stopped state.
func New(g gpio.Driver, cfg Config) *Motor {
	_ = g.SetupPin(cfg.DirPin, gpio.Output)

	m := &Motor{
		gpio: g,
		cfg:  cfg,
	}
	_ = m.Stop()
	return m
}

// Drive runs the motor in the given direction at speed percent of
// full scale. Speed is clamped to 0-100; 0 is equivalent to Stop.
func (m *Motor) Drive(dir Direction, speed int) error {
	if speed < 0 {
		speed = 0
	} else if speed > 100 {
		speed = 100
	}
	if speed == 0 {
		return m.Stop()
	}

	debug.Trace("Motor %s: drive %s at %d%%", m.cfg.Name, dir, speed)

	dirLevel := gpio.High
	if dir == Reverse {
		dirLevel = gpio.Low
	}
	if err := m.gpio.WritePin(m.cfg.DirPin, dirLevel); err != nil {
		return err
	}
	return m.gpio.WritePWM(m.cfg.PWMPin, speed)
}

// Stop zeros the PWM output regardless of direction.
func (m *Motor) Stop() error {
	debug.Trace("Motor %s: stop", m.cfg.Name)
	return m.gpio.WritePWM(m.cfg.PWMPin, 0)
}
