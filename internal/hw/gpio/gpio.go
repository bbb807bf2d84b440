package gpio

import (
	"sync"

	"github.com/cjeanneret/RotGo/internal/debug"
)

// Level represents the logical state of a GPIO pin.
type Level bool

const (
	Low  Level = false
	High Level = true
)

// PinMode indicates whether a GPIO is input or output.
type PinMode int

const (
	Input PinMode = iota
	Output
)

// Driver defines the abstract interface for the controller's I/O:
// digital pins for direction and limit switches, PWM output for motor
// speed, and an analog channel for the position sensor.
// This allows plugging in a real Raspberry Pi implementation
// or a mock for development on PC.
type Driver interface {
	SetupPin(pin int, mode PinMode) error
	WritePin(pin int, level Level) error
	ReadPin(pin int) (Level, error)
	// WritePWM sets the duty cycle on a hardware PWM pin, 0-100.
	WritePWM(pin int, duty int) error
	// ReadAnalog reads one ADC channel, 0-1023.
	ReadAnalog(channel int) (int, error)
	Close() error
}

// MockDriver is a test implementation that logs actions and returns
// canned input values. Used for development on PC or testing.
type MockDriver struct {
	mu     sync.Mutex
	levels map[int]Level
	analog map[int]int
}

// NewDriver creates a GPIO driver based on the chosen mode.
// If mock is true, returns a MockDriver (for dev/test).
// If mock is false, returns a real RPiDriver (for Raspberry Pi).
func NewDriver(mock bool) (Driver, error) {
	if mock {
		debug.Info("Using MOCK GPIO driver (development mode)")
		return NewMockDriver(), nil
	}
	return NewRPiRealDriver()
}

func NewMockDriver() *MockDriver {
	return &MockDriver{
		levels: make(map[int]Level),
		analog: make(map[int]int),
	}
}

// SetLevel fixes the value returned by ReadPin for the given pin.
func (m *MockDriver) SetLevel(pin int, level Level) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels[pin] = level
}

// SetAnalog fixes the value returned by ReadAnalog for the given channel.
func (m *MockDriver) SetAnalog(channel, value int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analog[channel] = value
}

func (m *MockDriver) SetupPin(pin int, mode PinMode) error {
	debug.GPIO("SetupPin", pin, mode)
	return nil
}

func (m *MockDriver) WritePin(pin int, level Level) error {
	debug.GPIO("WritePin", pin, level)
	return nil
}

func (m *MockDriver) ReadPin(pin int) (Level, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	level, ok := m.levels[pin]
	if !ok {
		// Inputs idle high, like the pulled-up switch lines on real hardware.
		level = High
	}
	debug.GPIO("ReadPin", pin, level)
	return level, nil
}

func (m *MockDriver) WritePWM(pin int, duty int) error {
	debug.GPIO("WritePWM", pin, duty)
	return nil
}

func (m *MockDriver) ReadAnalog(channel int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	debug.GPIO("ReadAnalog", channel, m.analog[channel])
	return m.analog[channel], nil
}

func (m *MockDriver) Close() error {
	debug.Trace("GPIO Close (mock)")
	return nil
}
