package gpio

import (
	"fmt"

	"github.com/cjeanneret/RotGo/internal/debug"
	"github.com/stianeikeland/go-rpio/v4"
)

const (
	// PWM base frequency for the H-bridge. The driver divides the
	// cycle into pwmCycle slices, so the effective frequency seen by
	// the motor is pwmFreqHz.
	pwmFreqHz = 2000
	pwmCycle  = 100

	// MCP3008 ADC on SPI0 provides the analog position sensors.
	spiSpeedHz = 1350000
)

// RPiDriver is the real implementation for Raspberry Pi using go-rpio.
// Analog channels are read through an MCP3008 on SPI0.
type RPiDriver struct {
	pins    map[int]rpio.Pin
	pwmPins map[int]rpio.Pin
}

// NewRPiRealDriver creates a real GPIO driver for Raspberry Pi.
// Requires running on a Raspberry Pi with access to /dev/gpiomem or as root.
func NewRPiRealDriver() (*RPiDriver, error) {
	debug.Info("Initializing real GPIO driver (go-rpio)")

	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("failed to open GPIO: %w (are you running on a Raspberry Pi?)", err)
	}

	if err := rpio.SpiBegin(rpio.Spi0); err != nil {
		rpio.Close()
		return nil, fmt.Errorf("failed to open SPI for ADC: %w", err)
	}
	rpio.SpiSpeed(spiSpeedHz)
	rpio.SpiChipSelect(0)

	debug.Verbose("GPIO memory mapped, SPI0 ready")

	return &RPiDriver{
		pins:    make(map[int]rpio.Pin),
		pwmPins: make(map[int]rpio.Pin),
	}, nil
}

func (r *RPiDriver) SetupPin(pin int, mode PinMode) error {
	debug.GPIO("SetupPin", pin, mode)

	p := rpio.Pin(pin)
	r.pins[pin] = p

	switch mode {
	case Input:
		p.Input()
		p.PullUp() // limit switches pull the line to ground when tripped
	case Output:
		p.Output()
	default:
		return fmt.Errorf("unknown pin mode: %d", mode)
	}

	return nil
}

func (r *RPiDriver) WritePin(pin int, level Level) error {
	debug.GPIO("WritePin", pin, level)

	p, ok := r.pins[pin]
	if !ok {
		// Pin not setup yet, setup as output
		if err := r.SetupPin(pin, Output); err != nil {
			return err
		}
		p = r.pins[pin]
	}

	if level == High {
		p.High()
	} else {
		p.Low()
	}

	return nil
}

func (r *RPiDriver) ReadPin(pin int) (Level, error) {
	p, ok := r.pins[pin]
	if !ok {
		// Pin not setup yet, setup as input
		if err := r.SetupPin(pin, Input); err != nil {
			return Low, err
		}
		p = r.pins[pin]
	}

	state := p.Read()
	if state == rpio.High {
		return High, nil
	}
	return Low, nil
}

func (r *RPiDriver) WritePWM(pin int, duty int) error {
	debug.GPIO("WritePWM", pin, duty)

	if duty < 0 {
		duty = 0
	} else if duty > pwmCycle {
		duty = pwmCycle
	}

	p, ok := r.pwmPins[pin]
	if !ok {
		p = rpio.Pin(pin)
		p.Mode(rpio.Pwm)
		p.Freq(pwmFreqHz * pwmCycle)
		r.pwmPins[pin] = p
	}

	p.DutyCycle(uint32(duty), pwmCycle)
	return nil
}

func (r *RPiDriver) ReadAnalog(channel int) (int, error) {
	if channel < 0 || channel > 7 {
		return 0, fmt.Errorf("ADC channel must be 0-7, got %d", channel)
	}

	// MCP3008 single-ended read: start bit, mode+channel, clock out.
	buf := []byte{1, byte(8+channel) << 4, 0}
	rpio.SpiExchange(buf)
	value := int(buf[1]&0x3)<<8 | int(buf[2])

	debug.GPIO("ReadAnalog", channel, value)
	return value, nil
}

func (r *RPiDriver) Close() error {
	debug.Trace("GPIO Close (real driver)")

	// Kill motor outputs and reset all pins to input (safe state)
	for pin, p := range r.pwmPins {
		debug.Verbose("Zeroing PWM pin %d", pin)
		p.DutyCycle(0, pwmCycle)
		p.Input()
	}
	for pin, p := range r.pins {
		debug.Verbose("Resetting pin %d to input", pin)
		p.Input()
	}

	rpio.SpiEnd(rpio.Spi0)
	return rpio.Close()
}
