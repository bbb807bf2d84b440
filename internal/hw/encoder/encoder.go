package encoder

import (
	"github.com/cjeanneret/RotGo/internal/debug"
	"github.com/cjeanneret/RotGo/internal/hw/gpio"
)

// adcRange is the resolution of the MCP3008 feeding the position pots.
const adcRange = 1024

// Config holds the hardware configuration for one position sensor.
type Config struct {
	Name    string // axis name, for logging
	Channel int    // ADC channel
	SpanDeg int    // angular span covered by the full sensor range
}

// Encoder adapts a raw analog position reading into calibrated
// degrees within [0, span). The calibration offset (signed degrees)
// is established by driving to the reverse limit switch and zeroing.
type Encoder struct {
	gpio   gpio.Driver
	cfg    Config
	offset int
	last   int // last good reading, returned on a transient ADC fault
}

func New(g gpio.Driver, cfg Config) *Encoder {
	return &Encoder{gpio: g, cfg: cfg}
}

// ReadRaw returns the uncorrected sensor value mapped to degrees.
func (e *Encoder) ReadRaw() (int, error) {
	v, err := e.gpio.ReadAnalog(e.cfg.Channel)
	if err != nil {
		return 0, err
	}
	return v * e.cfg.SpanDeg / adcRange, nil
}

// Read returns the current position in degrees, corrected by the
// calibration offset and normalized to [0, span). Never fails: a
// transient sensor fault repeats the last good reading.
func (e *Encoder) Read() int {
	raw, err := e.ReadRaw()
	if err != nil {
		debug.Error(err)
		return e.last
	}
	deg := (raw + e.offset) % e.cfg.SpanDeg
	if deg < 0 {
		deg += e.cfg.SpanDeg
	}
	e.last = deg
	return deg
}

// SetOffset replaces the calibration offset (signed degrees).
func (e *Encoder) SetOffset(offset int) {
	debug.Verbose("Encoder %s: offset %d -> %d", e.cfg.Name, e.offset, offset)
	e.offset = offset
}

// Offset returns the current calibration offset.
func (e *Encoder) Offset() int {
	return e.offset
}

// Zero sets the offset so the current physical position reads as 0
// degrees and returns the raw measured value. Called with the axis
// resting on the reverse limit switch.
func (e *Encoder) Zero() int {
	raw, err := e.ReadRaw()
	if err != nil {
		debug.Error(err)
		raw = e.last
	}
	e.offset = -raw
	e.last = 0
	debug.Info("Encoder %s: zeroed at raw %d", e.cfg.Name, raw)
	return raw
}
