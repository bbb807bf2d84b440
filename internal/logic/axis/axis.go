package axis

import (
	"errors"
	"fmt"

	"github.com/cjeanneret/RotGo/internal/debug"
	"github.com/cjeanneret/RotGo/internal/hw/motor"
)

// Motor is the drive output of one axis (see hw/motor).
type Motor interface {
	Drive(dir motor.Direction, speed int) error
	Stop() error
}

// Sensor is the calibrated position input of one axis (see hw/encoder).
type Sensor interface {
	Read() int
	SetOffset(offset int)
	Offset() int
	Zero() int
}

// Limits reports the two end-of-travel switches (see hw/limit).
type Limits interface {
	Forward() bool
	Reverse() bool
}

// State is the operational mode of an axis.
type State int

const (
	Idle State = iota
	Moving
	Homing
	Calibrating
	EStopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Moving:
		return "moving"
	case Homing:
		return "homing"
	case Calibrating:
		return "calibrating"
	case EStopped:
		return "estopped"
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

var (
	ErrBusy     = errors.New("axis busy")
	ErrEStopped = errors.New("axis emergency-stopped")
	ErrRange    = errors.New("target outside axis span")
	ErrTimeout  = errors.New("hardware timeout")
	ErrLimit    = errors.New("limit switch tripped")
)

// TimeoutRaw is the value reported when calibration never reaches the
// reverse limit switch within its tick budget.
const TimeoutRaw = -1

// Config holds the immutable parameters of one axis.
type Config struct {
	Name         string // "az" or "el"
	SpanDeg      int    // 360 for azimuth, 90 for elevation
	SpeedPct     int    // default drive speed
	BackoffPct   int    // reduced speed near target
	CalSpeedPct  int    // speed while seeking the reverse limit
	ProximityDeg int    // remaining delta at which speed backs off
	ToleranceDeg int    // remaining delta counted as arrival
	NudgeDeg     int    // degrees moved by one nudge command
	CalTicks     int    // tick budget for calibration
	MoveTicks    int    // tick budget for a move
}

// Result is the outcome of a completed long-running operation.
// Raw carries the measured raw sensor value after a calibration.
type Result struct {
	Err error
	Raw int
}

// Axis is the per-axis motor control state machine. Long-running
// operations (calibrate, move, home) are started by their methods and
// advanced one control-loop period at a time by Tick, so the loop
// stays responsive to an emergency stop while motion is in progress.
//
// Axis is not safe for concurrent use; the control loop owns it.
type Axis struct {
	cfg    Config
	motor  Motor
	sensor Sensor
	limits Limits

	state     State
	target    int
	ticksLeft int

	speed   int
	backoff int

	done   bool
	result Result
}

// New creates an axis in Idle with the position sampled from the sensor.
func New(cfg Config, m Motor, s Sensor, l Limits) *Axis {
	a := &Axis{
		cfg:     cfg,
		motor:   m,
		sensor:  s,
		limits:  l,
		speed:   cfg.SpeedPct,
		backoff: cfg.BackoffPct,
	}
	debug.Axis(cfg.Name, "ready at %d deg (span %d)", s.Read(), cfg.SpanDeg)
	return a
}

// Position returns the current calibrated position in degrees.
func (a *Axis) Position() int {
	return a.sensor.Read()
}

// State returns the current operational mode.
func (a *Axis) State() State {
	return a.state
}

// Busy reports whether a long-running operation is in progress.
func (a *Axis) Busy() bool {
	switch a.state {
	case Moving, Homing, Calibrating:
		return true
	}
	return false
}

// SetSpeed stores the drive speed, clamped to 0-100. Takes effect on
// the next motion command.
func (a *Axis) SetSpeed(v int) {
	a.speed = clampPct(v)
	debug.Axis(a.cfg.Name, "speed set to %d%%", a.speed)
}

// SetBackoffSpeed stores the near-target speed, clamped to 0-100.
func (a *Axis) SetBackoffSpeed(v int) {
	a.backoff = clampPct(v)
	debug.Axis(a.cfg.Name, "backoff speed set to %d%%", a.backoff)
}

// SetCal replaces the calibration offset without moving the motor.
// Legal in any state except EStopped.
func (a *Axis) SetCal(offset int) error {
	if a.state == EStopped {
		return ErrEStopped
	}
	a.sensor.SetOffset(offset)
	debug.Axis(a.cfg.Name, "calibration offset set to %d", offset)
	return nil
}

// Calibrate starts a calibration: drive in reverse until the reverse
// limit switch trips, then zero the sensor there. Completion is
// reported through TakeResult; on success Raw holds the measured raw
// value, on timeout Err is ErrTimeout and Raw is TimeoutRaw.
func (a *Axis) Calibrate() error {
	if err := a.ready(); err != nil {
		return err
	}
	a.state = Calibrating
	a.ticksLeft = a.cfg.CalTicks
	debug.Axis(a.cfg.Name, "calibrating (budget %d ticks)", a.ticksLeft)
	return nil
}

// MoveTo starts a closed-loop move to target degrees. A target within
// tolerance of the current position completes immediately without
// engaging the motor.
func (a *Axis) MoveTo(target int) error {
	return a.startMove(target, Moving)
}

// Home starts a move to the zero reference. Driving onto the reverse
// limit switch is the success path and re-zeros the sensor there, so
// errors accumulated since calibration do not build up.
func (a *Axis) Home() error {
	return a.startMove(0, Homing)
}

// Nudge starts a short fixed-size move in the given direction,
// clamped to the axis span.
func (a *Axis) Nudge(dir motor.Direction) error {
	step := a.cfg.NudgeDeg
	if dir == motor.Reverse {
		step = -step
	}
	target := a.sensor.Read() + step
	if target < 0 {
		target = 0
	} else if target >= a.cfg.SpanDeg {
		target = a.cfg.SpanDeg - 1
	}
	return a.startMove(target, Moving)
}

func (a *Axis) startMove(target int, state State) error {
	if err := a.ready(); err != nil {
		return err
	}
	if target < 0 || target >= a.cfg.SpanDeg {
		return ErrRange
	}
	pos := a.sensor.Read()
	if abs(target-pos) <= a.cfg.ToleranceDeg {
		// Already there; success without engaging the motor.
		a.finish(Result{})
		return nil
	}
	a.state = state
	a.target = target
	a.ticksLeft = a.cfg.MoveTicks
	debug.Axis(a.cfg.Name, "%s %d -> %d deg", state, pos, target)
	return nil
}

// ready rejects a new operation while one is in progress. A motion or
// calibration command received while emergency-stopped implicitly
// clears the latch back to Idle first; there is no separate resume
// command in the protocol.
func (a *Axis) ready() error {
	if a.Busy() {
		return ErrBusy
	}
	if a.state == EStopped {
		debug.Axis(a.cfg.Name, "clearing emergency stop")
		a.state = Idle
	}
	a.done = false
	return nil
}

// EmergencyStop stops the motor immediately, aborts any operation in
// progress, and latches EStopped.
func (a *Axis) EmergencyStop() {
	_ = a.motor.Stop()
	if a.Busy() {
		a.finish(Result{Err: ErrEStopped})
	}
	a.state = EStopped
	debug.Axis(a.cfg.Name, "EMERGENCY STOP")
}

// Tick advances the state machine by one control-loop period.
// It never blocks: each call samples the sensor and limit switches
// once, issues at most one drive command, and returns.
func (a *Axis) Tick() {
	switch a.state {
	case Calibrating:
		a.tickCalibrate()
	case Moving, Homing:
		a.tickMove()
	}
}

func (a *Axis) tickCalibrate() {
	if a.limits.Reverse() {
		// Success path: resting on the home switch, zero here.
		_ = a.motor.Stop()
		raw := a.sensor.Zero()
		a.state = Idle
		a.finish(Result{Raw: raw})
		debug.Axis(a.cfg.Name, "calibrated, raw %d", raw)
		return
	}
	if a.limits.Forward() {
		_ = a.motor.Stop()
		a.state = Idle
		a.finish(Result{Err: ErrLimit, Raw: TimeoutRaw})
		return
	}
	a.ticksLeft--
	if a.ticksLeft <= 0 {
		_ = a.motor.Stop()
		a.state = Idle
		a.finish(Result{Err: ErrTimeout, Raw: TimeoutRaw})
		debug.Axis(a.cfg.Name, "calibration timed out")
		return
	}
	_ = a.motor.Drive(motor.Reverse, a.cfg.CalSpeedPct)
}

func (a *Axis) tickMove() {
	pos := a.sensor.Read()
	delta := a.target - pos

	if a.state == Homing && a.limits.Reverse() {
		// True home: the switch is ground truth, re-zero on it.
		_ = a.motor.Stop()
		a.sensor.Zero()
		a.state = Idle
		a.finish(Result{})
		debug.Axis(a.cfg.Name, "homed on limit switch")
		return
	}
	if abs(delta) <= a.cfg.ToleranceDeg {
		_ = a.motor.Stop()
		a.state = Idle
		a.finish(Result{})
		debug.Axis(a.cfg.Name, "arrived at %d deg", pos)
		return
	}
	if a.limits.Forward() || a.limits.Reverse() {
		_ = a.motor.Stop()
		a.state = Idle
		a.finish(Result{Err: ErrLimit})
		debug.Axis(a.cfg.Name, "limit switch tripped at %d deg", pos)
		return
	}
	a.ticksLeft--
	if a.ticksLeft <= 0 {
		_ = a.motor.Stop()
		a.state = Idle
		a.finish(Result{Err: ErrTimeout})
		debug.Axis(a.cfg.Name, "move timed out at %d deg (target %d)", pos, a.target)
		return
	}

	speed := a.speed
	if abs(delta) <= a.cfg.ProximityDeg {
		speed = a.backoff
	}
	dir := motor.Forward
	if delta < 0 {
		dir = motor.Reverse
	}
	_ = a.motor.Drive(dir, speed)
}

func (a *Axis) finish(r Result) {
	a.done = true
	a.result = r
}

// TakeResult returns the outcome of the last started operation once,
// or ok=false if none has completed since the previous call.
func (a *Axis) TakeResult() (Result, bool) {
	if !a.done {
		return Result{}, false
	}
	a.done = false
	return a.result, true
}

func clampPct(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
