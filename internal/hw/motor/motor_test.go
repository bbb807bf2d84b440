package motor

import (
	"testing"

	"github.com/cjeanneret/RotGo/internal/hw/gpio"
)

// recordingDriver records GPIO calls for verification.
type recordingDriver struct {
	calls []gpioCall
}

type gpioCall struct {
	op    string // "setup", "write", "pwm"
	pin   int
	level gpio.Level
	duty  int
}

func (d *recordingDriver) SetupPin(pin int, mode gpio.PinMode) error {
	d.calls = append(d.calls, gpioCall{op: "setup", pin: pin})
	return nil
}

func (d *recordingDriver) WritePin(pin int, level gpio.Level) error {
	d.calls = append(d.calls, gpioCall{op: "write", pin: pin, level: level})
	return nil
}

func (d *recordingDriver) ReadPin(pin int) (gpio.Level, error) {
	return gpio.High, nil
}

func (d *recordingDriver) WritePWM(pin int, duty int) error {
	d.calls = append(d.calls, gpioCall{op: "pwm", pin: pin, duty: duty})
	return nil
}

func (d *recordingDriver) ReadAnalog(channel int) (int, error) {
	return 0, nil
}

func (d *recordingDriver) Close() error {
	return nil
}

func (d *recordingDriver) lastPWM(pin int) (int, bool) {
	for i := len(d.calls) - 1; i >= 0; i-- {
		if d.calls[i].op == "pwm" && d.calls[i].pin == pin {
			return d.calls[i].duty, true
		}
	}
	return 0, false
}

func (d *recordingDriver) lastWrite(pin int) (gpio.Level, bool) {
	for i := len(d.calls) - 1; i >= 0; i-- {
		if d.calls[i].op == "write" && d.calls[i].pin == pin {
			return d.calls[i].level, true
		}
	}
	return gpio.Low, false
}

func testMotor() (*Motor, *recordingDriver) {
	drv := &recordingDriver{}
	m := New(drv, Config{Name: "az", DirPin: 17, PWMPin: 18})
	drv.calls = nil // reset after init
	return m, drv
}

func TestMotor_NewStartsStopped(t *testing.T) {
	drv := &recordingDriver{}
	New(drv, Config{Name: "az", DirPin: 17, PWMPin: 18})

	duty, ok := drv.lastPWM(18)
	if !ok || duty != 0 {
		t.Errorf("expected PWM forced to 0 at construction, got duty=%d ok=%v", duty, ok)
	}
}

func TestMotor_DriveForward(t *testing.T) {
	m, drv := testMotor()

	if err := m.Drive(Forward, 30); err != nil {
		t.Fatalf("Drive: %v", err)
	}
	if level, ok := drv.lastWrite(17); !ok || level != gpio.High {
		t.Errorf("dir pin = %v ok=%v, want HIGH for forward", level, ok)
	}
	if duty, _ := drv.lastPWM(18); duty != 30 {
		t.Errorf("PWM duty = %d, want 30", duty)
	}
}

func TestMotor_DriveReverse(t *testing.T) {
	m, drv := testMotor()

	if err := m.Drive(Reverse, 55); err != nil {
		t.Fatalf("Drive: %v", err)
	}
	if level, ok := drv.lastWrite(17); !ok || level != gpio.Low {
		t.Errorf("dir pin = %v ok=%v, want LOW for reverse", level, ok)
	}
	if duty, _ := drv.lastPWM(18); duty != 55 {
		t.Errorf("PWM duty = %d, want 55", duty)
	}
}

func TestMotor_DriveZeroSpeedStops(t *testing.T) {
	m, drv := testMotor()

	if err := m.Drive(Forward, 0); err != nil {
		t.Fatalf("Drive: %v", err)
	}
	if duty, ok := drv.lastPWM(18); !ok || duty != 0 {
		t.Errorf("PWM duty = %d ok=%v, want 0", duty, ok)
	}
	// Direction pin must not be touched for a stop.
	if _, ok := drv.lastWrite(17); ok {
		t.Error("stop must not write the direction pin")
	}
}

func TestMotor_DriveClampsSpeed(t *testing.T) {
	m, drv := testMotor()

	if err := m.Drive(Forward, 250); err != nil {
		t.Fatalf("Drive: %v", err)
	}
	if duty, _ := drv.lastPWM(18); duty != 100 {
		t.Errorf("PWM duty = %d, want clamped 100", duty)
	}
}

func TestMotor_Stop(t *testing.T) {
	m, drv := testMotor()

	m.Drive(Forward, 80)
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if duty, _ := drv.lastPWM(18); duty != 0 {
		t.Errorf("PWM duty after stop = %d, want 0", duty)
	}
}
