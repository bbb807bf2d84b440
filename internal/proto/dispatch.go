package proto

import (
	"github.com/cjeanneret/RotGo/internal/debug"
	"github.com/cjeanneret/RotGo/internal/logic/axis"
)

// Dispatcher binds the two axis controllers to the command grammar.
type Dispatcher struct {
	az *axis.Axis
	el *axis.Axis
}

func NewDispatcher(az, el *axis.Axis) *Dispatcher {
	return &Dispatcher{az: az, el: el}
}

// Pending is a started long-running operation whose reply must wait
// for the axis to finish. The control loop resolves it each tick.
type Pending struct {
	axis *axis.Axis
	cal  bool // calibration replies with the measured raw value
}

// Resolve checks whether the operation has completed and, if so,
// returns the wire reply for it.
func (p *Pending) Resolve() (Reply, bool) {
	res, ok := p.axis.TakeResult()
	if !ok {
		return "", false
	}
	if res.Err != nil {
		debug.Error(res.Err)
		return Nak, true
	}
	if p.cal {
		return AckValue(res.Raw), true
	}
	return Ack, true
}

// Dispatch parses raw and applies it. It returns either an immediate
// reply, or a Pending handle when the command started a movement or
// calibration whose outcome decides the reply.
func (d *Dispatcher) Dispatch(raw string) (Reply, *Pending) {
	cmd := Parse(raw)
	target := d.az
	if cmd.Axis == El {
		target = d.el
	}

	switch cmd.Kind {
	case Poll:
		// Pure connectivity check.
		return Ack, nil

	case EStop:
		d.az.EmergencyStop()
		d.el.EmergencyStop()
		// The client reads this nak as its "stopped" confirmation,
		// not as a failure. Kept for wire compatibility.
		return Nak, nil

	case SetSpeed:
		target.SetSpeed(cmd.Value)
		target.SetBackoffSpeed(cmd.Value)
		return Ack, nil

	case SetCal:
		if err := target.SetCal(cmd.Value); err != nil {
			debug.Error(err)
			return Nak, nil
		}
		return Ack, nil

	case Calibrate:
		if err := target.Calibrate(); err != nil {
			debug.Error(err)
			return Nak, nil
		}
		return "", &Pending{axis: target, cal: true}

	case MoveTo:
		if err := target.MoveTo(cmd.Value); err != nil {
			debug.Error(err)
			return Nak, nil
		}
		return "", &Pending{axis: target}

	case Home:
		if err := target.Home(); err != nil {
			debug.Error(err)
			return Nak, nil
		}
		return "", &Pending{axis: target}

	case Nudge:
		if err := target.Nudge(cmd.Dir); err != nil {
			debug.Error(err)
			return Nak, nil
		}
		return "", &Pending{axis: target}
	}

	debug.Live("Invalid command %q: %s", raw, cmd.Reason)
	return Nak, nil
}
