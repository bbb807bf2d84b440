// Package runloop drives the controller: a single-threaded loop that
// on each pass polls the transport for one request, dispatches it,
// advances both axis state machines one tick, and emits position
// events. Long-running moves are advanced tick by tick, never awaited,
// so an estop request always lands within one loop period.
package runloop

import (
	"context"
	"net"
	"time"

	"github.com/cjeanneret/RotGo/internal/debug"
	"github.com/cjeanneret/RotGo/internal/logic/axis"
	"github.com/cjeanneret/RotGo/internal/notify"
	"github.com/cjeanneret/RotGo/internal/proto"
)

// Transport is the request/reply side of the datagram endpoint.
type Transport interface {
	Poll(timeout time.Duration) (string, net.Addr, error)
	Reply(addr net.Addr, payload string) error
}

// StatusSink receives a per-axis snapshot once per tick, e.g. for the
// web monitor. May be nil.
type StatusSink interface {
	Publish(tag string, position int, state string)
}

// pendingReq is a request whose reply waits on an axis operation.
type pendingReq struct {
	op   *proto.Pending
	addr net.Addr
}

// Loop owns the two axes and the protocol state for one controller.
type Loop struct {
	tr     Transport
	disp   *proto.Dispatcher
	az, el *axis.Axis
	azNtf  *notify.Notifier
	elNtf  *notify.Notifier
	tick   time.Duration
	status StatusSink

	pending []pendingReq
}

func New(tr Transport, disp *proto.Dispatcher, az, el *axis.Axis, azNtf, elNtf *notify.Notifier, tick time.Duration) *Loop {
	return &Loop{
		tr:    tr,
		disp:  disp,
		az:    az,
		el:    el,
		azNtf: azNtf,
		elNtf: elNtf,
		tick:  tick,
	}
}

// SetStatusSink attaches an optional per-tick status consumer.
func (l *Loop) SetStatusSink(s StatusSink) {
	l.status = s
}

// Run iterates until ctx is cancelled. The transport read deadline
// doubles as the loop's sleep, bounding both poll rate and latency.
func (l *Loop) Run(ctx context.Context) error {
	debug.Info("Control loop running (tick %v)", l.tick)
	for {
		select {
		case <-ctx.Done():
			l.az.EmergencyStop()
			l.el.EmergencyStop()
			debug.Info("Control loop stopped")
			return nil
		default:
		}
		l.once()
	}
}

// once is a single loop iteration: at most one request handled, one
// tick per axis, one event check per axis.
func (l *Loop) once() {
	raw, addr, err := l.tr.Poll(l.tick)
	if err != nil {
		// Transient socket error; skip only the request handling.
		// The axes still tick so limit switches and timeouts keep
		// being watched while a move is in flight.
		debug.Error(err)
	} else if raw != "" {
		l.handle(raw, addr)
	}

	l.az.Tick()
	l.el.Tick()
	l.azNtf.Observe(l.az.Position())
	l.elNtf.Observe(l.el.Position())
	l.resolvePending()

	if l.status != nil {
		l.status.Publish("az", l.az.Position(), l.az.State().String())
		l.status.Publish("el", l.el.Position(), l.el.State().String())
	}
}

func (l *Loop) handle(raw string, addr net.Addr) {
	reply, pending := l.disp.Dispatch(raw)
	if pending != nil {
		l.pending = append(l.pending, pendingReq{op: pending, addr: addr})
		debug.Cmd(raw, "(pending)")
		return
	}
	debug.Cmd(raw, string(reply))
	if err := l.tr.Reply(addr, string(reply)); err != nil {
		debug.Error(err)
	}
}

// resolvePending replies to requests whose axis operation finished
// this tick. At most one per axis can be outstanding.
func (l *Loop) resolvePending() {
	remaining := l.pending[:0]
	for _, p := range l.pending {
		reply, done := p.op.Resolve()
		if !done {
			remaining = append(remaining, p)
			continue
		}
		debug.Cmd("(deferred)", string(reply))
		if err := l.tr.Reply(p.addr, string(reply)); err != nil {
			debug.Error(err)
		}
	}
	l.pending = remaining
}
