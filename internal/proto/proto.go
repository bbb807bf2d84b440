// Package proto implements the rotator's datagram command protocol:
// one short text command per request, answered by "ack", "nak" or a
// bare integer (the measured raw value after a calibration).
package proto

import (
	"strconv"

	"github.com/cjeanneret/RotGo/internal/hw/motor"
)

// AxisID identifies which axis a command targets.
type AxisID int

const (
	Az AxisID = iota
	El
)

func (id AxisID) String() string {
	if id == El {
		return "el"
	}
	return "az"
}

// Kind is the command variant tag.
type Kind int

const (
	Invalid Kind = iota
	Poll
	Calibrate
	Home
	EStop
	SetSpeed
	SetCal
	MoveTo
	Nudge
)

// Command is a parsed request. It lives for one request/reply cycle.
type Command struct {
	Kind   Kind
	Axis   AxisID
	Value  int             // SetSpeed, SetCal, MoveTo
	Dir    motor.Direction // Nudge
	Reason string          // Invalid
}

// Reply is the wire-format response to one command.
type Reply string

const (
	Ack Reply = "ack"
	Nak Reply = "nak"
)

// AckValue replies with a bare integer; the desktop client stores the
// reply string itself as the calibration constant.
func AckValue(v int) Reply {
	return Reply(strconv.Itoa(v))
}

// keyword commands, matched exactly (case-sensitive, no whitespace
// tolerance).
var keywords = map[string]Command{
	"poll":    {Kind: Poll},
	"calaz":   {Kind: Calibrate, Axis: Az},
	"calel":   {Kind: Calibrate, Axis: El},
	"homeaz":  {Kind: Home, Axis: Az},
	"homeel":  {Kind: Home, Axis: El},
	"estop":   {Kind: EStop},
	"ngazfwd": {Kind: Nudge, Axis: Az, Dir: motor.Forward},
	"ngazrev": {Kind: Nudge, Axis: Az, Dir: motor.Reverse},
	"ngelfwd": {Kind: Nudge, Axis: El, Dir: motor.Forward},
	"ngelrev": {Kind: Nudge, Axis: El, Dir: motor.Reverse},
}

// numeric suffix letters. First match wins: `n`/`m` set speed,
// `z`/`e` move, `a`/`b` set the calibration offset directly.
var suffixes = map[byte]Command{
	'n': {Kind: SetSpeed, Axis: Az},
	'm': {Kind: SetSpeed, Axis: El},
	'z': {Kind: MoveTo, Axis: Az},
	'e': {Kind: MoveTo, Axis: El},
	'a': {Kind: SetCal, Axis: Az},
	'b': {Kind: SetCal, Axis: El},
}

// Parse interprets one raw command string. It never fails: malformed
// input yields an Invalid command carrying a diagnostic reason.
func Parse(raw string) Command {
	if raw == "" {
		return invalid("empty command")
	}
	if cmd, ok := keywords[raw]; ok {
		return cmd
	}

	// Decimal digits followed by a suffix letter. The value is
	// unsigned; everything after the suffix is ignored, matching the
	// firmware's first-match dispatch.
	i := 0
	for i < len(raw) && raw[i] >= '0' && raw[i] <= '9' {
		i++
	}
	if i == 0 {
		return invalid("unknown command " + strconv.Quote(raw))
	}
	if i == len(raw) {
		return invalid("digits without terminating letter")
	}
	cmd, ok := suffixes[raw[i]]
	if !ok {
		return invalid("unknown suffix " + strconv.Quote(string(raw[i])))
	}
	v, err := strconv.Atoi(raw[:i])
	if err != nil {
		return invalid("bad number " + strconv.Quote(raw[:i]))
	}
	cmd.Value = v
	return cmd
}

func invalid(reason string) Command {
	return Command{Kind: Invalid, Reason: reason}
}
