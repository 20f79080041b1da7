package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

type Verb string

const (
	VerbWheels Verb = "WHEELS"
	VerbCam    Verb = "CAM"
	VerbGrab   Verb = "GRAB"
	VerbShoot  Verb = "SHOOT"
	VerbBeacon Verb = "BEACON"
	VerbGoal   Verb = "GOAL"
	VerbOpto   Verb = "OPTO"
)

const (
	MinWheel = -100
	MaxWheel = 100
)

const (
	ReplyOK    = "OK"
	ReplyError = "ERROR"
)

// Command is one parsed request line.
type Command struct {
	Verb  Verb
	Left  int
	Right int
}

func (c Command) String() string {
	if c.Verb == VerbWheels {
		return fmt.Sprintf("%s %d %d", c.Verb, c.Left, c.Right)
	}
	return string(c.Verb)
}

// Parse splits a request line on whitespace. Verbs are case sensitive;
// WHEELS takes exactly two integers in [MinWheel, MaxWheel] and every other
// verb takes no arguments.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, parseError(line, ErrProtocolParse)
	}

	verb := Verb(fields[0])
	switch verb {
	case VerbWheels:
		if len(fields) != 3 {
			return Command{}, parseError(line, ErrProtocolParse)
		}
		left, err := strconv.Atoi(fields[1])
		if err != nil {
			return Command{}, parseError(line, ErrProtocolParse)
		}
		right, err := strconv.Atoi(fields[2])
		if err != nil {
			return Command{}, parseError(line, ErrProtocolParse)
		}
		if !inWheelRange(left) || !inWheelRange(right) {
			return Command{}, parseError(line, ErrActuationRange).
				WithContext("left", left).
				WithContext("right", right)
		}
		return Command{Verb: verb, Left: left, Right: right}, nil

	case VerbCam, VerbGrab, VerbShoot, VerbBeacon, VerbGoal, VerbOpto:
		if len(fields) != 1 {
			return Command{}, parseError(line, ErrProtocolParse)
		}
		return Command{Verb: verb}, nil
	}

	return Command{}, parseError(line, ErrUnknownCommand)
}

func inWheelRange(v int) bool {
	return v >= MinWheel && v <= MaxWheel
}
