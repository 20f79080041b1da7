package protocol

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/robofield/internal/core/models"
	"github.com/zeusync/robofield/internal/core/physics"
	"github.com/zeusync/robofield/internal/core/random"
	"github.com/zeusync/robofield/internal/core/world"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line    string
		want    Command
		wantErr error
	}{
		{line: "WHEELS 50 -20", want: Command{Verb: VerbWheels, Left: 50, Right: -20}},
		{line: "WHEELS -100 100\r\n", want: Command{Verb: VerbWheels, Left: -100, Right: 100}},
		{line: "  GRAB  ", want: Command{Verb: VerbGrab}},
		{line: "CAM", want: Command{Verb: VerbCam}},
		{line: "SHOOT", want: Command{Verb: VerbShoot}},
		{line: "BEACON", want: Command{Verb: VerbBeacon}},
		{line: "GOAL", want: Command{Verb: VerbGoal}},
		{line: "OPTO", want: Command{Verb: VerbOpto}},
		{line: "WHEELS 101 0", wantErr: ErrActuationRange},
		{line: "WHEELS 0 -101", wantErr: ErrActuationRange},
		{line: "WHEELS a b", wantErr: ErrProtocolParse},
		{line: "WHEELS 1.5 2", wantErr: ErrProtocolParse},
		{line: "WHEELS 1", wantErr: ErrProtocolParse},
		{line: "WHEELS 1 2 3", wantErr: ErrProtocolParse},
		{line: "CAM now", wantErr: ErrProtocolParse},
		{line: "", wantErr: ErrProtocolParse},
		{line: "FOO", wantErr: ErrUnknownCommand},
		{line: "wheels 1 1", wantErr: ErrUnknownCommand},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Parse(tt.line)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommand_String(t *testing.T) {
	assert.Equal(t, "WHEELS 5 -5", Command{Verb: VerbWheels, Left: 5, Right: -5}.String())
	assert.Equal(t, "CAM", Command{Verb: VerbCam}.String())
}

func TestGetErrorCode(t *testing.T) {
	_, err := Parse("WHEELS 200 0")
	assert.Equal(t, ErrorCodeActuationRange, GetErrorCode(err))

	_, err = Parse("NOPE")
	assert.Equal(t, ErrorCodeUnknownCommand, GetErrorCode(err))

	assert.Equal(t, ErrorCodeSuccess, GetErrorCode(nil))
	assert.Equal(t, ErrorCodeProtocolParse, GetErrorCode(fmt.Errorf("wrapped: %w", ErrProtocolParse)))
	assert.Equal(t, ErrorCodeUnknown, GetErrorCode(fmt.Errorf("other")))

	var pe *Error
	_, err = Parse("WHEELS x 0")
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "WHEELS x 0", pe.Context["line"])
}

func floats(t *testing.T, reply string) []float64 {
	t.Helper()
	var out []float64
	for _, f := range strings.Fields(reply) {
		v, err := strconv.ParseFloat(f, 64)
		require.NoError(t, err, reply)
		out = append(out, v)
	}
	return out
}

func newField(t *testing.T, profile models.Profile) (*world.World, *models.Robot) {
	t.Helper()
	w := world.New(world.DefaultConfig())
	r := models.NewRobot("Robot A", profile, models.Pose{Center: physics.NewVector2(300, 150), Heading: math.Pi / 2},
		models.References{
			Beacon:    physics.NewVector2(950, 300),
			OwnBeacon: physics.NewVector2(0, 300),
			Goal:      physics.NewVector2(900, 300),
		}, random.Fixed(0.5))
	w.Add(r)
	return w, r
}

func TestHandler_WheelsOutOfRange(t *testing.T) {
	_, r := newField(t, models.ClassicProfile())
	h := NewHandler(r, random.NewLocked(1), nil)

	assert.Equal(t, ReplyError, h.Handle("WHEELS 101 0"))
}

func TestHandler_WheelsMovesRobot(t *testing.T) {
	profile := models.ClassicProfile()
	w, r := newField(t, profile)
	h := NewHandler(r, random.NewLocked(1), nil)

	start := r.Center()
	require.Equal(t, ReplyOK, h.Handle("WHEELS 50 50"))
	w.Simulate()

	moved := r.Center().Sub(start).Norm()
	nominal := 50 * profile.WheelScale
	assert.GreaterOrEqual(t, moved, 0.9*nominal-1e-12)
	assert.LessOrEqual(t, moved, 1.1*nominal+1e-12)
}

func TestHandler_CameraMiss(t *testing.T) {
	_, classic := newField(t, models.ClassicProfile())
	assert.Equal(t, "0 0", NewHandler(classic, nil, nil).Handle("CAM"))

	_, round := newField(t, models.TelliskiviProfile())
	assert.Equal(t, "-1 -1", NewHandler(round, nil, nil).Handle("CAM"))
}

func TestHandler_CameraHit(t *testing.T) {
	w := world.New(world.DefaultConfig())
	w.Add(models.NewBall(physics.NewVector2(350, 160)))
	r := models.NewRobot("Robot A", models.ClassicProfile(), models.Pose{Center: physics.NewVector2(300, 150), Heading: math.Pi / 2},
		models.References{}, random.Fixed(0.5))
	w.Add(r)

	got := floats(t, NewHandler(r, nil, nil).Handle("CAM"))
	require.Len(t, got, 2)
	assert.InDelta(t, 50, got[0], 1e-6)
	assert.InDelta(t, 10, got[1], 1e-6)
}

func TestHandler_UnknownCommand(t *testing.T) {
	_, r := newField(t, models.ClassicProfile())
	h := NewHandler(r, nil, nil)

	assert.Equal(t, ReplyError, h.Handle("FOO"))
	assert.Equal(t, ReplyOK, h.Handle("GRAB"), "handler keeps working after an error")
}

func TestHandler_GrabShootOpto(t *testing.T) {
	w := world.New(world.DefaultConfig())
	w.Add(models.NewBall(physics.NewVector2(327.8, 150)))
	r := models.NewRobot("Robot A", models.ClassicProfile(), models.Pose{Center: physics.NewVector2(300, 150), Heading: math.Pi / 2},
		models.References{}, nil)
	w.Add(r)
	h := NewHandler(r, nil, nil)

	assert.Equal(t, "0", h.Handle("OPTO"))
	assert.Equal(t, ReplyOK, h.Handle("GRAB"))
	assert.Equal(t, "1", h.Handle("OPTO"))
	w.Simulate()
	assert.Equal(t, ReplyOK, h.Handle("SHOOT"))
	assert.Equal(t, "0", h.Handle("OPTO"))
	w.Simulate()
	assert.InDelta(t, 0.4, w.Balls()[0].Velocity().Norm(), 1e-12)
}

func TestHandler_BeaconFlag(t *testing.T) {
	_, r := newField(t, models.ClassicProfile())
	assert.Equal(t, "0", NewHandler(r, nil, nil).Handle("BEACON"), "beacon is 150 units off axis")

	w := world.New(world.DefaultConfig())
	aligned := models.NewRobot("Robot B", models.ClassicProfile(), models.Pose{Center: physics.NewVector2(300, 300), Heading: math.Pi / 2},
		models.References{Beacon: physics.NewVector2(950, 300)}, nil)
	w.Add(aligned)
	assert.Equal(t, "1", NewHandler(aligned, nil, nil).Handle("BEACON"))
}

func TestHandler_BeaconOffsets(t *testing.T) {
	w := world.New(world.DefaultConfig())
	r := models.NewRobot("Robot C", models.TelliskiviProfile(), models.Pose{Center: physics.NewVector2(300, 300), Heading: math.Pi / 2},
		models.References{Beacon: physics.NewVector2(950, 300), OwnBeacon: physics.NewVector2(0, 300)}, nil)
	w.Add(r)

	reply := NewHandler(r, nil, nil).Handle("BEACON")
	assert.Regexp(t, `^-?\d+\.\d{6} -?\d+\.\d{6} -?\d+\.\d{6} -?\d+\.\d{6}$`, reply)
	got := floats(t, reply)
	require.Len(t, got, 4)
	assert.InDelta(t, 650, got[0], 1e-6)
	assert.InDelta(t, 0, got[1], 1e-6)
	assert.Equal(t, []float64{5000, 500}, got[2:], "own beacon is behind the robot")
}

func TestHandler_Goal(t *testing.T) {
	w := world.New(world.DefaultConfig())
	r := models.NewRobot("Robot C", models.TelliskiviProfile(), models.Pose{Center: physics.NewVector2(300, 300), Heading: math.Pi / 2},
		models.References{Goal: physics.NewVector2(900, 300)}, nil)
	w.Add(r)

	got := floats(t, NewHandler(r, nil, nil).Handle("GOAL"))
	require.Len(t, got, 2)
	assert.InDelta(t, 600, got[0], 1e-6)
	assert.InDelta(t, 0, got[1], 1e-6)
}

type panickyRobot struct {
	*models.Robot
}

func (panickyRobot) Camera() (models.Sighting, bool) {
	panic("lens cracked")
}

func TestHandler_RecoversFromPanic(t *testing.T) {
	_, r := newField(t, models.ClassicProfile())
	h := NewHandler(panickyRobot{Robot: r}, nil, nil)

	assert.Equal(t, ReplyError, h.Handle("CAM"))
	assert.Equal(t, ReplyOK, h.Handle("SHOOT"))
}
