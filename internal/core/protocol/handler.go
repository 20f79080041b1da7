package protocol

import (
	"fmt"

	"github.com/zeusync/robofield/internal/core/models"
	"github.com/zeusync/robofield/internal/core/observability/log"
	"github.com/zeusync/robofield/internal/core/physics"
	"github.com/zeusync/robofield/internal/core/random"
)

// Robot is the actuator and sensor surface a handler drives.
type Robot interface {
	Name() string
	Profile() models.Profile

	Wheels(left, right float64)
	Grab()
	Shoot()

	Camera() (models.Sighting, bool)
	Beacon() models.BeaconReading
	Goal() physics.Vector2
	Holding() bool
}

var _ Robot = (*models.Robot)(nil)

// Handler turns request lines into replies for one robot.
type Handler struct {
	robot  Robot
	noise  random.Source
	logger log.Log
}

func NewHandler(robot Robot, noise random.Source, logger log.Log) *Handler {
	if noise == nil {
		noise = random.Fixed(0.5)
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Handler{
		robot:  robot,
		noise:  noise,
		logger: logger.With(log.String("robot", robot.Name())),
	}
}

// Handle answers one line. Every failure, including a panic while
// executing, becomes ReplyError.
func (h *Handler) Handle(line string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Command panicked",
				log.String("line", line),
				log.Int("code", int(ErrorCodeInternalError)),
				log.Any("panic", r),
			)
			reply = ReplyError
		}
	}()

	cmd, err := Parse(line)
	if err != nil {
		h.logger.Debug("Rejected command",
			log.String("line", line),
			log.Int("code", int(GetErrorCode(err))),
			log.Error(err),
		)
		return ReplyError
	}
	return h.Execute(cmd)
}

// Execute runs a parsed command against the robot.
func (h *Handler) Execute(cmd Command) string {
	profile := h.robot.Profile()

	switch cmd.Verb {
	case VerbWheels:
		left := float64(cmd.Left) * random.Uniform(h.noise, 0.9, 1.1)
		right := float64(cmd.Right) * random.Uniform(h.noise, 0.9, 1.1)
		h.robot.Wheels(left, right)
		return ReplyOK

	case VerbCam:
		s, ok := h.robot.Camera()
		if !ok {
			if profile.CameraMiss == "" {
				return "0 0"
			}
			return profile.CameraMiss
		}
		return formatPair(s.Forward, s.Lateral)

	case VerbGrab:
		h.robot.Grab()
		return ReplyOK

	case VerbShoot:
		h.robot.Shoot()
		return ReplyOK

	case VerbBeacon:
		b := h.robot.Beacon()
		if profile.BeaconMode == models.BeaconOffsets {
			return fmt.Sprintf("%f %f %f %f", b.Beacon.X, b.Beacon.Y, b.OwnBeacon.X, b.OwnBeacon.Y)
		}
		return formatFlag(b.Aligned)

	case VerbGoal:
		g := h.robot.Goal()
		return formatPair(g.X, g.Y)

	case VerbOpto:
		return formatFlag(h.robot.Holding())
	}

	return ReplyError
}

func formatPair(a, b float64) string {
	return fmt.Sprintf("%f %f", a, b)
}

func formatFlag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
