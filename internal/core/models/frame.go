package models

import "github.com/zeusync/robofield/internal/core/physics"

type BallState struct {
	ID       EntityID        `json:"id"`
	Center   physics.Vector2 `json:"center"`
	Velocity physics.Vector2 `json:"velocity"`
	Radius   float64         `json:"radius"`
	Held     bool            `json:"held"`

	ball *Ball
}

type RobotState struct {
	ID       EntityID        `json:"id"`
	Name     string          `json:"name"`
	Center   physics.Vector2 `json:"center"`
	Forward  physics.Vector2 `json:"forward"`
	Left     physics.Vector2 `json:"left"`
	Radius   float64         `json:"radius"`
	Holding  EntityID        `json:"holding,omitempty"`
	Wheels   Wheels          `json:"wheels"`
	Commands uint64          `json:"commands"`
}

// Frame is an immutable view of the field after a tick. Slices follow
// registration order.
type Frame struct {
	Tick       uint64       `json:"tick"`
	ScoreLeft  int          `json:"score_left"`
	ScoreRight int          `json:"score_right"`
	Balls      []BallState  `json:"balls"`
	Robots     []RobotState `json:"robots"`
}

// FrameSource hands out the most recently published frame.
type FrameSource interface {
	Frame() *Frame
}

// BuildFrame captures the state of every entity.
func BuildFrame(tick uint64, scoreLeft, scoreRight int, entities []Entity) *Frame {
	f := &Frame{
		Tick:       tick,
		ScoreLeft:  scoreLeft,
		ScoreRight: scoreRight,
	}
	for _, e := range entities {
		e.Describe(f)
	}

	held := make(map[EntityID]struct{}, len(f.Robots))
	for _, r := range f.Robots {
		if r.Holding != "" {
			held[r.Holding] = struct{}{}
		}
	}
	for i := range f.Balls {
		if _, ok := held[f.Balls[i].ID]; ok {
			f.Balls[i].Held = true
		}
	}
	return f
}

func (f *Frame) Robot(id EntityID) (RobotState, bool) {
	for _, r := range f.Robots {
		if r.ID == id {
			return r, true
		}
	}
	return RobotState{}, false
}

func (f *Frame) Ball(id EntityID) (BallState, bool) {
	for _, b := range f.Balls {
		if b.ID == id {
			return b, true
		}
	}
	return BallState{}, false
}

// HeldCount counts balls currently in a grabber.
func (f *Frame) HeldCount() int {
	n := 0
	for _, b := range f.Balls {
		if b.Held {
			n++
		}
	}
	return n
}
