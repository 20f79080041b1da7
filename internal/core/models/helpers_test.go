package models

import (
	"math"

	"github.com/zeusync/robofield/internal/core/physics"
	"github.com/zeusync/robofield/internal/core/random"
)

const eps = 1e-9

// liveFrames rebuilds a frame from the current entity state on every call.
type liveFrames struct {
	entities []Entity
}

func (l *liveFrames) Frame() *Frame {
	return BuildFrame(0, 0, 0, l.entities)
}

func (l *liveFrames) add(es ...Entity) {
	for _, e := range es {
		l.entities = append(l.entities, e)
		if r, ok := e.(*Robot); ok {
			r.Attach(l)
		}
	}
}

// fixedFrame always serves the same, possibly stale, frame.
type fixedFrame struct {
	f *Frame
}

func (s fixedFrame) Frame() *Frame { return s.f }

// facingRight builds a robot at center looking along +x.
func facingRight(profile Profile, center physics.Vector2) *Robot {
	refs := References{
		Beacon:    physics.NewVector2(950, 300),
		OwnBeacon: physics.NewVector2(0, 300),
		Goal:      physics.NewVector2(900, 300),
	}
	return NewRobot("test", profile, Pose{Center: center, Heading: math.Pi / 2}, refs, random.Fixed(0.5))
}
