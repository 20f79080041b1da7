package models

import (
	"github.com/google/uuid"

	"github.com/zeusync/robofield/internal/core/physics"
	"github.com/zeusync/robofield/internal/core/random"
)

type EntityID string

func NewEntityID() EntityID {
	return EntityID(uuid.NewString())
}

// Kind tags the closed set of entity variants.
type Kind uint8

const (
	KindBall Kind = iota
	KindRobot

	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindBall:
		return "ball"
	case KindRobot:
		return "robot"
	default:
		return "unknown"
	}
}

// Entity is anything registered with the world. All methods except ID,
// Kind and Radius are called only from the simulation goroutine.
type Entity interface {
	ID() EntityID
	Kind() Kind
	Center() physics.Vector2
	Radius() float64

	// Step advances the entity by one tick.
	Step()
	// CollideWall resolves overlap with a single wall.
	CollideWall(w physics.Wall)
	// Describe appends the entity's render state to the frame.
	Describe(f *Frame)
}

type resolver func(self, other Entity, coin random.Source)

// collisionTable dispatches on (self, other) kinds. Robot and ball pairs
// are normalised to (robot, ball) whichever side calls.
var collisionTable = [kindCount][kindCount]resolver{
	KindBall: {
		KindBall: func(self, other Entity, _ random.Source) {
			collideBalls(self.(*Ball), other.(*Ball))
		},
		KindRobot: func(self, other Entity, _ random.Source) {
			collideRobotBall(other.(*Robot), self.(*Ball))
		},
	},
	KindRobot: {
		KindBall: func(self, other Entity, _ random.Source) {
			collideRobotBall(self.(*Robot), other.(*Ball))
		},
		KindRobot: func(self, other Entity, coin random.Source) {
			collideRobots(self.(*Robot), other.(*Robot), coin)
		},
	},
}

// Collide resolves one ordered pair. self is the entity registered later;
// for ball pairs it keeps its position and other is pushed out.
func Collide(self, other Entity, coin random.Source) {
	sk, ok := self.Kind(), other.Kind()
	if sk >= kindCount || ok >= kindCount {
		return
	}
	if fn := collisionTable[sk][ok]; fn != nil {
		fn(self, other, coin)
	}
}
