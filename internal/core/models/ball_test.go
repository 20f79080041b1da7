package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zeusync/robofield/internal/core/physics"
)

func TestBall_StepFriction(t *testing.T) {
	b := NewBall(physics.NewVector2(100, 100), WithVelocity(physics.NewVector2(1, 0)))
	b.Step()

	assert.InDelta(t, 101, b.Center().X, eps)
	assert.InDelta(t, 1-DefaultBallFriction, b.Velocity().Norm(), eps)
	assert.InDelta(t, 0, b.Velocity().Y, eps, "direction is preserved")
}

func TestBall_FrictionOverTicks(t *testing.T) {
	tests := []struct {
		name     string
		speed    float64
		dir      physics.Vector2
		friction float64
		ticks    int
	}{
		{name: "default friction", speed: 0.4, dir: physics.NewVector2(-1, 1).Normalize(), friction: DefaultBallFriction, ticks: 200},
		{name: "stops after ten ticks", speed: 1, dir: physics.NewVector2(0.6, 0.8), friction: 0.1, ticks: 15},
		{name: "stops mid tick", speed: 0.25, dir: physics.NewVector2(1, 0), friction: 0.1, ticks: 5},
		{name: "slow ball", speed: 0.00012, dir: physics.NewVector2(0, -1), friction: DefaultBallFriction, ticks: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBall(physics.NewVector2(450, 300),
				WithFriction(tt.friction),
				WithVelocity(tt.dir.Scale(tt.speed)),
			)

			for k := 1; k <= tt.ticks; k++ {
				b.Step()
				want := math.Max(0, tt.speed-float64(k)*tt.friction)
				got := b.Velocity().Norm()
				assert.InDelta(t, want, got, 1e-9, "tick %d", k)
				if got > 0 {
					assert.True(t, b.Velocity().Normalize().ApproxEqual(tt.dir, 1e-9), "direction at tick %d", k)
				} else {
					assert.Equal(t, physics.Zero, b.Velocity(), "tick %d", k)
				}
			}
		})
	}
}

func TestBall_StepClampsAtZero(t *testing.T) {
	b := NewBall(physics.NewVector2(0, 0), WithVelocity(physics.NewVector2(0, 0.00002)))
	b.Step()
	assert.Equal(t, physics.Zero, b.Velocity())

	at := b.Center()
	b.Step()
	assert.Equal(t, at, b.Center(), "resting ball does not move")
}

func TestBall_CollideWall(t *testing.T) {
	wall := physics.NewWall(physics.NewVector2(0, 0), physics.NewVector2(0, 600))
	b := NewBall(physics.NewVector2(2, 300), WithVelocity(physics.NewVector2(-1, 0.5)))

	b.CollideWall(wall)

	assert.InDelta(t, DefaultBallRadius, b.Center().X, eps, "pushed to touch the wall")
	assert.InDelta(t, 1, b.Velocity().X, eps)
	assert.InDelta(t, 0.5, b.Velocity().Y, eps)
}

func TestBall_CollideWallMovingAway(t *testing.T) {
	wall := physics.NewWall(physics.NewVector2(0, 0), physics.NewVector2(0, 600))
	b := NewBall(physics.NewVector2(2, 300), WithVelocity(physics.NewVector2(1, 0)))

	b.CollideWall(wall)

	assert.InDelta(t, DefaultBallRadius, b.Center().X, eps)
	assert.InDelta(t, 1, b.Velocity().X, eps, "velocity away from the wall is kept")
}

func TestBall_CollideZeroLengthWall(t *testing.T) {
	wall := physics.NewWall(physics.NewVector2(5, 5), physics.NewVector2(5, 5))
	b := NewBall(physics.NewVector2(5, 5), WithVelocity(physics.NewVector2(1, 0)))

	b.CollideWall(wall)

	assert.Equal(t, physics.NewVector2(5, 5), b.Center())
}

func TestCollideBalls(t *testing.T) {
	self := NewBall(physics.NewVector2(0, 0), WithVelocity(physics.NewVector2(1, 0)))
	other := NewBall(physics.NewVector2(5, 0))

	Collide(self, other, nil)

	assert.InDelta(t, 2*DefaultBallRadius, other.Center().X, eps, "other is pushed out")
	assert.Equal(t, physics.NewVector2(0, 0), self.Center(), "self stays")
	assert.InDelta(t, 0, self.Velocity().X, eps)
	assert.InDelta(t, 1, other.Velocity().X, eps)
}

func TestCollideBalls_Separating(t *testing.T) {
	self := NewBall(physics.NewVector2(0, 0))
	other := NewBall(physics.NewVector2(5, 0), WithVelocity(physics.NewVector2(1, 0)))

	Collide(self, other, nil)

	assert.InDelta(t, 1, other.Velocity().X, eps)
	assert.InDelta(t, 0, self.Velocity().X, eps)
}

func TestCollideBalls_Coincident(t *testing.T) {
	self := NewBall(physics.NewVector2(3, 3), WithVelocity(physics.NewVector2(1, 0)))
	other := NewBall(physics.NewVector2(3, 3))

	Collide(self, other, nil)

	assert.Equal(t, physics.NewVector2(3, 3), other.Center())
	assert.Equal(t, physics.NewVector2(1, 0), self.Velocity())
}
