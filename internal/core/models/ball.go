package models

import (
	"math"

	"github.com/zeusync/robofield/internal/core/physics"
)

const (
	DefaultBallRadius   = 4.3
	DefaultBallFriction = 0.00005
)

var _ Entity = (*Ball)(nil)

// Ball is a free body with Coulomb friction. Its fields belong to the
// simulation goroutine.
type Ball struct {
	id       EntityID
	center   physics.Vector2
	velocity physics.Vector2
	radius   float64
	friction float64

	holder  *Robot
	removed bool
}

type BallOption func(*Ball)

func WithBallRadius(r float64) BallOption {
	return func(b *Ball) { b.radius = r }
}

func WithFriction(f float64) BallOption {
	return func(b *Ball) { b.friction = f }
}

func WithVelocity(v physics.Vector2) BallOption {
	return func(b *Ball) { b.velocity = v }
}

func NewBall(center physics.Vector2, opts ...BallOption) *Ball {
	b := &Ball{
		id:       NewEntityID(),
		center:   center,
		radius:   DefaultBallRadius,
		friction: DefaultBallFriction,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Ball) ID() EntityID                  { return b.id }
func (b *Ball) Kind() Kind                    { return KindBall }
func (b *Ball) Center() physics.Vector2       { return b.center }
func (b *Ball) Radius() float64               { return b.radius }
func (b *Ball) Velocity() physics.Vector2     { return b.velocity }
func (b *Ball) SetVelocity(v physics.Vector2) { b.velocity = v }
func (b *Ball) Removed() bool                 { return b.removed }

// MarkRemoved flags a scored ball so any grabber holding it lets go.
func (b *Ball) MarkRemoved() {
	b.removed = true
	b.holder = nil
}

func (b *Ball) Step() {
	speed := b.velocity.Norm()
	if speed == 0 {
		return
	}
	b.center = b.center.Add(b.velocity)
	slowed := math.Max(0, speed-b.friction)
	b.velocity = b.velocity.Scale(slowed / speed)
}

func (b *Ball) CollideWall(w physics.Wall) {
	d := w.Distance(b.center)
	if d >= b.radius {
		return
	}
	n := w.Normal()
	b.center = b.center.Add(n.Scale(b.radius - d))
	if vn := b.velocity.Dot(n); vn < 0 {
		b.velocity = b.velocity.Sub(n.Scale(2 * vn))
	}
}

func (b *Ball) Describe(f *Frame) {
	f.Balls = append(f.Balls, BallState{
		ID:       b.id,
		Center:   b.center,
		Velocity: b.velocity,
		Radius:   b.radius,
		ball:     b,
	})
}

// collideBalls pushes other out of self and exchanges the approaching
// component of their relative velocity along the contact normal.
func collideBalls(self, other *Ball) {
	dir := other.center.Sub(self.center)
	dist := dir.Norm()
	reach := self.radius + other.radius
	if dist == 0 || dist >= reach {
		return
	}
	n := dir.Scale(1 / dist)
	other.center = other.center.Add(n.Scale(reach - dist))

	t := other.velocity.Sub(self.velocity).Dot(n)
	if t < 0 {
		steal := n.Scale(t)
		other.velocity = other.velocity.Sub(steal)
		self.velocity = self.velocity.Add(steal)
	}
}
