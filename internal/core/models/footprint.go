package models

import (
	"math"

	"github.com/zeusync/robofield/internal/core/physics"
)

// Contact describes a ball touching a robot body, in the robot's local
// (forward, left) frame. Normal points from the body towards the ball.
type Contact struct {
	Normal physics.Vector2
	Depth  float64
	Front  bool
}

// Footprint is the collision shape of a robot body.
type Footprint interface {
	BoundingRadius() float64
	// FrontReach is the forward distance from the center to the front edge.
	FrontReach() float64
	// FrontHalfWidth is half the length of the front edge.
	FrontHalfWidth() float64
	// Clearance is the smallest signed distance between the body and the
	// wall line; negative means the body crosses the wall.
	Clearance(center, forward, left physics.Vector2, w physics.Wall) float64
	// Contact reports the overlap with a ball whose center sits at local.
	Contact(local physics.Vector2, radius float64) (Contact, bool)
}

var (
	_ Footprint = Rectangle{}
	_ Footprint = CircleFront{}
)

// Rectangle is an oriented box. HalfLength runs along forward, HalfWidth
// along left. Radius, when positive, replaces the half diagonal as the
// bounding radius.
type Rectangle struct {
	HalfLength float64
	HalfWidth  float64
	Radius     float64
}

func (r Rectangle) BoundingRadius() float64 {
	if r.Radius > 0 {
		return r.Radius
	}
	return math.Hypot(r.HalfLength, r.HalfWidth)
}

func (r Rectangle) FrontReach() float64     { return r.HalfLength }
func (r Rectangle) FrontHalfWidth() float64 { return r.HalfWidth }

func (r Rectangle) Clearance(center, forward, left physics.Vector2, w physics.Wall) float64 {
	m := math.Inf(1)
	for _, sf := range [2]float64{-1, 1} {
		for _, sl := range [2]float64{-1, 1} {
			corner := center.Add(forward.Scale(sf * r.HalfLength)).Add(left.Scale(sl * r.HalfWidth))
			m = math.Min(m, w.Distance(corner))
		}
	}
	return m
}

func (r Rectangle) Contact(local physics.Vector2, radius float64) (Contact, bool) {
	closest := physics.NewVector2(
		clamp(local.X, -r.HalfLength, r.HalfLength),
		clamp(local.Y, -r.HalfWidth, r.HalfWidth),
	)
	gap := local.Sub(closest)
	dist := gap.Norm()
	if dist >= radius {
		return Contact{}, false
	}

	var c Contact
	if dist > 0 {
		c = Contact{Normal: gap.Scale(1 / dist), Depth: radius - dist}
	} else {
		// Center inside the box: leave through the nearest face.
		px := r.HalfLength - math.Abs(local.X)
		py := r.HalfWidth - math.Abs(local.Y)
		if px <= py {
			c = Contact{Normal: physics.NewVector2(sign(local.X), 0), Depth: px + radius}
		} else {
			c = Contact{Normal: physics.NewVector2(0, sign(local.Y)), Depth: py + radius}
		}
	}
	c.Front = c.Normal.X > 0 && math.Abs(local.Y) < r.HalfWidth
	return c, true
}

// CircleFront is a round body with a flat front edge cut at FrontOffset.
type CircleFront struct {
	Radius        float64
	FrontOffset   float64
	EdgeHalfWidth float64
}

func (c CircleFront) BoundingRadius() float64 { return c.Radius }
func (c CircleFront) FrontReach() float64     { return c.FrontOffset }
func (c CircleFront) FrontHalfWidth() float64 { return c.EdgeHalfWidth }

func (c CircleFront) Clearance(center, _, _ physics.Vector2, w physics.Wall) float64 {
	return w.Distance(center) - c.Radius
}

func (c CircleFront) Contact(local physics.Vector2, radius float64) (Contact, bool) {
	dist := local.Norm()
	if dist == 0 || dist-radius-c.Radius >= 0 {
		return Contact{}, false
	}
	if local.X < c.FrontOffset {
		return Contact{Normal: local.Scale(1 / dist), Depth: radius + c.Radius - dist}, true
	}
	d := local.X - c.FrontOffset - radius
	if d < 0 && math.Abs(local.Y) < c.EdgeHalfWidth {
		return Contact{Normal: physics.NewVector2(1, 0), Depth: -d, Front: true}, true
	}
	return Contact{}, false
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
