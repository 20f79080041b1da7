package physics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vector2 is a point or direction on the field. Field coordinates grow
// rightwards in X and downwards in Y.
type Vector2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

var Zero = Vector2{}

func NewVector2(x, y float64) Vector2 {
	return Vector2{X: x, Y: y}
}

func fromR2(v r2.Vec) Vector2 {
	return Vector2{X: v.X, Y: v.Y}
}

func (v Vector2) R2() r2.Vec {
	return r2.Vec{X: v.X, Y: v.Y}
}

func (v Vector2) Add(o Vector2) Vector2 {
	return fromR2(r2.Add(v.R2(), o.R2()))
}

func (v Vector2) Sub(o Vector2) Vector2 {
	return fromR2(r2.Sub(v.R2(), o.R2()))
}

func (v Vector2) Scale(f float64) Vector2 {
	return fromR2(r2.Scale(f, v.R2()))
}

func (v Vector2) Dot(o Vector2) float64 {
	return r2.Dot(v.R2(), o.R2())
}

// Cross is the z component of the 3D cross product, v.X*o.Y - v.Y*o.X.
func (v Vector2) Cross(o Vector2) float64 {
	return r2.Cross(v.R2(), o.R2())
}

func (v Vector2) Norm() float64 {
	return r2.Norm(v.R2())
}

func (v Vector2) Norm2() float64 {
	return r2.Norm2(v.R2())
}

// Normalize returns the unit vector along v. A zero vector is returned as is.
func (v Vector2) Normalize() Vector2 {
	if v.Norm2() == 0 {
		return v
	}
	return fromR2(r2.Unit(v.R2()))
}

// Rotate turns v by theta radians with x' = x cos + y sin and
// y' = -x sin + y cos.
func (v Vector2) Rotate(theta float64) Vector2 {
	return fromR2(r2.Rotate(v.R2(), -theta, r2.Vec{}))
}

// Perp returns v turned a quarter turn: (-y, x).
func (v Vector2) Perp() Vector2 {
	return Vector2{X: -v.Y, Y: v.X}
}

// Local expresses v in the frame spanned by forward and left.
func (v Vector2) Local(forward, left Vector2) Vector2 {
	return Vector2{X: v.Dot(forward), Y: v.Dot(left)}
}

// World maps a local (forward, left) offset back onto field axes.
func (v Vector2) World(forward, left Vector2) Vector2 {
	return forward.Scale(v.X).Add(left.Scale(v.Y))
}

func (v Vector2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

func (v Vector2) ApproxEqual(o Vector2, tol float64) bool {
	return math.Abs(v.X-o.X) <= tol && math.Abs(v.Y-o.Y) <= tol
}

func (v Vector2) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}
