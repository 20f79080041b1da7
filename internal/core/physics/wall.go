package physics

import "math"

// Wall is an immutable segment. Its normal points to the right of the
// p1 -> p2 direction, so with walls listed clockwise on screen the normals
// face into the field.
type Wall struct {
	p1, p2 Vector2
	dir    Vector2
	length float64
	unit   Vector2
	normal Vector2
}

func NewWall(p1, p2 Vector2) Wall {
	dir := p2.Sub(p1)
	length := dir.Norm()
	w := Wall{p1: p1, p2: p2, dir: dir, length: length}
	if length > 0 {
		w.unit = dir.Scale(1 / length)
		w.normal = Vector2{X: w.unit.Y, Y: -w.unit.X}
	}
	return w
}

func (w Wall) P1() Vector2     { return w.p1 }
func (w Wall) P2() Vector2     { return w.p2 }
func (w Wall) Dir() Vector2    { return w.dir }
func (w Wall) Length() float64 { return w.length }
func (w Wall) Unit() Vector2   { return w.unit }
func (w Wall) Normal() Vector2 { return w.normal }

// Distance is the signed distance from p to the wall's line, positive on
// the normal side. A zero-length wall reports +Inf for every point.
func (w Wall) Distance(p Vector2) float64 {
	if w.length == 0 {
		return math.Inf(1)
	}
	return p.Sub(w.p1).Cross(w.dir) / w.length
}
