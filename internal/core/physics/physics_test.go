package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const eps = 1e-9

func TestVector2_Rotate(t *testing.T) {
	v := NewVector2(1, 0)

	quarter := v.Rotate(math.Pi / 2)
	assert.InDelta(t, 0, quarter.X, eps)
	assert.InDelta(t, -1, quarter.Y, eps, "positive angle maps +x onto -y")

	for _, theta := range []float64{0, 0.3, math.Pi / 2, 2.5, -1.2} {
		back := NewVector2(3, -4).Rotate(theta).Rotate(-theta)
		assert.True(t, back.ApproxEqual(NewVector2(3, -4), eps), "round trip for %v", theta)
	}
}

func TestVector2_Normalize(t *testing.T) {
	assert.Equal(t, Zero, Zero.Normalize(), "zero vector is unchanged")

	u := NewVector2(3, 4).Normalize()
	assert.InDelta(t, 1, u.Norm(), eps)
	assert.InDelta(t, 0.6, u.X, eps)
	assert.InDelta(t, 0.8, u.Y, eps)
}

func TestVector2_Arithmetic(t *testing.T) {
	a := NewVector2(1, 2)
	b := NewVector2(3, -1)

	assert.Equal(t, NewVector2(4, 1), a.Add(b))
	assert.Equal(t, NewVector2(-2, 3), a.Sub(b))
	assert.Equal(t, NewVector2(2, 4), a.Scale(2))
	assert.InDelta(t, 1, a.Dot(b), eps)
	assert.InDelta(t, -7, a.Cross(b), eps)
	assert.Equal(t, NewVector2(-2, 1), a.Perp())
}

func TestVector2_LocalWorld(t *testing.T) {
	forward := NewVector2(0, 1)
	left := forward.Perp()

	local := NewVector2(5, 2).Local(forward, left)
	assert.InDelta(t, 2, local.X, eps)
	assert.InDelta(t, -5, local.Y, eps)

	assert.True(t, local.World(forward, left).ApproxEqual(NewVector2(5, 2), eps))
}

func TestWall_Distance(t *testing.T) {
	w := NewWall(NewVector2(1, 1), NewVector2(10, 1))

	assert.InDelta(t, 0, w.Distance(NewVector2(3, 1)), eps)
	assert.InDelta(t, 1, w.Distance(NewVector2(3, 0)), eps)
	assert.InDelta(t, -1, w.Distance(NewVector2(3, 2)), eps)
	assert.InDelta(t, 9, w.Length(), eps)
	assert.Equal(t, NewVector2(0, -1), w.Normal())
}

func TestWall_ZeroLength(t *testing.T) {
	w := NewWall(NewVector2(2, 2), NewVector2(2, 2))

	assert.Equal(t, Zero, w.Normal())
	assert.True(t, math.IsInf(w.Distance(NewVector2(2, 2)), 1))
}
