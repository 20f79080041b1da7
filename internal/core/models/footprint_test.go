package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/robofield/internal/core/physics"
)

func TestRectangle_Clearance(t *testing.T) {
	r := Rectangle{HalfLength: 22.5, HalfWidth: 17.5}
	wall := physics.NewWall(physics.NewVector2(0, 0), physics.NewVector2(0, 600))
	forward := physics.NewVector2(1, 0)

	m := r.Clearance(physics.NewVector2(10, 300), forward, forward.Perp(), wall)
	assert.InDelta(t, -12.5, m, eps)

	m = r.Clearance(physics.NewVector2(100, 300), forward, forward.Perp(), wall)
	assert.InDelta(t, 77.5, m, eps)
}

func TestRectangle_Contact(t *testing.T) {
	r := Rectangle{HalfLength: 22.5, HalfWidth: 17.5}

	c, ok := r.Contact(physics.NewVector2(26.5, 3), 4.3)
	require.True(t, ok)
	assert.True(t, c.Front)
	assert.InDelta(t, 0.3, c.Depth, eps)
	assert.Equal(t, physics.NewVector2(1, 0), c.Normal)

	c, ok = r.Contact(physics.NewVector2(0, -20), 4.3)
	require.True(t, ok)
	assert.False(t, c.Front)
	assert.True(t, c.Normal.ApproxEqual(physics.NewVector2(0, -1), eps))

	_, ok = r.Contact(physics.NewVector2(40, 0), 4.3)
	assert.False(t, ok)
}

func TestRectangle_ContactInside(t *testing.T) {
	r := Rectangle{HalfLength: 22.5, HalfWidth: 17.5}

	c, ok := r.Contact(physics.NewVector2(20, 0), 4.3)
	require.True(t, ok)
	assert.Equal(t, physics.NewVector2(1, 0), c.Normal)
	assert.InDelta(t, 2.5+4.3, c.Depth, eps)
}

func TestRectangle_BoundingRadius(t *testing.T) {
	r := Rectangle{HalfLength: 3, HalfWidth: 4}
	assert.InDelta(t, 5, r.BoundingRadius(), eps)

	r.Radius = 6
	assert.InDelta(t, 6, r.BoundingRadius(), eps, "explicit radius wins")
}

func TestCircleFront_Contact(t *testing.T) {
	c := CircleFront{Radius: 26, FrontOffset: 17, EdgeHalfWidth: 20}

	front, ok := c.Contact(physics.NewVector2(20, 2), 4.3)
	require.True(t, ok)
	assert.True(t, front.Front)
	assert.InDelta(t, 1.3, front.Depth, eps)

	side, ok := c.Contact(physics.NewVector2(0, 28), 4.3)
	require.True(t, ok)
	assert.False(t, side.Front)
	assert.InDelta(t, 1, side.Normal.Y, eps)
	assert.InDelta(t, 2.3, side.Depth, eps)

	_, ok = c.Contact(physics.NewVector2(22, 2), 4.3)
	assert.False(t, ok, "ball ahead of the flat edge does not touch")

	_, ok = c.Contact(physics.NewVector2(0, 0), 4.3)
	assert.False(t, ok, "coincident centers are ignored")
}

func TestCircleFront_Clearance(t *testing.T) {
	c := CircleFront{Radius: 26, FrontOffset: 17, EdgeHalfWidth: 20}
	wall := physics.NewWall(physics.NewVector2(0, 0), physics.NewVector2(0, 600))

	m := c.Clearance(physics.NewVector2(20, 100), physics.NewVector2(1, 0), physics.NewVector2(0, 1), wall)
	assert.InDelta(t, -6, m, eps)
	assert.InDelta(t, 26, c.BoundingRadius(), eps)
	assert.False(t, math.IsNaN(m))
}
