package world

import (
	"sync/atomic"

	"github.com/zeusync/robofield/internal/core/events/bus"
	"github.com/zeusync/robofield/internal/core/models"
	"github.com/zeusync/robofield/internal/core/observability/log"
	"github.com/zeusync/robofield/internal/core/physics"
	"github.com/zeusync/robofield/internal/core/random"
)

var _ models.FrameSource = (*World)(nil)

type Config struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	// GoalHalfWidth is half the height of the goal mouth around the
	// vertical center line.
	GoalHalfWidth float64 `yaml:"goal_half_width"`
	// GoalMargin is how far past the wall line a ball's edge must be to
	// count as scored.
	GoalMargin float64 `yaml:"goal_margin"`
}

func DefaultConfig() Config {
	return Config{
		Width:         900,
		Height:        600,
		GoalHalfWidth: 70,
		GoalMargin:    5,
	}
}

type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// GoalEvent is published on the bus as bus.EventGoalScored.
type GoalEvent struct {
	Tick       uint64          `csv:"tick"`
	Side       Side            `csv:"side"`
	BallID     models.EntityID `csv:"ball_id"`
	ScoreLeft  int             `csv:"score_left"`
	ScoreRight int             `csv:"score_right"`
}

// World owns the entity registry and advances it one tick at a time. Add
// and Simulate must be called from a single goroutine; Frame is safe for
// any goroutine.
type World struct {
	cfg   Config
	walls [4]physics.Wall

	entities []models.Entity

	coin   random.Source
	events bus.EventBus
	logger log.Log

	scoreLeft  int
	scoreRight int
	tick       uint64

	frame atomic.Pointer[models.Frame]
}

type Option func(*World)

// WithCoin sets the source used for robot-robot tie breaks.
func WithCoin(src random.Source) Option {
	return func(w *World) { w.coin = src }
}

func WithEventBus(b bus.EventBus) Option {
	return func(w *World) { w.events = b }
}

func WithLogger(l log.Log) Option {
	return func(w *World) { w.logger = l }
}

func New(cfg Config, opts ...Option) *World {
	w := &World{
		cfg:    cfg,
		coin:   random.New(1),
		logger: log.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(log.String("component", "world"))

	// Clockwise on screen so every normal faces into the field.
	topLeft := physics.NewVector2(0, 0)
	bottomLeft := physics.NewVector2(0, cfg.Height)
	bottomRight := physics.NewVector2(cfg.Width, cfg.Height)
	topRight := physics.NewVector2(cfg.Width, 0)
	w.walls = [4]physics.Wall{
		physics.NewWall(topLeft, bottomLeft),
		physics.NewWall(bottomLeft, bottomRight),
		physics.NewWall(bottomRight, topRight),
		physics.NewWall(topRight, topLeft),
	}

	w.publish()
	return w
}

func (w *World) Config() Config           { return w.cfg }
func (w *World) Walls() [4]physics.Wall   { return w.walls }
func (w *World) Tick() uint64             { return w.tick }
func (w *World) Score() (left, right int) { return w.scoreLeft, w.scoreRight }
func (w *World) Frame() *models.Frame     { return w.frame.Load() }
func (w *World) Center() physics.Vector2  { return physics.NewVector2(w.cfg.Width/2, w.cfg.Height/2) }

// Add registers an entity after all existing ones. Robots are attached to
// the world's frames so their sensors see it.
func (w *World) Add(e models.Entity) {
	w.entities = append(w.entities, e)
	if r, ok := e.(*models.Robot); ok {
		r.Attach(w)
	}
	w.publish()
}

// Entities returns the registry in registration order.
func (w *World) Entities() []models.Entity {
	out := make([]models.Entity, len(w.entities))
	copy(out, w.entities)
	return out
}

func (w *World) Balls() []*models.Ball {
	var out []*models.Ball
	for _, e := range w.entities {
		if b, ok := e.(*models.Ball); ok {
			out = append(out, b)
		}
	}
	return out
}

func (w *World) Robots() []*models.Robot {
	var out []*models.Robot
	for _, e := range w.entities {
		if r, ok := e.(*models.Robot); ok {
			out = append(out, r)
		}
	}
	return out
}

// Simulate advances the world by one tick: step, wall collisions, pair
// collisions, then scoring.
func (w *World) Simulate() {
	for _, e := range w.entities {
		e.Step()
	}

	for _, e := range w.entities {
		for _, wall := range w.walls {
			e.CollideWall(wall)
		}
	}

	for i := range w.entities {
		for j := 0; j < i; j++ {
			models.Collide(w.entities[i], w.entities[j], w.coin)
		}
	}

	goals := w.sweepGoals()

	w.tick++
	w.publish()

	for _, g := range goals {
		w.logger.Info("Goal scored",
			log.String("side", string(g.Side)),
			log.String("ball", string(g.BallID)),
			log.Int("score_left", g.ScoreLeft),
			log.Int("score_right", g.ScoreRight),
			log.Uint64("tick", g.Tick),
		)
		if w.events != nil && w.events.Subscribers(bus.EventGoalScored) > 0 {
			if err := w.events.Publish(bus.NewEvent(bus.EventGoalScored, "world", g)); err != nil {
				w.logger.Warn("Goal event handler failed", log.Error(err))
			}
		}
	}
}

// sweepGoals removes every ball inside a goal mouth and bumps the matching
// counter.
func (w *World) sweepGoals() []GoalEvent {
	var goals []GoalEvent
	cy := w.cfg.Height / 2

	kept := w.entities[:0]
	for _, e := range w.entities {
		b, ok := e.(*models.Ball)
		if !ok {
			kept = append(kept, e)
			continue
		}
		side, scored := w.goalFor(b, cy)
		if !scored {
			kept = append(kept, e)
			continue
		}
		if side == SideLeft {
			w.scoreLeft++
		} else {
			w.scoreRight++
		}
		b.MarkRemoved()
		goals = append(goals, GoalEvent{
			Tick:       w.tick + 1,
			Side:       side,
			BallID:     b.ID(),
			ScoreLeft:  w.scoreLeft,
			ScoreRight: w.scoreRight,
		})
	}
	for i := len(kept); i < len(w.entities); i++ {
		w.entities[i] = nil
	}
	w.entities = kept
	return goals
}

func (w *World) goalFor(b *models.Ball, cy float64) (Side, bool) {
	c := b.Center()
	if c.Y <= cy-w.cfg.GoalHalfWidth || c.Y >= cy+w.cfg.GoalHalfWidth {
		return "", false
	}
	switch {
	case c.X < w.cfg.GoalMargin+b.Radius():
		return SideLeft, true
	case c.X > w.cfg.Width-w.cfg.GoalMargin-b.Radius():
		return SideRight, true
	}
	return "", false
}

func (w *World) publish() {
	w.frame.Store(models.BuildFrame(w.tick, w.scoreLeft, w.scoreRight, w.entities))
}

// DefaultSpawnMargin is the gap ScatterBalls keeps from the walls.
const DefaultSpawnMargin = 10

// ScatterBalls adds n balls at uniform positions at least margin units
// away from the walls.
func (w *World) ScatterBalls(n int, margin float64, src random.Source, opts ...models.BallOption) []*models.Ball {
	balls := make([]*models.Ball, 0, n)
	for i := 0; i < n; i++ {
		center := physics.NewVector2(
			random.Uniform(src, margin, w.cfg.Width-margin),
			random.Uniform(src, margin, w.cfg.Height-margin),
		)
		b := models.NewBall(center, opts...)
		w.Add(b)
		balls = append(balls, b)
	}
	return balls
}
