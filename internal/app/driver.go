package app

import (
	"context"
	"errors"
	"time"

	"github.com/zeusync/robofield/internal/core/models"
	"github.com/zeusync/robofield/internal/core/observability/log"
	"github.com/zeusync/robofield/internal/core/world"
	"github.com/zeusync/robofield/internal/telemetry"
)

// ErrSimulationComplete is returned by Driver.Run once the tick limit is
// reached.
var ErrSimulationComplete = errors.New("simulation reached its tick limit")

// FrameSink receives published frames. Broadcast must not block.
type FrameSink interface {
	Broadcast(frame *models.Frame)
}

type DriverConfig struct {
	Tick          time.Duration
	FrameInterval time.Duration
	StatsInterval time.Duration // 0 disables stats rows
	MaxTicks      uint64        // 0 runs until cancelled
}

// Driver owns the simulation goroutine: it advances the world on a fixed
// tick and hands frames to sinks without ever waiting on them.
type Driver struct {
	world    *world.World
	config   DriverConfig
	sinks    []FrameSink
	recorder *telemetry.Recorder
	logger   log.Log

	framesEvery uint64
	statsEvery  uint64
}

type DriverOption func(*Driver)

func WithFrameSink(sink FrameSink) DriverOption {
	return func(d *Driver) {
		if sink != nil {
			d.sinks = append(d.sinks, sink)
		}
	}
}

func WithRecorder(r *telemetry.Recorder) DriverOption {
	return func(d *Driver) { d.recorder = r }
}

func NewDriver(w *world.World, config DriverConfig, logger log.Log, opts ...DriverOption) *Driver {
	if config.Tick <= 0 {
		config.Tick = time.Millisecond
	}
	if logger == nil {
		logger = log.NewNop()
	}
	d := &Driver{
		world:       w,
		config:      config,
		logger:      logger.With(log.String("component", "driver")),
		framesEvery: ticksPer(config.FrameInterval, config.Tick),
		statsEvery:  ticksPer(config.StatsInterval, config.Tick),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ticksPer converts an interval into a whole number of ticks, at least one.
// A non-positive interval yields zero.
func ticksPer(interval, tick time.Duration) uint64 {
	if interval <= 0 {
		return 0
	}
	n := uint64(interval / tick)
	if n == 0 {
		n = 1
	}
	return n
}

// Run ticks until ctx is cancelled or the tick limit is reached.
func (d *Driver) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.config.Tick)
	defer ticker.Stop()

	d.logger.Info("Simulation started",
		log.Duration("tick", d.config.Tick),
		log.Uint64("max_ticks", d.config.MaxTicks),
	)

	for {
		select {
		case <-ctx.Done():
			d.logStopped("Simulation stopped")
			return nil
		case <-ticker.C:
			d.step()
			if d.config.MaxTicks > 0 && d.world.Tick() >= d.config.MaxTicks {
				d.logStopped("Simulation complete")
				return ErrSimulationComplete
			}
		}
	}
}

// Advance runs n ticks immediately, with the same hand-offs as Run.
func (d *Driver) Advance(n int) {
	for i := 0; i < n; i++ {
		d.step()
	}
}

func (d *Driver) step() {
	d.world.Simulate()
	tick := d.world.Tick()

	emitFrame := d.framesEvery > 0 && tick%d.framesEvery == 0
	emitStats := d.recorder != nil && d.statsEvery > 0 && tick%d.statsEvery == 0
	if !emitFrame && !emitStats {
		return
	}

	frame := d.world.Frame()
	if emitFrame {
		for _, sink := range d.sinks {
			sink.Broadcast(frame)
		}
	}
	if emitStats {
		d.recorder.RecordFrame(frame, world.FrameDigest(frame))
	}
}

func (d *Driver) logStopped(msg string) {
	left, right := d.world.Score()
	d.logger.Info(msg,
		log.Uint64("tick", d.world.Tick()),
		log.Int("score_left", left),
		log.Int("score_right", right),
	)
}
