package telemetry

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/zeusync/robofield/internal/core/events/bus"
	"github.com/zeusync/robofield/internal/core/models"
	"github.com/zeusync/robofield/internal/core/observability/log"
	"github.com/zeusync/robofield/internal/core/world"
)

const DefaultBuffer = 256

type record struct {
	goal  *world.GoalEvent
	stats *StatsRecord
}

// Recorder moves goal events and periodic stats off the simulation
// goroutine and into the output files. Submissions never block; when the
// buffer is full the record is dropped and counted.
type Recorder struct {
	out     *OutputManager
	logger  log.Log
	records chan record

	dropped atomic.Uint64
	written atomic.Uint64
}

func NewRecorder(out *OutputManager, logger log.Log, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Recorder{
		out:     out,
		logger:  logger.With(log.String("component", "telemetry")),
		records: make(chan record, buffer),
	}
}

// Subscribe forwards goal events from the bus to the recorder.
func (r *Recorder) Subscribe(events bus.EventBus) (bus.Subscription, error) {
	return events.Subscribe(bus.EventGoalScored, func(ev bus.Event) error {
		goal, ok := ev.Data().(world.GoalEvent)
		if !ok {
			return fmt.Errorf("telemetry: unexpected %s payload %T", ev.Type(), ev.Data())
		}
		r.RecordGoal(goal)
		return nil
	})
}

func (r *Recorder) RecordGoal(ev world.GoalEvent) {
	r.submit(record{goal: &ev})
}

// RecordFrame queues a stats row summarising the frame.
func (r *Recorder) RecordFrame(f *models.Frame, digest uint64) {
	if f == nil {
		return
	}
	r.submit(record{stats: &StatsRecord{
		Tick:       f.Tick,
		ScoreLeft:  f.ScoreLeft,
		ScoreRight: f.ScoreRight,
		Balls:      len(f.Balls),
		HeldBalls:  f.HeldCount(),
		Digest:     fmt.Sprintf("%016x", digest),
	}})
}

func (r *Recorder) submit(rec record) {
	select {
	case r.records <- rec:
	default:
		r.dropped.Add(1)
	}
}

// Run writes records until ctx is cancelled, then drains what is already
// queued and closes the output.
func (r *Recorder) Run(ctx context.Context) error {
	r.logger.Info("Telemetry recorder started", log.String("dir", r.out.Dir()))
	defer func() {
		if err := r.out.Close(); err != nil {
			r.logger.Error("Failed to close telemetry output", log.Error(err))
		}
		r.logger.Info("Telemetry recorder stopped",
			log.Uint64("written", r.written.Load()),
			log.Uint64("dropped", r.dropped.Load()),
		)
	}()

	for {
		select {
		case rec := <-r.records:
			r.write(rec)
		case <-ctx.Done():
			for {
				select {
				case rec := <-r.records:
					r.write(rec)
				default:
					return nil
				}
			}
		}
	}
}

func (r *Recorder) write(rec record) {
	var err error
	switch {
	case rec.goal != nil:
		err = r.out.WriteGoal(*rec.goal)
	case rec.stats != nil:
		err = r.out.WriteStats(*rec.stats)
	}
	if err != nil {
		r.logger.Warn("Failed to write telemetry", log.Error(err))
		return
	}
	r.written.Add(1)
}

// Written counts records persisted so far.
func (r *Recorder) Written() uint64 { return r.written.Load() }

// Dropped counts records lost to a full buffer.
func (r *Recorder) Dropped() uint64 { return r.dropped.Load() }
