// Package app assembles the simulator: the world, one TCP listener per
// robot, the spectator feed and the telemetry recorder, all supervised as
// one unit.
package app

import (
	"context"
	"errors"

	"github.com/zeusync/robofield/internal/config"
	"github.com/zeusync/robofield/internal/core/events/bus"
	"github.com/zeusync/robofield/internal/core/models"
	"github.com/zeusync/robofield/internal/core/observability/log"
	"github.com/zeusync/robofield/internal/core/world"
	"github.com/zeusync/robofield/internal/server"
	"github.com/zeusync/robofield/internal/telemetry"
	"github.com/zeusync/robofield/pkg/concurrent"
)

// RobotUnit is a robot together with the listener that drives it.
type RobotUnit struct {
	Config config.RobotConfig
	Robot  *models.Robot
	Server *server.RobotServer
}

type App struct {
	config    *config.Config
	logger    log.Log
	events    bus.EventBus
	world     *world.World
	robots    []*RobotUnit
	driver    *Driver
	spectator *server.Spectator
	http      *server.HTTPServer
	recorder  *telemetry.Recorder
}

func NewApp(
	cfg *config.Config,
	logger log.Log,
	events bus.EventBus,
	w *world.World,
	robots []*RobotUnit,
	driver *Driver,
	spectator *server.Spectator,
	httpServer *server.HTTPServer,
	recorder *telemetry.Recorder,
) *App {
	return &App{
		config:    cfg,
		logger:    logger.With(log.String("component", "app")),
		events:    events,
		world:     w,
		robots:    robots,
		driver:    driver,
		spectator: spectator,
		http:      httpServer,
		recorder:  recorder,
	}
}

// Run serves until ctx is cancelled, the tick limit is reached or a
// component fails.
func (a *App) Run(ctx context.Context) error {
	tasks := []concurrent.Task{
		supervised("driver", a.driver.Run),
	}
	for _, unit := range a.robots {
		tasks = append(tasks, supervised("robot "+unit.Config.Name, unit.Server.Serve))
	}
	if a.http != nil {
		tasks = append(tasks, supervised("spectator", a.http.Serve))
	}
	if a.recorder != nil {
		sub, err := a.recorder.Subscribe(a.events)
		if err != nil {
			return err
		}
		defer func() { _ = a.events.Unsubscribe(sub) }()
		tasks = append(tasks, supervised("telemetry", a.recorder.Run))
	}

	a.logger.Info("Simulator starting",
		log.Int("robots", len(a.robots)),
		log.Int("balls", len(a.world.Balls())),
		log.Uint64("seed", a.config.Simulation.Seed),
	)

	err := concurrent.Supervise(ctx, tasks...)
	if errors.Is(err, ErrSimulationComplete) {
		err = nil
	}

	left, right := a.world.Score()
	a.logger.Info("Simulator stopped",
		log.Uint64("tick", a.world.Tick()),
		log.Int("score_left", left),
		log.Int("score_right", right),
	)
	return err
}

// supervised names a component task and turns its panics into errors, so a
// crashing component stops the run instead of the process.
func supervised(name string, task concurrent.Task) concurrent.Task {
	return concurrent.Named(name, concurrent.Recover(task))
}

func (a *App) World() *world.World           { return a.world }
func (a *App) Robots() []*RobotUnit          { return a.robots }
func (a *App) Driver() *Driver               { return a.driver }
func (a *App) Events() bus.EventBus          { return a.events }
func (a *App) Spectator() *server.Spectator  { return a.spectator }
func (a *App) HTTP() *server.HTTPServer      { return a.http }
func (a *App) Recorder() *telemetry.Recorder { return a.recorder }
func (a *App) Config() *config.Config        { return a.config }
