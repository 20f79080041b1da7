package app

import (
	"github.com/google/wire"

	"github.com/zeusync/robofield/internal/config"
	"github.com/zeusync/robofield/internal/core/events/bus"
	"github.com/zeusync/robofield/internal/core/models"
	"github.com/zeusync/robofield/internal/core/observability/log"
	"github.com/zeusync/robofield/internal/core/protocol"
	"github.com/zeusync/robofield/internal/core/random"
	"github.com/zeusync/robofield/internal/core/world"
	"github.com/zeusync/robofield/internal/server"
	"github.com/zeusync/robofield/internal/telemetry"
)

// ProviderSet builds an App from a *config.Config.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideEventBus,
	ProvideWorld,
	ProvideRobots,
	ProvideSpectator,
	ProvideHTTPServer,
	ProvideOutput,
	ProvideRecorder,
	ProvideDriver,
	NewApp,
)

// Seed streams derived from simulation.seed.
const (
	streamCoin uint64 = iota
	streamBalls
	streamRobots
)

func stream(seed, id uint64) uint64 {
	return seed*1000 + id
}

func ProvideLogger(cfg *config.Config) (log.Log, error) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return log.New(level), nil
}

func ProvideEventBus() bus.EventBus {
	return bus.New()
}

// ProvideWorld creates the field and scatters the balls. Balls are
// registered before any robot.
func ProvideWorld(cfg *config.Config, events bus.EventBus, logger log.Log) *world.World {
	seed := cfg.Simulation.Seed
	w := world.New(cfg.Field,
		world.WithCoin(random.NewLocked(stream(seed, streamCoin))),
		world.WithEventBus(events),
		world.WithLogger(logger),
	)
	w.ScatterBalls(cfg.Ball.Count, cfg.Ball.SpawnMargin, random.New(stream(seed, streamBalls)),
		models.WithBallRadius(cfg.Ball.Radius),
		models.WithFriction(cfg.Ball.Friction),
	)
	return w
}

// ProvideRobots places every configured robot, registers it with the world
// and gives it a listener.
func ProvideRobots(cfg *config.Config, w *world.World, events bus.EventBus, logger log.Log) ([]*RobotUnit, error) {
	seed := cfg.Simulation.Seed
	units := make([]*RobotUnit, 0, len(cfg.Robots))

	for i, rc := range cfg.Robots {
		placement, err := cfg.Place(rc)
		if err != nil {
			return nil, err
		}

		base := stream(seed, streamRobots+2*uint64(i))
		robot := models.NewRobot(rc.Name, placement.Profile, placement.Pose, placement.References,
			random.NewLocked(base))
		w.Add(robot)

		handler := protocol.NewHandler(robot, random.NewLocked(base+1), logger)
		srv := server.NewRobotServer(server.Config{
			Name:             rc.Name,
			ListenAddr:       cfg.Addr(rc),
			AcceptRetryDelay: cfg.Server.AcceptRetryDelay,
			MaxLineLength:    cfg.Server.MaxLineLength,
		}, handler, logger, server.WithEvents(events))

		units = append(units, &RobotUnit{Config: rc, Robot: robot, Server: srv})
	}
	return units, nil
}

func ProvideSpectator(w *world.World, logger log.Log) *server.Spectator {
	return server.NewSpectator(w, logger)
}

// ProvideHTTPServer returns nil when the spectator feed is disabled.
func ProvideHTTPServer(cfg *config.Config, w *world.World, spectator *server.Spectator, logger log.Log) *server.HTTPServer {
	if cfg.Server.SpectatorAddr == "" {
		return nil
	}
	return server.NewHTTPServer(cfg.Server.SpectatorAddr, w, spectator, logger)
}

// ProvideOutput opens the telemetry directory and snapshots the config
// into it. Returns nil when telemetry is disabled.
func ProvideOutput(cfg *config.Config) (*telemetry.OutputManager, error) {
	if !cfg.Telemetry.Enabled {
		return nil, nil
	}
	out, err := telemetry.NewOutputManager(cfg.Telemetry.Dir)
	if err != nil {
		return nil, err
	}
	if err := out.WriteConfig(cfg); err != nil {
		_ = out.Close()
		return nil, err
	}
	return out, nil
}

// ProvideRecorder returns nil when telemetry is disabled.
func ProvideRecorder(cfg *config.Config, out *telemetry.OutputManager, logger log.Log) *telemetry.Recorder {
	if !cfg.Telemetry.Enabled {
		return nil
	}
	return telemetry.NewRecorder(out, logger, telemetry.DefaultBuffer)
}

func ProvideDriver(
	cfg *config.Config,
	w *world.World,
	spectator *server.Spectator,
	recorder *telemetry.Recorder,
	logger log.Log,
) *Driver {
	return NewDriver(w, DriverConfig{
		Tick:          cfg.Simulation.Tick,
		FrameInterval: cfg.Simulation.FrameInterval,
		StatsInterval: cfg.Telemetry.StatsInterval,
		MaxTicks:      cfg.Simulation.MaxTicks,
	}, logger, WithFrameSink(spectator), WithRecorder(recorder))
}
