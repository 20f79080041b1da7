// Package config loads the simulator configuration: embedded defaults
// overlaid by an optional YAML file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/robofield/internal/core/models"
	"github.com/zeusync/robofield/internal/core/observability/log"
	"github.com/zeusync/robofield/internal/core/world"
)

//go:embed defaults.yaml
var defaultsYAML []byte

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all simulator settings.
type Config struct {
	Log        LogConfig                `yaml:"log"`
	Field      world.Config             `yaml:"field"`
	Ball       BallConfig               `yaml:"ball"`
	Simulation SimulationConfig         `yaml:"simulation"`
	Server     ServerConfig             `yaml:"server"`
	Telemetry  TelemetryConfig          `yaml:"telemetry"`
	Profiles   map[string]ProfileConfig `yaml:"profiles"`
	Robots     []RobotConfig            `yaml:"robots"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type BallConfig struct {
	Count    int     `yaml:"count"`
	Radius   float64 `yaml:"radius"`
	Friction float64 `yaml:"friction"` // speed lost per tick
	// SpawnMargin keeps scattered balls away from the walls.
	SpawnMargin float64 `yaml:"spawn_margin"`
}

type SimulationConfig struct {
	Tick          time.Duration `yaml:"tick"`
	FrameInterval time.Duration `yaml:"frame_interval"` // spectator render interval
	Seed          uint64        `yaml:"seed"`
	MaxTicks      uint64        `yaml:"max_ticks"` // 0 runs until cancelled
}

type ServerConfig struct {
	Host             string        `yaml:"host"`
	SpectatorAddr    string        `yaml:"spectator_addr"` // empty disables the feed
	AcceptRetryDelay time.Duration `yaml:"accept_retry_delay"`
	MaxLineLength    int           `yaml:"max_line_length"`
}

type TelemetryConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Dir           string        `yaml:"dir"`
	StatsInterval time.Duration `yaml:"stats_interval"`
}

// ProfileConfig derives a named profile from a builtin one. Unset fields
// keep the base value.
type ProfileConfig struct {
	Base             string   `yaml:"base"`
	HalfTrack        *float64 `yaml:"half_track"`
	WheelScale       *float64 `yaml:"wheel_scale"`
	CameraDepth      *float64 `yaml:"camera_depth"`
	CameraHalfWidth  *float64 `yaml:"camera_half_width"`
	CameraMiss       *string  `yaml:"camera_miss"`
	BeaconThreshold  *float64 `yaml:"beacon_threshold"`
	ShootSpeed       *float64 `yaml:"shoot_speed"`
	CaptureOnContact *bool    `yaml:"capture_on_contact"`
}

type RobotConfig struct {
	Name    string     `yaml:"name"`
	Port    int        `yaml:"port"`
	Profile string     `yaml:"profile"`
	Side    world.Side `yaml:"side"`
}

// Load reads the embedded defaults and, when path is non-empty, overlays
// the file on top. Sequences such as robots are replaced, not merged.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks every section and reports the first problem found.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level: %v", err)
	}

	f := c.Field
	switch {
	case f.Width <= 0 || f.Height <= 0:
		return invalid("field size must be positive, got %gx%g", f.Width, f.Height)
	case f.GoalHalfWidth <= 0 || f.GoalHalfWidth >= f.Height/2:
		return invalid("field.goal_half_width must be in (0, %g)", f.Height/2)
	case f.GoalMargin < 0:
		return invalid("field.goal_margin must not be negative")
	}

	b := c.Ball
	switch {
	case b.Count < 0:
		return invalid("ball.count must not be negative")
	case b.Radius <= 0:
		return invalid("ball.radius must be positive")
	case b.Friction < 0:
		return invalid("ball.friction must not be negative")
	case b.SpawnMargin < 0 || 2*b.SpawnMargin >= f.Width || 2*b.SpawnMargin >= f.Height:
		return invalid("ball.spawn_margin does not fit the field")
	}

	if c.Simulation.Tick <= 0 {
		return invalid("simulation.tick must be positive")
	}
	if c.Simulation.FrameInterval <= 0 {
		return invalid("simulation.frame_interval must be positive")
	}
	if c.Server.MaxLineLength < 0 {
		return invalid("server.max_line_length must not be negative")
	}
	if c.Telemetry.Enabled && c.Telemetry.Dir == "" {
		return invalid("telemetry.dir is required when telemetry is enabled")
	}

	if len(c.Robots) == 0 {
		return invalid("at least one robot is required")
	}
	names := make(map[string]struct{}, len(c.Robots))
	ports := make(map[int]struct{}, len(c.Robots))
	for i, r := range c.Robots {
		if r.Name == "" {
			return invalid("robots[%d].name is required", i)
		}
		if _, dup := names[r.Name]; dup {
			return invalid("duplicate robot name %q", r.Name)
		}
		names[r.Name] = struct{}{}

		if r.Port < 0 || r.Port > 65535 {
			return invalid("robots[%d].port %d out of range", i, r.Port)
		}
		// Port 0 binds an ephemeral port and may repeat.
		if r.Port != 0 {
			if _, dup := ports[r.Port]; dup {
				return invalid("duplicate robot port %d", r.Port)
			}
			ports[r.Port] = struct{}{}
		}

		if r.Side != world.SideLeft && r.Side != world.SideRight {
			return invalid("robots[%d].side must be %q or %q", i, world.SideLeft, world.SideRight)
		}
		p, err := c.Profile(r.Profile)
		if err != nil {
			return invalid("robots[%d]: %v", i, err)
		}
		if err := p.Validate(); err != nil {
			return invalid("robots[%d]: %v", i, err)
		}
	}
	return nil
}

// Profile resolves a name against the configured profiles first and the
// builtin ones second.
func (c *Config) Profile(name string) (models.Profile, error) {
	pc, ok := c.Profiles[name]
	if !ok {
		return models.BuiltinProfile(name)
	}
	if pc.Base == name {
		return models.Profile{}, fmt.Errorf("profile %q cannot be based on itself", name)
	}

	p, err := models.BuiltinProfile(pc.Base)
	if err != nil {
		return models.Profile{}, fmt.Errorf("profile %q: %w", name, err)
	}
	p.Name = name
	setIf(&p.HalfTrack, pc.HalfTrack)
	setIf(&p.WheelScale, pc.WheelScale)
	setIf(&p.CameraDepth, pc.CameraDepth)
	setIf(&p.CameraHalfWidth, pc.CameraHalfWidth)
	setIf(&p.CameraMiss, pc.CameraMiss)
	setIf(&p.BeaconThreshold, pc.BeaconThreshold)
	setIf(&p.ShootSpeed, pc.ShootSpeed)
	setIf(&p.CaptureOnContact, pc.CaptureOnContact)
	return p, nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Addr is the TCP listen address of a robot.
func (c *Config) Addr(r RobotConfig) string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(r.Port))
}
