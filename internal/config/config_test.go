package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/robofield/internal/core/models"
	"github.com/zeusync/robofield/internal/core/world"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, world.DefaultConfig(), cfg.Field)
	assert.Equal(t, 11, cfg.Ball.Count)
	assert.InDelta(t, 4.3, cfg.Ball.Radius, 1e-12)
	assert.Equal(t, time.Millisecond, cfg.Simulation.Tick)
	assert.Equal(t, 40*time.Millisecond, cfg.Simulation.FrameInterval)
	assert.Equal(t, 100*time.Millisecond, cfg.Server.AcceptRetryDelay)

	require.Len(t, cfg.Robots, 2)
	assert.Equal(t, "Robot A", cfg.Robots[0].Name)
	assert.Equal(t, 5000, cfg.Robots[0].Port)
	assert.Equal(t, world.SideLeft, cfg.Robots[0].Side)
	assert.Equal(t, 5001, cfg.Robots[1].Port)
	assert.Equal(t, "127.0.0.1:5001", cfg.Addr(cfg.Robots[1]))
}

func TestLoad_Overlay(t *testing.T) {
	path := writeConfig(t, `
simulation:
  seed: 99
ball:
  count: 3
profiles:
  fast:
    base: spirit
    shoot_speed: 2.5
robots:
  - name: Solo
    port: 6000
    profile: fast
    side: right
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(99), cfg.Simulation.Seed)
	assert.Equal(t, 3, cfg.Ball.Count)
	assert.InDelta(t, 4.3, cfg.Ball.Radius, 1e-12, "untouched keys keep defaults")
	assert.Equal(t, time.Millisecond, cfg.Simulation.Tick)

	require.Len(t, cfg.Robots, 1, "robots are replaced, not merged")
	p, err := cfg.Profile("fast")
	require.NoError(t, err)
	assert.Equal(t, "fast", p.Name)
	assert.InDelta(t, 2.5, p.ShootSpeed, 1e-12)
	assert.True(t, p.CaptureOnContact, "inherited from spirit")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "field: [unclosed"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"zero width", func(c *Config) { c.Field.Width = 0 }},
		{"goal wider than field", func(c *Config) { c.Field.GoalHalfWidth = 300 }},
		{"negative balls", func(c *Config) { c.Ball.Count = -1 }},
		{"zero radius", func(c *Config) { c.Ball.Radius = 0 }},
		{"zero tick", func(c *Config) { c.Simulation.Tick = 0 }},
		{"no robots", func(c *Config) { c.Robots = nil }},
		{"duplicate name", func(c *Config) { c.Robots[1].Name = c.Robots[0].Name }},
		{"duplicate port", func(c *Config) { c.Robots[1].Port = c.Robots[0].Port }},
		{"port out of range", func(c *Config) { c.Robots[0].Port = 70000 }},
		{"bad side", func(c *Config) { c.Robots[0].Side = "middle" }},
		{"unknown profile", func(c *Config) { c.Robots[0].Profile = "hovercraft" }},
		{"telemetry without dir", func(c *Config) { c.Telemetry.Dir = "" }},
		{"self based profile", func(c *Config) {
			c.Profiles = map[string]ProfileConfig{"loop": {Base: "loop"}}
			c.Robots[0].Profile = "loop"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}

	t.Run("ephemeral ports may repeat", func(t *testing.T) {
		cfg := Default()
		cfg.Robots[0].Port = 0
		cfg.Robots[1].Port = 0
		assert.NoError(t, cfg.Validate())
	})
}

func TestProfile_Builtin(t *testing.T) {
	cfg := Default()

	p, err := cfg.Profile(models.ProfileTelliskivi)
	require.NoError(t, err)
	assert.Equal(t, models.BeaconOffsets, p.BeaconMode)

	_, err = cfg.Profile("nope")
	assert.ErrorIs(t, err, models.ErrUnknownProfile)
}

func TestPlace(t *testing.T) {
	cfg := Default()

	a, err := cfg.Place(cfg.Robots[0])
	require.NoError(t, err)
	assert.InDelta(t, 12+22, a.Pose.Center.X, 1e-9)
	assert.InDelta(t, 12+17, a.Pose.Center.Y, 1e-9)
	assert.InDelta(t, math.Pi/2, a.Pose.Heading, 1e-12)
	assert.InDelta(t, 950, a.References.Beacon.X, 1e-9)
	assert.InDelta(t, 900, a.References.Goal.X, 1e-9)
	assert.InDelta(t, 300, a.References.Goal.Y, 1e-9)

	b, err := cfg.Place(cfg.Robots[1])
	require.NoError(t, err)
	assert.InDelta(t, 900-12-22, b.Pose.Center.X, 1e-9)
	assert.InDelta(t, 600-12-17, b.Pose.Center.Y, 1e-9)
	assert.InDelta(t, -50, b.References.Beacon.X, 1e-9)
	assert.InDelta(t, 900, b.References.OwnBeacon.X, 1e-9)
	assert.InDelta(t, 0, b.References.Goal.X, 1e-9)

	cfg.Robots[0].Profile = models.ProfileTelliskivi
	round, err := cfg.Place(cfg.Robots[0])
	require.NoError(t, err)
	assert.InDelta(t, 12+26, round.Pose.Center.X, 1e-9)
	assert.InDelta(t, 12+26, round.Pose.Center.Y, 1e-9)
}
