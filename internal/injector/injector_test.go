package injector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/robofield/internal/config"
	"github.com/zeusync/robofield/internal/core/observability/log"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Log.Level = "error"
	cfg.Server.SpectatorAddr = ""
	cfg.Telemetry.Enabled = false
	for i := range cfg.Robots {
		cfg.Robots[i].Port = 0
	}
	return cfg
}

func TestInitializeApp(t *testing.T) {
	a, err := InitializeApp(testConfig())
	require.NoError(t, err)

	assert.Len(t, a.Robots(), 2)
	assert.Len(t, a.World().Balls(), 11)
	assert.Nil(t, a.HTTP())
	assert.Nil(t, a.Recorder())
}

func TestInitializeAppWithLogger(t *testing.T) {
	cfg := testConfig()
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.Dir = t.TempDir()

	a, err := InitializeAppWithLogger(cfg, log.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, a.Recorder())
	assert.Equal(t, "Robot A", a.Robots()[0].Robot.Name())
}

func TestInitializeApp_BadLevel(t *testing.T) {
	cfg := testConfig()
	cfg.Log.Level = "shout"

	_, err := InitializeApp(cfg)
	assert.Error(t, err)
}
