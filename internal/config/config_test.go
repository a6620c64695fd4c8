package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadTOML(t *testing.T) {
	path := write(t, "sectord.toml", `
[simulation]
tick_rate = "50ms"
speed_scale = 2.5

[feed]
enabled = true
bind_address = "0.0.0.0:9000"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, cfg.Simulation.TickRate)
	assert.Equal(t, 2.5, cfg.Simulation.SpeedScale)
	assert.Equal(t, 256, cfg.Simulation.MaskWidth, "defaults survive")
	assert.True(t, cfg.Feed.Enabled)
	assert.Equal(t, "0.0.0.0:9000", cfg.Feed.BindAddress)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadYAML(t *testing.T) {
	path := write(t, "sectord.yaml", `
simulation:
  tick_rate: 1s
  mask_width: 128
logging:
  level: debug
  format: json
database:
  enabled: true
  dsn: postgres://localhost/test
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.Simulation.TickRate)
	assert.Equal(t, 128, cfg.Simulation.MaskWidth)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, int32(4), cfg.Database.MaxConns)
}

func TestLoadRejects(t *testing.T) {
	_, err := Load(write(t, "sectord.ini", "x=1"))
	assert.ErrorContains(t, err, "unsupported extension")

	_, err = Load(write(t, "bad.yaml", "simulation:\n  unknown_key: 1\n"))
	assert.Error(t, err)

	_, err = Load(write(t, "zero.toml", "[simulation]\nmask_width = 0\nspeed_scale = -1\n"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "mask_width")
	assert.ErrorContains(t, err, "speed_scale")

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestShippedExample(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "sectord.toml"))
	require.NoError(t, err)
	assert.True(t, cfg.Feed.Enabled)
	assert.Equal(t, 10, cfg.Feed.Every)
	assert.Equal(t, "configs/templates.yaml", cfg.Simulation.Templates)
	assert.False(t, cfg.Database.Enabled)
}
