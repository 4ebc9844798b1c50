package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.Assets.MaxConcurrentLoads)
	assert.Equal(t, "builtin:tree", cfg.Assets.Table["tree"])
}

func TestLoadTOMLOverDefaults(t *testing.T) {
	path := writeFile(t, "planner.toml", `
layout = "garden.json"

[world]
width = 30
depth = 12
ground = "gravel"

[assets]
root = "models"
max_concurrent_loads = 5

[assets.table]
oak = "trees/oak.glb"

[log]
level = "debug"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "garden.json", cfg.Layout)
	assert.Equal(t, 30.0, cfg.World.Width)
	assert.Equal(t, 12.0, cfg.World.Depth)
	assert.Equal(t, 800.0, cfg.World.CanvasWidth, "absent keys keep defaults")
	assert.Equal(t, "gravel", cfg.World.Ground)
	assert.Equal(t, "models", cfg.Assets.Root)
	assert.Equal(t, 5, cfg.Assets.MaxConcurrentLoads)
	assert.Equal(t, map[string]string{"oak": "trees/oak.glb"}, cfg.Assets.Table)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 1280, cfg.Window.Width)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "planner.toml", "[world]\nwidht = 30\n")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEnvFileAndProcessEnv(t *testing.T) {
	env := writeFile(t, ".env", "LANDSCAPE_ASSET_ROOT=/srv/assets\nLANDSCAPE_MAX_CONCURRENT_LOADS=7\nLANDSCAPE_LOG_LEVEL=warn\n")
	t.Setenv(EnvLogLevel, "error")

	cfg, err := Load("", env, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "/srv/assets", cfg.Assets.Root)
	assert.Equal(t, 7, cfg.Assets.MaxConcurrentLoads)
	assert.Equal(t, "error", cfg.Log.Level, "process environment wins over env files")
}

func TestEnvBadInteger(t *testing.T) {
	t.Setenv(EnvMaxConcurrentLoads, "many")
	_, err := Load("")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := Default()
	cfg.World.Width = 0
	cfg.Assets.MaxConcurrentLoads = 0
	cfg.World.Background = "blue"

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "world size")
	assert.Contains(t, err.Error(), "max_concurrent_loads")
	assert.Contains(t, err.Error(), "world.background")
}

func TestBackgroundColor(t *testing.T) {
	c, err := World{Background: "#ff0000"}.BackgroundColor()
	require.NoError(t, err)
	assert.Equal(t, float32(1), c.R)
	assert.Equal(t, float32(0), c.G)
}
