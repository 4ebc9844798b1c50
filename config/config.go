// Package config loads planner settings from a TOML file with overrides from
// .env files and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"landscape-engine/core"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Environment overrides.
const (
	EnvAssetRoot          = "LANDSCAPE_ASSET_ROOT"
	EnvLogLevel           = "LANDSCAPE_LOG_LEVEL"
	EnvMaxConcurrentLoads = "LANDSCAPE_MAX_CONCURRENT_LOADS"
	EnvLayout             = "LANDSCAPE_LAYOUT"
)

type Config struct {
	Window Window `toml:"window"`
	World  World  `toml:"world"`
	Assets Assets `toml:"assets"`
	Camera Camera `toml:"camera"`
	Log    Log    `toml:"log"`
	// Layout is the JSON layout file the planner shows and watches.
	Layout string `toml:"layout"`
}

type Window struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
}

// World sizes the planning surface and the ground it maps to.
type World struct {
	CanvasWidth float64 `toml:"canvas_width"`
	Width       float64 `toml:"width"` // metres
	Depth       float64 `toml:"depth"` // metres
	Background  string  `toml:"background"`
	Ground      string  `toml:"ground"`
	ShowGrid    bool    `toml:"show_grid"`
}

// BackgroundColor parses the hex background colour.
func (w World) BackgroundColor() (core.Color, error) {
	return core.ParseHexColor(w.Background)
}

type Assets struct {
	Root               string            `toml:"root"`
	MaxConcurrentLoads int               `toml:"max_concurrent_loads"`
	TargetSize         float32           `toml:"target_size"`
	Table              map[string]string `toml:"table"`
}

type Camera struct {
	FOV       float32 `toml:"fov"` // degrees
	Radius    float32 `toml:"radius"`
	MinRadius float32 `toml:"min_radius"`
	MaxRadius float32 `toml:"max_radius"`
	PanSpeed  float32 `toml:"pan_speed"`
}

type Log struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
	// Output is a file path; empty logs to stderr.
	Output string `toml:"output"`
}

// Default returns a configuration that runs the planner against the builtin
// placeholder assets.
func Default() Config {
	return Config{
		Window: Window{Width: 1280, Height: 720, Title: "Landscape Planner", VSync: true},
		World: World{
			CanvasWidth: 800,
			Width:       20,
			Depth:       10,
			Background:  "#87b8e6",
			Ground:      "grass",
			ShowGrid:    true,
		},
		Assets: Assets{
			MaxConcurrentLoads: 3,
			TargetSize:         1,
			Table: map[string]string{
				"tree":    "builtin:tree",
				"shrub":   "builtin:sphere",
				"conifer": "builtin:cone",
				"hedge":   "builtin:hedge",
				"paver":   "builtin:paver",
				"box":     "builtin:cube",
			},
		},
		Camera: Camera{FOV: 50, Radius: 20, MinRadius: 2, MaxRadius: 200, PanSpeed: 8},
		Log:    Log{Level: "info"},
		Layout: "layout.json",
	}
}

// Load builds the configuration from Default, the TOML file at path (skipped
// when empty) and then the environment. Values in envFiles apply unless the
// process environment already sets the same key. Missing env files are
// ignored.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	env, err := readEnv(envFiles)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(env); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	// absent keys keep their defaults; a table in the file replaces the
	// default asset table instead of merging with it
	defaults := cfg.Assets.Table
	cfg.Assets.Table = nil

	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		return fmt.Errorf("parse config %q: %w", path, err)
	}
	if cfg.Assets.Table == nil {
		cfg.Assets.Table = defaults
	}
	return nil
}

// readEnv merges envFiles with the process environment, which wins.
func readEnv(files []string) (map[string]string, error) {
	env := map[string]string{}
	for _, file := range files {
		vals, err := godotenv.Read(file)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read env file %q: %w", file, err)
		}
		for k, v := range vals {
			env[k] = v
		}
	}
	for _, k := range []string{EnvAssetRoot, EnvLogLevel, EnvMaxConcurrentLoads, EnvLayout} {
		if v, ok := os.LookupEnv(k); ok {
			env[k] = v
		}
	}
	return env, nil
}

func (c *Config) applyEnv(env map[string]string) error {
	if v, ok := env[EnvAssetRoot]; ok {
		c.Assets.Root = v
	}
	if v, ok := env[EnvLogLevel]; ok {
		c.Log.Level = v
	}
	if v, ok := env[EnvLayout]; ok {
		c.Layout = v
	}
	if v, ok := env[EnvMaxConcurrentLoads]; ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalid, EnvMaxConcurrentLoads, v)
		}
		c.Assets.MaxConcurrentLoads = n
	}
	return nil
}

// Validate reports every out-of-range value at once.
func (c Config) Validate() error {
	var problems []string
	check := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	check(c.Window.Width > 0 && c.Window.Height > 0, "window size must be positive")
	check(c.World.CanvasWidth > 0, "world.canvas_width must be positive")
	check(c.World.Width > 0 && c.World.Depth > 0, "world size must be positive")
	if _, err := c.World.BackgroundColor(); err != nil {
		problems = append(problems, "world.background: "+err.Error())
	}
	check(c.Assets.MaxConcurrentLoads > 0, "assets.max_concurrent_loads must be positive")
	check(c.Assets.TargetSize > 0, "assets.target_size must be positive")
	check(c.Camera.FOV > 0 && c.Camera.FOV < 180, "camera.fov must be between 0 and 180 degrees")
	check(c.Camera.MinRadius > 0 && c.Camera.MaxRadius > c.Camera.MinRadius,
		"camera radius limits must satisfy 0 < min_radius < max_radius")

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}
