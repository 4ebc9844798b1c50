// Command planner opens a layout file in an interactive 3D view. Objects can
// be selected, moved and scaled; edits are written back to the file and
// external changes to it are picked up live.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"landscape-engine/assets"
	"landscape-engine/config"
	"landscape-engine/editor"
	"landscape-engine/internal/logging"
	"landscape-engine/math"
	"landscape-engine/registry"
	"landscape-engine/renderer"
	"landscape-engine/window"
)

func main() {
	configPath := flag.String("config", "", "TOML config file")
	layoutPath := flag.String("layout", "", "layout file, overrides the config")
	flag.Parse()

	if err := run(*configPath, *layoutPath); err != nil {
		fmt.Fprintln(os.Stderr, "planner:", err)
		os.Exit(1)
	}
}

func run(configPath, layoutPath string) error {
	cfg, err := config.Load(configPath, ".env")
	if err != nil {
		return err
	}
	if layoutPath != "" {
		cfg.Layout = layoutPath
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	win, err := window.NewWindow(window.WindowConfig{
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		Title:     cfg.Window.Title,
		Resizable: true,
		VSync:     cfg.Window.VSync,
	})
	if err != nil {
		return err
	}
	defer win.Destroy()

	re, err := renderer.NewRenderEngine(win.Width, win.Height, log)
	if err != nil {
		return err
	}
	defer re.Destroy()

	engine, err := editor.NewEngine(editor.Options{
		CanvasWidth:        cfg.World.CanvasWidth,
		WorldWidth:         cfg.World.Width,
		WorldDepth:         cfg.World.Depth,
		Loader:             assets.FileLoader{Root: cfg.Assets.Root},
		Assets:             registry.AssetTable(cfg.Assets.Table),
		MaxConcurrentLoads: cfg.Assets.MaxConcurrentLoads,
		TargetSize:         cfg.Assets.TargetSize,
		FOV:                math.Radians(cfg.Camera.FOV),
		CameraRadius:       cfg.Camera.Radius,
		MinRadius:          cfg.Camera.MinRadius,
		MaxRadius:          cfg.Camera.MaxRadius,
		Releaser:           re,
		Logger:             log,
	})
	if err != nil {
		return err
	}
	defer engine.Dispose()
	engine.Controller.PanSpeed = cfg.Camera.PanSpeed
	engine.Resize(win.Width, win.Height)

	background, err := cfg.World.BackgroundColor()
	if err != nil {
		return err
	}
	base := editor.Settings{
		Background: background,
		Ground:     editor.GroundType(cfg.World.Ground),
		ShowGrid:   cfg.World.ShowGrid,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ls, err := newLayoutSync(cfg.Layout, log)
	if err != nil {
		return err
	}
	defer ls.close()
	if err := ls.apply(ctx, engine, base); err != nil {
		return err
	}
	if err := ls.watch(); err != nil {
		log.Warn("live reload disabled", zap.Error(err))
	}

	unsubscribe := engine.Subscribe(func(ev editor.Event) {
		switch ev := ev.(type) {
		case editor.ObjectSelected:
			log.Debug("selected", zap.String("id", ev.ID))
		case editor.SelectionCleared:
			log.Debug("selection cleared")
		case editor.ObjectUpdated:
			ls.record(ev)
		}
	})
	defer unsubscribe()

	bindInput(win, engine)

	width, height := win.Width, win.Height
	last := window.Time()
	for !win.ShouldClose() {
		win.PollEvents()

		now := window.Time()
		dt := float32(now - last)
		last = now

		if win.Width != width || win.Height != height {
			width, height = win.Width, win.Height
			engine.Resize(width, height)
			re.Resize(width, height)
		}

		select {
		case <-ls.changed:
			if err := ls.read(); err != nil {
				log.Warn("layout reload failed", zap.Error(err))
			} else if err := ls.apply(ctx, engine, base); err != nil {
				log.Warn("layout apply failed", zap.Error(err))
			}
		default:
		}

		if placed := engine.Frame(dt); len(placed) > 0 {
			log.Debug("objects placed", zap.Strings("ids", placed))
		}
		if !engine.Controller.Dragging() {
			if err := ls.flush(); err != nil {
				log.Warn("layout save failed", zap.Error(err))
			}
		}

		if err := engine.Draw(re); err != nil {
			log.Error("render failed", zap.Error(err))
		}
		win.SwapBuffers()
		win.SetTitle(cfg.Window.Title + " | " + engine.Controller.StatusText)
	}
	return nil
}
