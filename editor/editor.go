package editor

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"landscape-engine/assets"
	"landscape-engine/core"
	"landscape-engine/gizmo"
	"landscape-engine/materials"
	"landscape-engine/math"
	"landscape-engine/planar"
	"landscape-engine/registry"
	"landscape-engine/scene"
)

// GroundType selects the tint of the ground plane.
type GroundType string

const (
	GroundGrass  GroundType = "grass"
	GroundSoil   GroundType = "soil"
	GroundGravel GroundType = "gravel"
	GroundPaving GroundType = "paving"
	GroundMulch  GroundType = "mulch"
)

var groundTints = map[GroundType]core.Color{
	GroundGrass:  {R: 0.36, G: 0.6, B: 0.3, A: 1},
	GroundSoil:   {R: 0.45, G: 0.32, B: 0.2, A: 1},
	GroundGravel: {R: 0.62, G: 0.6, B: 0.56, A: 1},
	GroundPaving: {R: 0.72, G: 0.7, B: 0.66, A: 1},
	GroundMulch:  {R: 0.35, G: 0.22, B: 0.14, A: 1},
}

// Settings are the ambient scene settings owned by the host.
type Settings struct {
	Background core.Color
	Ground     GroundType
	ShowGrid   bool
}

func DefaultSettings() Settings {
	return Settings{
		Background: core.Color{R: 0.53, G: 0.72, B: 0.9, A: 1},
		Ground:     GroundGrass,
		ShowGrid:   true,
	}
}

// Drawer renders a scene from a camera, e.g. renderer.RenderEngine.
type Drawer interface {
	Render(s *scene.Scene, camera *scene.Camera) error
}

// Options configures an Engine.
type Options struct {
	// CanvasWidth is the width of the planning surface in planar units.
	CanvasWidth float64
	// WorldWidth and WorldDepth are the ground size in metres.
	WorldWidth float64
	WorldDepth float64

	Loader             assets.Loader
	Assets             registry.AssetTable
	MaxConcurrentLoads int
	TargetSize         float32

	FOV          float32 // radians
	CameraRadius float32
	MinRadius    float32
	MaxRadius    float32

	// Releaser frees GPU resources of removed nodes. Optional.
	Releaser scene.Releaser
	Logger   *zap.Logger
}

// Engine is the top-level editor state: scene, assets, placed objects,
// handles, camera and input.
type Engine struct {
	Scene      *scene.Scene
	Camera     *scene.OrbitCamera
	Cache      *assets.Cache
	Registry   *registry.Registry
	Handles    *gizmo.Manager
	Controller *Controller
	Mapper     planar.Mapper
	Bus        *Bus

	settings Settings
	log      *zap.Logger
}

// NewEngine builds an engine with an empty world of the configured size.
func NewEngine(opts Options) (*Engine, error) {
	if opts.CanvasWidth <= 0 || opts.WorldWidth <= 0 || opts.WorldDepth <= 0 {
		return nil, fmt.Errorf("invalid world size %gx%g on canvas %g",
			opts.WorldWidth, opts.WorldDepth, opts.CanvasWidth)
	}
	if opts.Loader == nil {
		opts.Loader = assets.FileLoader{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.FOV <= 0 {
		opts.FOV = math.Radians(50)
	}
	if opts.CameraRadius <= 0 {
		opts.CameraRadius = float32(opts.WorldWidth)
	}

	s := scene.NewScene(float32(opts.WorldWidth), float32(opts.WorldDepth))
	mapper := planar.NewMapper(opts.CanvasWidth, opts.WorldWidth, opts.WorldDepth)

	cache := assets.New(opts.Loader, assets.Options{
		MaxConcurrentLoads: opts.MaxConcurrentLoads,
		TargetSize:         opts.TargetSize,
		Logger:             opts.Logger,
		Releaser:           opts.Releaser,
	})
	reg := registry.New(s, cache, mapper, opts.Assets, registry.Options{
		Logger:   opts.Logger,
		Releaser: opts.Releaser,
	})
	handles := gizmo.NewManager(s.Overlay, gizmo.Options{
		Logger:   opts.Logger,
		Releaser: opts.Releaser,
	})

	camera := scene.NewOrbitCamera(math.Vec3Zero, opts.CameraRadius, opts.FOV, 16.0/9.0)
	if opts.MinRadius > 0 {
		camera.MinRadius = opts.MinRadius
	}
	if opts.MaxRadius > 0 {
		camera.MaxRadius = opts.MaxRadius
	}
	camera.Update()

	bus := &Bus{}
	e := &Engine{
		Scene:      s,
		Camera:     camera,
		Cache:      cache,
		Registry:   reg,
		Handles:    handles,
		Controller: NewController(camera, reg, handles, mapper, bus, opts.Logger),
		Mapper:     mapper,
		Bus:        bus,
		log:        opts.Logger.Named("engine"),
	}
	if err := e.SetSettings(DefaultSettings()); err != nil {
		return nil, err
	}
	return e, nil
}

// Subscribe registers fn for engine events.
func (e *Engine) Subscribe(fn func(Event)) func() {
	return e.Bus.Subscribe(fn)
}

// SetObjects reconciles the placed objects with descs. A selected object
// that is removed or replaced loses the selection.
func (e *Engine) SetObjects(ctx context.Context, descs []registry.Descriptor) registry.Result {
	res := e.Registry.Reconcile(ctx, descs)

	if sel := e.Controller.Selected(); sel != "" {
		if slices.Contains(res.Removed, sel) || slices.Contains(res.Replaced, sel) {
			e.Controller.ClearSelection()
		} else {
			e.Controller.SyncHandles()
		}
	}
	e.log.Debug("objects set",
		zap.Int("removed", len(res.Removed)),
		zap.Int("replaced", len(res.Replaced)),
		zap.Int("updated", len(res.Updated)),
		zap.Int("requested", len(res.Requested)),
		zap.Int("skipped", len(res.Skipped)))
	return res
}

// Settings returns the current ambient settings.
func (e *Engine) Settings() Settings { return e.settings }

// SetSettings applies background colour, ground tint and grid visibility.
func (e *Engine) SetSettings(s Settings) error {
	tint, ok := groundTints[s.Ground]
	if !ok {
		return fmt.Errorf("unknown ground type %q", s.Ground)
	}
	e.Scene.Background = s.Background
	if e.Scene.Ground != nil {
		materials.ApplyColor(e.Scene.Ground, tint)
	}
	if e.Scene.Grid != nil {
		e.Scene.Grid.Visible = s.ShowGrid
	}
	e.settings = s
	return nil
}

func (e *Engine) SetTool(t Tool) { e.Controller.SetTool(t) }

func (e *Engine) Select(id string) bool { return e.Controller.Select(id) }

func (e *Engine) ClearSelection() { e.Controller.ClearSelection() }

func (e *Engine) Resize(width, height int) {
	e.Controller.Resize(float32(width), float32(height))
}

// Frame advances one frame: finished loads are placed and held keys pan the
// camera. It returns the ids placed this frame.
func (e *Engine) Frame(dt float32) []string {
	placed := e.Registry.ApplyLoads()
	e.Controller.Update(dt)
	return placed
}

// WaitLoads blocks until every pending load has been applied or ctx ends.
func (e *Engine) WaitLoads(ctx context.Context) ([]string, error) {
	return e.Registry.WaitLoads(ctx)
}

// Draw hands the scene and camera to d.
func (e *Engine) Draw(d Drawer) error {
	return d.Render(e.Scene, &e.Camera.Camera)
}

// GetStats returns scene statistics for the status line
func (e *Engine) GetStats() (objectCount, vertexCount, faceCount int) {
	objectCount = e.Registry.Len()
	e.Registry.Each(func(_ string, n *scene.Node) {
		n.Walk(scene.VisitorFuncs{Mesh: func(_ *scene.Node, m *scene.Mesh) {
			vertexCount += len(m.Vertices)
			faceCount += len(m.Indices) / 3
		}})
	})
	return
}

// Dispose tears down handles, objects and cached assets. The engine must
// not be used afterwards.
func (e *Engine) Dispose() {
	e.Controller.ClearSelection()
	e.Handles.Dispose()
	e.Registry.Dispose()
	e.Cache.Dispose()
}
