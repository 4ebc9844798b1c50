package editor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"landscape-engine/core"
	"landscape-engine/gizmo"
	"landscape-engine/math"
	"landscape-engine/planar"
	"landscape-engine/registry"
	"landscape-engine/scene"
)

type recorder struct {
	events []Event
}

func (r *recorder) record(e Event) { r.events = append(r.events, e) }

func (r *recorder) last() Event {
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}

func (r *recorder) reset() { r.events = nil }

// newEngine builds a 20m x 10m world on an 800-wide canvas with one tree
// placed at canvas (100, 100), world (-7.5, -2.5).
func newEngine(t *testing.T) (*Engine, *recorder) {
	t.Helper()
	e, err := NewEngine(Options{
		CanvasWidth: 800,
		WorldWidth:  20,
		WorldDepth:  10,
		Assets: registry.AssetTable{
			"tree":  "builtin:tree",
			"hedge": "builtin:hedge",
		},
		Logger: zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(e.Dispose)

	rec := &recorder{}
	e.Subscribe(rec.record)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	e.SetObjects(ctx, []registry.Descriptor{
		{ID: "o1", AssetID: "tree", Kind: registry.KindPlant, Position: planar.Point{X: 100, Y: 100}},
	})
	placed, err := e.WaitLoads(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"o1"}, placed)
	return e, rec
}

// down is a vertical ray through p from above.
func down(p math.Vec3) math.Ray {
	return math.Ray{Origin: math.Vec3{X: p.X, Y: p.Y + 10, Z: p.Z}, Direction: math.Vec3Down}
}

func handle(t *testing.T, m *gizmo.Manager, axis math.Axis, sign float32) *gizmo.Handle {
	t.Helper()
	for _, h := range m.Handles() {
		if h.Axis == axis && h.Sign == sign {
			return h
		}
	}
	t.Fatalf("no %v handle with sign %v", axis, sign)
	return nil
}

func TestNewEngineRejectsBadWorld(t *testing.T) {
	_, err := NewEngine(Options{CanvasWidth: 800, WorldWidth: 0, WorldDepth: 10})
	assert.Error(t, err)
}

func TestScaleHandleDragScenario(t *testing.T) {
	e, rec := newEngine(t)

	e.SetTool(ToolScale)
	require.True(t, e.Select("o1"))
	assert.Equal(t, ObjectSelected{ID: "o1"}, rec.last())
	require.Equal(t, gizmo.Visible, e.Handles.State())
	require.Len(t, e.Handles.Handles(), 6)

	before, ok := e.Registry.Bounds("o1")
	require.True(t, ok)
	h := handle(t, e.Handles, math.AxisX, 1)
	startDistance := h.Position.Distance(before.Center())

	e.Controller.PointerDown(down(h.Position))
	_, dragging := e.Handles.Drag()
	require.True(t, dragging)

	// 0.4 * startDistance along +x gives ratio 1 + 0.4/2 = 1.2
	target := h.Position.Add(math.Vec3{X: 0.4 * startDistance})
	e.Controller.PointerMove(down(target))

	upd, ok := rec.last().(ObjectUpdated)
	require.True(t, ok, "got %#v", rec.last())
	assert.Equal(t, "o1", upd.ID)
	require.NotNil(t, upd.Changes.ScaleX)
	assert.InDelta(t, 1.2, *upd.Changes.ScaleX, 1e-4)
	assert.Nil(t, upd.Changes.ScaleY)
	assert.Nil(t, upd.Changes.ScaleZ)
	assert.Nil(t, upd.Changes.Position)

	after, _ := e.Registry.Bounds("o1")
	assert.InDelta(t, 1.2*before.Size().X, after.Size().X, 1e-4)
	assert.InDelta(t, before.Size().Y, after.Size().Y, 1e-5)

	// handles follow the new bounds
	h = handle(t, e.Handles, math.AxisX, 1)
	want := gizmo.HandlePosition(after.Center(), after.Size(), math.AxisX, 1)
	assert.True(t, h.Position.ApproxEqual(want, 1e-4), "handle at %v want %v", h.Position, want)

	e.Controller.PointerUp()
	assert.Equal(t, gizmo.Visible, e.Handles.State())
	assert.True(t, e.Controller.History.CanUndo())

	rec.reset()
	require.True(t, e.Controller.Undo())
	s, _ := e.Registry.Scale("o1")
	assert.Equal(t, math.Vec3One, s)
	upd, ok = rec.last().(ObjectUpdated)
	require.True(t, ok)
	require.NotNil(t, upd.Changes.ScaleX)
	assert.Equal(t, float32(1), *upd.Changes.ScaleX)

	require.True(t, e.Controller.Redo())
	s, _ = e.Registry.Scale("o1")
	assert.InDelta(t, 1.2, s.X, 1e-4)
}

func TestMoveDragScenario(t *testing.T) {
	e, rec := newEngine(t)
	e.SetTool(ToolMove)

	grab := math.Vec3{X: -7.45, Z: -2.47}
	e.Controller.PointerDown(down(grab))
	assert.Equal(t, ObjectSelected{ID: "o1"}, rec.last())
	assert.Equal(t, gizmo.Hidden, e.Handles.State(), "no handles outside the scale tool")

	e.Controller.PointerMove(down(grab.Add(math.Vec3{X: 2.5})))
	upd, ok := rec.last().(ObjectUpdated)
	require.True(t, ok, "got %#v", rec.last())
	require.NotNil(t, upd.Changes.Position)
	assert.InDelta(t, 200, upd.Changes.Position.X, 1e-3)
	assert.InDelta(t, 100, upd.Changes.Position.Y, 1e-3)
	assert.True(t, upd.Changes.ScaleX == nil && upd.Changes.ScaleY == nil && upd.Changes.ScaleZ == nil)

	n, _ := e.Registry.Node("o1")
	assert.InDelta(t, -5, n.Transform.Position.X, 1e-3)
	assert.InDelta(t, -2.5, n.Transform.Position.Z, 1e-3)

	e.Controller.PointerUp()
	require.True(t, e.Controller.Undo())
	d, _ := e.Registry.Descriptor("o1")
	assert.Equal(t, planar.Point{X: 100, Y: 100}, d.Position)
}

func TestToolNoneDoesNotMove(t *testing.T) {
	e, rec := newEngine(t)

	grab := math.Vec3{X: -7.45, Z: -2.47}
	e.Controller.PointerDown(down(grab))
	e.Controller.PointerMove(down(grab.Add(math.Vec3{X: 3})))
	e.Controller.PointerUp()

	require.Len(t, rec.events, 1)
	assert.Equal(t, ObjectSelected{ID: "o1"}, rec.events[0])
	assert.False(t, e.Controller.History.CanUndo())
}

// bodyGrab lies on o1's crown but clear of its scale handles.
var bodyGrab = math.Vec3{X: -7.3, Z: -2.5}

func TestEveryHitAnnouncesSelection(t *testing.T) {
	e, rec := newEngine(t)
	e.SetTool(ToolScale)

	e.Controller.PointerDown(down(bodyGrab))
	e.Controller.PointerUp()
	require.Len(t, rec.events, 1)
	assert.Equal(t, ObjectSelected{ID: "o1"}, rec.events[0])

	// the same object again
	e.Controller.PointerDown(down(bodyGrab))
	e.Controller.PointerUp()
	require.Len(t, rec.events, 2)
	assert.Equal(t, ObjectSelected{ID: "o1"}, rec.events[1])

	// a handle of the selected object
	h := handle(t, e.Handles, math.AxisZ, 1)
	e.Controller.PointerDown(down(h.Position))
	_, dragging := e.Handles.Drag()
	require.True(t, dragging)
	require.Len(t, rec.events, 3)
	assert.Equal(t, ObjectSelected{ID: "o1"}, rec.events[2])
	e.Controller.PointerUp()

	assert.False(t, e.Controller.History.CanUndo(), "clicks without motion record nothing")

	// programmatic selection stays quiet when nothing changes
	require.True(t, e.Select("o1"))
	assert.Len(t, rec.events, 3)
}

func TestScaleToolBodyDragMoves(t *testing.T) {
	e, rec := newEngine(t)
	e.SetTool(ToolScale)

	e.Controller.PointerDown(down(bodyGrab))
	assert.Equal(t, ObjectSelected{ID: "o1"}, rec.last())
	_, handleDrag := e.Handles.Drag()
	require.False(t, handleDrag)

	e.Controller.PointerMove(down(bodyGrab.Add(math.Vec3{X: 2.5})))
	upd, ok := rec.last().(ObjectUpdated)
	require.True(t, ok, "got %#v", rec.last())
	require.NotNil(t, upd.Changes.Position)
	assert.InDelta(t, 200, upd.Changes.Position.X, 1e-3)

	n, _ := e.Registry.Node("o1")
	assert.InDelta(t, -5, n.Transform.Position.X, 1e-3)

	// handles follow the moved object
	bounds, _ := e.Registry.Bounds("o1")
	h := handle(t, e.Handles, math.AxisX, 1)
	want := gizmo.HandlePosition(bounds.Center(), bounds.Size(), math.AxisX, 1)
	assert.True(t, h.Position.ApproxEqual(want, 1e-4))

	e.Controller.PointerUp()
	assert.True(t, e.Controller.History.CanUndo())
}

func TestDegenerateHandleDragKeepsOutOfRangeScale(t *testing.T) {
	e, rec := newEngine(t)
	thin := math.NewVec3(0.01, 1, 1)
	e.SetObjects(context.Background(), []registry.Descriptor{
		{ID: "o1", AssetID: "tree", Position: planar.Point{X: 100, Y: 100}, Scale: &thin},
	})
	e.SetTool(ToolScale)
	require.True(t, e.Select("o1"))
	rec.reset()

	h := handle(t, e.Handles, math.AxisZ, 1)
	e.Controller.PointerDown(down(h.Position))
	_, dragging := e.Handles.Drag()
	require.True(t, dragging)
	e.Controller.PointerMove(down(h.Position))
	e.Controller.PointerUp()

	for _, ev := range rec.events {
		_, updated := ev.(ObjectUpdated)
		assert.False(t, updated, "zero-length drag published %#v", ev)
	}
	s, _ := e.Registry.Scale("o1")
	assert.Equal(t, thin, s)
}

func TestClickEmptyClearsSelection(t *testing.T) {
	e, rec := newEngine(t)
	e.SetTool(ToolScale)
	require.True(t, e.Select("o1"))

	e.Controller.PointerDown(down(math.Vec3{X: 5, Z: 3}))
	assert.Equal(t, SelectionCleared{}, rec.last())
	assert.Empty(t, e.Controller.Selected())
	assert.Equal(t, gizmo.Hidden, e.Handles.State())
	assert.Empty(t, e.Scene.Overlay.Children)

	// a second click on nothing emits nothing new
	n := len(rec.events)
	e.Controller.PointerDown(down(math.Vec3{X: 5, Z: 3}))
	assert.Len(t, rec.events, n)
}

func TestSwitchingToolTogglesHandles(t *testing.T) {
	e, _ := newEngine(t)
	require.True(t, e.Select("o1"))
	assert.Equal(t, gizmo.Hidden, e.Handles.State())

	e.SetTool(ToolScale)
	assert.Equal(t, gizmo.Visible, e.Handles.State())
	assert.Equal(t, "o1", e.Handles.ObjectID())

	e.SetTool(ToolMove)
	assert.Equal(t, gizmo.Hidden, e.Handles.State())
}

func TestRemovingSelectedObjectClearsSelection(t *testing.T) {
	e, rec := newEngine(t)
	e.SetTool(ToolScale)
	require.True(t, e.Select("o1"))

	res := e.SetObjects(context.Background(), nil)
	assert.Equal(t, []string{"o1"}, res.Removed)
	assert.Equal(t, SelectionCleared{}, rec.last())
	assert.Equal(t, gizmo.Hidden, e.Handles.State())
	assert.False(t, e.Select("o1"))
}

func TestUpdatedSelectedObjectKeepsHandlesInStep(t *testing.T) {
	e, _ := newEngine(t)
	e.SetTool(ToolScale)
	require.True(t, e.Select("o1"))

	e.SetObjects(context.Background(), []registry.Descriptor{
		{ID: "o1", AssetID: "tree", Position: planar.Point{X: 400, Y: 200}},
	})
	assert.Equal(t, "o1", e.Controller.Selected())

	bounds, _ := e.Registry.Bounds("o1")
	h := handle(t, e.Handles, math.AxisZ, -1)
	want := gizmo.HandlePosition(bounds.Center(), bounds.Size(), math.AxisZ, -1)
	assert.True(t, h.Position.ApproxEqual(want, 1e-4))
	assert.InDelta(t, 0, bounds.Center().X, 1e-4)
}

func TestCameraInput(t *testing.T) {
	e, _ := newEngine(t)
	c := e.Controller
	e.Resize(800, 400)

	theta := e.Camera.Theta
	c.MouseDown(MouseRight, 100, 100)
	c.MouseMove(150, 100)
	c.MouseUp(MouseRight)
	assert.NotEqual(t, theta, e.Camera.Theta)

	radius := e.Camera.Radius
	assert.True(t, c.Scroll(1))
	assert.Less(t, e.Camera.Radius, radius)
	assert.True(t, c.Scroll(0), "wheel is consumed even without motion")

	target := e.Camera.Target
	c.KeyDown(KeyW)
	e.Frame(0.5)
	c.KeyUp(KeyW)
	moved := e.Camera.Target.Sub(target)
	assert.InDelta(t, DefaultPanSpeed*0.5, moved.Length(), 1e-3)
	assert.InDelta(t, 0, moved.Y, 1e-6)

	target = e.Camera.Target
	e.Frame(0.5)
	assert.Equal(t, target, e.Camera.Target, "released keys stop panning")
}

func TestFocusSelected(t *testing.T) {
	e, _ := newEngine(t)
	assert.False(t, e.Controller.Focus())

	require.True(t, e.Select("o1"))
	require.True(t, e.Controller.Focus())
	bounds, _ := e.Registry.Bounds("o1")
	assert.True(t, e.Camera.Target.ApproxEqual(bounds.Center(), 1e-5))
}

func TestSetSettings(t *testing.T) {
	e, _ := newEngine(t)

	err := e.SetSettings(Settings{Background: core.ColorBlack, Ground: GroundGravel, ShowGrid: false})
	require.NoError(t, err)
	assert.Equal(t, core.ColorBlack, e.Scene.Background)
	assert.Equal(t, groundTints[GroundGravel], e.Scene.Ground.Mesh.Material.Albedo)
	assert.False(t, e.Scene.Grid.Visible)

	err = e.SetSettings(Settings{Ground: "lava"})
	assert.Error(t, err)
	assert.Equal(t, GroundGravel, e.Settings().Ground)
}

type fakeDrawer struct {
	scene  *scene.Scene
	camera *scene.Camera
}

func (d *fakeDrawer) Render(s *scene.Scene, c *scene.Camera) error {
	d.scene, d.camera = s, c
	return nil
}

func TestDrawAndStats(t *testing.T) {
	e, _ := newEngine(t)

	d := &fakeDrawer{}
	require.NoError(t, e.Draw(d))
	assert.Same(t, e.Scene, d.scene)
	assert.Same(t, &e.Camera.Camera, d.camera)

	objects, vertices, faces := e.GetStats()
	assert.Equal(t, 1, objects)
	assert.Positive(t, vertices)
	assert.Positive(t, faces)
}
