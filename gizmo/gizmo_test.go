package gizmo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landscape-engine/math"
	"landscape-engine/scene"
)

type countingReleaser struct{ meshes int }

func (r *countingReleaser) ReleaseMesh(*scene.Mesh)       { r.meshes++ }
func (r *countingReleaser) ReleaseTexture(*scene.Texture) {}

func newManager() (*Manager, *scene.Node, *countingReleaser) {
	root := scene.NewNode("overlay")
	rel := &countingReleaser{}
	return NewManager(root, Options{Releaser: rel}), root, rel
}

func sphereAndLineCount(root *scene.Node) (spheres, lines int) {
	root.Walk(scene.VisitorFuncs{Mesh: func(_ *scene.Node, m *scene.Mesh) {
		if m.DrawMode == scene.DrawLines {
			lines++
		} else {
			spheres++
		}
	}})
	return spheres, lines
}

func TestCreateHandlesSixSpheresSixLines(t *testing.T) {
	m, root, _ := newManager()
	m.CreateHandles("o1", math.NewVec3(0, 0.5, 0), math.NewVec3(1, 1, 1))

	spheres, lines := sphereAndLineCount(root)
	assert.Equal(t, 6, spheres)
	assert.Equal(t, 6, lines)
	assert.Equal(t, Visible, m.State())
	assert.Equal(t, "o1", m.ObjectID())

	seen := map[string]bool{}
	for _, h := range m.Handles() {
		seen[h.String()] = true
	}
	assert.Len(t, seen, 6)
}

func TestReselectKeepsSingleSet(t *testing.T) {
	m, root, rel := newManager()
	m.CreateHandles("o1", math.Vec3Zero, math.Splat(1))
	m.CreateHandles("o2", math.NewVec3(3, 0, 0), math.Splat(2))

	spheres, lines := sphereAndLineCount(root)
	assert.Equal(t, 6, spheres)
	assert.Equal(t, 6, lines)
	assert.Equal(t, "o2", m.ObjectID())
	assert.Equal(t, 12, rel.meshes, "first set released")
}

func TestHandlePlacement(t *testing.T) {
	m, _, _ := newManager()
	center := math.NewVec3(1, 1, 1)
	m.CreateHandles("o1", center, math.NewVec3(2, 4, 6))

	for _, h := range m.Handles() {
		want := center.Add(h.Direction().Mul(math.NewVec3(2, 4, 6).Component(h.Axis) / 2 * OffsetFactor))
		assert.True(t, h.Position.ApproxEqual(want, 1e-5), "%s at %v", h, h.Position)
		assert.True(t, h.Node.Transform.Position.ApproxEqual(want, 1e-5))
	}
}

func TestHandleRadiusClamped(t *testing.T) {
	assert.Equal(t, float32(MinHandleRadius), HandleRadius(math.Splat(0.01)))
	assert.Equal(t, float32(MaxHandleRadius), HandleRadius(math.Splat(1000)))
	assert.InDelta(t, 3*SizeFactor, HandleRadius(math.Splat(3)), 1e-6)
}

func TestUpdateHandlesIgnoresOtherObject(t *testing.T) {
	m, _, _ := newManager()
	m.CreateHandles("o1", math.Vec3Zero, math.Splat(1))
	before := m.Handles()[0].Position

	assert.False(t, m.UpdateHandles("o2", math.NewVec3(5, 5, 5), math.Splat(1)))
	assert.Equal(t, before, m.Handles()[0].Position)

	assert.True(t, m.UpdateHandles("o1", math.NewVec3(5, 0, 0), math.Splat(1)))
	h := m.Handles()[0]
	assert.True(t, h.Position.ApproxEqual(HandlePosition(math.NewVec3(5, 0, 0), math.Splat(1), h.Axis, h.Sign), 1e-5))
	assert.Equal(t, math.NewVec3(5, 0, 0), h.Connector.Mesh.Vertices[0].Position)
	assert.Equal(t, h.Position, h.Connector.Mesh.Vertices[1].Position)
}

func TestHitTestPicksNearest(t *testing.T) {
	m, _, _ := newManager()
	m.CreateHandles("o1", math.Vec3Zero, math.Splat(2))

	// looking down -x from far +x: +x handle is in front of -x handle
	ray := math.Ray{Origin: math.NewVec3(10, 0, 0), Direction: math.Vec3Left}
	h, _, ok := m.HitTest(ray)
	require.True(t, ok)
	assert.Equal(t, math.AxisX, h.Axis)
	assert.Equal(t, float32(1), h.Sign)

	miss := math.Ray{Origin: math.NewVec3(10, 10, 10), Direction: math.Vec3Up}
	_, _, ok = m.HitTest(miss)
	assert.False(t, ok)
}

func TestCalculateNewScaleRatio(t *testing.T) {
	s := DragState{
		Axis:          math.AxisX,
		Sign:          1,
		StartScale:    math.NewVec3(1, 2, 3),
		StartDistance: 1,
	}
	// ratio = 1 + 0.4 / (1 * 2) = 1.2
	got := CalculateNewScale(s, math.NewVec3(0.4, 0.7, -0.3))
	assert.InDelta(t, 1.2, got.X, 1e-5)
	assert.Equal(t, float32(2), got.Y)
	assert.Equal(t, float32(3), got.Z)
}

func TestCalculateNewScaleNegativeHandle(t *testing.T) {
	s := DragState{Axis: math.AxisZ, Sign: -1, StartScale: math.Splat(1), StartDistance: 0.5}
	// dragging towards -z grows the object
	got := CalculateNewScale(s, math.NewVec3(0, 0, -0.5))
	assert.InDelta(t, 1.5, got.Z, 1e-5)
}

func TestCalculateNewScaleClamped(t *testing.T) {
	s := DragState{Axis: math.AxisY, Sign: 1, StartScale: math.Splat(1), StartDistance: 1}

	shrunk := CalculateNewScale(s, math.NewVec3(0, -50, 0))
	assert.Equal(t, float32(MinScale), shrunk.Y)

	grown := CalculateNewScale(s, math.NewVec3(0, 1000, 0))
	assert.Equal(t, float32(MaxScale), grown.Y)
}

func TestCalculateNewScaleDegenerate(t *testing.T) {
	s := DragState{Axis: math.AxisX, Sign: 1, StartScale: math.NewVec3(0.01, 1, 200), StartDistance: 0}
	got := CalculateNewScale(s, math.NewVec3(3, 0, 0))
	assert.Equal(t, s.StartScale, got)

	s.StartDistance = 1
	assert.Equal(t, s.StartScale, CalculateNewScale(s, math.Vec3Zero))

	// a real drag still clamps every axis
	assert.Equal(t, math.NewVec3(MinScale, 1, MaxScale), CalculateNewScale(s, math.NewVec3(0, 0.5, 0)))
}

func TestDragLifecycle(t *testing.T) {
	m, _, _ := newManager()
	center := math.NewVec3(0, 0.5, 0)
	m.CreateHandles("o1", center, math.Splat(1))
	h := m.Handles()[0]

	d := m.BeginDrag(h, h.Position, math.Splat(1), center)
	assert.Equal(t, Dragging, m.State())
	assert.Equal(t, "o1", d.ObjectID)
	assert.InDelta(t, 0.5*OffsetFactor, d.StartDistance, 1e-5)

	active, ok := m.Drag()
	assert.True(t, ok)
	assert.Equal(t, d, active)

	m.EndDrag()
	assert.Equal(t, Visible, m.State())
	_, ok = m.Drag()
	assert.False(t, ok)
}

func TestRemoveAllHandlesIdempotent(t *testing.T) {
	m, root, rel := newManager()
	m.CreateHandles("o1", math.Vec3Zero, math.Splat(1))

	m.RemoveAllHandles()
	m.RemoveAllHandles()
	m.Dispose()

	assert.Empty(t, root.Children)
	assert.Equal(t, 12, rel.meshes)
	assert.Equal(t, Hidden, m.State())
	assert.Empty(t, m.ObjectID())
}
