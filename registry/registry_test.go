package registry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"landscape-engine/assets"
	"landscape-engine/core"
	"landscape-engine/math"
	"landscape-engine/planar"
	"landscape-engine/scene"
)

var table = AssetTable{
	"tree":   "builtin:tree",
	"hedge":  "builtin:hedge",
	"broken": "models/broken.glb",
}

type fixture struct {
	scene    *scene.Scene
	cache    *assets.Cache
	reg      *Registry
	mapper   planar.Mapper
	released *countingReleaser
	gate     chan struct{}
	once     sync.Once
}

type countingReleaser struct {
	mu     sync.Mutex
	meshes int
}

func (r *countingReleaser) ReleaseMesh(*scene.Mesh) {
	r.mu.Lock()
	r.meshes++
	r.mu.Unlock()
}

func (r *countingReleaser) ReleaseTexture(*scene.Texture) {}

func (r *countingReleaser) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meshes
}

// newFixture builds a registry over builtin assets. With gated set, loads
// block until open is called.
func newFixture(t *testing.T, gated bool) *fixture {
	t.Helper()
	log := zaptest.NewLogger(t)
	f := &fixture{
		scene:    scene.NewScene(20, 10),
		mapper:   planar.NewMapper(800, 20, 10),
		released: &countingReleaser{},
		gate:     make(chan struct{}),
	}
	if !gated {
		f.open()
	}
	loader := assets.LoaderFunc(func(ctx context.Context, path string) (*scene.Node, error) {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if path == "models/broken.glb" {
			return nil, errors.New("truncated buffer")
		}
		return assets.FileLoader{}.Load(ctx, path)
	})
	f.cache = assets.New(loader, assets.Options{Logger: log})
	f.reg = New(f.scene, f.cache, f.mapper, table, Options{Logger: log, Releaser: f.released})
	t.Cleanup(f.reg.Dispose)
	return f
}

func (f *fixture) open() { f.once.Do(func() { close(f.gate) }) }

func (f *fixture) wait(t *testing.T) []string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	attached, err := f.reg.WaitLoads(ctx)
	require.NoError(t, err)
	return attached
}

func (f *fixture) sceneCount(id string) int {
	n := 0
	for _, c := range f.scene.Root.Children {
		if c.Name == id {
			n++
		}
	}
	return n
}

func crownColor(n *scene.Node) core.Color {
	var c core.Color
	n.Walk(scene.VisitorFuncs{Mesh: func(mn *scene.Node, m *scene.Mesh) {
		if mn.Name == "crown" {
			c = m.Material.Albedo
		}
	}})
	return c
}

func TestReconcileLoadsAndPlaces(t *testing.T) {
	f := newFixture(t, true)

	res := f.reg.Reconcile(context.Background(), []Descriptor{
		{ID: "o1", AssetID: "tree", Kind: KindPlant, Position: planar.Point{X: 100, Y: 100}, RotationDegrees: 90},
	})
	assert.Equal(t, []string{"o1"}, res.Requested)
	assert.True(t, f.reg.Pending("o1"))
	assert.Equal(t, 1, f.reg.PendingCount())
	assert.Zero(t, f.reg.Len())

	f.open()
	assert.Equal(t, []string{"o1"}, f.wait(t))
	assert.False(t, f.reg.Pending("o1"))

	n, ok := f.reg.Node("o1")
	require.True(t, ok)
	assert.Same(t, f.scene.Root, n.Parent)
	assert.Equal(t, math.Vec3{X: -7.5, Z: -2.5}, n.Transform.Position)

	proto, ok := f.reg.Prototype("o1")
	require.True(t, ok)
	assert.Equal(t, math.Splat(proto.BaseScale), n.Transform.Scale)
	assert.Less(t, proto.BaseScale, float32(1))

	box, ok := f.reg.Bounds("o1")
	require.True(t, ok)
	assert.InDelta(t, 1, box.Size().MaxComponent(), 1e-4)
}

func TestRemovedWhileLoadingIsDiscarded(t *testing.T) {
	f := newFixture(t, true)

	f.reg.Reconcile(context.Background(), []Descriptor{{ID: "o1", AssetID: "tree"}})
	require.True(t, f.reg.Pending("o1"))

	res := f.reg.Reconcile(context.Background(), nil)
	assert.Empty(t, res.Removed, "nothing was live yet")
	assert.False(t, f.reg.Pending("o1"))

	f.open()
	assert.Empty(t, f.wait(t))
	assert.Zero(t, f.reg.Len())
	assert.Zero(t, f.sceneCount("o1"))
}

func TestReaddedWhileLoadingForcesFreshLoad(t *testing.T) {
	f := newFixture(t, true)
	descs := []Descriptor{{ID: "o1", AssetID: "tree"}}

	f.reg.Reconcile(context.Background(), descs)
	f.reg.Reconcile(context.Background(), nil)
	res := f.reg.Reconcile(context.Background(), descs)
	assert.Equal(t, []string{"o1"}, res.Requested)

	f.open()
	assert.Equal(t, []string{"o1"}, f.wait(t))
	assert.Equal(t, 1, f.reg.Len())
	assert.Equal(t, 1, f.sceneCount("o1"))
}

func TestPendingIDIsNotRequestedTwice(t *testing.T) {
	f := newFixture(t, true)
	descs := []Descriptor{{ID: "o1", AssetID: "tree"}}

	f.reg.Reconcile(context.Background(), descs)
	res := f.reg.Reconcile(context.Background(), descs)
	assert.Empty(t, res.Requested)

	f.open()
	f.wait(t)
	assert.Equal(t, 1, f.sceneCount("o1"))
}

func TestUnknownAssetIsSkipped(t *testing.T) {
	f := newFixture(t, false)

	res := f.reg.Reconcile(context.Background(), []Descriptor{{ID: "g1", AssetID: "gazebo"}})
	assert.Equal(t, []string{"g1"}, res.Skipped)
	assert.Empty(t, res.Requested)
	assert.False(t, f.reg.Pending("g1"))
	assert.Zero(t, f.reg.PendingCount())
	assert.Empty(t, f.wait(t))
}

func TestLoadFailureClearsPendingAndRetriesNextPass(t *testing.T) {
	f := newFixture(t, false)
	descs := []Descriptor{{ID: "b1", AssetID: "broken"}, {ID: "o1", AssetID: "tree"}}

	f.reg.Reconcile(context.Background(), descs)
	assert.Equal(t, []string{"o1"}, f.wait(t))
	assert.False(t, f.reg.Pending("b1"))
	_, ok := f.reg.Node("b1")
	assert.False(t, ok)

	res := f.reg.Reconcile(context.Background(), descs)
	assert.Equal(t, []string{"b1"}, res.Requested)
	assert.Equal(t, []string{"o1"}, res.Updated)
	f.wait(t)
}

func TestUpdateInPlace(t *testing.T) {
	f := newFixture(t, false)
	f.reg.Reconcile(context.Background(), []Descriptor{{ID: "o1", AssetID: "tree"}})
	f.wait(t)
	n, _ := f.reg.Node("o1")
	proto, _ := f.reg.Prototype("o1")
	original := crownColor(n)

	red := core.ColorRed
	scale := math.Vec3{X: 2, Y: 1, Z: 1}
	res := f.reg.Reconcile(context.Background(), []Descriptor{{
		ID: "o1", AssetID: "tree", Position: planar.Point{X: 400, Y: 200},
		Color: &red, Scale: &scale,
	}})
	assert.Equal(t, []string{"o1"}, res.Updated)

	same, _ := f.reg.Node("o1")
	assert.Same(t, n, same)
	assert.Equal(t, math.Vec3Zero, n.Transform.Position)
	assert.Equal(t, core.ColorRed, crownColor(n))
	assert.Equal(t, scale.Mul(proto.BaseScale), n.Transform.Scale)

	// dropping the override restores the recorded colour
	f.reg.Reconcile(context.Background(), []Descriptor{{ID: "o1", AssetID: "tree", Scale: &scale}})
	assert.Equal(t, original, crownColor(n))
	assert.Equal(t, scale.Mul(proto.BaseScale), n.Transform.Scale)
}

func TestColorOverrideIsolatedBetweenObjects(t *testing.T) {
	f := newFixture(t, false)
	blue := core.ColorBlue
	f.reg.Reconcile(context.Background(), []Descriptor{
		{ID: "a", AssetID: "tree", Color: &blue},
		{ID: "b", AssetID: "tree"},
	})
	f.wait(t)

	a, _ := f.reg.Node("a")
	b, _ := f.reg.Node("b")
	proto, _ := f.reg.Prototype("b")

	assert.Equal(t, core.ColorBlue, crownColor(a))
	assert.Equal(t, crownColor(proto.Root), crownColor(b))
	assert.NotEqual(t, core.ColorBlue, crownColor(b))
}

func TestRemovalDisposesNode(t *testing.T) {
	f := newFixture(t, false)
	f.reg.Reconcile(context.Background(), []Descriptor{{ID: "o1", AssetID: "tree"}, {ID: "h1", AssetID: "hedge"}})
	f.wait(t)
	n, _ := f.reg.Node("o1")

	res := f.reg.Reconcile(context.Background(), []Descriptor{{ID: "h1", AssetID: "hedge"}})
	assert.Equal(t, []string{"o1"}, res.Removed)
	assert.Nil(t, n.Parent)
	assert.Equal(t, 2, f.released.count(), "trunk and crown")
	assert.Equal(t, []string{"h1"}, f.reg.IDs())
}

func TestAssetChangeReplacesNode(t *testing.T) {
	f := newFixture(t, false)
	f.reg.Reconcile(context.Background(), []Descriptor{{ID: "o1", AssetID: "tree"}})
	f.wait(t)

	res := f.reg.Reconcile(context.Background(), []Descriptor{{ID: "o1", AssetID: "hedge"}})
	assert.Equal(t, []string{"o1"}, res.Replaced)
	assert.Equal(t, []string{"o1"}, res.Requested)
	f.wait(t)

	d, ok := f.reg.Descriptor("o1")
	require.True(t, ok)
	assert.Equal(t, "hedge", d.AssetID)
	assert.Equal(t, 1, f.sceneCount("o1"))
}

func TestDuplicateIDLastWins(t *testing.T) {
	f := newFixture(t, false)
	res := f.reg.Reconcile(context.Background(), []Descriptor{
		{ID: "o1", AssetID: "tree", Position: planar.Point{X: 0, Y: 0}},
		{ID: "o1", AssetID: "tree", Position: planar.Point{X: 400, Y: 200}},
	})
	assert.Equal(t, []string{"o1"}, res.Requested)
	f.wait(t)

	n, _ := f.reg.Node("o1")
	assert.Equal(t, math.Vec3Zero, n.Transform.Position)
	assert.Equal(t, 1, f.sceneCount("o1"))
}

func TestSetPlanarPositionAndScale(t *testing.T) {
	f := newFixture(t, false)
	f.reg.Reconcile(context.Background(), []Descriptor{{ID: "o1", AssetID: "tree"}})
	f.wait(t)
	n, _ := f.reg.Node("o1")
	proto, _ := f.reg.Prototype("o1")

	require.True(t, f.reg.SetPlanarPosition("o1", planar.Point{X: 800, Y: 400}))
	assert.Equal(t, math.Vec3{X: 10, Z: 5}, n.Transform.Position)
	d, _ := f.reg.Descriptor("o1")
	assert.Equal(t, planar.Point{X: 800, Y: 400}, d.Position)

	s := math.Vec3{X: 1, Y: 3, Z: 1}
	require.True(t, f.reg.SetScale("o1", s))
	got, _ := f.reg.Scale("o1")
	assert.Equal(t, s, got)
	assert.Equal(t, s.Mul(proto.BaseScale), n.Transform.Scale)

	assert.False(t, f.reg.SetScale("nope", s))
	assert.False(t, f.reg.SetPlanarPosition("nope", planar.Point{}))
}

func TestIDOfResolvesChildMeshes(t *testing.T) {
	f := newFixture(t, false)
	f.reg.Reconcile(context.Background(), []Descriptor{{ID: "o1", AssetID: "tree"}})
	f.wait(t)
	n, _ := f.reg.Node("o1")

	id, ok := f.reg.IDOf(n.Children[1])
	assert.True(t, ok)
	assert.Equal(t, "o1", id)

	_, ok = f.reg.IDOf(f.scene.Ground)
	assert.False(t, ok)
}
