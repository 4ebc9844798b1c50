package assets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landscape-engine/scene"
)

func TestFileLoaderDispatchesByExtension(t *testing.T) {
	dir := t.TempDir()
	obj := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.obj"), []byte(obj), 0o644))

	l := FileLoader{Root: dir}
	root, err := l.Load(context.Background(), "tri.obj")
	require.NoError(t, err)
	assert.Equal(t, "tri.obj", root.Name)

	_, err = l.Load(context.Background(), "plan.dwg")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = l.Load(context.Background(), "missing.glb")
	assert.Error(t, err)
}

func TestFileLoaderHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := FileLoader{}.Load(ctx, "builtin:cube")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuiltinsRestOnGround(t *testing.T) {
	for _, name := range []string{"cube", "sphere", "cone", "tree", "hedge", "paver"} {
		t.Run(name, func(t *testing.T) {
			root, err := Builtin(name)
			require.NoError(t, err)
			box, ok := scene.LocalBounds(root)
			require.True(t, ok)
			assert.InDelta(t, 0, box.Min.Y, 1e-5)
			assert.Greater(t, box.Size().MaxComponent(), float32(0))
		})
	}

	_, err := Builtin("gazebo")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
