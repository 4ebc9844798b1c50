package assets

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"landscape-engine/core"
	"landscape-engine/math"
	"landscape-engine/scene"
)

var (
	// ErrUnsupportedFormat is returned for asset paths with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported asset format")
	// ErrDisposed is returned to requests the cache abandoned on Dispose.
	ErrDisposed = errors.New("asset cache disposed")
)

// BuiltinPrefix marks procedural placeholder assets, e.g. "builtin:tree".
const BuiltinPrefix = "builtin:"

// Loader produces a fresh scene graph for an asset path.
type Loader interface {
	Load(ctx context.Context, path string) (*scene.Node, error)
}

// LoaderFunc adapts a function to a Loader.
type LoaderFunc func(ctx context.Context, path string) (*scene.Node, error)

func (f LoaderFunc) Load(ctx context.Context, path string) (*scene.Node, error) {
	return f(ctx, path)
}

// FileLoader loads models from disk, choosing the parser by extension.
// Relative paths are joined to Root.
type FileLoader struct {
	Root string
}

func (l FileLoader) Load(ctx context.Context, path string) (*scene.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name, ok := strings.CutPrefix(path, BuiltinPrefix); ok {
		return Builtin(name)
	}

	full := path
	if l.Root != "" && !filepath.IsAbs(path) {
		full = filepath.Join(l.Root, path)
	}

	switch strings.ToLower(filepath.Ext(full)) {
	case ".glb", ".gltf":
		return scene.LoadGLTF(full)
	case ".obj":
		return scene.LoadOBJ(full)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// Builtin builds one of the procedural placeholder assets: cube, sphere,
// cone, tree, hedge or paver.
func Builtin(name string) (*scene.Node, error) {
	switch name {
	case "cube":
		return builtinMesh(name, scene.CreateCube(1), core.Color{R: 0.7, G: 0.7, B: 0.7, A: 1}, math.Vec3One), nil
	case "sphere":
		return builtinMesh(name, scene.CreateSphere(0.5, 24, 12), core.Color{R: 0.3, G: 0.6, B: 0.3, A: 1}, math.Vec3One), nil
	case "cone":
		return builtinMesh(name, scene.CreateCone(0.5, 1, 24), core.Color{R: 0.2, G: 0.5, B: 0.25, A: 1}, math.Vec3One), nil
	case "hedge":
		return builtinMesh(name, scene.CreateCube(1), core.Color{R: 0.18, G: 0.42, B: 0.2, A: 1}, math.Vec3{X: 3, Y: 1, Z: 0.8}), nil
	case "paver":
		return builtinMesh(name, scene.CreateCube(1), core.Color{R: 0.62, G: 0.6, B: 0.56, A: 1}, math.Vec3{X: 1, Y: 0.1, Z: 1}), nil
	case "tree":
		root := scene.NewNode(name)

		trunk := scene.NewMeshNode("trunk", scene.CreateCube(1))
		bark := scene.NewMaterial("bark", core.Color{R: 0.4, G: 0.27, B: 0.15, A: 1})
		bark.Tintable = false
		trunk.Mesh.Material = bark
		trunk.SetScale(math.Vec3{X: 0.2, Y: 1, Z: 0.2})
		trunk.SetPosition(math.Vec3{Y: 0.5})

		crown := scene.NewMeshNode("crown", scene.CreateCone(0.6, 1.6, 24))
		crown.Mesh.Material = scene.NewMaterial("foliage", core.Color{R: 0.2, G: 0.55, B: 0.22, A: 1})
		crown.SetPosition(math.Vec3{Y: 0.8})

		root.AddChild(trunk)
		root.AddChild(crown)
		return root, nil
	}
	return nil, fmt.Errorf("%w: %s%s", ErrUnsupportedFormat, BuiltinPrefix, name)
}

// builtinMesh wraps mesh in a group with the body resting on the ground.
func builtinMesh(name string, mesh *scene.Mesh, albedo core.Color, scale math.Vec3) *scene.Node {
	mesh.Material = scene.NewMaterial(name, albedo)
	body := scene.NewMeshNode(name, mesh)
	body.SetScale(scale)
	if mesh.HasLocalAABB {
		body.SetPosition(math.Vec3{Y: -mesh.LocalAABB.Min.Y * scale.Y})
	}
	root := scene.NewNode(name)
	root.AddChild(body)
	return root
}
