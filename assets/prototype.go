package assets

import (
	"landscape-engine/core"
	"landscape-engine/scene"
)

// Prototype is a loaded, normalized asset. It is never attached to a scene
// and never mutated after creation; instances are clones of it.
type Prototype struct {
	Path string
	Root *scene.Node

	// BaseScale uniformly scales the asset so its largest dimension
	// matches the cache's target size.
	BaseScale float32
	Bounds    scene.AABB

	originalColors map[*scene.Material]core.Color
}

func newPrototype(path string, root *scene.Node, targetSize float32) (*Prototype, bool) {
	p := &Prototype{
		Path:           path,
		Root:           root,
		BaseScale:      1,
		originalColors: make(map[*scene.Material]core.Color),
	}

	bounds, ok := scene.LocalBounds(root)
	degenerate := !ok
	if ok {
		p.Bounds = bounds
		if largest := bounds.Size().MaxComponent(); largest > 1e-6 && targetSize > 0 {
			p.BaseScale = targetSize / largest
		} else {
			degenerate = true
		}
	}

	root.Walk(scene.VisitorFuncs{Mesh: func(_ *scene.Node, m *scene.Mesh) {
		if mat := m.Material; mat != nil && mat.Tintable {
			p.originalColors[mat] = mat.Albedo
		}
	}})

	return p, !degenerate
}

// OriginalColor returns the colour recorded at load time for the prototype
// material m was cloned from.
func (p *Prototype) OriginalColor(m *scene.Material) (core.Color, bool) {
	c, ok := p.originalColors[m.Source()]
	return c, ok
}

// HasOriginalColors reports whether any tintable material was recorded.
func (p *Prototype) HasOriginalColors() bool {
	return len(p.originalColors) > 0
}

// Instantiate returns an independent clone ready to be placed in a scene.
func (p *Prototype) Instantiate() *Instance {
	return &Instance{
		Node:      p.Root.Clone(),
		BaseScale: p.BaseScale,
		Prototype: p,
	}
}

// Instance is a clone of a prototype owned by exactly one scene object.
type Instance struct {
	Node      *scene.Node
	BaseScale float32
	Prototype *Prototype
}

// textures returns the distinct textures referenced by the prototype.
func (p *Prototype) textures() []*scene.Texture {
	seen := map[*scene.Texture]bool{}
	var out []*scene.Texture
	p.Root.Walk(scene.VisitorFuncs{Mesh: func(_ *scene.Node, m *scene.Mesh) {
		if m.Material == nil || m.Material.AlbedoTexture == nil {
			return
		}
		if t := m.Material.AlbedoTexture; !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}})
	return out
}
