// Package materials tints scene objects without leaking colour changes
// between instances that share prototype materials.
package materials

import (
	"landscape-engine/core"
	"landscape-engine/scene"
)

// ColorRecord answers which colour a prototype material had at load time.
// *assets.Prototype implements it.
type ColorRecord interface {
	OriginalColor(m *scene.Material) (core.Color, bool)
	HasOriginalColors() bool
}

// owned reports whether m is a per-instance copy rather than a material
// shared with a prototype.
func owned(m *scene.Material) bool {
	return m.Source() != m
}

// ApplyColor sets the albedo of every tintable material under node to c.
// Shared materials are first replaced by a copy owned by the mesh. It returns
// the number of materials tinted.
func ApplyColor(node *scene.Node, c core.Color) int {
	tinted := 0
	node.Walk(scene.VisitorFuncs{Mesh: func(_ *scene.Node, m *scene.Mesh) {
		if m.Material == nil || !m.Material.Tintable {
			return
		}
		if !owned(m.Material) {
			m.Material = m.Material.Clone()
		}
		m.Material.Albedo = c
		tinted++
	}})
	return tinted
}

// RestoreOriginal resets every recorded material under node to its load-time
// colour. Each affected material is cloned first, so the reset never touches
// a material another instance still references. Nothing happens when the
// record holds no colours.
func RestoreOriginal(node *scene.Node, rec ColorRecord) int {
	if rec == nil || !rec.HasOriginalColors() {
		return 0
	}
	restored := 0
	node.Walk(scene.VisitorFuncs{Mesh: func(_ *scene.Node, m *scene.Mesh) {
		if m.Material == nil {
			return
		}
		orig, ok := rec.OriginalColor(m.Material)
		if !ok {
			return
		}
		m.Material = m.Material.Clone()
		m.Material.Albedo = orig
		restored++
	}})
	return restored
}
