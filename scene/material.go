package scene

import "landscape-engine/core"

// Material describes surface appearance for a mesh. Albedo is the tint
// channel; it is multiplied with AlbedoTexture when one is set.
type Material struct {
	Name     string
	Albedo   core.Color
	Unlit    bool // output raw albedo/vertex colour, no lighting
	Tintable bool // Albedo may be overridden by a colour tint

	// Optional albedo texture. Uploaded lazily by the renderer.
	AlbedoTexture *Texture

	source *Material
}

// DefaultMaterial returns a plain white matte material.
func DefaultMaterial() *Material {
	return NewMaterial("Default", core.ColorWhite)
}

// NewMaterial creates a tintable lit material with the given albedo color.
func NewMaterial(name string, albedo core.Color) *Material {
	return &Material{
		Name:     name,
		Albedo:   albedo,
		Tintable: true,
	}
}

// Clone returns an independent copy remembering the material it came from.
func (m *Material) Clone() *Material {
	c := *m
	c.source = m.Source()
	return &c
}

// Source returns the material this one was cloned from, following the chain
// back to the original; it returns m itself for an original.
func (m *Material) Source() *Material {
	if m.source != nil {
		return m.source
	}
	return m
}
