package scene

import (
	"landscape-engine/core"
	"landscape-engine/math"
)

// DrawMode controls the primitive type used when rendering a mesh.
type DrawMode int

const (
	DrawTriangles DrawMode = iota
	DrawLines              // pairs of indices form line segments
)

// Mesh holds CPU-side vertex/index data.
// GPU upload is managed by the renderer backend.
type Mesh struct {
	Name     string
	Vertices []core.Vertex
	Indices  []uint32
	DrawMode DrawMode

	// Cached local-space AABB (computed by CreateMeshFromData).
	LocalAABB    AABB
	HasLocalAABB bool

	// Material holds surface shading properties. If nil, DefaultMaterial() is used.
	Material *Material

	// GPUData is set by the renderer backend. Bumping Revision makes the
	// backend re-upload the vertex data on the next draw.
	GPUData  interface{}
	Revision uint32
}

// CreateMeshFromData builds a Mesh and pre-computes its local-space AABB.
func CreateMeshFromData(name string, vertices []core.Vertex, indices []uint32) *Mesh {
	m := &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
	}
	m.recomputeAABB()
	return m
}

func (m *Mesh) recomputeAABB() {
	m.HasLocalAABB = len(m.Vertices) > 0
	if !m.HasLocalAABB {
		m.LocalAABB = AABB{}
		return
	}
	box := AABB{Min: m.Vertices[0].Position, Max: m.Vertices[0].Position}
	for _, v := range m.Vertices[1:] {
		box = box.Extend(v.Position)
	}
	m.LocalAABB = box
}

// Clone returns a mesh sharing geometry and material with m but with its own
// GPU state.
func (m *Mesh) Clone() *Mesh {
	return &Mesh{
		Name:         m.Name,
		Vertices:     m.Vertices,
		Indices:      m.Indices,
		DrawMode:     m.DrawMode,
		LocalAABB:    m.LocalAABB,
		HasLocalAABB: m.HasLocalAABB,
		Material:     m.Material,
	}
}

// CreateLine builds a single-segment line mesh from a to b.
func CreateLine(name string, a, b math.Vec3, c core.Color) *Mesh {
	m := CreateMeshFromData(name, []core.Vertex{
		{Position: a, Normal: math.Vec3Up, Color: c},
		{Position: b, Normal: math.Vec3Up, Color: c},
	}, []uint32{0, 1})
	m.DrawMode = DrawLines
	mat := NewMaterial(name+"Material", c)
	mat.Unlit = true
	mat.Tintable = false
	m.Material = mat
	return m
}

// SetLine moves the endpoints of a line mesh created by CreateLine in place.
func (m *Mesh) SetLine(a, b math.Vec3) {
	if len(m.Vertices) < 2 {
		return
	}
	// copy so a clone sharing the slice is unaffected
	verts := make([]core.Vertex, len(m.Vertices))
	copy(verts, m.Vertices)
	verts[0].Position = a
	verts[1].Position = b
	m.Vertices = verts
	m.recomputeAABB()
	m.Revision++
}

// CreateCube builds an axis-aligned cube of the given edge length centred on the origin.
func CreateCube(size float32) *Mesh {
	s := size / 2
	type face struct {
		n       math.Vec3
		corners [4]math.Vec3
	}
	faces := []face{
		{math.Vec3Front, [4]math.Vec3{{X: -s, Y: -s, Z: s}, {X: s, Y: -s, Z: s}, {X: s, Y: s, Z: s}, {X: -s, Y: s, Z: s}}},
		{math.Vec3Back, [4]math.Vec3{{X: s, Y: -s, Z: -s}, {X: -s, Y: -s, Z: -s}, {X: -s, Y: s, Z: -s}, {X: s, Y: s, Z: -s}}},
		{math.Vec3Up, [4]math.Vec3{{X: -s, Y: s, Z: s}, {X: s, Y: s, Z: s}, {X: s, Y: s, Z: -s}, {X: -s, Y: s, Z: -s}}},
		{math.Vec3Down, [4]math.Vec3{{X: -s, Y: -s, Z: -s}, {X: s, Y: -s, Z: -s}, {X: s, Y: -s, Z: s}, {X: -s, Y: -s, Z: s}}},
		{math.Vec3Right, [4]math.Vec3{{X: s, Y: -s, Z: s}, {X: s, Y: -s, Z: -s}, {X: s, Y: s, Z: -s}, {X: s, Y: s, Z: s}}},
		{math.Vec3Left, [4]math.Vec3{{X: -s, Y: -s, Z: -s}, {X: -s, Y: -s, Z: s}, {X: -s, Y: s, Z: s}, {X: -s, Y: s, Z: -s}}},
	}
	uvs := [4]math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

	vertices := make([]core.Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		for i, p := range f.corners {
			vertices = append(vertices, core.Vertex{Position: p, Normal: f.n, UV: uvs[i], Color: core.ColorWhite})
		}
		indices = append(indices, base, base+1, base+2, base+2, base+3, base)
	}
	return CreateMeshFromData("Cube", vertices, indices)
}
