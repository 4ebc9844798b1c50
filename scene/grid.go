package scene

import (
	"landscape-engine/core"
	"landscape-engine/math"
)

// CreateGrid builds a flat grid mesh rendered as lines.
//
//	size:      total world-space extent, from -size/2 to +size/2
//	divisions: number of cells along each axis
//
// The two centre lines are drawn darker than the rest.
func CreateGrid(size float32, divisions int) *Mesh {
	if divisions < 1 {
		divisions = 1
	}

	half := size / 2
	step := size / float32(divisions)

	minor := core.Color{R: 0.85, G: 0.85, B: 0.85, A: 1}
	major := core.Color{R: 0.45, G: 0.45, B: 0.45, A: 1}

	var vertices []core.Vertex
	var indices []uint32

	addLine := func(a, b math.Vec3, c core.Color) {
		base := uint32(len(vertices))
		vertices = append(vertices,
			core.Vertex{Position: a, Normal: math.Vec3Up, Color: c},
			core.Vertex{Position: b, Normal: math.Vec3Up, Color: c},
		)
		indices = append(indices, base, base+1)
	}

	for i := 0; i <= divisions; i++ {
		t := -half + float32(i)*step
		c := minor
		if i == divisions/2 {
			c = major
		}
		addLine(math.Vec3{X: t, Z: -half}, math.Vec3{X: t, Z: half}, c)
		addLine(math.Vec3{X: -half, Z: t}, math.Vec3{X: half, Z: t}, c)
	}

	m := CreateMeshFromData("Grid", vertices, indices)
	m.DrawMode = DrawLines

	mat := DefaultMaterial()
	mat.Name = "GridMaterial"
	mat.Unlit = true
	mat.Tintable = false
	m.Material = mat

	return m
}
