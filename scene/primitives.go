package scene

import (
	"github.com/chewxy/math32"

	"landscape-engine/core"
	"landscape-engine/math"
)

// CreateSphere generates a UV-sphere mesh
func CreateSphere(radius float32, segments, rings int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	if rings < 2 {
		rings = 2
	}

	var vertices []core.Vertex
	var indices []uint32

	for ring := 0; ring <= rings; ring++ {
		phi := float32(ring) * math32.Pi / float32(rings)
		sinPhi, cosPhi := math32.Sincos(phi)

		for seg := 0; seg <= segments; seg++ {
			theta := float32(seg) * 2 * math32.Pi / float32(segments)
			sinTheta, cosTheta := math32.Sincos(theta)

			normal := math.Vec3{X: sinPhi * cosTheta, Y: cosPhi, Z: sinPhi * sinTheta}
			vertices = append(vertices, core.Vertex{
				Position: normal.Mul(radius),
				Normal:   normal,
				UV:       math.Vec2{X: float32(seg) / float32(segments), Y: float32(ring) / float32(rings)},
				Color:    core.ColorWhite,
			})
		}
	}

	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			current := uint32(ring*(segments+1) + seg)
			next := current + uint32(segments+1)

			indices = append(indices, current, next, current+1)
			indices = append(indices, current+1, next, next+1)
		}
	}

	return CreateMeshFromData("Sphere", vertices, indices)
}

// CreateCone generates a closed cone standing on the XZ plane with its tip at y = height.
func CreateCone(radius, height float32, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}

	var vertices []core.Vertex
	var indices []uint32

	tip := math.Vec3{Y: height}
	slope := radius / height
	for seg := 0; seg < segments; seg++ {
		a0 := float32(seg) * 2 * math32.Pi / float32(segments)
		a1 := float32(seg+1) * 2 * math32.Pi / float32(segments)
		s0, c0 := math32.Sincos(a0)
		s1, c1 := math32.Sincos(a1)
		p0 := math.Vec3{X: c0 * radius, Z: s0 * radius}
		p1 := math.Vec3{X: c1 * radius, Z: s1 * radius}
		n0 := math.Vec3{X: c0, Y: slope, Z: s0}.Normalize()
		n1 := math.Vec3{X: c1, Y: slope, Z: s1}.Normalize()

		base := uint32(len(vertices))
		vertices = append(vertices,
			core.Vertex{Position: p0, Normal: n0, Color: core.ColorWhite},
			core.Vertex{Position: tip, Normal: n0.Add(n1).Normalize(), Color: core.ColorWhite},
			core.Vertex{Position: p1, Normal: n1, Color: core.ColorWhite},
			// cap
			core.Vertex{Position: p0, Normal: math.Vec3Down, Color: core.ColorWhite},
			core.Vertex{Position: p1, Normal: math.Vec3Down, Color: core.ColorWhite},
			core.Vertex{Position: math.Vec3Zero, Normal: math.Vec3Down, Color: core.ColorWhite},
		)
		indices = append(indices, base, base+1, base+2, base+3, base+4, base+5)
	}

	return CreateMeshFromData("Cone", vertices, indices)
}

// CreatePlane generates a horizontal XZ plane centred on the origin, facing +Y.
func CreatePlane(width, depth float32, subdivisions int) *Mesh {
	if subdivisions < 1 {
		subdivisions = 1
	}

	var vertices []core.Vertex
	var indices []uint32

	halfW := width / 2
	halfD := depth / 2

	for z := 0; z <= subdivisions; z++ {
		for x := 0; x <= subdivisions; x++ {
			u := float32(x) / float32(subdivisions)
			v := float32(z) / float32(subdivisions)

			vertices = append(vertices, core.Vertex{
				Position: math.Vec3{X: -halfW + u*width, Z: -halfD + v*depth},
				Normal:   math.Vec3Up,
				UV:       math.Vec2{X: u, Y: v},
				Color:    core.ColorWhite,
			})
		}
	}

	for z := 0; z < subdivisions; z++ {
		for x := 0; x < subdivisions; x++ {
			topLeft := uint32(z*(subdivisions+1) + x)
			topRight := topLeft + 1
			bottomLeft := topLeft + uint32(subdivisions+1)
			bottomRight := bottomLeft + 1

			indices = append(indices, topLeft, bottomLeft, topRight)
			indices = append(indices, topRight, bottomLeft, bottomRight)
		}
	}

	return CreateMeshFromData("Plane", vertices, indices)
}
