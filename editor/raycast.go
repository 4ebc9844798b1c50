package editor

import (
	stdmath "math"

	"landscape-engine/math"
	"landscape-engine/scene"
)

// HitResult stores the result of a ray intersection test
type HitResult struct {
	Hit      bool
	ID       string // owning object
	Distance float32
	Point    math.Vec3
	Node     *scene.Node // mesh node that was hit
}

// objectSet is the part of the registry picking needs.
type objectSet interface {
	Each(fn func(id string, n *scene.Node))
}

// RaycastObjects tests a ray against every placed object and returns the
// closest hit. Ground, grid and overlay are never candidates.
func RaycastObjects(ray math.Ray, objects objectSet) HitResult {
	closest := HitResult{Distance: float32(stdmath.MaxFloat32)}

	objects.Each(func(id string, root *scene.Node) {
		if !root.Visible {
			return
		}
		// Broad phase: whole-object AABB
		bounds, ok := scene.WorldBounds(root)
		if !ok {
			return
		}
		t, hit := bounds.IntersectRay(ray)
		if !hit || t > closest.Distance {
			return
		}

		// Narrow phase: triangles of every mesh below the object root
		root.Walk(scene.VisitorFuncs{Mesh: func(n *scene.Node, m *scene.Mesh) {
			if m.DrawMode != scene.DrawTriangles {
				return
			}
			result := rayMeshIntersect(ray, n)
			if result.Hit && result.Distance < closest.Distance {
				result.ID = id
				closest = result
			}
		}})
	})

	return closest
}

// rayMeshIntersect performs per-triangle intersection using Möller–Trumbore algorithm
func rayMeshIntersect(ray math.Ray, node *scene.Node) HitResult {
	mesh := node.Mesh
	worldMatrix := node.GetWorldMatrix()
	closest := HitResult{Distance: float32(stdmath.MaxFloat32)}

	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		i0, i1, i2 := mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2]
		v0 := worldMatrix.MulVec3(mesh.Vertices[i0].Position)
		v1 := worldMatrix.MulVec3(mesh.Vertices[i1].Position)
		v2 := worldMatrix.MulVec3(mesh.Vertices[i2].Position)

		t, hit := mollerTrumbore(ray, v0, v1, v2)
		if hit && t < closest.Distance {
			closest.Hit = true
			closest.Distance = t
			closest.Point = ray.At(t)
			closest.Node = node
		}
	}

	return closest
}

// mollerTrumbore implements the Möller–Trumbore ray-triangle intersection algorithm
func mollerTrumbore(ray math.Ray, v0, v1, v2 math.Vec3) (float32, bool) {
	const epsilon = 0.0000001

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	if a > -epsilon && a < epsilon {
		return 0, false // parallel
	}

	f := 1.0 / a
	s := ray.Origin.Sub(v0)
	u := f * s.Dot(h)

	if u < 0.0 || u > 1.0 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)

	if v < 0.0 || u+v > 1.0 {
		return 0, false
	}

	t := f * edge2.Dot(q)
	return t, t > epsilon
}
