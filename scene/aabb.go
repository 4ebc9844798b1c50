package scene

import "landscape-engine/math"

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// Extend grows the box to contain p.
func (b AABB) Extend(p math.Vec3) AABB {
	return AABB{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box containing both boxes.
func (b AABB) Union(o AABB) AABB {
	return AABB{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

func (b AABB) Center() math.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extents along each axis.
func (b AABB) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Transform returns the world-space AABB of the local box under m, testing all 8 corners.
func (b AABB) Transform(m math.Mat4) AABB {
	mn, mx := b.Min, b.Max
	corners := [8]math.Vec3{
		{X: mn.X, Y: mn.Y, Z: mn.Z},
		{X: mx.X, Y: mn.Y, Z: mn.Z},
		{X: mn.X, Y: mx.Y, Z: mn.Z},
		{X: mx.X, Y: mx.Y, Z: mn.Z},
		{X: mn.X, Y: mn.Y, Z: mx.Z},
		{X: mx.X, Y: mn.Y, Z: mx.Z},
		{X: mn.X, Y: mx.Y, Z: mx.Z},
		{X: mx.X, Y: mx.Y, Z: mx.Z},
	}
	first := m.MulVec3(corners[0])
	out := AABB{Min: first, Max: first}
	for _, c := range corners[1:] {
		out = out.Extend(m.MulVec3(c))
	}
	return out
}

// IntersectRay tests a ray against the box (slab method) and returns the entry distance.
func (b AABB) IntersectRay(ray math.Ray) (float32, bool) {
	tmin := float32(-1e30)
	tmax := float32(1e30)
	for _, a := range []math.Axis{math.AxisX, math.AxisY, math.AxisZ} {
		o := ray.Origin.Component(a)
		d := ray.Direction.Component(a)
		lo, hi := b.Min.Component(a), b.Max.Component(a)
		if d == 0 {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	}
	if tmax < 0 || tmin > tmax {
		return 0, false
	}
	if tmin < 0 {
		return 0, true
	}
	return tmin, true
}

// WorldBounds returns the world-space bounds of every mesh under n.
// It reports false when the subtree holds no geometry.
func WorldBounds(n *Node) (AABB, bool) {
	var box AABB
	found := false
	n.Walk(VisitorFuncs{Mesh: func(mn *Node, m *Mesh) {
		if !m.HasLocalAABB {
			return
		}
		wb := m.LocalAABB.Transform(mn.GetWorldMatrix())
		if !found {
			box, found = wb, true
			return
		}
		box = box.Union(wb)
	}})
	return box, found
}

// LocalBounds returns the bounds of the subtree under n as if n's own
// transform were the identity. Used to measure assets before placement.
func LocalBounds(n *Node) (AABB, bool) {
	var box AABB
	found := false
	var visit func(node *Node, m math.Mat4)
	visit = func(node *Node, m math.Mat4) {
		if node.Kind == KindMesh && node.Mesh != nil && node.Mesh.HasLocalAABB {
			wb := node.Mesh.LocalAABB.Transform(m)
			if found {
				box = box.Union(wb)
			} else {
				box, found = wb, true
			}
		}
		for _, c := range node.Children {
			visit(c, c.Transform.GetMatrix().Mul(m))
		}
	}
	visit(n, math.Mat4Identity())
	return box, found
}
