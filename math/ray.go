package math

import "github.com/chewxy/math32"

// Ray is a half-line starting at Origin. Direction is expected to be unit length.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float32) Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Plane is the set of points p with Normal·p = D.
type Plane struct {
	Normal Vec3
	D      float32
}

// PlaneFromPoint builds the plane through point with the given normal.
func PlaneFromPoint(point, normal Vec3) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, D: n.Dot(point)}
}

// GroundPlane is the horizontal plane y = height.
func GroundPlane(height float32) Plane {
	return Plane{Normal: Vec3Up, D: height}
}

const parallelEpsilon = 1e-6

// IntersectPlane returns the point where r meets p. It fails when the ray is
// parallel to the plane or the plane lies behind the ray origin.
func (r Ray) IntersectPlane(p Plane) (Vec3, bool) {
	denom := p.Normal.Dot(r.Direction)
	if math32.Abs(denom) < parallelEpsilon {
		return Vec3{}, false
	}
	t := (p.D - p.Normal.Dot(r.Origin)) / denom
	if t < 0 {
		return Vec3{}, false
	}
	return r.At(t), true
}

// IntersectSphere returns the distance to the nearest intersection with the
// sphere, or false if the ray misses it.
func (r Ray) IntersectSphere(center Vec3, radius float32) (float32, bool) {
	oc := r.Origin.Sub(center)
	b := oc.Dot(r.Direction)
	c := oc.LengthSqr() - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math32.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}
