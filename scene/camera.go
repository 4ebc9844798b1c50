package scene

import (
	"github.com/chewxy/math32"

	reMath "landscape-engine/math"
)

// Camera represents a perspective view camera looking at a point.
type Camera struct {
	Position    reMath.Vec3
	Target      reMath.Vec3
	Up          reMath.Vec3
	FOV         float32
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32

	// Cached matrices
	viewMatrix       reMath.Mat4
	projectionMatrix reMath.Mat4
	viewProjMatrix   reMath.Mat4
	dirty            bool
}

func NewCamera(fov, aspectRatio, nearPlane, farPlane float32) *Camera {
	return &Camera{
		Position:    reMath.Vec3Back,
		Target:      reMath.Vec3Zero,
		Up:          reMath.Vec3Up,
		FOV:         fov,
		AspectRatio: aspectRatio,
		NearPlane:   nearPlane,
		FarPlane:    farPlane,
		dirty:       true,
	}
}

func (c *Camera) UpdateAspectRatio(width, height float32) {
	if height > 0 {
		c.AspectRatio = width / height
		c.dirty = true
	}
}

func (c *Camera) SetPosition(pos reMath.Vec3) {
	c.Position = pos
	c.dirty = true
}

func (c *Camera) LookAt(target reMath.Vec3) {
	c.Target = target
	c.dirty = true
}

func (c *Camera) GetViewMatrix() reMath.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.viewMatrix
}

func (c *Camera) GetProjectionMatrix() reMath.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.projectionMatrix
}

// GetViewProjectionMatrix returns view followed by projection.
func (c *Camera) GetViewProjectionMatrix() reMath.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.viewProjMatrix
}

func (c *Camera) GetForward() reMath.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

func (c *Camera) GetRight() reMath.Vec3 {
	return c.GetForward().Cross(c.Up).Normalize()
}

func (c *Camera) updateMatrices() {
	c.viewMatrix = reMath.Mat4LookAt(c.Position, c.Target, c.Up)
	c.projectionMatrix = reMath.Mat4Perspective(c.FOV, c.AspectRatio, c.NearPlane, c.FarPlane)
	c.viewProjMatrix = c.viewMatrix.Mul(c.projectionMatrix)
	c.dirty = false
}

// ScreenToRay converts a screen-space position (pixels, origin top-left) to a
// world-space ray leaving the camera.
func (c *Camera) ScreenToRay(x, y, screenWidth, screenHeight float32) reMath.Ray {
	ndcX := (2*x)/screenWidth - 1
	ndcY := 1 - (2*y)/screenHeight // flip Y

	invProj := c.GetProjectionMatrix().Inverse()
	invView := c.GetViewMatrix().Inverse()

	viewNear := invProj.MulVec(reMath.Vec4{X: ndcX, Y: ndcY, Z: -1, W: 1})
	viewNear = viewNear.Div(viewNear.W)
	worldNear := invView.MulVec3(viewNear.ToVec3())

	return reMath.Ray{
		Origin:    c.Position,
		Direction: worldNear.Sub(c.Position).Normalize(),
	}
}

// Orbit limits.
const (
	MinPhi = 0.05
	MaxPhi = math32.Pi/2 - 0.05
)

// OrbitCamera orbits a movable target on a sphere. Theta is the azimuth
// around +Y measured from +Z, Phi the polar angle from +Y.
type OrbitCamera struct {
	Camera
	Theta     float32
	Phi       float32
	Radius    float32
	MinRadius float32
	MaxRadius float32
}

func NewOrbitCamera(target reMath.Vec3, radius, fov, aspectRatio float32) *OrbitCamera {
	c := &OrbitCamera{
		Camera:    *NewCamera(fov, aspectRatio, 0.1, 1000.0),
		Theta:     0,
		Phi:       math32.Pi / 4,
		Radius:    radius,
		MinRadius: 2,
		MaxRadius: 200,
	}
	c.Target = target
	c.Update()
	return c
}

// Update clamps the orbit parameters, then recomputes the position from
// target + radius * direction(theta, phi) and re-aims at the target.
func (c *OrbitCamera) Update() {
	c.Phi = reMath.Clamp(c.Phi, MinPhi, MaxPhi)
	if c.MaxRadius > c.MinRadius {
		c.Radius = reMath.Clamp(c.Radius, c.MinRadius, c.MaxRadius)
	}

	sinPhi, cosPhi := math32.Sincos(c.Phi)
	sinTheta, cosTheta := math32.Sincos(c.Theta)

	offset := reMath.Vec3{
		X: c.Radius * sinPhi * sinTheta,
		Y: c.Radius * cosPhi,
		Z: c.Radius * sinPhi * cosTheta,
	}

	c.Position = c.Target.Add(offset)
	c.dirty = true
}

func (c *OrbitCamera) Orbit(deltaTheta, deltaPhi float32) {
	c.Theta += deltaTheta
	c.Phi += deltaPhi
	c.Update()
}

func (c *OrbitCamera) Zoom(delta float32) {
	c.Radius += delta
	c.Update()
}

// Pan moves the target along the ground, forward/right relative to the
// current view direction.
func (c *OrbitCamera) Pan(forward, right float32) {
	fwd := c.Target.Sub(c.Position)
	fwd.Y = 0
	if fwd.LengthSqr() == 0 {
		return
	}
	fwd = fwd.Normalize()
	r := fwd.Cross(reMath.Vec3Up).Normalize()

	c.Target = c.Target.Add(fwd.Mul(forward)).Add(r.Mul(right))
	c.Update()
}

// Focus re-centres the orbit on point, keeping angles and radius.
func (c *OrbitCamera) Focus(point reMath.Vec3) {
	c.Target = point
	c.Update()
}
