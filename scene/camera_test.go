package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"

	"landscape-engine/math"
)

func TestOrbitCameraClampsPhiAndRadius(t *testing.T) {
	c := NewOrbitCamera(math.Vec3Zero, 20, math.Radians(60), 1)

	c.Orbit(0, 10)
	assert.InDelta(t, float64(MaxPhi), float64(c.Phi), 1e-6)
	c.Orbit(0, -10)
	assert.InDelta(t, float64(MinPhi), float64(c.Phi), 1e-6)

	c.Zoom(-1000)
	assert.Equal(t, c.MinRadius, c.Radius)
	c.Zoom(1e6)
	assert.Equal(t, c.MaxRadius, c.Radius)
}

func TestOrbitCameraPositionOnSphere(t *testing.T) {
	target := math.Vec3{X: 3, Z: -2}
	c := NewOrbitCamera(target, 10, math.Radians(60), 1)
	c.Theta = math32.Pi / 2
	c.Phi = math32.Pi / 4
	c.Update()

	assert.InDelta(t, 10, c.Position.Distance(target), 1e-4)
	// azimuth pi/2 puts the camera on +X of the target
	assert.Greater(t, c.Position.X, target.X)
	assert.InDelta(t, float64(target.Z), float64(c.Position.Z), 1e-4)
	assert.Greater(t, c.Position.Y, float32(0))
}

func TestOrbitCameraPanMovesTargetOnGround(t *testing.T) {
	c := NewOrbitCamera(math.Vec3Zero, 10, math.Radians(60), 1)
	// theta 0: camera sits on +Z looking toward -Z
	c.Pan(1, 0)
	assert.True(t, c.Target.ApproxEqual(math.Vec3{Z: -1}, 1e-5), "target %v", c.Target)

	c.Pan(0, 2)
	assert.True(t, c.Target.ApproxEqual(math.Vec3{X: 2, Z: -1}, 1e-5), "target %v", c.Target)
	assert.InDelta(t, 10, c.Position.Distance(c.Target), 1e-4)
}

func TestScreenToRayThroughCentreHitsTarget(t *testing.T) {
	c := NewOrbitCamera(math.Vec3{X: 1, Z: 1}, 15, math.Radians(60), 800.0/600.0)
	ray := c.ScreenToRay(400, 300, 800, 600)

	p, ok := ray.IntersectPlane(math.GroundPlane(0))
	assert.True(t, ok)
	assert.True(t, p.ApproxEqual(math.Vec3{X: 1, Z: 1}, 1e-3), "hit %v", p)
}

func TestFocusKeepsOrbit(t *testing.T) {
	c := NewOrbitCamera(math.Vec3Zero, 12, math.Radians(60), 1)
	c.Orbit(0.5, 0.1)
	theta, phi := c.Theta, c.Phi

	c.Focus(math.Vec3{X: 4, Z: 4})
	assert.Equal(t, theta, c.Theta)
	assert.Equal(t, phi, c.Phi)
	assert.InDelta(t, 12, c.Position.Distance(c.Target), 1e-4)
}
