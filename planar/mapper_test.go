package planar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapperCorners(t *testing.T) {
	m := NewMapper(800, 20, 10)

	assert.Equal(t, 40.0, m.Scale())
	assert.Equal(t, 400.0, m.CanvasHeight())

	assert.Equal(t, GroundPoint{X: -10, Z: -5}, m.ToWorld(Point{}))
	assert.Equal(t, GroundPoint{}, m.ToWorld(Point{X: 400, Y: 200}))
	assert.Equal(t, GroundPoint{X: 10, Z: 5}, m.ToWorld(Point{X: 800, Y: 400}))
}

func TestMapperRoundTrip(t *testing.T) {
	m := NewMapper(1000, 30, 17)
	h := m.CanvasHeight()

	for x := 0.0; x <= m.CanvasWidth; x += 37.3 {
		for y := 0.0; y <= h; y += 23.9 {
			p := Point{X: x, Y: y}
			back := m.ToPlanar(m.ToWorld(p))
			assert.InDelta(t, p.X, back.X, 1e-6)
			assert.InDelta(t, p.Y, back.Y, 1e-6)
		}
	}
}

func TestMapperContains(t *testing.T) {
	m := NewMapper(800, 20, 10)
	assert.True(t, m.Contains(Point{X: 0, Y: 0}))
	assert.True(t, m.Contains(Point{X: 800, Y: 400}))
	assert.False(t, m.Contains(Point{X: -1, Y: 10}))
	assert.False(t, m.Contains(Point{X: 10, Y: 401}))
}
