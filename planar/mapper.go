// Package planar maps between the 2D planning surface and the 3D ground plane.
package planar

// Point is a position on the planning surface in pixels, origin at the
// top-left corner, Y growing downwards.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GroundPoint is a position on the world ground plane (y = 0) in metres,
// origin at the centre of the ground.
type GroundPoint struct {
	X float64
	Z float64
}

// Mapper converts between planar and world coordinates. The planning surface
// is CanvasWidth pixels wide and keeps the aspect ratio of the world area.
type Mapper struct {
	CanvasWidth float64
	WorldWidth  float64
	WorldHeight float64
}

// NewMapper returns a Mapper for a canvas of the given pixel width covering
// a worldWidth x worldHeight metre area.
func NewMapper(canvasWidth, worldWidth, worldHeight float64) Mapper {
	return Mapper{CanvasWidth: canvasWidth, WorldWidth: worldWidth, WorldHeight: worldHeight}
}

// Scale is the number of canvas pixels per world metre.
func (m Mapper) Scale() float64 {
	return m.CanvasWidth / m.WorldWidth
}

// CanvasHeight is the pixel height of the planning surface.
func (m Mapper) CanvasHeight() float64 {
	return m.CanvasWidth * m.WorldHeight / m.WorldWidth
}

// ToWorld maps a planar point onto the ground plane.
func (m Mapper) ToWorld(p Point) GroundPoint {
	s := m.Scale()
	return GroundPoint{
		X: p.X/s - m.WorldWidth/2,
		Z: p.Y/s - m.WorldHeight/2,
	}
}

// ToPlanar is the inverse of ToWorld.
func (m Mapper) ToPlanar(g GroundPoint) Point {
	s := m.Scale()
	return Point{
		X: (g.X + m.WorldWidth/2) * s,
		Y: (g.Z + m.WorldHeight/2) * s,
	}
}

// Contains reports whether p lies on the planning surface.
func (m Mapper) Contains(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= m.CanvasWidth && p.Y <= m.CanvasHeight()
}
