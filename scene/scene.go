package scene

import (
	"landscape-engine/core"
	"landscape-engine/math"
)

// Scene holds the world graph plus an overlay graph for editor affordances
// (handles, connector lines) that never take part in object picking.
type Scene struct {
	Root       *Node
	Overlay    *Node
	Ground     *Node
	Grid       *Node
	Background core.Color
	Ambient    core.Color
}

// Light types
const (
	LightTypeDirectional = iota
	LightTypePoint
)

// Light represents a light source
type Light struct {
	Type      int
	Direction math.Vec3
	Color     core.Color
	Intensity float32
}

// NewScene creates an empty world with a sun light, a ground plane of the
// given size and a grid covering it.
func NewScene(groundWidth, groundDepth float32) *Scene {
	s := &Scene{
		Root:       NewNode("Root"),
		Overlay:    NewNode("Overlay"),
		Background: core.Color{R: 0.53, G: 0.72, B: 0.9, A: 1},
		Ambient:    core.Color{R: 0.35, G: 0.35, B: 0.35, A: 1},
	}

	sun := NewLightNode("Sun", &Light{
		Type:      LightTypeDirectional,
		Direction: math.Vec3{X: 0.4, Y: -1, Z: -0.3}.Normalize(),
		Color:     core.ColorWhite,
		Intensity: 0.9,
	})
	s.Root.AddChild(sun)

	ground := NewMeshNode("Ground", CreatePlane(groundWidth, groundDepth, 1))
	ground.Mesh.Material = NewMaterial("GroundMaterial", core.Color{R: 0.36, G: 0.6, B: 0.3, A: 1})
	s.Ground = ground
	s.Root.AddChild(ground)

	size := groundWidth
	if groundDepth > size {
		size = groundDepth
	}
	grid := NewMeshNode("Grid", CreateGrid(size, int(size)))
	grid.SetPosition(math.Vec3{Y: 0.01})
	s.Grid = grid
	s.Root.AddChild(grid)

	return s
}

func (s *Scene) AddNode(node *Node) {
	s.Root.AddChild(node)
}

func (s *Scene) RemoveNode(node *Node) {
	s.Root.RemoveChild(node)
}

// Lights returns every light in the world graph.
func (s *Scene) Lights() []*Light {
	var lights []*Light
	s.Root.Walk(VisitorFuncs{Light: func(_ *Node, l *Light) {
		lights = append(lights, l)
	}})
	return lights
}

// GetVisibleNodes returns all visible mesh nodes of the world and the overlay.
// Hidden groups hide their whole subtree.
func (s *Scene) GetVisibleNodes() []*Node {
	var visible []*Node
	var collect func(n *Node)
	collect = func(n *Node) {
		if !n.Visible {
			return
		}
		if n.Kind == KindMesh && n.Mesh != nil {
			visible = append(visible, n)
		}
		for _, c := range n.Children {
			collect(c)
		}
	}
	collect(s.Root)
	collect(s.Overlay)
	return visible
}
