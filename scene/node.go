package scene

import (
	"landscape-engine/core"
	"landscape-engine/math"
)

// NodeKind is the closed set of node variants the scene graph can hold.
type NodeKind int

const (
	KindGroup NodeKind = iota
	KindMesh
	KindLight
)

// Node represents an object in the scene graph
type Node struct {
	Name      string
	Kind      NodeKind
	Transform core.Transform
	Parent    *Node
	Children  []*Node
	Mesh      *Mesh  // set for KindMesh
	Light     *Light // set for KindLight
	Visible   bool

	// Cached world transform
	worldMatrixDirty bool
	worldMatrix      math.Mat4
}

// NewNode creates an empty group node.
func NewNode(name string) *Node {
	return &Node{
		Name:             name,
		Kind:             KindGroup,
		Transform:        core.NewTransform(),
		Visible:          true,
		worldMatrixDirty: true,
	}
}

func NewMeshNode(name string, mesh *Mesh) *Node {
	n := NewNode(name)
	n.Kind = KindMesh
	n.Mesh = mesh
	return n
}

func NewLightNode(name string, light *Light) *Node {
	n := NewNode(name)
	n.Kind = KindLight
	n.Light = light
	return n
}

func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
	child.MarkWorldMatrixDirty()
}

func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			child.MarkWorldMatrixDirty()
			return
		}
	}
}

// Detach removes the node from its parent, if any.
func (n *Node) Detach() {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

func (n *Node) GetWorldMatrix() math.Mat4 {
	if n.worldMatrixDirty {
		localMatrix := n.Transform.GetMatrix()
		if n.Parent != nil {
			n.worldMatrix = localMatrix.Mul(n.Parent.GetWorldMatrix())
		} else {
			n.worldMatrix = localMatrix
		}
		n.worldMatrixDirty = false
	}
	return n.worldMatrix
}

func (n *Node) MarkWorldMatrixDirty() {
	n.worldMatrixDirty = true
	for _, child := range n.Children {
		child.MarkWorldMatrixDirty()
	}
}

func (n *Node) SetPosition(pos math.Vec3) {
	n.Transform.Position = pos
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetRotation(rot math.Quaternion) {
	n.Transform.Rotation = rot
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetScale(scale math.Vec3) {
	n.Transform.Scale = scale
	n.MarkWorldMatrixDirty()
}

// Visitor is called for every node of a graph, dispatched on the node kind.
type Visitor interface {
	VisitGroup(n *Node)
	VisitMesh(n *Node, m *Mesh)
	VisitLight(n *Node, l *Light)
}

// VisitorFuncs adapts optional functions to a Visitor. Nil fields are skipped.
type VisitorFuncs struct {
	Group func(n *Node)
	Mesh  func(n *Node, m *Mesh)
	Light func(n *Node, l *Light)
}

func (f VisitorFuncs) VisitGroup(n *Node) {
	if f.Group != nil {
		f.Group(n)
	}
}

func (f VisitorFuncs) VisitMesh(n *Node, m *Mesh) {
	if f.Mesh != nil {
		f.Mesh(n, m)
	}
}

func (f VisitorFuncs) VisitLight(n *Node, l *Light) {
	if f.Light != nil {
		f.Light(n, l)
	}
}

// Walk visits n and its descendants depth-first, parents before children.
func (n *Node) Walk(v Visitor) {
	switch n.Kind {
	case KindMesh:
		if n.Mesh != nil {
			v.VisitMesh(n, n.Mesh)
		}
	case KindLight:
		if n.Light != nil {
			v.VisitLight(n, n.Light)
		}
	default:
		v.VisitGroup(n)
	}
	for _, child := range n.Children {
		child.Walk(v)
	}
}

// Clone copies the node graph. Meshes are copied shallowly: geometry slices
// and material pointers are shared with the source until a caller replaces
// them, GPU state is not.
func (n *Node) Clone() *Node {
	c := &Node{
		Name:             n.Name,
		Kind:             n.Kind,
		Transform:        n.Transform,
		Visible:          n.Visible,
		worldMatrixDirty: true,
	}
	if n.Mesh != nil {
		c.Mesh = n.Mesh.Clone()
	}
	if n.Light != nil {
		l := *n.Light
		c.Light = &l
	}
	for _, child := range n.Children {
		c.AddChild(child.Clone())
	}
	return c
}

// Releaser frees GPU resources held for CPU-side scene data.
type Releaser interface {
	ReleaseMesh(m *Mesh)
	ReleaseTexture(t *Texture)
}

// Dispose detaches n and releases the GPU buffers of every mesh under it.
// Textures are left alone; they belong to whoever loaded them.
// A nil releaser only detaches.
func (n *Node) Dispose(r Releaser) {
	n.Detach()
	if r == nil {
		return
	}
	n.Walk(VisitorFuncs{Mesh: func(_ *Node, m *Mesh) {
		r.ReleaseMesh(m)
	}})
}
