// Package gizmo manages the six per-axis scale handles shown around the
// selected object and the scale arithmetic behind dragging them.
package gizmo

import (
	"fmt"

	"go.uber.org/zap"

	"landscape-engine/core"
	"landscape-engine/math"
	"landscape-engine/scene"
)

// State of the handle set.
type State int

const (
	Hidden State = iota
	Visible
	Dragging
)

func (s State) String() string {
	switch s {
	case Visible:
		return "visible"
	case Dragging:
		return "dragging"
	}
	return "hidden"
}

const (
	// OffsetFactor pushes handles slightly outside the bounding box.
	OffsetFactor = 1.25
	// SizeFactor relates handle radius to the object's average extent.
	SizeFactor      = 0.08
	MinHandleRadius = 0.04
	MaxHandleRadius = 0.6

	// Sensitivity damps drag-to-scale conversion; higher is gentler.
	Sensitivity = 2.0
	MinScale    = 0.05
	MaxScale    = 100.0

	minDistance = 1e-4
)

var axisColors = [3]core.Color{
	{R: 0.9, G: 0.2, B: 0.2, A: 1},
	{R: 0.2, G: 0.8, B: 0.3, A: 1},
	{R: 0.25, G: 0.4, B: 0.95, A: 1},
}

// Handle is one draggable sphere bound to an axis direction.
type Handle struct {
	Axis     math.Axis
	Sign     float32 // +1 or -1
	Position math.Vec3
	Radius   float32

	Node      *scene.Node // sphere
	Connector *scene.Node // line from the object centre
}

// Direction is the world-space unit vector the handle points along.
func (h *Handle) Direction() math.Vec3 {
	return h.Axis.Unit().Mul(h.Sign)
}

func (h *Handle) String() string {
	sign := "+"
	if h.Sign < 0 {
		sign = "-"
	}
	return sign + h.Axis.String()
}

// DragState is captured when a handle drag starts.
type DragState struct {
	ObjectID      string
	Axis          math.Axis
	Sign          float32
	StartPoint    math.Vec3
	StartScale    math.Vec3
	Center        math.Vec3
	StartDistance float32
}

// Direction is the unit vector of the dragged handle.
func (d DragState) Direction() math.Vec3 {
	return d.Axis.Unit().Mul(d.Sign)
}

// CalculateNewScale converts a drag vector into a new scale. Only the dragged
// axis changes, by ratio 1 + projected / (StartDistance * Sensitivity); every
// axis of the result is clamped to [MinScale, MaxScale]. Degenerate input
// returns the start scale unmodified.
func CalculateNewScale(s DragState, dragVector math.Vec3) math.Vec3 {
	if s.StartDistance < minDistance || dragVector.LengthSqr() < minDistance*minDistance {
		return s.StartScale
	}

	projected := dragVector.Dot(s.Direction())
	ratio := 1 + projected/(s.StartDistance*Sensitivity)

	next := s.StartScale.WithComponent(s.Axis, s.StartScale.Component(s.Axis)*ratio)
	return next.Clamp(MinScale, MaxScale)
}

// HandleRadius is the sphere radius for an object with the given extents.
func HandleRadius(extents math.Vec3) float32 {
	avg := (extents.X + extents.Y + extents.Z) / 3
	return math.Clamp(avg*SizeFactor, MinHandleRadius, MaxHandleRadius)
}

// HandlePosition is where the handle for axis/sign sits.
func HandlePosition(center, extents math.Vec3, axis math.Axis, sign float32) math.Vec3 {
	offset := extents.Component(axis) / 2 * OffsetFactor
	return center.Add(axis.Unit().Mul(sign * offset))
}

type Options struct {
	Logger *zap.Logger
	// Releaser frees handle geometry. Optional.
	Releaser scene.Releaser
}

// Manager owns at most one handle set, attached under an overlay root.
type Manager struct {
	root     *scene.Node
	releaser scene.Releaser
	log      *zap.Logger
	sphere   *scene.Mesh

	state    State
	objectID string
	handles  []*Handle
	drag     DragState
}

// NewManager creates a manager attaching handles under root.
func NewManager(root *scene.Node, opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Manager{
		root:     root,
		releaser: opts.Releaser,
		log:      opts.Logger.Named("gizmo"),
		sphere:   scene.CreateSphere(1, 16, 8),
	}
}

func (m *Manager) State() State { return m.state }

func (m *Manager) ObjectID() string { return m.objectID }

func (m *Manager) Handles() []*Handle { return m.handles }

// Drag returns the active drag, if any.
func (m *Manager) Drag() (DragState, bool) {
	return m.drag, m.state == Dragging
}

// CreateHandles replaces any existing set with six handles around the box
// given by center and extents.
func (m *Manager) CreateHandles(objectID string, center, extents math.Vec3) {
	m.RemoveAllHandles()

	radius := HandleRadius(extents)
	for _, axis := range []math.Axis{math.AxisX, math.AxisY, math.AxisZ} {
		for _, sign := range []float32{1, -1} {
			h := &Handle{Axis: axis, Sign: sign, Radius: radius}
			h.Position = HandlePosition(center, extents, axis, sign)

			mesh := m.sphere.Clone()
			mesh.Material = scene.NewMaterial("Handle"+h.String(), axisColors[axis])
			mesh.Material.Unlit = true
			mesh.Material.Tintable = false
			h.Node = scene.NewMeshNode(fmt.Sprintf("handle%s", h), mesh)
			h.Node.SetPosition(h.Position)
			h.Node.SetScale(math.Splat(radius))

			h.Connector = scene.NewMeshNode(fmt.Sprintf("connector%s", h),
				scene.CreateLine("Connector"+h.String(), center, h.Position, axisColors[axis]))

			m.root.AddChild(h.Connector)
			m.root.AddChild(h.Node)
			m.handles = append(m.handles, h)
		}
	}

	m.objectID = objectID
	m.state = Visible
	m.log.Debug("handles created", zap.String("id", objectID), zap.Float32("radius", radius))
}

// UpdateHandles moves the existing set to track the object. It does nothing
// and returns false when objectID is not the tracked object.
func (m *Manager) UpdateHandles(objectID string, center, extents math.Vec3) bool {
	if len(m.handles) == 0 || objectID != m.objectID {
		return false
	}
	radius := HandleRadius(extents)
	for _, h := range m.handles {
		h.Position = HandlePosition(center, extents, h.Axis, h.Sign)
		h.Radius = radius
		h.Node.SetPosition(h.Position)
		h.Node.SetScale(math.Splat(radius))
		h.Connector.Mesh.SetLine(center, h.Position)
	}
	return true
}

// HitTest returns the handle nearest along ray, if any is hit.
func (m *Manager) HitTest(ray math.Ray) (*Handle, float32, bool) {
	var best *Handle
	var bestT float32
	for _, h := range m.handles {
		t, ok := ray.IntersectSphere(h.Position, h.Radius)
		if ok && (best == nil || t < bestT) {
			best, bestT = h, t
		}
	}
	return best, bestT, best != nil
}

// BeginDrag captures the drag of h starting at startPoint with the object's
// current scale.
func (m *Manager) BeginDrag(h *Handle, startPoint, startScale, center math.Vec3) DragState {
	m.drag = DragState{
		ObjectID:      m.objectID,
		Axis:          h.Axis,
		Sign:          h.Sign,
		StartPoint:    startPoint,
		StartScale:    startScale,
		Center:        center,
		StartDistance: h.Position.Distance(center),
	}
	m.state = Dragging
	return m.drag
}

// EndDrag leaves the dragging state.
func (m *Manager) EndDrag() {
	m.drag = DragState{}
	if len(m.handles) > 0 {
		m.state = Visible
	} else {
		m.state = Hidden
	}
}

// RemoveAllHandles detaches and frees every handle. Safe to call repeatedly.
func (m *Manager) RemoveAllHandles() {
	for _, h := range m.handles {
		h.Node.Dispose(m.releaser)
		h.Connector.Dispose(m.releaser)
	}
	m.handles = nil
	m.objectID = ""
	m.drag = DragState{}
	m.state = Hidden
}

// Dispose tears down the handle set.
func (m *Manager) Dispose() {
	m.RemoveAllHandles()
}
