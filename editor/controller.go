package editor

import (
	"go.uber.org/zap"

	"landscape-engine/gizmo"
	"landscape-engine/math"
	"landscape-engine/planar"
	"landscape-engine/registry"
	"landscape-engine/scene"
)

// Camera control rates.
const (
	DefaultPanSpeed   = 8.0  // metres per second
	DefaultOrbitSpeed = 0.01 // radians per pixel
	DefaultZoomSpeed  = 0.5  // metres per wheel notch
	historyDepth      = 100
)

type dragKind int

const (
	dragNone dragKind = iota
	dragObject
	dragHandle
	dragOrbit
)

// Controller turns pointer, wheel and key input into camera motion,
// selection and object edits.
type Controller struct {
	camera  *scene.OrbitCamera
	objects *registry.Registry
	handles *gizmo.Manager
	mapper  planar.Mapper
	bus     *Bus
	log     *zap.Logger

	Input      InputState
	Selection  Selection
	History    *History
	StatusText string

	PanSpeed   float32
	OrbitSpeed float32
	ZoomSpeed  float32

	tool     Tool
	viewport math.Vec2

	drag       dragKind
	dragPlane  math.Plane
	dragOffset math.Vec3 // object position minus grab point, on the ground
	startPos   planar.Point
	startScale math.Vec3
}

// NewController wires a controller to the camera, objects and handles it
// drives. Events are published on bus.
func NewController(camera *scene.OrbitCamera, objects *registry.Registry, handles *gizmo.Manager,
	mapper planar.Mapper, bus *Bus, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		camera:     camera,
		objects:    objects,
		handles:    handles,
		mapper:     mapper,
		bus:        bus,
		log:        log.Named("controller"),
		History:    NewHistory(historyDepth),
		StatusText: "Ready",
		PanSpeed:   DefaultPanSpeed,
		OrbitSpeed: DefaultOrbitSpeed,
		ZoomSpeed:  DefaultZoomSpeed,
		viewport:   math.Vec2{X: 1, Y: 1},
	}
}

// Resize sets the viewport size used to turn cursor positions into rays.
func (c *Controller) Resize(width, height float32) {
	if width <= 0 || height <= 0 {
		return
	}
	c.viewport = math.Vec2{X: width, Y: height}
	c.camera.UpdateAspectRatio(width, height)
}

func (c *Controller) Tool() Tool { return c.tool }

// SetTool switches the active tool, ending any drag in progress.
func (c *Controller) SetTool(t Tool) {
	if t == c.tool {
		return
	}
	c.cancelDrag()
	c.tool = t
	c.StatusText = "Tool: " + t.String()
	c.SyncHandles()
}

// Dragging reports whether a pointer or orbit drag is in progress.
func (c *Controller) Dragging() bool { return c.drag != dragNone }

// Selected returns the selected id, or "".
func (c *Controller) Selected() string { return c.Selection.ID }

// Select makes id the selection. It returns false if id is not a live object.
func (c *Controller) Select(id string) bool {
	if _, ok := c.objects.Node(id); !ok {
		return false
	}
	if c.setSelection(id) {
		c.bus.Publish(ObjectSelected{ID: id})
	}
	return true
}

// setSelection updates the selection state and handles and reports whether
// the selection changed. It publishes nothing.
func (c *Controller) setSelection(id string) bool {
	changed := c.Selection.Set(id)
	if changed {
		c.cancelDrag()
		c.StatusText = "Selected: " + id
		c.log.Debug("selected", zap.String("id", id))
	}
	c.SyncHandles()
	return changed
}

// ClearSelection drops the selection and its handles.
func (c *Controller) ClearSelection() {
	c.cancelDrag()
	c.handles.RemoveAllHandles()
	if c.Selection.Clear() {
		c.StatusText = "Selection cleared"
		c.bus.Publish(SelectionCleared{})
	}
}

// SyncHandles makes the handle set match the selection, tool and current
// bounds of the selected object.
func (c *Controller) SyncHandles() {
	id := c.Selection.ID
	if c.tool != ToolScale || id == "" {
		c.handles.RemoveAllHandles()
		return
	}
	bounds, ok := c.objects.Bounds(id)
	if !ok {
		c.handles.RemoveAllHandles()
		return
	}
	if !c.handles.UpdateHandles(id, bounds.Center(), bounds.Size()) {
		c.handles.CreateHandles(id, bounds.Center(), bounds.Size())
	}
}

// --- Window-level input ---

// MouseDown handles a button press at window coordinates x, y.
func (c *Controller) MouseDown(button int, x, y float64) {
	c.Input.moveCursor(x, y)
	c.Input.setButton(button, true)
	switch button {
	case MouseLeft:
		c.PointerDown(c.rayAt(x, y))
	case MouseRight:
		if c.drag == dragNone {
			c.drag = dragOrbit
		}
	}
}

// MouseMove handles cursor motion.
func (c *Controller) MouseMove(x, y float64) {
	dx, dy := c.Input.moveCursor(x, y)
	switch c.drag {
	case dragOrbit:
		c.camera.Orbit(-float32(dx)*c.OrbitSpeed, -float32(dy)*c.OrbitSpeed)
	case dragObject, dragHandle:
		c.PointerMove(c.rayAt(x, y))
	}
}

// MouseUp handles a button release.
func (c *Controller) MouseUp(button int) {
	c.Input.setButton(button, false)
	switch button {
	case MouseLeft:
		c.PointerUp()
	case MouseRight:
		if c.drag == dragOrbit {
			c.drag = dragNone
		}
	}
}

// Scroll zooms the camera. The wheel is always consumed by the viewport so
// the host page must not scroll.
func (c *Controller) Scroll(dy float64) bool {
	if dy != 0 {
		c.camera.Zoom(-float32(dy) * c.ZoomSpeed)
	}
	return true
}

func (c *Controller) KeyDown(k Key) { c.Input.setKey(k, true) }
func (c *Controller) KeyUp(k Key)   { c.Input.setKey(k, false) }

// Blur drops held input after the window loses focus.
func (c *Controller) Blur() {
	c.Input.releaseAll()
	c.PointerUp()
	if c.drag == dragOrbit {
		c.drag = dragNone
	}
}

// Update applies held-key panning for a frame of dt seconds.
func (c *Controller) Update(dt float32) {
	forward := c.Input.axis([]Key{KeyW, KeyUp}, []Key{KeyS, KeyDown})
	right := c.Input.axis([]Key{KeyD, KeyRight}, []Key{KeyA, KeyLeft})
	if forward == 0 && right == 0 {
		return
	}
	step := c.PanSpeed * dt
	c.camera.Pan(forward*step, right*step)
}

// Focus centres the camera orbit on the selected object.
func (c *Controller) Focus() bool {
	bounds, ok := c.objects.Bounds(c.Selection.ID)
	if !ok {
		return false
	}
	c.camera.Focus(bounds.Center())
	return true
}

func (c *Controller) rayAt(x, y float64) math.Ray {
	return c.camera.ScreenToRay(float32(x), float32(y), c.viewport.X, c.viewport.Y)
}

// --- Ray-level input ---

// PointerDown handles a primary press along ray. Handles take priority over
// objects; a press on nothing clears the selection. Every hit publishes
// ObjectSelected, including hits on the object already selected. A body hit
// starts a move drag under both the move and scale tools.
func (c *Controller) PointerDown(ray math.Ray) {
	if c.drag == dragOrbit {
		return
	}
	if c.tool == ToolScale && c.handles.State() == gizmo.Visible && c.beginHandleDrag(ray) {
		c.bus.Publish(ObjectSelected{ID: c.handles.ObjectID()})
		return
	}

	hit := RaycastObjects(ray, c.objects)
	if !hit.Hit {
		c.ClearSelection()
		return
	}
	if _, ok := c.objects.Node(hit.ID); !ok {
		return
	}
	c.setSelection(hit.ID)
	c.bus.Publish(ObjectSelected{ID: hit.ID})
	if c.tool != ToolNone {
		c.beginObjectDrag(hit.ID, ray)
	}
}

// PointerMove continues an object or handle drag along ray.
func (c *Controller) PointerMove(ray math.Ray) {
	switch c.drag {
	case dragObject:
		c.continueObjectDrag(ray)
	case dragHandle:
		c.continueHandleDrag(ray)
	}
}

// PointerUp ends any primary drag and records it for undo.
func (c *Controller) PointerUp() {
	id := c.Selection.ID
	switch c.drag {
	case dragObject:
		if d, ok := c.objects.Descriptor(id); ok && d.Position != c.startPos {
			c.History.Push(&MoveCommand{target: c, ID: id, OldPos: c.startPos, NewPos: d.Position})
		}
	case dragHandle:
		c.handles.EndDrag()
		if s, ok := c.objects.Scale(id); ok && s != c.startScale {
			c.History.Push(&ScaleCommand{target: c, ID: id, OldScale: c.startScale, NewScale: s})
		}
	default:
		return
	}
	c.drag = dragNone
}

func (c *Controller) cancelDrag() {
	if c.drag == dragHandle {
		c.handles.EndDrag()
	}
	if c.drag != dragOrbit {
		c.drag = dragNone
	}
}

func (c *Controller) beginObjectDrag(id string, ray math.Ray) {
	d, ok := c.objects.Descriptor(id)
	if !ok {
		return
	}
	grab, ok := ray.IntersectPlane(math.GroundPlane(0))
	if !ok {
		return
	}
	g := c.mapper.ToWorld(d.Position)
	c.dragOffset = math.Vec3{X: float32(g.X) - grab.X, Z: float32(g.Z) - grab.Z}
	c.startPos = d.Position
	c.drag = dragObject
}

func (c *Controller) continueObjectDrag(ray math.Ray) {
	hit, ok := ray.IntersectPlane(math.GroundPlane(0))
	if !ok {
		return
	}
	w := hit.Add(c.dragOffset)
	p := c.mapper.ToPlanar(planar.GroundPoint{X: float64(w.X), Z: float64(w.Z)})
	c.moveObject(c.Selection.ID, p)
}

func (c *Controller) beginHandleDrag(ray math.Ray) bool {
	h, _, ok := c.handles.HitTest(ray)
	if !ok {
		return false
	}
	id := c.handles.ObjectID()
	scale, ok := c.objects.Scale(id)
	if !ok {
		return false
	}
	bounds, _ := c.objects.Bounds(id)

	plane := c.handlePlane(h)
	start, ok := ray.IntersectPlane(plane)
	if !ok {
		return false
	}
	c.handles.BeginDrag(h, start, scale, bounds.Center())
	c.dragPlane = plane
	c.startScale = scale
	c.drag = dragHandle
	return true
}

// handlePlane is the plane a handle is dragged across: horizontal for the
// x and z handles, vertical and facing the camera for the y handles.
func (c *Controller) handlePlane(h *gizmo.Handle) math.Plane {
	if h.Axis != math.AxisY {
		return math.PlaneFromPoint(h.Position, math.Vec3Up)
	}
	n := c.camera.Position.Sub(h.Position)
	n.Y = 0
	if n.LengthSqr() < 1e-8 {
		n = math.Vec3Front
	}
	return math.PlaneFromPoint(h.Position, n)
}

func (c *Controller) continueHandleDrag(ray math.Ray) {
	d, ok := c.handles.Drag()
	if !ok {
		return
	}
	p, ok := ray.IntersectPlane(c.dragPlane)
	if !ok {
		return
	}
	c.scaleObject(d.ObjectID, gizmo.CalculateNewScale(d, p.Sub(d.StartPoint)))
}

// moveObject implements objectEditor.
func (c *Controller) moveObject(id string, p planar.Point) {
	d, ok := c.objects.Descriptor(id)
	if !ok || d.Position == p {
		return
	}
	c.objects.SetPlanarPosition(id, p)
	if c.handles.ObjectID() == id {
		c.SyncHandles()
	}
	c.bus.Publish(ObjectUpdated{ID: id, Changes: Changes{Position: &p}})
}

// scaleObject implements objectEditor. Only changed components are reported.
func (c *Controller) scaleObject(id string, s math.Vec3) {
	old, ok := c.objects.Scale(id)
	if !ok || old == s {
		return
	}
	c.objects.SetScale(id, s)
	if c.handles.ObjectID() == id {
		c.SyncHandles()
	}

	var ch Changes
	if s.X != old.X {
		ch.ScaleX = &s.X
	}
	if s.Y != old.Y {
		ch.ScaleY = &s.Y
	}
	if s.Z != old.Z {
		ch.ScaleZ = &s.Z
	}
	c.bus.Publish(ObjectUpdated{ID: id, Changes: ch})
}

// Undo reverts the last finished drag.
func (c *Controller) Undo() bool {
	if c.drag == dragObject || c.drag == dragHandle {
		return false
	}
	if c.History.Undo() {
		c.StatusText = "Undo"
		return true
	}
	return false
}

// Redo reapplies the last undone drag.
func (c *Controller) Redo() bool {
	if c.drag == dragObject || c.drag == dragHandle {
		return false
	}
	if c.History.Redo() {
		c.StatusText = "Redo"
		return true
	}
	return false
}
