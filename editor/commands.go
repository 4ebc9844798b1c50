package editor

import (
	"landscape-engine/math"
	"landscape-engine/planar"
)

// Command represents an undoable editor action
type Command interface {
	Execute()
	Undo()
	Description() string
}

// History manages undo/redo stacks
type History struct {
	undoStack []Command
	redoStack []Command
	maxDepth  int
}

// NewHistory creates a new history with the given max undo depth
func NewHistory(maxDepth int) *History {
	if maxDepth <= 0 {
		maxDepth = 1
	}
	return &History{
		undoStack: make([]Command, 0, maxDepth),
		redoStack: make([]Command, 0, maxDepth),
		maxDepth:  maxDepth,
	}
}

// Do executes a command and pushes it to the undo stack
func (h *History) Do(cmd Command) {
	cmd.Execute()
	h.Push(cmd)
}

// Push records a command whose effect has already been applied, such as the
// result of a finished drag.
func (h *History) Push(cmd Command) {
	h.undoStack = append(h.undoStack, cmd)
	if len(h.undoStack) > h.maxDepth {
		h.undoStack = h.undoStack[1:]
	}
	// Clear redo stack on new action
	h.redoStack = h.redoStack[:0]
}

// Undo reverts the last action
func (h *History) Undo() bool {
	if len(h.undoStack) == 0 {
		return false
	}
	cmd := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	cmd.Undo()
	h.redoStack = append(h.redoStack, cmd)
	return true
}

// Redo reapplies the last undone action
func (h *History) Redo() bool {
	if len(h.redoStack) == 0 {
		return false
	}
	cmd := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	cmd.Execute()
	h.undoStack = append(h.undoStack, cmd)
	return true
}

// CanUndo returns whether there are actions to undo
func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }

// CanRedo returns whether there are actions to redo
func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

// Clear wipes all undo/redo history
func (h *History) Clear() {
	h.undoStack = h.undoStack[:0]
	h.redoStack = h.redoStack[:0]
}

// --- Concrete Commands ---

// objectEditor applies edits to placed objects and reports them to the host.
// Edits to ids that no longer exist are ignored.
type objectEditor interface {
	moveObject(id string, p planar.Point)
	scaleObject(id string, s math.Vec3)
}

// MoveCommand records a planar position change of an object
type MoveCommand struct {
	target objectEditor
	ID     string
	OldPos planar.Point
	NewPos planar.Point
}

func (c *MoveCommand) Execute()            { c.target.moveObject(c.ID, c.NewPos) }
func (c *MoveCommand) Undo()               { c.target.moveObject(c.ID, c.OldPos) }
func (c *MoveCommand) Description() string { return "Move " + c.ID }

// ScaleCommand records a scale multiplier change of an object
type ScaleCommand struct {
	target   objectEditor
	ID       string
	OldScale math.Vec3
	NewScale math.Vec3
}

func (c *ScaleCommand) Execute()            { c.target.scaleObject(c.ID, c.NewScale) }
func (c *ScaleCommand) Undo()               { c.target.scaleObject(c.ID, c.OldScale) }
func (c *ScaleCommand) Description() string { return "Scale " + c.ID }
