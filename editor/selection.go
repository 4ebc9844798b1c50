package editor

import (
	"fmt"
)

// Tool defines what a primary drag does to the selected object
type Tool int

const (
	ToolNone  Tool = iota // select only
	ToolMove              // drag the object across the ground
	ToolScale             // show per-axis scale handles
)

func (t Tool) String() string {
	switch t {
	case ToolMove:
		return "move"
	case ToolScale:
		return "scale"
	}
	return "none"
}

// ParseTool maps a tool name as used in configuration to a Tool.
func ParseTool(s string) (Tool, error) {
	switch s {
	case "", "none":
		return ToolNone, nil
	case "move":
		return ToolMove, nil
	case "scale":
		return ToolScale, nil
	}
	return ToolNone, fmt.Errorf("unknown tool %q", s)
}

// Selection tracks the single selected object by id.
type Selection struct {
	ID string
}

// Clear removes the selection and reports whether there was one.
func (s *Selection) Clear() bool {
	had := s.ID != ""
	s.ID = ""
	return had
}

// Set selects id and reports whether the selection changed.
func (s *Selection) Set(id string) bool {
	if s.ID == id {
		return false
	}
	s.ID = id
	return true
}

// IsSelected checks if id is selected
func (s *Selection) IsSelected(id string) bool {
	return id != "" && s.ID == id
}

// HasSelection returns true if anything is selected
func (s *Selection) HasSelection() bool {
	return s.ID != ""
}
