// Package io reads and writes the host-side layout file: a JSON list of
// placed objects plus ambient settings.
package io

import (
	"encoding/json"
	"fmt"
	"os"

	"landscape-engine/core"
	"landscape-engine/math"
	"landscape-engine/planar"
	"landscape-engine/registry"
)

const LayoutVersion = "1.0"

// LayoutFile is the top-level structure of a layout file
type LayoutFile struct {
	Version  string       `json:"version"`
	Name     string       `json:"name"`
	Settings SettingsData `json:"settings"`
	Objects  []ObjectData `json:"objects"`
}

// SettingsData stores the ambient scene settings. Empty fields leave the
// planner configuration in effect.
type SettingsData struct {
	Background string `json:"background,omitempty"` // #rrggbb
	Ground     string `json:"ground,omitempty"`
	ShowGrid   *bool  `json:"show_grid,omitempty"`
}

// ObjectData stores one placed object
type ObjectData struct {
	ID       string       `json:"id"`
	Asset    string       `json:"asset"`
	Kind     string       `json:"kind,omitempty"`
	Position planar.Point `json:"position"`
	Rotation float32      `json:"rotation,omitempty"` // degrees about the vertical axis
	Color    string       `json:"color,omitempty"`    // #rrggbb override
	Scale    *[3]float32  `json:"scale,omitempty"`    // multiplier, default 1,1,1
}

// SaveLayout serializes a layout to a JSON file
func SaveLayout(path string, layout *LayoutFile) error {
	data, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal layout: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadLayout deserializes a layout file
func LoadLayout(path string) (*LayoutFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}
	return ParseLayout(data)
}

// ParseLayout decodes layout JSON and checks object ids.
func ParseLayout(data []byte) (*LayoutFile, error) {
	layout := &LayoutFile{}
	if err := json.Unmarshal(data, layout); err != nil {
		return nil, fmt.Errorf("failed to parse layout file: %w", err)
	}
	for i, o := range layout.Objects {
		if o.ID == "" {
			return nil, fmt.Errorf("layout object %d: missing id", i)
		}
	}
	return layout, nil
}

// Descriptors converts the objects to registry descriptors.
func (l *LayoutFile) Descriptors() ([]registry.Descriptor, error) {
	descs := make([]registry.Descriptor, 0, len(l.Objects))
	for _, o := range l.Objects {
		d := registry.Descriptor{
			ID:              o.ID,
			AssetID:         o.Asset,
			Kind:            registry.Kind(o.Kind),
			Position:        o.Position,
			RotationDegrees: o.Rotation,
		}
		if o.Color != "" {
			c, err := core.ParseHexColor(o.Color)
			if err != nil {
				return nil, fmt.Errorf("object %q: %w", o.ID, err)
			}
			d.Color = &c
		}
		if o.Scale != nil {
			s := ArrayToVec3(*o.Scale)
			d.Scale = &s
		}
		descs = append(descs, d)
	}
	return descs, nil
}

// Object returns the object with id.
func (l *LayoutFile) Object(id string) (*ObjectData, bool) {
	for i := range l.Objects {
		if l.Objects[i].ID == id {
			return &l.Objects[i], true
		}
	}
	return nil, false
}

// NewLayout creates an empty layout file
func NewLayout(name string) *LayoutFile {
	return &LayoutFile{Version: LayoutVersion, Name: name}
}

// --- Helper conversions ---

// Vec3ToArray converts a Vec3 to a [3]float32
func Vec3ToArray(v math.Vec3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// ArrayToVec3 converts a [3]float32 to Vec3
func ArrayToVec3(a [3]float32) math.Vec3 {
	return math.Vec3{X: a[0], Y: a[1], Z: a[2]}
}
