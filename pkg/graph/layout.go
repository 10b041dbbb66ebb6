package graph

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/matzehuels/crossflow/pkg/flow"
	"github.com/matzehuels/crossflow/pkg/sankey"
)

// =============================================================================
// Layout - Unified Visualization Format
// =============================================================================

// Layout is the unified serialization format for all visualizations.
//
// This is a discriminated union type - check VizType to determine which
// fields are populated:
//
//	Sankey ("sankey"):
//	  - Boxes: positioned node rectangles
//	  - Paths: link geometry with SVG path data
//	  - Top/Bottom: vertical extent of the packed columns
//
//	Nodelink ("nodelink"):
//	  - DOT: Graphviz DOT string for rendering
//	  - Engine: Graphviz layout engine (e.g., "dot")
//
// Shared fields (both types):
//   - Width, Height: frame dimensions
//   - Graph: the built graph (nodes, links, references)
//   - Columns: column orders (side -> node ids, top to bottom)
type Layout struct {
	// Discriminator
	VizType string `json:"viz_type"`

	// Common dimensions
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Graph structure (shared)
	Graph   Graph               `json:"graph"`
	Columns map[string][]string `json:"columns,omitempty"`

	// Sankey-specific
	Top    float64 `json:"top,omitempty"`
	Bottom float64 `json:"bottom,omitempty"`
	Boxes  []Box   `json:"boxes,omitempty"`
	Paths  []Path  `json:"paths,omitempty"`

	// Nodelink-specific
	DOT    string `json:"dot,omitempty"`
	Engine string `json:"engine,omitempty"`
}

// IsSankey returns true if this is a sankey layout.
func (l *Layout) IsSankey() bool { return l.VizType == VizTypeSankey }

// IsNodelink returns true if this is a nodelink layout.
func (l *Layout) IsNodelink() bool { return l.VizType == VizTypeNodelink }

// Empty reports whether the layout has nothing to draw.
func (l *Layout) Empty() bool { return len(l.Graph.Links) == 0 }

// =============================================================================
// Box, Path - Sankey Visualization Elements
// =============================================================================

// Box is a positioned node rectangle.
type Box struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Side   string  `json:"side"`
	Flow   int     `json:"flow"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Path is the geometry of one link.
type Path struct {
	Link   int     `json:"link"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Count  int     `json:"count"`
	Width  float64 `json:"width"`
	D      string  `json:"d"`
}

// =============================================================================
// Conversion
// =============================================================================

// FromSankey exports a computed layout.
func FromSankey(l *sankey.Layout) Layout {
	cfg := l.Config()
	out := Layout{
		VizType: VizTypeSankey,
		Width:   cfg.Width,
		Height:  cfg.Height,
		Graph:   FromFlow(l.Graph()),
		Columns: map[string][]string{},
		Top:     l.Top,
		Bottom:  l.Bottom,
	}
	for _, side := range []flow.Side{flow.Left, flow.Right} {
		col := l.Column(side)
		ids := make([]string, len(col))
		for i, k := range col {
			ids[i] = k.String()
		}
		out.Columns[side.String()] = ids
	}
	for _, b := range l.Nodes() {
		out.Boxes = append(out.Boxes, Box{
			ID:     b.Key.String(),
			Label:  b.Name(),
			Side:   b.Key.Side.String(),
			Flow:   b.Flow,
			X:      b.X0,
			Y:      b.Y0,
			Width:  b.X1 - b.X0,
			Height: b.Height(),
		})
	}
	for _, p := range l.Links() {
		out.Paths = append(out.Paths, Path{
			Link:   p.Index,
			Source: p.Source.String(),
			Target: p.Target.String(),
			Count:  p.Count,
			Width:  p.Width,
			D:      p.Path(),
		})
	}
	return out
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Validates that required fields are present for the viz type.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}

	if l.VizType == "" {
		l.VizType = VizTypeSankey
	}

	if err := l.Graph.Validate(); err != nil {
		return Layout{}, err
	}
	if l.IsSankey() && len(l.Boxes) != len(l.Graph.Nodes) {
		return Layout{}, fmt.Errorf("sankey layout has %d boxes for %d nodes", len(l.Boxes), len(l.Graph.Nodes))
	}
	if l.IsNodelink() && l.DOT == "" {
		return Layout{}, fmt.Errorf("nodelink layout must contain DOT string")
	}

	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
