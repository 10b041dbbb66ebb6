package sankey

import (
	"github.com/matzehuels/crossflow/pkg/flow"
	"github.com/matzehuels/crossflow/pkg/ordering"
)

// Defaults used by [Config.Normalize] for unset or invalid fields.
const (
	DefaultWidth         = 960.0
	DefaultHeight        = 600.0
	DefaultNodeWidth     = 15.0
	DefaultNodePadding   = 10.0
	DefaultFlowScale     = 6.0
	DefaultMinNodeHeight = 4.0
	DefaultMinLinkWidth  = 1.0
	DefaultIterations    = ordering.DefaultPasses
)

// DefaultMargin leaves room for labels on the outer side of each column.
var DefaultMargin = Margin{Top: 20, Right: 160, Bottom: 20, Left: 160}

// Margin is the inset between the surface edge and the drawing area.
type Margin struct {
	Top    float64 `json:"top" toml:"top"`
	Right  float64 `json:"right" toml:"right"`
	Bottom float64 `json:"bottom" toml:"bottom"`
	Left   float64 `json:"left" toml:"left"`
}

// IsZero reports whether all four sides are zero.
func (m Margin) IsZero() bool { return m == Margin{} }

// Config holds the geometry parameters of a layout. A Config is a value:
// every call that needs it takes a copy, so there is no shared mutable
// configuration.
type Config struct {
	// Width and Height describe the rendering surface. Values <= 0 mean
	// the surface could not be measured and fall back to the defaults.
	Width  float64
	Height float64

	Margin Margin

	NodeWidth   float64
	NodePadding float64

	// FlowScale is the number of pixels per unit of flow. Node heights and
	// link widths are proportional to it; the layout never shrinks to fit.
	FlowScale float64

	MinNodeHeight float64
	MinLinkWidth  float64

	// Iterations bounds the barycenter passes of the default orderer.
	Iterations int
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() Config {
	return Config{}.Normalize()
}

// Normalize returns a copy of c with unset or invalid fields replaced by
// defaults. It never fails.
func (c Config) Normalize() Config {
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	if c.Margin.IsZero() {
		c.Margin = DefaultMargin
	}
	c.Margin.Top = max(c.Margin.Top, 0)
	c.Margin.Right = max(c.Margin.Right, 0)
	c.Margin.Bottom = max(c.Margin.Bottom, 0)
	c.Margin.Left = max(c.Margin.Left, 0)
	if c.NodeWidth <= 0 {
		c.NodeWidth = DefaultNodeWidth
	}
	if c.NodePadding <= 0 {
		c.NodePadding = DefaultNodePadding
	}
	if c.FlowScale <= 0 {
		c.FlowScale = DefaultFlowScale
	}
	if c.MinNodeHeight <= 0 {
		c.MinNodeHeight = DefaultMinNodeHeight
	}
	if c.MinLinkWidth <= 0 {
		c.MinLinkWidth = DefaultMinLinkWidth
	}
	if c.Iterations <= 0 {
		c.Iterations = DefaultIterations
	}
	return c
}

// WithSize returns a copy of c with a new surface size.
func (c Config) WithSize(width, height float64) Config {
	c.Width, c.Height = width, height
	return c.Normalize()
}

// ColumnX returns the left edge of the given column.
func (c Config) ColumnX(side flow.Side) float64 {
	if side == flow.Left {
		return c.Margin.Left
	}
	return c.Width - c.Margin.Right - c.NodeWidth
}
