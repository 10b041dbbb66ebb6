package sankey

import (
	"slices"

	"github.com/matzehuels/crossflow/pkg/flow"
	"github.com/matzehuels/crossflow/pkg/ordering"
)

// =============================================================================
// Node Extents
// =============================================================================

// NodeBox is the extent of one node on the surface.
type NodeBox struct {
	Key  flow.NodeKey
	Flow int

	X0, X1 float64
	Y0, Y1 float64
}

// Height returns Y1 - Y0.
func (b NodeBox) Height() float64 { return b.Y1 - b.Y0 }

// Center returns the vertical midpoint.
func (b NodeBox) Center() float64 { return (b.Y0 + b.Y1) / 2 }

// Name returns the raw column value of the node.
func (b NodeBox) Name() string { return b.Key.Value }

// =============================================================================
// Layout
// =============================================================================

// Layout is the positioned form of a [flow.Graph]: one box per node, one
// path per link, and the current vertical order of each column.
//
// A Layout is owned by a single caller. The drag methods mutate it in place
// and are not safe for concurrent use.
type Layout struct {
	cfg   Config
	graph *flow.Graph

	// Top and Bottom bound the vertical extent available to nodes.
	Top    float64
	Bottom float64

	boxes   map[flow.NodeKey]*NodeBox
	columns [2][]flow.NodeKey
	links   []LinkPath

	drag *Drag
}

// Compute lays out g. Nodes are sized by flow, ordered by orderer (the
// barycentric orderer with cfg.Iterations passes when nil) and packed from
// the top margin with uniform padding. An empty graph yields an empty
// layout.
func Compute(g *flow.Graph, cfg Config, orderer ordering.Orderer) *Layout {
	cfg = cfg.Normalize()
	if orderer == nil {
		orderer = ordering.Barycentric{Passes: cfg.Iterations}
	}

	l := &Layout{
		cfg:   cfg,
		graph: g,
		Top:   cfg.Margin.Top,
		boxes: make(map[flow.NodeKey]*NodeBox, g.NodeCount()),
	}
	if g.IsEmpty() {
		l.Bottom = cfg.Height - cfg.Margin.Bottom
		return l
	}

	left, right := orderer.Order(g)
	l.columns[flow.Left] = completeOrder(g, flow.Left, left)
	l.columns[flow.Right] = completeOrder(g, flow.Right, right)

	for _, n := range g.Nodes() {
		x0 := cfg.ColumnX(n.Side())
		l.boxes[n.Key] = &NodeBox{
			Key:  n.Key,
			Flow: n.Flow,
			X0:   x0,
			X1:   x0 + cfg.NodeWidth,
			Y1:   nodeHeight(cfg, n.Flow),
		}
	}

	l.packColumn(flow.Left)
	l.packColumn(flow.Right)
	l.Bottom = max(cfg.Height-cfg.Margin.Bottom, l.columnEnd(flow.Left), l.columnEnd(flow.Right))
	l.computeLinks()
	return l
}

// Reflow lays out the same graph for a new configuration while keeping the
// current column orders, including any manual arrangement.
func (l *Layout) Reflow(cfg Config) *Layout {
	keep := [2][]flow.NodeKey{
		slices.Clone(l.columns[flow.Left]),
		slices.Clone(l.columns[flow.Right]),
	}
	return Compute(l.graph, cfg, fixedOrder(keep))
}

// completeOrder filters order down to known nodes of side and appends any
// node the orderer left out, in builder order.
func completeOrder(g *flow.Graph, side flow.Side, order []flow.NodeKey) []flow.NodeKey {
	out := make([]flow.NodeKey, 0, len(order))
	seen := make(map[flow.NodeKey]bool, len(order))
	for _, k := range order {
		if _, ok := g.Node(k); ok && k.Side == side && !seen[k] {
			out = append(out, k)
			seen[k] = true
		}
	}
	for _, n := range g.Column(side) {
		if !seen[n.Key] {
			out = append(out, n.Key)
		}
	}
	return out
}

func nodeHeight(cfg Config, units int) float64 {
	return max(cfg.MinNodeHeight, float64(units)*cfg.FlowScale)
}

// packColumn stacks the column from Top in its current order.
func (l *Layout) packColumn(side flow.Side) {
	y := l.Top
	for _, k := range l.columns[side] {
		b := l.boxes[k]
		h := nodeHeight(l.cfg, b.Flow)
		b.Y0, b.Y1 = y, y+h
		y = b.Y1 + l.cfg.NodePadding
	}
}

func (l *Layout) columnEnd(side flow.Side) float64 {
	end := l.Top
	for _, k := range l.columns[side] {
		end = max(end, l.boxes[k].Y1)
	}
	return end
}

// =============================================================================
// Accessors
// =============================================================================

// Config returns the normalized configuration the layout was computed with.
func (l *Layout) Config() Config { return l.cfg }

// Graph returns the graph being laid out.
func (l *Layout) Graph() *flow.Graph { return l.graph }

// Empty reports whether the layout has nothing to draw.
func (l *Layout) Empty() bool { return len(l.boxes) == 0 }

// Node returns the current extent of the node with key k.
func (l *Layout) Node(k flow.NodeKey) (NodeBox, bool) {
	b, ok := l.boxes[k]
	if !ok {
		return NodeBox{}, false
	}
	return *b, true
}

// Nodes returns the extents of all nodes: the left column top to bottom,
// then the right column.
func (l *Layout) Nodes() []NodeBox {
	out := make([]NodeBox, 0, len(l.boxes))
	for _, side := range []flow.Side{flow.Left, flow.Right} {
		for _, k := range l.columns[side] {
			out = append(out, *l.boxes[k])
		}
	}
	return out
}

// Column returns the current order of one column, top to bottom.
func (l *Layout) Column(side flow.Side) []flow.NodeKey {
	return slices.Clone(l.columns[side])
}

// Links returns the geometry of every link, indexed like the graph's links.
func (l *Layout) Links() []LinkPath { return slices.Clone(l.links) }

// Dragging reports whether a drag gesture is in progress.
func (l *Layout) Dragging() bool { return l.drag != nil }

// Overlaps returns the pairs of nodes in the same column whose vertical
// extents intersect. A settled layout has none.
func (l *Layout) Overlaps() [][2]flow.NodeKey {
	var out [][2]flow.NodeKey
	for _, side := range []flow.Side{flow.Left, flow.Right} {
		col := slices.Clone(l.columns[side])
		slices.SortStableFunc(col, func(a, b flow.NodeKey) int {
			switch ya, yb := l.boxes[a].Y0, l.boxes[b].Y0; {
			case ya < yb:
				return -1
			case ya > yb:
				return 1
			}
			return 0
		})
		for i := 1; i < len(col); i++ {
			prev, cur := l.boxes[col[i-1]], l.boxes[col[i]]
			if cur.Y0 < prev.Y1 {
				out = append(out, [2]flow.NodeKey{prev.Key, cur.Key})
			}
		}
	}
	return out
}

// fixedOrder is an orderer that replays stored column orders.
type fixedOrder [2][]flow.NodeKey

func (o fixedOrder) Order(*flow.Graph) (left, right []flow.NodeKey) {
	return o[flow.Left], o[flow.Right]
}
