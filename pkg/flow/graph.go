package flow

import (
	"cmp"
	"strings"
)

// Side is the column a node belongs to. It is fixed for the node's lifetime.
type Side int

const (
	// Left holds the values of the source column.
	Left Side = iota
	// Right holds the values of the target column.
	Right
)

// String returns "left" or "right".
func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// Opposite returns the other column.
func (s Side) Opposite() Side {
	if s == Right {
		return Left
	}
	return Right
}

// ParseSide converts "left"/"source" and "right"/"target" to a Side.
func ParseSide(s string) (Side, bool) {
	switch strings.ToLower(s) {
	case "left", "source":
		return Left, true
	case "right", "target":
		return Right, true
	}
	return Left, false
}

// NodeKey identifies a node by column and value. A value that occurs in both
// the source and the target column yields two distinct keys. Keys compare as
// structs, so values containing separator characters cannot collide.
type NodeKey struct {
	Side  Side
	Value string
}

// Key is shorthand for NodeKey{Side: side, Value: value}.
func Key(side Side, value string) NodeKey { return NodeKey{Side: side, Value: value} }

// String returns the display id "left:<value>" or "right:<value>".
// It is meant for labels and wire ids, not for identity.
func (k NodeKey) String() string { return k.Side.String() + ":" + k.Value }

// Compare orders keys by side, then by value.
func (k NodeKey) Compare(o NodeKey) int {
	if c := cmp.Compare(k.Side, o.Side); c != 0 {
		return c
	}
	return strings.Compare(k.Value, o.Value)
}

// ParseKey is the inverse of [NodeKey.String].
func ParseKey(id string) (NodeKey, bool) {
	prefix, value, ok := strings.Cut(id, ":")
	if !ok {
		return NodeKey{}, false
	}
	side, ok := ParseSide(prefix)
	if !ok {
		return NodeKey{}, false
	}
	return NodeKey{Side: side, Value: value}, true
}

// Node is a distinct value observed in the source or target column.
type Node struct {
	Key  NodeKey
	Flow int // sum of Count over all links touching the node
}

// Name returns the raw column value.
func (n *Node) Name() string { return n.Key.Value }

// Side returns the node's column.
func (n *Node) Side() Side { return n.Key.Side }

// Link aggregates every row sharing one (source value, target value) pair.
type Link struct {
	Source NodeKey
	Target NodeKey
	Count  int   // number of contributing rows, always len(RefIDs)
	RefIDs []int // 1-based row positions in encounter order
}

// Selection names the columns mapped to the left and right side.
type Selection struct {
	Source string `json:"source" toml:"source"`
	Target string `json:"target" toml:"target"`
}

// Complete reports whether both columns are chosen.
func (s Selection) Complete() bool { return s.Source != "" && s.Target != "" }

// Stats summarizes how rows were consumed by [Build].
type Stats struct {
	Rows     int // rows offered to the builder
	Included int // rows contributing to a link
	Excluded int // rows skipped for an empty source or target value
}

// Graph is the bipartite multigraph produced by [Build]: left nodes in first
// encounter order, then right nodes in first encounter order, and links in
// first encounter order of their value pair.
//
// A Graph is rebuilt from scratch whenever the rows or the selection change
// and is never mutated afterwards. It is safe for concurrent reads.
type Graph struct {
	sel      Selection
	nodes    []*Node
	index    map[NodeKey]int
	links    []*Link
	incident map[NodeKey][]int // node -> link indices in link order
	refs     map[int]int       // reference id -> link index
	stats    Stats
}

func newGraph(sel Selection) *Graph {
	return &Graph{
		sel:      sel,
		index:    make(map[NodeKey]int),
		incident: make(map[NodeKey][]int),
		refs:     make(map[int]int),
	}
}

// Selection returns the column selection the graph was built from.
func (g *Graph) Selection() Selection { return g.sel }

// Stats returns row accounting for the build.
func (g *Graph) Stats() Stats { return g.stats }

// IsEmpty reports whether there is nothing to draw. An incomplete selection
// and a selection without any connected rows are both empty.
func (g *Graph) IsEmpty() bool { return len(g.links) == 0 }

// NodeCount returns the number of nodes on both sides.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// LinkCount returns the number of aggregated links.
func (g *Graph) LinkCount() int { return len(g.links) }

// Nodes returns all nodes, left column first. The slice is a copy; the
// nodes themselves must be treated as read-only.
func (g *Graph) Nodes() []*Node { return append([]*Node(nil), g.nodes...) }

// Links returns all links in first-encounter order. The slice is a copy;
// the links themselves must be treated as read-only.
func (g *Graph) Links() []*Link { return append([]*Link(nil), g.links...) }

// Link returns the link at index i in link order.
func (g *Graph) Link(i int) *Link { return g.links[i] }

// Node returns the node with the given key.
func (g *Graph) Node(k NodeKey) (*Node, bool) {
	i, ok := g.index[k]
	if !ok {
		return nil, false
	}
	return g.nodes[i], true
}

// Column returns the nodes of one side in builder order.
func (g *Graph) Column(side Side) []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if n.Key.Side == side {
			out = append(out, n)
		}
	}
	return out
}

// Incident returns the indices of links touching k, in link order.
// The returned slice must not be modified.
func (g *Graph) Incident(k NodeKey) []int { return g.incident[k] }

// LinksOf returns the links touching k, in link order.
func (g *Graph) LinksOf(k NodeKey) []*Link {
	idx := g.incident[k]
	out := make([]*Link, len(idx))
	for i, li := range idx {
		out[i] = g.links[li]
	}
	return out
}

// LinksForRef returns the links whose RefIDs contain ref. Each included row
// contributes to exactly one link, so the result has at most one element;
// the lookup is a single map access.
func (g *Graph) LinksForRef(ref int) []*Link {
	li, ok := g.refs[ref]
	if !ok {
		return nil
	}
	return []*Link{g.links[li]}
}

// LinkIndexForRef is like [Graph.LinksForRef] but returns the link index.
func (g *Graph) LinkIndexForRef(ref int) (int, bool) {
	li, ok := g.refs[ref]
	return li, ok
}

// TotalFlow returns the flow of the node with key k, or 0 if it is absent.
func (g *Graph) TotalFlow(k NodeKey) int {
	if n, ok := g.Node(k); ok {
		return n.Flow
	}
	return 0
}
