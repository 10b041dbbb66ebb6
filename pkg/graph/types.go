package graph

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/matzehuels/crossflow/pkg/flow"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Visualization types.
const (
	VizTypeSankey   = "sankey"
	VizTypeNodelink = "nodelink"
)

// Column sides as they appear on the wire.
const (
	SideLeft  = "left"
	SideRight = "right"
)

// =============================================================================
// Graph - Bipartite Graph Serialization
// =============================================================================

// Graph is the canonical serialization format for a built flow graph.
// Node ids are the stable "side:value" form of the node key.
type Graph struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Nodes  []Node `json:"nodes"`
	Links  []Link `json:"links"`
	Stats  Stats  `json:"stats"`
}

// Node is a column value on one side of the diagram.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Side  string `json:"side"`
	Flow  int    `json:"flow"`
}

// Link is an aggregated source->target pair.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Count  int    `json:"count"`
	Refs   []int  `json:"refs"`
}

// Stats mirrors flow.Stats.
type Stats struct {
	Rows     int `json:"rows"`
	Included int `json:"included"`
	Excluded int `json:"excluded"`
}

// FromFlow converts a flow graph to its serialization format. Nodes and
// links keep builder order.
func FromFlow(g *flow.Graph) Graph {
	sel := g.Selection()
	st := g.Stats()
	out := Graph{
		Source: sel.Source,
		Target: sel.Target,
		Nodes:  make([]Node, 0, g.NodeCount()),
		Links:  make([]Link, 0, g.LinkCount()),
		Stats:  Stats{Rows: st.Rows, Included: st.Included, Excluded: st.Excluded},
	}
	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, nodeFromFlow(n))
	}
	for _, l := range g.Links() {
		out.Links = append(out.Links, Link{
			Source: l.Source.String(),
			Target: l.Target.String(),
			Count:  l.Count,
			Refs:   append([]int(nil), l.RefIDs...),
		})
	}
	return out
}

func nodeFromFlow(n *flow.Node) Node {
	return Node{ID: n.Key.String(), Label: n.Name(), Side: n.Side().String(), Flow: n.Flow}
}

// Validate checks that links refer to known nodes of the right side and
// that counts match their references.
func (g Graph) Validate() error {
	sides := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, dup := sides[n.ID]; dup {
			return fmt.Errorf("duplicate node %q", n.ID)
		}
		sides[n.ID] = n.Side
	}
	for i, l := range g.Links {
		if sides[l.Source] != SideLeft {
			return fmt.Errorf("link %d: source %q is not a left node", i, l.Source)
		}
		if sides[l.Target] != SideRight {
			return fmt.Errorf("link %d: target %q is not a right node", i, l.Target)
		}
		if l.Count != len(l.Refs) {
			return fmt.Errorf("link %d: count %d does not match %d refs", i, l.Count, len(l.Refs))
		}
	}
	return nil
}

// MarshalGraph serializes a Graph to pretty-printed JSON bytes.
func MarshalGraph(g Graph) ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// UnmarshalGraph deserializes and validates JSON bytes.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, fmt.Errorf("unmarshal graph: %w", err)
	}
	if err := g.Validate(); err != nil {
		return Graph{}, err
	}
	return g, nil
}
