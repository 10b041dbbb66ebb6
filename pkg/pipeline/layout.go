package pipeline

import (
	"context"

	"github.com/matzehuels/crossflow/pkg/flow"
	"github.com/matzehuels/crossflow/pkg/graph"
	"github.com/matzehuels/crossflow/pkg/ordering"
	"github.com/matzehuels/crossflow/pkg/render/nodelink"
	"github.com/matzehuels/crossflow/pkg/sankey"
)

// =============================================================================
// Layout Generation
// =============================================================================

// ComputeLayout orders and packs g. A context-aware orderer stops refining
// when ctx is cancelled and the best ordering found so far is used.
func ComputeLayout(ctx context.Context, g *flow.Graph, opts Options) *sankey.Layout {
	var orderer ordering.Orderer = opts.NewOrderer()
	if co, ok := orderer.(ordering.ContextOrderer); ok {
		orderer = contextOrderer{ctx: ctx, inner: co}
	}
	return sankey.Compute(g, opts.SankeyConfig(), orderer)
}

// contextOrderer binds a context to a ContextOrderer so it can be passed
// where a plain Orderer is expected.
type contextOrderer struct {
	ctx   context.Context
	inner ordering.ContextOrderer
}

func (o contextOrderer) Order(g *flow.Graph) (left, right []flow.NodeKey) {
	return o.inner.OrderContext(o.ctx, g)
}

// ExportLayout returns the serializable form of l.
func ExportLayout(l *sankey.Layout) graph.Layout {
	return graph.FromSankey(l)
}

// ExportNodelink returns the node-link form of l: the same graph as a
// Graphviz DOT document whose ranks follow the computed column orders.
func ExportNodelink(l *sankey.Layout, opts Options) graph.Layout {
	cfg := l.Config()
	dot := nodelink.ToDOT(l.Graph(), nodelink.Options{
		Detailed: opts.Detailed,
		Order:    [2][]flow.NodeKey{l.Column(flow.Left), l.Column(flow.Right)},
	})
	return graph.Layout{
		VizType: graph.VizTypeNodelink,
		Width:   cfg.Width,
		Height:  cfg.Height,
		Graph:   graph.FromFlow(l.Graph()),
		DOT:     dot,
		Engine:  "dot",
	}
}
