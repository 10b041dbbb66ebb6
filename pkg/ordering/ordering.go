package ordering

import (
	"context"

	"github.com/matzehuels/crossflow/pkg/flow"
)

// Orderer determines the vertical sequence of nodes in each column so that
// links cross as little as possible.
type Orderer interface {
	Order(g *flow.Graph) (left, right []flow.NodeKey)
}

// ContextOrderer is an Orderer that supports cancellation via a context.
// On cancellation it returns the best ordering found so far.
type ContextOrderer interface {
	Orderer
	OrderContext(ctx context.Context, g *flow.Graph) (left, right []flow.NodeKey)
}

// DefaultPasses is the number of relaxation passes used when
// [Barycentric.Passes] is zero.
const DefaultPasses = 32

// Identity keeps the builder order: left and right nodes in first-encounter
// order. Useful for tests and for datasets whose row order is meaningful.
type Identity struct{}

// Order returns both columns in first-encounter order.
func (Identity) Order(g *flow.Graph) (left, right []flow.NodeKey) {
	return flow.Keys(g.Column(flow.Left)), flow.Keys(g.Column(flow.Right))
}
