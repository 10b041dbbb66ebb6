package ordering

import (
	"context"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/matzehuels/crossflow/pkg/flow"
)

// Barycentric reorders columns by the weighted mean position of each node's
// neighbors, alternating between the right and the left column. Each
// neighbor position is weighted by the link count, so heavy bundles pull
// harder than single rows.
//
// The number of passes is bounded. After every pass the weighted crossing
// count is evaluated and the best ordering seen is kept, so more passes
// never produce a worse result.
type Barycentric struct {
	// Passes is the number of half-sweeps. Zero means DefaultPasses.
	Passes int
}

// Order runs the sweeps to completion. Use [Barycentric.OrderContext] to
// stop early.
func (b Barycentric) Order(g *flow.Graph) (left, right []flow.NodeKey) {
	return b.OrderContext(context.Background(), g)
}

func (b Barycentric) OrderContext(ctx context.Context, g *flow.Graph) (left, right []flow.NodeKey) {
	left, right = Identity{}.Order(g)
	if len(left) < 2 && len(right) < 2 {
		return left, right
	}

	passes := b.Passes
	if passes <= 0 {
		passes = DefaultPasses
	}

	bestL, bestR := slices.Clone(left), slices.Clone(right)
	best := flow.CountCrossings(g, left, right)
	stable := 0

	for pass := 0; pass < passes && best > 0; pass++ {
		if ctx.Err() != nil {
			break
		}
		var changed bool
		if pass%2 == 0 {
			right, changed = sweep(g, right, left)
		} else {
			left, changed = sweep(g, left, right)
		}

		if c := flow.CountCrossings(g, left, right); c < best {
			best = c
			bestL, bestR = slices.Clone(left), slices.Clone(right)
		}

		// two quiet half-sweeps in a row: both columns are fixed points
		if changed {
			stable = 0
		} else if stable++; stable >= 2 {
			break
		}
	}
	return bestL, bestR
}

// sweep reorders free by the barycenters of its neighbors in fixed.
// Ties keep the current relative order.
func sweep(g *flow.Graph, free, fixed []flow.NodeKey) ([]flow.NodeKey, bool) {
	pos := flow.PosMap(fixed)
	type entry struct {
		key    flow.NodeKey
		center float64
	}
	entries := make([]entry, len(free))

	var xs, ws []float64
	for i, k := range free {
		xs, ws = xs[:0], ws[:0]
		for _, l := range g.LinksOf(k) {
			other := l.Target
			if k.Side == flow.Right {
				other = l.Source
			}
			if p, ok := pos[other]; ok {
				xs = append(xs, float64(p))
				ws = append(ws, float64(l.Count))
			}
		}
		center := float64(i)
		if len(xs) > 0 {
			center = stat.Mean(xs, ws)
		}
		entries[i] = entry{k, center}
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		switch {
		case a.center < b.center:
			return -1
		case a.center > b.center:
			return 1
		}
		return 0
	})

	out := make([]flow.NodeKey, len(entries))
	changed := false
	for i, e := range entries {
		out[i] = e.key
		if e.key != free[i] {
			changed = true
		}
	}
	return out, changed
}
