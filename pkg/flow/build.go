package flow

import "github.com/matzehuels/crossflow/pkg/table"

type pairKey struct{ source, target string }

// Build aggregates rows into a bipartite graph for the given selection.
//
// Row i (1-based) contributes when both its source and target values are
// non-empty after [table.Text] coercion; otherwise it is skipped entirely
// and its reference id appears nowhere. Each distinct (source, target) pair
// becomes one link whose Count and RefIDs grow in row order.
//
// An incomplete selection yields an empty graph. Build never fails, and
// identical inputs always produce structurally identical graphs.
func Build(rows []table.Row, sel Selection) *Graph {
	g := newGraph(sel)
	g.stats.Rows = len(rows)
	if !sel.Complete() {
		g.stats.Excluded = len(rows)
		return g
	}

	var left, right []*Node
	pairs := make(map[pairKey]int)

	for i, row := range rows {
		ref := i + 1
		s, t := row.Get(sel.Source), row.Get(sel.Target)
		if s == "" || t == "" {
			g.stats.Excluded++
			continue
		}
		g.stats.Included++

		src := Key(Left, s)
		if _, ok := g.index[src]; !ok {
			g.index[src] = -1
			left = append(left, &Node{Key: src})
		}
		dst := Key(Right, t)
		if _, ok := g.index[dst]; !ok {
			g.index[dst] = -1
			right = append(right, &Node{Key: dst})
		}

		pk := pairKey{s, t}
		li, ok := pairs[pk]
		if !ok {
			li = len(g.links)
			pairs[pk] = li
			g.links = append(g.links, &Link{Source: src, Target: dst})
			g.incident[src] = append(g.incident[src], li)
			g.incident[dst] = append(g.incident[dst], li)
		}
		l := g.links[li]
		l.Count++
		l.RefIDs = append(l.RefIDs, ref)
		g.refs[ref] = li
	}

	g.nodes = append(left, right...)
	for i, n := range g.nodes {
		g.index[n.Key] = i
	}
	for _, l := range g.links {
		g.nodes[g.index[l.Source]].Flow += l.Count
		g.nodes[g.index[l.Target]].Flow += l.Count
	}
	return g
}
