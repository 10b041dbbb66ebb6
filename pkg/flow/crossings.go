package flow

import "slices"

// CountCrossings returns the weighted number of link crossings between the
// two columns for the given orders. Two links cross when their sources and
// targets are in opposite relative order; a crossing of links a and b
// weighs a.Count*b.Count, matching how thick bundles clutter the drawing.
// Links sharing an endpoint never cross. Nodes missing from an order are
// ignored along with their links.
//
// The count is an inversion count over a Fenwick tree in O(E log V).
func CountCrossings(g *Graph, left, right []NodeKey) int {
	if len(left) == 0 || len(right) == 0 {
		return 0
	}
	leftPos := PosMap(left)
	rightPos := PosMap(right)

	type edge struct{ l, r, w int }
	edges := make([]edge, 0, len(g.links))
	for _, lk := range g.links {
		lp, okL := leftPos[lk.Source]
		rp, okR := rightPos[lk.Target]
		if okL && okR {
			edges = append(edges, edge{lp, rp, lk.Count})
		}
	}
	if len(edges) < 2 {
		return 0
	}

	slices.SortFunc(edges, func(a, b edge) int {
		if a.l != b.l {
			return a.l - b.l
		}
		return a.r - b.r
	})

	fenwick := make([]int, len(right)+1)
	crossings, total := 0, 0
	for _, e := range edges {
		// weight already placed at target positions <= e.r
		lessOrEqual := 0
		for q := e.r + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		crossings += e.w * (total - lessOrEqual)

		total += e.w
		for idx := e.r + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx] += e.w
		}
	}
	return crossings
}

// PosMap maps each key to its index in keys.
func PosMap(keys []NodeKey) map[NodeKey]int {
	m := make(map[NodeKey]int, len(keys))
	for i, k := range keys {
		m[k] = i
	}
	return m
}

// Keys extracts the keys of nodes, preserving order.
func Keys(nodes []*Node) []NodeKey {
	keys := make([]NodeKey, len(nodes))
	for i, n := range nodes {
		keys[i] = n.Key
	}
	return keys
}
