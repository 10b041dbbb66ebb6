// Package flow builds the bipartite multigraph drawn by crossflow.
//
// # Overview
//
// A dataset of rows is viewed through two columns: the source column feeds
// the left side of the diagram and the target column feeds the right side.
// [Build] turns the rows into a [Graph] with one node per distinct value and
// side, and one aggregated [Link] per distinct (source, target) value pair:
//
//	g := flow.Build(rows, flow.Selection{Source: "Method", Target: "Field"})
//	if g.IsEmpty() {
//	    // nothing to draw: incomplete selection or no connected rows
//	}
//
// # Node identity
//
// Nodes are keyed by [NodeKey], an explicit (side, value) pair. A value that
// appears in both columns yields two nodes, one per side.
//
// # Provenance
//
// Every link records the 1-based positions of its contributing rows in
// RefIDs. [Graph.LinksForRef] answers "which link holds row n" with a single
// map lookup, which is what reference highlighting relies on.
//
// # Crossings
//
// [CountCrossings] scores a pair of column orders by weighted link crossings
// using a Fenwick tree. The ordering package uses it to keep the best
// arrangement found by barycenter relaxation.
package flow
