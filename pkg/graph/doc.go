// Package graph provides serialization types for flow graphs and layouts.
//
// This package defines the canonical wire format for crossflow's graph data,
// used for JSON files, caching, and cross-tool interoperability.
//
// # Architecture
//
// The package sits at the serialization boundary between internal
// representations and external formats:
//
//   - [Graph], [Layout]: Serialization types (this package)
//   - pkg/flow.Graph: Internal graph representation
//   - pkg/sankey.Layout: Internal layout (extents, drag state)
//
// Use [FromFlow] and [FromSankey] to export.
//
// # Constants
//
// This package is the single source of truth for visualization constants:
//
//	graph.VizTypeSankey     // "sankey"
//	graph.VizTypeNodelink   // "nodelink"
//
// # Graph Serialization
//
// Graphs use a node-link JSON format. Node ids carry their side so a value
// present in both columns yields two distinct ids:
//
//	{
//	  "source": "Method",
//	  "target": "Field",
//	  "nodes": [{"id": "left:survey", "label": "survey", "side": "left", "flow": 2}, ...],
//	  "links": [{"source": "left:survey", "target": "right:graphs", "count": 2, "refs": [1, 2]}]
//	}
//
// # Layout Serialization
//
// Layouts add positioned boxes, link paths and the column orders:
//
//	data, _ := graph.MarshalLayout(graph.FromSankey(layout))
//	l, err := graph.UnmarshalLayout(data)
package graph
