// Package pkg provides the core libraries for crossflow flow diagrams.
//
// # Overview
//
// Crossflow turns the rows of a table into a two-column flow diagram: every
// distinct value of the source column becomes a node on the left, every
// distinct value of the target column a node on the right, and each distinct
// (source, target) pair a link whose width is the number of rows sharing it.
// The pkg directory is organized into these areas:
//
//  1. [table] - Row decoding (CSV, TSV, JSON, YAML) and default column choice
//  2. [flow] - The bipartite graph with row references per link
//  3. [ordering] and [sankey] - Column ordering, packing and link routing
//  4. [view] - Interactive state: drags, resizes and row highlights
//  5. [render] - SVG output, plus [render/nodelink] for Graphviz DOT
//  6. [pipeline] - Orchestration (read → build → layout → render)
//  7. [graph] - Serialization types for layouts
//
// # Architecture
//
// The typical data flow through crossflow:
//
//	CSV/TSV/JSON/YAML file
//	         ↓
//	    [table] package (rows + column selection)
//	         ↓
//	    [flow] package (nodes, links, references)
//	         ↓
//	    [sankey] package (ordered, packed geometry)
//	         ↓
//	    SVG/JSON/DOT output
//
// # Quick Start
//
//	t, _ := table.ReadFile("films.csv")
//	g := flow.Build(t.Rows, flow.Selection{Source: "director", Target: "year"})
//	l := sankey.Compute(g, sankey.Config{}, ordering.Barycentric{})
//	svg := render.RenderSVG(l)
//
// # Infrastructure
//
// [cache] - File, Redis and no-op caches for rendered artifacts.
//
// [observability] - Hook registries for pipeline, interaction and cache
// events.
//
// [errors] - Coded errors shared by every package.
//
// [buildinfo] - Version information injected at build time.
package pkg
