// Package render draws sankey layouts as SVG.
//
// # Overview
//
// [RenderSVG] turns a computed [sankey.Layout] into a standalone SVG
// document: one rectangle per node, one stroked Bezier band per link and a
// label beside each node on the outer side of its column. Links carry their
// row references in a data-refs attribute so a browser can highlight them.
//
//	svg := render.RenderSVG(layout, render.WithHighlight(linkIndex))
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage renders the same graph as a Graphviz diagram.
//
// [nodelink]: github.com/matzehuels/crossflow/pkg/render/nodelink
package render
