package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/crossflow/pkg/errors"
	"github.com/matzehuels/crossflow/pkg/flow"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds flow totals to node labels.
	// When false, only the column value is shown.
	Detailed bool

	// Order fixes the vertical order of each column, typically taken from a
	// computed layout. Nil keeps builder order.
	Order [2][]flow.NodeKey
}

// ToDOT converts a flow graph to Graphviz DOT format. Left nodes share one
// rank and right nodes another, so the drawing reads left to right like the
// sankey view. Edge labels carry link counts and pen widths scale with them.
func ToDOT(g *flow.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=2.0;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	for _, side := range []flow.Side{flow.Left, flow.Right} {
		keys := opts.Order[side]
		if keys == nil {
			keys = flow.Keys(g.Column(side))
		}
		fmt.Fprintf(&buf, "  subgraph %s {\n    rank=same;\n", side)
		for _, k := range keys {
			n, ok := g.Node(k)
			if !ok {
				continue
			}
			fmt.Fprintf(&buf, "    %q [label=%q];\n", k.String(), fmtLabel(n, opts.Detailed))
		}
		buf.WriteString("  }\n")

		// invisible chain pins the vertical order within the rank
		for i := 1; i < len(keys); i++ {
			fmt.Fprintf(&buf, "  %q -> %q [style=invis];\n", keys[i-1].String(), keys[i].String())
		}
	}

	buf.WriteString("\n")
	for _, l := range g.Links() {
		fmt.Fprintf(&buf, "  %q -> %q [label=\"%d\", penwidth=%s];\n",
			l.Source.String(), l.Target.String(), l.Count, penWidth(l.Count))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *flow.Node, detailed bool) string {
	if !detailed {
		return n.Name()
	}
	return fmt.Sprintf("%s\nflow: %d", n.Name(), n.Flow)
}

func penWidth(count int) string {
	return strconv.FormatFloat(min(1+float64(count-1)*0.5, 8), 'f', -1, 64)
}

// RenderSVG renders a DOT graph to SVG using Graphviz. A failure to start
// the Graphviz runtime is reported as errors.ErrCodeRendererUnavailable so
// callers can tell it apart from bad input.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRendererUnavailable, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRendererUnavailable, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
