package render

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/crossflow/pkg/flow"
	"github.com/matzehuels/crossflow/pkg/sankey"
)

// palette colors nodes by their position within a column.
var palette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

const (
	labelGap      = 6
	fontStyle     = "font-family:sans-serif;font-size:12px;fill:#333"
	linkOpacity   = 0.35
	linkHighlight = 0.8
)

// SVGOption configures [RenderSVG] and [WriteSVG]. Options apply in order,
// so a later option overrides an earlier one.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	highlight   map[int]bool
	title       string
	placeholder string
	labels      bool
}

// WithHighlight emphasizes the links with the given indices.
func WithHighlight(links ...int) SVGOption {
	return func(r *svgRenderer) {
		for _, i := range links {
			r.highlight[i] = true
		}
	}
}

// WithTitle sets the document title.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// WithPlaceholder sets the message drawn when the layout is empty.
func WithPlaceholder(msg string) SVGOption { return func(r *svgRenderer) { r.placeholder = msg } }

// WithoutLabels omits node labels.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

// RenderSVG renders l to an SVG document.
func RenderSVG(l *sankey.Layout, opts ...SVGOption) []byte {
	var buf bytes.Buffer
	WriteSVG(&buf, l, opts...)
	return buf.Bytes()
}

// WriteSVG renders l to w.
func WriteSVG(w io.Writer, l *sankey.Layout, opts ...SVGOption) {
	r := svgRenderer{highlight: map[int]bool{}, labels: true}
	for _, opt := range opts {
		opt(&r)
	}

	cfg := l.Config()
	width := px(cfg.Width)
	height := px(max(cfg.Height, l.Bottom+cfg.Margin.Bottom))

	canvas := svg.New(w)
	canvas.Start(width, height)
	if r.title != "" {
		canvas.Title(r.title)
	}

	if l.Empty() {
		if r.placeholder != "" {
			canvas.Text(width/2, height/2, r.placeholder, fontStyle+";text-anchor:middle")
		}
		canvas.End()
		return
	}

	colors := nodeColors(l)
	g := l.Graph()

	canvas.Gid("links")
	for _, p := range l.Links() {
		opacity := linkOpacity
		if r.highlight[p.Index] {
			opacity = linkHighlight
		}
		canvas.Path(p.Path(),
			fmt.Sprintf(`id="link-%d"`, p.Index),
			fmt.Sprintf(`data-refs="%s"`, joinInts(g.Link(p.Index).RefIDs)),
			fmt.Sprintf("fill:none;stroke:%s;stroke-opacity:%g;stroke-width:%g", colors[p.Source], opacity, p.Width))
	}
	canvas.Gend()

	canvas.Gid("nodes")
	for _, b := range l.Nodes() {
		canvas.Rect(px(b.X0), px(b.Y0), max(px(b.X1-b.X0), 1), max(px(b.Height()), 1),
			fmt.Sprintf(`id="node-%s"`, cssID(b.Key)),
			fmt.Sprintf("fill:%s;stroke:#222;stroke-width:0.5", colors[b.Key]))
	}
	canvas.Gend()

	if r.labels {
		canvas.Gid("labels")
		for _, b := range l.Nodes() {
			y := px(b.Center()) + 4
			if b.Key.Side == flow.Left {
				canvas.Text(px(b.X0)-labelGap, y, b.Name(), fontStyle+";text-anchor:end")
			} else {
				canvas.Text(px(b.X1)+labelGap, y, b.Name(), fontStyle+";text-anchor:start")
			}
		}
		canvas.Gend()
	}
	canvas.End()
}

func nodeColors(l *sankey.Layout) map[flow.NodeKey]string {
	out := make(map[flow.NodeKey]string)
	for _, side := range []flow.Side{flow.Left, flow.Right} {
		for i, k := range l.Column(side) {
			out[k] = palette[i%len(palette)]
		}
	}
	return out
}

func px(v float64) int { return int(math.Round(v)) }

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, " ")
}

// cssID makes a node key safe for an id attribute.
func cssID(k flow.NodeKey) string {
	var sb strings.Builder
	sb.WriteString(k.Side.String())
	sb.WriteByte('-')
	for _, r := range k.Value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			fmt.Fprintf(&sb, "_%x", r)
		}
	}
	return sb.String()
}
