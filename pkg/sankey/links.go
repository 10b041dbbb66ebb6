package sankey

import (
	"strconv"
	"strings"

	"github.com/matzehuels/crossflow/pkg/flow"
)

// LinkPath is the geometry of one link. The source end sits on the right
// edge of the source node, the target end on the left edge of the target
// node; Y0 and Y1 are the midpoints of the link's slice of each node.
type LinkPath struct {
	// Index is the link's position in the graph's link order.
	Index  int
	Source flow.NodeKey
	Target flow.NodeKey
	Count  int

	X0, Y0 float64
	X1, Y1 float64
	Width  float64
}

// Path returns SVG path data for the link's centerline: a cubic Bezier
// with both control points on the horizontal midpoint.
func (p LinkPath) Path() string {
	xm := (p.X0 + p.X1) / 2
	var sb strings.Builder
	sb.WriteByte('M')
	writePoint(&sb, p.X0, p.Y0)
	sb.WriteByte('C')
	writePoint(&sb, xm, p.Y0)
	sb.WriteByte(' ')
	writePoint(&sb, xm, p.Y1)
	sb.WriteByte(' ')
	writePoint(&sb, p.X1, p.Y1)
	return sb.String()
}

func writePoint(sb *strings.Builder, x, y float64) {
	sb.WriteString(strconv.FormatFloat(x, 'f', -1, 64))
	sb.WriteByte(',')
	sb.WriteString(strconv.FormatFloat(y, 'f', -1, 64))
}

// computeLinks rebuilds all link geometry from the current node extents.
// Within a node, links take slices in link order, each proportional to
// Count/Flow of the node's height.
func (l *Layout) computeLinks() {
	g := l.graph
	if cap(l.links) < g.LinkCount() {
		l.links = make([]LinkPath, g.LinkCount())
	}
	l.links = l.links[:g.LinkCount()]

	for i := range l.links {
		lk := g.Link(i)
		l.links[i] = LinkPath{
			Index:  i,
			Source: lk.Source,
			Target: lk.Target,
			Count:  lk.Count,
			X0:     l.boxes[lk.Source].X1,
			X1:     l.boxes[lk.Target].X0,
			Width:  max(l.cfg.MinLinkWidth, float64(lk.Count)*l.cfg.FlowScale),
		}
	}

	for k, b := range l.boxes {
		if b.Flow == 0 {
			continue
		}
		h := b.Height()
		offset := 0.0
		for _, li := range g.Incident(k) {
			slice := h * float64(g.Link(li).Count) / float64(b.Flow)
			mid := b.Y0 + offset + slice/2
			if k.Side == flow.Left {
				l.links[li].Y0 = mid
			} else {
				l.links[li].Y1 = mid
			}
			offset += slice
		}
	}
}
