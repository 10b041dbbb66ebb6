package sankey

import (
	"math"
	"slices"

	"github.com/matzehuels/crossflow/pkg/errors"
	"github.com/matzehuels/crossflow/pkg/flow"
)

// Drag is an in-progress manual reorder of one node within its column.
//
// A Drag moves through three states: started by [Layout.StartDrag], updated
// by any number of [Drag.Move] calls, and finished by [Drag.End]. Once
// ended it rejects further use with errors.ErrCodeDragFinished.
type Drag struct {
	layout *Layout
	key    flow.NodeKey
	height float64

	// siblings are the other nodes of the column sorted by Y0 at start.
	siblings    []flow.NodeKey
	insertIndex int
	done        bool
}

// StartDrag begins dragging the node with key k. The other nodes in its
// column are snapshotted in their current vertical order. Only one drag
// may be active on a layout at a time.
func (l *Layout) StartDrag(k flow.NodeKey) (*Drag, error) {
	b, ok := l.boxes[k]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownNode, "unknown node %s", k)
	}
	if l.drag != nil {
		return nil, errors.New(errors.ErrCodeDragInProgress, "node %s is already being dragged", l.drag.key)
	}

	col := l.columns[k.Side]
	siblings := make([]flow.NodeKey, 0, len(col)-1)
	for _, s := range col {
		if s != k {
			siblings = append(siblings, s)
		}
	}
	slices.SortStableFunc(siblings, func(a, c flow.NodeKey) int {
		switch ya, yc := l.boxes[a].Y0, l.boxes[c].Y0; {
		case ya < yc:
			return -1
		case ya > yc:
			return 1
		}
		return 0
	})

	// without a Move the node returns to its original slot
	slot := 0
	for _, s := range siblings {
		if l.boxes[s].Y0 < b.Y0 {
			slot++
		}
	}

	d := &Drag{
		layout:      l,
		key:         k,
		height:      b.Height(),
		siblings:    siblings,
		insertIndex: slot,
	}
	l.drag = d
	return d, nil
}

// Key returns the key of the dragged node.
func (d *Drag) Key() flow.NodeKey { return d.key }

// InsertIndex returns the slot among the siblings where the node would land
// if the drag ended now.
func (d *Drag) InsertIndex() int { return d.insertIndex }

// Siblings returns the snapshot of the other nodes in the column.
func (d *Drag) Siblings() []flow.NodeKey { return slices.Clone(d.siblings) }

// Done reports whether the drag has ended.
func (d *Drag) Done() bool { return d.done }

// Move places the dragged node at pointerY, clamped to the layout extent.
// A NaN pointerY is treated as [Layout.Top].
// The insertion slot is the first sibling whose current center lies at or
// below the node's center; siblings are repacked around a gap of the
// node's height at that slot and all link geometry is recomputed. It
// returns the updated node extents.
func (d *Drag) Move(pointerY float64) ([]NodeBox, error) {
	if d.done {
		return nil, errors.New(errors.ErrCodeDragFinished, "drag of %s has ended", d.key)
	}
	l := d.layout
	h := d.height
	pad := l.cfg.NodePadding

	if math.IsNaN(pointerY) {
		pointerY = l.Top
	}
	y := min(max(pointerY, l.Top), l.Bottom-h)
	y = max(y, l.Top)
	center := y + h/2

	idx := len(d.siblings)
	for i, s := range d.siblings {
		if l.boxes[s].Center() >= center {
			idx = i
			break
		}
	}
	d.insertIndex = idx

	cur := l.Top
	for i, s := range d.siblings {
		if i == idx {
			cur += h + pad
		}
		b := l.boxes[s]
		sh := b.Height()
		b.Y0, b.Y1 = cur, cur+sh
		cur = b.Y1 + pad
	}

	b := l.boxes[d.key]
	b.Y0, b.Y1 = y, y+h

	l.computeLinks()
	return l.Nodes(), nil
}

// End drops the node into its last insertion slot, repacks the whole column
// with uniform padding and recomputes link geometry. The new order stands
// until the layout is recomputed from scratch.
func (d *Drag) End() ([]NodeBox, error) {
	if d.done {
		return nil, errors.New(errors.ErrCodeDragFinished, "drag of %s has ended", d.key)
	}
	l := d.layout

	order := slices.Insert(slices.Clone(d.siblings), d.insertIndex, d.key)
	l.columns[d.key.Side] = order
	l.packColumn(d.key.Side)
	l.computeLinks()

	d.done = true
	l.drag = nil
	return l.Nodes(), nil
}
