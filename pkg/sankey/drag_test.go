package sankey

import (
	"math"
	"slices"
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/crossflow/pkg/errors"
	"github.com/matzehuels/crossflow/pkg/flow"
	"github.com/matzehuels/crossflow/pkg/ordering"
)

func threeLeft() *Layout {
	g := graphOf([2]string{"a", "x"}, [2]string{"b", "x"}, [2]string{"c", "y"})
	return Compute(g, Config{}, ordering.Identity{})
}

func keys(side flow.Side, values ...string) []flow.NodeKey {
	out := make([]flow.NodeKey, len(values))
	for i, v := range values {
		out[i] = flow.Key(side, v)
	}
	return out
}

func TestDragPastAllSiblings(t *testing.T) {
	l := threeLeft()
	d, err := l.StartDrag(flow.Key(flow.Left, "a"))
	if err != nil {
		t.Fatalf("StartDrag: %v", err)
	}

	if _, err := d.Move(l.Bottom + 1000); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if d.InsertIndex() != len(d.Siblings()) {
		t.Errorf("InsertIndex = %d, want %d", d.InsertIndex(), len(d.Siblings()))
	}
	a, _ := l.Node(flow.Key(flow.Left, "a"))
	if a.Y1 != l.Bottom {
		t.Errorf("dragged node not clamped: Y1 = %v, Bottom = %v", a.Y1, l.Bottom)
	}

	if _, err := d.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	if got, want := l.Column(flow.Left), keys(flow.Left, "b", "c", "a"); !slices.Equal(got, want) {
		t.Errorf("column = %v, want %v", got, want)
	}
	if ov := l.Overlaps(); len(ov) != 0 {
		t.Errorf("overlaps after End: %v", ov)
	}
}

func TestDragToTop(t *testing.T) {
	l := threeLeft()
	d, _ := l.StartDrag(flow.Key(flow.Left, "c"))
	if _, err := d.Move(-100); err != nil {
		t.Fatal(err)
	}
	if d.InsertIndex() != 0 {
		t.Errorf("InsertIndex = %d, want 0", d.InsertIndex())
	}
	c, _ := l.Node(flow.Key(flow.Left, "c"))
	if c.Y0 != l.Top {
		t.Errorf("Y0 = %v, want clamped to %v", c.Y0, l.Top)
	}

	// siblings make room below the reserved slot
	a, _ := l.Node(flow.Key(flow.Left, "a"))
	if want := l.Top + c.Height() + l.Config().NodePadding; a.Y0 != want {
		t.Errorf("a.Y0 = %v, want %v", a.Y0, want)
	}

	_, _ = d.End()
	if got, want := l.Column(flow.Left), keys(flow.Left, "c", "a", "b"); !slices.Equal(got, want) {
		t.Errorf("column = %v, want %v", got, want)
	}
}

func TestDragEndWithoutMove(t *testing.T) {
	l := threeLeft()
	before := l.Nodes()
	d, _ := l.StartDrag(flow.Key(flow.Left, "b"))
	if d.InsertIndex() != 1 {
		t.Errorf("initial InsertIndex = %d, want 1", d.InsertIndex())
	}
	if _, err := d.End(); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(l.Nodes(), before) {
		t.Error("layout changed without a Move")
	}
}

func TestDragMoveNaN(t *testing.T) {
	l := threeLeft()
	d, err := l.StartDrag(flow.Key(flow.Left, "c"))
	if err != nil {
		t.Fatal(err)
	}
	boxes, err := d.Move(math.NaN())
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range boxes {
		if math.IsNaN(b.Y0) || math.IsNaN(b.Y1) {
			t.Fatalf("NaN extent in %v", b)
		}
	}
	c, _ := l.Node(flow.Key(flow.Left, "c"))
	if c.Y0 != l.Top {
		t.Errorf("c.Y0 = %v, want Top %v", c.Y0, l.Top)
	}
	if d.InsertIndex() != 0 {
		t.Errorf("InsertIndex = %d, want 0", d.InsertIndex())
	}
	if _, err := d.End(); err != nil {
		t.Fatal(err)
	}
	if got := l.Column(flow.Left); !slices.Equal(got, keys(flow.Left, "c", "a", "b")) {
		t.Errorf("order = %v, want [c a b]", got)
	}
}

func TestDragUpdatesLinks(t *testing.T) {
	l := threeLeft()
	d, _ := l.StartDrag(flow.Key(flow.Left, "a"))
	_, _ = d.Move(300)

	a, _ := l.Node(flow.Key(flow.Left, "a"))
	for _, p := range l.Links() {
		if p.Source == a.Key && p.Y0 != a.Center() {
			t.Errorf("link source end %v, want node center %v", p.Y0, a.Center())
		}
	}
	_, _ = d.End()
}

func TestDragErrors(t *testing.T) {
	l := threeLeft()

	if _, err := l.StartDrag(flow.Key(flow.Left, "zz")); !errors.Is(err, errors.ErrCodeUnknownNode) {
		t.Errorf("unknown node err = %v", err)
	}

	d, err := l.StartDrag(flow.Key(flow.Left, "a"))
	if err != nil {
		t.Fatal(err)
	}
	if !l.Dragging() {
		t.Error("Dragging() = false during gesture")
	}
	if _, err := l.StartDrag(flow.Key(flow.Left, "b")); !errors.Is(err, errors.ErrCodeDragInProgress) {
		t.Errorf("second StartDrag err = %v", err)
	}

	if _, err := d.End(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.End(); !errors.Is(err, errors.ErrCodeDragFinished) {
		t.Errorf("double End err = %v", err)
	}
	if _, err := d.Move(10); !errors.Is(err, errors.ErrCodeDragFinished) {
		t.Errorf("Move after End err = %v", err)
	}
	if l.Dragging() {
		t.Error("Dragging() = true after End")
	}
}

func TestDragRightColumn(t *testing.T) {
	l := threeLeft()
	d, _ := l.StartDrag(flow.Key(flow.Right, "x"))
	_, _ = d.Move(1e4)
	_, _ = d.End()
	if got, want := l.Column(flow.Right), keys(flow.Right, "y", "x"); !slices.Equal(got, want) {
		t.Errorf("column = %v, want %v", got, want)
	}
	if got := l.Column(flow.Left); !slices.Equal(got, keys(flow.Left, "a", "b", "c")) {
		t.Errorf("left column changed: %v", got)
	}
}

func TestDragProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := randomGraph(t)
		if g.IsEmpty() {
			return
		}
		nodes := g.Nodes()
		target := nodes[rapid.IntRange(0, len(nodes)-1).Draw(t, "node")].Key
		moves := rapid.SliceOfN(rapid.Float64Range(-200, 1200), 0, 8).Draw(t, "moves")

		run := func() *Layout {
			l := Compute(g, Config{}, nil)
			d, err := l.StartDrag(target)
			if err != nil {
				t.Fatalf("StartDrag: %v", err)
			}
			for i, y := range moves {
				boxes, err := d.Move(y)
				if err != nil {
					t.Fatalf("Move %d: %v", i, err)
				}
				if len(boxes) != len(nodes) {
					t.Fatalf("Move returned %d boxes, want %d", len(boxes), len(nodes))
				}
			}
			if _, err := d.End(); err != nil {
				t.Fatalf("End: %v", err)
			}
			return l
		}

		l1, l2 := run(), run()
		if !slices.Equal(l1.Nodes(), l2.Nodes()) {
			t.Fatal("same gesture produced different layouts")
		}
		if ov := l1.Overlaps(); len(ov) != 0 {
			t.Fatalf("overlaps after End: %v", ov)
		}
		for _, b := range l1.Nodes() {
			if b.Y0 < l1.Top || b.Y1 > l1.Bottom {
				t.Fatalf("node %v outside [%v, %v] after End", b, l1.Top, l1.Bottom)
			}
		}
		col := l1.Column(target.Side)
		if !slices.Contains(col, target) || len(col) != len(g.Column(target.Side)) {
			t.Fatalf("column %v lost nodes", col)
		}
		for i, k := range col {
			if i > 0 {
				prev, _ := l1.Node(col[i-1])
				cur, _ := l1.Node(k)
				if cur.Y0 != prev.Y1+l1.Config().NodePadding {
					t.Fatalf("column not uniformly packed at %d", i)
				}
			}
		}
	})
}
