package view

import (
	"context"
	"io"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/crossflow/pkg/errors"
	"github.com/matzehuels/crossflow/pkg/flow"
	"github.com/matzehuels/crossflow/pkg/observability"
	"github.com/matzehuels/crossflow/pkg/ordering"
	"github.com/matzehuels/crossflow/pkg/sankey"
	"github.com/matzehuels/crossflow/pkg/table"
)

// Placeholder names the reason a view has nothing to draw. The zero value
// means the view holds a drawable layout.
type Placeholder string

const (
	PlaceholderNone                Placeholder = ""
	PlaceholderSelectionIncomplete Placeholder = "selection-incomplete"
	PlaceholderNoConnections       Placeholder = "no-connections"
)

// Message returns the text shown in place of the diagram.
func (p Placeholder) Message() string {
	switch p {
	case PlaceholderSelectionIncomplete:
		return "Select a source and a target column."
	case PlaceholderNoConnections:
		return "No rows connect the selected columns."
	}
	return ""
}

// Options configures a View. Options are copied on New.
type Options struct {
	Selection flow.Selection
	Layout    sankey.Config

	// Orderer arranges each full rebuild. Nil uses the barycentric orderer.
	Orderer ordering.Orderer

	// ResizeDelay is the quiet period before a resize relayout.
	ResizeDelay time.Duration

	// OnRelayout is called after every debounced relayout, outside the
	// view's lock, with snapshots of the new geometry.
	OnRelayout func(nodes []sankey.NodeBox, links []sankey.LinkPath)

	Logger *log.Logger
}

// Highlight is the result of a reference lookup.
type Highlight struct {
	Ref     int
	Links   []int
	Row     table.Row
	Summary table.Summary
}

// View binds rows, a selection and the resulting layout to renderer
// events. It is the single owner of its graph and layout; every method
// serializes through one mutex because resize relayouts fire on the
// debouncer's goroutine.
type View struct {
	mu sync.Mutex

	opts    Options
	cfg     sankey.Config
	rows    []table.Row
	columns []string
	sel     flow.Selection

	graph  *flow.Graph
	layout *sankey.Layout

	drag      *sankey.Drag
	gesture   string
	dragStart time.Time

	resize        *Debouncer
	relayoutAfter bool
}

// New creates an empty view. Call [View.Load] to supply rows.
func New(opts Options) *View {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	v := &View{
		opts: opts,
		cfg:  opts.Layout.Normalize(),
		sel:  opts.Selection,
	}
	v.resize = NewDebouncer(opts.ResizeDelay, v.relayout)
	v.rebuild()
	return v
}

// Close stops any pending relayout.
func (v *View) Close() {
	v.resize.Stop()
}

// =============================================================================
// Rebuilds
// =============================================================================

// Load replaces the rows and rebuilds the graph and layout.
// columns is used to describe rows for highlighting and may be nil.
func (v *View) Load(rows []table.Row, columns []string) Placeholder {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rows = rows
	v.columns = columns
	return v.rebuild()
}

// Select changes the column selection and rebuilds.
func (v *View) Select(sel flow.Selection) Placeholder {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sel = sel
	return v.rebuild()
}

// rebuild recomputes graph and layout from scratch, discarding any manual
// arrangement and any gesture in progress. Caller holds mu.
func (v *View) rebuild() Placeholder {
	v.drag = nil
	v.gesture = ""
	v.graph = flow.Build(v.rows, v.sel)
	v.layout = sankey.Compute(v.graph, v.cfg, v.opts.Orderer)

	stats := v.graph.Stats()
	v.opts.Logger.Debug("rebuilt view",
		"source", v.sel.Source, "target", v.sel.Target,
		"nodes", v.graph.NodeCount(), "links", v.graph.LinkCount(),
		"excluded", stats.Excluded)
	return v.placeholder()
}

func (v *View) placeholder() Placeholder {
	switch {
	case !v.sel.Complete():
		return PlaceholderSelectionIncomplete
	case v.graph.IsEmpty():
		return PlaceholderNoConnections
	}
	return PlaceholderNone
}

// =============================================================================
// Accessors
// =============================================================================

// Placeholder reports why the view has nothing to draw, if it doesn't.
func (v *View) Placeholder() Placeholder {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.placeholder()
}

// Selection returns the current selection.
func (v *View) Selection() flow.Selection {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sel
}

// Graph returns the current graph. Graphs are never mutated after a
// rebuild, so the result may be read without holding the view.
func (v *View) Graph() *flow.Graph {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.graph
}

// Nodes returns a snapshot of the current node extents.
func (v *View) Nodes() []sankey.NodeBox {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.layout.Nodes()
}

// Links returns a snapshot of the current link geometry.
func (v *View) Links() []sankey.LinkPath {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.layout.Links()
}

// Column returns the current order of one column.
func (v *View) Column(side flow.Side) []flow.NodeKey {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.layout.Column(side)
}

// Extent returns the vertical bounds available to nodes.
func (v *View) Extent() (top, bottom float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.layout.Top, v.layout.Bottom
}

// Config returns the normalized layout configuration in effect.
func (v *View) Config() sankey.Config {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cfg
}

// =============================================================================
// Drag Events
// =============================================================================

// OnDragStart begins a gesture on the node with key k.
func (v *View) OnDragStart(k flow.NodeKey) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.drag != nil {
		return errors.New(errors.ErrCodeDragInProgress, "node %s is already being dragged", v.drag.Key())
	}
	d, err := v.layout.StartDrag(k)
	if err != nil {
		return err
	}
	v.drag = d
	v.gesture = uuid.NewString()
	v.dragStart = time.Now()
	observability.Interaction().OnDragStart(context.Background(), v.gesture, k.String())
	return nil
}

// OnDragMove moves the dragged node to pointerY and returns the updated
// extents. Events for any node other than the dragged one are rejected.
func (v *View) OnDragMove(k flow.NodeKey, pointerY float64) ([]sankey.NodeBox, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.checkDrag(k); err != nil {
		return nil, err
	}
	return v.drag.Move(pointerY)
}

// OnDragEnd commits the gesture. A resize that arrived during the gesture
// is applied right after.
func (v *View) OnDragEnd(k flow.NodeKey) ([]sankey.NodeBox, error) {
	v.mu.Lock()
	if err := v.checkDrag(k); err != nil {
		v.mu.Unlock()
		return nil, err
	}
	boxes, err := v.drag.End()
	if err != nil {
		v.mu.Unlock()
		return nil, err
	}
	observability.Interaction().OnDragEnd(context.Background(), v.gesture, k.String(),
		v.drag.InsertIndex(), time.Since(v.dragStart))
	v.opts.Logger.Debug("drag ended", "node", k, "slot", v.drag.InsertIndex(), "gesture", v.gesture)
	v.drag = nil
	v.gesture = ""

	deferred := v.relayoutAfter
	v.relayoutAfter = false
	v.mu.Unlock()

	if deferred {
		v.relayout()
		return v.Nodes(), nil
	}
	return boxes, nil
}

// Dragging reports whether a gesture is in progress.
func (v *View) Dragging() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.drag != nil
}

func (v *View) checkDrag(k flow.NodeKey) error {
	if v.drag == nil {
		return errors.New(errors.ErrCodeNoDrag, "no drag in progress for %s", k)
	}
	if v.drag.Key() != k {
		return errors.New(errors.ErrCodeDragInProgress, "node %s is being dragged, not %s", v.drag.Key(), k)
	}
	return nil
}

// =============================================================================
// Reference Highlight
// =============================================================================

// Highlight looks up the row with 1-based reference ref and the links it
// contributes to. It reports false for refs outside the rows or rows that
// were excluded from the graph.
func (v *View) Highlight(ref int) (Highlight, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	li, ok := v.graph.LinkIndexForRef(ref)
	if !ok {
		return Highlight{}, false
	}
	row := v.rows[ref-1]
	columns := v.columns
	if columns == nil {
		columns = slices.Sorted(maps.Keys(row))
	}
	return Highlight{
		Ref:     ref,
		Links:   []int{li},
		Row:     row,
		Summary: table.Describe(ref, row, columns),
	}, true
}

// =============================================================================
// Resize
// =============================================================================

// Resize records a new surface size. The relayout is debounced: a burst of
// resizes results in one relayout after the quiet period.
func (v *View) Resize(width, height float64) {
	v.mu.Lock()
	v.cfg = v.cfg.WithSize(width, height)
	v.mu.Unlock()
	v.resize.Trigger()
}

// FlushResize runs a pending relayout immediately.
func (v *View) FlushResize() {
	v.resize.Flush()
}

// relayout reflows the layout for the current size, keeping column order.
// It is deferred while a gesture is in progress.
func (v *View) relayout() {
	v.mu.Lock()
	if v.drag != nil {
		v.relayoutAfter = true
		v.mu.Unlock()
		return
	}
	start := time.Now()
	v.layout = v.layout.Reflow(v.cfg)
	nodes, links := v.layout.Nodes(), v.layout.Links()
	cfg := v.cfg
	v.mu.Unlock()

	elapsed := time.Since(start)
	observability.Interaction().OnRelayout(context.Background(), cfg.Width, cfg.Height, elapsed)
	v.opts.Logger.Debug("relayout", "width", cfg.Width, "height", cfg.Height, "elapsed", elapsed)
	if v.opts.OnRelayout != nil {
		v.opts.OnRelayout(nodes, links)
	}
}
