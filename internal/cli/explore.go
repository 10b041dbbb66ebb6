package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/crossflow/pkg/buildinfo"
	"github.com/matzehuels/crossflow/pkg/flow"
	"github.com/matzehuels/crossflow/pkg/pipeline"
	"github.com/matzehuels/crossflow/pkg/sankey"
	"github.com/matzehuels/crossflow/pkg/view"
)

// Terminal cells are mapped to surface pixels with these factors so that
// resizing the terminal resizes the layout surface.
const (
	cellWidth  = 8
	cellHeight = 16

	// dragStep is how far one key press moves a dragged node, in pixels.
	dragStep = 10.0

	maxBar = 24
)

var (
	exploreCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	exploreDragStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	exploreNormalStyle = lipgloss.NewStyle().Foreground(colorWhite)
	exploreLinkStyle   = lipgloss.NewStyle().Foreground(colorGray)
	exploreHotStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	exploreErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
	explorePanelStyle  = lipgloss.NewStyle().Padding(0, 2)
)

// relayoutMsg tells the model a debounced relayout finished.
type relayoutMsg struct{}

// exploreModel is the bubbletea model for the explore command. All layout
// state lives in the view; the model only tracks focus and typed input.
type exploreModel struct {
	view    *view.View
	columns []string

	side   flow.Side
	cursor int

	dragKey   flow.NodeKey
	dragging  bool
	dragY     float64
	refInput  string
	highlight *view.Highlight

	status string
	err    error
}

func newExploreModel(v *view.View, columns []string) exploreModel {
	return exploreModel{view: v, columns: columns}
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.view.Resize(float64(msg.Width*cellWidth), float64(msg.Height*cellHeight))
	case relayoutMsg:
		m.status = "relayout"
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m exploreModel) handleKey(key string) (tea.Model, tea.Cmd) {
	m.err = nil
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.dragging {
			m = m.endDrag()
		}
		m.refInput = ""
	case "tab", "left", "right", "h", "l":
		if !m.dragging {
			m.side = m.side.Opposite()
			m.cursor = min(m.cursor, max(len(m.view.Column(m.side))-1, 0))
		}
	case "up", "k":
		m = m.move(-1)
	case "down", "j":
		m = m.move(1)
	case " ", "d":
		if m.dragging {
			m = m.endDrag()
		} else {
			m = m.startDrag()
		}
	case "s":
		m = m.cycleColumn(true)
	case "t":
		m = m.cycleColumn(false)
	case "backspace":
		if m.refInput != "" {
			m.refInput = m.refInput[:len(m.refInput)-1]
		}
	case "enter":
		m = m.lookup()
	default:
		if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
			m.refInput += key
		}
	}
	return m, nil
}

// move shifts the cursor, or the dragged node while a drag is active.
func (m exploreModel) move(delta int) exploreModel {
	if !m.dragging {
		n := len(m.view.Column(m.side))
		m.cursor = min(max(m.cursor+delta, 0), max(n-1, 0))
		return m
	}
	m.dragY += float64(delta) * dragStep
	boxes, err := m.view.OnDragMove(m.dragKey, m.dragY)
	if err != nil {
		m.err = err
		return m
	}
	for _, b := range boxes {
		if b.Key == m.dragKey {
			m.dragY = b.Y0 // clamped
		}
	}
	return m
}

func (m exploreModel) startDrag() exploreModel {
	col := m.view.Column(m.side)
	if m.cursor >= len(col) {
		return m
	}
	k := col[m.cursor]
	if err := m.view.OnDragStart(k); err != nil {
		m.err = err
		return m
	}
	for _, b := range m.view.Nodes() {
		if b.Key == k {
			m.dragY = b.Y0
		}
	}
	m.dragKey, m.dragging = k, true
	m.status = "dragging " + k.Value
	return m
}

func (m exploreModel) endDrag() exploreModel {
	if _, err := m.view.OnDragEnd(m.dragKey); err != nil {
		m.err = err
	}
	if i := slices.Index(m.view.Column(m.dragKey.Side), m.dragKey); i >= 0 {
		m.cursor = i
	}
	m.status = "moved " + m.dragKey.Value
	m.dragging = false
	return m
}

// cycleColumn selects the next table column as source or target.
func (m exploreModel) cycleColumn(source bool) exploreModel {
	if m.dragging || len(m.columns) == 0 {
		return m
	}
	sel := m.view.Selection()
	cur := sel.Target
	if source {
		cur = sel.Source
	}
	next := m.columns[(slices.Index(m.columns, cur)+1)%len(m.columns)]
	if source {
		sel.Source = next
	} else {
		sel.Target = next
	}
	m.view.Select(sel)
	m.cursor = 0
	m.highlight = nil
	m.status = sel.Source + " " + iconArrow + " " + sel.Target
	return m
}

func (m exploreModel) lookup() exploreModel {
	ref, err := strconv.Atoi(m.refInput)
	m.refInput = ""
	if err != nil {
		return m
	}
	h, ok := m.view.Highlight(ref)
	if !ok {
		m.highlight = nil
		m.status = fmt.Sprintf("row %d is not part of the diagram", ref)
		return m
	}
	m.highlight = &h
	m.status = h.Summary.String()
	return m
}

func (m exploreModel) View() string {
	var b strings.Builder

	sel := m.view.Selection()
	b.WriteString(StyleTitle.Render(fmt.Sprintf("%s %s %s", sel.Source, iconArrow, sel.Target)))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ move  tab column  space drag  s/t change column  0-9⏎ row  q quit"))
	b.WriteString("\n\n")

	if p := m.view.Placeholder(); p != view.PlaceholderNone {
		b.WriteString(StyleWarning.Render(p.Message()))
		b.WriteString("\n")
		return b.String()
	}

	left := explorePanelStyle.Render(m.renderColumn(flow.Left))
	right := explorePanelStyle.Render(m.renderColumn(flow.Right))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right, explorePanelStyle.Render(m.renderLinks())))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(exploreErrorStyle.Render(m.err.Error()))
	case m.refInput != "":
		b.WriteString("row " + StyleValue.Render(m.refInput) + StyleDim.Render("_"))
	default:
		b.WriteString(StyleDim.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(appName + " " + buildinfo.Short()))
	b.WriteString("\n")
	return b.String()
}

// renderColumn lists the nodes of one side top to bottom by their live
// position, so a drag in progress shows its repacked siblings.
func (m exploreModel) renderColumn(side flow.Side) string {
	var boxes []sankey.NodeBox
	maxFlow := 1
	for _, n := range m.view.Nodes() {
		if n.Key.Side == side {
			boxes = append(boxes, n)
			maxFlow = max(maxFlow, n.Flow)
		}
	}
	slices.SortStableFunc(boxes, func(a, b sankey.NodeBox) int {
		switch {
		case a.Y0 < b.Y0:
			return -1
		case a.Y0 > b.Y0:
			return 1
		}
		return 0
	})

	col := m.view.Column(side)
	var lines []string
	for _, n := range boxes {
		bar := strings.Repeat("█", max(1, n.Flow*maxBar/maxFlow))
		line := fmt.Sprintf("%s %s %d", bar, n.Name(), n.Flow)
		style := exploreNormalStyle
		switch {
		case m.dragging && n.Key == m.dragKey:
			style = exploreDragStyle
			line = "» " + line
		case !m.dragging && side == m.side && m.cursor < len(col) && col[m.cursor] == n.Key:
			style = exploreCursorStyle
			line = "› " + line
		default:
			line = "  " + line
		}
		lines = append(lines, style.Render(line))
	}
	return strings.Join(lines, "\n")
}

func (m exploreModel) renderLinks() string {
	hot := map[int]bool{}
	if m.highlight != nil {
		for _, i := range m.highlight.Links {
			hot[i] = true
		}
	}
	g := m.view.Graph()
	var lines []string
	for _, p := range m.view.Links() {
		refs := g.Link(p.Index).RefIDs
		line := fmt.Sprintf("%s %s %s ×%d  rows %s", p.Source.Value, iconArrow, p.Target.Value, p.Count, joinRefs(refs))
		if hot[p.Index] {
			lines = append(lines, exploreHotStyle.Render(line))
		} else {
			lines = append(lines, exploreLinkStyle.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

// joinRefs prints at most a handful of references.
func joinRefs(refs []int) string {
	const limit = 5
	parts := make([]string, 0, limit+1)
	for i, r := range refs {
		if i == limit {
			parts = append(parts, fmt.Sprintf("+%d", len(refs)-limit))
			break
		}
		parts = append(parts, strconv.Itoa(r))
	}
	return strings.Join(parts, ",")
}

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var flags pipelineFlags

	cmd := &cobra.Command{
		Use:   "explore <file>",
		Short: "Explore a table's flow diagram interactively",
		Long: `Explore shows both columns of the diagram in the terminal. Nodes can be
dragged to a new position within their column, source and target columns
can be switched, and typing a row number highlights the links that row
contributes to. Resizing the terminal re-packs the layout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.resolve(cmd, args[0])
			if err != nil {
				return err
			}
			opts.SetLayoutDefaults()
			t, _, err := pipeline.Read(args[0])
			if err != nil {
				return err
			}
			sel, err := pipeline.ResolveSelection(t, opts)
			if err != nil {
				return err
			}

			var p *tea.Program
			v := view.New(view.Options{
				Selection: sel,
				Layout:    opts.SankeyConfig(),
				Orderer:   opts.NewOrderer(),
				Logger:    c.Logger,
				OnRelayout: func([]sankey.NodeBox, []sankey.LinkPath) {
					if p != nil {
						p.Send(relayoutMsg{})
					}
				},
			})
			defer v.Close()
			v.Load(t.Rows, t.Columns)

			p = tea.NewProgram(newExploreModel(v, t.Columns), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	flags.register(cmd)
	return cmd
}
