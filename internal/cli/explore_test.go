package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/crossflow/pkg/flow"
	"github.com/matzehuels/crossflow/pkg/ordering"
	"github.com/matzehuels/crossflow/pkg/table"
	"github.com/matzehuels/crossflow/pkg/view"
)

var exploreRows = []table.Row{
	{"Title": "Graph drawing", "L": "a", "R": "p", "M": "q"},
	{"Title": "Flow maps", "L": "b", "R": "p", "M": "q"},
	{"Title": "Sankey", "L": "c", "R": "p", "M": "q"},
}

var exploreColumns = []string{"Title", "L", "R", "M"}

func newTestExplore(t *testing.T, sel flow.Selection) exploreModel {
	t.Helper()
	v := view.New(view.Options{Selection: sel, Orderer: ordering.Identity{}})
	t.Cleanup(v.Close)
	v.Load(exploreRows, exploreColumns)
	return newExploreModel(v, exploreColumns)
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(t *testing.T, m exploreModel, keys ...string) exploreModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(exploreModel)
	}
	return m
}

func values(keys []flow.NodeKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.Value
	}
	return out
}

func TestExploreDragReorders(t *testing.T) {
	m := newTestExplore(t, flow.Selection{Source: "L", Target: "R"})
	if got := strings.Join(values(m.view.Column(flow.Left)), " "); got != "a b c" {
		t.Fatalf("initial column = %q", got)
	}

	m = press(t, m, "d")
	if !m.dragging || m.dragKey != flow.Key(flow.Left, "a") {
		t.Fatalf("drag not started on a: dragging=%v key=%v", m.dragging, m.dragKey)
	}
	m = press(t, m, "down", "down", "down", "down", "down", "d")
	if m.dragging {
		t.Error("still dragging after second d")
	}
	if got := strings.Join(values(m.view.Column(flow.Left)), " "); got != "b c a" {
		t.Errorf("column after drag = %q, want %q", got, "b c a")
	}
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2 (follows the dropped node)", m.cursor)
	}
}

func TestExploreCursor(t *testing.T) {
	m := newTestExplore(t, flow.Selection{Source: "L", Target: "R"})

	m = press(t, m, "down", "down", "down", "down")
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want clamped to 2", m.cursor)
	}
	m = press(t, m, "tab")
	if m.side != flow.Right || m.cursor != 0 {
		t.Errorf("after tab side=%v cursor=%d, want right/0", m.side, m.cursor)
	}
	m = press(t, m, "up")
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
}

func TestExploreHighlight(t *testing.T) {
	m := newTestExplore(t, flow.Selection{Source: "L", Target: "R"})

	m = press(t, m, "2")
	if m.refInput != "2" {
		t.Fatalf("refInput = %q", m.refInput)
	}
	if !strings.Contains(m.View(), "row 2") {
		t.Error("typed row number not shown")
	}
	m = press(t, m, "enter")
	if m.highlight == nil {
		t.Fatal("row 2 not highlighted")
	}
	if len(m.highlight.Links) != 1 || m.highlight.Links[0] != 1 {
		t.Errorf("links = %v, want [1]", m.highlight.Links)
	}
	if !strings.Contains(m.status, "Flow maps") {
		t.Errorf("status = %q, want row summary", m.status)
	}

	m = press(t, m, "9", "enter")
	if m.highlight != nil {
		t.Error("row 9 highlighted")
	}
	if !strings.Contains(m.status, "row 9") {
		t.Errorf("status = %q", m.status)
	}

	m = press(t, m, "1", "2", "backspace")
	if m.refInput != "1" {
		t.Errorf("refInput after backspace = %q", m.refInput)
	}
}

func TestExploreCycleColumn(t *testing.T) {
	m := newTestExplore(t, flow.Selection{Source: "L", Target: "R"})
	m = press(t, m, "t")

	sel := m.view.Selection()
	if sel.Source != "L" || sel.Target != "M" {
		t.Errorf("selection = %+v, want L -> M", sel)
	}
	if got := values(m.view.Column(flow.Right)); len(got) != 1 || got[0] != "q" {
		t.Errorf("right column = %v, want [q]", got)
	}
}

func TestExplorePlaceholder(t *testing.T) {
	m := newTestExplore(t, flow.Selection{Source: "L"})
	out := m.View()
	if !strings.Contains(out, view.PlaceholderSelectionIncomplete.Message()) {
		t.Errorf("view does not show placeholder:\n%s", out)
	}
	// dragging an empty column is a no-op
	m = press(t, m, "d")
	if m.dragging {
		t.Error("drag started without nodes")
	}
}

func TestExploreQuit(t *testing.T) {
	m := newTestExplore(t, flow.Selection{Source: "L", Target: "R"})
	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestJoinRefs(t *testing.T) {
	tests := []struct {
		refs []int
		want string
	}{
		{nil, ""},
		{[]int{1, 2}, "1,2"},
		{[]int{1, 2, 3, 4, 5, 6, 7}, "1,2,3,4,5,+2"},
	}
	for _, tt := range tests {
		if got := joinRefs(tt.refs); got != tt.want {
			t.Errorf("joinRefs(%v) = %q, want %q", tt.refs, got, tt.want)
		}
	}
}
