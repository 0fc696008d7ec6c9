package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/depscope/pkg/cycles"
	"github.com/matzehuels/depscope/pkg/report"
	"github.com/matzehuels/depscope/pkg/session"
)

func testSnapshot(t *testing.T) *session.Snapshot {
	t.Helper()
	rep, err := report.ParseString(sampleReport, report.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	snap, err := session.NewSnapshot("deps.txt", rep, cycles.Detect(rep.Chunks))
	if err != nil {
		t.Fatal(err)
	}
	return snap
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTitleListModel_Rows(t *testing.T) {
	m := NewTitleListModel(testSnapshot(t))
	if len(m.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(m.Rows))
	}
	if !m.Rows[0].Circular || m.Rows[1].Circular {
		t.Errorf("circular flags = %v, %v; want true, false", m.Rows[0].Circular, m.Rows[1].Circular)
	}
}

func TestTitleListModel_Navigation(t *testing.T) {
	var model tea.Model = NewTitleListModel(testSnapshot(t))

	model, _ = model.Update(key("down"))
	model, _ = model.Update(key("down")) // clamps at the last row
	m := model.(TitleListModel)
	if m.Cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.Cursor)
	}

	model, _ = m.Update(key("enter"))
	m = model.(TitleListModel)
	if !strings.HasPrefix(m.Open, "testRuntimeClasspath") {
		t.Fatalf("open = %q", m.Open)
	}
	if view := m.View(); !strings.Contains(view, "org:d:1.0 (n)") {
		t.Errorf("detail view missing node:\n%s", view)
	}

	model, _ = m.Update(key("esc"))
	if m = model.(TitleListModel); m.Open != "" {
		t.Errorf("esc did not close detail view")
	}
}

func TestTitleListModel_Quit(t *testing.T) {
	m := NewTitleListModel(testSnapshot(t))
	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should return a quit command")
	}
}

func TestTitleListModel_CircularMarker(t *testing.T) {
	m := NewTitleListModel(testSnapshot(t))
	model, _ := m.Update(key("enter"))
	if view := model.View(); !strings.Contains(view, "⟲") {
		t.Errorf("detail view does not mark circular edges:\n%s", view)
	}
}
