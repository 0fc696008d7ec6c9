package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depscope/pkg/session"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the interactive title browser.
func (c *CLI) browseCommand() *cobra.Command {
	var f parseFlags
	cmd := &cobra.Command{
		Use:   "browse <report>",
		Short: "Browse titles and their dependencies interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.loadSnapshot(cmd.Context(), cmd, args[0], &f)
			if err != nil {
				return err
			}
			p := tea.NewProgram(NewTitleListModel(snap), tea.WithContext(cmd.Context()), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
	f.register(cmd)
	return cmd
}

// =============================================================================
// TitleListModel - title overview with drill-down
// =============================================================================

// titleRow is one title in the browser.
type titleRow struct {
	Name     string
	Roots    int
	Nodes    int
	Chunk    int
	Circular bool
}

// TitleListModel is the bubbletea model for browsing a snapshot.
//
// The list view shows every title; enter opens the title's nodes with their
// children, esc goes back.
type TitleListModel struct {
	Snapshot *session.Snapshot
	Rows     []titleRow
	Cursor   int
	Height   int
	Offset   int

	// Open is the title whose nodes are shown, or "" for the list view.
	Open       string
	NodeOffset int
}

// NewTitleListModel creates a browser over snap.
func NewTitleListModel(snap *session.Snapshot) TitleListModel {
	circular := make(map[string]bool)
	for _, name := range snap.Index.TitlesWithCircularDependencies() {
		circular[name] = true
	}

	var rows []titleRow
	for i, chunk := range snap.Report.Chunks {
		for _, t := range chunk.Titles() {
			rows = append(rows, titleRow{
				Name:     t.Name,
				Roots:    len(t.Roots),
				Nodes:    t.Len(),
				Chunk:    i + 1,
				Circular: circular[t.Name],
			})
		}
	}
	return TitleListModel{Snapshot: snap, Rows: rows, Height: 15}
}

func (m TitleListModel) Init() tea.Cmd {
	return nil
}

func (m TitleListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Open != "" {
			return m.updateDetail(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Rows) > 0 {
				m.Open = m.Rows[m.Cursor].Name
				m.NodeOffset = 0
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m TitleListModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc", "backspace", "left", "h":
		m.Open = ""
	case "up", "k":
		if m.NodeOffset > 0 {
			m.NodeOffset--
		}
	case "down", "j":
		if t, ok := m.Snapshot.Index.Title(m.Open); ok && m.NodeOffset < t.Len()-1 {
			m.NodeOffset++
		}
	}
	return m, nil
}

func (m TitleListModel) View() string {
	if m.Open != "" {
		return m.detailView()
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.Snapshot.Source))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ open  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Rows))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		cycle := ""
		if r.Circular {
			cycle = iconCycle
		}
		rows = append(rows, []string{cursor, r.Name, fmt.Sprint(r.Roots), fmt.Sprint(r.Nodes), fmt.Sprint(r.Chunk), cycle})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Title", "Roots", "Nodes", "Chunk", "Cycle").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Rows) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col == 5 {
				base = base.Foreground(colorRed)
			}
			if idx == m.Cursor {
				return base.Bold(true).Foreground(colorCyan)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))
	return b.String()
}

// detailView lists the open title's nodes with their children. Circular
// edges are marked.
func (m TitleListModel) detailView() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.Open))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ scroll  esc back  q quit"))
	b.WriteString("\n\n")

	t, ok := m.Snapshot.Index.Title(m.Open)
	if !ok {
		b.WriteString(listDimStyle.Render("title not found"))
		return b.String()
	}

	keys := t.Keys()
	end := min(m.NodeOffset+m.Height, len(keys))
	for _, id := range keys[m.NodeOffset:end] {
		children, _ := t.Children(id)
		style := listNormalStyle
		if c, ok := m.Snapshot.Index.Coordinate(id); ok && c.Marker != "" {
			style = listDimStyle
		}
		b.WriteString(listSelectedStyle.Render("• ") + style.Render(id))
		b.WriteString("\n")
		for _, child := range children {
			arrow := listDimStyle.Render("    → ")
			if m.Snapshot.Circular.Has(id, child) {
				arrow = StyleWarning.Render("    " + iconCycle + " ")
			}
			b.WriteString(arrow + listNormalStyle.Render(child))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d nodes]", min(m.NodeOffset+1, len(keys)), len(keys))))
	return b.String()
}
