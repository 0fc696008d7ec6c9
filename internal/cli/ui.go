package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/depscope/pkg/cycles"
	"github.com/matzehuels/depscope/pkg/session"
)

// =============================================================================
// Palette and Styles
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220") // circular edges
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleTitle is used for report titles in the browser.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim   = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)
	// StyleWarning marks circular edges wherever they are shown.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed    = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCycle   = "⟲"
)

// maxListedCycles bounds the circular edges printed after parse and render.
const maxListedCycles = 5

// =============================================================================
// Status Lines
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written artifact.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Report Summaries
// =============================================================================

// printSnapshotStats prints one summary line for a parsed report, e.g.
// "12 titles · 1 chunks · 340 lines · 2 circular edges · cached".
func printSnapshotStats(snap *session.Snapshot, cached bool) {
	fmt.Println(snapshotStatsLine(snap, cached))
	printCircularEdges(snap.Circular)
}

func snapshotStatsLine(snap *session.Snapshot, cached bool) string {
	st := snap.Report.Stats
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d titles", st.Titles)),
		StyleDim.Render(fmt.Sprintf("%d chunks", st.Chunks)),
		StyleDim.Render(fmt.Sprintf("%d lines", st.DependencyLines)),
	}
	if n := snap.Circular.Len(); n > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d circular edges", n)))
	}
	if st.Orphans > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d orphans", st.Orphans)))
	}
	if cached {
		parts = append(parts, styleCached.Render("cached"))
	} else {
		parts = append(parts, styleComputed.Render("fresh"))
	}
	return "  " + strings.Join(parts, StyleDim.Render(" · "))
}

func printCircularEdges(set *cycles.EdgeSet) {
	writeCircularEdges(os.Stdout, set.Edges(), maxListedCycles)
}

// writeCircularEdges lists up to limit edges as "⟲ from → to", then a
// count of the rest.
func writeCircularEdges(w io.Writer, edges []cycles.Edge, limit int) {
	for i, e := range edges {
		if i == limit {
			fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf("… and %d more", len(edges)-limit)))
			return
		}
		fmt.Fprintf(w, "  %s %s %s %s\n", StyleWarning.Render(iconCycle), e.From, StyleDim.Render(iconArrow), e.To)
	}
}
