package report

import "strings"

// Kind tags a classified report line.
type Kind int

const (
	KindBlank Kind = iota
	KindNoise
	KindConfigChange
	KindTitleStart
	KindRoot
	KindNested
)

var kindNames = [...]string{
	KindBlank:        "blank",
	KindNoise:        "noise",
	KindConfigChange: "config",
	KindTitleStart:   "title",
	KindRoot:         "root",
	KindNested:       "nested",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Line is the tagged result of [Classify].
//
// Text holds the title name for KindTitleStart and the identifier for
// KindRoot and KindNested. Configuration is set for KindConfigChange.
// Depth is 0 for roots and the computed indent depth for nested lines.
type Line struct {
	Kind          Kind
	Text          string
	Depth         int
	Configuration string
}

// Rules is the ordered matcher set used by [Classify].
type Rules struct {
	// NoisePrefixes mark task and log framing lines.
	NoisePrefixes []string
	// ConfigKeywords are matched in order as HeaderSeparator+keyword.
	ConfigKeywords []string
	// HeaderSeparator marks a title header (" - ").
	HeaderSeparator string
	// ResolvedMarker starts a title header on its own.
	ResolvedMarker string
	// RootMarkers are branch glyphs at column zero.
	RootMarkers []string
	// IndentWidth is the number of indentation characters per depth level.
	IndentWidth int
}

// DefaultConfiguration is the sticky label in effect before any
// configuration change line is seen.
const DefaultConfiguration = "implementation"

// DefaultIndentWidth is the indent unit used when Rules.IndentWidth is unset.
const DefaultIndentWidth = 4

// DefaultRules returns the matchers for Gradle dependency reports.
func DefaultRules() Rules {
	return Rules{
		NoisePrefixes: []string{
			"> Task",
			"> Configure",
			"BUILD SUCCESSFUL",
			"BUILD FAILED",
			"A web-based, searchable dependency report",
			"(*) - ",
			"(c) - ",
			"(n) - ",
		},
		ConfigKeywords: []string{
			"implementation",
			"api",
			"runtimeOnly",
			"testImplementation",
			"testRuntimeOnly",
		},
		HeaderSeparator: " - ",
		ResolvedMarker:  "Resolved dependencies:",
		RootMarkers:     []string{"+---", `\---`},
		IndentWidth:     DefaultIndentWidth,
	}
}

// withDefaults fills unset fields from DefaultRules.
func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if r.NoisePrefixes == nil {
		r.NoisePrefixes = d.NoisePrefixes
	}
	if r.ConfigKeywords == nil {
		r.ConfigKeywords = d.ConfigKeywords
	}
	if r.HeaderSeparator == "" {
		r.HeaderSeparator = d.HeaderSeparator
	}
	if r.ResolvedMarker == "" {
		r.ResolvedMarker = d.ResolvedMarker
	}
	if len(r.RootMarkers) == 0 {
		r.RootMarkers = d.RootMarkers
	}
	if r.IndentWidth <= 0 {
		r.IndentWidth = d.IndentWidth
	}
	return r
}

// Classify determines the role of one raw line. The first matching rule
// wins: noise, configuration change, title header, blank, root, nested.
// Whether a title is open is the parser's concern, not the classifier's.
func Classify(raw string, rules Rules) Line {
	rules = rules.withDefaults()
	line := strings.TrimRight(raw, "\r\n")

	for _, p := range rules.NoisePrefixes {
		if strings.HasPrefix(line, p) {
			return Line{Kind: KindNoise}
		}
	}

	for _, kw := range rules.ConfigKeywords {
		if strings.Contains(line, rules.HeaderSeparator+kw) {
			return Line{Kind: KindConfigChange, Configuration: kw}
		}
	}

	if strings.HasPrefix(line, rules.ResolvedMarker) || strings.Contains(line, rules.HeaderSeparator) {
		return Line{Kind: KindTitleStart, Text: strings.TrimSpace(line)}
	}

	if strings.TrimSpace(line) == "" {
		return Line{Kind: KindBlank}
	}

	for _, m := range rules.RootMarkers {
		if strings.HasPrefix(line, m) {
			text := strings.TrimSpace(line[len(m):])
			if text == "" {
				return Line{Kind: KindBlank}
			}
			return Line{Kind: KindRoot, Text: text}
		}
	}

	n := indentRun(line)
	text := stripGlyph(line[n:], rules.RootMarkers)
	if text == "" {
		return Line{Kind: KindBlank}
	}
	return Line{Kind: KindNested, Text: text, Depth: n / rules.IndentWidth}
}

// indentRun counts the leading spaces and continuation bars.
func indentRun(line string) int {
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '|' {
			return i
		}
	}
	return len(line)
}

func stripGlyph(s string, glyphs []string) string {
	for _, g := range glyphs {
		if strings.HasPrefix(s, g) {
			return strings.TrimSpace(s[len(g):])
		}
	}
	return strings.TrimSpace(s)
}
