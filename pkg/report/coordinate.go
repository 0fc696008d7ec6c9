package report

import "strings"

// Markers Gradle appends to a dependency line.
const (
	MarkerOmitted     = "(*)" // already listed above
	MarkerConstraint  = "(c)" // dependency constraint
	MarkerNotResolved = "(n)" // not resolved
)

var markers = []string{MarkerOmitted, MarkerConstraint, MarkerNotResolved}

// Coordinate is the structured form of a dependency identifier.
// Empty fields are absent in the source text.
type Coordinate struct {
	Group         string `json:"group,omitempty" yaml:"group,omitempty"`
	Name          string `json:"name,omitempty" yaml:"name,omitempty"`
	Version       string `json:"version,omitempty" yaml:"version,omitempty"`     // resolved version
	Requested     string `json:"requested,omitempty" yaml:"requested,omitempty"` // set only for "a -> b" conflicts
	Marker        string `json:"marker,omitempty" yaml:"marker,omitempty"`
	Configuration string `json:"configuration,omitempty" yaml:"configuration,omitempty"`
}

// HasConflict reports whether the report showed a requested version that
// was replaced during resolution.
func (c Coordinate) HasConflict() bool { return c.Requested != "" }

// ParseCoordinate splits id on ':' into at most group, name and version.
// A version field of the form "req -> res" fills Requested and Version.
// When the version is missing but the name carries the arrow ("g:n -> 2.0"),
// the right side becomes Version and Requested stays empty.
func ParseCoordinate(id, configuration string) Coordinate {
	c := Coordinate{Configuration: configuration}

	body, marker := splitMarker(strings.TrimSpace(id))
	c.Marker = marker
	if body == "" {
		return c
	}

	parts := strings.SplitN(body, ":", 3)
	field := func(i int) string {
		if i < len(parts) {
			return strings.TrimSpace(parts[i])
		}
		return ""
	}

	c.Group = field(0)
	c.Name = field(1)

	if len(parts) == 3 {
		c.Requested, c.Version = splitConflict(field(2))
		return c
	}
	if name, res, ok := strings.Cut(c.Name, "->"); ok {
		c.Name = strings.TrimSpace(name)
		c.Version = strings.TrimSpace(res)
	}
	return c
}

func splitConflict(field string) (requested, resolved string) {
	req, res, ok := strings.Cut(field, "->")
	if !ok {
		return "", field
	}
	return strings.TrimSpace(req), strings.TrimSpace(res)
}

func splitMarker(s string) (string, string) {
	for _, m := range markers {
		if strings.HasSuffix(s, m) {
			return strings.TrimSpace(strings.TrimSuffix(s, m)), m
		}
	}
	return s, ""
}

// MarkerOf returns the trailing marker of an identifier, or "".
func MarkerOf(id string) string {
	_, m := splitMarker(strings.TrimSpace(id))
	return m
}
