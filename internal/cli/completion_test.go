package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

// complete runs cobra's hidden __complete command and returns the offered
// values without the trailing directive line.
func complete(t *testing.T, args ...string) []string {
	t.Helper()
	root := New(io.Discard, LogInfo).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"__complete"}, args...))
	if err := root.Execute(); err != nil {
		t.Fatalf("__complete %v error: %v", args, err)
	}
	var got []string
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		name, _, _ := strings.Cut(line, "\t")
		got = append(got, name)
	}
	return got
}

func TestCompletion_FlagValues(t *testing.T) {
	report := writeReport(t)
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"policy", []string{"parse", report, "--policy", ""}, []string{"lines", "titles"}},
		{"export format", []string{"parse", report, "--format", ""}, []string{"json", "yaml"}},
		{"render format", []string{"render", report, "--format", ""}, []string{"svg", "dot"}},
		{"focus titles", []string{"render", report, "--focus", "test"}, []string{"testRuntimeClasspath - Test runtime classpath"}},
		{"focus without report", []string{"render", "--focus", ""}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := complete(t, tt.args...)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("completions = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompletion_Script(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, err := execute(t, "completion", shell)
		if err != nil {
			t.Errorf("completion %s error: %v", shell, err)
			continue
		}
		if !strings.Contains(out, "depscope") {
			t.Errorf("completion %s script does not mention depscope", shell)
		}
	}
	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("completion tcsh should fail")
	}
}
