package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depscope/pkg/pipeline"
	"github.com/matzehuels/depscope/pkg/session"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	parseFlags
	output    string // output directory, or file for --focus/--titles
	format    string // svg or dot
	focus     string // render only the chunk holding this title
	highlight string // node to fill red; defaults to the focus title
	titles    bool   // render the title overview instead of chunks
	detailed  bool   // show coordinates in node labels
}

// renderCommand creates the render command.
//
// Without --focus every chunk becomes one file, chunk-001.svg onwards. With
// --focus (or --titles) a single graph is written.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: pipeline.FormatSVG}

	cmd := &cobra.Command{
		Use:   "render <report>",
		Short: "Render a report as node-link diagrams",
		Long: `Render a report as node-link diagrams, one per chunk.

Examples:
  depscope render deps.txt                         # deps_graphs/chunk-001.svg ...
  depscope render deps.txt --focus ':app:runtimeClasspath - Runtime classpath'
  depscope render deps.txt --titles -o titles.svg
  depscope render deps.txt --format dot -o out/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(opts.format); err != nil {
				return err
			}
			snap, err := c.loadSnapshot(cmd.Context(), cmd, args[0], &opts.parseFlags)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), snap, args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (or file with --focus/--titles)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, dot")
	cmd.Flags().StringVar(&opts.focus, "focus", "", "render only this title")
	cmd.Flags().StringVar(&opts.highlight, "highlight", "", "node to highlight (default: the focus title)")
	cmd.Flags().BoolVar(&opts.titles, "titles", false, "render the title overview")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show coordinates in node labels")
	_ = cmd.RegisterFlagCompletionFunc("format", completeRenderFormat)
	_ = cmd.RegisterFlagCompletionFunc("focus", completeTitles)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, snap *session.Snapshot, input string, opts *renderOpts) error {
	runner, err := c.newRunner()
	if err != nil {
		return err
	}
	defer runner.Close()

	ropts := pipeline.RenderOptions{
		Format:    opts.format,
		Highlight: opts.highlight,
		Detailed:  opts.detailed,
		Timeout:   c.Config.Server.RenderTimeout.Duration,
	}

	if opts.focus != "" || opts.titles {
		spin := newRenderSpinner(ctx, os.Stderr, fmt.Sprintf("Rendering %q", opts.focus))
		if opts.titles {
			spin.setPhase("Rendering overview of %d titles", len(snap.Report.Titles()))
		}
		spin.start()
		var data []byte
		if opts.titles {
			data, err = runner.RenderTitles(ctx, snap, ropts)
		} else {
			data, err = runner.RenderFocus(ctx, snap, opts.focus, ropts)
		}
		spin.finish()
		if err != nil {
			return err
		}

		name := "titles"
		if !opts.titles {
			name = fileSafe(opts.focus)
		}
		path := singleOutputPath(opts.output, input, name, opts.format)
		if err := writeFile(path, data); err != nil {
			return err
		}
		printSuccess("Rendered %s", name)
		printFile(path)
		return nil
	}

	spin := newRenderSpinner(ctx, os.Stderr, fmt.Sprintf("Rendering %d chunks", len(snap.Report.Chunks)))
	ropts.OnChunk = spin.chunk
	spin.start()
	prog := newProgress(c.Logger)
	graphs, err := runner.Render(ctx, snap, ropts)
	spin.finish()
	if err != nil {
		return err
	}
	prog.done("Rendered chunks", "chunks", len(graphs), "format", opts.format)

	dir := opts.output
	if dir == "" {
		dir = strings.TrimSuffix(input, filepath.Ext(input)) + "_graphs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	printSuccess("Rendered %s", snap.Source)
	printSnapshotStats(snap, false)
	for i, data := range graphs {
		path := filepath.Join(dir, fmt.Sprintf("chunk-%03d.%s", i+1, opts.format))
		if err := writeFile(path, data); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

// singleOutputPath picks the file for a single rendered graph. An output
// with the format's extension is used as is; any other output is a
// directory.
func singleOutputPath(output, input, name, format string) string {
	file := name + "." + format
	switch {
	case output == "":
		return strings.TrimSuffix(input, filepath.Ext(input)) + "_" + file
	case strings.EqualFold(filepath.Ext(output), "."+format):
		return output
	default:
		return filepath.Join(output, file)
	}
}

// fileSafe turns a title into a file name.
func fileSafe(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, s)
	s = strings.Trim(s, "_-")
	if s == "" {
		return "graph"
	}
	return s
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
