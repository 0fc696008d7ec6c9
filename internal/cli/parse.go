package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depscope/pkg/errors"
	pkgio "github.com/matzehuels/depscope/pkg/io"
	"github.com/matzehuels/depscope/pkg/pipeline"
	"github.com/matzehuels/depscope/pkg/session"
)

// Export formats for parse output.
const (
	exportJSON = "json"
	exportYAML = "yaml"
)

// parseFlags are the parse options shared by every command that reads a
// report.
type parseFlags struct {
	chunkSize int
	policy    string
	refresh   bool
}

func (f *parseFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.chunkSize, "chunk-size", 0, "lines (or titles) per chunk (default from config)")
	cmd.Flags().StringVar(&f.policy, "policy", "", "chunk flush policy: lines or titles (default from config)")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "reparse even if a cached result exists")
	_ = cmd.RegisterFlagCompletionFunc("policy", completePolicy)
}

// parseOpts holds the command-line flags for the parse command.
type parseOpts struct {
	parseFlags
	output  string // output file, or directory when several reports match
	format  string // json or yaml
	workers int
}

// parseCommand creates the parse command.
//
// Arguments are report paths or doublestar globs ("reports/**/*.txt").
// Each report is parsed independently; several reports are parsed
// concurrently.
func (c *CLI) parseCommand() *cobra.Command {
	opts := parseOpts{format: exportJSON, workers: defaultWorkers}

	cmd := &cobra.Command{
		Use:   "parse <report|glob>...",
		Short: "Parse dependency reports and export the result",
		Long: `Parse one or more dependency reports and export titles, adjacency,
coordinates and circular edges as JSON or YAML.

Examples:
  depscope parse deps.txt                           # JSON to stdout
  depscope parse deps.txt --format yaml -o deps.yaml
  depscope parse 'reports/**/*.txt' -o out/         # one export per report`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != exportJSON && opts.format != exportYAML {
				return errors.New(errors.ErrCodeUnsupported, "invalid format: %q (must be json or yaml)", opts.format)
			}
			popts, err := c.parseOptions(cmd, &opts.parseFlags)
			if err != nil {
				return err
			}
			paths, err := expandInputs(args)
			if err != nil {
				return err
			}
			if len(paths) == 1 {
				return c.runParse(cmd.Context(), paths[0], popts, &opts, cmd.OutOrStdout())
			}
			return c.runParseBatch(cmd.Context(), paths, popts, &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, or directory for several reports (stdout if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "export format: json, yaml")
	_ = cmd.RegisterFlagCompletionFunc("format", completeExportFormat)
	cmd.Flags().IntVar(&opts.workers, "workers", opts.workers, "reports parsed concurrently")

	return cmd
}

func (c *CLI) runParse(ctx context.Context, path string, popts pipeline.Options, opts *parseOpts, stdout io.Writer) error {
	runner, err := c.newRunner()
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	res, err := runner.IngestFile(ctx, path, popts)
	if err != nil {
		return err
	}
	prog.parsed(res)

	if opts.output == "" {
		return writeParsed(stdout, res.Snapshot.Parsed(), opts.format)
	}
	if err := exportParsed(opts.output, res.Snapshot.Parsed(), opts.format); err != nil {
		return err
	}
	printSuccess("Parsed %s", path)
	printSnapshotStats(res.Snapshot, res.CacheHit)
	printFile(opts.output)
	return nil
}

func (c *CLI) runParseBatch(ctx context.Context, paths []string, popts pipeline.Options, opts *parseOpts) error {
	runner, err := c.newRunner()
	if err != nil {
		return err
	}
	defer runner.Close()

	if opts.output != "" {
		if err := os.MkdirAll(opts.output, 0o755); err != nil {
			return err
		}
	}

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Parsing reports"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)

	prog := newProgress(c.Logger)
	results, err := runner.IngestAll(ctx, paths, popts, opts.workers, func(pipeline.BatchResult) {
		bar.Add(1)
	})
	if err != nil {
		return err
	}
	bar.Finish()
	prog.done("Parsed reports", "reports", len(paths), "workers", opts.workers)

	names := outputNames(paths, opts.format)
	failed := 0
	for i, br := range results {
		if br.Err != nil {
			failed++
			printError("%s: %s", br.Path, errors.UserMessage(br.Err))
			continue
		}
		printSuccess("%s", br.Result.String())
		if opts.output == "" {
			continue
		}
		out := filepath.Join(opts.output, names[i])
		if err := exportParsed(out, br.Result.Snapshot.Parsed(), opts.format); err != nil {
			return err
		}
		printFile(out)
	}

	if failed > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "%d of %d reports failed", failed, len(paths))
	}
	return nil
}

// expandInputs resolves report arguments. Existing files are taken as is;
// anything else is treated as a doublestar pattern. Matches are sorted and
// deduplicated. A pattern that matches nothing is an error.
func expandInputs(args []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil && !info.IsDir() {
			add(arg)
			continue
		}
		if !doublestar.ValidatePathPattern(arg) {
			return nil, errors.New(errors.ErrCodeInvalidPattern, "invalid pattern %q", arg)
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPattern, err, "expand %q", arg)
		}
		if len(matches) == 0 {
			return nil, errors.New(errors.ErrCodeFileNotFound, "no report matches %q", arg)
		}
		slices.Sort(matches)
		for _, m := range matches {
			add(m)
		}
	}
	return out, nil
}

// outputNames derives one export file name per report. Reports that share
// a base name are told apart by their position.
func outputNames(paths []string, format string) []string {
	names := make([]string, len(paths))
	used := make(map[string]int)
	for i, p := range paths {
		base := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		used[base]++
		if n := used[base]; n > 1 {
			base = fmt.Sprintf("%s-%d", base, n)
		}
		names[i] = base + "." + format
	}
	return names
}

func writeParsed(w io.Writer, p pkgio.Parsed, format string) error {
	if format == exportYAML {
		return pkgio.WriteYAML(p, w)
	}
	return pkgio.WriteJSON(p, w)
}

func exportParsed(path string, p pkgio.Parsed, format string) error {
	if format == exportYAML {
		return pkgio.ExportYAML(p, path)
	}
	return pkgio.ExportJSON(p, path)
}

// loadSnapshot reads a report for the query, render and browse commands.
// Exported JSON or YAML documents are loaded directly; anything else is
// parsed as a raw report.
func (c *CLI) loadSnapshot(ctx context.Context, cmd *cobra.Command, path string, f *parseFlags) (*session.Snapshot, error) {
	var (
		p   pkgio.Parsed
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		p, err = pkgio.ImportJSON(path)
	case ".yaml", ".yml":
		p, err = importYAML(path)
	default:
		return c.ingest(ctx, cmd, path, f)
	}
	if err != nil {
		return nil, err
	}
	if p.Source == "" {
		p.Source = path
	}
	return session.NewSnapshot(p.Source, p.Report, p.Circular)
}

func (c *CLI) ingest(ctx context.Context, cmd *cobra.Command, path string, f *parseFlags) (*session.Snapshot, error) {
	popts, err := c.parseOptions(cmd, f)
	if err != nil {
		return nil, err
	}
	runner, err := c.newRunner()
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	res, err := runner.IngestFile(ctx, path, popts)
	if err != nil {
		return nil, err
	}
	return res.Snapshot, nil
}

func importYAML(path string) (pkgio.Parsed, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return pkgio.Parsed{}, errors.New(errors.ErrCodeFileNotFound, "file not found: %s", path)
		}
		return pkgio.Parsed{}, err
	}
	defer f.Close()
	return pkgio.ReadYAML(f)
}
