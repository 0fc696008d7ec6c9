package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depscope/pkg/errors"
	"github.com/matzehuels/depscope/pkg/session"
)

// queryFlags are shared by every query subcommand.
type queryFlags struct {
	parseFlags
	report  string
	jsonOut bool
}

// queryFunc answers one query against a loaded snapshot.
type queryFunc func(snap *session.Snapshot, args []string, w io.Writer, jsonOut bool) error

// queryCommand creates the query command group.
func (c *CLI) queryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Answer lookups over a parsed report",
		Long: `Answer lookups over a report. --report accepts a raw report or a JSON/YAML
export written by "depscope parse". Raw reports are cached, so repeated
queries against an unchanged file skip reparsing.`,
	}

	var limit int
	var project, match string

	cmd.AddCommand(c.newQueryCmd("title-for <id>", "Print the first title containing a node", cobra.ExactArgs(1),
		func(snap *session.Snapshot, args []string, w io.Writer, jsonOut bool) error {
			title, ok := snap.Index.TitleFor(args[0])
			if !ok {
				return errors.New(errors.ErrCodeNotFound, "no title contains %q", args[0])
			}
			return writeLines(w, jsonOut, title)
		}, nil))

	cmd.AddCommand(c.newQueryCmd("children <id>", "Print the direct children of a title or node", cobra.ExactArgs(1),
		func(snap *session.Snapshot, args []string, w io.Writer, jsonOut bool) error {
			children, _ := snap.Index.ChildrenOf(args[0], project)
			return writeLines(w, jsonOut, children...)
		}, func(cmd *cobra.Command) {
			cmd.Flags().StringVar(&project, "project", "", "only match titles starting with this prefix")
		}))

	cmd.AddCommand(c.newQueryCmd("circular", "Print the titles that own circular dependencies", cobra.NoArgs,
		func(snap *session.Snapshot, _ []string, w io.Writer, jsonOut bool) error {
			return writeLines(w, jsonOut, snap.Index.TitlesWithCircularDependencies()...)
		}, nil))

	cmd.AddCommand(c.newQueryCmd("edges", "Print every circular edge", cobra.NoArgs,
		func(snap *session.Snapshot, _ []string, w io.Writer, jsonOut bool) error {
			return writeLines(w, jsonOut, snap.Circular.Strings()...)
		}, nil))

	cmd.AddCommand(c.newQueryCmd("referencing <id>", "Print the titles that reference a node", cobra.ExactArgs(1),
		func(snap *session.Snapshot, args []string, w io.Writer, jsonOut bool) error {
			return writeLines(w, jsonOut, snap.Index.TitlesReferencing(args[0])...)
		}, nil))

	cmd.AddCommand(c.newQueryCmd("autocomplete <term>", "Print identifiers containing a term", cobra.ExactArgs(1),
		func(snap *session.Snapshot, args []string, w io.Writer, jsonOut bool) error {
			n := limit
			if n <= 0 {
				n = c.Config.Server.AutocompleteLimit
			}
			return writeLines(w, jsonOut, snap.Index.Autocomplete(args[0], n)...)
		}, func(cmd *cobra.Command) {
			cmd.Flags().IntVar(&limit, "limit", 0, "maximum suggestions (default from config)")
		}))

	cmd.AddCommand(c.newQueryCmd("titles", "Print title names, optionally filtered by a glob", cobra.NoArgs,
		func(snap *session.Snapshot, _ []string, w io.Writer, jsonOut bool) error {
			titles, err := snap.Index.MatchTitles(match)
			if err != nil {
				return err
			}
			return writeLines(w, jsonOut, titles...)
		}, func(cmd *cobra.Command) {
			cmd.Flags().StringVar(&match, "match", "", `glob over title names, e.g. "*RuntimeClasspath*"`)
		}))

	cmd.AddCommand(c.newQueryCmd("coordinate <id>", "Print the resolved coordinate of a node", cobra.ExactArgs(1),
		func(snap *session.Snapshot, args []string, w io.Writer, jsonOut bool) error {
			coord, ok := snap.Index.Coordinate(args[0])
			if !ok {
				return errors.New(errors.ErrCodeNotFound, "no coordinate for %q", args[0])
			}
			if jsonOut {
				return writeJSON(w, coord)
			}
			fmt.Fprintf(w, "group: %s\nname: %s\nversion: %s\n", coord.Group, coord.Name, coord.Version)
			if coord.HasConflict() {
				fmt.Fprintf(w, "requested: %s\n", coord.Requested)
			}
			if coord.Marker != "" {
				fmt.Fprintf(w, "marker: %s\n", coord.Marker)
			}
			fmt.Fprintf(w, "configuration: %s\n", coord.Configuration)
			return nil
		}, nil))

	return cmd
}

func (c *CLI) newQueryCmd(use, short string, args cobra.PositionalArgs, run queryFunc, flags func(*cobra.Command)) *cobra.Command {
	var qf queryFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, a := range args {
				if err := errors.ValidateIdentifier(a); err != nil {
					return err
				}
			}
			snap, err := c.loadSnapshot(cmd.Context(), cmd, qf.report, &qf.parseFlags)
			if err != nil {
				return err
			}
			return run(snap, args, cmd.OutOrStdout(), qf.jsonOut)
		},
	}
	cmd.Flags().StringVarP(&qf.report, "report", "r", "", "report or export to query (required)")
	cmd.Flags().BoolVar(&qf.jsonOut, "json", false, "print JSON")
	qf.register(cmd)
	cmd.MarkFlagRequired("report")
	if flags != nil {
		flags(cmd)
	}
	return cmd
}

// writeLines prints one value per line, or a JSON array.
func writeLines(w io.Writer, jsonOut bool, lines ...string) error {
	if jsonOut {
		if lines == nil {
			lines = []string{}
		}
		return writeJSON(w, lines)
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
