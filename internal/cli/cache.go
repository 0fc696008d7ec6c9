package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depscope/pkg/cache"
	"github.com/matzehuels/depscope/pkg/session"
)

// cacheCommand groups the commands that manage what depscope keeps on disk:
// cached parse results and file-backed sessions.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached parse results and stored sessions",
	}
	cmd.AddCommand(c.cacheClearCommand(), c.cachePathCommand(), c.cachePruneCommand())
	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached parse result",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.resolvedCacheDir()
			if err != nil {
				return fmt.Errorf("resolve cache dir: %w", err)
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("No cached reports in %s", dir)
				return nil
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			n, err := fc.Clear()
			if err != nil {
				return err
			}
			printSuccess("Dropped %d cached reports", n)
			printDetail("%s", fc.Dir())
			return nil
		},
	}
}

// cachePathCommand prints the parse cache directory, or with --sessions the
// file session store directory.
func (c *CLI) cachePathCommand() *cobra.Command {
	var sessions bool
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print the parse cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolve := c.resolvedCacheDir
			if sessions {
				resolve = c.resolvedSessionsDir
			}
			dir, err := resolve()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&sessions, "sessions", false, "print the file session store directory instead")
	return cmd
}

// cachePruneCommand removes expired sessions left by "serve" with the file
// store backend.
func (c *CLI) cachePruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired file-backed sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.resolvedSessionsDir()
			if err != nil {
				return err
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("No stored sessions in %s", dir)
				return nil
			}
			fs, err := session.NewFileStore(dir, c.Config.Store.TTL.Duration)
			if err != nil {
				return err
			}
			n, err := fs.Cleanup(cmd.Context())
			if err != nil {
				return err
			}
			c.Logger.Debug("pruned sessions", "dir", dir, "removed", n)
			printSuccess("Removed %d expired sessions", n)
			return nil
		},
	}
}
