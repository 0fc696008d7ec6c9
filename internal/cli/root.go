package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/depscope/pkg/buildinfo"
)

// skipConfig marks commands that must run even with a broken config file.
const skipConfig = "depscope/skip-config"

// RootCommand creates the root cobra command with all subcommands registered.
//
// Global flags:
//   - --verbose (-v): debug logging, overriding log.level
//   - --config: explicit config file (default ./depscope.toml if present)
//   - --no-cache: never read or write the parse-result cache
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "depscope explores Gradle dependency reports",
		Long: `depscope parses indentation-based dependency reports (as printed by
"gradle dependencies"), detects circular dependencies, answers lookups over
the parsed tree and renders it as node-link diagrams.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := cmd.Annotations[skipConfig]; ok {
				if c.verbose {
					c.SetLogLevel(LogDebug)
				}
				return nil
			}
			if err := c.loadConfig(); err != nil {
				return err
			}
			registerHooks(c.Logger)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./"+appName+".toml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the parse-result cache")

	root.AddCommand(c.parseCommand())
	root.AddCommand(c.queryCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}
