package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depscope/pkg/pipeline"
	"github.com/matzehuels/depscope/pkg/report"
)

// completionCommand prints a shell completion script. Besides command names
// the scripts complete --policy, --format and --focus values.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for depscope.

  source <(depscope completion bash)
  depscope completion zsh > "${fpath[1]}/_depscope"
  depscope completion fish > ~/.config/fish/completions/depscope.fish
  depscope completion powershell | Out-String | Invoke-Expression

With the script loaded, "depscope render deps.txt --focus <TAB>" offers the
titles found in deps.txt.`,
		DisableFlagsInUseLine: true,
		Annotations:           map[string]string{skipConfig: ""},
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

var (
	completePolicy = cobra.FixedCompletions([]cobra.Completion{
		cobra.CompletionWithDesc("lines", "flush after chunk-size dependency lines"),
		cobra.CompletionWithDesc("titles", "flush only at a title boundary"),
	}, cobra.ShellCompDirectiveNoFileComp)

	completeExportFormat = cobra.FixedCompletions([]cobra.Completion{exportJSON, exportYAML}, cobra.ShellCompDirectiveNoFileComp)
	completeRenderFormat = cobra.FixedCompletions([]cobra.Completion{pipeline.FormatSVG, pipeline.FormatDOT}, cobra.ShellCompDirectiveNoFileComp)
)

// completeTitles offers the titles of the report named by the first
// argument. Exports and unreadable files complete nothing.
func completeTitles(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	rep, err := report.ParseFile(args[0], report.Options{ChunkSize: report.DefaultChunkSize})
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []cobra.Completion
	for _, t := range rep.Titles() {
		if strings.HasPrefix(t.Name, toComplete) {
			out = append(out, t.Name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
