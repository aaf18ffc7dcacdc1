package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/stratum/pkg/dag/transform"
)

// layoutFlagValues lists the values offered for the layout flags that take
// a fixed set of names.
var layoutFlagValues = map[string][]string{
	"rankdir":   {"tb\ttop to bottom", "bt\tbottom to top", "lr\tleft to right", "rl\tright to left"},
	"acyclicer": {"greedy\tbreak cycles by the greedy feedback arc set"},
	"ranker":    {transform.RankerLongestPath, transform.RankerTightTree},
	"align":     {"ul\tup-left", "ur\tup-right", "dl\tdown-left", "dr\tdown-right"},
}

// completionCommand creates the completion command.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for stratum.

Completions cover subcommands, JSON graph files for "stratum layout" and
the values of --rankdir, --ranker, --acyclicer and --align.

  bash        source <(stratum completion bash)
  zsh         stratum completion zsh > "${fpath[1]}/_stratum"
  fish        stratum completion fish | source
  powershell  stratum completion powershell | Out-String | Invoke-Expression

Add the line for your shell to its startup file to keep completions in new
sessions.`,
		DisableFlagsInUseLine: true,
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
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// registerLayoutCompletions completes graph files as arguments, the named
// values of the layout flags and the file types of --config and --preview.
func registerLayoutCompletions(cmd *cobra.Command) {
	cmd.ValidArgsFunction = func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
	}
	for name, values := range layoutFlagValues {
		if cmd.Flags().Lookup(name) == nil {
			continue
		}
		_ = cmd.RegisterFlagCompletionFunc(name, cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
	}
	for name, exts := range map[string][]string{"config": {"toml", "yaml", "yml"}, "preview": {"svg"}} {
		if cmd.Flags().Lookup(name) == nil {
			continue
		}
		_ = cmd.RegisterFlagCompletionFunc(name, func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return exts, cobra.ShellCompDirectiveFilterFileExt
		})
	}
}
