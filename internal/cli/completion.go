package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tracklayout/pkg/core/layout"
	"github.com/matzehuels/tracklayout/pkg/core/mode"
	tio "github.com/matzehuels/tracklayout/pkg/io"
)

var completionShells = map[string]func(cmd *cobra.Command, w io.Writer) error{
	"bash":       func(cmd *cobra.Command, w io.Writer) error { return cmd.GenBashCompletionV2(w, true) },
	"zsh":        func(cmd *cobra.Command, w io.Writer) error { return cmd.GenZshCompletion(w) },
	"fish":       func(cmd *cobra.Command, w io.Writer) error { return cmd.GenFishCompletion(w, true) },
	"powershell": func(cmd *cobra.Command, w io.Writer) error { return cmd.GenPowerShellCompletionWithDesc(w) },
}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for tracklayout.

  $ source <(tracklayout completion bash)
  $ tracklayout completion zsh > "${fpath[1]}/_tracklayout"
  $ tracklayout completion fish | source
  PS> tracklayout completion powershell | Out-String | Invoke-Expression

'mode set' completes event names, and item ids when --track is given.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, ok := completionShells[args[0]]
			if !ok {
				return fmt.Errorf("unsupported shell %q", args[0])
			}
			return gen(cmd.Root(), stdout)
		},
	}
}

// completeModeSet completes the item and event arguments of "mode set".
func completeModeSet(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		path, _ := cmd.Flags().GetString("track")
		if path == "" {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		t, err := tio.ImportFile(path)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		var ids []string
		for _, it := range t.Items {
			if it.Kind == layout.KindPoint && strings.HasPrefix(it.ID, toComplete) {
				ids = append(ids, it.ID)
			}
		}
		return ids, cobra.ShellCompDirectiveNoFileComp
	case 1:
		var events []string
		for _, ev := range []mode.Event{mode.Expand, mode.Spread, mode.Collapse, mode.Cycle} {
			if strings.HasPrefix(ev.String(), toComplete) {
				events = append(events, ev.String())
			}
		}
		return events, cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
