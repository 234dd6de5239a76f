package commands

import (
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/derive/internal/cli/config"
	"github.com/conduit-lang/derive/internal/compiler/parser"
)

var completionScripts = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash":       func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	"zsh":        (*cobra.Command).GenZshCompletion,
	"fish":       func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	"powershell": (*cobra.Command).GenPowerShellCompletionWithDesc,
}

// NewCompletionCommand creates the completion command for shell completions
func NewCompletionCommand() *cobra.Command {
	shells := make([]string, 0, len(completionScripts))
	for shell := range completionScripts {
		shells = append(shells, shell)
	}
	slices.Sort(shells)

	return &cobra.Command{
		Use:   "completion [" + strings.Join(shells, "|") + "]",
		Short: "Generate shell completion script",
		Long: `Generate a completion script for the derive CLI. Completions include the
ADT names of the project schema for "derive explain".

  Bash:       source <(derive completion bash)
  Zsh:        derive completion zsh > "${fpath[1]}/_derive"
  Fish:       derive completion fish | source
  PowerShell: derive completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             shells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return completionScripts[args[0]](cmd.Root(), cmd.OutOrStdout())
		},
	}
}

// completeADTNames offers the ADTs of the project schema that are not yet
// on the command line
func completeADTNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	path, _ := cmd.Flags().GetString("schema")
	if !cmd.Flags().Changed("schema") {
		cfg, err := config.Load()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		path = cfg.Schema
	}

	schema, _ := parser.ParseFile(path)
	if schema == nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var names []string
	for _, adt := range schema.ADTs {
		if strings.HasPrefix(adt.Name, toComplete) && !slices.Contains(args, adt.Name) {
			names = append(names, adt.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
