package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/derive/internal/cli/ui"
	"github.com/conduit-lang/derive/internal/compiler/logic"
	"github.com/conduit-lang/derive/internal/tooling/build"
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	flags := &projectFlags{}
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the schema and derive everything without writing",
		Long: `Run the full pipeline, including Go rendering, but write nothing. Exits
non-zero when the schema is rejected or any derivation fails.`,
		Example: `  derive check
  derive check -s shapes.yml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, _, err := flags.buildOptions(cmd)
			if err != nil {
				return err
			}
			defer closeStore(opts)
			opts.Mode = build.ModeCheck

			result, err := runBuild(cmd, opts, jsonOut)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			table := ui.NewTable(out, []string{"ADT", "Constructors", "Derived"}, &ui.TableOptions{NoColor: noColor(cmd), RightAlign: []int{1}})
			derived := make(map[string][]string)
			for _, fn := range result.Funcs {
				derived[fn.ADT.Name] = append(derived[fn.ADT.Name], fn.Capability.String())
			}
			for _, adt := range result.Schema.ADTs {
				table.AddRow(adt.Name, strconv.Itoa(len(adt.Constructors)), strings.Join(derived[adt.Name], " "))
			}
			table.Render()
			fmt.Fprintln(out)

			ui.WriteSuccess(out, fmt.Sprintf("%s OK: %d functions derived", opts.SchemaPath, result.Derived), noColor(cmd))
			return nil
		},
	}

	flags.registerBuild(cmd)
	registerErrorFormat(cmd, &jsonOut)

	return cmd
}

// capabilityList names caps for display
func capabilityList(caps []logic.Capability) string {
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}
