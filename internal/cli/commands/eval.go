package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/derive/internal/cli/ui"
	"github.com/conduit-lang/derive/internal/compiler/derive"
	"github.com/conduit-lang/derive/internal/compiler/errors"
	"github.com/conduit-lang/derive/internal/compiler/logic"
	"github.com/conduit-lang/derive/internal/eval"
)

// NewEvalCommand creates the eval command
func NewEvalCommand() *cobra.Command {
	flags := &projectFlags{}
	var take int

	cmd := &cobra.Command{
		Use:   "eval <value> [other]",
		Short: "Evaluate the derived instances on value literals",
		Long: `Parse a value written in constructor syntax against the schema and print
its Show and Hash. With a second value, also print Equal and Ord of the pair.

The derived logic is interpreted directly; nothing is generated. Strings,
UUIDs, times and byte strings are written as quoted strings.`,
		Example: `  derive eval 'B(2, 3)'
  derive eval 'Node(Leaf, "x", Leaf)' --take 6
  derive eval 'A(5)' 'B(2, 3)'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, _, err := flags.buildOptions(cmd)
			if err != nil {
				return err
			}
			schema, r, err := loadSchema(cmd, opts, false)
			if err != nil {
				return err
			}

			// every capability of every ADT, since fields may hold any ADT
			var fns []*logic.Func
			var failed errors.ErrorList
			for _, adt := range schema.ADTs {
				for _, c := range logic.Capabilities {
					fn, err := derive.Derive(adt, c, r)
					if err != nil {
						failed = append(failed, asCompilerError(adt, err).WithFile(opts.SchemaPath))
						continue
					}
					fns = append(fns, fn)
				}
			}
			if len(failed) > 0 {
				return reportErrors(cmd, opts.SchemaPath, failed, false)
			}
			env := eval.ForFuncs(fns)

			values := make([]eval.Value, len(args))
			for i, src := range args {
				v, err := eval.ParseValue(schema, src)
				if err != nil {
					return fmt.Errorf("value %d: %w", i+1, err)
				}
				values[i] = v
			}

			table := ui.NewKeyValueTable(cmd.OutOrStdout(), noColor(cmd))
			for i, v := range values {
				label := ""
				if len(values) > 1 {
					label = fmt.Sprintf(" %d", i+1)
				}

				s, err := env.Show(v)
				if err != nil {
					return err
				}
				h, err := env.Hash(v)
				if err != nil {
					return err
				}
				if take > 0 {
					table.AddRow("Show"+label, s.Take(take))
				} else {
					table.AddRow("Show"+label, s.String())
				}
				table.AddRow("Hash"+label, strconv.FormatInt(h, 10))
			}

			if len(values) == 2 {
				eq, err := env.Equal(values[0], values[1])
				if err != nil {
					return err
				}
				ord, err := env.Compare(values[0], values[1])
				if err != nil {
					return err
				}
				table.AddRow("Equal", strconv.FormatBool(eq))
				table.AddRow("Ord", ord.String())
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.schema, "schema", "s", "", "Schema file (default from derive.yml, else derive.schema.yml)")
	cmd.Flags().IntVar(&take, "take", 0, "Only force the first n characters of Show")

	return cmd
}
