package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/derive/internal/cli/ui"
	"github.com/conduit-lang/derive/internal/compiler/ast"
	"github.com/conduit-lang/derive/internal/compiler/derive"
	"github.com/conduit-lang/derive/internal/compiler/errors"
	"github.com/conduit-lang/derive/internal/compiler/logic"
	"github.com/conduit-lang/derive/internal/compiler/parser"
	"github.com/conduit-lang/derive/internal/compiler/resolve"
	"github.com/conduit-lang/derive/internal/tooling/build"
	ustrings "github.com/conduit-lang/derive/internal/util/strings"
)

// NewExplainCommand creates the explain command
func NewExplainCommand() *cobra.Command {
	flags := &projectFlags{}

	cmd := &cobra.Command{
		Use:   "explain [ADT...]",
		Short: "Print the derived logic of ADTs",
		Long: `Print the generated logic of each requested capability as an outline of
nested constructor dispatch, before it is rendered as Go.

Without arguments, list the ADTs of the schema and their derived symbols.`,
		Example: `  derive explain
  derive explain Shape Tree
  derive explain Shape -c Hash`,
		ValidArgsFunction: completeADTNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, _, err := flags.buildOptions(cmd)
			if err != nil {
				return err
			}
			schema, r, err := loadSchema(cmd, opts, true)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				table := ui.NewTable(out, []string{"ADT", "Constructors", "Symbols"}, &ui.TableOptions{NoColor: noColor(cmd), RightAlign: []int{1}})
				for _, adt := range schema.ADTs {
					symbols := make([]string, len(opts.Capabilities))
					for i, c := range opts.Capabilities {
						symbols[i] = derive.Symbol(c, adt.Name)
					}
					table.AddRow(adt.Name, strconv.Itoa(len(adt.Constructors)), strings.Join(symbols, " "))
				}
				table.Render()
				return nil
			}

			var failed errors.ErrorList
			for _, name := range args {
				adt, ok := schema.Lookup(name)
				if !ok {
					similar := ustrings.FindSimilar(name, schema.Names(), nil)
					fmt.Fprint(cmd.ErrOrStderr(), ui.ADTNotFoundError(name, similar, noColor(cmd)))
					return fmt.Errorf("unknown ADT %q", name)
				}

				ui.Header(out, adt.Name, noColor(cmd))
				for _, c := range opts.Capabilities {
					fn, err := derive.Derive(adt, c, r)
					if err != nil {
						failed = append(failed, asCompilerError(adt, err).WithFile(opts.SchemaPath))
						continue
					}
					fmt.Fprintln(out, logic.Dump(fn))
				}
			}
			if len(failed) > 0 {
				return reportErrors(cmd, opts.SchemaPath, failed, false)
			}
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}

// loadSchema parses and validates the configured schema and binds its ADTs.
// The runtime import override only matters to code that is rendered.
func loadSchema(cmd *cobra.Command, opts *build.BuildOptions, rendered bool) (*ast.Schema, *resolve.Registry, error) {
	schema, errs := parser.ParseFile(opts.SchemaPath)
	if errs.HasErrors() {
		return nil, nil, reportErrors(cmd, opts.SchemaPath, errs, false)
	}

	r := resolve.ForSchema(schema)
	if rendered && opts.RuntimeImport != "" {
		r.SetRuntimeImport(opts.RuntimeImport)
	}
	return schema, r, nil
}

func asCompilerError(adt *ast.ADTNode, err error) *errors.CompilerError {
	ce, ok := err.(*errors.CompilerError)
	if !ok {
		ce = errors.NewCodeGenFailed(adt.Loc, err.Error())
	}
	return ce.WithADT(adt.Name)
}
