package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/derive/internal/cli/ui"
	"github.com/conduit-lang/derive/internal/tooling/build"
)

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	flags := &projectFlags{}
	var jsonOut bool

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"g"},
		Short:   "Generate Go instances for every ADT of the schema",
		Long: `Parse and validate the schema, derive every requested capability of every
ADT and write one formatted Go file holding the ADT types and the
Show<ADT>, Hash<ADT>, Equal<ADT> and Ord<ADT> functions.

All schema and derivation errors are reported together. Nothing is written
unless every derivation succeeds.`,
		Example: `  # Generate from derive.yml or derive.schema.yml
  derive generate

  # Generate from another schema into a chosen file
  derive g -s shapes.yml -o internal/shapes/shapes_derive.go

  # Only Equal and Hash, for types declared by hand
  derive generate -c Equal,Hash --no-types

  # Report errors as JSON (useful for tooling)
  derive generate --json

  # One line per error, in the file:line:col form editors jump to
  derive generate --compact`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, _, err := flags.buildOptions(cmd)
			if err != nil {
				return err
			}
			defer closeStore(opts)
			opts.Mode = build.ModeGenerate

			result, err := runBuild(cmd, opts, jsonOut)
			if err != nil {
				return err
			}

			if result.OutputHit {
				ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("Restored %s from the output cache in %s",
					result.OutputPath, result.Duration.Round(time.Millisecond)), noColor(cmd))
				return nil
			}
			ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("Generated %s (%d functions for %d ADTs, %d cached) in %s",
				result.OutputPath, result.Derived, len(result.Schema.ADTs), result.CacheHits,
				result.Duration.Round(time.Millisecond)), noColor(cmd))
			return nil
		},
	}

	flags.registerBuild(cmd)
	registerErrorFormat(cmd, &jsonOut)

	return cmd
}

// runBuild runs one build and reports its errors. A nil error means the
// result succeeded.
func runBuild(cmd *cobra.Command, opts *build.BuildOptions, jsonOut bool) (*build.BuildResult, error) {
	logger := newLogger(cmd)
	defer logger.Sync()

	result, err := build.NewSystem(opts, logger).Build(cmd.Context())
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.BuildError(err.Error(), nil, noColor(cmd)))
		return nil, err
	}
	if !result.Success {
		return nil, reportErrors(cmd, opts.SchemaPath, result.Errors, jsonOut)
	}
	return result, nil
}
