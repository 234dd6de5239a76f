package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/derive/internal/cli/ui"
	"github.com/conduit-lang/derive/internal/tooling/build"
	"github.com/conduit-lang/derive/internal/watch"
)

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	flags := &projectFlags{}
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever the schema changes",
		Long: `Generate once, then watch the schema file and regenerate after every
change. Saves that leave the schema content unchanged are ignored, and
ADTs whose shape did not change reuse their cached derivations.

Examples:
  # Watch the configured schema
  derive watch

  # Wait longer for editors that write in several steps
  derive watch --debounce 500ms
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, cfg, err := flags.buildOptions(cmd)
			if err != nil {
				return err
			}
			defer closeStore(opts)
			opts.Mode = build.ModeGenerate
			if !cmd.Flags().Changed("debounce") {
				debounce = cfg.Watch.Debounce
			}

			logger := newLogger(cmd)
			defer logger.Sync()

			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			rebuilder := watch.NewRebuilder(build.NewSystem(opts, logger), debounce, logger)
			rebuilder.OnResult = func(result *build.BuildResult, err error) {
				switch {
				case err != nil:
					ui.WriteError(errOut, ui.ErrorOptions{
						Level:   ui.ErrorLevelError,
						Context: "REBUILD FAILED",
						Problem: err.Error(),
						NoColor: noColor(cmd),
					})
				case !result.Success:
					reportErrors(cmd, opts.SchemaPath, result.Errors, false)
				case result.OutputHit:
					fmt.Fprint(out, ui.Info(fmt.Sprintf("%s Restored %s from the output cache",
						time.Now().Format("15:04:05"), result.OutputPath), noColor(cmd)))
				default:
					ui.WriteSuccess(out, fmt.Sprintf("%s Generated %s (%d functions, %d cached) in %s",
						time.Now().Format("15:04:05"), result.OutputPath, result.Derived, result.CacheHits,
						result.Duration.Round(time.Millisecond)), noColor(cmd))
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			banner := color.New(color.FgCyan, color.Bold)
			banner.Fprintf(out, "Watching %s (%s)\n", opts.SchemaPath, capabilityList(opts.Capabilities))
			color.New(color.FgYellow).Fprintln(out, "Press Ctrl+C to stop")
			fmt.Fprintln(out)

			if err := rebuilder.Run(ctx); err != nil {
				return fmt.Errorf("watch failed: %w", err)
			}
			return nil
		},
	}

	flags.registerBuild(cmd)
	registerErrorFormat(cmd, nil)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period after a change before regenerating")

	return cmd
}
