package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/derive/internal/cli/config"
	"github.com/conduit-lang/derive/internal/cli/ui"
	"github.com/conduit-lang/derive/internal/compiler/cache"
	"github.com/conduit-lang/derive/internal/compiler/errors"
	"github.com/conduit-lang/derive/internal/compiler/logic"
	"github.com/conduit-lang/derive/internal/tooling/build"
)

// projectFlags override derive.yml for one invocation
type projectFlags struct {
	schema       string
	output       string
	pkg          string
	capabilities []string
	noTypes      bool
	noCache      bool
	jobs         int
}

func (f *projectFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.schema, "schema", "s", "", "Schema file (default from derive.yml, else derive.schema.yml)")
	cmd.Flags().StringSliceVarP(&f.capabilities, "capability", "c", nil, "Capabilities to derive: "+strings.Join(logic.CapabilityNames(), ", "))
}

// registerBuild adds the flags of commands that run the full build
func (f *projectFlags) registerBuild(cmd *cobra.Command) {
	f.register(cmd)
	cmd.Flags().StringVarP(&f.pkg, "package", "p", "", "Package clause, overriding the schema")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Generated file (default <schema dir>/<package>_derive.go)")
	cmd.Flags().BoolVar(&f.noTypes, "no-types", false, "Do not emit the ADT type declarations")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "Derive every function even when cached")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", 0, "Parallel derivations (default number of CPUs)")
}

// buildOptions loads derive.yml and applies the flags the user set
func (f *projectFlags) buildOptions(cmd *cobra.Command) (*build.BuildOptions, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), nil, noColor(cmd)))
		return nil, nil, err
	}
	opts := cfg.BuildOptions()

	changed := cmd.Flags().Changed
	if changed("schema") {
		opts.SchemaPath = f.schema
	}
	if changed("output") {
		opts.OutputPath = f.output
	}
	if changed("package") {
		opts.Package = f.pkg
	}
	if changed("no-types") {
		opts.EmitTypes = !f.noTypes
	}
	if changed("no-cache") {
		opts.UseCache = !f.noCache
	}
	if changed("jobs") && f.jobs > 0 {
		opts.MaxJobs = f.jobs
	}
	if changed("capability") {
		caps, err := parseCapabilities(f.capabilities)
		if err != nil {
			return nil, nil, err
		}
		opts.Capabilities = caps
	}

	// only commands that run the full build use the shared output cache
	if cmd.Flags().Lookup("no-cache") != nil && opts.UseCache && cfg.Cache.RedisURL != "" {
		redisConfig := cache.DefaultRedisConfig()
		redisConfig.URL = cfg.Cache.RedisURL
		redisConfig.DefaultTTL = cfg.Cache.TTL
		store, err := cache.NewRedisStore(cmd.Context(), redisConfig)
		if err != nil {
			fmt.Fprint(cmd.ErrOrStderr(), ui.Warning(fmt.Sprintf("Output cache disabled: %v", err), nil, noColor(cmd)))
		} else {
			opts.OutputStore = store
		}
	}
	return opts, cfg, nil
}

// closeStore releases the output cache connection, if any
func closeStore(opts *build.BuildOptions) {
	if c, ok := opts.OutputStore.(io.Closer); ok {
		c.Close()
	}
}

// parseCapabilities returns the named capabilities in canonical order
func parseCapabilities(names []string) ([]logic.Capability, error) {
	want := make(map[logic.Capability]bool)
	for _, name := range names {
		c, ok := logic.ParseCapability(name)
		if !ok {
			return nil, errors.NewUnknownCapability(name, logic.CapabilityNames())
		}
		want[c] = true
	}

	var caps []logic.Capability
	for _, c := range logic.Capabilities {
		if want[c] {
			caps = append(caps, c)
		}
	}
	return caps, nil
}

// newLogger logs build steps at debug level with --verbose and only warnings
// otherwise
func newLogger(cmd *cobra.Command) *zap.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")

	var logger *zap.Logger
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		logger, err = cfg.Build()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func noColor(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("no-color")
	return v
}

// registerErrorFormat adds the flags choosing how reportErrors prints
func registerErrorFormat(cmd *cobra.Command, jsonOut *bool) {
	if jsonOut != nil {
		cmd.Flags().BoolVar(jsonOut, "json", false, "Output errors in JSON format")
	}
	cmd.Flags().Bool("compact", false, "Print each error on one file:line:col line, for editors")
}

// reportErrors prints rejected schema or derivation errors and returns an
// error summarizing them
func reportErrors(cmd *cobra.Command, schemaPath string, errs errors.ErrorList, jsonOut bool) error {
	compact, _ := cmd.Flags().GetBool("compact")
	switch {
	case jsonOut:
		out, err := errs.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to encode errors: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
	case compact:
		w := cmd.ErrOrStderr()
		for _, e := range errs {
			if e.File == "" {
				e.WithFile(schemaPath)
			}
			fmt.Fprintln(w, errors.FormatCompact(e))
		}
	default:
		w := cmd.ErrOrStderr()
		fmt.Fprintln(w, errors.FormatErrorList(errs))
		fmt.Fprint(w, ui.SchemaErrors(schemaPath, errs, noColor(cmd)))
	}
	n, _, _ := errs.ErrorCount()
	return fmt.Errorf("%s: %d error(s)", schemaPath, n)
}
