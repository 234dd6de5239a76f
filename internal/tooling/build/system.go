// Package build runs the derive pipeline for one schema file: parse,
// validate, derive every (ADT, capability) pair, render Go and write it.
package build

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conduit-lang/derive/internal/compiler/ast"
	"github.com/conduit-lang/derive/internal/compiler/cache"
	"github.com/conduit-lang/derive/internal/compiler/codegen"
	"github.com/conduit-lang/derive/internal/compiler/derive"
	"github.com/conduit-lang/derive/internal/compiler/errors"
	"github.com/conduit-lang/derive/internal/compiler/logic"
	"github.com/conduit-lang/derive/internal/compiler/parser"
	"github.com/conduit-lang/derive/internal/compiler/resolve"
	ustrings "github.com/conduit-lang/derive/internal/util/strings"
)

// BuildMode represents what a build does with its output
type BuildMode int

const (
	// ModeGenerate writes the generated file
	ModeGenerate BuildMode = iota
	// ModeCheck derives and renders everything but writes nothing
	ModeCheck
)

func (m BuildMode) String() string {
	switch m {
	case ModeGenerate:
		return "generate"
	case ModeCheck:
		return "check"
	default:
		return "unknown"
	}
}

// BuildOptions configures the build process
type BuildOptions struct {
	Mode       BuildMode
	SchemaPath string
	// OutputPath defaults to <schema dir>/<package>_derive.go
	OutputPath string
	// Package overrides the package declared by the schema
	Package      string
	Capabilities []logic.Capability
	// RuntimeImport replaces the import path of the builtin instances
	RuntimeImport string
	EmitTypes     bool
	UseCache      bool
	MaxJobs       int
	// OutputStore, when set, shares generated files between builds with
	// identical inputs, possibly on other machines
	OutputStore cache.OutputStore
}

// DefaultBuildOptions returns sensible defaults
func DefaultBuildOptions() *BuildOptions {
	return &BuildOptions{
		Mode:         ModeGenerate,
		SchemaPath:   "derive.schema.yml",
		Capabilities: logic.Capabilities,
		EmitTypes:    true,
		UseCache:     true,
		MaxJobs:      runtime.NumCPU(),
	}
}

// BuildResult contains information about the build
type BuildResult struct {
	Success    bool
	RunID      string
	OutputPath string
	Schema     *ast.Schema
	Funcs      []*logic.Func
	Source     []byte
	Errors     errors.ErrorList
	Duration   time.Duration
	Derived    int
	CacheHits  int
	// OutputHit reports that Source came from the output store and nothing
	// was derived
	OutputHit bool
}

// System coordinates the build. The instance cache survives across calls to
// Build, which is what makes rebuilds in watch mode cheap.
type System struct {
	options *BuildOptions
	cache   *cache.InstanceCache
	hasher  *cache.FileHasher
	logger  *zap.Logger

	mu sync.Mutex
	// universe is the resolver fingerprint of the last derivation
	universe string
}

// NewSystem creates a new build system
func NewSystem(opts *BuildOptions, logger *zap.Logger) *System {
	if opts == nil {
		opts = DefaultBuildOptions()
	}
	if len(opts.Capabilities) == 0 {
		opts.Capabilities = logic.Capabilities
	}
	if opts.MaxJobs <= 0 {
		opts.MaxJobs = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &System{
		options: opts,
		cache:   cache.NewInstanceCache(),
		hasher:  cache.NewFileHasher(),
		logger:  logger,
	}
}

// Options returns the options the system was created with
func (s *System) Options() *BuildOptions {
	return s.options
}

// Cache returns the instance cache shared by all builds of this system
func (s *System) Cache() *cache.InstanceCache {
	return s.cache
}

// Build performs a full build. Schema and derivation problems are reported
// in BuildResult.Errors; the returned error is reserved for failures of the
// build itself such as cancellation or an unwritable output.
func (s *System) Build(ctx context.Context) (*BuildResult, error) {
	startTime := time.Now()
	result := &BuildResult{RunID: uuid.NewString()}
	log := s.logger.With(zap.String("run_id", result.RunID), zap.String("schema", s.options.SchemaPath))
	log.Debug("build started", zap.Stringer("mode", s.options.Mode))

	schema, errs := parser.ParseFile(s.options.SchemaPath)
	result.Schema = schema
	if errs.HasErrors() {
		result.Errors = errs
		result.Duration = time.Since(startTime)
		log.Info("schema rejected", zap.Int("errors", len(errs)))
		return result, nil
	}

	pkg := s.options.Package
	if pkg == "" {
		pkg = schema.Package
	}

	// check mode always derives so it can report every function
	var outputKey string
	if s.options.OutputStore != nil && pkg != "" && s.options.Mode == ModeGenerate {
		outputKey = s.outputKey(pkg)
	}
	if outputKey != "" {
		src, err := s.options.OutputStore.Get(ctx, outputKey)
		switch {
		case err == nil:
			result.Source = src
			result.OutputHit = true
			log.Debug("output store hit", zap.String("key", outputKey))
		case !cache.IsCacheMiss(err):
			log.Warn("output store unavailable", zap.Error(err))
		}
	}

	if !result.OutputHit {
		fns, hits, derrs, err := s.deriveAll(ctx, schema)
		if err != nil {
			return nil, err
		}
		result.Funcs = fns
		result.Derived = len(fns)
		result.CacheHits = hits
		if len(derrs) > 0 {
			result.Errors = derrs.WithFile(s.options.SchemaPath)
			result.Duration = time.Since(startTime)
			log.Info("derivation failed", zap.Int("errors", len(derrs)))
			return result, nil
		}

		if pkg == "" {
			result.Errors = errors.ErrorList{
				errors.NewCodeGenFailed(schema.Loc, "no package name").
					WithSuggestion("Set 'package' in the schema or pass --package").
					WithFile(s.options.SchemaPath),
			}
			result.Duration = time.Since(startTime)
			return result, nil
		}

		src, err := codegen.NewGenerator().GenerateFile(schema, fns, codegen.Options{
			Package:       pkg,
			EmitTypes:     s.options.EmitTypes,
			RuntimeImport: s.options.RuntimeImport,
		})
		if err != nil {
			var ce *errors.CompilerError
			if !stderrors.As(err, &ce) {
				return nil, fmt.Errorf("code generation failed: %w", err)
			}
			result.Errors = errors.ErrorList{ce.WithFile(s.options.SchemaPath)}
			result.Duration = time.Since(startTime)
			return result, nil
		}
		result.Source = src

		if outputKey != "" {
			if err := s.options.OutputStore.Set(ctx, outputKey, src, 0); err != nil {
				log.Warn("failed to store output", zap.Error(err))
			}
		}
	}

	result.OutputPath = s.outputPath(pkg)
	if s.options.Mode == ModeGenerate {
		if err := writeGeneratedFile(result.OutputPath, result.Source); err != nil {
			return nil, err
		}
	}

	result.Success = true
	result.Duration = time.Since(startTime)
	stats := s.cache.Stats()
	log.Info("build finished",
		zap.String("output", result.OutputPath),
		zap.Int("derived", result.Derived),
		zap.Int("cache_hits", result.CacheHits),
		zap.Bool("output_hit", result.OutputHit),
		zap.Float64("cache_hit_rate", stats.HitRate()),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

func (s *System) outputPath(pkg string) string {
	if s.options.OutputPath != "" {
		return s.options.OutputPath
	}
	return filepath.Join(filepath.Dir(s.options.SchemaPath), ustrings.ToSnakeCase(pkg)+"_derive.go")
}

// outputKey hashes every input that determines the generated file, or
// returns "" when the schema cannot be read
func (s *System) outputKey(pkg string) string {
	content, err := s.hasher.HashFile(s.options.SchemaPath)
	if err != nil {
		return ""
	}
	caps := make([]string, len(s.options.Capabilities))
	for i, c := range s.options.Capabilities {
		caps[i] = c.String()
	}
	return s.hasher.HashString(strings.Join([]string{
		codegen.Header,
		content,
		pkg,
		strings.Join(caps, ","),
		strconv.FormatBool(s.options.EmitTypes),
		s.options.RuntimeImport,
	}, "\x00"))
}

// resetCacheOnNewUniverse drops every cached instance once the set of
// resolvable types changes. Cache keys embed the universe, so no old entry
// could be hit again.
func (s *System) resetCacheOnNewUniverse(universe string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.universe != "" && s.universe != universe {
		s.logger.Debug("type universe changed, clearing instance cache", zap.Int("entries", s.cache.Size()))
		s.cache.InvalidateAll()
	}
	s.universe = universe
}

// job is one (ADT, capability) derivation
type job struct {
	index int
	adt   *ast.ADTNode
	cap   logic.Capability
}

// deriveAll derives every requested capability of every ADT with a pool of
// workers. Results keep schema order: ADTs in declaration order, capabilities
// in option order. Every failing pair is reported, not only the first.
func (s *System) deriveAll(ctx context.Context, schema *ast.Schema) ([]*logic.Func, int, errors.ErrorList, error) {
	r := resolve.ForSchema(schema)
	if s.options.RuntimeImport != "" {
		r.SetRuntimeImport(s.options.RuntimeImport)
	}
	universe := r.Fingerprint()
	s.resetCacheOnNewUniverse(universe)

	var jobList []job
	for _, adt := range schema.ADTs {
		for _, c := range s.options.Capabilities {
			jobList = append(jobList, job{index: len(jobList), adt: adt, cap: c})
		}
	}

	type result struct {
		index    int
		fn       *logic.Func
		err      error
		cacheHit bool
	}

	jobs := make(chan job, len(jobList))
	results := make(chan result, len(jobList))

	numWorkers := s.options.MaxJobs
	if numWorkers > len(jobList) {
		numWorkers = len(jobList)
	}

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					results <- result{index: j.index, err: ctx.Err()}
					continue
				}

				key := s.hasher.Key(j.adt, universe, j.cap)
				if s.options.UseCache {
					if fn, ok := s.cache.Get(key); ok {
						results <- result{index: j.index, fn: fn, cacheHit: true}
						continue
					}
				}

				fn, err := derive.Derive(j.adt, j.cap, r)
				if err == nil && s.options.UseCache {
					s.cache.Set(key, fn)
				}
				results <- result{index: j.index, fn: fn, err: err}
			}
		}()
	}

	for _, j := range jobList {
		jobs <- j
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	fns := make([]*logic.Func, len(jobList))
	failures := make([]*errors.CompilerError, len(jobList))
	cacheHits := 0
	for res := range results {
		if res.err != nil {
			if stderrors.Is(res.err, context.Canceled) || stderrors.Is(res.err, context.DeadlineExceeded) {
				continue
			}
			j := jobList[res.index]
			var ce *errors.CompilerError
			if !stderrors.As(res.err, &ce) {
				ce = errors.NewCodeGenFailed(j.adt.Loc, res.err.Error())
			}
			failures[res.index] = ce.WithADT(j.adt.Name)
			s.logger.Debug("derivation failed",
				zap.String("adt", j.adt.Name),
				zap.Stringer("capability", j.cap),
				zap.String("code", string(ce.Code)))
			continue
		}
		if res.cacheHit {
			cacheHits++
		}
		fns[res.index] = res.fn
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, nil, err
	}

	var errs errors.ErrorList
	for _, f := range failures {
		if f != nil {
			errs = append(errs, f)
		}
	}
	if len(errs) > 0 {
		return nil, cacheHits, errs, nil
	}
	return fns, cacheHits, nil, nil
}

// writeGeneratedFile writes the output through a temporary file in the same
// directory so readers never observe a partial file.
func writeGeneratedFile(path string, src []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".derive-*.go.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(src); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move generated file into place: %w", err)
	}
	return nil
}
