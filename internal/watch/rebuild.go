package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/derive/internal/compiler/cache"
	"github.com/conduit-lang/derive/internal/tooling/build"
)

// DefaultDebounce is the quiet period after the last change before a rebuild
const DefaultDebounce = 100 * time.Millisecond

// Rebuilder runs a build after every change to the schema file. Saves that
// leave the content unchanged do not trigger a build.
type Rebuilder struct {
	system   *build.System
	hasher   *cache.FileHasher
	logger   *zap.Logger
	debounce time.Duration
	// OnResult receives the outcome of every build, including the first
	OnResult func(*build.BuildResult, error)

	mu       sync.Mutex
	lastHash string
}

// NewRebuilder creates a rebuilder for the schema configured in system
func NewRebuilder(system *build.System, debounce time.Duration, logger *zap.Logger) *Rebuilder {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Rebuilder{
		system:   system,
		hasher:   cache.NewFileHasher(),
		logger:   logger,
		debounce: debounce,
	}
}

// Run builds once, then rebuilds on every change until ctx is done
func (r *Rebuilder) Run(ctx context.Context) error {
	schema := r.system.Options().SchemaPath
	r.Rebuild(ctx)

	fw, err := NewFileWatcher(
		[]string{filepath.Dir(schema)},
		Filter{Patterns: []string{filepath.Base(schema)}},
		r.debounce,
		func([]string) error {
			r.Rebuild(ctx)
			return nil
		},
		r.logger,
	)
	if err != nil {
		return err
	}
	if err := fw.Start(); err != nil {
		fw.Stop()
		return err
	}
	r.logger.Info("watching schema", zap.String("schema", schema))

	<-ctx.Done()
	return fw.Stop()
}

// Rebuild builds unless the schema content matches the last build. It
// reports whether a build ran.
func (r *Rebuilder) Rebuild(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	schema := r.system.Options().SchemaPath
	hash, err := r.hasher.HashFile(schema)
	if err == nil && hash == r.lastHash {
		r.logger.Debug("schema unchanged, skipping build", zap.String("schema", schema))
		return false
	}

	result, buildErr := r.system.Build(ctx)
	if buildErr == nil && result.Success {
		r.lastHash = hash
		if pruned := r.system.Cache().Prune(time.Hour); pruned > 0 {
			r.logger.Debug("pruned cached instances", zap.Int("count", pruned))
		}
	} else {
		// retry on the next save even if the content comes back unchanged
		r.lastHash = ""
	}

	if r.OnResult != nil {
		r.OnResult(result, buildErr)
	}
	return true
}
