package build

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/conduit-lang/derive/internal/compiler/cache"
	"github.com/conduit-lang/derive/internal/compiler/errors"
	"github.com/conduit-lang/derive/internal/compiler/logic"
)

const shapesSchema = `package: shapes
adts:
  - name: Shape
    constructors:
      - name: Circle
        fields: [{name: radius, type: Int}]
      - name: Rect
        fields: [{name: width, type: Int}, {name: height, type: Int}]
  - name: Tree
    constructors:
      - name: Leaf
      - name: Node
        fields: [{name: left, type: Tree}, {name: shape, type: Shape}, {name: right, type: Tree}]
`

func writeSchema(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shapes.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestSystem(t *testing.T, schemaPath string) *System {
	t.Helper()
	opts := DefaultBuildOptions()
	opts.SchemaPath = schemaPath
	opts.MaxJobs = 4
	return NewSystem(opts, zap.NewNop())
}

func TestBuildMode_String(t *testing.T) {
	tests := []struct {
		mode BuildMode
		want string
	}{
		{ModeGenerate, "generate"},
		{ModeCheck, "check"},
		{BuildMode(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("BuildMode.String() = %q, want %q", got, tt.want)
		}
	}
}

func TestNewSystem_Defaults(t *testing.T) {
	sys := NewSystem(&BuildOptions{}, nil)

	if len(sys.Options().Capabilities) != len(logic.Capabilities) {
		t.Errorf("Expected all capabilities by default, got %v", sys.Options().Capabilities)
	}
	if sys.Options().MaxJobs != 1 {
		t.Errorf("Expected MaxJobs to be clamped to 1, got %d", sys.Options().MaxJobs)
	}
	if sys.logger == nil {
		t.Error("Expected a nop logger")
	}
}

func TestBuild_WritesOutput(t *testing.T) {
	path := writeSchema(t, shapesSchema)
	sys := newTestSystem(t, path)

	result, err := sys.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("Expected success, got errors: %v", result.Errors)
	}
	if result.RunID == "" {
		t.Error("Expected a run id")
	}
	if result.Derived != 8 {
		t.Errorf("Expected 8 derived functions, got %d", result.Derived)
	}

	want := filepath.Join(filepath.Dir(path), "shapes_derive.go")
	if result.OutputPath != want {
		t.Errorf("OutputPath = %s, want %s", result.OutputPath, want)
	}

	written, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("Output not written: %v", err)
	}
	if string(written) != string(result.Source) {
		t.Error("Written file differs from result source")
	}
	for _, symbol := range []string{"func ShowShape(", "func HashTree(", "func EqualShape(", "func OrdTree("} {
		if !strings.Contains(string(written), symbol) {
			t.Errorf("Generated file is missing %s", symbol)
		}
	}

	// Functions come out in ADT order, then capability order
	if result.Funcs[0].Ref.Symbol != "ShowShape" || result.Funcs[7].Ref.Symbol != "OrdTree" {
		t.Errorf("Unexpected function order: %s ... %s", result.Funcs[0].Ref, result.Funcs[7].Ref)
	}
}

func TestBuild_CheckModeWritesNothing(t *testing.T) {
	path := writeSchema(t, shapesSchema)
	sys := newTestSystem(t, path)
	sys.Options().Mode = ModeCheck

	result, err := sys.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !result.Success || len(result.Source) == 0 {
		t.Fatal("Expected rendered source in check mode")
	}
	if _, err := os.Stat(result.OutputPath); !os.IsNotExist(err) {
		t.Errorf("Expected no output file, stat returned %v", err)
	}
}

func TestBuild_CacheHitsOnRebuild(t *testing.T) {
	path := writeSchema(t, shapesSchema)
	sys := newTestSystem(t, path)

	first, err := sys.Build(context.Background())
	if err != nil || !first.Success {
		t.Fatalf("First build failed: %v %v", err, first.Errors)
	}
	if first.CacheHits != 0 {
		t.Errorf("Expected a cold cache, got %d hits", first.CacheHits)
	}

	second, err := sys.Build(context.Background())
	if err != nil || !second.Success {
		t.Fatalf("Second build failed: %v %v", err, second.Errors)
	}
	if second.CacheHits != 8 {
		t.Errorf("Expected 8 cache hits, got %d", second.CacheHits)
	}
	if string(first.Source) != string(second.Source) {
		t.Error("Cached build produced different output")
	}

	// Adding an ADT changes the resolver universe, so nothing is reused
	extended := shapesSchema + "  - name: Unit\n    constructors: [{name: U}]\n"
	if err := os.WriteFile(path, []byte(extended), 0644); err != nil {
		t.Fatal(err)
	}
	third, err := sys.Build(context.Background())
	if err != nil || !third.Success {
		t.Fatalf("Third build failed: %v %v", err, third.Errors)
	}
	if third.CacheHits != 0 {
		t.Errorf("Expected cache misses after the universe changed, got %d hits", third.CacheHits)
	}
	// entries of the old universe are dropped rather than left to age out
	stats := sys.Cache().Stats()
	if stats.Entries != 12 || stats.Hits != 0 || stats.Misses != 12 {
		t.Errorf("Expected only the 12 new instances after the reset, got %+v", stats)
	}
}

func TestBuild_SchemaErrors(t *testing.T) {
	path := writeSchema(t, "adts:\n  - name: T\n")
	sys := newTestSystem(t, path)

	result, err := sys.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if result.Success {
		t.Fatal("Expected failure")
	}
	if !errors.HasCode(result.Errors, errors.ErrEmptyADT) {
		t.Errorf("Expected SCH001, got %v", result.Errors)
	}
	if result.Errors[0].File != path {
		t.Errorf("Expected errors stamped with %s, got %q", path, result.Errors[0].File)
	}
}

func TestBuild_DerivationErrorsAreCollected(t *testing.T) {
	path := writeSchema(t, `package: broken
adts:
  - name: A
    constructors:
      - name: MkA
        fields: [{name: w, type: Widget}]
  - name: B
    constructors:
      - name: MkB
        fields: [{name: g, type: Gadget}]
`)
	sys := newTestSystem(t, path)
	sys.Options().Capabilities = []logic.Capability{logic.Show, logic.Equal}

	result, err := sys.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if result.Success {
		t.Fatal("Expected failure")
	}
	// two ADTs times two capabilities
	if len(result.Errors) != 4 {
		t.Fatalf("Expected 4 errors, got %d: %v", len(result.Errors), result.Errors)
	}
	if result.Errors[0].ADT != "A" || result.Errors[3].ADT != "B" {
		t.Errorf("Errors out of order: %s, %s", result.Errors[0].ADT, result.Errors[3].ADT)
	}
	if !errors.HasCode(result.Errors, errors.ErrUnresolvedCapability) {
		t.Errorf("Expected DRV701, got %v", result.Errors)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(path), "broken_derive.go")); !os.IsNotExist(err) {
		t.Error("Expected nothing written for a failed build")
	}
}

func TestBuild_MissingPackage(t *testing.T) {
	path := writeSchema(t, "adts:\n  - name: T\n    constructors: [{name: A}]\n")
	sys := newTestSystem(t, path)

	result, err := sys.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !errors.HasCode(result.Errors, errors.ErrCodeGenFailed) {
		t.Errorf("Expected GEN600, got %v", result.Errors)
	}

	sys.Options().Package = "override"
	result, err = sys.Build(context.Background())
	if err != nil || !result.Success {
		t.Fatalf("Expected success with a package override: %v %v", err, result.Errors)
	}
	if !strings.Contains(string(result.Source), "package override") {
		t.Error("Expected the override package clause")
	}
}

func TestBuild_Canceled(t *testing.T) {
	path := writeSchema(t, shapesSchema)
	sys := newTestSystem(t, path)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := sys.Build(ctx); err == nil {
		t.Fatal("Expected an error for a canceled context")
	}
}

func TestBuild_LogsRunID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	opts := DefaultBuildOptions()
	opts.SchemaPath = writeSchema(t, shapesSchema)
	sys := NewSystem(opts, zap.New(core))

	result, err := sys.Build(context.Background())
	if err != nil || !result.Success {
		t.Fatalf("Build failed: %v", err)
	}

	entries := logs.FilterMessage("build finished").All()
	if len(entries) != 1 {
		t.Fatalf("Expected one build finished entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["run_id"]; got != result.RunID {
		t.Errorf("run_id = %v, want %s", got, result.RunID)
	}
}

func TestBuild_RuntimeImport(t *testing.T) {
	path := writeSchema(t, shapesSchema)
	sys := newTestSystem(t, path)
	sys.Options().Mode = ModeCheck
	sys.Options().RuntimeImport = "example.com/vendor/rt"

	result, err := sys.Build(context.Background())
	if err != nil || !result.Success {
		t.Fatalf("Build failed: %v %v", err, result.Errors)
	}
	if !strings.Contains(string(result.Source), `"example.com/vendor/rt"`) {
		t.Errorf("Expected the vendored runtime import, got:\n%s", result.Source)
	}
	if strings.Contains(string(result.Source), "derive/pkg/runtime") {
		t.Error("Expected the default runtime import to be replaced")
	}
}

func TestBuild_OutputStore(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	defer mr.Close()
	store := cache.NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), cache.DefaultRedisConfig())

	path := writeSchema(t, shapesSchema)
	newSystem := func() *System {
		sys := newTestSystem(t, path)
		sys.Options().OutputStore = store
		return sys
	}

	first, err := newSystem().Build(context.Background())
	if err != nil || !first.Success {
		t.Fatalf("Build failed: %v", err)
	}
	if first.OutputHit {
		t.Error("Expected the first build to miss the output store")
	}

	// a fresh system has an empty instance cache but shares the store
	os.Remove(first.OutputPath)
	second, err := newSystem().Build(context.Background())
	if err != nil || !second.Success {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if !second.OutputHit || second.Derived != 0 {
		t.Errorf("Expected an output store hit without derivations, got hit=%v derived=%d", second.OutputHit, second.Derived)
	}
	if string(second.Source) != string(first.Source) {
		t.Error("Expected the stored source to be reused verbatim")
	}
	if _, err := os.Stat(second.OutputPath); err != nil {
		t.Errorf("Expected the stored output to be written: %v", err)
	}

	// any input change produces a new key
	other := newSystem()
	other.Options().EmitTypes = false
	third, err := other.Build(context.Background())
	if err != nil || !third.Success {
		t.Fatalf("Build failed: %v", err)
	}
	if third.OutputHit {
		t.Error("Expected a miss after changing emit types")
	}

	checker := newSystem()
	checker.Options().Mode = ModeCheck
	checked, err := checker.Build(context.Background())
	if err != nil || !checked.Success {
		t.Fatalf("Check failed: %v", err)
	}
	if checked.OutputHit || checked.Derived == 0 {
		t.Errorf("Expected check mode to derive instead of using the store, got hit=%v derived=%d", checked.OutputHit, checked.Derived)
	}
}

func TestBuild_OutputStoreUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	store := cache.NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}), cache.DefaultRedisConfig())
	mr.Close()

	core, logs := observer.New(zap.WarnLevel)
	opts := DefaultBuildOptions()
	opts.SchemaPath = writeSchema(t, shapesSchema)
	opts.OutputStore = store

	result, err := NewSystem(opts, zap.New(core)).Build(context.Background())
	if err != nil || !result.Success {
		t.Fatalf("Expected the build to succeed without the store: %v", err)
	}
	if logs.FilterMessage("output store unavailable").Len() != 1 {
		t.Error("Expected a warning about the unavailable store")
	}
}
