package commands

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/derive/internal/compiler/errors"
)

const sampleSchema = `package: sample
adts:
  - name: T
    constructors:
      - name: A
        fields: [{name: x, type: Int}]
      - name: B
        fields: [{name: y, type: Int}, {name: z, type: Int}]
  - name: Tree
    constructors:
      - name: Leaf
      - name: Node
        fields: [{name: left, type: Tree}, {name: label, type: String}, {name: right, type: Tree}]
`

// inProject runs the test from a fresh directory holding derive.schema.yml
func inProject(t *testing.T, schema string) {
	t.Helper()
	dir := t.TempDir()
	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(oldWd) })

	if schema != "" {
		require.NoError(t, os.WriteFile("derive.schema.yml", []byte(schema), 0644))
	}
}

func execute(args ...string) (string, string, error) {
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--no-color"))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// field returns the value printed after key in key-value output
func field(output, key string) string {
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, key+":") {
			return strings.TrimSpace(strings.TrimPrefix(line, key+":"))
		}
	}
	return ""
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "derive", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	registered := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		registered[sub.Name()] = true
	}
	for _, expected := range []string{"version", "generate", "check", "explain", "eval", "watch", "completion"} {
		assert.True(t, registered[expected], "expected command %s to be registered", expected)
	}
}

func TestVersionCommand(t *testing.T) {
	Version = "1.0.0-test"
	GitCommit = "abc123"
	defer func() { Version, GitCommit = "dev", "unknown" }()

	out, _, err := execute("version")
	require.NoError(t, err)
	assert.Contains(t, out, "derive version: 1.0.0-test")
	assert.Contains(t, out, "Git commit: abc123")
	assert.Contains(t, out, "Go version: go")
}

func TestGenerate(t *testing.T) {
	inProject(t, sampleSchema)

	out, _, err := execute("generate")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Generated sample_derive.go (8 functions for 2 ADTs, 0 cached)")

	src, err := os.ReadFile("sample_derive.go")
	require.NoError(t, err)
	assert.Contains(t, string(src), "package sample")
	assert.Contains(t, string(src), "func HashTree(v Tree) int64")
	assert.Contains(t, string(src), "type TTag int")
}

func TestGenerate_FlagsOverrideConfig(t *testing.T) {
	inProject(t, sampleSchema)
	require.NoError(t, os.WriteFile("derive.yml", []byte("package: fromconfig\ncapabilities: [Show]\n"), 0644))

	_, _, err := execute("g", "-c", "Equal,Hash", "--no-types", "-o", "out/gen.go")
	require.NoError(t, err)

	src, err := os.ReadFile("out/gen.go")
	require.NoError(t, err)
	code := string(src)
	assert.Contains(t, code, "package fromconfig")
	assert.Contains(t, code, "func EqualT(a, b T) bool")
	assert.Contains(t, code, "func HashT(v T) int64")
	assert.NotContains(t, code, "func ShowT")
	assert.NotContains(t, code, "type TTag int")
}

func TestGenerate_OutputCache(t *testing.T) {
	mr := miniredis.RunT(t)
	inProject(t, sampleSchema)
	require.NoError(t, os.WriteFile("derive.yml", []byte("cache:\n  redis_url: redis://"+mr.Addr()+"/0\n"), 0644))

	out, _, err := execute("generate")
	require.NoError(t, err)
	assert.Contains(t, out, "Generated")
	assert.Len(t, mr.Keys(), 1)

	require.NoError(t, os.Remove("sample_derive.go"))
	out, _, err = execute("generate")
	require.NoError(t, err)
	assert.Contains(t, out, "Restored")
	assert.Contains(t, out, "sample_derive.go from the output cache")
	assert.FileExists(t, "sample_derive.go")

	out, _, err = execute("generate", "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "Generated")
}

func TestGenerate_OutputCacheUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	inProject(t, sampleSchema)
	require.NoError(t, os.WriteFile("derive.yml", []byte("cache:\n  redis_url: redis://"+addr+"/0\n"), 0644))

	out, errOut, err := execute("generate")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Output cache disabled")
	assert.Contains(t, out, "Generated")
}

func TestGenerate_UnknownCapability(t *testing.T) {
	inProject(t, sampleSchema)

	_, _, err := execute("generate", "-c", "Functor")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrUnknownCapability))
}

func TestGenerate_SchemaErrors(t *testing.T) {
	inProject(t, "package: sample\nadts:\n  - name: Empty\n  - name: Empty\n    constructors: [{name: E}]\n")

	_, stderr, err := execute("generate")
	require.Error(t, err)
	assert.Contains(t, stderr, "SCHEMA REJECTED")
	assert.Contains(t, stderr, "SCH001")
	assert.Contains(t, stderr, "SCH002")

	_, statErr := os.Stat("sample_derive.go")
	assert.True(t, os.IsNotExist(statErr), "nothing may be written for a rejected schema")
}

func TestGenerate_JSONErrors(t *testing.T) {
	inProject(t, "package: sample\nadts:\n  - name: Shape\n    constructors:\n      - name: Circle\n        fields: [{name: r, type: Flaot}]\n")

	out, _, err := execute("generate", "--json")
	require.Error(t, err)
	assert.Contains(t, out, `"code": "DRV701"`)
	assert.Contains(t, out, `"adt": "Shape"`)
}

func TestGenerate_CompactErrors(t *testing.T) {
	inProject(t, "package: sample\nadts:\n  - name: Shape\n    constructors:\n      - name: Circle\n        fields: [{name: r, type: Flaot}]\n")

	_, stderr, err := execute("generate", "--compact")
	require.Error(t, err)
	assert.NotContains(t, stderr, "SCHEMA REJECTED")

	var lines []string
	for _, line := range strings.Split(stderr, "\n") {
		if strings.HasPrefix(line, "derive.schema.yml:6:") {
			lines = append(lines, line)
		}
	}
	require.Len(t, lines, 4, stderr)
	assert.Contains(t, lines[0], ": error: No Show instance for type 'Flaot' [DRV701]")
}

func TestCheck(t *testing.T) {
	inProject(t, sampleSchema)

	out, _, err := execute("check")
	require.NoError(t, err)
	assert.Contains(t, out, "Tree")
	assert.Contains(t, out, "Show Hash Equal Ord")
	assert.Contains(t, out, "✓ derive.schema.yml OK: 8 functions derived")

	_, statErr := os.Stat("sample_derive.go")
	assert.True(t, os.IsNotExist(statErr), "check must not write output")
}

func TestCheck_MissingSchema(t *testing.T) {
	inProject(t, "")

	_, stderr, err := execute("check")
	require.Error(t, err)
	assert.Contains(t, stderr, "SCH009")
}

func TestExplain(t *testing.T) {
	inProject(t, sampleSchema)

	out, _, err := execute("explain")
	require.NoError(t, err)
	assert.Contains(t, out, "ShowTree HashTree EqualTree OrdTree")

	out, _, err = execute("explain", "T", "-c", "Hash")
	require.NoError(t, err)
	assert.Contains(t, out, "Hash[T] => HashT")
	assert.NotContains(t, out, "Show[T]")
}

func TestExplain_UnknownADT(t *testing.T) {
	inProject(t, sampleSchema)

	_, stderr, err := execute("explain", "Tre")
	require.Error(t, err)
	assert.Contains(t, stderr, "ADT NOT FOUND")
	assert.Contains(t, stderr, "Did you mean: Tree?")
}

func TestEval(t *testing.T) {
	inProject(t, sampleSchema)

	out, _, err := execute("eval", "B(2, 3)")
	require.NoError(t, err)
	assert.Equal(t, "B(2, 3)", field(out, "Show"))
	assert.Equal(t, "902", field(out, "Hash"))

	out, _, err = execute("eval", "A(5)", "B(2, 3)")
	require.NoError(t, err)
	assert.Equal(t, "A(5)", field(out, "Show 1"))
	assert.Equal(t, "28", field(out, "Hash 1"))
	assert.Equal(t, "false", field(out, "Equal"))
	assert.Equal(t, "LT", field(out, "Ord"))
}

func TestEval_Take(t *testing.T) {
	inProject(t, sampleSchema)

	out, _, err := execute("eval", `Node(Leaf, "x", Leaf)`, "--take", "6")
	require.NoError(t, err)
	assert.Equal(t, "Node(L", field(out, "Show"))
}

func TestEval_BadLiteral(t *testing.T) {
	inProject(t, sampleSchema)

	_, _, err := execute("eval", "C(1)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "value 1")
}

func TestCompletionCommand(t *testing.T) {
	out, _, err := execute("completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "derive")

	_, _, err = execute("completion", "tcsh")
	assert.Error(t, err)
}

func TestExplain_CompletesADTNames(t *testing.T) {
	inProject(t, sampleSchema)

	complete := func(args ...string) []string {
		cmd := NewRootCommand()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs(append([]string{cobra.ShellCompRequestCmd, "explain"}, args...))
		require.NoError(t, cmd.Execute())
		return strings.Split(strings.TrimSpace(out.String()), "\n")
	}

	assert.Equal(t, []string{"T", "Tree", ":4"}, complete(""))
	assert.Equal(t, []string{"Tree", ":4"}, complete("Tr"))
	assert.Equal(t, []string{"T", ":4"}, complete("Tree", ""))
}

func TestWatchCommand_Flags(t *testing.T) {
	cmd := NewWatchCommand()

	debounce := cmd.Flags().Lookup("debounce")
	require.NotNil(t, debounce)
	assert.Equal(t, "100ms", debounce.DefValue)
	assert.NotNil(t, cmd.Flags().Lookup("schema"))
	assert.NotNil(t, cmd.Flags().Lookup("output"))
}

func TestParseCapabilities(t *testing.T) {
	caps, err := parseCapabilities([]string{"Ord", "Show", "Ord"})
	require.NoError(t, err)
	assert.Equal(t, "Show, Ord", capabilityList(caps))

	_, err = parseCapabilities([]string{"show"})
	assert.True(t, errors.HasCode(err, errors.ErrUnknownCapability))
}
