package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/derive/internal/compiler/ast"
	"github.com/conduit-lang/derive/internal/compiler/errors"
	"github.com/conduit-lang/derive/internal/compiler/logic"
)

func TestRegistry_Builtins(t *testing.T) {
	r := NewRegistry()

	for _, b := range Builtins {
		for _, c := range logic.Capabilities {
			res, err := r.Resolve(&ast.TypeNode{Name: b.Name}, c)
			require.NoError(t, err, "%s %s", c, b.Name)
			assert.Equal(t, RuntimeImport, res.Ref.Import)
			assert.Equal(t, c.String()+b.Name, res.Ref.Symbol)
			assert.False(t, res.Wildcarded)
		}
	}
}

func TestRegistry_SetRuntimeImport(t *testing.T) {
	r := ForSchema(&ast.Schema{ADTs: []*ast.ADTNode{{Name: "Shape"}}})
	before := r.Fingerprint()
	r.SetRuntimeImport("example.com/vendor/rt")

	res, err := r.Resolve(&ast.TypeNode{Name: "String"}, logic.Hash)
	require.NoError(t, err)
	assert.Equal(t, logic.Ref{Import: "example.com/vendor/rt", Symbol: "HashString"}, res.Ref)

	res, err = r.Resolve(&ast.TypeNode{Name: "Shape"}, logic.Hash)
	require.NoError(t, err)
	assert.Equal(t, logic.Ref{Symbol: "HashShape"}, res.Ref)

	assert.NotEqual(t, before, r.Fingerprint())
}

func TestRegistry_SchemaADTs(t *testing.T) {
	schema := &ast.Schema{ADTs: []*ast.ADTNode{{Name: "Shape"}, {Name: "Tree"}}}
	r := ForSchema(schema)

	res, err := r.Resolve(&ast.TypeNode{Name: "Tree"}, logic.Ord)
	require.NoError(t, err)
	assert.Equal(t, logic.Ref{Symbol: "OrdTree"}, res.Ref)
	assert.Contains(t, r.TypeNames(), "Shape")
}

func TestRegistry_Wildcard(t *testing.T) {
	r := ForSchema(&ast.Schema{ADTs: []*ast.ADTNode{{Name: "Shape"}}})

	typ, ok := ast.ParseType("?Shape")
	require.True(t, ok)

	res, err := r.Resolve(typ, logic.Show)
	require.NoError(t, err)
	assert.True(t, res.Wildcarded)
	require.NotNil(t, res.Bound)
	assert.Equal(t, "Shape", res.Bound.Name)
	assert.Equal(t, "ShowShape", res.Ref.Symbol)
}

func TestRegistry_Unresolved(t *testing.T) {
	r := ForSchema(&ast.Schema{ADTs: []*ast.ADTNode{{Name: "Shape"}}})

	_, err := r.Resolve(&ast.TypeNode{Name: "Shap", Loc: ast.SourceLocation{Line: 9, Column: 3}}, logic.Hash)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrUnresolvedCapability))

	var ce *errors.CompilerError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 9, ce.Location.Line)
	assert.Contains(t, ce.Suggestion, "Shape")
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	ref := logic.Ref{Import: "example.com/money", Symbol: "ShowAmount"}
	r.Register("Amount", logic.Show, ref)

	res, err := r.Resolve(&ast.TypeNode{Name: "Amount"}, logic.Show)
	require.NoError(t, err)
	assert.Equal(t, ref, res.Ref)

	_, err = r.Resolve(&ast.TypeNode{Name: "Amount"}, logic.Hash)
	assert.True(t, errors.HasCode(err, errors.ErrUnresolvedCapability))

	// a later binding replaces a builtin
	intRef := logic.Ref{Import: "example.com/money", Symbol: "OrdCents"}
	r.Register("Int", logic.Ord, intRef)
	res, err = r.Resolve(&ast.TypeNode{Name: "Int"}, logic.Ord)
	require.NoError(t, err)
	assert.Equal(t, intRef, res.Ref)
	assert.Contains(t, r.TypeNames(), "Amount")
}

func TestRegistry_Fingerprint(t *testing.T) {
	a := ForSchema(&ast.Schema{ADTs: []*ast.ADTNode{{Name: "Shape"}}})
	b := ForSchema(&ast.Schema{ADTs: []*ast.ADTNode{{Name: "Shape"}}})
	c := ForSchema(&ast.Schema{ADTs: []*ast.ADTNode{{Name: "Shape"}, {Name: "Tree"}}})

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestLookupBuiltin(t *testing.T) {
	b, ok := LookupBuiltin("UUID")
	require.True(t, ok)
	assert.Equal(t, "uuid.UUID", b.GoType)
	assert.Equal(t, "github.com/google/uuid", b.Import)

	_, ok = LookupBuiltin("Shape")
	assert.False(t, ok)
}
