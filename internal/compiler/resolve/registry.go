// Package resolve implements the capability resolver used by the build: a
// registry of instances keyed by capability and type name, preloaded with the
// runtime builtins and extended with every ADT declared in a schema.
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/conduit-lang/derive/internal/compiler/ast"
	"github.com/conduit-lang/derive/internal/compiler/derive"
	"github.com/conduit-lang/derive/internal/compiler/errors"
	"github.com/conduit-lang/derive/internal/compiler/logic"
	ustrings "github.com/conduit-lang/derive/internal/util/strings"
)

// Registry maps (capability, type name) to the operation implementing it
type Registry struct {
	implementations map[logic.Capability]map[string]logic.Ref
}

var _ derive.Resolver = (*Registry)(nil)

// NewRegistry creates a registry holding the builtin instances
func NewRegistry() *Registry {
	r := &Registry{
		implementations: make(map[logic.Capability]map[string]logic.Ref),
	}
	for _, c := range logic.Capabilities {
		r.implementations[c] = make(map[string]logic.Ref)
	}
	for _, b := range Builtins {
		for _, c := range logic.Capabilities {
			r.Register(b.Name, c, b.Ref(c))
		}
	}
	return r
}

// ForSchema creates a registry with the builtins and every ADT of schema. ADT
// fields resolve to the derived functions of the package being generated, so
// ADTs may refer to each other and to themselves.
func ForSchema(schema *ast.Schema) *Registry {
	r := NewRegistry()
	for _, adt := range schema.ADTs {
		r.RegisterADT(adt.Name)
	}
	return r
}

// Register binds the operation implementing capability c for typeName
func (r *Registry) Register(typeName string, c logic.Capability, ref logic.Ref) {
	r.implementations[c][typeName] = ref
}

// SetRuntimeImport rebinds every builtin to the instances of a runtime
// package vendored under another import path
func (r *Registry) SetRuntimeImport(importPath string) {
	for _, b := range Builtins {
		for _, c := range logic.Capabilities {
			ref := b.Ref(c)
			ref.Import = importPath
			r.Register(b.Name, c, ref)
		}
	}
}

// RegisterADT binds all four capabilities of an ADT to its derived symbols
func (r *Registry) RegisterADT(name string) {
	for _, c := range logic.Capabilities {
		r.Register(name, c, logic.Ref{Symbol: derive.Symbol(c, name)})
	}
}

// Resolve implements derive.Resolver. Wildcarded types resolve through their
// bound and ask for a cast.
func (r *Registry) Resolve(t *ast.TypeNode, c logic.Capability) (derive.Resolution, error) {
	name := t.Name
	if t.Wildcard {
		name = t.Bound
	}

	ref, ok := r.implementations[c][name]
	if !ok {
		similar := ustrings.FindSimilar(name, r.TypeNames(), &ustrings.FuzzyMatchOptions{MaxDistance: 2})
		return derive.Resolution{}, errors.NewUnresolvedCapability(t.Loc, name, c.String(), similar)
	}

	res := derive.Resolution{Ref: ref}
	if t.Wildcard {
		res.Wildcarded = true
		res.Bound = &ast.TypeNode{Name: t.Bound, Loc: t.Loc}
	}
	return res, nil
}

// TypeNames returns every type with at least one registered capability, sorted
func (r *Registry) TypeNames() []string {
	seen := make(map[string]bool)
	for _, byType := range r.implementations {
		for name := range byType {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fingerprint describes every binding in a stable order. Two registries with
// the same fingerprint resolve every type identically.
func (r *Registry) Fingerprint() string {
	var entries []string
	for _, c := range logic.Capabilities {
		for name, ref := range r.implementations[c] {
			entries = append(entries, fmt.Sprintf("%s:%s=%s", c, name, ref))
		}
	}
	sort.Strings(entries)
	return strings.Join(entries, ";")
}
