// Package derive builds the Show, Hash, Equal and Ord logic of an ADT from its
// shape alone. Each derivator is a pure function of the ADT and a Resolver;
// it either returns the complete function or fails without emitting anything.
package derive

import (
	"github.com/conduit-lang/derive/internal/compiler/ast"
	"github.com/conduit-lang/derive/internal/compiler/errors"
	"github.com/conduit-lang/derive/internal/compiler/logic"
)

// Resolution is the answer of a Resolver for one (type, capability) pair
type Resolution struct {
	// Ref names the operation implementing the capability
	Ref logic.Ref
	// Wildcarded marks types whose values must be cast to Bound first
	Wildcarded bool
	Bound      *ast.TypeNode
}

// Resolver supplies the operation implementing a capability for a field type.
// It may hand out references to other derived functions, including the one
// being derived, so recursive ADTs resolve to themselves.
type Resolver interface {
	Resolve(t *ast.TypeNode, c logic.Capability) (Resolution, error)
}

// ResolverFunc adapts a function to the Resolver interface
type ResolverFunc func(t *ast.TypeNode, c logic.Capability) (Resolution, error)

// Resolve calls f
func (f ResolverFunc) Resolve(t *ast.TypeNode, c logic.Capability) (Resolution, error) {
	return f(t, c)
}

// Derivator produces the logic of one capability for an ADT
type Derivator func(adt *ast.ADTNode, r Resolver) (*logic.Func, error)

// For returns the derivator of a capability
func For(c logic.Capability) (Derivator, bool) {
	switch c {
	case logic.Show:
		return DeriveShow, true
	case logic.Hash:
		return DeriveHash, true
	case logic.Equal:
		return DeriveEqual, true
	case logic.Ord:
		return DeriveOrd, true
	}
	return nil, false
}

// Derive runs the derivator of capability c on adt
func Derive(adt *ast.ADTNode, c logic.Capability, r Resolver) (*logic.Func, error) {
	d, ok := For(c)
	if !ok {
		return nil, errors.NewUnknownCapability(c.String(), logic.CapabilityNames()).WithADT(adt.Name)
	}
	return d(adt, r)
}

// Symbol is the name a derived function is published under, e.g. "ShowShape"
func Symbol(c logic.Capability, adtName string) string {
	return c.String() + adtName
}

func newFunc(adt *ast.ADTNode, c logic.Capability) *logic.Func {
	return &logic.Func{
		Capability: c,
		ADT:        adt,
		Ref:        logic.Ref{Symbol: Symbol(c, adt.Name)},
	}
}

// resolveFields resolves capability c for every field of every constructor
// before any branch is built, so a failure leaves nothing half derived. The
// result holds one call per field, reading the field from each operand.
func resolveFields(adt *ast.ADTNode, c logic.Capability, r Resolver) ([][]*logic.Call, error) {
	calls := make([][]*logic.Call, len(adt.Constructors))
	for i, ctor := range adt.Constructors {
		calls[i] = make([]*logic.Call, len(ctor.Arguments))
		for j, arg := range ctor.Arguments {
			res, err := r.Resolve(arg.Type, c)
			if err != nil {
				return nil, err
			}
			call := &logic.Call{Ref: res.Ref}
			for operand := 0; operand < c.Operands(); operand++ {
				call.Args = append(call.Args, fieldRef(operand, j, arg, res))
			}
			calls[i][j] = call
		}
	}
	return calls, nil
}

func fieldRef(operand, index int, arg *ast.ArgumentNode, res Resolution) *logic.FieldRef {
	ref := &logic.FieldRef{Operand: operand, Index: index, Field: arg}
	if res.Wildcarded {
		bound := res.Bound
		if bound == nil {
			bound = &ast.TypeNode{Name: arg.Type.Bound}
		}
		ref.Cast = &logic.Cast{Bound: bound}
	}
	return ref
}

// matchEach builds a dispatch on operand with one case per constructor
func matchEach(adt *ast.ADTNode, operand int, body func(i int, c *ast.ConstructorNode) logic.Node) *logic.Match {
	m := &logic.Match{Operand: operand, Cases: make([]*logic.Case, len(adt.Constructors))}
	for i, c := range adt.Constructors {
		m.Cases[i] = &logic.Case{Constructor: c, Body: body(i, c)}
	}
	return m
}
