// Package eval interprets generated logic directly, without compiling the Go
// it would emit. Values of schema ADTs are represented by Value; builtin
// values use the same Go types as the generated code (int64, string, ...).
package eval

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/conduit-lang/derive/internal/compiler/ast"
	"github.com/conduit-lang/derive/internal/compiler/derive"
	"github.com/conduit-lang/derive/internal/compiler/logic"
	"github.com/conduit-lang/derive/internal/compiler/resolve"
	"github.com/conduit-lang/derive/pkg/runtime"
)

// Operation types bound in an Env, one per capability
type (
	ShowFunc  func(v any) runtime.Stream
	HashFunc  func(v any) int64
	EqualFunc func(a, b any) bool
	OrdFunc   func(a, b any) runtime.Ordering
)

// Value is an instance of a schema ADT: a constructor tag and its field values
type Value struct {
	ADT    string
	Tag    int
	Fields []any
}

// Env binds operation references to executable closures. It is not safe
// for concurrent mutation; evaluation only reads it.
type Env struct {
	ops   map[logic.Ref]any
	types map[string]func(any) bool
	adts  map[string]*ast.ADTNode
}

// NewEnv creates an environment with every builtin instance bound
func NewEnv() *Env {
	e := &Env{
		ops:   make(map[logic.Ref]any),
		types: make(map[string]func(any) bool),
		adts:  make(map[string]*ast.ADTNode),
	}
	bindBuiltin[int64](e, "Int", runtime.ShowInt, runtime.HashInt, runtime.EqualInt, runtime.OrdInt)
	bindBuiltin[string](e, "String", runtime.ShowString, runtime.HashString, runtime.EqualString, runtime.OrdString)
	bindBuiltin[bool](e, "Bool", runtime.ShowBool, runtime.HashBool, runtime.EqualBool, runtime.OrdBool)
	bindBuiltin[float64](e, "Float", runtime.ShowFloat, runtime.HashFloat, runtime.EqualFloat, runtime.OrdFloat)
	bindBuiltin[uuid.UUID](e, "UUID", runtime.ShowUUID, runtime.HashUUID, runtime.EqualUUID, runtime.OrdUUID)
	bindBuiltin[time.Time](e, "Time", runtime.ShowTime, runtime.HashTime, runtime.EqualTime, runtime.OrdTime)
	bindBuiltin[[]byte](e, "Bytes", runtime.ShowBytes, runtime.HashBytes, runtime.EqualBytes, runtime.OrdBytes)
	return e
}

// ForFuncs creates an environment with the builtins and every function of fns
// installed
func ForFuncs(fns []*logic.Func) *Env {
	e := NewEnv()
	for _, fn := range fns {
		e.Install(fn)
	}
	return e
}

func bindBuiltin[T any](e *Env, name string, show runtime.Show[T], hash runtime.Hash[T], equal runtime.Equal[T], ord runtime.Ord[T]) {
	b, ok := resolve.LookupBuiltin(name)
	if !ok {
		panic("eval: unknown builtin " + name)
	}
	e.DefineType(name, func(v any) bool {
		_, ok := v.(T)
		return ok
	})
	e.Bind(b.Ref(logic.Show), ShowFunc(func(v any) runtime.Stream { return show(v.(T)) }))
	e.Bind(b.Ref(logic.Hash), HashFunc(func(v any) int64 { return hash(v.(T)) }))
	e.Bind(b.Ref(logic.Equal), EqualFunc(func(a, b any) bool { return equal(a.(T), b.(T)) }))
	e.Bind(b.Ref(logic.Ord), OrdFunc(func(a, b any) runtime.Ordering { return ord(a.(T), b.(T)) }))
}

// Bind associates ref with op, which must be one of ShowFunc, HashFunc,
// EqualFunc or OrdFunc
func (e *Env) Bind(ref logic.Ref, op any) {
	switch op.(type) {
	case ShowFunc, HashFunc, EqualFunc, OrdFunc:
	default:
		panic(fmt.Sprintf("eval: cannot bind %T to %s", op, ref))
	}
	e.ops[ref] = op
}

// DefineType registers a non-ADT type and the predicate its values satisfy
func (e *Env) DefineType(name string, accepts func(any) bool) {
	e.types[name] = accepts
}

// Install compiles fn into a closure bound under fn.Ref. Calls to other
// operations are looked up when they run, so mutually recursive functions
// may be installed in any order.
func (e *Env) Install(fn *logic.Func) {
	e.adts[fn.ADT.Name] = fn.ADT
	switch fn.Capability {
	case logic.Show:
		e.ops[fn.Ref] = ShowFunc(func(v any) runtime.Stream {
			return e.node(fn.Body, []Value{e.operand(fn, v)}).(runtime.Stream)
		})
	case logic.Hash:
		e.ops[fn.Ref] = HashFunc(func(v any) int64 {
			return e.node(fn.Body, []Value{e.operand(fn, v)}).(int64)
		})
	case logic.Equal:
		e.ops[fn.Ref] = EqualFunc(func(a, b any) bool {
			return e.node(fn.Body, []Value{e.operand(fn, a), e.operand(fn, b)}).(bool)
		})
	case logic.Ord:
		e.ops[fn.Ref] = OrdFunc(func(a, b any) runtime.Ordering {
			return e.node(fn.Body, []Value{e.operand(fn, a), e.operand(fn, b)}).(runtime.Ordering)
		})
	}
}

// Show renders v with the Show instance derived for its ADT
func (e *Env) Show(v Value) (runtime.Stream, error) {
	op, err := lookup[ShowFunc](e, v.ADT, logic.Show, v)
	if err != nil {
		return nil, err
	}
	return op(v), nil
}

// Hash hashes v with the Hash instance derived for its ADT
func (e *Env) Hash(v Value) (int64, error) {
	op, err := lookup[HashFunc](e, v.ADT, logic.Hash, v)
	if err != nil {
		return 0, err
	}
	return op(v), nil
}

// Equal compares a and b with the Equal instance derived for their ADT
func (e *Env) Equal(a, b Value) (bool, error) {
	if a.ADT != b.ADT {
		return false, fmt.Errorf("cannot compare %s with %s", a.ADT, b.ADT)
	}
	op, err := lookup[EqualFunc](e, a.ADT, logic.Equal, a, b)
	if err != nil {
		return false, err
	}
	return op(a, b), nil
}

// Compare orders a and b with the Ord instance derived for their ADT
func (e *Env) Compare(a, b Value) (runtime.Ordering, error) {
	if a.ADT != b.ADT {
		return runtime.EQ, fmt.Errorf("cannot compare %s with %s", a.ADT, b.ADT)
	}
	op, err := lookup[OrdFunc](e, a.ADT, logic.Ord, a, b)
	if err != nil {
		return runtime.EQ, err
	}
	return op(a, b), nil
}

// lookup finds the derived operation for adt after checking every operand,
// so evaluation of a checked value never fails halfway.
func lookup[F any](e *Env, adt string, c logic.Capability, operands ...Value) (F, error) {
	var zero F
	for _, v := range operands {
		if err := e.Check(v); err != nil {
			return zero, err
		}
	}
	ref := logic.Ref{Symbol: derive.Symbol(c, adt)}
	op, ok := e.ops[ref].(F)
	if !ok {
		return zero, fmt.Errorf("no %s instance installed for %s", c, adt)
	}
	return op, nil
}

// Check verifies that v is a well-formed value of an installed ADT: a valid
// tag, one value per field, and field values of the declared types.
func (e *Env) Check(v Value) error {
	adt, ok := e.adts[v.ADT]
	if !ok {
		return fmt.Errorf("unknown ADT %q", v.ADT)
	}
	if v.Tag < 0 || v.Tag >= len(adt.Constructors) {
		return fmt.Errorf("%s has no constructor with tag %d", adt.Name, v.Tag)
	}
	c := adt.Constructors[v.Tag]
	if len(v.Fields) != len(c.Arguments) {
		return fmt.Errorf("%s takes %d fields, got %d", c.Name, len(c.Arguments), len(v.Fields))
	}
	for i, arg := range c.Arguments {
		if err := e.checkField(v.Fields[i], arg.Type); err != nil {
			return fmt.Errorf("%s.%s: %w", c.Name, arg.FieldName, err)
		}
	}
	return nil
}

func (e *Env) checkField(v any, t *ast.TypeNode) error {
	name := t.Name
	if t.Wildcard {
		name = t.Bound
	}
	if accepts, ok := e.types[name]; ok {
		if !accepts(v) {
			return fmt.Errorf("expected %s, got %T", name, v)
		}
		return nil
	}
	inner, ok := v.(Value)
	if !ok {
		return fmt.Errorf("expected %s, got %T", name, v)
	}
	if inner.ADT != name {
		return fmt.Errorf("expected %s, got %s", name, inner.ADT)
	}
	return e.Check(inner)
}
