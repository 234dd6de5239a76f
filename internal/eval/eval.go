package eval

import (
	"fmt"

	"github.com/conduit-lang/derive/internal/compiler/derive"
	"github.com/conduit-lang/derive/internal/compiler/logic"
	"github.com/conduit-lang/derive/pkg/runtime"
)

// operand converts an argument of a derived function to a Value of its ADT.
// The generated Go would reject a mismatch at compile time or with a failed
// type assertion; the interpreter panics the same way.
func (e *Env) operand(fn *logic.Func, v any) Value {
	val, ok := v.(Value)
	if !ok || val.ADT != fn.ADT.Name {
		panic(fmt.Sprintf("eval: %s applied to %#v", fn.Ref, v))
	}
	return val
}

// node evaluates n with the given operands. The dynamic result type depends
// on the node: Stream for Render, int64 for HashFold, bool for Const True and
// False and Conjunction, Ordering for Const Less and Greater and Lexicographic.
func (e *Env) node(n logic.Node, ops []Value) any {
	switch n := n.(type) {
	case *logic.Match:
		tag := ops[n.Operand].Tag
		return e.node(n.Cases[tag].Body, ops)

	case *logic.Const:
		switch n.Value {
		case logic.True:
			return true
		case logic.False:
			return false
		case logic.Less:
			return runtime.LT
		case logic.Greater:
			return runtime.GT
		}

	case *logic.Render:
		parts := make([]runtime.Stream, len(n.Parts))
		for i, p := range n.Parts {
			if p.Call == nil {
				parts[i] = runtime.Text(p.Literal)
				continue
			}
			call := p.Call
			parts[i] = runtime.Defer(func() runtime.Stream {
				return e.op(call.Ref).(ShowFunc)(e.arg(call.Args[0], ops))
			})
		}
		return runtime.Concat(parts...)

	case *logic.HashFold:
		hashes := make([]int64, len(n.Terms))
		for i, call := range n.Terms {
			hashes[i] = e.op(call.Ref).(HashFunc)(e.arg(call.Args[0], ops))
		}
		return derive.Fold(n.Seed, hashes)

	case *logic.Conjunction:
		for _, call := range n.Terms {
			if !e.op(call.Ref).(EqualFunc)(e.arg(call.Args[0], ops), e.arg(call.Args[1], ops)) {
				return false
			}
		}
		return true

	case *logic.Lexicographic:
		for _, call := range n.Terms {
			if o := e.op(call.Ref).(OrdFunc)(e.arg(call.Args[0], ops), e.arg(call.Args[1], ops)); o != runtime.EQ {
				return o
			}
		}
		return runtime.EQ
	}
	panic(fmt.Sprintf("eval: unsupported node %T", n))
}

// arg reads a field, applying the cast of wildcarded fields
func (e *Env) arg(f *logic.FieldRef, ops []Value) any {
	v := ops[f.Operand].Fields[f.Index]
	if f.Cast != nil {
		if err := e.checkField(v, f.Cast.Bound); err != nil {
			panic(fmt.Sprintf("eval: cast of field %s: %v", f.Field.FieldName, err))
		}
	}
	return v
}

func (e *Env) op(ref logic.Ref) any {
	op, ok := e.ops[ref]
	if !ok {
		panic(fmt.Sprintf("eval: no operation bound to %s", ref))
	}
	return op
}
