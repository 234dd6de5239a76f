package derive

import (
	"github.com/conduit-lang/derive/internal/compiler/ast"
	"github.com/conduit-lang/derive/internal/compiler/logic"
)

// DeriveEqual dispatches on both operands. Pairs of different constructors are
// statically false; a constructor paired with itself compares its fields in
// order and stops at the first mismatch.
func DeriveEqual(adt *ast.ADTNode, r Resolver) (*logic.Func, error) {
	calls, err := resolveFields(adt, logic.Equal, r)
	if err != nil {
		return nil, err
	}

	fn := newFunc(adt, logic.Equal)
	fn.Body = matchEach(adt, 0, func(i int, _ *ast.ConstructorNode) logic.Node {
		return matchEach(adt, 1, func(j int, _ *ast.ConstructorNode) logic.Node {
			switch {
			case i != j:
				return &logic.Const{Value: logic.False}
			case len(calls[i]) == 0:
				return &logic.Const{Value: logic.True}
			default:
				return &logic.Conjunction{Terms: calls[i]}
			}
		})
	})
	return fn, nil
}
