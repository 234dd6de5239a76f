package derive

import (
	"github.com/conduit-lang/derive/internal/compiler/ast"
	"github.com/conduit-lang/derive/internal/compiler/logic"
)

// DeriveOrd orders values first by constructor declaration index, then
// lexicographically by fields, returning at the first field that differs.
func DeriveOrd(adt *ast.ADTNode, r Resolver) (*logic.Func, error) {
	calls, err := resolveFields(adt, logic.Ord, r)
	if err != nil {
		return nil, err
	}

	fn := newFunc(adt, logic.Ord)
	fn.Body = matchEach(adt, 0, func(i int, _ *ast.ConstructorNode) logic.Node {
		return matchEach(adt, 1, func(j int, _ *ast.ConstructorNode) logic.Node {
			switch {
			case i < j:
				return &logic.Const{Value: logic.Less}
			case i > j:
				return &logic.Const{Value: logic.Greater}
			default:
				return &logic.Lexicographic{Terms: calls[i]}
			}
		})
	})
	return fn, nil
}
