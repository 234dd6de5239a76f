package derive

import (
	"github.com/conduit-lang/derive/internal/compiler/ast"
	"github.com/conduit-lang/derive/internal/compiler/logic"
)

// DeriveShow renders constructor C with fields f1..fn as "C(s1, s2, ..., sn)"
// and a zero-field constructor as "C()".
func DeriveShow(adt *ast.ADTNode, r Resolver) (*logic.Func, error) {
	calls, err := resolveFields(adt, logic.Show, r)
	if err != nil {
		return nil, err
	}

	fn := newFunc(adt, logic.Show)
	fn.Body = matchEach(adt, 0, func(i int, c *ast.ConstructorNode) logic.Node {
		render := &logic.Render{}
		render.AppendLiteral(c.Name + "(")
		for j, call := range calls[i] {
			if j > 0 {
				render.AppendLiteral(", ")
			}
			render.AppendCall(call)
		}
		render.AppendLiteral(")")
		return render
	})
	return fn, nil
}
