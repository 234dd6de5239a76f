package codegen

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/derive/internal/compiler/errors"
	"github.com/conduit-lang/derive/internal/compiler/logic"
	ustrings "github.com/conduit-lang/derive/internal/util/strings"
)

// funcScope names the parameters of a function and the variables the
// matched variants are bound to, indexed by operand
type funcScope struct {
	fn     *logic.Func
	params []string
	vars   []string
}

func (g *Generator) generateFunc(fn *logic.Func) error {
	rt := g.use(g.runtimeImport())
	adt := fn.ADT.Name
	name := g.qualify(fn.Ref)

	scope := &funcScope{fn: fn, params: []string{"v"}, vars: []string{"x"}}
	if fn.Capability.Operands() == 2 {
		scope.params = []string{"a", "b"}
		scope.vars = []string{"x", "y"}
	}

	switch fn.Capability {
	case logic.Show:
		g.writeLine("// %s renders a %s as Constructor(field, ...)", name, adt)
		g.writeLine("func %s(v %s) %s.Stream {", name, adt, rt)
	case logic.Hash:
		g.writeLine("// %s hashes a %s consistently with Equal%s", name, adt, adt)
		g.writeLine("func %s(v %s) int64 {", name, adt)
	case logic.Equal:
		g.writeLine("// %s reports whether a and b are the same constructor with equal fields", name)
		g.writeLine("func %s(a, b %s) bool {", name, adt)
	case logic.Ord:
		g.writeLine("// %s orders a and b by constructor declaration order, then field by field", name)
		g.writeLine("func %s(a, b %s) %s.Ordering {", name, adt, rt)
	default:
		return errors.NewUnknownCapability(fn.Capability.String(), logic.CapabilityNames()).WithADT(adt)
	}

	g.indent++
	if err := g.generateNode(scope, fn.Body); err != nil {
		return err
	}
	g.writeLine("panic(%q)", fmt.Sprintf("invalid %s tag", adt))
	g.indent--
	g.writeLine("}")
	g.writeLine("")
	return nil
}

func (g *Generator) generateNode(s *funcScope, n logic.Node) error {
	rt := g.use(g.runtimeImport())
	adt := s.fn.ADT.Name

	switch n := n.(type) {
	case *logic.Match:
		g.writeLine("switch %s.Tag() {", s.params[n.Operand])
		for _, c := range n.Cases {
			g.writeLine("case %s:", TagConst(adt, c.Constructor.Name))
			g.indent++
			if usesOperand(c.Body, n.Operand) {
				g.writeLine("%s := %s.(%s)", s.vars[n.Operand], s.params[n.Operand], c.Constructor.Name)
			}
			if err := g.generateNode(s, c.Body); err != nil {
				return err
			}
			g.indent--
		}
		g.writeLine("}")

	case *logic.Const:
		switch n.Value {
		case logic.True:
			g.writeLine("return true")
		case logic.False:
			g.writeLine("return false")
		case logic.Less:
			g.writeLine("return %s.LT", rt)
		case logic.Greater:
			g.writeLine("return %s.GT", rt)
		}

	case *logic.Render:
		if len(n.Parts) == 1 && n.Parts[0].Call == nil {
			g.writeLine("return %s.Text(%q)", rt, n.Parts[0].Literal)
			return nil
		}
		g.writeLine("return %s.Concat(", rt)
		g.indent++
		for _, p := range n.Parts {
			if p.Call == nil {
				g.writeLine("%s.Text(%q),", rt, p.Literal)
				continue
			}
			g.writeLine("%s.Defer(func() %s.Stream { return %s }),", rt, rt, g.call(s, p.Call))
		}
		g.indent--
		g.writeLine(")")

	case *logic.HashFold:
		if len(n.Terms) == 0 {
			g.writeLine("return %d", n.Seed)
			return nil
		}
		g.writeLine("h := int64(%d) + %s", n.Seed, g.call(s, n.Terms[0]))
		for _, term := range n.Terms[1:] {
			g.writeLine("h = h*%d + %s", n.Seed, g.call(s, term))
		}
		g.writeLine("return h")

	case *logic.Conjunction:
		if len(n.Terms) == 0 {
			g.writeLine("return true")
			return nil
		}
		terms := make([]string, len(n.Terms))
		for i, term := range n.Terms {
			terms[i] = g.call(s, term)
		}
		g.writeLine("return %s", strings.Join(terms, " &&\n\t\t\t"))

	case *logic.Lexicographic:
		if len(n.Terms) == 0 {
			g.writeLine("return %s.EQ", rt)
			return nil
		}
		last := len(n.Terms) - 1
		for _, term := range n.Terms[:last] {
			g.writeLine("if o := %s; o != %s.EQ {", g.call(s, term), rt)
			g.indent++
			g.writeLine("return o")
			g.indent--
			g.writeLine("}")
		}
		g.writeLine("return %s", g.call(s, n.Terms[last]))

	default:
		return errors.NewCodeGenFailed(s.fn.ADT.Loc, fmt.Sprintf("unsupported node %T in %s", n, s.fn.Ref))
	}
	return nil
}

// call renders an operation applied to field values
func (g *Generator) call(s *funcScope, c *logic.Call) string {
	args := make([]string, len(c.Args))
	for i, f := range c.Args {
		args[i] = g.fieldExpr(s, f)
	}
	return fmt.Sprintf("%s(%s)", g.qualify(c.Ref), strings.Join(args, ", "))
}

func (g *Generator) fieldExpr(s *funcScope, f *logic.FieldRef) string {
	expr := s.vars[f.Operand] + "." + ustrings.ToGoFieldName(f.Field.FieldName)
	if f.Cast != nil {
		expr += ".(" + g.boundType(f.Cast.Bound.Name) + ")"
	}
	return expr
}

// usesOperand reports whether any field of operand is read below n
func usesOperand(n logic.Node, operand int) bool {
	reads := func(calls []*logic.Call) bool {
		for _, c := range calls {
			for _, arg := range c.Args {
				if arg.Operand == operand {
					return true
				}
			}
		}
		return false
	}

	switch n := n.(type) {
	case *logic.Match:
		for _, c := range n.Cases {
			if usesOperand(c.Body, operand) {
				return true
			}
		}
	case *logic.Render:
		for _, p := range n.Parts {
			if p.Call != nil && reads([]*logic.Call{p.Call}) {
				return true
			}
		}
	case *logic.HashFold:
		return reads(n.Terms)
	case *logic.Conjunction:
		return reads(n.Terms)
	case *logic.Lexicographic:
		return reads(n.Terms)
	}
	return false
}
