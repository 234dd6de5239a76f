package codegen

import (
	"strings"

	"github.com/conduit-lang/derive/internal/compiler/ast"
	"github.com/conduit-lang/derive/internal/compiler/resolve"
	ustrings "github.com/conduit-lang/derive/internal/util/strings"
)

// TagType is the name of the enumeration of an ADT's constructors
func TagType(adt string) string {
	return adt + "Tag"
}

// TagConst is the enumeration value of one constructor
func TagConst(adt, constructor string) string {
	return TagType(adt) + constructor
}

// generateTypes declares an ADT as a sealed interface implemented by one
// struct per constructor:
//
//	type Shape interface { Tag() ShapeTag; isShape() }
//	type Circle struct { Radius int64 }
//
// Wildcarded fields are stored as any and cast to their bound on use.
func (g *Generator) generateTypes(adt *ast.ADTNode) {
	names := make([]string, len(adt.Constructors))
	for i, c := range adt.Constructors {
		names[i] = c.Name
	}

	g.writeLine("// %s enumerates the constructors of %s in declaration order", TagType(adt.Name), adt.Name)
	g.writeLine("type %s int", TagType(adt.Name))
	g.writeLine("")
	g.writeLine("const (")
	g.indent++
	for i, c := range adt.Constructors {
		if i == 0 {
			g.writeLine("%s %s = iota", TagConst(adt.Name, c.Name), TagType(adt.Name))
			continue
		}
		g.writeLine("%s", TagConst(adt.Name, c.Name))
	}
	g.indent--
	g.writeLine(")")
	g.writeLine("")

	if adt.Documentation != "" {
		g.writeLine("// %s", adt.Documentation)
	} else {
		g.writeLine("// %s is one of %s", adt.Name, strings.Join(names, ", "))
	}
	g.writeLine("type %s interface {", adt.Name)
	g.indent++
	g.writeLine("Tag() %s", TagType(adt.Name))
	g.writeLine("is%s()", adt.Name)
	g.indent--
	g.writeLine("}")
	g.writeLine("")

	for _, c := range adt.Constructors {
		g.generateVariant(adt, c)
	}
}

func (g *Generator) generateVariant(adt *ast.ADTNode, c *ast.ConstructorNode) {
	if c.Arity() == 0 {
		g.writeLine("type %s struct{}", c.Name)
	} else {
		g.writeLine("type %s struct {", c.Name)
		g.indent++
		for _, arg := range c.Arguments {
			g.writeLine("%s %s", ustrings.ToGoFieldName(arg.FieldName), g.goType(arg.Type))
		}
		g.indent--
		g.writeLine("}")
	}
	g.writeLine("")
	g.writeLine("// Tag returns %s", TagConst(adt.Name, c.Name))
	g.writeLine("func (%s) Tag() %s { return %s }", c.Name, TagType(adt.Name), TagConst(adt.Name, c.Name))
	g.writeLine("func (%s) is%s() {}", c.Name, adt.Name)
	g.writeLine("")
}

// goType returns the Go type carrying values of t
func (g *Generator) goType(t *ast.TypeNode) string {
	if t.Wildcard {
		return "any"
	}
	return g.boundType(t.Name)
}

// boundType is the Go type of a non-wildcarded type name. Names that are not
// builtins are ADTs of the generated package.
func (g *Generator) boundType(name string) string {
	b, ok := resolve.LookupBuiltin(name)
	if !ok {
		return name
	}
	if b.Import != "" {
		g.use(b.Import)
	}
	return b.GoType
}
