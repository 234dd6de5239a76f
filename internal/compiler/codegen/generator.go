// Package codegen renders derived logic as Go source. One schema produces
// one file holding the optional ADT types and the Show, Hash, Equal and Ord
// functions of every ADT.
package codegen

import (
	"bytes"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/conduit-lang/derive/internal/compiler/ast"
	"github.com/conduit-lang/derive/internal/compiler/errors"
	"github.com/conduit-lang/derive/internal/compiler/logic"
	"github.com/conduit-lang/derive/internal/compiler/resolve"
)

// Header marks every generated file
const Header = "// Code generated by derive. DO NOT EDIT."

// Options controls the shape of a generated file
type Options struct {
	// Package is the package clause of the file
	Package string
	// EmitTypes adds the ADT declarations. Without it the package must
	// declare them itself, following the same conventions.
	EmitTypes bool
	// RuntimeImport replaces the import path of pkg/runtime
	RuntimeImport string
}

// Generator transforms derived functions into Go code
type Generator struct {
	buf    *bytes.Buffer
	indent int
	// import path -> package name used in the file
	imports map[string]string
	names   map[string]string
	runtime string
}

// NewGenerator creates a new code generator
func NewGenerator() *Generator {
	g := &Generator{buf: &bytes.Buffer{}}
	g.reset()
	return g
}

// GenerateFile renders schema and fns as one formatted Go file. fns are
// emitted in the order given.
func (g *Generator) GenerateFile(schema *ast.Schema, fns []*logic.Func, opts Options) ([]byte, error) {
	g.reset()
	if opts.Package == "" {
		return nil, errors.NewCodeGenFailed(schema.Loc, "no package name")
	}

	body := NewGenerator()
	body.imports, body.names = g.imports, g.names
	body.runtime = opts.RuntimeImport

	if opts.EmitTypes {
		for _, adt := range schema.ADTs {
			body.generateTypes(adt)
		}
	}
	for _, fn := range fns {
		if err := body.generateFunc(fn); err != nil {
			return nil, err
		}
	}

	g.writeLine(Header)
	g.writeLine("")
	g.writeLine("package %s", opts.Package)
	g.writeLine("")
	if len(g.imports) > 0 {
		g.writeImports()
		g.writeLine("")
	}
	g.buf.Write(body.buf.Bytes())

	src, err := imports.Process("", g.buf.Bytes(), &imports.Options{Comments: true, TabIndent: true, TabWidth: 8, FormatOnly: true})
	if err != nil {
		return nil, errors.NewCodeGenFailed(schema.Loc, err.Error()).WithActual(g.buf.String())
	}
	return src, nil
}

// reset clears the generator state
func (g *Generator) reset() {
	g.buf.Reset()
	g.indent = 0
	g.imports = make(map[string]string)
	g.names = make(map[string]string)
}

// writeLine writes a formatted line with proper indentation
func (g *Generator) writeLine(format string, args ...interface{}) {
	if format == "" {
		g.buf.WriteString("\n")
		return
	}

	for i := 0; i < g.indent; i++ {
		g.buf.WriteString("\t")
	}

	if len(args) > 0 {
		g.buf.WriteString(fmt.Sprintf(format, args...))
	} else {
		g.buf.WriteString(format)
	}
	g.buf.WriteString("\n")
}

// use records an import and returns the name its package is referred to by.
// Packages whose last path element collides get a numbered alias.
func (g *Generator) use(importPath string) string {
	if name, ok := g.imports[importPath]; ok {
		return name
	}
	base := path.Base(importPath)
	name := base
	for i := 2; ; i++ {
		if _, taken := g.names[name]; !taken {
			break
		}
		name = base + strconv.Itoa(i)
	}
	g.imports[importPath] = name
	g.names[name] = importPath
	return name
}

// qualify renders a reference to ref from inside the generated package
func (g *Generator) qualify(ref logic.Ref) string {
	if ref.Import == "" {
		return ref.Symbol
	}
	return g.use(ref.Import) + "." + ref.Symbol
}

// writeImports writes the import block: stdlib first, then external
func (g *Generator) writeImports() {
	g.writeLine("import (")
	g.indent++

	var stdlibImports []string
	var externalImports []string
	for imp := range g.imports {
		if strings.Contains(imp, ".") {
			externalImports = append(externalImports, imp)
		} else {
			stdlibImports = append(stdlibImports, imp)
		}
	}
	sort.Strings(stdlibImports)
	sort.Strings(externalImports)

	for _, imp := range stdlibImports {
		g.writeImport(imp)
	}
	if len(stdlibImports) > 0 && len(externalImports) > 0 {
		g.writeLine("")
	}
	for _, imp := range externalImports {
		g.writeImport(imp)
	}

	g.indent--
	g.writeLine(")")
}

func (g *Generator) writeImport(imp string) {
	if name := g.imports[imp]; name != path.Base(imp) {
		g.writeLine("%s %q", name, imp)
		return
	}
	g.writeLine("%q", imp)
}

func (g *Generator) runtimeImport() string {
	if g.runtime != "" {
		return g.runtime
	}
	return resolve.RuntimeImport
}
