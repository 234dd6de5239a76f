// Package parser reads derive schemas: YAML documents declaring the ADTs of
// one Go package. It keeps source locations for every node and collects
// every problem it finds instead of stopping at the first one.
package parser

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/derive/internal/compiler/ast"
	"github.com/conduit-lang/derive/internal/compiler/errors"
)

// Parser turns a YAML schema document into an ast.Schema
type Parser struct {
	errors errors.ErrorList
}

// New creates a new parser
func New() *Parser {
	return &Parser{errors: make(errors.ErrorList, 0)}
}

// Parse decodes and validates src. The returned schema is nil only when the
// document could not be decoded at all.
func Parse(src []byte) (*ast.Schema, errors.ErrorList) {
	p := New()
	schema := p.Parse(src)
	if schema != nil {
		p.errors = append(p.errors, Validate(schema)...)
	}
	return schema, p.errors
}

// ParseFile reads path and parses it, stamping errors with the file name
func ParseFile(path string) (*ast.Schema, errors.ErrorList) {
	src, err := os.ReadFile(path)
	if err != nil {
		list := errors.ErrorList{errors.NewSchemaParse(ast.SourceLocation{}, err.Error())}
		return nil, list.WithFile(path)
	}
	schema, errs := Parse(src)
	return schema, errs.WithFile(path)
}

// Parse decodes src without running Validate
func (p *Parser) Parse(src []byte) *ast.Schema {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		p.errors = append(p.errors, errors.NewSchemaParse(yamlErrorLocation(err), err.Error()))
		return nil
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		p.errors = append(p.errors, errors.NewSchemaParse(ast.SourceLocation{Line: 1, Column: 1}, "document is empty"))
		return nil
	}

	root := doc.Content[0]
	if !p.expectKind(root, yaml.MappingNode, "schema") {
		return nil
	}

	schema := &ast.Schema{ADTs: make([]*ast.ADTNode, 0), Loc: loc(root)}
	p.eachKey(root, "schema", func(key string, value *yaml.Node) {
		switch key {
		case "package":
			schema.Package = p.scalar(value, "package")
		case "adts":
			if !p.expectKind(value, yaml.SequenceNode, "adts") {
				return
			}
			for _, item := range value.Content {
				if adt := p.parseADT(item); adt != nil {
					schema.ADTs = append(schema.ADTs, adt)
				}
			}
		default:
			p.unknownKey(value, key, "schema")
		}
	})
	return schema
}

// Errors returns the errors collected so far
func (p *Parser) Errors() errors.ErrorList {
	return p.errors
}

func (p *Parser) parseADT(n *yaml.Node) *ast.ADTNode {
	if !p.expectKind(n, yaml.MappingNode, "adt") {
		return nil
	}

	adt := &ast.ADTNode{Constructors: make([]*ast.ConstructorNode, 0), Loc: loc(n)}
	p.eachKey(n, "adt", func(key string, value *yaml.Node) {
		switch key {
		case "name":
			adt.Name = p.scalar(value, "name")
		case "doc":
			adt.Documentation = p.scalar(value, "doc")
		case "constructors":
			if !p.expectKind(value, yaml.SequenceNode, "constructors") {
				return
			}
			for _, item := range value.Content {
				if c := p.parseConstructor(item, adt, len(adt.Constructors)); c != nil {
					adt.Constructors = append(adt.Constructors, c)
				}
			}
		default:
			p.unknownKey(value, key, "adt")
		}
	})
	return adt
}

// parseConstructor assigns the declaration position as index. An explicit
// index must agree with it.
func (p *Parser) parseConstructor(n *yaml.Node, adt *ast.ADTNode, position int) *ast.ConstructorNode {
	if !p.expectKind(n, yaml.MappingNode, "constructor") {
		return nil
	}

	c := &ast.ConstructorNode{Index: position, Arguments: make([]*ast.ArgumentNode, 0), Loc: loc(n)}
	var explicit *yaml.Node
	p.eachKey(n, "constructor", func(key string, value *yaml.Node) {
		switch key {
		case "name":
			c.Name = p.scalar(value, "name")
		case "index":
			explicit = value
		case "fields":
			if !p.expectKind(value, yaml.SequenceNode, "fields") {
				return
			}
			for _, item := range value.Content {
				if arg := p.parseField(item); arg != nil {
					c.Arguments = append(c.Arguments, arg)
				}
			}
		default:
			p.unknownKey(value, key, "constructor")
		}
	})

	if explicit != nil {
		index, err := strconv.Atoi(p.scalar(explicit, "index"))
		if err != nil {
			p.errors = append(p.errors, errors.NewSchemaParse(loc(explicit), fmt.Sprintf("index '%s' is not an integer", explicit.Value)))
		} else if index != position {
			p.errors = append(p.errors, errors.NewConstructorIndex(loc(explicit), adt.Name, c.Name, position, index))
		}
	}
	return c
}

func (p *Parser) parseField(n *yaml.Node) *ast.ArgumentNode {
	if !p.expectKind(n, yaml.MappingNode, "field") {
		return nil
	}

	arg := &ast.ArgumentNode{Loc: loc(n)}
	var spelling *yaml.Node
	p.eachKey(n, "field", func(key string, value *yaml.Node) {
		switch key {
		case "name":
			arg.FieldName = p.scalar(value, "name")
		case "type":
			spelling = value
		default:
			p.unknownKey(value, key, "field")
		}
	})

	if spelling == nil {
		p.errors = append(p.errors, errors.NewMalformedType(loc(n), ""))
		return nil
	}
	typ, ok := ast.ParseType(p.scalar(spelling, "type"))
	if !ok {
		p.errors = append(p.errors, errors.NewMalformedType(loc(spelling), spelling.Value))
		return nil
	}
	typ.Loc = loc(spelling)
	arg.Type = typ
	return arg
}

// eachKey calls fn for every key of a mapping node in document order
func (p *Parser) eachKey(n *yaml.Node, what string, fn func(key string, value *yaml.Node)) {
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		if key.Kind != yaml.ScalarNode {
			p.errors = append(p.errors, errors.NewSchemaParse(loc(key), fmt.Sprintf("%s keys must be plain strings", what)))
			continue
		}
		fn(key.Value, n.Content[i+1])
	}
}

func (p *Parser) scalar(n *yaml.Node, what string) string {
	if n.Kind != yaml.ScalarNode {
		p.errors = append(p.errors, errors.NewSchemaParse(loc(n), fmt.Sprintf("%s must be a scalar", what)))
		return ""
	}
	return n.Value
}

func (p *Parser) expectKind(n *yaml.Node, kind yaml.Kind, what string) bool {
	if n.Kind == kind {
		return true
	}
	p.errors = append(p.errors, errors.NewSchemaParse(loc(n), fmt.Sprintf("%s must be a %s", what, kindName(kind))))
	return false
}

func (p *Parser) unknownKey(n *yaml.Node, key, what string) {
	p.errors = append(p.errors, errors.NewSchemaParse(loc(n), fmt.Sprintf("unknown %s key '%s'", what, key)))
}

func kindName(kind yaml.Kind) string {
	switch kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "list"
	default:
		return "scalar"
	}
}

func loc(n *yaml.Node) ast.SourceLocation {
	return ast.SourceLocation{Line: n.Line, Column: n.Column}
}

// yamlErrorLocation extracts the line from yaml.v3 messages of the form
// "yaml: line N: ..."
func yamlErrorLocation(err error) ast.SourceLocation {
	var line int
	if _, scanErr := fmt.Sscanf(err.Error(), "yaml: line %d:", &line); scanErr == nil {
		return ast.SourceLocation{Line: line, Column: 1}
	}
	return ast.SourceLocation{Line: 1, Column: 1}
}
