package parser

import (
	"fmt"

	"github.com/conduit-lang/derive/internal/compiler/ast"
	"github.com/conduit-lang/derive/internal/compiler/errors"
	"github.com/conduit-lang/derive/internal/compiler/logic"
	"github.com/conduit-lang/derive/internal/compiler/resolve"
	ustrings "github.com/conduit-lang/derive/internal/util/strings"
)

// Validate checks the structural rules every schema must satisfy before
// derivation: non-empty ADTs, unique names, and names usable as Go
// identifiers. ADT names, constructor names and the identifiers generated
// from them share one namespace because each becomes a declaration of the
// generated package.
func Validate(schema *ast.Schema) errors.ErrorList {
	v := &validator{
		adts:      make(map[string]ast.SourceLocation),
		ctors:     make(map[string]string),
		generated: make(map[string]string),
	}

	if schema.Package != "" {
		v.identifier(schema.Loc, schema.Package)
	}
	for _, adt := range schema.ADTs {
		v.adt(adt)
	}
	return v.errors
}

type validator struct {
	errors errors.ErrorList
	adts   map[string]ast.SourceLocation
	// constructor name -> owning ADT
	ctors map[string]string
	// generated identifier -> description of what emits it
	generated map[string]string
}

func (v *validator) adt(adt *ast.ADTNode) {
	if adt.Name == "" {
		v.add(errors.NewEmptyADT(adt.Loc, adt.Name, "has no name"))
	} else if v.identifier(adt.Loc, adt.Name) {
		if _, ok := resolve.LookupBuiltin(adt.Name); ok {
			v.add(errors.NewInvalidIdentifier(adt.Loc, adt.Name, "name shadows a builtin type").WithADT(adt.Name))
		} else if prev, ok := v.adts[adt.Name]; ok {
			v.add(errors.NewDuplicateADT(adt.Loc, adt.Name, prev))
		} else if owner, ok := v.ctors[adt.Name]; ok {
			v.add(errors.NewDuplicateConstructor(adt.Loc, adt.Name, adt.Name).
				WithActual(fmt.Sprintf("a constructor of ADT '%s' already uses this name", owner)))
		} else if what, ok := v.generated[adt.Name]; ok {
			v.add(errors.NewNameCollision(adt.Loc, adt.Name, adt.Name, "ADT", what))
		} else {
			v.adts[adt.Name] = adt.Loc
			v.reserveADT(adt)
		}
	}

	if len(adt.Constructors) == 0 {
		v.add(errors.NewEmptyADT(adt.Loc, adt.Name, "has no constructors"))
	}

	for _, c := range adt.Constructors {
		v.constructor(adt, c)
	}
}

func (v *validator) constructor(adt *ast.ADTNode, c *ast.ConstructorNode) {
	if c.Name == "" {
		v.add(errors.NewInvalidIdentifier(c.Loc, c.Name, "constructor has no name").WithADT(adt.Name))
	} else if v.identifier(c.Loc, c.Name) {
		if owner, ok := v.ctors[c.Name]; ok {
			v.add(errors.NewDuplicateConstructor(c.Loc, adt.Name, c.Name).
				WithActual(fmt.Sprintf("also declared by ADT '%s'", owner)))
		} else if _, ok := v.adts[c.Name]; ok {
			v.add(errors.NewDuplicateConstructor(c.Loc, adt.Name, c.Name).
				WithActual("an ADT already uses this name"))
		} else if what, ok := v.generated[c.Name]; ok {
			v.add(errors.NewNameCollision(c.Loc, adt.Name, c.Name, "constructor", what))
		} else {
			v.ctors[c.Name] = adt.Name
			if adt.Name != "" {
				v.reserve(c.Loc, adt.Name, adt.Name+"Tag"+c.Name,
					fmt.Sprintf("the tag constant of %s.%s", adt.Name, c.Name))
			}
		}
	}

	seen := make(map[string]bool)
	goNames := make(map[string]string)
	for _, arg := range c.Arguments {
		if !v.identifier(arg.Loc, arg.FieldName) {
			continue
		}
		if seen[arg.FieldName] {
			v.add(errors.NewDuplicateField(arg.Loc, adt.Name, c.Name, arg.FieldName))
			continue
		}
		seen[arg.FieldName] = true

		goName := ustrings.ToGoFieldName(arg.FieldName)
		if goName == "Tag" {
			v.add(errors.NewInvalidIdentifier(arg.Loc, arg.FieldName, "conflicts with the generated Tag method").WithADT(adt.Name))
			continue
		}
		if other, ok := goNames[goName]; ok {
			v.add(errors.NewDuplicateField(arg.Loc, adt.Name, c.Name, arg.FieldName).
				WithActual(fmt.Sprintf("'%s' and '%s' both become Go field %s", other, arg.FieldName, goName)))
			continue
		}
		goNames[goName] = arg.FieldName
	}
}

// reserveADT claims the tag type and the derived function names of adt.
// The spellings follow codegen.TagType and derive.Symbol.
func (v *validator) reserveADT(adt *ast.ADTNode) {
	v.reserve(adt.Loc, adt.Name, adt.Name+"Tag", fmt.Sprintf("the tag type of ADT '%s'", adt.Name))
	for _, c := range logic.Capabilities {
		v.reserve(adt.Loc, adt.Name, c.String()+adt.Name,
			fmt.Sprintf("the %s function of ADT '%s'", c, adt.Name))
	}
}

// reserve records a generated identifier, reporting a collision with any
// ADT, constructor or identifier claimed before it.
func (v *validator) reserve(loc ast.SourceLocation, adt, name, what string) {
	var other string
	if owner, ok := v.ctors[name]; ok {
		other = fmt.Sprintf("constructor '%s' of ADT '%s'", name, owner)
	} else if _, ok := v.adts[name]; ok {
		other = fmt.Sprintf("ADT '%s'", name)
	} else if prev, ok := v.generated[name]; ok {
		other = prev
	}
	if other != "" {
		v.add(errors.NewNameCollision(loc, adt, name, what, other))
		return
	}
	v.generated[name] = what
}

// identifier reports whether name is usable as a Go identifier, recording
// an error when it is not.
func (v *validator) identifier(loc ast.SourceLocation, name string) bool {
	if problem := ustrings.IdentifierProblem(name); problem != "" {
		v.add(errors.NewInvalidIdentifier(loc, name, problem))
		return false
	}
	if ustrings.IsGoKeyword(name) {
		v.add(errors.NewGoReservedWord(loc, name))
		return false
	}
	return true
}

func (v *validator) add(err *errors.CompilerError) {
	v.errors = append(v.errors, err)
}
