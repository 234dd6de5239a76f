// Package ast defines the model of algebraic data types consumed by the derivators.
// It provides structures for representing schemas, ADTs, constructors, fields, and types.
package ast

import "strings"

// SourceLocation tracks the position of a node in the schema file
type SourceLocation struct {
	Line   int // Line number (1-indexed)
	Column int // Column number (1-indexed)
}

// Node is the base interface for all model nodes
type Node interface {
	Location() SourceLocation
	node()
}

// Schema is the root node: every ADT declared in one schema file
type Schema struct {
	Package string
	ADTs    []*ADTNode
	Loc     SourceLocation
}

func (s *Schema) node() {}

// Location returns the source location of the schema node.
func (s *Schema) Location() SourceLocation {
	return s.Loc
}

// Lookup returns the ADT declared under name, if any
func (s *Schema) Lookup(name string) (*ADTNode, bool) {
	for _, adt := range s.ADTs {
		if adt.Name == name {
			return adt, true
		}
	}
	return nil, false
}

// Names returns the declared ADT names in declaration order
func (s *Schema) Names() []string {
	names := make([]string, 0, len(s.ADTs))
	for _, adt := range s.ADTs {
		names = append(names, adt.Name)
	}
	return names
}

// ADTNode represents a sum type: a closed, ordered set of constructors.
// Constructor order is the contract for hash seeding and cross-constructor ordering.
type ADTNode struct {
	Name          string
	Documentation string
	Constructors  []*ConstructorNode
	Loc           SourceLocation
}

func (a *ADTNode) node() {}

// Location returns the source location of the ADT node.
func (a *ADTNode) Location() SourceLocation {
	return a.Loc
}

// Constructor returns the constructor with the given name, if any
func (a *ADTNode) Constructor(name string) (*ConstructorNode, bool) {
	for _, c := range a.Constructors {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// ConstructorNode represents one named variant of an ADT
type ConstructorNode struct {
	Name      string
	Index     int // declaration position, 0-based
	Arguments []*ArgumentNode
	Loc       SourceLocation
}

func (c *ConstructorNode) node() {}

// Location returns the source location of the constructor node.
func (c *ConstructorNode) Location() SourceLocation {
	return c.Loc
}

// Arity returns the number of fields carried by the constructor
func (c *ConstructorNode) Arity() int {
	return len(c.Arguments)
}

// ArgumentNode represents one field of a constructor
type ArgumentNode struct {
	FieldName string
	Type      *TypeNode
	Loc       SourceLocation
}

func (a *ArgumentNode) node() {}

// Location returns the source location of the argument node.
func (a *ArgumentNode) Location() SourceLocation {
	return a.Loc
}

// TypeNode identifies a field's type. Derivators treat it as opaque; only
// resolvers interpret it.
type TypeNode struct {
	Name     string // "Int", "String", "Shape", ...
	Wildcard bool   // existential type, values must be cast to Bound first
	Bound    string // upper bound of a wildcarded type
	Loc      SourceLocation
}

func (t *TypeNode) node() {}

// Location returns the source location of the type node.
func (t *TypeNode) Location() SourceLocation {
	return t.Loc
}

// String renders the type the way it is written in a schema ("Int", "?Shape")
func (t *TypeNode) String() string {
	if t.Wildcard {
		return "?" + t.Bound
	}
	return t.Name
}

// ParseType parses the schema spelling of a type. A leading '?' marks a
// wildcarded type whose upper bound is the rest of the spelling.
func ParseType(spelling string) (*TypeNode, bool) {
	spelling = strings.TrimSpace(spelling)
	if bound, ok := strings.CutPrefix(spelling, "?"); ok {
		bound = strings.TrimSpace(bound)
		if bound == "" || strings.ContainsAny(bound, "? \t") {
			return nil, false
		}
		return &TypeNode{Name: bound, Wildcard: true, Bound: bound}, true
	}
	if spelling == "" || strings.ContainsAny(spelling, "? \t") {
		return nil, false
	}
	return &TypeNode{Name: spelling}, true
}
