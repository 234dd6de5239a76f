package errors

import (
	"fmt"

	"github.com/conduit-lang/derive/internal/compiler/ast"
)

// Schema error codes (SCH001-099)
const (
	// ErrEmptyADT indicates an ADT without a name or without constructors
	ErrEmptyADT ErrorCode = "SCH001"
	// ErrDuplicateADT indicates two ADTs with the same name
	ErrDuplicateADT ErrorCode = "SCH002"
	// ErrDuplicateConstructor indicates two constructors with the same name
	ErrDuplicateConstructor ErrorCode = "SCH003"
	// ErrConstructorIndex indicates an index that does not match declaration order
	ErrConstructorIndex ErrorCode = "SCH004"
	// ErrDuplicateField indicates two fields with the same name in one constructor
	ErrDuplicateField ErrorCode = "SCH005"
	// ErrInvalidIdentifier indicates a name that cannot become a Go identifier
	ErrInvalidIdentifier ErrorCode = "SCH006"
	// ErrGoReservedWord indicates use of a Go reserved word
	ErrGoReservedWord ErrorCode = "SCH007"
	// ErrMalformedType indicates a field type spelling that cannot be parsed
	ErrMalformedType ErrorCode = "SCH008"
	// ErrSchemaParse indicates the schema document itself could not be decoded
	ErrSchemaParse ErrorCode = "SCH009"
	// ErrNameCollision indicates a name taken by an identifier the generator emits
	ErrNameCollision ErrorCode = "SCH010"
)

// NewEmptyADT creates a SCH001 error
func NewEmptyADT(loc ast.SourceLocation, name, reason string) *CompilerError {
	return newError(
		ErrEmptyADT,
		"empty_adt",
		CategorySchema,
		SeverityError,
		fmt.Sprintf("ADT '%s' %s", name, reason),
		loc,
	).WithADT(name).
		WithSuggestion("Every ADT needs a name and at least one constructor")
}

// NewDuplicateADT creates a SCH002 error
func NewDuplicateADT(loc ast.SourceLocation, name string, previous ast.SourceLocation) *CompilerError {
	return newError(
		ErrDuplicateADT,
		"duplicate_adt",
		CategorySchema,
		SeverityError,
		fmt.Sprintf("ADT '%s' is already declared at line %d", name, previous.Line),
		loc,
	).WithADT(name)
}

// NewDuplicateConstructor creates a SCH003 error
func NewDuplicateConstructor(loc ast.SourceLocation, adt, name string) *CompilerError {
	return newError(
		ErrDuplicateConstructor,
		"duplicate_constructor",
		CategorySchema,
		SeverityError,
		fmt.Sprintf("Constructor '%s' is declared more than once", name),
		loc,
	).WithADT(adt)
}

// NewConstructorIndex creates a SCH004 error
func NewConstructorIndex(loc ast.SourceLocation, adt, name string, expected, actual int) *CompilerError {
	return newError(
		ErrConstructorIndex,
		"constructor_index",
		CategorySchema,
		SeverityError,
		fmt.Sprintf("Constructor '%s' has index %d but is declared at position %d", name, actual, expected),
		loc,
	).WithADT(adt).
		WithExpected(fmt.Sprintf("%d", expected)).
		WithActual(fmt.Sprintf("%d", actual))
}

// NewDuplicateField creates a SCH005 error
func NewDuplicateField(loc ast.SourceLocation, adt, constructor, field string) *CompilerError {
	return newError(
		ErrDuplicateField,
		"duplicate_field",
		CategorySchema,
		SeverityError,
		fmt.Sprintf("Field '%s' is declared more than once in constructor '%s'", field, constructor),
		loc,
	).WithADT(adt)
}

// NewInvalidIdentifier creates a SCH006 error
func NewInvalidIdentifier(loc ast.SourceLocation, name, reason string) *CompilerError {
	return newError(
		ErrInvalidIdentifier,
		"invalid_identifier",
		CategorySchema,
		SeverityError,
		fmt.Sprintf("Name '%s' cannot be converted to a valid Go identifier: %s", name, reason),
		loc,
	).WithSuggestion("Use alphanumeric characters and underscores only")
}

// NewGoReservedWord creates a SCH007 error
func NewGoReservedWord(loc ast.SourceLocation, word string) *CompilerError {
	return newError(
		ErrGoReservedWord,
		"go_reserved_word",
		CategorySchema,
		SeverityError,
		fmt.Sprintf("'%s' is a reserved word in Go", word),
		loc,
	).WithSuggestion("Use a different name that doesn't conflict with Go keywords").
		WithExamples(
			"Common Go keywords: type, func, interface, struct, import, package, return, if, else, for, range",
		)
}

// NewMalformedType creates a SCH008 error
func NewMalformedType(loc ast.SourceLocation, spelling string) *CompilerError {
	return newError(
		ErrMalformedType,
		"malformed_type",
		CategorySchema,
		SeverityError,
		fmt.Sprintf("Cannot parse field type '%s'", spelling),
		loc,
	).WithExamples("Int", "Shape", "?Shape (wildcarded, bound Shape)")
}

// NewSchemaParse creates a SCH009 error
func NewSchemaParse(loc ast.SourceLocation, reason string) *CompilerError {
	return newError(
		ErrSchemaParse,
		"schema_parse",
		CategorySchema,
		SeverityError,
		fmt.Sprintf("Cannot decode schema: %s", reason),
		loc,
	)
}

// NewNameCollision creates a SCH010 error. what describes the declaration at
// loc and other the identifier it collides with.
func NewNameCollision(loc ast.SourceLocation, adt, name, what, other string) *CompilerError {
	return newError(
		ErrNameCollision,
		"name_collision",
		CategorySchema,
		SeverityError,
		fmt.Sprintf("Name '%s' of %s collides with %s", name, what, other),
		loc,
	).WithADT(adt).
		WithSuggestion("Rename the ADT or constructor; the generated package declares <ADT>Tag, <ADT>Tag<Constructor>, Show<ADT>, Hash<ADT>, Equal<ADT> and Ord<ADT>")
}
