package errors

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/derive/internal/compiler/ast"
)

// Derivation error codes (DRV700-799)
const (
	// ErrUnsupportedArity indicates an ADT with more constructors than the prime table
	ErrUnsupportedArity ErrorCode = "DRV700"
	// ErrUnresolvedCapability indicates a field type without an instance for a capability
	ErrUnresolvedCapability ErrorCode = "DRV701"
)

// NewUnsupportedArity creates a DRV700 error
func NewUnsupportedArity(loc ast.SourceLocation, adt string, constructors, limit int) *CompilerError {
	return newError(
		ErrUnsupportedArity,
		"unsupported_arity",
		CategoryDerivation,
		SeverityError,
		fmt.Sprintf("Cannot derive Hash for '%s': it has %d constructors, at most %d are supported", adt, constructors, limit),
		loc,
	).WithADT(adt).
		WithExpected(fmt.Sprintf("at most %d constructors", limit)).
		WithActual(fmt.Sprintf("%d constructors", constructors)).
		WithSuggestion("Split the type into nested ADTs or drop Hash from its capabilities")
}

// NewUnresolvedCapability creates a DRV701 error. similar lists known type
// names close to the unresolved one.
func NewUnresolvedCapability(loc ast.SourceLocation, typeName, capability string, similar []string) *CompilerError {
	err := newError(
		ErrUnresolvedCapability,
		"unresolved_capability",
		CategoryDerivation,
		SeverityError,
		fmt.Sprintf("No %s instance for type '%s'", capability, typeName),
		loc,
	)
	if len(similar) > 0 {
		err.WithSuggestion(fmt.Sprintf("Did you mean: %s?", strings.Join(similar, ", ")))
	} else {
		err.WithSuggestion(fmt.Sprintf("Declare '%s' as an ADT in the schema or register a %s instance for it", typeName, capability))
	}
	return err
}
