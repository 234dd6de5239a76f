package errors

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/derive/internal/compiler/ast"
)

// Code generation error codes (GEN600-699)
const (
	// ErrCodeGenFailed indicates a general code generation failure
	ErrCodeGenFailed ErrorCode = "GEN600"
	// ErrUnknownCapability indicates a capability name no derivator serves
	ErrUnknownCapability ErrorCode = "GEN601"
)

// NewCodeGenFailed creates a GEN600 error
func NewCodeGenFailed(loc ast.SourceLocation, reason string) *CompilerError {
	return newError(
		ErrCodeGenFailed,
		"codegen_failed",
		CategoryCodeGen,
		SeverityError,
		fmt.Sprintf("Code generation failed: %s", reason),
		loc,
	).WithSuggestion("This is likely a compiler bug - please report it")
}

// NewUnknownCapability creates a GEN601 error
func NewUnknownCapability(name string, known []string) *CompilerError {
	return newError(
		ErrUnknownCapability,
		"unknown_capability",
		CategoryCodeGen,
		SeverityError,
		fmt.Sprintf("Unknown capability '%s'", name),
		ast.SourceLocation{},
	).WithExpected(strings.Join(known, ", ")).
		WithActual(name).
		WithSuggestion("Capability names are case-sensitive")
}
