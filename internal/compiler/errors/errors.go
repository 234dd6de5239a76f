// Package errors provides structured error handling for the derive compiler.
// It defines error codes, categories, and formatting for both human-readable
// terminal output and machine-parseable JSON.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/conduit-lang/derive/internal/compiler/ast"
)

// ErrorCode represents a unique error code in the derive compiler
type ErrorCode string

// ErrorCategory represents the category of compiler error
type ErrorCategory string

const (
	// CategorySchema represents malformed schema errors (SCH001-099)
	CategorySchema ErrorCategory = "schema"
	// CategoryCodeGen represents code generation errors (GEN600-699)
	CategoryCodeGen ErrorCategory = "codegen"
	// CategoryDerivation represents instance derivation errors (DRV700-799)
	CategoryDerivation ErrorCategory = "derivation"
)

// ErrorSeverity is error, warning or info. Only errors stop generation.
type ErrorSeverity string

const (
	SeverityError   ErrorSeverity = "error"
	SeverityWarning ErrorSeverity = "warning"
	SeverityInfo    ErrorSeverity = "info"
)

// CompilerError is one problem found in a schema or while deriving from it.
// It renders for terminals through Format and for tools through ToJSON.
type CompilerError struct {
	Code     ErrorCode     `json:"code"`
	Type     string        `json:"type"`
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`

	Location ast.SourceLocation `json:"location"`
	File     string             `json:"file,omitempty"`
	// ADT names the type whose derivation failed
	ADT string `json:"adt,omitempty"`

	Expected      string   `json:"expected,omitempty"`
	Actual        string   `json:"actual,omitempty"`
	Suggestion    string   `json:"suggestion,omitempty"`
	Examples      []string `json:"examples,omitempty"`
	Documentation string   `json:"documentation,omitempty"`
}

func (e *CompilerError) Error() string {
	return e.Format()
}

// Is matches any CompilerError carrying the same code, so
// errors.Is(err, &CompilerError{Code: ErrUnsupportedArity}) works through wrapping.
func (e *CompilerError) Is(target error) bool {
	t, ok := target.(*CompilerError)
	return ok && t.Code == e.Code
}

// Format returns a human-readable error message for terminal output
func (e *CompilerError) Format() string {
	return FormatError(e)
}

// ToJSON returns the error as indented JSON
func (e *CompilerError) ToJSON() (string, error) {
	return indentJSON(e)
}

// The With* builders mutate and return e so constructors can chain them.

func (e *CompilerError) WithFile(file string) *CompilerError {
	e.File = file
	return e
}

func (e *CompilerError) WithADT(name string) *CompilerError {
	e.ADT = name
	return e
}

func (e *CompilerError) WithExpected(expected string) *CompilerError {
	e.Expected = expected
	return e
}

func (e *CompilerError) WithActual(actual string) *CompilerError {
	e.Actual = actual
	return e
}

func (e *CompilerError) WithSuggestion(suggestion string) *CompilerError {
	e.Suggestion = suggestion
	return e
}

func (e *CompilerError) WithExamples(examples ...string) *CompilerError {
	e.Examples = examples
	return e
}

// ErrorList collects every problem of one schema. Parsing and derivation
// report all of them instead of stopping at the first.
type ErrorList []*CompilerError

func (el ErrorList) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	return FormatErrorList(el)
}

// Unwrap exposes the entries to errors.Is and errors.As
func (el ErrorList) Unwrap() []error {
	errs := make([]error, len(el))
	for i, e := range el {
		errs[i] = e
	}
	return errs
}

// HasErrors reports whether any entry has error severity
func (el ErrorList) HasErrors() bool {
	n, _, _ := el.ErrorCount()
	return n > 0
}

// ErrorCount returns the number of entries by severity
func (el ErrorList) ErrorCount() (errors, warnings, info int) {
	for _, err := range el {
		switch err.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		case SeverityInfo:
			info++
		}
	}
	return
}

// ToJSON returns all entries as an indented JSON array
func (el ErrorList) ToJSON() (string, error) {
	return indentJSON(el)
}

// WithFile stamps every entry with the schema file name
func (el ErrorList) WithFile(file string) ErrorList {
	for _, err := range el {
		err.WithFile(file)
	}
	return el
}

// HasCode reports whether err is, wraps or lists a CompilerError with code
func HasCode(err error, code ErrorCode) bool {
	return stderrors.Is(err, &CompilerError{Code: code})
}

func indentJSON(v any) (string, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func newError(code ErrorCode, typ string, category ErrorCategory, severity ErrorSeverity, message string, loc ast.SourceLocation) *CompilerError {
	return &CompilerError{
		Code:          code,
		Type:          typ,
		Category:      category,
		Severity:      severity,
		Message:       message,
		Location:      loc,
		Documentation: fmt.Sprintf("https://docs.conduit-lang.org/derive/errors/%s", code),
	}
}
