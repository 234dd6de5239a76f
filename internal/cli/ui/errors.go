// Package ui formats command line output
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	cerrors "github.com/conduit-lang/derive/internal/compiler/errors"
)

// ErrorLevel represents the severity of an error message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

var levelStyles = map[ErrorLevel]struct {
	symbol string
	attr   color.Attribute
}{
	ErrorLevelError:   {"❌", color.FgRed},
	ErrorLevelWarning: {"⚠️", color.FgYellow},
	ErrorLevelInfo:    {"ℹ️", color.FgCyan},
}

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Consequence  string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError renders a message block:
//
//	❌ ADT NOT FOUND
//	   Cannot find ADT 'Shap' in the schema.
//
//	   Did you mean: Shape?
//
//	   → See all ADTs: derive explain
//
// Without a Context the problem goes on the symbol line.
func FormatError(opts ErrorOptions) string {
	level := levelStyles[opts.Level]
	header := newStyle(opts.NoColor, level.attr, color.Bold)
	body := newStyle(opts.NoColor, level.attr)

	var b strings.Builder
	if opts.Context == "" {
		header.Fprintf(&b, "%s %s\n", level.symbol, opts.Problem)
	} else {
		header.Fprintf(&b, "%s %s\n", level.symbol, strings.ToUpper(opts.Context))
		body.Fprintf(&b, "   %s\n", opts.Problem)
	}

	if opts.Consequence != "" {
		body.Fprintf(&b, "\n   %s\n", opts.Consequence)
	}
	if len(opts.Suggestions) > 0 {
		newStyle(opts.NoColor, color.FgYellow).Fprintf(&b, "\n   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}
	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := newStyle(opts.NoColor, color.FgCyan)
		for _, help := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", help)
		}
	}
	return b.String()
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	return newStyle(noColor, color.FgGreen, color.Bold).Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// BuildError creates a standardized build failure message
func BuildError(message string, suggestions []string, noColor bool) string {
	opts := ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "BUILD FAILED",
		Problem:     message,
		Suggestions: suggestions,
		HelpCommands: []string{
			"Validate the schema: derive check",
			"Get help: derive generate --help",
		},
		NoColor: noColor,
	}
	return FormatError(opts)
}

// SchemaErrors summarizes rejected schema or derivation problems. The
// individual errors are printed separately with errors.FormatErrorList.
func SchemaErrors(schemaPath string, errs cerrors.ErrorList, noColor bool) string {
	n, warnings, _ := errs.ErrorCount()
	opts := ErrorOptions{
		Level:   ErrorLevelError,
		Context: "SCHEMA REJECTED",
		Problem: fmt.Sprintf("%s has %d error(s) and %d warning(s).", schemaPath, n, warnings),
		HelpCommands: []string{
			"Explain an error: see the documentation link of its code",
			"Inspect derived logic: derive explain <ADT>",
		},
		NoColor: noColor,
	}
	return FormatError(opts)
}

// ADTNotFoundError creates a standardized ADT not found error
func ADTNotFoundError(name string, suggestions []string, noColor bool) string {
	opts := ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "ADT NOT FOUND",
		Problem:     fmt.Sprintf("Cannot find ADT '%s' in the schema.", name),
		Suggestions: suggestions,
		HelpCommands: []string{
			"See all ADTs: derive explain",
		},
		NoColor: noColor,
	}
	return FormatError(opts)
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, suggestions []string, noColor bool) string {
	opts := ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "CONFIGURATION ERROR",
		Problem:     message,
		Suggestions: suggestions,
		HelpCommands: []string{
			"View config: cat derive.yml",
			"Get help: derive --help",
		},
		NoColor: noColor,
	}
	return FormatError(opts)
}

// Warning creates a standardized warning message
func Warning(message string, suggestions []string, noColor bool) string {
	opts := ErrorOptions{
		Level:       ErrorLevelWarning,
		Problem:     message,
		Suggestions: suggestions,
		NoColor:     noColor,
	}
	return FormatError(opts)
}

// Info creates a standardized info message
func Info(message string, noColor bool) string {
	opts := ErrorOptions{
		Level:   ErrorLevelInfo,
		Problem: message,
		NoColor: noColor,
	}
	return FormatError(opts)
}
