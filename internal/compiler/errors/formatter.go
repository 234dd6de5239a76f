package errors

import (
	"fmt"
	"strings"
)

var severityIcons = map[ErrorSeverity]string{
	SeverityError:   "❌",
	SeverityWarning: "⚠️",
	SeverityInfo:    "ℹ️",
}

// FormatError renders e as a diagnostic block:
//
//	❌ SCH003 schema error: Constructor 'Circle' is declared more than once
//	   --> shapes.yml:12:7 (ADT Shape)
//
//	   💡 Rename one of the constructors
//	   See https://docs.conduit-lang.org/derive/errors/SCH003
func FormatError(e *CompilerError) string {
	var b strings.Builder

	icon, ok := severityIcons[e.Severity]
	if !ok {
		icon = "❓"
	}
	fmt.Fprintf(&b, "%s %s %s %s: %s\n", icon, e.Code, e.Category, e.Severity, e.Message)

	fmt.Fprintf(&b, "   --> %s", position(e))
	if e.ADT != "" {
		fmt.Fprintf(&b, " (ADT %s)", e.ADT)
	}
	b.WriteString("\n")

	if e.Expected != "" || e.Actual != "" {
		b.WriteString("\n")
		if e.Expected != "" {
			fmt.Fprintf(&b, "   expected: %s\n", e.Expected)
		}
		if e.Actual != "" {
			fmt.Fprintf(&b, "   actual:   %s\n", e.Actual)
		}
	}

	if e.Suggestion != "" || len(e.Examples) > 0 || e.Documentation != "" {
		b.WriteString("\n")
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "   💡 %s\n", e.Suggestion)
	}
	for _, example := range e.Examples {
		fmt.Fprintf(&b, "      e.g. %s\n", example)
	}
	if e.Documentation != "" {
		fmt.Fprintf(&b, "   See %s\n", e.Documentation)
	}

	return b.String()
}

// FormatErrorList renders a count line followed by every entry
func FormatErrorList(errors ErrorList) string {
	if len(errors) == 0 {
		return "no errors"
	}

	n, warnings, _ := errors.ErrorCount()
	blocks := make([]string, 0, len(errors)+1)
	blocks = append(blocks, fmt.Sprintf("%d error(s), %d warning(s)\n", n, warnings))
	for _, err := range errors {
		blocks = append(blocks, err.Format())
	}
	return strings.Join(blocks, "\n")
}

// FormatCompact returns the one-line file:line:col form used by editors
func FormatCompact(e *CompilerError) string {
	return fmt.Sprintf("%s: %s: %s [%s]", position(e), e.Severity, e.Message, e.Code)
}

func position(e *CompilerError) string {
	file := e.File
	if file == "" {
		file = "<schema>"
	}
	return fmt.Sprintf("%s:%d:%d", file, e.Location.Line, e.Location.Column)
}
