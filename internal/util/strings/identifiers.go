package strings

import (
	"go/token"
	"strings"
	"unicode"
)

// initialisms that stay all caps in Go identifiers
var initialisms = map[string]string{
	"id":    "ID",
	"url":   "URL",
	"uri":   "URI",
	"uuid":  "UUID",
	"api":   "API",
	"http":  "HTTP",
	"https": "HTTPS",
	"json":  "JSON",
	"xml":   "XML",
	"html":  "HTML",
	"sql":   "SQL",
	"ip":    "IP",
	"tcp":   "TCP",
	"udp":   "UDP",
}

// ToGoFieldName converts a snake_case field name to an exported PascalCase name
func ToGoFieldName(name string) string {
	parts := strings.Split(name, "_")
	for i, part := range parts {
		if len(part) > 0 {
			if upper, ok := initialisms[strings.ToLower(part)]; ok {
				parts[i] = upper
			} else {
				parts[i] = strings.ToUpper(part[0:1]) + part[1:]
			}
		}
	}
	return strings.Join(parts, "")
}

// ToSnakeCase converts a PascalCase package or type name to a file name stem.
// A run of capitals is one word: ShapeHTTPTag -> shape_http_tag.
func ToSnakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if !unicode.IsUpper(r) {
			b.WriteRune(r)
			continue
		}
		if i > 0 {
			prevLower := !unicode.IsUpper(runes[i-1]) && runes[i-1] != '_'
			wordStart := unicode.IsUpper(runes[i-1]) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || wordStart {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// IsGoKeyword reports whether name is reserved in Go
func IsGoKeyword(name string) bool {
	return token.IsKeyword(name)
}

// IdentifierProblem returns why name cannot be a Go identifier, or "" when it can
func IdentifierProblem(name string) string {
	if name == "" {
		return "name is empty"
	}
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case unicode.IsDigit(r):
			if i == 0 {
				return "name starts with a digit"
			}
		default:
			return "name contains '" + string(r) + "'"
		}
	}
	return ""
}
