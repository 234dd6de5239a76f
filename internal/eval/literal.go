package eval

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"text/scanner"
	"time"

	"github.com/google/uuid"

	"github.com/conduit-lang/derive/internal/compiler/ast"
)

// ParseValue parses a value literal such as `Rect(2, 3)` against schema. The
// leading constructor name selects the ADT. Zero-field constructors may omit
// the parentheses. Builtin field values are written as Go literals; UUID, Time
// (RFC 3339) and Bytes (hex, optionally 0x-prefixed) are written as strings.
func ParseValue(schema *ast.Schema, src string) (Value, error) {
	p := newLiteralParser(schema, src)

	name := p.peekText()
	adt := p.owner(name)
	if adt == nil {
		return Value{}, p.errorf("%q is not a constructor of any ADT", name)
	}

	v, err := p.value(&ast.TypeNode{Name: adt.Name})
	if err != nil {
		return Value{}, err
	}
	if p.tok != scanner.EOF {
		return Value{}, p.errorf("unexpected %q after value", p.s.TokenText())
	}
	return v.(Value), nil
}

type literalParser struct {
	schema *ast.Schema
	s      scanner.Scanner
	tok    rune
	err    error
}

func newLiteralParser(schema *ast.Schema, src string) *literalParser {
	p := &literalParser{schema: schema}
	p.s.Init(strings.NewReader(src))
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats | scanner.ScanStrings | scanner.ScanRawStrings
	p.s.Error = func(s *scanner.Scanner, msg string) {
		if p.err == nil {
			p.err = fmt.Errorf("%s: %s", s.Position, msg)
		}
	}
	p.next()
	return p
}

func (p *literalParser) next() {
	p.tok = p.s.Scan()
}

func (p *literalParser) peekText() string {
	if p.tok == scanner.EOF {
		return ""
	}
	return p.s.TokenText()
}

func (p *literalParser) errorf(format string, args ...any) error {
	if p.err != nil {
		return p.err
	}
	pos := p.s.Position
	if !pos.IsValid() {
		pos = p.s.Pos()
	}
	return fmt.Errorf("%s: %s", pos, fmt.Sprintf(format, args...))
}

func (p *literalParser) expect(tok rune) error {
	if p.tok != tok {
		return p.errorf("expected %s, found %q", scanner.TokenString(tok), p.peekText())
	}
	p.next()
	return nil
}

// owner returns the ADT declaring the constructor name
func (p *literalParser) owner(name string) *ast.ADTNode {
	for _, adt := range p.schema.ADTs {
		if _, ok := adt.Constructor(name); ok {
			return adt
		}
	}
	return nil
}

func (p *literalParser) value(t *ast.TypeNode) (any, error) {
	name := t.Name
	if t.Wildcard {
		name = t.Bound
	}
	if adt, ok := p.schema.Lookup(name); ok {
		return p.adtValue(adt)
	}
	return p.builtin(name)
}

func (p *literalParser) adtValue(adt *ast.ADTNode) (any, error) {
	if p.tok != scanner.Ident {
		return nil, p.errorf("expected a constructor of %s, found %q", adt.Name, p.peekText())
	}
	name := p.s.TokenText()
	c, ok := adt.Constructor(name)
	if !ok {
		return nil, p.errorf("%s is not a constructor of %s", name, adt.Name)
	}
	p.next()

	v := Value{ADT: adt.Name, Tag: c.Index, Fields: make([]any, 0, len(c.Arguments))}
	if p.tok != '(' {
		if len(c.Arguments) > 0 {
			return nil, p.errorf("%s takes %d fields", c.Name, len(c.Arguments))
		}
		return v, nil
	}
	p.next()

	for i, arg := range c.Arguments {
		if i > 0 {
			if err := p.expect(','); err != nil {
				return nil, err
			}
		}
		field, err := p.value(arg.Type)
		if err != nil {
			return nil, err
		}
		v.Fields = append(v.Fields, field)
	}
	if p.tok == ',' {
		return nil, p.errorf("%s takes %d fields", c.Name, len(c.Arguments))
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return v, nil
}

func (p *literalParser) builtin(name string) (any, error) {
	switch name {
	case "Int":
		text, err := p.number(scanner.Int)
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return nil, p.errorf("invalid Int %s", text)
		}
		return n, nil

	case "Float":
		text, err := p.number(scanner.Float)
		if err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, p.errorf("invalid Float %s", text)
		}
		return f, nil

	case "Bool":
		text := p.peekText()
		if p.tok != scanner.Ident || (text != "true" && text != "false") {
			return nil, p.errorf("expected true or false, found %q", text)
		}
		p.next()
		return text == "true", nil

	case "String":
		return p.str()

	case "UUID":
		s, err := p.str()
		if err != nil {
			return nil, err
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, p.errorf("invalid UUID %q: %v", s, err)
		}
		return id, nil

	case "Time":
		s, err := p.str()
		if err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, p.errorf("invalid Time %q: %v", s, err)
		}
		return ts, nil

	case "Bytes":
		s, err := p.str()
		if err != nil {
			return nil, err
		}
		b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
		if err != nil {
			return nil, p.errorf("invalid Bytes %q: %v", s, err)
		}
		return b, nil
	}
	return nil, p.errorf("no literal syntax for type %s", name)
}

// number scans an optionally negative numeric literal. Ints are accepted
// where a Float is expected.
func (p *literalParser) number(kind rune) (string, error) {
	sign := ""
	if p.tok == '-' {
		sign = "-"
		p.next()
	}
	if p.tok != scanner.Int && p.tok != kind {
		return "", p.errorf("expected a number, found %q", p.peekText())
	}
	text := sign + p.s.TokenText()
	p.next()
	return text, nil
}

func (p *literalParser) str() (string, error) {
	if p.tok != scanner.String && p.tok != scanner.RawString {
		return "", p.errorf("expected a quoted string, found %q", p.peekText())
	}
	s, err := strconv.Unquote(p.s.TokenText())
	if err != nil {
		return "", p.errorf("invalid string %s", p.s.TokenText())
	}
	p.next()
	return s, nil
}
