// Package logic defines the generated-logic description produced by the
// derivators: one function per (ADT, capability), structured as nested
// dispatch on constructor tags. The codegen package renders it as Go source
// and the eval package interprets it.
package logic

import (
	"fmt"

	"github.com/conduit-lang/derive/internal/compiler/ast"
)

// Capability is one of the four derivable operations
type Capability int

const (
	// Show renders a value as text
	Show Capability = iota
	// Hash maps a value to an integer consistent with Equal
	Hash
	// Equal is structural equality
	Equal
	// Ord is a total order consistent with Equal
	Ord
)

// Capabilities lists every capability in canonical order
var Capabilities = []Capability{Show, Hash, Equal, Ord}

// String returns the capability name
func (c Capability) String() string {
	switch c {
	case Show:
		return "Show"
	case Hash:
		return "Hash"
	case Equal:
		return "Equal"
	case Ord:
		return "Ord"
	default:
		return fmt.Sprintf("Capability(%d)", int(c))
	}
}

// Operands returns how many values an operation of this capability takes
func (c Capability) Operands() int {
	if c == Equal || c == Ord {
		return 2
	}
	return 1
}

// ParseCapability maps a capability name back to its value
func ParseCapability(name string) (Capability, bool) {
	for _, c := range Capabilities {
		if c.String() == name {
			return c, true
		}
	}
	return 0, false
}

// CapabilityNames returns the names of all capabilities
func CapabilityNames() []string {
	names := make([]string, len(Capabilities))
	for i, c := range Capabilities {
		names[i] = c.String()
	}
	return names
}

// Ref names an operation implementing a capability for some type. Import is
// empty for symbols of the package being generated.
type Ref struct {
	Import string
	Symbol string
}

// String returns "import.Symbol" or just "Symbol"
func (r Ref) String() string {
	if r.Import == "" {
		return r.Symbol
	}
	return r.Import + "." + r.Symbol
}

// Func is the generated logic for one capability of one ADT
type Func struct {
	Capability Capability
	ADT        *ast.ADTNode
	// Ref is the symbol the function is published under
	Ref  Ref
	Body *Match
}

// Node is implemented by every IR node
type Node interface {
	node()
}

// Match dispatches on the constructor tag of one operand. It has exactly one
// case per constructor, in declaration order.
type Match struct {
	Operand int
	Cases   []*Case
}

// Case is the branch taken for one constructor
type Case struct {
	Constructor *ast.ConstructorNode
	Body        Node
}

// ConstValue is a statically known branch result
type ConstValue int

const (
	// True is the Equal result of a zero-field diagonal pair
	True ConstValue = iota
	// False is the Equal result of an off-diagonal pair
	False
	// Less is the Ord result of an off-diagonal pair whose left index is smaller
	Less
	// Greater is the Ord result of an off-diagonal pair whose left index is larger
	Greater
)

// String returns the constant's name
func (v ConstValue) String() string {
	switch v {
	case True:
		return "true"
	case False:
		return "false"
	case Less:
		return "LT"
	case Greater:
		return "GT"
	default:
		return fmt.Sprintf("ConstValue(%d)", int(v))
	}
}

// Const is a branch whose result does not depend on field values
type Const struct {
	Value ConstValue
}

// Part is one piece of a rendering: either a literal or a field rendering
type Part struct {
	Literal string
	Call    *Call
}

// Render concatenates parts left to right into a lazy stream
type Render struct {
	Parts []Part
}

// AppendLiteral adds literal text, merging it into a preceding literal
func (r *Render) AppendLiteral(s string) {
	if n := len(r.Parts); n > 0 && r.Parts[n-1].Call == nil {
		r.Parts[n-1].Literal += s
		return
	}
	r.Parts = append(r.Parts, Part{Literal: s})
}

// AppendCall adds a field rendering
func (r *Render) AppendCall(c *Call) {
	r.Parts = append(r.Parts, Part{Call: c})
}

// HashFold computes acc := Seed, acc += h1, then acc = acc*Seed + hk for k >= 2.
// With no terms the result is Seed.
type HashFold struct {
	Seed  int64
	Terms []*Call
}

// Conjunction is the short-circuiting AND of its terms, true when empty
type Conjunction struct {
	Terms []*Call
}

// Lexicographic returns the first non-EQ term result, EQ when all are EQ
type Lexicographic struct {
	Terms []*Call
}

// Call invokes a resolved operation on field values
type Call struct {
	Ref  Ref
	Args []*FieldRef
}

// FieldRef reads one field of one operand inside a Case
type FieldRef struct {
	Operand int
	Index   int
	Field   *ast.ArgumentNode
	Cast    *Cast
}

// Cast converts a wildcarded field value to its upper bound before use
type Cast struct {
	Bound *ast.TypeNode
}

func (*Match) node()         {}
func (*Const) node()         {}
func (*Render) node()        {}
func (*HashFold) node()      {}
func (*Conjunction) node()   {}
func (*Lexicographic) node() {}
