package logic

import (
	"fmt"
	"strings"
)

// Dump renders fn as an indented outline, one line per node
func Dump(fn *Func) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%s] => %s\n", fn.Capability, fn.ADT.Name, fn.Ref)
	dumpNode(&b, fn.Body, 1)
	return b.String()
}

func dumpNode(b *strings.Builder, n Node, depth int) {
	pad := strings.Repeat("  ", depth)

	switch n := n.(type) {
	case *Match:
		fmt.Fprintf(b, "%smatch $%d\n", pad, n.Operand)
		for _, c := range n.Cases {
			fmt.Fprintf(b, "%s  case %s#%d:\n", pad, c.Constructor.Name, c.Constructor.Index)
			dumpNode(b, c.Body, depth+2)
		}
	case *Const:
		fmt.Fprintf(b, "%s%s\n", pad, n.Value)
	case *Render:
		parts := make([]string, len(n.Parts))
		for i, p := range n.Parts {
			if p.Call != nil {
				parts[i] = dumpCall(p.Call)
			} else {
				parts[i] = fmt.Sprintf("%q", p.Literal)
			}
		}
		fmt.Fprintf(b, "%srender %s\n", pad, strings.Join(parts, " ++ "))
	case *HashFold:
		fmt.Fprintf(b, "%sfold seed=%d [%s]\n", pad, n.Seed, dumpCalls(n.Terms))
	case *Conjunction:
		if len(n.Terms) == 0 {
			fmt.Fprintf(b, "%strue\n", pad)
			return
		}
		fmt.Fprintf(b, "%sall %s\n", pad, dumpCalls(n.Terms))
	case *Lexicographic:
		fmt.Fprintf(b, "%slexicographic [%s]\n", pad, dumpCalls(n.Terms))
	default:
		fmt.Fprintf(b, "%s<%T>\n", pad, n)
	}
}

func dumpCalls(calls []*Call) string {
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = dumpCall(c)
	}
	return strings.Join(out, ", ")
}

func dumpCall(c *Call) string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = dumpFieldRef(a)
	}
	return fmt.Sprintf("%s(%s)", c.Ref, strings.Join(args, ", "))
}

func dumpFieldRef(f *FieldRef) string {
	ref := fmt.Sprintf("$%d.%s", f.Operand, f.Field.FieldName)
	if f.Cast != nil {
		return fmt.Sprintf("(%s)%s", f.Cast.Bound.Name, ref)
	}
	return ref
}
