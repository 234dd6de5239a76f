package resolve

import "github.com/conduit-lang/derive/internal/compiler/logic"

// RuntimeImport is the import path of the package holding builtin instances
const RuntimeImport = "github.com/conduit-lang/derive/pkg/runtime"

// Builtin describes a primitive field type and the Go type that carries it
type Builtin struct {
	Name   string // schema spelling, e.g. "Int"
	GoType string // e.g. "int64", "uuid.UUID"
	Import string // package GoType lives in, empty for predeclared types
}

// Builtins are the primitive types every registry knows. Their instances live
// in pkg/runtime as Show<Name>, Hash<Name>, Equal<Name> and Ord<Name>.
var Builtins = []Builtin{
	{Name: "Int", GoType: "int64"},
	{Name: "String", GoType: "string"},
	{Name: "Bool", GoType: "bool"},
	{Name: "Float", GoType: "float64"},
	{Name: "UUID", GoType: "uuid.UUID", Import: "github.com/google/uuid"},
	{Name: "Time", GoType: "time.Time", Import: "time"},
	{Name: "Bytes", GoType: "[]byte"},
}

// LookupBuiltin returns the builtin registered under name
func LookupBuiltin(name string) (Builtin, bool) {
	for _, b := range Builtins {
		if b.Name == name {
			return b, true
		}
	}
	return Builtin{}, false
}

// Ref is the runtime symbol implementing capability c for b
func (b Builtin) Ref(c logic.Capability) logic.Ref {
	return logic.Ref{Import: RuntimeImport, Symbol: c.String() + b.Name}
}
