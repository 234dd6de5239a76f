// Package runtime provides the support library called by generated instance code.
// Derived Show, Hash, Equal and Ord functions reference the Ordering and Stream
// types and the builtin instances defined here, and the interpreter in
// internal/eval binds the same instances so both encodings agree.
package runtime
