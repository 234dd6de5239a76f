package runtime

import (
	"iter"
	"strings"
	"unicode/utf8"
)

// Stream is a lazy, restartable, finite sequence of text chunks. Ranging over
// a Stream twice yields the same chunks, and stopping early has no effect on
// later traversals.
type Stream iter.Seq[string]

// Nil returns the empty stream
func Nil() Stream {
	return func(yield func(string) bool) {}
}

// Text returns a stream of a single chunk
func Text(s string) Stream {
	return func(yield func(string) bool) {
		if s != "" {
			yield(s)
		}
	}
}

// Defer postpones building a stream until it is first traversed. f runs again
// on every traversal.
func Defer(f func() Stream) Stream {
	return func(yield func(string) bool) {
		f()(yield)
	}
}

// Concat joins streams left to right
func Concat(parts ...Stream) Stream {
	return func(yield func(string) bool) {
		for _, part := range parts {
			stopped := false
			part(func(s string) bool {
				if !yield(s) {
					stopped = true
					return false
				}
				return true
			})
			if stopped {
				return
			}
		}
	}
}

// Append returns s followed by next
func (s Stream) Append(next Stream) Stream {
	return Concat(s, next)
}

// String drains the stream into a string
func (s Stream) String() string {
	var b strings.Builder
	for chunk := range s {
		b.WriteString(chunk)
	}
	return b.String()
}

// Take returns at most n bytes of the rendering, stopping the traversal as
// soon as enough text has been produced. The cut backs off to a rune
// boundary, so the result may be shorter than n but is never invalid UTF-8.
func (s Stream) Take(n int) string {
	var b strings.Builder
	if n <= 0 {
		return ""
	}
	for chunk := range s {
		if b.Len()+len(chunk) >= n {
			cut := n - b.Len()
			for cut > 0 && cut < len(chunk) && !utf8.RuneStart(chunk[cut]) {
				cut--
			}
			b.WriteString(chunk[:cut])
			break
		}
		b.WriteString(chunk)
	}
	return b.String()
}
