// Package cache memoizes derivations across builds. Derived logic depends
// only on the shape of an ADT and on how the resolver answers for its field
// types, so both are hashed into the cache key.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/conduit-lang/derive/internal/compiler/ast"
	"github.com/conduit-lang/derive/internal/compiler/logic"
)

// FileHasher computes content hashes for cache keys
type FileHasher struct{}

// NewFileHasher creates a new file hasher
func NewFileHasher() *FileHasher {
	return &FileHasher{}
}

// HashFile computes a SHA-256 hash of the file contents
func (fh *FileHasher) HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// HashContent computes a SHA-256 hash of the given content
func (fh *FileHasher) HashContent(content []byte) string {
	hasher := sha256.New()
	hasher.Write(content)
	return hex.EncodeToString(hasher.Sum(nil))
}

// HashString computes a SHA-256 hash of the given string
func (fh *FileHasher) HashString(content string) string {
	return fh.HashContent([]byte(content))
}

// Shape renders the parts of an ADT derivation depends on: its name and,
// in order, every constructor with its field names and type spellings.
// Documentation and source positions are left out.
func Shape(adt *ast.ADTNode) string {
	var b strings.Builder
	b.WriteString(adt.Name)
	for _, c := range adt.Constructors {
		fmt.Fprintf(&b, "|%d:%s(", c.Index, c.Name)
		for i, arg := range c.Arguments {
			if i > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, "%s:%s", arg.FieldName, arg.Type)
		}
		b.WriteString(")")
	}
	return b.String()
}

// Key identifies the derivation of capability c for adt under a resolver
// whose bindings are summarized by universe
func (fh *FileHasher) Key(adt *ast.ADTNode, universe string, c logic.Capability) string {
	return fh.HashString(c.String() + "\x00" + Shape(adt) + "\x00" + universe)
}
