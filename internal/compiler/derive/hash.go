package derive

import (
	"github.com/conduit-lang/derive/internal/compiler/ast"
	"github.com/conduit-lang/derive/internal/compiler/errors"
	"github.com/conduit-lang/derive/internal/compiler/logic"
)

// DeriveHash seeds constructor i with P = Prime(i) and folds its field hashes
// as ((P + h1)*P + h2)*P + ... + hn. A zero-field constructor hashes to P.
// ADTs with more than MaxConstructors constructors fail with DRV700.
func DeriveHash(adt *ast.ADTNode, r Resolver) (*logic.Func, error) {
	seeds := make([]int64, len(adt.Constructors))
	for i := range adt.Constructors {
		p, ok := Prime(i)
		if !ok {
			return nil, errors.NewUnsupportedArity(adt.Loc, adt.Name, len(adt.Constructors), MaxConstructors)
		}
		seeds[i] = p
	}

	calls, err := resolveFields(adt, logic.Hash, r)
	if err != nil {
		return nil, err
	}

	fn := newFunc(adt, logic.Hash)
	fn.Body = matchEach(adt, 0, func(i int, c *ast.ConstructorNode) logic.Node {
		return &logic.HashFold{Seed: seeds[i], Terms: calls[i]}
	})
	return fn, nil
}

// Fold evaluates the HashFold formula over already computed field hashes.
// int64 overflow wraps.
func Fold(seed int64, hashes []int64) int64 {
	acc := seed
	for k, h := range hashes {
		if k == 0 {
			acc += h
			continue
		}
		acc = acc*seed + h
	}
	return acc
}
