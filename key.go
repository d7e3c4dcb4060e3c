package memocache

import (
	"github.com/cespare/xxhash/v2"
	"github.com/mitchellh/hashstructure/v2"
)

// nilArg stands in for untyped nil arguments, which the structural hasher
// cannot visit.
type nilArg struct{}

// computeKey hashes an ordered argument tuple into a store key.
// Arguments are hashed structurally: structs by exported fields, maps
// order-insensitively, slices in order. Kinds that cannot be hashed
// (func, chan) surface as an error, which callers wrap in a *KeyError.
func computeKey(args []any) (uint64, error) {
	hashable := make([]any, len(args))
	for i, a := range args {
		if a == nil {
			hashable[i] = nilArg{}
			continue
		}
		hashable[i] = a
	}
	return hashstructure.Hash(hashable, hashstructure.FormatV2, &hashstructure.HashOptions{
		Hasher: xxhash.New(),
	})
}
