package memocache

import "fmt"

// Constructor memoizes construction: equal construction arguments yield the
// identical instance, differing arguments yield distinct instances. The key
// includes the constructor's name, so two Constructors sharing a scope never
// collide on equal arguments.
type Constructor[T any] struct {
	name  string
	build func(args ...any) (T, error)
	memo  *Memo[T]
}

// NewConstructor wraps build in a Memo. opts.Name is the type identity mixed
// into every key and must be set.
func NewConstructor[T any](build func(args ...any) (T, error), opts Options) (*Constructor[T], error) {
	if build == nil {
		return nil, fmt.Errorf("memocache: build function is required")
	}
	m, err := New[T](opts)
	if err != nil {
		return nil, err
	}
	return &Constructor[T]{name: opts.Name, build: build, memo: m}, nil
}

// New returns the memoized instance for args, constructing it on first use.
func (c *Constructor[T]) New(args ...any) (T, error) {
	keyed := make([]any, 0, len(args)+1)
	keyed = append(keyed, c.name)
	keyed = append(keyed, args...)
	return c.memo.GetOrCompute(func() (T, error) {
		return c.build(args...)
	}, keyed...)
}

// Forget drops the memoized instance for args, if any. The next New with the
// same arguments constructs a fresh one.
func (c *Constructor[T]) Forget(args ...any) error {
	keyed := make([]any, 0, len(args)+1)
	keyed = append(keyed, c.name)
	keyed = append(keyed, args...)
	return c.memo.Delete(keyed...)
}

// Close stops the underlying Memo's partition sweeper.
func (c *Constructor[T]) Close() { c.memo.Close() }
