package memocache

// LazyAttr is an Attr that withholds computation until every declared
// dependency is present and non-nil on the owner. Until then, Get reports
// ok=false, the slot stays untouched, and the producer never runs. Once
// ready it behaves exactly like Attr, including recomputation when a
// dependency later changes; clearing a dependency back to nil reverts Get
// to ok=false until readiness holds again.
type LazyAttr[O, T any] struct {
	*Attr[O, T]
}

// NewLazyAttr validates opts and returns the lazy attribute descriptor.
func NewLazyAttr[O, T any](opts AttrOptions[O, T]) (*LazyAttr[O, T], error) {
	a, err := NewAttr(opts)
	if err != nil {
		return nil, err
	}
	return &LazyAttr[O, T]{Attr: a}, nil
}

// Get returns the cached (or freshly produced) value with ok=true, or
// (zero, false, nil) while the attribute is not ready.
func (l *LazyAttr[O, T]) Get(owner O) (T, bool, error) {
	var zero T
	current := takeSnapshot(owner, l.deps, l.get)
	if !current.ready() {
		return zero, false, nil
	}
	s := l.slot(owner)
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := l.getLocked(owner, s, current)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// Ready reports whether every dependency is present and non-nil.
func (l *LazyAttr[O, T]) Ready(owner O) bool {
	return takeSnapshot(owner, l.deps, l.get).ready()
}
