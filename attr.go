package memocache

import (
	"fmt"
	"sync"
)

// Slot is the per-(instance, attribute) storage cell: the cached value, the
// dependency snapshot recorded when it was produced, and the lock guarding
// both. Embed one Slot field in the owner type per cached attribute; its
// zero value is ready to use, and its lifetime is exactly the instance's.
type Slot[T any] struct {
	mu    sync.Mutex
	value T
	snap  snapshot
	full  bool
}

// AttrOptions declare a cached attribute on an owner type O with value type
// T. Name, Produce and Slot are required.
type AttrOptions[O, T any] struct {
	// Required. Attribute name; also the key removed by Strip.
	Name string
	// Required. Computes the value from the owner on a cache miss.
	Produce func(owner O) (T, error)
	// Required. Resolves the owner's slot for this attribute, e.g.
	// func(r *Report) *Slot[string] { return &r.summary }.
	Slot func(owner O) *Slot[T]

	// Names of owner attributes the value depends on. Empty means the value
	// is always valid once computed, until an explicit Set or Clear.
	Deps []string
	// Attribute access for Deps. nil => ReflectGetter[O]().
	Getter Getter[O]

	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used
}

// Attr is a dependency-validated, lazily computed attribute. Declared once
// per owner type (typically a package-level variable) and applied to any
// number of instances; all per-instance state lives in the instance's Slot.
type Attr[O, T any] struct {
	name    string
	deps    []string
	produce func(O) (T, error)
	slot    func(O) *Slot[T]
	get     Getter[O]
	log     Logger
	hooks   Hooks
}

// NewAttr validates opts and returns the attribute descriptor.
func NewAttr[O, T any](opts AttrOptions[O, T]) (*Attr[O, T], error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("memocache: attr name is required")
	}
	if opts.Produce == nil {
		return nil, fmt.Errorf("memocache: attr %q: produce function is required", opts.Name)
	}
	if opts.Slot == nil {
		return nil, fmt.Errorf("memocache: attr %q: slot accessor is required", opts.Name)
	}

	a := &Attr[O, T]{
		name:    opts.Name,
		deps:    append([]string(nil), opts.Deps...),
		produce: opts.Produce,
		slot:    opts.Slot,
	}
	if opts.Getter != nil {
		a.get = opts.Getter
	} else {
		a.get = ReflectGetter[O]()
	}
	a.log = coalesce[Logger](opts.Logger, NopLogger{})
	a.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	return a, nil
}

// Name returns the attribute name.
func (a *Attr[O, T]) Name() string { return a.name }

// Deps returns the declared dependency names.
func (a *Attr[O, T]) Deps() []string { return append([]string(nil), a.deps...) }

// Get returns the cached value, recomputing it first when the slot is empty
// or the owner's dependency values no longer match the recorded snapshot.
// A producer error propagates unchanged and leaves the slot in its prior
// state. Concurrent readers of one instance observe at most one production
// per invalidation.
func (a *Attr[O, T]) Get(owner O) (T, error) {
	current := takeSnapshot(owner, a.deps, a.get)
	s := a.slot(owner)
	s.mu.Lock()
	defer s.mu.Unlock()
	return a.getLocked(owner, s, current)
}

// getLocked implements Get under s.mu; the persistent variant layers the
// file lookup into the same critical section.
func (a *Attr[O, T]) getLocked(owner O, s *Slot[T], current snapshot) (T, error) {
	if s.full && current.equal(s.snap) {
		return s.value, nil
	}
	a.log.Debug("producing attribute value", Fields{"attr": a.name, "stale": s.full})
	v, err := a.produce(owner)
	if err != nil {
		a.hooks.ProducerError(a.name, err)
		var zero T
		return zero, err
	}
	s.value, s.snap, s.full = v, current, true
	return v, nil
}

// Set stores value directly. The write is treated as fresh-and-valid for the
// dependency values as they stand now. A write always wins over an in-flight
// read's production: it takes the slot lock after that production completes.
func (a *Attr[O, T]) Set(owner O, value T) {
	current := takeSnapshot(owner, a.deps, a.get)
	s := a.slot(owner)
	s.mu.Lock()
	s.value, s.snap, s.full = value, current, true
	s.mu.Unlock()
}

// Clear resets the slot. The next Get produces again.
func (a *Attr[O, T]) Clear(owner O) {
	s := a.slot(owner)
	s.mu.Lock()
	var zero T
	s.value, s.snap, s.full = zero, nil, false
	s.mu.Unlock()
}

// Valid reports whether the slot holds a value whose snapshot matches the
// owner's current dependency values. Never triggers production.
func (a *Attr[O, T]) Valid(owner O) bool {
	current := takeSnapshot(owner, a.deps, a.get)
	s := a.slot(owner)
	s.mu.Lock()
	ok := s.full && current.equal(s.snap)
	s.mu.Unlock()
	return ok
}

// Named is any cached attribute, regardless of owner and value type.
// Implemented by Attr, PersistentAttr and LazyAttr; consumed by Strip.
type Named interface {
	Name() string
}

// Strip returns a copy of an instance's extracted state (a name-to-value
// mapping, as produced by the caller's state-extraction layer) with the slot
// entries of the given attributes removed and everything else untouched.
// Use it before serializing or transmitting an instance so caches are not
// persisted as real state.
func Strip(state map[string]any, attrs ...Named) map[string]any {
	out := make(map[string]any, len(state))
	for k, v := range state {
		out[k] = v
	}
	for _, at := range attrs {
		delete(out, at.Name())
	}
	return out
}
