package memocache

import (
	"fmt"
	"sync"
	"time"
)

const (
	defaultPartRetention = 30 * 24 * time.Hour
	defaultSweep         = time.Hour
)

// Options tune a Memo. Only Name is required; others have sensible defaults.
type Options struct {
	// Required. Logical cache name, used in logs and hook callbacks.
	Name string

	Scope     Scope         // default Shared
	Logger    Logger        // if nil, NopLogger is used
	Hooks     Hooks         // if nil, NopHooks is used
	ContextID func() uint64 // Partitioned identity; nil => current goroutine ID

	// Partition housekeeping (Partitioned scope only). A per-context store
	// that has not been touched for PartitionRetention is dropped on the
	// next sweep. 0 => 1h interval, 30d retention.
	SweepInterval      time.Duration
	PartitionRetention time.Duration
}

// Memo is a get-or-compute store keyed by a hash of the call arguments.
// Within one store, equal arguments always yield the result produced by the
// single winning compute; a failed compute stores nothing.
type Memo[V any] struct {
	name  string
	scope Scope
	log   Logger
	hooks Hooks
	ctxID func() uint64

	mu     sync.Mutex // guards shared/parts resolution
	shared *store[V]
	parts  map[uint64]*partition[V]

	ticker    *time.Ticker
	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type store[V any] struct {
	// Held across the full check-compute-insert sequence. This serializes
	// concurrent misses on distinct keys too - an accepted trade-off
	// favoring correctness over fine-grained parallelism.
	mu      sync.Mutex
	entries map[uint64]V
}

type partition[V any] struct {
	store   *store[V]
	lastUse time.Time // guarded by Memo.mu
}

// New constructs a Memo. Name is required.
func New[V any](opts Options) (*Memo[V], error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("memocache: cache name is required")
	}
	if opts.Scope != Shared && opts.Scope != Partitioned {
		return nil, fmt.Errorf("memocache: invalid scope %v", opts.Scope)
	}

	m := &Memo[V]{
		name:  opts.Name,
		scope: opts.Scope,
	}
	m.log = coalesce[Logger](opts.Logger, NopLogger{})
	m.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})

	switch opts.Scope {
	case Shared:
		m.shared = newStore[V]()
	case Partitioned:
		m.parts = make(map[uint64]*partition[V])
		if opts.ContextID != nil {
			m.ctxID = opts.ContextID
		} else {
			m.ctxID = goroutineID
		}
		interval := coalesce[time.Duration](opts.SweepInterval, defaultSweep)
		retention := coalesce[time.Duration](opts.PartitionRetention, defaultPartRetention)
		m.ticker = time.NewTicker(interval)
		m.stopCh = make(chan struct{})
		m.wg.Add(1)
		go m.sweepLoop(retention)
	}
	return m, nil
}

func newStore[V any]() *store[V] {
	return &store[V]{entries: make(map[uint64]V)}
}

// Close stops the partition sweeper. The stores themselves need no teardown.
func (m *Memo[V]) Close() {
	m.closeOnce.Do(func() {
		if m.stopCh != nil {
			close(m.stopCh)
			m.ticker.Stop()
			m.wg.Wait()
		}
	})
}

// GetOrCompute looks args up in the scope-resolved store. On a hit it returns
// the stored result; on a miss it runs compute exactly once for that key
// within that store, stores the result, and returns it. Concurrent callers
// with the same key in the same store never both run compute.
//
// Returns a *KeyError when args contain a value that cannot be hashed.
// A compute error propagates unchanged and leaves the store unmodified.
func (m *Memo[V]) GetOrCompute(compute func() (V, error), args ...any) (V, error) {
	var zero V
	key, err := computeKey(args)
	if err != nil {
		return zero, &KeyError{Cache: m.name, Cause: err}
	}

	st := m.resolve()
	st.mu.Lock()
	defer st.mu.Unlock()

	if v, ok := st.entries[key]; ok {
		return v, nil
	}
	m.hooks.ComputeMiss(m.name, key)
	v, err := compute()
	if err != nil {
		m.hooks.ProducerError(m.name, err)
		return zero, err
	}
	st.entries[key] = v
	m.log.Debug("computed and stored", Fields{"cache": m.name, "key": key})
	return v, nil
}

// Contains reports whether a result for args is currently stored, without
// computing anything.
func (m *Memo[V]) Contains(args ...any) (bool, error) {
	key, err := computeKey(args)
	if err != nil {
		return false, &KeyError{Cache: m.name, Cause: err}
	}
	st := m.resolve()
	st.mu.Lock()
	_, ok := st.entries[key]
	st.mu.Unlock()
	return ok, nil
}

// Delete removes the stored result for args from the scope-resolved store,
// if present.
func (m *Memo[V]) Delete(args ...any) error {
	key, err := computeKey(args)
	if err != nil {
		return &KeyError{Cache: m.name, Cause: err}
	}
	st := m.resolve()
	st.mu.Lock()
	delete(st.entries, key)
	st.mu.Unlock()
	return nil
}

// Len returns the number of entries in the scope-resolved store.
func (m *Memo[V]) Len() int {
	st := m.resolve()
	st.mu.Lock()
	n := len(st.entries)
	st.mu.Unlock()
	return n
}

// resolve returns the effective store for the current execution context.
func (m *Memo[V]) resolve() *store[V] {
	if m.scope == Shared {
		return m.shared
	}
	id := m.ctxID()
	m.mu.Lock()
	p, ok := m.parts[id]
	if !ok {
		p = &partition[V]{store: newStore[V]()}
		m.parts[id] = p
	}
	p.lastUse = time.Now()
	m.mu.Unlock()
	return p.store
}

func (m *Memo[V]) sweepLoop(retention time.Duration) {
	defer m.wg.Done()
	for {
		select {
		case <-m.ticker.C:
			m.sweepPartitions(retention)
		case <-m.stopCh:
			return
		}
	}
}

// sweepPartitions drops per-context stores idle past retention. Goroutines
// end without notice, so this is what bounds the partition map.
func (m *Memo[V]) sweepPartitions(retention time.Duration) {
	cutoff := time.Now().Add(-retention)
	removed := 0

	m.mu.Lock()
	for id, p := range m.parts {
		if p.lastUse.Before(cutoff) {
			delete(m.parts, id)
			removed++
		}
	}
	m.mu.Unlock()

	if removed > 0 {
		m.hooks.PartitionsSwept(m.name, removed)
		m.log.Debug("partition sweep removed idle stores", Fields{"cache": m.name, "removed": removed})
	}
}
