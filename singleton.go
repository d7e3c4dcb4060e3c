package memocache

import "sync"

// Singleton holds at most one instance of T. The first successful Get builds
// it; every later Get returns that same instance and ignores its build
// function entirely, construction arguments included. There is no teardown -
// the instance lives as long as the Singleton.
//
// A build error does not transition the state: the next Get builds again.
// sync.Once is unsuitable here for exactly that reason.
type Singleton[T any] struct {
	mu       sync.Mutex
	built    bool
	instance T
}

// Get returns the held instance, building it with build on the first
// successful call.
func (s *Singleton[T]) Get(build func() (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.built {
		return s.instance, nil
	}
	v, err := build()
	if err != nil {
		var zero T
		return zero, err
	}
	s.instance = v
	s.built = true
	return v, nil
}

// Initialized reports whether an instance has been built.
func (s *Singleton[T]) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.built
}
