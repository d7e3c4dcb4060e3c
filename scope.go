package memocache

import (
	"bytes"
	"runtime"
	"strconv"
)

// Scope selects where a Memo keeps its store. Fixed at creation time.
type Scope int

const (
	// Shared uses a single store visible to every execution context.
	Shared Scope = iota
	// Partitioned resolves an independent store per execution context
	// (goroutine by default), so equal arguments memoize independently
	// across contexts.
	Partitioned
)

func (s Scope) String() string {
	switch s {
	case Shared:
		return "shared"
	case Partitioned:
		return "partitioned"
	default:
		return "scope(" + strconv.Itoa(int(s)) + ")"
	}
}

var goroutinePrefix = []byte("goroutine ")

// goroutineID returns the current goroutine's ID by parsing the first
// runtime.Stack line ("goroutine N [running]:"). It is the default
// execution-context identity for Partitioned scope; override with
// Options.ContextID when you need a different notion of context
// (worker ID, request token, ...).
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := bytes.TrimPrefix(buf[:n], goroutinePrefix)
	if i := bytes.IndexByte(b, ' '); i > 0 {
		if id, err := strconv.ParseUint(string(b[:i]), 10, 64); err == nil {
			return id
		}
	}
	return 0
}
