// Package memocache implements in-process memoization with two caching
// disciplines: argument-keyed caches that return the same result for equal
// call arguments, and dependency-validated cached attributes attached to
// individual instances.
//
// Components:
//   - Memo[V]: get-or-compute store keyed by a hash of the call arguments.
//     Scope is Shared (one store for the whole process) or Partitioned
//     (one store per execution context, goroutine by default).
//   - Singleton[T] / Constructor[T]: construction memoization. Singleton keeps
//     exactly one instance and ignores later construction arguments;
//     Constructor keeps one instance per distinct argument set.
//   - Attr[O, T]: a lazily computed attribute on an instance, revalidated
//     against the current values of its declared dependencies.
//   - PersistentAttr[O, T]: Attr with a file as a secondary cache source,
//     addressed by a {name} path template over the dependency values.
//   - LazyAttr[O, T]: Attr that withholds computation until every dependency
//     is present and non-nil.
//
// Storage lifetime: a Memo store lives as long as the Memo (partitions are
// swept after an idle retention window); an attribute slot is a field of the
// owning instance, so it lives exactly as long as the instance. There is no
// size- or time-based eviction.
//
// Errors from producer functions and from backing-file I/O propagate to the
// caller unchanged; a failed production never mutates a slot or store.
package memocache
