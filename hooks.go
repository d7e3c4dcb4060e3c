package memocache

// Hooks are lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking; they run on hot paths.
type Hooks interface {
	// A Memo lookup missed and the compute function ran.
	ComputeMiss(cache string, key uint64)

	// A producer function returned an error; the slot/store was left untouched.
	ProducerError(name string, err error)

	// A persistent attribute satisfied a read from its backing file.
	FileLoaded(attr, path string)

	// A persistent attribute wrote its backing file.
	FileStored(attr, path string)

	// The partition sweeper removed idle per-context stores.
	PartitionsSwept(cache string, removed int)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) ComputeMiss(string, uint64)  {}
func (NopHooks) ProducerError(string, error) {}
func (NopHooks) FileLoaded(string, string)   {}
func (NopHooks) FileStored(string, string)   {}
func (NopHooks) PartitionsSwept(string, int) {}
