package memocache

import "fmt"

// KeyError reports that a cache key could not be built from the call
// arguments, typically because one of them has an unhashable kind
// (func, chan, unsafe pointer).
type KeyError struct {
	Cache string
	Cause error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("memocache: %q: unhashable key arguments: %v", e.Cache, e.Cause)
}

func (e *KeyError) Unwrap() error { return e.Cause }

// TemplateError reports a path template problem: a placeholder that is not a
// declared dependency (caught at declaration time), or a placeholder whose
// dependency is absent on the instance at resolution time.
type TemplateError struct {
	Attr     string
	Template string
	Name     string // offending placeholder
	Cause    error
}

func (e *TemplateError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("memocache: attr %q: template %q references %q which is not an available dependency",
			e.Attr, e.Template, e.Name)
	}
	return fmt.Sprintf("memocache: attr %q: template %q: %v", e.Attr, e.Template, e.Cause)
}

func (e *TemplateError) Unwrap() error { return e.Cause }
