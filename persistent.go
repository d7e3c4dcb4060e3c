package memocache

import (
	"errors"
	"fmt"
	"os"

	"github.com/unkn0wn-root/memocache/codec"
	"github.com/unkn0wn-root/memocache/internal/fsutil"
	"github.com/unkn0wn-root/memocache/internal/pathtpl"
)

// PersistentAttrOptions declare a persistent cached attribute. In addition to
// the core options, PathTemplate and Codec are required.
type PersistentAttrOptions[O, T any] struct {
	AttrOptions[O, T]

	// Required. Backing-file path with {dep} placeholders over Deps, so
	// distinct dependency values resolve to distinct files,
	// e.g. "reports/summary_{Year}.bin".
	PathTemplate string
	// Required. Serializes the cached value to/from the backing file. The
	// file holds exactly one encoded value.
	Codec codec.Codec[T]
	// Whether Clear also deletes the backing file. Default is to clear the
	// in-memory slot only, leaving the file for the next reader.
	RemoveFileOnClear bool
	// File mode for created backing files. 0 => 0644.
	FileMode os.FileMode
}

// PersistentAttr is an Attr with a file as a secondary cache source, letting
// the value persist across instances and across runs. The file is a
// single-owner convenience store, not a shared cache: concurrent processes
// writing the same path are only protected by last-rename-wins.
type PersistentAttr[O, T any] struct {
	*Attr[O, T]
	tpl           *pathtpl.Template
	codec         codec.Codec[T]
	removeOnClear bool
	mode          os.FileMode
}

// NewPersistentAttr validates opts, including the path template against the
// declared dependency names (a placeholder outside Deps is a *TemplateError).
func NewPersistentAttr[O, T any](opts PersistentAttrOptions[O, T]) (*PersistentAttr[O, T], error) {
	a, err := NewAttr(opts.AttrOptions)
	if err != nil {
		return nil, err
	}
	if opts.PathTemplate == "" {
		return nil, fmt.Errorf("memocache: attr %q: path template is required", opts.Name)
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("memocache: attr %q: codec is required", opts.Name)
	}

	tpl, err := pathtpl.Parse(opts.PathTemplate, opts.Deps)
	if err != nil {
		var un *pathtpl.UnknownNameError
		if errors.As(err, &un) {
			return nil, &TemplateError{Attr: opts.Name, Template: opts.PathTemplate, Name: un.Name}
		}
		return nil, &TemplateError{Attr: opts.Name, Template: opts.PathTemplate, Cause: err}
	}

	return &PersistentAttr[O, T]{
		Attr:          a,
		tpl:           tpl,
		codec:         opts.Codec,
		removeOnClear: opts.RemoveFileOnClear,
		mode:          coalesce[os.FileMode](opts.FileMode, 0o644),
	}, nil
}

// Get returns the cached value, trying in order: the in-memory slot (when its
// snapshot matches the current dependency values), the backing file resolved
// for those values, and only then the producer. A file hit is trusted as the
// authoritative cached value and does not re-run the producer. After a
// production the value is serialized to the resolved path through a
// write-temp-then-rename.
//
// File I/O and codec errors propagate unchanged. When the file write fails
// after a successful production, the in-memory slot keeps the produced value;
// the error still surfaces and the next Get is a memory hit.
func (p *PersistentAttr[O, T]) Get(owner O) (T, error) {
	var zero T
	current := takeSnapshot(owner, p.deps, p.get)
	s := p.slot(owner)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.full && current.equal(s.snap) {
		return s.value, nil
	}

	path, err := p.resolvePath(current)
	if err != nil {
		return zero, err
	}
	if fsutil.Exists(path) {
		b, err := os.ReadFile(path)
		if err != nil {
			return zero, err
		}
		v, err := p.codec.Decode(b)
		if err != nil {
			return zero, err
		}
		s.value, s.snap, s.full = v, current, true
		p.hooks.FileLoaded(p.name, path)
		p.log.Debug("loaded attribute from backing file", Fields{"attr": p.name, "path": path})
		return v, nil
	}

	v, err := p.getLocked(owner, s, current)
	if err != nil {
		return zero, err
	}
	if err := p.store(v, path); err != nil {
		return zero, err
	}
	return v, nil
}

// Set stores value in the slot as fresh-and-valid for the current dependency
// values, then (over)writes the backing file at the resolved path.
func (p *PersistentAttr[O, T]) Set(owner O, value T) error {
	current := takeSnapshot(owner, p.deps, p.get)
	s := p.slot(owner)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value, s.snap, s.full = value, current, true
	path, err := p.resolvePath(current)
	if err != nil {
		return err
	}
	return p.store(value, path)
}

// Clear resets the in-memory slot. The backing file is left in place unless
// the attribute was declared with RemoveFileOnClear.
func (p *PersistentAttr[O, T]) Clear(owner O) error {
	current := takeSnapshot(owner, p.deps, p.get)
	s := p.slot(owner)
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	s.value, s.snap, s.full = zero, nil, false
	if !p.removeOnClear {
		return nil
	}
	path, err := p.resolvePath(current)
	if err != nil {
		return err
	}
	return fsutil.Remove(path)
}

// Valid reports whether a read would be satisfied without production: the
// slot is valid for the current dependency values, or a backing file exists
// at the path they resolve to. Never triggers production.
func (p *PersistentAttr[O, T]) Valid(owner O) bool {
	current := takeSnapshot(owner, p.deps, p.get)
	s := p.slot(owner)
	s.mu.Lock()
	ok := s.full && current.equal(s.snap)
	s.mu.Unlock()
	if ok {
		return true
	}
	path, err := p.resolvePath(current)
	if err != nil {
		return false
	}
	return fsutil.Exists(path)
}

// Path resolves the backing-file path for the owner's current dependency
// values. Useful for tooling and tests.
func (p *PersistentAttr[O, T]) Path(owner O) (string, error) {
	return p.resolvePath(takeSnapshot(owner, p.deps, p.get))
}

func (p *PersistentAttr[O, T]) resolvePath(current snapshot) (string, error) {
	values := make(map[string]string, len(current))
	for _, name := range p.tpl.Names() {
		dv := current[name]
		if !dv.present {
			return "", &TemplateError{Attr: p.name, Template: p.tpl.Raw(), Name: name}
		}
		values[name] = fmt.Sprintf("%v", dv.value)
	}
	path, err := p.tpl.Resolve(values)
	if err != nil {
		return "", &TemplateError{Attr: p.name, Template: p.tpl.Raw(), Cause: err}
	}
	return path, nil
}

func (p *PersistentAttr[O, T]) store(v T, path string) error {
	b, err := p.codec.Encode(v)
	if err != nil {
		return err
	}
	if err := fsutil.WriteAtomic(path, b, p.mode); err != nil {
		return err
	}
	p.hooks.FileStored(p.name, path)
	p.log.Debug("stored attribute to backing file", Fields{"attr": p.name, "path": path})
	return nil
}
