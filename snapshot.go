package memocache

import "reflect"

// Getter reads a named attribute from an owner instance. ok=false means the
// attribute is absent (not merely nil). This is the attribute-access contract
// every owner type of a cached attribute must support; ReflectGetter covers
// plain struct owners, and an explicit accessor table can replace it when
// reflection is unwanted.
type Getter[O any] func(owner O, name string) (value any, ok bool)

// ReflectGetter resolves names to exported struct fields of O (pointers are
// followed). Unknown or unexported names report absent.
func ReflectGetter[O any]() Getter[O] {
	return func(owner O, name string) (any, bool) {
		v := reflect.ValueOf(owner)
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return nil, false
			}
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct {
			return nil, false
		}
		f := v.FieldByName(name)
		if !f.IsValid() || !f.CanInterface() {
			return nil, false
		}
		return f.Interface(), true
	}
}

// depValue is one observed dependency: its value, or absent.
type depValue struct {
	value   any
	present bool
}

// snapshot records the observed values of a dependency name set at the moment
// a cached value was produced. Compared by value equality.
type snapshot map[string]depValue

// takeSnapshot observes every name in deps on owner. Must run before the slot
// lock is taken: a dependency may itself be a cached attribute.
func takeSnapshot[O any](owner O, deps []string, get Getter[O]) snapshot {
	s := make(snapshot, len(deps))
	for _, name := range deps {
		v, ok := get(owner, name)
		if !ok {
			s[name] = depValue{}
			continue
		}
		s[name] = depValue{value: v, present: true}
	}
	return s
}

func (s snapshot) equal(other snapshot) bool {
	if len(s) != len(other) {
		return false
	}
	for name, dv := range s {
		ov, ok := other[name]
		if !ok || dv.present != ov.present {
			return false
		}
		if !reflect.DeepEqual(dv.value, ov.value) {
			return false
		}
	}
	return true
}

// ready reports whether every dependency is present and non-nil - the
// readiness condition of a lazy attribute.
func (s snapshot) ready() bool {
	for _, dv := range s {
		if !dv.present || isNil(dv.value) {
			return false
		}
	}
	return true
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}
