// Package pathtpl resolves {name} path templates against named values.
// Placeholders are validated against an allowed name set at parse time, so a
// template referencing an undeclared dependency fails at declaration rather
// than on first access.
package pathtpl

import (
	"fmt"
	"io"

	"github.com/valyala/fasttemplate"
)

// UnknownNameError reports a placeholder with no allowed name (at parse time)
// or no value (at resolve time).
type UnknownNameError struct {
	Name string
}

func (e *UnknownNameError) Error() string {
	return fmt.Sprintf("pathtpl: no value for placeholder %q", e.Name)
}

// Template is a parsed {name} path template.
type Template struct {
	raw   string
	t     *fasttemplate.Template
	names []string
}

// Parse compiles raw and verifies every placeholder is in allowed.
func Parse(raw string, allowed []string) (*Template, error) {
	t, err := fasttemplate.NewTemplate(raw, "{", "}")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var names []string
	t.ExecuteFuncString(func(_ io.Writer, tag string) (int, error) {
		if !seen[tag] {
			seen[tag] = true
			names = append(names, tag)
		}
		return 0, nil
	})

	ok := make(map[string]bool, len(allowed))
	for _, n := range allowed {
		ok[n] = true
	}
	for _, n := range names {
		if !ok[n] {
			return nil, &UnknownNameError{Name: n}
		}
	}
	return &Template{raw: raw, t: t, names: names}, nil
}

// Raw returns the template source.
func (t *Template) Raw() string { return t.raw }

// Names returns the distinct placeholders, in first-appearance order.
func (t *Template) Names() []string { return append([]string(nil), t.names...) }

// Resolve substitutes values into the template. Every placeholder must have
// a value.
func (t *Template) Resolve(values map[string]string) (string, error) {
	return t.t.ExecuteFuncStringWithErr(func(w io.Writer, tag string) (int, error) {
		v, ok := values[tag]
		if !ok {
			return 0, &UnknownNameError{Name: tag}
		}
		return w.Write([]byte(v))
	})
}
