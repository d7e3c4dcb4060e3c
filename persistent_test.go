package memocache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/unkn0wn-root/memocache/codec"
)

type yearReport struct {
	Year int

	data Slot[string]
}

func newDataAttr(t *testing.T, dir string, produced *int32, tweak func(*PersistentAttrOptions[*yearReport, string])) *PersistentAttr[*yearReport, string] {
	t.Helper()
	opts := PersistentAttrOptions[*yearReport, string]{
		AttrOptions: AttrOptions[*yearReport, string]{
			Name: "data",
			Deps: []string{"Year"},
			Produce: func(r *yearReport) (string, error) {
				atomic.AddInt32(produced, 1)
				return fmt.Sprintf("report-%d", r.Year), nil
			},
			Slot: func(r *yearReport) *Slot[string] { return &r.data },
		},
		PathTemplate: filepath.Join(dir, "report_{Year}.json"),
		Codec:        codec.JSON[string]{},
	}
	if tweak != nil {
		tweak(&opts)
	}
	a, err := NewPersistentAttr(opts)
	if err != nil {
		t.Fatalf("NewPersistentAttr: %v", err)
	}
	return a
}

func TestPersistentProduceWritesFile(t *testing.T) {
	dir := t.TempDir()
	var produced int32
	a := newDataAttr(t, dir, &produced, nil)
	r := &yearReport{Year: 2024}

	v, err := a.Get(r)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != "report-2024" {
		t.Fatalf("Get = %q", v)
	}

	path, err := a.Path(r)
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if filepath.Base(path) != "report_2024.json" {
		t.Fatalf("resolved path = %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("backing file missing: %v", err)
	}

	// No leftover temp files from the atomic write.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Fatalf("temp file %q left behind", e.Name())
		}
	}
}

// A fresh instance (simulating a restart) reads the backing file and never
// runs the producer.
func TestPersistentRestartLoadsFile(t *testing.T) {
	dir := t.TempDir()
	var produced int32
	a := newDataAttr(t, dir, &produced, nil)

	first := &yearReport{Year: 2024}
	if _, err := a.Get(first); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(&produced); got != 1 {
		t.Fatalf("produced %d, want 1", got)
	}

	second := &yearReport{Year: 2024}
	v, err := a.Get(second)
	if err != nil {
		t.Fatalf("Get on fresh instance: %v", err)
	}
	if v != "report-2024" {
		t.Fatalf("Get = %q", v)
	}
	if got := atomic.LoadInt32(&produced); got != 1 {
		t.Fatalf("file hit must not re-run producer, produced %d", got)
	}

	// Changed dependency resolves to a different file and produces again.
	second.Year = 2025
	if v, err := a.Get(second); err != nil || v != "report-2025" {
		t.Fatalf("Get after dep change: v=%q err=%v", v, err)
	}
	if got := atomic.LoadInt32(&produced); got != 2 {
		t.Fatalf("produced %d, want 2", got)
	}

	if _, err := os.Stat(filepath.Join(dir, "report_2025.json")); err != nil {
		t.Fatalf("second backing file missing: %v", err)
	}
}

func TestPersistentSetWritesThrough(t *testing.T) {
	dir := t.TempDir()
	var produced int32
	a := newDataAttr(t, dir, &produced, nil)

	r := &yearReport{Year: 2024}
	if err := a.Set(r, "curated"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// A different instance picks the value up from the file.
	other := &yearReport{Year: 2024}
	v, err := a.Get(other)
	if err != nil || v != "curated" {
		t.Fatalf("Get after Set: v=%q err=%v", v, err)
	}
	if got := atomic.LoadInt32(&produced); got != 0 {
		t.Fatalf("Set path must not produce, produced %d", got)
	}
}

func TestPersistentClearKeepsFileByDefault(t *testing.T) {
	dir := t.TempDir()
	var produced int32
	a := newDataAttr(t, dir, &produced, nil)
	r := &yearReport{Year: 2024}

	if _, err := a.Get(r); err != nil {
		t.Fatal(err)
	}
	if err := a.Clear(r); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	path, _ := a.Path(r)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default Clear must leave the file: %v", err)
	}
	// Valid still true through the file; next Get is a file hit.
	if !a.Valid(r) {
		t.Fatalf("Valid should consider the backing file")
	}
	if _, err := a.Get(r); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(&produced); got != 1 {
		t.Fatalf("Clear+Get should load the file, produced %d", got)
	}
}

func TestPersistentRemoveFileOnClear(t *testing.T) {
	dir := t.TempDir()
	var produced int32
	a := newDataAttr(t, dir, &produced, func(o *PersistentAttrOptions[*yearReport, string]) {
		o.RemoveFileOnClear = true
	})
	r := &yearReport{Year: 2024}

	if _, err := a.Get(r); err != nil {
		t.Fatal(err)
	}
	if err := a.Clear(r); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	path, _ := a.Path(r)
	if _, err := os.Stat(path); err == nil {
		t.Fatalf("RemoveFileOnClear must delete the backing file")
	}
	if a.Valid(r) {
		t.Fatalf("Valid should be false with no slot and no file")
	}
	if _, err := a.Get(r); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(&produced); got != 2 {
		t.Fatalf("expected reproduction after file removal, produced %d", got)
	}
}

func TestPersistentTemplateValidatedAtDeclaration(t *testing.T) {
	_, err := NewPersistentAttr(PersistentAttrOptions[*yearReport, string]{
		AttrOptions: AttrOptions[*yearReport, string]{
			Name:    "data",
			Deps:    []string{"Year"},
			Produce: func(*yearReport) (string, error) { return "", nil },
			Slot:    func(r *yearReport) *Slot[string] { return &r.data },
		},
		PathTemplate: "report_{Quarter}.json", // not a declared dependency
		Codec:        codec.JSON[string]{},
	})
	var te *TemplateError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TemplateError, got %T: %v", err, err)
	}
	if te.Name != "Quarter" {
		t.Fatalf("TemplateError.Name = %q", te.Name)
	}
}

// An absent dependency at access time is a template error too: its value is
// needed to resolve the path.
func TestPersistentAbsentDependencyAtAccess(t *testing.T) {
	type holder struct {
		attrs map[string]any
		val   Slot[string]
	}
	a, err := NewPersistentAttr(PersistentAttrOptions[*holder, string]{
		AttrOptions: AttrOptions[*holder, string]{
			Name:    "val",
			Deps:    []string{"key"},
			Produce: func(*holder) (string, error) { return "v", nil },
			Slot:    func(h *holder) *Slot[string] { return &h.val },
			Getter:  func(h *holder, name string) (any, bool) { v, ok := h.attrs[name]; return v, ok },
		},
		PathTemplate: filepath.Join(t.TempDir(), "{key}.bin"),
		Codec:        codec.String{},
	})
	if err != nil {
		t.Fatal(err)
	}

	h := &holder{attrs: map[string]any{}}
	_, err = a.Get(h)
	var te *TemplateError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TemplateError for absent dep, got %v", err)
	}
}

func TestPersistentOptionsValidation(t *testing.T) {
	base := PersistentAttrOptions[*yearReport, string]{
		AttrOptions: AttrOptions[*yearReport, string]{
			Name:    "data",
			Deps:    []string{"Year"},
			Produce: func(*yearReport) (string, error) { return "", nil },
			Slot:    func(r *yearReport) *Slot[string] { return &r.data },
		},
		PathTemplate: "f_{Year}",
		Codec:        codec.JSON[string]{},
	}

	noTpl := base
	noTpl.PathTemplate = ""
	if _, err := NewPersistentAttr(noTpl); err == nil {
		t.Fatalf("expected error for missing path template")
	}

	noCodec := base
	noCodec.Codec = nil
	if _, err := NewPersistentAttr(noCodec); err == nil {
		t.Fatalf("expected error for missing codec")
	}
}
