package pathtpl

import (
	"errors"
	"testing"
)

func TestParseAndResolve(t *testing.T) {
	tpl, err := Parse("out/report_{year}_{region}.bin", []string{"year", "region", "unused"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	names := tpl.Names()
	if len(names) != 2 || names[0] != "year" || names[1] != "region" {
		t.Fatalf("Names = %v", names)
	}

	got, err := tpl.Resolve(map[string]string{"year": "2024", "region": "emea"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "out/report_2024_emea.bin" {
		t.Fatalf("Resolve = %q", got)
	}
}

func TestParseRejectsUnknownPlaceholder(t *testing.T) {
	_, err := Parse("x_{quarter}", []string{"year"})
	var un *UnknownNameError
	if !errors.As(err, &un) {
		t.Fatalf("expected *UnknownNameError, got %v", err)
	}
	if un.Name != "quarter" {
		t.Fatalf("Name = %q", un.Name)
	}
}

func TestResolveRejectsMissingValue(t *testing.T) {
	tpl, err := Parse("x_{year}", []string{"year"})
	if err != nil {
		t.Fatal(err)
	}
	_, err = tpl.Resolve(map[string]string{})
	var un *UnknownNameError
	if !errors.As(err, &un) {
		t.Fatalf("expected *UnknownNameError, got %v", err)
	}
}

func TestNoPlaceholders(t *testing.T) {
	tpl, err := Parse("fixed/path.bin", []string{"year"})
	if err != nil {
		t.Fatal(err)
	}
	if len(tpl.Names()) != 0 {
		t.Fatalf("Names = %v, want none", tpl.Names())
	}
	got, err := tpl.Resolve(nil)
	if err != nil || got != "fixed/path.bin" {
		t.Fatalf("Resolve = %q, %v", got, err)
	}
}

func TestRepeatedPlaceholder(t *testing.T) {
	tpl, err := Parse("{a}/{a}.bin", []string{"a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(tpl.Names()) != 1 {
		t.Fatalf("repeated placeholder should be listed once: %v", tpl.Names())
	}
	got, err := tpl.Resolve(map[string]string{"a": "x"})
	if err != nil || got != "x/x.bin" {
		t.Fatalf("Resolve = %q, %v", got, err)
	}
}
