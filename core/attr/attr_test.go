package attr_test

import (
	"testing"

	"github.com/aledsdavies/chronicle/core/attr"
	"github.com/aledsdavies/chronicle/core/errors"
)

func TestStringRejectsMultilineByDefault(t *testing.T) {
	s := attr.StringAttr{}
	if _, err := s.Validate("line one\nline two"); err == nil {
		t.Fatal("expected value error for newline in non-multiline string")
	}

	ml := attr.StringAttr{Multiline: true}
	v, err := ml.Validate("line one\nline two")
	if err != nil {
		t.Fatalf("multiline Validate error: %v", err)
	}
	if v != "line one\nline two" {
		t.Errorf("Validate = %v", v)
	}
}

func TestStringFormatSemver(t *testing.T) {
	s := attr.StringAttr{Format: "semver"}

	for _, ok := range []string{"v1.2.3", "1.2.3", "v0.29.0-rc.1"} {
		if _, err := s.Validate(ok); err != nil {
			t.Errorf("Validate(%q) error: %v", ok, err)
		}
	}
	for _, bad := range []string{"1.2.3.4", "not-a-version", ""} {
		if _, err := s.Validate(bad); err == nil {
			t.Errorf("Validate(%q): expected value error for invalid semver", bad)
		} else if !errors.Is(err, errors.KindValue) {
			t.Errorf("Validate(%q): expected KindValue, got %v", bad, err)
		}
	}
}

func TestStringFormatUnknownIsValueError(t *testing.T) {
	s := attr.StringAttr{Format: "nonexistent"}
	if _, err := s.Validate("x"); err == nil {
		t.Fatal("expected value error for unknown format name")
	} else if !errors.Is(err, errors.KindValue) {
		t.Errorf("expected KindValue, got %v", err)
	}
}

func TestStringFormatNetworkShapes(t *testing.T) {
	ip := attr.StringAttr{Format: "ip"}
	if _, err := ip.Validate("10.0.0.1"); err != nil {
		t.Errorf("Validate(10.0.0.1) error: %v", err)
	}
	if _, err := ip.Validate("10.0.0.1/24"); err == nil {
		t.Error("expected error: a prefix is not an address")
	}

	cidr := attr.StringAttr{Format: "cidr"}
	if _, err := cidr.Validate("10.0.0.0/24"); err != nil {
		t.Errorf("Validate(10.0.0.0/24) error: %v", err)
	}

	dur := attr.StringAttr{Format: "duration"}
	if _, err := dur.Validate("1h30m"); err != nil {
		t.Errorf("Validate(1h30m) error: %v", err)
	}
	if _, err := dur.Validate("eleven minutes"); err == nil {
		t.Error("expected error for malformed duration")
	}
}

func TestIntegerRejectsBool(t *testing.T) {
	i := attr.IntegerAttr{}
	if _, err := i.Validate(true); err == nil {
		t.Fatal("expected type error for bool passed to integer attribute")
	} else if !errors.Is(err, errors.KindType) {
		t.Errorf("expected KindType, got %v", err)
	}
}

func TestIntegerEmptyIsNilOnly(t *testing.T) {
	i := attr.IntegerAttr{}
	if i.Empty(int64(0)) {
		t.Error("0 must not be considered empty for Integer")
	}
	if !i.Empty(nil) {
		t.Error("nil must be considered empty for Integer")
	}
}

func TestBooleanEmptyIsNilOnly(t *testing.T) {
	b := attr.BooleanAttr{}
	if b.Empty(false) {
		t.Error("false must not be considered empty for Boolean")
	}
}

func TestListEmptyIsNilOnly(t *testing.T) {
	l := attr.ListAttr{Elem: attr.IntegerAttr{}}
	if l.Empty([]any{}) {
		t.Error("[] must not be considered empty for List")
	}
	if !l.Empty(nil) {
		t.Error("nil must be considered empty for List")
	}
}

func TestListHomogeneousCoercion(t *testing.T) {
	l := attr.ListAttr{Elem: attr.IntegerAttr{}}
	v, err := l.Validate([]any{int64(1), 2, 3})
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	out := v.([]any)
	if len(out) != 3 || out[1] != int64(2) {
		t.Errorf("Validate = %v", out)
	}

	if _, err := l.Validate([]any{1, true}); err == nil {
		t.Fatal("expected error for heterogeneous list element")
	}
}

func TestDictStringKeyed(t *testing.T) {
	d := attr.DictAttr{Elem: attr.StringAttr{}}
	v, err := d.Validate(map[string]any{"a": "x", "b": "y"})
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	out := v.(map[string]any)
	if out["a"] != "x" || out["b"] != "y" {
		t.Errorf("Validate = %v", out)
	}
}

func TestDescriptorRequired(t *testing.T) {
	d := &attr.Descriptor{Name: "age", Type: attr.IntegerAttr{}, Required: true}
	if _, err := d.Validate(int64(0)); err != nil {
		t.Errorf("0 should satisfy a required Integer attribute, got error: %v", err)
	}
	if _, err := d.Validate(nil); err == nil {
		t.Fatal("expected value error for nil on required attribute")
	}
}
