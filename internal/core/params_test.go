package core

import (
	"bytes"
	"errors"
	"testing"
)

func TestCanonicalIsDeterministicAcrossInsertionOrder(t *testing.T) {
	a := Params{}
	a["material_id"] = "mp-30"
	a["miller"] = [3]int{1, 1, 1}
	a["min_xy"] = 4.5

	b := Params{}
	b["min_xy"] = 4.5
	b["miller"] = [3]int{1, 1, 1}
	b["material_id"] = "mp-30"

	ba, err := a.Canonical()
	if err != nil {
		t.Fatalf("Canonical() err=%v", err)
	}
	bb, err := b.Canonical()
	if err != nil {
		t.Fatalf("Canonical() err=%v", err)
	}
	if !bytes.Equal(ba, bb) {
		t.Fatalf("canonical encodings differ for equal params")
	}
}

func TestCanonicalNormalizesEquivalentRepresentations(t *testing.T) {
	base, err := Params{"miller": [3]int{1, 1, 1}}.Canonical()
	if err != nil {
		t.Fatalf("Canonical() err=%v", err)
	}

	equivalents := []Params{
		{"miller": []int{1, 1, 1}},
		{"miller": []any{1, 1, 1}},
		// YAML and JSON widen integers to floats on the way through.
		{"miller": []any{1.0, 1.0, 1.0}},
		{"miller": []float64{1, 1, 1}},
	}
	for i, p := range equivalents {
		enc, err := p.Canonical()
		if err != nil {
			t.Fatalf("equivalent %d: Canonical() err=%v", i, err)
		}
		if !bytes.Equal(base, enc) {
			t.Fatalf("equivalent %d encodes differently", i)
		}
	}

	different, err := Params{"miller": [3]int{1, 1, 0}}.Canonical()
	if err != nil {
		t.Fatalf("Canonical() err=%v", err)
	}
	if bytes.Equal(base, different) {
		t.Fatalf("distinct values share an encoding")
	}
}

func TestCanonicalCollapsesIntegralFloats(t *testing.T) {
	a, err := Params{"min_slab_size": 7}.Canonical()
	if err != nil {
		t.Fatalf("Canonical() err=%v", err)
	}
	b, err := Params{"min_slab_size": 7.0}.Canonical()
	if err != nil {
		t.Fatalf("Canonical() err=%v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("7 and 7.0 encode differently")
	}

	c, err := Params{"min_slab_size": 7.5}.Canonical()
	if err != nil {
		t.Fatalf("Canonical() err=%v", err)
	}
	if bytes.Equal(a, c) {
		t.Fatalf("7 and 7.5 share an encoding")
	}
}

func TestCanonicalNestedMapsSortKeys(t *testing.T) {
	a, err := Params{"settings": map[string]any{"tol": 0.3, "symmetrize": false}}.Canonical()
	if err != nil {
		t.Fatalf("Canonical() err=%v", err)
	}
	b, err := Params{"settings": Params{"symmetrize": false, "tol": 0.3}}.Canonical()
	if err != nil {
		t.Fatalf("Canonical() err=%v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("nested map encodings differ")
	}
}

func TestCanonicalRejectsNonValueTypes(t *testing.T) {
	bad := []Params{
		{"ptr": &struct{}{}},
		{"ch": make(chan int)},
		{"fn": func() {}},
		{"nil": nil},
	}
	for i, p := range bad {
		if _, err := p.Canonical(); !errors.Is(err, ErrInvalidParameter) {
			t.Fatalf("bad %d: err=%v, want ErrInvalidParameter", i, err)
		}
	}
}
