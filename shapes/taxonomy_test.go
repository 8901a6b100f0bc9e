package shapes

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func TestParseShapeClass(t *testing.T) {
	for _, c := range AllShapeClasses() {
		parsed, err := ParseShapeClass(" " + c.String() + " ")
		if err != nil {
			t.Fatal(err)
		}
		if parsed != c {
			t.Errorf("expected %s but got %s", c, parsed)
		}
	}
	if c, err := ParseShapeClass("SPHERE"); err != nil || c != Sphere {
		t.Errorf("unexpected result %v, %v", c, err)
	}
	if _, err := ParseShapeClass("dodecahedron"); !errors.Is(err, ErrInvalidClass) {
		t.Errorf("expected ErrInvalidClass but got %v", err)
	}
}

func TestTaxonomyLabels(t *testing.T) {
	tax := DefaultTaxonomy()
	if tax.Len() != 6 {
		t.Fatalf("unexpected length %d", tax.Len())
	}
	expected := []string{"cube", "sphere", "cylinder", "cone", "torus", "pyramid"}
	if !reflect.DeepEqual(tax.Names(), expected) {
		t.Fatalf("unexpected names %v", tax.Names())
	}
	for i, name := range expected {
		label, err := tax.Label(name)
		if err != nil {
			t.Fatal(err)
		}
		if label != i {
			t.Errorf("shape %s: expected label %d but got %d", name, i, label)
		}
		back, err := tax.Name(label)
		if err != nil {
			t.Fatal(err)
		}
		if back != name {
			t.Errorf("label %d: expected %s but got %s", label, name, back)
		}
	}
	if _, err := tax.Class(6); !errors.Is(err, ErrInvalidClass) {
		t.Errorf("expected ErrInvalidClass but got %v", err)
	}
	if _, err := tax.Class(-1); !errors.Is(err, ErrInvalidClass) {
		t.Errorf("expected ErrInvalidClass but got %v", err)
	}
}

func TestTaxonomyCustomOrder(t *testing.T) {
	tax, err := NewTaxonomy([]string{"torus", "cube"})
	if err != nil {
		t.Fatal(err)
	}
	if label, _ := tax.Label("cube"); label != 1 {
		t.Errorf("expected cube label 1 but got %d", label)
	}
	if _, err := tax.Label("sphere"); !errors.Is(err, ErrInvalidClass) {
		t.Errorf("expected ErrInvalidClass but got %v", err)
	}
	if _, err := NewTaxonomy([]string{"cube", "Cube"}); err == nil {
		t.Error("expected duplicate error")
	}
	if _, err := NewTaxonomy(nil); err == nil {
		t.Error("expected error for empty taxonomy")
	}
}
