package shapes

import (
	"github.com/pkg/errors"
)

// A Taxonomy maps shape names to contiguous integer labels used to condition
// the networks. The order is significant and must be stored alongside any
// trained model.
type Taxonomy struct {
	classes []ShapeClass
	labels  map[ShapeClass]int
}

// DefaultTaxonomy uses every shape class in canonical order.
func DefaultTaxonomy() *Taxonomy {
	t, err := NewTaxonomy(DefaultNames())
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultNames lists the names of every shape class in canonical order.
func DefaultNames() []string {
	var names []string
	for _, c := range AllShapeClasses() {
		names = append(names, c.String())
	}
	return names
}

// NewTaxonomy creates a taxonomy whose labels follow the order of names.
func NewTaxonomy(names []string) (*Taxonomy, error) {
	if len(names) == 0 {
		return nil, errors.New("create taxonomy: no shape names")
	}
	res := &Taxonomy{labels: map[ShapeClass]int{}}
	for _, name := range names {
		class, err := ParseShapeClass(name)
		if err != nil {
			return nil, errors.Wrap(err, "create taxonomy")
		}
		if _, ok := res.labels[class]; ok {
			return nil, errors.Errorf("create taxonomy: duplicate shape %q", name)
		}
		res.labels[class] = len(res.classes)
		res.classes = append(res.classes, class)
	}
	return res, nil
}

// Len returns the number of labels.
func (t *Taxonomy) Len() int {
	return len(t.classes)
}

// Names returns the shape names ordered by label.
func (t *Taxonomy) Names() []string {
	res := make([]string, len(t.classes))
	for i, c := range t.classes {
		res[i] = c.String()
	}
	return res
}

// Label converts a shape name into its label.
func (t *Taxonomy) Label(name string) (int, error) {
	class, err := ParseShapeClass(name)
	if err != nil {
		return 0, err
	}
	return t.ClassLabel(class)
}

// ClassLabel converts a shape class into its label.
func (t *Taxonomy) ClassLabel(class ShapeClass) (int, error) {
	label, ok := t.labels[class]
	if !ok {
		return 0, errors.Wrapf(ErrInvalidClass, "shape %s not in taxonomy", class)
	}
	return label, nil
}

// Class converts a label back into its shape class.
func (t *Taxonomy) Class(label int) (ShapeClass, error) {
	if err := t.CheckLabel(label); err != nil {
		return 0, err
	}
	return t.classes[label], nil
}

// Name converts a label back into its shape name.
func (t *Taxonomy) Name(label int) (string, error) {
	class, err := t.Class(label)
	if err != nil {
		return "", err
	}
	return class.String(), nil
}

// CheckLabel returns ErrInvalidClass if label is out of range.
func (t *Taxonomy) CheckLabel(label int) error {
	if label < 0 || label >= len(t.classes) {
		return errors.Wrapf(ErrInvalidClass, "label %d out of range [0, %d)", label, len(t.classes))
	}
	return nil
}
