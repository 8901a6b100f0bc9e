package shapes

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidClass is returned when a shape name or label is not part of the
// known taxonomy.
var ErrInvalidClass = errors.New("invalid shape class")

// A ShapeClass is one of the fixed primitive kinds that can be generated and
// fitted.
type ShapeClass int

const (
	Cube ShapeClass = iota
	Sphere
	Cylinder
	Cone
	Torus
	Pyramid

	numShapeClasses
)

var shapeClassNames = [numShapeClasses]string{
	Cube:     "cube",
	Sphere:   "sphere",
	Cylinder: "cylinder",
	Cone:     "cone",
	Torus:    "torus",
	Pyramid:  "pyramid",
}

// AllShapeClasses returns every shape class in canonical order.
func AllShapeClasses() []ShapeClass {
	res := make([]ShapeClass, numShapeClasses)
	for i := range res {
		res[i] = ShapeClass(i)
	}
	return res
}

// ParseShapeClass looks up a class by name, ignoring case and surrounding
// whitespace.
func ParseShapeClass(name string) (ShapeClass, error) {
	clean := strings.ToLower(strings.TrimSpace(name))
	for i, n := range shapeClassNames {
		if n == clean {
			return ShapeClass(i), nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidClass, "parse shape %q", name)
}

func (s ShapeClass) Valid() bool {
	return s >= 0 && s < numShapeClasses
}

func (s ShapeClass) String() string {
	if !s.Valid() {
		return fmt.Sprintf("ShapeClass(%d)", int(s))
	}
	return shapeClassNames[s]
}
