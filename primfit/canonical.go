package primfit

import (
	"math"

	"github.com/pkg/errors"
	"github.com/shapeforge/primgan/shapes"
	"github.com/unixpickle/model3d/model2d"
	"github.com/unixpickle/model3d/model3d"
)

// CanonicalMesh creates the reference primitive of a class centered near the
// origin, scaled by scale.
//
// The reference sizes are a unit cube, a unit sphere, a cylinder and a cone
// of radius 0.5 and height 1.5, a torus of radii 1 and 0.3, and a square
// pyramid with circumradius 0.8 and height 1.2.
func CanonicalMesh(class shapes.ShapeClass, scale float64) (*Mesh, error) {
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, errors.Errorf("canonical mesh: invalid scale %f", scale)
	}
	switch class {
	case shapes.Cube:
		return NewBoxMesh(model3d.Origin, scale), nil
	case shapes.Sphere:
		return NewUVSphereMesh(model3d.Origin, scale, DefaultSphereStacks), nil
	case shapes.Cylinder:
		return NewCylinderMesh(model3d.Origin, 0.5*scale, 1.5*scale, DefaultSegments), nil
	case shapes.Cone:
		height := 1.5 * scale
		return NewConeMesh(model3d.Z(-height/2), 0.5*scale, height, DefaultSegments), nil
	case shapes.Torus:
		return NewTorusMesh(model3d.Origin, scale, 0.3*scale, DefaultSegments,
			DefaultTorusMinorSegs), nil
	case shapes.Pyramid:
		half := 0.8 * scale / math.Sqrt2
		height := 1.2 * scale
		return NewPyramidMesh(
			model2d.Coord{X: -half, Y: -half},
			model2d.Coord{X: half, Y: half},
			-height/2,
			model3d.Z(height/2),
		), nil
	}
	return nil, errors.Wrapf(shapes.ErrInvalidClass, "canonical mesh for %s", class)
}
