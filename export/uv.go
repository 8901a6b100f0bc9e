package export

import (
	"math"

	"github.com/shapeforge/primgan/primfit"
	"github.com/shapeforge/primgan/shapes"
	"github.com/unixpickle/model3d/model2d"
	"github.com/unixpickle/model3d/model3d"
)

// FaceUVs computes texture coordinates for every corner of every face of a
// mesh, using a parametrization suited to its class. All coordinates are in
// [0, 1]. Seams are not handled.
func FaceUVs(m *primfit.Mesh) [][3]model2d.Coord {
	min, max := m.Bounds()
	size := max.Sub(min)
	var project func(face int, p model3d.Coord3D) model2d.Coord
	switch m.Class {
	case shapes.Cube:
		project = func(face int, p model3d.Coord3D) model2d.Coord {
			return boxUV(m.FaceNormal(face), normalizeIn(p, min, size))
		}
	case shapes.Sphere:
		center := m.Params.Center
		project = func(_ int, p model3d.Coord3D) model2d.Coord {
			d := p.Sub(center).Normalize()
			u := 0.5 + math.Atan2(d.Y, d.X)/(2*math.Pi)
			v := 0.5 + math.Asin(clamp(d.Z, -1, 1))/math.Pi
			return model2d.XY(u, v)
		}
	case shapes.Torus:
		center := m.Params.Center
		major := m.Params.MajorRadius
		project = func(_ int, p model3d.Coord3D) model2d.Coord {
			d := p.Sub(center)
			u := 0.5 + math.Atan2(d.Y, d.X)/(2*math.Pi)
			ring := math.Hypot(d.X, d.Y) - major
			v := 0.5 + math.Atan2(d.Z, ring)/(2*math.Pi)
			return model2d.XY(u, v)
		}
	case shapes.Pyramid:
		project = func(face int, p model3d.Coord3D) model2d.Coord {
			local := normalizeIn(p, min, size)
			if m.FaceNormal(face).Z < -0.99 {
				return model2d.XY(local.X, local.Y)
			}
			return cylindricalUV(p, m.Params.Center, local.Z)
		}
	default:
		// Cylinders and cones: cylindrical unwrap for the sides, planar
		// projection for the caps.
		project = func(face int, p model3d.Coord3D) model2d.Coord {
			local := normalizeIn(p, min, size)
			if math.Abs(m.FaceNormal(face).Z) > 0.99 {
				return model2d.XY(local.X, local.Y)
			}
			return cylindricalUV(p, m.Params.Center, local.Z)
		}
	}

	res := make([][3]model2d.Coord, len(m.Faces))
	for i, f := range m.Faces {
		for j, idx := range f {
			uv := project(i, m.Vertices[idx])
			res[i][j] = model2d.XY(clamp(uv.X, 0, 1), clamp(uv.Y, 0, 1))
		}
	}
	return res
}

// boxUV projects onto the plane perpendicular to the dominant axis of the
// face normal.
func boxUV(normal, local model3d.Coord3D) model2d.Coord {
	abs := normal.Abs()
	switch {
	case abs.Z >= abs.X && abs.Z >= abs.Y:
		return model2d.XY(local.X, local.Y)
	case abs.X >= abs.Y:
		return model2d.XY(local.Y, local.Z)
	default:
		return model2d.XY(local.X, local.Z)
	}
}

func cylindricalUV(p, center model3d.Coord3D, v float64) model2d.Coord {
	u := 0.5 + math.Atan2(p.Y-center.Y, p.X-center.X)/(2*math.Pi)
	return model2d.XY(u, v)
}

// normalizeIn maps p from the box [min, min+size] to the unit cube. Flat
// axes map to 0.5.
func normalizeIn(p, min, size model3d.Coord3D) model3d.Coord3D {
	rel := p.Sub(min).Array()
	sizes := size.Array()
	for i, s := range sizes {
		if s > 0 {
			rel[i] /= s
		} else {
			rel[i] = 0.5
		}
	}
	return model3d.NewCoord3DArray(rel)
}

func clamp(x, min, max float64) float64 {
	if math.IsNaN(x) {
		return min
	}
	return math.Max(min, math.Min(max, x))
}
