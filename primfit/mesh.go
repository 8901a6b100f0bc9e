// Package primfit fits closed triangle meshes of geometric primitives to
// point clouds.
package primfit

import (
	"math"

	"github.com/shapeforge/primgan/shapes"
	"github.com/unixpickle/model3d/model3d"
)

// Params are the fitted dimensions of a primitive. Only the fields relevant
// to the class are set.
type Params struct {
	Center model3d.Coord3D

	// Size is the edge length of a cube.
	Size float64

	Radius float64
	Height float64

	MajorRadius float64
	MinorRadius float64

	BaseZ float64
	Apex  model3d.Coord3D
}

// A Mesh is an indexed triangle mesh. Faces are wound counter-clockwise when
// viewed from outside.
type Mesh struct {
	Class    shapes.ShapeClass
	Params   Params
	Vertices []model3d.Coord3D
	Faces    [][3]int

	// Normals holds one unit normal per vertex.
	Normals []model3d.Coord3D
}

func newMesh(class shapes.ShapeClass, params Params, vertices []model3d.Coord3D,
	faces [][3]int) *Mesh {
	m := &Mesh{
		Class:    class,
		Params:   params,
		Vertices: vertices,
		Faces:    faces,
	}
	m.computeNormals()
	return m
}

// computeNormals sets every vertex normal to the normalized sum of the
// adjacent face normals weighted by face area.
func (m *Mesh) computeNormals() {
	sums := make([]model3d.Coord3D, len(m.Vertices))
	for _, f := range m.Faces {
		// Half the cross product is the area-weighted normal.
		n := m.faceCross(f)
		for _, idx := range f {
			sums[idx] = sums[idx].Add(n)
		}
	}
	m.Normals = make([]model3d.Coord3D, len(m.Vertices))
	for i, s := range sums {
		if norm := s.Norm(); norm > 0 {
			m.Normals[i] = s.Scale(1 / norm)
		} else {
			m.Normals[i] = model3d.Z(1)
		}
	}
}

func (m *Mesh) faceCross(f [3]int) model3d.Coord3D {
	a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
	return b.Sub(a).Cross(c.Sub(a))
}

// FaceNormal computes the unit normal of face i from its winding.
func (m *Mesh) FaceNormal(i int) model3d.Coord3D {
	return m.faceCross(m.Faces[i]).Normalize()
}

// FaceArea computes the area of face i.
func (m *Mesh) FaceArea(i int) float64 {
	return m.faceCross(m.Faces[i]).Norm() / 2
}

// Closed checks that every edge is shared by exactly two faces which use it
// in opposite directions.
func (m *Mesh) Closed() bool {
	type edge [2]int
	counts := map[edge]int{}
	for _, f := range m.Faces {
		for i := 0; i < 3; i++ {
			counts[edge{f[i], f[(i+1)%3]}]++
		}
	}
	for e, count := range counts {
		if count != 1 || counts[edge{e[1], e[0]}] != 1 {
			return false
		}
	}
	return len(m.Faces) > 0
}

// SignedVolume computes the enclosed volume, which is positive for closed
// meshes with outward winding.
func (m *Mesh) SignedVolume() float64 {
	var res float64
	for _, f := range m.Faces {
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		res += a.Dot(b.Cross(c)) / 6
	}
	return res
}

// Bounds computes the axis-aligned bounding box of the vertices.
func (m *Mesh) Bounds() (min, max model3d.Coord3D) {
	min = model3d.XYZ(math.Inf(1), math.Inf(1), math.Inf(1))
	max = min.Scale(-1)
	for _, v := range m.Vertices {
		min = min.Min(v)
		max = max.Max(v)
	}
	return
}

// Centroid computes the mean of the vertices.
func (m *Mesh) Centroid() model3d.Coord3D {
	var sum model3d.Coord3D
	for _, v := range m.Vertices {
		sum = sum.Add(v)
	}
	return sum.Scale(1 / float64(len(m.Vertices)))
}

// Triangles creates a triangle soup with the same geometry.
func (m *Mesh) Triangles() []*model3d.Triangle {
	res := make([]*model3d.Triangle, len(m.Faces))
	for i, f := range m.Faces {
		res[i] = &model3d.Triangle{m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]}
	}
	return res
}

// ToModel3D converts the mesh for rendering or STL export.
func (m *Mesh) ToModel3D() *model3d.Mesh {
	return model3d.NewMeshTriangles(m.Triangles())
}
