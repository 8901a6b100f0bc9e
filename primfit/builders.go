package primfit

import (
	"math"

	"github.com/shapeforge/primgan/shapes"
	"github.com/unixpickle/model3d/model2d"
	"github.com/unixpickle/model3d/model3d"
)

// NewBoxMesh creates an axis-aligned cube with 8 vertices and 12 faces.
func NewBoxMesh(center model3d.Coord3D, size float64) *Mesh {
	h := size / 2
	var vertices []model3d.Coord3D
	for _, c := range [][3]float64{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	} {
		vertices = append(vertices, center.Add(model3d.NewCoord3DArray(c).Scale(h)))
	}
	faces := [][3]int{
		{0, 2, 1}, {0, 3, 2}, // bottom
		{4, 5, 6}, {4, 6, 7}, // top
		{0, 1, 5}, {0, 5, 4}, // front
		{3, 7, 6}, {3, 6, 2}, // back
		{0, 4, 7}, {0, 7, 3}, // left
		{1, 2, 6}, {1, 6, 5}, // right
	}
	return newMesh(shapes.Cube, Params{Center: center, Size: size}, vertices, faces)
}

// NewUVSphereMesh creates a sphere from stacks rings of latitude and
// 2*stacks segments of longitude, with a single vertex at each pole.
func NewUVSphereMesh(center model3d.Coord3D, radius float64, stacks int) *Mesh {
	if stacks < 2 {
		stacks = 2
	}
	slices := 2 * stacks
	point := func(theta, phi float64) model3d.Coord3D {
		return center.Add(model3d.XYZ(
			math.Sin(theta)*math.Cos(phi),
			math.Sin(theta)*math.Sin(phi),
			math.Cos(theta),
		).Scale(radius))
	}
	vertices := []model3d.Coord3D{center.Add(model3d.Z(radius))}
	for i := 1; i < stacks; i++ {
		theta := math.Pi * float64(i) / float64(stacks)
		for j := 0; j < slices; j++ {
			vertices = append(vertices, point(theta, 2*math.Pi*float64(j)/float64(slices)))
		}
	}
	south := len(vertices)
	vertices = append(vertices, center.Sub(model3d.Z(radius)))

	ring := func(i, j int) int {
		return 1 + (i-1)*slices + j%slices
	}
	var faces [][3]int
	for j := 0; j < slices; j++ {
		faces = append(faces, [3]int{0, ring(1, j), ring(1, j+1)})
	}
	for i := 1; i < stacks-1; i++ {
		for j := 0; j < slices; j++ {
			a, b := ring(i, j), ring(i, j+1)
			c, d := ring(i+1, j), ring(i+1, j+1)
			faces = append(faces, [3]int{a, c, d}, [3]int{a, d, b})
		}
	}
	for j := 0; j < slices; j++ {
		faces = append(faces, [3]int{ring(stacks-1, j), south, ring(stacks-1, j+1)})
	}
	return newMesh(shapes.Sphere, Params{Center: center, Radius: radius}, vertices, faces)
}

// NewCylinderMesh creates a z-aligned capped cylinder centered at center.
func NewCylinderMesh(center model3d.Coord3D, radius, height float64, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	var vertices []model3d.Coord3D
	for _, z := range []float64{-height / 2, height / 2} {
		for j := 0; j < segments; j++ {
			theta := 2 * math.Pi * float64(j) / float64(segments)
			vertices = append(vertices, center.Add(model3d.XYZ(
				radius*math.Cos(theta),
				radius*math.Sin(theta),
				z,
			)))
		}
	}
	bottomCenter := len(vertices)
	topCenter := bottomCenter + 1
	vertices = append(vertices, center.Sub(model3d.Z(height/2)), center.Add(model3d.Z(height/2)))

	bottom := func(j int) int { return j % segments }
	top := func(j int) int { return segments + j%segments }
	var faces [][3]int
	for j := 0; j < segments; j++ {
		faces = append(faces,
			[3]int{top(j), bottom(j), bottom(j + 1)},
			[3]int{top(j), bottom(j + 1), top(j + 1)},
			[3]int{topCenter, top(j), top(j + 1)},
			[3]int{bottomCenter, bottom(j + 1), bottom(j)},
		)
	}
	params := Params{Center: center, Radius: radius, Height: height}
	return newMesh(shapes.Cylinder, params, vertices, faces)
}

// NewConeMesh creates a z-aligned cone whose base is centered at baseCenter
// and whose apex is height units above it.
func NewConeMesh(baseCenter model3d.Coord3D, radius, height float64, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	var vertices []model3d.Coord3D
	for j := 0; j < segments; j++ {
		theta := 2 * math.Pi * float64(j) / float64(segments)
		vertices = append(vertices, baseCenter.Add(model3d.XY(
			radius*math.Cos(theta),
			radius*math.Sin(theta),
		)))
	}
	apex := len(vertices)
	base := apex + 1
	apexPoint := baseCenter.Add(model3d.Z(height))
	vertices = append(vertices, apexPoint, baseCenter)

	var faces [][3]int
	for j := 0; j < segments; j++ {
		next := (j + 1) % segments
		faces = append(faces, [3]int{apex, j, next}, [3]int{base, next, j})
	}
	params := Params{
		Center: baseCenter.Add(model3d.Z(height / 2)),
		Radius: radius,
		Height: height,
		BaseZ:  baseCenter.Z,
		Apex:   apexPoint,
	}
	return newMesh(shapes.Cone, params, vertices, faces)
}

// NewTorusMesh creates a torus around the z axis through center with a
// grid of majorSegments by minorSegments vertices.
func NewTorusMesh(center model3d.Coord3D, majorRadius, minorRadius float64, majorSegments,
	minorSegments int) *Mesh {
	if majorSegments < 3 {
		majorSegments = 3
	}
	if minorSegments < 3 {
		minorSegments = 3
	}
	var vertices []model3d.Coord3D
	for i := 0; i < majorSegments; i++ {
		u := 2 * math.Pi * float64(i) / float64(majorSegments)
		for j := 0; j < minorSegments; j++ {
			v := 2 * math.Pi * float64(j) / float64(minorSegments)
			ringRadius := majorRadius + minorRadius*math.Cos(v)
			vertices = append(vertices, center.Add(model3d.XYZ(
				ringRadius*math.Cos(u),
				ringRadius*math.Sin(u),
				minorRadius*math.Sin(v),
			)))
		}
	}
	index := func(i, j int) int {
		return (i%majorSegments)*minorSegments + j%minorSegments
	}
	var faces [][3]int
	for i := 0; i < majorSegments; i++ {
		for j := 0; j < minorSegments; j++ {
			a, b := index(i, j), index(i+1, j)
			c, d := index(i+1, j+1), index(i, j+1)
			faces = append(faces, [3]int{a, b, c}, [3]int{a, c, d})
		}
	}
	params := Params{Center: center, MajorRadius: majorRadius, MinorRadius: minorRadius}
	return newMesh(shapes.Torus, params, vertices, faces)
}

// NewPyramidMesh creates a pyramid with an axis-aligned rectangular base
// spanning baseMin to baseMax at height baseZ, and the given apex.
func NewPyramidMesh(baseMin, baseMax model2d.Coord, baseZ float64,
	apex model3d.Coord3D) *Mesh {
	vertices := []model3d.Coord3D{
		model3d.XYZ(baseMin.X, baseMin.Y, baseZ),
		model3d.XYZ(baseMax.X, baseMin.Y, baseZ),
		model3d.XYZ(baseMax.X, baseMax.Y, baseZ),
		model3d.XYZ(baseMin.X, baseMax.Y, baseZ),
		apex,
	}
	faces := [][3]int{
		{0, 2, 1}, {0, 3, 2},
		{0, 1, 4}, {1, 2, 4}, {2, 3, 4}, {3, 0, 4},
	}
	baseCenter := baseMin.Add(baseMax).Scale(0.5)
	params := Params{
		Center: model3d.XYZ(baseCenter.X, baseCenter.Y, (baseZ+apex.Z)/2),
		Size:   math.Max(baseMax.X-baseMin.X, baseMax.Y-baseMin.Y),
		Height: apex.Z - baseZ,
		BaseZ:  baseZ,
		Apex:   apex,
	}
	return newMesh(shapes.Pyramid, params, vertices, faces)
}
