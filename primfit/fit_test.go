package primfit

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/shapeforge/primgan/pointcloud"
	"github.com/shapeforge/primgan/shapes"
	"github.com/unixpickle/model3d/model3d"
)

func fibonacciSphere(n int, radius float64) pointcloud.PointCloud {
	res := make(pointcloud.PointCloud, n)
	golden := math.Pi * (3 - math.Sqrt(5))
	for i := range res {
		z := 1 - 2*(float64(i)+0.5)/float64(n)
		r := math.Sqrt(1 - z*z)
		theta := golden * float64(i)
		res[i] = model3d.XYZ(r*math.Cos(theta), r*math.Sin(theta), z).Scale(radius)
	}
	return res
}

func TestFitSphere(t *testing.T) {
	mesh, err := Fit(fibonacciSphere(2048, 1), shapes.Sphere)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(mesh.Params.Radius-1) > 1e-2 {
		t.Errorf("unexpected radius %f", mesh.Params.Radius)
	}
	if mesh.Params.Center.Norm() > 1e-2 {
		t.Errorf("unexpected center %v", mesh.Params.Center)
	}
	for _, v := range mesh.Vertices {
		if math.Abs(v.Norm()-mesh.Params.Radius) > 1e-2 {
			t.Fatalf("vertex %v is not on the sphere", v)
		}
	}
}

func TestFitCube(t *testing.T) {
	center := model3d.XYZ(0.2, -0.1, 0.3)
	box := NewBoxMesh(center, 1.5)
	points, err := pointcloud.SampleSurface(rand.New(rand.NewSource(0)), box.Triangles(), 4096)
	if err != nil {
		t.Fatal(err)
	}
	mesh, err := Fit(points, shapes.Cube)
	if err != nil {
		t.Fatal(err)
	}
	if len(mesh.Vertices) != 8 || len(mesh.Faces) < 12 {
		t.Errorf("unexpected mesh size: %d vertices, %d faces", len(mesh.Vertices),
			len(mesh.Faces))
	}
	if math.Abs(mesh.Params.Size-1.5) > 0.02 {
		t.Errorf("unexpected size %f", mesh.Params.Size)
	}
	expectedMin, expectedMax := box.Bounds()
	min, max := mesh.Bounds()
	if min.Dist(expectedMin) > 0.06 || max.Dist(expectedMax) > 0.06 {
		t.Errorf("expected bounds %v %v but got %v %v", expectedMin, expectedMax, min, max)
	}
	if !mesh.Closed() {
		t.Error("cube is not closed")
	}
}

func TestFitTorusFallback(t *testing.T) {
	// Points on a thin ring have a tiny spread of distances from the center.
	var points pointcloud.PointCloud
	for i := 0; i < 256; i++ {
		theta := 2 * math.Pi * float64(i) / 256
		points = append(points, model3d.XYZ(math.Cos(theta), math.Sin(theta), 0))
	}
	mesh, err := Fit(points, shapes.Torus)
	if err != nil {
		t.Fatal(err)
	}
	if mesh.Params.MajorRadius != FallbackMajorRadius ||
		mesh.Params.MinorRadius != FallbackMinorRadius {
		t.Errorf("expected fallback radii but got %f %f", mesh.Params.MajorRadius,
			mesh.Params.MinorRadius)
	}
}

func TestFitTorus(t *testing.T) {
	r := rand.New(rand.NewSource(0))
	var points pointcloud.PointCloud
	for i := 0; i < 4096; i++ {
		u := r.Float64() * 2 * math.Pi
		v := r.Float64() * 2 * math.Pi
		ring := 1 + 0.3*math.Cos(v)
		points = append(points, model3d.XYZ(ring*math.Cos(u), ring*math.Sin(u), 0.3*math.Sin(v)))
	}
	mesh, err := Fit(points, shapes.Torus)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(mesh.Params.MajorRadius-1) > 0.05 {
		t.Errorf("unexpected major radius %f", mesh.Params.MajorRadius)
	}
	if mesh.Params.MinorRadius >= mesh.Params.MajorRadius ||
		mesh.Params.MinorRadius < minTorusMinorRadius {
		t.Errorf("unexpected minor radius %f", mesh.Params.MinorRadius)
	}
}

func TestFitPyramid(t *testing.T) {
	t.Run("Square", func(t *testing.T) {
		points := pointcloud.PointCloud{
			model3d.XYZ(-1, -1, 0),
			model3d.XYZ(1, -1, 0.05),
			model3d.XYZ(1, 1, 0),
			model3d.XYZ(-1, 1, 0),
			model3d.XYZ(0.5, 0.5, 0.5),
			model3d.XYZ(0, 0, 2),
		}
		mesh, err := Fit(points, shapes.Pyramid)
		if err != nil {
			t.Fatal(err)
		}
		if len(mesh.Vertices) != 5 || len(mesh.Faces) != 6 {
			t.Fatalf("unexpected mesh size: %d vertices, %d faces", len(mesh.Vertices),
				len(mesh.Faces))
		}
		if mesh.Params.Apex != model3d.XYZ(0, 0, 2) {
			t.Errorf("unexpected apex %v", mesh.Params.Apex)
		}
		if mesh.Params.BaseZ != 0 {
			t.Errorf("unexpected base %f", mesh.Params.BaseZ)
		}
		checkPyramidBase(t, mesh, 0, 0, 2)
	})
	t.Run("Rectangle", func(t *testing.T) {
		// The base is squared off to the mean extent around the mean of
		// the base points.
		points := pointcloud.PointCloud{
			model3d.XYZ(0, 0, 0),
			model3d.XYZ(4, 0, 0),
			model3d.XYZ(4, 2, 0),
			model3d.XYZ(0, 2, 0),
			model3d.XYZ(2, 1, 3),
		}
		mesh, err := Fit(points, shapes.Pyramid)
		if err != nil {
			t.Fatal(err)
		}
		checkPyramidBase(t, mesh, 2, 1, 3)
	})
	t.Run("ColinearBase", func(t *testing.T) {
		points := pointcloud.PointCloud{
			model3d.XYZ(-1, 0, 0),
			model3d.XYZ(0, 0, 0),
			model3d.XYZ(1, 0, 0),
			model3d.XYZ(0, 0, 1),
		}
		mesh, err := Fit(points, shapes.Pyramid)
		if err != nil {
			t.Fatal(err)
		}
		checkPyramidBase(t, mesh, 0, 0, 1)
		if !mesh.Closed() {
			t.Error("pyramid is not closed")
		}
	})
}

func checkPyramidBase(t *testing.T, mesh *Mesh, x, y, size float64) {
	if math.Abs(mesh.Params.Size-size) > 1e-8 {
		t.Errorf("expected base size %f but got %f", size, mesh.Params.Size)
	}
	var count int
	for _, v := range mesh.Vertices {
		if v.Z != mesh.Params.BaseZ {
			continue
		}
		count++
		if math.Abs(math.Abs(v.X-x)-size/2) > 1e-8 || math.Abs(math.Abs(v.Y-y)-size/2) > 1e-8 {
			t.Errorf("base corner %v is not on a square of size %f around (%f, %f)", v, size,
				x, y)
		}
	}
	if count != 4 {
		t.Errorf("expected 4 base corners but got %d", count)
	}
}

func TestFitDegenerate(t *testing.T) {
	nan := pointcloud.PointCloud{model3d.XYZ(math.NaN(), 0, 0), model3d.XYZ(1, 1, 1)}
	same := pointcloud.PointCloud{model3d.XYZ(1, 2, 3), model3d.XYZ(1, 2, 3)}
	flat := pointcloud.PointCloud{model3d.XYZ(0, 0, 0), model3d.XYZ(1, 0, 0), model3d.XYZ(0, 1, 0)}
	for _, class := range shapes.AllShapeClasses() {
		for _, points := range []pointcloud.PointCloud{nil, nan, same} {
			if _, err := Fit(points, class); !errors.Is(err, ErrDegenerateInput) {
				t.Errorf("%s: expected ErrDegenerateInput but got %v", class, err)
			}
		}
	}
	for _, class := range []shapes.ShapeClass{shapes.Cylinder, shapes.Cone, shapes.Pyramid} {
		if _, err := Fit(flat, class); !errors.Is(err, ErrDegenerateInput) {
			t.Errorf("%s: expected ErrDegenerateInput for flat input but got %v", class, err)
		}
	}
	if _, err := Fit(flat, shapes.ShapeClass(42)); !errors.Is(err, shapes.ErrInvalidClass) {
		t.Errorf("expected ErrInvalidClass but got %v", err)
	}
}

func TestFittersClosedOutward(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	points := pointcloud.SampleUnitSphere(r, 1024)
	for i, p := range points {
		points[i] = p.Mul(model3d.XYZ(1, 1, 1.5))
	}
	for _, class := range shapes.AllShapeClasses() {
		mesh, err := Fit(points, class)
		if err != nil {
			t.Errorf("%s: %v", class, err)
			continue
		}
		if mesh.Class != class {
			t.Errorf("%s: mesh has class %s", class, mesh.Class)
		}
		if !mesh.Closed() {
			t.Errorf("%s: mesh is not closed", class)
		}
		if mesh.SignedVolume() <= 0 {
			t.Errorf("%s: mesh is not wound outward", class)
		}
		checkNormals(t, mesh)
	}
}

func checkNormals(t *testing.T, m *Mesh) {
	if len(m.Normals) != len(m.Vertices) {
		t.Fatalf("%s: %d normals for %d vertices", m.Class, len(m.Normals), len(m.Vertices))
	}
	center := m.Centroid()
	var outward int
	for i, n := range m.Normals {
		if math.Abs(n.Norm()-1) > 1e-6 {
			t.Fatalf("%s: normal %d is not unit length", m.Class, i)
		}
		if n.Dot(m.Vertices[i].Sub(center)) > 0 {
			outward++
		}
	}
	// Torus vertices on the inner ring face the center, so only require most
	// normals to point away from it.
	if outward*2 < len(m.Normals) {
		t.Errorf("%s: only %d of %d normals point outward", m.Class, outward, len(m.Normals))
	}
}

func TestToModel3D(t *testing.T) {
	mesh := NewCylinderMesh(model3d.Origin, 1, 2, 16)
	m := mesh.ToModel3D()
	if len(m.TriangleSlice()) != len(mesh.Faces) {
		t.Errorf("expected %d triangles", len(mesh.Faces))
	}
	if m.NeedsRepair() {
		t.Error("mesh needs repair")
	}
}

func TestCanonicalMeshRefit(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for _, class := range shapes.AllShapeClasses() {
		mesh, err := CanonicalMesh(class, 1)
		if err != nil {
			t.Fatal(err)
		}
		if !mesh.Closed() || mesh.SignedVolume() <= 0 {
			t.Errorf("%s: canonical mesh is not closed and outward", class)
		}
		points, err := pointcloud.SampleSurface(r, mesh.Triangles(), 2048)
		if err != nil {
			t.Fatal(err)
		}
		refit, err := Fit(points, class)
		if err != nil {
			t.Errorf("%s: %v", class, err)
			continue
		}
		ratio := refit.SignedVolume() / mesh.SignedVolume()
		if ratio < 0.25 || ratio > 4 {
			t.Errorf("%s: refit volume ratio %f", class, ratio)
		}
	}
	if _, err := CanonicalMesh(shapes.Cube, 0); err == nil {
		t.Error("expected error for zero scale")
	}
}
