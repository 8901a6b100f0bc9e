package primfit

import (
	"math"

	"github.com/pkg/errors"
	"github.com/shapeforge/primgan/pointcloud"
	"github.com/shapeforge/primgan/shapes"
	"github.com/unixpickle/model3d/model2d"
	"github.com/unixpickle/model3d/model3d"
)

const (
	DefaultSphereStacks     = 16
	DefaultSegments         = 32
	DefaultTorusMinorSegs   = 16
	DefaultPyramidTolerance = 0.1

	// FallbackMajorRadius and FallbackMinorRadius are used when the
	// cloud does not describe a torus.
	FallbackMajorRadius = 0.8
	FallbackMinorRadius = 0.3

	minTorusMinorRadius = 0.01
	minFittedSize       = 1e-8
)

// ErrDegenerateInput is returned when a point cloud cannot support a fit.
var ErrDegenerateInput = errors.New("degenerate input for primitive fitting")

// A Fitter builds a closed mesh of one primitive class approximating a point
// cloud.
type Fitter interface {
	Fit(points pointcloud.PointCloud) (*Mesh, error)
}

// FitterFor returns the default fitter of a class.
func FitterFor(class shapes.ShapeClass) (Fitter, error) {
	switch class {
	case shapes.Cube:
		return &CubeFitter{}, nil
	case shapes.Sphere:
		return &SphereFitter{Stacks: DefaultSphereStacks}, nil
	case shapes.Cylinder:
		return &CylinderFitter{Segments: DefaultSegments}, nil
	case shapes.Cone:
		return &ConeFitter{Segments: DefaultSegments}, nil
	case shapes.Torus:
		return &TorusFitter{
			MajorSegments: DefaultSegments,
			MinorSegments: DefaultTorusMinorSegs,
		}, nil
	case shapes.Pyramid:
		return &PyramidFitter{BaseTolerance: DefaultPyramidTolerance}, nil
	}
	return nil, errors.Wrapf(shapes.ErrInvalidClass, "no fitter for class %d", int(class))
}

// Fit fits a mesh of the given class to the points.
func Fit(points pointcloud.PointCloud, class shapes.ShapeClass) (*Mesh, error) {
	fitter, err := FitterFor(class)
	if err != nil {
		return nil, err
	}
	return fitter.Fit(points)
}

// CubeFitter fits an axis-aligned cube whose edge is the mean of the
// per-axis extents.
type CubeFitter struct{}

func (c *CubeFitter) Fit(points pointcloud.PointCloud) (*Mesh, error) {
	if err := checkPoints(points); err != nil {
		return nil, err
	}
	min, max := bounds(points)
	extent := max.Sub(min)
	size := (extent.X + extent.Y + extent.Z) / 3
	if err := checkSize("cube size", size); err != nil {
		return nil, err
	}
	return NewBoxMesh(points.Centroid(), size), nil
}

// SphereFitter fits a sphere whose radius is the mean distance from the
// centroid.
type SphereFitter struct {
	Stacks int
}

func (s *SphereFitter) Fit(points pointcloud.PointCloud) (*Mesh, error) {
	if err := checkPoints(points); err != nil {
		return nil, err
	}
	center := points.Centroid()
	var radius float64
	for _, p := range points {
		radius += p.Dist(center)
	}
	radius /= float64(len(points))
	if err := checkSize("sphere radius", radius); err != nil {
		return nil, err
	}
	return NewUVSphereMesh(center, radius, s.Stacks), nil
}

// CylinderFitter fits a z-aligned cylinder spanning the z extent, with the
// mean distance from the central axis as its radius.
type CylinderFitter struct {
	Segments int
}

func (c *CylinderFitter) Fit(points pointcloud.PointCloud) (*Mesh, error) {
	if err := checkPoints(points); err != nil {
		return nil, err
	}
	center := points.Centroid()
	var radius float64
	for _, p := range points {
		radius += planarDist(p, center)
	}
	radius /= float64(len(points))
	height := points.ZExtent()
	if err := checkSize("cylinder radius", radius); err != nil {
		return nil, err
	}
	if err := checkSize("cylinder height", height); err != nil {
		return nil, err
	}
	return NewCylinderMesh(center, radius, height, c.Segments), nil
}

// ConeFitter fits a z-aligned cone with its base at the lowest point and its
// apex above the centroid at the highest point. The radius is the largest
// distance from the central axis.
type ConeFitter struct {
	Segments int
}

func (c *ConeFitter) Fit(points pointcloud.PointCloud) (*Mesh, error) {
	if err := checkPoints(points); err != nil {
		return nil, err
	}
	center := points.Centroid()
	var radius float64
	for _, p := range points {
		radius = math.Max(radius, planarDist(p, center))
	}
	min, max := bounds(points)
	height := max.Z - min.Z
	if err := checkSize("cone radius", radius); err != nil {
		return nil, err
	}
	if err := checkSize("cone height", height); err != nil {
		return nil, err
	}
	return NewConeMesh(model3d.XYZ(center.X, center.Y, min.Z), radius, height, c.Segments), nil
}

// TorusFitter fits a torus around the vertical axis through the centroid.
//
// The major radius is the mean distance from that axis, and the minor radius
// is the standard deviation of the distance from the centroid. If the minor
// radius is below 0.01 or not smaller than the major radius, fixed fallback
// radii are used.
type TorusFitter struct {
	MajorSegments int
	MinorSegments int
}

func (t *TorusFitter) Fit(points pointcloud.PointCloud) (*Mesh, error) {
	if err := checkPoints(points); err != nil {
		return nil, err
	}
	center := points.Centroid()
	var major, meanDist float64
	dists := make([]float64, len(points))
	for i, p := range points {
		major += planarDist(p, center)
		dists[i] = p.Dist(center)
		meanDist += dists[i]
	}
	n := float64(len(points))
	major /= n
	meanDist /= n
	var variance float64
	for _, d := range dists {
		variance += (d - meanDist) * (d - meanDist)
	}
	minor := math.Sqrt(variance / n)
	if minor < minTorusMinorRadius || major <= minor {
		major, minor = FallbackMajorRadius, FallbackMinorRadius
	}
	return NewTorusMesh(center, major, minor, t.MajorSegments, t.MinorSegments), nil
}

// PyramidFitter fits a square pyramid. The base is made of the points within
// BaseTolerance of the lowest point: it is centered on their mean x and y,
// and its edge is the mean of their x and y extents. The apex is the highest
// point.
type PyramidFitter struct {
	BaseTolerance float64
}

func (p *PyramidFitter) Fit(points pointcloud.PointCloud) (*Mesh, error) {
	if err := checkPoints(points); err != nil {
		return nil, err
	}
	min, max := bounds(points)
	apex := points[0]
	for _, c := range points[1:] {
		if c.Z > apex.Z {
			apex = c
		}
	}
	baseMin := model2d.XY(math.Inf(1), math.Inf(1))
	baseMax := baseMin.Scale(-1)
	var baseCenter model2d.Coord
	var numBase int
	for _, c := range points {
		if c.Z <= min.Z+p.BaseTolerance {
			baseMin = baseMin.Min(c.XY())
			baseMax = baseMax.Max(c.XY())
			baseCenter = baseCenter.Add(c.XY())
			numBase++
		}
	}
	baseCenter = baseCenter.Scale(1 / float64(numBase))
	if err := checkSize("pyramid height", max.Z-min.Z); err != nil {
		return nil, err
	}
	baseSize := baseMax.Sub(baseMin)
	size := (baseSize.X + baseSize.Y) / 2
	if err := checkSize("pyramid base", size); err != nil {
		return nil, err
	}
	half := model2d.XY(size/2, size/2)
	return NewPyramidMesh(baseCenter.Sub(half), baseCenter.Add(half), min.Z, apex), nil
}

func checkPoints(points pointcloud.PointCloud) error {
	if err := points.Validate(); err != nil {
		return errors.Wrap(ErrDegenerateInput, err.Error())
	}
	min, max := bounds(points)
	if max.Sub(min).Norm() < minFittedSize {
		return errors.Wrap(ErrDegenerateInput, "all points coincide")
	}
	return nil
}

func checkSize(name string, size float64) error {
	if !(size > minFittedSize) || math.IsInf(size, 0) {
		return errors.Wrapf(ErrDegenerateInput, "%s collapsed to %f", name, size)
	}
	return nil
}

func bounds(points pointcloud.PointCloud) (min, max model3d.Coord3D) {
	min, max = points[0], points[0]
	for _, p := range points[1:] {
		min = min.Min(p)
		max = max.Max(p)
	}
	return
}

func planarDist(p, center model3d.Coord3D) float64 {
	return p.XY().Dist(center.XY())
}
