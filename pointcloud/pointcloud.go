// Package pointcloud defines fixed-size 3D point clouds, the corpus of
// labeled clouds used for training, and simple file formats for them.
package pointcloud

import (
	"math"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

// DefaultNumPoints is the number of points in every cloud unless configured
// otherwise.
const DefaultNumPoints = 2048

// A PointCloud is an ordered list of points. The order carries no geometric
// meaning.
type PointCloud []model3d.Coord3D

// Validate returns an error if the cloud is empty or contains non-finite
// coordinates.
func (p PointCloud) Validate() error {
	if len(p) == 0 {
		return errors.New("empty point cloud")
	}
	for i, c := range p {
		for _, x := range c.Array() {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return errors.Errorf("non-finite coordinate in point %d: %v", i, c)
			}
		}
	}
	return nil
}

func (p PointCloud) Clone() PointCloud {
	return append(PointCloud{}, p...)
}

// Centroid computes the mean of the points.
func (p PointCloud) Centroid() model3d.Coord3D {
	var sum model3d.Coord3D
	for _, c := range p {
		sum = sum.Add(c)
	}
	return sum.Scale(1 / float64(len(p)))
}

// MeanNorm computes the mean distance of the points from the origin.
func (p PointCloud) MeanNorm() float64 {
	var sum float64
	for _, c := range p {
		sum += c.Norm()
	}
	return sum / float64(len(p))
}

// MaxNorm computes the largest distance of a point from the origin.
func (p PointCloud) MaxNorm() float64 {
	var res float64
	for _, c := range p {
		res = math.Max(res, c.Norm())
	}
	return res
}

// ZExtent computes max z minus min z.
func (p PointCloud) ZExtent() float64 {
	if len(p) == 0 {
		return 0
	}
	min, max := p[0].Z, p[0].Z
	for _, c := range p[1:] {
		min = math.Min(min, c.Z)
		max = math.Max(max, c.Z)
	}
	return max - min
}

// Normalize returns a copy of the cloud translated to have a zero centroid
// and scaled so that the furthest point has norm 1.
//
// A cloud with all points at the centroid is only translated.
func (p PointCloud) Normalize() PointCloud {
	res := make(PointCloud, len(p))
	center := p.Centroid()
	for i, c := range p {
		res[i] = c.Sub(center)
	}
	if norm := res.MaxNorm(); norm > 0 {
		for i, c := range res {
			res[i] = c.Scale(1 / norm)
		}
	}
	return res
}
