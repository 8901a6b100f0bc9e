package pointcloud

import (
	"math"
	"math/rand"
	"sort"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

// SampleSurface draws n points uniformly from the surface of a triangle
// soup, weighting each triangle by its area.
func SampleSurface(r *rand.Rand, tris []*model3d.Triangle, n int) (PointCloud, error) {
	cumulative := make([]float64, len(tris))
	var total float64
	for i, t := range tris {
		total += t.Area()
		cumulative[i] = total
	}
	if total == 0 || math.IsNaN(total) {
		return nil, errors.New("sample surface: mesh has no area")
	}

	res := make(PointCloud, n)
	for i := range res {
		target := r.Float64() * total
		idx := sort.SearchFloat64s(cumulative, target)
		if idx >= len(tris) {
			idx = len(tris) - 1
		}
		res[i] = sampleTriangle(r, tris[idx])
	}
	return res, nil
}

func sampleTriangle(r *rand.Rand, t *model3d.Triangle) model3d.Coord3D {
	u, v := r.Float64(), r.Float64()
	if u+v > 1 {
		u, v = 1-u, 1-v
	}
	e1 := t[1].Sub(t[0])
	e2 := t[2].Sub(t[0])
	return t[0].Add(e1.Scale(u)).Add(e2.Scale(v))
}

// SampleUnitSphere draws n points uniformly from the surface of the unit
// sphere.
func SampleUnitSphere(r *rand.Rand, n int) PointCloud {
	res := make(PointCloud, n)
	for i := range res {
		res[i] = randomDirection(r)
	}
	return res
}

func randomDirection(r *rand.Rand) model3d.Coord3D {
	for {
		c := model3d.XYZ(r.NormFloat64(), r.NormFloat64(), r.NormFloat64())
		n := c.Norm()
		if n > 1e-5 {
			return c.Scale(1 / n)
		}
	}
}
