package pcgan

import (
	"math"
	"math/rand"

	"github.com/shapeforge/primgan/autodiff"
	"github.com/unixpickle/essentials"
)

// GradientPenalty computes mean((||grad_x D(x)|| - 1)^2) over random
// per-sample interpolations x between real and fake batches.
//
// The result stays attached to the critic parameters, so it can be
// differentiated again.
func GradientPenalty(r *rand.Rand, critic *Critic, real, fake *autodiff.Tensor,
	labels []int) *autodiff.Var {
	batch := len(labels)
	numPoints := real.Rows / batch
	interp := autodiff.NewTensor(real.Rows, real.Cols)
	for i := 0; i < batch; i++ {
		alpha := float32(r.Float64())
		start, end := i*numPoints*3, (i+1)*numPoints*3
		for j := start; j < end; j++ {
			interp.Data[j] = alpha*real.Data[j] + (1-alpha)*fake.Data[j]
		}
	}
	x := autodiff.NewParam(interp)
	scores := critic.Forward(x, labels)
	grad := autodiff.GradGraph(autodiff.Sum(scores), x)[0]
	norms := autodiff.Norms(autodiff.Reshape(grad, batch, numPoints*3))
	return autodiff.Mean(autodiff.Square(autodiff.AddScalar(norms, -1)))
}

// RadiusLoss is the squared error between the mean point norm of every
// generated cloud and the target radius of its class.
func RadiusLoss(fake *autodiff.Var, labels []int, radii ClassRadii) *autodiff.Var {
	batch := len(labels)
	numPoints := fake.Rows() / batch
	norms := autodiff.Reshape(autodiff.Norms(fake), batch, numPoints)
	meanNorms := autodiff.Scale(autodiff.SumCols(norms), 1/float32(numPoints))
	targets := autodiff.NewTensor(batch, 1)
	for i, label := range labels {
		targets.Data[i] = float32(radii.Radius(label))
	}
	return autodiff.MSE(meanNorms, autodiff.NewConstant(targets))
}

// HeightLoss is the squared error between the z extents of generated clouds
// and the z extents of the matching real clouds.
func HeightLoss(fake *autodiff.Var, real *autodiff.Tensor, batch int) *autodiff.Var {
	numPoints := fake.Rows() / batch
	fakeHeights := zExtents(fake, numPoints)
	realHeights := zExtents(autodiff.NewConstant(real), numPoints)
	return autodiff.MSE(fakeHeights, realHeights)
}

func zExtents(points *autodiff.Var, numPoints int) *autodiff.Var {
	z := autodiff.SliceCols(points, 2, 3)
	return autodiff.Sub(autodiff.MaxGroups(z, numPoints), autodiff.MinGroups(z, numPoints))
}

// ChamferLoss computes the symmetric nearest-neighbour distance between the
// generated and real clouds of each sample, averaged over the batch.
//
// Distances are Euclidean. Gradients flow only into fake.
func ChamferLoss(fake *autodiff.Var, real *autodiff.Tensor, batch int) *autodiff.Var {
	numPoints := fake.Rows() / batch
	fakeToReal := make([]int, fake.Rows())
	realToFake := make([]int, real.Rows)
	essentials.ConcurrentMap(0, batch, func(i int) {
		offset := i * numPoints
		for j := 0; j < numPoints; j++ {
			fakeToReal[offset+j] = offset + nearestRow(fake.Value, real, offset+j, offset,
				numPoints)
			realToFake[offset+j] = offset + nearestRow(real, fake.Value, offset+j, offset,
				numPoints)
		}
	})
	realVar := autodiff.NewConstant(real)
	forward := autodiff.Norms(autodiff.Sub(fake, autodiff.GatherRows(realVar, fakeToReal)))
	backward := autodiff.Norms(autodiff.Sub(realVar, autodiff.GatherRows(fake, realToFake)))
	return autodiff.Add(autodiff.Mean(forward), autodiff.Mean(backward))
}

// nearestRow finds the row of candidates[offset:offset+count] closest to
// row idx of points, relative to offset.
func nearestRow(points, candidates *autodiff.Tensor, idx, offset, count int) int {
	p := points.Row(idx)
	best := math.Inf(1)
	bestIdx := 0
	for i := 0; i < count; i++ {
		c := candidates.Row(offset + i)
		dx, dy, dz := p[0]-c[0], p[1]-c[1], p[2]-c[2]
		if d := float64(dx*dx + dy*dy + dz*dz); d < best {
			best = d
			bestIdx = i
		}
	}
	return bestIdx
}
