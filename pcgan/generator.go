package pcgan

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"
	"github.com/shapeforge/primgan/autodiff"
	"github.com/shapeforge/primgan/pointcloud"
	"github.com/shapeforge/primgan/shapes"
	"github.com/unixpickle/model3d/model3d"
)

// A Generator maps a latent vector and a class label to a point cloud with
// coordinates in [-1, 1].
type Generator struct {
	Config ModelConfig

	Embedding *Embedding
	Layers    []*Linear
	Norms     []*LayerNorm
	Output    *Linear
}

// NewGenerator creates a randomly initialized generator.
func NewGenerator(r *rand.Rand, config *ModelConfig) *Generator {
	h := config.HiddenDim
	sizes := []int{config.LatentDim + config.CondDim, h, 2 * h, h}
	g := &Generator{
		Config:    *config,
		Embedding: NewEmbedding(r, config.NumClasses, config.CondDim),
		Output:    NewLinear(r, h, 3*config.NumPoints),
	}
	for i := 1; i < len(sizes); i++ {
		g.Layers = append(g.Layers, NewLinear(r, sizes[i-1], sizes[i]))
		g.Norms = append(g.Norms, NewLayerNorm(sizes[i]))
	}
	return g
}

// Forward computes a batch of point clouds as a [B*N, 3] matrix, where the
// N rows of each sample are contiguous.
//
// The latent batch z has shape [B, LatentDim]. Labels must be valid.
func (g *Generator) Forward(z *autodiff.Var, labels []int) *autodiff.Var {
	if z.Rows() != len(labels) || z.Cols() != g.Config.LatentDim {
		panic(fmt.Sprintf("latent batch shape %dx%d does not match %d labels of dim %d",
			z.Rows(), z.Cols(), len(labels), g.Config.LatentDim))
	}
	h := autodiff.ConcatCols(z, g.Embedding.Apply(labels))
	for i, layer := range g.Layers {
		h = g.Norms[i].Apply(autodiff.ReLU(layer.Apply(h)))
	}
	out := autodiff.Tanh(g.Output.Apply(h))
	return autodiff.Reshape(out, len(labels)*g.Config.NumPoints, 3)
}

// Generate produces a single point cloud.
//
// Returns shapes.ErrInvalidClass if the label is out of range.
func (g *Generator) Generate(latent []float32, label int) (pointcloud.PointCloud, error) {
	if label < 0 || label >= g.Config.NumClasses {
		return nil, errors.Wrapf(shapes.ErrInvalidClass, "generate: label %d", label)
	}
	if len(latent) != g.Config.LatentDim {
		return nil, errors.Errorf("generate: latent length %d, expected %d", len(latent),
			g.Config.LatentDim)
	}
	z := autodiff.NewConstant(autodiff.NewTensorData(1, len(latent),
		append([]float32{}, latent...)))
	return TensorToClouds(g.Forward(z, []int{label}).Value, g.Config.NumPoints)[0], nil
}

// SampleLatent draws a latent vector from N(0, 1).
func (g *Generator) SampleLatent(r *rand.Rand) []float32 {
	res := make([]float32, g.Config.LatentDim)
	for i := range res {
		res[i] = float32(r.NormFloat64())
	}
	return res
}

// SampleLatents draws a [batch, LatentDim] constant from N(0, 1).
func (g *Generator) SampleLatents(r *rand.Rand, batch int) *autodiff.Var {
	t := autodiff.NewTensor(batch, g.Config.LatentDim)
	for i := range t.Data {
		t.Data[i] = float32(r.NormFloat64())
	}
	return autodiff.NewConstant(t)
}

func (g *Generator) Params() *ParamSet {
	p := NewParamSet()
	g.Embedding.AddParams(p, "embedding")
	for i, layer := range g.Layers {
		layer.AddParams(p, fmt.Sprintf("layer%d", i))
		g.Norms[i].AddParams(p, fmt.Sprintf("norm%d", i))
	}
	g.Output.AddParams(p, "output")
	return p
}

// Freeze makes the generator inference-only. A frozen generator may be
// shared between goroutines.
func (g *Generator) Freeze() {
	g.Params().Freeze()
}

// CloudsToTensor packs clouds of equal length into a [B*N, 3] matrix.
func CloudsToTensor(clouds []pointcloud.PointCloud) *autodiff.Tensor {
	var total int
	for _, c := range clouds {
		total += len(c)
	}
	res := autodiff.NewTensor(total, 3)
	var row int
	for _, c := range clouds {
		for _, p := range c {
			res.Data[row*3] = float32(p.X)
			res.Data[row*3+1] = float32(p.Y)
			res.Data[row*3+2] = float32(p.Z)
			row++
		}
	}
	return res
}

// TensorToClouds splits a [B*N, 3] matrix into B clouds.
func TensorToClouds(t *autodiff.Tensor, numPoints int) []pointcloud.PointCloud {
	res := make([]pointcloud.PointCloud, t.Rows/numPoints)
	for i := range res {
		cloud := make(pointcloud.PointCloud, numPoints)
		for j := range cloud {
			row := t.Row(i*numPoints + j)
			cloud[j] = model3d.XYZ(float64(row[0]), float64(row[1]), float64(row[2]))
		}
		res[i] = cloud
	}
	return res
}
