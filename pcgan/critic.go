package pcgan

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"
	"github.com/shapeforge/primgan/autodiff"
	"github.com/shapeforge/primgan/pointcloud"
	"github.com/shapeforge/primgan/shapes"
)

const criticLeak = 0.2

// A Critic scores how real a labeled point cloud looks. Higher is more real.
//
// Every point passes through the same stack of per-point layers, and the
// features are max-pooled over the points of a cloud, so the score does not
// depend on point order.
type Critic struct {
	Config ModelConfig

	PointLayers []*Linear
	PointNorms  []*LayerNorm
	Embedding   *Embedding
	Head        []*Linear
}

// NewCritic creates a randomly initialized critic.
func NewCritic(r *rand.Rand, config *ModelConfig) *Critic {
	c := &Critic{
		Config:    *config,
		Embedding: NewEmbedding(r, config.NumClasses, config.CondDim),
	}
	in := 3
	for _, width := range config.CriticWidths {
		c.PointLayers = append(c.PointLayers, NewLinear(r, in, width))
		c.PointNorms = append(c.PointNorms, NewLayerNorm(width))
		in = width
	}
	in += config.CondDim
	for _, width := range config.CriticHead {
		c.Head = append(c.Head, NewLinear(r, in, width))
		in = width
	}
	c.Head = append(c.Head, NewLinear(r, in, 1))
	return c
}

// Forward scores a [B*N, 3] batch of clouds, producing a [B, 1] column.
func (c *Critic) Forward(points *autodiff.Var, labels []int) *autodiff.Var {
	numPoints := points.Rows() / len(labels)
	if points.Cols() != 3 || numPoints*len(labels) != points.Rows() {
		panic(fmt.Sprintf("point batch %dx%d does not match %d labels", points.Rows(),
			points.Cols(), len(labels)))
	}
	h := points
	for i, layer := range c.PointLayers {
		h = autodiff.ReLU(c.PointNorms[i].Apply(layer.Apply(h)))
	}
	pooled := autodiff.MaxGroups(h, numPoints)
	h = autodiff.ConcatCols(pooled, c.Embedding.Apply(labels))
	for i, layer := range c.Head {
		h = layer.Apply(h)
		if i+1 < len(c.Head) {
			h = autodiff.LeakyReLU(h, criticLeak)
		}
	}
	return h
}

// Score evaluates a single cloud.
func (c *Critic) Score(points pointcloud.PointCloud, label int) (float32, error) {
	if label < 0 || label >= c.Config.NumClasses {
		return 0, errors.Wrapf(shapes.ErrInvalidClass, "score: label %d", label)
	}
	if err := points.Validate(); err != nil {
		return 0, errors.Wrap(err, "score")
	}
	in := autodiff.NewConstant(CloudsToTensor([]pointcloud.PointCloud{points}))
	return c.Forward(in, []int{label}).Scalar(), nil
}

func (c *Critic) Params() *ParamSet {
	p := NewParamSet()
	for i, layer := range c.PointLayers {
		layer.AddParams(p, fmt.Sprintf("point%d", i))
		c.PointNorms[i].AddParams(p, fmt.Sprintf("point_norm%d", i))
	}
	c.Embedding.AddParams(p, "embedding")
	for i, layer := range c.Head {
		layer.AddParams(p, fmt.Sprintf("head%d", i))
	}
	return p
}
