package pcgan

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"github.com/shapeforge/primgan/autodiff"
)

// A ParamSet is an ordered collection of named parameters.
type ParamSet struct {
	names  []string
	params map[string]*autodiff.Var
}

func NewParamSet() *ParamSet {
	return &ParamSet{params: map[string]*autodiff.Var{}}
}

// Add registers a parameter. Names must be unique.
func (p *ParamSet) Add(name string, v *autodiff.Var) {
	if _, ok := p.params[name]; ok {
		panic("duplicate parameter: " + name)
	}
	p.names = append(p.names, name)
	p.params[name] = v
}

func (p *ParamSet) Names() []string {
	return append([]string{}, p.names...)
}

func (p *ParamSet) Get(name string) *autodiff.Var {
	return p.params[name]
}

// Vars returns the parameters in registration order.
func (p *ParamSet) Vars() []*autodiff.Var {
	res := make([]*autodiff.Var, len(p.names))
	for i, name := range p.names {
		res[i] = p.params[name]
	}
	return res
}

// NumParams counts the scalar parameters in the set.
func (p *ParamSet) NumParams() int {
	var res int
	for _, v := range p.params {
		res += v.Value.Len()
	}
	return res
}

// Freeze stops every parameter from receiving gradients.
func (p *ParamSet) Freeze() {
	for _, v := range p.params {
		v.Freeze()
	}
}

// CopyFrom overwrites the values of p with the values of other. Both sets
// must have the same names and shapes.
func (p *ParamSet) CopyFrom(other *ParamSet) error {
	if len(other.names) != len(p.names) {
		return errors.Errorf("parameter count mismatch: %d != %d", len(p.names),
			len(other.names))
	}
	for _, name := range p.names {
		src, ok := other.params[name]
		if !ok {
			return errors.Errorf("missing parameter: %s", name)
		}
		dst := p.params[name]
		if !dst.Value.SameShape(src.Value) {
			return errors.Errorf("shape mismatch for %s", name)
		}
		copy(dst.Value.Data, src.Value.Data)
	}
	return nil
}

// Linear is a fully-connected layer applied to every row of its input.
type Linear struct {
	Weight *autodiff.Var
	Bias   *autodiff.Var
}

// NewLinear creates a layer with Xavier-uniform weights and zero biases.
func NewLinear(r *rand.Rand, in, out int) *Linear {
	limit := math.Sqrt(6 / float64(in+out))
	w := autodiff.NewTensor(in, out)
	for i := range w.Data {
		w.Data[i] = float32((r.Float64()*2 - 1) * limit)
	}
	return &Linear{
		Weight: autodiff.NewParam(w),
		Bias:   autodiff.NewParam(autodiff.NewTensor(1, out)),
	}
}

func (l *Linear) Apply(x *autodiff.Var) *autodiff.Var {
	return autodiff.AddRow(autodiff.MatMul(x, l.Weight), l.Bias)
}

func (l *Linear) AddParams(p *ParamSet, prefix string) {
	p.Add(prefix+".weight", l.Weight)
	p.Add(prefix+".bias", l.Bias)
}

// Embedding maps class labels to learned vectors.
type Embedding struct {
	Table *autodiff.Var
}

// NewEmbedding creates a table with N(0, 1) entries.
func NewEmbedding(r *rand.Rand, numClasses, dim int) *Embedding {
	t := autodiff.NewTensor(numClasses, dim)
	for i := range t.Data {
		t.Data[i] = float32(r.NormFloat64())
	}
	return &Embedding{Table: autodiff.NewParam(t)}
}

func (e *Embedding) Apply(labels []int) *autodiff.Var {
	return autodiff.GatherRows(e.Table, labels)
}

func (e *Embedding) AddParams(p *ParamSet, prefix string) {
	p.Add(prefix+".table", e.Table)
}

// LayerNorm normalizes every row to zero mean and unit variance and applies a
// learned per-column gain and bias.
type LayerNorm struct {
	Gain    *autodiff.Var
	Bias    *autodiff.Var
	Epsilon float32
}

func NewLayerNorm(dim int) *LayerNorm {
	return &LayerNorm{
		Gain:    autodiff.NewParam(autodiff.NewTensorFill(1, dim, 1)),
		Bias:    autodiff.NewParam(autodiff.NewTensor(1, dim)),
		Epsilon: 1e-5,
	}
}

func (l *LayerNorm) Apply(x *autodiff.Var) *autodiff.Var {
	cols := x.Cols()
	scale := 1 / float32(cols)
	mean := autodiff.Scale(autodiff.SumCols(x), scale)
	centered := autodiff.Sub(x, autodiff.RepeatCols(mean, cols))
	variance := autodiff.Scale(autodiff.SumCols(autodiff.Square(centered)), scale)
	invStd := autodiff.Pow(autodiff.AddScalar(variance, l.Epsilon), -0.5)
	normed := autodiff.Mul(centered, autodiff.RepeatCols(invStd, cols))
	return autodiff.AddRow(autodiff.Mul(normed, autodiff.RepeatRows(l.Gain, x.Rows())), l.Bias)
}

func (l *LayerNorm) AddParams(p *ParamSet, prefix string) {
	p.Add(prefix+".gain", l.Gain)
	p.Add(prefix+".bias", l.Bias)
}
