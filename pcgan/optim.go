package pcgan

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/shapeforge/primgan/autodiff"
)

// Adam implements the Adam optimizer over a fixed list of parameters.
type Adam struct {
	LR      float32
	Beta1   float32
	Beta2   float32
	Epsilon float32

	params []*autodiff.Var

	// State updated by the step function.
	iter         int
	firstMoment  []*autodiff.Tensor
	secondMoment []*autodiff.Tensor
}

func NewAdam(params []*autodiff.Var, lr, beta1, beta2 float32) *Adam {
	a := &Adam{
		LR:      lr,
		Beta1:   beta1,
		Beta2:   beta2,
		Epsilon: 1e-8,
		params:  params,
	}
	for _, p := range params {
		a.firstMoment = append(a.firstMoment, autodiff.NewTensor(p.Rows(), p.Cols()))
		a.secondMoment = append(a.secondMoment, autodiff.NewTensor(p.Rows(), p.Cols()))
	}
	return a
}

// Step applies one update given one gradient per parameter.
func (a *Adam) Step(grads []*autodiff.Tensor) {
	if len(grads) != len(a.params) {
		panic("gradient count does not match parameter count")
	}
	a.iter++
	t := float32(a.iter)
	correction1 := 1 - math32.Pow(a.Beta1, t)
	correction2 := 1 - math32.Pow(a.Beta2, t)
	for i, p := range a.params {
		m := a.firstMoment[i].Data
		v := a.secondMoment[i].Data
		values := p.Value.Data
		for j, g := range grads[i].Data {
			m[j] = a.Beta1*m[j] + (1-a.Beta1)*g
			v[j] = a.Beta2*v[j] + (1-a.Beta2)*g*g
			mHat := m[j] / correction1
			vHat := v[j] / correction2
			values[j] -= a.LR * mHat / (math32.Sqrt(vHat) + a.Epsilon)
		}
	}
}

// ClipGradNorm scales grads in place so that their global norm is at most
// maxNorm, and returns the norm before clipping.
func ClipGradNorm(grads []*autodiff.Tensor, maxNorm float32) float64 {
	var total float64
	for _, g := range grads {
		total += g.SquaredNorm()
	}
	norm := math.Sqrt(total)
	if maxNorm > 0 && norm > float64(maxNorm) {
		scale := float32(float64(maxNorm) / (norm + 1e-6))
		for _, g := range grads {
			g.Scale(scale)
		}
	}
	return norm
}

func allFinite(tensors []*autodiff.Tensor) bool {
	for _, t := range tensors {
		if !t.Finite() {
			return false
		}
	}
	return true
}
