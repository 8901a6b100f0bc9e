package autodiff

// A backwardFunc maps the gradient of an operation's output to gradients of
// its inputs. Only inputs with need[i] set must be produced; the rest may be
// nil. The returned gradients must be built from differentiable operations so
// that gradients of gradients can be computed.
type backwardFunc func(out, grad *Var, need []bool) []*Var

// A Var is a node in a computation graph.
//
// Leaves are created with NewConstant or NewParam. Every other Var is the
// output of an operation and remembers its inputs only when at least one of
// them requires a gradient.
type Var struct {
	Value *Tensor

	inputs       []*Var
	backward     backwardFunc
	requiresGrad bool
}

// NewConstant creates a leaf which never receives a gradient.
func NewConstant(t *Tensor) *Var {
	return &Var{Value: t}
}

// NewParam creates a leaf whose gradient can be requested with Grad.
func NewParam(t *Tensor) *Var {
	return &Var{Value: t, requiresGrad: true}
}

func (v *Var) RequiresGrad() bool {
	return v.requiresGrad
}

// Freeze turns a parameter into a constant in place, so graphs built from it
// afterwards are not recorded.
func (v *Var) Freeze() {
	if v.inputs != nil {
		panic("cannot freeze the output of an operation")
	}
	v.requiresGrad = false
}

// Detach returns a constant sharing v's value.
func (v *Var) Detach() *Var {
	return NewConstant(v.Value)
}

func (v *Var) Rows() int {
	return v.Value.Rows
}

func (v *Var) Cols() int {
	return v.Value.Cols
}

// Scalar returns the only element of a 1x1 value.
func (v *Var) Scalar() float32 {
	if v.Value.Len() != 1 {
		panic("value is not a scalar")
	}
	return v.Value.Data[0]
}

func newOp(value *Tensor, backward backwardFunc, inputs ...*Var) *Var {
	for _, in := range inputs {
		if in.requiresGrad {
			return &Var{
				Value:        value,
				inputs:       inputs,
				backward:     backward,
				requiresGrad: true,
			}
		}
	}
	return &Var{Value: value}
}
