package autodiff

// Grad computes the gradient of a scalar output with respect to each Var in
// wrt. The results are constants with the same shapes as the wrt values.
func Grad(out *Var, wrt ...*Var) []*Var {
	return gradients(out, wrt, false)
}

// GradGraph is like Grad, but the returned gradients remain attached to the
// graph, so they can be used to build losses that are differentiated again.
func GradGraph(out *Var, wrt ...*Var) []*Var {
	return gradients(out, wrt, true)
}

// GradTensors is like Grad but returns raw tensors.
func GradTensors(out *Var, wrt ...*Var) []*Tensor {
	grads := Grad(out, wrt...)
	res := make([]*Tensor, len(grads))
	for i, g := range grads {
		res[i] = g.Value
	}
	return res
}

func gradients(out *Var, wrt []*Var, createGraph bool) []*Var {
	if out.Value.Len() != 1 {
		panic("gradient output must be a scalar")
	}

	targets := map[*Var]bool{}
	for _, w := range wrt {
		targets[w] = true
	}

	// Post-order traversal restricted to nodes that lead to a target.
	needed := map[*Var]bool{}
	visited := map[*Var]bool{}
	var order []*Var
	var visit func(v *Var) bool
	visit = func(v *Var) bool {
		if visited[v] {
			return needed[v]
		}
		visited[v] = true
		res := targets[v]
		if v.requiresGrad {
			for _, in := range v.inputs {
				if visit(in) {
					res = true
				}
			}
		}
		needed[v] = res
		if res {
			order = append(order, v)
		}
		return res
	}
	visit(out)

	grads := map[*Var]*Var{
		out: NewConstant(NewTensorFill(out.Rows(), out.Cols(), 1)),
	}
	for i := len(order) - 1; i >= 0; i-- {
		v := order[i]
		g, ok := grads[v]
		if !ok || v.backward == nil {
			continue
		}
		need := make([]bool, len(v.inputs))
		for j, in := range v.inputs {
			need[j] = needed[in]
		}
		inGrads := v.backward(v, g, need)
		for j, in := range v.inputs {
			if !need[j] || inGrads[j] == nil {
				continue
			}
			ig := inGrads[j]
			if !createGraph {
				ig = ig.Detach()
			}
			if old, ok := grads[in]; ok {
				grads[in] = Add(old, ig)
			} else {
				grads[in] = ig
			}
		}
	}

	res := make([]*Var, len(wrt))
	for i, w := range wrt {
		if g, ok := grads[w]; ok {
			res[i] = g
		} else {
			res[i] = NewConstant(NewTensor(w.Rows(), w.Cols()))
		}
	}
	return res
}
