package autodiff

import (
	"math"
	"math/rand"
	"testing"
)

func TestMatMul(t *testing.T) {
	a := NewConstant(NewTensorData(2, 3, []float32{1, 2, 3, 4, 5, 6}))
	b := NewConstant(NewTensorData(3, 2, []float32{7, 8, 9, 10, 11, 12}))
	out := MatMul(a, b)
	expected := []float32{58, 64, 139, 154}
	for i, x := range expected {
		if out.Value.Data[i] != x {
			t.Fatalf("expected %v but got %v", expected, out.Value.Data)
		}
	}
	if out.RequiresGrad() {
		t.Error("constant inputs should not produce a graph")
	}
}

func TestMaxGroups(t *testing.T) {
	a := NewParam(NewTensorData(4, 2, []float32{
		1, 8,
		3, 2,
		-1, -5,
		-2, -3,
	}))
	out := MaxGroups(a, 2)
	expected := []float32{3, 8, -1, -3}
	for i, x := range expected {
		if out.Value.Data[i] != x {
			t.Fatalf("expected %v but got %v", expected, out.Value.Data)
		}
	}
	grad := GradTensors(Sum(out), a)[0]
	expectedGrad := []float32{0, 1, 1, 0, 1, 0, 0, 1}
	for i, x := range expectedGrad {
		if grad.Data[i] != x {
			t.Fatalf("expected gradient %v but got %v", expectedGrad, grad.Data)
		}
	}

	minOut := MinGroups(a, 2)
	expectedMin := []float32{1, 2, -2, -5}
	for i, x := range expectedMin {
		if minOut.Value.Data[i] != x {
			t.Fatalf("expected %v but got %v", expectedMin, minOut.Value.Data)
		}
	}
}

func TestGradientsSmooth(t *testing.T) {
	r := rand.New(rand.NewSource(1337))
	x := NewParam(randomTensor(r, 4, 3))
	w := NewParam(randomTensor(r, 3, 5))
	b := NewParam(randomTensor(r, 1, 5))
	gain := NewParam(randomTensor(r, 1, 5))

	f := func() *Var {
		h := AddRow(MatMul(x, w), b)
		mu := Scale(SumCols(h), 1.0/5)
		centered := Sub(h, RepeatCols(mu, 5))
		variance := Scale(SumCols(Square(centered)), 1.0/5)
		normed := Mul(centered, RepeatCols(Pow(AddScalar(variance, 1e-3), -0.5), 5))
		scaled := Mul(normed, RepeatRows(gain, 4))
		act := Tanh(scaled)
		joined := ConcatCols(act, x)
		sliced := SliceCols(joined, 2, 7)
		reshaped := Reshape(sliced, 10, 2)
		gathered := GatherRows(reshaped, []int{0, 3, 3, 9, 5})
		return Add(Mean(Norms(gathered)), MSE(SliceCols(act, 0, 3), Scale(x, 0.5)))
	}

	checkGradients(t, f, x, w, b, gain)
}

func TestGradientsLeaky(t *testing.T) {
	// Every input is at least 0.5 away from zero, so finite differences never
	// cross the kink of the activation.
	x := NewParam(NewTensorData(2, 3, []float32{0.5, -0.7, 1.2, -1.5, 0.9, -0.6}))
	w := NewParam(NewTensorData(2, 3, []float32{1, 2, -1, 0.5, -2, 3}))
	f := func() *Var {
		return Mean(Mul(Square(LeakyReLU(x, 0.2)), w))
	}
	checkGradients(t, f, x, w)

	relu := ReLU(NewConstant(NewTensorData(1, 3, []float32{-1, 0, 2})))
	if relu.Value.Data[0] != 0 || relu.Value.Data[1] != 0 || relu.Value.Data[2] != 2 {
		t.Errorf("unexpected ReLU output %v", relu.Value.Data)
	}
}

func TestSecondOrderGradients(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	x := NewParam(randomTensor(r, 3, 4))
	w := NewParam(randomTensor(r, 4, 2))
	v := NewParam(randomTensor(r, 2, 1))

	// Penalty on the input gradient of a small network, as used for gradient
	// penalties on critics.
	f := func() *Var {
		out := MatMul(Tanh(MatMul(x, w)), v)
		g := GradGraph(Sum(out), x)[0]
		norms := Norms(Reshape(g, 3, 4))
		return Mean(Square(AddScalar(norms, -1)))
	}
	checkGradients(t, f, w, v)
}

func TestGradDetached(t *testing.T) {
	x := NewParam(NewTensorData(1, 2, []float32{1, 2}))
	out := Sum(Square(x))
	g := Grad(out, x)[0]
	if g.RequiresGrad() {
		t.Error("Grad should return constants")
	}
	if g.Value.Data[0] != 2 || g.Value.Data[1] != 4 {
		t.Errorf("unexpected gradient %v", g.Value.Data)
	}
	g2 := GradGraph(out, x)[0]
	if !g2.RequiresGrad() {
		t.Error("GradGraph should stay attached")
	}

	unrelated := NewParam(NewTensor(2, 2))
	zero := Grad(out, unrelated)[0]
	if zero.Rows() != 2 || zero.Cols() != 2 || zero.Value.SquaredNorm() != 0 {
		t.Errorf("expected zero gradient but got %v", zero.Value)
	}
}

func checkGradients(t *testing.T, f func() *Var, params ...*Var) {
	const epsilon = 1e-2
	grads := GradTensors(f(), params...)
	for pIdx, p := range params {
		for i := range p.Value.Data {
			old := p.Value.Data[i]
			p.Value.Data[i] = old + epsilon
			plus := float64(f().Scalar())
			p.Value.Data[i] = old - epsilon
			minus := float64(f().Scalar())
			p.Value.Data[i] = old

			expected := (plus - minus) / (2 * epsilon)
			actual := float64(grads[pIdx].Data[i])
			if math.Abs(expected-actual) > 2e-3+2e-2*math.Abs(expected) {
				t.Errorf("param %d index %d: expected gradient %f but got %f", pIdx, i,
					expected, actual)
			}
		}
	}
}

func randomTensor(r *rand.Rand, rows, cols int) *Tensor {
	res := NewTensor(rows, cols)
	for i := range res.Data {
		res.Data[i] = float32(r.NormFloat64())
	}
	return res
}
