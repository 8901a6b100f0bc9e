package autodiff

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
)

// A Tensor is a dense, row-major matrix of float32 values.
type Tensor struct {
	Rows int
	Cols int
	Data []float32
}

func NewTensor(rows, cols int) *Tensor {
	return &Tensor{Rows: rows, Cols: cols, Data: make([]float32, rows*cols)}
}

// NewTensorData wraps data without copying it.
func NewTensorData(rows, cols int, data []float32) *Tensor {
	if len(data) != rows*cols {
		panic(fmt.Sprintf("data length %d does not match shape %dx%d", len(data), rows, cols))
	}
	return &Tensor{Rows: rows, Cols: cols, Data: data}
}

func NewTensorFill(rows, cols int, value float32) *Tensor {
	res := NewTensor(rows, cols)
	for i := range res.Data {
		res.Data[i] = value
	}
	return res
}

func (t *Tensor) Len() int {
	return len(t.Data)
}

func (t *Tensor) At(row, col int) float32 {
	return t.Data[row*t.Cols+col]
}

func (t *Tensor) Set(row, col int, value float32) {
	t.Data[row*t.Cols+col] = value
}

// Row returns a slice aliasing the given row.
func (t *Tensor) Row(row int) []float32 {
	return t.Data[row*t.Cols : (row+1)*t.Cols]
}

func (t *Tensor) Clone() *Tensor {
	return &Tensor{Rows: t.Rows, Cols: t.Cols, Data: append([]float32{}, t.Data...)}
}

func (t *Tensor) SameShape(other *Tensor) bool {
	return t.Rows == other.Rows && t.Cols == other.Cols
}

// Finite returns false if any element is NaN or infinite.
func (t *Tensor) Finite() bool {
	for _, x := range t.Data {
		if math32.IsNaN(x) || math32.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// SquaredNorm computes the sum of squares in float64 precision.
func (t *Tensor) SquaredNorm() float64 {
	var res float64
	for _, x := range t.Data {
		res += float64(x) * float64(x)
	}
	return res
}

// Scale multiplies every element in place.
func (t *Tensor) Scale(s float32) {
	for i := range t.Data {
		t.Data[i] *= s
	}
}

// AddScaled adds s*other to t in place.
func (t *Tensor) AddScaled(other *Tensor, s float32) {
	if !t.SameShape(other) {
		panic("mismatched tensor shapes")
	}
	for i, x := range other.Data {
		t.Data[i] += s * x
	}
}

func (t *Tensor) String() string {
	var rows []string
	for i := 0; i < t.Rows; i++ {
		rows = append(rows, fmt.Sprint(t.Row(i)))
	}
	return fmt.Sprintf("Tensor(%dx%d)[%s]", t.Rows, t.Cols, strings.Join(rows, " "))
}
