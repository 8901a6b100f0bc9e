package autodiff

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/unixpickle/essentials"
)

// Minimum number of multiply-adds before MatMul splits rows across
// Goroutines.
const parallelMatMulThreshold = 1 << 16

func checkSameShape(op string, a, b *Var) {
	if !a.Value.SameShape(b.Value) {
		panic(fmt.Sprintf("%s: mismatched shapes %dx%d and %dx%d", op, a.Rows(), a.Cols(),
			b.Rows(), b.Cols()))
	}
}

// Add computes a+b elementwise.
func Add(a, b *Var) *Var {
	checkSameShape("Add", a, b)
	out := a.Value.Clone()
	for i, x := range b.Value.Data {
		out.Data[i] += x
	}
	return newOp(out, func(_, g *Var, need []bool) []*Var {
		return []*Var{g, g}
	}, a, b)
}

// Sub computes a-b elementwise.
func Sub(a, b *Var) *Var {
	checkSameShape("Sub", a, b)
	out := a.Value.Clone()
	for i, x := range b.Value.Data {
		out.Data[i] -= x
	}
	return newOp(out, func(_, g *Var, need []bool) []*Var {
		res := []*Var{g, nil}
		if need[1] {
			res[1] = Scale(g, -1)
		}
		return res
	}, a, b)
}

// Mul computes a*b elementwise.
func Mul(a, b *Var) *Var {
	checkSameShape("Mul", a, b)
	out := a.Value.Clone()
	for i, x := range b.Value.Data {
		out.Data[i] *= x
	}
	return newOp(out, func(_, g *Var, need []bool) []*Var {
		res := make([]*Var, 2)
		if need[0] {
			res[0] = Mul(g, b)
		}
		if need[1] {
			res[1] = Mul(g, a)
		}
		return res
	}, a, b)
}

// Square computes a*a elementwise.
func Square(a *Var) *Var {
	return Mul(a, a)
}

// Scale multiplies every element by a constant.
func Scale(a *Var, s float32) *Var {
	out := a.Value.Clone()
	out.Scale(s)
	return newOp(out, func(_, g *Var, need []bool) []*Var {
		return []*Var{Scale(g, s)}
	}, a)
}

// AddScalar adds a constant to every element.
func AddScalar(a *Var, s float32) *Var {
	out := a.Value.Clone()
	for i := range out.Data {
		out.Data[i] += s
	}
	return newOp(out, func(_, g *Var, need []bool) []*Var {
		return []*Var{g}
	}, a)
}

// Pow raises every element to a constant power.
func Pow(a *Var, p float32) *Var {
	out := a.Value.Clone()
	for i, x := range out.Data {
		out.Data[i] = math32.Pow(x, p)
	}
	return newOp(out, func(_, g *Var, need []bool) []*Var {
		return []*Var{Mul(g, Scale(Pow(a, p-1), p))}
	}, a)
}

// Tanh applies the hyperbolic tangent elementwise.
func Tanh(a *Var) *Var {
	out := a.Value.Clone()
	for i, x := range out.Data {
		out.Data[i] = tanh32(x)
	}
	return newOp(out, func(y, g *Var, need []bool) []*Var {
		return []*Var{Mul(g, AddScalar(Scale(Square(y), -1), 1))}
	}, a)
}

// ReLU zeroes out negative elements.
func ReLU(a *Var) *Var {
	return LeakyReLU(a, 0)
}

// LeakyReLU scales negative elements by slope.
func LeakyReLU(a *Var, slope float32) *Var {
	out := a.Value.Clone()
	mask := NewTensor(a.Rows(), a.Cols())
	for i, x := range out.Data {
		if x > 0 {
			mask.Data[i] = 1
		} else {
			mask.Data[i] = slope
			out.Data[i] = x * slope
		}
	}
	return newOp(out, func(_, g *Var, need []bool) []*Var {
		return []*Var{Mul(g, NewConstant(mask))}
	}, a)
}

// MatMul computes the matrix product of a (m x k) and b (k x n).
func MatMul(a, b *Var) *Var {
	if a.Cols() != b.Rows() {
		panic(fmt.Sprintf("MatMul: cannot multiply %dx%d by %dx%d", a.Rows(), a.Cols(),
			b.Rows(), b.Cols()))
	}
	out := matMul(a.Value, b.Value)
	return newOp(out, func(_, g *Var, need []bool) []*Var {
		res := make([]*Var, 2)
		if need[0] {
			res[0] = MatMul(g, Transpose(b))
		}
		if need[1] {
			res[1] = MatMul(Transpose(a), g)
		}
		return res
	}, a, b)
}

func matMul(a, b *Tensor) *Tensor {
	out := NewTensor(a.Rows, b.Cols)
	rowFn := func(i int) {
		outRow := out.Row(i)
		aRow := a.Row(i)
		for k, x := range aRow {
			if x == 0 {
				continue
			}
			bRow := b.Row(k)
			for j, y := range bRow {
				outRow[j] += x * y
			}
		}
	}
	if a.Rows*a.Cols*b.Cols >= parallelMatMulThreshold && a.Rows > 1 {
		essentials.ConcurrentMap(0, a.Rows, rowFn)
	} else {
		for i := 0; i < a.Rows; i++ {
			rowFn(i)
		}
	}
	return out
}

// Transpose swaps rows and columns.
func Transpose(a *Var) *Var {
	out := NewTensor(a.Cols(), a.Rows())
	for i := 0; i < a.Rows(); i++ {
		for j, x := range a.Value.Row(i) {
			out.Data[j*out.Cols+i] = x
		}
	}
	return newOp(out, func(_, g *Var, need []bool) []*Var {
		return []*Var{Transpose(g)}
	}, a)
}

// AddRow adds a 1 x n row to every row of an m x n matrix.
func AddRow(a, row *Var) *Var {
	if row.Rows() != 1 || row.Cols() != a.Cols() {
		panic(fmt.Sprintf("AddRow: cannot add %dx%d to %dx%d", row.Rows(), row.Cols(),
			a.Rows(), a.Cols()))
	}
	out := a.Value.Clone()
	for i := 0; i < out.Rows; i++ {
		outRow := out.Row(i)
		for j, x := range row.Value.Data {
			outRow[j] += x
		}
	}
	return newOp(out, func(_, g *Var, need []bool) []*Var {
		res := []*Var{g, nil}
		if need[1] {
			res[1] = SumRows(g)
		}
		return res
	}, a, row)
}

// SumRows adds the rows of a matrix together, producing a 1 x n row.
func SumRows(a *Var) *Var {
	out := NewTensor(1, a.Cols())
	for i := 0; i < a.Rows(); i++ {
		for j, x := range a.Value.Row(i) {
			out.Data[j] += x
		}
	}
	return newOp(out, func(_, g *Var, need []bool) []*Var {
		return []*Var{RepeatRows(g, a.Rows())}
	}, a)
}

// RepeatRows tiles a 1 x n row into an m x n matrix.
func RepeatRows(a *Var, m int) *Var {
	if a.Rows() != 1 {
		panic("RepeatRows: input must have one row")
	}
	out := NewTensor(m, a.Cols())
	for i := 0; i < m; i++ {
		copy(out.Row(i), a.Value.Data)
	}
	return newOp(out, func(_, g *Var, need []bool) []*Var {
		return []*Var{SumRows(g)}
	}, a)
}

// SumCols adds the columns of a matrix together, producing an m x 1 column.
func SumCols(a *Var) *Var {
	out := NewTensor(a.Rows(), 1)
	for i := 0; i < a.Rows(); i++ {
		var sum float32
		for _, x := range a.Value.Row(i) {
			sum += x
		}
		out.Data[i] = sum
	}
	return newOp(out, func(_, g *Var, need []bool) []*Var {
		return []*Var{RepeatCols(g, a.Cols())}
	}, a)
}

// RepeatCols tiles an m x 1 column into an m x n matrix.
func RepeatCols(a *Var, n int) *Var {
	if a.Cols() != 1 {
		panic("RepeatCols: input must have one column")
	}
	out := NewTensor(a.Rows(), n)
	for i, x := range a.Value.Data {
		row := out.Row(i)
		for j := range row {
			row[j] = x
		}
	}
	return newOp(out, func(_, g *Var, need []bool) []*Var {
		return []*Var{SumCols(g)}
	}, a)
}

// Sum adds every element, producing a 1 x 1 value.
func Sum(a *Var) *Var {
	var sum float32
	for _, x := range a.Value.Data {
		sum += x
	}
	out := NewTensorData(1, 1, []float32{sum})
	return newOp(out, func(_, g *Var, need []bool) []*Var {
		return []*Var{RepeatRows(RepeatCols(g, a.Cols()), a.Rows())}
	}, a)
}

// Mean averages every element, producing a 1 x 1 value.
func Mean(a *Var) *Var {
	return Scale(Sum(a), 1/float32(a.Value.Len()))
}

// MSE computes the mean squared difference between a and b.
func MSE(a, b *Var) *Var {
	return Mean(Square(Sub(a, b)))
}

// Reshape reinterprets the row-major data with a new shape.
func Reshape(a *Var, rows, cols int) *Var {
	if rows*cols != a.Value.Len() {
		panic(fmt.Sprintf("Reshape: cannot reshape %dx%d to %dx%d", a.Rows(), a.Cols(),
			rows, cols))
	}
	out := NewTensorData(rows, cols, a.Value.Data)
	return newOp(out, func(_, g *Var, need []bool) []*Var {
		return []*Var{Reshape(g, a.Rows(), a.Cols())}
	}, a)
}

// ConcatCols joins two matrices with the same number of rows side by side.
func ConcatCols(a, b *Var) *Var {
	if a.Rows() != b.Rows() {
		panic("ConcatCols: mismatched row counts")
	}
	out := NewTensor(a.Rows(), a.Cols()+b.Cols())
	for i := 0; i < out.Rows; i++ {
		row := out.Row(i)
		copy(row, a.Value.Row(i))
		copy(row[a.Cols():], b.Value.Row(i))
	}
	return newOp(out, func(_, g *Var, need []bool) []*Var {
		res := make([]*Var, 2)
		if need[0] {
			res[0] = SliceCols(g, 0, a.Cols())
		}
		if need[1] {
			res[1] = SliceCols(g, a.Cols(), a.Cols()+b.Cols())
		}
		return res
	}, a, b)
}

// SliceCols extracts the columns in [start, end).
func SliceCols(a *Var, start, end int) *Var {
	if start < 0 || end > a.Cols() || start > end {
		panic("SliceCols: range out of bounds")
	}
	out := NewTensor(a.Rows(), end-start)
	for i := 0; i < out.Rows; i++ {
		copy(out.Row(i), a.Value.Row(i)[start:end])
	}
	return newOp(out, func(_, g *Var, need []bool) []*Var {
		return []*Var{PadCols(g, start, a.Cols())}
	}, a)
}

// PadCols places a's columns at offset start inside a zero matrix with total
// columns.
func PadCols(a *Var, start, total int) *Var {
	if start < 0 || start+a.Cols() > total {
		panic("PadCols: range out of bounds")
	}
	out := NewTensor(a.Rows(), total)
	for i := 0; i < out.Rows; i++ {
		copy(out.Row(i)[start:], a.Value.Row(i))
	}
	return newOp(out, func(_, g *Var, need []bool) []*Var {
		return []*Var{SliceCols(g, start, start+a.Cols())}
	}, a)
}

// GatherElems builds a rows x cols matrix whose i-th element (row-major) is
// a's element at flat index indices[i].
func GatherElems(a *Var, indices []int, rows, cols int) *Var {
	if len(indices) != rows*cols {
		panic("GatherElems: index count does not match shape")
	}
	out := NewTensor(rows, cols)
	for i, idx := range indices {
		out.Data[i] = a.Value.Data[idx]
	}
	return newOp(out, func(_, g *Var, need []bool) []*Var {
		return []*Var{ScatterElems(g, indices, a.Rows(), a.Cols())}
	}, a)
}

// ScatterElems is the adjoint of GatherElems: it accumulates element i of a
// into flat index indices[i] of a zero rows x cols matrix.
func ScatterElems(a *Var, indices []int, rows, cols int) *Var {
	if len(indices) != a.Value.Len() {
		panic("ScatterElems: index count does not match input")
	}
	out := NewTensor(rows, cols)
	for i, idx := range indices {
		out.Data[idx] += a.Value.Data[i]
	}
	return newOp(out, func(_, g *Var, need []bool) []*Var {
		return []*Var{GatherElems(g, indices, a.Rows(), a.Cols())}
	}, a)
}

// GatherRows selects rows of a, possibly repeating them.
func GatherRows(a *Var, rows []int) *Var {
	cols := a.Cols()
	indices := make([]int, 0, len(rows)*cols)
	for _, r := range rows {
		if r < 0 || r >= a.Rows() {
			panic(fmt.Sprintf("GatherRows: row %d out of range", r))
		}
		for j := 0; j < cols; j++ {
			indices = append(indices, r*cols+j)
		}
	}
	return GatherElems(a, indices, len(rows), cols)
}

// MaxGroups splits the rows of a into consecutive groups of groupSize rows
// and takes the column-wise maximum of each group.
//
// The gradient flows only to the maximal element of each column.
func MaxGroups(a *Var, groupSize int) *Var {
	if groupSize <= 0 || a.Rows()%groupSize != 0 {
		panic(fmt.Sprintf("MaxGroups: %d rows not divisible into groups of %d", a.Rows(),
			groupSize))
	}
	numGroups := a.Rows() / groupSize
	cols := a.Cols()
	indices := make([]int, numGroups*cols)
	for group := 0; group < numGroups; group++ {
		for j := 0; j < cols; j++ {
			bestIdx := group*groupSize*cols + j
			best := a.Value.Data[bestIdx]
			for i := 1; i < groupSize; i++ {
				idx := (group*groupSize+i)*cols + j
				if x := a.Value.Data[idx]; x > best {
					best = x
					bestIdx = idx
				}
			}
			indices[group*cols+j] = bestIdx
		}
	}
	return GatherElems(a, indices, numGroups, cols)
}

// MinGroups is like MaxGroups but takes the minimum.
func MinGroups(a *Var, groupSize int) *Var {
	return Scale(MaxGroups(Scale(a, -1), groupSize), -1)
}

// Norms computes the Euclidean norm of every row, producing an m x 1 column.
// A small epsilon keeps the gradient finite at zero.
func Norms(a *Var) *Var {
	return Pow(AddScalar(SumCols(Square(a)), 1e-12), 0.5)
}

func tanh32(x float32) float32 {
	if x > 20 {
		return 1
	} else if x < -20 {
		return -1
	}
	e := math32.Exp(2 * x)
	return (e - 1) / (e + 1)
}
