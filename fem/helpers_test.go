package fem

import (
	"testing"

	"github.com/notargets/FEMAssembly/mesh"
	"github.com/stretchr/testify/require"
)

func unitInterval(t *testing.T, n int) *mesh.Mesh[float64] {
	m, err := mesh.CreateUnitInterval[float64](n)
	require.NoError(t, err)
	return m
}

func unitSquare(t *testing.T, n int) *mesh.Mesh[float64] {
	m, err := mesh.CreateUnitSquare[float64](n, n)
	require.NoError(t, err)
	return m
}

func space(t *testing.T, m *mesh.Mesh[float64], degree, bs int) *FunctionSpace[float64] {
	V, err := CreateFunctionSpace(m, degree, bs)
	require.NoError(t, err)
	return V
}

func allCells[U Real](m *mesh.Mesh[U]) []int32 {
	cells := make([]int32, m.NumCells())
	for c := range cells {
		cells[c] = int32(c)
	}
	return cells
}

// cellForm builds a form with a single cell integral over every cell
func cellForm[T Scalar](t *testing.T, m *mesh.Mesh[float64], k Kernel[T, float64],
	spaces []*FunctionSpace[float64], coeffs []*Function[T, float64], consts ...*Constant[T]) *Form[T, float64] {
	f, err := NewForm(spaces, map[IntegralType][]Integral[T, float64]{
		Cell: {{ID: 0, Kernel: k, Entities: allCells(m)}},
	}, coeffs, consts, m)
	require.NoError(t, err)
	return f
}

// identity adds the n x n identity
func identity(n int) Kernel[float64, float64] {
	return func(A, w, c []float64, x []float64, local []int32) {
		for i := 0; i < n; i++ {
			A[i*n+i] += 1
		}
	}
}

// hatLoad adds int phi_i for P1 on intervals
func hatLoad(A, w, c []float64, x []float64, local []int32) {
	h := x[3] - x[0]
	if h < 0 {
		h = -h
	}
	A[0] += h / 2
	A[1] += h / 2
}

type failingMat struct {
	failAfter int
	calls     int
	err       error
}

func (f *failingMat) Add(rows, cols []int32, values []float64) error { return f.call() }
func (f *failingMat) Set(rows, cols []int32, values []float64) error { return f.call() }

func (f *failingMat) call() error {
	f.calls++
	if f.calls > f.failAfter {
		return f.err
	}
	return nil
}
