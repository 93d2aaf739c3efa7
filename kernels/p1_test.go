package kernels

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
)

var (
	refInterval = []float64{0, 0, 0, 2, 0, 0}
	refTriangle = []float64{0, 0, 0, 1, 0, 0, 0, 1, 0}
	refTet      = []float64{0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1}
)

func TestArea(t *testing.T) {
	for _, tc := range []struct {
		name string
		x    []float64
		want float64
	}{
		{"interval", refInterval, 2},
		{"triangle", refTriangle, 0.5},
		{"tetrahedron", refTet, 1.0 / 6},
		// triangle tilted out of the xy plane
		{"embedded", []float64{0, 0, 0, 1, 0, 0, 0, 1, 1}, 0.5 * math.Sqrt2},
	} {
		A := []float64{0}
		Area(A, nil, nil, tc.x, nil)
		assert.InDelta(t, tc.want, A[0], 1e-14, tc.name)
	}
}

func TestMass(t *testing.T) {
	A := make([]float64, 9)
	Mass(A, nil, nil, refTriangle, nil)
	assert.InDelta(t, 1.0/12, A[0], 1e-15)
	assert.InDelta(t, 1.0/24, A[1], 1e-15)
	assert.InDelta(t, 0.5, floats.Sum(A), 1e-15)

	A = make([]float64, 16)
	Mass(A, nil, nil, refTet, nil)
	assert.InDelta(t, 1.0/6, floats.Sum(A), 1e-15)
	assert.InDelta(t, 1.0/60, A[0], 1e-15)
}

func TestLaplace(t *testing.T) {
	A := make([]float64, 4)
	Laplace(A, nil, []float64{3}, refInterval, nil)
	assert.True(t, floats.EqualApprox(A, []float64{1.5, -1.5, -1.5, 1.5}, 1e-14), "%v", A)

	A = make([]float64, 9)
	Laplace(A, nil, nil, refTriangle, nil)
	want := []float64{1, -0.5, -0.5, -0.5, 0.5, 0, -0.5, 0, 0.5}
	assert.True(t, floats.EqualApprox(A, want, 1e-14), "%v", A)

	A = make([]float64, 16)
	Laplace(A, nil, nil, refTet, nil)
	for i := 0; i < 4; i++ {
		assert.InDelta(t, 0, floats.Sum(A[4*i:4*i+4]), 1e-14, "row %d", i)
	}
	assert.InDelta(t, 0.5, A[0], 1e-14)
}

func TestSource(t *testing.T) {
	b := make([]float64, 3)
	Source(b, []float64{1, 1, 1}, nil, refTriangle, nil)
	assert.InDelta(t, 0.5, floats.Sum(b), 1e-15)
	assert.InDelta(t, 1.0/6, b[0], 1e-15)

	// f = x integrates to 1/6 over the reference triangle
	b = make([]float64, 3)
	Source(b, []float64{0, 1, 0}, nil, refTriangle, nil)
	assert.InDelta(t, 1.0/6, floats.Sum(b), 1e-15)
}

func TestFacetKernels(t *testing.T) {
	b := make([]float64, 3)
	FacetLoad(b, nil, []float64{2}, refTriangle, []int32{0})
	// facet 0 joins (1,0) and (0,1)
	assert.InDelta(t, 0, b[0], 1e-15)
	assert.InDelta(t, math.Sqrt2, b[1], 1e-14)
	assert.InDelta(t, math.Sqrt2, b[2], 1e-14)

	b = make([]float64, 4)
	FacetLoad(b, nil, nil, refTet, []int32{3})
	assert.InDelta(t, 0.5, floats.Sum(b), 1e-15)
	assert.Equal(t, 0.0, b[3])

	// two triangles sharing the edge (1,0)-(0,1)
	x := append(append([]float64{}, refTriangle...), 1, 1, 0, 0, 1, 0, 1, 0, 0)
	L := []float64{0}
	InteriorFacetLength(L, nil, nil, x, []int32{0, 0})
	assert.InDelta(t, math.Sqrt2, L[0], 1e-14)

	avg := make([]float64, 6)
	InteriorFacetAverage(avg, nil, nil, x, []int32{0, 0})
	assert.InDelta(t, math.Sqrt2, floats.Sum(avg), 1e-14)
	assert.Equal(t, 0.0, avg[0])
	assert.Equal(t, 0.0, avg[3])
}

func TestDegenerateCell(t *testing.T) {
	A := []float64{7, 7, 7, 7, 7, 7, 7, 7, 7}
	Laplace(A, nil, nil, []float64{0, 0, 0, 1, 1, 0, 2, 2, 0}, nil)
	for _, v := range A {
		assert.Equal(t, 7.0, v)
	}
}
