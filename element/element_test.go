package element

import (
	"math"
	"testing"

	femerr "github.com/notargets/FEMAssembly/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellTypeFromNodeCount(t *testing.T) {
	tests := []struct {
		tdim, n int
		want    CellType
		wantErr bool
	}{
		{1, 2, Interval, false},
		{2, 3, Triangle, false},
		{3, 4, Tetrahedron, false},
		{2, 4, Quadrilateral, true},
		{3, 8, Hexahedron, true},
		{2, 6, Point, true},
	}
	for _, tt := range tests {
		ct, err := CellTypeFromNodeCount(tt.tdim, tt.n)
		if tt.wantErr {
			assert.True(t, femerr.IsKind(err, femerr.KindUnsupportedLayout), "tdim=%d n=%d", tt.tdim, tt.n)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, ct)
	}
}

func TestReferenceCell(t *testing.T) {
	for _, ct := range []CellType{Interval, Triangle, Tetrahedron} {
		rc, err := GetReferenceCell(ct)
		require.NoError(t, err)
		assert.Equal(t, int(rc.Dim)+1, rc.NumVertices(), ct.String())
		assert.Equal(t, rc.NumVertices(), rc.NumFacets(), ct.String())
		// Facet i is opposite vertex i
		for f, verts := range rc.FacetVertices {
			assert.NotContains(t, verts, f)
		}
	}
	_, err := GetReferenceCell(Hexahedron)
	assert.True(t, femerr.IsKind(err, femerr.KindUnsupportedLayout))
}

func TestLagrange_Layout(t *testing.T) {
	p1, err := NewLagrange(Triangle, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, p1.NumDofs())
	assert.Equal(t, "P1Tri", p1.GetProperties().ShortName)
	assert.Equal(t, []int{1, 2}, p1.FacetClosureDofs(0))
	assert.Len(t, p1.EntityDofs(0), 3)
	assert.Equal(t, [][]int{{}}, p1.EntityDofs(2))

	p0, err := NewLagrange(Tetrahedron, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, p0.NumDofs())
	assert.Nil(t, p0.FacetClosureDofs(2))
	assert.Equal(t, [][]int{{0}}, p0.EntityDofs(3))
	assert.InDeltaSlice(t, []float64{0.25, 0.25, 0.25}, p0.DofReferencePoints()[0], 1e-15)

	_, err = NewLagrange(Triangle, 2)
	assert.True(t, femerr.IsKind(err, femerr.KindUnsupportedLayout))
	_, err = NewLagrange(Quadrilateral, 1)
	assert.True(t, femerr.IsKind(err, femerr.KindUnsupportedLayout))
}

func TestLagrange_Tabulate(t *testing.T) {
	el, err := NewLagrange(Tetrahedron, 1)
	require.NoError(t, err)

	pts := [][]float64{{0.1, 0.2, 0.3}, {0, 0, 0}, {0, 0, 1}}
	phi, dphi, err := el.Tabulate(pts)
	require.NoError(t, err)

	for q := range pts {
		sum := 0.0
		grad := make([]float64, 3)
		for i := range phi[q] {
			sum += phi[q][i]
			for k := 0; k < 3; k++ {
				grad[k] += dphi[q][i][k]
			}
		}
		assert.InDelta(t, 1.0, sum, 1e-15)
		assert.InDeltaSlice(t, []float64{0, 0, 0}, grad, 1e-15)
	}
	assert.Equal(t, []float64{1, 0, 0, 0}, phi[1])
	assert.Equal(t, []float64{0, 0, 0, 1}, phi[2])

	_, _, err = el.Tabulate([][]float64{{0.1}})
	assert.True(t, femerr.IsKind(err, femerr.KindInvalidArgument))
}

func integrate(q Quadrature, f func(x []float64) float64) float64 {
	s := 0.0
	for i, p := range q.Points {
		s += q.Weights[i] * f(p)
	}
	return s
}

func TestQuadrature_Exactness(t *testing.T) {
	tests := []struct {
		name   string
		cell   CellType
		degree int
		f      func(x []float64) float64
		want   float64
	}{
		{"interval volume", Interval, 0, func(x []float64) float64 { return 1 }, 1},
		{"interval x^3", Interval, 3, func(x []float64) float64 { return x[0] * x[0] * x[0] }, 0.25},
		{"triangle volume", Triangle, 1, func(x []float64) float64 { return 1 }, 0.5},
		{"triangle xy", Triangle, 2, func(x []float64) float64 { return x[0] * x[1] }, 1. / 24.},
		{"triangle x^2y^2", Triangle, 4, func(x []float64) float64 { return x[0] * x[0] * x[1] * x[1] }, 1. / 180.},
		{"tetrahedron volume", Tetrahedron, 0, func(x []float64) float64 { return 1 }, 1. / 6.},
		{"tetrahedron xyz", Tetrahedron, 3, func(x []float64) float64 { return x[0] * x[1] * x[2] }, 1. / 720.},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := NewQuadrature(tt.cell, tt.degree)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, integrate(q, tt.f), 1e-14)
		})
	}

	_, err := NewQuadrature(Hexahedron, 2)
	assert.True(t, femerr.IsKind(err, femerr.KindUnsupportedLayout))
	_, err = NewQuadrature(Triangle, -1)
	assert.True(t, femerr.IsKind(err, femerr.KindInvalidArgument))
}

func TestGaussJacobi(t *testing.T) {
	// Legendre 3 point rule
	x, w := GaussJacobi(0, 0, 2)
	require.Len(t, x, 3)
	assert.InDelta(t, -math.Sqrt(0.6), x[0], 1e-14)
	assert.InDelta(t, 0.0, x[1], 1e-14)
	assert.InDelta(t, 8./9., w[1], 1e-14)

	// Weight (1-x): integral of (1-x) x over [-1,1] is -2/3
	x, w = GaussJacobi(1, 0, 1)
	s := 0.0
	for i := range x {
		s += w[i] * x[i]
	}
	assert.InDelta(t, -2./3., s, 1e-14)

	x, w = GaussJacobi(2, 0, 0)
	assert.InDelta(t, -0.5, x[0], 1e-15)
	assert.InDelta(t, 8./3., w[0], 1e-14)
}
