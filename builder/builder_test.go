package builder

import (
	"testing"

	femerr "github.com/notargets/FEMAssembly/errors"
	"github.com/notargets/FEMAssembly/fem"
	"github.com/notargets/FEMAssembly/kernels"
	"github.com/notargets/FEMAssembly/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitSquare(t *testing.T, n int) (*mesh.Mesh[float64], *fem.FunctionSpace[float64]) {
	m, err := mesh.CreateUnitSquare[float64](n, n)
	require.NoError(t, err)
	V, err := fem.CreateFunctionSpace(m, 1, 1)
	require.NoError(t, err)
	return m, V
}

func TestForm_DefaultEntities(t *testing.T) {
	m, V := unitSquare(t, 3)
	a, err := Form[float64](V, V).
		Cell(0, kernels.Laplace).
		Constant(2).
		Build()
	require.NoError(t, err)
	assert.Equal(t, 2, a.Rank())
	assert.Equal(t, m.NumCells(), a.NumEntities(fem.IntegralKey{Type: fem.Cell, ID: 0}))

	count := func(A, w, c []float64, x []float64, local []int32) { A[0]++ }
	M, err := Functional[float64](m).
		Cell(0, kernels.Area).
		ExteriorFacet(0, count).
		InteriorFacet(0, count).
		Build()
	require.NoError(t, err)
	numExterior := len(m.ExteriorFacets()) / 2
	numInterior := len(m.InteriorFacets()) / 4
	assert.Equal(t, 12, numExterior)
	assert.Equal(t, numExterior, M.NumEntities(fem.IntegralKey{Type: fem.ExteriorFacet, ID: 0}))
	assert.Equal(t, numInterior, M.NumEntities(fem.IntegralKey{Type: fem.InteriorFacet, ID: 0}))

	value, err := fem.AssembleScalar(M)
	require.NoError(t, err)
	assert.InDelta(t, float64(1+numExterior+numInterior), value, 1e-12)
}

func mustBuild(t *testing.T, b *FormBuilder[float64, float64]) *fem.Form[float64, float64] {
	f, err := b.Build()
	require.NoError(t, err)
	return f
}

func TestForm_ExplicitEntities(t *testing.T) {
	_, V := unitSquare(t, 2)
	L := mustBuild(t, Form[float64](V).Cell(3, kernels.Source, 0, 2, 4).Coefficients(fem.NewFunction[float64](V)))
	assert.Equal(t, 3, L.NumEntities(fem.IntegralKey{Type: fem.Cell, ID: 3}))

	// an explicit empty list is kept empty
	L = mustBuild(t, Form[float64](V).Cell(0, kernels.Source, []int32{}...).Coefficients(fem.NewFunction[float64](V)))
	assert.Equal(t, 0, L.NumEntities(fem.IntegralKey{Type: fem.Cell, ID: 0}))
}

func TestForm_Boundary(t *testing.T) {
	m, V := unitSquare(t, 4)
	left := func(x []float64) bool { return x[0] < 1e-12 }
	L := mustBuild(t, Form[float64](V).Boundary(1, kernels.FacetLoad, left).Constant(1))
	key := fem.IntegralKey{Type: fem.ExteriorFacet, ID: 1}
	assert.Equal(t, 4, L.NumEntities(key))

	b := make([]float64, V.DofMap.Extent())
	require.NoError(t, fem.AssembleVector(b, L))
	var total float64
	for i, v := range b {
		total += v
		if v != 0 {
			assert.InDelta(t, 0, m.X[3*i], 1e-12, "load on node %d away from x=0", i)
		}
	}
	assert.InDelta(t, 1.0, total, 1e-12)

	none := mustBuild(t, Form[float64](V).Boundary(2, kernels.FacetLoad, func(x []float64) bool { return x[0] > 5 }))
	assert.Equal(t, 0, none.NumEntities(fem.IntegralKey{Type: fem.ExteriorFacet, ID: 2}))
}

func TestForm_Errors(t *testing.T) {
	m, V := unitSquare(t, 2)
	tests := []struct {
		name string
		b    *FormBuilder[float64, float64]
		kind femerr.Kind
	}{
		{"NilKernel", Form[float64](V).Cell(0, nil), femerr.KindInvalidArgument},
		{"NilMarker", Form[float64](V).Boundary(0, kernels.FacetLoad, nil), femerr.KindInvalidArgument},
		{"NoMesh", Form[float64, float64]().Cell(0, kernels.Area), femerr.KindInvalidArgument},
		{"DuplicateID", Functional[float64](m).Cell(0, kernels.Area).Cell(0, kernels.Area), femerr.KindInvalidArgument},
		{"CellOutOfRange", Functional[float64](m).Cell(0, kernels.Area, 99), femerr.KindInvalidArgument},
		{"RankThree", Form[float64](V, V, V).Cell(0, kernels.Area), femerr.KindInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Build()
			if !femerr.IsKind(err, tt.kind) {
				t.Errorf("Expected %s, got %v", tt.kind, err)
			}
		})
	}
}
