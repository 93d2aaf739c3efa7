package fem

import (
	"errors"
	"testing"

	"github.com/notargets/FEMAssembly/element"
	femerr "github.com/notargets/FEMAssembly/errors"
	"github.com/notargets/FEMAssembly/kernels"
	"github.com/notargets/FEMAssembly/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackConstants(t *testing.T) {
	m := unitInterval(t, 1)
	tensor, err := NewTensorConstant([]float64{1, 2, 3, 4}, 2, 2)
	require.NoError(t, err)
	f := cellForm(t, m, kernels.Area, nil, nil, NewConstant(2.0), tensor)
	assert.Equal(t, []float64{2, 1, 2, 3, 4}, PackConstants(f))

	_, err = NewTensorConstant([]float64{1, 2, 3}, 2, 2)
	assert.True(t, femerr.IsKind(err, femerr.KindInvalidArgument))
}

func TestPackCoefficients_Layout(t *testing.T) {
	m := unitInterval(t, 2)
	u := NewFunction[float64](space(t, m, 1, 1))
	copy(u.X, []float64{10, 20, 30})
	p := NewFunction[float64](space(t, m, 0, 1))
	copy(p.X, []float64{5, 6})

	interior := m.InteriorFacets()
	require.Equal(t, []int32{0, 0, 1, 1}, interior)
	f, err := NewForm(nil, map[IntegralType][]Integral[float64, float64]{
		Cell:          {{ID: 0, Kernel: kernels.Area, Entities: []int32{0, 1}}},
		InteriorFacet: {{ID: 0, Kernel: kernels.InteriorFacetLength, Entities: interior}},
		ExteriorFacet: {{ID: 0, Kernel: kernels.FacetLoad}},
	}, []*Function[float64, float64]{u, p}, nil, m)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3}, f.CoefficientOffsets())

	storage := AllocateCoefficientStorage(f)
	// integrals without entities get no storage
	assert.Len(t, storage, 2)
	require.NoError(t, PackCoefficients(f, storage))

	cells := storage[IntegralKey{Cell, 0}]
	assert.Equal(t, 3, cells.Stride)
	assert.Equal(t, []float64{10, 20, 5, 20, 30, 6}, cells.Data)

	facets := storage[IntegralKey{InteriorFacet, 0}]
	assert.Equal(t, 6, facets.Stride)
	assert.Equal(t, []float64{10, 20, 20, 30, 5, 6}, facets.Data)

	// storage sized for another form is rejected
	delete(storage, IntegralKey{Cell, 0})
	assert.True(t, femerr.IsKind(PackCoefficients(f, storage), femerr.KindInvalidArgument))
}

func TestPackCoefficients_Undefined(t *testing.T) {
	m := unitInterval(t, 2)
	el, err := element.NewLagrange(element.Interval, 1)
	require.NoError(t, err)
	// a dofmap defined on the first cell only
	dm, err := NewDofMap(utils.NewSerialIndexMap(3), 1, 1, []int32{0, 1}, 2)
	require.NoError(t, err)
	partial, err := NewFunctionSpace(m, el, dm)
	require.NoError(t, err)
	g := NewFunction[float64](partial)
	g.Name = "g"

	f := cellForm(t, m, kernels.Source, []*FunctionSpace[float64]{space(t, m, 1, 1)}, []*Function[float64, float64]{g})
	b := make([]float64, 3)
	err = AssembleVector(b, f)
	require.Error(t, err)
	assert.True(t, femerr.IsKind(err, femerr.KindInvalidCoefficient))

	var fe *femerr.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 1, fe.Entity)
	assert.Equal(t, femerr.OpPack, fe.Op)
	assert.Equal(t, "cell:0", fe.Integral)
	assert.Contains(t, err.Error(), "(g)")
	assert.Equal(t, []float64{0, 0, 0}, b, "packing fails before any write")
}

func TestPackCoefficients_ForeignMesh(t *testing.T) {
	m := unitInterval(t, 2)
	other := unitInterval(t, 8)
	g := NewFunction[float64](space(t, other, 1, 1))
	g.Name = "g"
	for i := range g.X {
		g.X[i] = float64(i)
	}

	f := cellForm(t, m, kernels.Source, []*FunctionSpace[float64]{space(t, m, 1, 1)}, []*Function[float64, float64]{g})
	b := make([]float64, 3)
	err := AssembleVector(b, f)
	if !femerr.IsKind(err, femerr.KindInvalidCoefficient) {
		t.Errorf("Expected %s, got %v", femerr.KindInvalidCoefficient, err)
	}
	var fe *femerr.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 0, fe.Entity)
	assert.Contains(t, err.Error(), "different mesh")
	assert.Equal(t, []float64{0, 0, 0}, b)
}
