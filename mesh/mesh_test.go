package mesh

import (
	"math"
	"testing"

	"github.com/notargets/FEMAssembly/element"
	femerr "github.com/notargets/FEMAssembly/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUnitInterval(t *testing.T) {
	m, err := CreateUnitInterval[float64](4)
	require.NoError(t, err)
	assert.Equal(t, element.Interval, m.CellType)
	assert.Equal(t, 4, m.NumCells())
	assert.Equal(t, 5, m.NumNodes())
	assert.Len(t, m.ExteriorFacets(), 2*2)
	assert.Len(t, m.InteriorFacets(), 3*4)
	assert.InDelta(t, 0.75, m.X[3*3], 1e-15)
}

func TestCreateUnitSquareTopology(t *testing.T) {
	m, err := CreateUnitSquare[float64](2, 2)
	require.NoError(t, err)
	assert.Equal(t, element.Triangle, m.CellType)
	assert.Equal(t, 8, m.NumCells())
	assert.Equal(t, 9, m.NumNodes())
	// 8 boundary edges and 8 shared edges
	assert.Len(t, m.ExteriorFacets(), 8*2)
	assert.Len(t, m.InteriorFacets(), 8*4)

	interior := m.InteriorFacets()
	for i := 0; i < len(interior); i += 4 {
		f0, err := m.FacetNodes(interior[i], interior[i+1])
		require.NoError(t, err)
		f1, err := m.FacetNodes(interior[i+2], interior[i+3])
		require.NoError(t, err)
		assert.ElementsMatch(t, f0, f1, "interior facet %d", i/4)
		assert.NotEqual(t, interior[i], interior[i+2])
	}
}

func tetVolume(m *Mesh[float64], c int32) float64 {
	x := m.AppendCoordinateDofs(nil, c)
	var d [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d[i][j] = x[3*(i+1)+j] - x[j]
		}
	}
	det := d[0][0]*(d[1][1]*d[2][2]-d[1][2]*d[2][1]) -
		d[0][1]*(d[1][0]*d[2][2]-d[1][2]*d[2][0]) +
		d[0][2]*(d[1][0]*d[2][1]-d[1][1]*d[2][0])
	return math.Abs(det) / 6
}

func TestCreateUnitCube(t *testing.T) {
	for _, tc := range []struct {
		n                  int
		exterior, interior int
	}{
		{1, 12, 6},
		{2, 48, 72},
	} {
		m, err := CreateUnitCube[float64](tc.n)
		require.NoError(t, err)
		assert.Equal(t, element.Tetrahedron, m.CellType)
		assert.Equal(t, 6*tc.n*tc.n*tc.n, m.NumCells())
		assert.Len(t, m.ExteriorFacets(), 2*tc.exterior)
		assert.Len(t, m.InteriorFacets(), 4*tc.interior)

		var vol float64
		for c := int32(0); int(c) < m.NumCells(); c++ {
			v := tetVolume(m, c)
			assert.Greater(t, v, 0.0)
			vol += v
		}
		assert.InDelta(t, 1.0, vol, 1e-12)
	}
}

func TestLocateBoundaryFacets(t *testing.T) {
	m, err := CreateUnitSquare[float64](3, 2)
	require.NoError(t, err)
	left, err := m.LocateBoundaryFacets(func(x []float64) bool { return math.Abs(x[0]) < 1e-12 })
	require.NoError(t, err)
	assert.Len(t, left, 2*2)
	for i := 0; i < len(left); i += 2 {
		nodes, err := m.FacetNodes(left[i], left[i+1])
		require.NoError(t, err)
		for _, n := range nodes {
			assert.InDelta(t, 0.0, m.X[3*n], 1e-12)
		}
	}

	bottom, err := m.LocateBoundaryFacets(func(x []float64) bool { return math.Abs(x[1]) < 1e-12 })
	require.NoError(t, err)
	assert.Len(t, bottom, 3*2)
}

func TestNewValidation(t *testing.T) {
	x := []float64{0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 1, 0}

	_, err := New(2, x, []int32{0, 1, 2, 3}, 4, nil, nil)
	assert.True(t, femerr.IsKind(err, femerr.KindUnsupportedLayout))

	_, err = New(2, x, []int32{0, 1, 7}, 3, nil, nil)
	assert.True(t, femerr.IsKind(err, femerr.KindInvalidArgument))

	_, err = New(2, x[:5], []int32{0, 1, 2}, 3, nil, nil)
	assert.True(t, femerr.IsKind(err, femerr.KindInvalidArgument))

	_, err = CreateUnitSquare[float64](0, 1)
	assert.True(t, femerr.IsKind(err, femerr.KindInvalidArgument))

	m, err := New(2, x, []int32{0, 1, 2, 1, 3, 2}, 3, nil, nil)
	require.NoError(t, err)
	_, err = m.FacetNodes(0, 3)
	assert.Error(t, err)
	assert.Contains(t, m.String(), "cells=2")
}
