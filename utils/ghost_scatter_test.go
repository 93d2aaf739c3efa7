package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGhostScatter_Indices(t *testing.T) {
	gs, err := NewGhostScatter(twoRankMaps(t), 1)
	require.NoError(t, err)
	require.NoError(t, gs.Verify())

	// Rank 0 holds global 3 (owned by rank 1, local 0) at local position 3
	assert.Equal(t, []int32{3}, gs.PickIndices[0][1].Indices)
	assert.Equal(t, []int32{0}, gs.PlaceIndices[1][0].Indices)
	// Rank 1 holds global 2 (owned by rank 0, local 2) at local position 2
	assert.Equal(t, []int32{2}, gs.PickIndices[1][0].Indices)
	assert.Equal(t, []int32{2}, gs.PlaceIndices[0][1].Indices)
	assert.Empty(t, gs.PickIndices[0][0].Indices)
}

func TestGhostScatter_ReverseAdd(t *testing.T) {
	gs, err := NewGhostScatter(twoRankMaps(t), 2)
	require.NoError(t, err)

	// Block size 2: rank 0 extent 2*(3+1), rank 1 extent 2*(2+1)
	a0 := []float64{1, 1, 2, 2, 3, 3, 10, 20}
	a1 := []float64{4, 4, 5, 5, 30, 40}
	require.NoError(t, ScatterReverseAdd(gs, [][]float64{a0, a1}))

	assert.Equal(t, []float64{1, 1, 2, 2, 33, 43, 10, 20}, a0)
	assert.Equal(t, []float64{14, 24, 5, 5, 30, 40}, a1)
}

func TestGhostScatter_Forward(t *testing.T) {
	gs, err := NewGhostScatter(twoRankMaps(t), 1)
	require.NoError(t, err)

	a0 := []complex128{1, 2, 3, 0}
	a1 := []complex128{4, 5, 0}
	require.NoError(t, ScatterForward(gs, [][]complex128{a0, a1}))

	assert.Equal(t, complex128(4), a0[3])
	assert.Equal(t, complex128(3), a1[2])
}

func TestGhostScatter_Errors(t *testing.T) {
	_, err := NewGhostScatter(nil, 1)
	assert.Error(t, err)

	maps := twoRankMaps(t)
	_, err = NewGhostScatter(maps, 0)
	assert.Error(t, err)

	_, err = NewGhostScatter([]*IndexMap{maps[1], maps[0]}, 1)
	assert.Error(t, err)

	gs, err := NewGhostScatter(maps, 1)
	require.NoError(t, err)
	assert.Error(t, ScatterReverseAdd(gs, [][]float64{{1}}))
}
