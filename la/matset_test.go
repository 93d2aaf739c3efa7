package la

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDenseMatrix_AddSet(t *testing.T) {
	d := NewDenseMatrix(3, 3)
	block := []float64{1, 2, 3, 4}

	require.NoError(t, d.Add([]int32{0, 2}, []int32{1, 2}, block))
	require.NoError(t, d.Add([]int32{0, 2}, []int32{1, 2}, block))
	assert.Equal(t, 2.0, d.M.At(0, 1))
	assert.Equal(t, 8.0, d.M.At(2, 2))

	require.NoError(t, d.Set([]int32{2}, []int32{2}, []float64{-1}))
	assert.Equal(t, -1.0, d.M.At(2, 2))
	assert.Equal(t, 6.0, d.M.At(2, 1))

	assert.Error(t, d.Add([]int32{3}, []int32{0}, []float64{1}))
	assert.Error(t, d.Add([]int32{0}, []int32{-1}, []float64{1}))
	assert.Error(t, d.Set([]int32{0}, []int32{0}, []float64{1, 2}))
}

func TestSparseMatrix_Pattern(t *testing.T) {
	sp := NewSparsityPattern(3, 3)
	require.NoError(t, sp.Insert([]int32{0, 1}, []int32{0, 1}))
	require.NoError(t, sp.InsertDiagonal([]int32{2}))
	assert.Error(t, sp.Insert([]int32{3}, []int32{0}))

	_, err := NewSparseMatrixFromPattern(sp)
	assert.Error(t, err)

	sp.Finalize()
	assert.Equal(t, 5, sp.NumNonzeros())
	assert.Equal(t, []int32{0, 1}, sp.RowColumns(1))
	assert.True(t, sp.Contains(2, 2))
	assert.False(t, sp.Contains(0, 2))
	assert.Error(t, sp.Insert([]int32{0}, []int32{0}))

	s, err := NewSparseMatrixFromPattern(sp)
	require.NoError(t, err)
	require.NoError(t, s.Add([]int32{0, 1}, []int32{0, 1}, []float64{1, 2, 3, 4}))
	require.NoError(t, s.Add([]int32{1}, []int32{1}, []float64{1}))
	assert.Equal(t, 5.0, s.At(1, 1))
	assert.Error(t, s.Add([]int32{0}, []int32{2}, []float64{1}))

	require.NoError(t, s.Set([]int32{2}, []int32{2}, []float64{7}))
	assert.Equal(t, 5, s.NNZ())

	y, err := s.MulVec([]float64{1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 8, 7}, y)

	_, err = s.MulVec([]float64{1})
	assert.Error(t, err)

	dense := s.ToDense()
	assert.Equal(t, 2.0, dense.At(0, 1))
}

func TestTriplet_Replay(t *testing.T) {
	tr := NewTriplet[float64]()
	require.NoError(t, tr.Add([]int32{0}, []int32{0, 1}, []float64{1, 2}))
	require.NoError(t, tr.Add([]int32{0}, []int32{0}, []float64{3}))
	require.NoError(t, tr.Set([]int32{1}, []int32{1}, []float64{9}))
	assert.Error(t, tr.Add([]int32{0}, []int32{0}, nil))
	assert.Equal(t, 4, tr.Len())

	d := NewDenseMatrix(2, 2)
	require.NoError(t, tr.Replay(d))
	assert.Equal(t, 4.0, d.M.At(0, 0))
	assert.Equal(t, 2.0, d.M.At(0, 1))
	assert.Equal(t, 9.0, d.M.At(1, 1))

	a, err := tr.ToDense(2, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 2, 0, 9}, a)

	_, err = tr.ToDense(1, 1)
	assert.Error(t, err)

	tr.Reset()
	assert.Equal(t, 0, tr.Len())
	assert.NoError(t, NewTriplet[float64]().Replay(nil))
}

func TestTriplet_ReplayFailure(t *testing.T) {
	tr := NewTriplet[float64]()
	require.NoError(t, tr.Add([]int32{5}, []int32{0}, []float64{1}))
	err := tr.Replay(NewDenseMatrix(2, 2))
	assert.Error(t, err)
}

func TestOffset(t *testing.T) {
	d := NewDenseMatrix(4, 4)
	o := NewOffset[float64](d, 2, 1)
	require.NoError(t, o.Add([]int32{0, 1}, []int32{0}, []float64{1, 2}))
	require.NoError(t, o.Set([]int32{1}, []int32{2}, []float64{5}))
	assert.Equal(t, 1.0, d.M.At(2, 1))
	assert.Equal(t, 2.0, d.M.At(3, 1))
	assert.Equal(t, 5.0, d.M.At(3, 3))
}

func TestLocked_Concurrent(t *testing.T) {
	tr := NewTriplet[complex128]()
	l := NewLocked[complex128](tr)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = l.Add([]int32{0}, []int32{0}, []complex128{1i})
			}
		}()
	}
	wg.Wait()
	require.NoError(t, l.Set([]int32{1}, []int32{1}, []complex128{2}))

	a, err := tr.ToDense(2, 2)
	require.NoError(t, err)
	assert.Equal(t, complex(0, 800), a[0])
	assert.Equal(t, complex128(2), a[3])
}
