package la

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// SparseMatrix is a MatSet over a dictionary-of-keys sparse matrix. When Pattern is set,
// writes outside the pattern are rejected, mirroring a preallocated distributed matrix.
type SparseMatrix struct {
	DOK     *sparse.DOK
	Pattern *SparsityPattern
}

// NewSparseMatrix allocates an m x n matrix without a pattern restriction
func NewSparseMatrix(m, n int) *SparseMatrix {
	return &SparseMatrix{DOK: sparse.NewDOK(m, n)}
}

// NewSparseMatrixFromPattern allocates a matrix restricted to a finalized pattern
func NewSparseMatrixFromPattern(sp *SparsityPattern) (*SparseMatrix, error) {
	if !sp.Finalized() {
		return nil, fmt.Errorf("sparsity pattern must be finalized")
	}
	m, n := sp.Dims()
	return &SparseMatrix{DOK: sparse.NewDOK(m, n), Pattern: sp}, nil
}

func (s *SparseMatrix) check(rows, cols []int32, values []float64) error {
	if err := checkBlock(rows, cols, values); err != nil {
		return err
	}
	m, n := s.DOK.Dims()
	for _, r := range rows {
		if r < 0 || int(r) >= m {
			return fmt.Errorf("row %d out of range [0, %d)", r, m)
		}
	}
	for _, c := range cols {
		if c < 0 || int(c) >= n {
			return fmt.Errorf("column %d out of range [0, %d)", c, n)
		}
	}
	if s.Pattern != nil {
		for _, r := range rows {
			for _, c := range cols {
				if !s.Pattern.Contains(r, c) {
					return fmt.Errorf("new nonzero at (%d, %d) outside the sparsity pattern", r, c)
				}
			}
		}
	}
	return nil
}

func (s *SparseMatrix) Add(rows, cols []int32, values []float64) error {
	if err := s.check(rows, cols, values); err != nil {
		return err
	}
	nc := len(cols)
	for i, r := range rows {
		for j, c := range cols {
			s.DOK.Set(int(r), int(c), s.DOK.At(int(r), int(c))+values[i*nc+j])
		}
	}
	return nil
}

func (s *SparseMatrix) Set(rows, cols []int32, values []float64) error {
	if err := s.check(rows, cols, values); err != nil {
		return err
	}
	nc := len(cols)
	for i, r := range rows {
		for j, c := range cols {
			s.DOK.Set(int(r), int(c), values[i*nc+j])
		}
	}
	return nil
}

// At returns entry (i, j)
func (s *SparseMatrix) At(i, j int) float64 { return s.DOK.At(i, j) }

// Dims returns the matrix dimensions
func (s *SparseMatrix) Dims() (int, int) { return s.DOK.Dims() }

// NNZ returns the number of stored entries
func (s *SparseMatrix) NNZ() int { return s.DOK.NNZ() }

// ToCSR converts the stored entries to compressed sparse row format
func (s *SparseMatrix) ToCSR() *sparse.CSR { return s.DOK.ToCSR() }

// ToDense returns a dense copy
func (s *SparseMatrix) ToDense() *mat.Dense { return s.DOK.ToDense() }

// MulVec computes y = A x
func (s *SparseMatrix) MulVec(x []float64) ([]float64, error) {
	m, n := s.DOK.Dims()
	if len(x) != n {
		return nil, fmt.Errorf("vector length %d does not match %d columns", len(x), n)
	}
	y := make([]float64, m)
	s.DOK.DoNonZero(func(i, j int, v float64) {
		y[i] += v * x[j]
	})
	return y, nil
}
