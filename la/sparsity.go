package la

import (
	"fmt"
	"sort"
)

// SparsityPattern records the (row, column) positions a matrix may hold
type SparsityPattern struct {
	rows, cols int
	pending    []map[int32]struct{}
	finalized  [][]int32
}

// NewSparsityPattern creates an empty pattern for an m x n matrix
func NewSparsityPattern(m, n int) *SparsityPattern {
	sp := &SparsityPattern{rows: m, cols: n, pending: make([]map[int32]struct{}, m)}
	return sp
}

// Dims returns the pattern dimensions
func (sp *SparsityPattern) Dims() (int, int) { return sp.rows, sp.cols }

// Insert adds the dense block rows x cols to the pattern
func (sp *SparsityPattern) Insert(rows, cols []int32) error {
	if sp.finalized != nil {
		return fmt.Errorf("sparsity pattern already finalized")
	}
	for _, c := range cols {
		if c < 0 || int(c) >= sp.cols {
			return fmt.Errorf("column %d out of range [0, %d)", c, sp.cols)
		}
	}
	for _, r := range rows {
		if r < 0 || int(r) >= sp.rows {
			return fmt.Errorf("row %d out of range [0, %d)", r, sp.rows)
		}
		if sp.pending[r] == nil {
			sp.pending[r] = make(map[int32]struct{}, len(cols))
		}
		for _, c := range cols {
			sp.pending[r][c] = struct{}{}
		}
	}
	return nil
}

// InsertDiagonal adds (i, i) for each row i
func (sp *SparsityPattern) InsertDiagonal(rows []int32) error {
	for _, r := range rows {
		if err := sp.Insert([]int32{r}, []int32{r}); err != nil {
			return err
		}
	}
	return nil
}

// Finalize sorts the column lists. No further insertion is allowed.
func (sp *SparsityPattern) Finalize() {
	if sp.finalized != nil {
		return
	}
	sp.finalized = make([][]int32, sp.rows)
	for r, set := range sp.pending {
		cols := make([]int32, 0, len(set))
		for c := range set {
			cols = append(cols, c)
		}
		sort.Slice(cols, func(i, j int) bool { return cols[i] < cols[j] })
		sp.finalized[r] = cols
	}
	sp.pending = nil
}

// Finalized reports whether Finalize has been called
func (sp *SparsityPattern) Finalized() bool { return sp.finalized != nil }

// RowColumns returns the sorted columns of row r. The pattern must be finalized.
func (sp *SparsityPattern) RowColumns(r int) []int32 {
	return sp.finalized[r]
}

// Contains reports whether (r, c) is in the finalized pattern
func (sp *SparsityPattern) Contains(r, c int32) bool {
	if r < 0 || int(r) >= sp.rows {
		return false
	}
	cols := sp.finalized[r]
	i := sort.Search(len(cols), func(i int) bool { return cols[i] >= c })
	return i < len(cols) && cols[i] == c
}

// NumNonzeros returns the number of positions in the finalized pattern
func (sp *SparsityPattern) NumNonzeros() int {
	n := 0
	for _, cols := range sp.finalized {
		n += len(cols)
	}
	return n
}
