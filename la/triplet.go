package la

import (
	"fmt"

	"github.com/notargets/FEMAssembly/utils"
)

// tripletBlock is one recorded insertion call
type tripletBlock[T utils.Scalar] struct {
	rows, cols []int32
	values     []T
	overwrite  bool
}

// Triplet records insertion calls in order so they can be replayed into another target.
// It is the per-worker accumulator of the parallel runner.
type Triplet[T utils.Scalar] struct {
	blocks []tripletBlock[T]
	nnz    int
}

// NewTriplet creates an empty triplet log
func NewTriplet[T utils.Scalar]() *Triplet[T] {
	return &Triplet[T]{}
}

func (t *Triplet[T]) record(rows, cols []int32, values []T, overwrite bool) error {
	if err := checkBlock(rows, cols, values); err != nil {
		return err
	}
	t.blocks = append(t.blocks, tripletBlock[T]{
		rows:      append([]int32(nil), rows...),
		cols:      append([]int32(nil), cols...),
		values:    append([]T(nil), values...),
		overwrite: overwrite,
	})
	t.nnz += len(values)
	return nil
}

func (t *Triplet[T]) Add(rows, cols []int32, values []T) error {
	return t.record(rows, cols, values, false)
}

func (t *Triplet[T]) Set(rows, cols []int32, values []T) error {
	return t.record(rows, cols, values, true)
}

// Len returns the number of recorded entries (not blocks)
func (t *Triplet[T]) Len() int { return t.nnz }

// Reset discards all recorded entries
func (t *Triplet[T]) Reset() {
	t.blocks = t.blocks[:0]
	t.nnz = 0
}

// Replay forwards every recorded call to dst in recording order
func (t *Triplet[T]) Replay(dst MatSet[T]) error {
	for i, b := range t.blocks {
		var err error
		if b.overwrite {
			err = dst.Set(b.rows, b.cols, b.values)
		} else {
			err = dst.Add(b.rows, b.cols, b.values)
		}
		if err != nil {
			return fmt.Errorf("replay of block %d failed: %w", i, err)
		}
	}
	return nil
}

// ToDense applies the recorded calls to a zero row-major m x n array
func (t *Triplet[T]) ToDense(m, n int) ([]T, error) {
	a := make([]T, m*n)
	for _, b := range t.blocks {
		for i, r := range b.rows {
			for j, c := range b.cols {
				if int(r) >= m || int(c) >= n || r < 0 || c < 0 {
					return nil, fmt.Errorf("entry (%d, %d) outside %d x %d", r, c, m, n)
				}
				v := b.values[i*len(b.cols)+j]
				if b.overwrite {
					a[int(r)*n+int(c)] = v
				} else {
					a[int(r)*n+int(c)] += v
				}
			}
		}
	}
	return a, nil
}
