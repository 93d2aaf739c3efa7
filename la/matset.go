package la

import (
	"fmt"
	"sync"

	"github.com/notargets/FEMAssembly/utils"
)

// MatSet is the insertion capability for matrix storage. values is a row-major block of
// len(rows) x len(cols) entries. Add accumulates into the target, Set overwrites.
type MatSet[T utils.Scalar] interface {
	Add(rows, cols []int32, values []T) error
	Set(rows, cols []int32, values []T) error
}

func checkBlock[T utils.Scalar](rows, cols []int32, values []T) error {
	if len(values) != len(rows)*len(cols) {
		return fmt.Errorf("value block has %d entries, expected %d x %d", len(values), len(rows), len(cols))
	}
	return nil
}

// Locked serializes access to a target shared between goroutines
type Locked[T utils.Scalar] struct {
	mu     sync.Mutex
	Target MatSet[T]
}

// NewLocked wraps target with a mutex
func NewLocked[T utils.Scalar](target MatSet[T]) *Locked[T] {
	return &Locked[T]{Target: target}
}

func (l *Locked[T]) Add(rows, cols []int32, values []T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Target.Add(rows, cols, values)
}

func (l *Locked[T]) Set(rows, cols []int32, values []T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Target.Set(rows, cols, values)
}

// Offset shifts row and column indices before forwarding to Target. It places the matrix of
// one bilinear form as a sub-block of a larger system.
type Offset[T utils.Scalar] struct {
	Target    MatSet[T]
	RowOffset int32
	ColOffset int32

	rows, cols []int32
}

// NewOffset creates a block view of target starting at (rowOffset, colOffset)
func NewOffset[T utils.Scalar](target MatSet[T], rowOffset, colOffset int32) *Offset[T] {
	return &Offset[T]{Target: target, RowOffset: rowOffset, ColOffset: colOffset}
}

func (o *Offset[T]) shift(rows, cols []int32) ([]int32, []int32) {
	o.rows = o.rows[:0]
	for _, r := range rows {
		o.rows = append(o.rows, r+o.RowOffset)
	}
	o.cols = o.cols[:0]
	for _, c := range cols {
		o.cols = append(o.cols, c+o.ColOffset)
	}
	return o.rows, o.cols
}

func (o *Offset[T]) Add(rows, cols []int32, values []T) error {
	r, c := o.shift(rows, cols)
	return o.Target.Add(r, c, values)
}

func (o *Offset[T]) Set(rows, cols []int32, values []T) error {
	r, c := o.shift(rows, cols)
	return o.Target.Set(r, c, values)
}
