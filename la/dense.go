package la

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// DenseMatrix is a MatSet over a gonum dense matrix
type DenseMatrix struct {
	M *mat.Dense
}

// NewDenseMatrix allocates a zero m x n target
func NewDenseMatrix(m, n int) *DenseMatrix {
	return &DenseMatrix{M: mat.NewDense(m, n, nil)}
}

func (d *DenseMatrix) check(rows, cols []int32, values []float64) error {
	if err := checkBlock(rows, cols, values); err != nil {
		return err
	}
	m, n := d.M.Dims()
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
	return nil
}

func (d *DenseMatrix) Add(rows, cols []int32, values []float64) error {
	if err := d.check(rows, cols, values); err != nil {
		return err
	}
	nc := len(cols)
	for i, r := range rows {
		for j, c := range cols {
			d.M.Set(int(r), int(c), d.M.At(int(r), int(c))+values[i*nc+j])
		}
	}
	return nil
}

func (d *DenseMatrix) Set(rows, cols []int32, values []float64) error {
	if err := d.check(rows, cols, values); err != nil {
		return err
	}
	nc := len(cols)
	for i, r := range rows {
		for j, c := range cols {
			d.M.Set(int(r), int(c), values[i*nc+j])
		}
	}
	return nil
}
