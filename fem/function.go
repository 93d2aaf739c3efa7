package fem

import (
	femerr "github.com/notargets/FEMAssembly/errors"
)

// Function is a finite element function: a space and its dof values over the full local
// extent, owned entries first then ghosts
type Function[T Scalar, U Real] struct {
	Name  string
	Space *FunctionSpace[U]
	X     []T
}

// NewFunction returns a zero function on V
func NewFunction[T Scalar, U Real](V *FunctionSpace[U]) *Function[T, U] {
	return &Function[T, U]{Space: V, X: make([]T, V.DofMap.Extent())}
}

// Interpolate sets every dof of f to fn evaluated at the dof coordinate for that component
func (f *Function[T, U]) Interpolate(fn func(x []U, component int) T) error {
	coords, err := f.Space.TabulateDofCoordinates()
	if err != nil {
		return err
	}
	dm := f.Space.DofMap
	bs := int32(dm.Bs)
	for c := int32(0); int(c) < dm.NumCells(); c++ {
		for _, d := range dm.CellDofs(c) {
			block := int(d) * dm.Bs / dm.IndexMapBs
			for k := int32(0); k < bs; k++ {
				comp := int(k)
				if len(f.Space.component) > 0 {
					comp = f.Space.component[len(f.Space.component)-1]
				}
				f.X[d*bs+k] = fn(coords[3*block:3*block+3], comp)
			}
		}
	}
	return nil
}

// Constant is a tensor of scalars shared by all entities of a form
type Constant[T Scalar] struct {
	Value []T
	Shape []int
}

// NewConstant returns a scalar constant
func NewConstant[T Scalar](v T) *Constant[T] {
	return &Constant[T]{Value: []T{v}}
}

// NewTensorConstant returns a constant with the given shape, values row-major
func NewTensorConstant[T Scalar](value []T, shape ...int) (*Constant[T], error) {
	size := 1
	for _, s := range shape {
		if s < 1 {
			return nil, femerr.InvalidArgument(femerr.OpBuild, "invalid constant shape %v", shape)
		}
		size *= s
	}
	if size != len(value) {
		return nil, femerr.InvalidArgument(femerr.OpBuild,
			"constant of shape %v needs %d values, got %d", shape, size, len(value))
	}
	return &Constant[T]{Value: append([]T(nil), value...), Shape: append([]int(nil), shape...)}, nil
}
