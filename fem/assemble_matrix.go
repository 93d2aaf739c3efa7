package fem

import (
	femerr "github.com/notargets/FEMAssembly/errors"
	"github.com/notargets/FEMAssembly/la"
)

// BuildDofMarkers derives the row and column markers of a from bcs. A marker stays nil until a
// condition on a subspace of its argument space is seen; otherwise it spans the full extent.
func BuildDofMarkers[T Scalar, U Real](a *Form[T, U], bcs []*DirichletBC[T, U]) (marker0, marker1 []bool, err error) {
	if err := a.checkRank(femerr.OpAssembleMatrix, 2); err != nil {
		return nil, nil, err
	}
	V0, V1 := a.spaces[0], a.spaces[1]
	for _, bc := range bcs {
		if bc == nil {
			continue
		}
		if V0.Contains(bc.space) {
			if marker0 == nil {
				marker0 = make([]bool, V0.DofMap.Extent())
			}
			if err := bc.MarkDofs(marker0); err != nil {
				return nil, nil, err
			}
		}
		if V1.Contains(bc.space) {
			if marker1 == nil {
				marker1 = make([]bool, V1.DofMap.Extent())
			}
			if err := bc.MarkDofs(marker1); err != nil {
				return nil, nil, err
			}
		}
	}
	return marker0, marker1, nil
}

// AssembleMatrix packs a, derives dof markers from bcs and adds the local blocks into A. Rows
// and columns of constrained dofs are zeroed before insertion; the diagonal is not set.
func AssembleMatrix[T Scalar, U Real](A la.MatSet[T], a *Form[T, U], bcs []*DirichletBC[T, U]) error {
	marker0, marker1, err := BuildDofMarkers(a, bcs)
	if err != nil {
		return err
	}
	constants, coeffs, err := pack(a)
	if err != nil {
		return err
	}
	return AssembleMatrixPacked(A, a, constants, coeffs, marker0, marker1)
}

// AssembleMatrixPacked is AssembleMatrix with caller-packed data and explicit markers. A nil
// marker eliminates nothing.
func AssembleMatrixPacked[T Scalar, U Real](A la.MatSet[T], a *Form[T, U], constants []T, coeffs Coefficients[T],
	marker0, marker1 []bool) error {
	if err := a.checkRank(femerr.OpAssembleMatrix, 2); err != nil {
		return err
	}
	for _, key := range a.IntegralKeys() {
		if err := AssembleMatrixIntegral(A, a, key, nil, constants, coeffs, marker0, marker1); err != nil {
			return err
		}
	}
	return nil
}

// AssembleMatrixIntegral adds the blocks of the selected entity positions of one integral (all
// when positions is nil) into A
func AssembleMatrixIntegral[T Scalar, U Real](A la.MatSet[T], a *Form[T, U], key IntegralKey, positions []int,
	constants []T, coeffs Coefficients[T], marker0, marker1 []bool) error {
	const op = femerr.OpAssembleMatrix
	if err := a.checkRank(op, 2); err != nil {
		return err
	}
	if A == nil {
		return femerr.InvalidArgument(op, "matrix insertion target is nil")
	}
	dm0, dm1 := a.spaces[0].DofMap, a.spaces[1].DofMap
	if marker0 != nil && len(marker0) != dm0.Extent() {
		return femerr.InvalidArgument(op, "row marker length %d does not match the test space extent %d", len(marker0), dm0.Extent())
	}
	if marker1 != nil && len(marker1) != dm1.Extent() {
		return femerr.InvalidArgument(op, "column marker length %d does not match the trial space extent %d", len(marker1), dm1.Extent())
	}
	d, err := newDomain(op, a, key)
	if err != nil {
		return err
	}
	if err := checkDofmapCovers(op, a, key, dm0); err != nil {
		return err
	}
	if err := checkDofmapCovers(op, a, key, dm1); err != nil {
		return err
	}
	pc, err := coefficientsFor(op, a, key, coeffs)
	if err != nil {
		return err
	}
	nc := key.Type.NumCells()
	var (
		rows = make([]int32, 0, nc*dm0.Width())
		cols = make([]int32, 0, nc*dm1.Width())
		Ae   = make([]T, nc*dm0.Width()*nc*dm1.Width())
	)
	return d.each(op, positions, func(e entity[U]) error {
		tabulate(d.integral.Kernel, Ae, pc.Entity(e.pos), constants, e.x, e.local)
		rows = appendEntityDofs(rows[:0], dm0, e.cells)
		cols = appendEntityDofs(cols[:0], dm1, e.cells)
		eliminate(Ae, rows, cols, marker0, marker1)
		if err := A.Add(rows, cols, Ae); err != nil {
			return femerr.InsertionFailure(op, key.String(), e.pos, err)
		}
		return nil
	})
}

// eliminate zeroes the rows and columns of the local block Ae whose dofs are marked
func eliminate[T Scalar](Ae []T, rows, cols []int32, marker0, marker1 []bool) {
	ncols := len(cols)
	if marker0 != nil {
		for i, dof := range rows {
			if marker0[dof] {
				clear(Ae[i*ncols : (i+1)*ncols])
			}
		}
	}
	if marker1 != nil {
		for j, dof := range cols {
			if marker1[dof] {
				for i := range rows {
					Ae[i*ncols+j] = 0
				}
			}
		}
	}
}

// SetDiagonal overwrites (row, row) with diagonal for each row, one row per call of A.Set
func SetDiagonal[T Scalar](A la.MatSet[T], rows []int32, diagonal T) error {
	if A == nil {
		return femerr.InvalidArgument(femerr.OpSetDiagonal, "matrix insertion target is nil")
	}
	value := []T{diagonal}
	for i := range rows {
		row := rows[i : i+1]
		if err := A.Set(row, row, value); err != nil {
			return femerr.InsertionFailure(femerr.OpSetDiagonal, "", i, err)
		}
	}
	return nil
}

// SetDiagonalBCs overwrites the diagonal at the locally owned dofs of every condition on V
// or one of its subspaces. Ghost rows are left to their owner.
func SetDiagonalBCs[T Scalar, U Real](A la.MatSet[T], V *FunctionSpace[U], bcs []*DirichletBC[T, U], diagonal T) error {
	if V == nil {
		return femerr.InvalidArgument(femerr.OpSetDiagonal, "function space is nil")
	}
	for _, bc := range bcs {
		if bc == nil || !V.Contains(bc.space) {
			continue
		}
		dofs, owned := bc.DofIndices()
		if err := SetDiagonal(A, dofs[:owned], diagonal); err != nil {
			return err
		}
	}
	return nil
}

// CreateSparsityPattern inserts the unrolled (row, col) dof pairs of every entity of every
// integral of a. The pattern is returned unfinalized so the caller can add entries.
func CreateSparsityPattern[T Scalar, U Real](a *Form[T, U]) (*la.SparsityPattern, error) {
	const op = femerr.OpSparsity
	if err := a.checkRank(op, 2); err != nil {
		return nil, err
	}
	dm0, dm1 := a.spaces[0].DofMap, a.spaces[1].DofMap
	sp := la.NewSparsityPattern(dm0.Extent(), dm1.Extent())
	var rows, cols []int32
	for _, key := range a.IntegralKeys() {
		if err := checkDofmapCovers(op, a, key, dm0); err != nil {
			return nil, err
		}
		if err := checkDofmapCovers(op, a, key, dm1); err != nil {
			return nil, err
		}
		d, err := newDomain(op, a, key)
		if err != nil {
			return nil, err
		}
		err = d.each(op, nil, func(e entity[U]) error {
			rows = appendEntityDofs(rows[:0], dm0, e.cells)
			cols = appendEntityDofs(cols[:0], dm1, e.cells)
			if err := sp.Insert(rows, cols); err != nil {
				return femerr.New(op, femerr.KindInvalidArgument).Integral(key.String()).Entity(e.pos).Cause(err).Build()
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return sp, nil
}
