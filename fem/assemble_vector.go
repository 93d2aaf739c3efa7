package fem

import (
	femerr "github.com/notargets/FEMAssembly/errors"
)

// AssembleVector packs L and adds its local vectors into b. b spans the full local extent of
// the test space and is not zeroed; ghost entries are accumulated locally only.
func AssembleVector[T Scalar, U Real](b []T, L *Form[T, U]) error {
	if err := L.checkRank(femerr.OpAssembleVector, 1); err != nil {
		return err
	}
	constants, coeffs, err := pack(L)
	if err != nil {
		return err
	}
	return AssembleVectorPacked(b, L, constants, coeffs)
}

// AssembleVectorPacked is AssembleVector with caller-packed constants and coefficients
func AssembleVectorPacked[T Scalar, U Real](b []T, L *Form[T, U], constants []T, coeffs Coefficients[T]) error {
	if err := L.checkRank(femerr.OpAssembleVector, 1); err != nil {
		return err
	}
	for _, key := range L.IntegralKeys() {
		if err := AssembleVectorIntegral(b, L, key, nil, constants, coeffs); err != nil {
			return err
		}
	}
	return nil
}

// AssembleVectorIntegral adds the contributions of the selected entity positions of one
// integral (all when positions is nil) into b
func AssembleVectorIntegral[T Scalar, U Real](b []T, L *Form[T, U], key IntegralKey, positions []int,
	constants []T, coeffs Coefficients[T]) error {
	const op = femerr.OpAssembleVector
	if err := L.checkRank(op, 1); err != nil {
		return err
	}
	dm := L.spaces[0].DofMap
	if len(b) != dm.Extent() {
		return femerr.InvalidArgument(op, "vector length %d does not match the test space extent %d", len(b), dm.Extent())
	}
	d, err := newDomain(op, L, key)
	if err != nil {
		return err
	}
	if err := checkDofmapCovers(op, L, key, dm); err != nil {
		return err
	}
	pc, err := coefficientsFor(op, L, key, coeffs)
	if err != nil {
		return err
	}
	var (
		be   = make([]T, key.Type.NumCells()*dm.Width())
		dofs = make([]int32, 0, len(be))
	)
	return d.each(op, positions, func(e entity[U]) error {
		tabulate(d.integral.Kernel, be, pc.Entity(e.pos), constants, e.x, e.local)
		dofs = appendEntityDofs(dofs[:0], dm, e.cells)
		for i, dof := range dofs {
			b[dof] += be[i]
		}
		return nil
	})
}

// ApplyLifting modifies b in place to b - alpha*A_i*(g_i - x0_i) for every present form a[i].
// bcs1[i] provides g_i on the trial space of a[i]; x0 may be empty and any x0[i] may be nil,
// both meaning zero. All present forms must share the test space. Prescribed values are not
// written into b. When no form is present b is left untouched.
func ApplyLifting[T Scalar, U Real](b []T, a []Optional[T, U], bcs1 [][]*DirichletBC[T, U], x0 [][]T, alpha T) error {
	constants := make([][]T, len(a))
	coeffs := make([]Coefficients[T], len(a))
	for i, ai := range a {
		f, ok := ai.Get()
		if !ok {
			continue
		}
		var err error
		if constants[i], coeffs[i], err = pack(f); err != nil {
			return err
		}
	}
	return ApplyLiftingPacked(b, a, constants, coeffs, bcs1, x0, alpha)
}

// ApplyLiftingPacked is ApplyLifting with caller-packed constants and coefficients per form
func ApplyLiftingPacked[T Scalar, U Real](b []T, a []Optional[T, U], constants [][]T, coeffs []Coefficients[T],
	bcs1 [][]*DirichletBC[T, U], x0 [][]T, alpha T) error {
	present := false
	for _, ai := range a {
		if _, ok := ai.Get(); ok {
			present = true
			break
		}
	}
	if !present {
		return nil
	}
	terms, err := NewLiftingTerms(b, a, constants, coeffs, bcs1, x0)
	if err != nil {
		return err
	}
	for _, term := range terms {
		for _, key := range term.Form.IntegralKeys() {
			if err := term.ApplyIntegral(b, key, nil, alpha); err != nil {
				return err
			}
		}
	}
	return nil
}

// LiftingTerm is one present, constrained form of a lifting call with its boundary data
// resolved on the trial space
type LiftingTerm[T Scalar, U Real] struct {
	Index     int
	Form      *Form[T, U]
	Constants []T
	Coeffs    Coefficients[T]

	marker []bool
	g      []T
	x0     []T
}

// NewLiftingTerms validates a lifting call and resolves, for every present form whose trial
// space carries a condition, the trial dof marker and the prescribed values. Forms without
// any applicable condition contribute nothing and are omitted.
func NewLiftingTerms[T Scalar, U Real](b []T, a []Optional[T, U], constants [][]T, coeffs []Coefficients[T],
	bcs1 [][]*DirichletBC[T, U], x0 [][]T) ([]LiftingTerm[T, U], error) {
	const op = femerr.OpApplyLifting
	if len(bcs1) != len(a) {
		return nil, femerr.InvalidArgument(op, "got %d forms and %d boundary condition lists", len(a), len(bcs1))
	}
	if len(x0) != 0 && len(x0) != len(a) {
		return nil, femerr.InvalidArgument(op, "got %d forms and %d reference vectors", len(a), len(x0))
	}
	if len(constants) != len(a) || len(coeffs) != len(a) {
		return nil, femerr.InvalidArgument(op, "packed data for %d/%d forms, expected %d", len(constants), len(coeffs), len(a))
	}
	var (
		test  *FunctionSpace[U]
		terms []LiftingTerm[T, U]
	)
	for i, ai := range a {
		f, ok := ai.Get()
		if !ok {
			continue
		}
		if err := f.checkRank(op, 2); err != nil {
			return nil, err
		}
		if test == nil {
			test = f.spaces[0]
			if len(b) != test.DofMap.Extent() {
				return nil, femerr.InvalidArgument(op,
					"vector length %d does not match the test space extent %d", len(b), test.DofMap.Extent())
			}
		} else if !test.Equal(f.spaces[0]) {
			return nil, femerr.InvalidArgument(op, "form %d does not share the test space of the other forms", i)
		}
		trial := f.spaces[1]
		extent := trial.DofMap.Extent()
		var xi []T
		if len(x0) != 0 && x0[i] != nil {
			if len(x0[i]) != extent {
				return nil, femerr.InvalidArgument(op,
					"reference vector %d has length %d, trial space extent is %d", i, len(x0[i]), extent)
			}
			xi = x0[i]
		}
		var (
			marker []bool
			g      []T
		)
		for _, bc := range bcs1[i] {
			if bc == nil || !trial.Contains(bc.space) {
				continue
			}
			if marker == nil {
				marker = make([]bool, extent)
				g = make([]T, extent)
			}
			if err := bc.MarkDofs(marker); err != nil {
				return nil, femerr.New(op, femerr.KindInvalidArgument).Cause(err).
					Detail("marking trial dofs of form %d", i).Build()
			}
			for k, dof := range bc.dofs {
				g[dof] = bc.g[k]
			}
		}
		if marker == nil {
			continue
		}
		terms = append(terms, LiftingTerm[T, U]{
			Index: i, Form: f, Constants: constants[i], Coeffs: coeffs[i],
			marker: marker, g: g, x0: xi,
		})
	}
	return terms, nil
}

// ApplyIntegral subtracts alpha*A*(g - x0) restricted to one integral of the term's form and
// the selected entity positions (all when positions is nil) from b. Entities without a
// constrained trial dof are skipped without evaluating the kernel.
func (lt *LiftingTerm[T, U]) ApplyIntegral(b []T, key IntegralKey, positions []int, alpha T) error {
	const op = femerr.OpApplyLifting
	f := lt.Form
	dm0, dm1 := f.spaces[0].DofMap, f.spaces[1].DofMap
	if len(b) != dm0.Extent() {
		return femerr.InvalidArgument(op, "vector length %d does not match the test space extent %d", len(b), dm0.Extent())
	}
	d, err := newDomain(op, f, key)
	if err != nil {
		return err
	}
	if err := checkDofmapCovers(op, f, key, dm0); err != nil {
		return err
	}
	if err := checkDofmapCovers(op, f, key, dm1); err != nil {
		return err
	}
	pc, err := coefficientsFor(op, f, key, lt.Coeffs)
	if err != nil {
		return err
	}
	nc := key.Type.NumCells()
	var (
		rows = make([]int32, 0, nc*dm0.Width())
		cols = make([]int32, 0, nc*dm1.Width())
		Ae   = make([]T, nc*dm0.Width()*nc*dm1.Width())
		be   = make([]T, nc*dm0.Width())
	)
	return d.each(op, positions, func(e entity[U]) error {
		cols = appendEntityDofs(cols[:0], dm1, e.cells)
		constrained := false
		for _, dof := range cols {
			if lt.marker[dof] {
				constrained = true
				break
			}
		}
		if !constrained {
			return nil
		}
		tabulate(d.integral.Kernel, Ae, pc.Entity(e.pos), lt.Constants, e.x, e.local)
		rows = appendEntityDofs(rows[:0], dm0, e.cells)
		clear(be)
		ncols := len(cols)
		for j, dof := range cols {
			if !lt.marker[dof] {
				continue
			}
			bc := lt.g[dof]
			if lt.x0 != nil {
				bc -= lt.x0[dof]
			}
			bc *= alpha
			for k := range rows {
				be[k] -= Ae[k*ncols+j] * bc
			}
		}
		for k, dof := range rows {
			b[dof] += be[k]
		}
		return nil
	})
}
