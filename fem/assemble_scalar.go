package fem

import (
	femerr "github.com/notargets/FEMAssembly/errors"
)

// AssembleScalar packs M and sums its kernel outputs over all active entities. The result is
// the process-local partial sum; reducing across processes is the caller's job.
func AssembleScalar[T Scalar, U Real](M *Form[T, U]) (T, error) {
	if err := M.checkRank(femerr.OpAssembleScalar, 0); err != nil {
		return 0, err
	}
	constants, coeffs, err := pack(M)
	if err != nil {
		return 0, err
	}
	return AssembleScalarPacked(M, constants, coeffs)
}

// AssembleScalarPacked is AssembleScalar with caller-packed constants and coefficients.
// Summation follows entity order within each integral, integrals in assembly order.
func AssembleScalarPacked[T Scalar, U Real](M *Form[T, U], constants []T, coeffs Coefficients[T]) (T, error) {
	if err := M.checkRank(femerr.OpAssembleScalar, 0); err != nil {
		return 0, err
	}
	var value T
	for _, key := range M.IntegralKeys() {
		v, err := AssembleScalarIntegral(M, key, nil, constants, coeffs)
		if err != nil {
			return 0, err
		}
		value += v
	}
	return value, nil
}

// AssembleScalarIntegral sums the kernel of one integral over the entity positions selected
// (all when positions is nil)
func AssembleScalarIntegral[T Scalar, U Real](M *Form[T, U], key IntegralKey, positions []int,
	constants []T, coeffs Coefficients[T]) (T, error) {
	const op = femerr.OpAssembleScalar
	if err := M.checkRank(op, 0); err != nil {
		return 0, err
	}
	d, err := newDomain(op, M, key)
	if err != nil {
		return 0, err
	}
	pc, err := coefficientsFor(op, M, key, coeffs)
	if err != nil {
		return 0, err
	}
	var (
		value T
		A     = make([]T, 1)
	)
	err = d.each(op, positions, func(e entity[U]) error {
		tabulate(d.integral.Kernel, A, pc.Entity(e.pos), constants, e.x, e.local)
		value += A[0]
		return nil
	})
	return value, err
}
