package fem

import (
	stderrors "errors"

	femerr "github.com/notargets/FEMAssembly/errors"
	"github.com/notargets/FEMAssembly/mesh"
)

// PackedCoefficients is the coefficient buffer of one integral: one block of Stride values per
// active entity
type PackedCoefficients[T Scalar] struct {
	Data   []T
	Stride int
}

// Entity returns the block of entity position p
func (pc PackedCoefficients[T]) Entity(p int) []T {
	return pc.Data[p*pc.Stride : (p+1)*pc.Stride]
}

// Coefficients maps integral keys to packed coefficient buffers
type Coefficients[T Scalar] map[IntegralKey]PackedCoefficients[T]

// PackConstants concatenates the constant values of f in declaration order
func PackConstants[T Scalar, U Real](f *Form[T, U]) []T {
	var size int
	for _, c := range f.constants {
		size += len(c.Value)
	}
	out := make([]T, 0, size)
	for _, c := range f.constants {
		out = append(out, c.Value...)
	}
	return out
}

// AllocateCoefficientStorage sizes (without filling) a buffer for every integral of f with at
// least one active entity
func AllocateCoefficientStorage[T Scalar, U Real](f *Form[T, U]) Coefficients[T] {
	width := f.CoefficientOffsets()[len(f.coefficients)]
	storage := make(Coefficients[T])
	for _, key := range f.IntegralKeys() {
		n := f.NumEntities(key)
		if n == 0 {
			continue
		}
		stride := width * key.Type.NumCells()
		storage[key] = PackedCoefficients[T]{Data: make([]T, n*stride), Stride: stride}
	}
	return storage
}

// PackCoefficients gathers coefficient dof values of every active entity into storage, which
// must come from AllocateCoefficientStorage. For interior facets each coefficient occupies
// two consecutive cell blocks, first cell then second cell.
func PackCoefficients[T Scalar, U Real](f *Form[T, U], storage Coefficients[T]) error {
	offsets := f.CoefficientOffsets()
	for _, key := range f.IntegralKeys() {
		n := f.NumEntities(key)
		if n == 0 {
			continue
		}
		pc, ok := storage[key]
		nc := key.Type.NumCells()
		if !ok || pc.Stride != offsets[len(offsets)-1]*nc || len(pc.Data) != n*pc.Stride {
			return femerr.New(femerr.OpPack, femerr.KindInvalidArgument).Integral(key.String()).
				Detail("coefficient storage is missing or incorrectly sized").Build()
		}
		if pc.Stride == 0 {
			continue
		}
		entities := f.Entities(key)
		stride := key.Type.Stride()
		for p := 0; p < n; p++ {
			e := entities[p*stride : (p+1)*stride]
			block := pc.Entity(p)
			for i, coeff := range f.coefficients {
				w := offsets[i+1] - offsets[i]
				for k := 0; k < nc; k++ {
					cell := e[2*k]
					dst := block[nc*offsets[i]+k*w : nc*offsets[i]+(k+1)*w]
					if err := gatherCell(dst, coeff, f.mesh, cell); err != nil {
						return femerr.InvalidCoefficient(femerr.OpPack, key.String(), p,
							"coefficient %d (%s): %v", i, coeff.Name, err)
					}
				}
			}
		}
	}
	return nil
}

var (
	errCellUndefined = stderrors.New("not defined on cell")
	errDofUndefined  = stderrors.New("no value for dof")
	errForeignMesh   = stderrors.New("defined on a different mesh")
)

func gatherCell[T Scalar, U Real](dst []T, coeff *Function[T, U], m *mesh.Mesh[U], cell int32) error {
	if coeff.Space.Mesh != m {
		return errForeignMesh
	}
	dm := coeff.Space.DofMap
	if int(cell) >= dm.NumCells() {
		return errCellUndefined
	}
	bs := int32(dm.Bs)
	j := 0
	for _, d := range dm.CellDofs(cell) {
		for k := int32(0); k < bs; k++ {
			idx := d*bs + k
			if int(idx) >= len(coeff.X) {
				return errDofUndefined
			}
			dst[j] = coeff.X[idx]
			j++
		}
	}
	return nil
}

// pack returns the packed constants and coefficients of f
func pack[T Scalar, U Real](f *Form[T, U]) ([]T, Coefficients[T], error) {
	coeffs := AllocateCoefficientStorage(f)
	if err := PackCoefficients(f, coeffs); err != nil {
		return nil, nil, err
	}
	return PackConstants(f), coeffs, nil
}
