package fem

import (
	"slices"

	"github.com/notargets/FEMAssembly/element"
	femerr "github.com/notargets/FEMAssembly/errors"
	"github.com/notargets/FEMAssembly/mesh"
)

// Form is a functional (rank 0), linear form (rank 1) or bilinear form (rank 2) split into
// integrals per (integral type, subdomain id). Forms are immutable after NewForm.
type Form[T Scalar, U Real] struct {
	mesh         *mesh.Mesh[U]
	spaces       []*FunctionSpace[U]
	integrals    map[IntegralType][]Integral[T, U]
	coefficients []*Function[T, U]
	constants    []*Constant[T]
}

// NewForm validates and builds a form. spaces holds the test space then the trial space.
// Integrals of each type are ordered by subdomain id. m may be nil when a space or a
// coefficient provides the mesh.
func NewForm[T Scalar, U Real](spaces []*FunctionSpace[U], integrals map[IntegralType][]Integral[T, U],
	coefficients []*Function[T, U], constants []*Constant[T], m *mesh.Mesh[U]) (*Form[T, U], error) {
	if len(spaces) > 2 {
		return nil, femerr.InvalidArgument(femerr.OpBuild, "form rank %d is not supported", len(spaces))
	}
	for i, V := range spaces {
		if V == nil {
			return nil, femerr.InvalidArgument(femerr.OpBuild, "argument space %d is nil", i)
		}
		if m == nil {
			m = V.Mesh
		}
		if V.Mesh != m {
			return nil, femerr.InvalidArgument(femerr.OpBuild, "argument space %d is defined on a different mesh", i)
		}
	}
	for i, c := range coefficients {
		if c == nil || c.Space == nil {
			return nil, femerr.InvalidArgument(femerr.OpBuild, "coefficient %d is nil", i)
		}
		if m == nil {
			m = c.Space.Mesh
		}
	}
	for i, c := range constants {
		if c == nil {
			return nil, femerr.InvalidArgument(femerr.OpBuild, "constant %d is nil", i)
		}
	}
	if m == nil {
		return nil, femerr.InvalidArgument(femerr.OpBuild, "form has no mesh")
	}
	rc, err := element.GetReferenceCell(m.CellType)
	if err != nil {
		return nil, err
	}

	f := &Form[T, U]{
		mesh:         m,
		spaces:       slices.Clone(spaces),
		integrals:    make(map[IntegralType][]Integral[T, U]),
		coefficients: slices.Clone(coefficients),
		constants:    slices.Clone(constants),
	}
	for it, list := range integrals {
		if it > InteriorFacet {
			return nil, femerr.UnsupportedLayout(femerr.OpBuild, "unknown integral type %d", it)
		}
		sorted := slices.Clone(list)
		slices.SortStableFunc(sorted, func(a, b Integral[T, U]) int { return a.ID - b.ID })
		for i := range sorted {
			in := &sorted[i]
			key := IntegralKey{Type: it, ID: in.ID}
			if i > 0 && sorted[i-1].ID == in.ID {
				return nil, femerr.New(femerr.OpBuild, femerr.KindInvalidArgument).
					Integral(key.String()).Detail("duplicate subdomain id").Build()
			}
			if in.Kernel == nil {
				return nil, femerr.New(femerr.OpBuild, femerr.KindInvalidArgument).
					Integral(key.String()).Detail("integral has no kernel").Build()
			}
			if err := checkEntities(key, in.Entities, m.NumCells(), int32(rc.NumFacets())); err != nil {
				return nil, err
			}
		}
		if len(sorted) > 0 {
			f.integrals[it] = sorted
		}
	}
	return f, nil
}

func checkEntities(key IntegralKey, entities []int32, numCells int, numFacets int32) error {
	stride := key.Type.Stride()
	if len(entities)%stride != 0 {
		return femerr.New(femerr.OpBuild, femerr.KindInvalidArgument).Integral(key.String()).
			Detail("entity list length %d is not a multiple of %d", len(entities), stride).Build()
	}
	for i := 0; i < len(entities); i += stride {
		for k := 0; k < stride; k++ {
			v := entities[i+k]
			bad := false
			if k%2 == 0 {
				bad = v < 0 || int(v) >= numCells
			} else {
				bad = v < 0 || v >= numFacets
			}
			if bad {
				return femerr.New(femerr.OpBuild, femerr.KindInvalidArgument).Integral(key.String()).
					Entity(i / stride).Detail("entity value %d out of range", v).Build()
			}
		}
	}
	return nil
}

// Rank returns the number of argument spaces
func (f *Form[T, U]) Rank() int { return len(f.spaces) }

// Mesh returns the integration mesh
func (f *Form[T, U]) Mesh() *mesh.Mesh[U] { return f.mesh }

// FunctionSpaces returns the argument spaces, test space first
func (f *Form[T, U]) FunctionSpaces() []*FunctionSpace[U] { return f.spaces }

// Coefficients returns the coefficient functions in declaration order
func (f *Form[T, U]) Coefficients() []*Function[T, U] { return f.coefficients }

// Constants returns the constants in declaration order
func (f *Form[T, U]) Constants() []*Constant[T] { return f.constants }

// IntegralIDs returns the subdomain ids of integral type it in ascending order
func (f *Form[T, U]) IntegralIDs(it IntegralType) []int {
	ids := make([]int, 0, len(f.integrals[it]))
	for _, in := range f.integrals[it] {
		ids = append(ids, in.ID)
	}
	return ids
}

// IntegralKeys returns every integral key in assembly order
func (f *Form[T, U]) IntegralKeys() []IntegralKey {
	var keys []IntegralKey
	for _, it := range IntegralTypes {
		for _, in := range f.integrals[it] {
			keys = append(keys, IntegralKey{Type: it, ID: in.ID})
		}
	}
	return keys
}

// Integral returns the integral for key, or nil
func (f *Form[T, U]) Integral(key IntegralKey) *Integral[T, U] {
	list := f.integrals[key.Type]
	for i := range list {
		if list[i].ID == key.ID {
			return &list[i]
		}
	}
	return nil
}

// Kernel returns the kernel for key, or nil
func (f *Form[T, U]) Kernel(key IntegralKey) Kernel[T, U] {
	if in := f.Integral(key); in != nil {
		return in.Kernel
	}
	return nil
}

// Entities returns the flat active entity list for key
func (f *Form[T, U]) Entities(key IntegralKey) []int32 {
	if in := f.Integral(key); in != nil {
		return in.Entities
	}
	return nil
}

// NumEntities returns the number of active entities for key
func (f *Form[T, U]) NumEntities(key IntegralKey) int {
	return len(f.Entities(key)) / key.Type.Stride()
}

// CoefficientOffsets returns the start of each coefficient within one cell's packed block;
// the last entry is the per-cell width
func (f *Form[T, U]) CoefficientOffsets() []int {
	offsets := make([]int, len(f.coefficients)+1)
	for i, c := range f.coefficients {
		offsets[i+1] = offsets[i] + c.Space.DofMap.Width()
	}
	return offsets
}

func (f *Form[T, U]) checkRank(op femerr.Op, rank int) error {
	if f == nil {
		return femerr.InvalidArgument(op, "form is nil")
	}
	if f.Rank() != rank {
		return femerr.InvalidArgument(op, "expected a form of rank %d, got rank %d", rank, f.Rank())
	}
	return nil
}
