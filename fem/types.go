package fem

import (
	"fmt"

	"github.com/notargets/FEMAssembly/utils"
)

type (
	Scalar = utils.Scalar
	Real   = utils.Real
)

// IntegralType is the geometric domain an integral is evaluated over. The declared order is the
// assembly order.
type IntegralType uint8

const (
	Cell IntegralType = iota
	ExteriorFacet
	InteriorFacet
)

// IntegralTypes lists all integral types in assembly order
var IntegralTypes = []IntegralType{Cell, ExteriorFacet, InteriorFacet}

func (it IntegralType) String() string {
	switch it {
	case Cell:
		return "cell"
	case ExteriorFacet:
		return "exterior_facet"
	case InteriorFacet:
		return "interior_facet"
	default:
		return fmt.Sprintf("IntegralType(%d)", uint8(it))
	}
}

// Stride is the number of int32 values describing one entity:
// cell; (cell, local facet); (cell0, local facet0, cell1, local facet1)
func (it IntegralType) Stride() int {
	switch it {
	case ExteriorFacet:
		return 2
	case InteriorFacet:
		return 4
	default:
		return 1
	}
}

// NumCells is the number of cells an entity of this type touches
func (it IntegralType) NumCells() int {
	if it == InteriorFacet {
		return 2
	}
	return 1
}

// IntegralKey identifies one integral group of a form
type IntegralKey struct {
	Type IntegralType
	ID   int
}

func (k IntegralKey) String() string { return fmt.Sprintf("%s:%d", k.Type, k.ID) }

// Kernel evaluates the local tensor of one entity.
//
//	A      local tensor, zeroed before the call, row-major (test dofs x trial dofs)
//	w      packed coefficients of the entity
//	c      packed constants of the form
//	x      coordinate dofs [node][3], both cells concatenated for interior facets
//	local  local facet index per cell, nil for cell integrals
type Kernel[T Scalar, U Real] func(A, w, c []T, x []U, local []int32)

// Integral is one kernel with the ordered entities it is evaluated on. Entities is flat with
// Type.Stride() values per entity.
type Integral[T Scalar, U Real] struct {
	ID       int
	Kernel   Kernel[T, U]
	Entities []int32
}

// NumEntities returns the number of entities for integral type it
func (in *Integral[T, U]) NumEntities(it IntegralType) int {
	return len(in.Entities) / it.Stride()
}

// Optional is a possibly absent form in an argument list. The zero value is absent.
type Optional[T Scalar, U Real] struct {
	form *Form[T, U]
}

// Some wraps a present form. Some(nil) is absent.
func Some[T Scalar, U Real](f *Form[T, U]) Optional[T, U] { return Optional[T, U]{form: f} }

// None returns an absent form
func None[T Scalar, U Real]() Optional[T, U] { return Optional[T, U]{} }

// Get returns the form and whether it is present
func (o Optional[T, U]) Get() (*Form[T, U], bool) { return o.form, o.form != nil }
