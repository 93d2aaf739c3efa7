// Package builder provides a fluent interface for constructing forms.
//
//	a, err := builder.Form[float64](V, V).
//		Cell(0, kernels.Laplace).
//		ExteriorFacet(1, robin, facets...).
//		Constants(fem.NewConstant(kappa)).
//		Build()
//
// Integrals declared without entities run over the whole mesh: every cell, every exterior
// facet or every interior facet.
package builder

import (
	"slices"

	femerr "github.com/notargets/FEMAssembly/errors"
	"github.com/notargets/FEMAssembly/fem"
	"github.com/notargets/FEMAssembly/mesh"
)

// integralSpec is one declared integral; entities nil selects the whole mesh
type integralSpec[T fem.Scalar, U fem.Real] struct {
	id       int
	kernel   fem.Kernel[T, U]
	entities []int32
}

// boundaryMarker defers facet location of the exterior facet integral at index to Build
type boundaryMarker[U fem.Real] struct {
	index  int
	marker func(x []U) bool
}

// FormBuilder accumulates the parts of a form. The first error raised while chaining is
// reported by Build.
type FormBuilder[T fem.Scalar, U fem.Real] struct {
	spaces       []*fem.FunctionSpace[U]
	mesh         *mesh.Mesh[U]
	integrals    map[fem.IntegralType][]integralSpec[T, U]
	coefficients []*fem.Function[T, U]
	constants    []*fem.Constant[T]
	markers      []boundaryMarker[U]
	err          error
}

// Form starts a form over the given argument spaces, test space first. No spaces gives a
// functional, which needs OnMesh unless a coefficient supplies the mesh.
func Form[T fem.Scalar, U fem.Real](spaces ...*fem.FunctionSpace[U]) *FormBuilder[T, U] {
	return &FormBuilder[T, U]{
		spaces:    spaces,
		integrals: make(map[fem.IntegralType][]integralSpec[T, U]),
	}
}

// Functional starts a rank 0 form on m
func Functional[T fem.Scalar, U fem.Real](m *mesh.Mesh[U]) *FormBuilder[T, U] {
	return Form[T, U]().OnMesh(m)
}

// OnMesh sets the integration mesh explicitly
func (b *FormBuilder[T, U]) OnMesh(m *mesh.Mesh[U]) *FormBuilder[T, U] {
	b.mesh = m
	return b
}

func (b *FormBuilder[T, U]) add(it fem.IntegralType, id int, kernel fem.Kernel[T, U], entities []int32) *FormBuilder[T, U] {
	if b.err != nil {
		return b
	}
	if kernel == nil {
		b.err = femerr.InvalidArgument(femerr.OpBuild, "%s integral %d has no kernel", it, id)
		return b
	}
	b.integrals[it] = append(b.integrals[it], integralSpec[T, U]{id: id, kernel: kernel, entities: slices.Clone(entities)})
	return b
}

// Cell adds a cell integral over the given cells, all cells when none are given
func (b *FormBuilder[T, U]) Cell(id int, kernel fem.Kernel[T, U], cells ...int32) *FormBuilder[T, U] {
	return b.add(fem.Cell, id, kernel, cells)
}

// ExteriorFacet adds an exterior facet integral over flattened (cell, local facet) pairs,
// all exterior facets when none are given
func (b *FormBuilder[T, U]) ExteriorFacet(id int, kernel fem.Kernel[T, U], pairs ...int32) *FormBuilder[T, U] {
	return b.add(fem.ExteriorFacet, id, kernel, pairs)
}

// InteriorFacet adds an interior facet integral over flattened (cell0, local facet0, cell1,
// local facet1) quadruples, all interior facets when none are given
func (b *FormBuilder[T, U]) InteriorFacet(id int, kernel fem.Kernel[T, U], quads ...int32) *FormBuilder[T, U] {
	return b.add(fem.InteriorFacet, id, kernel, quads)
}

// Boundary adds an exterior facet integral over the facets whose nodes all satisfy marker.
// The facets are located when Build runs.
func (b *FormBuilder[T, U]) Boundary(id int, kernel fem.Kernel[T, U], marker func(x []U) bool) *FormBuilder[T, U] {
	if b.err == nil && marker == nil {
		b.err = femerr.InvalidArgument(femerr.OpBuild, "boundary integral %d has no marker", id)
		return b
	}
	b.add(fem.ExteriorFacet, id, kernel, nil)
	if b.err == nil {
		index := len(b.integrals[fem.ExteriorFacet]) - 1
		b.markers = append(b.markers, boundaryMarker[U]{index: index, marker: marker})
	}
	return b
}

// Coefficients appends coefficient functions in packing order
func (b *FormBuilder[T, U]) Coefficients(fns ...*fem.Function[T, U]) *FormBuilder[T, U] {
	b.coefficients = append(b.coefficients, fns...)
	return b
}

// Constants appends constants in packing order
func (b *FormBuilder[T, U]) Constants(cs ...*fem.Constant[T]) *FormBuilder[T, U] {
	b.constants = append(b.constants, cs...)
	return b
}

// Constant appends a scalar constant
func (b *FormBuilder[T, U]) Constant(v T) *FormBuilder[T, U] {
	return b.Constants(fem.NewConstant(v))
}

// resolveMesh picks the explicit mesh, then the first space's, then the first coefficient's
func (b *FormBuilder[T, U]) resolveMesh() *mesh.Mesh[U] {
	if b.mesh != nil {
		return b.mesh
	}
	for _, V := range b.spaces {
		if V != nil {
			return V.Mesh
		}
	}
	for _, c := range b.coefficients {
		if c != nil && c.Space != nil {
			return c.Space.Mesh
		}
	}
	return nil
}

// Build resolves default entity lists and validates the form
func (b *FormBuilder[T, U]) Build() (*fem.Form[T, U], error) {
	if b.err != nil {
		return nil, b.err
	}
	m := b.resolveMesh()
	if m == nil {
		return nil, femerr.InvalidArgument(femerr.OpBuild, "form has no mesh")
	}
	located := make(map[int][]int32, len(b.markers))
	for _, bm := range b.markers {
		facets, err := m.LocateBoundaryFacets(bm.marker)
		if err != nil {
			return nil, femerr.New(femerr.OpBuild, femerr.KindInvalidArgument).Cause(err).
				Detail("locating boundary facets").Build()
		}
		if facets == nil {
			facets = []int32{}
		}
		located[bm.index] = facets
	}

	integrals := make(map[fem.IntegralType][]fem.Integral[T, U], len(b.integrals))
	for it, specs := range b.integrals {
		for i, s := range specs {
			entities := s.entities
			if facets, ok := located[i]; ok && it == fem.ExteriorFacet {
				entities = facets
			} else if entities == nil {
				entities = defaultEntities(m, it)
			}
			integrals[it] = append(integrals[it], fem.Integral[T, U]{ID: s.id, Kernel: s.kernel, Entities: entities})
		}
	}
	return fem.NewForm(b.spaces, integrals, b.coefficients, b.constants, m)
}

// defaultEntities lists every entity of the integral type on m
func defaultEntities[U fem.Real](m *mesh.Mesh[U], it fem.IntegralType) []int32 {
	switch it {
	case fem.ExteriorFacet:
		return m.ExteriorFacets()
	case fem.InteriorFacet:
		return m.InteriorFacets()
	default:
		cells := make([]int32, m.NumCells())
		for c := range cells {
			cells[c] = int32(c)
		}
		return cells
	}
}
