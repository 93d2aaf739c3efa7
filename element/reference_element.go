package element

import (
	femerr "github.com/notargets/FEMAssembly/errors"
)

// Dimensionality represents the spatial dimension of an element
type Dimensionality uint8

const (
	D0 Dimensionality = iota // 0D elements (points)
	D1                       // 1D elements (lines, edges)
	D2                       // 2D elements (triangles)
	D3                       // 3D elements (tetrahedra)
)

// ElementProperties contains metadata describing an element type
type ElementProperties struct {
	Name       string         // Full descriptive name (e.g., "Lagrange triangle degree 1")
	ShortName  string         // Abbreviated name (e.g., "P1Tri")
	Type       CellType       // Element shape
	Order      int            // Polynomial order
	Np         int            // Dofs per cell
	NFp        int            // Dofs per facet closure
	NVp        int            // Number of vertices
	NFaces     int            // Number of facets in each cell
	Dimensions Dimensionality // Topological dimension
}

// ReferenceCell defines the vertices and facets of a reference simplex.
// Facet i is the facet opposite vertex i.
type ReferenceCell struct {
	Type          CellType
	Dim           Dimensionality
	Vertices      [][]float64 // [vertex][tdim]
	FacetVertices [][]int     // [facet][local vertices]
	FacetType     CellType
	Volume        float64
}

// NumVertices returns the number of vertices of the cell
func (rc ReferenceCell) NumVertices() int { return len(rc.Vertices) }

// NumFacets returns the number of facets of the cell
func (rc ReferenceCell) NumFacets() int { return len(rc.FacetVertices) }

// GetReferenceCell returns the reference geometry of a simplex
func GetReferenceCell(ct CellType) (ReferenceCell, error) {
	switch ct {
	case Interval:
		return ReferenceCell{
			Type:          Interval,
			Dim:           D1,
			Vertices:      [][]float64{{0}, {1}},
			FacetVertices: [][]int{{1}, {0}},
			FacetType:     Point,
			Volume:        1,
		}, nil
	case Triangle:
		return ReferenceCell{
			Type:          Triangle,
			Dim:           D2,
			Vertices:      [][]float64{{0, 0}, {1, 0}, {0, 1}},
			FacetVertices: [][]int{{1, 2}, {0, 2}, {0, 1}},
			FacetType:     Interval,
			Volume:        0.5,
		}, nil
	case Tetrahedron:
		return ReferenceCell{
			Type:          Tetrahedron,
			Dim:           D3,
			Vertices:      [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
			FacetVertices: [][]int{{1, 2, 3}, {0, 2, 3}, {0, 1, 3}, {0, 1, 2}},
			FacetType:     Triangle,
			Volume:        1. / 6.,
		}, nil
	default:
		return ReferenceCell{}, femerr.UnsupportedLayout(femerr.OpBuild,
			"no reference cell for %s", ct)
	}
}
