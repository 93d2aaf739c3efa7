package element

import (
	"fmt"

	femerr "github.com/notargets/FEMAssembly/errors"
)

// CellType identifies the shape of a reference cell
type CellType uint8

const (
	Point CellType = iota
	Interval
	Triangle
	Tetrahedron
	Quadrilateral
	Hexahedron
)

func (c CellType) String() string {
	switch c {
	case Point:
		return "point"
	case Interval:
		return "interval"
	case Triangle:
		return "triangle"
	case Tetrahedron:
		return "tetrahedron"
	case Quadrilateral:
		return "quadrilateral"
	case Hexahedron:
		return "hexahedron"
	default:
		return fmt.Sprintf("CellType(%d)", uint8(c))
	}
}

// IsSimplex reports whether the cell is a point, interval, triangle or tetrahedron
func (c CellType) IsSimplex() bool {
	return c <= Tetrahedron
}

// CellTypeFromNodeCount returns the affine simplex with nodesPerCell nodes in dimension tdim
func CellTypeFromNodeCount(tdim, nodesPerCell int) (CellType, error) {
	switch {
	case tdim == 1 && nodesPerCell == 2:
		return Interval, nil
	case tdim == 2 && nodesPerCell == 3:
		return Triangle, nil
	case tdim == 3 && nodesPerCell == 4:
		return Tetrahedron, nil
	case tdim == 2 && nodesPerCell == 4:
		return Quadrilateral, femerr.UnsupportedLayout(femerr.OpBuild,
			"quadrilateral cells are not supported by the kernel system")
	case tdim == 3 && nodesPerCell == 8:
		return Hexahedron, femerr.UnsupportedLayout(femerr.OpBuild,
			"hexahedral cells are not supported by the kernel system")
	default:
		return Point, femerr.UnsupportedLayout(femerr.OpBuild,
			"no cell of dimension %d has %d nodes", tdim, nodesPerCell)
	}
}

// FiniteElement is the layout information assembly needs from an element
type FiniteElement interface {
	Name() string
	Cell() CellType
	Degree() int
	NumDofs() int                 // dofs per cell
	EntityDofs(dim int) [][]int   // [entity][local dofs] for entities of dimension dim
	FacetClosureDofs(f int) []int // dofs on facet f and its sub-entities
}
