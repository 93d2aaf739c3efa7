package element

import (
	"fmt"

	femerr "github.com/notargets/FEMAssembly/errors"
)

// Lagrange is a scalar Lagrange element of degree 0 (one dof at the cell midpoint,
// discontinuous) or degree 1 (one dof per vertex) on a simplex
type Lagrange struct {
	props ElementProperties
	cell  ReferenceCell
}

// NewLagrange creates a Lagrange element
func NewLagrange(ct CellType, degree int) (*Lagrange, error) {
	cell, err := GetReferenceCell(ct)
	if err != nil {
		return nil, err
	}
	if degree < 0 || degree > 1 {
		return nil, femerr.UnsupportedLayout(femerr.OpBuild,
			"Lagrange degree %d on %s is not supported by the kernel system", degree, ct)
	}

	np, nfp := 1, 0
	if degree == 1 {
		np = cell.NumVertices()
		nfp = len(cell.FacetVertices[0])
	}
	short := map[CellType]string{Interval: "Int", Triangle: "Tri", Tetrahedron: "Tet"}[ct]
	return &Lagrange{
		props: ElementProperties{
			Name:       fmt.Sprintf("Lagrange %s degree %d", ct, degree),
			ShortName:  fmt.Sprintf("P%d%s", degree, short),
			Type:       ct,
			Order:      degree,
			Np:         np,
			NFp:        nfp,
			NVp:        cell.NumVertices(),
			NFaces:     cell.NumFacets(),
			Dimensions: cell.Dim,
		},
		cell: cell,
	}, nil
}

func (l *Lagrange) Name() string                     { return l.props.Name }
func (l *Lagrange) Cell() CellType                   { return l.props.Type }
func (l *Lagrange) Degree() int                      { return l.props.Order }
func (l *Lagrange) NumDofs() int                     { return l.props.Np }
func (l *Lagrange) GetProperties() ElementProperties { return l.props }
func (l *Lagrange) ReferenceCell() ReferenceCell     { return l.cell }

// EntityDofs returns the dofs attached to each entity of dimension dim
func (l *Lagrange) EntityDofs(dim int) [][]int {
	tdim := int(l.cell.Dim)
	switch {
	case l.props.Order == 1 && dim == 0:
		d := make([][]int, l.cell.NumVertices())
		for v := range d {
			d[v] = []int{v}
		}
		return d
	case l.props.Order == 0 && dim == tdim:
		return [][]int{{0}}
	case dim == tdim:
		return [][]int{{}}
	case dim == tdim-1:
		return make([][]int, l.cell.NumFacets())
	default:
		return nil
	}
}

// FacetClosureDofs returns the dofs on facet f including its vertices
func (l *Lagrange) FacetClosureDofs(f int) []int {
	if l.props.Order == 0 {
		return nil
	}
	return append([]int(nil), l.cell.FacetVertices[f]...)
}

// DofReferencePoints returns the reference coordinates of the dofs [dof][tdim]
func (l *Lagrange) DofReferencePoints() [][]float64 {
	if l.props.Order == 1 {
		return l.cell.Vertices
	}
	tdim := int(l.cell.Dim)
	mid := make([]float64, tdim)
	for _, v := range l.cell.Vertices {
		for k := 0; k < tdim; k++ {
			mid[k] += v[k] / float64(l.cell.NumVertices())
		}
	}
	return [][]float64{mid}
}

// Tabulate evaluates basis functions and their reference gradients at points [npts][tdim].
// phi is [npts][ndofs], dphi is [npts][ndofs][tdim].
func (l *Lagrange) Tabulate(points [][]float64) (phi [][]float64, dphi [][][]float64, err error) {
	tdim := int(l.cell.Dim)
	np := l.props.Np
	phi = make([][]float64, len(points))
	dphi = make([][][]float64, len(points))
	for q, X := range points {
		if len(X) != tdim {
			return nil, nil, femerr.InvalidArgument(femerr.OpBuild,
				"point %d has dimension %d, expected %d", q, len(X), tdim)
		}
		phi[q] = make([]float64, np)
		dphi[q] = make([][]float64, np)
		for i := range dphi[q] {
			dphi[q][i] = make([]float64, tdim)
		}
		if l.props.Order == 0 {
			phi[q][0] = 1
			continue
		}
		// phi_0 = 1 - sum(X), phi_i = X_{i-1}
		phi[q][0] = 1
		for k := 0; k < tdim; k++ {
			phi[q][0] -= X[k]
			phi[q][k+1] = X[k]
			dphi[q][0][k] = -1
			dphi[q][k+1][k] = 1
		}
	}
	return phi, dphi, nil
}
