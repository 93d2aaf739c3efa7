package fem

import (
	"slices"

	"github.com/notargets/FEMAssembly/element"
	femerr "github.com/notargets/FEMAssembly/errors"
	"github.com/notargets/FEMAssembly/mesh"
	"github.com/notargets/FEMAssembly/utils"
)

// DofMap maps cell-local dofs to process-local dof indices. Cell dofs are block indices
// expanded by Bs; the dof index space has extent IndexMapBs*(SizeLocal+NumGhosts), owned
// indices first.
type DofMap struct {
	IndexMap    *utils.IndexMap
	IndexMapBs  int
	Bs          int
	NumCellDofs int     // block dofs per cell
	dofs        []int32 // flat [cell][NumCellDofs]
}

// NewDofMap validates and wraps a flat cell-to-dof table
func NewDofMap(im *utils.IndexMap, indexMapBs, bs int, cellDofs []int32, numCellDofs int) (*DofMap, error) {
	if im == nil {
		return nil, femerr.InvalidArgument(femerr.OpBuild, "dofmap requires an index map")
	}
	if indexMapBs < 1 || bs < 1 || numCellDofs < 1 {
		return nil, femerr.InvalidArgument(femerr.OpBuild,
			"invalid dofmap layout: index map bs %d, bs %d, dofs per cell %d", indexMapBs, bs, numCellDofs)
	}
	if len(cellDofs)%numCellDofs != 0 {
		return nil, femerr.InvalidArgument(femerr.OpBuild,
			"cell dof table length %d is not a multiple of %d", len(cellDofs), numCellDofs)
	}
	dm := &DofMap{IndexMap: im, IndexMapBs: indexMapBs, Bs: bs, NumCellDofs: numCellDofs, dofs: cellDofs}
	extent := dm.Extent()
	for i, d := range cellDofs {
		if d < 0 || int(d)*bs+bs > extent {
			return nil, femerr.InvalidArgument(femerr.OpBuild,
				"cell %d dof %d outside the dof extent %d", i/numCellDofs, d, extent)
		}
	}
	return dm, nil
}

// NumCells returns the number of cells the dofmap is defined on
func (dm *DofMap) NumCells() int { return len(dm.dofs) / dm.NumCellDofs }

// CellDofs returns the block dofs of cell c
func (dm *DofMap) CellDofs(c int32) []int32 {
	n := int32(dm.NumCellDofs)
	return dm.dofs[c*n : (c+1)*n]
}

// Width is the number of unrolled dofs per cell
func (dm *DofMap) Width() int { return dm.NumCellDofs * dm.Bs }

// Extent is the number of process-local unrolled dof indices, owned and ghost
func (dm *DofMap) Extent() int {
	return dm.IndexMapBs * (dm.IndexMap.SizeLocal() + dm.IndexMap.NumGhosts())
}

// OwnedExtent is the number of owned unrolled dof indices
func (dm *DofMap) OwnedExtent() int { return dm.IndexMapBs * dm.IndexMap.SizeLocal() }

// AppendUnrolled appends the unrolled dofs of cell c to dst
func (dm *DofMap) AppendUnrolled(dst []int32, c int32) []int32 {
	bs := int32(dm.Bs)
	for _, d := range dm.CellDofs(c) {
		for k := int32(0); k < bs; k++ {
			dst = append(dst, d*bs+k)
		}
	}
	return dst
}

// FunctionSpace is a finite element on a mesh with its dofmap. A subspace shares the dofmap
// index space of its root and is identified by its component path.
type FunctionSpace[U Real] struct {
	Mesh    *mesh.Mesh[U]
	Element element.FiniteElement
	DofMap  *DofMap

	root      *FunctionSpace[U]
	component []int
}

// NewFunctionSpace assembles a root function space
func NewFunctionSpace[U Real](m *mesh.Mesh[U], el element.FiniteElement, dm *DofMap) (*FunctionSpace[U], error) {
	if m == nil || el == nil || dm == nil {
		return nil, femerr.InvalidArgument(femerr.OpBuild, "function space requires a mesh, an element and a dofmap")
	}
	if el.Cell() != m.CellType {
		return nil, femerr.UnsupportedLayout(femerr.OpBuild, "element cell %s does not match mesh cell %s", el.Cell(), m.CellType)
	}
	if dm.NumCellDofs != el.NumDofs() {
		return nil, femerr.InvalidArgument(femerr.OpBuild,
			"dofmap has %d dofs per cell, element %s has %d", dm.NumCellDofs, el.Name(), el.NumDofs())
	}
	if dm.NumCells() > m.NumCells() {
		return nil, femerr.InvalidArgument(femerr.OpBuild,
			"dofmap covers %d cells, mesh has %d", dm.NumCells(), m.NumCells())
	}
	return &FunctionSpace[U]{Mesh: m, Element: el, DofMap: dm}, nil
}

// CreateFunctionSpace builds a Lagrange space of the given degree with bs components. Degree 1
// numbers dofs by mesh node, degree 0 by cell.
func CreateFunctionSpace[U Real](m *mesh.Mesh[U], degree, bs int) (*FunctionSpace[U], error) {
	if m == nil {
		return nil, femerr.InvalidArgument(femerr.OpBuild, "function space requires a mesh")
	}
	el, err := element.NewLagrange(m.CellType, degree)
	if err != nil {
		return nil, err
	}
	var dm *DofMap
	switch degree {
	case 0:
		cells := make([]int32, m.NumCells())
		for c := range cells {
			cells[c] = int32(c)
		}
		dm, err = NewDofMap(m.CellMap, bs, bs, cells, 1)
	default:
		dm, err = NewDofMap(m.NodeMap, bs, bs, m.CellNodes, m.NodesPerCell)
	}
	if err != nil {
		return nil, err
	}
	return NewFunctionSpace(m, el, dm)
}

// Sub returns the view of component i of a blocked space. Its dofs are unrolled indices into
// the parent's dof index space and its block size is 1.
func (V *FunctionSpace[U]) Sub(i int) (*FunctionSpace[U], error) {
	if V.DofMap.Bs < 2 {
		return nil, femerr.InvalidArgument(femerr.OpBuild, "space with block size %d has no subspaces", V.DofMap.Bs)
	}
	if i < 0 || i >= V.DofMap.Bs {
		return nil, femerr.InvalidArgument(femerr.OpBuild, "component %d outside [0, %d)", i, V.DofMap.Bs)
	}
	bs := int32(V.DofMap.Bs)
	dofs := make([]int32, len(V.DofMap.dofs))
	for j, d := range V.DofMap.dofs {
		dofs[j] = d*bs + int32(i)
	}
	dm, err := NewDofMap(V.DofMap.IndexMap, V.DofMap.IndexMapBs, 1, dofs, V.DofMap.NumCellDofs)
	if err != nil {
		return nil, err
	}
	component := append(slices.Clone(V.component), i)
	return &FunctionSpace[U]{Mesh: V.Mesh, Element: V.Element, DofMap: dm, root: V.Root(), component: component}, nil
}

// Root returns the space this one is a view of, or V itself
func (V *FunctionSpace[U]) Root() *FunctionSpace[U] {
	if V.root == nil {
		return V
	}
	return V.root
}

// Component returns the component path from the root space
func (V *FunctionSpace[U]) Component() []int { return V.component }

// Contains reports whether W is V or a subspace of V
func (V *FunctionSpace[U]) Contains(W *FunctionSpace[U]) bool {
	if V == nil || W == nil {
		return false
	}
	if V.Root() != W.Root() || len(W.component) < len(V.component) {
		return false
	}
	return slices.Equal(V.component, W.component[:len(V.component)])
}

// Equal reports whether V and W address the same dofs
func (V *FunctionSpace[U]) Equal(W *FunctionSpace[U]) bool {
	return V.Contains(W) && W.Contains(V)
}

// TabulateDofCoordinates returns the physical coordinates of every block dof, flat [dof][3].
// Dofs not reached by any cell keep zero coordinates.
func (V *FunctionSpace[U]) TabulateDofCoordinates() ([]U, error) {
	dm := V.DofMap
	numBlocks := dm.IndexMap.SizeLocal() + dm.IndexMap.NumGhosts()
	coords := make([]U, 3*numBlocks)
	ref := dofReferencePoints(V.Element)
	if ref == nil {
		return nil, femerr.UnsupportedLayout(femerr.OpBuild, "element %s does not expose dof reference points", V.Element.Name())
	}
	var x []U
	for c := int32(0); int(c) < dm.NumCells(); c++ {
		x = V.Mesh.AppendCoordinateDofs(x[:0], c)
		for j, d := range dm.CellDofs(c) {
			block := int(d) * dm.Bs / dm.IndexMapBs
			pushForward(coords[3*block:3*block+3], x, ref[j])
		}
	}
	return coords, nil
}

func dofReferencePoints(el element.FiniteElement) [][]float64 {
	if p, ok := el.(interface{ DofReferencePoints() [][]float64 }); ok {
		return p.DofReferencePoints()
	}
	return nil
}

// pushForward maps reference point X through the affine map of a simplex with vertices x
func pushForward[U Real](dst, x []U, X []float64) {
	for k := 0; k < 3; k++ {
		v := float64(x[k])
		for j, Xj := range X {
			v += Xj * float64(x[3*(j+1)+k]-x[k])
		}
		dst[k] = U(v)
	}
}
