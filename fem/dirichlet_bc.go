package fem

import (
	"slices"
	"sort"

	"github.com/notargets/FEMAssembly/element"
	femerr "github.com/notargets/FEMAssembly/errors"
)

// DirichletBC prescribes values at a set of dofs of a function space. Dofs are unrolled
// indices into the space's dof index space, sorted ascending, so the locally owned dofs form
// a prefix followed by ghost dofs.
type DirichletBC[T Scalar, U Real] struct {
	space *FunctionSpace[U]
	dofs  []int32
	owned int
	g     []T
}

// NewDirichletBC prescribes values[i] at dofs[i]
func NewDirichletBC[T Scalar, U Real](V *FunctionSpace[U], dofs []int32, values []T) (*DirichletBC[T, U], error) {
	if V == nil {
		return nil, femerr.InvalidArgument(femerr.OpBuild, "boundary condition requires a function space")
	}
	if len(values) != len(dofs) {
		return nil, femerr.InvalidArgument(femerr.OpBuild, "got %d dofs and %d values", len(dofs), len(values))
	}
	extent := int32(V.DofMap.Extent())
	order := make([]int, len(dofs))
	for i, d := range dofs {
		if d < 0 || d >= extent {
			return nil, femerr.InvalidArgument(femerr.OpBuild, "dof %d outside [0, %d)", d, extent)
		}
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return dofs[order[i]] < dofs[order[j]] })

	bc := &DirichletBC[T, U]{space: V, dofs: make([]int32, len(dofs)), g: make([]T, len(dofs))}
	ownedExtent := int32(V.DofMap.OwnedExtent())
	for k, i := range order {
		if k > 0 && dofs[i] == bc.dofs[k-1] {
			return nil, femerr.InvalidArgument(femerr.OpBuild, "dof %d is constrained twice", dofs[i])
		}
		bc.dofs[k], bc.g[k] = dofs[i], values[i]
		if dofs[i] < ownedExtent {
			bc.owned++
		}
	}
	return bc, nil
}

// NewConstantDirichletBC prescribes value at every dof
func NewConstantDirichletBC[T Scalar, U Real](V *FunctionSpace[U], dofs []int32, value T) (*DirichletBC[T, U], error) {
	values := make([]T, len(dofs))
	for i := range values {
		values[i] = value
	}
	return NewDirichletBC(V, dofs, values)
}

// NewFunctionDirichletBC prescribes the values of g at dofs of g's space
func NewFunctionDirichletBC[T Scalar, U Real](g *Function[T, U], dofs []int32) (*DirichletBC[T, U], error) {
	if g == nil || g.Space == nil {
		return nil, femerr.InvalidArgument(femerr.OpBuild, "boundary function is nil")
	}
	values := make([]T, len(dofs))
	for i, d := range dofs {
		if d < 0 || int(d) >= len(g.X) {
			return nil, femerr.InvalidArgument(femerr.OpBuild, "dof %d outside the boundary function values", d)
		}
		values[i] = g.X[d]
	}
	return NewDirichletBC(g.Space, dofs, values)
}

// FunctionSpace returns the constrained space
func (bc *DirichletBC[T, U]) FunctionSpace() *FunctionSpace[U] { return bc.space }

// DofIndices returns the constrained dofs and the length of the locally owned prefix
func (bc *DirichletBC[T, U]) DofIndices() ([]int32, int) { return bc.dofs, bc.owned }

// Values returns the prescribed value of each constrained dof
func (bc *DirichletBC[T, U]) Values() []T { return bc.g }

// MarkDofs sets marker[dof] for every constrained dof. marker spans the full dof extent of
// the constrained space.
func (bc *DirichletBC[T, U]) MarkDofs(marker []bool) error {
	if extent := bc.space.DofMap.Extent(); len(marker) != extent {
		return femerr.InvalidArgument(femerr.OpBuild, "marker length %d does not match the dof extent %d", len(marker), extent)
	}
	for _, d := range bc.dofs {
		marker[d] = true
	}
	return nil
}

// Set writes alpha*(g - x0) into b at every constrained dof inside b. x0 nil means zero.
func (bc *DirichletBC[T, U]) Set(b, x0 []T, alpha T) error {
	if x0 != nil && len(x0) < len(b) {
		return femerr.InvalidArgument(femerr.OpSetBC, "reference vector length %d is shorter than the vector %d", len(x0), len(b))
	}
	for k, d := range bc.dofs {
		if int(d) >= len(b) {
			break
		}
		v := bc.g[k]
		if x0 != nil {
			v -= x0[d]
		}
		b[d] = alpha * v
	}
	return nil
}

// SetBC applies Set of every condition in order
func SetBC[T Scalar, U Real](b []T, bcs []*DirichletBC[T, U], x0 []T, alpha T) error {
	for _, bc := range bcs {
		if bc == nil {
			continue
		}
		if err := bc.Set(b, x0, alpha); err != nil {
			return err
		}
	}
	return nil
}

// LocateDofsTopological returns the sorted unrolled dofs of V in the closure of the given
// (cell, local facet) pairs
func LocateDofsTopological[U Real](V *FunctionSpace[U], facets []int32) ([]int32, error) {
	if len(facets)%2 != 0 {
		return nil, femerr.InvalidArgument(femerr.OpBuild, "facet list length %d is odd", len(facets))
	}
	dm := V.DofMap
	rc, err := element.GetReferenceCell(V.Element.Cell())
	if err != nil {
		return nil, err
	}
	numFacets := int32(rc.NumFacets())
	bs := int32(dm.Bs)
	seen := make(map[int32]struct{})
	for i := 0; i < len(facets); i += 2 {
		c, lf := facets[i], facets[i+1]
		if c < 0 || int(c) >= dm.NumCells() || lf < 0 || lf >= numFacets {
			return nil, femerr.InvalidArgument(femerr.OpBuild, "facet (%d, %d) out of range", c, lf)
		}
		cellDofs := dm.CellDofs(c)
		for _, j := range V.Element.FacetClosureDofs(int(lf)) {
			for k := int32(0); k < bs; k++ {
				seen[cellDofs[j]*bs+k] = struct{}{}
			}
		}
	}
	return sortedKeys(seen), nil
}

// LocateDofsGeometrical returns the sorted unrolled dofs of V whose coordinates satisfy marker
func LocateDofsGeometrical[U Real](V *FunctionSpace[U], marker func(x []U) bool) ([]int32, error) {
	coords, err := V.TabulateDofCoordinates()
	if err != nil {
		return nil, err
	}
	dm := V.DofMap
	bs := int32(dm.Bs)
	seen := make(map[int32]struct{})
	for c := int32(0); int(c) < dm.NumCells(); c++ {
		for _, d := range dm.CellDofs(c) {
			block := int(d) * dm.Bs / dm.IndexMapBs
			if !marker(coords[3*block : 3*block+3]) {
				continue
			}
			for k := int32(0); k < bs; k++ {
				seen[d*bs+k] = struct{}{}
			}
		}
	}
	return sortedKeys(seen), nil
}

func sortedKeys(set map[int32]struct{}) []int32 {
	out := make([]int32, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}
