// Package mesh provides the mesh collaborator assembly reads from: node coordinates, the
// cell-to-node map and facet connectivity. Only affine simplex meshes are represented.
package mesh

import (
	"fmt"
	"sort"
	"sync"

	"github.com/notargets/FEMAssembly/element"
	femerr "github.com/notargets/FEMAssembly/errors"
	"github.com/notargets/FEMAssembly/utils"
)

// Mesh holds geometry and topology of the cells visible to one process (owned cells first,
// then ghost cells). Nodes are the cell vertices.
type Mesh[U utils.Real] struct {
	CellType     element.CellType
	Tdim         int
	X            []U     // node coordinates, flat [numNodes][3]
	CellNodes    []int32 // flat [numCells][NodesPerCell]
	NodesPerCell int
	NodeMap      *utils.IndexMap // distribution of nodes
	CellMap      *utils.IndexMap // distribution of cells

	facetOnce sync.Once
	exterior  []int32 // (cell, local facet) pairs
	interior  []int32 // (cell0, local facet0, cell1, local facet1)
}

// New creates a mesh from flat coordinates (3 per node) and a flat cell-to-node map.
// nodeMap and cellMap may be nil for a serial mesh.
func New[U utils.Real](tdim int, x []U, cellNodes []int32, nodesPerCell int,
	nodeMap, cellMap *utils.IndexMap) (*Mesh[U], error) {
	ct, err := element.CellTypeFromNodeCount(tdim, nodesPerCell)
	if err != nil {
		return nil, err
	}
	if len(x)%3 != 0 {
		return nil, femerr.InvalidArgument(femerr.OpBuild, "coordinate array length %d is not a multiple of 3", len(x))
	}
	if len(cellNodes)%nodesPerCell != 0 {
		return nil, femerr.InvalidArgument(femerr.OpBuild,
			"cell-node array length %d is not a multiple of %d", len(cellNodes), nodesPerCell)
	}
	numNodes := len(x) / 3
	for i, n := range cellNodes {
		if n < 0 || int(n) >= numNodes {
			return nil, femerr.InvalidArgument(femerr.OpBuild,
				"cell %d references node %d outside [0, %d)", i/nodesPerCell, n, numNodes)
		}
	}
	numCells := len(cellNodes) / nodesPerCell
	if nodeMap == nil {
		nodeMap = utils.NewSerialIndexMap(numNodes)
	}
	if cellMap == nil {
		cellMap = utils.NewSerialIndexMap(numCells)
	}
	if nodeMap.SizeLocal()+nodeMap.NumGhosts() != numNodes {
		return nil, femerr.InvalidArgument(femerr.OpBuild,
			"node index map extent %d does not match %d nodes", nodeMap.SizeLocal()+nodeMap.NumGhosts(), numNodes)
	}
	if cellMap.SizeLocal()+cellMap.NumGhosts() != numCells {
		return nil, femerr.InvalidArgument(femerr.OpBuild,
			"cell index map extent %d does not match %d cells", cellMap.SizeLocal()+cellMap.NumGhosts(), numCells)
	}
	return &Mesh[U]{
		CellType:     ct,
		Tdim:         tdim,
		X:            x,
		CellNodes:    cellNodes,
		NodesPerCell: nodesPerCell,
		NodeMap:      nodeMap,
		CellMap:      cellMap,
	}, nil
}

// NumCells returns the number of cells (owned and ghost)
func (m *Mesh[U]) NumCells() int { return len(m.CellNodes) / m.NodesPerCell }

// NumNodes returns the number of nodes (owned and ghost)
func (m *Mesh[U]) NumNodes() int { return len(m.X) / 3 }

// Cell returns the nodes of cell c
func (m *Mesh[U]) Cell(c int32) []int32 {
	n := int32(m.NodesPerCell)
	return m.CellNodes[c*n : (c+1)*n]
}

// AppendCoordinateDofs appends the 3 coordinates of every node of cell c to dst
func (m *Mesh[U]) AppendCoordinateDofs(dst []U, c int32) []U {
	for _, n := range m.Cell(c) {
		dst = append(dst, m.X[3*n:3*n+3]...)
	}
	return dst
}

// FacetNodes returns the nodes of local facet lf of cell c
func (m *Mesh[U]) FacetNodes(c, lf int32) ([]int32, error) {
	rc, err := element.GetReferenceCell(m.CellType)
	if err != nil {
		return nil, err
	}
	if lf < 0 || int(lf) >= rc.NumFacets() {
		return nil, femerr.InvalidArgument(femerr.OpBuild, "local facet %d out of range for %s", lf, m.CellType)
	}
	cell := m.Cell(c)
	nodes := make([]int32, len(rc.FacetVertices[lf]))
	for i, v := range rc.FacetVertices[lf] {
		nodes[i] = cell[v]
	}
	return nodes, nil
}

type facetKey [3]int32

type facetUse struct {
	cell, local int32
	count       int
}

func (m *Mesh[U]) buildFacets() {
	rc, err := element.GetReferenceCell(m.CellType)
	if err != nil {
		return
	}
	uses := make(map[facetKey]*facetUse)
	var order []facetKey
	for c := int32(0); int(c) < m.NumCells(); c++ {
		cell := m.Cell(c)
		for lf, verts := range rc.FacetVertices {
			key := facetKey{-1, -1, -1}
			for i, v := range verts {
				key[i] = cell[v]
			}
			sort.Slice(key[:len(verts)], func(i, j int) bool { return key[i] < key[j] })
			if u, found := uses[key]; found {
				u.count++
				m.interior = append(m.interior, u.cell, u.local, c, int32(lf))
				continue
			}
			uses[key] = &facetUse{cell: c, local: int32(lf), count: 1}
			order = append(order, key)
		}
	}
	for _, key := range order {
		if u := uses[key]; u.count == 1 {
			m.exterior = append(m.exterior, u.cell, u.local)
		}
	}
}

// ExteriorFacets returns (cell, local facet) pairs of facets attached to exactly one cell,
// flattened, in first-seen order
func (m *Mesh[U]) ExteriorFacets() []int32 {
	m.facetOnce.Do(m.buildFacets)
	return m.exterior
}

// InteriorFacets returns (cell0, local facet0, cell1, local facet1) quadruples of facets
// shared by two cells, flattened
func (m *Mesh[U]) InteriorFacets() []int32 {
	m.facetOnce.Do(m.buildFacets)
	return m.interior
}

// LocateBoundaryFacets returns the exterior (cell, local facet) pairs whose nodes all satisfy marker
func (m *Mesh[U]) LocateBoundaryFacets(marker func(x []U) bool) ([]int32, error) {
	ext := m.ExteriorFacets()
	var out []int32
	for i := 0; i < len(ext); i += 2 {
		nodes, err := m.FacetNodes(ext[i], ext[i+1])
		if err != nil {
			return nil, err
		}
		all := true
		for _, n := range nodes {
			if !marker(m.X[3*n : 3*n+3]) {
				all = false
				break
			}
		}
		if all {
			out = append(out, ext[i], ext[i+1])
		}
	}
	return out, nil
}

// String returns a short summary
func (m *Mesh[U]) String() string {
	return fmt.Sprintf("Mesh{%s, cells=%d, nodes=%d, exterior facets=%d, interior facets=%d}",
		m.CellType, m.NumCells(), m.NumNodes(), len(m.ExteriorFacets())/2, len(m.InteriorFacets())/4)
}
