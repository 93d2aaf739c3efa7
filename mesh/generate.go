package mesh

import (
	femerr "github.com/notargets/FEMAssembly/errors"
	"github.com/notargets/FEMAssembly/utils"
)

// CreateUnitInterval returns a mesh of [0,1] with n equal intervals
func CreateUnitInterval[U utils.Real](n int) (*Mesh[U], error) {
	if n < 1 {
		return nil, femerr.InvalidArgument(femerr.OpBuild, "interval count must be positive, got %d", n)
	}
	x := make([]U, 0, 3*(n+1))
	for i := 0; i <= n; i++ {
		x = append(x, U(float64(i)/float64(n)), 0, 0)
	}
	cells := make([]int32, 0, 2*n)
	for i := 0; i < n; i++ {
		cells = append(cells, int32(i), int32(i+1))
	}
	return New(1, x, cells, 2, nil, nil)
}

// CreateUnitSquare returns a mesh of [0,1]^2 with nx*ny squares, each split into two
// triangles along the diagonal from the lower left to the upper right corner
func CreateUnitSquare[U utils.Real](nx, ny int) (*Mesh[U], error) {
	if nx < 1 || ny < 1 {
		return nil, femerr.InvalidArgument(femerr.OpBuild, "cell counts must be positive, got %dx%d", nx, ny)
	}
	x := make([]U, 0, 3*(nx+1)*(ny+1))
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			x = append(x, U(float64(i)/float64(nx)), U(float64(j)/float64(ny)), 0)
		}
	}
	node := func(i, j int) int32 { return int32(j*(nx+1) + i) }
	cells := make([]int32, 0, 6*nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			v0, v1, v2, v3 := node(i, j), node(i+1, j), node(i, j+1), node(i+1, j+1)
			cells = append(cells, v0, v1, v3, v0, v3, v2)
		}
	}
	return New(2, x, cells, 3, nil, nil)
}

// kuhnPaths lists, for the 6 tetrahedra of a cube, the corner offsets (bit 0 = x, bit 1 = y,
// bit 2 = z) along a monotone path from the lowest to the highest corner
var kuhnPaths = [6][4]int{
	{0, 1, 3, 7},
	{0, 1, 5, 7},
	{0, 2, 3, 7},
	{0, 2, 6, 7},
	{0, 4, 5, 7},
	{0, 4, 6, 7},
}

// CreateUnitCube returns a mesh of [0,1]^3 with n^3 cubes, each split into 6 tetrahedra
// sharing the main diagonal. The split is conforming across neighbouring cubes.
func CreateUnitCube[U utils.Real](n int) (*Mesh[U], error) {
	if n < 1 {
		return nil, femerr.InvalidArgument(femerr.OpBuild, "cube count must be positive, got %d", n)
	}
	np := n + 1
	x := make([]U, 0, 3*np*np*np)
	for k := 0; k <= n; k++ {
		for j := 0; j <= n; j++ {
			for i := 0; i <= n; i++ {
				x = append(x, U(float64(i)/float64(n)), U(float64(j)/float64(n)), U(float64(k)/float64(n)))
			}
		}
	}
	node := func(i, j, k int) int32 { return int32((k*np+j)*np + i) }
	cells := make([]int32, 0, 24*n*n*n)
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				for _, path := range kuhnPaths {
					for _, corner := range path {
						cells = append(cells, node(i+(corner&1), j+((corner>>1)&1), k+((corner>>2)&1)))
					}
				}
			}
		}
	}
	return New(3, x, cells, 4, nil, nil)
}
