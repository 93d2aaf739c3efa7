// Package kernels provides hand-written tabulation kernels for degree 1 Lagrange elements on
// intervals, triangles and tetrahedra. The simplex is inferred from the number of coordinate
// dofs. Kernels accumulate into A and leave it unchanged on degenerate geometry.
package kernels

// Area adds the measure of the cell to A[0]
func Area(A, w, c []float64, x []float64, local []int32) {
	g, ok := newAffine(x, numVertices(x, 1))
	if !ok {
		return
	}
	A[0] += g.measure
}

// Mass adds the P1 mass matrix
func Mass(A, w, c []float64, x []float64, local []int32) {
	nv := numVertices(x, 1)
	g, ok := newAffine(x, nv)
	if !ok {
		return
	}
	// int phi_i phi_j = |K| (1 + delta_ij) / ((d+1)(d+2))
	s := g.measure / float64((g.tdim+1)*(g.tdim+2))
	for i := 0; i < nv; i++ {
		for j := 0; j < nv; j++ {
			A[i*nv+j] += s
		}
		A[i*nv+i] += s
	}
}

// Laplace adds kappa * grad(phi_i) . grad(phi_j) with kappa = c[0] (1 when absent)
func Laplace(A, w, c []float64, x []float64, local []int32) {
	nv := numVertices(x, 1)
	g, ok := newAffine(x, nv)
	if !ok {
		return
	}
	kappa := constantOr(c, 1)
	for i := 0; i < nv; i++ {
		for j := 0; j < nv; j++ {
			var dot float64
			for k := 0; k < 3; k++ {
				dot += g.grad[i][k] * g.grad[j][k]
			}
			A[i*nv+j] += kappa * g.measure * dot
		}
	}
}

// Source adds int f phi_i for the P1 coefficient f packed in w
func Source(A, w, c []float64, x []float64, local []int32) {
	nv := numVertices(x, 1)
	g, ok := newAffine(x, nv)
	if !ok {
		return
	}
	s := g.measure / float64((g.tdim+1)*(g.tdim+2))
	var sum float64
	for j := 0; j < nv; j++ {
		sum += w[j]
	}
	for i := 0; i < nv; i++ {
		A[i] += s * (sum + w[i])
	}
}

// FacetLoad adds int_F g phi_i over the exterior facet local[0] with g = c[0] (1 when absent)
func FacetLoad(A, w, c []float64, x []float64, local []int32) {
	nv := numVertices(x, 1)
	lf := local[0]
	share := constantOr(c, 1) * facetMeasure(x, nv, lf) / float64(nv-1)
	for i := 0; i < nv; i++ {
		if int32(i) != lf {
			A[i] += share
		}
	}
}

// InteriorFacetLength adds the measure of an interior facet, taken from the first cell
func InteriorFacetLength(A, w, c []float64, x []float64, local []int32) {
	nv := numVertices(x, 2)
	A[0] += facetMeasure(x[:3*nv], nv, local[0])
}

// InteriorFacetAverage adds int_F avg(phi_i) over an interior facet for the dofs of both cells
func InteriorFacetAverage(A, w, c []float64, x []float64, local []int32) {
	nv := numVertices(x, 2)
	share := 0.5 * facetMeasure(x[:3*nv], nv, local[0]) / float64(nv-1)
	for side := 0; side < 2; side++ {
		for i := 0; i < nv; i++ {
			if int32(i) != local[side] {
				A[side*nv+i] += share
			}
		}
	}
}
