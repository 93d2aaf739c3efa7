package kernels

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// affine holds the affine map of a simplex: physical gradients of the P1 basis and the measure
type affine struct {
	tdim    int
	measure float64
	grad    [][3]float64 // [vertex][xyz]
}

// newAffine builds the map of the simplex with nv vertices starting at x[0:3*nv]. Embedded cells
// (a triangle in 3D) use the pseudo-inverse J (J^T J)^-1.
func newAffine(x []float64, nv int) (affine, bool) {
	tdim := nv - 1
	J := mat.NewDense(3, tdim, nil)
	for j := 0; j < tdim; j++ {
		for k := 0; k < 3; k++ {
			J.Set(k, j, x[3*(j+1)+k]-x[k])
		}
	}
	var JTJ mat.Dense
	JTJ.Mul(J.T(), J)
	det := mat.Det(&JTJ)
	if det <= 0 {
		return affine{}, false
	}
	var inv mat.Dense
	if err := inv.Inverse(&JTJ); err != nil {
		return affine{}, false
	}
	var G mat.Dense // 3 x tdim, maps reference gradients to physical gradients
	G.Mul(J, &inv)

	a := affine{tdim: tdim, measure: math.Sqrt(det) / float64(factorial(tdim)), grad: make([][3]float64, nv)}
	for k := 0; k < 3; k++ {
		var sum float64
		for j := 0; j < tdim; j++ {
			g := G.At(k, j)
			a.grad[j+1][k] = g
			sum += g
		}
		a.grad[0][k] = -sum
	}
	return a, true
}

func factorial(n int) int {
	f := 1
	for i := 2; i <= n; i++ {
		f *= i
	}
	return f
}

// facetMeasure returns the measure of the facet opposite vertex lf of the simplex with nv
// vertices at x
func facetMeasure(x []float64, nv int, lf int32) float64 {
	var v [][]float64
	for i := 0; i < nv; i++ {
		if int32(i) != lf {
			v = append(v, x[3*i:3*i+3])
		}
	}
	switch len(v) {
	case 1:
		return 1
	case 2:
		return dist(v[0], v[1])
	default:
		var a, b [3]float64
		for k := 0; k < 3; k++ {
			a[k], b[k] = v[1][k]-v[0][k], v[2][k]-v[0][k]
		}
		cx := a[1]*b[2] - a[2]*b[1]
		cy := a[2]*b[0] - a[0]*b[2]
		cz := a[0]*b[1] - a[1]*b[0]
		return 0.5 * math.Sqrt(cx*cx+cy*cy+cz*cz)
	}
}

func dist(p, q []float64) float64 {
	var s float64
	for k := 0; k < 3; k++ {
		s += (p[k] - q[k]) * (p[k] - q[k])
	}
	return math.Sqrt(s)
}

// numVertices infers the simplex vertex count of one cell from the coordinate dofs
func numVertices(x []float64, cells int) int { return len(x) / (3 * cells) }

func constantOr(c []float64, def float64) float64 {
	if len(c) == 0 {
		return def
	}
	return c[0]
}
