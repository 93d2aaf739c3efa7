package element

import (
	"math"

	femerr "github.com/notargets/FEMAssembly/errors"
	"gonum.org/v1/gonum/mat"
)

// Quadrature is a rule on a reference cell: Points [npts][tdim], Weights [npts]
type Quadrature struct {
	Cell    CellType
	Degree  int
	Points  [][]float64
	Weights []float64
}

// NewQuadrature returns a collapsed Gauss-Jacobi rule on the reference simplex that
// integrates polynomials of total degree <= degree exactly
func NewQuadrature(ct CellType, degree int) (Quadrature, error) {
	if degree < 0 {
		return Quadrature{}, femerr.InvalidArgument(femerr.OpBuild, "negative quadrature degree %d", degree)
	}
	// n points per direction integrate degree 2n-1 exactly
	n := degree/2 + 1
	q := Quadrature{Cell: ct, Degree: degree}

	switch ct {
	case Point:
		q.Points = [][]float64{{}}
		q.Weights = []float64{1}
	case Interval:
		x, w := GaussJacobi(0, 0, n-1)
		for i := range x {
			q.Points = append(q.Points, []float64{0.5 * (1 + x[i])})
			q.Weights = append(q.Weights, 0.5*w[i])
		}
	case Triangle:
		// Collapse (a, b) in [-1,1]^2 onto the triangle: x = (1+a)(1-b)/4, y = (1+b)/2,
		// dx dy = (1-b)/8 da db; the (1-b) factor goes into the Jacobi weight
		xa, wa := GaussJacobi(0, 0, n-1)
		xb, wb := GaussJacobi(1, 0, n-1)
		for i := range xa {
			for j := range xb {
				q.Points = append(q.Points, []float64{
					0.25 * (1 + xa[i]) * (1 - xb[j]),
					0.5 * (1 + xb[j]),
				})
				q.Weights = append(q.Weights, wa[i]*wb[j]/8)
			}
		}
	case Tetrahedron:
		// x = (1+a)(1-b)(1-c)/8, y = (1+b)(1-c)/4, z = (1+c)/2, dV = (1-b)(1-c)^2/64
		xa, wa := GaussJacobi(0, 0, n-1)
		xb, wb := GaussJacobi(1, 0, n-1)
		xc, wc := GaussJacobi(2, 0, n-1)
		for i := range xa {
			for j := range xb {
				for k := range xc {
					q.Points = append(q.Points, []float64{
						0.125 * (1 + xa[i]) * (1 - xb[j]) * (1 - xc[k]),
						0.25 * (1 + xb[j]) * (1 - xc[k]),
						0.5 * (1 + xc[k]),
					})
					q.Weights = append(q.Weights, wa[i]*wb[j]*wc[k]/64)
				}
			}
		}
	default:
		return Quadrature{}, femerr.UnsupportedLayout(femerr.OpBuild, "no quadrature rule for %s", ct)
	}
	return q, nil
}

// GaussJacobi computes the N+1 point Gauss quadrature for the weight (1-x)^alpha (1+x)^beta
// on [-1,1] from the eigen decomposition of the Jacobi matrix
func GaussJacobi(alpha, beta float64, N int) (X, W []float64) {
	if N == 0 {
		return []float64{-(alpha - beta) / (alpha + beta + 2.)}, []float64{Gamma0(alpha, beta)}
	}

	h1 := make([]float64, N+1)
	for i := 0; i < N+1; i++ {
		h1[i] = 2*float64(i) + alpha + beta
	}

	// main diagonal: d0[i] = -(β²-α²)/((2i+α+β)*(2i+α+β+2))
	d0 := make([]float64, N+1)
	fac := beta*beta - alpha*alpha
	for i := 0; i < N+1; i++ {
		d0[i] = fac / (h1[i] * (h1[i] + 2.))
	}
	if alpha+beta < 10*1.e-16 {
		d0[0] = 0.
	}

	// 1st upper diagonal
	d1 := make([]float64, N)
	for i := 0; i < N; i++ {
		ip1 := float64(i + 1)
		d1[i] = 2.0 / (h1[i] + 2.0) * math.Sqrt(
			ip1*(ip1+alpha+beta)*(ip1+alpha)*(ip1+beta)/(h1[i]+1)/(h1[i]+3),
		)
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(NewSymTriDiagonal(d0, d1), true); !ok {
		panic("eigenvalue decomposition failed")
	}
	X = eig.Values(nil)

	V := mat.NewDense(len(X), len(X), nil)
	eig.VectorsTo(V)
	W = make([]float64, len(X))
	g0 := Gamma0(alpha, beta)
	for i := range W {
		v := V.At(0, i)
		W[i] = v * v * g0
	}
	return X, W
}

// Gamma0 is the integral of the Jacobi weight over [-1,1]
func Gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	return math.Gamma(alpha+1.) * math.Gamma(beta+1.) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}

// NewSymTriDiagonal builds a symmetric matrix from its diagonal d0 and first off-diagonal d1
func NewSymTriDiagonal(d0, d1 []float64) *mat.SymDense {
	n := len(d0)
	Tri := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		Tri.SetSym(i, i, d0[i])
		if i < n-1 {
			Tri.SetSym(i, i+1, d1[i])
		}
	}
	return Tri
}
