package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/notargets/FEMAssembly/builder"
	"github.com/notargets/FEMAssembly/fem"
	"github.com/notargets/FEMAssembly/kernels"
	"github.com/notargets/FEMAssembly/la"
	"github.com/notargets/FEMAssembly/mesh"
	"github.com/notargets/FEMAssembly/partitions"
	"github.com/notargets/FEMAssembly/runner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const boundaryTol = 1e-12

// Report summarizes an assembled system
type Report struct {
	Cells       int
	Dofs        int
	Constrained int
	NNZ         int
	NormB       float64
	Solved      bool
	MaxError    float64 // NaN unless the exact solution is the boundary value
	Elapsed     time.Duration
}

func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "cells        %d\n", r.Cells)
	fmt.Fprintf(w, "dofs         %d\n", r.Dofs)
	fmt.Fprintf(w, "constrained  %d\n", r.Constrained)
	fmt.Fprintf(w, "nnz          %d\n", r.NNZ)
	fmt.Fprintf(w, "|b|          %.12g\n", r.NormB)
	if r.Solved && !math.IsNaN(r.MaxError) {
		fmt.Fprintf(w, "max error    %.3e\n", r.MaxError)
	}
	fmt.Fprintf(w, "elapsed      %s\n", r.Elapsed)
}

func runAssembleCmd(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	p, err := LoadProblem(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("workers") {
		p.Workers = workers
	}
	if cmd.Flags().Changed("strategy") {
		p.Strategy = strategy
	}
	if err := p.Validate(); err != nil {
		return err
	}

	report, err := Assemble(cmd.Context(), p, solve, logger)
	if err != nil {
		return err
	}
	report.Print(cmd.OutOrStdout())
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func createMesh(mc MeshConfig) (*mesh.Mesh[float64], error) {
	switch mc.Cell {
	case "interval":
		return mesh.CreateUnitInterval[float64](mc.N)
	case "triangle":
		return mesh.CreateUnitSquare[float64](mc.N, mc.N)
	case "tetrahedron":
		return mesh.CreateUnitCube[float64](mc.N)
	default:
		return nil, fmt.Errorf("unknown cell %q", mc.Cell)
	}
}

// boundaryMarker selects the Dirichlet part of the unit box boundary
func boundaryMarker(which string, tdim int) func(x []float64) bool {
	if which == "left" {
		return func(x []float64) bool { return x[0] < boundaryTol }
	}
	return func(x []float64) bool {
		for k := 0; k < tdim; k++ {
			if x[k] < boundaryTol || x[k] > 1-boundaryTol {
				return true
			}
		}
		return false
	}
}

// Assemble builds and assembles the system of p. With solve set, the system is solved densely.
func Assemble(ctx context.Context, p *Problem, solve bool, logger *zap.Logger) (*Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	m, err := createMesh(p.Mesh)
	if err != nil {
		return nil, err
	}
	logger.Info("mesh created", zap.Stringer("mesh", m))

	V, err := fem.CreateFunctionSpace(m, 1, 1)
	if err != nil {
		return nil, err
	}
	f := fem.NewFunction[float64](V)
	if err := f.Interpolate(func(x []float64, _ int) float64 { return p.Source }); err != nil {
		return nil, err
	}

	a, err := builder.Form[float64](V, V).
		Cell(0, kernels.Laplace).
		Constant(p.Kappa).
		Build()
	if err != nil {
		return nil, fmt.Errorf("bilinear form: %w", err)
	}
	L, err := builder.Form[float64](V).
		Cell(0, kernels.Source).
		ExteriorFacet(0, kernels.FacetLoad).
		Coefficients(f).
		Constant(p.Flux).
		Build()
	if err != nil {
		return nil, fmt.Errorf("linear form: %w", err)
	}

	dofs, err := fem.LocateDofsGeometrical(V, boundaryMarker(p.Dirichlet.Boundary, m.Tdim))
	if err != nil {
		return nil, err
	}
	bc, err := fem.NewConstantDirichletBC(V, dofs, p.Dirichlet.Value)
	if err != nil {
		return nil, err
	}
	bcs := []*fem.DirichletBC[float64, float64]{bc}

	sp, err := fem.CreateSparsityPattern(a)
	if err != nil {
		return nil, err
	}
	sp.Finalize()
	A, err := la.NewSparseMatrixFromPattern(sp)
	if err != nil {
		return nil, err
	}

	strat, err := partitions.ParseStrategy(p.Strategy)
	if err != nil {
		return nil, err
	}
	r, err := runner.NewRunner[float64, float64](runner.Config{
		Workers:  p.Workers,
		Strategy: strat,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	if err := r.AssembleMatrix(ctx, A, a, bcs); err != nil {
		return nil, err
	}
	if err := r.SetDiagonal(A, V, bcs, 1); err != nil {
		return nil, err
	}

	b := make([]float64, V.DofMap.Extent())
	if err := r.AssembleVector(ctx, b, L); err != nil {
		return nil, err
	}
	lift := []fem.Optional[float64, float64]{fem.Some(a)}
	if err := r.ApplyLifting(ctx, b, lift, [][]*fem.DirichletBC[float64, float64]{bcs}, nil, 1); err != nil {
		return nil, err
	}
	if err := fem.SetBC(b, bcs, nil, 1); err != nil {
		return nil, err
	}

	report := &Report{
		Cells:       m.NumCells(),
		Dofs:        len(b),
		Constrained: len(dofs),
		NNZ:         A.NNZ(),
		NormB:       floats.Norm(b, 2),
		MaxError:    math.NaN(),
	}
	if solve {
		u, err := solveDense(A, b)
		if err != nil {
			return nil, err
		}
		report.Solved = true
		if p.Source == 0 && p.Flux == 0 {
			report.MaxError = 0
			for _, v := range u {
				report.MaxError = math.Max(report.MaxError, math.Abs(v-p.Dirichlet.Value))
			}
		}
	}
	report.Elapsed = time.Since(start)
	logger.Info("system assembled",
		zap.Int("dofs", report.Dofs),
		zap.Int("nnz", report.NNZ),
		zap.Float64("norm_b", report.NormB),
		zap.Duration("elapsed", report.Elapsed))
	return report, nil
}

func solveDense(A *la.SparseMatrix, b []float64) ([]float64, error) {
	n := len(b)
	var u mat.VecDense
	if err := u.SolveVec(A.ToDense(), mat.NewVecDense(n, append([]float64(nil), b...))); err != nil {
		return nil, fmt.Errorf("dense solve: %w", err)
	}
	return u.RawVector().Data, nil
}
