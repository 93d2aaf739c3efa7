package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	femerr "github.com/notargets/FEMAssembly/errors"
	"github.com/notargets/FEMAssembly/fem"
	"github.com/notargets/FEMAssembly/la"
	"github.com/notargets/FEMAssembly/partitions"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Runner assembles forms with a pool of worker goroutines. The entities of every integral are
// split into shards, each shard accumulates into private storage, and the shards are merged on
// the calling goroutine in shard order. Results are reproducible for a fixed worker count and
// strategy; with BlockPartition, matrix insertions reach the target in serial order.
//
// Kernels must be safe for concurrent calls. The targets passed to a Runner are only written
// from the calling goroutine.
type Runner[T fem.Scalar, U fem.Real] struct {
	Config
	log *zap.Logger
}

// NewRunner creates a Runner, filling unset Config fields with defaults
func NewRunner[T fem.Scalar, U fem.Real](cfg Config) (*Runner[T, U], error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("runner config: %w", err)
	}
	return &Runner[T, U]{Config: cfg, log: cfg.Logger}, nil
}

// call tracks one runner invocation for logging and metrics
type call struct {
	op       femerr.Op
	start    time.Time
	entities int
	shards   int
	log      *zap.Logger
}

func (r *Runner[T, U]) begin(op femerr.Op) *call {
	return &call{
		op:    op,
		start: time.Now(),
		log:   r.log.With(zap.String("operation", string(op)), zap.String("run_id", uuid.NewString())),
	}
}

// finish records the outcome of the call and passes err through
func (c *call) finish(err error) error {
	elapsed := time.Since(c.start)
	callDuration.WithLabelValues(string(c.op)).Observe(elapsed.Seconds())
	if err != nil {
		failuresTotal.WithLabelValues(string(c.op), failureKind(err)).Inc()
		c.log.Warn("assembly failed", zap.Error(err), zap.Duration("duration", elapsed))
		return err
	}
	c.log.Info("assembly complete",
		zap.Int("entities", c.entities),
		zap.Int("shards", c.shards),
		zap.Duration("duration", elapsed))
	return nil
}

// shard splits the n active entities of one integral
func (r *Runner[T, U]) shard(key fem.IntegralKey, n int) (*partitions.PartitionLayout, error) {
	pb := partitions.PartitionBuilder{
		NumEntities:         n,
		NumPartitions:       r.Workers,
		TargetPartitionSize: r.TargetPartitionSize,
		Strategy:            r.Strategy,
	}
	layout, err := pb.BuildPartitions()
	if err != nil {
		return nil, fmt.Errorf("sharding %s: %w", key, err)
	}
	return layout, nil
}

// run calls fn for every partition of layout, at most Workers at a time. The first error
// cancels the shards that have not started.
func (r *Runner[T, U]) run(ctx context.Context, c *call, key fem.IntegralKey, layout *partitions.PartitionLayout,
	fn func(p partitions.Partition) error) error {
	if layout.TotalEntities == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)
	for _, p := range layout.Partitions {
		p := p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := fn(p); err != nil {
				return err
			}
			c.log.Debug("shard done",
				zap.String("integral", key.String()),
				zap.Int("shard", p.ID),
				zap.Int("entities", p.NumEntities))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	entitiesTotal.WithLabelValues(string(c.op), key.String()).Add(float64(layout.TotalEntities))
	c.entities += layout.TotalEntities
	c.shards += layout.NumPartitions
	return nil
}

// pack gathers the constants and coefficients of f once per call; shards only read them
func pack[T fem.Scalar, U fem.Real](f *fem.Form[T, U]) ([]T, fem.Coefficients[T], error) {
	constants := fem.PackConstants(f)
	coeffs := fem.AllocateCoefficientStorage(f)
	if err := fem.PackCoefficients(f, coeffs); err != nil {
		return nil, nil, err
	}
	return constants, coeffs, nil
}

func checkForm[T fem.Scalar, U fem.Real](op femerr.Op, f *fem.Form[T, U], rank int) error {
	if f == nil {
		return femerr.InvalidArgument(op, "form is nil")
	}
	if f.Rank() != rank {
		return femerr.InvalidArgument(op, "expected a rank %d form, got rank %d", rank, f.Rank())
	}
	return nil
}

// AssembleScalar evaluates the functional M. Shard partial sums are added in shard order.
func (r *Runner[T, U]) AssembleScalar(ctx context.Context, M *fem.Form[T, U]) (value T, err error) {
	const op = femerr.OpAssembleScalar
	c := r.begin(op)
	defer func() { err = c.finish(err) }()

	if err := checkForm(op, M, 0); err != nil {
		return 0, err
	}
	constants, coeffs, err := pack(M)
	if err != nil {
		return 0, err
	}
	for _, key := range M.IntegralKeys() {
		layout, err := r.shard(key, M.NumEntities(key))
		if err != nil {
			return 0, err
		}
		partial := partitions.NewPartitionedArray[T](layout.NumPartitions, 1)
		err = r.run(ctx, c, key, layout, func(p partitions.Partition) error {
			v, err := fem.AssembleScalarIntegral(M, key, p.Entities, constants, coeffs)
			if err != nil {
				return err
			}
			partial.GetPartitionData(p.ID)[0] = v
			return nil
		})
		if err != nil {
			return 0, err
		}
		sum := make([]T, 1)
		if err := partial.ReduceInto(sum); err != nil {
			return 0, err
		}
		value += sum[0]
	}
	return value, nil
}

// AssembleVector adds the local vectors of L into b. Every shard assembles into a private
// zeroed copy that is added into b after the integral completes.
func (r *Runner[T, U]) AssembleVector(ctx context.Context, b []T, L *fem.Form[T, U]) (err error) {
	const op = femerr.OpAssembleVector
	c := r.begin(op)
	defer func() { err = c.finish(err) }()

	if err := checkForm(op, L, 1); err != nil {
		return err
	}
	if extent := L.FunctionSpaces()[0].DofMap.Extent(); len(b) != extent {
		return femerr.InvalidArgument(op, "vector length %d does not match the test space extent %d", len(b), extent)
	}
	constants, coeffs, err := pack(L)
	if err != nil {
		return err
	}
	for _, key := range L.IntegralKeys() {
		err := r.vectorIntegral(ctx, c, b, key, L.NumEntities(key), func(bp []T, positions []int) error {
			return fem.AssembleVectorIntegral(bp, L, key, positions, constants, coeffs)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// vectorIntegral runs one integral into per-shard copies of b and reduces them into b
func (r *Runner[T, U]) vectorIntegral(ctx context.Context, c *call, b []T, key fem.IntegralKey, n int,
	fn func(bp []T, positions []int) error) error {
	layout, err := r.shard(key, n)
	if err != nil {
		return err
	}
	partial := partitions.NewPartitionedArray[T](layout.NumPartitions, len(b))
	err = r.run(ctx, c, key, layout, func(p partitions.Partition) error {
		return fn(partial.GetPartitionData(p.ID), p.Entities)
	})
	if err != nil {
		return err
	}
	return partial.ReduceInto(b)
}

// AssembleMatrix adds the local blocks of a into A with the rows and columns constrained by
// bcs eliminated. Each shard records into its own la.Triplet; the logs are replayed into A
// in shard order once the integral completes.
func (r *Runner[T, U]) AssembleMatrix(ctx context.Context, A la.MatSet[T], a *fem.Form[T, U],
	bcs []*fem.DirichletBC[T, U]) (err error) {
	const op = femerr.OpAssembleMatrix
	c := r.begin(op)
	defer func() { err = c.finish(err) }()

	if err := checkForm(op, a, 2); err != nil {
		return err
	}
	if A == nil {
		return femerr.InvalidArgument(op, "matrix insertion target is nil")
	}
	marker0, marker1, err := fem.BuildDofMarkers(a, bcs)
	if err != nil {
		return err
	}
	constants, coeffs, err := pack(a)
	if err != nil {
		return err
	}
	for _, key := range a.IntegralKeys() {
		layout, err := r.shard(key, a.NumEntities(key))
		if err != nil {
			return err
		}
		logs := make([]*la.Triplet[T], layout.NumPartitions)
		err = r.run(ctx, c, key, layout, func(p partitions.Partition) error {
			t := la.NewTriplet[T]()
			if err := fem.AssembleMatrixIntegral[T, U](t, a, key, p.Entities, constants, coeffs, marker0, marker1); err != nil {
				return err
			}
			logs[p.ID] = t
			return nil
		})
		if err != nil {
			return err
		}
		for _, t := range logs {
			if t == nil {
				continue
			}
			if err := t.Replay(A); err != nil {
				return femerr.InsertionFailure(op, key.String(), femerr.NoEntity, err)
			}
		}
	}
	return nil
}

// ApplyLifting subtracts alpha*A_i*(g_i - x0_i) from b for every present form a[i]. When no
// form is present b is left untouched and nothing is validated.
func (r *Runner[T, U]) ApplyLifting(ctx context.Context, b []T, a []fem.Optional[T, U],
	bcs1 [][]*fem.DirichletBC[T, U], x0 [][]T, alpha T) (err error) {
	const op = femerr.OpApplyLifting
	present := false
	for _, ai := range a {
		if _, ok := ai.Get(); ok {
			present = true
			break
		}
	}
	if !present {
		return nil
	}
	c := r.begin(op)
	defer func() { err = c.finish(err) }()

	constants := make([][]T, len(a))
	coeffs := make([]fem.Coefficients[T], len(a))
	for i, ai := range a {
		f, ok := ai.Get()
		if !ok {
			continue
		}
		if constants[i], coeffs[i], err = pack(f); err != nil {
			return err
		}
	}
	terms, err := fem.NewLiftingTerms(b, a, constants, coeffs, bcs1, x0)
	if err != nil {
		return err
	}
	for i := range terms {
		term := &terms[i]
		for _, key := range term.Form.IntegralKeys() {
			err := r.vectorIntegral(ctx, c, b, key, term.Form.NumEntities(key), func(bp []T, positions []int) error {
				return term.ApplyIntegral(bp, key, positions, alpha)
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// SetDiagonal overwrites the diagonal at the owned constrained dofs of V. It runs on the
// calling goroutine since insertion order decides the result of repeated Set calls.
func (r *Runner[T, U]) SetDiagonal(A la.MatSet[T], V *fem.FunctionSpace[U], bcs []*fem.DirichletBC[T, U],
	diagonal T) (err error) {
	c := r.begin(femerr.OpSetDiagonal)
	defer func() { err = c.finish(err) }()

	if err := fem.SetDiagonalBCs(A, V, bcs, diagonal); err != nil {
		return err
	}
	for _, bc := range bcs {
		if bc != nil && V.Contains(bc.FunctionSpace()) {
			_, owned := bc.DofIndices()
			c.entities += owned
		}
	}
	return nil
}
