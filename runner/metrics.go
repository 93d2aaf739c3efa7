package runner

import (
	"context"
	stderrors "errors"

	femerr "github.com/notargets/FEMAssembly/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// entitiesTotal counts entities handed to kernels by operation and integral
	entitiesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "femassembly_entities_total",
		Help: "Total entities assembled by operation and integral",
	}, []string{"operation", "integral"})

	// callDuration tracks the wall time of one runner call
	callDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "femassembly_duration_seconds",
		Help:    "Assembly call duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 0.1ms to ~26s
	}, []string{"operation"})

	// failuresTotal counts failed calls by error kind
	failuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "femassembly_failures_total",
		Help: "Total failed assembly calls by operation and error kind",
	}, []string{"operation", "kind"})
)

// failureKind maps an error to its metric label
func failureKind(err error) string {
	var e *femerr.Error
	switch {
	case stderrors.As(err, &e):
		return string(e.Kind)
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
