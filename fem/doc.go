// Package fem assembles finite element forms into caller-owned algebraic storage.
//
// A Form maps (integral type, subdomain id) pairs to kernels and entity lists. Assembly walks the
// integral groups in declared order (cells, exterior facets, interior facets), evaluates the
// kernel of each entity into a zeroed local tensor and adds the result into a scalar, a vector
// span or a la.MatSet. Targets are never zeroed or finalized here, and ghost contributions stay
// in the local ghost region until the caller reverse-scatters them.
//
// Dirichlet conditions enter in three independent passes: row/column elimination during matrix
// assembly (BuildDofMarkers, AssembleMatrix), the right-hand side lifting b - alpha*A*(g - x0)
// (ApplyLifting), and the diagonal and value insertion post-passes (SetDiagonal, SetBC).
//
// Every failure aborts the call with a *errors.Error carrying one of the kinds
// InvalidArgument, UnsupportedLayout, InvalidCoefficient or InsertionFailure. A target written
// by a failed call holds unspecified partial writes.
package fem
