package errors

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
)

// Op names the entry point in which the error occurred
type Op string

const (
	OpBuild          Op = "build"           // form, space and mesh construction
	OpPack           Op = "pack"            // coefficient and constant packing
	OpAssembleScalar Op = "assemble_scalar" // functional evaluation
	OpAssembleVector Op = "assemble_vector" // linear form assembly
	OpAssembleMatrix Op = "assemble_matrix" // bilinear form assembly
	OpApplyLifting   Op = "apply_lifting"   // boundary condition lifting
	OpSetDiagonal    Op = "set_diagonal"    // diagonal re-insertion
	OpSetBC          Op = "set_bc"          // boundary value insertion
	OpSparsity       Op = "sparsity"        // sparsity pattern construction
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidArgument    Kind = "invalid_argument"
	KindUnsupportedLayout  Kind = "unsupported_layout"
	KindInvalidCoefficient Kind = "invalid_coefficient"
	KindInsertionFailure   Kind = "insertion_failure"
)

// NoEntity marks an error that is not tied to a mesh entity
const NoEntity = -1

// Error is the structured error used throughout the assembly packages
type Error struct {
	Cause    error
	Op       Op
	Kind     Kind
	Integral string // integral key, e.g. "exterior_facet:2"
	Entity   int    // position in the integral's entity list, NoEntity if not applicable
	Detail   string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Op))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Integral != "" {
		b.WriteString(" at ")
		b.WriteString(e.Integral)
		if e.Entity != NoEntity {
			b.WriteByte('#')
			b.WriteString(strconv.Itoa(e.Entity))
		}
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target with an empty Op matches any Op.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Op != "" && t.Op != e.Op {
		return false
	}
	return e.Kind == t.Kind
}

// IsKind reports whether any error in err's chain is an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !stderrors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(op Op, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Op:     op,
			Kind:   kind,
			Entity: NoEntity,
		},
	}
}

// Integral sets the integral the error belongs to
func (b *Builder) Integral(key string) *Builder {
	b.err.Integral = key
	return b
}

// Entity sets the offending entity position
func (b *Builder) Entity(pos int) *Builder {
	b.err.Entity = pos
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	e := b.err
	return &e
}

// Convenience constructors for the four kinds

// InvalidArgument creates a shape or argument mismatch error
func InvalidArgument(op Op, msg string, args ...any) *Error {
	return New(op, KindInvalidArgument).Detail(msg, args...).Build()
}

// UnsupportedLayout creates an error for a cell type, degree or node count that has no kernel support
func UnsupportedLayout(op Op, msg string, args ...any) *Error {
	return New(op, KindUnsupportedLayout).Detail(msg, args...).Build()
}

// InvalidCoefficient creates an error for a coefficient that is undefined on an active entity
func InvalidCoefficient(op Op, integral string, entity int, msg string, args ...any) *Error {
	return New(op, KindInvalidCoefficient).Integral(integral).Entity(entity).Detail(msg, args...).Build()
}

// InsertionFailure wraps an error returned by an insertion capability
func InsertionFailure(op Op, integral string, entity int, cause error) *Error {
	return New(op, KindInsertionFailure).Integral(integral).Entity(entity).Cause(cause).Build()
}
