// Package errors provides the structured error type returned by the assembly packages.
//
// Errors are categorized by Op (the entry point that failed) and Kind (the failure category).
// Every failure aborts the call in progress; a target vector or matrix that was being written
// holds unspecified partial results afterwards.
//
// Use the Builder for structured construction:
//
//	err := errors.New(errors.OpAssembleMatrix, errors.KindInsertionFailure).
//		Integral("cell:0").
//		Entity(12).
//		Cause(insertErr).
//		Build()
//
// Or use the convenience constructors:
//
//	err := errors.InvalidArgument(errors.OpApplyLifting, "expected %d x0 vectors, got %d", n, m)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
