package utils

// Scalar is the set of field types assembled tensors may hold
type Scalar interface {
	~float32 | ~float64 | ~complex64 | ~complex128
}

// Real is the set of geometry coordinate types
type Real interface {
	~float32 | ~float64
}
