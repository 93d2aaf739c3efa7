package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: New(OpAssembleMatrix, KindInsertionFailure).
				Integral("cell:0").
				Entity(7).
				Detail("row %d", 3).
				Cause(stderrors.New("index out of range")).
				Build(),
			contains: []string{"[assemble_matrix]", "insertion_failure", "cell:0#7", "row 3",
				"caused by", "index out of range"},
		},
		{
			name:     "minimal error",
			err:      &Error{Op: OpPack, Kind: KindInvalidCoefficient, Entity: NoEntity},
			contains: []string{"[pack]", "invalid_coefficient"},
		},
		{
			name:     "integral without entity",
			err:      New(OpSparsity, KindInvalidArgument).Integral("interior_facet:1").Build(),
			contains: []string{"at interior_facet:1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				assert.True(t, strings.Contains(msg, s), "message %q does not contain %q", msg, s)
			}
		})
	}

	noEntity := New(OpSparsity, KindInvalidArgument).Integral("cell:1").Build()
	assert.NotContains(t, noEntity.Error(), "#")
}

func TestError_Unwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := InsertionFailure(OpSetDiagonal, "", NoEntity, cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, cause, stderrors.Unwrap(err))
}

func TestError_Is(t *testing.T) {
	err := InvalidArgument(OpApplyLifting, "expected %d forms, got %d", 2, 3)
	wrapped := fmt.Errorf("lifting step: %w", err)

	assert.True(t, stderrors.Is(wrapped, &Error{Kind: KindInvalidArgument}))
	assert.True(t, stderrors.Is(wrapped, &Error{Op: OpApplyLifting, Kind: KindInvalidArgument}))
	assert.False(t, stderrors.Is(wrapped, &Error{Op: OpPack, Kind: KindInvalidArgument}))
	assert.False(t, stderrors.Is(wrapped, &Error{Kind: KindUnsupportedLayout}))
	assert.Equal(t, "expected 2 forms, got 3", err.Detail)
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("outer: %w", UnsupportedLayout(OpBuild, "degree %d", 4))
	assert.True(t, IsKind(err, KindUnsupportedLayout))
	assert.False(t, IsKind(err, KindInvalidArgument))
	assert.False(t, IsKind(stderrors.New("plain"), KindInvalidArgument))
	assert.False(t, IsKind(nil, KindInvalidArgument))
}

func TestBuilder_Independent(t *testing.T) {
	b := New(OpPack, KindInvalidCoefficient).Entity(1)
	first := b.Build()
	second := b.Entity(2).Build()
	assert.Equal(t, 1, first.Entity)
	assert.Equal(t, 2, second.Entity)
}
