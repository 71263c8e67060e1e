// Package errors_test covers the AppError type, factory functions, and
// error-chain helpers defined in pkg/errors/errors.go.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/ninchi/pkg/errors"
)

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal", errors.CodeInternal, "unexpected failure"},
		{"input", errors.CodeInput, "empty structure"},
		{"lookup", errors.CodeLookup, "unknown element symbol"},
		{"invariant", errors.CodeInvariant, "dimension mismatch"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
		})
	}
}

func TestNewf_FormatsMessage(t *testing.T) {
	t.Parallel()

	ae := errors.Newf(errors.CodeInput, "declared %d atoms, found %d", 3, 2)
	assert.Equal(t, "declared 3 atoms, found 2", ae.Message)
}

func TestError_Format(t *testing.T) {
	t.Parallel()

	ae := errors.InputError("bad counts line")
	assert.Equal(t, "[MOL_001] bad counts line", ae.Error())

	withDetail := ae.WithDetail("line 6")
	assert.Equal(t, "[MOL_001] bad counts line: line 6", withDetail.Error())

	withCause := withDetail.WithCause(stderrors.New("EOF"))
	assert.Equal(t, "[MOL_001] bad counts line: line 6: EOF", withCause.Error())
}

func TestWithDetail_DoesNotMutateReceiver(t *testing.T) {
	t.Parallel()

	base := errors.LookupError("unknown symbol")
	derived := base.WithDetailf("symbol=%q", "Xx")

	assert.Empty(t, base.Detail)
	assert.Equal(t, `symbol="Xx"`, derived.Detail)
}

func TestWithDetail_NilReceiver(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(stderrors.New("x")))
}

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "should not matter"))
}

func TestWrap_UnwrapReturnsCause(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("no such file or directory")
	ae := errors.Wrap(cause, errors.CodeInput, "failed to open molfile")

	assert.Equal(t, cause, stderrors.Unwrap(ae))
	assert.True(t, stderrors.Is(ae, cause))
}

func TestWrap_PreservesOriginalCodeWhenCodeUnknown(t *testing.T) {
	t.Parallel()

	inner := errors.LookupError("unknown symbol")
	outer := errors.Wrap(inner, errors.CodeUnknown, "parsing atom block")

	require.NotNil(t, outer)
	assert.Equal(t, errors.CodeLookup, outer.Code)
}

func TestWrap_OverridesCodeWhenExplicit(t *testing.T) {
	t.Parallel()

	inner := errors.LookupError("unknown symbol")
	outer := errors.Wrap(inner, errors.CodeInternal, "unexpected state")

	assert.Equal(t, errors.CodeInternal, outer.Code)
}

func TestIsCode_TraversesChain(t *testing.T) {
	t.Parallel()

	inner := errors.ConvergenceWarning("iteration cap reached")
	wrapped := fmt.Errorf("canonicalize: %w", inner)

	assert.True(t, errors.IsCode(wrapped, errors.CodeConvergence))
	assert.False(t, errors.IsCode(wrapped, errors.CodeInput))
	assert.False(t, errors.IsCode(nil, errors.CodeInput))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.CodeInvariant, errors.GetCode(errors.InvariantViolation("x")))
	assert.Equal(t, errors.CodeInput, errors.GetCode(fmt.Errorf("ctx: %w", errors.InputError("x"))))
}

func TestTaxonomyConstructors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeInput, errors.InputError("x").Code)
	assert.Equal(t, errors.CodeLookup, errors.LookupError("x").Code)
	assert.Equal(t, errors.CodeConvergence, errors.ConvergenceWarning("x").Code)
	assert.Equal(t, errors.CodeInvariant, errors.InvariantViolation("x").Code)
	assert.Equal(t, errors.CodeInternal, errors.Internal("x").Code)
}
