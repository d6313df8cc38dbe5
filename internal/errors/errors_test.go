package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesCategoryAndSeverity(t *testing.T) {
	// Given: errors created across code ranges
	cases := []struct {
		code     string
		category Category
		severity Severity
	}{
		{ErrCodeConfigInvalid, CategoryConfig, SeverityError},
		{ErrCodeStorageFailure, CategoryStorage, SeverityError},
		{ErrCodeStorageCorrupt, CategoryStorage, SeverityFatal},
		{ErrCodeIndexInconsistent, CategoryIndex, SeverityWarning},
		{ErrCodeRebuildFailed, CategoryIndex, SeverityFatal},
		{ErrCodeEmptySymbols, CategoryValidation, SeverityError},
		{ErrCodeInternal, CategoryInternal, SeverityError},
	}

	for _, tc := range cases {
		e := New(tc.code, "msg", nil)
		assert.Equal(t, tc.category, e.Category, tc.code)
		assert.Equal(t, tc.severity, e.Severity, tc.code)
	}
}

func TestSeqError_ErrorsIsByCode(t *testing.T) {
	// Given: two errors sharing a code with different messages
	a := New(ErrCodeNotFound, "sequence \"x\" not found", nil)
	b := New(ErrCodeNotFound, "different message", nil)

	// Then: errors.Is matches on code
	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, New(ErrCodeEmptyPattern, "", nil)))
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	e := Wrap(ErrCodeStorageFailure, cause)

	require.NotNil(t, e)
	assert.ErrorIs(t, e, cause)
	assert.Equal(t, "disk full", e.Message)
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeStorageFailure, nil))
}

func TestHelpers_Classify(t *testing.T) {
	// NotFound is a lookup error, not invalid input
	nf := NotFound("01ABC")
	assert.True(t, IsNotFound(nf))
	assert.False(t, IsInvalidInput(nf))

	// Empty pattern is invalid input
	ip := New(ErrCodeEmptyPattern, "pattern must not be empty", nil)
	assert.True(t, IsInvalidInput(ip))
	assert.False(t, IsNotFound(ip))

	// Classification works through wrapping
	wrapped := fmt.Errorf("search: %w", Inconsistency("count mismatch"))
	assert.True(t, IsInconsistency(wrapped))
	assert.Equal(t, ErrCodeIndexInconsistent, GetCode(wrapped))

	// Storage classification covers the whole 2xx range
	assert.True(t, IsStorageFailure(New(ErrCodeLockHeld, "locked", nil)))
	assert.False(t, IsStorageFailure(ip))
}

func TestWithDetail_Chains(t *testing.T) {
	e := NotFound("01ABC").WithDetail("op", "read")
	assert.Equal(t, "01ABC", e.Details["id"])
	assert.Equal(t, "read", e.Details["op"])
}
