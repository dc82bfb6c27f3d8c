package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	e := New(ErrCodeValidation, "price tier must be between 1 and 4")
	assert.Equal(t, "[COMMON_002] price tier must be between 1 and 4", e.Error())

	withDetail := e.WithDetail("got 7")
	assert.Equal(t, "[COMMON_002] price tier must be between 1 and 4: got 7", withDetail.Error())
	// Original must not be mutated.
	assert.Empty(t, e.Detail)
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "ignored"))

	cause := fmt.Errorf("read: connection reset")
	wrapped := Wrap(cause, ErrCodeSnapshotLoad, "failed to read dataset")
	require.NotNil(t, wrapped)
	assert.Equal(t, ErrCodeSnapshotLoad, wrapped.Code)
	assert.ErrorIs(t, wrapped, cause)
}

func TestWrap_PreservesCodeForUnknown(t *testing.T) {
	inner := NewZipNotFound("00000")
	outer := Wrap(inner, ErrCodeUnknown, "lookup failed")
	assert.Equal(t, ErrCodeZipNotFound, outer.Code)
	assert.True(t, IsNotFound(outer))
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(NewValidation("bad")))
	assert.True(t, IsValidation(New(ErrCodeUnknownCuisine, "unknown cuisine")))
	assert.True(t, IsValidation(New(ErrCodeInvalidConcept, "bad concept")))
	assert.False(t, IsValidation(NewInternal("boom")))
	assert.False(t, IsValidation(nil))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, ErrCodeUnknown, GetCode(fmt.Errorf("plain")))
	assert.Equal(t, ErrCodeZipNotFound, GetCode(NewZipNotFound("08053")))

	wrapped := fmt.Errorf("handler: %w", NewValidation("bad"))
	assert.Equal(t, ErrCodeValidation, GetCode(wrapped))
}

func TestHTTPStatusForCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatusForCode(ErrCodeZipNotFound))
	assert.Equal(t, http.StatusBadRequest, HTTPStatusForCode(ErrCodeUnknownCuisine))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatusForCode(ErrCodeModelUnavailable))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusForCode(ErrorCode("NOPE")))
	assert.True(t, IsClientError(ErrCodeValidation))
	assert.False(t, IsClientError(ErrCodeInternal))
}
