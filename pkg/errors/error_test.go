package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewError(t *testing.T) {
	err := New(ErrCodeNoQuote, "no quote available")
	require.Error(t, err)
	assert.Equal(t, ErrCodeNoQuote, err.Code)
	assert.Equal(t, "[200] no quote available", err.Error())
}

func TestNewfError(t *testing.T) {
	err := Newf(ErrCodeInvalidParameter, "bad period %d", -1)
	assert.Equal(t, "[100] bad period -1", err.Error())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("file does not exist")
	err := Wrap(ErrCodeHistoryLoadFailed, "failed to load history", cause)

	assert.Equal(t, ErrCodeHistoryLoadFailed, err.Code)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "file does not exist")
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeNoCoverage, GetCode(New(ErrCodeNoCoverage, "empty index")))
	assert.Equal(t, ErrCodeUnknown, GetCode(fmt.Errorf("plain error")))
	assert.Equal(t, ErrCodeUnknown, GetCode(nil))
}

func TestHasCodeThroughWrapping(t *testing.T) {
	inner := New(ErrCodeNoQuote, "no quote")
	outer := Wrap(ErrCodeValuationFailed, "valuation failed", inner)

	// HasCode walks the chain; GetCode reports the outermost code only.
	assert.True(t, HasCode(outer, ErrCodeValuationFailed))
	assert.True(t, HasCode(outer, ErrCodeNoQuote))
	assert.False(t, HasCode(outer, ErrCodeNoCoverage))
	assert.Equal(t, ErrCodeValuationFailed, GetCode(outer))

	// A plain error wrapping a coded one keeps its code observable.
	wrapped := fmt.Errorf("trial 3: %w", outer)
	assert.True(t, HasCode(wrapped, ErrCodeNoQuote))
	assert.False(t, HasCode(nil, ErrCodeNoQuote))

	var e *Error
	require.True(t, As(outer.Unwrap(), &e))
	assert.Equal(t, ErrCodeNoQuote, e.Code)
}
