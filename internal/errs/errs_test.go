package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMissingConfigError(t *testing.T) {
	err := NewMissingConfigError("OPENAI_API_KEY", "CONFLUENCE_URL")
	assert.EqualError(t, err, "missing required configuration: OPENAI_API_KEY, CONFLUENCE_URL")

	var mce *MissingConfigError
	assert.True(t, errors.As(fmt.Errorf("load: %w", err), &mce))
	assert.Len(t, mce.Names, 2)
}

func TestStatusError(t *testing.T) {
	conflict := NewStatusError("confluence", http.StatusConflict, []byte("stale version"))
	assert.True(t, errors.Is(fmt.Errorf("update: %w", conflict), ErrVersionConflict))
	assert.Equal(t, http.StatusConflict, StatusCode(conflict))

	tests := []struct {
		code      int
		retryable bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusBadGateway, true},
		{http.StatusBadRequest, false},
		{http.StatusConflict, false},
		{http.StatusUnauthorized, false},
	}
	for _, tt := range tests {
		se := NewStatusError("svc", tt.code, nil).(*StatusError)
		assert.Equal(t, tt.retryable, se.Retryable(), "status %d", tt.code)
	}

	assert.Equal(t, 0, StatusCode(errors.New("plain")))
	assert.False(t, errors.Is(NewStatusError("svc", http.StatusBadRequest, nil), ErrVersionConflict))
}
