package apperr

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"sink unavailable wrapped", fmt.Errorf("submit: %w", ErrSinkUnavailable), "sink_unavailable"},
		{"sink rejected", ErrSinkRejected, "sink_rejected"},
		{"not found", ErrOrderNotFound, "not_found"},
		{"timeout", fmt.Errorf("post: %w", context.DeadlineExceeded), "timeout"},
		{"canceled", context.Canceled, "canceled"},
		{"unknown", fmt.Errorf("boom"), "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusOK, HTTPStatus(nil))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(fmt.Errorf("lookup: %w", ErrOrderNotFound)))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrInvalidPayload))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(ErrSinkUnavailable))
	assert.Equal(t, http.StatusGatewayTimeout, HTTPStatus(context.DeadlineExceeded))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("boom")))
}
