// Package apperr holds the sentinel errors shared across the bot and maps
// them to metric labels and HTTP statuses.
package apperr

import (
	"context"
	"errors"
	"net/http"
)

var (
	ErrSinkUnavailable = errors.New("order sink unavailable")
	ErrSinkRejected    = errors.New("order sink rejected order")
	ErrOrderNotFound   = errors.New("order not found")
	ErrInvalidPayload  = errors.New("invalid payload")
)

// Kind returns a short, low-cardinality label for err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""

	case errors.Is(err, ErrSinkUnavailable):
		return "sink_unavailable"

	case errors.Is(err, ErrSinkRejected):
		return "sink_rejected"

	case errors.Is(err, ErrOrderNotFound):
		return "not_found"

	case errors.Is(err, ErrInvalidPayload):
		return "invalid_payload"

	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"

	case errors.Is(err, context.Canceled):
		return "canceled"

	default:
		return "internal"
	}
}

func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, ErrOrderNotFound):
		return http.StatusNotFound

	case errors.Is(err, ErrInvalidPayload):
		return http.StatusBadRequest

	case errors.Is(err, ErrSinkUnavailable),
		errors.Is(err, ErrSinkRejected):
		return http.StatusBadGateway

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	default:
		return http.StatusInternalServerError
	}
}
