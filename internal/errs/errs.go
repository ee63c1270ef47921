package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"codebase-docgen/pkg/response"
)

var ErrRouteNotFound = response.NewError("docgen.route_not_found", "endpoint not found")
var ErrMethodNotAllowed = response.NewError("docgen.method_not_allowed", "method not allowed")
var ErrRateLimited = response.NewError("docgen.rate_limited", "too many requests")
var ErrInternal = response.NewError("docgen.internal_server_error", "internal server error")

var ErrVersionConflict = errors.New("page version conflict")
var ErrMalformedResponse = errors.New("malformed response")
var ErrRootPageFailed = errors.New("failed to publish root page")
var ErrNotADirectory = errors.New("not a directory")

var errorMissingConfigFmt = "missing required configuration: %s"

// MissingConfigError lists every required environment variable that was not set.
type MissingConfigError struct {
	Names []string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf(errorMissingConfigFmt, strings.Join(e.Names, ", "))
}

func NewMissingConfigError(names ...string) error {
	return &MissingConfigError{Names: names}
}

// StatusError is a non-2xx answer from a remote API.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("%s request failed with status %d: %s", e.Service, e.StatusCode, body)
}

// Is lets errors.Is match a 409 against ErrVersionConflict.
func (e *StatusError) Is(target error) bool {
	return target == ErrVersionConflict && e.StatusCode == http.StatusConflict
}

// Retryable reports whether the status is worth retrying: throttling or a server fault.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

func NewStatusError(service string, statusCode int, body []byte) error {
	return &StatusError{Service: service, StatusCode: statusCode, Body: string(body)}
}

// StatusCode extracts the HTTP status from err, or 0 when err carries none.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
