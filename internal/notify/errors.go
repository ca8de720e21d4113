package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/Crocmagnon/ynab-card-notify/internal/ynab"
)

// ValidationError reports a notification that cannot be turned into a transaction. It is
// never worth retrying.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// RemoteError reports a failed call to YNAB. StatusCode is zero when no response arrived.
type RemoteError struct {
	StatusCode int
	Detail     string
	Timeout    bool
	Err        error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Timeout:
		return "ynab did not answer in time"
	case e.StatusCode != 0 && e.Detail != "":
		return fmt.Sprintf("ynab returned %d: %s", e.StatusCode, e.Detail)
	case e.StatusCode != 0:
		return fmt.Sprintf("ynab returned %d", e.StatusCode)
	default:
		return fmt.Sprintf("calling ynab: %v", e.Err)
	}
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func newRemoteError(err error) *RemoteError {
	remote := &RemoteError{Err: err}

	var apiErr *ynab.APIError
	if errors.As(err, &apiErr) {
		remote.StatusCode = apiErr.StatusCode
		remote.Detail = apiErr.Detail
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		remote.Timeout = true
	}

	return remote
}

// HTTPStatus maps an error returned by the adapter to the status sent to the caller.
func HTTPStatus(err error) int {
	var (
		validationErr *ValidationError
		remoteErr     *RemoteError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &remoteErr) && remoteErr.Timeout:
		return http.StatusGatewayTimeout
	case errors.As(err, &remoteErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
