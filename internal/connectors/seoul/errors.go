package seoul

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// APIError is a structured upstream error carried inside a RESULT
// envelope. API errors are permanent unless the body carries one of the
// known transient markers: retrying a bad key or a bad service name
// only burns quota.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream error %s: %s", e.Code, e.Message)
}

// TransientError marks a failure worth retrying with backoff.
type TransientError struct {
	err error
}

func (e *TransientError) Error() string { return e.err.Error() }
func (e *TransientError) Unwrap() error { return e.err }

func transient(format string, args ...any) error {
	return &TransientError{err: fmt.Errorf(format, args...)}
}

// IsTransient reports whether an error should be retried. Network
// failures and timeouts are transient; context cancellation is not,
// because the caller asked to stop.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// serverErrorMarkers are substrings the upstream embeds in bodies when
// its own backend falls over. Such responses arrive with status 200 and
// must be retried like a 5xx.
var serverErrorMarkers = []string{
	"ERROR-500",
	"SERVER ERROR",
	"HTTP OPERATION FAILED",
	"서버 오류",
}

func looksLikeServerError(body string) bool {
	upper := strings.ToUpper(body)
	for _, m := range serverErrorMarkers {
		if strings.Contains(upper, strings.ToUpper(m)) {
			return true
		}
	}
	return false
}

// wantsUppercaseType reports whether an API error is the upstream
// complaining about the response format token. Some services accept
// only the uppercase "JSON" path segment and reject "json" with a file
// type error.
func wantsUppercaseType(e *APIError) bool {
	if e.Code == "ERROR-301" {
		return true
	}
	return strings.Contains(strings.ToUpper(e.Message), "TYPE")
}

// emptyDatasetCode is returned by the upstream for a window past the
// end of the data, or for a dataset with no rows at all.
const emptyDatasetCode = "INFO-200"
