package gist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

var (
	// ErrNotConfigured is returned when the token or document id is missing.
	// No request is made.
	ErrNotConfigured = errors.New("sync not configured")

	// ErrUnauthenticated matches a RemoteError with status 401.
	ErrUnauthenticated = errors.New("token expired or revoked")

	// ErrEmptyRemote is returned by Pull when the backup file is missing or
	// has no content.
	ErrEmptyRemote = errors.New("remote backup is empty")
)

// RemoteError is a non-2xx response from the gist API.
type RemoteError struct {
	Op      string // "push" or "pull"
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s failed: %d %s", e.Op, e.Status, e.Message)
}

// Is lets errors.Is(err, ErrUnauthenticated) match 401 responses.
func (e *RemoteError) Is(target error) bool {
	return target == ErrUnauthenticated && e.Status == http.StatusUnauthorized
}

// NetworkError is a transport-level failure: no response was received.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return fmt.Sprintf("%s failed: request timed out", e.Op)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// transportError wraps a failed round trip. The request URL is dropped
// because its query carries the access token.
func transportError(op string, err error) *NetworkError {
	var ue *url.Error
	if errors.As(err, &ue) {
		err = ue.Err
	}
	return &NetworkError{Op: op, Err: err}
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}
