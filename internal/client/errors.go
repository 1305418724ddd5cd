package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotAuthenticated means no token is stored on the device.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSessionExpired means the backend rejected the stored token with a
	// 401. The token has already been cleared when this is returned.
	ErrSessionExpired = errors.New("session expired")
	ErrNotFound       = errors.New("not found")
	// ErrForeignLink means the backend sent a pagination link pointing
	// away from the configured base URL. It is not followed.
	ErrForeignLink = errors.New("link outside the API base URL")
)

// HTTPError is any non-2xx, non-401 response.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: server returned status %d", e.Method, e.Path, e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// Retryable reports whether a user-initiated retry could succeed.
func (e *HTTPError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotAuthenticated) || errors.Is(err, ErrSessionExpired)
}
