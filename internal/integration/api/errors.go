package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized is wrapped by status errors for 401 and 403 responses.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrOffline is wrapped by errors where the backend could not be reached.
	ErrOffline = errors.New("backend unreachable")
	// ErrNotFound is wrapped by status errors for 404 responses.
	ErrNotFound = errors.New("not found")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string

	kind error
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += ": " + body
	}
	return msg
}

// Unwrap exposes the sentinel matching the status code, if any.
func (e *StatusError) Unwrap() error { return e.kind }

func newStatusError(method, path string, code int, body []byte, notFound error) *StatusError {
	se := &StatusError{Method: method, Path: path, Code: code, Body: truncateBody(body)}
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		se.kind = ErrUnauthorized
	case http.StatusNotFound:
		se.kind = notFound
	}
	return se
}

func truncateBody(b []byte) string {
	const maxBody = 512
	if len(b) > maxBody {
		return string(b[:maxBody]) + "..."
	}
	return string(b)
}

// IsOffline reports whether err means the backend could not be reached.
func IsOffline(err error) bool {
	return errors.Is(err, ErrOffline)
}
