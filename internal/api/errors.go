package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// HTTPError is returned for any non-2xx response. The body is not inspected.
type HTTPError struct {
	Method     string
	Path       string
	Status     int
	StatusText string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.StatusText)
}

// NetworkError wraps a transport failure: refused connection, DNS, timeout,
// cancellation.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// MalformedResponseError is returned when a success response body is not the
// JSON the operation expects.
type MalformedResponseError struct {
	Op  string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// IsStatus reports whether err is an HTTPError with the given status code.
func IsStatus(err error, status int) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Status == status
}

// statusText returns the reason phrase of a response, falling back to the
// standard text for its code.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
