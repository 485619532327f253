package mediaapi

import (
	"errors"
	"fmt"
)

// ErrRequestFailed wraps every failed call: transport errors and non-2xx
// responses alike.
var ErrRequestFailed = errors.New("media api request failed")

// StatusError is a non-2xx response.
type StatusError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Operation, e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error {
	return ErrRequestFailed
}

// StatusCode returns the upstream HTTP status carried by err, or 0 when the
// request never got a response.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}
