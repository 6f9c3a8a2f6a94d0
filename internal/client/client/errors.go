package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable           = errors.New("server unavailable")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrLocalDataNotAvailable = errors.New("local data unavailable")
)

// APIError is a non-2xx server response that is not a plain auth failure.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}
