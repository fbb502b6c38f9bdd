package externalApi

import (
	"errors"
	"fmt"
)

var (
	ErrSourceUnavailable = errors.New("etoro api request failed")
	ErrMalformedSource   = errors.New("etoro api payload malformed")
)

// StatusError is a non-2xx answer of the remote api.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status code %d", e.StatusCode)
}
