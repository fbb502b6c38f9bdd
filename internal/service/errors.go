package service

import "errors"

var (
	ErrSourceUnavailable = errors.New("instruments source unavailable")
	ErrStorageFailure    = errors.New("snapshot storage failure")
	ErrInvalidQuery      = errors.New("invalid query")
)
