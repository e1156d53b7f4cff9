package search

import (
	"errors"
	"strings"
)

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrUpstreamUnavailable = errors.New("catalog service unavailable")
)

// InvalidRequestError names the request fields that were missing or empty.
type InvalidRequestError struct {
	Fields []string
}

func (e *InvalidRequestError) Error() string {
	return "missing required field(s): " + strings.Join(e.Fields, ", ")
}

func (e *InvalidRequestError) Unwrap() error { return ErrInvalidRequest }
