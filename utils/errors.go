// Package utils contains small helpers shared across the body tracking packages.
package utils

import (
	"github.com/pkg/errors"
)

// NewUnexpectedTypeError is used when there is a type mismatch.
func NewUnexpectedTypeError[ExpectedT any](actual interface{}) error {
	return errors.Errorf("expected %T but got %T", *new(ExpectedT), actual)
}

// NewOutOfRangeError is used when an index falls outside [0, limit).
func NewOutOfRangeError(what string, index, limit int) error {
	return errors.Errorf("%s %d out of range [0, %d)", what, index, limit)
}
