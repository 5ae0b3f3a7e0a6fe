package Models

import (
	"errors"
	"fmt"
)

// Error classes shared by every package. Anything that is not one of these
// is treated as a storage failure.
var (
	ErrValidation   = errors.New("validation error")
	ErrBusinessRule = errors.New("business rule violation")
	ErrNotFound     = errors.New("not found")
)

// Invalidf builds a validation error that wraps ErrValidation.
func Invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf builds an error that wraps ErrNotFound.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Rulef builds a business rule error.
func Rulef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrBusinessRule, fmt.Sprintf(format, args...))
}
