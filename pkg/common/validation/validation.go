// Package validation provides common validation utilities for the rwflow library.
package validation

import (
	"fmt"
	"strings"

	rwerrors "github.com/vnykmshr/rwflow/pkg/common/errors"
)

// ValidatePositive validates that an integer value is positive (> 0).
// Returns a ValidationError if the value is not positive.
func ValidatePositive(module, field string, value int) error {
	if value <= 0 {
		return rwerrors.NewValidationError(module, field, value, "must be positive").
			WithHint("value must be greater than 0")
	}
	return nil
}

// ValidateNonNegative validates that a numeric value is non-negative (>= 0).
// Returns a ValidationError if the value is negative.
func ValidateNonNegative(module, field string, value float64) error {
	if value < 0 {
		return rwerrors.NewValidationError(module, field, value, "cannot be negative").
			WithHint("use 0 or a positive value")
	}
	return nil
}

// ValidateNotNil validates that an interface value is not nil.
// Returns a ValidationError if the value is nil.
func ValidateNotNil(module, field string, value interface{}) error {
	if value == nil {
		return rwerrors.NewValidationError(module, field, nil, "cannot be nil").
			WithHint("provide a valid " + field)
	}
	return nil
}

// ValidateNotEmpty validates that a string value is not empty.
// Returns a ValidationError if the string is empty.
func ValidateNotEmpty(module, field string, value string) error {
	if value == "" {
		return rwerrors.NewValidationError(module, field, value, "cannot be empty").
			WithHint("provide a non-empty " + field)
	}
	return nil
}

// ValidateLength validates that a byte slice has one of the allowed lengths.
// Returns a ValidationError if the length matches none of them.
func ValidateLength(module, field string, value []byte, allowed ...int) error {
	for _, n := range allowed {
		if len(value) == n {
			return nil
		}
	}
	parts := make([]string, len(allowed))
	for i, n := range allowed {
		parts[i] = fmt.Sprint(n)
	}
	return rwerrors.NewValidationError(module, field, len(value), "unsupported length").
		WithHint("use " + strings.Join(parts, " or ") + " bytes")
}

// ValidateOneOf validates that a string value is one of the allowed options.
// Returns a ValidationError if the value is not recognized.
func ValidateOneOf(module, field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return rwerrors.NewValidationError(module, field, value, "unknown value").
		WithHint("expected one of: " + strings.Join(allowed, ", "))
}
