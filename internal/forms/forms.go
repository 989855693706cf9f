// Package forms parses and validates user input for events and comments.
package forms

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// NonField is the key for errors not tied to a single input.
const NonField = "__all__"

// ValidationError carries field-level messages keyed by input name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FieldError builds a ValidationError for a single field.
func FieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// FieldErrors extracts field messages from err, nil when err is not a
// validation failure.
func FieldErrors(err error) map[string]string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}

func fromOzzo(err error) *ValidationError {
	out := map[string]string{}

	var errs validation.Errors
	if errors.As(err, &errs) {
		for field, fieldErr := range errs {
			out[field] = fieldErr.Error()
		}
	} else {
		out[NonField] = err.Error()
	}
	return &ValidationError{Fields: out}
}
