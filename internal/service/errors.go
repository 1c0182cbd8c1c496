package service

import (
	"errors"
	"sort"
	"strings"
)

// Error kinds returned by AuthService. Messages of ErrConflict and
// ErrUnauthorized are safe to show to callers; ErrInternal hides its cause.
var (
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("username already exists")
	ErrUnauthorized = errors.New("invalid credentials")
	ErrInternal     = errors.New("internal server error")
)

// ValidationError lists every invalid field with its message.
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
	return "Validation error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Outcome classifies err for logs and metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	default:
		return "internal"
	}
}
