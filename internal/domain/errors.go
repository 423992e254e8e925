package domain

import (
	"errors"
	"strings"
)

// Sentinel errors for event operations.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidDateFormat   = errors.New("Invalid date format")
	ErrInvalidTimeFormat   = errors.New("Invalid time format")
	ErrInvalidTimeValue    = errors.New("Invalid time values")
	ErrConstraintViolation = errors.New("constraint violation")
)

// FieldViolation describes one failed constraint on one field.
type FieldViolation struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Msg   string `json:"message"`
}

// ConstraintViolation is returned by the storage layer when a record breaks a
// declared constraint (required, length, enum, non-empty list, unique slug).
type ConstraintViolation struct {
	Violations []FieldViolation
}

// NewConstraintViolation returns a ConstraintViolation for a single field.
func NewConstraintViolation(field, rule, msg string) *ConstraintViolation {
	return &ConstraintViolation{Violations: []FieldViolation{{Field: field, Rule: rule, Msg: msg}}}
}

func (e *ConstraintViolation) Error() string {
	if len(e.Violations) == 0 {
		return ErrConstraintViolation.Error()
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Msg)
	}
	return ErrConstraintViolation.Error() + ": " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrConstraintViolation) match.
func (e *ConstraintViolation) Is(target error) bool {
	return target == ErrConstraintViolation
}
