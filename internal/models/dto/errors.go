package dto

import (
	"sort"
	"strings"
)

// FieldErrors maps a form field to the reason it was rejected.
type FieldErrors map[string]string

// Add records the first problem seen for a field.
func (e FieldErrors) Add(field, msg string) {
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

// Err returns nil when no field failed.
func (e FieldErrors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func required(errs FieldErrors, field, value string) {
	if strings.TrimSpace(value) == "" {
		errs.Add(field, "this field is required")
	}
}

func maxLen(errs FieldErrors, field, value string, n int) {
	if len([]rune(value)) > n {
		errs.Add(field, "too long")
	}
}

func between(errs FieldErrors, field string, value, lo, hi int) {
	if value < lo || value > hi {
		errs.Add(field, "out of range")
	}
}
