package utils

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	MinNameLength     = 2
	MinPasswordLength = 6
	MinTitleLength    = 3
	MaxTitleLength    = 255
	MinContentLength  = 10
	MaxLabelLength    = 50
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// FieldErrors collects validation messages keyed by JSON field name.
// Only the first message per field is kept.
type FieldErrors map[string]string

func (fe FieldErrors) Add(err *ValidationError) {
	if err == nil {
		return
	}
	if _, ok := fe[err.Field]; !ok {
		fe[err.Field] = err.Message
	}
}

func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

// First returns one message, preferring the given field order.
func (fe FieldErrors) First(order ...string) string {
	for _, f := range order {
		if msg, ok := fe[f]; ok {
			return msg
		}
	}
	for _, msg := range fe {
		return msg
	}
	return ""
}

func MinLength(field, value string, min int, message string) *ValidationError {
	if utf8.RuneCountInString(value) < min {
		return &ValidationError{Field: field, Message: message}
	}
	return nil
}

func MaxLength(field, value string, max int, message string) *ValidationError {
	if utf8.RuneCountInString(value) > max {
		return &ValidationError{Field: field, Message: message}
	}
	return nil
}

// ValidateEmail accepts a bare address ("a@b.c"), not a display-name form.
func ValidateEmail(email string) *ValidationError {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return &ValidationError{Field: "email", Message: "Invalid email format"}
	}
	return nil
}

// NormalizeEmail lowercases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
