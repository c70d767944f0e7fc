// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package form

import (
	cerrors "cloudeng.io/errors"
)

// Validation error categories.
const (
	CategoryValidation = "validation"
	CategoryRequired   = "required"
)

// ValidationError is a user-facing validation failure registered against a
// field. Err carries the field-specific sentinel for errors.Is.
type ValidationError struct {
	Field    string
	Message  string
	Category string
	Fatal    bool
	Err      error
}

// Error implements error.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Unwrap returns the underlying sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validator collects validation errors for one form submission.
type Validator struct {
	lang string
	tr   Translator
	errs []*ValidationError
}

// NewValidator creates a Validator producing messages in lang.
func NewValidator(lang string, tr Translator) *Validator {
	return &Validator{lang: lang, tr: tr}
}

// Lang returns the message language.
func (v *Validator) Lang() string {
	return v.lang
}

// T translates key into the validator language.
func (v *Validator) T(key string, args ...any) string {
	return translate(v.tr, v.lang, key, args...)
}

// ValidationError registers a message against a field and returns the
// registered error.
func (v *Validator) ValidationError(field, message, category string, fatal bool, cause error) *ValidationError {
	ve := &ValidationError{
		Field:    field,
		Message:  message,
		Category: category,
		Fatal:    fatal,
		Err:      cause,
	}
	v.errs = append(v.errs, ve)
	return ve
}

// Errors returns all registered errors in registration order.
func (v *Validator) Errors() []*ValidationError {
	return v.errs
}

// FieldErrors returns the first message registered for each field.
func (v *Validator) FieldErrors() map[string]string {
	out := make(map[string]string, len(v.errs))
	for _, e := range v.errs {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

// Message returns the first message registered for field.
func (v *Validator) Message(field string) string {
	for _, e := range v.errs {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

// Valid reports whether no errors were registered.
func (v *Validator) Valid() bool {
	return len(v.errs) == 0
}

// HasFatal reports whether any registered error is fatal.
func (v *Validator) HasFatal() bool {
	for _, e := range v.errs {
		if e.Fatal {
			return true
		}
	}
	return false
}

// Err returns all registered errors as a single error, or nil.
func (v *Validator) Err() error {
	errs := &cerrors.M{}
	for _, e := range v.errs {
		errs.Append(e)
	}
	return errs.Err()
}
