// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package datefield

import (
	"github.com/olegiv/ocms-fields/internal/dateformat"
	"github.com/olegiv/ocms-fields/internal/form"
)

// Validate implements form.Field. Empty values are valid. The first failure
// is registered with v and returned: a malformed value wins over the range
// checks.
func (f *Field) Validate(v *form.Validator) error {
	if f.raw.IsAbsent() {
		return nil
	}

	format := f.opts.Value(OptDateFormat)
	if !f.valid {
		_, cause := Decompose(f.raw, f.opts.DataValueFormat(), f.locale)
		if cause == nil {
			cause = ErrInvalidFormat
		}
		return v.ValidationError(f.Name(), v.T("validation.date_format", format),
			form.CategoryValidation, false, cause)
	}

	if minDate, ok := f.bound(OptMin); ok && dateformat.Compare(f.date, minDate) < 0 {
		return v.ValidationError(f.Name(),
			v.T("validation.date_min", dateformat.Format(minDate, format, v.Lang())),
			form.CategoryValidation, false, ErrBelowMinimum)
	}

	if maxDate, ok := f.bound(OptMax); ok && dateformat.Compare(f.date, maxDate) > 0 {
		return v.ValidationError(f.Name(),
			v.T("validation.date_max", dateformat.Format(maxDate, format, v.Lang())),
			form.CategoryValidation, false, ErrAboveMaximum)
	}
	return nil
}
