// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package datefield

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloudeng.io/datetime"

	"github.com/olegiv/ocms-fields/internal/dateformat"
	"github.com/olegiv/ocms-fields/internal/form"
	"github.com/olegiv/ocms-fields/internal/reltime"
)

// NotSet is the selector value meaning "no choice".
const NotSet = "NotSet"

// Part keys of a structured date value.
const (
	PartDay   = "day"
	PartMonth = "month"
	PartYear  = "year"
)

var parts = []string{PartDay, PartMonth, PartYear}

// Sentinel errors.
var (
	ErrInvalidFormat = errors.New("invalid date format")
	ErrBelowMinimum  = errors.New("date below minimum")
	ErrAboveMaximum  = errors.New("date above maximum")
	ErrUnknownOption = errors.New("unknown date field option")
	ErrInvalidBound  = errors.New("invalid date bound")
)

// Result is the outcome of Decompose. Raw is the value the field keeps: the
// zero padded triple when the input is a valid date, the input unchanged
// otherwise, or absent for empty input. Date is set only when Valid.
type Result struct {
	Raw   form.Value
	Date  datetime.CalendarDate
	Valid bool
}

// Decompose derives the calendar date of raw. Structured values are read as
// day, month and year in locale; strings must match valueFormat. Empty input
// yields an absent result and a nil error. Invalid input yields the raw value
// and an error wrapping ErrInvalidFormat.
func Decompose(raw form.Value, valueFormat, locale string) (Result, error) {
	if isEmpty(raw) {
		return Result{Raw: form.Absent()}, nil
	}

	switch raw.Kind() {
	case form.KindMap:
		values := make([]string, len(parts))
		for i, key := range parts {
			v, ok := raw.Lookup(key)
			if !ok {
				return Result{Raw: raw}, fmt.Errorf("%w: missing %s", ErrInvalidFormat, key)
			}
			v = strings.TrimSpace(v)
			if v == "" || v == NotSet {
				return Result{Raw: raw}, fmt.Errorf("%w: %s not set", ErrInvalidFormat, key)
			}
			values[i] = v
		}
		date, err := dateformat.ParseTriple(values[0], values[1], values[2], locale)
		if err != nil {
			return Result{Raw: raw}, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
		}
		return valid(date), nil

	default:
		date, err := dateformat.Parse(raw.Text(), valueFormat, locale)
		if err != nil {
			return Result{Raw: raw}, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
		}
		return valid(date), nil
	}
}

func valid(date datetime.CalendarDate) Result {
	day, month, year := dateformat.Triple(date)
	return Result{
		Raw:   form.MapValue(map[string]string{PartDay: day, PartMonth: month, PartYear: year}),
		Date:  date,
		Valid: true,
	}
}

// isEmpty treats NotSet parts as blank.
func isEmpty(raw form.Value) bool {
	if raw.Kind() != form.KindMap {
		return raw.IsEmpty()
	}
	for _, v := range raw.Parts() {
		v = strings.TrimSpace(v)
		if v != "" && v != NotSet {
			return false
		}
	}
	return true
}

// ResolveBound turns a min or max expression into a calendar date. An
// expression matching valueFormat is parsed directly; anything else is a
// relative expression resolved against now.
func ResolveBound(expr, valueFormat, locale string, now time.Time) (datetime.CalendarDate, error) {
	expr = strings.TrimSpace(expr)
	if date, err := dateformat.Parse(expr, valueFormat, locale); err == nil {
		return date, nil
	}
	t, err := reltime.Resolve(expr, now)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", ErrInvalidBound, expr, err)
	}
	return dateformat.FromTime(t), nil
}
