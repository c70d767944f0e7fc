// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package datefield provides a date form field edited through three
// dropdowns for day, month and year.
//
// The field keeps the raw submitted value even when it is not a valid date,
// so Validate can report why. The calendar date is derived from the raw
// value with Decompose every time the value is set.
//
// Options (see Options and Config):
//
//   - dateformat: display format, defaults to the locale format. It also
//     decides the order of the dropdowns.
//   - datavalueformat: storage format used by DataValue, yyyy-MM-dd.
//   - dmyseparator: markup placed between the dropdowns.
//   - range: year dropdown range as "from-to".
//   - min, max: allowed bounds as an ISO date or a relative expression
//     such as "-7 days" or "1 year".
package datefield

import (
	"log/slog"
	"strings"
	"time"

	"cloudeng.io/datetime"

	"github.com/olegiv/ocms-fields/internal/dateformat"
	"github.com/olegiv/ocms-fields/internal/form"
)

// FieldType is the CSS type of the field holder.
const FieldType = "date text"

// Field is a date field rendered as day, month and year dropdowns.
type Field struct {
	form.Base
	opts   *Options
	locale string
	now    func() time.Time
	logger *slog.Logger

	raw   form.Value
	date  datetime.CalendarDate
	valid bool
}

// Option configures a Field at construction.
type Option func(*Field)

// WithLocale sets the field locale. The dateformat default follows it.
func WithLocale(locale string) Option {
	return func(f *Field) { f.locale = locale }
}

// WithClock sets the clock used to resolve relative bounds and the default
// year range.
func WithClock(now func() time.Time) Option {
	return func(f *Field) { f.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Field) { f.logger = logger }
}

// New creates a date field with the given defaults and initial value.
func New(name, title string, defaults Config, value form.Value, opts ...Option) *Field {
	f := &Field{
		Base:   form.NewBase(name, title),
		opts:   NewOptions(defaults),
		locale: dateformat.DefaultLanguage,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if _, ok := f.opts.Get(OptDateFormat); !ok {
		f.opts.overrides[OptDateFormat] = dateformat.LocaleDefault(f.locale)
	}
	f.SetValue(value)
	return f
}

// Type implements form.Field.
func (f *Field) Type() string {
	return FieldType
}

// Options returns the field options. Changes apply to this field only.
func (f *Field) Options() *Options {
	return f.opts
}

// Locale returns the field locale.
func (f *Field) Locale() string {
	return f.locale
}

// SetLocale changes the locale used to parse values and to label the
// dropdowns. The dateformat option is not updated.
func (f *Field) SetLocale(locale string) {
	f.locale = locale
}

// SetValue implements form.Field. It never fails: invalid input is kept as
// the raw value without a calendar date.
func (f *Field) SetValue(v form.Value) {
	res, err := Decompose(v, f.opts.DataValueFormat(), f.locale)
	if err != nil {
		f.logger.Debug("date value not parsed", "field", f.Name(), "error", err)
	}
	f.raw, f.date, f.valid = res.Raw, res.Date, res.Valid
}

// Value implements form.Field and returns the raw value.
func (f *Field) Value() form.Value {
	return f.raw
}

// Date returns the calendar date and whether the value is a valid date.
func (f *Field) Date() (datetime.CalendarDate, bool) {
	return f.date, f.valid
}

// DataValue implements form.Field. It is "" unless the value is a valid date.
func (f *Field) DataValue() string {
	if !f.valid {
		return ""
	}
	return dateformat.Format(f.date, f.opts.DataValueFormat(), f.locale)
}

// ReadonlyTransformation implements form.Field. The original field is left
// unchanged.
func (f *Field) ReadonlyTransformation() form.Field {
	var display string
	switch {
	case f.valid:
		display = dateformat.Format(f.date, f.opts.Value(OptDateFormat), f.locale)
	case f.raw.Kind() == form.KindMap:
		display = f.rawDisplay()
	default:
		display = f.raw.Text()
	}
	ro := form.NewReadonlyField(f.Name(), f.Title(), display, f.DataValue())
	ro.SetType(FieldType)
	ro.AddExtraClass(f.ExtraClass())
	return ro
}

// rawDisplay joins the submitted parts in dropdown order, skipping blank and
// NotSet parts.
func (f *Field) rawDisplay() string {
	sep := strings.TrimSpace(f.opts.Value(OptDMYSeparator))
	if sep == "" || strings.ContainsAny(sep, "<>") {
		sep = " "
	}
	var shown []string
	for _, key := range FragmentOrder(f.opts.Value(OptDateFormat)) {
		v, _ := f.raw.Lookup(key)
		if v = strings.TrimSpace(v); v != "" && v != NotSet {
			shown = append(shown, v)
		}
	}
	return strings.Join(shown, sep)
}

func (f *Field) today() datetime.CalendarDate {
	return dateformat.FromTime(f.now())
}

// bound resolves option name. ok is false when the option is unset or cannot
// be resolved; the latter is logged.
func (f *Field) bound(name string) (datetime.CalendarDate, bool) {
	expr, ok := f.opts.Get(name)
	if !ok {
		return 0, false
	}
	date, err := ResolveBound(expr, f.opts.DataValueFormat(), f.locale, f.now())
	if err != nil {
		f.logger.Warn("ignoring date bound", "field", f.Name(), "option", name, "error", err)
		return 0, false
	}
	return date, true
}
