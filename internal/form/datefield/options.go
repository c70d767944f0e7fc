// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package datefield

import (
	"fmt"
	"strconv"
)

// Option names.
const (
	OptShowCalendar    = "showcalendar"
	OptDateFormat      = "dateformat"
	OptDataValueFormat = "datavalueformat"
	OptDMYSeparator    = "dmyseparator"
	OptRange           = "range"
	OptMin             = "min"
	OptMax             = "max"
)

// DefaultDataValueFormat is the storage format used when none is configured.
const DefaultDataValueFormat = "yyyy-MM-dd"

var knownOptions = map[string]bool{
	OptShowCalendar:    true,
	OptDateFormat:      true,
	OptDataValueFormat: true,
	OptDMYSeparator:    true,
	OptRange:           true,
	OptMin:             true,
	OptMax:             true,
}

// Config holds the default options of date fields. It is loaded from the
// environment with the OCMS_DATE_ prefix.
type Config struct {
	ShowCalendar    bool   `env:"SHOW_CALENDAR" envDefault:"false"`
	DateFormat      string `env:"FORMAT"`
	DataValueFormat string `env:"VALUE_FORMAT" envDefault:"yyyy-MM-dd"`
	Separator       string `env:"SEPARATOR"`
	Range           string `env:"RANGE"`
	Min             string `env:"MIN"`
	Max             string `env:"MAX"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{DataValueFormat: DefaultDataValueFormat}
}

func (c Config) values() map[string]string {
	m := map[string]string{
		OptDateFormat:      c.DateFormat,
		OptDataValueFormat: c.DataValueFormat,
		OptDMYSeparator:    c.Separator,
		OptRange:           c.Range,
		OptMin:             c.Min,
		OptMax:             c.Max,
	}
	if c.ShowCalendar {
		m[OptShowCalendar] = "true"
	}
	return m
}

// Options is the per-field configuration. Lookups return the field override
// when one is set and the default otherwise. Overrides never change the
// defaults.
type Options struct {
	base      map[string]string
	overrides map[string]string
}

// NewOptions returns options backed by defaults.
func NewOptions(defaults Config) *Options {
	return &Options{
		base:      defaults.values(),
		overrides: make(map[string]string),
	}
}

// Get returns the value of option name. ok is false when the option is unset
// or empty.
func (o *Options) Get(name string) (string, bool) {
	v, found := o.overrides[name]
	if !found {
		v = o.base[name]
	}
	return v, v != ""
}

// Value returns the value of option name, or "".
func (o *Options) Value(name string) string {
	v, _ := o.Get(name)
	return v
}

// Set overrides option name for this field. An empty value hides the default.
func (o *Options) Set(name, value string) error {
	if !knownOptions[name] {
		return fmt.Errorf("%w: %q", ErrUnknownOption, name)
	}
	o.overrides[name] = value
	return nil
}

// Unset removes the override of option name.
func (o *Options) Unset(name string) {
	delete(o.overrides, name)
}

// ShowCalendar reports whether the calendar option is enabled.
func (o *Options) ShowCalendar() bool {
	v, ok := o.Get(OptShowCalendar)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// DataValueFormat returns the storage format.
func (o *Options) DataValueFormat() string {
	if v, ok := o.Get(OptDataValueFormat); ok {
		return v
	}
	return DefaultDataValueFormat
}
