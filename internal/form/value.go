// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package form

import (
	"net/url"
	"strings"
)

// Kind identifies the shape of a submitted or loaded Value.
type Kind int

// Value kinds.
const (
	KindAbsent Kind = iota
	KindString
	KindMap
)

// Value is a raw field value as received from a form submission or loaded
// from storage: absent, a plain string, or a mapping of sub-values such as
// {day, month, year}. It may be incomplete or invalid.
type Value struct {
	kind  Kind
	str   string
	parts map[string]string
}

// Absent returns the empty value.
func Absent() Value {
	return Value{}
}

// StringValue returns a plain string value.
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// MapValue returns a structured value. The map is copied.
func MapValue(m map[string]string) Value {
	parts := make(map[string]string, len(m))
	for k, v := range m {
		parts[k] = v
	}
	return Value{kind: KindMap, parts: parts}
}

// Kind returns the shape of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsAbsent reports whether no value is set.
func (v Value) IsAbsent() bool {
	return v.kind == KindAbsent
}

// Text returns the string of a KindString value and "" otherwise.
func (v Value) Text() string {
	return v.str
}

// Lookup returns a sub-value of a KindMap value.
func (v Value) Lookup(key string) (string, bool) {
	if v.kind != KindMap {
		return "", false
	}
	s, ok := v.parts[key]
	return s, ok
}

// Parts returns a copy of the sub-values of a KindMap value.
func (v Value) Parts() map[string]string {
	if v.kind != KindMap {
		return nil
	}
	parts := make(map[string]string, len(v.parts))
	for k, s := range v.parts {
		parts[k] = s
	}
	return parts
}

// IsEmpty reports whether the value carries no input: absent, a blank
// string, or a mapping whose sub-values are all blank.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindString:
		return strings.TrimSpace(v.str) == ""
	case KindMap:
		for _, s := range v.parts {
			if strings.TrimSpace(s) != "" {
				return false
			}
		}
		return true
	}
	return true
}

// ValueFrom extracts the value of field name from submitted form values.
// Inputs named "name[key]" are collected into a KindMap value; otherwise a
// plain "name" input yields a KindString value.
func ValueFrom(values url.Values, name string) Value {
	prefix := name + "["
	var parts map[string]string
	for key, vals := range values {
		if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, "]") {
			continue
		}
		sub := key[len(prefix) : len(key)-1]
		if sub == "" || strings.ContainsAny(sub, "[]") {
			continue
		}
		if parts == nil {
			parts = make(map[string]string)
		}
		if len(vals) > 0 {
			parts[sub] = vals[0]
		} else {
			parts[sub] = ""
		}
	}
	if parts != nil {
		return Value{kind: KindMap, parts: parts}
	}

	if vals, ok := values[name]; ok {
		if len(vals) == 0 {
			return StringValue("")
		}
		return StringValue(vals[0])
	}
	return Absent()
}
