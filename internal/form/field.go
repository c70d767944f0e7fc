// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package form provides the field capability interface used by admin forms,
// the raw value model, validation error collection and the form holder that
// loads, validates and renders a set of fields.
package form

import (
	"fmt"
	"html"
	"html/template"
	"log/slog"
	"mime/multipart"
	"regexp"
	"sort"
	"strings"
)

// Translator looks up translated messages.
type Translator interface {
	T(lang, key string, args ...any) string
}

func translate(tr Translator, lang, key string, args ...any) string {
	if tr == nil {
		if len(args) == 0 {
			return key
		}
		// The key is not a format string; append the arguments.
		return strings.TrimSuffix(fmt.Sprintln(append([]any{key}, args...)...), "\n")
	}
	return tr.T(lang, key, args...)
}

// RenderContext carries request scoped rendering inputs.
type RenderContext struct {
	Lang         string
	T            Translator
	Requirements *Requirements
	Logger       *slog.Logger
}

// Translate translates key into the context language.
func (c RenderContext) Translate(key string, args ...any) string {
	return translate(c.T, c.Lang, key, args...)
}

// Log returns the context logger or the default logger.
func (c RenderContext) Log() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Field is implemented by every form field.
type Field interface {
	Name() string
	Title() string
	// Type returns the CSS type classes of the field holder.
	Type() string
	SetValue(v Value)
	Value() Value
	// DataValue returns the value in its storage representation.
	DataValue() string
	Render(ctx RenderContext) (template.HTML, error)
	// Validate registers failures with v and returns the first one.
	Validate(v *Validator) error
	// ReadonlyTransformation returns a non-editable copy of the field.
	ReadonlyTransformation() Field
}

// UploadReceiver is implemented by fields that accept file uploads.
type UploadReceiver interface {
	SetUpload(fh *multipart.FileHeader)
}

// Base holds the name, title, CSS classes and HTML attributes shared by all
// fields. Embed it to get Name, Title, ID and attribute handling.
type Base struct {
	name    string
	title   string
	classes []string
	attrs   map[string]string
}

// NewBase returns a Base. An empty title defaults to the name.
func NewBase(name, title string) Base {
	if title == "" {
		title = name
	}
	return Base{name: name, title: title}
}

// Name returns the field name used for submitted values.
func (b *Base) Name() string {
	return b.name
}

// Title returns the field label.
func (b *Base) Title() string {
	return b.title
}

// SetTitle sets the field label.
func (b *Base) SetTitle(title string) {
	b.title = title
}

// ID returns the HTML id derived from the field name.
func (b *Base) ID() string {
	return FieldID(b.name)
}

// AddExtraClass adds CSS classes, separated by spaces.
func (b *Base) AddExtraClass(classes string) {
	for _, c := range strings.Fields(classes) {
		if !b.hasClass(c) {
			b.classes = append(b.classes, c)
		}
	}
}

func (b *Base) hasClass(class string) bool {
	for _, c := range b.classes {
		if c == class {
			return true
		}
	}
	return false
}

// ExtraClasses returns the extra CSS classes.
func (b *Base) ExtraClasses() []string {
	return append([]string(nil), b.classes...)
}

// ExtraClass returns the extra CSS classes joined by spaces.
func (b *Base) ExtraClass() string {
	return strings.Join(b.classes, " ")
}

// SetAttribute sets an HTML attribute rendered on the field element.
// An empty value removes the attribute.
func (b *Base) SetAttribute(name, value string) {
	if value == "" {
		delete(b.attrs, name)
		return
	}
	if b.attrs == nil {
		b.attrs = make(map[string]string)
	}
	b.attrs[name] = value
}

// Attribute returns an HTML attribute value.
func (b *Base) Attribute(name string) string {
	return b.attrs[name]
}

// Attributes returns a copy of the HTML attributes.
func (b *Base) Attributes() map[string]string {
	out := make(map[string]string, len(b.attrs))
	for k, v := range b.attrs {
		out[k] = v
	}
	return out
}

var idUnsafe = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// FieldID turns a field name such as "Date[day]" into an HTML id "Date_day".
func FieldID(name string) string {
	return strings.Trim(idUnsafe.ReplaceAllString(name, "_"), "_")
}

// RenderAttributes renders attributes as ` key="value"` pairs sorted by key.
// Attributes with empty values are skipped.
func RenderAttributes(attrs map[string]string) template.HTMLAttr {
	keys := make([]string, 0, len(attrs))
	for k, v := range attrs {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(" ")
		sb.WriteString(html.EscapeString(k))
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(attrs[k]))
		sb.WriteString(`"`)
	}
	return template.HTMLAttr(sb.String())
}
