// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package form

import (
	"bytes"
	"fmt"
	"html/template"
)

// ReadonlyField shows a value without allowing edits. The storage value is
// kept in a hidden input so a locked form still submits it.
type ReadonlyField struct {
	Base
	fieldType string
	display   string
	data      string
}

// NewReadonlyField creates a read-only field showing display and carrying
// dataValue.
func NewReadonlyField(name, title, display, dataValue string) *ReadonlyField {
	return &ReadonlyField{
		Base:    NewBase(name, title),
		display: display,
		data:    dataValue,
	}
}

var readonlyTmpl = template.Must(template.New("readonly").Parse(
	`<span class="readonly{{range .Classes}} {{.}}{{end}}" id="{{.ID}}"{{.Attrs}}>{{.Display}}</span>` +
		`{{if .Data}}<input type="hidden" name="{{.Name}}" value="{{.Data}}">{{end}}`))

// Type implements Field.
func (f *ReadonlyField) Type() string {
	if f.fieldType != "" {
		return f.fieldType + " readonly"
	}
	return "readonly"
}

// SetType sets the type classes of the field this copy was made from.
func (f *ReadonlyField) SetType(t string) {
	f.fieldType = t
}

// SetValue implements Field. The value is shown as is.
func (f *ReadonlyField) SetValue(v Value) {
	f.display = v.Text()
	f.data = v.Text()
}

// Value implements Field.
func (f *ReadonlyField) Value() Value {
	if f.data == "" {
		return Absent()
	}
	return StringValue(f.data)
}

// DataValue implements Field.
func (f *ReadonlyField) DataValue() string {
	return f.data
}

// Display returns the text shown to the user.
func (f *ReadonlyField) Display() string {
	return f.display
}

// Render implements Field.
func (f *ReadonlyField) Render(ctx RenderContext) (template.HTML, error) {
	display := f.display
	if display == "" {
		display = ctx.Translate("field.not_set")
	}
	data := struct {
		ID, Name, Display, Data string
		Classes                 []string
		Attrs                   template.HTMLAttr
	}{
		ID:      f.ID(),
		Name:    f.Name(),
		Display: display,
		Data:    f.data,
		Classes: f.ExtraClasses(),
		Attrs:   RenderAttributes(f.Attributes()),
	}

	var buf bytes.Buffer
	if err := readonlyTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering readonly field %s: %w", f.Name(), err)
	}
	return template.HTML(buf.String()), nil
}

// Validate implements Field. Read-only values are never rejected.
func (f *ReadonlyField) Validate(*Validator) error {
	return nil
}

// ReadonlyTransformation implements Field.
func (f *ReadonlyField) ReadonlyTransformation() Field {
	c := *f
	c.classes = f.ExtraClasses()
	c.attrs = f.Attributes()
	return &c
}
