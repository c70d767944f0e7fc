// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package form

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
)

// DefaultMaxMemory is the multipart memory limit used by LoadRequest.
const DefaultMaxMemory = 32 << 20

// Form holds an ordered set of fields.
type Form struct {
	name      string
	fields    []Field
	logger    *slog.Logger
	maxMemory int64
}

// New creates a form. A nil logger uses slog.Default().
func New(name string, logger *slog.Logger, fields ...Field) *Form {
	if logger == nil {
		logger = slog.Default()
	}
	return &Form{
		name:      name,
		fields:    fields,
		logger:    logger,
		maxMemory: DefaultMaxMemory,
	}
}

// Name returns the form name.
func (f *Form) Name() string {
	return f.name
}

// Fields returns the fields in order.
func (f *Form) Fields() []Field {
	return f.fields
}

// Field returns the field with the given name, or nil.
func (f *Form) Field(name string) Field {
	for _, fld := range f.fields {
		if fld.Name() == name {
			return fld
		}
	}
	return nil
}

// SetMaxMemory sets the multipart memory limit.
func (f *Form) SetMaxMemory(n int64) {
	f.maxMemory = n
}

// LoadValues sets every field from submitted form values.
func (f *Form) LoadValues(values url.Values) {
	for _, fld := range f.fields {
		fld.SetValue(ValueFrom(values, fld.Name()))
	}
}

// LoadData sets fields from stored string values. Fields missing from data
// are left unchanged.
func (f *Form) LoadData(data map[string]string) {
	for _, fld := range f.fields {
		if v, ok := data[fld.Name()]; ok {
			fld.SetValue(StringValue(v))
		}
	}
}

// LoadRequest parses a url-encoded or multipart request and loads values and
// uploaded files into the fields.
func (f *Form) LoadRequest(r *http.Request) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(f.maxMemory); err != nil {
			return fmt.Errorf("parsing multipart form: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parsing form: %w", err)
	}

	f.LoadValues(r.Form)

	if r.MultipartForm == nil {
		return nil
	}
	for _, fld := range f.fields {
		receiver, ok := fld.(UploadReceiver)
		if !ok {
			continue
		}
		if files := r.MultipartForm.File[fld.Name()]; len(files) > 0 {
			receiver.SetUpload(files[0])
		}
	}
	return nil
}

// Validate validates every field and returns the collected errors.
func (f *Form) Validate(lang string, tr Translator) *Validator {
	v := NewValidator(lang, tr)
	for _, fld := range f.fields {
		_ = fld.Validate(v)
	}
	if !v.Valid() {
		f.logger.Debug("form validation failed", "form", f.name, "errors", len(v.Errors()))
	}
	return v
}

// Data returns the storage value of every field.
func (f *Form) Data() map[string]string {
	out := make(map[string]string, len(f.fields))
	for _, fld := range f.fields {
		out[fld.Name()] = fld.DataValue()
	}
	return out
}

// Readonly returns a copy of the form with every field made read-only.
func (f *Form) Readonly() *Form {
	fields := make([]Field, len(f.fields))
	for i, fld := range f.fields {
		fields[i] = fld.ReadonlyTransformation()
	}
	return &Form{name: f.name, fields: fields, logger: f.logger, maxMemory: f.maxMemory}
}

var holderTmpl = template.Must(template.New("holder").Parse(
	`<div id="{{.ID}}_Holder" class="field {{.Type}}{{if .Message}} error{{end}}">` +
		`<label class="left" for="{{.ID}}">{{.Title}}</label>` +
		`<div class="middleColumn">{{.Field}}</div>` +
		`{{if .Message}}<span class="message {{.Category}}">{{.Message}}</span>{{end}}` +
		`</div>`))

// FieldHolder renders a field wrapped with its label and validation message.
// v may be nil.
func FieldHolder(ctx RenderContext, fld Field, v *Validator) (template.HTML, error) {
	inner, err := fld.Render(ctx)
	if err != nil {
		return "", err
	}

	data := struct {
		ID, Type, Title string
		Message         string
		Category        string
		Field           template.HTML
	}{
		ID:       FieldID(fld.Name()),
		Type:     fld.Type(),
		Title:    fld.Title(),
		Field:    inner,
		Category: CategoryValidation,
	}
	if v != nil {
		for _, e := range v.Errors() {
			if e.Field == fld.Name() {
				data.Message = e.Message
				data.Category = e.Category
				break
			}
		}
	}

	var buf bytes.Buffer
	if err := holderTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering holder for %s: %w", fld.Name(), err)
	}
	return template.HTML(buf.String()), nil
}

// Render renders every field holder followed by the scripts the fields
// registered. v may be nil.
func (f *Form) Render(ctx RenderContext, v *Validator) (template.HTML, error) {
	if ctx.Requirements == nil {
		ctx.Requirements = NewRequirements()
	}

	var buf bytes.Buffer
	for _, fld := range f.fields {
		h, err := FieldHolder(ctx, fld, v)
		if err != nil {
			return "", err
		}
		buf.WriteString(string(h))
	}
	buf.WriteString(string(ctx.Requirements.Render()))
	return template.HTML(buf.String()), nil
}
