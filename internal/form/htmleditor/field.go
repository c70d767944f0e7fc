// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package htmleditor provides a rich-text textarea for frontend forms. The
// textarea is turned into a TinyMCE editor by an init script registered with
// the page requirements; submitted HTML is sanitized before storage.
package htmleditor

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"html/template"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/olegiv/ocms-fields/internal/form"
)

// FieldType is the CSS type of the field holder.
const FieldType = "htmleditor"

// DefaultSelector is the class the editor init script looks for.
const DefaultSelector = "frontendhtmleditor"

// ScriptKey identifies the editor init script in the page requirements.
const ScriptKey = "htmleditor-init"

// ErrTooLong is returned when the text exceeds the configured length.
var ErrTooLong = errors.New("text too long")

// Config holds the editor settings. It is loaded from the environment with
// the OCMS_EDITOR_ prefix.
type Config struct {
	Selector  string `env:"SELECTOR" envDefault:"frontendhtmleditor"`
	ScriptURL string `env:"SCRIPT_URL" envDefault:"/static/tinymce/tinymce.min.js"`
	Rows      int    `env:"ROWS" envDefault:"15"`
	Cols      int    `env:"COLS" envDefault:"20"`
	Markdown  bool   `env:"MARKDOWN" envDefault:"false"`
	MaxLength int    `env:"MAX_LENGTH" envDefault:"0"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Selector:  DefaultSelector,
		ScriptURL: "/static/tinymce/tinymce.min.js",
		Rows:      15,
		Cols:      20,
	}
}

// ugc allows the markup an editor produces and strips scripts, event
// handlers and unsafe URLs.
var ugc = bluemonday.UGCPolicy()

// plain strips all markup.
var plain = bluemonday.StrictPolicy()

// Field is a rich-text editor field.
type Field struct {
	form.Base
	cfg    Config
	value  string
	logger *slog.Logger
}

// New creates an editor field.
func New(name, title string, cfg Config, logger *slog.Logger) *Field {
	if cfg.Selector == "" {
		cfg.Selector = DefaultSelector
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Field{
		Base:   form.NewBase(name, title),
		cfg:    cfg,
		logger: logger,
	}
}

// Type implements form.Field.
func (f *Field) Type() string {
	return FieldType
}

// Config returns the editor settings.
func (f *Field) Config() Config {
	return f.cfg
}

// SetValue implements form.Field.
func (f *Field) SetValue(v form.Value) {
	f.value = v.Text()
}

// Value implements form.Field.
func (f *Field) Value() form.Value {
	if f.value == "" {
		return form.Absent()
	}
	return form.StringValue(f.value)
}

// DataValue implements form.Field. It returns sanitized HTML; in Markdown
// mode the value is converted to HTML first.
func (f *Field) DataValue() string {
	if strings.TrimSpace(f.value) == "" {
		return ""
	}
	src := f.value
	if f.cfg.Markdown {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(src), &buf); err != nil {
			f.logger.Warn("markdown conversion failed", "field", f.Name(), "error", err)
		} else {
			src = buf.String()
		}
	}
	return strings.TrimSpace(ugc.Sanitize(src))
}

// InitScript returns the editor init script for selector.
func InitScript(selector string) string {
	sel := template.JSEscapeString(selector)
	return "var ssTinyMceConfig = window.ssTinyMceConfig || {};" +
		"ssTinyMceConfig.mode = 'specific_textareas';" +
		"ssTinyMceConfig.editor_selector = '" + sel + "';" +
		"tinyMCE.init(ssTinyMceConfig);"
}

var textareaTmpl = template.Must(template.New("htmleditor").Parse(
	`<textarea name="{{.Name}}" id="{{.ID}}" class="htmleditor {{.Selector}}{{range .Classes}} {{.}}{{end}}" rows="{{.Rows}}" cols="{{.Cols}}"{{.Attrs}}>{{.Value}}</textarea>`))

// Render implements form.Field. Unless Markdown mode is on it registers the
// editor script and its init script with ctx.Requirements.
func (f *Field) Render(ctx form.RenderContext) (template.HTML, error) {
	if ctx.Requirements != nil && !f.cfg.Markdown {
		ctx.Requirements.JavaScript(f.cfg.ScriptURL)
		ctx.Requirements.CustomScript(ScriptKey+":"+f.cfg.Selector, InitScript(f.cfg.Selector))
	}

	attrs := f.Attributes()
	if f.cfg.MaxLength > 0 {
		attrs["maxlength"] = strconv.Itoa(f.cfg.MaxLength)
	}
	data := struct {
		Name, ID, Selector string
		Classes            []string
		Rows, Cols         int
		Attrs              template.HTMLAttr
		Value              string
	}{
		Name:     f.Name(),
		ID:       f.ID(),
		Selector: f.cfg.Selector,
		Classes:  f.ExtraClasses(),
		Rows:     f.cfg.Rows,
		Cols:     f.cfg.Cols,
		Attrs:    form.RenderAttributes(attrs),
		Value:    f.value,
	}

	var buf bytes.Buffer
	if err := textareaTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering editor %s: %w", f.Name(), err)
	}
	return template.HTML(buf.String()), nil
}

// Validate implements form.Field.
func (f *Field) Validate(v *form.Validator) error {
	if f.cfg.MaxLength > 0 && utf8.RuneCountInString(f.value) > f.cfg.MaxLength {
		return v.ValidationError(f.Name(), v.T("validation.too_long", f.cfg.MaxLength),
			form.CategoryValidation, false, ErrTooLong)
	}
	return nil
}

// ReadonlyTransformation implements form.Field. The copy shows the text
// without markup.
func (f *Field) ReadonlyTransformation() form.Field {
	data := f.DataValue()
	display := strings.TrimSpace(html.UnescapeString(plain.Sanitize(data)))
	ro := form.NewReadonlyField(f.Name(), f.Title(), display, data)
	ro.SetType(FieldType)
	return ro
}
