// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imagefield provides a simple image upload field. It restricts
// uploads by size and extension, checks that the file really is an image
// and shows the thumbnail of the current image.
package imagefield

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"mime/multipart"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/olegiv/ocms-fields/internal/form"
	"github.com/olegiv/ocms-fields/internal/imaging"
)

// FieldType is the CSS type of the field holder.
const FieldType = "file simpleimage"

// DefaultMaxFileSize is 2 MiB.
const DefaultMaxFileSize = 2 << 20

// Sentinel errors.
var (
	ErrFileTooLarge        = errors.New("file too large")
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
	ErrNotAnImage          = errors.New("file is not an image")
)

// Config holds the upload limits. It is loaded from the environment with the
// OCMS_IMAGE_ prefix.
type Config struct {
	MaxFileSize       int64    `env:"MAX_FILE_SIZE" envDefault:"2097152"`
	AllowedExtensions []string `env:"ALLOWED_EXTENSIONS" envDefault:"jpg,gif,png" envSeparator:","`
	Thumbnail         imaging.ThumbnailConfig
}

// DefaultConfig returns the built-in limits.
func DefaultConfig() Config {
	return Config{
		MaxFileSize:       DefaultMaxFileSize,
		AllowedExtensions: []string{"jpg", "gif", "png"},
		Thumbnail:         imaging.DefaultThumbnail,
	}
}

// ImageRecord is the image currently attached to the edited record.
type ImageRecord struct {
	URL          string
	Thumbnail    string
	CMSThumbnail string
}

// Exists reports whether the record has an image.
func (r ImageRecord) Exists() bool {
	return r.URL != ""
}

// Store saves uploaded images. *imaging.Processor implements it.
type Store interface {
	Save(r io.Reader, filename string) (*imaging.Stored, error)
}

// Field is an image upload field.
type Field struct {
	form.Base
	maxSize    int64
	extensions []string
	logger     *slog.Logger

	value  string
	record ImageRecord
	upload *multipart.FileHeader
}

// New creates an image field.
func New(name, title string, cfg Config, logger *slog.Logger) *Field {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	f := &Field{
		Base:    form.NewBase(name, title),
		maxSize: cfg.MaxFileSize,
		logger:  logger,
	}
	f.SetAllowedExtensions(cfg.AllowedExtensions...)
	if len(f.extensions) == 0 {
		f.SetAllowedExtensions(DefaultConfig().AllowedExtensions...)
	}
	return f
}

// Type implements form.Field.
func (f *Field) Type() string {
	return FieldType
}

// SetAllowedExtensions replaces the allowed extensions. Extensions are
// lowercased and may be given with or without a dot.
func (f *Field) SetAllowedExtensions(exts ...string) {
	f.extensions = f.extensions[:0:0]
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" && !slices.Contains(f.extensions, e) {
			f.extensions = append(f.extensions, e)
		}
	}
}

// AllowedExtensions returns the allowed extensions without dots.
func (f *Field) AllowedExtensions() []string {
	return slices.Clone(f.extensions)
}

// MaxFileSize returns the upload size limit in bytes.
func (f *Field) MaxFileSize() int64 {
	return f.maxSize
}

// SetMaxFileSize sets the upload size limit in bytes.
func (f *Field) SetMaxFileSize(n int64) {
	f.maxSize = n
}

// SetValue implements form.Field. The value is the URL of the stored image.
func (f *Field) SetValue(v form.Value) {
	f.value = strings.TrimSpace(v.Text())
}

// Value implements form.Field.
func (f *Field) Value() form.Value {
	if f.value == "" {
		return form.Absent()
	}
	return form.StringValue(f.value)
}

// DataValue implements form.Field.
func (f *Field) DataValue() string {
	return f.value
}

// SetRecord sets the current image. An empty value takes the record URL.
func (f *Field) SetRecord(r ImageRecord) {
	f.record = r
	if f.value == "" {
		f.value = r.URL
	}
}

// Record returns the current image.
func (f *Field) Record() ImageRecord {
	return f.record
}

// SetUpload implements form.UploadReceiver.
func (f *Field) SetUpload(fh *multipart.FileHeader) {
	f.upload = fh
}

// Upload returns the pending upload, or nil.
func (f *Field) Upload() *multipart.FileHeader {
	return f.upload
}

// PreviewURL returns the thumbnail of the current image, falling back to the
// CMS thumbnail, or "" when there is none.
func (f *Field) PreviewURL() string {
	if !f.record.Exists() {
		return ""
	}
	if f.record.Thumbnail != "" {
		return f.record.Thumbnail
	}
	return f.record.CMSThumbnail
}

func (f *Field) accept() string {
	exts := make([]string, len(f.extensions))
	for i, e := range f.extensions {
		exts[i] = "." + e
	}
	return strings.Join(exts, ",")
}

var fieldTmpl = template.Must(template.New("simpleimage").Parse(
	`{{if .Image}}<img class="thumbnail" src="{{.Image}}" alt="{{.CurrentImage}}">{{end}}` +
		`<input type="hidden" name="MAX_FILE_SIZE" value="{{.MaxFileSize}}">` +
		`{{if .Value}}<input type="hidden" name="{{.Name}}" value="{{.Value}}">{{end}}` +
		`<input type="file" name="{{.Name}}" id="{{.ID}}" class="file{{range .Classes}} {{.}}{{end}}" accept="{{.Accept}}"{{.Attrs}}>` +
		`<span class="description">{{.SizeNote}}</span>`))

// Render implements form.Field.
func (f *Field) Render(ctx form.RenderContext) (template.HTML, error) {
	data := struct {
		Image, CurrentImage string
		MaxFileSize         string
		Name, ID, Value     string
		Classes             []string
		Accept              string
		Attrs               template.HTMLAttr
		SizeNote            string
	}{
		Image:        f.PreviewURL(),
		CurrentImage: ctx.Translate("field.current_image"),
		MaxFileSize:  strconv.FormatInt(f.maxSize, 10),
		Name:         f.Name(),
		ID:           f.ID(),
		Value:        f.value,
		Classes:      f.ExtraClasses(),
		Accept:       f.accept(),
		Attrs:        form.RenderAttributes(f.Attributes()),
		SizeNote:     ctx.Translate("field.max_file_size", humanize.IBytes(uint64(f.maxSize))),
	}

	var buf bytes.Buffer
	if err := fieldTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering image field %s: %w", f.Name(), err)
	}
	return template.HTML(buf.String()), nil
}

// Validate implements form.Field. Without an upload the field is valid.
func (f *Field) Validate(v *form.Validator) error {
	if f.upload == nil {
		return nil
	}

	if f.upload.Size > f.maxSize {
		return v.ValidationError(f.Name(),
			v.T("validation.file_too_large", humanize.IBytes(uint64(f.maxSize))),
			form.CategoryValidation, false, ErrFileTooLarge)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(f.upload.Filename), "."))
	if !slices.Contains(f.extensions, ext) {
		return v.ValidationError(f.Name(),
			v.T("validation.file_extension", strings.Join(f.extensions, ", ")),
			form.CategoryValidation, false, ErrExtensionNotAllowed)
	}

	if err := f.checkContent(); err != nil {
		f.logger.Info("rejected image upload", "field", f.Name(), "filename", f.upload.Filename, "error", err)
		return v.ValidationError(f.Name(), v.T("validation.not_an_image"),
			form.CategoryValidation, false, err)
	}
	return nil
}

// checkContent verifies the upload decodes as an image in one of the
// allowed formats.
func (f *Field) checkContent() error {
	file, err := f.upload.Open()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotAnImage, err)
	}
	defer func() { _ = file.Close() }()

	format, _, _, err := imaging.Inspect(file)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotAnImage, err)
	}
	for _, e := range f.extensions {
		if imaging.FormatFromExtension(e) == format {
			return nil
		}
	}
	return fmt.Errorf("%w: %s content", ErrNotAnImage, format)
}

// Save stores the pending upload and makes it the current image. It does
// nothing when there is no upload. Call it after Validate succeeded.
func (f *Field) Save(store Store) (*imaging.Stored, error) {
	if f.upload == nil {
		return nil, nil
	}
	file, err := f.upload.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}
	defer func() { _ = file.Close() }()

	stored, err := store.Save(file, f.upload.Filename)
	if err != nil {
		return nil, fmt.Errorf("saving upload for %s: %w", f.Name(), err)
	}
	f.logger.Info("image uploaded", "field", f.Name(), "url", stored.URL, "size", stored.Size)

	f.value = stored.URL
	f.record = ImageRecord{URL: stored.URL, Thumbnail: stored.ThumbnailURL}
	f.upload = nil
	return stored, nil
}

// ReadonlyTransformation implements form.Field.
func (f *Field) ReadonlyTransformation() form.Field {
	display := ""
	if f.value != "" {
		display = path.Base(f.value)
	}
	ro := form.NewReadonlyField(f.Name(), f.Title(), display, f.value)
	ro.SetType(FieldType)
	return ro
}
