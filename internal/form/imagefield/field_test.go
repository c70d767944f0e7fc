// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imagefield

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"mime/multipart"
	"reflect"
	"strings"
	"testing"

	"github.com/olegiv/ocms-fields/internal/form"
	"github.com/olegiv/ocms-fields/internal/i18n"
	"github.com/olegiv/ocms-fields/internal/imaging"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 200, B: 50, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage()); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func gifBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := gif.Encode(&buf, testImage(), nil); err != nil {
		t.Fatalf("gif.Encode: %v", err)
	}
	return buf.Bytes()
}

func fileHeader(t *testing.T, filename string, data []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("Photo", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	mf, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(10 << 20)
	if err != nil {
		t.Fatalf("ReadForm: %v", err)
	}
	t.Cleanup(func() { _ = mf.RemoveAll() })
	return mf.File["Photo"][0]
}

func validator(t *testing.T) *form.Validator {
	t.Helper()
	c, err := i18n.New(nil)
	if err != nil {
		t.Fatalf("i18n.New: %v", err)
	}
	return form.NewValidator("en", c)
}

func TestDefaults(t *testing.T) {
	f := New("Photo", "", Config{}, nil)
	if got := f.MaxFileSize(); got != int64(DefaultMaxFileSize) {
		t.Errorf("MaxFileSize() = %d, want %d", got, DefaultMaxFileSize)
	}
	if got, want := f.AllowedExtensions(), []string{"jpg", "gif", "png"}; !reflect.DeepEqual(got, want) {
		t.Errorf("AllowedExtensions() = %v, want %v", got, want)
	}
	if got := f.Type(); got != FieldType {
		t.Errorf("Type() = %q, want %q", got, FieldType)
	}
	if !f.Value().IsAbsent() {
		t.Errorf("Value() = %v, want absent", f.Value())
	}

	f.SetAllowedExtensions(".JPG", "png", "png", " ")
	if got, want := f.AllowedExtensions(), []string{"jpg", "png"}; !reflect.DeepEqual(got, want) {
		t.Errorf("AllowedExtensions() after Set = %v, want %v", got, want)
	}
}

func TestValidateWithoutUpload(t *testing.T) {
	f := New("Photo", "", DefaultConfig(), nil)
	v := validator(t)
	if err := f.Validate(v); err != nil || !v.Valid() {
		t.Errorf("Validate() = %v, Valid() = %v", err, v.Valid())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     func(t *testing.T) []byte
		maxSize  int64
		wantErr  error
		wantMsg  string
	}{
		{
			name:     "png ok",
			filename: "photo.png",
			data:     pngBytes,
		},
		{
			name:     "gif ok",
			filename: "anim.GIF",
			data:     gifBytes,
		},
		{
			name:     "too large",
			filename: "photo.png",
			data:     pngBytes,
			maxSize:  10,
			wantErr:  ErrFileTooLarge,
			wantMsg:  "Filesize is too large, maximum 10 B allowed",
		},
		{
			name:     "extension",
			filename: "photo.webp",
			data:     pngBytes,
			wantErr:  ErrExtensionNotAllowed,
			wantMsg:  "Extension is not allowed (valid: jpg, gif, png)",
		},
		{
			name:     "no extension",
			filename: "photo",
			data:     pngBytes,
			wantErr:  ErrExtensionNotAllowed,
		},
		{
			name:     "not an image",
			filename: "script.png",
			data:     func(*testing.T) []byte { return []byte("<?php system($_GET['c']); ?>") },
			wantErr:  ErrNotAnImage,
			wantMsg:  "The uploaded file is not a valid image",
		},
		{
			name:     "png content with jpg extension",
			filename: "photo.jpg",
			data:     pngBytes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if tt.maxSize > 0 {
				cfg.MaxFileSize = tt.maxSize
			}
			f := New("Photo", "", cfg, nil)
			f.SetUpload(fileHeader(t, tt.filename, tt.data(t)))

			v := validator(t)
			err := f.Validate(v)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				if got := v.Message("Photo"); got != tt.wantMsg {
					t.Errorf("Message() = %q, want %q", got, tt.wantMsg)
				}
			}
		})
	}
}

func TestValidateRejectsDisallowedContent(t *testing.T) {
	f := New("Photo", "", DefaultConfig(), nil)
	f.SetAllowedExtensions("jpg")
	f.SetUpload(fileHeader(t, "photo.jpg", pngBytes(t)))

	if err := f.Validate(validator(t)); !errors.Is(err, ErrNotAnImage) {
		t.Errorf("Validate() = %v, want ErrNotAnImage", err)
	}
}

func TestPreviewURL(t *testing.T) {
	tests := []struct {
		name   string
		record ImageRecord
		want   string
	}{
		{"no record", ImageRecord{}, ""},
		{"thumbnail", ImageRecord{URL: "/u/a.png", Thumbnail: "/t/a.png", CMSThumbnail: "/c/a.png"}, "/t/a.png"},
		{"cms thumbnail", ImageRecord{URL: "/u/a.png", CMSThumbnail: "/c/a.png"}, "/c/a.png"},
		{"no thumbnails", ImageRecord{URL: "/u/a.png"}, ""},
		{"thumbnail without image", ImageRecord{Thumbnail: "/t/a.png"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New("Photo", "", DefaultConfig(), nil)
			f.SetRecord(tt.record)
			if got := f.PreviewURL(); got != tt.want {
				t.Errorf("PreviewURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	f := New("Photo", "Photo", DefaultConfig(), nil)
	f.SetRecord(ImageRecord{URL: "/uploads/originals/x/a.png", Thumbnail: "/uploads/thumbnails/x/a.png"})

	out, err := f.Render(form.RenderContext{Lang: "en"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	html := string(out)
	for _, want := range []string{
		`<img class="thumbnail" src="/uploads/thumbnails/x/a.png"`,
		`<input type="hidden" name="MAX_FILE_SIZE" value="2097152">`,
		`<input type="hidden" name="Photo" value="/uploads/originals/x/a.png">`,
		`<input type="file" name="Photo" id="Photo" class="file" accept=".jpg,.gif,.png">`,
		"2.0 MiB",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("Render() missing %q\n%s", want, html)
		}
	}

	empty := New("Photo", "", DefaultConfig(), nil)
	out, err = empty.Render(form.RenderContext{Lang: "en"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(string(out), "<img") || strings.Contains(string(out), `type="hidden" name="Photo"`) {
		t.Errorf("empty Render() shows a preview: %s", out)
	}
}

type fakeStore struct {
	name string
	data []byte
	err  error
}

func (s *fakeStore) Save(r io.Reader, filename string) (*imaging.Stored, error) {
	if s.err != nil {
		return nil, s.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.name, s.data = filename, data
	return &imaging.Stored{URL: "/uploads/originals/id/a.png", ThumbnailURL: "/uploads/thumbnails/id/a.png", Size: int64(len(data))}, nil
}

func TestSave(t *testing.T) {
	f := New("Photo", "", DefaultConfig(), nil)
	store := &fakeStore{}

	stored, err := f.Save(store)
	if err != nil || stored != nil {
		t.Fatalf("Save() without upload = %v, %v, want nil, nil", stored, err)
	}

	data := pngBytes(t)
	f.SetUpload(fileHeader(t, "a.png", data))
	stored, err = f.Save(store)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if stored == nil {
		t.Fatal("Save() returned nil")
	}

	if store.name != "a.png" || !bytes.Equal(store.data, data) {
		t.Errorf("store got %q with %d bytes, want a.png with %d", store.name, len(store.data), len(data))
	}
	if got := f.DataValue(); got != "/uploads/originals/id/a.png" {
		t.Errorf("DataValue() = %q", got)
	}
	if got := f.PreviewURL(); got != "/uploads/thumbnails/id/a.png" {
		t.Errorf("PreviewURL() = %q", got)
	}
	if f.Upload() != nil {
		t.Error("upload not cleared after Save")
	}
}

func TestSaveError(t *testing.T) {
	f := New("Photo", "", DefaultConfig(), nil)
	f.SetValue(form.StringValue("/old.png"))
	f.SetUpload(fileHeader(t, "a.png", pngBytes(t)))

	boom := errors.New("disk full")
	if _, err := f.Save(&fakeStore{err: boom}); !errors.Is(err, boom) {
		t.Errorf("Save() = %v, want %v", err, boom)
	}
	if got := f.DataValue(); got != "/old.png" {
		t.Errorf("DataValue() = %q, want %q", got, "/old.png")
	}
}

func TestSaveWithProcessor(t *testing.T) {
	p := imaging.NewProcessor(t.TempDir(), "/uploads", imaging.DefaultThumbnail)
	f := New("Photo", "", DefaultConfig(), nil)
	f.SetUpload(fileHeader(t, "Mein Foto.png", pngBytes(t)))

	stored, err := f.Save(p)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !strings.HasSuffix(f.DataValue(), "/mein-foto.png") {
		t.Errorf("DataValue() = %q, want suffix /mein-foto.png", f.DataValue())
	}
	if got := f.Record().Thumbnail; got != stored.ThumbnailURL {
		t.Errorf("Record().Thumbnail = %q, want %q", got, stored.ThumbnailURL)
	}
}

func TestSetRecordKeepsSubmittedValue(t *testing.T) {
	f := New("Photo", "", DefaultConfig(), nil)
	f.SetValue(form.StringValue("/submitted.png"))
	f.SetRecord(ImageRecord{URL: "/record.png"})
	if got := f.DataValue(); got != "/submitted.png" {
		t.Errorf("DataValue() = %q, want %q", got, "/submitted.png")
	}

	g := New("Photo", "", DefaultConfig(), nil)
	g.SetRecord(ImageRecord{URL: "/record.png"})
	if got := g.DataValue(); got != "/record.png" {
		t.Errorf("DataValue() = %q, want %q", got, "/record.png")
	}
}

func TestReadonlyTransformation(t *testing.T) {
	f := New("Photo", "", DefaultConfig(), nil)
	f.SetValue(form.StringValue("/uploads/originals/id/a.png"))
	ro, ok := f.ReadonlyTransformation().(*form.ReadonlyField)
	if !ok {
		t.Fatalf("ReadonlyTransformation() = %T, want *form.ReadonlyField", f.ReadonlyTransformation())
	}
	if got := ro.Display(); got != "a.png" {
		t.Errorf("Display() = %q, want %q", got, "a.png")
	}
	if got := ro.DataValue(); got != "/uploads/originals/id/a.png" {
		t.Errorf("DataValue() = %q", got)
	}
}
