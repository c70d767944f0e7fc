// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging stores uploaded images and generates their thumbnails.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/olegiv/ocms-fields/internal/util"
)

// ErrUnsupportedFormat is returned for data that is not a JPEG, PNG, GIF or
// WebP image.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Image formats.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
	FormatGIF  = "gif"
	FormatWebP = "webp"
)

// Directories below the upload directory.
const (
	DirOriginals  = "originals"
	DirThumbnails = "thumbnails"
)

// ThumbnailConfig defines the generated thumbnail.
type ThumbnailConfig struct {
	Width   int  `env:"THUMB_WIDTH" envDefault:"150"`
	Height  int  `env:"THUMB_HEIGHT" envDefault:"150"`
	Quality int  `env:"THUMB_QUALITY" envDefault:"80"`
	Crop    bool `env:"THUMB_CROP" envDefault:"true"`
}

// DefaultThumbnail is used when a ThumbnailConfig has no size.
var DefaultThumbnail = ThumbnailConfig{Width: 150, Height: 150, Quality: 80, Crop: true}

// Stored describes a saved upload.
type Stored struct {
	UUID         string
	Filename     string
	MimeType     string
	Width        int
	Height       int
	Size         int64
	Path         string
	URL          string
	ThumbnailURL string
}

// Processor saves uploads below uploadDir and serves them under baseURL.
type Processor struct {
	uploadDir string
	baseURL   string
	thumb     ThumbnailConfig
}

// NewProcessor creates a processor.
func NewProcessor(uploadDir, baseURL string, thumb ThumbnailConfig) *Processor {
	if thumb.Width <= 0 || thumb.Height <= 0 {
		thumb = DefaultThumbnail
	}
	if thumb.Quality <= 0 {
		thumb.Quality = DefaultThumbnail.Quality
	}
	return &Processor{
		uploadDir: uploadDir,
		baseURL:   strings.TrimRight(baseURL, "/"),
		thumb:     thumb,
	}
}

// UploadDir returns the directory uploads are written to.
func (p *Processor) UploadDir() string {
	return p.uploadDir
}

// Save decodes an uploaded image, applies its EXIF orientation and writes the
// original and a thumbnail under a new UUID directory. The stored file name
// is a transliterated slug of filename.
func (p *Processor) Save(reader io.Reader, filename string) (*Stored, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	format := DetectFormat(data)
	if format == "" {
		return nil, ErrUnsupportedFormat
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	// WebP has no pure Go encoder; it is stored as JPEG.
	outFormat := format
	if outFormat == FormatWebP {
		outFormat = FormatJPEG
	}
	name := util.UploadFilename(filename, Extension(outFormat))
	id := uuid.New().String()

	original, err := encodeImage(img, outFormat, 95)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	filePath, err := p.saveImageFile(filepath.Join(DirOriginals, id), name, original)
	if err != nil {
		return nil, fmt.Errorf("failed to save original image: %w", err)
	}

	thumb, err := encodeImage(p.thumbnail(img), outFormat, p.thumb.Quality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	if _, err := p.saveImageFile(filepath.Join(DirThumbnails, id), name, thumb); err != nil {
		return nil, fmt.Errorf("failed to save thumbnail: %w", err)
	}

	bounds := img.Bounds()
	return &Stored{
		UUID:         id,
		Filename:     name,
		MimeType:     MimeType(outFormat),
		Width:        bounds.Dx(),
		Height:       bounds.Dy(),
		Size:         int64(len(original)),
		Path:         filePath,
		URL:          p.URL(DirOriginals, id, name),
		ThumbnailURL: p.URL(DirThumbnails, id, name),
	}, nil
}

func (p *Processor) thumbnail(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= p.thumb.Width && b.Dy() <= p.thumb.Height && !p.thumb.Crop {
		return img
	}
	if p.thumb.Crop {
		return imaging.Fill(img, p.thumb.Width, p.thumb.Height, imaging.Center, imaging.Lanczos)
	}
	return imaging.Fit(img, p.thumb.Width, p.thumb.Height, imaging.Lanczos)
}

// URL returns the public URL of a stored file.
func (p *Processor) URL(dir, id, name string) string {
	return p.baseURL + "/" + path.Join(dir, id, name)
}

// Delete removes the original and thumbnail of an upload.
func (p *Processor) Delete(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid upload id %q: %w", id, err)
	}
	for _, dir := range []string{DirOriginals, DirThumbnails} {
		target, err := util.UploadPath(p.uploadDir, dir, id)
		if err != nil {
			return err
		}
		if err := os.RemoveAll(target); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete %s: %w", dir, err)
		}
	}
	return nil
}

// Inspect reads the format and dimensions of an image without decoding it
// fully.
func Inspect(r io.Reader) (format string, width, height int, err error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", 0, 0, fmt.Errorf("failed to read image header: %w", err)
	}
	head = head[:n]

	format = DetectFormat(head)
	if format == "" {
		return "", 0, 0, ErrUnsupportedFormat
	}

	cfg, _, err := image.DecodeConfig(io.MultiReader(bytes.NewReader(head), r))
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to read image config: %w", err)
	}
	return format, cfg.Width, cfg.Height, nil
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation applies EXIF orientation transformation to an image.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch format {
	case FormatPNG:
		err = png.Encode(&buf, img)
	case FormatGIF:
		err = gif.Encode(&buf, img, nil)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DetectFormat detects the image format from raw bytes. TIFF is rejected.
func DetectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// CVE-2023-36308 in disintegration/imaging
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return FormatJPEG
	case strings.Contains(contentType, "png"):
		return FormatPNG
	case strings.Contains(contentType, "gif"):
		return FormatGIF
	case strings.Contains(contentType, "webp"):
		return FormatWebP
	default:
		return ""
	}
}

// FormatFromExtension maps a file extension such as "jpg" or ".PNG" to an
// image format, or "" when it is not an image extension.
func FormatFromExtension(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return FormatJPEG
	case "png":
		return FormatPNG
	case "gif":
		return FormatGIF
	case "webp":
		return FormatWebP
	default:
		return ""
	}
}

// Extension returns the file extension, with dot, used for format.
func Extension(format string) string {
	switch format {
	case FormatPNG:
		return ".png"
	case FormatGIF:
		return ".gif"
	case FormatWebP:
		return ".webp"
	default:
		return ".jpg"
	}
}

// MimeType converts a format to its MIME type.
func MimeType(format string) string {
	switch format {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatGIF:
		return "image/gif"
	case FormatWebP:
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// saveImageFile creates the directory if needed and writes data to it. The
// target directory is validated to be within uploadDir.
func (p *Processor) saveImageFile(subDir, filename string, data []byte) (string, error) {
	safeFilename, err := util.CleanUploadName(filename)
	if err != nil {
		return "", err
	}

	absBase, err := filepath.Abs(p.uploadDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absTarget, err := util.UploadPath(absBase, subDir)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(absTarget, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	filePath := filepath.Join(absTarget, safeFilename)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return filePath, nil
}
