// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides slug and file name helpers for uploads and safe
// path handling below an upload directory.
package util

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// slugRegex matches non-alphanumeric characters (except hyphens)
	slugRegex = regexp.MustCompile(`[^a-z0-9-]+`)
	// multipleHyphens matches multiple consecutive hyphens
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// DefaultUploadName is used when a file name has no usable characters.
const DefaultUploadName = "image"

// Slugify converts a string to a URL-friendly slug.
// Accents are removed and other non-ASCII letters are transliterated, so
// "Фото Über" becomes "foto-uber".
func Slugify(s string) string {
	// Normalize unicode characters (decompose accents)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)

	result = strings.ToLower(unidecode.Unidecode(result))
	result = strings.NewReplacer(" ", "-", "_", "-", ".", "-").Replace(result)
	result = slugRegex.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// UploadFilename builds a safe file name for an upload from the client file
// name: the base name is slugified and ext (with dot) is appended.
func UploadFilename(clientName, ext string) string {
	base := filepath.Base(strings.ReplaceAll(clientName, `\`, "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	slug := Slugify(base)
	if slug == "" {
		slug = DefaultUploadName
	}
	return slug + strings.ToLower(ext)
}
