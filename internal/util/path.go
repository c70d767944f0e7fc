// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ErrUnsafePath is returned for upload names and paths that would leave the
// upload directory.
var ErrUnsafePath = errors.New("unsafe upload path")

// CleanUploadName returns the last element of a client supplied file name.
// Browsers on Windows may send the full path, so backslashes count as
// separators: `C:\photos\me.jpg` yields "me.jpg".
func CleanUploadName(name string) (string, error) {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	switch {
	case name == "", base == ".", base == "..", base == "/":
		return "", fmt.Errorf("%w: file name %q", ErrUnsafePath, name)
	case strings.ContainsRune(base, 0):
		return "", fmt.Errorf("%w: file name contains NUL", ErrUnsafePath)
	}
	return base, nil
}

// UploadPath joins elems below root. The joined elements must stay local:
// absolute paths and ".." escapes are rejected.
func UploadPath(root string, elems ...string) (string, error) {
	rel := filepath.Join(elems...)
	if rel == "" {
		return filepath.Clean(root), nil
	}
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %q escapes %s", ErrUnsafePath, rel, root)
	}
	return filepath.Join(root, rel), nil
}
