// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package web holds the embedded static assets of the form pages.
package web

import "embed"

// Static holds the files served under /static.
//
//go:embed all:static
var Static embed.FS
