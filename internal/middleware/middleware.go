// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for the admin form pages:
// language detection, CSRF protection, submit rate limiting and response
// headers.
package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// clientIP returns the client address without the port. It relies on
// chi's RealIP middleware to have rewritten RemoteAddr behind a proxy.
func clientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
