// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"slices"

	"filippo.io/csrf/gorilla"
)

// CSRFConfig holds configuration for CSRF protection.
// filippo.io/csrf/gorilla checks Fetch metadata and Origin headers, so the
// form pages need no hidden token field.
type CSRFConfig struct {
	// AuthKey is the 32-byte key the library requires. It is derived from
	// the session secret.
	AuthKey []byte

	// ErrorHandler is called when CSRF validation fails.
	ErrorHandler http.Handler

	// TrustedOrigins are host:port values allowed to post cross-origin.
	TrustedOrigins []string

	// SkipPaths are request paths exempt from the check.
	SkipPaths []string
}

// DefaultCSRFConfig returns a CSRFConfig for the server listening on addr.
// In development the loopback origins and addr are trusted.
func DefaultCSRFConfig(authKey []byte, isDev bool, addr string) CSRFConfig {
	cfg := CSRFConfig{
		AuthKey: authKey,
	}

	if isDev {
		cfg.TrustedOrigins = []string{
			"localhost:8080",
			"127.0.0.1:8080",
		}
		if addr != "" && !slices.Contains(cfg.TrustedOrigins, addr) {
			cfg.TrustedOrigins = append(cfg.TrustedOrigins, addr)
		}
	}

	return cfg
}

// CSRF returns a middleware that provides CSRF protection.
func CSRF(cfg CSRFConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	opts := []csrf.Option{}
	if cfg.ErrorHandler != nil {
		opts = append(opts, csrf.ErrorHandler(cfg.ErrorHandler))
	} else {
		opts = append(opts, csrf.ErrorHandler(csrfErrorHandler(logger)))
	}
	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}

	protect := csrf.Protect(cfg.AuthKey, opts...)
	if len(cfg.SkipPaths) == 0 {
		return protect
	}
	skip := SkipCSRF(cfg.SkipPaths...)
	return func(next http.Handler) http.Handler {
		return skip(protect(next))
	}
}

// csrfErrorHandler logs the failure and responds with 403.
func csrfErrorHandler(logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reason := "unknown"
		if err := csrf.FailureReason(r); err != nil {
			reason = err.Error()
		}
		logger.Warn("CSRF validation failed",
			"reason", reason,
			"method", r.Method,
			"path", r.URL.Path,
			"origin", r.Header.Get("Origin"),
			"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
		)
		http.Error(w, "Forbidden - CSRF validation failed", http.StatusForbidden)
	})
}

// SkipCSRF returns a middleware that marks requests to the given paths as
// exempt from CSRF protection. It must run before CSRF.
func SkipCSRF(paths ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(paths, r.URL.Path) {
				r = csrf.UnsafeSkipCheck(r)
			}
			next.ServeHTTP(w, r)
		})
	}
}
