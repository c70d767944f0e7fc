// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		name     string
		isDev    bool
		wantHSTS string
	}{
		{"production mode enables HSTS", false, "max-age=31536000; includeSubDomains"},
		{"development mode disables HSTS", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := SecurityHeaders(DefaultSecurityHeadersConfig(tt.isDev))(okHandler())

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if got := rec.Header().Get("Strict-Transport-Security"); got != tt.wantHSTS {
				t.Errorf("HSTS = %q, want %q", got, tt.wantHSTS)
			}
			if csp := rec.Header().Get("Content-Security-Policy"); !strings.HasPrefix(csp, "default-src 'self'; script-src 'self' 'unsafe-inline'") {
				t.Errorf("CSP = %q", csp)
			}
			if got := rec.Header().Get("X-Frame-Options"); got != "SAMEORIGIN" {
				t.Errorf("X-Frame-Options = %q, want SAMEORIGIN", got)
			}
			if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
				t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
			}
			if got := rec.Header().Get("Referrer-Policy"); got != "strict-origin-when-cross-origin" {
				t.Errorf("Referrer-Policy = %q", got)
			}
			if got := rec.Header().Get("Permissions-Policy"); !strings.Contains(got, "camera=()") {
				t.Errorf("Permissions-Policy = %q", got)
			}
		})
	}
}

func TestDefaultSecurityHeadersConfig_ScriptSources(t *testing.T) {
	cfg := DefaultSecurityHeadersConfig(false,
		"/static/tinymce/tinymce.min.js",
		"https://cdn.example.com/tinymce/7/tinymce.min.js",
		"https://cdn.example.com/other.js",
		"//cdn2.example.com/x.js",
	)

	want := "script-src 'self' 'unsafe-inline' https://cdn.example.com https://cdn2.example.com;"
	if !strings.Contains(cfg.ContentSecurityPolicy, want) {
		t.Errorf("CSP = %q, want %q", cfg.ContentSecurityPolicy, want)
	}
	if strings.Contains(cfg.ContentSecurityPolicy, "unsafe-eval") {
		t.Error("production CSP should not allow unsafe-eval")
	}
}

func TestScriptOrigin(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/static/app.js", ""},
		{"app.js", ""},
		{"http://localhost:3000/app.js", "http://localhost:3000"},
		{"https://cdn.example.com/a/b.js?v=1", "https://cdn.example.com"},
		{"//cdn.example.com/b.js", "https://cdn.example.com"},
		{"://bad", ""},
	}
	for _, tt := range tests {
		if got := scriptOrigin(tt.in); got != tt.want {
			t.Errorf("scriptOrigin(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
