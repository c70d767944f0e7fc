// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStaticCache(t *testing.T) {
	tests := []struct {
		maxAge    int
		immutable bool
		want      string
	}{
		{3600, false, "public, max-age=3600"},
		{31536000, true, "public, max-age=31536000, immutable"},
	}

	for _, tt := range tests {
		handler := StaticCache(tt.maxAge, tt.immutable)(okHandler())
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/a.png", nil))

		if got := rec.Header().Get("Cache-Control"); got != tt.want {
			t.Errorf("Cache-Control = %q, want %q", got, tt.want)
		}
	}
}
