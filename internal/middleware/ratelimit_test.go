// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestLimiterCache_Get(t *testing.T) {
	lc := newLimiterCache[string](1, 2)

	a := lc.get("10.0.0.1")
	if a != lc.get("10.0.0.1") {
		t.Error("get() returned a different limiter for the same key")
	}
	if a == lc.get("10.0.0.2") {
		t.Error("get() returned the same limiter for different keys")
	}
	if a.Burst() != 2 {
		t.Errorf("Burst() = %d, want 2", a.Burst())
	}
}

func TestLimiterCache_Concurrent(t *testing.T) {
	lc := newLimiterCache[int](1, 1)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lc.get(i % 5)
		}()
	}
	wg.Wait()

	if n := len(lc.limiters); n != 5 {
		t.Errorf("cache holds %d limiters, want 5", n)
	}
}

func TestLimiterCache_ClearIfExceeds(t *testing.T) {
	lc := newLimiterCache[int](1, 1)
	for i := range 3 {
		lc.get(i)
	}

	if lc.clearIfExceeds(3) {
		t.Error("clearIfExceeds(3) cleared a cache of 3")
	}
	if !lc.clearIfExceeds(2) {
		t.Error("clearIfExceeds(2) did not clear a cache of 3")
	}
	if len(lc.limiters) != 0 {
		t.Errorf("cache holds %d limiters after clear", len(lc.limiters))
	}
}

func TestSubmitRateLimiter(t *testing.T) {
	// A tiny rate so no token is refilled during the test.
	handler := NewSubmitRateLimiter(0.001, 2, nil).Middleware()(okHandler())

	post := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/profile", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := range 2 {
		if code := post("192.0.2.1:1234"); code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, code)
		}
	}
	if code := post("192.0.2.1:5678"); code != http.StatusTooManyRequests {
		t.Errorf("third request: status = %d, want 429", code)
	}
	if code := post("192.0.2.2:1234"); code != http.StatusOK {
		t.Errorf("other client: status = %d, want 200", code)
	}

	for range 5 {
		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET status = %d, want 200", rec.Code)
		}
	}
}

func TestSubmitRateLimiter_Message(t *testing.T) {
	rl := NewSubmitRateLimiter(0.001, 1, nil)
	rl.SetMessage(func(r *http.Request) string { return "slow down " + r.URL.Path })
	handler := rl.Middleware()(okHandler())

	var rec *httptest.ResponseRecorder
	for range 2 {
		rec = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/profile", nil)
		handler.ServeHTTP(rec, req)
	}

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "slow down /profile" {
		t.Errorf("body = %q", got)
	}
	if rec.Header().Get("Retry-After") != "1" {
		t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"192.0.2.1", "192.0.2.1"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remote
		if got := clientIP(req); got != tt.want {
			t.Errorf("clientIP(%q) = %q, want %q", tt.remote, got, tt.want)
		}
	}
}
