// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/olegiv/ocms-fields/internal/i18n"
)

// ContextKeyLanguageCode holds the request language code.
const ContextKeyLanguageCode ContextKey = "language_code"

// LanguageCookieName is the cookie name for language preference.
const LanguageCookieName = "ocms_lang"

// Language creates middleware that picks the language used for field labels,
// date formats and validation messages.
// Priority order:
// 1. Query parameter ?lang=XX (explicit language switch, updates cookie)
// 2. Cookie preference
// 3. Accept-Language header
// 4. Catalog default language
func Language(catalog *i18n.Catalog) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := detectLanguage(w, r, catalog)
			ctx := context.WithValue(r.Context(), ContextKeyLanguageCode, lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLanguage(w http.ResponseWriter, r *http.Request, catalog *i18n.Catalog) string {
	if q := strings.ToLower(r.URL.Query().Get("lang")); q != "" && catalog.IsSupported(q) {
		SetLanguageCookie(w, q)
		return q
	}

	if cookie, err := r.Cookie(LanguageCookieName); err == nil {
		if code := strings.ToLower(cookie.Value); catalog.IsSupported(code) {
			return code
		}
	}

	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return catalog.MatchLanguage(accept)
	}

	return catalog.DefaultLanguage()
}

// GetLanguage returns the request language, or "" when the Language
// middleware did not run.
func GetLanguage(r *http.Request) string {
	lang, _ := r.Context().Value(ContextKeyLanguageCode).(string)
	return lang
}

// SetLanguageCookie sets the language preference cookie.
func SetLanguageCookie(w http.ResponseWriter, langCode string) {
	cookie := &http.Cookie{
		Name:     LanguageCookieName,
		Value:    langCode,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60, // 1 year
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, cookie)
}
