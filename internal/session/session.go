// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the session manager and the values the admin
// pages keep in it.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
)

// Session keys.
const (
	keyFlash     = "flash"
	keyFlashType = "flash_type"
)

// Flash types.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// New creates a new session manager backed by the in-memory store.
func New(isDev bool) *scs.SessionManager {
	sm := scs.New()

	sm.Lifetime = 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev
	if !isDev {
		sm.Cookie.Name = "__Host-session"
		sm.Cookie.Path = "/"
	}

	return sm
}

// SetFlash stores a message shown on the next page.
func SetFlash(ctx context.Context, sm *scs.SessionManager, message, flashType string) {
	sm.Put(ctx, keyFlash, message)
	sm.Put(ctx, keyFlashType, flashType)
}

// PopFlash removes and returns the pending flash message. The type defaults
// to FlashInfo.
func PopFlash(ctx context.Context, sm *scs.SessionManager) (message, flashType string) {
	message = sm.PopString(ctx, keyFlash)
	if message == "" {
		return "", ""
	}
	flashType = sm.PopString(ctx, keyFlashType)
	if flashType == "" {
		flashType = FlashInfo
	}
	return message, flashType
}

// PutData stores a string map under key.
func PutData(ctx context.Context, sm *scs.SessionManager, key string, data map[string]string) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding session data %s: %w", key, err)
	}
	sm.Put(ctx, key, string(b))
	return nil
}

// GetData returns the string map stored under key, or nil.
func GetData(ctx context.Context, sm *scs.SessionManager, key string) (map[string]string, error) {
	raw := sm.GetString(ctx, key)
	if raw == "" {
		return nil, nil
	}
	var data map[string]string
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("decoding session data %s: %w", key, err)
	}
	return data, nil
}
