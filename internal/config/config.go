// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the server configuration from environment variables.
package config

import (
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/hkdf"

	"github.com/olegiv/ocms-fields/internal/form/datefield"
	"github.com/olegiv/ocms-fields/internal/form/htmleditor"
	"github.com/olegiv/ocms-fields/internal/form/imagefield"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	SessionSecret string `env:"OCMS_SESSION_SECRET,required"`
	ServerHost    string `env:"OCMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"OCMS_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"OCMS_ENV" envDefault:"development"`
	LogLevel      string `env:"OCMS_LOG_LEVEL" envDefault:"info"`
	UploadsDir    string `env:"OCMS_UPLOADS_DIR" envDefault:"./uploads"`
	UploadsURL    string `env:"OCMS_UPLOADS_URL" envDefault:"/uploads"`

	// Submit rate limit per client IP
	SubmitRate  float64 `env:"OCMS_SUBMIT_RATE" envDefault:"1"`
	SubmitBurst int     `env:"OCMS_SUBMIT_BURST" envDefault:"5"`

	// Field defaults
	Date   datefield.Config  `envPrefix:"OCMS_DATE_"`
	Image  imagefield.Config `envPrefix:"OCMS_IMAGE_"`
	Editor htmleditor.Config `envPrefix:"OCMS_EDITOR_"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("OCMS_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("OCMS_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("OCMS_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if cfg.SubmitRate <= 0 || cfg.SubmitBurst <= 0 {
		return nil, fmt.Errorf("OCMS_SUBMIT_RATE and OCMS_SUBMIT_BURST must be positive, got %g and %d",
			cfg.SubmitRate, cfg.SubmitBurst)
	}

	if cfg.Date.Range != "" && !strings.Contains(cfg.Date.Range, "-") {
		slog.Warn("OCMS_DATE_RANGE should look like 1990-2030; the default year window will be used",
			"range", cfg.Date.Range)
	}

	return cfg, nil
}

// csrfKeyInfo separates the CSRF key from other keys derived from the
// session secret.
const csrfKeyInfo = "ocms-fields csrf"

// CSRFKey returns the 32-byte CSRF key derived from the session secret with
// HKDF-SHA256.
func (c Config) CSRFKey() []byte {
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(c.SessionSecret), nil, []byte(csrfKeyInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		// HKDF only fails when more than 255 hashes of output are requested.
		panic(fmt.Sprintf("deriving CSRF key: %v", err))
	}
	return key
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
