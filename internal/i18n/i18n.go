// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package i18n provides translated labels and validation messages for admin
// form fields.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

//go:embed locales
var localesFS embed.FS

// Message represents a single translatable message.
type Message struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	Translation string `json:"translation"`
}

// MessageFile represents the structure of a messages JSON file.
type MessageFile struct {
	Language string    `json:"language"`
	Messages []Message `json:"messages"`
}

// SupportedLanguages lists the languages shipped in locales/.
var SupportedLanguages = []string{"en", "ru", "de"}

// Catalog holds all translations for all supported languages.
// It is read-only after New returns.
type Catalog struct {
	mu           sync.RWMutex
	translations map[string]map[string]string // lang -> key -> translation
	matcher      language.Matcher
	supported    []language.Tag
	languages    []string
	defaultLang  string
	logger       *slog.Logger
}

// New loads the embedded catalogs for the given languages, or for
// SupportedLanguages when none are given. The first language is the default.
func New(logger *slog.Logger, languages ...string) (*Catalog, error) {
	if len(languages) == 0 {
		languages = SupportedLanguages
	}

	c := &Catalog{
		translations: make(map[string]map[string]string),
		languages:    languages,
		defaultLang:  languages[0],
		logger:       logger,
	}

	tags := make([]language.Tag, 0, len(languages))
	for _, lang := range languages {
		tag, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("parsing language %q: %w", lang, err)
		}
		tags = append(tags, tag)
	}
	c.supported = tags
	c.matcher = language.NewMatcher(tags)

	for _, lang := range languages {
		if err := c.loadLanguage(lang); err != nil {
			return nil, fmt.Errorf("failed to load language %s: %w", lang, err)
		}
	}

	if logger != nil {
		logger.Info("i18n initialized", "languages", languages)
	}

	return c, nil
}

// loadLanguage loads translations for a specific language.
func (c *Catalog) loadLanguage(lang string) error {
	path := fmt.Sprintf("locales/%s/messages.json", lang)
	data, err := localesFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var msgFile MessageFile
	if err := json.Unmarshal(data, &msgFile); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.translations[lang] = make(map[string]string)
	for _, msg := range msgFile.Messages {
		c.translations[lang][msg.ID] = msg.Translation
	}

	if c.logger != nil {
		c.logger.Debug("loaded translations", "language", lang, "count", len(msgFile.Messages))
	}

	return nil
}

// normalize reduces "de_DE" or "de-DE" to "de" when only the base language
// has a catalog.
func (c *Catalog) normalize(lang string) string {
	lang = strings.ToLower(lang)
	if _, ok := c.translations[lang]; ok {
		return lang
	}
	if idx := strings.IndexAny(lang, "-_"); idx > 0 {
		return lang[:idx]
	}
	return lang
}

// T translates a message key to the specified language.
// If the key is not found, it returns the key itself.
// Supports optional arguments for string formatting.
func (c *Catalog) T(lang, key string, args ...any) string {
	if c == nil {
		return key
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	lang = c.normalize(lang)
	translation, ok := c.translations[lang][key]
	if !ok {
		translation, ok = c.translations[c.defaultLang][key]
		if !ok {
			return key
		}
		if lang != c.defaultLang && c.logger != nil {
			c.logger.Debug("missing translation, using default", "key", key, "lang", lang)
		}
	}

	if len(args) > 0 {
		return fmt.Sprintf(translation, args...)
	}
	return translation
}

// MatchLanguage finds the best matching supported language for an
// Accept-Language header or a single language code.
func (c *Catalog) MatchLanguage(acceptLang string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(tags) == 0 {
		tag, err := language.Parse(acceptLang)
		if err != nil {
			return c.defaultLang
		}
		tags = []language.Tag{tag}
	}

	_, idx, confidence := c.matcher.Match(tags...)
	if confidence == language.No {
		return c.defaultLang
	}
	if idx >= 0 && idx < len(c.languages) {
		return c.languages[idx]
	}

	return c.defaultLang
}

// IsSupported checks if a language code has a catalog.
func (c *Catalog) IsSupported(lang string) bool {
	lang = strings.ToLower(lang)
	for _, supported := range c.languages {
		if supported == lang {
			return true
		}
	}
	return false
}

// Languages returns the loaded language codes, default first.
func (c *Catalog) Languages() []string {
	return c.languages
}

// DefaultLanguage returns the fallback language code.
func (c *Catalog) DefaultLanguage() string {
	return c.defaultLang
}

// TranslationCount returns the number of translations loaded for a language.
func (c *Catalog) TranslationCount(lang string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.translations[lang])
}
