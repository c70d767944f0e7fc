// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the HTTP handlers of the admin form pages.
package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/ocms-fields/internal/form"
	"github.com/olegiv/ocms-fields/internal/form/datefield"
	"github.com/olegiv/ocms-fields/internal/form/htmleditor"
	"github.com/olegiv/ocms-fields/internal/form/imagefield"
	"github.com/olegiv/ocms-fields/internal/i18n"
	"github.com/olegiv/ocms-fields/internal/middleware"
	"github.com/olegiv/ocms-fields/internal/session"
)

// Routes.
const (
	RouteProfile     = "/profile"
	RouteProfileView = "/profile/view"
)

// Profile field names.
const (
	FieldBirthDate = "BirthDate"
	FieldEventDate = "EventDate"
	FieldPhoto     = "Photo"
	FieldBio       = "Bio"
)

const (
	sessionKeyProfile = "profile"
	dataKeyThumbnail  = "Photo.thumbnail"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templatesFS, "templates/profile.html"))

// FieldDefaults holds the configured defaults of the profile fields.
type FieldDefaults struct {
	Date   datefield.Config
	Image  imagefield.Config
	Editor htmleditor.Config
}

// ProfileHandler serves the profile form. Saved values live in the session.
type ProfileHandler struct {
	catalog  *i18n.Catalog
	sm       *scs.SessionManager
	images   imagefield.Store
	defaults FieldDefaults
	logger   *slog.Logger
	now      func() time.Time
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(catalog *i18n.Catalog, sm *scs.SessionManager, images imagefield.Store, defaults FieldDefaults, logger *slog.Logger) *ProfileHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileHandler{
		catalog:  catalog,
		sm:       sm,
		images:   images,
		defaults: defaults,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock replaces the clock used for relative date bounds.
func (h *ProfileHandler) SetClock(now func() time.Time) {
	h.now = now
}

// profileForm is the form of one request.
type profileForm struct {
	*form.Form
	photo *imagefield.Field
}

func (h *ProfileHandler) newForm(lang string) profileForm {
	opts := []datefield.Option{
		datefield.WithLocale(lang),
		datefield.WithClock(h.now),
		datefield.WithLogger(h.logger),
	}

	birth := datefield.New(FieldBirthDate, h.catalog.T(lang, "demo.birth_date"), h.defaults.Date, form.Absent(), opts...)
	if err := birth.Options().Set(datefield.OptMax, "today"); err != nil {
		h.logger.Error("configuring birth date", "error", err)
	}

	event := datefield.New(FieldEventDate, h.catalog.T(lang, "demo.event_date"), h.defaults.Date, form.Absent(), opts...)
	event.AddExtraClass("event")

	photo := imagefield.New(FieldPhoto, h.catalog.T(lang, "demo.photo"), h.defaults.Image, h.logger)
	bio := htmleditor.New(FieldBio, h.catalog.T(lang, "demo.bio"), h.defaults.Editor, h.logger)

	return profileForm{
		Form:  form.New("Profile", h.logger, birth, event, photo, bio),
		photo: photo,
	}
}

// load fills the form with the values saved in the session.
func (h *ProfileHandler) load(r *http.Request, f profileForm) map[string]string {
	data, err := session.GetData(r.Context(), h.sm, sessionKeyProfile)
	if err != nil {
		h.logger.Warn("discarding saved profile", "error", err)
		data = nil
	}
	f.LoadData(data)
	f.photo.SetRecord(imagefield.ImageRecord{
		URL:       data[FieldPhoto],
		Thumbnail: data[dataKeyThumbnail],
	})
	return data
}

func (h *ProfileHandler) lang(r *http.Request) string {
	if lang := middleware.GetLanguage(r); lang != "" {
		return lang
	}
	return h.catalog.DefaultLanguage()
}

// Show handles GET /profile.
func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	lang := h.lang(r)
	f := h.newForm(lang)
	h.load(r, f)
	h.render(w, r, lang, f.Form, nil, false, http.StatusOK)
}

// Submit handles POST /profile. Invalid input re-renders the form with
// messages; valid input is saved and redirects to the read-only view.
func (h *ProfileHandler) Submit(w http.ResponseWriter, r *http.Request) {
	lang := h.lang(r)
	f := h.newForm(lang)
	saved := h.load(r, f)

	if err := f.LoadRequest(r); err != nil {
		h.logger.Info("bad profile submission", "error", err)
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	// The image value may only be replaced by an upload.
	if current := saved[FieldPhoto]; f.photo.DataValue() != current {
		h.logger.Warn("image value does not match the stored upload", "submitted", f.photo.DataValue())
		f.photo.SetValue(form.StringValue(current))
	}

	v := f.Validate(lang, h.catalog)
	if !v.Valid() {
		h.render(w, r, lang, f.Form, v, false, http.StatusUnprocessableEntity)
		return
	}

	if _, err := f.photo.Save(h.images); err != nil {
		h.logger.Error("saving profile image", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	data := f.Data()
	data[dataKeyThumbnail] = f.photo.Record().Thumbnail
	if err := session.PutData(r.Context(), h.sm, sessionKeyProfile, data); err != nil {
		h.logger.Error("storing profile", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.logger.Info("profile saved", "fields", len(data))
	session.SetFlash(r.Context(), h.sm, h.catalog.T(lang, "form.saved"), session.FlashSuccess)
	http.Redirect(w, r, RouteProfileView, http.StatusSeeOther)
}

// View handles GET /profile/view.
func (h *ProfileHandler) View(w http.ResponseWriter, r *http.Request) {
	lang := h.lang(r)
	f := h.newForm(lang)
	h.load(r, f)
	h.render(w, r, lang, f.Readonly(), nil, true, http.StatusOK)
}

type pageData struct {
	Lang      string
	Languages []string
	Title     string
	Flash     string
	FlashType string
	Form      template.HTML
	Readonly  bool
	Action    string
	EditURL   string
	SaveLabel string
	EditLabel string
}

func (h *ProfileHandler) render(w http.ResponseWriter, r *http.Request, lang string, f *form.Form, v *form.Validator, readonly bool, status int) {
	ctx := form.RenderContext{
		Lang:         lang,
		T:            h.catalog,
		Requirements: form.NewRequirements(),
		Logger:       h.logger,
	}
	body, err := f.Render(ctx, v)
	if err != nil {
		h.serverError(w, fmt.Errorf("rendering profile form: %w", err))
		return
	}

	data := pageData{
		Lang:      lang,
		Languages: h.catalog.Languages(),
		Title:     h.catalog.T(lang, "demo.title"),
		Form:      body,
		Readonly:  readonly,
		Action:    RouteProfile,
		EditURL:   RouteProfile,
		SaveLabel: h.catalog.T(lang, "form.save"),
		EditLabel: h.catalog.T(lang, "form.edit"),
	}
	data.Flash, data.FlashType = session.PopFlash(r.Context(), h.sm)
	if v != nil && !v.Valid() {
		data.Flash, data.FlashType = h.catalog.T(lang, "form.has_errors"), session.FlashError
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		h.serverError(w, fmt.Errorf("executing profile template: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *ProfileHandler) serverError(w http.ResponseWriter, err error) {
	h.logger.Error("profile page", "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
