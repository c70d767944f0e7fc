// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"image/color"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-fields/internal/form/datefield"
	"github.com/olegiv/ocms-fields/internal/form/htmleditor"
	"github.com/olegiv/ocms-fields/internal/form/imagefield"
	"github.com/olegiv/ocms-fields/internal/imaging"
	"github.com/olegiv/ocms-fields/internal/middleware"
	"github.com/olegiv/ocms-fields/internal/session"
	"github.com/olegiv/ocms-fields/internal/testutil"
)

var testNow = time.Date(2026, 10, 16, 12, 30, 0, 0, time.UTC)

type testClient struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func (c *testClient) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		c.cookies[ck.Name] = ck
	}
	return rec
}

func (c *testClient) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *testClient) postForm(values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, RouteProfile, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *testClient) postMultipart(values url.Values, filename string, file []byte) *httptest.ResponseRecorder {
	c.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vs := range values {
		for _, v := range vs {
			require.NoError(c.t, mw.WriteField(k, v))
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile(FieldPhoto, filename)
		require.NoError(c.t, err)
		_, err = io.Copy(fw, bytes.NewReader(file))
		require.NoError(c.t, err)
	}
	require.NoError(c.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, RouteProfile, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()
	catalog := testutil.TestCatalog(t)

	sm := session.New(true)
	processor := imaging.NewProcessor(t.TempDir(), "/uploads", imaging.DefaultThumbnail)
	h := NewProfileHandler(catalog, sm, processor, FieldDefaults{
		Date:   datefield.DefaultConfig(),
		Image:  imagefield.DefaultConfig(),
		Editor: htmleditor.DefaultConfig(),
	}, testutil.TestLoggerSilent())
	h.SetClock(testutil.FixedClock(testNow))

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Use(middleware.Language(catalog))
	r.Get(RouteProfile, h.Show)
	r.Post(RouteProfile, h.Submit)
	r.Get(RouteProfileView, h.View)

	return &testClient{t: t, handler: r, cookies: map[string]*http.Cookie{}}
}

func dateValues(name, day, month, year string) url.Values {
	return url.Values{
		name + "[day]":   {day},
		name + "[month]": {month},
		name + "[year]":  {year},
	}
}

func merge(vs ...url.Values) url.Values {
	out := url.Values{}
	for _, v := range vs {
		for k, val := range v {
			out[k] = val
		}
	}
	return out
}

func TestProfileShow(t *testing.T) {
	c := newTestClient(t)

	rec := c.get(RouteProfile)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, `<form method="post" action="/profile" enctype="multipart/form-data">`)
	assert.Contains(t, body, `<select name="BirthDate[day]"`)
	assert.Contains(t, body, `<select name="EventDate[year]"`)
	assert.Contains(t, body, `data-max="today"`)
	assert.Contains(t, body, `<input type="file" name="Photo"`)
	assert.Contains(t, body, `<textarea name="Bio"`)
	assert.Contains(t, body, "tinyMCE.init(ssTinyMceConfig);")
	assert.Contains(t, body, `<option value="NotSet">Day</option>`)
}

func TestProfileShowLanguage(t *testing.T) {
	c := newTestClient(t)

	rec := c.get(RouteProfile + "?lang=de")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<html lang="de">`)
	assert.Contains(t, body, `<option value="NotSet">Tag</option>`)
	assert.Contains(t, body, `data-isodateformat="dd.MM.y"`)
	assert.Contains(t, body, "Speichern")

	// The cookie keeps the language.
	rec = c.get(RouteProfile)
	assert.Contains(t, rec.Body.String(), `<html lang="de">`)
}

func TestProfileSubmitInvalid(t *testing.T) {
	tests := []struct {
		name     string
		values   url.Values
		message  string
		selected string
	}{
		{
			name:     "incomplete date",
			values:   dateValues(FieldBirthDate, "31", "NotSet", "1990"),
			message:  "Please enter a valid date format (MMM d, y)",
			selected: "31",
		},
		{
			name:     "impossible date",
			values:   dateValues(FieldBirthDate, "31", "02", "1990"),
			message:  "Please enter a valid date format (MMM d, y)",
			selected: "31",
		},
		{
			name:     "birth date in the future",
			values:   dateValues(FieldBirthDate, "17", "10", "2026"),
			message:  "Your date has to be older or matching the maximum allowed date (Oct 16, 2026)",
			selected: "17",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t)

			rec := c.postForm(tt.values)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

			body := rec.Body.String()
			assert.Contains(t, body, `<div class="flash flash-error">Please correct the errors below</div>`)
			assert.Contains(t, body, `<span class="message validation">`+tt.message+`</span>`)
			// The submitted parts stay selected.
			assert.Contains(t, body, `<option value="`+tt.selected+`" selected="selected">`+tt.selected+`</option>`)
		})
	}
}

func TestProfileSubmitAndView(t *testing.T) {
	c := newTestClient(t)

	values := merge(
		dateValues(FieldBirthDate, "31", "03", "1990"),
		dateValues(FieldEventDate, "NotSet", "NotSet", "NotSet"),
		url.Values{FieldBio: {`<p>Hello <b>there</b></p><script>alert(1)</script>`}},
	)
	rec := c.postForm(values)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, RouteProfileView, rec.Header().Get("Location"))

	rec = c.get(RouteProfileView)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<div class="flash flash-success">Your changes have been saved</div>`)
	assert.Contains(t, body, "Mar 31, 1990")
	assert.Contains(t, body, `<input type="hidden" name="BirthDate" value="1990-03-31">`)
	assert.Contains(t, body, "Hello there")
	assert.NotContains(t, body, "alert(1)")
	assert.NotContains(t, body, "<form")

	// The flash is shown once.
	rec = c.get(RouteProfileView)
	assert.NotContains(t, rec.Body.String(), "flash-success")

	// The edit form is pre-populated from the saved value.
	rec = c.get(RouteProfile)
	body = rec.Body.String()
	assert.Contains(t, body, `<option value="31" selected="selected">31</option>`)
	assert.Contains(t, body, `<option value="03" selected="selected">03</option>`)
	assert.Contains(t, body, `<option value="1990" selected="selected">1990</option>`)
}

func TestProfileSubmitUpload(t *testing.T) {
	c := newTestClient(t)

	rec := c.postMultipart(dateValues(FieldBirthDate, "01", "01", "2000"), "My Photo.png", testutil.PNG(t, 200, 100, color.RGBA{G: 128, A: 255}))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	rec = c.get(RouteProfile)
	body := rec.Body.String()
	assert.Contains(t, body, `<img class="thumbnail" src="/uploads/thumbnails/`)
	assert.Contains(t, body, `/my-photo.png">`)

	rec = c.get(RouteProfileView)
	assert.Contains(t, rec.Body.String(), "my-photo.png")
}

func TestProfileSubmitRejectsBadUpload(t *testing.T) {
	c := newTestClient(t)

	rec := c.postMultipart(url.Values{}, "evil.png", []byte("<?php echo 1; ?>"))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "The uploaded file is not a valid image")
}

func TestProfileSubmitIgnoresForgedImageValue(t *testing.T) {
	c := newTestClient(t)

	values := url.Values{FieldPhoto: {"javascript:alert(1)"}}
	rec := c.postForm(values)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = c.get(RouteProfileView)
	assert.NotContains(t, rec.Body.String(), "javascript")
}

func TestProfileCorruptSession(t *testing.T) {
	sm := session.New(true)
	h := NewProfileHandler(testutil.TestCatalog(t), sm, nil, FieldDefaults{Date: datefield.DefaultConfig()}, testutil.TestLoggerSilent())

	handler := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sm.Put(r.Context(), sessionKeyProfile, "{broken")
		h.Show(w, r)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, RouteProfile, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
