// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"

	"github.com/olegiv/ocms-fields/internal/logging"
)

// EventsHandler lists recent warnings and errors from the event log.
type EventsHandler struct {
	log *logging.EventLog
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(log *logging.EventLog) *EventsHandler {
	return &EventsHandler{log: log}
}

// List handles GET /admin/events. It accepts optional category and limit
// query parameters.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	events := h.log.Recent()

	if category := r.URL.Query().Get("category"); category != "" {
		filtered := events[:0]
		for _, e := range events {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			writeJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if limit < len(events) {
			events = events[:limit]
		}
	}

	writeJSONSuccess(w, map[string]any{"events": events})
}
