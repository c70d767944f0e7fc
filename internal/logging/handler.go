// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging builds the application logger. Besides writing to the
// wrapped handler it keeps the most recent warnings and errors in an
// in-memory event log that the admin UI can show.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Event categories.
const (
	CategoryDate     = "date"
	CategoryUpload   = "upload"
	CategorySecurity = "security"
	CategoryConfig   = "config"
	CategorySystem   = "system"
)

// DefaultEventLogSize is the number of events kept by NewEventLog(0).
const DefaultEventLogSize = 200

// Event is a log record kept in the event log.
type Event struct {
	Time     time.Time         `json:"time"`
	Level    string            `json:"level"`
	Category string            `json:"category"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// EventLog is a bounded, concurrency safe list of recent events.
type EventLog struct {
	mu     sync.RWMutex
	events []Event
	next   int
	full   bool
}

// NewEventLog creates an event log holding up to size events.
func NewEventLog(size int) *EventLog {
	if size <= 0 {
		size = DefaultEventLogSize
	}
	return &EventLog{events: make([]Event, size)}
}

func (l *EventLog) add(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events[l.next] = e
	l.next = (l.next + 1) % len(l.events)
	if l.next == 0 {
		l.full = true
	}
}

// Recent returns the stored events, newest first.
func (l *EventLog) Recent() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := l.next
	if l.full {
		n = len(l.events)
	}
	out := make([]Event, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, l.events[(l.next-i+len(l.events))%len(l.events)])
	}
	return out
}

// EventLogHandler is a slog.Handler that wraps another handler and also
// records logs at or above its level in an EventLog.
type EventLogHandler struct {
	inner slog.Handler
	log   *EventLog
	level slog.Level
	attrs []slog.Attr
	group string
}

// NewEventLogHandler creates a new EventLogHandler that records WARN and
// above.
func NewEventLogHandler(inner slog.Handler, log *EventLog) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, log, slog.LevelWarn)
}

// NewEventLogHandlerWithLevel creates a new EventLogHandler with a custom minimum level.
func NewEventLogHandlerWithLevel(inner slog.Handler, log *EventLog, level slog.Level) *EventLogHandler {
	return &EventLogHandler{
		inner: inner,
		log:   log,
		level: level,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level >= h.level {
		h.log.add(h.event(r))
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.inner = h.inner.WithAttrs(attrs)
	c.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		if a.Key != "category" && h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		c.attrs = append(c.attrs, a)
	}
	return &c
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.inner = h.inner.WithGroup(name)
	if c.group != "" {
		name = c.group + "." + name
	}
	c.group = name
	return &c
}

func (h *EventLogHandler) event(r slog.Record) Event {
	e := Event{
		Time:    r.Time,
		Level:   r.Level.String(),
		Message: r.Message,
	}

	add := func(a slog.Attr, group string) {
		if a.Key == "category" {
			e.Category = a.Value.String()
			return
		}
		if e.Metadata == nil {
			e.Metadata = make(map[string]string)
		}
		key := a.Key
		if group != "" {
			key = group + "." + key
		}
		e.Metadata[key] = a.Value.String()
	}
	// Handler attrs carry the group that was open when they were added.
	for _, a := range h.attrs {
		add(a, "")
	}
	r.Attrs(func(a slog.Attr) bool {
		add(a, h.group)
		return true
	})

	if e.Category == "" {
		e.Category = inferCategory(r.Message)
	}
	return e
}

// inferCategory guesses the event category from the message.
func inferCategory(msg string) string {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "date") || strings.Contains(msg, "bound") || strings.Contains(msg, "range"):
		return CategoryDate
	case strings.Contains(msg, "upload") || strings.Contains(msg, "image"):
		return CategoryUpload
	case strings.Contains(msg, "csrf") || strings.Contains(msg, "rate limit"):
		return CategorySecurity
	case strings.Contains(msg, "config") || strings.Contains(msg, "secret"):
		return CategoryConfig
	default:
		return CategorySystem
	}
}

// ParseLevel maps a configured level name to a slog.Level. Unknown names
// give Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds the application logger writing to w: text in development, JSON
// otherwise. Warnings and errors are also recorded in events when it is not
// nil.
func New(w io.Writer, level string, development bool, events *EventLog) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var h slog.Handler
	if development {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	if events != nil {
		h = NewEventLogHandler(h, events)
	}
	return slog.New(h)
}
