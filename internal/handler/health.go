// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"os"
	"runtime"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/olegiv/ocms-fields/internal/i18n"
	"github.com/olegiv/ocms-fields/internal/version"
)

// Check statuses.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// minUploadSpace is the free space below which uploads are reported degraded.
const minUploadSpace = 100 << 20

// HealthHandler handles health check requests.
type HealthHandler struct {
	catalog      *i18n.Catalog
	uploadsDir   string
	version      version.Info
	exposeSystem bool
	startTime    time.Time
}

// NewHealthHandler creates a new health handler. System metrics are only
// reported when exposeSystem is set.
func NewHealthHandler(catalog *i18n.Catalog, uploadsDir string, info version.Info, exposeSystem bool) *HealthHandler {
	return &HealthHandler{
		catalog:      catalog,
		uploadsDir:   uploadsDir,
		version:      info,
		exposeSystem: exposeSystem,
		startTime:    time.Now(),
	}
}

// HealthStatus represents the overall health status.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// SystemInfo contains system-level information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAlloc     string `json:"mem_alloc"`
	MemSys       string `json:"mem_sys"`
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]Check{
		"uploads": h.checkUploads(),
		"i18n":    h.checkCatalog(),
	}

	status := HealthStatus{
		Status:    StatusHealthy,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version.Version,
		Checks:    checks,
	}
	for _, c := range checks {
		if c.Status != StatusHealthy {
			status.Status = StatusDegraded
		}
	}
	if h.exposeSystem && r.URL.Query().Get("verbose") == "true" {
		status.System = systemInfo()
	}

	code := http.StatusOK
	if status.Status != StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// Liveness handles GET /health/live - simple liveness check.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// checkUploads reports free space in the uploads directory.
func (h *HealthHandler) checkUploads() Check {
	info, err := os.Stat(h.uploadsDir)
	if os.IsNotExist(err) {
		return Check{Status: StatusHealthy, Message: "Uploads directory does not exist yet"}
	}
	if err != nil {
		return Check{Status: StatusUnhealthy, Message: err.Error()}
	}
	if !info.IsDir() {
		return Check{Status: StatusUnhealthy, Message: "Uploads path is not a directory"}
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(h.uploadsDir, &stat); err != nil {
		return Check{Status: StatusUnhealthy, Message: "Failed to check disk space: " + err.Error()}
	}

	available := stat.Bavail * uint64(stat.Bsize)
	if available < minUploadSpace {
		return Check{Status: StatusDegraded, Message: "Low disk space: " + humanize.IBytes(available) + " available"}
	}
	return Check{Status: StatusHealthy, Message: humanize.IBytes(available) + " available"}
}

// checkCatalog reports whether translations were loaded.
func (h *HealthHandler) checkCatalog() Check {
	if h.catalog == nil {
		return Check{Status: StatusUnhealthy, Message: "No translations loaded"}
	}
	for _, lang := range h.catalog.Languages() {
		if h.catalog.TranslationCount(lang) == 0 {
			return Check{Status: StatusDegraded, Message: "No translations for " + lang}
		}
	}
	return Check{Status: StatusHealthy}
}

func systemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     humanize.IBytes(m.Alloc),
		MemSys:       humanize.IBytes(m.Sys),
	}
}
