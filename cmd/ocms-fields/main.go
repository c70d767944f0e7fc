// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/ocms-fields/internal/config"
	"github.com/olegiv/ocms-fields/internal/handler"
	"github.com/olegiv/ocms-fields/internal/i18n"
	"github.com/olegiv/ocms-fields/internal/imaging"
	"github.com/olegiv/ocms-fields/internal/logging"
	"github.com/olegiv/ocms-fields/internal/middleware"
	"github.com/olegiv/ocms-fields/internal/session"
	"github.com/olegiv/ocms-fields/internal/version"
	"github.com/olegiv/ocms-fields/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// Cache lifetimes in seconds.
const (
	uploadsMaxAge = 31536000
	staticMaxAge  = 86400
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "ocms-fields - date, image and editor form fields\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_UPLOADS_DIR       Upload directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_DATE_FORMAT       Default date display format (default: per locale)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_IMAGE_MAX_FILE_SIZE Maximum image upload size in bytes (default: 2097152)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_EDITOR_SCRIPT_URL Editor script URL (default: /static/tinymce/tinymce.min.js)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("ocms-fields %s\n", version.New(appVersion, appGitCommit, appBuildTime))
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	versionInfo := version.New(appVersion, appGitCommit, appBuildTime)

	events := logging.NewEventLog(logging.DefaultEventLogSize)
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.IsDevelopment(), events)
	slog.SetDefault(logger)

	catalog, err := i18n.New(logger)
	if err != nil {
		return fmt.Errorf("initializing i18n: %w", err)
	}

	if err := os.MkdirAll(cfg.UploadsDir, 0o750); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}
	images := imaging.NewProcessor(cfg.UploadsDir, cfg.UploadsURL, cfg.Image.Thumbnail)

	sessionManager := session.New(cfg.IsDevelopment())

	profileHandler := handler.NewProfileHandler(catalog, sessionManager, images, handler.FieldDefaults{
		Date:   cfg.Date,
		Image:  cfg.Image,
		Editor: cfg.Editor,
	}, logger)
	eventsHandler := handler.NewEventsHandler(events)
	healthHandler := handler.NewHealthHandler(catalog, cfg.UploadsDir, versionInfo, cfg.IsDevelopment())

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.StripSlashes)

	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment(), cfg.Editor.ScriptURL)
	r.Use(middleware.SecurityHeaders(securityConfig))
	slog.Info("security headers middleware initialized", "hsts", !cfg.IsDevelopment())

	// Health endpoints sit outside sessions and CSRF.
	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("loading static files: %w", err)
	}
	r.With(middleware.StaticCache(staticMaxAge, false)).
		Handle("/static/*", http.StripPrefix("/static", http.FileServer(http.FS(staticFS))))
	r.With(middleware.StaticCache(uploadsMaxAge, true)).
		Handle(cfg.UploadsURL+"/*", http.StripPrefix(cfg.UploadsURL, http.FileServer(http.Dir(cfg.UploadsDir))))

	csrfConfig := middleware.DefaultCSRFConfig(cfg.CSRFKey(), cfg.IsDevelopment(), cfg.ServerAddr())
	submitLimiter := middleware.NewSubmitRateLimiter(cfg.SubmitRate, cfg.SubmitBurst, logger)
	submitLimiter.SetMessage(func(req *http.Request) string {
		return catalog.T(middleware.GetLanguage(req), "form.too_many_requests")
	})
	slog.Info("submit rate limiter initialized", "rate", cfg.SubmitRate, "burst", cfg.SubmitBurst)

	r.Group(func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(middleware.Language(catalog))
		r.Use(middleware.CSRF(csrfConfig, logger))
		r.Use(submitLimiter.Middleware())

		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, handler.RouteProfile, http.StatusSeeOther)
		})
		r.Get(handler.RouteProfile, profileHandler.Show)
		r.Post(handler.RouteProfile, profileHandler.Submit)
		r.Get(handler.RouteProfileView, profileHandler.View)
		r.Get("/admin/events", eventsHandler.List)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Longer to allow for image uploads
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
