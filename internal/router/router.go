// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// maintenance portal. It organizes routes into the HTML portal, the JSON
// API and operational endpoints.
package router

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"maintportal/internal/handlers"
	"maintportal/internal/middleware"
	"maintportal/web"
)

// Options tunes the middleware stack.
type Options struct {
	// SecureCookies marks the CSRF cookie Secure (serve behind TLS).
	SecureCookies bool

	// MaxBodyBytes caps form posts, including PDF uploads.
	MaxBodyBytes int64
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(portal *handlers.Portal, api *handlers.API, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.NotFound(notFoundHandler)

	// Operational endpoints: no CSRF.
	r.Get("/health", healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	static, err := fs.Sub(web.StaticFS, "static")
	if err == nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	}

	// JSON API (read-only).
	r.Route("/api", func(r chi.Router) {
		r.Get("/urgency", api.Urgency)
		r.Get("/categories", api.Categories)
		r.Get("/categories/{name}/records", api.Records)
	})

	// HTML portal: form posts are size-limited and CSRF-protected.
	r.Group(func(r chi.Router) {
		if opts.MaxBodyBytes > 0 {
			r.Use(middleware.LimitBody(opts.MaxBodyBytes))
		}
		r.Use(middleware.NewCSRF(opts.SecureCookies))

		r.Get("/", portal.Dashboard)
		r.Post("/categories", portal.CreateCategory)
		r.Get("/category/{name}", portal.Category)
		r.Post("/category/{name}", portal.AddRecord)
		r.Get("/category/{name}/records/{id}/pdf", portal.DownloadPDF)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// notFoundHandler answers unknown API paths with JSON and everything else
// with plain text.
func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
		return
	}
	http.NotFound(w, r)
}
