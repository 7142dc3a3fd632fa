// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the portal pages.
// Pages are rendered to bytes first so handlers can cache them; the CSRF
// token is substituted per request when the bytes are written out.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strings"

	"maintportal/internal/markdown"
	"maintportal/internal/middleware"
	"maintportal/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// TokenPlaceholder stands in for the CSRF token inside rendered pages.
// It never appears in a real token (hex only).
const TokenPlaceholder = "__CSRF_TOKEN__"

// PageData holds all data passed to page templates.
type PageData struct {
	Title     string         // Page title for <title> tag
	CSRFToken string         // CSRF token for forms
	Data      map[string]any // Page-specific data
	Flashes   []Flash        // One-time notification messages
}

// Flash represents a one-time notification message displayed to the user.
type Flash struct {
	Type    string // "success", "error"
	Message string
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// New creates a Renderer by parsing all templates from the embedded
// filesystem. Each page template is paired with the base layout.
func New() (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			// deref safely dereferences a string pointer for use in templates.
			"deref": func(s *string) string {
				if s == nil {
					return ""
				}
				return *s
			},
			"derefInt": func(n *int) int {
				if n == nil {
					return 0
				}
				return *n
			},
			// statusClass maps an urgency status to its CSS class.
			"statusClass": func(status any) string {
				return "status-" + fmt.Sprint(status)
			},
			"fmtDate": func(d models.Date) string {
				if d.IsZero() {
					return "unknown"
				}
				return d.Time().Format("Jan 2, 2006")
			},
			"add":   func(a, b int) int { return a + b },
			"notes": markdown.Notes,
			// pathEscape encodes a category name as one URL path segment.
			"pathEscape": url.PathEscape,
		},
	}

	pages, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob templates: %w", err)
	}

	for _, page := range pages {
		name := strings.TrimPrefix(page, "templates/")
		if name == "base.html" {
			continue
		}

		tmpl, err := template.New("base.html").Funcs(r.funcMap).ParseFS(
			templateFS, "templates/base.html", page,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}

		r.templates[strings.TrimSuffix(name, ".html")] = tmpl
	}

	return r, nil
}

// Render executes a page into bytes. An empty CSRFToken is rendered as
// TokenPlaceholder so the result can be shared between visitors.
func (rn *Renderer) Render(name string, data *PageData) ([]byte, error) {
	tmpl, ok := rn.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	if data.CSRFToken == "" {
		data.CSRFToken = TokenPlaceholder
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Write sends a rendered page, filling in the request's CSRF token.
func (rn *Renderer) Write(w http.ResponseWriter, r *http.Request, status int, page []byte) {
	token := middleware.CSRFTokenFromCtx(r.Context())
	page = bytes.ReplaceAll(page, []byte(TokenPlaceholder), []byte(token))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(page)
}

// Page renders and writes a page in one step.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	page, err := rn.Render(name, data)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	rn.Write(w, r, status, page)
}

// Error renders the error page with the given status and message.
func (rn *Renderer) Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	rn.Page(w, r, status, "error", &PageData{
		Title: http.StatusText(status),
		Data:  map[string]any{"Message": message},
	})
}
