// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"maintportal/internal/cache"
	"maintportal/internal/catalog"
	"maintportal/internal/pdf"
	"maintportal/internal/render"
	"maintportal/internal/slug"
	"maintportal/internal/storage"
	"maintportal/internal/store"
	"maintportal/internal/urgency"
)

const (
	// multipartMemory is how much of an upload is buffered in memory.
	multipartMemory = 8 << 20

	// presignExpiry is how long a PDF download link stays valid.
	presignExpiry = 15 * time.Minute
)

// Portal groups the handlers of the HTML pages. Rendered pages are kept
// in the page cache until a write invalidates them.
type Portal struct {
	renderer *render.Renderer
	records  store.Records
	catalog  *catalog.Catalog
	pages    cache.Pages
	objects  *storage.Client
	now      func() time.Time
}

// NewPortal creates the page handlers. objects may be nil, in which case
// PDFs are kept by the record store.
func NewPortal(renderer *render.Renderer, records store.Records, cat *catalog.Catalog, pages cache.Pages, objects *storage.Client) *Portal {
	return &Portal{
		renderer: renderer,
		records:  records,
		catalog:  cat,
		pages:    pages,
		objects:  objects,
		now:      time.Now,
	}
}

// Dashboard lists every category and the urgency ranking. The page is
// cached per UTC day because day counts change at midnight.
func (p *Portal) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := p.now()
	key := cache.DashboardKey(now)

	if cached, ok := p.pages.Get(ctx, key); ok {
		p.renderer.Write(w, r, http.StatusOK, cached)
		return
	}

	page, err := p.dashboardPage(ctx, now, nil)
	if err != nil {
		slog.Error("render dashboard failed", "error", err)
		p.renderer.Error(w, r, http.StatusInternalServerError, "The dashboard could not be loaded.")
		return
	}

	p.pages.Set(ctx, key, page)
	p.renderer.Write(w, r, http.StatusOK, page)
}

// Category shows one category's records in date order with the form for
// adding a new record.
func (p *Portal) Category(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name, ok := categoryParam(r)
	if !ok {
		p.renderer.Error(w, r, http.StatusNotFound, "Category not found.")
		return
	}

	key := cache.CategoryKey(name)
	if cached, ok := p.pages.Get(ctx, key); ok {
		p.renderer.Write(w, r, http.StatusOK, cached)
		return
	}

	page, err := p.categoryPage(ctx, name, nil)
	if errors.Is(err, errCategoryNotFound) {
		p.renderer.Error(w, r, http.StatusNotFound, "Category not found.")
		return
	}
	if err != nil {
		slog.Error("render category failed", "error", err, "category", name)
		p.renderer.Error(w, r, http.StatusInternalServerError, "The category could not be loaded.")
		return
	}

	p.pages.Set(ctx, key, page)
	p.renderer.Write(w, r, http.StatusOK, page)
}

// AddRecord stores a record submitted from the category page. The form is
// multipart because it may carry a PDF. On success the browser is sent
// back to the category page.
func (p *Portal) AddRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name, ok := categoryParam(r)
	if !ok {
		p.renderer.Error(w, r, http.StatusNotFound, "Category not found.")
		return
	}
	if err := requireCategory(ctx, p.records, name); err != nil {
		p.categoryLookupFailed(w, r, name, err)
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			p.renderer.Error(w, r, http.StatusRequestEntityTooLarge, "The upload is too large.")
			return
		}
		p.renderer.Error(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}

	form := recordForm{
		Date:    r.FormValue("date"),
		Company: r.FormValue("company"),
		Type:    r.FormValue("type"),
		Notes:   r.FormValue("notes"),
	}
	rec, msg := form.validate(name)
	if msg != "" {
		p.rejectRecord(w, r, name, msg)
		return
	}

	filename, data, msg := readPDF(r)
	if msg != "" {
		p.rejectRecord(w, r, name, msg)
		return
	}

	var uploadedKey string
	if data != nil {
		rec.PDF = &filename
		if p.objects != nil {
			rec.ID = uuid.New()
			key := storage.Key(name, rec.ID, slug.Filename(filename))
			if err := p.objects.Upload(ctx, key, pdf.ContentType, bytes.NewReader(data), int64(len(data))); err != nil {
				slog.Error("pdf upload failed", "error", err, "category", name)
				p.renderer.Error(w, r, http.StatusBadGateway, "The PDF could not be stored.")
				return
			}
			rec.PDFKey = &key
			uploadedKey = key
		} else {
			rec.PDFData = data
		}
	}

	saved, err := p.records.Append(ctx, rec)
	if err != nil {
		if uploadedKey != "" {
			if delErr := p.objects.Delete(ctx, uploadedKey); delErr != nil {
				slog.Warn("orphaned pdf not removed", "error", delErr, "key", uploadedKey)
			}
		}
		if errors.Is(err, store.ErrUnknownCategory) {
			p.renderer.Error(w, r, http.StatusNotFound, "Category not found.")
			return
		}
		slog.Error("append record failed", "error", err, "category", name)
		p.renderer.Error(w, r, http.StatusInternalServerError, "The record could not be saved.")
		return
	}

	p.pages.InvalidateAll(ctx)
	recordsAdded.WithLabelValues(strconv.FormatBool(saved.HasPDF())).Inc()
	slog.Info("record added", "category", name, "id", saved.ID, "date", saved.Date.String(), "pdf", saved.HasPDF())

	http.Redirect(w, r, categoryURL(name), http.StatusSeeOther)
}

// CreateCategory adds a new, initially empty category.
func (p *Portal) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := strings.TrimSpace(r.FormValue("name"))

	if msg := validateCategoryName(name); msg != "" {
		page, err := p.dashboardPage(ctx, p.now(), []render.Flash{{Type: "error", Message: msg}})
		if err != nil {
			slog.Error("render dashboard failed", "error", err)
			p.renderer.Error(w, r, http.StatusInternalServerError, "The dashboard could not be loaded.")
			return
		}
		p.renderer.Write(w, r, http.StatusUnprocessableEntity, page)
		return
	}

	if err := p.records.CreateCategory(ctx, name); err != nil {
		slog.Error("create category failed", "error", err, "category", name)
		p.renderer.Error(w, r, http.StatusInternalServerError, "The category could not be created.")
		return
	}

	p.pages.InvalidateAll(ctx)
	slog.Info("category created", "category", name)

	http.Redirect(w, r, categoryURL(name), http.StatusSeeOther)
}

// DownloadPDF serves a record's attachment inline, or redirects to a
// short-lived object storage link when the file lives there.
func (p *Portal) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name, ok := categoryParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	att, err := p.records.PDF(ctx, name, id)
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrUnknownCategory) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("pdf lookup failed", "error", err, "category", name, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if att.InStorage() {
		if p.objects == nil {
			slog.Warn("pdf stored remotely but object storage is not configured", "key", att.Key)
			http.NotFound(w, r)
			return
		}
		presigned, err := p.objects.PresignedURL(ctx, att.Key, presignExpiry)
		if err == nil {
			http.Redirect(w, r, presigned, http.StatusFound)
			return
		}
		// Presigning failed; stream the object through the portal instead.
		slog.Warn("presign failed, proxying download", "error", err, "key", att.Key)
		data, err := p.objects.Download(ctx, att.Key)
		if err != nil {
			slog.Error("pdf download failed", "error", err, "key", att.Key)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		att.Data = data
	}

	w.Header().Set("Content-Type", att.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", att.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(att.Data)))
	w.Write(att.Data)
}

// dashboardPage renders the dashboard. Pages with flashes are per-request
// and must not be cached.
func (p *Portal) dashboardPage(ctx context.Context, now time.Time, flashes []render.Flash) ([]byte, error) {
	categories, entries, err := overview(ctx, p.records, p.catalog, now)
	if err != nil {
		return nil, err
	}
	return p.renderer.Render("dashboard", &render.PageData{
		Title:   "Dashboard",
		Flashes: flashes,
		Data: map[string]any{
			"Urgency":    entries,
			"Summary":    urgency.Summarize(entries),
			"Categories": categories,
		},
	})
}

// categoryPage renders a category page, or errCategoryNotFound.
func (p *Portal) categoryPage(ctx context.Context, name string, flashes []render.Flash) ([]byte, error) {
	if err := requireCategory(ctx, p.records, name); err != nil {
		return nil, err
	}
	records, err := p.records.ListByCategory(ctx, name)
	if err != nil {
		return nil, err
	}

	data := map[string]any{
		"Name":    name,
		"Records": records,
	}
	if cfg, ok := p.catalog.Lookup(name); ok {
		data["Config"] = &cfg
	}
	return p.renderer.Render("category", &render.PageData{
		Title:   name,
		Flashes: flashes,
		Data:    data,
	})
}

// rejectRecord re-renders the category page with a validation message.
func (p *Portal) rejectRecord(w http.ResponseWriter, r *http.Request, name, msg string) {
	page, err := p.categoryPage(r.Context(), name, []render.Flash{{Type: "error", Message: msg}})
	if err != nil {
		p.categoryLookupFailed(w, r, name, err)
		return
	}
	p.renderer.Write(w, r, http.StatusUnprocessableEntity, page)
}

func (p *Portal) categoryLookupFailed(w http.ResponseWriter, r *http.Request, name string, err error) {
	if errors.Is(err, errCategoryNotFound) {
		p.renderer.Error(w, r, http.StatusNotFound, "Category not found.")
		return
	}
	slog.Error("category lookup failed", "error", err, "category", name)
	p.renderer.Error(w, r, http.StatusInternalServerError, "The category could not be loaded.")
}

// readPDF returns the optional "pdf" file part. A missing or empty part
// yields nil data. A non-empty msg describes why the file was refused.
func readPDF(r *http.Request) (filename string, data []byte, msg string) {
	file, header, err := r.FormFile("pdf")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil, ""
	}
	if err != nil {
		return "", nil, "The attached file could not be read."
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		return "", nil, "The attached file could not be read."
	}
	if len(data) == 0 {
		return "", nil, ""
	}
	if _, err := pdf.Validate(data); err != nil {
		slog.Debug("pdf rejected", "error", err, "filename", header.Filename)
		return "", nil, "The attached file is not a valid PDF."
	}
	return header.Filename, data, ""
}
