// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Handlers run against the filesystem store in a temp dir and the
// in-memory page cache, so no external services are needed.
package handlers

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"maintportal/internal/cache"
	"maintportal/internal/catalog"
	"maintportal/internal/models"
	"maintportal/internal/render"
	"maintportal/internal/store"
)

// fixedNow is the clock of every handler test.
var fixedNow = time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	Records *store.FSStore
	Pages   *cache.MemoryCache
	Portal  *Portal
	API     *API
	Router  chi.Router
}

// newTestEnv creates the handlers over a fresh data directory with the
// categories Plumbing (180 days), Roof (365 days) and Garden (no config).
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	records, err := store.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	ctx := context.Background()
	if err := store.EnsureCategories(ctx, records, []string{"Plumbing", "Roof", "Garden"}); err != nil {
		t.Fatalf("EnsureCategories: %v", err)
	}

	cat := catalog.New(map[string]models.CategoryConfig{
		"Plumbing": {Description: "Check for leaks.", IntervalDays: 180},
		"Roof":     {Description: "Inspect shingles.", IntervalDays: 365},
	})

	renderer, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	pages := cache.NewMemoryCache(16, time.Minute)

	portal := NewPortal(renderer, records, cat, pages, nil)
	portal.now = func() time.Time { return fixedNow }
	api := NewAPI(records, cat)
	api.now = func() time.Time { return fixedNow }

	r := chi.NewRouter()
	r.Get("/", portal.Dashboard)
	r.Post("/categories", portal.CreateCategory)
	r.Get("/category/{name}", portal.Category)
	r.Post("/category/{name}", portal.AddRecord)
	r.Get("/category/{name}/records/{id}/pdf", portal.DownloadPDF)
	r.Get("/api/urgency", api.Urgency)
	r.Get("/api/categories", api.Categories)
	r.Get("/api/categories/{name}/records", api.Records)

	return &testEnv{Records: records, Pages: pages, Portal: portal, API: api, Router: r}
}

// do sends a request through the test router.
func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.Router.ServeHTTP(rr, req)
	return rr
}

// get is a GET request through the test router.
func (e *testEnv) get(target string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, target, nil))
}

// addRecord stores a record directly, bypassing the handlers.
func (e *testEnv) addRecord(t *testing.T, category, date, company string) *models.Record {
	t.Helper()
	d, err := models.ParseDate(date)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", date, err)
	}
	rec, err := e.Records.Append(context.Background(), &models.Record{
		Category: category, Date: d, Company: company, Type: "Service",
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	return rec
}

// multipartRequest builds a POST with the given fields and an optional
// "pdf" file part.
func multipartRequest(t *testing.T, target string, fields map[string]string, filename string, file []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if filename != "" {
		part, err := mw.CreateFormFile("pdf", filename)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		part.Write(file)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("multipart close: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// samplePDF builds a structurally valid one-page PDF.
func samplePDF() []byte {
	var buf bytes.Buffer
	var offsets []int

	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj("<< /Type /Pages /Kids [3 0 R] /Count 1 /Resources << >> /MediaBox [0 0 612 792] >>")
	obj("<< /Type /Page /Parent 2 0 R >>")

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

// assertContains fails unless body contains every want string.
func assertContains(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Errorf("body should contain %q", want)
		}
	}
}
