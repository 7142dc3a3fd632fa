package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"maintportal/internal/catalog"
	"maintportal/internal/models"
	"maintportal/internal/store"
	"maintportal/internal/urgency"
)

// API serves the JSON endpoints.
type API struct {
	records store.Records
	catalog *catalog.Catalog
	now     func() time.Time
}

// NewAPI creates the JSON handlers.
func NewAPI(records store.Records, cat *catalog.Catalog) *API {
	return &API{records: records, catalog: cat, now: time.Now}
}

// Urgency returns the ranked categories. The optional "at" query parameter
// (YYYY-MM-DD) ranks as of the end of that day instead of now.
func (a *API) Urgency(w http.ResponseWriter, r *http.Request) {
	now := a.now()
	if at := r.URL.Query().Get("at"); at != "" {
		d, err := models.ParseDate(at)
		if err != nil {
			writeError(w, http.StatusBadRequest, "at must be a date in YYYY-MM-DD format")
			return
		}
		now = d.Time().Add(24*time.Hour - time.Nanosecond)
	}

	entries, err := rank(r.Context(), a.records, a.catalog, now)
	if err != nil {
		slog.Error("rank categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "ranking failed")
		return
	}
	if entries == nil {
		entries = []urgency.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// Records returns a category's records in date order.
func (a *API) Records(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name, ok := categoryParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	if err := requireCategory(ctx, a.records, name); err != nil {
		if errors.Is(err, errCategoryNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		slog.Error("category lookup failed", "error", err, "category", name)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	records, err := a.records.ListByCategory(ctx, name)
	if err != nil {
		slog.Error("list records failed", "error", err, "category", name)
		writeError(w, http.StatusInternalServerError, "listing failed")
		return
	}
	if records == nil {
		records = []models.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

// categoryView is the JSON shape of a category.
type categoryView struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	IntervalDays int    `json:"intervalDays,omitempty"`
	Configured   bool   `json:"configured"`
	RecordCount  int    `json:"recordCount"`
}

// Categories lists every category with its configuration and size.
func (a *API) Categories(w http.ResponseWriter, r *http.Request) {
	categories, _, err := overview(r.Context(), a.records, a.catalog, a.now())
	if err != nil {
		slog.Error("list categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "listing failed")
		return
	}

	views := make([]categoryView, 0, len(categories))
	for _, c := range categories {
		v := categoryView{Name: c.Name, Configured: c.Configured(), RecordCount: c.RecordCount}
		if c.Config != nil {
			v.Description = c.Config.Description
			v.IntervalDays = c.Config.IntervalDays
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, views)
}

// writeJSON encodes data as the response body.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
