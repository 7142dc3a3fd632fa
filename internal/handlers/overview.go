// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers of the portal pages and the
// JSON API.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"maintportal/internal/catalog"
	"maintportal/internal/models"
	"maintportal/internal/slug"
	"maintportal/internal/store"
	"maintportal/internal/urgency"
)

var (
	overdueCategories = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "maintportal_overdue_categories",
		Help: "Categories past their recommended interval at the last ranking.",
	})

	recordsAdded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "maintportal_records_added_total",
		Help: "Maintenance records added, by whether a PDF was attached.",
	}, []string{"pdf"})
)

// errCategoryNotFound is returned by lookups of categories that the store
// does not know.
var errCategoryNotFound = errors.New("category not found")

// overview loads every category with its record count and the urgency
// ranking of the configured ones. Each category is read once.
func overview(ctx context.Context, records store.Records, cat *catalog.Catalog, now time.Time) ([]models.Category, []urgency.Entry, error) {
	names, err := records.Categories(ctx)
	if err != nil {
		return nil, nil, err
	}

	var mu sync.Mutex
	counts := make(map[string]int, len(names))
	fetch := func(ctx context.Context, name string) ([]models.Record, error) {
		recs, err := records.ListByCategory(ctx, name)
		if err != nil {
			return nil, err
		}
		mu.Lock()
		counts[name] = len(recs)
		mu.Unlock()
		return recs, nil
	}

	entries, err := urgency.Rank(ctx, names, fetch, cat.Lookup, now)
	if err != nil {
		return nil, nil, err
	}
	overdueCategories.Set(float64(urgency.Summarize(entries).Overdue))

	categories := make([]models.Category, 0, len(names))
	for _, name := range names {
		c := models.Category{Name: name}
		if cfg, ok := cat.Lookup(name); ok {
			c.Config = &cfg
		}
		n, ok := counts[name]
		if !ok {
			// Unconfigured categories are not ranked, so count them here.
			recs, err := records.ListByCategory(ctx, name)
			if err != nil {
				return nil, nil, err
			}
			n = len(recs)
		}
		c.RecordCount = n
		categories = append(categories, c)
	}
	return categories, entries, nil
}

// rank returns only the urgency ranking.
func rank(ctx context.Context, records store.Records, cat *catalog.Catalog, now time.Time) ([]urgency.Entry, error) {
	names, err := records.Categories(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := urgency.Rank(ctx, names, records.ListByCategory, cat.Lookup, now)
	if err != nil {
		return nil, err
	}
	overdueCategories.Set(float64(urgency.Summarize(entries).Overdue))
	return entries, nil
}

// categoryParam returns the decoded {name} route parameter.
func categoryParam(r *http.Request) (string, bool) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || !slug.ValidCategory(name) {
		return "", false
	}
	return name, true
}

// requireCategory fails with errCategoryNotFound unless the store lists name.
func requireCategory(ctx context.Context, records store.Records, name string) error {
	names, err := records.Categories(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(names, name) {
		return errCategoryNotFound
	}
	return nil
}

// categoryURL is the portal path of a category page.
func categoryURL(name string) string {
	return "/category/" + url.PathEscape(name)
}
