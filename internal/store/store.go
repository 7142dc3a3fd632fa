// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store persists maintenance records. Two interchangeable backends
// implement Records: FSStore keeps one JSON file per category directory,
// and SQLStore keeps rows in PostgreSQL or SQLite.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"maintportal/internal/models"
)

var (
	// ErrNotFound is returned when a record or attachment does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnknownCategory is returned when writing to a category that has
	// not been created.
	ErrUnknownCategory = errors.New("unknown category")
)

// Records is the record store used by the portal.
type Records interface {
	// Categories returns every known category name, sorted.
	Categories(ctx context.Context) ([]string, error)

	// CreateCategory registers a category. It is a no-op if it exists.
	CreateCategory(ctx context.Context, name string) error

	// Append stores a new record. ID and CreatedAt are assigned when
	// empty. The stored record is returned without its PDF bytes.
	Append(ctx context.Context, rec *models.Record) (*models.Record, error)

	// ListByCategory returns the category's records ordered by date
	// ascending; records with the same date keep storage order.
	ListByCategory(ctx context.Context, category string) ([]models.Record, error)

	// FindByID returns one record of a category.
	FindByID(ctx context.Context, category string, id uuid.UUID) (*models.Record, error)

	// PDF returns the attachment of a record.
	PDF(ctx context.Context, category string, id uuid.UUID) (*models.Attachment, error)

	Close() error
}

// EnsureCategories creates every named category that does not exist yet.
func EnsureCategories(ctx context.Context, r Records, names []string) error {
	for _, name := range names {
		if err := r.CreateCategory(ctx, name); err != nil {
			return fmt.Errorf("ensure category %q: %w", name, err)
		}
	}
	slog.Info("categories ensured", "count", len(names))
	return nil
}

// prepare fills the generated fields of a record before it is written.
func prepare(rec *models.Record, now time.Time) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now.UTC()
	}
}

// stripped returns a copy of rec without attachment bytes.
func stripped(rec *models.Record) *models.Record {
	out := *rec
	out.PDFData = nil
	return &out
}
