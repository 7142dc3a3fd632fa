// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"maintportal/internal/database"
	"maintportal/internal/models"
)

// SQLStore keeps records in the "records" table of PostgreSQL or SQLite.
// Categories are the union of the "categories" table and every category
// that has records.
type SQLStore struct {
	db      *sql.DB
	dialect database.Dialect
	now     func() time.Time
}

// NewSQLStore returns a SQLStore on an already migrated database.
func NewSQLStore(db *sql.DB, dialect database.Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect, now: time.Now}
}

const recordColumns = `id, category, date, company, type, notes, pdf, pdf_key, created_at`

// scanRecord scans a row selected with recordColumns.
func scanRecord(scanner interface{ Scan(...any) error }) (*models.Record, error) {
	var (
		r    models.Record
		date string
	)
	err := scanner.Scan(&r.ID, &r.Category, &date, &r.Company, &r.Type, &r.Notes, &r.PDF, &r.PDFKey, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	// Unparseable dates are kept as unknown rather than failing the list.
	r.Date, _ = models.ParseDate(date)
	return &r, nil
}

// Categories returns the known category names, sorted.
func (s *SQLStore) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM categories
		UNION
		SELECT DISTINCT category FROM records
		ORDER BY 1
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CreateCategory inserts a category row if it does not exist.
func (s *SQLStore) CreateCategory(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO categories (name, created_at) VALUES (?, ?)
		ON CONFLICT (name) DO NOTHING
	`), name, s.now().UTC())
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// Append inserts a record together with its PDF bytes.
func (s *SQLStore) Append(ctx context.Context, rec *models.Record) (*models.Record, error) {
	known, err := s.hasCategory(ctx, rec.Category)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, rec.Category)
	}

	prepare(rec, s.now())

	var data []byte
	if len(rec.PDFData) > 0 {
		data = rec.PDFData
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO records (id, category, date, company, type, notes, pdf, pdf_key, pdf_data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), rec.ID, rec.Category, rec.Date.String(), rec.Company, rec.Type, rec.Notes,
		rec.PDF, rec.PDFKey, data, rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("append record: %w", err)
	}
	return stripped(rec), nil
}

// ListByCategory returns a category's records by date, then insertion order.
func (s *SQLStore) ListByCategory(ctx context.Context, category string) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT `+recordColumns+`
		FROM records
		WHERE category = ?
		ORDER BY date ASC, seq ASC
	`), category)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var items []models.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		items = append(items, *r)
	}
	return items, rows.Err()
}

// FindByID returns a single record of a category.
func (s *SQLStore) FindByID(ctx context.Context, category string, id uuid.UUID) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT `+recordColumns+` FROM records WHERE category = ? AND id = ?
	`), category, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find record: %w", err)
	}
	return r, nil
}

// PDF loads the attachment of a record.
func (s *SQLStore) PDF(ctx context.Context, category string, id uuid.UUID) (*models.Attachment, error) {
	var (
		name *string
		key  *string
		data []byte
	)
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT pdf, pdf_key, pdf_data FROM records WHERE category = ? AND id = ?
	`), category, id).Scan(&name, &key, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load pdf: %w", err)
	}
	if name == nil || *name == "" {
		return nil, ErrNotFound
	}

	if key != nil && *key != "" {
		return &models.Attachment{Name: *name, ContentType: "application/pdf", Key: *key}, nil
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}
	return &models.Attachment{Name: *name, ContentType: http.DetectContentType(data), Data: data}, nil
}

// Close closes the underlying pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// hasCategory reports whether name is a known category.
func (s *SQLStore) hasCategory(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT COUNT(*) FROM categories WHERE name = ?
	`), name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check category: %w", err)
	}
	return n > 0, nil
}

// rebind rewrites ? placeholders to $N for PostgreSQL. Queries in this
// file never contain literal question marks.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != database.Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
