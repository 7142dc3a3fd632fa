// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"maintportal/internal/models"
	"maintportal/internal/slug"
)

const (
	// dataFile is the per-category record file.
	dataFile = "data.json"

	categoriesDir = "categories"
	uploadsDir    = "uploads"
)

// legacyNamespace derives stable IDs for records written without one.
var legacyNamespace = uuid.MustParse("6f1c9e52-3f0e-4d0a-9b7b-5b1d8f7f2a10")

// FSStore keeps records on disk:
//
//	<root>/categories/<name>/data.json   JSON array of records, append order
//	<root>/uploads/<unix-ms>-<id>-<file> uploaded PDFs
//
// Categories are the sub-directories of <root>/categories.
type FSStore struct {
	root string
	now  func() time.Time

	// mu serializes read-modify-write cycles on data files.
	mu sync.Mutex
}

// NewFSStore creates the directory layout under root if needed.
func NewFSStore(root string) (*FSStore, error) {
	for _, dir := range []string{categoriesDir, uploadsDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("create %s dir: %w", dir, err)
		}
	}
	return &FSStore{root: root, now: time.Now}, nil
}

// Categories lists category directories in name order.
func (s *FSStore) Categories(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, categoriesDir))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && slug.ValidCategory(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// CreateCategory creates the category directory.
func (s *FSStore) CreateCategory(_ context.Context, name string) error {
	dir, err := s.categoryDir(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// Append adds rec to the end of its category file. A PDF payload is
// written to the uploads directory first.
func (s *FSStore) Append(_ context.Context, rec *models.Record) (*models.Record, error) {
	dir, err := s.existingCategoryDir(rec.Category)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(rec, s.now())

	var upload string
	if len(rec.PDFData) > 0 {
		name := uploadName(rec)
		upload = filepath.Join(s.root, uploadsDir, name)
		if err := writeNew(upload, rec.PDFData); err != nil {
			return nil, fmt.Errorf("write upload: %w", err)
		}
		rec.PDF = &name
	}

	records, err := s.load(dir, rec.Category)
	if err == nil {
		records = append(records, *stripped(rec))
		err = s.save(dir, records)
	}
	if err != nil {
		if upload != "" {
			if rmErr := os.Remove(upload); rmErr != nil {
				slog.Warn("orphaned upload not removed", "path", upload, "error", rmErr)
			}
		}
		return nil, err
	}
	return stripped(rec), nil
}

// uploadName is the stored file name of a record's PDF. The record ID
// keeps names unique when the same file is uploaded twice in one
// millisecond.
func uploadName(rec *models.Record) string {
	return strconv.FormatInt(rec.CreatedAt.UnixMilli(), 10) + "-" + rec.ID.String() + "-" + slug.Filename(pdfName(rec))
}

// writeNew writes data to a file that must not exist yet.
func writeNew(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// ListByCategory returns records sorted by date. The sort is stable, so
// records sharing a date stay in the order they were appended.
func (s *FSStore) ListByCategory(_ context.Context, category string) ([]models.Record, error) {
	dir, err := s.categoryDir(category)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	records, err := s.load(dir, category)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
	return records, nil
}

// FindByID returns a single record of a category.
func (s *FSStore) FindByID(ctx context.Context, category string, id uuid.UUID) (*models.Record, error) {
	records, err := s.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == id {
			return &records[i], nil
		}
	}
	return nil, ErrNotFound
}

// PDF returns the uploaded file of a record. Records whose attachment
// lives in object storage return only the key.
func (s *FSStore) PDF(ctx context.Context, category string, id uuid.UUID) (*models.Attachment, error) {
	rec, err := s.FindByID(ctx, category, id)
	if err != nil {
		return nil, err
	}
	if !rec.HasPDF() {
		return nil, ErrNotFound
	}
	if rec.PDFKey != nil && *rec.PDFKey != "" {
		return &models.Attachment{Name: *rec.PDF, ContentType: "application/pdf", Key: *rec.PDFKey}, nil
	}

	// The stored name came from this store, but guard against edited files.
	name := filepath.Base(*rec.PDF)
	data, err := os.ReadFile(filepath.Join(s.root, uploadsDir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return &models.Attachment{Name: name, ContentType: http.DetectContentType(data), Data: data}, nil
}

// Close is a no-op for the filesystem store.
func (s *FSStore) Close() error {
	return nil
}

// categoryDir returns the directory of a category, rejecting names that
// could escape the categories root.
func (s *FSStore) categoryDir(name string) (string, error) {
	if !slug.ValidCategory(name) {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	return filepath.Join(s.root, categoriesDir, name), nil
}

// existingCategoryDir is categoryDir for categories that must already exist.
func (s *FSStore) existingCategoryDir(name string) (string, error) {
	dir, err := s.categoryDir(name)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	return dir, nil
}

// load reads a category file. A missing file means no records. Records
// written without an ID get one derived from their position, which is
// stable because files are append-only.
func (s *FSStore) load(dir, category string) ([]models.Record, error) {
	data, err := os.ReadFile(filepath.Join(dir, dataFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s records: %w", category, err)
	}

	var records []models.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s records: %w", category, err)
	}
	for i := range records {
		records[i].Category = category
		if records[i].ID == uuid.Nil {
			records[i].ID = uuid.NewSHA1(legacyNamespace, []byte(category+"/"+strconv.Itoa(i)))
		}
	}
	return records, nil
}

// save writes the category file atomically through a temp file.
func (s *FSStore) save(dir string, records []models.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	tmp, err := os.CreateTemp(dir, dataFile+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write records: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close records: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, dataFile)); err != nil {
		return fmt.Errorf("replace records: %w", err)
	}
	return nil
}

// pdfName returns the original upload name of a record's attachment.
func pdfName(rec *models.Record) string {
	if rec.PDF != nil && *rec.PDF != "" {
		return *rec.PDF
	}
	return "attachment.pdf"
}
