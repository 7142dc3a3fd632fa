// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Record is a single maintenance event logged against a category.
// Records are append-only: they are never edited after creation.
//
// The JSON shape matches the per-category data.json files, where "pdf"
// holds the stored upload filename or null.
type Record struct {
	ID        uuid.UUID `json:"id"`
	Category  string    `json:"-"`
	Date      Date      `json:"date"`
	Company   string    `json:"company"`
	Type      string    `json:"type"`
	Notes     string    `json:"notes"`
	PDF       *string   `json:"pdf"`
	PDFKey    *string   `json:"pdf_key,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`

	// PDFData carries the attachment bytes on the way into a store.
	// Stores never populate it on reads; use the store's PDF method.
	PDFData []byte `json:"-"`
}

// HasPDF returns true if the record has an attachment.
func (r *Record) HasPDF() bool {
	return r.PDF != nil && *r.PDF != ""
}

// Attachment is the payload of a record's PDF, as returned by a store.
// Exactly one of Data or Key is set: Data for attachments kept by the
// store itself, Key for attachments held in object storage.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
	Key         string
}

// InStorage returns true if the bytes live in object storage.
func (a *Attachment) InStorage() bool {
	return a.Key != ""
}
