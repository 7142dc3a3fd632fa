package handlers

import (
	"strings"
	"unicode/utf8"

	"maintportal/internal/models"
	"maintportal/internal/slug"
)

// Validation limits for record form fields.
const (
	maxCompanyLen = 200
	maxTypeLen    = 200
	maxNotesLen   = 20_000
)

// recordForm holds the text fields of the add-record form.
type recordForm struct {
	Date    string
	Company string
	Type    string
	Notes   string
}

// validate checks the form and returns the record it describes, or the
// first problem found as a user-facing message.
func (f recordForm) validate(category string) (*models.Record, string) {
	company := strings.TrimSpace(f.Company)
	kind := strings.TrimSpace(f.Type)

	if strings.TrimSpace(f.Date) == "" {
		return nil, "Date is required."
	}
	date, err := models.ParseDate(f.Date)
	if err != nil {
		return nil, "Date must be in YYYY-MM-DD format."
	}
	if company == "" {
		return nil, "Company is required."
	}
	if utf8.RuneCountInString(company) > maxCompanyLen {
		return nil, "Company is too long (max 200 characters)."
	}
	if kind == "" {
		return nil, "Type of service is required."
	}
	if utf8.RuneCountInString(kind) > maxTypeLen {
		return nil, "Type of service is too long (max 200 characters)."
	}
	if utf8.RuneCountInString(f.Notes) > maxNotesLen {
		return nil, "Notes are too long (max 20,000 characters)."
	}

	return &models.Record{
		Category: category,
		Date:     date,
		Company:  company,
		Type:     kind,
		Notes:    strings.TrimSpace(f.Notes),
	}, ""
}

// validateCategoryName checks the create-category form.
func validateCategoryName(name string) string {
	switch {
	case name == "":
		return "Category name is required."
	case utf8.RuneCountInString(name) > slug.MaxCategoryLen:
		return "Category name is too long (max 64 characters)."
	case !slug.ValidCategory(name):
		return "Category names may contain letters, digits, spaces, '-', '_' and '&'."
	}
	return ""
}
