package handlers

import (
	"strings"
	"testing"
)

func TestRecordFormValidate(t *testing.T) {
	tests := []struct {
		name    string
		form    recordForm
		wantErr string
	}{
		{"valid", recordForm{Date: "2024-06-01", Company: "Acme", Type: "Inspection"}, ""},
		{"notes optional", recordForm{Date: "2024-06-01", Company: "Acme", Type: "Inspection", Notes: ""}, ""},
		{"missing date", recordForm{Company: "Acme", Type: "Inspection"}, "Date is required."},
		{"malformed date", recordForm{Date: "06/01/2024", Company: "Acme", Type: "Inspection"}, "Date must be in YYYY-MM-DD format."},
		{"impossible date", recordForm{Date: "2024-02-30", Company: "Acme", Type: "Inspection"}, "Date must be in YYYY-MM-DD format."},
		{"whitespace company", recordForm{Date: "2024-06-01", Company: "   ", Type: "Inspection"}, "Company is required."},
		{"company too long", recordForm{Date: "2024-06-01", Company: strings.Repeat("a", 201), Type: "Inspection"}, "Company is too long (max 200 characters)."},
		{"missing type", recordForm{Date: "2024-06-01", Company: "Acme"}, "Type of service is required."},
		{"notes too long", recordForm{Date: "2024-06-01", Company: "Acme", Type: "Inspection", Notes: strings.Repeat("n", 20_001)}, "Notes are too long (max 20,000 characters)."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, msg := tt.form.validate("Plumbing")
			if msg != tt.wantErr {
				t.Fatalf("message = %q, want %q", msg, tt.wantErr)
			}
			if tt.wantErr != "" {
				if rec != nil {
					t.Error("invalid form should not produce a record")
				}
				return
			}
			if rec.Category != "Plumbing" {
				t.Errorf("Category = %q, want Plumbing", rec.Category)
			}
			if rec.Date.String() != "2024-06-01" {
				t.Errorf("Date = %v, want 2024-06-01", rec.Date)
			}
		})
	}
}

func TestRecordFormTrims(t *testing.T) {
	rec, msg := recordForm{Date: " 2024-06-01 ", Company: " Acme ", Type: " Flush ", Notes: "  done \n"}.validate("Heating")
	if msg != "" {
		t.Fatalf("unexpected error: %s", msg)
	}
	if rec.Company != "Acme" || rec.Type != "Flush" || rec.Notes != "done" {
		t.Errorf("fields not trimmed: %+v", rec)
	}
}

func TestValidateCategoryName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantError bool
	}{
		{"valid", "Chimney", false},
		{"with spaces and ampersand", "Heating & Cooling", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 65), true},
		{"path separator", "../etc", true},
		{"dot", "roof.old", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateCategoryName(tt.input)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}
