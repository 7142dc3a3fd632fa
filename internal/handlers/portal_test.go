package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"maintportal/internal/cache"
)

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	env.addRecord(t, "Plumbing", "2024-01-15", "Pipe Pros")
	env.addRecord(t, "Garden", "2024-05-01", "Green Thumb")

	rr := env.get("/")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}

	body := rr.Body.String()
	// Plumbing: 230 days since, 50 overdue. Roof: never serviced.
	assertContains(t, body,
		"230 days ago",
		"50 days",
		"status-overdue",
		"status-never",
		"not configured",
	)
	if strings.Index(body, "Check for leaks.") > strings.Index(body, "Inspect shingles.") {
		t.Error("overdue Plumbing should be listed before never-serviced Roof")
	}
}

func TestDashboardIsCachedUntilWrite(t *testing.T) {
	env := newTestEnv(t)

	if rr := env.get("/"); rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if _, ok := env.Pages.Get(context.Background(), cache.DashboardKey(fixedNow)); !ok {
		t.Fatal("dashboard should be cached after the first request")
	}

	// A write that bypasses the handlers is not visible yet.
	env.addRecord(t, "Roof", "2024-08-20", "Top Roofing")
	if strings.Contains(env.get("/").Body.String(), "12 days ago") {
		t.Error("cached dashboard should not reflect direct store writes")
	}

	// A write through the portal invalidates the cache.
	req := multipartRequest(t, "/category/Roof", map[string]string{
		"date": "2024-08-25", "company": "Top Roofing", "type": "Repair",
	}, "", nil)
	if rr := env.do(req); rr.Code != http.StatusSeeOther {
		t.Fatalf("add record: got %d, want 303", rr.Code)
	}
	assertContains(t, env.get("/").Body.String(), "7 days ago")
}

func TestCategoryPage(t *testing.T) {
	env := newTestEnv(t)
	env.addRecord(t, "Plumbing", "2024-03-01", "Later Co")
	env.addRecord(t, "Plumbing", "2023-11-20", "Earlier Co")

	rr := env.get("/category/Plumbing")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	assertContains(t, body, "Recommended every 180 days.", "Nov 20, 2023", "Mar 1, 2024")
	if strings.Index(body, "Earlier Co") > strings.Index(body, "Later Co") {
		t.Error("records should be listed by date ascending")
	}
}

func TestCategoryNotFound(t *testing.T) {
	env := newTestEnv(t)

	for _, target := range []string{"/category/Chimney", "/category/..%2Fetc", "/category/.hidden"} {
		t.Run(target, func(t *testing.T) {
			if rr := env.get(target); rr.Code != http.StatusNotFound {
				t.Errorf("status: got %d, want 404", rr.Code)
			}
		})
	}
}

func TestCategoryNameWithSpaces(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Records.CreateCategory(context.Background(), "Heating & Cooling"); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	rr := env.get("/category/" + url.PathEscape("Heating & Cooling"))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	assertContains(t, rr.Body.String(), "Heating &amp; Cooling")
}

func TestAddRecord(t *testing.T) {
	env := newTestEnv(t)

	req := multipartRequest(t, "/category/Plumbing", map[string]string{
		"date":    "2024-06-01",
		"company": "Pipe Pros",
		"type":    "Leak repair",
		"notes":   "Replaced the *kitchen* trap.",
	}, "", nil)
	rr := env.do(req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/category/Plumbing" {
		t.Errorf("Location: got %q, want /category/Plumbing", loc)
	}

	recs, err := env.Records.ListByCategory(context.Background(), "Plumbing")
	if err != nil {
		t.Fatalf("ListByCategory: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("records: got %d, want 1", len(recs))
	}
	if recs[0].Company != "Pipe Pros" || recs[0].Date.String() != "2024-06-01" || recs[0].HasPDF() {
		t.Errorf("stored record: %+v", recs[0])
	}

	assertContains(t, env.get("/category/Plumbing").Body.String(), "<em>kitchen</em>")
}

func TestAddRecordRejected(t *testing.T) {
	tests := []struct {
		name     string
		fields   map[string]string
		filename string
		file     []byte
		want     string
	}{
		{
			name:   "missing company",
			fields: map[string]string{"date": "2024-06-01", "type": "Inspection"},
			want:   "Company is required.",
		},
		{
			name:   "bad date",
			fields: map[string]string{"date": "June 1st", "company": "Acme", "type": "Inspection"},
			want:   "Date must be in YYYY-MM-DD format.",
		},
		{
			name:     "not a pdf",
			fields:   map[string]string{"date": "2024-06-01", "company": "Acme", "type": "Inspection"},
			filename: "invoice.pdf",
			file:     []byte("GIF89a not a document"),
			want:     "The attached file is not a valid PDF.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rr := env.do(multipartRequest(t, "/category/Plumbing", tt.fields, tt.filename, tt.file))

			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status: got %d, want 422", rr.Code)
			}
			assertContains(t, rr.Body.String(), tt.want)

			recs, _ := env.Records.ListByCategory(context.Background(), "Plumbing")
			if len(recs) != 0 {
				t.Errorf("rejected form stored %d records", len(recs))
			}
		})
	}
}

func TestAddRecordUnknownCategory(t *testing.T) {
	env := newTestEnv(t)
	req := multipartRequest(t, "/category/Chimney", map[string]string{
		"date": "2024-06-01", "company": "Acme", "type": "Sweep",
	}, "", nil)

	if rr := env.do(req); rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

func TestAddRecordWithPDFAndDownload(t *testing.T) {
	env := newTestEnv(t)
	doc := samplePDF()

	req := multipartRequest(t, "/category/Roof", map[string]string{
		"date": "2024-07-04", "company": "Top Roofing", "type": "Inspection",
	}, "Roof Report.pdf", doc)
	if rr := env.do(req); rr.Code != http.StatusSeeOther {
		t.Fatalf("add record: got %d, want 303", rr.Code)
	}

	recs, err := env.Records.ListByCategory(context.Background(), "Roof")
	if err != nil || len(recs) != 1 {
		t.Fatalf("ListByCategory: %v, %d records", err, len(recs))
	}
	if !recs[0].HasPDF() {
		t.Fatal("record should reference the uploaded PDF")
	}

	rr := env.get("/category/Roof/records/" + recs[0].ID.String() + "/pdf")
	if rr.Code != http.StatusOK {
		t.Fatalf("download: got %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type: got %q, want application/pdf", ct)
	}
	if !strings.HasPrefix(rr.Header().Get("Content-Disposition"), "inline;") {
		t.Errorf("Content-Disposition: got %q", rr.Header().Get("Content-Disposition"))
	}
	if rr.Body.Len() != len(doc) {
		t.Errorf("body length: got %d, want %d", rr.Body.Len(), len(doc))
	}
}

func TestDownloadPDFNotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.addRecord(t, "Plumbing", "2024-06-01", "No Paper Co")

	for _, target := range []string{
		"/category/Plumbing/records/not-a-uuid/pdf",
		"/category/Plumbing/records/" + rec.ID.String() + "/pdf",
		"/category/Roof/records/" + rec.ID.String() + "/pdf",
	} {
		t.Run(target, func(t *testing.T) {
			if rr := env.get(target); rr.Code != http.StatusNotFound {
				t.Errorf("status: got %d, want 404", rr.Code)
			}
		})
	}
}

func TestCreateCategory(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader("name=Chimney"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := env.do(req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/category/Chimney" {
		t.Errorf("Location: got %q", loc)
	}
	if rr := env.get("/category/Chimney"); rr.Code != http.StatusOK {
		t.Errorf("new category page: got %d, want 200", rr.Code)
	}
}

func TestCreateCategoryRejected(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader("name=..%2Fescape"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := env.do(req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want 422", rr.Code)
	}
	assertContains(t, rr.Body.String(), "flash-error")

	names, _ := env.Records.Categories(context.Background())
	if len(names) != 3 {
		t.Errorf("categories: got %v, want the three seeded ones", names)
	}
}
