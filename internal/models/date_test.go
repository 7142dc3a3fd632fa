package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"plain date", "2024-01-01", "2024-01-01", false},
		{"surrounding space", " 2024-03-15\n", "2024-03-15", false},
		{"rfc3339 timestamp", "2024-03-15T00:00:00Z", "2024-03-15", false},
		{"empty", "", "", true},
		{"garbage", "next tuesday", "", true},
		{"bad month", "2024-13-01", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDate(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDate(%q): expected error, got %v", tt.in, d)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q): %v", tt.in, err)
			}
			if d.String() != tt.want {
				t.Errorf("ParseDate(%q) = %q, want %q", tt.in, d.String(), tt.want)
			}
		})
	}
}

func TestDateIsUTCMidnight(t *testing.T) {
	d := NewDate(2024, time.June, 2)
	tm := d.Time()
	if tm.Location() != time.UTC {
		t.Errorf("location: got %v, want UTC", tm.Location())
	}
	if tm.Hour() != 0 || tm.Minute() != 0 || tm.Second() != 0 {
		t.Errorf("time of day: got %v, want midnight", tm)
	}
}

func TestDateOfDropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	in := time.Date(2024, time.February, 29, 23, 30, 0, 0, loc)
	if got := DateOf(in).String(); got != "2024-02-29" {
		t.Errorf("DateOf: got %q, want %q", got, "2024-02-29")
	}
}

func TestDateJSON(t *testing.T) {
	t.Run("marshal known date", func(t *testing.T) {
		b, err := json.Marshal(NewDate(2023, time.December, 31))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(b) != `"2023-12-31"` {
			t.Errorf("got %s", b)
		}
	})

	t.Run("marshal zero date", func(t *testing.T) {
		b, _ := json.Marshal(Date{})
		if string(b) != "null" {
			t.Errorf("got %s, want null", b)
		}
	})

	t.Run("malformed values decode to zero", func(t *testing.T) {
		for _, raw := range []string{`null`, `""`, `"soon"`, `42`, `{"a":1}`} {
			var d Date
			if err := json.Unmarshal([]byte(raw), &d); err != nil {
				t.Errorf("Unmarshal(%s): unexpected error %v", raw, err)
			}
			if !d.IsZero() {
				t.Errorf("Unmarshal(%s): got %v, want zero date", raw, d)
			}
		}
	})

	t.Run("record with legacy shape", func(t *testing.T) {
		raw := `{"date":"2024-05-01","company":"ACME","type":"Inspection","notes":"ok","pdf":null}`
		var r Record
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if r.Date.String() != "2024-05-01" {
			t.Errorf("date: got %q", r.Date.String())
		}
		if r.HasPDF() {
			t.Error("expected no pdf")
		}
	})
}

func TestDateBefore(t *testing.T) {
	a := NewDate(2024, time.January, 1)
	b := NewDate(2024, time.January, 2)
	if !a.Before(b) {
		t.Error("expected a before b")
	}
	if b.Before(a) || a.Before(a) {
		t.Error("Before should be strict")
	}
}
