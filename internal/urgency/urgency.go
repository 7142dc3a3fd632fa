// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package urgency ranks maintenance categories by how overdue they are.
//
// For every configured category it takes the date of the most recent
// record, computes the whole days elapsed since then, and subtracts the
// category's recommended interval. Categories are ordered from most to
// least overdue. Categories that were never serviced carry no day counts
// and are ranked last; categories without configuration are left out.
package urgency

import (
	"context"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"maintportal/internal/models"
)

// maxConcurrentFetches bounds parallel record fetches in one ranking pass.
const maxConcurrentFetches = 8

// dueSoonWindow is how many days before the interval expires a category
// counts as due soon.
const dueSoonWindow = 30

// RecordsFunc returns a category's records ordered by date ascending, with
// records of the same date in storage order.
type RecordsFunc func(ctx context.Context, category string) ([]models.Record, error)

// ConfigFunc returns the configuration of a category, if it has one.
type ConfigFunc func(category string) (models.CategoryConfig, bool)

// Entry is one ranked category. DaysSince and OverdueDays are nil when the
// category has no usable service history.
type Entry struct {
	Category     string `json:"category"`
	Description  string `json:"description"`
	DaysSince    *int   `json:"daysSince"`
	OverdueDays  *int   `json:"overdueDays"`
	IntervalDays int    `json:"intervalDays"`
}

// Status labels an entry for display.
type Status string

const (
	StatusOverdue Status = "overdue"
	StatusDueSoon Status = "due-soon"
	StatusOK      Status = "ok"
	StatusNever   Status = "never"
)

// IsOverdue returns true if the interval has been exceeded.
func (e Entry) IsOverdue() bool {
	return e.OverdueDays != nil && *e.OverdueDays > 0
}

// Status classifies the entry.
func (e Entry) Status() Status {
	switch {
	case e.OverdueDays == nil:
		return StatusNever
	case *e.OverdueDays > 0:
		return StatusOverdue
	case *e.OverdueDays > -dueSoonWindow:
		return StatusDueSoon
	default:
		return StatusOK
	}
}

// Rank builds the urgency list for categories as of now.
//
// Categories are fetched concurrently. The first fetch error cancels the
// pass and is returned as is. Entries with equal overdue values keep the
// order in which categories were given.
func Rank(ctx context.Context, categories []string, records RecordsFunc, config ConfigFunc, now time.Time) ([]Entry, error) {
	slots := make([]*Entry, len(categories))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	for i, name := range categories {
		cfg, ok := config(name)
		if !ok {
			continue
		}
		g.Go(func() error {
			recs, err := records(gctx, name)
			if err != nil {
				return err
			}
			slots[i] = newEntry(name, cfg, recs, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(slots))
	for _, e := range slots {
		if e != nil {
			entries = append(entries, *e)
		}
	}
	Sort(entries)
	return entries, nil
}

// newEntry computes the day counts for one configured category.
func newEntry(name string, cfg models.CategoryConfig, recs []models.Record, now time.Time) *Entry {
	e := &Entry{
		Category:     name,
		Description:  cfg.Description,
		IntervalDays: cfg.IntervalDays,
	}
	last, ok := Latest(recs)
	if !ok {
		return e
	}
	since := DaysBetween(last, now)
	overdue := since - cfg.IntervalDays
	e.DaysSince = &since
	e.OverdueDays = &overdue
	return e
}

// Latest returns the date of the last record in recs. The slice is
// expected in ascending date order, so among records sharing the latest
// date the one stored last wins. It returns false for an empty slice or
// when the last record's date is unknown.
func Latest(recs []models.Record) (models.Date, bool) {
	if len(recs) == 0 {
		return models.Date{}, false
	}
	d := recs[len(recs)-1].Date
	if d.IsZero() {
		return models.Date{}, false
	}
	return d, true
}

// DaysBetween returns the whole days from the start of d until now,
// rounded down. Dates in the future yield negative counts.
func DaysBetween(d models.Date, now time.Time) int {
	elapsed := now.Sub(d.Time())
	return int(math.Floor(elapsed.Hours() / 24))
}

// Sort orders entries from most to least overdue, stably. Entries without
// an overdue value go last: a category that was never serviced is treated
// as the least urgent, not the most.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].OverdueDays, entries[j].OverdueDays
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
}

// Summary counts entries per status.
type Summary struct {
	Total   int
	Overdue int
	DueSoon int
	OK      int
	Never   int
}

// Summarize tallies the statuses of entries.
func Summarize(entries []Entry) Summary {
	s := Summary{Total: len(entries)}
	for _, e := range entries {
		switch e.Status() {
		case StatusOverdue:
			s.Overdue++
		case StatusDueSoon:
			s.DueSoon++
		case StatusOK:
			s.OK++
		case StatusNever:
			s.Never++
		}
	}
	return s
}
