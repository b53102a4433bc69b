package service

import (
	"context"
	"strings"
	"time"

	"printscrap/internal/apierror"
	"printscrap/internal/repository"

	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// lookupErr turns a repository read error into NotFound or Storage.
func lookupErr(err error, resource string, id uint) error {
	if repository.IsNotFound(err) {
		return apierror.NotFound(resource, id)
	}
	return apierror.Storage("load "+resource, err)
}

// writeErr turns a repository write error into Conflict (duplicate key) or Storage.
func writeErr(err error, op, duplicateMsg string) error {
	if repository.IsUniqueViolation(err) {
		return apierror.Conflict(duplicateMsg)
	}
	return apierror.Storage(op, err)
}

// parseDayRange turns inclusive YYYY-MM-DD bounds in loc into a half-open
// UTC range. Empty bounds stay nil.
func parseDayRange(from, to string, loc *time.Location) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if from = strings.TrimSpace(from); from != "" {
		d, err := time.ParseInLocation("2006-01-02", from, loc)
		if err != nil {
			return nil, nil, apierror.Validation("from", "must be a date in YYYY-MM-DD format")
		}
		u := d.UTC()
		start = &u
	}
	if to = strings.TrimSpace(to); to != "" {
		d, err := time.ParseInLocation("2006-01-02", to, loc)
		if err != nil {
			return nil, nil, apierror.Validation("to", "must be a date in YYYY-MM-DD format")
		}
		u := d.AddDate(0, 0, 1).UTC()
		end = &u
	}
	if start != nil && end != nil && !start.Before(*end) {
		return nil, nil, apierror.Validation("to", "must not be before from")
	}
	return start, end, nil
}

// monthBounds returns the UTC start of now's month and of the next one, in loc.
func monthBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	return start.UTC(), start.AddDate(0, 1, 0).UTC()
}

// dayBounds returns the UTC start of now's day and of the next one, in loc.
func dayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
