// Package filter implements the trip filter predicate engine: a pure mapping
// from (full trip set, criteria) to the filtered subset shown in the list.
// It has no side effects and no dependency on the current wall-clock time,
// so the same inputs always produce the same output.
package filter

import (
	"strings"
	"time"

	"github.com/mkarlsen/triplog/internal/domain"
)

// dateLayout is the date-only input format accepted by the date criterion.
const dateLayout = "2006-01-02"

// Apply returns the trips matching ALL active criteria, preserving the
// relative order of the input. A criterion with an empty value is vacuously
// true, so each filter can be toggled independently. Always returns a
// non-nil slice so callers can safely range over it.
func Apply(trips []domain.Trip, c domain.FilterCriteria) []domain.Trip {
	out := make([]domain.Trip, 0, len(trips))
	for _, t := range trips {
		if matches(t, c) {
			out = append(out, t)
		}
	}
	return out
}

// matches reports whether a single trip satisfies every active criterion.
func matches(t domain.Trip, c domain.FilterCriteria) bool {
	if c.Search != "" && !containsFold(t.Title, c.Search) {
		return false
	}
	if c.Date != "" && !matchesDay(t.CreatedAt, c.Date) {
		return false
	}
	if c.Tag != "" && !anyTagContains(t.Tags, c.Tag) {
		return false
	}
	if c.Location != "" &&
		!containsFold(t.StartLocation, c.Location) &&
		!containsFold(t.DestinationLocation, c.Location) {
		return false
	}
	return true
}

// matchesDay reports whether the trip's creation instant falls on the given
// calendar day in the process-local time zone. A malformed date string
// deactivates the criterion rather than filtering everything out, matching
// how unparseable date input is ignored upstream.
func matchesDay(createdAtMillis int64, date string) bool {
	day, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return true
	}
	created := time.UnixMilli(createdAtMillis).In(time.Local)
	y1, m1, d1 := created.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// anyTagContains reports whether any tag contains the query as a
// case-insensitive substring. Substring, not exact match: filtering by
// "fam" matches a tag "family".
func anyTagContains(tags []string, query string) bool {
	for _, tag := range tags {
		if containsFold(tag, query) {
			return true
		}
	}
	return false
}

// containsFold is a case-insensitive strings.Contains.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
