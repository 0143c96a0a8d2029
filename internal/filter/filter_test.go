package filter_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarlsen/triplog/internal/domain"
	"github.com/mkarlsen/triplog/internal/filter"
)

// ---- helpers ---------------------------------------------------------------

func parisTrip() domain.Trip {
	return domain.Trip{
		ID:                  "trip-paris",
		Title:               "Paris Trip",
		StartLocation:       "Paris, France",
		DestinationLocation: "Lyon",
		DistanceKm:          10,
		DurationMinutes:     120,
		Tags:                []string{"vacation"},
		CreatedAt:           millisOn(2024, time.June, 1),
	}
}

func commuteTrip() domain.Trip {
	return domain.Trip{
		ID:                  "trip-commute",
		Title:               "Work Commute",
		StartLocation:       "Berlin",
		DestinationLocation: "Potsdam",
		DistanceKm:          5,
		DurationMinutes:     30,
		Tags:                []string{"work"},
		CreatedAt:           millisOn(2024, time.June, 2),
	}
}

// millisOn returns noon on the given local calendar day in epoch millis.
// Noon keeps the instant safely inside the day in any zone offset.
func millisOn(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 12, 0, 0, 0, time.Local).UnixMilli()
}

func ids(trips []domain.Trip) []string {
	out := make([]string, len(trips))
	for i, t := range trips {
		out[i] = t.ID
	}
	return out
}

// ---- basic semantics -------------------------------------------------------

func TestApply_EmptyCriteriaReturnsAll(t *testing.T) {
	trips := []domain.Trip{parisTrip(), commuteTrip()}

	got := filter.Apply(trips, domain.FilterCriteria{})

	assert.Equal(t, ids(trips), ids(got))
}

func TestApply_EmptyInput(t *testing.T) {
	got := filter.Apply(nil, domain.FilterCriteria{Search: "anything"})

	// No matches is an empty slice, never nil and never an error.
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestApply_Idempotent(t *testing.T) {
	trips := []domain.Trip{parisTrip(), commuteTrip()}
	c := domain.FilterCriteria{Tag: "a"} // matches "vacation" only

	once := filter.Apply(trips, c)
	twice := filter.Apply(once, c)

	assert.Equal(t, once, twice)
}

func TestApply_PreservesOrder(t *testing.T) {
	trips := []domain.Trip{commuteTrip(), parisTrip()}

	got := filter.Apply(trips, domain.FilterCriteria{})

	assert.Equal(t, []string{"trip-commute", "trip-paris"}, ids(got))
}

func TestApply_ConjunctionEqualsIntersection(t *testing.T) {
	trips := []domain.Trip{parisTrip(), commuteTrip()}
	c1 := domain.FilterCriteria{Search: "trip"}
	c2 := domain.FilterCriteria{Location: "paris"}
	both := domain.FilterCriteria{Search: "trip", Location: "paris"}

	combined := filter.Apply(trips, both)

	// Intersecting the two single-criterion results by ID must give the
	// same set as applying both criteria at once.
	inFirst := map[string]bool{}
	for _, tr := range filter.Apply(trips, c1) {
		inFirst[tr.ID] = true
	}
	var intersection []string
	for _, tr := range filter.Apply(trips, c2) {
		if inFirst[tr.ID] {
			intersection = append(intersection, tr.ID)
		}
	}

	assert.Equal(t, intersection, ids(combined))
}

// ---- individual criteria ---------------------------------------------------

func TestApply_SearchMatchesTitleCaseInsensitive(t *testing.T) {
	trips := []domain.Trip{parisTrip(), commuteTrip()}

	got := filter.Apply(trips, domain.FilterCriteria{Search: "pArIs"})

	assert.Equal(t, []string{"trip-paris"}, ids(got))
}

func TestApply_TagSubstringMatch(t *testing.T) {
	trips := []domain.Trip{parisTrip(), commuteTrip()}

	// "vac" is a substring of the tag "vacation" — not an exact match.
	got := filter.Apply(trips, domain.FilterCriteria{Tag: "vac"})

	assert.Equal(t, []string{"trip-paris"}, ids(got))
}

func TestApply_TagNoMatch(t *testing.T) {
	trips := []domain.Trip{parisTrip(), commuteTrip()}

	got := filter.Apply(trips, domain.FilterCriteria{Tag: "beach"})

	assert.Empty(t, got)
}

func TestApply_LocationMatchesEitherEnd(t *testing.T) {
	trips := []domain.Trip{parisTrip(), commuteTrip()}

	// Start label matches.
	got := filter.Apply(trips, domain.FilterCriteria{Location: "Paris"})
	assert.Equal(t, []string{"trip-paris"}, ids(got))

	// Destination label matches.
	got = filter.Apply(trips, domain.FilterCriteria{Location: "potsdam"})
	assert.Equal(t, []string{"trip-commute"}, ids(got))
}

func TestApply_DateMatchesCalendarDay(t *testing.T) {
	trips := []domain.Trip{parisTrip(), commuteTrip()}

	got := filter.Apply(trips, domain.FilterCriteria{Date: "2024-06-01"})

	assert.Equal(t, []string{"trip-paris"}, ids(got))
}

func TestApply_DateNoMatch(t *testing.T) {
	trips := []domain.Trip{parisTrip(), commuteTrip()}

	got := filter.Apply(trips, domain.FilterCriteria{Date: "2024-07-15"})

	assert.Empty(t, got)
}

func TestApply_MalformedDateIsIgnored(t *testing.T) {
	trips := []domain.Trip{parisTrip(), commuteTrip()}

	// An unparseable date deactivates the criterion instead of matching
	// nothing, mirroring how invalid input is ignored while typing.
	got := filter.Apply(trips, domain.FilterCriteria{Date: "06/01/2024"})

	assert.Len(t, got, 2)
}

func TestApply_AllCriteriaTogether(t *testing.T) {
	trips := []domain.Trip{parisTrip(), commuteTrip()}
	c := domain.FilterCriteria{
		Search:   "paris",
		Date:     "2024-06-01",
		Tag:      "vacation",
		Location: "lyon",
	}

	got := filter.Apply(trips, c)

	assert.Equal(t, []string{"trip-paris"}, ids(got))
}

func TestApply_OneFailingCriterionExcludes(t *testing.T) {
	trips := []domain.Trip{parisTrip()}
	c := domain.FilterCriteria{
		Search: "paris",
		Tag:    "work", // fails — conjunction, not disjunction
	}

	got := filter.Apply(trips, c)

	assert.Empty(t, got)
}
