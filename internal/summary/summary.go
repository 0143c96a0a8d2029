// Package summary implements the trip summary aggregator: a pure mapping
// from a (filtered) trip set to the derived statistics shown above the list.
package summary

import "github.com/mkarlsen/triplog/internal/domain"

// Build computes the aggregate over the given trips. Empty input yields the
// all-zero summary. The mean duration is taken over every trip in the set,
// including those with an unset (zero) duration, so a trip without metrics
// still counts toward the average.
func Build(trips []domain.Trip) domain.TripSummary {
	if len(trips) == 0 {
		return domain.TripSummary{}
	}

	var totalDistance float64
	var totalMinutes int
	for _, t := range trips {
		totalDistance += t.DistanceKm
		totalMinutes += t.DurationMinutes
	}

	avgMinutes := float64(totalMinutes) / float64(len(trips))
	return domain.TripSummary{
		TotalTrips:           len(trips),
		TotalDistanceKm:      totalDistance,
		AverageDurationHours: avgMinutes / 60.0,
	}
}
