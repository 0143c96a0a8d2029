package domain

// TripSummary is the derived aggregate over a (usually filtered) trip set.
// It is a pure projection: recomputed wholesale on every change, never
// persisted or independently mutated.
type TripSummary struct {
	TotalTrips           int     `json:"totalTrips"`
	TotalDistanceKm      float64 `json:"totalDistanceKm"`
	AverageDurationHours float64 `json:"averageDurationHours"`
}
