package session

import "github.com/mkarlsen/triplog/internal/domain"

// State is the single source of truth published to observers. Derived
// fields (Trips, Summary) are always consistent with FullTrips and Filters
// at the moment of publish; there is no code path that changes one without
// recomputing the others.
type State struct {
	// UserID is the bound user, or empty when unbound.
	UserID string `json:"userId,omitempty"`

	// FullTrips is the raw trip set as last pushed by the backend stream.
	FullTrips []domain.Trip `json:"fullTrips"`

	// Trips is FullTrips with the current filters applied, in push order.
	Trips []domain.Trip `json:"trips"`

	// Filters is the active criteria set.
	Filters domain.FilterCriteria `json:"filters"`

	// FilterDateInput is the raw date text as typed; only a complete valid
	// date activates the Filters.Date criterion.
	FilterDateInput string `json:"filterDateInput,omitempty"`

	// Summary is the aggregate over Trips (the filtered set).
	Summary domain.TripSummary `json:"summary"`

	// SelectedTrip is the trip currently open in a detail view, if any.
	SelectedTrip *domain.Trip `json:"selectedTrip,omitempty"`

	// Loading covers the stream subscription and direct fetches.
	Loading bool `json:"loading"`

	// Submitting covers in-flight mutations (create/update/delete).
	Submitting bool `json:"submitting"`

	// ErrorMessage and SuccessMessage are one-shot UI notifications,
	// cleared together by ClearMessages.
	ErrorMessage   string `json:"errorMessage,omitempty"`
	SuccessMessage string `json:"successMessage,omitempty"`
}

// clone returns a copy safe to hand to observers: slice headers are
// duplicated so a later replacement inside the controller cannot alias a
// snapshot someone else is reading. Trip values themselves are immutable
// once published.
func (s State) clone() State {
	out := s
	out.FullTrips = append([]domain.Trip(nil), s.FullTrips...)
	out.Trips = append([]domain.Trip(nil), s.Trips...)
	if s.SelectedTrip != nil {
		t := *s.SelectedTrip
		out.SelectedTrip = &t
	}
	return out
}
