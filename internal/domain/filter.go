package domain

// FilterCriteria is the transient per-session constraint set applied to the
// trip list. An empty field means that criterion is inactive; the zero value
// means "no filtering".
type FilterCriteria struct {
	// Search matches the trip title, case-insensitive substring.
	Search string `json:"search,omitempty"`

	// Date is a date-only string ("2006-01-02"). A trip matches when its
	// creation instant falls on that calendar day in the local time zone.
	Date string `json:"date,omitempty"`

	// Tag matches any tag element, case-insensitive substring.
	Tag string `json:"tag,omitempty"`

	// Location matches the start or destination label, case-insensitive
	// substring (either suffices).
	Location string `json:"location,omitempty"`
}

// IsZero reports whether no criterion is active.
func (c FilterCriteria) IsZero() bool {
	return c.Search == "" && c.Date == "" && c.Tag == "" && c.Location == ""
}
