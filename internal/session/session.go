// Package session implements the trip session controller: the single owner
// of per-user trip state. It binds to the authenticated user, maintains
// exactly one live backend subscription, re-derives the filtered list and
// summary on every input change, and surfaces all backend failures as state
// rather than letting them propagate.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mkarlsen/triplog/internal/domain"
	"github.com/mkarlsen/triplog/internal/filter"
	"github.com/mkarlsen/triplog/internal/store"
	"github.com/mkarlsen/triplog/internal/summary"
)

// User-facing messages. The controller is the layer that owns message
// wording; handlers and views only display what is published in state.
const (
	msgSignInRequired = "Please sign in to save trips."
	msgTripSaved      = "Trip saved successfully!"
	msgTripUpdated    = "Trip updated successfully!"
	msgTripDeleted    = "Trip deleted successfully."
	msgTripNotFound   = "Trip not found."
)

// Controller owns the session state. All mutation goes through its methods,
// serialized by one mutex, so observers never see a filtered list computed
// from stale criteria against fresh data or vice versa.
type Controller struct {
	store store.TripStore
	log   *slog.Logger

	mu     sync.Mutex
	state  State
	gen    uint64             // subscription generation, bumped on every rebind
	cancel context.CancelFunc // cancels the active subscription, nil when unbound

	watchers    map[uint64]chan State
	nextWatcher uint64
}

// New constructs a Controller backed by the provided store. The store is
// injected rather than reached for globally so tests can substitute a fake.
func New(ts store.TripStore, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		store:    ts,
		log:      log,
		state:    State{FullTrips: []domain.Trip{}, Trips: []domain.Trip{}},
		watchers: make(map[uint64]chan State),
	}
}

// OnAuthChange drives the Unbound/Bound state machine. An empty userID is
// sign-out: the previous subscription is cancelled and all trip data is
// cleared immediately. A new user cancels the previous subscription before
// the new one starts, so subscriptions never overlap. Repeated calls with
// the same user are no-ops.
func (c *Controller) OnAuthChange(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.UserID == userID {
		return
	}

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++

	if userID == "" {
		c.log.Info("session unbound")
		c.state = State{FullTrips: []domain.Trip{}, Trips: []domain.Trip{}}
		c.deriveLocked()
		c.publishLocked()
		return
	}

	c.log.Info("session bound", "user_id", userID)
	c.state = State{UserID: userID, Loading: true, FullTrips: []domain.Trip{}, Trips: []domain.Trip{}}
	c.deriveLocked()
	c.publishLocked()

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.listen(ctx, c.gen, userID)
}

// listen consumes the backend stream for one subscription generation.
// Every application of a push re-checks the generation under the lock, so a
// push raced with a user switch can never land in the wrong session.
func (c *Controller) listen(ctx context.Context, gen uint64, userID string) {
	ch, err := c.store.Subscribe(ctx, userID)
	if err != nil {
		c.applyIfCurrent(gen, func(s *State) {
			s.Loading = false
			s.ErrorMessage = err.Error()
		})
		return
	}

	for push := range ch {
		if push.Err != nil {
			c.log.Warn("trip stream error", "user_id", userID, "error", push.Err)
			c.applyIfCurrent(gen, func(s *State) {
				s.Loading = false
				s.ErrorMessage = push.Err.Error()
			})
			continue
		}
		trips := push.Trips
		if trips == nil {
			trips = []domain.Trip{}
		}
		c.applyIfCurrent(gen, func(s *State) {
			s.FullTrips = trips
			s.Loading = false
			s.ErrorMessage = ""
		})
	}
}

// applyIfCurrent runs fn against the state only when the subscription
// generation is still current, then re-derives and publishes. Stale
// generations are dropped silently — this is the guard against a cancelled
// listener leaking another user's data into the session.
func (c *Controller) applyIfCurrent(gen uint64, fn func(*State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	fn(&c.state)
	c.deriveLocked()
	c.publishLocked()
}

// deriveLocked recomputes the filtered list and summary from the raw set
// and criteria. Callers must hold c.mu and must call this after any change
// to FullTrips or Filters.
func (c *Controller) deriveLocked() {
	c.state.Trips = filter.Apply(c.state.FullTrips, c.state.Filters)
	c.state.Summary = summary.Build(c.state.Trips)
}

// publishLocked delivers the current state to every watcher with
// latest-value semantics: an unread older snapshot is replaced, a slow
// observer never blocks the controller. Callers must hold c.mu.
func (c *Controller) publishLocked() {
	snap := c.state.clone()
	for _, ch := range c.watchers {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Watch registers an observer. The channel immediately carries the current
// state and afterwards always holds the most recent unseen snapshot. The
// returned cancel function unregisters the observer.
func (c *Controller) Watch() (<-chan State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextWatcher
	c.nextWatcher++
	ch := make(chan State, 1)
	ch <- c.state.clone()
	c.watchers[id] = ch

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.watchers, id)
	}
	return ch, cancel
}

// --- filter criteria --------------------------------------------------------

// SetSearchQuery updates the title search criterion.
func (c *Controller) SetSearchQuery(query string) {
	c.updateFilters(func(s *State) { s.Filters.Search = query })
}

// SetFilterDateInput records the raw date text and activates the date
// criterion only once a complete, valid "YYYY-MM-DD" value is present.
// Partial or invalid input deactivates the criterion instead of erroring,
// so the list never empties while the user is still typing.
func (c *Controller) SetFilterDateInput(input string) {
	c.updateFilters(func(s *State) {
		s.FilterDateInput = input
		if len(input) == 10 {
			if _, err := time.ParseInLocation("2006-01-02", input, time.Local); err == nil {
				s.Filters.Date = input
				return
			}
		}
		s.Filters.Date = ""
	})
}

// SetFilterTag updates the tag criterion.
func (c *Controller) SetFilterTag(tag string) {
	c.updateFilters(func(s *State) { s.Filters.Tag = tag })
}

// SetFilterLocation updates the location criterion.
func (c *Controller) SetFilterLocation(location string) {
	c.updateFilters(func(s *State) { s.Filters.Location = location })
}

// SetFilters replaces the whole criteria set at once.
func (c *Controller) SetFilters(f domain.FilterCriteria) {
	c.updateFilters(func(s *State) {
		s.Filters = f
		s.FilterDateInput = f.Date
	})
}

// ClearFilters deactivates every criterion.
func (c *Controller) ClearFilters() {
	c.updateFilters(func(s *State) {
		s.Filters = domain.FilterCriteria{}
		s.FilterDateInput = ""
	})
}

// updateFilters applies a criteria change and synchronously re-derives, so
// the published filtered list is never out of step with the criteria.
func (c *Controller) updateFilters(fn func(*State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.state)
	c.deriveLocked()
	c.publishLocked()
}

// --- mutations --------------------------------------------------------------

// CreateTrip validates the bound user, fills ownership and creation time,
// and issues the backend create. The authoritative list is not touched
// here — it changes only when the stream re-pushes (request/confirm, never
// optimistic).
func (c *Controller) CreateTrip(ctx context.Context, in domain.TripInput) error {
	c.mu.Lock()
	userID := c.state.UserID
	if userID == "" {
		c.state.ErrorMessage = msgSignInRequired
		c.publishLocked()
		c.mu.Unlock()
		return fmt.Errorf("session.Controller.CreateTrip: %w", domain.ErrNotAuthenticated)
	}
	c.state.Submitting = true
	c.state.ErrorMessage = ""
	c.state.SuccessMessage = ""
	c.publishLocked()
	c.mu.Unlock()

	trip := domain.NewTrip(userID, in)
	_, err := c.store.Create(ctx, userID, trip)

	c.finishMutation(userID, err, msgTripSaved, nil)
	if err != nil {
		return fmt.Errorf("session.Controller.CreateTrip: %w", err)
	}
	return nil
}

// UpdateTrip issues a partial-field update. onDone runs only on success
// (editing UIs use it to leave edit mode).
func (c *Controller) UpdateTrip(ctx context.Context, tripID string, updates map[string]any, onDone func()) error {
	c.mu.Lock()
	userID := c.state.UserID
	if userID == "" {
		c.mu.Unlock()
		return fmt.Errorf("session.Controller.UpdateTrip: %w", domain.ErrNotAuthenticated)
	}
	c.state.Submitting = true
	c.state.ErrorMessage = ""
	c.state.SuccessMessage = ""
	c.publishLocked()
	c.mu.Unlock()

	err := c.store.Update(ctx, userID, tripID, updates)

	c.finishMutation(userID, err, msgTripUpdated, nil)
	if err != nil {
		return fmt.Errorf("session.Controller.UpdateTrip: %w", err)
	}
	if onDone != nil {
		onDone()
	}
	return nil
}

// DeleteTrip issues the delete. On success the selection is cleared when it
// pointed at the deleted trip; onDone runs only on success.
func (c *Controller) DeleteTrip(ctx context.Context, tripID string, onDone func()) error {
	c.mu.Lock()
	userID := c.state.UserID
	if userID == "" {
		c.mu.Unlock()
		return fmt.Errorf("session.Controller.DeleteTrip: %w", domain.ErrNotAuthenticated)
	}
	c.mu.Unlock()

	err := c.store.Delete(ctx, userID, tripID)

	c.finishMutation(userID, err, msgTripDeleted, func(s *State) {
		if s.SelectedTrip != nil && s.SelectedTrip.ID == tripID {
			s.SelectedTrip = nil
		}
	})
	if err != nil {
		return fmt.Errorf("session.Controller.DeleteTrip: %w", err)
	}
	if onDone != nil {
		onDone()
	}
	return nil
}

// finishMutation records a mutation outcome in state. The result is dropped
// when the session has moved to a different user while the call was in
// flight, for the same reason stale stream pushes are dropped.
func (c *Controller) finishMutation(userID string, err error, successMsg string, onSuccess func(*State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.UserID != userID {
		return
	}
	c.state.Submitting = false
	if err != nil {
		c.state.ErrorMessage = err.Error()
	} else {
		c.state.SuccessMessage = successMsg
		c.state.ErrorMessage = ""
		if onSuccess != nil {
			onSuccess(&c.state)
		}
	}
	c.publishLocked()
}

// --- selection --------------------------------------------------------------

// RefreshSelectedTrip makes the given trip the selection. The held raw set
// is checked first — a cache hit avoids a backend round-trip — and only on
// a miss is a direct fetch issued. A trip that is genuinely absent surfaces
// as a message, not an error.
func (c *Controller) RefreshSelectedTrip(ctx context.Context, tripID string) error {
	c.mu.Lock()
	for _, t := range c.state.FullTrips {
		if t.ID == tripID {
			cached := t
			c.state.SelectedTrip = &cached
			c.publishLocked()
			c.mu.Unlock()
			return nil
		}
	}
	userID := c.state.UserID
	if userID == "" {
		c.mu.Unlock()
		return fmt.Errorf("session.Controller.RefreshSelectedTrip: %w", domain.ErrNotAuthenticated)
	}
	c.state.Loading = true
	c.publishLocked()
	c.mu.Unlock()

	trip, err := c.store.Get(ctx, userID, tripID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.UserID != userID {
		return nil
	}
	c.state.Loading = false
	switch {
	case err != nil:
		c.state.ErrorMessage = err.Error()
	case trip == nil:
		c.state.ErrorMessage = msgTripNotFound
	default:
		c.state.SelectedTrip = trip
	}
	c.publishLocked()
	if err != nil {
		return fmt.Errorf("session.Controller.RefreshSelectedTrip: %w", err)
	}
	return nil
}

// ClearSelectedTrip drops the current selection.
func (c *Controller) ClearSelectedTrip() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.SelectedTrip = nil
	c.publishLocked()
}

// ClearMessages dismisses both one-shot messages. Error and success share
// this single dismiss operation.
func (c *Controller) ClearMessages() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.ErrorMessage = ""
	c.state.SuccessMessage = ""
	c.publishLocked()
}

// Close cancels any active subscription. Intended for shutdown paths.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
}
