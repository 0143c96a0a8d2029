// Package store contains the document backend access layer for triplog.
// It defines the TripStore contract consumed by the session controller and
// provides the Postgres implementation. No business logic lives here — only
// SQL, type mapping, and change notification plumbing.
package store

import (
	"context"

	"github.com/mkarlsen/triplog/internal/domain"
)

// Push is one delivery on a trip subscription: either the full replacement
// trip set for the subscribed user, or a stream error. The set is never a
// delta — every push wholesale replaces the previous one.
type Push struct {
	Trips []domain.Trip
	Err   error
}

// TripStore defines the per-user document backend operations the session
// controller depends on. The controller depends on this interface, not the
// concrete Postgres implementation, which allows it to be unit-tested with
// a mock.
type TripStore interface {
	// Subscribe starts a live listener for the given user's trips. Each push
	// carries the full trip set ordered by creation time descending. The
	// returned channel is closed when ctx is cancelled; a cancelled
	// subscription never delivers a late push.
	Subscribe(ctx context.Context, userID string) (<-chan Push, error)

	// Create persists a new trip under the given user and returns the
	// backend-assigned document ID.
	Create(ctx context.Context, userID string, trip domain.Trip) (string, error)

	// Get retrieves a single trip scoped to the given user. A missing
	// document is (nil, nil), not an error, so callers can distinguish
	// "no such trip" from "call failed".
	Get(ctx context.Context, userID, tripID string) (*domain.Trip, error)

	// Update applies a partial field update to an existing trip.
	// Returns domain.ErrValidation for unknown fields and domain.ErrNotFound
	// if the trip does not exist under the given user.
	Update(ctx context.Context, userID, tripID string, updates map[string]any) error

	// Delete removes a trip by ID, scoped to the given user.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, userID, tripID string) error
}
