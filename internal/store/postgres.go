package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkarlsen/triplog/internal/domain"
)

// notifyChannel is the Postgres NOTIFY channel raised by the trips table
// trigger (see migrations). The payload is the affected user_id, so one
// LISTEN serves every subscriber and each filters for its own user.
const notifyChannel = "triplog_trip_changes"

// updatableColumns maps partial-update field names (the JSON field names of
// domain.Trip) to their trips table columns. Identity, ownership, and
// creation time are deliberately absent: they are immutable after creation.
var updatableColumns = map[string]string{
	"title":               "title",
	"startLocation":       "start_location",
	"destinationLocation": "destination_location",
	"startLatLng":         "start_latlng",
	"destinationLatLng":   "destination_latlng",
	"notes":               "notes",
	"distanceKm":          "distance_km",
	"durationMinutes":     "duration_minutes",
	"routeInfo":           "route_info",
	"tags":                "tags",
	"photoUrls":           "photo_urls",
}

// jsonColumns are the trips table columns stored as JSONB; their update
// values are marshalled before binding.
var jsonColumns = map[string]bool{
	"route_info": true,
	"tags":       true,
	"photo_urls": true,
}

// Postgres is the pgx-backed implementation of TripStore. Subscriptions use
// LISTEN/NOTIFY on a dedicated pooled connection; CRUD goes through the pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a TripStore backed by the provided connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

var _ TripStore = (*Postgres)(nil)

const selectColumns = `id, user_id, title, start_location, destination_location,
	start_latlng, destination_latlng, notes, distance_km, duration_minutes,
	route_info, tags, photo_urls, created_at`

// Subscribe acquires a dedicated connection, LISTENs for trip changes, and
// streams full trip sets for the user: one initial snapshot, then one per
// notification. The goroutine owns the connection and releases it on exit.
func (s *Postgres) Subscribe(ctx context.Context, userID string) (<-chan Push, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.Postgres.Subscribe: acquire: %w", err)
	}
	if _, err := conn.Exec(ctx, "listen "+notifyChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("store.Postgres.Subscribe: listen: %w", err)
	}

	ch := make(chan Push, 1)
	go func() {
		defer close(ch)
		defer conn.Release()

		send := func(p Push) bool {
			select {
			case ch <- p:
				return true
			case <-ctx.Done():
				return false
			}
		}

		trips, err := s.listByUser(ctx, userID)
		if !send(Push{Trips: trips, Err: err}) {
			return
		}

		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				// Cancellation is the normal shutdown path, not a stream error.
				if ctx.Err() == nil {
					send(Push{Err: fmt.Errorf("store.Postgres.Subscribe: wait: %w", err)})
				}
				return
			}
			if n.Payload != userID {
				continue
			}
			trips, err := s.listByUser(ctx, userID)
			if !send(Push{Trips: trips, Err: err}) {
				return
			}
		}
	}()

	return ch, nil
}

// listByUser returns all of a user's trips ordered by created_at descending
// (newest first — the default presentation order).
func (s *Postgres) listByUser(ctx context.Context, userID string) ([]domain.Trip, error) {
	q := `SELECT ` + selectColumns + ` FROM trips WHERE user_id = @user_id ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("store.Postgres.listByUser: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("store.Postgres.listByUser: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store.Postgres.listByUser: rows: %w", err)
	}
	return trips, nil
}

// Create inserts a new trip document and returns the assigned ID.
func (s *Postgres) Create(ctx context.Context, userID string, trip domain.Trip) (string, error) {
	const q = `
		INSERT INTO trips (id, user_id, title, start_location, destination_location,
			start_latlng, destination_latlng, notes, distance_km, duration_minutes,
			route_info, tags, photo_urls, created_at)
		VALUES (@id, @user_id, @title, @start_location, @destination_location,
			@start_latlng, @destination_latlng, @notes, @distance_km, @duration_minutes,
			@route_info, @tags, @photo_urls, @created_at)`

	id := uuid.NewString()
	routeInfo, tags, photos, err := marshalLists(trip)
	if err != nil {
		return "", fmt.Errorf("store.Postgres.Create: %w", err)
	}

	args := pgx.NamedArgs{
		"id":                   id,
		"user_id":              userID,
		"title":                trip.Title,
		"start_location":       trip.StartLocation,
		"destination_location": trip.DestinationLocation,
		"start_latlng":         trip.StartLatLng,
		"destination_latlng":   trip.DestinationLatLng,
		"notes":                trip.Notes,
		"distance_km":          trip.DistanceKm,
		"duration_minutes":     trip.DurationMinutes,
		"route_info":           routeInfo,
		"tags":                 tags,
		"photo_urls":           photos,
		"created_at":           trip.CreatedAt,
	}

	if _, err := s.pool.Exec(ctx, q, args); err != nil {
		return "", fmt.Errorf("store.Postgres.Create: %w", err)
	}
	return id, nil
}

// Get retrieves a trip by ID scoped to the user. Absent documents are
// (nil, nil) so callers can tell "no such trip" apart from a failed call.
func (s *Postgres) Get(ctx context.Context, userID, tripID string) (*domain.Trip, error) {
	q := `SELECT ` + selectColumns + ` FROM trips WHERE id = @id AND user_id = @user_id`

	row := s.pool.QueryRow(ctx, q, pgx.NamedArgs{"id": tripID, "user_id": userID})
	t, err := scanTrip(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("store.Postgres.Get: %w", err)
	}
	return &t, nil
}

// Update applies a whitelisted partial field update. Unknown field names are
// rejected with domain.ErrValidation before any SQL runs.
func (s *Postgres) Update(ctx context.Context, userID, tripID string, updates map[string]any) error {
	if len(updates) == 0 {
		return fmt.Errorf("store.Postgres.Update: %w: no fields to update", domain.ErrValidation)
	}

	sets := make([]string, 0, len(updates))
	args := pgx.NamedArgs{"id": tripID, "user_id": userID}
	for field, value := range updates {
		col, ok := updatableColumns[field]
		if !ok {
			return fmt.Errorf("store.Postgres.Update: %w: unknown field %q", domain.ErrValidation, field)
		}
		if jsonColumns[col] {
			raw, err := json.Marshal(value)
			if err != nil {
				return fmt.Errorf("store.Postgres.Update: marshal %s: %w", field, err)
			}
			value = raw
		}
		sets = append(sets, col+" = @"+col)
		args[col] = value
	}

	q := `UPDATE trips SET ` + strings.Join(sets, ", ") + ` WHERE id = @id AND user_id = @user_id`

	tag, err := s.pool.Exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("store.Postgres.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("store.Postgres.Update: %w", domain.ErrNotFound)
	}
	return nil
}

// Delete removes a trip by ID scoped to the user.
func (s *Postgres) Delete(ctx context.Context, userID, tripID string) error {
	const q = `DELETE FROM trips WHERE id = @id AND user_id = @user_id`

	tag, err := s.pool.Exec(ctx, q, pgx.NamedArgs{"id": tripID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("store.Postgres.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("store.Postgres.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanTrip to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row into a domain.Trip, decoding the
// JSONB list columns. NULL JSONB degrades to empty slices, never an error.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t         domain.Trip
		routeInfo []byte
		tags      []byte
		photos    []byte
	)

	err := s.Scan(&t.ID, &t.UserID, &t.Title, &t.StartLocation, &t.DestinationLocation,
		&t.StartLatLng, &t.DestinationLatLng, &t.Notes, &t.DistanceKm, &t.DurationMinutes,
		&routeInfo, &tags, &photos, &t.CreatedAt)
	if err != nil {
		return domain.Trip{}, err
	}

	if len(routeInfo) > 0 {
		if err := json.Unmarshal(routeInfo, &t.RouteInfo); err != nil {
			return domain.Trip{}, fmt.Errorf("decode route_info: %w", err)
		}
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &t.Tags); err != nil {
			return domain.Trip{}, fmt.Errorf("decode tags: %w", err)
		}
	}
	if len(photos) > 0 {
		if err := json.Unmarshal(photos, &t.PhotoURLs); err != nil {
			return domain.Trip{}, fmt.Errorf("decode photo_urls: %w", err)
		}
	}
	return t, nil
}

// marshalLists encodes the trip's JSONB columns for insertion.
func marshalLists(trip domain.Trip) (routeInfo, tags, photos []byte, err error) {
	if routeInfo, err = json.Marshal(orEmptyRoutes(trip.RouteInfo)); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal route_info: %w", err)
	}
	if tags, err = json.Marshal(orEmptyStrings(trip.Tags)); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal tags: %w", err)
	}
	if photos, err = json.Marshal(orEmptyStrings(trip.PhotoURLs)); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal photo_urls: %w", err)
	}
	return routeInfo, tags, photos, nil
}

func orEmptyRoutes(in []domain.RouteInfo) []domain.RouteInfo {
	if in == nil {
		return []domain.RouteInfo{}
	}
	return in
}

func orEmptyStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
