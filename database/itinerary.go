package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no itinerary matches the requested id.
var ErrNotFound = errors.New("not found")

// Itinerary is one saved trip plan. Preferences holds the JSON list of flags.
type Itinerary struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	Destination string    `db:"destination"`
	Date        time.Time `db:"date"`
	Budget      float64   `db:"budget"`
	Preferences string    `db:"preferences"`
	CreatedAt   time.Time `db:"created_at"`
}

// dbtx is satisfied by *sqlx.DB and *sqlx.Tx so tests can run inside a
// transaction that is rolled back afterwards.
type dbtx interface {
	QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

type ItineraryStore struct {
	db dbtx
}

func NewItineraryStore(db dbtx) *ItineraryStore {
	return &ItineraryStore{db: db}
}

// Create inserts it in a single statement, assigning ID and CreatedAt.
func (s *ItineraryStore) Create(ctx context.Context, it *Itinerary) error {
	const q = `
		INSERT INTO itineraries (id, user_id, destination, date, budget, preferences)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	id := uuid.NewString()
	var createdAt time.Time
	if err := s.db.QueryRowxContext(ctx, q,
		id, it.UserID, it.Destination, it.Date, it.Budget, it.Preferences,
	).Scan(&createdAt); err != nil {
		return fmt.Errorf("database.ItineraryStore.Create: %w", err)
	}

	it.ID = id
	it.CreatedAt = createdAt
	return nil
}

// Get returns the itinerary with the given id, or ErrNotFound.
func (s *ItineraryStore) Get(ctx context.Context, id string) (*Itinerary, error) {
	const q = `
		SELECT id, user_id, destination, date, budget, preferences, created_at
		FROM itineraries WHERE id = $1`

	var it Itinerary
	if err := s.db.GetContext(ctx, &it, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("database.ItineraryStore.Get: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("database.ItineraryStore.Get: %w", err)
	}
	return &it, nil
}
