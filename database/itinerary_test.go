package database_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlameWater5625/TravelleroTralala/database"
)

// newTx connects to TEST_DATABASE_URL, applies migrations and returns a
// transaction rolled back when the test ends. Skips without a database.
func newTx(t *testing.T) *sqlx.Tx {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}

	ctx := context.Background()
	db, err := database.Open(ctx, dsn, 1)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(ctx, db))

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tx.Rollback() })
	return tx
}

func TestItineraryStore_CreateAndGet(t *testing.T) {
	store := database.NewItineraryStore(newTx(t))
	ctx := context.Background()

	it := &database.Itinerary{
		UserID:      "user-42",
		Destination: "Lisbonne",
		Date:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Budget:      1500,
		Preferences: `["culture","food"]`,
	}
	require.NoError(t, store.Create(ctx, it))
	assert.NotEmpty(t, it.ID)
	assert.False(t, it.CreatedAt.IsZero())

	got, err := store.Get(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "user-42", got.UserID)
	assert.Equal(t, "Lisbonne", got.Destination)
	assert.Equal(t, "2024-06-01", got.Date.Format("2006-01-02"))
	assert.Equal(t, 1500.0, got.Budget)
	assert.JSONEq(t, `["culture","food"]`, got.Preferences)
}

func TestItineraryStore_CreateRejectsMissingDestination(t *testing.T) {
	tx := newTx(t)
	store := database.NewItineraryStore(tx)
	ctx := context.Background()

	var before int
	require.NoError(t, tx.GetContext(ctx, &before, `SELECT COUNT(*) FROM itineraries`))

	// An empty destination violates the CHECK constraint; nothing may be written.
	_, err := tx.ExecContext(ctx, `SAVEPOINT before_insert`)
	require.NoError(t, err)
	err = store.Create(ctx, &database.Itinerary{UserID: "u", Budget: 10, Preferences: `[]`})
	require.Error(t, err)
	_, err = tx.ExecContext(ctx, `ROLLBACK TO SAVEPOINT before_insert`)
	require.NoError(t, err)

	var after int
	require.NoError(t, tx.GetContext(ctx, &after, `SELECT COUNT(*) FROM itineraries`))
	assert.Equal(t, before, after)
}

func TestItineraryStore_GetNotFound(t *testing.T) {
	store := database.NewItineraryStore(newTx(t))

	_, err := store.Get(context.Background(), "does-not-exist")

	require.ErrorIs(t, err, database.ErrNotFound)
}
