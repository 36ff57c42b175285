package health

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepsakeapp/keepsake/internal/models"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE health_entries (
  id TEXT PRIMARY KEY,
  tracked_date TEXT NOT NULL UNIQUE,
  abstained INTEGER NOT NULL DEFAULT 0,
  drinks_count INTEGER NOT NULL DEFAULT 0,
  exercised INTEGER NOT NULL DEFAULT 0,
  exercise_minutes INTEGER NOT NULL DEFAULT 0,
  mood INTEGER, energy INTEGER, notes TEXT,
  created_at TEXT NOT NULL,
  sync_state INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE health_stats (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  abstinence_current INTEGER NOT NULL DEFAULT 0,
  abstinence_longest INTEGER NOT NULL DEFAULT 0,
  abstinence_total INTEGER NOT NULL DEFAULT 0,
  abstinence_week INTEGER NOT NULL DEFAULT 0,
  abstinence_month INTEGER NOT NULL DEFAULT 0,
  exercise_current INTEGER NOT NULL DEFAULT 0,
  exercise_longest INTEGER NOT NULL DEFAULT 0,
  exercise_total INTEGER NOT NULL DEFAULT 0,
  exercise_week INTEGER NOT NULL DEFAULT 0,
  exercise_month INTEGER NOT NULL DEFAULT 0,
  total_drinks INTEGER NOT NULL DEFAULT 0,
  total_exercise_minutes INTEGER NOT NULL DEFAULT 0,
  computed_at TEXT NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

func newEntry(date string) *models.HealthEntry {
	return &models.HealthEntry{
		ID:          "id-" + date,
		TrackedDate: date,
		Abstained:   true,
		CreatedAt:   time.Now().UTC(),
		SyncState:   models.SyncPending,
	}
}

func TestUpsert_NotesCoalesce(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	// nil notes, then "x", then nil again: "x" must survive.
	e := newEntry("2026-06-10")
	_, err := r.Upsert(ctx, e)
	require.NoError(t, err)

	notes := "x"
	e2 := newEntry("2026-06-10")
	e2.ID = "other-id" // ignored: the stored row keeps its identity
	e2.Notes = &notes
	stored, err := r.Upsert(ctx, e2)
	require.NoError(t, err)
	assert.Equal(t, "id-2026-06-10", stored.ID)

	e3 := newEntry("2026-06-10")
	e3.Notes = nil
	stored, err = r.Upsert(ctx, e3)
	require.NoError(t, err)
	require.NotNil(t, stored.Notes)
	assert.Equal(t, "x", *stored.Notes)

	got, err := r.GetByDate(ctx, "2026-06-10")
	require.NoError(t, err)
	require.NotNil(t, got.Notes)
	assert.Equal(t, "x", *got.Notes)
}

func TestUpsert_NumericsOverwritten(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	e := newEntry("2026-06-10")
	e.DrinksCount = 4
	e.Abstained = false
	mood := 7
	e.Mood = &mood
	_, err := r.Upsert(ctx, e)
	require.NoError(t, err)

	e2 := newEntry("2026-06-10")
	e2.DrinksCount = 0
	e2.Abstained = true
	e2.Mood = nil
	_, err = r.Upsert(ctx, e2)
	require.NoError(t, err)

	got, err := r.GetByDate(ctx, "2026-06-10")
	require.NoError(t, err)
	assert.Equal(t, 0, got.DrinksCount, "numerics take the latest write")
	assert.True(t, got.Abstained)
	assert.Nil(t, got.Mood, "optional numerics are overwritten too, even to nil")
}

func TestUpsert_SingleRowPerDay(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err := r.Upsert(ctx, newEntry("2026-06-10"))
	require.NoError(t, err)
	_, err = r.Upsert(ctx, newEntry("2026-06-10"))
	require.NoError(t, err)

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpsert_RecomputesStats(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	r.now = func() time.Time { return time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	_, err := r.Upsert(ctx, newEntry("2026-06-09"))
	require.NoError(t, err)
	_, err = r.Upsert(ctx, newEntry("2026-06-10"))
	require.NoError(t, err)

	s, err := r.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Abstinence.CurrentStreak)
	assert.Equal(t, 2, s.Abstinence.TotalDays)
	assert.Equal(t, 0, s.Exercise.TotalDays)
}

func TestUpsert_UpdateGoesBackToPending(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	stored, err := r.Upsert(ctx, newEntry("2026-06-10"))
	require.NoError(t, err)
	require.NoError(t, r.MarkSynced(ctx, stored.ID))

	_, err = r.Upsert(ctx, newEntry("2026-06-10"))
	require.NoError(t, err)

	pending, err := r.GetAllPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1, "a same-day update has data the server has not seen")
}

func TestStats_EmptyStore(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	s, err := r.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, s.Abstinence)
	assert.Zero(t, s.TotalDrinks)
}
