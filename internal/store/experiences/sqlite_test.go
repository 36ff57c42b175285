package experiences

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepsakeapp/keepsake/internal/common"
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
CREATE TABLE experiences (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  latitude REAL, longitude REAL,
  place_name TEXT, area TEXT,
  rating INTEGER, emotion TEXT, emotion_intensity INTEGER,
  mood TEXT, importance TEXT, memorable_moment TEXT,
  experienced_at TEXT NOT NULL,
  created_at TEXT NOT NULL,
  sync_state INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE experience_photos (
  experience_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  filename TEXT NOT NULL,
  caption TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (experience_id, position)
);
`)
	require.NoError(t, err)
	return db
}

func sampleExperience(id string, experiencedAt time.Time) *models.Experience {
	place := "Harbor Cafe"
	rating := 8
	return &models.Experience{
		ID:          id,
		Title:       "morning by the water",
		Description: "long walk, flat light",
		PlaceName:   &place,
		Rating:      &rating,
		Photos: []models.Photo{
			{Filename: id + "-a.jpg", Caption: "pier"},
			{Filename: id + "-b.jpg", Caption: "gulls"},
		},
		ExperiencedAt: experiencedAt,
		CreatedAt:     time.Now().UTC(),
		SyncState:     models.SyncPending,
	}
}

func TestInsertAndGetByID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	loc := time.FixedZone("IST", 5*3600+1800)
	when := time.Date(2026, 3, 14, 9, 30, 0, 0, loc)
	require.NoError(t, r.Insert(ctx, sampleExperience("e1", when)))

	got, err := r.GetByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "morning by the water", got.Title)
	require.NotNil(t, got.PlaceName)
	assert.Equal(t, "Harbor Cafe", *got.PlaceName)
	require.Len(t, got.Photos, 2)
	assert.Equal(t, "pier", got.Photos[0].Caption)
	assert.Equal(t, models.SyncPending, got.SyncState)

	// same instant, same offset
	assert.True(t, got.ExperiencedAt.Equal(when))
	_, gotOffset := got.ExperiencedAt.Zone()
	assert.Equal(t, 5*3600+1800, gotOffset)
}

func TestGetByID_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetAll_MostRecentFirst(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.Insert(ctx, sampleExperience("old", base)))
	require.NoError(t, r.Insert(ctx, sampleExperience("new", base.Add(48*time.Hour))))
	require.NoError(t, r.Insert(ctx, sampleExperience("mid", base.Add(24*time.Hour))))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "new", all[0].ID)
	assert.Equal(t, "mid", all[1].ID)
	assert.Equal(t, "old", all[2].ID)
	assert.Len(t, all[0].Photos, 2, "photos attach to the right record")
}

func TestMarkSynced_Idempotent(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, sampleExperience("e1", time.Now())))
	require.NoError(t, r.MarkSynced(ctx, "e1"))
	require.NoError(t, r.MarkSynced(ctx, "e1"), "second call is a no-op")

	got, err := r.GetByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncSynced, got.SyncState)

	pending, err := r.GetAllPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDeleteByID_CascadesToPhotos(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, sampleExperience("e1", time.Now())))
	require.NoError(t, r.DeleteByID(ctx, "e1"))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM experience_photos`).Scan(&n))
	assert.Equal(t, 0, n, "photo rows must go with the record")

	_, err := r.GetByID(ctx, "e1")
	require.ErrorIs(t, err, common.ErrNotFound)
}
