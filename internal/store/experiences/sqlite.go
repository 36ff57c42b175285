package experiences

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/keepsakeapp/keepsake/internal/common"
	"github.com/keepsakeapp/keepsake/internal/dbx"
	"github.com/keepsakeapp/keepsake/internal/models"
)

const selectColumns = `id, title, description, latitude, longitude, place_name, area,
	rating, emotion, emotion_intensity, mood, importance, memorable_moment,
	experienced_at, created_at, sync_state`

// SQLiteRepository implements Repository on a *sql.DB. It needs the full
// handle (not just DBTX) because inserts and deletes span the parent row and
// the experience_photos child rows in one transaction.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, e *models.Experience) error {
	err := dbx.WithTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO experiences (id, title, description, latitude, longitude,
				place_name, area, rating, emotion, emotion_intensity,
				mood, importance, memorable_moment,
				experienced_at, created_at, sync_state)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Title, e.Description,
			dbx.NullFloat(e.Latitude), dbx.NullFloat(e.Longitude),
			dbx.NullString(e.PlaceName), dbx.NullString(e.Area),
			dbx.NullInt(e.Rating), dbx.NullString(e.Emotion), dbx.NullInt(e.EmotionIntensity),
			dbx.NullString(e.Mood), dbx.NullString(e.Importance), dbx.NullString(e.MemorableMoment),
			dbx.FormatTime(e.ExperiencedAt), dbx.FormatTime(e.CreatedAt), int(e.SyncState))
		if err != nil {
			return err
		}
		for i, p := range e.Photos {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO experience_photos (experience_id, position, filename, caption)
				VALUES (?, ?, ?, ?)`, e.ID, i, p.Filename, p.Caption)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to insert experience: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Experience, error) {
	return r.query(ctx, `SELECT `+selectColumns+` FROM experiences ORDER BY experienced_at DESC`)
}

func (r *SQLiteRepository) GetAllPending(ctx context.Context) ([]models.Experience, error) {
	return r.query(ctx, `SELECT `+selectColumns+` FROM experiences WHERE sync_state = 0 ORDER BY experienced_at DESC`)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Experience, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM experiences WHERE id = ?`, id)
	e, err := scanExperience(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get experience: %w", err)
	}
	if err := r.attachPhotos(ctx, []*models.Experience{e}); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE experiences SET sync_state = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark experience synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	err := dbx.WithTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM experience_photos WHERE experience_id = ?`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM experiences WHERE id = ?`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete experience: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, q string) ([]models.Experience, error) {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to select experiences: %w", err)
	}
	defer rows.Close()

	var result []models.Experience
	for rows.Next() {
		e, err := scanExperience(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	refs := make([]*models.Experience, len(result))
	for i := range result {
		refs[i] = &result[i]
	}
	if err := r.attachPhotos(ctx, refs); err != nil {
		return nil, err
	}
	return result, nil
}

// attachPhotos loads the ordered photo rows for the given experiences.
func (r *SQLiteRepository) attachPhotos(ctx context.Context, list []*models.Experience) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[string]*models.Experience, len(list))
	for _, e := range list {
		byID[e.ID] = e
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT experience_id, filename, caption
		FROM experience_photos ORDER BY experience_id, position`)
	if err != nil {
		return fmt.Errorf("failed to select experience photos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, filename, caption string
		if err := rows.Scan(&id, &filename, &caption); err != nil {
			return err
		}
		if e, ok := byID[id]; ok {
			e.Photos = append(e.Photos, models.Photo{Filename: filename, Caption: caption})
		}
	}
	return rows.Err()
}

func scanExperience(scan func(dest ...any) error) (*models.Experience, error) {
	var (
		e                          models.Experience
		lat, lon                   sql.NullFloat64
		place, area                sql.NullString
		rating, intensity          sql.NullInt64
		emotion                    sql.NullString
		mood, importance, moment   sql.NullString
		experiencedAt, createdAt   string
		state                      int
	)
	err := scan(&e.ID, &e.Title, &e.Description, &lat, &lon, &place, &area,
		&rating, &emotion, &intensity, &mood, &importance, &moment,
		&experiencedAt, &createdAt, &state)
	if err != nil {
		return nil, err
	}

	e.Latitude = dbx.FloatPtr(lat)
	e.Longitude = dbx.FloatPtr(lon)
	e.PlaceName = dbx.StringPtr(place)
	e.Area = dbx.StringPtr(area)
	e.Rating = dbx.IntPtr(rating)
	e.Emotion = dbx.StringPtr(emotion)
	e.EmotionIntensity = dbx.IntPtr(intensity)
	e.Mood = dbx.StringPtr(mood)
	e.Importance = dbx.StringPtr(importance)
	e.MemorableMoment = dbx.StringPtr(moment)
	e.SyncState = models.SyncState(state)

	if e.ExperiencedAt, err = dbx.ParseTime(experiencedAt); err != nil {
		return nil, fmt.Errorf("bad experienced_at: %w", err)
	}
	if e.CreatedAt, err = dbx.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at: %w", err)
	}
	return &e, nil
}
