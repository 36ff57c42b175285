package emotions

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/keepsakeapp/keepsake/internal/dbx"
	"github.com/keepsakeapp/keepsake/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, c *models.EmotionCapture) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO emotions (id, emotion, intensity, context, created_at, sync_state)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Emotion, c.Intensity, dbx.NullString(c.Context),
		dbx.FormatTime(c.CreatedAt), int(c.SyncState))
	if err != nil {
		return fmt.Errorf("failed to insert emotion capture: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.EmotionCapture, error) {
	return r.query(ctx, `SELECT id, emotion, intensity, context, created_at, sync_state
		FROM emotions ORDER BY created_at DESC`)
}

func (r *SQLiteRepository) GetAllPending(ctx context.Context) ([]models.EmotionCapture, error) {
	return r.query(ctx, `SELECT id, emotion, intensity, context, created_at, sync_state
		FROM emotions WHERE sync_state = 0 ORDER BY created_at DESC`)
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE emotions SET sync_state = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark emotion capture synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM emotions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete emotion capture: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, q string) ([]models.EmotionCapture, error) {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to select emotion captures: %w", err)
	}
	defer rows.Close()

	var result []models.EmotionCapture
	for rows.Next() {
		var (
			c         models.EmotionCapture
			context_  sql.NullString
			createdAt string
			state     int
		)
		if err := rows.Scan(&c.ID, &c.Emotion, &c.Intensity, &context_, &createdAt, &state); err != nil {
			return nil, err
		}
		c.Context = dbx.StringPtr(context_)
		c.SyncState = models.SyncState(state)
		if c.CreatedAt, err = dbx.ParseTime(createdAt); err != nil {
			return nil, fmt.Errorf("bad created_at: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
