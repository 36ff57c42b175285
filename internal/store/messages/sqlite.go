package messages

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

func (r *SQLiteRepository) Insert(ctx context.Context, m *models.ChatMessage) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (id, speaker, text, emotion, created_at, sync_state)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, string(m.Speaker), m.Text, dbx.NullString(m.Emotion),
		dbx.FormatTime(m.CreatedAt), int(m.SyncState))
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.ChatMessage, error) {
	return r.query(ctx, `SELECT id, speaker, text, emotion, created_at, sync_state
		FROM messages ORDER BY created_at ASC`)
}

func (r *SQLiteRepository) GetAllPending(ctx context.Context) ([]models.ChatMessage, error) {
	return r.query(ctx, `SELECT id, speaker, text, emotion, created_at, sync_state
		FROM messages WHERE sync_state = 0 ORDER BY created_at ASC`)
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE messages SET sync_state = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark message synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, q string) ([]models.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to select messages: %w", err)
	}
	defer rows.Close()

	var result []models.ChatMessage
	for rows.Next() {
		var (
			m         models.ChatMessage
			speaker   string
			emotion   sql.NullString
			createdAt string
			state     int
		)
		if err := rows.Scan(&m.ID, &speaker, &m.Text, &emotion, &createdAt, &state); err != nil {
			return nil, err
		}
		m.Speaker = models.Speaker(speaker)
		m.Emotion = dbx.StringPtr(emotion)
		m.SyncState = models.SyncState(state)
		if m.CreatedAt, err = dbx.ParseTime(createdAt); err != nil {
			return nil, fmt.Errorf("bad created_at: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
