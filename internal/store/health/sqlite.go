package health

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/keepsakeapp/keepsake/internal/common"
	"github.com/keepsakeapp/keepsake/internal/dbx"
	"github.com/keepsakeapp/keepsake/internal/models"
)

const selectColumns = `id, tracked_date, abstained, drinks_count, exercised,
	exercise_minutes, mood, energy, notes, created_at, sync_state`

// SQLiteRepository implements Repository on a *sql.DB. Upsert needs the full
// handle because the entry write and the stats recompute run in one
// transaction.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, e *models.HealthEntry) (*models.HealthEntry, error) {
	var stored *models.HealthEntry

	err := dbx.WithTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		existing, err := getByDate(ctx, tx, e.TrackedDate)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return err
		}

		merged := *e
		if existing != nil {
			merged.ID = existing.ID
			merged.CreatedAt = existing.CreatedAt
			// Notes coalesce: nil never clobbers a stored value. Everything
			// else takes the latest write as-is.
			if merged.Notes == nil {
				merged.Notes = existing.Notes
			}
			// An updated day has new data the server has not seen.
			merged.SyncState = models.SyncPending
		}

		if existing == nil {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO health_entries (id, tracked_date, abstained, drinks_count,
					exercised, exercise_minutes, mood, energy, notes, created_at, sync_state)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				merged.ID, merged.TrackedDate, merged.Abstained, merged.DrinksCount,
				merged.Exercised, merged.ExerciseMinutes,
				dbx.NullInt(merged.Mood), dbx.NullInt(merged.Energy), dbx.NullString(merged.Notes),
				dbx.FormatTime(merged.CreatedAt), int(merged.SyncState))
		} else {
			_, err = tx.ExecContext(ctx, `
				UPDATE health_entries SET abstained = ?, drinks_count = ?,
					exercised = ?, exercise_minutes = ?, mood = ?, energy = ?,
					notes = ?, sync_state = ?
				WHERE id = ?`,
				merged.Abstained, merged.DrinksCount,
				merged.Exercised, merged.ExerciseMinutes,
				dbx.NullInt(merged.Mood), dbx.NullInt(merged.Energy), dbx.NullString(merged.Notes),
				int(merged.SyncState), merged.ID)
		}
		if err != nil {
			return fmt.Errorf("failed to upsert health entry: %w", err)
		}

		all, err := queryEntries(ctx, tx, `SELECT `+selectColumns+` FROM health_entries ORDER BY tracked_date DESC`)
		if err != nil {
			return err
		}
		stats := ComputeStats(all, r.now())
		if err := writeStats(ctx, tx, &stats); err != nil {
			return err
		}

		stored = &merged
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.HealthEntry, error) {
	return queryEntries(ctx, r.db, `SELECT `+selectColumns+` FROM health_entries ORDER BY tracked_date DESC`)
}

func (r *SQLiteRepository) GetByDate(ctx context.Context, trackedDate string) (*models.HealthEntry, error) {
	return getByDate(ctx, r.db, trackedDate)
}

func (r *SQLiteRepository) GetAllPending(ctx context.Context) ([]models.HealthEntry, error) {
	return queryEntries(ctx, r.db, `SELECT `+selectColumns+` FROM health_entries WHERE sync_state = 0 ORDER BY tracked_date DESC`)
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE health_entries SET sync_state = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark health entry synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	err := dbx.WithTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM health_entries WHERE id = ?`, id); err != nil {
			return err
		}
		all, err := queryEntries(ctx, tx, `SELECT `+selectColumns+` FROM health_entries ORDER BY tracked_date DESC`)
		if err != nil {
			return err
		}
		stats := ComputeStats(all, r.now())
		return writeStats(ctx, tx, &stats)
	})
	if err != nil {
		return fmt.Errorf("failed to delete health entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Stats(ctx context.Context) (*models.Stats, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT abstinence_current, abstinence_longest, abstinence_total,
			abstinence_week, abstinence_month,
			exercise_current, exercise_longest, exercise_total,
			exercise_week, exercise_month,
			total_drinks, total_exercise_minutes, computed_at
		FROM health_stats WHERE id = 1`)

	var (
		s          models.Stats
		computedAt string
	)
	err := row.Scan(
		&s.Abstinence.CurrentStreak, &s.Abstinence.LongestStreak, &s.Abstinence.TotalDays,
		&s.Abstinence.Last7Days, &s.Abstinence.Last30Days,
		&s.Exercise.CurrentStreak, &s.Exercise.LongestStreak, &s.Exercise.TotalDays,
		&s.Exercise.Last7Days, &s.Exercise.Last30Days,
		&s.TotalDrinks, &s.TotalExerciseMinutes, &computedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.Stats{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read health stats: %w", err)
	}
	if s.ComputedAt, err = dbx.ParseTime(computedAt); err != nil {
		return nil, fmt.Errorf("bad computed_at: %w", err)
	}
	return &s, nil
}

func writeStats(ctx context.Context, db dbx.DBTX, s *models.Stats) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO health_stats (id, abstinence_current, abstinence_longest,
			abstinence_total, abstinence_week, abstinence_month,
			exercise_current, exercise_longest, exercise_total,
			exercise_week, exercise_month,
			total_drinks, total_exercise_minutes, computed_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			abstinence_current = excluded.abstinence_current,
			abstinence_longest = excluded.abstinence_longest,
			abstinence_total = excluded.abstinence_total,
			abstinence_week = excluded.abstinence_week,
			abstinence_month = excluded.abstinence_month,
			exercise_current = excluded.exercise_current,
			exercise_longest = excluded.exercise_longest,
			exercise_total = excluded.exercise_total,
			exercise_week = excluded.exercise_week,
			exercise_month = excluded.exercise_month,
			total_drinks = excluded.total_drinks,
			total_exercise_minutes = excluded.total_exercise_minutes,
			computed_at = excluded.computed_at`,
		s.Abstinence.CurrentStreak, s.Abstinence.LongestStreak, s.Abstinence.TotalDays,
		s.Abstinence.Last7Days, s.Abstinence.Last30Days,
		s.Exercise.CurrentStreak, s.Exercise.LongestStreak, s.Exercise.TotalDays,
		s.Exercise.Last7Days, s.Exercise.Last30Days,
		s.TotalDrinks, s.TotalExerciseMinutes, dbx.FormatTime(s.ComputedAt))
	if err != nil {
		return fmt.Errorf("failed to write health stats: %w", err)
	}
	return nil
}

func getByDate(ctx context.Context, db dbx.DBTX, trackedDate string) (*models.HealthEntry, error) {
	row := db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM health_entries WHERE tracked_date = ?`, trackedDate)
	e, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get health entry: %w", err)
	}
	return e, nil
}

func queryEntries(ctx context.Context, db dbx.DBTX, q string) ([]models.HealthEntry, error) {
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to select health entries: %w", err)
	}
	defer rows.Close()

	var result []models.HealthEntry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanEntry(scan func(dest ...any) error) (*models.HealthEntry, error) {
	var (
		e            models.HealthEntry
		mood, energy sql.NullInt64
		notes        sql.NullString
		createdAt    string
		state        int
	)
	err := scan(&e.ID, &e.TrackedDate, &e.Abstained, &e.DrinksCount,
		&e.Exercised, &e.ExerciseMinutes, &mood, &energy, &notes, &createdAt, &state)
	if err != nil {
		return nil, err
	}
	e.Mood = dbx.IntPtr(mood)
	e.Energy = dbx.IntPtr(energy)
	e.Notes = dbx.StringPtr(notes)
	e.SyncState = models.SyncState(state)
	if e.CreatedAt, err = dbx.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at: %w", err)
	}
	return &e, nil
}
