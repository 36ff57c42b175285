package health

import (
	"context"

	"github.com/keepsakeapp/keepsake/internal/models"
)

// Repository describes storage operations for HealthEntry records and the
// derived Stats aggregate.
type Repository interface {
	// Upsert inserts the entry or, when a row for the same tracked_date
	// already exists, updates it in place. Numeric and boolean fields take
	// the new values unconditionally; the textual notes field coalesces (a
	// nil never overwrites a previously stored value). The entry write and
	// a full stats recompute happen in one transaction; the stored entry is
	// returned.
	Upsert(ctx context.Context, e *models.HealthEntry) (*models.HealthEntry, error)

	// GetAll returns every entry, most recent tracked_date first.
	GetAll(ctx context.Context) ([]models.HealthEntry, error)

	// GetByDate returns the entry for one day or common.ErrNotFound.
	GetByDate(ctx context.Context, trackedDate string) (*models.HealthEntry, error)

	// GetAllPending returns entries awaiting upload, most recent first.
	GetAllPending(ctx context.Context) ([]models.HealthEntry, error)

	// MarkSynced is idempotent; unknown ids are a no-op.
	MarkSynced(ctx context.Context, id string) error

	DeleteByID(ctx context.Context, id string) error

	// Stats returns the persisted aggregate, or a zero value when no entry
	// has ever been written.
	Stats(ctx context.Context) (*models.Stats, error)
}
