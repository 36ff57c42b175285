package experiences

import (
	"context"

	"github.com/keepsakeapp/keepsake/internal/models"
)

// Repository describes storage operations for Experience records.
// Implementations are backed by the local SQLite database.
type Repository interface {
	// Insert persists a new experience together with its photo references.
	// The write is atomic: either the record and all photo rows are visible
	// on the next load, or none are.
	Insert(ctx context.Context, e *models.Experience) error

	// GetAll returns every experience, most recent experienced_at first.
	GetAll(ctx context.Context) ([]models.Experience, error)

	// GetAllPending returns experiences awaiting upload, in the same order
	// GetAll uses.
	GetAllPending(ctx context.Context) ([]models.Experience, error)

	// GetByID returns one experience or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Experience, error)

	// MarkSynced flips the record to Synced. Calling it on an already-synced
	// or unknown id is a no-op.
	MarkSynced(ctx context.Context, id string) error

	// DeleteByID removes the record and all of its photo rows.
	DeleteByID(ctx context.Context, id string) error
}
