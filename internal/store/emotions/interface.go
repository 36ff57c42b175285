package emotions

import (
	"context"

	"github.com/keepsakeapp/keepsake/internal/models"
)

// Repository describes storage operations for EmotionCapture records.
type Repository interface {
	Insert(ctx context.Context, c *models.EmotionCapture) error

	// GetAll returns every capture, most recent first.
	GetAll(ctx context.Context) ([]models.EmotionCapture, error)

	// GetAllPending returns captures awaiting upload, most recent first.
	GetAllPending(ctx context.Context) ([]models.EmotionCapture, error)

	// MarkSynced is idempotent; unknown ids are a no-op.
	MarkSynced(ctx context.Context, id string) error

	DeleteByID(ctx context.Context, id string) error
}
