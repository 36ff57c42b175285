package messages

import (
	"context"

	"github.com/keepsakeapp/keepsake/internal/models"
)

// Repository describes storage operations for ChatMessage records.
type Repository interface {
	Insert(ctx context.Context, m *models.ChatMessage) error

	// GetAll returns the conversation in chronological order.
	GetAll(ctx context.Context) ([]models.ChatMessage, error)

	// GetAllPending returns messages awaiting upload, chronological.
	GetAllPending(ctx context.Context) ([]models.ChatMessage, error)

	// MarkSynced is idempotent; unknown ids are a no-op.
	MarkSynced(ctx context.Context, id string) error

	DeleteByID(ctx context.Context, id string) error
}
