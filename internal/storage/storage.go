// Package storage defines the persistence interface for candidate items
// and feedback events.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hyperjump/osusume/internal/models"
)

// ErrItemNotFound is returned when an item ID does not exist.
var ErrItemNotFound = errors.New("storage: item not found")

// Storage defines item and feedback persistence operations.
type Storage interface {
	// Item operations
	UpsertItem(ctx context.Context, item *models.CandidateItem) error
	GetItem(ctx context.Context, id string) (*models.CandidateItem, error)
	GetItems(ctx context.Context, ids []string) (map[string]*models.CandidateItem, error)
	DeleteItem(ctx context.Context, id string) error
	ListItems(ctx context.Context, offset, limit int) ([]*models.CandidateItem, error)
	ListItemsByOwner(ctx context.Context, ownerID string) ([]*models.CandidateItem, error)
	CountItems(ctx context.Context) (int64, error)

	// Feedback operations. The event log is append-only.
	AppendFeedback(ctx context.Context, event *models.FeedbackEvent) error
	ListByUserSince(ctx context.Context, userID string, since time.Time) ([]*models.FeedbackEvent, error)
	CountFeedback(ctx context.Context) (int64, error)

	Close() error
}
