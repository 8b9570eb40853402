// Package keyword provides the Bleve-backed recall index used to build
// a candidate pool when the caller does not supply one.
package keyword

import (
	"context"

	"github.com/hyperjump/osusume/internal/models"
)

// SearchOptions are optional recall parameters. Nil means defaults.
type SearchOptions struct {
	// TitleBoost multiplies the score contribution from title matches.
	// Values > 1 make title matches rank higher. Use 1.0 for no boost.
	TitleBoost float64
	// FuzzyEnabled turns on typo-tolerant matching.
	FuzzyEnabled bool
	// Fuzziness is the maximum edit distance for fuzzy matching (1 or 2).
	Fuzziness int
	// OwnerID restricts recall to one owner's items when non-empty.
	OwnerID string
}

// RecallIndex defines candidate recall operations.
type RecallIndex interface {
	Index(ctx context.Context, item *models.CandidateItem) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*RecallHit, error)
	Delete(ctx context.Context, id string) error
	DocCount() (uint64, error)
	Close() error
}

// RecallHit is a single recall result.
type RecallHit struct {
	ID    string
	Score float64
}
