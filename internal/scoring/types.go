// Package scoring computes composite relevance scores for candidate
// items against a query context, with per-dimension sub-scores and
// deterministic explanation text.
package scoring

import (
	"github.com/hyperjump/osusume/internal/models"
)

// ScoringContext provides everything needed to score one candidate.
// All fields are read-only during scoring.
type ScoringContext struct {
	// Context is the extracted query context.
	Context *models.QueryContext
	// Item is the candidate being scored.
	Item *models.CandidateItem
	// RequestUserID is the user the ranking runs for; items owned by
	// this user get the owner boost.
	RequestUserID string
}

// SubScorer is the interface for all per-dimension scorers. Score must
// be a pure function of the context and stay within the dimension's
// budget.
type SubScorer interface {
	Score(ctx *ScoringContext) float64
	Name() string
}
