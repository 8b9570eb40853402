package models

import (
	"fmt"
	"strings"
)

// SubScores holds the independent per-dimension scores for a candidate.
// Each dimension is bounded to its own budget so the sum is interpretable.
type SubScores struct {
	Technology  float64 `json:"technology"`
	ContentType float64 `json:"content_type"`
	Difficulty  float64 `json:"difficulty"`
	Intent      float64 `json:"intent"`
	Semantic    float64 `json:"semantic"`
}

// Total returns the sum of all sub-scores (before owner boost).
func (s SubScores) Total() float64 {
	return s.Technology + s.ContentType + s.Difficulty + s.Intent + s.Semantic
}

// ScoredCandidate pairs a candidate item with its scores and a
// human-readable reason derived deterministically from the sub-scores.
type ScoredCandidate struct {
	Item      *CandidateItem `json:"item"`
	SubScores SubScores      `json:"sub_scores"`
	// TotalScore is the sum of sub-scores after owner boost and, when
	// personalization ran, after preference rescaling.
	TotalScore float64 `json:"total_score"`
	// OriginalScore preserves the pre-personalization score for audit.
	// Zero until personalization runs.
	OriginalScore float64 `json:"original_score,omitempty"`
	Reason        string  `json:"reason"`
	Rank          int     `json:"rank"`
}

// RecommendRequest is a single ranking call.
type RecommendRequest struct {
	UserID string `json:"user_id"`
	// Free-text query fields, in provenance order of weight.
	Title            string `json:"title,omitempty"`
	Description      string `json:"description,omitempty"`
	TechnologiesText string `json:"technologies,omitempty"`
	InterestsText    string `json:"interests,omitempty"`
	// Candidates is the pool to rank. When empty, the engine recalls a
	// pool from the user's stored items.
	Candidates []*CandidateItem `json:"-"`
	K          int              `json:"k,omitempty"`
}

// QueryText returns the combined query text in provenance order.
func (r *RecommendRequest) QueryText() string {
	parts := make([]string, 0, 4)
	for _, s := range []string{r.Title, r.Description, r.TechnologiesText, r.InterestsText} {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// Validate ensures the request has something to extract context from. A
// request with no title, no description, and no technologies is the only
// caller-visible validation error.
func (r *RecommendRequest) Validate() error {
	if r.UserID == "" {
		return fmt.Errorf("user_id cannot be empty")
	}
	if strings.TrimSpace(r.Title) == "" &&
		strings.TrimSpace(r.Description) == "" &&
		strings.TrimSpace(r.TechnologiesText) == "" {
		return fmt.Errorf("query is empty: at least one of title, description, or technologies is required")
	}
	return nil
}

// ClampK normalizes the requested result count to the configured bounds.
// A missing or non-positive K falls back to the default.
func (r *RecommendRequest) ClampK(defaultK, maxK int) {
	if r.K <= 0 {
		r.K = defaultK
	}
	if maxK > 0 && r.K > maxK {
		r.K = maxK
	}
}

// Diagnostics surfaces degraded paths so operators can detect systemic
// annotation or embedding outages even though callers see no failure.
type Diagnostics struct {
	SkippedCandidates    int   `json:"skipped_candidates"`
	CacheHit             bool  `json:"cache_hit"`
	ExtractionDegraded   bool  `json:"extraction_degraded"`
	EmbeddingUnavailable bool  `json:"embedding_unavailable"`
	Personalized         bool  `json:"personalized"`
	PoolSize             int   `json:"pool_size"`
	QueryTimeMs          int64 `json:"query_time_ms"`
}

// RecommendResponse is the result of a ranking call.
type RecommendResponse struct {
	SessionID   string             `json:"session_id"`
	Results     []*ScoredCandidate `json:"results"`
	Context     *QueryContext      `json:"context"`
	Diagnostics Diagnostics        `json:"diagnostics"`
}
