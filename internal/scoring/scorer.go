package scoring

import (
	"github.com/hyperjump/osusume/internal/models"
)

// Scorer combines the per-dimension sub-scorers into a single candidate
// score with a breakdown and a human-readable reason.
type Scorer struct {
	config      *ScoringConfig
	technology  *TechnologyScorer
	contentType *ContentTypeScorer
	difficulty  *DifficultyScorer
	intent      *IntentScorer
	semantic    *SemanticScorer
}

// NewScorer creates a scorer from the given config. A nil config uses
// the defaults; a partial config has its zero values filled in.
func NewScorer(config *ScoringConfig) *Scorer {
	if config == nil {
		config = DefaultScoringConfig()
	}
	config.ApplyDefaults()

	return &Scorer{
		config:      config,
		technology:  NewTechnologyScorer(config),
		contentType: NewContentTypeScorer(config),
		difficulty:  NewDifficultyScorer(config),
		intent:      NewIntentScorer(config),
		semantic:    NewSemanticScorer(config),
	}
}

// Config returns the active configuration.
func (s *Scorer) Config() *ScoringConfig {
	return s.config
}

// Score evaluates one candidate against the query context. The total is
// the sum of the sub-scores, boosted when the requesting user owns the
// item.
func (s *Scorer) Score(item *models.CandidateItem, qctx *models.QueryContext, requestUserID string) *models.ScoredCandidate {
	ctx := &ScoringContext{
		Context:       qctx,
		Item:          item,
		RequestUserID: requestUserID,
	}

	sub := models.SubScores{
		Technology:  s.technology.Score(ctx),
		ContentType: s.contentType.Score(ctx),
		Difficulty:  s.difficulty.Score(ctx),
		Intent:      s.intent.Score(ctx),
		Semantic:    s.semantic.Score(ctx),
	}

	total := sub.Total()
	if requestUserID != "" && item.OwnerID == requestUserID {
		total *= s.config.OwnerBoost
	}

	return &models.ScoredCandidate{
		Item:          item,
		SubScores:     sub,
		TotalScore:    total,
		OriginalScore: total,
		Reason:        s.buildReason(ctx, sub),
	}
}

// MaxScore returns the highest total a candidate can reach, including
// the owner boost. Personalization uses it as a cap.
func (s *Scorer) MaxScore() float64 {
	return s.config.MaxTotal() * s.config.OwnerBoost
}
