package scoring

import "github.com/hyperjump/osusume/internal/vector"

// SemanticScorer scores cosine similarity between the item embedding and
// the context embedding.
type SemanticScorer struct {
	config *ScoringConfig
}

// NewSemanticScorer creates a SemanticScorer with the given config.
func NewSemanticScorer(config *ScoringConfig) *SemanticScorer {
	return &SemanticScorer{config: config}
}

// Name returns the scorer name.
func (s *SemanticScorer) Name() string {
	return "semantic"
}

// Score rescales cosine similarity into the semantic budget. When either
// embedding is unavailable it substitutes the neutral value rather than
// zero.
func (s *SemanticScorer) Score(ctx *ScoringContext) float64 {
	if len(ctx.Item.Embedding) == 0 || len(ctx.Context.Embedding) == 0 {
		return s.config.SemanticBudget * s.config.SemanticNeutralFraction
	}
	sim := vector.CosineSimilarity(ctx.Item.Embedding, ctx.Context.Embedding)
	return s.config.SemanticBudget * sim
}
