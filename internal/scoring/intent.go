package scoring

import (
	"github.com/hyperjump/osusume/internal/extractor"
	"github.com/hyperjump/osusume/internal/models"
	"github.com/hyperjump/osusume/pkg/utils"
)

// intentClassifyLimit caps how much item text is classified; intent
// signals live in the opening of a document.
const intentClassifyLimit = 2000

// IntentScorer scores the alignment between the item's inferred intent
// and the context's intent.
type IntentScorer struct {
	config *ScoringConfig
}

// NewIntentScorer creates an IntentScorer with the given config.
func NewIntentScorer(config *ScoringConfig) *IntentScorer {
	return &IntentScorer{config: config}
}

// Name returns the scorer name.
func (s *IntentScorer) Name() string {
	return "intent"
}

// Score gives the full budget on an exact intent match, partial credit
// when either side is general, and a low fixed score otherwise. The
// item's intent is inferred deterministically from its text.
func (s *IntentScorer) Score(ctx *ScoringContext) float64 {
	itemIntent := InferItemIntent(ctx.Item)
	contextIntent := ctx.Context.Intent

	if itemIntent == contextIntent {
		return s.config.IntentBudget
	}
	if itemIntent == models.IntentGeneral || contextIntent == models.IntentGeneral {
		return s.config.IntentGeneralScore
	}
	return s.config.IntentMismatchScore
}

// InferItemIntent classifies a candidate item's intent from its title
// and the opening of its text. Pure and deterministic.
func InferItemIntent(item *models.CandidateItem) models.Intent {
	text := item.Title + " " + utils.Truncate(item.RawText, intentClassifyLimit)
	return models.ParseIntent(extractor.ClassifyIntent(text))
}
