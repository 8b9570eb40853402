package scoring

import "github.com/hyperjump/osusume/internal/models"

// DifficultyScorer scores the alignment between the item's difficulty
// level and the context's.
type DifficultyScorer struct {
	config *ScoringConfig
}

// NewDifficultyScorer creates a DifficultyScorer with the given config.
func NewDifficultyScorer(config *ScoringConfig) *DifficultyScorer {
	return &DifficultyScorer{config: config}
}

// Name returns the scorer name.
func (s *DifficultyScorer) Name() string {
	return "difficulty"
}

// Score compares ordinal difficulty levels. Adjacent levels get partial
// credit, asymmetrically: an item easier than needed scores lower than
// an item harder than needed, since under-leveled content is less useful
// for an explicitly advanced goal. Unknown on either side yields the
// neutral default.
func (s *DifficultyScorer) Score(ctx *ScoringContext) float64 {
	contextLevel := ctx.Context.Difficulty.Level()

	itemLevel := 0
	if ctx.Item.Annotation != nil {
		itemLevel = models.ParseDifficulty(ctx.Item.Annotation.Difficulty).Level()
	}

	if contextLevel == 0 || itemLevel == 0 {
		return s.config.DifficultyNeutral
	}

	switch itemLevel - contextLevel {
	case 0:
		return s.config.DifficultyBudget
	case -1:
		return s.config.DifficultyEasierAdjacent
	case 1:
		return s.config.DifficultyHarderAdjacent
	default:
		return s.config.DifficultyFar
	}
}
