package scoring

import "strings"

// goodPairings maps item content types to the query intents they serve
// well even without an exact content-type request.
var goodPairings = map[string]string{
	"example":       "implementation",
	"tutorial":      "learning",
	"documentation": "troubleshooting",
	"article":       "research",
	"paper":         "research",
	"video":         "learning",
}

// ContentTypeScorer scores how well the item's content type matches the
// content types the context asks for.
type ContentTypeScorer struct {
	config *ScoringConfig
}

// NewContentTypeScorer creates a ContentTypeScorer with the given config.
func NewContentTypeScorer(config *ScoringConfig) *ContentTypeScorer {
	return &ContentTypeScorer{config: config}
}

// Name returns the scorer name.
func (s *ContentTypeScorer) Name() string {
	return "content_type"
}

// Score returns the full budget on an exact match, near-max for known
// good content-type/intent pairings, and the moderate default otherwise.
// Missing annotation degrades to the default, never errors.
func (s *ContentTypeScorer) Score(ctx *ScoringContext) float64 {
	defaultScore := s.config.ContentTypeBudget * s.config.ContentTypeDefaultFraction

	if ctx.Item.Annotation == nil {
		return defaultScore
	}
	itemType := strings.ToLower(strings.TrimSpace(ctx.Item.Annotation.ContentType))
	if itemType == "" {
		return defaultScore
	}

	if ctx.Context.NeedsContentType(itemType) {
		return s.config.ContentTypeBudget
	}

	if intent, ok := goodPairings[itemType]; ok && intent == ctx.Context.IntentLabel {
		return s.config.ContentTypeBudget * s.config.ContentTypePairingFraction
	}

	return defaultScore
}
