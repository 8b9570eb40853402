package scoring

import "strings"

// TechnologyScorer scores the overlap between an item's technology tags
// and the context's primary technologies.
type TechnologyScorer struct {
	config *ScoringConfig
}

// NewTechnologyScorer creates a TechnologyScorer with the given config.
func NewTechnologyScorer(config *ScoringConfig) *TechnologyScorer {
	return &TechnologyScorer{config: config}
}

// Name returns the scorer name.
func (s *TechnologyScorer) Name() string {
	return "technology"
}

// Score maps Jaccard overlap through a step function rather than
// linearly: partial overlap on a single critical technology should not
// score proportionally lower than overlap on many minor ones. An empty
// side on either end yields a neutral mid-value (absence of data is not
// irrelevance). Mutually exclusive primary languages apply a fixed
// penalty so wrong-ecosystem content cannot rank on secondary overlap.
func (s *TechnologyScorer) Score(ctx *ScoringContext) float64 {
	itemTags := normalizeTags(ctx.Item.TechnologyTags())
	contextTechs := normalizeTags(ctx.Context.PrimaryTechnologies)

	if len(itemTags) == 0 || len(contextTechs) == 0 {
		return s.config.TechnologyBudget * s.config.TechNeutralFraction
	}

	overlap := jaccard(itemTags, contextTechs)
	score := s.config.TechnologyBudget * s.stepFraction(overlap)

	if s.hasExclusiveConflict(itemTags, contextTechs) {
		score *= s.config.ExclusivePenalty
	}
	return score
}

// stepFraction maps overlap to a fraction of the budget.
func (s *TechnologyScorer) stepFraction(overlap float64) float64 {
	switch {
	case overlap >= 0.8:
		return 1.0
	case overlap >= 0.6:
		return 0.8
	case overlap >= 0.4:
		return 0.6
	case overlap >= 0.2:
		return 0.4
	default:
		return s.config.TechFloorFraction
	}
}

// hasExclusiveConflict reports whether the item and context each carry
// one side of an exclusive language pair without the other side.
func (s *TechnologyScorer) hasExclusiveConflict(itemTags, contextTechs map[string]bool) bool {
	for _, pair := range s.config.ExclusiveLanguages {
		if itemTags[pair.A] && !itemTags[pair.B] && contextTechs[pair.B] && !contextTechs[pair.A] {
			return true
		}
		if itemTags[pair.B] && !itemTags[pair.A] && contextTechs[pair.A] && !contextTechs[pair.B] {
			return true
		}
	}
	return false
}

// MatchedTechnologies returns the tags shared by item and context,
// sorted, for explanation text.
func (s *TechnologyScorer) MatchedTechnologies(ctx *ScoringContext) []string {
	itemTags := normalizeTags(ctx.Item.TechnologyTags())
	var matched []string
	for _, tech := range ctx.Context.PrimaryTechnologies {
		if itemTags[strings.ToLower(tech)] {
			matched = append(matched, strings.ToLower(tech))
		}
	}
	return matched
}

// jaccard returns |intersection| / |union| of two tag sets.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for tag := range a {
		if b[tag] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// normalizeTags lower-cases and dedups a tag list into a set.
func normalizeTags(tags []string) map[string]bool {
	if len(tags) == 0 {
		return nil
	}
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			set[t] = true
		}
	}
	return set
}
