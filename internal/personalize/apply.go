package personalize

import (
	"strings"

	"github.com/hyperjump/osusume/internal/models"
	"github.com/hyperjump/osusume/internal/scoring"
)

// Apply nudges each candidate's score toward the user's learned
// preferences and re-sorts the pool. The multiplier always starts from
// OriginalScore, so applying twice gives the same result as once. A
// neutral profile leaves the pool untouched and returns false.
func (p *Profiler) Apply(scored []*models.ScoredCandidate, profile *models.UserPreferenceProfile, maxScore float64) bool {
	if profile == nil || profile.IsNeutral() {
		return false
	}

	for _, sc := range scored {
		mult := p.multiplier(sc.Item, profile)
		adjusted := sc.OriginalScore * mult
		if adjusted > maxScore {
			adjusted = maxScore
		}
		sc.TotalScore = adjusted
	}

	scoring.SortByScore(scored)
	for i, sc := range scored {
		sc.Rank = i + 1
	}
	return true
}

// multiplier blends the per-attribute nudges and clamps the result so a
// strongly opinionated profile still cannot bury a relevant candidate.
func (p *Profiler) multiplier(item *models.CandidateItem, profile *models.UserPreferenceProfile) float64 {
	mult := 1.0

	if item.Annotation != nil {
		if ct := strings.ToLower(item.Annotation.ContentType); ct != "" {
			if pref, ok := profile.PreferredContentTypes[ct]; ok {
				mult *= 1 + p.config.ContentTypeNudge*profile.Adjustment(models.DimensionContentType)*(2*pref-1)
			}
		}
		if d := strings.ToLower(item.Annotation.Difficulty); d != "" {
			if pref, ok := profile.PreferredDifficulties[d]; ok {
				mult *= 1 + p.config.DifficultyNudge*profile.Adjustment(models.DimensionDifficulty)*(2*pref-1)
			}
		}

		// Technology preference only boosts. Disliking one stack must
		// not penalize an item that is otherwise a strong match.
		best := 0.5
		for _, tag := range item.Annotation.TechnologyTags {
			if pref, ok := profile.PreferredTechnologies[strings.ToLower(strings.TrimSpace(tag))]; ok && pref > best {
				best = pref
			}
		}
		if best > 0.5 {
			mult *= 1 + p.config.TechnologyBoostMax*profile.Adjustment(models.DimensionTechnology)*(2*best-1)
		}
	}

	// Boosts are withheld from items below the user's learned quality
	// bar. Dampening still applies.
	if mult > 1 && profile.QualityThreshold > 0 && item.QualityScore > 0 && item.QualityScore < profile.QualityThreshold {
		mult = 1.0
	}

	if mult < p.config.AdjustmentMin {
		return p.config.AdjustmentMin
	}
	if mult > p.config.AdjustmentMax {
		return p.config.AdjustmentMax
	}
	return mult
}
