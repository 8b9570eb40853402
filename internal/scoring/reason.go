package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hyperjump/osusume/internal/models"
)

// genericReason is the fallback when no sub-score clears its threshold.
const genericReason = "quality content relevant to your goal"

// maxReasonParts caps how many contributing dimensions the explanation
// names.
const maxReasonParts = 3

// reasonPart is one candidate phrase with the sub-score share that
// produced it.
type reasonPart struct {
	text     string
	fraction float64
	order    int
}

// buildReason renders a deterministic explanation from the sub-scores.
// Only dimensions above their own threshold contribute, so the reason
// never claims a match the scores do not support.
func (s *Scorer) buildReason(ctx *ScoringContext, sub models.SubScores) string {
	threshold := s.config.ReasonThresholdFraction
	var parts []reasonPart

	if frac := sub.Technology / s.config.TechnologyBudget; frac > threshold {
		matched := s.technology.MatchedTechnologies(ctx)
		if len(matched) > 0 {
			parts = append(parts, reasonPart{
				text:     "covers " + strings.Join(matched, ", ") + " from your stack",
				fraction: frac,
				order:    0,
			})
		}
	}

	if frac := sub.ContentType / s.config.ContentTypeBudget; frac > threshold && ctx.Item.Annotation != nil {
		itemType := strings.ToLower(ctx.Item.Annotation.ContentType)
		if frac >= 1.0 {
			parts = append(parts, reasonPart{
				text:     fmt.Sprintf("the %s format you asked for", itemType),
				fraction: frac,
				order:    1,
			})
		} else {
			parts = append(parts, reasonPart{
				text:     fmt.Sprintf("%s content that suits %s work", itemType, ctx.Context.IntentLabel),
				fraction: frac,
				order:    1,
			})
		}
	}

	if sub.Difficulty >= s.config.DifficultyBudget {
		parts = append(parts, reasonPart{
			text:     fmt.Sprintf("matches your %s level", ctx.Context.DifficultyLabel),
			fraction: 1.0,
			order:    2,
		})
	}

	if sub.Intent >= s.config.IntentBudget && ctx.Context.Intent != models.IntentGeneral {
		parts = append(parts, reasonPart{
			text:     fmt.Sprintf("suits your %s goal", ctx.Context.IntentLabel),
			fraction: 1.0,
			order:    3,
		})
	}

	if frac := sub.Semantic / s.config.SemanticBudget; frac > threshold && len(ctx.Item.Embedding) > 0 {
		parts = append(parts, reasonPart{
			text:     "closely related to your project description",
			fraction: frac,
			order:    4,
		})
	}

	if len(parts) == 0 {
		return genericReason
	}

	sort.Slice(parts, func(i, j int) bool {
		if parts[i].fraction != parts[j].fraction {
			return parts[i].fraction > parts[j].fraction
		}
		return parts[i].order < parts[j].order
	})
	if len(parts) > maxReasonParts {
		parts = parts[:maxReasonParts]
	}

	texts := make([]string, len(parts))
	for i, p := range parts {
		texts[i] = p.text
	}
	return strings.Join(texts, "; ")
}
