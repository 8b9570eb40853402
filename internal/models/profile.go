package models

import "time"

// Scoring dimension names used as WeightAdjustments keys.
const (
	DimensionTechnology  = "technology"
	DimensionContentType = "content_type"
	DimensionDifficulty  = "difficulty"
	DimensionIntent      = "intent"
	DimensionSemantic    = "semantic"
)

// Dimensions lists all scoring dimensions in a fixed order.
var Dimensions = []string{
	DimensionTechnology,
	DimensionContentType,
	DimensionDifficulty,
	DimensionIntent,
	DimensionSemantic,
}

// UserPreferenceProfile holds per-user preference weights learned from
// feedback. Rebuilt lazily from a rolling feedback window; a new user
// gets NeutralProfile.
type UserPreferenceProfile struct {
	UserID string `json:"user_id"`
	// Preference maps hold scores in [0,1]; 0.5 is neutral.
	PreferredContentTypes map[string]float64 `json:"preferred_content_types"`
	PreferredDifficulties map[string]float64 `json:"preferred_difficulties"`
	PreferredTechnologies map[string]float64 `json:"preferred_technologies"`
	// WeightAdjustments nudge each scoring dimension, bounded to
	// [0.8, 1.2] so personalization never overrides the base scorer.
	WeightAdjustments map[string]float64 `json:"weight_adjustments"`
	QualityThreshold  int                `json:"quality_threshold"`
	InteractionCount  int                `json:"interaction_count"`
	BuiltAt           time.Time          `json:"built_at"`
}

// NeutralProfile returns the cold-start profile: no preferences and all
// adjustment weights at 1.0.
func NeutralProfile(userID string) *UserPreferenceProfile {
	adjustments := make(map[string]float64, len(Dimensions))
	for _, d := range Dimensions {
		adjustments[d] = 1.0
	}
	return &UserPreferenceProfile{
		UserID:                userID,
		PreferredContentTypes: make(map[string]float64),
		PreferredDifficulties: make(map[string]float64),
		PreferredTechnologies: make(map[string]float64),
		WeightAdjustments:     adjustments,
		BuiltAt:               time.Now(),
	}
}

// Adjustment returns the weight adjustment for a scoring dimension.
// Unknown or unset dimensions are neutral.
func (p *UserPreferenceProfile) Adjustment(dimension string) float64 {
	if v, ok := p.WeightAdjustments[dimension]; ok && v > 0 {
		return v
	}
	return 1.0
}

// IsNeutral reports whether the profile carries no learned signal.
func (p *UserPreferenceProfile) IsNeutral() bool {
	return len(p.PreferredContentTypes) == 0 &&
		len(p.PreferredDifficulties) == 0 &&
		len(p.PreferredTechnologies) == 0
}
