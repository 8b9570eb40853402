package personalize

// PersonalizationConfig holds the tunable constants of feedback-based
// personalization.
type PersonalizationConfig struct {
	// MinInteractions is the number of feedback events a user needs
	// before learned preferences replace the neutral profile.
	MinInteractions int `yaml:"min_interactions"` // default: 5

	// WindowDays bounds the rolling feedback window a profile is built
	// from.
	WindowDays int `yaml:"window_days"` // default: 90

	// AdjustmentMin and AdjustmentMax bound the per-candidate score
	// multiplier so personalization reorders within the base ranking
	// instead of replacing it.
	AdjustmentMin float64 `yaml:"adjustment_min"` // default: 0.8
	AdjustmentMax float64 `yaml:"adjustment_max"` // default: 1.2

	// Per-attribute nudge strengths.
	ContentTypeNudge   float64 `yaml:"content_type_nudge"`   // default: 0.15
	DifficultyNudge    float64 `yaml:"difficulty_nudge"`     // default: 0.10
	TechnologyBoostMax float64 `yaml:"technology_boost_max"` // default: 0.20
}

// DefaultPersonalizationConfig returns the default configuration.
func DefaultPersonalizationConfig() *PersonalizationConfig {
	return &PersonalizationConfig{
		MinInteractions:    5,
		WindowDays:         90,
		AdjustmentMin:      0.8,
		AdjustmentMax:      1.2,
		ContentTypeNudge:   0.15,
		DifficultyNudge:    0.10,
		TechnologyBoostMax: 0.20,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *PersonalizationConfig) ApplyDefaults() {
	defaults := DefaultPersonalizationConfig()

	if c.MinInteractions == 0 {
		c.MinInteractions = defaults.MinInteractions
	}
	if c.WindowDays == 0 {
		c.WindowDays = defaults.WindowDays
	}
	if c.AdjustmentMin == 0 {
		c.AdjustmentMin = defaults.AdjustmentMin
	}
	if c.AdjustmentMax == 0 {
		c.AdjustmentMax = defaults.AdjustmentMax
	}
	if c.ContentTypeNudge == 0 {
		c.ContentTypeNudge = defaults.ContentTypeNudge
	}
	if c.DifficultyNudge == 0 {
		c.DifficultyNudge = defaults.DifficultyNudge
	}
	if c.TechnologyBoostMax == 0 {
		c.TechnologyBoostMax = defaults.TechnologyBoostMax
	}
}
