package scoring

// ExclusivePair names two primary-language ecosystems whose content
// rarely transfers; a candidate tagged with one side is penalized when
// the query context is anchored on the other.
type ExclusivePair struct {
	A string `yaml:"a"`
	B string `yaml:"b"`
}

// ScoringConfig holds all tunable constants of the candidate scorer.
// Budgets bound each sub-score so the total stays interpretable.
type ScoringConfig struct {
	// Per-dimension budgets. The maximum total before owner boost is
	// their sum.
	TechnologyBudget  float64 `yaml:"technology_budget"`   // default: 30
	ContentTypeBudget float64 `yaml:"content_type_budget"` // default: 20
	DifficultyBudget  float64 `yaml:"difficulty_budget"`   // default: 15
	IntentBudget      float64 `yaml:"intent_budget"`       // default: 15
	SemanticBudget    float64 `yaml:"semantic_budget"`     // default: 20

	// Technology overlap step thresholds map Jaccard overlap to a
	// fraction of the technology budget.
	TechFloorFraction   float64 `yaml:"tech_floor_fraction"`   // default: 0.15
	TechNeutralFraction float64 `yaml:"tech_neutral_fraction"` // default: 0.5

	// ExclusivePenalty multiplies the technology score when the item and
	// context sit on opposite sides of an exclusive language pair.
	ExclusivePenalty   float64         `yaml:"exclusive_penalty"` // default: 0.4
	ExclusiveLanguages []ExclusivePair `yaml:"exclusive_languages"`

	// Content-type scores.
	ContentTypePairingFraction float64 `yaml:"content_type_pairing_fraction"` // default: 0.85
	ContentTypeDefaultFraction float64 `yaml:"content_type_default_fraction"` // default: 0.5

	// Difficulty alignment scores. The asymmetry penalizes content that
	// is easier than needed more than content that is harder.
	DifficultyEasierAdjacent float64 `yaml:"difficulty_easier_adjacent"` // default: 8
	DifficultyHarderAdjacent float64 `yaml:"difficulty_harder_adjacent"` // default: 11
	DifficultyFar            float64 `yaml:"difficulty_far"`             // default: 4
	DifficultyNeutral        float64 `yaml:"difficulty_neutral"`         // default: 9

	// Intent alignment scores.
	IntentGeneralScore  float64 `yaml:"intent_general_score"`  // default: 9
	IntentMismatchScore float64 `yaml:"intent_mismatch_score"` // default: 4

	// SemanticNeutralFraction is used when either embedding is missing.
	SemanticNeutralFraction float64 `yaml:"semantic_neutral_fraction"` // default: 0.5

	// OwnerBoost multiplies the total when the item belongs to the
	// requesting user.
	OwnerBoost float64 `yaml:"owner_boost"` // default: 1.2

	// ReasonThresholdFraction is the minimum share of a dimension's
	// budget before it may appear in the explanation.
	ReasonThresholdFraction float64 `yaml:"reason_threshold_fraction"` // default: 0.6
}

// DefaultScoringConfig returns the default scoring configuration.
func DefaultScoringConfig() *ScoringConfig {
	return &ScoringConfig{
		TechnologyBudget:  30,
		ContentTypeBudget: 20,
		DifficultyBudget:  15,
		IntentBudget:      15,
		SemanticBudget:    20,

		TechFloorFraction:   0.15,
		TechNeutralFraction: 0.5,

		ExclusivePenalty: 0.4,
		ExclusiveLanguages: []ExclusivePair{
			{A: "java", B: "javascript"},
			{A: "java", B: "python"},
			{A: "java", B: "ruby"},
			{A: "c#", B: "python"},
			{A: "rust", B: "php"},
		},

		ContentTypePairingFraction: 0.85,
		ContentTypeDefaultFraction: 0.5,

		DifficultyEasierAdjacent: 8,
		DifficultyHarderAdjacent: 11,
		DifficultyFar:            4,
		DifficultyNeutral:        9,

		IntentGeneralScore:  9,
		IntentMismatchScore: 4,

		SemanticNeutralFraction: 0.5,

		OwnerBoost: 1.2,

		ReasonThresholdFraction: 0.6,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *ScoringConfig) ApplyDefaults() {
	defaults := DefaultScoringConfig()

	if c.TechnologyBudget == 0 {
		c.TechnologyBudget = defaults.TechnologyBudget
	}
	if c.ContentTypeBudget == 0 {
		c.ContentTypeBudget = defaults.ContentTypeBudget
	}
	if c.DifficultyBudget == 0 {
		c.DifficultyBudget = defaults.DifficultyBudget
	}
	if c.IntentBudget == 0 {
		c.IntentBudget = defaults.IntentBudget
	}
	if c.SemanticBudget == 0 {
		c.SemanticBudget = defaults.SemanticBudget
	}
	if c.TechFloorFraction == 0 {
		c.TechFloorFraction = defaults.TechFloorFraction
	}
	if c.TechNeutralFraction == 0 {
		c.TechNeutralFraction = defaults.TechNeutralFraction
	}
	if c.ExclusivePenalty == 0 {
		c.ExclusivePenalty = defaults.ExclusivePenalty
	}
	if c.ExclusiveLanguages == nil {
		c.ExclusiveLanguages = defaults.ExclusiveLanguages
	}
	if c.ContentTypePairingFraction == 0 {
		c.ContentTypePairingFraction = defaults.ContentTypePairingFraction
	}
	if c.ContentTypeDefaultFraction == 0 {
		c.ContentTypeDefaultFraction = defaults.ContentTypeDefaultFraction
	}
	if c.DifficultyEasierAdjacent == 0 {
		c.DifficultyEasierAdjacent = defaults.DifficultyEasierAdjacent
	}
	if c.DifficultyHarderAdjacent == 0 {
		c.DifficultyHarderAdjacent = defaults.DifficultyHarderAdjacent
	}
	if c.DifficultyFar == 0 {
		c.DifficultyFar = defaults.DifficultyFar
	}
	if c.DifficultyNeutral == 0 {
		c.DifficultyNeutral = defaults.DifficultyNeutral
	}
	if c.IntentGeneralScore == 0 {
		c.IntentGeneralScore = defaults.IntentGeneralScore
	}
	if c.IntentMismatchScore == 0 {
		c.IntentMismatchScore = defaults.IntentMismatchScore
	}
	if c.SemanticNeutralFraction == 0 {
		c.SemanticNeutralFraction = defaults.SemanticNeutralFraction
	}
	if c.OwnerBoost == 0 {
		c.OwnerBoost = defaults.OwnerBoost
	}
	if c.ReasonThresholdFraction == 0 {
		c.ReasonThresholdFraction = defaults.ReasonThresholdFraction
	}
}

// MaxTotal returns the maximum total score before owner boost.
func (c *ScoringConfig) MaxTotal() float64 {
	return c.TechnologyBudget + c.ContentTypeBudget + c.DifficultyBudget +
		c.IntentBudget + c.SemanticBudget
}
