package diversity

// DiversityConfig holds the tunable constants of the diversity selector.
type DiversityConfig struct {
	// SimilarityWeight and ScoreWeight blend dissimilarity to the already
	// selected set against normalized relevance during greedy selection.
	SimilarityWeight float64 `yaml:"similarity_weight"` // default: 0.6
	ScoreWeight      float64 `yaml:"score_weight"`      // default: 0.4

	// ContentTypeCapPerTen caps how many items of one content type may
	// appear per ten selected results.
	ContentTypeCapPerTen int `yaml:"content_type_cap_per_ten"` // default: 3

	// NeutralSimilarity stands in when an item has no embedding and its
	// distance to the selected set cannot be measured.
	NeutralSimilarity float64 `yaml:"neutral_similarity"` // default: 0.5

	// MinEmbeddedFraction is the share of the pool that must carry
	// embeddings for the embedding-based path to run; below it the
	// selector falls back to rotating across content types.
	MinEmbeddedFraction float64 `yaml:"min_embedded_fraction"` // default: 0.5
}

// DefaultDiversityConfig returns the default selector configuration.
func DefaultDiversityConfig() *DiversityConfig {
	return &DiversityConfig{
		SimilarityWeight:     0.6,
		ScoreWeight:          0.4,
		ContentTypeCapPerTen: 3,
		NeutralSimilarity:    0.5,
		MinEmbeddedFraction:  0.5,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *DiversityConfig) ApplyDefaults() {
	defaults := DefaultDiversityConfig()

	if c.SimilarityWeight == 0 {
		c.SimilarityWeight = defaults.SimilarityWeight
	}
	if c.ScoreWeight == 0 {
		c.ScoreWeight = defaults.ScoreWeight
	}
	if c.ContentTypeCapPerTen == 0 {
		c.ContentTypeCapPerTen = defaults.ContentTypeCapPerTen
	}
	if c.NeutralSimilarity == 0 {
		c.NeutralSimilarity = defaults.NeutralSimilarity
	}
	if c.MinEmbeddedFraction == 0 {
		c.MinEmbeddedFraction = defaults.MinEmbeddedFraction
	}
}
