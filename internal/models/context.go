package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Difficulty is the ordinal difficulty level of content or of a query.
type Difficulty int

const (
	// DifficultyUnknown means no difficulty signal was detected.
	DifficultyUnknown Difficulty = iota
	// DifficultyBeginner is introductory content.
	DifficultyBeginner
	// DifficultyIntermediate assumes working knowledge.
	DifficultyIntermediate
	// DifficultyAdvanced assumes deep expertise.
	DifficultyAdvanced
)

// String returns a string representation of the difficulty.
func (d Difficulty) String() string {
	switch d {
	case DifficultyBeginner:
		return "beginner"
	case DifficultyIntermediate:
		return "intermediate"
	case DifficultyAdvanced:
		return "advanced"
	default:
		return "unknown"
	}
}

// Level returns the ordinal level (beginner=1, intermediate=2, advanced=3)
// or 0 when unknown.
func (d Difficulty) Level() int {
	switch d {
	case DifficultyBeginner:
		return 1
	case DifficultyIntermediate:
		return 2
	case DifficultyAdvanced:
		return 3
	default:
		return 0
	}
}

// ParseDifficulty maps a label to a Difficulty; unrecognized labels map
// to DifficultyUnknown.
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beginner":
		return DifficultyBeginner
	case "intermediate":
		return DifficultyIntermediate
	case "advanced":
		return DifficultyAdvanced
	default:
		return DifficultyUnknown
	}
}

// Intent is the classified purpose behind a query.
type Intent int

const (
	// IntentGeneral is the fallback when no intent signal dominates.
	IntentGeneral Intent = iota
	// IntentLearning indicates the user wants to learn a topic.
	IntentLearning
	// IntentImplementation indicates the user is building something.
	IntentImplementation
	// IntentTroubleshooting indicates the user is fixing a problem.
	IntentTroubleshooting
	// IntentOptimization indicates the user is improving something working.
	IntentOptimization
	// IntentResearch indicates the user is comparing or evaluating.
	IntentResearch
)

// String returns a string representation of the intent.
func (i Intent) String() string {
	switch i {
	case IntentLearning:
		return "learning"
	case IntentImplementation:
		return "implementation"
	case IntentTroubleshooting:
		return "troubleshooting"
	case IntentOptimization:
		return "optimization"
	case IntentResearch:
		return "research"
	default:
		return "general"
	}
}

// ParseIntent maps a label to an Intent; unrecognized labels map to
// IntentGeneral.
func ParseIntent(s string) Intent {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "learning":
		return IntentLearning
	case "implementation":
		return IntentImplementation
	case "troubleshooting":
		return IntentTroubleshooting
	case "optimization":
		return IntentOptimization
	case "research":
		return IntentResearch
	default:
		return IntentGeneral
	}
}

// QueryContext holds the structured signals extracted from a free-text
// query. It is built once per query and never mutated afterwards.
// Slice fields are kept sorted so identical inputs produce identical
// contexts (and identical cache keys).
type QueryContext struct {
	PrimaryTechnologies   []string   `json:"primary_technologies"`
	SecondaryTechnologies []string   `json:"secondary_technologies"`
	Domains               []string   `json:"domains"`
	ContentTypesNeeded    []string   `json:"content_types_needed"`
	Difficulty            Difficulty `json:"-"`
	DifficultyLabel       string     `json:"difficulty"`
	Intent                Intent     `json:"-"`
	IntentLabel           string     `json:"intent"`
	Complexity            float64    `json:"complexity"`
	KeyConcepts           []string   `json:"key_concepts"`
	// ImplicitRequirements is background knowledge implied by the detected
	// technologies. Used only for explanation text, never for filtering.
	ImplicitRequirements []string `json:"implicit_requirements,omitempty"`
	Confidence           float64  `json:"confidence"`
	// Embedding is the vector of the concatenated context text; nil when
	// the embedding provider was unavailable.
	Embedding []float32 `json:"-"`
	// SourceHash identifies the normalized source text this context was
	// extracted from.
	SourceHash string `json:"source_hash"`
}

// HasPrimaryTechnology reports whether tech is one of the context's
// primary technologies.
func (q *QueryContext) HasPrimaryTechnology(tech string) bool {
	tech = strings.ToLower(tech)
	for _, t := range q.PrimaryTechnologies {
		if t == tech {
			return true
		}
	}
	return false
}

// NeedsContentType reports whether ct is one of the requested content types.
func (q *QueryContext) NeedsContentType(ct string) bool {
	ct = strings.ToLower(ct)
	for _, t := range q.ContentTypesNeeded {
		if t == ct {
			return true
		}
	}
	return false
}

// AnalysisText concatenates the context's signals into a single string
// suitable for embedding.
func (q *QueryContext) AnalysisText() string {
	parts := make([]string, 0, 8)
	if len(q.PrimaryTechnologies) > 0 {
		parts = append(parts, strings.Join(q.PrimaryTechnologies, " "))
	}
	if len(q.SecondaryTechnologies) > 0 {
		parts = append(parts, strings.Join(q.SecondaryTechnologies, " "))
	}
	if len(q.Domains) > 0 {
		parts = append(parts, strings.Join(q.Domains, " "))
	}
	if len(q.KeyConcepts) > 0 {
		parts = append(parts, strings.Join(q.KeyConcepts, " "))
	}
	parts = append(parts, q.IntentLabel, q.DifficultyLabel)
	return strings.Join(parts, " ")
}

// HashText returns a stable hex digest of the normalized query text,
// used as the context cache key (context extraction is user-independent).
func HashText(text string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
