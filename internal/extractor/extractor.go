// Package extractor turns free-text query fields into a structured
// QueryContext: technologies, domains, content-type needs, difficulty,
// intent, complexity, and confidence.
package extractor

import (
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/osusume/internal/models"
)

// Section weights order the provenance of query fields: the title
// carries the strongest signal, then the explicit technology list, then
// the description, then interests.
const (
	titleWeight        = 3.0
	technologiesWeight = 2.5
	descriptionWeight  = 1.0
	interestsWeight    = 0.8

	// primaryThreshold separates primary from secondary technologies.
	primaryThreshold = 2.0

	maxKeyConcepts = 10
)

// Extractor builds QueryContexts from free-text query fields. Extraction
// never fails: an internal error falls back to a low-confidence
// rule-based pass.
type Extractor struct {
	taxonomy []TechnologyCategory
	synonyms map[string]string
	logger   *zap.Logger
}

// NewExtractor creates an Extractor with the default taxonomy.
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		taxonomy: defaultTaxonomy(),
		synonyms: defaultSynonyms(),
		logger:   logger,
	}
}

// section is one query field with its provenance weight.
type section struct {
	text   string
	weight float64
	// explicitTech marks the technologies field: anything detected there
	// is primary regardless of score.
	explicitTech bool
}

// Extract builds a QueryContext from the query fields. The degraded
// return is true when extraction recovered from an internal error and
// produced the minimal fallback context.
func (e *Extractor) Extract(title, description, technologies, interests string) (qc *models.QueryContext, degraded bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("context extraction recovered, using fallback",
				zap.Any("panic", r))
			qc = e.fallbackContext(title, description, technologies, interests)
			degraded = true
		}
	}()

	sections := []section{
		{text: e.resolveSynonyms(normalizeText(title)), weight: titleWeight},
		{text: e.resolveSynonyms(normalizeText(description)), weight: descriptionWeight},
		{text: e.resolveSynonyms(normalizeText(technologies)), weight: technologiesWeight, explicitTech: true},
		{text: e.resolveSynonyms(normalizeText(interests)), weight: interestsWeight},
	}

	analysisText := joinSections(sections)

	primary, secondary, domains, implies := e.detectTechnologies(sections)

	contentTypes := classifyAccepted(analysisText, contentTypeLabels)

	difficultyLabel, _ := classifyLabels(analysisText, difficultyLabels)
	difficulty := models.ParseDifficulty(difficultyLabel)

	intentLabel, _ := classifyLabels(analysisText, intentLabels)
	intent := models.ParseIntent(intentLabel)

	keyConcepts := e.keyConcepts(title, description, primary, secondary)

	qc = &models.QueryContext{
		PrimaryTechnologies:   primary,
		SecondaryTechnologies: secondary,
		Domains:               domains,
		ContentTypesNeeded:    contentTypes,
		Difficulty:            difficulty,
		DifficultyLabel:       difficulty.String(),
		Intent:                intent,
		IntentLabel:           intent.String(),
		Complexity:            e.complexity(analysisText, primary, secondary),
		KeyConcepts:           keyConcepts,
		ImplicitRequirements:  implies,
		Confidence:            e.confidence(analysisText, technologies, primary),
		SourceHash:            models.HashText(title + "\n" + description + "\n" + technologies + "\n" + interests),
	}
	return qc, false
}

// resolveSynonyms replaces known abbreviations token-wise with their
// canonical technology names. Unresolved tokens pass through unchanged.
func (e *Extractor) resolveSynonyms(text string) string {
	if text == "" {
		return ""
	}
	fields := strings.Fields(text)
	for i, f := range fields {
		trimmed := strings.Trim(f, ",;")
		if canonical, ok := e.synonyms[trimmed]; ok {
			fields[i] = canonical
		}
	}
	return strings.Join(fields, " ")
}

// detectTechnologies runs exact word-boundary taxonomy matching over the
// weighted sections, then a fuzzy prefix pass that adds categories the
// exact pass missed. Returns sorted primary and secondary technology
// names, their domains, and deduplicated implicit requirements.
func (e *Extractor) detectTechnologies(sections []section) (primary, secondary, domains, implies []string) {
	type detection struct {
		score       float64
		explicit    bool
		categoryIdx int
	}
	detected := make(map[string]*detection)

	for _, sec := range sections {
		if sec.text == "" {
			continue
		}
		masked := sec.text
		for ci, cat := range e.taxonomy {
			hit := false
			for _, kw := range cat.Keywords {
				if containsPhrase(masked, kw) {
					hit = true
					if strings.Contains(kw, " ") {
						// Consume multi-word phrases so constituent
						// single words do not match again.
						masked = maskPhrase(masked, kw)
					}
				}
			}
			if hit {
				d := detected[cat.Name]
				if d == nil {
					d = &detection{categoryIdx: ci}
					detected[cat.Name] = d
				}
				d.score += sec.weight * cat.Weight
				if sec.explicitTech {
					d.explicit = true
				}
			}
		}
	}

	// Semantic enrichment: tokens that extend a category name (e.g.
	// "reactjs", "postgresql14") add the category if exact match missed it.
	for _, sec := range sections {
		for _, tok := range tokenize(sec.text) {
			for ci, cat := range e.taxonomy {
				if detected[cat.Name] != nil {
					continue
				}
				if len(tok) > len(cat.Name) && len(tok) <= len(cat.Name)+3 &&
					strings.HasPrefix(tok, cat.Name) {
					detected[cat.Name] = &detection{
						score:       sec.weight * cat.Weight * 0.5,
						categoryIdx: ci,
					}
				}
			}
		}
	}

	domainSet := make(map[string]bool)
	impliesSet := make(map[string]bool)
	type scored struct {
		name  string
		score float64
	}
	var primaries, secondaries []scored
	for name, d := range detected {
		cat := e.taxonomy[d.categoryIdx]
		domainSet[cat.Domain] = true
		if d.explicit || d.score >= primaryThreshold {
			primaries = append(primaries, scored{name, d.score})
			for _, imp := range cat.Implies {
				impliesSet[imp] = true
			}
		} else {
			secondaries = append(secondaries, scored{name, d.score})
		}
	}

	sortScored := func(s []scored) []string {
		sort.Slice(s, func(i, j int) bool {
			if s[i].score != s[j].score {
				return s[i].score > s[j].score
			}
			return s[i].name < s[j].name
		})
		out := make([]string, len(s))
		for i, sc := range s {
			out[i] = sc.name
		}
		return out
	}
	primary = sortScored(primaries)
	secondary = sortScored(secondaries)
	domains = sortedKeys(domainSet)
	implies = sortedKeys(impliesSet)
	return primary, secondary, domains, implies
}

// complexity is a bounded [0,1] heuristic: technical-term density,
// advanced-domain keywords, and text length, each with a capped
// contribution.
func (e *Extractor) complexity(analysisText string, primary, secondary []string) float64 {
	tokens := tokenize(analysisText)
	if len(tokens) == 0 {
		return 0
	}

	techCount := len(primary) + len(secondary)
	density := math.Min(0.4, float64(techCount)/float64(len(tokens))*4)

	advancedHits := countPhraseHits(analysisText, advancedTerms)
	advanced := math.Min(0.4, float64(advancedHits)*0.15)

	length := math.Min(0.2, float64(len(tokens))/200.0*0.2)

	return math.Min(1.0, density+advanced+length)
}

// confidence grows with input length, explicit technologies, and the
// presence of a recognizable project-type keyword.
func (e *Extractor) confidence(analysisText, technologies string, primary []string) float64 {
	c := 0.2

	tokens := tokenize(analysisText)
	c += math.Min(0.3, float64(len(tokens))/100.0*0.3)

	if strings.TrimSpace(technologies) != "" || len(primary) > 0 {
		c += 0.3
	}

	if countPhraseHits(analysisText, projectTypeTerms) > 0 {
		c += 0.2
	}

	return math.Min(1.0, c)
}

// keyConcepts returns detected technology names followed by the most
// salient remaining tokens of title and description, preserving
// first-appearance order, capped at maxKeyConcepts.
func (e *Extractor) keyConcepts(title, description string, primary, secondary []string) []string {
	concepts := make([]string, 0, maxKeyConcepts)
	seen := make(map[string]bool)
	add := func(c string) {
		if len(concepts) >= maxKeyConcepts || c == "" || seen[c] {
			return
		}
		seen[c] = true
		concepts = append(concepts, c)
	}
	for _, t := range primary {
		add(t)
	}
	for _, t := range secondary {
		add(t)
	}
	for _, tok := range tokenize(title + " " + description) {
		if len(tok) < 4 || stopwords[tok] {
			continue
		}
		add(tok)
	}
	return concepts
}

// fallbackContext is the minimal rule-based pass used when the full
// extraction errored: tokens become key concepts, the explicit
// technology list becomes primary technologies, and confidence is low.
func (e *Extractor) fallbackContext(title, description, technologies, interests string) *models.QueryContext {
	var primary []string
	seen := make(map[string]bool)
	for _, tok := range tokenize(e.resolveSynonyms(normalizeText(technologies))) {
		tok = strings.Trim(tok, ",;")
		if tok != "" && !seen[tok] {
			seen[tok] = true
			primary = append(primary, tok)
		}
	}
	sort.Strings(primary)

	concepts := make([]string, 0, maxKeyConcepts)
	conceptSeen := make(map[string]bool)
	for _, tok := range tokenize(title + " " + description + " " + interests) {
		if len(tok) < 4 || stopwords[tok] || conceptSeen[tok] {
			continue
		}
		conceptSeen[tok] = true
		concepts = append(concepts, tok)
		if len(concepts) >= maxKeyConcepts {
			break
		}
	}

	return &models.QueryContext{
		PrimaryTechnologies: primary,
		Difficulty:          models.DifficultyUnknown,
		DifficultyLabel:     models.DifficultyUnknown.String(),
		Intent:              models.IntentGeneral,
		IntentLabel:         models.IntentGeneral.String(),
		KeyConcepts:         concepts,
		Confidence:          0.1,
		SourceHash:          models.HashText(title + "\n" + description + "\n" + technologies + "\n" + interests),
	}
}

// classifyAccepted returns every label in the set whose combined score
// clears the acceptance threshold, strongest first.
func classifyAccepted(text string, labels []labelDef) []string {
	type scored struct {
		label string
		score float64
	}
	var accepted []scored
	for _, def := range labels {
		kwHits := countPhraseHits(text, def.keywords)
		cueHits := countPhraseHits(text, def.cues)
		kwScore := 0.0
		if kwHits >= 2 {
			kwScore = 1.0
		} else if kwHits == 1 {
			kwScore = 0.5
		}
		cueScore := 0.0
		if cueHits > 0 {
			cueScore = 1.0
		}
		combined := keywordVoteWeight*kwScore + cueVoteWeight*cueScore
		if combined > acceptThreshold {
			accepted = append(accepted, scored{def.label, combined})
		}
	}
	sort.Slice(accepted, func(i, j int) bool {
		if accepted[i].score != accepted[j].score {
			return accepted[i].score > accepted[j].score
		}
		return accepted[i].label < accepted[j].label
	})
	out := make([]string, len(accepted))
	for i, a := range accepted {
		out[i] = a.label
	}
	return out
}

func joinSections(sections []section) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		if s.text != "" {
			parts = append(parts, s.text)
		}
	}
	return strings.Join(parts, " ")
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
