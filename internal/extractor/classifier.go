package extractor

// LabelVote is one weighted vote for a classification label.
type LabelVote struct {
	Label  string
	Weight float64
}

// CombineVotes merges weighted votes into a winning label and a
// confidence in [0,1] (the winner's share of total vote weight). The
// same combiner is used for content-type, difficulty, and intent
// classification. Returns ("", 0) when no votes carry weight.
func CombineVotes(votes []LabelVote) (string, float64) {
	if len(votes) == 0 {
		return "", 0
	}
	totals := make(map[string]float64, len(votes))
	var sum float64
	for _, v := range votes {
		if v.Weight <= 0 {
			continue
		}
		totals[v.Label] += v.Weight
		sum += v.Weight
	}
	if sum == 0 {
		return "", 0
	}
	best := ""
	bestWeight := 0.0
	for label, w := range totals {
		// Deterministic tie-break: keep the lexicographically smaller label.
		if w > bestWeight || (w == bestWeight && (best == "" || label < best)) {
			best = label
			bestWeight = w
		}
	}
	return best, bestWeight / sum
}

// ClassifyIntent classifies arbitrary content text into an intent.
// Used by the scorer to infer a candidate item's intent from its text.
func ClassifyIntent(text string) string {
	label, _ := classifyLabels(normalizeText(text), intentLabels)
	if label == "" {
		return "general"
	}
	return label
}

// labelDef defines one label of a classification set: direct keywords
// and secondary contextual cues that disambiguate.
type labelDef struct {
	label    string
	keywords []string
	cues     []string
}

const (
	// keywordVoteWeight and cueVoteWeight combine keyword and contextual
	// signals per label (0.7/0.3 split).
	keywordVoteWeight = 0.7
	cueVoteWeight     = 0.3
	// acceptThreshold is the minimum combined score for a label to win;
	// below it the classification falls back to unknown/general.
	acceptThreshold = 0.3
)

var contentTypeLabels = []labelDef{
	{
		label:    "tutorial",
		keywords: []string{"tutorial", "walkthrough", "step by step", "how to", "guide me", "course"},
		cues:     []string{"from scratch", "hands-on", "follow along", "learn by building"},
	},
	{
		label:    "documentation",
		keywords: []string{"documentation", "docs", "reference", "api reference", "manual", "spec"},
		cues:     []string{"official", "exact behavior", "look up"},
	},
	{
		label:    "article",
		keywords: []string{"article", "blog post", "blog", "post", "write-up", "deep dive"},
		cues:     []string{"explains", "overview of", "background on"},
	},
	{
		label:    "example",
		keywords: []string{"example", "examples", "sample code", "snippet", "boilerplate", "starter", "template"},
		cues:     []string{"copy", "working code", "reference implementation"},
	},
	{
		label:    "video",
		keywords: []string{"video", "screencast", "talk", "conference talk", "youtube"},
		cues:     []string{"watch", "visual"},
	},
	{
		label:    "paper",
		keywords: []string{"paper", "research paper", "whitepaper", "study"},
		cues:     []string{"peer reviewed", "citation", "findings"},
	},
}

var difficultyLabels = []labelDef{
	{
		label:    "beginner",
		keywords: []string{"beginner", "beginners", "introduction", "intro", "basics", "getting started", "fundamentals", "first"},
		cues:     []string{"no prior knowledge", "no experience", "from scratch", "new to", "never used", "simple"},
	},
	{
		label:    "intermediate",
		keywords: []string{"intermediate", "practical", "real-world", "beyond the basics"},
		cues:     []string{"some experience", "familiar with", "comfortable with", "already know"},
	},
	{
		label:    "advanced",
		keywords: []string{"advanced", "expert", "deep dive", "internals", "under the hood", "mastery", "production-grade"},
		cues:     []string{"years of experience", "at scale", "performance critical", "edge cases"},
	},
}

var intentLabels = []labelDef{
	{
		label:    "learning",
		keywords: []string{"learn", "learning", "understand", "study", "course", "teach"},
		cues:     []string{"want to know", "curious about", "get familiar"},
	},
	{
		label:    "implementation",
		keywords: []string{"build", "building", "implement", "implementing", "create", "develop", "make", "ship"},
		cues:     []string{"working on", "side project", "mvp", "prototype"},
	},
	{
		label:    "troubleshooting",
		keywords: []string{"fix", "debug", "debugging", "error", "bug", "broken", "issue", "crash", "fails"},
		cues:     []string{"doesn't work", "not working", "keeps failing", "stack trace"},
	},
	{
		label:    "optimization",
		keywords: []string{"optimize", "optimization", "performance", "faster", "speed up", "scale", "scaling", "refactor"},
		cues:     []string{"too slow", "bottleneck", "memory usage", "reduce latency"},
	},
	{
		label:    "research",
		keywords: []string{"compare", "comparison", "evaluate", "versus", "vs", "alternatives", "research", "survey"},
		cues:     []string{"which one", "pros and cons", "trade-offs", "should i use"},
	},
}

// classifyLabels scores text against a label set and returns the winner
// with its confidence, or ("", 0) when no label clears the acceptance
// threshold. Each label's combined score is a weighted blend of keyword
// hits and contextual-cue hits; one keyword hit scores half the keyword
// budget, two or more the full budget, and a single cue the full cue
// budget.
func classifyLabels(text string, labels []labelDef) (string, float64) {
	votes := make([]LabelVote, 0, len(labels))
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
		if combined > 0 {
			votes = append(votes, LabelVote{Label: def.label, Weight: combined})
		}
	}

	label, confidence := CombineVotes(votes)
	if label == "" {
		return "", 0
	}
	// The winner must also clear the absolute acceptance threshold; a
	// high share of a tiny total is not a real signal.
	bestRaw := 0.0
	for _, v := range votes {
		if v.Label == label && v.Weight > bestRaw {
			bestRaw = v.Weight
		}
	}
	if bestRaw <= acceptThreshold {
		return "", 0
	}
	return label, confidence
}
