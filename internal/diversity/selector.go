// Package diversity reorders a scored candidate pool so the final slate
// covers distinct topics and formats instead of near-duplicates of the
// single best match.
package diversity

import (
	"sort"
	"strings"

	"github.com/hyperjump/osusume/internal/models"
	"github.com/hyperjump/osusume/internal/vector"
)

// Selector picks a diverse top-k slate from a scored pool.
type Selector struct {
	config *DiversityConfig
}

// NewSelector creates a selector from the given config. A nil config
// uses the defaults; a partial config has its zero values filled in.
func NewSelector(config *DiversityConfig) *Selector {
	if config == nil {
		config = DefaultDiversityConfig()
	}
	config.ApplyDefaults()
	return &Selector{config: config}
}

// Select returns up to k candidates from the pool. The pool must arrive
// sorted best-first; the returned slate is re-sorted by total score and
// re-ranked. Selection is deterministic for equal inputs.
func (s *Selector) Select(pool []*models.ScoredCandidate, k int) []*models.ScoredCandidate {
	if k <= 0 || len(pool) == 0 {
		return nil
	}
	if len(pool) <= k {
		return s.finalize(append([]*models.ScoredCandidate(nil), pool...))
	}

	var selected []*models.ScoredCandidate
	if s.embeddedFraction(pool) >= s.config.MinEmbeddedFraction {
		selected = s.greedySelect(pool, k)
	} else {
		selected = s.rotateByType(pool, k)
	}

	selected = s.balanceContentTypes(selected, pool, k)
	return s.finalize(selected)
}

// embeddedFraction returns the share of the pool carrying embeddings.
func (s *Selector) embeddedFraction(pool []*models.ScoredCandidate) float64 {
	embedded := 0
	for _, cand := range pool {
		if len(cand.Item.Embedding) > 0 {
			embedded++
		}
	}
	return float64(embedded) / float64(len(pool))
}

// greedySelect runs maximal-marginal-relevance selection: the best
// candidate seeds the slate, then each round adds the candidate with the
// best blend of relevance and dissimilarity to everything picked so far.
func (s *Selector) greedySelect(pool []*models.ScoredCandidate, k int) []*models.ScoredCandidate {
	maxScore := pool[0].TotalScore
	if maxScore <= 0 {
		maxScore = 1
	}

	selected := make([]*models.ScoredCandidate, 0, k)
	picked := make([]bool, len(pool))

	selected = append(selected, pool[0])
	picked[0] = true

	for len(selected) < k {
		bestIdx := -1
		bestCombined := 0.0
		for i, cand := range pool {
			if picked[i] {
				continue
			}
			dissim := 1 - s.maxSimilarity(cand, selected)
			norm := cand.TotalScore / maxScore
			combined := s.config.SimilarityWeight*dissim + s.config.ScoreWeight*norm
			// Pool order is best-first, so a strict comparison keeps
			// the earlier (higher ranked) candidate on ties.
			if bestIdx == -1 || combined > bestCombined {
				bestIdx = i
				bestCombined = combined
			}
		}
		if bestIdx == -1 {
			break
		}
		selected = append(selected, pool[bestIdx])
		picked[bestIdx] = true
	}
	return selected
}

// maxSimilarity returns the highest similarity between cand and any
// already selected item. Items without embeddings contribute the
// configured neutral value.
func (s *Selector) maxSimilarity(cand *models.ScoredCandidate, selected []*models.ScoredCandidate) float64 {
	if len(cand.Item.Embedding) == 0 {
		return s.config.NeutralSimilarity
	}
	maxSim := 0.0
	for _, sel := range selected {
		if len(sel.Item.Embedding) == 0 {
			if s.config.NeutralSimilarity > maxSim {
				maxSim = s.config.NeutralSimilarity
			}
			continue
		}
		if sim := vector.CosineSimilarity(cand.Item.Embedding, sel.Item.Embedding); sim > maxSim {
			maxSim = sim
		}
	}
	return maxSim
}

// rotateByType is the fallback when too few items carry embeddings: it
// cycles across content types in score order so one format cannot fill
// the slate.
func (s *Selector) rotateByType(pool []*models.ScoredCandidate, k int) []*models.ScoredCandidate {
	byType := make(map[string][]*models.ScoredCandidate)
	var typeOrder []string
	for _, cand := range pool {
		ct := contentTypeOf(cand)
		if _, ok := byType[ct]; !ok {
			typeOrder = append(typeOrder, ct)
		}
		byType[ct] = append(byType[ct], cand)
	}

	selected := make([]*models.ScoredCandidate, 0, k)
	for len(selected) < k {
		progressed := false
		for _, ct := range typeOrder {
			if len(selected) >= k {
				break
			}
			if bucket := byType[ct]; len(bucket) > 0 {
				selected = append(selected, bucket[0])
				byType[ct] = bucket[1:]
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}
	return selected
}

// balanceContentTypes enforces the per-type cap on the slate, swapping
// excess items for the best remaining candidates of other types. When no
// other types remain the excess stays; an over-represented slate beats a
// short one.
func (s *Selector) balanceContentTypes(selected, pool []*models.ScoredCandidate, k int) []*models.ScoredCandidate {
	limit := s.typeCap(k)

	inSlate := make(map[string]bool, len(selected))
	for _, cand := range selected {
		inSlate[cand.Item.ID] = true
	}

	counts := make(map[string]int)
	kept := make([]*models.ScoredCandidate, 0, len(selected))
	var excess []*models.ScoredCandidate
	for _, cand := range selected {
		ct := contentTypeOf(cand)
		if counts[ct] >= limit {
			excess = append(excess, cand)
			continue
		}
		counts[ct]++
		kept = append(kept, cand)
	}
	if len(excess) == 0 {
		return selected
	}

	// Backfill from the pool in score order, still honoring the cap.
	for _, cand := range pool {
		if len(kept) >= k {
			break
		}
		if inSlate[cand.Item.ID] {
			continue
		}
		ct := contentTypeOf(cand)
		if counts[ct] >= limit {
			continue
		}
		counts[ct]++
		kept = append(kept, cand)
	}

	// Not enough variety in the pool; readmit the excess best-first.
	for _, cand := range excess {
		if len(kept) >= k {
			break
		}
		kept = append(kept, cand)
	}
	return kept
}

// typeCap scales the per-ten cap to the requested slate size, always
// allowing at least one item per type.
func (s *Selector) typeCap(k int) int {
	limit := (k*s.config.ContentTypeCapPerTen + 9) / 10
	if limit < 1 {
		limit = 1
	}
	return limit
}

// finalize orders the slate by total score with ID tiebreak and assigns
// final ranks.
func (s *Selector) finalize(selected []*models.ScoredCandidate) []*models.ScoredCandidate {
	sort.SliceStable(selected, func(i, j int) bool {
		if selected[i].TotalScore != selected[j].TotalScore {
			return selected[i].TotalScore > selected[j].TotalScore
		}
		return selected[i].Item.ID < selected[j].Item.ID
	})
	for i, cand := range selected {
		cand.Rank = i + 1
	}
	return selected
}

func contentTypeOf(cand *models.ScoredCandidate) string {
	if cand.Item.Annotation == nil {
		return "unknown"
	}
	ct := strings.ToLower(strings.TrimSpace(cand.Item.Annotation.ContentType))
	if ct == "" {
		return "unknown"
	}
	return ct
}
