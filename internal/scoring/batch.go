package scoring

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/hyperjump/osusume/internal/models"
)

// BatchResult holds the scored pool plus how many candidates were
// dropped because scoring them panicked.
type BatchResult struct {
	Scored  []*models.ScoredCandidate
	Skipped int
}

// ScoreBatch scores every candidate concurrently and returns them
// sorted by total score descending, ties broken by item ID ascending
// so equal inputs always produce the same order. A candidate whose
// scoring panics is skipped and counted, never failing the batch.
func (s *Scorer) ScoreBatch(ctx context.Context, candidates []*models.CandidateItem, qctx *models.QueryContext, requestUserID string, logger *zap.Logger) *BatchResult {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(candidates) == 0 {
		return &BatchResult{}
	}

	workers := runtime.NumCPU()
	if workers > len(candidates) {
		workers = len(candidates)
	}

	scored := make([]*models.ScoredCandidate, len(candidates))
	var skipped atomic.Int64

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				scored[i] = s.scoreOne(candidates[i], qctx, requestUserID, &skipped, logger)
			}
		}()
	}

	for i := range candidates {
		select {
		case <-ctx.Done():
			// Stop handing out work but let in-flight scores
			// finish so the slice stays consistent.
			close(jobs)
			wg.Wait()
			return s.collect(scored, skipped.Load())
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return s.collect(scored, skipped.Load())
}

// scoreOne wraps a single Score call so a panic on one malformed
// candidate is contained.
func (s *Scorer) scoreOne(item *models.CandidateItem, qctx *models.QueryContext, requestUserID string, skipped *atomic.Int64, logger *zap.Logger) (result *models.ScoredCandidate) {
	id := ""
	if item != nil {
		id = item.ID
	}
	defer func() {
		if r := recover(); r != nil {
			skipped.Add(1)
			logger.Warn("candidate scoring panicked, skipping",
				zap.String("content_id", id),
				zap.Any("panic", r))
			result = nil
		}
	}()
	return s.Score(item, qctx, requestUserID)
}

func (s *Scorer) collect(scored []*models.ScoredCandidate, skipped int64) *BatchResult {
	out := make([]*models.ScoredCandidate, 0, len(scored))
	for _, sc := range scored {
		if sc != nil {
			out = append(out, sc)
		}
	}
	SortByScore(out)
	for i, sc := range out {
		sc.Rank = i + 1
	}
	return &BatchResult{Scored: out, Skipped: int(skipped)}
}

// SortByScore orders candidates by total score descending with item ID
// as a deterministic tiebreaker.
func SortByScore(scored []*models.ScoredCandidate) {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].TotalScore != scored[j].TotalScore {
			return scored[i].TotalScore > scored[j].TotalScore
		}
		return scored[i].Item.ID < scored[j].Item.ID
	})
}
