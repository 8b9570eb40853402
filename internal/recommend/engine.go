// Package recommend orchestrates the ranking pipeline: context
// extraction, candidate scoring, personalization, diversity selection
// and response caching.
package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/osusume/internal/cache"
	"github.com/hyperjump/osusume/internal/config"
	"github.com/hyperjump/osusume/internal/diversity"
	"github.com/hyperjump/osusume/internal/embedding"
	"github.com/hyperjump/osusume/internal/extractor"
	"github.com/hyperjump/osusume/internal/keyword"
	"github.com/hyperjump/osusume/internal/models"
	"github.com/hyperjump/osusume/internal/personalize"
	"github.com/hyperjump/osusume/internal/scoring"
	"github.com/hyperjump/osusume/internal/storage"
)

// Engine runs the recommendation pipeline. The cache, recall index and
// embedder are optional; each missing collaborator degrades one stage
// instead of failing requests.
type Engine struct {
	cfg      config.RecommendConfig
	store    storage.Storage
	recall   keyword.RecallIndex
	cache    cache.Cache
	embedder embedding.Embedder
	extract  *extractor.Extractor
	profiler *personalize.Profiler
	logger   *zap.Logger

	// mu guards scorer and selector, swapped on config reload.
	mu       sync.RWMutex
	scorer   *scoring.Scorer
	selector *diversity.Selector
}

// NewEngine wires the pipeline components together.
func NewEngine(cfg *config.Config, store storage.Storage, recall keyword.RecallIndex, resultCache cache.Cache, embedder embedding.Embedder, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	scoringCfg := cfg.Scoring
	diversityCfg := cfg.Diversity
	personalizationCfg := cfg.Personalization

	return &Engine{
		cfg:      cfg.Recommend,
		store:    store,
		recall:   recall,
		cache:    resultCache,
		embedder: embedder,
		extract:  extractor.NewExtractor(logger),
		profiler: personalize.NewProfiler(&personalizationCfg, store, store, logger),
		logger:   logger,
		scorer:   scoring.NewScorer(&scoringCfg),
		selector: diversity.NewSelector(&diversityCfg),
	}
}

// ApplyConfig swaps in reloaded scoring and diversity settings.
// In-flight requests keep the components they already picked up.
func (e *Engine) ApplyConfig(cfg *config.Config) {
	scoringCfg := cfg.Scoring
	diversityCfg := cfg.Diversity

	e.mu.Lock()
	e.scorer = scoring.NewScorer(&scoringCfg)
	e.selector = diversity.NewSelector(&diversityCfg)
	e.mu.Unlock()

	e.logger.Info("scoring configuration applied",
		zap.Float64("technology_budget", scoringCfg.TechnologyBudget),
		zap.Float64("max_total", scoringCfg.MaxTotal()))
}

func (e *Engine) components() (*scoring.Scorer, *diversity.Selector) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scorer, e.selector
}

// Recommend ranks candidates for the request and returns a diverse,
// personalized top-k slate.
func (e *Engine) Recommend(ctx context.Context, req *models.RecommendRequest) (*models.RecommendResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.ClampK(e.cfg.DefaultK, e.cfg.MaxK)
	start := time.Now()

	queryHash := models.HashText(req.QueryText())

	if resp := e.cachedResponse(ctx, req.UserID, queryHash); resp != nil {
		return resp, nil
	}

	qctx, diag := e.queryContext(ctx, req, queryHash)

	pool, err := e.candidatePool(ctx, req, qctx)
	if err != nil {
		return nil, err
	}

	scorer, selector := e.components()

	batch := scorer.ScoreBatch(ctx, pool, qctx, req.UserID, e.logger)
	diag.PoolSize = len(batch.Scored)
	diag.SkippedCandidates = batch.Skipped

	diag.Personalized = e.personalizeScores(ctx, req.UserID, batch.Scored, scorer.MaxScore())

	results := selector.Select(batch.Scored, req.K)

	diag.QueryTimeMs = time.Since(start).Milliseconds()
	resp := &models.RecommendResponse{
		SessionID:   uuid.New().String(),
		Results:     results,
		Context:     qctx,
		Diagnostics: diag,
	}

	e.storeResponse(ctx, req.UserID, queryHash, resp)
	return resp, nil
}

// cachedResponse returns a still-fresh response for the same user and
// query, or nil. Cache errors are logged and treated as misses.
func (e *Engine) cachedResponse(ctx context.Context, userID, queryHash string) *models.RecommendResponse {
	if e.cache == nil {
		return nil
	}
	data, err := e.cache.Get(ctx, cache.RecommendationKey(userID, queryHash))
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			e.logger.Warn("response cache read failed", zap.Error(err))
		}
		return nil
	}
	var resp models.RecommendResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		e.logger.Warn("cached response corrupt, recomputing", zap.Error(err))
		return nil
	}
	resp.Diagnostics.CacheHit = true
	return &resp
}

func (e *Engine) storeResponse(ctx context.Context, userID, queryHash string, resp *models.RecommendResponse) {
	if e.cache == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		e.logger.Warn("response marshal failed", zap.Error(err))
		return
	}
	if err := e.cache.Set(ctx, cache.RecommendationKey(userID, queryHash), data, e.cfg.ResponseCacheTTL); err != nil {
		e.logger.Warn("response cache write failed", zap.Error(err))
	}
}

// queryContext extracts (or loads from cache) the query context and
// attaches the query embedding when an embedder is available.
func (e *Engine) queryContext(ctx context.Context, req *models.RecommendRequest, queryHash string) (*models.QueryContext, models.Diagnostics) {
	var diag models.Diagnostics

	if cached := e.cachedContext(ctx, queryHash); cached != nil {
		// Embeddings are not serialized with the context, so a cache
		// hit recomputes only the vector.
		e.embedContext(ctx, cached, &diag)
		return cached, diag
	}

	qctx, degraded := e.extract.Extract(req.Title, req.Description, req.TechnologiesText, req.InterestsText)
	diag.ExtractionDegraded = degraded
	qctx.SourceHash = queryHash

	e.embedContext(ctx, qctx, &diag)
	e.storeContext(ctx, queryHash, qctx)
	return qctx, diag
}

func (e *Engine) embedContext(ctx context.Context, qctx *models.QueryContext, diag *models.Diagnostics) {
	if e.embedder == nil || len(qctx.Embedding) > 0 {
		return
	}
	emb, err := e.embedder.Embed(ctx, qctx.AnalysisText())
	if err != nil {
		diag.EmbeddingUnavailable = true
		e.logger.Warn("query embedding unavailable", zap.Error(err))
		return
	}
	qctx.Embedding = emb
}

func (e *Engine) cachedContext(ctx context.Context, queryHash string) *models.QueryContext {
	if e.cache == nil {
		return nil
	}
	data, err := e.cache.Get(ctx, cache.ContextKey(queryHash))
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			e.logger.Warn("context cache read failed", zap.Error(err))
		}
		return nil
	}
	var qctx models.QueryContext
	if err := json.Unmarshal(data, &qctx); err != nil {
		return nil
	}
	return &qctx
}

func (e *Engine) storeContext(ctx context.Context, queryHash string, qctx *models.QueryContext) {
	if e.cache == nil {
		return
	}
	data, err := json.Marshal(qctx)
	if err != nil {
		return
	}
	if err := e.cache.Set(ctx, cache.ContextKey(queryHash), data, e.cfg.ContextCacheTTL); err != nil {
		e.logger.Warn("context cache write failed", zap.Error(err))
	}
}

// candidatePool returns the caller's candidates, or recalls a pool from
// stored items when none were supplied.
func (e *Engine) candidatePool(ctx context.Context, req *models.RecommendRequest, qctx *models.QueryContext) ([]*models.CandidateItem, error) {
	if len(req.Candidates) > 0 {
		return req.Candidates, nil
	}
	if e.store == nil {
		return nil, fmt.Errorf("no candidates supplied and no item store configured")
	}

	if e.recall != nil {
		pool, err := e.recallPool(ctx, req, qctx)
		if err != nil {
			e.logger.Warn("recall failed, falling back to recent items", zap.Error(err))
		} else if len(pool) > 0 {
			return pool, nil
		}
	}

	return e.store.ListItems(ctx, 0, e.cfg.PoolLimit)
}

func (e *Engine) recallPool(ctx context.Context, req *models.RecommendRequest, qctx *models.QueryContext) ([]*models.CandidateItem, error) {
	query := qctx.AnalysisText()
	hits, err := e.recall.Search(ctx, query, e.cfg.PoolLimit, &keyword.SearchOptions{
		TitleBoost:   e.cfg.RecallTitleBoost,
		FuzzyEnabled: e.cfg.RecallFuzzy,
	})
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	ids := make([]string, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ID
	}
	found, err := e.store.GetItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Preserve recall order; the scorer re-ranks anyway but a stable
	// input keeps runs reproducible.
	pool := make([]*models.CandidateItem, 0, len(found))
	for _, id := range ids {
		if item, ok := found[id]; ok {
			pool = append(pool, item)
		}
	}
	return pool, nil
}

// personalizeScores learns the user's profile and rescales the pool.
// Any failure leaves the base ranking intact.
func (e *Engine) personalizeScores(ctx context.Context, userID string, scored []*models.ScoredCandidate, maxScore float64) bool {
	profile, err := e.profiler.Learn(ctx, userID)
	if err != nil {
		e.logger.Warn("personalization unavailable", zap.String("user_id", userID), zap.Error(err))
		return false
	}
	return e.profiler.Apply(scored, profile, maxScore)
}

// RecordFeedback appends a feedback event and invalidates everything it
// influences: the user's profile and their cached responses.
func (e *Engine) RecordFeedback(ctx context.Context, event *models.FeedbackEvent) error {
	if event.UserID == "" {
		return fmt.Errorf("user_id cannot be empty")
	}
	if event.ContentID == "" {
		return fmt.Errorf("content_id cannot be empty")
	}
	if !event.Type.Valid() {
		return fmt.Errorf("unknown feedback type %q", event.Type)
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	if err := e.store.AppendFeedback(ctx, event); err != nil {
		return err
	}

	e.profiler.Invalidate(event.UserID)
	if e.cache != nil {
		if err := e.cache.DeletePrefix(ctx, cache.UserRecommendationPrefix(event.UserID)); err != nil {
			e.logger.Warn("response cache invalidation failed", zap.Error(err))
		}
	}
	return nil
}

// IngestItem stores a new or updated candidate item, embeds its text,
// indexes it for recall, and invalidates cached responses that may now
// be stale.
func (e *Engine) IngestItem(ctx context.Context, input *models.CandidateItemInput) (*models.CandidateItem, error) {
	if input.Title == "" && input.RawText == "" {
		return nil, fmt.Errorf("item needs a title or text")
	}

	item := &models.CandidateItem{
		ID:           input.ID,
		OwnerID:      input.OwnerID,
		Title:        input.Title,
		RawText:      input.RawText,
		URL:          input.URL,
		QualityScore: input.QualityScore,
		Annotation:   input.Annotation,
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	if e.embedder != nil {
		emb, err := e.embedder.Embed(ctx, item.SearchText())
		if err != nil {
			e.logger.Warn("item embedding unavailable", zap.String("id", item.ID), zap.Error(err))
		} else {
			item.Embedding = emb
		}
	}

	if err := e.store.UpsertItem(ctx, item); err != nil {
		return nil, err
	}

	if e.recall != nil {
		if err := e.recall.Index(ctx, item); err != nil {
			e.logger.Warn("recall indexing failed", zap.String("id", item.ID), zap.Error(err))
		}
	}

	if e.cache != nil {
		if err := e.cache.DeletePrefix(ctx, cache.RecommendationPrefix()); err != nil {
			e.logger.Warn("response cache invalidation failed", zap.Error(err))
		}
	}

	return item, nil
}

// DeleteItem removes an item from storage and recall and invalidates
// cached responses that may still reference it.
func (e *Engine) DeleteItem(ctx context.Context, id string) error {
	if err := e.store.DeleteItem(ctx, id); err != nil {
		return err
	}
	if e.recall != nil {
		if err := e.recall.Delete(ctx, id); err != nil {
			e.logger.Warn("recall delete failed", zap.String("id", id), zap.Error(err))
		}
	}
	if e.cache != nil {
		if err := e.cache.DeletePrefix(ctx, cache.RecommendationPrefix()); err != nil {
			e.logger.Warn("response cache invalidation failed", zap.Error(err))
		}
	}
	return nil
}

// GetItem returns a stored item by ID.
func (e *Engine) GetItem(ctx context.Context, id string) (*models.CandidateItem, error) {
	return e.store.GetItem(ctx, id)
}

// Status reports corpus counts for the status endpoint.
func (e *Engine) Status(ctx context.Context) (items, feedback int64, err error) {
	items, err = e.store.CountItems(ctx)
	if err != nil {
		return 0, 0, err
	}
	feedback, err = e.store.CountFeedback(ctx)
	if err != nil {
		return 0, 0, err
	}
	return items, feedback, nil
}
