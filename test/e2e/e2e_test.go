package e2e

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/osusume/internal/cache"
	"github.com/hyperjump/osusume/internal/config"
	"github.com/hyperjump/osusume/internal/embedding"
	"github.com/hyperjump/osusume/internal/keyword"
	"github.com/hyperjump/osusume/internal/models"
	"github.com/hyperjump/osusume/internal/recommend"
	"github.com/hyperjump/osusume/internal/storage"
)

const e2eDimensions = 32

func newEngine(t *testing.T) *recommend.Engine {
	t.Helper()

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Embedding.Dimensions = e2eDimensions

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "osusume.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	recall, err := keyword.NewMemoryBleveIndex()
	if err != nil {
		t.Fatalf("NewMemoryBleveIndex: %v", err)
	}
	t.Cleanup(func() { recall.Close() })

	resultCache, err := cache.NewBadgerCache("", nil)
	if err != nil {
		t.Fatalf("NewBadgerCache: %v", err)
	}
	t.Cleanup(func() { resultCache.Close() })

	return recommend.NewEngine(cfg, store, recall, resultCache, embedding.NewMockEmbedder(e2eDimensions), nil)
}

func seedEngine(t *testing.T, engine *recommend.Engine, corpus *Corpus) {
	t.Helper()
	ctx := context.Background()
	for _, input := range corpus.Items {
		if _, err := engine.IngestItem(ctx, input); err != nil {
			t.Fatalf("ingest %q: %v", input.ID, err)
		}
	}
}

func resultIDs(resp *models.RecommendResponse) []string {
	ids := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		ids = append(ids, r.Item.ID)
	}
	return ids
}

func TestE2E_GoalsSurfaceExpectedItems(t *testing.T) {
	engine := newEngine(t)
	corpus := BuildCorpus()
	seedEngine(t, engine, corpus)
	ctx := context.Background()

	t.Logf("seeded %d items; running %d goal test cases", len(corpus.Items), len(corpus.TestCases))

	for _, tc := range corpus.TestCases {
		t.Run(tc.Description, func(t *testing.T) {
			resp, err := engine.Recommend(ctx, &models.RecommendRequest{
				UserID:      tc.UserID,
				Description: tc.Query,
			})
			if err != nil {
				t.Fatalf("recommend failed: %v", err)
			}
			if len(resp.Results) == 0 {
				t.Fatal("no results")
			}
			ids := resultIDs(resp)
			if !containsAny(ids, tc.ExpectedItemIDs) {
				t.Errorf("goal %q: expected one of %v in slate, got %v",
					tc.Query, tc.ExpectedItemIDs, ids)
			}
			for i, r := range resp.Results {
				if r.Rank != i+1 {
					t.Errorf("rank at position %d = %d", i, r.Rank)
				}
				if r.Reason == "" {
					t.Errorf("item %s has no reason", r.Item.ID)
				}
			}
		})
	}
}

func TestE2E_SlateLimitsContentTypeRepeats(t *testing.T) {
	engine := newEngine(t)
	seedEngine(t, engine, BuildCorpus())

	resp, err := engine.Recommend(context.Background(), &models.RecommendRequest{
		UserID:      "alice",
		Description: "learn flask web development step by step",
		K:           10,
	})
	if err != nil {
		t.Fatalf("recommend failed: %v", err)
	}
	counts := map[string]int{}
	for _, r := range resp.Results {
		if r.Item.Annotation != nil {
			counts[r.Item.Annotation.ContentType]++
		}
	}
	for ct, n := range counts {
		if n > 3 {
			t.Errorf("content type %q appears %d times in a 10-item slate", ct, n)
		}
	}
}

func TestE2E_FeedbackPersonalizesFollowupQueries(t *testing.T) {
	engine := newEngine(t)
	corpus := BuildCorpus()
	seedEngine(t, engine, corpus)
	ctx := context.Background()

	first, err := engine.Recommend(ctx, &models.RecommendRequest{
		UserID:      "erin",
		Description: "learn flask web development step by step",
	})
	if err != nil {
		t.Fatalf("recommend failed: %v", err)
	}
	if first.Diagnostics.Personalized {
		t.Error("cold-start query should not be personalized")
	}

	// Enough positive signals to cross the cold-start threshold.
	for _, contentID := range []string{"flask-basics", "flask-basics-v1", "flask-blueprints", "react-hooks", "k8s-intro"} {
		err := engine.RecordFeedback(ctx, &models.FeedbackEvent{
			UserID:    "erin",
			ContentID: contentID,
			SessionID: first.SessionID,
			Type:      models.FeedbackCompleted,
		})
		if err != nil {
			t.Fatalf("record feedback %q: %v", contentID, err)
		}
	}

	second, err := engine.Recommend(ctx, &models.RecommendRequest{
		UserID:      "erin",
		Description: "learn flask web development step by step",
	})
	if err != nil {
		t.Fatalf("recommend failed: %v", err)
	}
	if second.Diagnostics.CacheHit {
		t.Error("feedback should have invalidated the cached slate")
	}
	if !second.Diagnostics.Personalized {
		t.Error("follow-up query should be personalized after feedback")
	}
}

func TestE2E_RepeatQueryServedFromCache(t *testing.T) {
	engine := newEngine(t)
	seedEngine(t, engine, BuildCorpus())
	ctx := context.Background()

	req := &models.RecommendRequest{UserID: "frank", Description: "understand react hooks tutorial"}
	first, err := engine.Recommend(ctx, req)
	if err != nil {
		t.Fatalf("recommend failed: %v", err)
	}
	second, err := engine.Recommend(ctx, req)
	if err != nil {
		t.Fatalf("recommend failed: %v", err)
	}
	if !second.Diagnostics.CacheHit {
		t.Error("repeat query should hit the response cache")
	}
	if second.SessionID != first.SessionID {
		t.Errorf("cached slate session = %q, want %q", second.SessionID, first.SessionID)
	}
}
