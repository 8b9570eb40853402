// Package integration exercises the full HTTP API against on-disk
// storage, cache, and recall index.
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/osusume/internal/cache"
	"github.com/hyperjump/osusume/internal/config"
	"github.com/hyperjump/osusume/internal/embedding"
	"github.com/hyperjump/osusume/internal/keyword"
	"github.com/hyperjump/osusume/internal/models"
	"github.com/hyperjump/osusume/internal/recommend"
	"github.com/hyperjump/osusume/internal/server"
	"github.com/hyperjump/osusume/internal/storage"
)

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Storage.DatabasePath = filepath.Join(dir, "osusume.db")
	cfg.Storage.CachePath = filepath.Join(dir, "cache")
	cfg.Storage.BleveIndexPath = filepath.Join(dir, "bleve")
	cfg.Embedding.Dimensions = 32

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	resultCache, err := cache.NewBadgerCache(cfg.Storage.CachePath, nil)
	if err != nil {
		t.Fatalf("NewBadgerCache: %v", err)
	}
	t.Cleanup(func() { resultCache.Close() })

	recall, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	t.Cleanup(func() { recall.Close() })

	embedder := embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	engine := recommend.NewEngine(cfg, store, recall, resultCache, embedder, zap.NewNop())

	ts := httptest.NewServer(server.NewServer(engine, cfg, zap.NewNop()).Router())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body interface{}, out interface{}) int {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestAPI_ItemRecommendFeedbackFlow(t *testing.T) {
	ts := newAPIServer(t)

	inputs := []*models.CandidateItemInput{
		{
			ID: "flask-tutorial", OwnerID: "curator",
			Title:   "Flask web development tutorial",
			RawText: "Learn to build web applications with Flask step by step.",
			Annotation: &models.Annotation{
				ContentType: "tutorial", Difficulty: "beginner",
				TechnologyTags: []string{"python", "flask"},
			},
		},
		{
			ID: "jvm-internals", OwnerID: "curator",
			Title:   "JVM memory internals",
			RawText: "Garbage collection and heap layout in the JVM.",
			Annotation: &models.Annotation{
				ContentType: "article", Difficulty: "advanced",
				TechnologyTags: []string{"java"},
			},
		},
	}
	for _, input := range inputs {
		var ack map[string]string
		if code := postJSON(t, ts.URL+"/api/v1/items", input, &ack); code != http.StatusCreated {
			t.Fatalf("ingest %q: status %d", input.ID, code)
		}
		if ack["id"] != input.ID {
			t.Errorf("ingest ack id = %q, want %q", ack["id"], input.ID)
		}
	}

	var rec models.RecommendResponse
	code := postJSON(t, ts.URL+"/api/v1/recommend", &models.RecommendRequest{
		UserID:      "alice",
		Description: "learn flask web development",
	}, &rec)
	if code != http.StatusOK {
		t.Fatalf("recommend: status %d", code)
	}
	if len(rec.Results) == 0 {
		t.Fatal("recommend returned no results")
	}
	if rec.Results[0].Item.ID != "flask-tutorial" {
		t.Errorf("top result = %q, want flask-tutorial", rec.Results[0].Item.ID)
	}

	var feedbackAck map[string]string
	code = postJSON(t, ts.URL+"/api/v1/feedback", &models.FeedbackEvent{
		UserID:    "alice",
		ContentID: "flask-tutorial",
		SessionID: rec.SessionID,
		Type:      models.FeedbackClicked,
	}, &feedbackAck)
	if code != http.StatusCreated {
		t.Fatalf("feedback: status %d", code)
	}
	if feedbackAck["id"] == "" {
		t.Error("feedback ack has no id")
	}

	resp, err := http.Get(ts.URL + "/api/v1/status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	defer resp.Body.Close()
	var status struct {
		Items          int64 `json:"items"`
		FeedbackEvents int64 `json:"feedback_events"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Items != 2 {
		t.Errorf("status items = %d, want 2", status.Items)
	}
	if status.FeedbackEvents != 1 {
		t.Errorf("status feedback_events = %d, want 1", status.FeedbackEvents)
	}
}

func TestAPI_DeleteRemovesItemEverywhere(t *testing.T) {
	ts := newAPIServer(t)

	input := &models.CandidateItemInput{
		ID: "doomed", OwnerID: "curator",
		Title: "Soon deleted", RawText: "This item will be removed.",
	}
	if code := postJSON(t, ts.URL+"/api/v1/items", input, nil); code != http.StatusCreated {
		t.Fatalf("ingest: status %d", code)
	}

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/items/doomed", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: status %d", resp.StatusCode)
	}

	getResp, err := http.Get(fmt.Sprintf("%s/api/v1/items/%s", ts.URL, "doomed"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	getResp.Body.Close()
	if getResp.StatusCode != http.StatusNotFound {
		t.Errorf("get deleted item: status %d, want 404", getResp.StatusCode)
	}
}
