package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/osusume/internal/models"
)

func sampleResponse() *models.RecommendResponse {
	return &models.RecommendResponse{
		SessionID: "sess-1",
		Results: []*models.ScoredCandidate{
			{
				Item: &models.CandidateItem{
					ID:      "item-1",
					Title:   "Flask Tutorial",
					RawText: "A step by step introduction to Flask routing.",
					URL:     "https://example.com/flask",
				},
				SubScores:  models.SubScores{Technology: 30, ContentType: 20, Difficulty: 15, Intent: 15, Semantic: 10},
				TotalScore: 90,
				Reason:     "covers python, flask",
				Rank:       1,
			},
			{
				Item:       &models.CandidateItem{ID: "item-2", RawText: "JVM internals deep dive."},
				SubScores:  models.SubScores{Technology: 4.5},
				TotalScore: 20,
				Rank:       2,
			},
		},
		Context: &models.QueryContext{
			PrimaryTechnologies: []string{"python", "flask"},
			IntentLabel:         "learning",
			DifficultyLabel:     "beginner",
			Confidence:          0.8,
		},
		Diagnostics: models.Diagnostics{QueryTimeMs: 12},
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"compact", OutputCompact, false},
		{"json", OutputJSON, false},
		{"yaml", OutputText, true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOutputFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteRecommendationsText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRecommendations(&buf, sampleResponse(), OutputText); err != nil {
		t.Fatalf("WriteRecommendations: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"2 recommendations in 12ms",
		"technologies: python, flask",
		"intent: learning | difficulty: beginner",
		"Title: Flask Tutorial",
		"Why: covers python, flask",
		"Rank: 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteRecommendationsCompact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRecommendations(&buf, sampleResponse(), OutputCompact); err != nil {
		t.Fatalf("WriteRecommendations: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("compact output has %d lines, want 2:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "1\t90.00\titem-1\tFlask Tutorial") {
		t.Errorf("unexpected first line: %q", lines[0])
	}
	// Untitled items fall back to truncated raw text.
	if !strings.Contains(lines[1], "JVM internals") {
		t.Errorf("unexpected second line: %q", lines[1])
	}
}

func TestWriteRecommendationsJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRecommendations(&buf, sampleResponse(), OutputJSON); err != nil {
		t.Fatalf("WriteRecommendations: %v", err)
	}
	var decoded models.RecommendResponse
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("json output does not decode: %v", err)
	}
	if decoded.SessionID != "sess-1" || len(decoded.Results) != 2 {
		t.Errorf("round trip lost data: session=%q results=%d", decoded.SessionID, len(decoded.Results))
	}
}
