package extractor

import (
	"reflect"
	"testing"

	"github.com/hyperjump/osusume/internal/models"
)

func TestExtract_TechnologyDetection(t *testing.T) {
	e := NewExtractor(nil)

	tests := []struct {
		name         string
		title        string
		description  string
		technologies string
		wantPrimary  []string
	}{
		{
			name:         "explicit technology list is always primary",
			title:        "Side project",
			description:  "A small experiment",
			technologies: "python, flask",
			wantPrimary:  []string{"flask", "python"},
		},
		{
			name:        "title mention clears primary threshold",
			title:       "Building a React dashboard",
			description: "A dashboard for internal metrics",
			wantPrimary: []string{"react"},
		},
		{
			name:         "synonyms resolve to canonical names",
			title:        "Deploying with k8s",
			technologies: "js",
			wantPrimary:  []string{"javascript", "kubernetes"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qc, degraded := e.Extract(tt.title, tt.description, tt.technologies, "")
			if degraded {
				t.Fatal("extraction unexpectedly degraded")
			}
			got := append([]string(nil), qc.PrimaryTechnologies...)
			// Compare as sets ordered alphabetically for stable assertions.
			want := map[string]bool{}
			for _, w := range tt.wantPrimary {
				want[w] = true
			}
			for _, g := range got {
				if !want[g] {
					t.Errorf("unexpected primary technology %q (got %v)", g, got)
				}
				delete(want, g)
			}
			for missing := range want {
				t.Errorf("missing primary technology %q (got %v)", missing, got)
			}
		})
	}
}

func TestExtract_MultiWordBeforeSingleWord(t *testing.T) {
	e := NewExtractor(nil)
	qc, _ := e.Extract("Intro to machine learning", "", "machine learning", "")

	for _, tech := range qc.PrimaryTechnologies {
		if tech == "learning" {
			t.Error("constituent word of a multi-word phrase leaked into technologies")
		}
	}
	found := false
	for _, tech := range qc.PrimaryTechnologies {
		if tech == "machine learning" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected machine learning in primaries, got %v", qc.PrimaryTechnologies)
	}
}

func TestExtract_Classification(t *testing.T) {
	e := NewExtractor(nil)

	tests := []struct {
		name           string
		title          string
		description    string
		wantDifficulty models.Difficulty
		wantIntent     models.Intent
	}{
		{
			name:           "beginner learning query",
			title:          "Getting started with Python basics",
			description:    "I have no prior knowledge and want to learn programming",
			wantDifficulty: models.DifficultyBeginner,
			wantIntent:     models.IntentLearning,
		},
		{
			name:           "advanced optimization query",
			title:          "Advanced PostgreSQL performance internals",
			description:    "Queries are too slow at scale, need to optimize the bottleneck",
			wantDifficulty: models.DifficultyAdvanced,
			wantIntent:     models.IntentOptimization,
		},
		{
			name:           "troubleshooting query",
			title:          "Fix broken Docker build",
			description:    "The image build keeps failing with an error, doesn't work anymore",
			wantDifficulty: models.DifficultyUnknown,
			wantIntent:     models.IntentTroubleshooting,
		},
		{
			name:           "no signal falls back to unknown and general",
			title:          "Stuff",
			description:    "various things",
			wantDifficulty: models.DifficultyUnknown,
			wantIntent:     models.IntentGeneral,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qc, _ := e.Extract(tt.title, tt.description, "", "")
			if qc.Difficulty != tt.wantDifficulty {
				t.Errorf("difficulty = %v, want %v", qc.Difficulty, tt.wantDifficulty)
			}
			if qc.Intent != tt.wantIntent {
				t.Errorf("intent = %v, want %v", qc.Intent, tt.wantIntent)
			}
		})
	}
}

func TestExtract_Idempotent(t *testing.T) {
	e := NewExtractor(nil)
	a, _ := e.Extract("Build a Go API", "REST service with postgres", "go, postgresql", "distributed systems")
	b, _ := e.Extract("Build a Go API", "REST service with postgres", "go, postgresql", "distributed systems")
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs produced different contexts")
	}
}

func TestExtract_EmptyDescriptionWithTechnologies(t *testing.T) {
	e := NewExtractor(nil)
	qc, degraded := e.Extract("", "", "rust, kubernetes", "")
	if degraded {
		t.Fatal("extraction unexpectedly degraded")
	}
	if len(qc.PrimaryTechnologies) == 0 {
		t.Fatal("expected technologies to become the dominant signal")
	}
	if qc.Confidence <= 0.2 {
		t.Errorf("explicit technologies should raise confidence, got %v", qc.Confidence)
	}
}

func TestExtract_BoundedScores(t *testing.T) {
	e := NewExtractor(nil)
	long := "kubernetes machine learning distributed microservices consensus sharding " +
		"concurrency observability event sourcing cqrs high availability low latency "
	for i := 0; i < 4; i++ {
		long += long
	}
	qc, _ := e.Extract("Advanced distributed systems", long, "kubernetes, kafka", "")
	if qc.Complexity < 0 || qc.Complexity > 1 {
		t.Errorf("complexity out of range: %v", qc.Complexity)
	}
	if qc.Confidence < 0 || qc.Confidence > 1 {
		t.Errorf("confidence out of range: %v", qc.Confidence)
	}
	if qc.Complexity < 0.5 {
		t.Errorf("heavy advanced-term text should score high complexity, got %v", qc.Complexity)
	}
}

func TestExtract_ImplicitRequirements(t *testing.T) {
	e := NewExtractor(nil)
	qc, _ := e.Extract("React app", "", "react", "")
	if len(qc.ImplicitRequirements) == 0 {
		t.Fatal("expected implicit requirements for a frontend framework")
	}
	found := false
	for _, r := range qc.ImplicitRequirements {
		if r == "javascript/typescript knowledge" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected javascript/typescript implication, got %v", qc.ImplicitRequirements)
	}
}

func TestFallbackContext(t *testing.T) {
	e := NewExtractor(nil)
	qc := e.fallbackContext("My project", "something with data", "python", "")
	if len(qc.PrimaryTechnologies) != 1 || qc.PrimaryTechnologies[0] != "python" {
		t.Errorf("fallback primaries = %v, want [python]", qc.PrimaryTechnologies)
	}
	if qc.Confidence >= 0.2 {
		t.Errorf("fallback confidence should be low, got %v", qc.Confidence)
	}
	if qc.Intent != models.IntentGeneral || qc.Difficulty != models.DifficultyUnknown {
		t.Error("fallback should use neutral labels")
	}
}
