package scoring

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/hyperjump/osusume/internal/models"
)

func newItem(id string, tags []string, contentType, difficulty string) *models.CandidateItem {
	return &models.CandidateItem{
		ID:    id,
		Title: "Untitled",
		Annotation: &models.Annotation{
			ContentType:    contentType,
			Difficulty:     difficulty,
			TechnologyTags: tags,
		},
	}
}

func learningContext() *models.QueryContext {
	return &models.QueryContext{
		PrimaryTechnologies: []string{"python", "flask"},
		ContentTypesNeeded:  []string{"tutorial"},
		Difficulty:          models.DifficultyBeginner,
		DifficultyLabel:     "beginner",
		Intent:              models.IntentLearning,
		IntentLabel:         "learning",
	}
}

func TestScoreSubScoresWithinBudgets(t *testing.T) {
	scorer := NewScorer(nil)
	cfg := scorer.Config()

	items := []*models.CandidateItem{
		newItem("a", []string{"python", "flask"}, "tutorial", "beginner"),
		newItem("b", []string{"java"}, "article", "advanced"),
		{ID: "c", Title: "Bare item"},
		{ID: "d", Title: "Vectors", Embedding: []float32{1, 0, 0}},
	}

	qctx := learningContext()
	qctx.Embedding = []float32{0, 1, 0}

	for _, item := range items {
		sc := scorer.Score(item, qctx, "")
		sub := sc.SubScores
		checks := []struct {
			name   string
			score  float64
			budget float64
		}{
			{"technology", sub.Technology, cfg.TechnologyBudget},
			{"content_type", sub.ContentType, cfg.ContentTypeBudget},
			{"difficulty", sub.Difficulty, cfg.DifficultyBudget},
			{"intent", sub.Intent, cfg.IntentBudget},
			{"semantic", sub.Semantic, cfg.SemanticBudget},
		}
		for _, c := range checks {
			if c.score < 0 || c.score > c.budget {
				t.Errorf("item %s: %s score %.2f outside [0, %.0f]", item.ID, c.name, c.score, c.budget)
			}
		}
		if got, want := sc.TotalScore, sub.Total(); math.Abs(got-want) > 1e-9 {
			t.Errorf("item %s: total %.4f != sum of sub-scores %.4f", item.ID, got, want)
		}
	}
}

func TestScoreLearningQueryPrefersMatchingTutorial(t *testing.T) {
	scorer := NewScorer(nil)
	qctx := learningContext()

	match := newItem("match", []string{"python", "flask"}, "tutorial", "beginner")
	match.Title = "Learn Flask from the ground up"
	offTopic := newItem("off", []string{"java"}, "article", "advanced")
	offTopic.Title = "JVM memory internals"

	scMatch := scorer.Score(match, qctx, "")
	scOff := scorer.Score(offTopic, qctx, "")

	if scMatch.SubScores.Technology != scorer.Config().TechnologyBudget {
		t.Errorf("full tag overlap: technology = %.2f, want %.0f",
			scMatch.SubScores.Technology, scorer.Config().TechnologyBudget)
	}
	if scMatch.SubScores.Difficulty != scorer.Config().DifficultyBudget {
		t.Errorf("exact difficulty: score = %.2f, want %.0f",
			scMatch.SubScores.Difficulty, scorer.Config().DifficultyBudget)
	}
	if scMatch.SubScores.ContentType != scorer.Config().ContentTypeBudget {
		t.Errorf("requested content type: score = %.2f, want %.0f",
			scMatch.SubScores.ContentType, scorer.Config().ContentTypeBudget)
	}
	if scMatch.TotalScore <= scOff.TotalScore {
		t.Errorf("matching tutorial (%.2f) should outrank off-topic item (%.2f)",
			scMatch.TotalScore, scOff.TotalScore)
	}
}

func TestScoreExclusiveLanguagePenalty(t *testing.T) {
	scorer := NewScorer(nil)
	qctx := &models.QueryContext{
		PrimaryTechnologies: []string{"javascript"},
		Intent:              models.IntentGeneral,
	}

	javaItem := newItem("java-item", []string{"java"}, "", "")
	sc := scorer.Score(javaItem, qctx, "")

	// Zero overlap floors at 0.15 of the budget, then the java/javascript
	// pair applies the 0.4 penalty.
	want := 30 * 0.15 * 0.4
	if math.Abs(sc.SubScores.Technology-want) > 1e-9 {
		t.Errorf("technology = %.4f, want %.4f", sc.SubScores.Technology, want)
	}

	// Tagging the item with the context's own language lifts the penalty.
	bothItem := newItem("both-item", []string{"java", "javascript"}, "", "")
	scBoth := scorer.Score(bothItem, qctx, "")
	if scBoth.SubScores.Technology <= sc.SubScores.Technology {
		t.Errorf("adding the context language should raise the score: %.4f <= %.4f",
			scBoth.SubScores.Technology, sc.SubScores.Technology)
	}
}

func TestScoreTechnologyMonotonic(t *testing.T) {
	scorer := NewScorer(nil)
	qctx := learningContext()

	partial := newItem("p", []string{"python"}, "", "")
	full := newItem("f", []string{"python", "flask"}, "", "")

	scPartial := scorer.Score(partial, qctx, "")
	scFull := scorer.Score(full, qctx, "")

	if scFull.SubScores.Technology < scPartial.SubScores.Technology {
		t.Errorf("adding a matching tag lowered the score: %.2f -> %.2f",
			scPartial.SubScores.Technology, scFull.SubScores.Technology)
	}
}

func TestScoreMissingDataDegradesToNeutral(t *testing.T) {
	scorer := NewScorer(nil)
	cfg := scorer.Config()
	qctx := &models.QueryContext{Intent: models.IntentGeneral}

	bare := &models.CandidateItem{ID: "bare", Title: ""}
	sc := scorer.Score(bare, qctx, "")

	if want := cfg.TechnologyBudget * cfg.TechNeutralFraction; sc.SubScores.Technology != want {
		t.Errorf("technology = %.2f, want neutral %.2f", sc.SubScores.Technology, want)
	}
	if want := cfg.ContentTypeBudget * cfg.ContentTypeDefaultFraction; sc.SubScores.ContentType != want {
		t.Errorf("content_type = %.2f, want default %.2f", sc.SubScores.ContentType, want)
	}
	if sc.SubScores.Difficulty != cfg.DifficultyNeutral {
		t.Errorf("difficulty = %.2f, want neutral %.2f", sc.SubScores.Difficulty, cfg.DifficultyNeutral)
	}
	if want := cfg.SemanticBudget * cfg.SemanticNeutralFraction; sc.SubScores.Semantic != want {
		t.Errorf("semantic = %.2f, want neutral %.2f", sc.SubScores.Semantic, want)
	}
}

func TestScoreOwnerBoost(t *testing.T) {
	scorer := NewScorer(nil)
	qctx := learningContext()

	item := newItem("owned", []string{"python"}, "tutorial", "beginner")
	item.OwnerID = "user-1"

	asOwner := scorer.Score(item, qctx, "user-1")
	asOther := scorer.Score(item, qctx, "user-2")

	want := asOther.TotalScore * scorer.Config().OwnerBoost
	if math.Abs(asOwner.TotalScore-want) > 1e-9 {
		t.Errorf("owner total = %.4f, want %.4f", asOwner.TotalScore, want)
	}
	if asOwner.OriginalScore != asOwner.TotalScore {
		t.Errorf("OriginalScore should track the pre-personalization total")
	}
}

func TestScoreSemanticUsesCosine(t *testing.T) {
	scorer := NewScorer(nil)
	qctx := learningContext()
	qctx.Embedding = []float32{1, 0, 0}

	aligned := &models.CandidateItem{ID: "al", Embedding: []float32{1, 0, 0}}
	orthogonal := &models.CandidateItem{ID: "or", Embedding: []float32{0, 1, 0}}

	if got := scorer.Score(aligned, qctx, "").SubScores.Semantic; math.Abs(got-20) > 1e-6 {
		t.Errorf("identical embeddings: semantic = %.4f, want 20", got)
	}
	if got := scorer.Score(orthogonal, qctx, "").SubScores.Semantic; math.Abs(got) > 1e-6 {
		t.Errorf("orthogonal embeddings: semantic = %.4f, want 0", got)
	}
}

func TestBuildReason(t *testing.T) {
	scorer := NewScorer(nil)

	t.Run("names matched technologies", func(t *testing.T) {
		qctx := learningContext()
		item := newItem("m", []string{"python", "flask"}, "tutorial", "beginner")
		item.Title = "Learn Flask properly"

		sc := scorer.Score(item, qctx, "")
		if !strings.Contains(sc.Reason, "covers python, flask") {
			t.Errorf("reason %q should name the matched technologies", sc.Reason)
		}
		if !strings.Contains(sc.Reason, "tutorial format") {
			t.Errorf("reason %q should mention the requested format", sc.Reason)
		}
	})

	t.Run("falls back when nothing stands out", func(t *testing.T) {
		qctx := learningContext()
		item := newItem("w", []string{"java"}, "article", "advanced")
		item.Title = "JVM memory internals"

		sc := scorer.Score(item, qctx, "")
		if sc.Reason != genericReason {
			t.Errorf("reason = %q, want generic fallback", sc.Reason)
		}
	})
}

func TestScoreBatchDeterministicOrder(t *testing.T) {
	scorer := NewScorer(nil)
	qctx := learningContext()

	// Two identical items tie on score; ID breaks the tie.
	items := []*models.CandidateItem{
		newItem("b-twin", []string{"python"}, "tutorial", "beginner"),
		newItem("a-twin", []string{"python"}, "tutorial", "beginner"),
		newItem("strong", []string{"python", "flask"}, "tutorial", "beginner"),
	}

	for i := 0; i < 3; i++ {
		result := scorer.ScoreBatch(context.Background(), items, qctx, "", nil)
		if result.Skipped != 0 {
			t.Fatalf("skipped = %d, want 0", result.Skipped)
		}
		if len(result.Scored) != 3 {
			t.Fatalf("scored %d candidates, want 3", len(result.Scored))
		}
		gotIDs := []string{result.Scored[0].Item.ID, result.Scored[1].Item.ID, result.Scored[2].Item.ID}
		wantIDs := []string{"strong", "a-twin", "b-twin"}
		for j := range wantIDs {
			if gotIDs[j] != wantIDs[j] {
				t.Fatalf("run %d: order = %v, want %v", i, gotIDs, wantIDs)
			}
		}
		for j, sc := range result.Scored {
			if sc.Rank != j+1 {
				t.Errorf("rank[%d] = %d, want %d", j, sc.Rank, j+1)
			}
		}
	}
}

func TestScoreBatchSkipsPanickingCandidate(t *testing.T) {
	scorer := NewScorer(nil)
	qctx := learningContext()

	items := []*models.CandidateItem{
		newItem("ok", []string{"python"}, "tutorial", "beginner"),
		nil,
	}

	result := scorer.ScoreBatch(context.Background(), items, qctx, "", nil)
	if result.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", result.Skipped)
	}
	if len(result.Scored) != 1 || result.Scored[0].Item.ID != "ok" {
		t.Errorf("the healthy candidate should survive the batch")
	}
}

func TestScoreBatchEmpty(t *testing.T) {
	scorer := NewScorer(nil)
	result := scorer.ScoreBatch(context.Background(), nil, learningContext(), "", nil)
	if len(result.Scored) != 0 || result.Skipped != 0 {
		t.Errorf("empty input should produce an empty result")
	}
}
