// Package cli provides CLI output helpers for Osusume.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/osusume/internal/models"
	"github.com/hyperjump/osusume/pkg/utils"
)

// OutputFormat is the format for recommendation output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact is one result per line, for piping into other tools.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat maps a flag value onto an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch s {
	case "", "text":
		return OutputText, nil
	case "compact":
		return OutputCompact, nil
	case "json":
		return OutputJSON, nil
	default:
		return OutputText, fmt.Errorf("unknown output format %q; use text, compact, or json", s)
	}
}

// WriteRecommendations writes a ranked slate to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteRecommendations(w io.Writer, response *models.RecommendResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		writeRecommendationsCompact(w, response)
		return nil
	default:
		writeRecommendationsText(w, response)
		return nil
	}
}

func writeRecommendationsText(w io.Writer, response *models.RecommendResponse) {
	fmt.Fprintf(w, "\n%d recommendations in %dms (session %s)\n",
		len(response.Results), response.Diagnostics.QueryTimeMs, response.SessionID)
	if response.Context != nil {
		writeContextSummary(w, response.Context)
	}
	if response.Diagnostics.CacheHit {
		fmt.Fprintln(w, "(served from cache)")
	}
	fmt.Fprintln(w)
	for _, result := range response.Results {
		writeOneResult(w, result)
	}
}

func writeContextSummary(w io.Writer, qctx *models.QueryContext) {
	if len(qctx.PrimaryTechnologies) > 0 {
		fmt.Fprintf(w, "technologies: %s\n", strings.Join(qctx.PrimaryTechnologies, ", "))
	}
	fmt.Fprintf(w, "intent: %s | difficulty: %s | confidence: %.2f\n",
		qctx.IntentLabel, qctx.DifficultyLabel, qctx.Confidence)
}

func writeOneResult(w io.Writer, result *models.ScoredCandidate) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "Rank: %d | Score: %.2f (tech %.1f, type %.1f, difficulty %.1f, intent %.1f, semantic %.1f)\n",
		result.Rank, result.TotalScore,
		result.SubScores.Technology, result.SubScores.ContentType,
		result.SubScores.Difficulty, result.SubScores.Intent, result.SubScores.Semantic)
	fmt.Fprintf(w, "ID: %s\n", result.Item.ID)
	if result.Item.Title != "" {
		fmt.Fprintf(w, "Title: %s\n", result.Item.Title)
	}
	if result.Item.URL != "" {
		fmt.Fprintf(w, "URL: %s\n", result.Item.URL)
	}
	if result.Reason != "" {
		fmt.Fprintf(w, "Why: %s\n", result.Reason)
	}
	if result.Item.RawText != "" {
		fmt.Fprintf(w, "\n%s\n", utils.Truncate(result.Item.RawText, 200))
	}
	fmt.Fprintln(w)
}

func writeRecommendationsCompact(w io.Writer, response *models.RecommendResponse) {
	for _, result := range response.Results {
		title := result.Item.Title
		if title == "" {
			title = utils.Truncate(result.Item.RawText, 60)
		}
		fmt.Fprintf(w, "%d\t%.2f\t%s\t%s\n", result.Rank, result.TotalScore, result.Item.ID, title)
	}
}
