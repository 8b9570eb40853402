// Package personalize learns per-user preference profiles from feedback
// history and nudges scored candidates toward them, within strict
// bounds.
package personalize

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/osusume/internal/models"
)

// FeedbackSource lists a user's feedback events inside a time window.
type FeedbackSource interface {
	ListByUserSince(ctx context.Context, userID string, since time.Time) ([]*models.FeedbackEvent, error)
}

// ItemSource resolves content IDs from feedback events back to items so
// their attributes can be learned from.
type ItemSource interface {
	GetItems(ctx context.Context, ids []string) (map[string]*models.CandidateItem, error)
}

// Profiler builds and caches user preference profiles.
type Profiler struct {
	config   *PersonalizationConfig
	feedback FeedbackSource
	items    ItemSource
	logger   *zap.Logger

	mu       sync.RWMutex
	profiles map[string]*models.UserPreferenceProfile
}

// NewProfiler creates a profiler. A nil config uses the defaults.
func NewProfiler(config *PersonalizationConfig, feedback FeedbackSource, items ItemSource, logger *zap.Logger) *Profiler {
	if config == nil {
		config = DefaultPersonalizationConfig()
	}
	config.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Profiler{
		config:   config,
		feedback: feedback,
		items:    items,
		logger:   logger,
		profiles: make(map[string]*models.UserPreferenceProfile),
	}
}

// Learn returns the user's preference profile, building it from the
// rolling feedback window on first use. Users below the interaction
// minimum get the neutral profile, so cold start never distorts ranking.
func (p *Profiler) Learn(ctx context.Context, userID string) (*models.UserPreferenceProfile, error) {
	p.mu.RLock()
	if profile, ok := p.profiles[userID]; ok {
		p.mu.RUnlock()
		return profile, nil
	}
	p.mu.RUnlock()

	profile, err := p.build(ctx, userID)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.profiles[userID] = profile
	p.mu.Unlock()
	return profile, nil
}

// Invalidate drops the cached profile so the next Learn rebuilds it.
// Called when new feedback for the user arrives.
func (p *Profiler) Invalidate(userID string) {
	p.mu.Lock()
	delete(p.profiles, userID)
	p.mu.Unlock()
}

func (p *Profiler) build(ctx context.Context, userID string) (*models.UserPreferenceProfile, error) {
	since := time.Now().AddDate(0, 0, -p.config.WindowDays)
	events, err := p.feedback.ListByUserSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback for %s: %w", userID, err)
	}

	if len(events) < p.config.MinInteractions {
		profile := models.NeutralProfile(userID)
		profile.InteractionCount = len(events)
		return profile, nil
	}

	ids := distinctContentIDs(events)
	items, err := p.items.GetItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve feedback items for %s: %w", userID, err)
	}

	contentTypes := newSignalCounter()
	difficulties := newSignalCounter()
	technologies := newSignalCounter()

	counted := 0
	touched := make(map[string]int, len(models.Dimensions))
	var positiveQualities []int

	for _, ev := range events {
		item, ok := items[ev.ContentID]
		if !ok || item.Annotation == nil {
			continue
		}
		positive := ev.Type.IsPositive()
		if !positive && !ev.Type.IsNegative() {
			continue
		}
		counted++
		if positive && item.QualityScore > 0 {
			positiveQualities = append(positiveQualities, item.QualityScore)
		}

		if ct := strings.ToLower(item.Annotation.ContentType); ct != "" {
			contentTypes.add(ct, positive)
			touched[models.DimensionContentType]++
		}
		if d := strings.ToLower(item.Annotation.Difficulty); d != "" {
			difficulties.add(d, positive)
			touched[models.DimensionDifficulty]++
		}
		tagged := false
		for _, tag := range item.Annotation.TechnologyTags {
			if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
				technologies.add(tag, positive)
				tagged = true
			}
		}
		if tagged {
			touched[models.DimensionTechnology]++
		}
	}

	profile := models.NeutralProfile(userID)
	profile.PreferredContentTypes = contentTypes.preferences()
	profile.PreferredDifficulties = difficulties.preferences()
	profile.PreferredTechnologies = technologies.preferences()
	profile.WeightAdjustments = p.weightAdjustments(touched, counted)
	profile.QualityThreshold = medianQuality(positiveQualities)
	profile.InteractionCount = len(events)
	profile.BuiltAt = time.Now()

	p.logger.Debug("built preference profile",
		zap.String("user_id", userID),
		zap.Int("interactions", len(events)),
		zap.Int("content_types", len(profile.PreferredContentTypes)),
		zap.Int("technologies", len(profile.PreferredTechnologies)))

	return profile, nil
}

// weightAdjustments maps the share of counted events that touched each
// scoring dimension onto [AdjustmentMin, AdjustmentMax]. Dimensions
// feedback events carry no attributes for stay neutral.
func (p *Profiler) weightAdjustments(touched map[string]int, counted int) map[string]float64 {
	adjustments := make(map[string]float64, len(models.Dimensions))
	for _, dim := range models.Dimensions {
		adjustments[dim] = 1.0
	}
	if counted == 0 {
		return adjustments
	}
	span := p.config.AdjustmentMax - p.config.AdjustmentMin
	for _, dim := range []string{models.DimensionContentType, models.DimensionDifficulty, models.DimensionTechnology} {
		fraction := float64(touched[dim]) / float64(counted)
		adjustments[dim] = p.config.AdjustmentMin + span*fraction
	}
	return adjustments
}

// medianQuality returns the median of the given quality scores, or 0
// when none were observed.
func medianQuality(qualities []int) int {
	if len(qualities) == 0 {
		return 0
	}
	sort.Ints(qualities)
	return qualities[len(qualities)/2]
}

// signalCounter tallies positive and negative feedback per attribute
// value.
type signalCounter struct {
	positive map[string]int
	negative map[string]int
}

func newSignalCounter() *signalCounter {
	return &signalCounter{
		positive: make(map[string]int),
		negative: make(map[string]int),
	}
}

func (c *signalCounter) add(key string, positive bool) {
	if positive {
		c.positive[key]++
	} else {
		c.negative[key]++
	}
}

// preferences maps each value's net signal into [0,1], 0.5 neutral.
func (c *signalCounter) preferences() map[string]float64 {
	prefs := make(map[string]float64, len(c.positive)+len(c.negative))
	for key := range c.positive {
		prefs[key] = c.preference(key)
	}
	for key := range c.negative {
		if _, ok := prefs[key]; !ok {
			prefs[key] = c.preference(key)
		}
	}
	return prefs
}

func (c *signalCounter) preference(key string) float64 {
	pos := c.positive[key]
	neg := c.negative[key]
	total := pos + neg
	if total == 0 {
		return 0.5
	}
	net := float64(pos-neg) / float64(total)
	return 0.5 + net/2
}

func distinctContentIDs(events []*models.FeedbackEvent) []string {
	seen := make(map[string]bool, len(events))
	ids := make([]string, 0, len(events))
	for _, ev := range events {
		if ev.ContentID == "" || seen[ev.ContentID] {
			continue
		}
		seen[ev.ContentID] = true
		ids = append(ids, ev.ContentID)
	}
	return ids
}
