// Package models defines core data structures for candidate items, query
// contexts, feedback events, and recommendation results.
package models

import (
	"strings"
	"time"
)

// Annotation holds structured tags attached to an item by the external
// content-understanding collaborator. Absence means "not yet analyzed",
// which is a valid and common state.
type Annotation struct {
	ContentType    string   `json:"content_type" db:"content_type"`
	Difficulty     string   `json:"difficulty" db:"difficulty"`
	TechnologyTags []string `json:"technology_tags" db:"technology_tags"`
	KeyConcepts    []string `json:"key_concepts" db:"key_concepts"`
	// RelevanceScore is the collaborator's own 0-100 quality estimate.
	RelevanceScore int `json:"relevance_score" db:"relevance_score"`
}

// ParseTagList splits a comma-joined tag string from the annotation
// provider into normalized tags. Empty entries are dropped.
func ParseTagList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// CandidateItem is a previously saved content record eligible to be
// recommended. Items are read-only to the ranking core; mutation belongs
// to the ingestion subsystem.
type CandidateItem struct {
	ID      string `json:"id" db:"id"`
	OwnerID string `json:"owner_id" db:"owner_id"`
	Title   string `json:"title" db:"title"`
	RawText string `json:"raw_text" db:"raw_text"`
	URL     string `json:"url,omitempty" db:"url"`
	// Embedding is the precomputed content vector; nil means unavailable
	// and scoring substitutes a neutral similarity.
	Embedding []float32 `json:"-" db:"-"`
	// Annotation is optional; nil means the item has not been analyzed yet.
	Annotation   *Annotation `json:"annotation,omitempty" db:"-"`
	QualityScore int         `json:"quality_score" db:"quality_score"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// TechnologyTags returns the item's annotated technology tags, or nil
// when the item has no annotation.
func (c *CandidateItem) TechnologyTags() []string {
	if c.Annotation == nil {
		return nil
	}
	return c.Annotation.TechnologyTags
}

// SearchText returns the text used for keyword recall and embedding.
func (c *CandidateItem) SearchText() string {
	if c.Title == "" {
		return c.RawText
	}
	return c.Title + "\n" + c.RawText
}

// CandidateItemInput is the input for saving a candidate item.
type CandidateItemInput struct {
	ID           string      `json:"id,omitempty"`
	OwnerID      string      `json:"owner_id"`
	Title        string      `json:"title,omitempty"`
	RawText      string      `json:"raw_text"`
	URL          string      `json:"url,omitempty"`
	QualityScore int         `json:"quality_score,omitempty"`
	Annotation   *Annotation `json:"annotation,omitempty"`
}
