// Package cache provides the short-lived result cache for extracted
// contexts and recommendation responses. Callers treat it as fail-open:
// a cache error degrades to a recompute, never to a failed request.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent or expired.
var ErrNotFound = errors.New("cache: key not found")

// Cache is a byte-oriented TTL cache with prefix invalidation.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}

const (
	contextKeyPrefix        = "ctx:"
	recommendationKeyPrefix = "rec:"
)

// ContextKey addresses an extracted query context by its source hash.
func ContextKey(queryHash string) string {
	return contextKeyPrefix + queryHash
}

// RecommendationKey addresses a cached response for one user and query.
func RecommendationKey(userID, queryHash string) string {
	return recommendationKeyPrefix + userID + ":" + queryHash
}

// UserRecommendationPrefix matches all cached responses for one user.
func UserRecommendationPrefix(userID string) string {
	return recommendationKeyPrefix + userID + ":"
}

// RecommendationPrefix matches every cached response.
func RecommendationPrefix() string {
	return recommendationKeyPrefix
}
