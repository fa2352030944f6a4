package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
)

const patternKeyPrefix = "name_patterns:"

// PatternCache stores each organization's custom name patterns as JSON.
// It satisfies speaker.PatternCache.
type PatternCache struct {
	store Store
	ttl   time.Duration
}

// NewPatternCache wraps a Store
func NewPatternCache(store Store, ttl time.Duration) *PatternCache {
	return &PatternCache{store: store, ttl: ttl}
}

func patternKey(organizationID uuid.UUID) string {
	return patternKeyPrefix + organizationID.String()
}

// GetPatterns returns the cached list. An empty cached list is a hit.
func (c *PatternCache) GetPatterns(ctx context.Context, organizationID uuid.UUID) ([]*entities.NamePattern, bool, error) {
	raw, ok, err := c.store.Get(ctx, patternKey(organizationID))
	if err != nil || !ok {
		return nil, false, err
	}

	var patterns []*entities.NamePattern
	if err := json.Unmarshal([]byte(raw), &patterns); err != nil {
		return nil, false, fmt.Errorf("decode cached patterns: %w", err)
	}
	return patterns, true, nil
}

func (c *PatternCache) SetPatterns(ctx context.Context, organizationID uuid.UUID, patterns []*entities.NamePattern) error {
	if patterns == nil {
		patterns = []*entities.NamePattern{}
	}
	raw, err := json.Marshal(patterns)
	if err != nil {
		return fmt.Errorf("encode patterns: %w", err)
	}
	return c.store.Set(ctx, patternKey(organizationID), string(raw), c.ttl)
}

func (c *PatternCache) InvalidatePatterns(ctx context.Context, organizationID uuid.UUID) error {
	return c.store.Delete(ctx, patternKey(organizationID))
}
