package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
)

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	defer store.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_ = store.Set(ctx, "short", "a", time.Minute)
	_ = store.Set(ctx, "forever", "b", 0)

	if v, ok, _ := store.Get(ctx, "short"); !ok || v != "a" {
		t.Fatalf("expected hit, got %q %v", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := store.Get(ctx, "short"); ok {
		t.Error("expected expired entry to miss")
	}
	if _, ok, _ := store.Get(ctx, "forever"); !ok {
		t.Error("zero ttl entry should not expire")
	}

	store.removeExpired()
	if _, exists := store.items["short"]; exists {
		t.Error("sweeper should remove expired entries")
	}

	_ = store.Delete(ctx, "forever")
	if _, ok, _ := store.Get(ctx, "forever"); ok {
		t.Error("expected miss after delete")
	}
}

func TestPatternCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	defer store.Close()
	c := NewPatternCache(store, time.Minute)
	org := uuid.New()

	if _, ok, err := c.GetPatterns(ctx, org); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	in := []*entities.NamePattern{
		{OrganizationID: org, PatternID: "team_intro", Expression: `(?i)on the (\w+) team`, CaptureGroup: 1},
	}
	if err := c.SetPatterns(ctx, org, in); err != nil {
		t.Fatalf("SetPatterns: %v", err)
	}

	got, ok, err := c.GetPatterns(ctx, org)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0].Expression != in[0].Expression || got[0].CaptureGroup != 1 {
		t.Errorf("unexpected cached patterns %+v", got)
	}

	if err := c.InvalidatePatterns(ctx, org); err != nil {
		t.Fatalf("InvalidatePatterns: %v", err)
	}
	if _, ok, _ := c.GetPatterns(ctx, org); ok {
		t.Error("expected miss after invalidation")
	}
}

func TestPatternCacheEmptyListIsHit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	defer store.Close()
	c := NewPatternCache(store, 0)
	org := uuid.New()

	_ = c.SetPatterns(ctx, org, nil)
	got, ok, err := c.GetPatterns(ctx, org)
	if err != nil || !ok {
		t.Fatalf("expected hit for empty list, got ok=%v err=%v", ok, err)
	}
	if len(got) != 0 {
		t.Errorf("expected no patterns, got %d", len(got))
	}
}

func TestPatternCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	defer store.Close()
	c := NewPatternCache(store, 0)
	org := uuid.New()

	_ = store.Set(ctx, patternKey(org), "{not json", 0)
	if _, ok, err := c.GetPatterns(ctx, org); ok || err == nil {
		t.Fatalf("expected decode error, got ok=%v err=%v", ok, err)
	}
}
