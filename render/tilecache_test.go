package render

import (
	"context"
	"testing"
)

func TestTileCacheSetGet(t *testing.T) {
	tc, err := NewTileCache(4, 0)
	if err != nil {
		t.Fatalf("NewTileCache: %v", err)
	}
	ctx := context.Background()
	if err := tc.Set(ctx, "a", []byte("hello")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := tc.Get(ctx, "a")
	if !ok || string(got) != "hello" {
		t.Errorf("expected cached hit, got %v %v", got, ok)
	}
	if _, ok := tc.Get(ctx, "missing"); ok {
		t.Errorf("expected miss for absent key")
	}
	stats := tc.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("expected 1 hit 1 miss, got %+v", stats)
	}
}

func TestTileCacheEviction(t *testing.T) {
	tc, err := NewTileCache(2, 0)
	if err != nil {
		t.Fatalf("NewTileCache: %v", err)
	}
	ctx := context.Background()
	tc.Set(ctx, "a", []byte("1"))
	tc.Set(ctx, "b", []byte("2"))
	tc.Set(ctx, "c", []byte("3"))

	if _, ok := tc.Get(ctx, "a"); ok {
		t.Errorf("expected 'a' evicted")
	}
	if tc.Stats().Evictions != 1 {
		t.Errorf("expected 1 eviction, got %+v", tc.Stats())
	}
}

func TestDisabledCacheAlwaysMisses(t *testing.T) {
	tc := NewDisabledCache()
	ctx := context.Background()
	tc.Set(ctx, "a", []byte("x"))
	if _, ok := tc.Get(ctx, "a"); ok {
		t.Errorf("disabled cache should never hit")
	}
}

func TestNewTileCacheRejectsNonPositive(t *testing.T) {
	if _, err := NewTileCache(0, 0); err == nil {
		t.Errorf("expected error for maxItems<=0")
	}
}
