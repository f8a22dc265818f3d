package plandata

import (
	"fmt"
	"testing"
	"time"

	"github.com/choosepower/plan-finder/internal/models"
)

func TestResultCacheHitAndExpiry(t *testing.T) {
	c := NewResultCache(50*time.Millisecond, 10)
	res := models.FilterResult{TotalCount: 3, FilteredCount: 2}

	c.Set("k", res)
	got, ok := c.Get("k")
	if !ok || got.FilteredCount != 2 {
		t.Fatalf("expected cache hit, got %v %v", got, ok)
	}

	time.Sleep(60 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected entry to expire")
	}
}

func TestResultCacheSizeCap(t *testing.T) {
	c := NewResultCache(time.Minute, 5)
	for i := 0; i < 20; i++ {
		c.Set(fmt.Sprintf("k%d", i), models.FilterResult{TotalCount: i})
	}
	if c.Len() > 5 {
		t.Errorf("cache exceeded its cap: %d entries", c.Len())
	}
	if _, ok := c.Get("k19"); !ok {
		t.Error("most recent entry should survive eviction")
	}
}

func TestResultCacheMiss(t *testing.T) {
	c := NewResultCache(time.Minute, 5)
	if _, ok := c.Get("absent"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestCacheKeyIsStablePerInput(t *testing.T) {
	a := CacheKey("houston", "contract=12&type=f")
	b := CacheKey("houston", "contract=12&type=f")
	if a != b {
		t.Errorf("same input must hash to same key: %q vs %q", a, b)
	}

	if CacheKey("houston", "contract=12") == CacheKey("dallas", "contract=12") {
		t.Error("different cities must not collide on the same query")
	}
	if CacheKey("houston", "contract=12") == CacheKey("houston", "contract=24") {
		t.Error("different queries must not collide")
	}
}
