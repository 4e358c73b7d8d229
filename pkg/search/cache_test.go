package search

import (
	"fmt"
	"testing"
	"time"
)

func TestCacheEvictsOldestInsertion(t *testing.T) {
	c := newQueryCache(CacheSize, 0)
	for i := 0; i < CacheSize+1; i++ {
		c.put(fmt.Sprintf("key-%d", i), []Result{{BookID: fmt.Sprintf("b%d", i)}})
	}
	if c.len() != CacheSize {
		t.Fatalf("expected %d entries, got %d", CacheSize, c.len())
	}
	if _, ok := c.get("key-0"); ok {
		t.Fatal("oldest key should have been evicted")
	}
	for i := 1; i <= CacheSize; i++ {
		if _, ok := c.get(fmt.Sprintf("key-%d", i)); !ok {
			t.Fatalf("key-%d should be retrievable", i)
		}
	}
}

func TestCacheEvictionIgnoresReads(t *testing.T) {
	c := newQueryCache(2, 0)
	c.put("a", nil)
	c.put("b", nil)
	// A read must not save "a" from insertion-order eviction.
	if _, ok := c.get("a"); !ok {
		t.Fatal("expected a present")
	}
	c.put("c", nil)
	if _, ok := c.get("a"); ok {
		t.Fatal("a should have been evicted despite the recent read")
	}
	if _, ok := c.get("b"); !ok {
		t.Fatal("b should survive")
	}
}

func TestCacheReinsertRefreshesPosition(t *testing.T) {
	c := newQueryCache(2, 0)
	c.put("a", nil)
	c.put("b", nil)
	c.put("a", nil) // fresh insertion: "b" is now oldest
	c.put("c", nil)
	if _, ok := c.get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if _, ok := c.get("a"); !ok {
		t.Fatal("a should survive after reinsertion")
	}
}

func TestCacheTTLExpiryIsAMiss(t *testing.T) {
	c := newQueryCache(4, time.Minute)
	current := time.Unix(1000, 0)
	c.now = func() time.Time { return current }

	c.put("a", []Result{{BookID: "b1"}})
	if _, ok := c.get("a"); !ok {
		t.Fatal("expected fresh entry to hit")
	}

	current = current.Add(2 * time.Minute)
	if _, ok := c.get("a"); ok {
		t.Fatal("expired entry must be a miss")
	}
	if c.len() != 0 {
		t.Fatalf("expired entry should be dropped, len=%d", c.len())
	}
}

func TestCacheStoresResults(t *testing.T) {
	c := newQueryCache(4, 0)
	want := []Result{{BookID: "b1", Page: 3}}
	c.put("k", want)
	got, ok := c.get("k")
	if !ok || len(got) != 1 || got[0].BookID != "b1" || got[0].Page != 3 {
		t.Fatalf("round trip failed: %v %+v", ok, got)
	}
}
