package cache

import "testing"

func TestSizeCacheEvictsLRU(t *testing.T) {
	c := NewSizeCache[string, int](10, func(v int) int64 { return int64(v) })
	c.Add("a", 4)
	c.Add("b", 4)
	c.Add("c", 4) // pushes used to 12 > 10, evicts "a" (least recently used)

	if _, ok := c.items["a"]; ok {
		t.Errorf("expected 'a' to be evicted")
	}
	if c.Used() > 10 {
		t.Errorf("cache exceeded limit: used=%d", c.Used())
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 items, got %d", c.Len())
	}
}

func TestSizeCacheGetLoadsOnMiss(t *testing.T) {
	c := NewSizeCache[string, int](100, func(v int) int64 { return int64(v) })
	calls := 0
	load := func() (int, error) { calls++; return 7, nil }

	v, err := c.Get("x", load)
	if err != nil || v != 7 {
		t.Fatalf("Get: got %v, %v", v, err)
	}
	v, err = c.Get("x", load)
	if err != nil || v != 7 || calls != 1 {
		t.Errorf("expected loader called once, got calls=%d", calls)
	}
}

func TestSizeCacheRemoveAndClear(t *testing.T) {
	c := NewSizeCache[string, int](100, func(v int) int64 { return int64(v) })
	c.Add("a", 1)
	c.Remove("a")
	if c.Len() != 0 {
		t.Errorf("expected empty cache after Remove")
	}
	c.Add("b", 1)
	c.Clear()
	if c.Len() != 0 || c.Used() != 0 {
		t.Errorf("expected empty cache after Clear")
	}
}
