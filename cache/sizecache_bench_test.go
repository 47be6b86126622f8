package cache

import "testing"

// BenchmarkSizeCacheAddEvict benchmarks steady-state Add under constant
// eviction pressure (every insert pushes the oldest entry out), mirroring
// beetlebugorg/s57's spatial_bench_test.go benchmark style applied to
// this package's own LRU accounting instead of the R-tree index.
func BenchmarkSizeCacheAddEvict(b *testing.B) {
	c := NewSizeCache[int, int](100, func(v int) int64 { return 1 })

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Add(i, i)
	}
}

// BenchmarkSizeCacheGetHit benchmarks repeated Get calls against a
// warm, non-evicting cache.
func BenchmarkSizeCacheGetHit(b *testing.B) {
	c := NewSizeCache[int, int](1000, func(v int) int64 { return 1 })
	for i := 0; i < 500; i++ {
		c.Add(i, i)
	}
	load := func() (int, error) { return -1, nil }

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Get(i%500, load)
	}
}
