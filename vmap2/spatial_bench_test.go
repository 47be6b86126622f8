package vmap2

import (
	"math/rand"
	"testing"

	"vmap2toolkit/geom"
)

// Benchmark the R-tree-backed geohash index vs a linear scan over the
// store's objects, mirroring beetlebugorg/s57's
// BenchmarkFeaturesInBounds_Rtree/_Linear pair.

func newBenchMap(n int) *Map {
	r := rand.New(rand.NewSource(1))
	m := NewMap()
	typ := MakeType(ClassPoint, 1)
	for i := 0; i < n; i++ {
		o := NewObj(typ)
		o.SetPoint(geom.Pt(r.Float64()*10, r.Float64()*10))
		if _, err := m.Add(o); err != nil {
			panic(err)
		}
	}
	return m
}

func linearFind(m *Map, r geom.Rect) []uint32 {
	var out []uint32
	for id, o := range m.All() {
		if o.BBox().Intersects(r) {
			out = append(out, id)
		}
	}
	return out
}

func BenchmarkFindType_Index_SmallViewport(b *testing.B) {
	m := newBenchMap(10000)
	r := geom.Rect{X: 4, Y: 4, W: 0.5, H: 0.5}
	typ := MakeType(ClassPoint, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.FindType(typ, r)
	}
}

func BenchmarkFindType_Linear_SmallViewport(b *testing.B) {
	m := newBenchMap(10000)
	r := geom.Rect{X: 4, Y: 4, W: 0.5, H: 0.5}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = linearFind(m, r)
	}
}

func BenchmarkFindType_Index_LargeViewport(b *testing.B) {
	m := newBenchMap(10000)
	r := geom.Rect{X: 0, Y: 0, W: 9, H: 9}
	typ := MakeType(ClassPoint, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.FindType(typ, r)
	}
}

func BenchmarkFindType_Linear_LargeViewport(b *testing.B) {
	m := newBenchMap(10000)
	r := geom.Rect{X: 0, Y: 0, W: 9, H: 9}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = linearFind(m, r)
	}
}

func BenchmarkBBox(b *testing.B) {
	m := newBenchMap(10000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.BBox()
	}
}
