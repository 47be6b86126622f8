package vmap2

import (
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"

	"vmap2toolkit/geom"
)

// IndexError reports an object whose bounding box can't be indexed:
// a non-finite coordinate (NaN/Inf), which would otherwise corrupt
// the R-tree's subtree bounds for every later query.
type IndexError struct {
	ID  uint32
	Msg string
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("vmap2: index(%d): %s", e.ID, e.Msg)
}

func finiteBBox(r geom.Rect) bool {
	return !math.IsNaN(r.X) && !math.IsNaN(r.Y) && !math.IsNaN(r.W) && !math.IsNaN(r.H) &&
		!math.IsInf(r.X, 0) && !math.IsInf(r.Y, 0) && !math.IsInf(r.W, 0) && !math.IsInf(r.H, 0)
}

// index is the geohash-equivalent spatial index every object is kept
// in regardless of backing store, mirroring VMap2::geohash in
// original_source/vmap2/vmap2.h. It is built on an R-tree (the nearest
// off-the-shelf Go equivalent of mapsoft2's GeoHashStorage) rather than
// a literal geohash grid.
type index struct {
	rtree *rtreego.Rtree
	byID  map[uint32]*entry
}

type entry struct {
	id   uint32
	typ  uint32
	bbox geom.Rect
}

const minRectSide = 1e-9

// Bounds implements rtreego.Spatial.
func (e *entry) Bounds() rtreego.Rect {
	w := e.bbox.W
	h := e.bbox.H
	if w < minRectSide {
		w = minRectSide
	}
	if h < minRectSide {
		h = minRectSide
	}
	r, _ := rtreego.NewRect(rtreego.Point{e.bbox.X, e.bbox.Y}, []float64{w, h})
	return r
}

func newIndex() *index {
	return &index{rtree: rtreego.NewTree(2, 5, 20), byID: map[uint32]*entry{}}
}

func (ix *index) add(id uint32, typ uint32, bbox geom.Rect) error {
	if !bbox.Empty() && !finiteBBox(bbox) {
		return &IndexError{ID: id, Msg: "non-finite bounding box"}
	}
	e := &entry{id: id, typ: typ, bbox: bbox}
	ix.byID[id] = e
	ix.rtree.Insert(e)
	return nil
}

func (ix *index) del(id uint32) {
	e, ok := ix.byID[id]
	if !ok {
		return
	}
	ix.rtree.Delete(e)
	delete(ix.byID, id)
}

func (ix *index) update(id uint32, typ uint32, bbox geom.Rect) error {
	ix.del(id)
	return ix.add(id, typ, bbox)
}

// find returns the ids of every indexed object whose bbox intersects
// r. If filter is non-nil, only ids whose type satisfies it are kept.
func (ix *index) find(r geom.Rect, filter func(typ uint32) bool) []uint32 {
	if r.Empty() {
		var out []uint32
		for _, e := range ix.byID {
			if filter == nil || filter(e.typ) {
				out = append(out, e.id)
			}
		}
		return out
	}
	w, h := r.W, r.H
	if w < minRectSide {
		w = minRectSide
	}
	if h < minRectSide {
		h = minRectSide
	}
	q, err := rtreego.NewRect(rtreego.Point{r.X, r.Y}, []float64{w, h})
	if err != nil {
		return nil
	}
	var out []uint32
	for _, sp := range ix.rtree.SearchIntersect(q) {
		e := sp.(*entry)
		if filter == nil || filter(e.typ) {
			out = append(out, e.id)
		}
	}
	return out
}

// bbox returns the union of every indexed object's bounding box.
func (ix *index) bbox() geom.Rect {
	r := geom.EmptyRect()
	for _, e := range ix.byID {
		r = r.Union(e.bbox)
	}
	return r
}

// types returns the set of distinct packed types present in the index.
func (ix *index) types() map[uint32]bool {
	out := map[uint32]bool{}
	for _, e := range ix.byID {
		out[e.typ] = true
	}
	return out
}
