package vmap2

import (
	"sort"

	"vmap2toolkit/geom"
)

// Map is the typed spatial object store: an id-keyed collection of
// Obj values with a spatial index kept in sync on every write,
// optionally backed by an on-disk log. Grounded on
// original_source/vmap2/vmap2.h's VMap2.
type Map struct {
	st    store
	index *index
	fname string
}

// NewMap returns an in-memory Map.
func NewMap() *Map {
	return &Map{st: newMemStore(), index: newIndex()}
}

// Open returns a Map backed by the log file at path, replaying any
// existing records. An empty path is equivalent to NewMap.
func Open(path string) (*Map, error) {
	if path == "" {
		return NewMap(), nil
	}
	fs, err := openFileStore(path)
	if err != nil {
		return nil, err
	}
	m := &Map{st: fs, index: newIndex(), fname: path}
	for id, o := range fs.all() {
		if err := m.index.add(id, o.Type, o.BBox()); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Filename returns the backing file path, or "" for an in-memory Map.
func (m *Map) Filename() string { return m.fname }

// Close releases the backing store, if any.
func (m *Map) Close() error { return m.st.close() }

// Add inserts o as a new object and returns its assigned id.
func (m *Map) Add(o *Obj) (uint32, error) {
	id := m.st.nextID()
	if err := m.st.put(id, o); err != nil {
		return 0, err
	}
	if err := m.index.add(id, o.Type, o.BBox()); err != nil {
		m.st.del(id)
		return 0, err
	}
	return id, nil
}

// Put upserts o at id, overwriting any existing object there.
func (m *Map) Put(id uint32, o *Obj) error {
	if err := m.st.put(id, o); err != nil {
		return err
	}
	return m.index.update(id, o.Type, o.BBox())
}

// Get returns the object stored at id.
func (m *Map) Get(id uint32) (*Obj, bool) { return m.st.get(id) }

// Del removes the object at id.
func (m *Map) Del(id uint32) error {
	if err := m.st.del(id); err != nil {
		return err
	}
	m.index.del(id)
	return nil
}

// Find returns the ids of objects of the given class and type number
// whose bounding box intersects r.
func (m *Map) Find(cl Class, tnum uint32, r geom.Rect) []uint32 {
	want := MakeType(cl, tnum)
	return m.index.find(r, func(t uint32) bool { return t == want })
}

// FindType returns the ids of objects of the given packed type whose
// bounding box intersects r.
func (m *Map) FindType(typ uint32, r geom.Rect) []uint32 {
	return m.index.find(r, func(t uint32) bool { return t == typ })
}

// FindAny returns the ids of every object whose bounding box
// intersects r, regardless of type.
func (m *Map) FindAny(r geom.Rect) []uint32 {
	return m.index.find(r, nil)
}

// GetTypes returns the set of distinct packed types present in the map.
func (m *Map) GetTypes() map[uint32]bool { return m.index.types() }

// BBox returns the bounding box of every indexed object.
func (m *Map) BBox() geom.Rect { return m.index.bbox() }

// Len returns the number of objects in the map.
func (m *Map) Len() int { return len(m.st.all()) }

// Cursor iterates every (id, object) pair, matching
// VMap2::iter_start/iter_get_next/iter_end's manual iteration
// protocol (kept here for fidelity to the source, though a Go range
// loop over All() serves the same purpose more idiomatically).
type Cursor struct {
	ids []uint32
	pos int
	m   *Map
}

// IterStart returns a Cursor over every object currently in the map,
// in id order.
func (m *Map) IterStart() *Cursor {
	ids := make([]uint32, 0, len(m.st.all()))
	for id := range m.st.all() {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return &Cursor{ids: ids, m: m}
}

// End reports whether the cursor has been exhausted.
func (c *Cursor) End() bool { return c.pos >= len(c.ids) }

// Next returns the next (id, object) pair and advances the cursor.
func (c *Cursor) Next() (uint32, *Obj, bool) {
	if c.End() {
		return 0, nil, false
	}
	id := c.ids[c.pos]
	c.pos++
	o, ok := c.m.Get(id)
	return id, o, ok
}

// All returns every (id, object) pair as a map, the idiomatic
// replacement for a manual Cursor loop.
func (m *Map) All() map[uint32]*Obj {
	out := make(map[uint32]*Obj, len(m.st.all()))
	for id, o := range m.st.all() {
		out[id] = o
	}
	return out
}

// FindRefs returns, for every non-text object in the map, the id of
// the text (label) object that refers to it via RefType/RefPt, chosen
// as the nearest candidate label within dist1 of the object (or
// dist2, a looser fallback radius, if none is found within dist1).
// Objects with no matching label are omitted. Grounded on the
// find_refs usage in original_source/vmap2/vmap2tools.cpp's
// do_update_labels.
func (m *Map) FindRefs(dist1, dist2 float64) map[uint32]uint32 {
	result := map[uint32]uint32{}
	all := m.All()
	for objID, obj := range all {
		if obj.Class() == ClassText {
			continue
		}
		best, bestDist := uint32(0), -1.0
		found := false
		search := func(radius float64) {
			bbox := obj.BBox()
			search := geom.Rect{X: bbox.X - radius, Y: bbox.Y - radius, W: bbox.W + 2*radius, H: bbox.H + 2*radius}
			for _, labID := range m.FindAny(search) {
				lab, ok := all[labID]
				if !ok || lab.Class() != ClassText || lab.RefType != obj.Type {
					continue
				}
				_, d := obj.Coords.NearestPoint(lab.RefPt)
				if !found || d < bestDist {
					best, bestDist, found = labID, d, true
				}
			}
		}
		search(dist1)
		if !found {
			search(dist2)
		}
		if found {
			result[objID] = best
		}
	}
	return result
}
