package vmap2

import (
	"math"

	"vmap2toolkit/geom"
)

// KeepLabels replaces every text object in dst with the text objects
// from src, preserving hand-edited labels across a reload of the
// non-text data. Grounded on
// original_source/vmap2/vmap2tools.cpp's do_keep_labels.
func KeepLabels(src, dst *Map) error {
	for id, o := range dst.All() {
		if o.Class() == ClassText {
			if err := dst.Del(id); err != nil {
				return err
			}
		}
	}
	for _, o := range src.All() {
		if o.Class() != ClassText {
			continue
		}
		if _, err := dst.Add(o); err != nil {
			return err
		}
	}
	return nil
}

// UpdateTag removes every object from dst that lacks tag, then copies
// over the tagged objects from src that dst is now missing. Grounded
// on vmap2tools.cpp's do_update_tag.
func UpdateTag(src, dst *Map, tag string) error {
	for id, o := range dst.All() {
		if !o.HasTag(tag) {
			if err := dst.Del(id); err != nil {
				return err
			}
		}
	}
	for _, o := range src.All() {
		if o.HasTag(tag) {
			if _, err := dst.Add(o); err != nil {
				return err
			}
		}
	}
	return nil
}

// cellKey is a coarse grid cell used to bucket points for approximate
// nearest-neighbor lookup without a full spatial index traversal per
// point, mirroring the grid hash in do_fix_rounding.
type cellKey struct{ cx, cy int64 }

func cellsFor(p geom.Point, spacing float64) [4]cellKey {
	cx := math.Floor(p.X / spacing)
	cy := math.Floor(p.Y / spacing)
	fx := p.X/spacing - cx
	fy := p.Y/spacing - cy
	ox, oy := int64(0), int64(0)
	if fx < 0.5 {
		ox = -1
	} else {
		ox = 1
	}
	if fy < 0.5 {
		oy = -1
	} else {
		oy = 1
	}
	ix, iy := int64(cx), int64(cy)
	return [4]cellKey{{ix, iy}, {ix + ox, iy}, {ix, iy + oy}, {ix + ox, iy + oy}}
}

type roundPoint struct {
	p   geom.Point
	typ uint32
}

// FixRounding snaps each point of every object in dst to the nearest
// same-type point of src within distance d (meters, measured
// geodesically between lon/lat points), reconciling floating-point
// drift introduced by a format round trip. Grounded on vmap2tools.cpp's
// do_fix_rounding.
func FixRounding(src, dst *Map, d float64) error {
	spacing := 2 * d * 180 / math.Pi / conv2EarthRadius
	cells := map[cellKey][]roundPoint{}
	for _, o := range src.All() {
		for _, line := range o.Coords {
			for _, p := range line {
				rp := roundPoint{p: p, typ: o.Type}
				for _, k := range cellsFor(p, spacing) {
					cells[k] = append(cells[k], rp)
				}
			}
		}
	}

	for id, o := range dst.All() {
		changed := false
		for li, line := range o.Coords {
			for pi, p := range line {
				best, bestDist, found := geom.Point{}, d, false
				for _, k := range cellsFor(p, spacing) {
					for _, cand := range cells[k] {
						if cand.typ != o.Type {
							continue
						}
						dd := geodesicDist(cand.p, p)
						if dd <= bestDist {
							best, bestDist, found = cand.p, dd, true
						}
					}
				}
				if found {
					o.Coords[li][pi] = best
					changed = true
				}
			}
		}
		if changed {
			if err := dst.Put(id, o); err != nil {
				return err
			}
		}
	}
	return nil
}

const conv2EarthRadius = 6380e3

func geodesicDist(a, b geom.Point) float64 {
	dx := (a.X - b.X) * math.Cos((a.Y+b.Y)/2*math.Pi/180)
	dy := a.Y - b.Y
	return math.Hypot(dx, dy) * math.Pi / 180 * conv2EarthRadius
}

// MakeLabel builds a new text object referring to obj: centered on
// obj's bounding box, anchored to the nearest point of obj's own
// geometry, using the type's default label scale. Grounded on
// vmap2tools.cpp's do_make_label.
func MakeLabel(obj *Obj, labelType uint32, defScale float64, defAlign Align) *Obj {
	center := obj.BBox().Center()
	anchor, _ := obj.Coords.NearestPoint(center)
	lab := NewObj(labelType)
	lab.Name = obj.Name
	lab.Scale = defScale
	lab.Align = defAlign
	lab.RefType = obj.Type
	lab.RefPt = anchor
	lab.SetPoint(center)
	return lab
}

// UpdateLabels reconciles a map's text objects against its non-text
// objects: creates a label of type labelType for any non-text object
// that lacks one, and deletes orphaned labels. Labels whose parent
// still exists are kept as they are; their name and ref_pt are not
// refreshed. Orphaned labels are ones referring to a type no longer
// present, or carrying NoRefType. Grounded on vmap2tools.cpp's
// do_update_labels / find_refs.
func UpdateLabels(m *Map, labelType uint32, dist1, dist2, defScale float64, defAlign Align) error {
	refs := m.FindRefs(dist1, dist2)
	labeled := map[uint32]bool{}
	for _, labID := range refs {
		labeled[labID] = true
	}

	present := m.GetTypes()
	for id, o := range m.All() {
		if o.Class() == ClassText {
			if !o.HasRef() || !present[o.RefType] {
				if err := m.Del(id); err != nil {
					return err
				}
			}
			continue
		}
		if _, ok := refs[id]; ok {
			continue
		}
		lab := MakeLabel(o, labelType, defScale, defAlign)
		if _, err := m.Add(lab); err != nil {
			return err
		}
	}
	return nil
}

// CropRect clips every object in m to r, splitting multi-part
// geometries as needed and deleting objects that crop away entirely.
// Polygons are treated as closed rings, everything else as open lines.
// Grounded on vmap2tools.cpp's do_crop_rect.
func CropRect(m *Map, r geom.Rect) error {
	for id, o := range m.All() {
		closed := o.Class() == ClassPolygon
		var out geom.MultiLine
		for _, line := range o.Coords {
			cropped := geom.RectCrop(r, line, closed)
			out = append(out, geom.RectSplitCropped(r, cropped, closed)...)
		}
		if len(out) == 0 {
			if err := m.Del(id); err != nil {
				return err
			}
			continue
		}
		o.Coords = out
		if err := m.Put(id, o); err != nil {
			return err
		}
	}
	return nil
}
