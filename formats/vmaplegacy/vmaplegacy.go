// Package vmaplegacy describes the pre-VMap2 line-oriented text
// format's object shape (OBJECT/DATA blocks with LABEL/COMM/OPT/DIR
// fields) and its conversion to vmap2.Obj. Specified only through data
// shapes (§6.1), not the tokenizer itself, as with formats/mp and
// formats/fig. Grounded on original_source/vmap/vmap_io.cpp
// (read_vmap_object/read_vmap).
package vmaplegacy

import (
	"vmap2toolkit/geom"
	"vmap2toolkit/vmap2"
)

// Label is one LABEL line attached to an object: a label position,
// alignment/orientation, and (for "full" labels written by vmap2) a
// separate reference point and text, matching VMapLab/VMapLfull.
type Label struct {
	Pos      geom.Point
	Align    vmap2.Align
	Angle    float64
	Horiz    bool
	FontSize int
	RefPt    geom.Point
	Text     string
}

// Object is one OBJECT block: the legacy hex type code, its point/area
// data, comment, options, and any attached labels. The legacy format
// has no native type catalogue; Import's resolve callback maps the
// hex Type to a vmap2 type via the caller-supplied catalogue lookup.
type Object struct {
	Type    int
	Text    string
	Comment string
	Opts    map[string]string
	Coords  geom.MultiLine
	Labels  []Label
	Invert  bool // DIR==2: reverse point order on read
}

// Document is a parsed legacy VMAP file: a format version and its
// objects, matching the VMap container (a flat list of VMapObj).
type Document struct {
	Version float64
	Objects []Object
}

// Import converts d's objects into vmap2 objects via resolve, which
// maps a legacy hex type code to a packed vmap2 type (read_vmap_object
// has no such mapping itself: the legacy format predates the shared
// type catalogue, so every caller must supply one). An object whose
// type resolve rejects is skipped rather than erroring, since old
// files commonly carry stale or renumbered types.
func Import(d *Document, resolve func(legacyType int) (uint32, bool), m *vmap2.Map) error {
	for _, o := range d.Objects {
		typ, ok := resolve(o.Type)
		if !ok {
			continue
		}
		obj := vmap2.NewObj(typ)
		obj.Comm = o.Comment
		obj.Coords = o.Coords
		if o.Invert {
			for i, l := range obj.Coords {
				obj.Coords[i] = reverse(l)
			}
		}
		if len(o.Labels) > 0 {
			lab := o.Labels[0]
			obj.Name = lab.Text
			if obj.Name == "" {
				obj.Name = o.Text
			}
			obj.Align = lab.Align
			obj.Angle = lab.Angle
			if lab.RefPt != (geom.Point{}) {
				obj.RefPt = lab.RefPt
			}
		} else {
			obj.Name = o.Text
		}
		if _, err := m.Add(obj); err != nil {
			return err
		}
	}
	return nil
}

func reverse(l geom.Line) geom.Line {
	out := make(geom.Line, len(l))
	for i, p := range l {
		out[len(l)-1-i] = p
	}
	return out
}

// Export converts every object in m into a legacy Object via
// typeCode, the inverse of Import's resolve.
func Export(m *vmap2.Map, typeCode func(typ uint32) (int, bool)) *Document {
	d := &Document{Version: 3.2}
	c := m.IterStart()
	for !c.End() {
		_, o, ok := c.Next()
		if !ok {
			break
		}
		code, ok := typeCode(o.Type)
		if !ok {
			continue
		}
		lo := Object{Type: code, Text: o.Name, Comment: o.Comm, Coords: o.Coords}
		if o.Name != "" || o.RefType != vmap2.NoRefType {
			lo.Labels = []Label{{Pos: o.Point(), Align: o.Align, Angle: o.Angle, RefPt: o.RefPt, Text: o.Name}}
		}
		d.Objects = append(d.Objects, lo)
	}
	return d
}
