// Package mp describes the MP (cGPSmapper) object shape and its
// conversion to and from vmap2.Obj. It is specified only through the
// data shapes it consumes and produces (§6.1): the textual
// key=value/[SECTION] wire format itself is out of scope here, the
// way formats/vmaplegacy and formats/fig are also contract-only.
// Grounded on original_source/mp/mp.h (MPObj) and
// original_source/vmap2/vmap2io_mp.cpp (mp_to_vmap2/vmap2_to_mp).
package mp

import (
	"sort"
	"strings"

	"vmap2toolkit/formats"
	"vmap2toolkit/geom"
	"vmap2toolkit/vmap2"
)

const formatName = "mp"

// tagString renders an object's tag set back into the whitespace
// separated form AddTags parses, in sorted order for stable output.
func tagString(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, " ")
}

// Class is an MP object's geometry class, matching the MP_POINT/
// MP_LINE/MP_POLYGON constants in mp.h.
type Class int

const (
	ClassPoint Class = iota
	ClassLine
	ClassPolygon
)

// Object is one MP record: a geometry class, a 16-bit MP type, label
// and comment text, and the handful of non-standard Opts fields the
// original reads/writes (Tags, Angle, Scale, Align).
type Object struct {
	Class   Class
	Type    uint16
	Label   string
	Comment string
	Tags    string
	Angle   float64
	Scale   float64
	Align   vmap2.Align
	Coords  geom.MultiLine
}

// TypeLevels reports the mp_start/mp_end data-level pair a catalog
// entry assigns an MP type. It is the result type of Export's levelFor
// callback, which Export does not call: Object has no data-level or
// EndLevel field. (mp_to_vmap2 reads the lowest non-empty level on
// import, so Import needs no such hook.)
type TypeLevels struct {
	Start, End int
}

// Import converts MP records into vmap2 objects, one per non-empty
// Object, via cl<<24 | Type like VMap2obj::make_type. known reports
// whether a type is present in the catalogue; when skipUnknown is set,
// unknown-type objects are skipped and returned in the skipped slice
// instead of being added (mp_to_vmap2's skip_unknown/quiet behavior).
func Import(objs []Object, m *vmap2.Map, known func(typ uint32) bool, skipUnknown bool) (skipped []uint32, err error) {
	seen := map[uint32]bool{}
	for _, o := range objs {
		if len(o.Coords) == 0 {
			continue
		}
		var cl vmap2.Class
		switch o.Class {
		case ClassPoint:
			cl = vmap2.ClassPoint
		case ClassLine:
			cl = vmap2.ClassLine
		case ClassPolygon:
			cl = vmap2.ClassPolygon
		default:
			return skipped, formats.Errorf(formatName, "wrong MP class: %d", o.Class)
		}
		typ := vmap2.MakeType(cl, uint32(o.Type))

		if known != nil && !known(typ) {
			if skipUnknown {
				if !seen[typ] {
					seen[typ] = true
					skipped = append(skipped, typ)
				}
				continue
			}
		}

		obj := vmap2.NewObj(typ)
		obj.Name = o.Label
		obj.Comm = o.Comment
		if o.Tags != "" {
			obj.AddTags(o.Tags)
		}
		obj.Angle = o.Angle
		if o.Scale != 0 {
			obj.Scale = o.Scale
		} else {
			obj.Scale = 1
		}
		obj.Align = o.Align
		obj.Coords = o.Coords

		if _, err := m.Add(obj); err != nil {
			return skipped, formats.Errorf(formatName, "add object: %v", err)
		}
	}
	return skipped, nil
}

// Export converts every object in m into an MP record, skipping types
// above the MP 15-bit type limit (0x7FFF, vmap2_to_mp's skipped_bad_types)
// and text objects (not representable in MP, "todo?" in the original).
// levelFor is accepted but not consulted; the returned Objects carry
// no data level or EndLevel.
func Export(m *vmap2.Map, levelFor func(typ uint32) TypeLevels) (objs []Object, skippedBadType, skippedUnknown []uint32) {
	c := m.IterStart()
	for !c.End() {
		_, o, ok := c.Next()
		if !ok {
			break
		}
		cl := o.Class()
		if cl == vmap2.ClassText {
			continue
		}
		tnum := vmap2.TypeNum(o.Type)
		if tnum > 0x7FFF {
			skippedBadType = append(skippedBadType, o.Type)
			continue
		}

		var mcl Class
		switch cl {
		case vmap2.ClassPoint:
			mcl = ClassPoint
		case vmap2.ClassLine:
			mcl = ClassLine
		case vmap2.ClassPolygon:
			mcl = ClassPolygon
		default:
			skippedUnknown = append(skippedUnknown, o.Type)
			continue
		}

		rec := Object{
			Class:   mcl,
			Type:    uint16(tnum),
			Label:   o.Name,
			Comment: o.Comm,
			Tags:    tagString(o.Tags),
			Angle:   o.Angle,
			Scale:   o.Scale,
			Align:   o.Align,
			Coords:  o.Coords,
		}
		_ = levelFor // EndLevel placement is the caller's wire-format concern
		objs = append(objs, rec)
	}
	return objs, skippedBadType, skippedUnknown
}
