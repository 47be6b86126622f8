// Package vmap2 implements the typed spatial object store: objects
// with a class/type taxonomy, tags and optional label linkage, a
// geohash-indexed store (in-memory or file-backed), and the object
// rewrite helpers layered on top of it (label maintenance, rounding
// reconciliation, rectangle cropping). Grounded throughout on
// original_source/vmap2/vmap2.h, vmap2obj.h and vmap2tools.cpp.
package vmap2

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"vmap2toolkit/geom"
)

// Class is the first byte of an object's packed type: what kind of
// geometry the object carries.
type Class uint8

const (
	ClassPoint   Class = 0
	ClassLine    Class = 1
	ClassPolygon Class = 2
	ClassText    Class = 3
	ClassNone    Class = 0xFF
)

func (c Class) String() string {
	switch c {
	case ClassPoint:
		return "point"
	case ClassLine:
		return "line"
	case ClassPolygon:
		return "area"
	case ClassText:
		return "text"
	default:
		return "none"
	}
}

// Align is a text object's anchor point relative to its reference
// coordinate, the 8 compass points plus center.
type Align uint8

const (
	AlignSW Align = iota
	AlignW
	AlignNW
	AlignN
	AlignNE
	AlignE
	AlignSE
	AlignS
	AlignC
)

var alignNames = [...]string{"SW", "W", "NW", "N", "NE", "E", "SE", "S", "C"}

func (a Align) String() string {
	if int(a) < len(alignNames) {
		return alignNames[a]
	}
	return "SW"
}

// ParseAlign parses one of the strings in alignNames (case
// insensitive); unrecognized input yields AlignSW.
func ParseAlign(s string) Align {
	s = strings.ToUpper(s)
	for i, n := range alignNames {
		if n == s {
			return Align(i)
		}
	}
	return AlignSW
}

// NoRefType is the sentinel ref_type/type value meaning "no parent
// object" / "no type assigned".
const NoRefType = 0xFFFFFFFF

// MakeType assembles a packed object type from a class and a type
// number (0..0xFFFFFF). Grounded on VMap2obj::make_type.
func MakeType(cl Class, tnum uint32) uint32 {
	return uint32(cl)<<24 | (tnum & 0xFFFFFF)
}

// ClassOf extracts the Class from a packed type.
func ClassOf(t uint32) Class {
	if t == NoRefType {
		return ClassNone
	}
	return Class(t >> 24)
}

// TypeNum extracts the type number from a packed type.
func TypeNum(t uint32) uint32 { return t & 0xFFFFFF }

// ParseType parses a "class:number" string such as "point:0x1f" or
// "area:42" into a packed type.
func ParseType(s string) (uint32, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("vmap2: bad type string %q, want class:number", s)
	}
	var cl Class
	switch strings.ToLower(parts[0]) {
	case "point":
		cl = ClassPoint
	case "line":
		cl = ClassLine
	case "area", "polygon":
		cl = ClassPolygon
	case "text":
		cl = ClassText
	default:
		return 0, fmt.Errorf("vmap2: unknown class %q", parts[0])
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(parts[1], "0x"), hexOrDec(parts[1]), 32)
	if err != nil {
		return 0, fmt.Errorf("vmap2: bad type number %q: %w", parts[1], err)
	}
	return MakeType(cl, uint32(n)), nil
}

func hexOrDec(s string) int {
	if strings.HasPrefix(s, "0x") {
		return 16
	}
	return 10
}

// PrintType renders a packed type as "class:0x......" (6 hex digits).
func PrintType(t uint32) string {
	return fmt.Sprintf("%s:0x%06x", ClassOf(t), TypeNum(t))
}

// Obj is a single map object: WGS84 lon/lat geometry (points, lines,
// polygon rings, or a single label point for text objects) plus type,
// rendering hints and optional soft linkage to a parent object.
// Grounded on original_source/vmap2/vmap2obj.h's VMap2obj.
type Obj struct {
	Coords geom.MultiLine

	Type  uint32
	Angle float64 // degrees clockwise, NaN if unset
	Scale float64 // default 1
	Align Align
	Name  string
	Comm  string
	Tags  map[string]string

	RefPt   geom.Point
	RefType uint32 // NoRefType if this object is not a label

	Dir *uint32 // optional direction tag (e.g. traffic flow), nil if absent
	Src string  // optional source-attribution tag, "" if absent
}

// NewObj returns an object of the given packed type with mapsoft2's
// defaults (Angle undefined, Scale 1, RefType NoRefType).
func NewObj(t uint32) *Obj {
	return &Obj{Type: t, Angle: math.NaN(), Scale: 1, RefType: NoRefType}
}

// Class returns the object's geometry classification.
func (o *Obj) Class() Class { return ClassOf(o.Type) }

// RefClass returns the classification of the object this label is
// attached to, or ClassNone if it has no parent.
func (o *Obj) RefClass() Class { return ClassOf(o.RefType) }

// HasRef reports whether this object carries a soft link to a parent.
func (o *Obj) HasRef() bool { return o.RefType != NoRefType }

// BBox returns the bounding box of the object's coordinates.
func (o *Obj) BBox() geom.Rect { return o.Coords.BBox() }

// SetPoint sets the object's geometry to a single point (for point
// and text objects).
func (o *Obj) SetPoint(p geom.Point) {
	o.Coords = geom.MultiLine{{p}}
}

// Point returns the object's first coordinate, for point/text
// objects. Returns the zero point if the object has no geometry.
func (o *Obj) Point() geom.Point {
	if len(o.Coords) == 0 || len(o.Coords[0]) == 0 {
		return geom.Point{}
	}
	return o.Coords[0][0]
}

// AddTags parses a whitespace-separated tag list into Tags (each tag
// maps to the empty string, matching mapsoft2's flag-tag convention
// for old vmap2/mp text fields).
func (o *Obj) AddTags(s string) {
	if o.Tags == nil {
		o.Tags = map[string]string{}
	}
	for _, w := range strings.Fields(s) {
		o.Tags[w] = ""
	}
}

// HasTag reports whether tag is present.
func (o *Obj) HasTag(tag string) bool {
	_, ok := o.Tags[tag]
	return ok
}

// IsSameHead reports whether o and other have identical headers
// (everything except coordinates), mirroring VMap2obj::is_same_head.
func (o *Obj) IsSameHead(other *Obj) bool {
	angEq := o.Angle == other.Angle || (math.IsNaN(o.Angle) && math.IsNaN(other.Angle))
	return o.Type == other.Type && angEq && o.Scale == other.Scale &&
		o.Align == other.Align && o.Name == other.Name && o.Comm == other.Comm &&
		o.RefType == other.RefType && o.RefPt == other.RefPt && tagsEqual(o.Tags, other.Tags)
}

func tagsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// SortByType sorts objects in place by packed type, matching the
// natural ordering VMap2obj::operator< starts with.
func SortByType(objs []*Obj) {
	sort.Slice(objs, func(i, j int) bool { return objs[i].Type < objs[j].Type })
}
