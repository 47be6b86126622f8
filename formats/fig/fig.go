// Package fig describes the Xfig drawing shape fig_to_vmap2 consumes
// and the REF/BRD comment conventions fig_get_ref reads a map
// reference from. Specified only through data shapes (§6.1): the
// numeric Xfig record grammar itself is out of scope, matching
// formats/mp and formats/vmaplegacy. Grounded on
// original_source/vmap2/vmap2io_fig.cpp and
// original_source/fig_geo/fig_geo.h.
package fig

import (
	"vmap2toolkit/geom"
	"vmap2toolkit/vmap2"
)

// Kind is the subset of Xfig object types fig_to_vmap2 looks at:
// polylines/splines (is_polyline/is_spline) and text (is_text).
type Kind int

const (
	KindPolyline Kind = iota
	KindText
)

// Object is the pen/fill/text attribute bundle fig_to_type matches
// against a catalog entry's fig_mask template object, plus the
// geometry and text content fig_to_vmap2 copies into a VMap2obj.
type Object struct {
	Kind Kind

	PenColor, FillColor int
	Depth, Thickness    int
	LineStyle, AreaFill int
	CapStyle, Font      int
	FontSize            float64
	AngleRad            float64 // text rotation, radians, fig convention

	Coords  geom.Line // single point, open line, or closed ring
	Closed  bool
	Text    string
	Comment []string // compound-object comment lines, carried to the first child object
}

// Template is one catalog entry's fig_mask attribute set, matched
// against an incoming Object by Match the way fig_to_type compares
// every field for equality (color/depth/thickness/line_style for
// lines, plus fill for polygons, plus font for text).
type Template struct {
	Type                Kind
	PenColor, FillColor int
	Depth, Thickness    int
	LineStyle, AreaFill int
	CapStyle, Font      int
}

// Match reports whether o matches tmpl under fig_to_type's rules:
// lines/splines compare depth+thickness always, plus color+line_style
// when thickness!=0, plus fill attributes when o has >1 point; single
// point records compare depth+thickness+color+cap_style parity; text
// records compare depth+color+font.
func Match(o Object, tmpl Template) bool {
	if o.Kind != tmpl.Type {
		return false
	}
	switch o.Kind {
	case KindText:
		return o.Depth == tmpl.Depth && o.PenColor == tmpl.PenColor && o.Font == tmpl.Font
	case KindPolyline:
		if len(o.Coords) == 1 {
			return o.Depth == tmpl.Depth && o.Thickness == tmpl.Thickness &&
				o.PenColor == tmpl.PenColor && (o.CapStyle%2) == (tmpl.CapStyle%2)
		}
		if o.Depth != tmpl.Depth || o.Thickness != tmpl.Thickness {
			return false
		}
		if o.Thickness != 0 && (o.PenColor != tmpl.PenColor || o.LineStyle != tmpl.LineStyle) {
			return false
		}
		af1, fc1 := normalizeFill(o.AreaFill, o.FillColor)
		af2, fc2 := normalizeFill(tmpl.AreaFill, tmpl.FillColor)
		if af1 != af2 {
			return false
		}
		if af1 != -1 && fc1 != fc2 {
			return false
		}
		if af1 > 41 && o.PenColor != tmpl.PenColor {
			return false
		}
		return true
	}
	return false
}

// normalizeFill collapses the two white-fill encodings fig_to_type
// treats as equivalent (area_fill 40 with a non-white color really
// means "white, solid fill", area_fill 20).
func normalizeFill(areaFill, fillColor int) (int, int) {
	if fillColor != 0xffffff && areaFill == 40 {
		return 20, 0xffffff
	}
	return areaFill, fillColor
}

// RefPoint is one "REF <lon> <lat>" comment object: a pixel coordinate
// paired with its geographic coordinate, used to build the affine (or
// higher-order) map reference fig_get_ref derives from a set of these.
type RefPoint struct {
	Pixel geom.Point
	Geo   geom.Point
}

// Document is a parsed Xfig drawing reduced to the pieces the vmap2
// FIG adapter needs: drawable objects plus the REF points and BRD
// border segments used to establish the map's geo-reference.
type Document struct {
	Objects []Object
	Refs    []RefPoint
	Border  []geom.Line // BRD-tagged polyline objects, one segment per object
}

// Import converts d's objects into vmap2 objects, ring-closing
// polygon coordinates already transformed to WGS84 by cnv (the
// caller's coordinate conversion built from d.Refs/d.Border, mirroring
// fig_get_ref + ConvMap in the original; Import itself does no
// projection math since the reference construction is out of scope
// for this adapter).
func Import(d *Document, templates map[uint32]Template, toWGS func(geom.Line) geom.Line, m *vmap2.Map) error {
	var pendingComment []string
	for _, o := range d.Objects {
		if len(pendingComment) > 0 && len(o.Comment) == 0 {
			o.Comment = pendingComment
			pendingComment = nil
		}

		var matched uint32
		found := false
		for typ, tmpl := range templates {
			if Match(o, tmpl) {
				matched, found = typ, true
				break
			}
		}
		if !found {
			continue
		}

		obj := vmap2.NewObj(matched)
		pts := o.Coords
		if toWGS != nil {
			pts = toWGS(pts)
		}
		if obj.Class() == vmap2.ClassText {
			obj.SetPoint(pts[0])
			obj.Name = o.Text
			obj.Angle = -o.AngleRad * 180 / 3.141592653589793
		} else {
			if o.Closed && len(pts) > 0 && pts[0] != pts[len(pts)-1] {
				pts = append(append(geom.Line{}, pts...), pts[0])
			}
			obj.Coords = geom.MultiLine{pts}
		}
		if len(o.Comment) > 0 {
			obj.Comm = o.Comment[0]
		}
		if _, err := m.Add(obj); err != nil {
			return err
		}
	}
	return nil
}
