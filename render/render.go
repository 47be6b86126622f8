package render

import (
	"fmt"
	"image/color"
	"math"

	"vmap2toolkit/catalog"
	"vmap2toolkit/conv"
	"vmap2toolkit/geom"
	"vmap2toolkit/vmap2"
)

// Renderer drives one stylesheet over one object store and conversion,
// producing a raster image for a draw range. Grounded on spec.md
// §4.4's execution algorithm; step ordering and the minsc fallback
// follow original_source/geo_render's draw loop, reimplemented here
// against vmap2.Map/catalog.Catalog instead of a BerkeleyDB-backed
// mapdb and libgeo_render conversion chain.
type Renderer struct {
	Style *Stylesheet
	Cat   catalog.Catalog
	Map   *vmap2.Map
	Conv  conv.Conversion

	// Diag receives one line of human-readable trace per step, for
	// callers that want to see why a step drew nothing or fell back to
	// minsc_color; nil disables tracing.
	Diag func(string)
}

// pixelsPerMeter estimates the local scale of Conv near p by
// converting two nearby points and measuring their pixel separation
// against their geodesic separation, used for the minsc fallback and
// for scaling stroke widths/pattern sizes that are specified in
// millimeters-equivalent stylesheet units.
func (r *Renderer) pixelsPerMeter(wgs geom.Point) (float64, error) {
	const eps = 1e-5 // ~1m in degrees
	p0, err := r.Conv.FrwPt(wgs)
	if err != nil {
		return 0, err
	}
	p1, err := r.Conv.FrwPt(geom.Pt(wgs.X+eps, wgs.Y))
	if err != nil {
		return 0, err
	}
	pxDist := p0.Dist2(p1)
	geoDist := conv.GeoDist2D(wgs, geom.Pt(wgs.X+eps, wgs.Y))
	if geoDist == 0 {
		return 0, fmt.Errorf("render: degenerate scale sample")
	}
	return pxDist / geoDist, nil
}

func (r *Renderer) log(format string, args ...any) {
	if r.Diag != nil {
		r.Diag(fmt.Sprintf(format, args...))
	}
}

// Render draws the draw range (WGS84 rect) onto a canvas sized w×h.
// drawRange's pixel mapping is exactly Conv applied to its corners;
// callers building a GeoMap-backed conversion get that for free from
// GeoMap.Conv().
func (r *Renderer) Render(drawRange geom.Rect, w, h int) (*Canvas, error) {
	canvas := NewCanvas(w, h)

	if r.Style.MinSC > 0 {
		ppm, err := r.pixelsPerMeter(drawRange.Center())
		if err == nil && ppm > 0 {
			// scaleDenom is the map-scale denominator implied by this
			// pixel's footprint in meters (1 pixel represents
			// scaleDenom meters on the ground, so larger means more
			// zoomed out); below minsc the step list is skipped.
			metersPerPixel := 1 / ppm
			scaleDenom := metersPerPixel
			if scaleDenom < r.Style.MinSC {
				r.log("minsc fallback: scale 1:%.0f below minsc 1:%.0f, painting minsc_color", scaleDenom, r.Style.MinSC)
				canvas.FillPolygon(geom.MultiLine{{
					{X: 0, Y: 0}, {X: float64(w), Y: 0}, {X: float64(w), Y: float64(h)}, {X: 0, Y: float64(h)},
				}}, r.Style.MinSCColor)
				return canvas, nil
			}
		}
	}

	var clip geom.Rect
	hasClip := false

	for _, step := range r.Style.Steps {
		if step.Group != "" {
			r.log("step %s (group=%s): drawing", step.Sel.String(), step.Group)
		}
		queryRect := r.expandForFeatures(drawRange, step.Features)
		if hasClip {
			queryRect = intersectRect(queryRect, clip)
		}
		if queryRect.Empty() {
			continue
		}

		objs, err := r.queryStep(step, queryRect)
		if err != nil {
			return nil, err
		}
		r.log("step %s: %d objects", step.Sel.String(), len(objs))

		for _, o := range objs {
			if err := r.drawObject(canvas, step, o); err != nil {
				return nil, err
			}
		}

		for _, f := range step.Features {
			if f.Name == "clip" {
				clip = queryRect
				hasClip = true
			}
		}
	}

	return canvas, nil
}

func intersectRect(a, b geom.Rect) geom.Rect {
	if a.Empty() || b.Empty() {
		return geom.EmptyRect()
	}
	x0 := math.Max(a.X, b.X)
	y0 := math.Max(a.Y, b.Y)
	x1 := math.Min(a.X+a.W, b.X+b.W)
	y1 := math.Min(a.Y+a.H, b.Y+b.H)
	if x1 < x0 || y1 < y0 {
		return geom.EmptyRect()
	}
	return geom.Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// expandForFeatures grows the base draw range by the step's maximum
// spatial demand: stroke width, pattern/image radius, move_to/move_from
// search distance, per spec.md §4.4 step 1.
func (r *Renderer) expandForFeatures(base geom.Rect, features []Feature) geom.Rect {
	extra := 0.0
	for _, f := range features {
		switch f.Name {
		case "stroke":
			if len(f.Args) >= 2 {
				if w, err := parseNum(f.Args[1]); err == nil && w > extra {
					extra = w
				}
			}
		case "move_to", "move_from", "rotate_to":
			if len(f.Args) >= 1 {
				if d, err := parseNum(f.Args[0]); err == nil && d > extra {
					extra = d
				}
			}
		case "img", "patt":
			if len(f.Args) >= 2 {
				if s, err := parseNum(f.Args[1]); err == nil && s > extra {
					extra = s
				}
			}
		}
	}
	if extra == 0 {
		return base
	}
	return geom.Rect{X: base.X - extra, Y: base.Y - extra, W: base.W + 2*extra, H: base.H + 2*extra}
}

func parseNum(s string) (float64, error) {
	var f float64
	_, err := fmt.Sscanf(s, "%g", &f)
	return f, err
}

// queryStep resolves a step's selector against the object store,
// returning objects whose backward-projected bbox intersects rectWGS.
func (r *Renderer) queryStep(step Step, rectPx geom.Rect) ([]*vmap2.Obj, error) {
	if step.Sel.Kind != SelType {
		return nil, nil // "map"/"brd" steps draw the border/background, handled by the caller's background fill.
	}
	rectWGS, err := r.pixelRectToWGS(rectPx)
	if err != nil {
		return nil, err
	}
	typ := vmap2.MakeType(step.Sel.Class, step.Sel.TypeNo)
	ids := r.Map.FindType(typ, rectWGS)
	objs := make([]*vmap2.Obj, 0, len(ids))
	for _, id := range ids {
		if o, ok := r.Map.Get(id); ok {
			objs = append(objs, o)
		}
	}
	return objs, nil
}

// pixelRectToWGS back-projects a pixel-space rect by inverting Conv at
// its four corners and taking their bounding box; Conv implementations
// here are all local/smooth enough (affine, composite, proj) that this
// is an adequate approximation for a query expansion.
func (r *Renderer) pixelRectToWGS(rectPx geom.Rect) (geom.Rect, error) {
	corners := []geom.Point{rectPx.TLC(), rectPx.BRC(),
		{X: rectPx.X, Y: rectPx.Y + rectPx.H}, {X: rectPx.X + rectPx.W, Y: rectPx.Y}}
	out := geom.EmptyRect()
	for _, c := range corners {
		wgs, err := r.backPt(c)
		if err != nil {
			return geom.EmptyRect(), err
		}
		out = out.Expand(wgs)
	}
	return out, nil
}

func (r *Renderer) backPt(p geom.Point) (geom.Point, error) {
	type backer interface {
		BckPt(geom.Point) (geom.Point, error)
	}
	if b, ok := r.Conv.(backer); ok {
		return b.BckPt(p)
	}
	return geom.Point{}, fmt.Errorf("render: conversion has no inverse")
}

// drawObject transforms one object to pixel space, adds any rotate
// feature to the object's angle, then emits the step's fill, stroke
// and write features in the order the step lists them. move_to,
// move_from, pattern and image features are not applied here.
func (r *Renderer) drawObject(canvas *Canvas, step Step, o *vmap2.Obj) error {
	px, err := conv.FrwMulti(r.Conv, o.Coords)
	if err != nil {
		return err
	}

	angle := o.Angle * math.Pi / 180
	if math.IsNaN(angle) {
		angle = 0
	}

	for _, f := range step.Features {
		switch f.Name {
		case "rotate":
			if len(f.Args) == 1 {
				if a, err := parseNum(f.Args[0]); err == nil {
					angle += a * math.Pi / 180
				}
			}
		}
	}

	for _, f := range step.Features {
		switch f.Name {
		case "fill":
			if len(f.Args) >= 1 {
				if c, err := ParseColor(f.Args[0]); err == nil {
					canvas.FillPolygon(px, c)
				}
			}
		case "stroke":
			if len(f.Args) >= 2 {
				c, cerr := ParseColor(f.Args[0])
				w, werr := parseNum(f.Args[1])
				if cerr == nil && werr == nil {
					canvas.StrokeMultiLine(px, w, c)
				}
			}
		case "write":
			if len(f.Args) >= 1 && o.Class() == vmap2.ClassText {
				if c, err := ParseColor(f.Args[0]); err == nil {
					r.drawLabel(canvas, o, px, angle, c)
				}
			}
		}
	}
	return nil
}

func (r *Renderer) drawLabel(canvas *Canvas, o *vmap2.Obj, px geom.MultiLine, angle float64, col color.NRGBA) {
	if len(px) == 0 || len(px[0]) == 0 {
		return
	}
	anchor := px[0][0]
	x, y := anchor.X, anchor.Y
	switch o.Align {
	case vmap2.AlignE, vmap2.AlignNE, vmap2.AlignSE:
	case vmap2.AlignW, vmap2.AlignNW, vmap2.AlignSW:
		x -= float64(len(o.Name)) * 7 * o.Scale
	case vmap2.AlignC, vmap2.AlignN, vmap2.AlignS:
		x -= float64(len(o.Name)) * 7 * o.Scale / 2
	}
	canvas.DrawText(o.Name, x, y, angle, col)
}
