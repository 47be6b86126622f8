package geom

import "math"

// Rect is an axis-aligned rectangle anchored at its top/bottom-left
// corner (X, Y) with width W and height H. A Rect with W<0 or H<0 is
// considered empty (no enclosed area); a zero-sized Rect (W==0 || H==0)
// is valid and represents a degenerate line or point.
type Rect struct {
	X, Y, W, H float64
}

// EmptyRect returns a Rect that encloses no area and whose Expand is a
// no-op source (the canonical "nothing accumulated yet" value).
func EmptyRect() Rect { return Rect{W: -1, H: -1} }

// Empty reports whether r encloses no area.
func (r Rect) Empty() bool { return r.W < 0 || r.H < 0 }

// NewRect builds the rectangle spanning two corner points.
func NewRect(a, b Point) Rect {
	x0, x1 := math.Min(a.X, b.X), math.Max(a.X, b.X)
	y0, y1 := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// TLC returns the top/left corner (X, Y).
func (r Rect) TLC() Point { return Point{X: r.X, Y: r.Y} }

// BRC returns the bottom/right corner (X+W, Y+H).
func (r Rect) BRC() Point { return Point{X: r.X + r.W, Y: r.Y + r.H} }

// Center returns the rectangle's center point.
func (r Rect) Center() Point { return Point{X: r.X + r.W/2, Y: r.Y + r.H/2} }

// Contains reports whether p lies within r (inclusive of the boundary).
func (r Rect) Contains(p Point) bool {
	if r.Empty() {
		return false
	}
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Intersects reports whether r and o share any area or boundary.
func (r Rect) Intersects(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X <= o.X+o.W && o.X <= r.X+r.W && r.Y <= o.Y+o.H && o.Y <= r.Y+r.H
}

// Expand grows r (in place semantics via return value) to include p.
// Expanding an empty Rect produces the degenerate zero-size rect at p.
func (r Rect) Expand(p Point) Rect {
	if r.Empty() {
		return Rect{X: p.X, Y: p.Y, W: 0, H: 0}
	}
	x0, x1 := math.Min(r.X, p.X), math.Max(r.X+r.W, p.X)
	y0, y1 := math.Min(r.Y, p.Y), math.Max(r.Y+r.H, p.Y)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Union returns the smallest rectangle enclosing both r and o.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	x0, x1 := math.Min(r.X, o.X), math.Max(r.X+r.W, o.X+o.W)
	y0, y1 := math.Min(r.Y, o.Y), math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Rint rounds X,Y,W,H via the corner points, preserving the rectangle's
// extent under rounding.
func (r Rect) Rint() Rect {
	return NewRect(r.TLC().Rint(), r.BRC().Rint())
}

// Floor expands r outward to integer boundaries (top/left floored,
// bottom/right ceiled) so the result always contains the original rect.
func (r Rect) Floor() Rect {
	return NewRect(r.TLC().Floor(), r.BRC().Ceil())
}

// ToLine returns the rectangle boundary as a 4 (or 5, if closed) point
// line, starting at the top/left corner and going clockwise in the
// (x-right, y-down) image convention used by geomap pixel coordinates.
func (r Rect) ToLine(closed bool) Line {
	pts := []Point{
		{X: r.X, Y: r.Y},
		{X: r.X + r.W, Y: r.Y},
		{X: r.X + r.W, Y: r.Y + r.H},
		{X: r.X, Y: r.Y + r.H},
	}
	if closed {
		pts = append(pts, pts[0])
	}
	return Line(pts)
}
