package geom

import (
	"fmt"
	"math"
)

// ErrDegenerate reports that an operation's input collapsed to fewer
// dimensions than the operation requires, such as a convex hull
// requested for fewer than 3 distinct points.
type ErrDegenerate struct {
	Op  string
	Msg string
}

func (e *ErrDegenerate) Error() string {
	return fmt.Sprintf("geom: %s: %s", e.Op, e.Msg)
}

// Line is an ordered sequence of points.
type Line []Point

// MultiLine is an ordered sequence of Lines. Polygon semantics (§3.1):
// any closed MultiLine is interpreted with the even-odd fill rule; hole
// rings are inner rings whose points all lie inside an outer ring. The
// same type represents Point objects (one line, one point), Line
// objects (one or more lines) and Polygon objects (one or more rings).
type MultiLine []Line

// Length returns the sum of Euclidean segment lengths.
func (l Line) Length() float64 {
	var total float64
	for i := 1; i < len(l); i++ {
		total += l[i-1].Dist2(l[i])
	}
	return total
}

// BBox returns the axis-aligned bounding box of l.
func (l Line) BBox() Rect {
	r := EmptyRect()
	for _, p := range l {
		r = r.Expand(p)
	}
	return r
}

// BBox returns the bounding box over every point of every segment.
func (ml MultiLine) BBox() Rect {
	r := EmptyRect()
	for _, l := range ml {
		r = r.Union(l.BBox())
	}
	return r
}

// Length sums the length of every segment.
func (ml MultiLine) Length() float64 {
	var total float64
	for _, l := range ml {
		total += l.Length()
	}
	return total
}

// Clone returns an independent deep copy.
func (l Line) Clone() Line {
	out := make(Line, len(l))
	copy(out, l)
	return out
}

// Clone returns an independent deep copy.
func (ml MultiLine) Clone() MultiLine {
	out := make(MultiLine, len(ml))
	for i, l := range ml {
		out[i] = l.Clone()
	}
	return out
}

// IsClosed reports whether the first and last point of a line of at
// least two points coincide exactly.
func (l Line) IsClosed() bool {
	return len(l) >= 2 && l[0] == l[len(l)-1]
}

// Close returns l with its terminal point duplicated to match the
// first, unless it is already closed. Closing adds at most one point.
func (l Line) Close() Line {
	if len(l) < 2 || l.IsClosed() {
		return l.Clone()
	}
	out := make(Line, len(l), len(l)+1)
	copy(out, l)
	return append(out, l[0])
}

// Open removes a duplicated terminal point, if the line is closed.
// Opening a line with fewer than 2 points is a no-op.
func (l Line) Open() Line {
	if !l.IsClosed() {
		return l.Clone()
	}
	return l[:len(l)-1].Clone()
}

func mapLine(l Line, f func(Point) Point) Line {
	out := make(Line, len(l))
	for i, p := range l {
		out[i] = f(p)
	}
	return out
}

func mapMultiLine(ml MultiLine, f func(Point) Point) MultiLine {
	out := make(MultiLine, len(ml))
	for i, l := range ml {
		out[i] = mapLine(l, f)
	}
	return out
}

// Rint rounds every point's x,y to the nearest integer.
func (l Line) Rint() Line { return mapLine(l, Point.Rint) }

// Floor applies math.Floor to every point's x,y.
func (l Line) Floor() Line { return mapLine(l, Point.Floor) }

// Ceil applies math.Ceil to every point's x,y.
func (l Line) Ceil() Line { return mapLine(l, Point.Ceil) }

// Rint, Floor, Ceil: MultiLine variants.
func (ml MultiLine) Rint() MultiLine  { return mapMultiLine(ml, Point.Rint) }
func (ml MultiLine) Floor() MultiLine { return mapMultiLine(ml, Point.Floor) }
func (ml MultiLine) Ceil() MultiLine  { return mapMultiLine(ml, Point.Ceil) }

// Rotate rotates every point of l around c by angle radians.
func (l Line) Rotate(c Point, angle float64) Line {
	return mapLine(l, func(p Point) Point { return p.Rotate(c, angle) })
}

// Rotate: MultiLine variant.
func (ml MultiLine) Rotate(c Point, angle float64) MultiLine {
	return mapMultiLine(ml, func(p Point) Point { return p.Rotate(c, angle) })
}

// FlipY mirrors every point's y coordinate within [0, height], the
// image <-> geographic y-axis flip geomap builders need (§4.2).
func (l Line) FlipY(height float64) Line {
	return mapLine(l, func(p Point) Point { return Point{X: p.X, Y: height - p.Y, Z: p.Z} })
}

// FlipY: MultiLine variant.
func (ml MultiLine) FlipY(height float64) MultiLine {
	return mapMultiLine(ml, func(p Point) Point { return Point{X: p.X, Y: height - p.Y, Z: p.Z} })
}

// Shift translates every point of l by d.
func (l Line) Shift(d Point) Line {
	return mapLine(l, func(p Point) Point { return p.Add(d) })
}

// Shift: MultiLine variant.
func (ml MultiLine) Shift(d Point) MultiLine {
	return mapMultiLine(ml, func(p Point) Point { return p.Add(d) })
}

// Mul scales every point of l by k (x,y only, matching Point.Mul).
func (l Line) Mul(k float64) Line { return mapLine(l, func(p Point) Point { return p.Mul(k) }) }

// Mul: MultiLine variant.
func (ml MultiLine) Mul(k float64) MultiLine {
	return mapMultiLine(ml, func(p Point) Point { return p.Mul(k) })
}

// Smooth replaces l with a Catmull-Rom-like spline approximation: each
// original segment is subdivided, and intermediate points are pulled
// toward the local tangent so corners are rounded with a target
// deviation of about d (source units). d<=0 returns l unchanged.
func (l Line) Smooth(d float64) Line {
	if d <= 0 || len(l) < 3 {
		return l.Clone()
	}
	out := make(Line, 0, len(l)*4)
	out = append(out, l[0])
	for i := 0; i < len(l)-1; i++ {
		p0 := l[maxInt(i-1, 0)]
		p1 := l[i]
		p2 := l[i+1]
		p3 := l[minInt(i+2, len(l)-1)]
		segLen := p1.Dist2(p2)
		steps := int(math.Max(1, math.Ceil(segLen/math.Max(d, 1e-9))))
		if steps > 32 {
			steps = 32
		}
		for s := 1; s <= steps; s++ {
			t := float64(s) / float64(steps)
			out = append(out, catmullRom(p0, p1, p2, p3, t))
		}
	}
	return out
}

func catmullRom(p0, p1, p2, p3 Point, t float64) Point {
	t2 := t * t
	t3 := t2 * t
	x := 0.5 * ((2 * p1.X) + (-p0.X+p2.X)*t +
		(2*p0.X-5*p1.X+4*p2.X-p3.X)*t2 +
		(-p0.X+3*p1.X-3*p2.X+p3.X)*t3)
	y := 0.5 * ((2 * p1.Y) + (-p0.Y+p2.Y)*t +
		(2*p0.Y-5*p1.Y+4*p2.Y-p3.Y)*t2 +
		(-p0.Y+3*p1.Y-3*p2.Y+p3.Y)*t3)
	return Point{X: x, Y: y, Z: p1.Z}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// NearestPoint returns the closest point on any segment of l to p,
// along with the 2D distance to it. Returns (Point{}, +Inf) for an
// empty line.
func (l Line) NearestPoint(p Point) (Point, float64) {
	if len(l) == 0 {
		return Point{}, math.Inf(1)
	}
	if len(l) == 1 {
		return l[0], l[0].Dist2(p)
	}
	best := l[0]
	bestDist := best.Dist2(p)
	for i := 1; i < len(l); i++ {
		cand := closestOnSegment(l[i-1], l[i], p)
		if d := cand.Dist2(p); d < bestDist {
			best, bestDist = cand, d
		}
	}
	return best, bestDist
}

// NearestPoint: MultiLine variant, searching every segment of every line.
func (ml MultiLine) NearestPoint(p Point) (Point, float64) {
	best := Point{}
	bestDist := math.Inf(1)
	for _, l := range ml {
		cand, d := l.NearestPoint(p)
		if d < bestDist {
			best, bestDist = cand, d
		}
	}
	return best, bestDist
}

func closestOnSegment(a, b, p Point) Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	len2 := dx*dx + dy*dy
	if len2 == 0 {
		return a
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / len2
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return Point{X: a.X + t*dx, Y: a.Y + t*dy}
}

// RDP simplifies l with the Ramer-Douglas-Peucker algorithm at
// tolerance eps, preserving endpoints.
func (l Line) RDP(eps float64) Line {
	if len(l) < 3 || eps <= 0 {
		return l.Clone()
	}
	keep := make([]bool, len(l))
	keep[0], keep[len(l)-1] = true, true
	rdpRange(l, 0, len(l)-1, eps, keep)
	out := make(Line, 0, len(l))
	for i, k := range keep {
		if k {
			out = append(out, l[i])
		}
	}
	return out
}

func rdpRange(l Line, lo, hi int, eps float64, keep []bool) {
	if hi <= lo+1 {
		return
	}
	maxDist := -1.0
	maxIdx := -1
	for i := lo + 1; i < hi; i++ {
		d := perpDist(l[i], l[lo], l[hi])
		if d > maxDist {
			maxDist, maxIdx = d, i
		}
	}
	if maxDist > eps {
		keep[maxIdx] = true
		rdpRange(l, lo, maxIdx, eps, keep)
		rdpRange(l, maxIdx, hi, eps, keep)
	}
}

func perpDist(p, a, b Point) float64 {
	cand := closestOnSegment(a, b, p)
	return cand.Dist2(p)
}

// ConvexHull returns the convex hull of the line's points using the
// monotone-chain algorithm, as a closed Line (first point repeated at
// the end) in counter-clockwise order. Fewer than 3 distinct points
// can't bound a 2D hull, so it returns ErrDegenerate along with the
// (fewer than 3 point) input.
func (l Line) ConvexHull() (Line, error) {
	pts := make(Line, len(l))
	copy(pts, l)
	sortPoints(pts)
	pts = dedupSorted(pts)
	n := len(pts)
	if n < 3 {
		return pts, &ErrDegenerate{Op: "ConvexHull", Msg: fmt.Sprintf("only %d distinct point(s), need at least 3", n)}
	}
	hull := make(Line, 0, 2*n)
	// lower hull
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// upper hull
	lower := len(hull) + 1
	for i := n - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull, nil
}

func cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func sortPoints(pts Line) {
	// simple insertion sort by (x, y): hull inputs are typically small
	// (object vertex counts), so O(n^2) keeps this dependency-free.
	for i := 1; i < len(pts); i++ {
		j := i
		for j > 0 && less(pts[j], pts[j-1]) {
			pts[j], pts[j-1] = pts[j-1], pts[j]
			j--
		}
	}
}

func less(a, b Point) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

func dedupSorted(pts Line) Line {
	if len(pts) == 0 {
		return pts
	}
	out := pts[:1]
	for _, p := range pts[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}
