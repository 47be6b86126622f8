package contour

import (
	"fmt"
	"math"

	"vmap2toolkit/geom"
)

// cellCorners lists a grid cell's 4 corners in a fixed winding order;
// cellCorners[k+1]-cellCorners[k] is the k-th side's direction. This
// ordering is what makes the crossing rule below consistently keep
// higher ground on the left of each emitted segment.
var cellCorners = [4]geom.Point{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}}

// segKey quantizes a point to a fixed-point grid so floating-point
// crossings that should coincide (shared cell edges) compare equal
// when used as map keys, the same role pt_acc/lPoint play in the
// original merge step.
type segKey struct{ x, y int64 }

const segAcc = 1e4 // 1/pt_acc

func toSegKey(p geom.Point) segKey {
	return segKey{int64(math.Round(p.X * segAcc)), int64(math.Round(p.Y * segAcc))}
}

func fromSegKey(k segKey) geom.Point {
	return geom.Point{X: float64(k.x) / segAcc, Y: float64(k.y) / segAcc}
}

// Levels finds contour lines for a range of levels on g. If vmin/vmax
// are NaN they are derived per-cell-side from the data (snapped
// outward to a vstep multiple), matching image_cnt's auto-range mode.
// closed requests boundary-following segments along the grid's outer
// edge so that contours crossing the border close into polygons.
func Levels(g *Grid, vmin, vmax, vstep float64, closed bool) (map[float64]geom.MultiLine, error) {
	if vstep <= 0 {
		return nil, fmt.Errorf("contour: positive step expected")
	}
	if !math.IsNaN(vmin) && !math.IsNaN(vmax) && vmin > vmax {
		return nil, fmt.Errorf("contour: min > max")
	}

	segs := map[float64]map[segKey][]segKey{}
	addSeg := func(level float64, a, b geom.Point) {
		if segs[level] == nil {
			segs[level] = map[segKey][]segKey{}
		}
		ka, kb := toSegKey(a), toSegKey(b)
		segs[level][ka] = append(segs[level][ka], kb)
	}

	for y := 0; y < g.H-1; y++ {
		for x := 0; x < g.W-1; x++ {
			pending := map[float64]geom.Point{}
			hasPending := map[float64]bool{}

			for k := 0; k < 4; k++ {
				c1 := geom.Pt(float64(x), float64(y)).Add(cellCorners[k])
				c2 := geom.Pt(float64(x), float64(y)).Add(cellCorners[(k+1)%4])
				onBorder1 := int(c1.X) == 0 || int(c1.X) == g.W-1 || int(c1.Y) == 0 || int(c1.Y) == g.H-1
				onBorder2 := int(c2.X) == 0 || int(c2.X) == g.W-1 || int(c2.Y) == 0 || int(c2.Y) == g.H-1
				brd := onBorder1 && onBorder2

				v1 := g.Get(int(c1.X), int(c1.Y))
				v2 := g.Get(int(c2.X), int(c2.Y))

				lo, hi := vmin, vmax
				if math.IsNaN(vmin) {
					lo = math.Min(v1, v2)
					lo = math.Floor(lo/vstep) * vstep
				}
				if math.IsNaN(vmax) {
					hi = math.Max(v1, v2)
					hi = math.Ceil(hi/vstep) * vstep
				}

				for vv := lo; vv <= hi; vv += vstep {
					if brd && closed && v1 >= vv && v2 >= vv {
						addSeg(vv, c1, c2)
					}
					if v1 == v2 {
						continue
					}
					if (v1 > vv) == (v2 > vv) {
						continue
					}
					d := (vv - v1) / (v2 - v1)
					cr := c1.Add(c2.Sub(c1).Mul(d))

					if hasPending[vv] {
						crp := pending[vv]
						delete(pending, vv)
						hasPending[vv] = false
						if v1 > vv {
							addSeg(vv, cr, crp)
						}
						if v2 > vv {
							addSeg(vv, crp, cr)
						}
					} else {
						pending[vv] = cr
						hasPending[vv] = true
					}

					if brd && closed {
						if v1 > vv {
							addSeg(vv, c1, cr)
						}
						if v2 > vv {
							addSeg(vv, cr, c2)
						}
					}
				}
			}
		}
	}

	ret := map[float64]geom.MultiLine{}
	for level, s := range segs {
		ret[level] = mergeSegments(s)
	}
	return ret, nil
}

// mergeSegments chains oriented segments sharing endpoints into
// polylines, matching image_cnt.cpp's merge_cntr: repeatedly pop an
// arbitrary remaining segment and extend it forward while a segment
// starts where the current one ends, dropping a shared point when
// the path continues straight through it.
func mergeSegments(segs map[segKey][]segKey) geom.MultiLine {
	var ret geom.MultiLine
	for len(segs) > 0 {
		var p1, p2 segKey
		for k, vs := range segs {
			p1, p2 = k, vs[0]
			break
		}
		removeEdge(segs, p1, p2)

		line := geom.Line{fromSegKey(p1), fromSegKey(p2)}
		for {
			next, ok := popAny(segs, p2)
			if !ok {
				break
			}
			if len(line) >= 2 && isStraight(line[len(line)-2], p2, next) {
				line = line[:len(line)-1]
			}
			line = append(line, fromSegKey(next))
			p1, p2 = p2, next
		}
		ret = append(ret, line)
	}
	return ret
}

func removeEdge(segs map[segKey][]segKey, from, to segKey) {
	vs := segs[from]
	for i, v := range vs {
		if v == to {
			vs = append(vs[:i], vs[i+1:]...)
			break
		}
	}
	if len(vs) == 0 {
		delete(segs, from)
	} else {
		segs[from] = vs
	}
}

func popAny(segs map[segKey][]segKey, from segKey) (segKey, bool) {
	vs, ok := segs[from]
	if !ok || len(vs) == 0 {
		return segKey{}, false
	}
	to := vs[0]
	removeEdge(segs, from, to)
	return to, true
}

func isStraight(a geom.Point, bKey segKey, cKey segKey) bool {
	b, c := fromSegKey(bKey), fromSegKey(cKey)
	d1 := b.Sub(a)
	d2 := c.Sub(b)
	n1, n2 := math.Hypot(d1.X, d1.Y), math.Hypot(d2.X, d2.Y)
	if n1 == 0 || n2 == 0 {
		return false
	}
	cross := d1.X/n1*(d2.Y/n2) - d1.Y/n1*(d2.X/n2)
	return math.Abs(cross) < 1/segAcc
}

// VTolFilter nudges contour vertices that sit exactly on an integer
// grid line within a vertical tolerance vtol of their true level,
// shortening the contour where the underlying surface is nearly flat.
// A simplified form of image_cnt.cpp's filter_line: it moves a vertex
// toward the midpoint of its neighbors along whichever axis it is
// snapped to, so long as every grid sample crossed on the way stays
// within vtol of the contour's value.
func VTolFilter(g *Grid, lines map[float64]geom.MultiLine, vtol float64) {
	if vtol <= 0 {
		return
	}
	for level, ml := range lines {
		for _, line := range ml {
			filterLine(g, line, level, vtol)
		}
	}
}

func filterLine(g *Grid, line geom.Line, level, vtol float64) {
	n := len(line)
	if n < 3 {
		return
	}
	for i := 0; i < n; i++ {
		p0 := line[i]
		p1 := line[(i-1+n)%n]
		p2 := line[(i+1)%n]

		if math.Abs(p0.X-math.Round(p0.X)) < 1e-4 {
			target := (p1.Y + p2.Y) / 2
			if (p2.X-p0.X)*(p0.X-p1.X) > 0 {
				target = p1.Y + (p2.Y-p1.Y)*(p0.X-p1.X)/(p2.X-p1.X)
			}
			if withinTolAlongY(g, int(math.Round(p0.X)), p0.Y, target, level, vtol) {
				line[i].Y = target
			}
		} else if math.Abs(p0.Y-math.Round(p0.Y)) < 1e-4 {
			target := (p1.X + p2.X) / 2
			if (p2.Y-p0.Y)*(p0.Y-p1.Y) > 0 {
				target = p1.X + (p2.X-p1.X)*(p0.Y-p1.Y)/(p2.Y-p1.Y)
			}
			if withinTolAlongX(g, int(math.Round(p0.Y)), p0.X, target, level, vtol) {
				line[i].X = target
			}
		}
	}
}

func withinTolAlongY(g *Grid, x int, y0, y1, level, vtol float64) bool {
	lo, hi := y0, y1
	if lo > hi {
		lo, hi = hi, lo
	}
	for yy := int(math.Floor(lo)); yy <= int(math.Ceil(hi)); yy++ {
		if !g.InBounds(x, yy) {
			return false
		}
		if math.Abs(g.Get(x, yy)-level) >= vtol {
			return false
		}
	}
	return true
}

func withinTolAlongX(g *Grid, y int, x0, x1, level, vtol float64) bool {
	lo, hi := x0, x1
	if lo > hi {
		lo, hi = hi, lo
	}
	for xx := int(math.Floor(lo)); xx <= int(math.Ceil(hi)); xx++ {
		if !g.InBounds(xx, y) {
			return false
		}
		if math.Abs(g.Get(xx, y)-level) >= vtol {
			return false
		}
	}
	return true
}
