package contour

import (
	"fmt"
	"math"

	"vmap2toolkit/geom"
)

// neighbor8 lists the 8-connected offsets in the same index order the
// original's adjacent()/is_adjacent() pair used, so a direction index
// can be stored compactly per cell.
var neighbor8 = [8]struct{ dx, dy int }{
	{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

type iPoint struct{ x, y int }

func (p iPoint) adjacent(dir int) iPoint {
	d := neighbor8[dir%8]
	return iPoint{p.x + d.dx, p.y + d.dy}
}

// tracer walks steepest-descent (or ascent) steps from a starting
// cell, tracking the no-progress run length so callers can detect
// sinkless flats, grounded on image_trace.cpp's trace_gear.
type tracer struct {
	g          *Grid
	down       bool
	processed  map[iPoint]bool
	border     map[iPoint]bool
	p1, p2     iPoint
	h1         float64
	noProgress int
}

func newTracer(g *Grid, p0 iPoint, down bool) (*tracer, error) {
	if !g.InBounds(p0.x, p0.y) {
		return nil, fmt.Errorf("contour: trace start (%d,%d) outside grid", p0.x, p0.y)
	}
	t := &tracer{g: g, down: down, processed: map[iPoint]bool{p0: true}, border: map[iPoint]bool{}, p1: p0, p2: p0, h1: g.Get(p0.x, p0.y)}
	for i := 0; i < 8; i++ {
		t.border[p0.adjacent(i)] = true
	}
	return t, nil
}

// step advances to the best untried neighbor; it returns false when
// any bordering cell is outside the grid (edge of data reached) or
// when no bordering cell has a usable height.
func (t *tracer) step() bool {
	var best iPoint
	bestH := math.NaN()
	hitEdge := false
	for b := range t.border {
		if !t.g.InBounds(b.x, b.y) {
			hitEdge = true
			continue
		}
		hh := t.g.Get(b.x, b.y)
		if math.IsNaN(bestH) || (!t.down && hh > bestH) || (t.down && hh < bestH) {
			bestH, best = hh, b
		}
	}
	if hitEdge {
		return false
	}
	if math.IsNaN(bestH) {
		return false
	}

	t.processed[best] = true
	delete(t.border, best)
	for i := 0; i < 8; i++ {
		b := best.adjacent(i)
		if !t.processed[b] {
			t.border[b] = true
		}
	}
	t.p2 = best
	if (!t.down && bestH > t.h1) || (t.down && bestH < t.h1) {
		t.h1 = bestH
		t.p1 = best
		t.noProgress = 0
	} else {
		t.noProgress++
	}
	return true
}

// TraceRiver follows the steepest path from p0 (down for rivers, up
// for ridges) until it has gone nmax steps without improving on its
// best point or the best point's height passes hmin, then retraces
// the visited order back to p0 to produce a single connected line.
// Grounded on image_trace.cpp's trace_river.
func TraceRiver(g *Grid, x0, y0, nmax int, hmin float64, down bool) (geom.Line, error) {
	p0 := iPoint{x0, y0}
	t, err := newTracer(g, p0, down)
	if err != nil {
		return nil, err
	}
	visited := []iPoint{p0}
	for t.step() {
		visited = append(visited, t.p2)
		if t.noProgress > nmax {
			break
		}
		if (down && t.h1 < hmin) || (!down && t.h1 > hmin) {
			break
		}
	}

	var ret geom.Line
	p := t.p1
	ret = append(ret, geom.Pt(float64(p.x), float64(p.y)))
	for p != p0 {
		found := false
		for _, b := range visited {
			if isAdjacent(b, p) {
				p = b
				ret = append(ret, geom.Pt(float64(p.x), float64(p.y)))
				found = true
				break
			}
		}
		if !found {
			break
		}
	}
	return ret, nil
}

func isAdjacent(a, b iPoint) bool {
	dx, dy := a.x-b.x, a.y-b.y
	if dx == 0 && dy == 0 {
		return false
	}
	return dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1
}

// SinkDirections computes, for every cell, the 8-direction index of
// its descent step (or 8 for a local sink / no-progress cell),
// grounded on image_trace.cpp's trace_map_dirs. nmax bounds how many
// no-progress steps are tolerated before a cell is marked a sink.
func SinkDirections(g *Grid, nmax int, down bool) (*Grid, error) {
	dirs := NewGrid(g.W, g.H)
	const unknown = -1
	for i := range dirs.data {
		dirs.data[i] = unknown
	}

	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			if dirs.Get(x, y) != unknown {
				continue
			}
			if err := traceGoDown(g, dirs, iPoint{x, y}, nmax, down); err != nil {
				return nil, err
			}
		}
	}
	return dirs, nil
}

func traceGoDown(g, dirs *Grid, p0 iPoint, nmax int, down bool) error {
	t, err := newTracer(g, p0, down)
	if err != nil {
		return err
	}
	visited := []iPoint{p0}
	for t.step() {
		visited = append(visited, t.p2)
		if nmax > 0 && t.noProgress > nmax {
			break
		}
		if dirs.Get(t.p2.x, t.p2.y) != -1 {
			t.p1 = t.p2
			break
		}
	}

	p := t.p1
	if dirs.Get(p.x, p.y) == -1 {
		dirs.Set(p.x, p.y, 8)
	}
	for p != p0 {
		found := false
		for _, b := range visited {
			dir, ok := directionTo(b, p)
			if !ok {
				continue
			}
			p = b
			dirs.Set(p.x, p.y, float64(dir))
			found = true
			break
		}
		if !found {
			break
		}
	}
	return nil
}

func directionTo(from, to iPoint) (int, bool) {
	for i := 0; i < 8; i++ {
		if from.adjacent(i) == to {
			return i, true
		}
	}
	return 0, false
}

// SinkAreas counts, for every cell, how many cells eventually flow
// through it following dirs, grounded on image_trace.cpp's
// trace_map_areas.
func SinkAreas(dirs *Grid) *Grid {
	areas := NewGrid(dirs.W, dirs.H)
	for y := 0; y < dirs.H; y++ {
		for x := 0; x < dirs.W; x++ {
			p := iPoint{x, y}
			for dirs.InBounds(p.x, p.y) {
				areas.Set(p.x, p.y, areas.Get(p.x, p.y)+1)
				dir := int(dirs.Get(p.x, p.y))
				if dir < 0 || dir > 7 {
					break
				}
				p = p.adjacent(dir)
			}
		}
	}
	return areas
}

// Network traces the full river/ridge network of a DEM: it computes
// sink directions and areas, finds cells whose catchment area exceeds
// minArea and whose height deviates from its catchment's average
// height by more than minDH, then walks from the highest (rivers) or
// lowest (ridges) remaining seed down its flow path, breaking the
// trace where a larger stream joins. Grounded on image_trace.cpp's
// trace_map.
func Network(dem *Grid, nmax int, down bool, minArea, minDH float64) (geom.MultiLine, error) {
	dirs, err := SinkDirections(dem, nmax, down)
	if err != nil {
		return nil, err
	}
	areas := SinkAreas(dirs)

	hdiff := NewGrid(dem.W, dem.H)
	for y := 0; y < dem.H; y++ {
		for x := 0; x < dem.W; x++ {
			p := iPoint{x, y}
			h := dem.Get(x, y)
			for dirs.InBounds(p.x, p.y) {
				hdiff.Set(p.x, p.y, hdiff.Get(p.x, p.y)+h)
				dir := int(dirs.Get(p.x, p.y))
				if dir < 0 || dir > 7 {
					break
				}
				p = p.adjacent(dir)
			}
		}
	}

	var pts []candidate
	for y := 0; y < dem.H; y++ {
		for x := 0; x < dem.W; x++ {
			a := areas.Get(x, y)
			s := hdiff.Get(x, y)
			h := dem.Get(x, y)
			dh := math.Abs(h - s/math.Max(a, 1))
			hdiff.Set(x, y, dh)
			if a > minArea && dh > minDH {
				pts = append(pts, candidate{iPoint{x, y}, h})
			}
		}
	}

	taken := map[iPoint]bool{}
	var ret geom.MultiLine
	for {
		seedIdx := -1
		for i, c := range pts {
			if taken[c.p] {
				continue
			}
			if seedIdx == -1 {
				seedIdx = i
				continue
			}
			if down && c.h > pts[seedIdx].h {
				seedIdx = i
			}
			if !down && c.h < pts[seedIdx].h {
				seedIdx = i
			}
		}
		if seedIdx == -1 {
			break
		}
		p := pts[seedIdx].p

		var line geom.Line
		a0 := areas.Get(p.x, p.y)
		for dirs.InBounds(p.x, p.y) {
			line = append(line, geom.Pt(float64(p.x), float64(p.y)))
			taken[p] = true
			dir := int(dirs.Get(p.x, p.y))
			if dir < 0 || dir > 7 {
				break
			}
			a := areas.Get(p.x, p.y)
			dh := hdiff.Get(p.x, p.y)
			if a > 2*a0 && dh > minDH {
				break
			}
			p = p.adjacent(dir)
			a0 = a
		}
		ret = append(ret, smoothLine(line))
	}
	return ret, nil
}

type candidate struct {
	p iPoint
	h float64
}

// smoothLine averages each interior vertex with its predecessor,
// matching trace_map's final pixel-precision smoothing pass.
func smoothLine(l geom.Line) geom.Line {
	for i := 0; i+2 < len(l); i++ {
		l[i+1] = l[i].Add(l[i+1]).Mul(0.5)
	}
	return l
}

// Peaks finds local maxima whose prominence (minimum descent needed
// to reach a higher point) is at least dh, skipping peaks below minh.
// Reconstructed from image_cnt.h's documented contract (its
// implementation file was not present in the retrieved source): each
// candidate cell is grown outward, accepting neighboring cells that
// are no higher than the seed and at most dh below it, until the
// component has no more such neighbors or reaches the sample cap ps;
// the seed is confirmed a peak if no neighbor met during the growth
// was higher than the seed.
func Peaks(g *Grid, dh float64, ps int, minh float64) (geom.Line, error) {
	if dh <= 0 {
		return nil, fmt.Errorf("contour: positive dh expected")
	}
	if ps <= 0 {
		ps = g.W * g.H
	}

	type cell struct{ x, y int }
	visited := make([]bool, g.W*g.H)
	idx := func(x, y int) int { return y*g.W + x }

	var peaks geom.Line
	order := make([]cell, 0, g.W*g.H)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			order = append(order, cell{x, y})
		}
	}
	for _, seed := range order {
		if visited[idx(seed.x, seed.y)] {
			continue
		}
		h0 := g.Get(seed.x, seed.y)
		if !math.IsNaN(minh) && h0 < minh {
			continue
		}

		component := map[cell]bool{seed: true}
		queue := []cell{seed}
		isPeak := true
		for len(queue) > 0 && len(component) < ps {
			c := queue[0]
			queue = queue[1:]
			p := iPoint{c.x, c.y}
			for i := 0; i < 8; i++ {
				n := p.adjacent(i)
				if !g.InBounds(n.x, n.y) {
					continue
				}
				nc := cell{n.x, n.y}
				if component[nc] {
					continue
				}
				hn := g.Get(n.x, n.y)
				if hn > h0 {
					isPeak = false
					continue
				}
				if h0-hn <= dh {
					component[nc] = true
					queue = append(queue, nc)
				}
			}
		}
		for c := range component {
			visited[idx(c.x, c.y)] = true
		}
		if isPeak {
			peaks = append(peaks, geom.Pt(float64(seed.x), float64(seed.y)))
		}
	}
	return peaks, nil
}
