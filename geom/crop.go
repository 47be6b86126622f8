package geom

// RectCrop crops line against cutter, clipping each of the four sides
// in turn and inserting exact intersection points at the cut boundary,
// the same side-by-side Sutherland-Hodgman-style sweep as mapsoft2's
// rect_crop. When closed is true the implicit segment between the last
// and first point is also considered. The result preserves point order
// and connectivity; callers that need independent segments should pass
// it to RectSplitCropped.
func RectCrop(cutter Rect, line Line, closed bool) Line {
	if cutter.Empty() || len(line) == 0 {
		return line.Clone()
	}
	xl, xh := cutter.X, cutter.X+cutter.W
	yl, yh := cutter.Y, cutter.Y+cutter.H
	if len(line) < 3 {
		closed = false
	}

	cur := line.Clone()
	for side := 0; side < 4; side++ {
		cur = cropSide(cur, side, xl, xh, yl, yh, closed)
	}
	return cur
}

// cropSide removes every point outside the given side's half-plane,
// inserting the boundary-crossing point(s) in its place.
func cropSide(line Line, side int, xl, xh, yl, yh float64, closed bool) Line {
	out := make(Line, 0, len(line))
	n := len(line)
	outside := func(p Point) bool {
		switch side {
		case 0:
			return p.X > xh
		case 1:
			return p.X < xl
		case 2:
			return p.Y > yh
		default:
			return p.Y < yl
		}
	}
	// intersection of segment a->b with this side's boundary line
	cutPoint := func(a, b Point) (Point, bool) {
		switch side {
		case 0:
			if (a.X < xh) == (b.X < xh) {
				return Point{}, false
			}
			t := (xh - a.X) / (b.X - a.X)
			return Point{X: xh, Y: a.Y + t*(b.Y-a.Y)}, true
		case 1:
			if (a.X > xl) == (b.X > xl) {
				return Point{}, false
			}
			t := (xl - a.X) / (b.X - a.X)
			return Point{X: xl, Y: a.Y + t*(b.Y-a.Y)}, true
		case 2:
			if (a.Y < yh) == (b.Y < yh) {
				return Point{}, false
			}
			t := (yh - a.Y) / (b.Y - a.Y)
			return Point{X: a.X + t*(b.X-a.X), Y: yh}, true
		default:
			if (a.Y > yl) == (b.Y > yl) {
				return Point{}, false
			}
			t := (yl - a.Y) / (b.Y - a.Y)
			return Point{X: a.X + t*(b.X-a.X), Y: yl}, true
		}
	}

	for i := 0; i < n; i++ {
		p := line[i]
		if !outside(p) {
			out = append(out, p)
			continue
		}
		// p is outside: emit crossing with previous point (if any) and
		// with the next point (if any), but not p itself.
		hasPrev := i > 0 || closed
		hasNext := i < n-1 || closed
		if hasPrev {
			var prev Point
			if i > 0 {
				prev = line[i-1]
			} else {
				prev = line[n-1]
			}
			if !outside(prev) {
				if cp, ok := cutPoint(p, prev); ok {
					out = append(out, cp)
				}
			}
		}
		if hasNext {
			var next Point
			if i < n-1 {
				next = line[i+1]
			} else {
				next = line[0]
			}
			if !outside(next) {
				if cp, ok := cutPoint(p, next); ok {
					out = append(out, cp)
				}
			}
		}
	}
	return out
}

// RectSplitCropped splits the (already RectCrop'd) line into independent
// segments, mirroring rect_split_cropped.
//
// For an open line this breaks it wherever a run of consecutive points
// lies exactly on the cutter boundary: a line doesn't enclose area, so
// a stretch running along the view edge is the gap between two
// visible pieces, not part of either.
//
// For a closed ring this must NOT use the same rule: RectCrop's
// per-side sweep already threads the clipped boundary along the
// cutter's edges wherever the original polygon needs to detour around
// a corner, so an edge lying on the boundary is normally a legitimate
// part of one connected ring, not a seam. The real seam only appears
// where the ring runs along the same cutter side twice in opposite
// directions -- the signature of two originally-separate lobes of the
// polygon meeting the view edge -- so that's what's detected and cut
// here, repeating until no such pair remains.
func RectSplitCropped(cutter Rect, cropped Line, closed bool) MultiLine {
	var ret MultiLine
	if len(cropped) == 0 {
		return ret
	}
	if len(cropped) == 1 {
		return MultiLine{cropped.Clone()}
	}
	xl, xh := cutter.X, cutter.X+cutter.W
	yl, yh := cutter.Y, cutter.Y+cutter.H

	if !closed {
		onBoundarySeg := func(a, b Point) bool {
			return (a.X == b.X && (b.X == xl || b.X == xh)) ||
				(a.Y == b.Y && (b.Y == yl || b.Y == yh))
		}
		var cur Line
		n := len(cropped)
		for i := 0; i < n-1; i++ {
			p, next := cropped[i], cropped[i+1]
			cur = append(cur, p)
			if onBoundarySeg(p, next) {
				if len(cur) > 0 {
					ret = append(ret, cur)
					cur = nil
				}
			}
		}
		cur = append(cur, cropped[n-1])
		if len(cur) > 0 {
			ret = append(ret, cur)
		}
		return ret
	}

	parts := []Line{cropped.Clone()}
	for {
		split := false
		for li := 0; li < len(parts) && !split; li++ {
			l := parts[li]
			n := len(l)
			for i := 0; i < n-1 && !split; i++ {
				p1a, p1b := l[i], l[i+1]
				for j := i + 1; j < n && !split; j++ {
					p2a := l[j]
					jb := j + 1
					var p2b Point
					if jb < n {
						p2b = l[jb]
					} else {
						jb = 0
						p2b = l[0]
					}
					if !seamPair(p1a, p1b, p2a, p2b, xl, xh, yl, yh) {
						continue
					}
					l1 := append(Line{}, l[:i+1]...)
					if jb != 0 {
						l1 = append(l1, l[jb:]...)
					}
					l2 := append(Line{}, l[i+1:j+1]...)
					parts[li] = l1
					parts = append(parts, l2)
					split = true
				}
			}
		}
		if !split {
			break
		}
	}
	for _, p := range parts {
		if len(p) > 0 {
			ret = append(ret, p)
		}
	}
	return ret
}

// seamPair reports whether segments (p1a,p1b) and (p2a,p2b) both lie on
// the same cutter side with one nested inside the other's extent along
// that side, mirroring rect_split_cropped's closed-ring split test.
func seamPair(p1a, p1b, p2a, p2b Point, xl, xh, yl, yh float64) bool {
	onX := (p1a.X == xl && p1b.X == xl && p2a.X == xl && p2b.X == xl) ||
		(p1a.X == xh && p1b.X == xh && p2a.X == xh && p2b.X == xh)
	nestedY := (p1a.Y <= p2b.Y && p2b.Y <= p2a.Y && p2a.Y <= p1b.Y) ||
		(p2a.Y <= p1b.Y && p1b.Y <= p1a.Y && p1a.Y <= p2b.Y) ||
		(p1a.Y >= p2b.Y && p2b.Y >= p2a.Y && p2a.Y >= p1b.Y) ||
		(p2a.Y >= p1b.Y && p1b.Y >= p1a.Y && p1a.Y >= p2b.Y)
	if onX && nestedY {
		return true
	}
	onY := (p1a.Y == yl && p1b.Y == yl && p2a.Y == yl && p2b.Y == yl) ||
		(p1a.Y == yh && p1b.Y == yh && p2a.Y == yh && p2b.Y == yh)
	nestedX := (p1a.X <= p2b.X && p2b.X <= p2a.X && p2a.X <= p1b.X) ||
		(p2a.X <= p1b.X && p1b.X <= p1a.X && p1a.X <= p2b.X) ||
		(p1a.X >= p2b.X && p2b.X >= p2a.X && p2a.X >= p1b.X) ||
		(p2a.X >= p1b.X && p1b.X >= p1a.X && p1a.X >= p2b.X)
	return onY && nestedX
}

// RectCropMulti crops every line of ml against cutter, splitting each
// into independent connectivity-preserved segments.
func RectCropMulti(cutter Rect, ml MultiLine, closed bool) MultiLine {
	var ret MultiLine
	for _, l := range ml {
		cropped := RectCrop(cutter, l, closed)
		ret = append(ret, RectSplitCropped(cutter, cropped, closed)...)
	}
	return ret
}
