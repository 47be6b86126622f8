package conv

import "vmap2toolkit/geom"

// FrwAcc converts a line through c, inserting extra points by
// recursive bisection wherever the conversion is locally non-linear
// enough that straight-line interpolation between two converted
// points would deviate from the true curve by more than acc (units of
// the converted coordinates: the converted midpoint is compared with
// the midpoint of the two converted endpoints -- see bisect). Grounded on spec.md §4.1's description
// of the accuracy-aware batch transform; mirrors how mapsoft2's
// ConvBase::frw_acc refines polylines crossing a projection.
func FrwAcc(c Conversion, l geom.Line, acc float64) (geom.Line, error) {
	return accLine(c, l, acc, true)
}

// BckAcc is the backward counterpart of FrwAcc.
func BckAcc(c Conversion, l geom.Line, acc float64) (geom.Line, error) {
	return accLine(c, l, acc, false)
}

func accLine(c Conversion, l geom.Line, acc float64, forward bool) (geom.Line, error) {
	if acc <= 0 {
		acc = DefaultAccuracy
	}
	step := c.FrwPt
	if !forward {
		step = c.BckPt
	}
	if len(l) == 0 {
		return geom.Line{}, nil
	}
	conv := make(geom.Line, len(l))
	for i, p := range l {
		cp, err := step(p)
		if err != nil {
			return nil, err
		}
		conv[i] = cp
	}
	out := geom.Line{conv[0]}
	for i := 1; i < len(l); i++ {
		refined, err := bisect(step, l[i-1], l[i], conv[i-1], conv[i], acc, 0)
		if err != nil {
			return nil, err
		}
		out = append(out, refined...)
		out = append(out, conv[i])
	}
	return out, nil
}

// bisect recursively inserts the midpoint of [a,b] (source space) if
// its converted position deviates from the midpoint of the already
// converted segment [ca,cb] by more than acc, in destination space.
func bisect(step func(geom.Point) (geom.Point, error), a, b, ca, cb geom.Point, acc float64, depth int) (geom.Line, error) {
	if depth >= maxBisectDepth {
		return nil, nil
	}
	mid := geom.Pt((a.X+b.X)/2, (a.Y+b.Y)/2)
	cmid, err := step(mid)
	if err != nil {
		return nil, err
	}
	lerp := geom.Pt((ca.X+cb.X)/2, (ca.Y+cb.Y)/2)
	if cmid.Dist2(lerp) <= acc {
		return nil, nil
	}
	left, err := bisect(step, a, mid, ca, cmid, acc, depth+1)
	if err != nil {
		return nil, err
	}
	right, err := bisect(step, mid, b, cmid, cb, acc, depth+1)
	if err != nil {
		return nil, err
	}
	out := append(geom.Line{}, left...)
	out = append(out, cmid)
	out = append(out, right...)
	return out, nil
}

// FrwAccMulti/BckAccMulti apply FrwAcc/BckAcc line by line.
func FrwAccMulti(c Conversion, ml geom.MultiLine, acc float64) (geom.MultiLine, error) {
	out := make(geom.MultiLine, len(ml))
	for i, l := range ml {
		nl, err := FrwAcc(c, l, acc)
		if err != nil {
			return nil, err
		}
		out[i] = nl
	}
	return out, nil
}

func BckAccMulti(c Conversion, ml geom.MultiLine, acc float64) (geom.MultiLine, error) {
	out := make(geom.MultiLine, len(ml))
	for i, l := range ml {
		nl, err := BckAcc(c, l, acc)
		if err != nil {
			return nil, err
		}
		out[i] = nl
	}
	return out, nil
}

// FrwAccRect converts rect r's boundary with accuracy refinement and
// returns the bounding box of the refined boundary -- the standard
// way to carry a rectangular region of interest through a nonlinear
// conversion without under-covering its curved image.
func FrwAccRect(c Conversion, r geom.Rect, acc float64) (geom.Rect, error) {
	return accRect(c, r, acc, true)
}

func BckAccRect(c Conversion, r geom.Rect, acc float64) (geom.Rect, error) {
	return accRect(c, r, acc, false)
}

func accRect(c Conversion, r geom.Rect, acc float64, forward bool) (geom.Rect, error) {
	if r.Empty() {
		return geom.EmptyRect(), nil
	}
	boundary := r.ToLine(true)
	var refined geom.Line
	var err error
	if forward {
		refined, err = FrwAcc(c, boundary, acc)
	} else {
		refined, err = BckAcc(c, boundary, acc)
	}
	if err != nil {
		return geom.Rect{}, err
	}
	return refined.BBox(), nil
}
