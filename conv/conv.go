// Package conv implements the coordinate conversion engine: a small
// trait-like interface (Conversion) shared by identity, affine,
// projection, and composite conversions, plus the accuracy-aware
// batch transforms (rectangles, lines, multilines) built on top of it.
package conv

import (
	"fmt"
	"math"

	"vmap2toolkit/geom"
)

// DefaultAccuracy is the default target deviation (in the units of the
// converted coordinates, see FrwAcc) used
// by the accuracy-aware batch transforms when the caller does not
// specify one (§4.1).
const DefaultAccuracy = 0.5

// maxBisectDepth bounds the recursive bisection in FrwAcc/BckAcc so a
// pathological (non-finite, or locally non-monotonic) conversion can
// never loop forever.
const maxBisectDepth = 24

// ConversionError reports a point that fell outside the valid domain of
// a Conversion, or produced a non-finite result.
type ConversionError struct {
	Conv  string
	Point geom.Point
	Msg   string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conv %s: %s at (%g, %g, %g)", e.Conv, e.Msg, e.Point.X, e.Point.Y, e.Point.Z)
}

// Conversion is a reversible coordinate transformation between two
// named spaces. Implementations: Identity, *Affine2D, *Proj, *Composite.
type Conversion interface {
	// FrwPt converts p from source to destination space, in place
	// semantics via the returned point. Fails if p lies outside the
	// conversion's valid domain or the result is non-finite.
	FrwPt(p geom.Point) (geom.Point, error)
	// BckPt is the inverse of FrwPt.
	BckPt(p geom.Point) (geom.Point, error)
	// RescaleSrc linearly scales input x,y coordinates by k before
	// the conversion is applied (z untouched).
	RescaleSrc(k float64)
	// RescaleDst linearly scales output x,y coordinates by k after
	// the conversion is applied (z untouched).
	RescaleDst(k float64)
	// Clone returns an independent copy; implementations wrapping
	// external/shared state must deep-copy or safely share it.
	Clone() Conversion
}

// Frw applies c.FrwPt to every point of a line, stopping at the first
// failing point.
func Frw(c Conversion, l geom.Line) (geom.Line, error) {
	out := make(geom.Line, len(l))
	for i, p := range l {
		np, err := c.FrwPt(p)
		if err != nil {
			return nil, err
		}
		out[i] = np
	}
	return out, nil
}

// Bck is the inverse of Frw.
func Bck(c Conversion, l geom.Line) (geom.Line, error) {
	out := make(geom.Line, len(l))
	for i, p := range l {
		np, err := c.BckPt(p)
		if err != nil {
			return nil, err
		}
		out[i] = np
	}
	return out, nil
}

// FrwMulti/BckMulti apply Frw/Bck line-by-line.
func FrwMulti(c Conversion, ml geom.MultiLine) (geom.MultiLine, error) {
	out := make(geom.MultiLine, len(ml))
	for i, l := range ml {
		nl, err := Frw(c, l)
		if err != nil {
			return nil, err
		}
		out[i] = nl
	}
	return out, nil
}

func BckMulti(c Conversion, ml geom.MultiLine) (geom.MultiLine, error) {
	out := make(geom.MultiLine, len(ml))
	for i, l := range ml {
		nl, err := Bck(c, l)
		if err != nil {
			return nil, err
		}
		out[i] = nl
	}
	return out, nil
}

func finite(p geom.Point) bool {
	return !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0) && !math.IsNaN(p.X) && !math.IsNaN(p.Y)
}
