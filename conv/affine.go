package conv

import (
	"math"

	"vmap2toolkit/geom"
)

// Affine2D is a 2D affine transform:
//
//	x' = A*x + B*y + C
//	y' = D*x + E*y + F
//
// z is passed through unchanged. Built either from point-pair
// correspondences (least squares fit) or from a rotation around a
// center point.
type Affine2D struct {
	A, B, C float64
	D, E, F float64
}

// NewAffineIdentity returns the identity affine transform.
func NewAffineIdentity() *Affine2D {
	return &Affine2D{A: 1, E: 1}
}

// NewAffineRotation builds a rotation of angle radians (counter
// clockwise) about center c.
func NewAffineRotation(c geom.Point, angle float64) *Affine2D {
	s, co := math.Sin(angle), math.Cos(angle)
	return &Affine2D{
		A: co, B: -s, C: c.X - co*c.X + s*c.Y,
		D: s, E: co, F: c.Y - s*c.X - co*c.Y,
	}
}

// NewAffineFromPoints fits an affine transform from >=3 point pairs
// (src[i] -> dst[i]) using ordinary least squares. With exactly 3
// pairs the fit is exact (assuming non-collinear points); with more
// pairs (the typical 4-corner GeoMap reference set) it is a best fit.
func NewAffineFromPoints(src, dst []geom.Point) (*Affine2D, error) {
	if len(src) != len(dst) {
		return nil, &ConversionError{Conv: "affine", Msg: "mismatched point counts"}
	}
	if len(src) < 3 {
		return nil, &ConversionError{Conv: "affine", Msg: "need at least 3 point pairs"}
	}
	// Solve two independent 3-parameter least-squares systems:
	//   dst.x = A*src.x + B*src.y + C
	//   dst.y = D*src.x + E*src.y + F
	// via normal equations on the 3x3 Gram matrix of [x y 1].
	var sxx, sxy, sx, syy, sy, sn float64
	var sxu, syu, su float64 // u = dst.x
	var sxv, syv, sv float64 // v = dst.y
	for i := range src {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y
		sxx += x * x
		sxy += x * y
		sx += x
		syy += y * y
		sy += y
		sn++
		sxu += x * u
		syu += y * u
		su += u
		sxv += x * v
		syv += y * v
		sv += v
	}
	m := [3][3]float64{
		{sxx, sxy, sx},
		{sxy, syy, sy},
		{sx, sy, sn},
	}
	abc, err := solve3(m, [3]float64{sxu, syu, su})
	if err != nil {
		return nil, err
	}
	def, err := solve3(m, [3]float64{sxv, syv, sv})
	if err != nil {
		return nil, err
	}
	return &Affine2D{A: abc[0], B: abc[1], C: abc[2], D: def[0], E: def[1], F: def[2]}, nil
}

// solve3 solves the 3x3 linear system m*x = b via Cramer's rule.
func solve3(m [3][3]float64, b [3]float64) ([3]float64, error) {
	det := det3(m)
	if math.Abs(det) < 1e-12 {
		return [3]float64{}, &ConversionError{Conv: "affine", Msg: "degenerate point configuration"}
	}
	var x [3]float64
	for col := 0; col < 3; col++ {
		mc := m
		for row := 0; row < 3; row++ {
			mc[row][col] = b[row]
		}
		x[col] = det3(mc) / det
	}
	return x, nil
}

func det3(m [3][3]float64) float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

func (a *Affine2D) FrwPt(p geom.Point) (geom.Point, error) {
	out := geom.Point{X: a.A*p.X + a.B*p.Y + a.C, Y: a.D*p.X + a.E*p.Y + a.F, Z: p.Z}
	if !finite(out) {
		return geom.Point{}, &ConversionError{Conv: "affine", Point: p, Msg: "non-finite result"}
	}
	return out, nil
}

func (a *Affine2D) BckPt(p geom.Point) (geom.Point, error) {
	det := a.A*a.E - a.B*a.D
	if math.Abs(det) < 1e-15 {
		return geom.Point{}, &ConversionError{Conv: "affine", Point: p, Msg: "singular matrix, no inverse"}
	}
	x := p.X - a.C
	y := p.Y - a.F
	out := geom.Point{
		X: (a.E*x - a.B*y) / det,
		Y: (a.A*y - a.D*x) / det,
		Z: p.Z,
	}
	if !finite(out) {
		return geom.Point{}, &ConversionError{Conv: "affine", Point: p, Msg: "non-finite result"}
	}
	return out, nil
}

func (a *Affine2D) RescaleSrc(k float64) {
	// dst = A*(k*x)+B*(k*y)+C => new A,B scaled by k
	a.A *= k
	a.B *= k
	a.D *= k
	a.E *= k
}

func (a *Affine2D) RescaleDst(k float64) {
	a.A *= k
	a.B *= k
	a.C *= k
	a.D *= k
	a.E *= k
	a.F *= k
}

func (a *Affine2D) Clone() Conversion {
	cp := *a
	return &cp
}
