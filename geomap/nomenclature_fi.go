package geomap

import (
	"fmt"
	"strings"

	"vmap2toolkit/geom"
)

// NomError reports a nomenclature sheet name that could not be parsed.
type NomError struct {
	Name   string
	System string
	Reason string
}

func (e *NomError) Error() string {
	return fmt.Sprintf("%s nomenclature %q: %s", e.System, e.Name, e.Reason)
}

// finnish sheet letters K..X skipping O, per the Finnish topographic
// index used by the National Land Survey (maanmittauslaitos.fi).
const fiLetters = "KLMNPQRSTUVWX"

// NomToRangeFI parses a Finnish nomenclature sheet name (e.g. "V51",
// "V51L", "V5114", "V5114A") and returns its bounding rectangle in
// ETRS-TM35FIN meters plus the scale the name resolved to. Grounded on
// original_source/geo_nom/geo_nom_fi.cpp's nom_to_range_fi.
func NomToRangeFI(name string) (geom.Rect, Scale, error) {
	s := strings.ToLower(name)
	if len(s) == 0 {
		return geom.Rect{}, ScaleUnknown, &NomError{Name: name, System: "FI", Reason: "empty name"}
	}
	const W, H = 192000.0, 96000.0
	r := geom.Rect{W: W, H: H}

	i := 0
	c := s[i]
	i++
	idx := strings.IndexByte(fiLetters, byte(toUpperFI(c)))
	if idx < 0 {
		return geom.Rect{}, ScaleUnknown, &NomError{Name: name, System: "FI", Reason: "letter K..X (without O) expected"}
	}
	r.Y = float64(idx)*H + 6570000
	if i >= len(s) {
		return geom.Rect{}, ScaleUnknown, &NomError{Name: name, System: "FI", Reason: "first digit 2..6 expected"}
	}
	d := s[i]
	i++
	if d < '2' || d > '6' {
		return geom.Rect{}, ScaleUnknown, &NomError{Name: name, System: "FI", Reason: "first digit 2..6 expected"}
	}
	r.X = float64(int(d)-'5')*W + 500000

	if i >= len(s) {
		return r, Scale200k, nil
	}
	if half, ok, rest := readFIHalf(s[i:]); ok {
		r.W /= 2
		if half == 'r' {
			r.X += r.W
		}
		if rest != "" {
			return geom.Rect{}, ScaleUnknown, &NomError{Name: name, System: "FI", Reason: "extra symbols after the name"}
		}
		return r, ScaleH200k, nil
	}

	q := s[i]
	i++
	if q < '1' || q > '4' {
		return geom.Rect{}, ScaleUnknown, &NomError{Name: name, System: "FI", Reason: "second digit 1..4 expected"}
	}
	r.W /= 2
	r.H /= 2
	applyQuadrant(&r, q)
	if i >= len(s) {
		return r, Scale100k, nil
	}
	if half, ok, rest := readFIHalf(s[i:]); ok {
		r.W /= 2
		if half == 'r' {
			r.X += r.W
		}
		if rest != "" {
			return geom.Rect{}, ScaleUnknown, &NomError{Name: name, System: "FI", Reason: "extra symbols after the name"}
		}
		return r, ScaleH100k, nil
	}

	q = s[i]
	i++
	if q < '1' || q > '4' {
		return geom.Rect{}, ScaleUnknown, &NomError{Name: name, System: "FI", Reason: "third digit 1..4 expected"}
	}
	r.W /= 2
	r.H /= 2
	applyQuadrant(&r, q)
	if i >= len(s) {
		return r, Scale50k, nil
	}
	if half, ok, rest := readFIHalf(s[i:]); ok {
		r.W /= 2
		if half == 'r' {
			r.X += r.W
		}
		if rest != "" {
			return geom.Rect{}, ScaleUnknown, &NomError{Name: name, System: "FI", Reason: "extra symbols after the name"}
		}
		return r, ScaleH50k, nil
	}

	q = s[i]
	i++
	if q < '1' || q > '4' {
		return geom.Rect{}, ScaleUnknown, &NomError{Name: name, System: "FI", Reason: "fourth digit 1..4 expected"}
	}
	r.W /= 2
	r.H /= 2
	applyQuadrant(&r, q)
	if i >= len(s) {
		return r, Scale25k, nil
	}
	if half, ok, rest := readFIHalf(s[i:]); ok {
		r.W /= 2
		if half == 'r' {
			r.X += r.W
		}
		if rest != "" {
			return geom.Rect{}, ScaleUnknown, &NomError{Name: name, System: "FI", Reason: "extra symbols after the name"}
		}
		return r, ScaleH25k, nil
	}

	l := s[i]
	i++
	if l < 'a' || l > 'h' {
		return geom.Rect{}, ScaleUnknown, &NomError{Name: name, System: "FI", Reason: "letter A..H (or R, or L) expected"}
	}
	r.W /= 4
	r.H /= 2
	c2 := int(l - 'a')
	r.X += r.W * float64(c2/2)
	if c2%2 == 1 {
		r.Y += r.H
	}
	if i >= len(s) {
		return r, Scale10k, nil
	}
	if half, ok, rest := readFIHalf(s[i:]); ok {
		r.W /= 2
		if half == 'r' {
			r.X += r.W
		}
		if rest != "" {
			return geom.Rect{}, ScaleUnknown, &NomError{Name: name, System: "FI", Reason: "extra symbols after the name"}
		}
		return r, ScaleH10k, nil
	}

	q = s[i]
	i++
	if q < '1' || q > '4' {
		return geom.Rect{}, ScaleUnknown, &NomError{Name: name, System: "FI", Reason: "digit 1..4 expected"}
	}
	r.W /= 2
	r.H /= 2
	applyQuadrant(&r, q)
	if i >= len(s) {
		return r, Scale5k, nil
	}
	if half, ok, rest := readFIHalf(s[i:]); ok {
		r.W /= 2
		if half == 'r' {
			r.X += r.W
		}
		if rest != "" {
			return geom.Rect{}, ScaleUnknown, &NomError{Name: name, System: "FI", Reason: "extra symbols after the name"}
		}
		return r, ScaleH5k, nil
	}

	return geom.Rect{}, ScaleUnknown, &NomError{Name: name, System: "FI", Reason: "extra symbols after the name"}
}

// applyQuadrant implements the repeated "digit 1..4: 3/4 shift X, 2/4
// shift Y" pattern shared by every Finnish scale step below 1:200000;
// callers halve W and H before calling it.
func applyQuadrant(r *geom.Rect, q byte) {
	if q == '3' || q == '4' {
		r.X += r.W
	}
	if q == '2' || q == '4' {
		r.Y += r.H
	}
}

func readFIHalf(rest string) (half byte, ok bool, remainder string) {
	if len(rest) == 0 {
		return 0, false, ""
	}
	c := rest[0]
	if c == 'l' || c == 'r' {
		return c, true, rest[1:]
	}
	return 0, false, rest
}

func toUpperFI(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
