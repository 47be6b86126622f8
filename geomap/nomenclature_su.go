package geomap

import (
	"fmt"
	"strconv"
	"strings"

	"vmap2toolkit/geom"
)

// suRowLetters are the 1:1 000 000 sheet rows, A at the equator,
// each row spanning 4 degrees of latitude northward.
const suRowLetters = "ABCDEFGHIJKLMNOPQRSTUV"

// NomToRangeSU parses a Soviet/Russian nomenclature sheet name such as
// "P-37", "P-37-144", "P-37-144-A", "P-37-144-A-a" or
// "P-37-144-A-a-3" and returns its bounding rectangle in SU_LL
// (pulkovo lon/lat, degrees) plus the resolved Scale.
//
// The 1:1 000 000 base grid (row letter x 6-degree column) follows
// the international millionth-scale map index; the subdivision into
// 1:100000 (144 cells), 1:50000/1:25000 (quadrant letters) and
// 1:10000 (quadrant digit) follows the standard nesting used by the
// Soviet topographic series. original_source/geo_nom/geo_nom.cpp
// (the authoritative source for this scheme) was not available for
// this port.
func NomToRangeSU(name string) (geom.Rect, Scale, error) {
	parts := strings.Split(strings.TrimSpace(name), "-")
	if len(parts) < 2 {
		return geom.Rect{}, ScaleUnknown, &NomError{Name: name, System: "SU", Reason: "expected ROW-COLUMN[-100k][-50k][-25k][-10k]"}
	}
	row := strings.ToUpper(parts[0])
	if len(row) != 1 {
		return geom.Rect{}, ScaleUnknown, &NomError{Name: name, System: "SU", Reason: "row must be a single letter A..V"}
	}
	rowIdx := strings.IndexByte(suRowLetters, row[0])
	if rowIdx < 0 {
		return geom.Rect{}, ScaleUnknown, &NomError{Name: name, System: "SU", Reason: "row must be a single letter A..V"}
	}
	col, err := strconv.Atoi(parts[1])
	if err != nil || col < 1 || col > 60 {
		return geom.Rect{}, ScaleUnknown, &NomError{Name: name, System: "SU", Reason: "column must be 1..60"}
	}

	const rowH, colW = 4.0, 6.0
	r := geom.Rect{
		X: -180 + float64(col-1)*colW,
		Y: float64(rowIdx) * rowH,
		W: colW, H: rowH,
	}
	if len(parts) == 2 {
		return r, Scale1M, nil
	}

	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 || n > 144 {
		return geom.Rect{}, ScaleUnknown, &NomError{Name: name, System: "SU", Reason: "1:100000 sheet number must be 1..144"}
	}
	sub := (n - 1)
	r.W /= 12
	r.H /= 12
	r.X += float64(sub%12) * r.W
	r.Y += rowH - float64(sub/12+1)*r.H
	if len(parts) == 3 {
		return r, Scale100k, nil
	}

	if err := quadrantLetter(&r, parts[3]); err != nil {
		return geom.Rect{}, ScaleUnknown, &NomError{Name: name, System: "SU", Reason: err.Error()}
	}
	if len(parts) == 4 {
		return r, Scale50k, nil
	}

	if err := quadrantLetter(&r, parts[4]); err != nil {
		return geom.Rect{}, ScaleUnknown, &NomError{Name: name, System: "SU", Reason: err.Error()}
	}
	if len(parts) == 5 {
		return r, Scale25k, nil
	}

	d, err := strconv.Atoi(parts[5])
	if err != nil || d < 1 || d > 4 {
		return geom.Rect{}, ScaleUnknown, &NomError{Name: name, System: "SU", Reason: "1:10000 quadrant digit must be 1..4"}
	}
	applyQuadrant10k(&r, d)
	if len(parts) == 6 {
		return r, Scale10k, nil
	}
	return geom.Rect{}, ScaleUnknown, &NomError{Name: name, System: "SU", Reason: "extra components after the name"}
}

// quadrantLetter halves r into one of four quadrants selected by a
// single letter A..D (NW, NE, SW, SE), used for the 1:50000 and
// 1:25000 subdivisions.
func quadrantLetter(r *geom.Rect, s string) error {
	s = strings.ToUpper(s)
	if len(s) != 1 || s[0] < 'A' || s[0] > 'D' {
		return fmt.Errorf("quadrant letter A..D expected, got %q", s)
	}
	r.W /= 2
	r.H /= 2
	switch s[0] {
	case 'A':
		r.Y += r.H
	case 'B':
		r.X += r.W
		r.Y += r.H
	case 'D':
		r.X += r.W
	}
	return nil
}

func applyQuadrant10k(r *geom.Rect, d int) {
	r.W /= 2
	r.H /= 2
	switch d {
	case 2:
		r.X += r.W
	case 3:
		r.Y += r.H
	case 4:
		r.X += r.W
		r.Y += r.H
	}
}
