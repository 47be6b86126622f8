// Package gpkg reads GeoPackage feature tables through a minimal
// RowSource interface (no SQLite driver is wired: §6.1 scopes
// GeoPackage support to "geometries decoded as (E)WKB", so this
// package owns the geometry codec and leaves table/row access to the
// caller) and decodes the GeoPackage binary geometry header plus the
// (E)WKB body it wraps. Grounded on original_source/gis/gpkg.cpp
// (GPKG::read_next/decode_geom) and
// original_source/postgis/ewkb.cpp (ewkb_decode).
package gpkg

import (
	"encoding/binary"
	"math"

	"vmap2toolkit/formats"
	"vmap2toolkit/geom"
	"vmap2toolkit/vmap2"
)

const formatName = "gpkg"

// Table describes one row of gpkg_contents joined with
// gpkg_geometry_columns, matching GPKG's table_t.
type Table struct {
	Name           string
	DataType       string // "features" is the only type this package reads
	GeometryColumn string
	GeometryType   string // "POINT", "MULTILINESTRING", "MULTIPOLYGON"
	SRS            string // "<organization>:<organization_coordsys_id>", may be empty
}

// Row is one feature row: the raw geometry blob plus every other
// column keyed by name, matching GPKG::read_next's loop over
// sqlite3_column_*.
type Row struct {
	Geometry []byte
	Attrs    map[string]string
}

// RowSource is the minimal read interface a caller's SQLite access
// layer must implement; gpkg owns no SQL of its own.
type RowSource interface {
	Tables() ([]Table, error)
	Rows(table Table) (RowIter, error)
}

// RowIter streams Row values from one table's SELECT *, matching
// GPKG::read_next's sqlite3_step loop.
type RowIter interface {
	Next() (Row, bool, error)
	Close() error
}

// classFor maps a GeoPackage geometry_type_name to a vmap2 class, the
// way read_start picks "point:1"/"line:1"/"area:1".
func classFor(geomType string) (vmap2.Class, error) {
	switch geomType {
	case "POINT":
		return vmap2.ClassPoint, nil
	case "MULTILINESTRING":
		return vmap2.ClassLine, nil
	case "MULTIPOLYGON":
		return vmap2.ClassPolygon, nil
	default:
		return 0, formats.Errorf(formatName, "unknown geometry type: %s", geomType)
	}
}

// Import reads every feature row of the given tables from rs and adds
// one vmap2 object per row, with typeFor picking the packed type
// (typically MakeType(classFor(table), 1) per read_start's fixed
// ":1" type number) and attrs carried through as tags so non-geometry
// columns survive the conversion.
func Import(rs RowSource, tables []Table, typeFor func(Table) uint32, m *vmap2.Map) error {
	for _, t := range tables {
		if t.DataType != "features" {
			continue
		}
		if _, err := classFor(t.GeometryType); err != nil {
			return err
		}
		it, err := rs.Rows(t)
		if err != nil {
			return formats.Errorf(formatName, "table %s: %v", t.Name, err)
		}
		for {
			row, ok, err := it.Next()
			if err != nil {
				it.Close()
				return formats.Errorf(formatName, "table %s: %v", t.Name, err)
			}
			if !ok {
				break
			}
			coords, _, err := DecodeGeometry(row.Geometry)
			if err != nil {
				it.Close()
				return formats.Errorf(formatName, "table %s: %v", t.Name, err)
			}
			o := vmap2.NewObj(typeFor(t))
			o.Coords = coords
			for k, v := range row.Attrs {
				if k == t.GeometryColumn {
					continue
				}
				if k == "name" {
					o.Name = v
					continue
				}
				if o.Tags == nil {
					o.Tags = map[string]string{}
				}
				o.Tags[k] = v
			}
			if _, err := m.Add(o); err != nil {
				it.Close()
				return err
			}
		}
		it.Close()
	}
	return nil
}

// DecodeGeometry decodes a GeoPackage binary geometry blob (the "GP"
// magic header plus an (E)WKB body), per
// https://www.geopackage.org/spec140/index.html#gpb_format, matching
// GPKG::decode_geom. It returns the decoded coordinates and the
// srs_id field of the GeoPackage header.
func DecodeGeometry(data []byte) (geom.MultiLine, int32, error) {
	if len(data) < 8 {
		return nil, 0, formats.Errorf(formatName, "decode_geom: not enough data")
	}
	if data[0] != 'G' || data[1] != 'P' {
		return nil, 0, formats.Errorf(formatName, "decode_geom: wrong magic number")
	}
	flags := data[3]
	empty := flags&(1<<4) != 0
	envType := int((flags >> 1) & 7)
	bigEndianHeader := flags&1 == 0

	var srsID int32
	if bigEndianHeader {
		srsID = int32(binary.BigEndian.Uint32(data[4:8]))
	} else {
		srsID = int32(binary.LittleEndian.Uint32(data[4:8]))
	}

	pos := 8
	switch envType {
	case 0:
	case 1:
		pos += 32
	case 2, 3:
		pos += 48
	case 4:
		pos += 64
	default:
		return nil, 0, formats.Errorf(formatName, "decode_geom: bad envelope type: %d", envType)
	}
	if empty {
		if pos != len(data) {
			return nil, 0, formats.Errorf(formatName, "decode_geom: extra data in empty geom")
		}
		return nil, srsID, nil
	}

	ml, _, newPos, err := decodeWKB(data, pos)
	if err != nil {
		return nil, 0, err
	}
	if newPos != len(data) {
		return nil, 0, formats.Errorf(formatName, "decode_geom: extra data in geom")
	}
	return ml, srsID, nil
}

// WKB/EWKB geometry type codes, matching ewkb.cpp's wkbGeometryType.
const (
	wkbPoint              = 1
	wkbLineString         = 2
	wkbPolygon            = 3
	wkbMultiPoint         = 4
	wkbMultiLineString    = 5
	wkbMultiPolygon       = 6
	wkbGeometryCollection = 7
	ewkbCircString        = 8
	ewkbCompound          = 9
	ewkbCurvePoly         = 10
	ewkbMultiCurve        = 11
	ewkbMultiSurf         = 12
	ewkbPolyhedralSurf    = 13
	ewkbTriangle          = 14
	ewkbTin               = 15

	ewkbZFlag    = 0x80000000
	ewkbMFlag    = 0x40000000
	ewkbSRIDFlag = 0x20000000
)

// decodeWKB decodes one (E)WKB geometry starting at pos in data
// (binary form, not the hex-ASCII form ewkb_decode also supports,
// since GeoPackage blobs are raw binary), returning the flattened
// coordinates, the embedded SRID (0 if absent), and the position just
// past the geometry. Grounded on ewkb_decode.
func decodeWKB(data []byte, pos int) (geom.MultiLine, int32, int, error) {
	if pos >= len(data) {
		return nil, 0, pos, formats.Errorf(formatName, "ewkb_decode: not enough data")
	}
	order := data[pos]
	pos++
	var bo binary.ByteOrder
	switch order {
	case 0:
		bo = binary.BigEndian
	case 1:
		bo = binary.LittleEndian
	default:
		return nil, 0, pos, formats.Errorf(formatName, "ewkb_decode: order byte is wrong: %d", order)
	}

	if pos+4 > len(data) {
		return nil, 0, pos, formats.Errorf(formatName, "ewkb_decode: not enough data")
	}
	typ := bo.Uint32(data[pos:])
	pos += 4

	var srid int32
	if typ&ewkbSRIDFlag != 0 {
		if pos+4 > len(data) {
			return nil, 0, pos, formats.Errorf(formatName, "ewkb_decode: not enough data")
		}
		srid = int32(bo.Uint32(data[pos:]))
		pos += 4
	}

	readPt := func() (geom.Point, error) {
		if pos+16 > len(data) {
			return geom.Point{}, formats.Errorf(formatName, "ewkb_decode: not enough data")
		}
		x := math.Float64frombits(bo.Uint64(data[pos:]))
		y := math.Float64frombits(bo.Uint64(data[pos+8:]))
		pos += 16
		hasZ := typ&ewkbZFlag != 0 || typ/1000 == 1 || typ/1000 == 3
		hasM := typ&ewkbMFlag != 0 || typ/1000 == 2 || typ/1000 == 3
		z := 0.0
		if hasZ {
			if pos+8 > len(data) {
				return geom.Point{}, formats.Errorf(formatName, "ewkb_decode: not enough data")
			}
			z = math.Float64frombits(bo.Uint64(data[pos:]))
			pos += 8
		}
		if hasM {
			if pos+8 > len(data) {
				return geom.Point{}, formats.Errorf(formatName, "ewkb_decode: not enough data")
			}
			pos += 8
		}
		return geom.PtZ(x, y, z), nil
	}

	readUint := func() (uint32, error) {
		if pos+4 > len(data) {
			return 0, formats.Errorf(formatName, "ewkb_decode: not enough data")
		}
		v := bo.Uint32(data[pos:])
		pos += 4
		return v, nil
	}

	var ret geom.MultiLine
	base := (typ &^ (ewkbZFlag | ewkbMFlag | ewkbSRIDFlag)) % 1000
	switch base {
	case wkbPoint:
		p, err := readPt()
		if err != nil {
			return nil, 0, pos, err
		}
		ret = geom.MultiLine{{p}}

	case ewkbCircString, wkbLineString:
		n, err := readUint()
		if err != nil {
			return nil, 0, pos, err
		}
		line := make(geom.Line, n)
		for i := range line {
			p, err := readPt()
			if err != nil {
				return nil, 0, pos, err
			}
			line[i] = p
		}
		ret = geom.MultiLine{line}

	case ewkbTriangle, wkbPolygon:
		nseg, err := readUint()
		if err != nil {
			return nil, 0, pos, err
		}
		for i := uint32(0); i < nseg; i++ {
			npts, err := readUint()
			if err != nil {
				return nil, 0, pos, err
			}
			line := make(geom.Line, npts)
			for j := range line {
				p, err := readPt()
				if err != nil {
					return nil, 0, pos, err
				}
				line[j] = p
			}
			ret = append(ret, line)
		}

	case wkbMultiPoint, wkbMultiLineString, wkbMultiPolygon, ewkbCurvePoly,
		ewkbMultiCurve, ewkbCompound, ewkbMultiSurf, ewkbTin, wkbGeometryCollection:
		n, err := readUint()
		if err != nil {
			return nil, 0, pos, err
		}
		for i := uint32(0); i < n; i++ {
			sub, _, newPos, err := decodeWKB(data, pos)
			if err != nil {
				return nil, 0, pos, err
			}
			pos = newPos
			ret = append(ret, sub...)
		}

	default:
		return nil, 0, pos, formats.Errorf(formatName, "ewkb_decode: unsupported type: %d", base)
	}

	return ret, srid, pos, nil
}
