package gpkg

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func encodePointWKB(x, y float64) []byte {
	var buf bytes.Buffer
	buf.WriteByte(1) // little-endian
	var typ [4]byte
	binary.LittleEndian.PutUint32(typ[:], wkbPoint)
	buf.Write(typ[:])
	var coords [16]byte
	binary.LittleEndian.PutUint64(coords[0:8], math.Float64bits(x))
	binary.LittleEndian.PutUint64(coords[8:16], math.Float64bits(y))
	buf.Write(coords[:])
	return buf.Bytes()
}

func gpHeader(flags byte, srid int32, body []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("GP")
	buf.WriteByte(0) // version
	buf.WriteByte(flags)
	var s [4]byte
	binary.LittleEndian.PutUint32(s[:], uint32(srid))
	buf.Write(s[:])
	buf.Write(body)
	return buf.Bytes()
}

func TestDecodeGeometryPointNoEnvelope(t *testing.T) {
	data := gpHeader(0x01, 4326, encodePointWKB(1.5, -2.25))
	ml, srid, err := DecodeGeometry(data)
	if err != nil {
		t.Fatalf("DecodeGeometry: %v", err)
	}
	if srid != 4326 {
		t.Errorf("srid = %d, want 4326", srid)
	}
	if len(ml) != 1 || len(ml[0]) != 1 {
		t.Fatalf("ml = %+v, want one point", ml)
	}
	p := ml[0][0]
	if p.X != 1.5 || p.Y != -2.25 {
		t.Errorf("point = %+v, want (1.5, -2.25)", p)
	}
}

func TestDecodeGeometryEmpty(t *testing.T) {
	data := gpHeader(0x11, 0, nil) // empty bit set, no envelope
	ml, _, err := DecodeGeometry(data)
	if err != nil {
		t.Fatalf("DecodeGeometry: %v", err)
	}
	if ml != nil {
		t.Errorf("ml = %+v, want nil for empty geometry", ml)
	}
}

func TestDecodeGeometryBadMagic(t *testing.T) {
	data := []byte{'X', 'X', 0, 0, 0, 0, 0, 0}
	if _, _, err := DecodeGeometry(data); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestDecodeWKBLineString(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(1)
	var typ [4]byte
	binary.LittleEndian.PutUint32(typ[:], wkbLineString)
	buf.Write(typ[:])
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], 2)
	buf.Write(n[:])
	var pt [16]byte
	binary.LittleEndian.PutUint64(pt[0:8], math.Float64bits(0))
	binary.LittleEndian.PutUint64(pt[8:16], math.Float64bits(0))
	buf.Write(pt[:])
	binary.LittleEndian.PutUint64(pt[0:8], math.Float64bits(3))
	binary.LittleEndian.PutUint64(pt[8:16], math.Float64bits(4))
	buf.Write(pt[:])

	ml, srid, pos, err := decodeWKB(buf.Bytes(), 0)
	if err != nil {
		t.Fatalf("decodeWKB: %v", err)
	}
	if srid != 0 {
		t.Errorf("srid = %d, want 0 (no SRID flag)", srid)
	}
	if pos != buf.Len() {
		t.Errorf("pos = %d, want %d", pos, buf.Len())
	}
	if len(ml) != 1 || len(ml[0]) != 2 {
		t.Fatalf("ml = %+v, want one line with 2 points", ml)
	}
	if ml[0][1].X != 3 || ml[0][1].Y != 4 {
		t.Errorf("second point = %+v, want (3, 4)", ml[0][1])
	}
}
