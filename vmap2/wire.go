package vmap2

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"vmap2toolkit/geom"
)

// Wire layout for a single object record, replacing the iso8211-backed
// BerkeleyDB blob that original_source/vmap2/vmap2obj.h's pack/unpack
// produced:
//
//	u32 class
//	u32 type number
//	zero or more TLV records (4-byte ASCII tag, u32 little-endian
//	length, value bytes):
//	  "dir "  u32 direction (optional)
//	  "angl"  i32 millidegrees (optional; absent means NaN)
//	  "scal"  f32 scale (optional; absent means 1.0)
//	  "algn"  u8 align (optional; absent means AlignSW)
//	  "name", "comm", "src " UTF-8 strings (absent means "")
//	  "tag "  UTF-8 tag, may repeat; "key=value" or bare "key"
//	  "ref "  ref_type (u32) then lon/lat as two i32 in 1e-7 degree units
//	  "crds"  one record per coordinate line; N*2 i32 lon/lat in 1e-7
//	          degree units, with canonical range folding
//
// Unknown tags are skipped on read (their length prefix is enough to
// find the next record) so the format stays forward-compatible.
const (
	tagDir   = "dir "
	tagAngle = "angl"
	tagScale = "scal"
	tagAlign = "algn"
	tagName  = "name"
	tagComm  = "comm"
	tagSrc   = "src "
	tagTag   = "tag "
	tagRef   = "ref "
	tagCrds  = "crds"
)

// Pack encodes o into its TLV wire format.
func Pack(o *Obj) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeU32(&buf, uint32(o.Class())); err != nil {
		return nil, err
	}
	if err := writeU32(&buf, TypeNum(o.Type)); err != nil {
		return nil, err
	}

	if o.Dir != nil {
		if err := writeTLVU32(&buf, tagDir, *o.Dir); err != nil {
			return nil, err
		}
	}
	if !math.IsNaN(o.Angle) {
		milli := int32(math.Round(o.Angle * 1000))
		if err := writeTLVU32(&buf, tagAngle, uint32(milli)); err != nil {
			return nil, err
		}
	}
	if o.Scale != 1 {
		if err := writeTLVU32(&buf, tagScale, math.Float32bits(float32(o.Scale))); err != nil {
			return nil, err
		}
	}
	if o.Align != AlignSW {
		if err := writeTLV(&buf, tagAlign, []byte{byte(o.Align)}); err != nil {
			return nil, err
		}
	}
	if o.Name != "" {
		if err := writeTLV(&buf, tagName, []byte(o.Name)); err != nil {
			return nil, err
		}
	}
	if o.Comm != "" {
		if err := writeTLV(&buf, tagComm, []byte(o.Comm)); err != nil {
			return nil, err
		}
	}
	if o.Src != "" {
		if err := writeTLV(&buf, tagSrc, []byte(o.Src)); err != nil {
			return nil, err
		}
	}
	for _, k := range sortedKeys(o.Tags) {
		s := k
		if v := o.Tags[k]; v != "" {
			s = k + "=" + v
		}
		if err := writeTLV(&buf, tagTag, []byte(s)); err != nil {
			return nil, err
		}
	}
	if o.HasRef() {
		payload := make([]byte, 12)
		binary.LittleEndian.PutUint32(payload[0:4], o.RefType)
		putLonLat(payload[4:12], o.RefPt)
		if err := writeTLV(&buf, tagRef, payload); err != nil {
			return nil, err
		}
	}
	for _, line := range o.Coords {
		payload := make([]byte, len(line)*8)
		for i, p := range line {
			putLonLat(payload[i*8:i*8+8], p)
		}
		if err := writeTLV(&buf, tagCrds, payload); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Unpack decodes an object record written by Pack.
func Unpack(data []byte) (*Obj, error) {
	r := bytes.NewReader(data)
	var cl, tn uint32
	if err := binary.Read(r, binary.LittleEndian, &cl); err != nil {
		return nil, fmt.Errorf("vmap2: unpack class: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &tn); err != nil {
		return nil, fmt.Errorf("vmap2: unpack type number: %w", err)
	}
	o := NewObj(MakeType(Class(cl), tn))

	for r.Len() > 0 {
		var tagBytes [4]byte
		if _, err := io.ReadFull(r, tagBytes[:]); err != nil {
			return nil, fmt.Errorf("vmap2: unpack tag: %w", err)
		}
		tag := string(tagBytes[:])
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("vmap2: unpack %q length: %w", tag, err)
		}
		payload := make([]byte, n)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, fmt.Errorf("vmap2: unpack %q payload: %w", tag, err)
		}

		switch tag {
		case tagDir:
			if len(payload) != 4 {
				return nil, fmt.Errorf("vmap2: %q: want 4 bytes, got %d", tag, len(payload))
			}
			v := binary.LittleEndian.Uint32(payload)
			o.Dir = &v
		case tagAngle:
			if len(payload) != 4 {
				return nil, fmt.Errorf("vmap2: %q: want 4 bytes, got %d", tag, len(payload))
			}
			milli := int32(binary.LittleEndian.Uint32(payload))
			o.Angle = float64(milli) / 1000
		case tagScale:
			if len(payload) != 4 {
				return nil, fmt.Errorf("vmap2: %q: want 4 bytes, got %d", tag, len(payload))
			}
			bits := binary.LittleEndian.Uint32(payload)
			o.Scale = float64(math.Float32frombits(bits))
		case tagAlign:
			if len(payload) != 1 {
				return nil, fmt.Errorf("vmap2: %q: want 1 byte, got %d", tag, len(payload))
			}
			o.Align = Align(payload[0])
		case tagName:
			o.Name = string(payload)
		case tagComm:
			o.Comm = string(payload)
		case tagSrc:
			o.Src = string(payload)
		case tagTag:
			k, v, _ := strings.Cut(string(payload), "=")
			if o.Tags == nil {
				o.Tags = map[string]string{}
			}
			o.Tags[k] = v
		case tagRef:
			if len(payload) != 12 {
				return nil, fmt.Errorf("vmap2: %q: want 12 bytes, got %d", tag, len(payload))
			}
			o.RefType = binary.LittleEndian.Uint32(payload[0:4])
			o.RefPt = lonLat(payload[4:12])
		case tagCrds:
			if len(payload)%8 != 0 {
				return nil, fmt.Errorf("vmap2: %q: length %d not a multiple of 8", tag, len(payload))
			}
			npts := len(payload) / 8
			line := make(geom.Line, npts)
			for i := 0; i < npts; i++ {
				line[i] = lonLat(payload[i*8 : i*8+8])
			}
			o.Coords = append(o.Coords, line)
		default:
			// Unknown tag: the length prefix already let us skip its
			// payload above, so there's nothing further to do.
		}
	}
	return o, nil
}

func writeU32(buf *bytes.Buffer, v uint32) error {
	return binary.Write(buf, binary.LittleEndian, v)
}

func writeTLV(buf *bytes.Buffer, tag string, payload []byte) error {
	if len(tag) != 4 {
		return fmt.Errorf("vmap2: internal error: tag %q is not 4 bytes", tag)
	}
	buf.WriteString(tag)
	if err := writeU32(buf, uint32(len(payload))); err != nil {
		return err
	}
	_, err := buf.Write(payload)
	return err
}

func writeTLVU32(buf *bytes.Buffer, tag string, v uint32) error {
	var payload [4]byte
	binary.LittleEndian.PutUint32(payload[:], v)
	return writeTLV(buf, tag, payload[:])
}

// putLonLat encodes p as two little-endian i32 values in 1e-7 degree
// units, after folding lon into [-180,180] and lat into [-90,90].
func putLonLat(dst []byte, p geom.Point) {
	lon, lat := foldLon(p.X), foldLat(p.Y)
	binary.LittleEndian.PutUint32(dst[0:4], uint32(int32(math.Round(lon*1e7))))
	binary.LittleEndian.PutUint32(dst[4:8], uint32(int32(math.Round(lat*1e7))))
}

func lonLat(src []byte) geom.Point {
	lonI := int32(binary.LittleEndian.Uint32(src[0:4]))
	latI := int32(binary.LittleEndian.Uint32(src[4:8]))
	return geom.Pt(float64(lonI)/1e7, float64(latI)/1e7)
}

// foldLon wraps lon into [-180, 180].
func foldLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

// foldLat folds lat into [-90, 90] by reflecting at the poles, matching
// mapsoft2's canonical latitude normalization.
func foldLat(lat float64) float64 {
	for lat > 90 {
		lat = 180 - lat
	}
	for lat < -90 {
		lat = -180 - lat
	}
	return lat
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
