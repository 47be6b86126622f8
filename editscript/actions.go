package editscript

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"vmap2toolkit/conv"
	"vmap2toolkit/contour"
	"vmap2toolkit/geom"
	"vmap2toolkit/geomap"
	"vmap2toolkit/vmap2"
)

// state holds per-statement lazily-built resources (a loaded
// translate dictionary, an open SRTM directory) that must persist
// across the whole Run so repeated objects don't reopen them,
// matching the way actions.cpp's vmap_action subclasses build their
// state once in the constructor and reuse it in process_object.
type state struct {
	dir   string
	dicts map[int]map[string]string
	srtms map[int]*contour.SRTMDir
}

func newState(dir string) *state {
	return &state{dir: dir, dicts: map[int]map[string]string{}, srtms: map[int]*contour.SRTMDir{}}
}

// runCmd executes one command statement against object o (stored at
// id in m), mutating o and calling m.Put/m.Del as needed. Returns
// whether the object was changed. Grounded command-by-command on
// original_source/vmap2edit/actions.cpp's vmap_action subclasses
// (the broader action set; vmap2edit.cpp's own run_cmd implements
// only a subset of these).
func runCmd(st *statement, idx int, s *state, m *vmap2.Map, id uint32, o *vmap2.Obj) (bool, error) {
	words := st.words
	if len(words) == 0 {
		return false, fmt.Errorf("editscript: line %d: empty command", st.line)
	}
	cmd, args := words[0], words[1:]

	switch cmd {
	case "delete":
		if err := checkArgs(st.line, cmd, args, 0); err != nil {
			return false, err
		}
		return true, m.Del(id)

	case "print":
		if err := checkArgs(st.line, cmd, args, 1); err != nil {
			return false, err
		}
		msg := args[0]
		msg = strings.ReplaceAll(msg, "${name}", o.Name)
		msg = strings.ReplaceAll(msg, "${type}", vmap2.PrintType(o.Type))
		msg = strings.ReplaceAll(msg, "${ref_type}", vmap2.PrintType(o.RefType))
		msg = strings.ReplaceAll(msg, "${angle}", formatFloat(o.Angle))
		msg = strings.ReplaceAll(msg, "${scale}", formatFloat(o.Scale))
		fmt.Println(msg)
		return false, nil

	case "set_type":
		if err := checkArgs(st.line, cmd, args, 1); err != nil {
			return false, err
		}
		t, err := vmap2.ParseType(args[0])
		if err != nil {
			return false, fmt.Errorf("editscript: line %d: %w", st.line, err)
		}
		if o.Type == t {
			return false, nil
		}
		o.Type = t
		return true, m.Put(id, o)

	case "set_ref_type":
		if err := checkArgs(st.line, cmd, args, 1); err != nil {
			return false, err
		}
		t, err := vmap2.ParseType(args[0])
		if err != nil {
			return false, fmt.Errorf("editscript: line %d: %w", st.line, err)
		}
		if o.RefType == t {
			return false, nil
		}
		o.RefType = t
		return true, m.Put(id, o)

	case "set_scale":
		if err := checkArgs(st.line, cmd, args, 1); err != nil {
			return false, err
		}
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return false, fmt.Errorf("editscript: line %d: bad scale %q: %w", st.line, args[0], err)
		}
		if o.Scale == v {
			return false, nil
		}
		o.Scale = v
		return true, m.Put(id, o)

	case "set_angle":
		if err := checkArgs(st.line, cmd, args, 1); err != nil {
			return false, err
		}
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return false, fmt.Errorf("editscript: line %d: bad angle %q: %w", st.line, args[0], err)
		}
		if o.Angle == v {
			return false, nil
		}
		o.Angle = v
		return true, m.Put(id, o)

	case "set_name":
		if err := checkArgs(st.line, cmd, args, 1); err != nil {
			return false, err
		}
		if o.Name == args[0] {
			return false, nil
		}
		o.Name = args[0]
		return true, m.Put(id, o)

	case "re_name":
		if err := checkArgs(st.line, cmd, args, 2); err != nil {
			return false, err
		}
		re, err := regexp.Compile(args[0])
		if err != nil {
			return false, fmt.Errorf("editscript: line %d: bad pattern %q: %w", st.line, args[0], err)
		}
		n := re.ReplaceAllString(o.Name, args[1])
		if n == o.Name {
			return false, nil
		}
		o.Name = n
		return true, m.Put(id, o)

	case "tr_name":
		if err := checkArgs(st.line, cmd, args, 2); err != nil {
			return false, err
		}
		if o.Name != args[0] || args[0] == args[1] {
			return false, nil
		}
		o.Name = args[1]
		return true, m.Put(id, o)

	case "crop_rect":
		if err := checkArgs(st.line, cmd, args, 1); err != nil {
			return false, err
		}
		r, err := parseRect(args[0])
		if err != nil {
			return false, fmt.Errorf("editscript: line %d: %w", st.line, err)
		}
		return cropObj(m, id, o, r)

	case "crop_nom":
		if err := checkArgs(st.line, cmd, args, 1); err != nil {
			return false, err
		}
		r, _, err := geomap.NomToRangeSU(args[0])
		if err != nil {
			return false, fmt.Errorf("editscript: line %d: %w", st.line, err)
		}
		return cropObj(m, id, o, r)

	case "crop_nom_fi":
		if err := checkArgs(st.line, cmd, args, 1); err != nil {
			return false, err
		}
		return cropNomFI(m, id, o, args[0], st.line)

	case "set_alt_name":
		if err := checkArgs(st.line, cmd, args, 1); err != nil {
			return false, err
		}
		srtm, ok := s.srtms[idx]
		if !ok {
			srtm = contour.NewSRTMDir(args[0], 64)
			s.srtms[idx] = srtm
		}
		p := o.Point()
		h, err := srtm.Height(p.X, p.Y)
		if err != nil {
			return false, fmt.Errorf("editscript: line %d: %w", st.line, err)
		}
		name := strconv.Itoa(int(math.Round(h)))
		if o.Name == name {
			return false, nil
		}
		o.Name = name
		return true, m.Put(id, o)

	case "move_ends":
		if len(args) < 2 {
			return false, &ParseError{Line: st.line, Msg: "move_ends: dist[m] type1 ... expected"}
		}
		dist, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return false, fmt.Errorf("editscript: line %d: bad distance %q: %w", st.line, args[0], err)
		}
		return moveEnds(m, id, o, dist, args[1:])

	case "rem_short":
		if err := checkArgs(st.line, cmd, args, 2); err != nil {
			return false, err
		}
		npts, err := strconv.Atoi(args[0])
		if err != nil {
			return false, fmt.Errorf("editscript: line %d: bad min_npts %q: %w", st.line, args[0], err)
		}
		minLen, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return false, fmt.Errorf("editscript: line %d: bad min_len %q: %w", st.line, args[1], err)
		}
		return remShort(m, id, o, npts, minLen)

	case "rem_dup_pts":
		if err := checkArgs(st.line, cmd, args, 1); err != nil {
			return false, err
		}
		dist, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return false, fmt.Errorf("editscript: line %d: bad distance %q: %w", st.line, args[0], err)
		}
		return remDupPts(m, id, o, dist)

	case "translate":
		if err := checkArgs(st.line, cmd, args, 1); err != nil {
			return false, err
		}
		dict, ok := s.dicts[idx]
		if !ok {
			var err error
			dict, err = loadDict(resolvePath(s.dir, args[0]))
			if err != nil {
				return false, fmt.Errorf("editscript: line %d: %w", st.line, err)
			}
			s.dicts[idx] = dict
		}
		newName, ok := dict[o.Name]
		if !ok {
			fmt.Printf("can't translate: %s\n", o.Name)
			return false, nil
		}
		if newName == o.Name {
			return false, nil
		}
		o.Name = newName
		return true, m.Put(id, o)

	default:
		return false, fmt.Errorf("editscript: line %d: unknown command: %s", st.line, cmd)
	}
}

func checkArgs(line int, cmd string, args []string, n int) error {
	if len(args) != n {
		return &ParseError{Line: line, Msg: fmt.Sprintf("%s: wrong number of arguments (%d expected)", cmd, n)}
	}
	return nil
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// resolvePath resolves a translate dictionary path relative to the
// edit-script file's own directory, matching vmap2edit.cpp's use of
// file_get_prefix(fname) for paths referenced from within a script.
func resolvePath(dir, p string) string {
	if dir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// parseRect parses "x,y,w,h" (comma-separated WGS84 degrees), the
// textual rectangle form crop_rect's bbox argument takes.
func parseRect(s string) (geom.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geom.Rect{}, fmt.Errorf("bad rect %q, want x,y,w,h", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geom.Rect{}, fmt.Errorf("bad rect %q: %w", s, err)
		}
		v[i] = f
	}
	return geom.Rect{X: v[0], Y: v[1], W: v[2], H: v[3]}, nil
}

// cropObj crops a single object to r in place, deleting it if nothing
// remains, matching vmap_action_crop_rect/crop_nom's process_object.
func cropObj(m *vmap2.Map, id uint32, o *vmap2.Obj, r geom.Rect) (bool, error) {
	closed := o.Class() == vmap2.ClassPolygon
	var out geom.MultiLine
	for _, line := range o.Coords {
		cropped := geom.RectCrop(r, line, closed)
		out = append(out, geom.RectSplitCropped(r, cropped, closed)...)
	}
	if len(out) == 0 {
		return true, m.Del(id)
	}
	o.Coords = out
	return true, m.Put(id, o)
}

// cropNomFI crops o to the Finnish nomenclature sheet name, converting
// WGS84<->ETRS-TM35FIN around the crop since the sheet rectangle is
// defined in that projection's meters, matching
// vmap_action_crop_nom_fi's process_object (cnv.bck/rect_crop_multi/cnv.frw).
func cropNomFI(m *vmap2.Map, id uint32, o *vmap2.Obj, name string, line int) (bool, error) {
	r, _, err := geomap.NomToRangeFI(name)
	if err != nil {
		return false, fmt.Errorf("editscript: line %d: %w", line, err)
	}
	cnv, err := conv.NewProj("ETRS-TM35FIN", "WGS", true)
	if err != nil {
		return false, fmt.Errorf("editscript: line %d: %w", line, err)
	}
	local, err := conv.BckMulti(cnv, o.Coords)
	if err != nil {
		return false, fmt.Errorf("editscript: line %d: %w", line, err)
	}
	closed := o.Class() == vmap2.ClassPolygon
	var cropped geom.MultiLine
	for _, l := range local {
		c := geom.RectCrop(r, l, closed)
		cropped = append(cropped, geom.RectSplitCropped(r, c, closed)...)
	}
	if len(cropped) == 0 {
		return true, m.Del(id)
	}
	wgs, err := conv.FrwMulti(cnv, cropped)
	if err != nil {
		return false, fmt.Errorf("editscript: line %d: %w", line, err)
	}
	o.Coords = wgs
	return true, m.Put(id, o)
}

// moveEnds snaps o's open-line endpoints onto the nearest vertex (or
// crossing segment) of any object of the given types within dist,
// matching vmap_action_move_ends's move_ends_pt.
func moveEnds(m *vmap2.Map, id uint32, o *vmap2.Obj, dist float64, types []string) (bool, error) {
	if o.Class() == vmap2.ClassPoint || o.Class() == vmap2.ClassText {
		return false, nil
	}
	wantTypes := make([]uint32, 0, len(types))
	for _, t := range types {
		pt, err := vmap2.ParseType(t)
		if err != nil {
			return false, err
		}
		wantTypes = append(wantTypes, pt)
	}

	const d2m = 6380e3 * math.Pi / 180.0
	moved := false
	for li, l := range o.Coords {
		if len(l) < 2 {
			continue
		}
		if conv.GeoDist2D(l[0], l[len(l)-1]) <= 2*dist {
			continue
		}
		if movedEnd := moveEndpoint(m, id, &l[0], l[1], dist, wantTypes, d2m); movedEnd {
			moved = true
		}
		last := len(l) - 1
		if movedEnd := moveEndpoint(m, id, &l[last], l[last-1], dist, wantTypes, d2m); movedEnd {
			moved = true
		}
		o.Coords[li] = l
	}
	if !moved {
		return false, nil
	}
	return true, m.Put(id, o)
}

func moveEndpoint(m *vmap2.Map, selfID uint32, p *geom.Point, p2 geom.Point, r float64, types []uint32, d2m float64) bool {
	rng := geom.Rect{X: p.X - r/d2m, Y: p.Y - r/d2m, W: 2 * r / d2m, H: 2 * r / d2m}
	var best geom.Point
	bestDist := math.Inf(1)
	found := false
	consider := func(cand geom.Point, maxDist float64) {
		d := conv.GeoDist2D(*p, cand)
		if d > maxDist {
			return
		}
		if !found || d < bestDist {
			best, bestDist, found = cand, d, true
		}
	}
	for _, typ := range types {
		for _, oid := range m.FindType(typ, rng) {
			if oid == selfID {
				continue
			}
			obj, ok := m.Get(oid)
			if !ok {
				continue
			}
			for _, l := range obj.Coords {
				for _, q := range l {
					consider(q, r)
				}
				if obj.Class() == vmap2.ClassPoint {
					continue
				}
				for j := 0; j < len(l); j++ {
					q1 := l[j]
					var q2 geom.Point
					if j == len(l)-1 {
						if obj.Class() == vmap2.ClassLine {
							continue
						}
						q2 = l[0]
					} else {
						q2 = l[j+1]
					}
					if q1 == q2 {
						continue
					}
					cr, ok := segmentCross(*p, p2, q1, q2)
					if !ok {
						continue
					}
					dq := conv.GeoDist2D(q1, q2)
					if conv.GeoDist2D(cr, q1) > dq || conv.GeoDist2D(cr, q2) > dq {
						continue
					}
					consider(cr, r)
				}
			}
		}
	}
	if !found {
		return false
	}
	*p = best
	return true
}

// segmentCross finds the intersection of line p1-p2 extended with
// segment q1-q2, matching the original's segment_cross_2d.
func segmentCross(p1, p2, q1, q2 geom.Point) (geom.Point, bool) {
	d1x, d1y := p2.X-p1.X, p2.Y-p1.Y
	d2x, d2y := q2.X-q1.X, q2.Y-q1.Y
	denom := d1x*d2y - d1y*d2x
	if denom == 0 {
		return geom.Point{}, false
	}
	t := ((q1.X-p1.X)*d2y - (q1.Y-p1.Y)*d2x) / denom
	x, y := p1.X+t*d1x, p1.Y+t*d1y
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
		return geom.Point{}, false
	}
	return geom.Point{X: x, Y: y}, true
}

// remShort removes line segments shorter than npts points or minLen
// length, deleting the object if nothing remains, matching
// vmap_action_rem_short.
func remShort(m *vmap2.Map, id uint32, o *vmap2.Obj, npts int, minLen float64) (bool, error) {
	var out geom.MultiLine
	removed := false
	for _, l := range o.Coords {
		if len(l) < npts || conv.GeoLineLength(l) < minLen {
			removed = true
			continue
		}
		out = append(out, l)
	}
	if !removed {
		return false, nil
	}
	if len(out) == 0 {
		return true, m.Del(id)
	}
	o.Coords = out
	return true, m.Put(id, o)
}

// remDupPts removes consecutive points closer than dist within every
// line of o, matching vmap_action_rem_dup_pts.
func remDupPts(m *vmap2.Map, id uint32, o *vmap2.Obj, dist float64) (bool, error) {
	removed := false
	for li, l := range o.Coords {
		out := l[:0:0]
		for i, p := range l {
			if i > 0 && conv.GeoDist2D(out[len(out)-1], p) < dist {
				removed = true
				continue
			}
			out = append(out, p)
		}
		o.Coords[li] = out
	}
	if !removed {
		return false, nil
	}
	return true, m.Put(id, o)
}

func loadDict(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("can't open file: %s", path)
	}
	defer f.Close()
	dict := map[string]string{}
	wr := newWordReader(f)
	for {
		words, line, ok := wr.next()
		if !ok {
			break
		}
		if len(words) != 2 {
			return nil, fmt.Errorf("%s:%d: 2-column dictionary expected", filepath.Base(path), line)
		}
		dict[words[0]] = words[1]
	}
	return dict, nil
}
