// Package gpx imports and exports GPX tracks and waypoints, the one
// file format given a full wire-level adapter (the others under
// formats/ are specified only through the data shapes they consume
// and produce). Grounded on
// original_source/vmap2/vmap2io_gpx.cpp, using
// github.com/tkrajina/gpxgo/gpx for the XML codec the way
// Klaus-Tockloth-dtm-elevation-service does.
package gpx

import (
	"os"
	"strings"

	"github.com/tkrajina/gpxgo/gpx"

	"vmap2toolkit/formats"
	"vmap2toolkit/geom"
	"vmap2toolkit/vmap2"
)

const formatName = "gpx"

func newPoint(p geom.Point) gpx.GPXPoint {
	gp := gpx.GPXPoint{Point: gpx.Point{Latitude: p.Y, Longitude: p.X}}
	gp.Elevation.SetValue(p.Z)
	return gp
}

// ImportOptions mirrors vmap2io_gpx.cpp's trk_type/wpt_type/wpt_pref
// command options.
type ImportOptions struct {
	// TrackType is the vmap2 type assigned to each track segment. A
	// type whose class is ClassNone (such as vmap2.NoRefType) skips
	// tracks; the zero value is point type 0 and does not.
	TrackType uint32
	// WaypointType is the vmap2 type assigned to each waypoint. A
	// ClassNone type skips waypoints.
	WaypointType uint32
	// WaypointPrefix strips this prefix from a waypoint's name before
	// using it as the object name; waypoints whose name lacks the
	// prefix get an empty name. Defaults to "=" like the original.
	WaypointPrefix string
}

// Import reads a GPX file and adds one object per track segment and
// per waypoint to m, following gpx_to_vmap2's "one segment -> one
// object, no polygon-hole merging" path (hole-merging is GPX-track-only
// behavior in the original kept for the MP/FIG ingestion paths instead,
// since GPX tracks read here are not assumed closed).
func Import(path string, m *vmap2.Map, opts ImportOptions) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return formats.Errorf(formatName, "can't open %s: %v", path, err)
	}

	g, err := gpx.ParseBytes(data)
	if err != nil {
		return formats.Errorf(formatName, "can't parse %s: %v", path, err)
	}

	pref := opts.WaypointPrefix
	if pref == "" {
		pref = "="
	}

	if vmap2.ClassOf(opts.TrackType) != vmap2.ClassNone {
		for _, trk := range g.Tracks {
			for _, seg := range trk.Segments {
				if len(seg.Points) == 0 {
					continue
				}
				o := vmap2.NewObj(opts.TrackType)
				o.Coords = geom.MultiLine{segToLine(seg)}
				if _, err := m.Add(o); err != nil {
					return formats.Errorf(formatName, "add track: %v", err)
				}
			}
		}
	}

	if vmap2.ClassOf(opts.WaypointType) != vmap2.ClassNone {
		for _, w := range g.Waypoints {
			o := vmap2.NewObj(opts.WaypointType)
			o.SetPoint(geom.PtZ(w.Longitude, w.Latitude, w.Elevation.Value()))
			if strings.HasPrefix(w.Name, pref) {
				o.Name = w.Name[len(pref):]
			}
			if _, err := m.Add(o); err != nil {
				return formats.Errorf(formatName, "add waypoint: %v", err)
			}
		}
	}
	return nil
}

func segToLine(seg gpx.GPXTrackSegment) geom.Line {
	l := make(geom.Line, len(seg.Points))
	for i, p := range seg.Points {
		l[i] = geom.PtZ(p.Longitude, p.Latitude, p.Elevation.Value())
	}
	return l
}

// ExportOptions selects which vmap2 types become GPX tracks/waypoints
// on export, mirroring vmap2_to_gpx.
type ExportOptions struct {
	TrackType      uint32
	WaypointType   uint32
	WaypointPrefix string
	Creator        string
}

// Export collects every object of TrackType into a single GPX track
// (one segment per object) and every object of WaypointType into a
// GPX waypoint list, then writes the result to path.
func Export(m *vmap2.Map, path string, opts ExportOptions) error {
	g := new(gpx.GPX)
	g.Version = "1.1"
	if opts.Creator != "" {
		g.Creator = opts.Creator
	}

	pref := opts.WaypointPrefix
	if pref == "" {
		pref = "="
	}

	if vmap2.ClassOf(opts.TrackType) != vmap2.ClassNone {
		trk := gpx.GPXTrack{}
		for _, id := range m.FindType(opts.TrackType, m.BBox()) {
			o, ok := m.Get(id)
			if !ok {
				continue
			}
			for _, l := range o.Coords {
				trk.Segments = append(trk.Segments, gpx.GPXTrackSegment{Points: lineToPoints(l)})
			}
		}
		if len(trk.Segments) > 0 {
			g.Tracks = append(g.Tracks, trk)
		}
	}

	if vmap2.ClassOf(opts.WaypointType) != vmap2.ClassNone {
		for _, id := range m.FindType(opts.WaypointType, m.BBox()) {
			o, ok := m.Get(id)
			if !ok || len(o.Coords) == 0 || len(o.Coords[0]) == 0 {
				continue
			}
			p := o.Coords[0][0]
			w := newPoint(p)
			if o.Name != "" {
				w.Name = pref + o.Name
			}
			g.Waypoints = append(g.Waypoints, w)
		}
	}

	xmlBytes, err := g.ToXml(gpx.ToXmlParams{Indent: true})
	if err != nil {
		return formats.Errorf(formatName, "encode: %v", err)
	}
	if err := os.WriteFile(path, xmlBytes, 0o644); err != nil {
		return formats.Errorf(formatName, "write %s: %v", path, err)
	}
	return nil
}

func lineToPoints(l geom.Line) []gpx.GPXPoint {
	pts := make([]gpx.GPXPoint, len(l))
	for i, p := range l {
		pts[i] = newPoint(p)
	}
	return pts
}
