// Package osm describes the parsed-OSM-XML shape osm_to_vmap2
// consumes and its tag-rule configuration. Specified only through
// data shapes (§6.1); the XML grammar itself is out of scope, like
// formats/mp and formats/fig. Grounded on
// original_source/vmap2/vmap2io_osm.cpp.
package osm

import (
	"vmap2toolkit/formats"
	"vmap2toolkit/geom"
	"vmap2toolkit/vmap2"
)

const formatName = "osm"

// Node is a bare OSM node: an id and a WGS84 lon/lat position.
type Node struct {
	ID       int64
	Position geom.Point
}

// TaggedNode is an OSM node carrying tags, eligible for point
// conversion (osm_to_vmap2's data_in.points).
type TaggedNode struct {
	ID   int64
	Tags map[string]string
}

// Way is an OSM way: an ordered list of node references plus tags.
type Way struct {
	ID    int64
	Nodes []int64
	Tags  map[string]string
}

// Data is the parsed OSM document osm_to_vmap2 walks: every node
// (for way-point lookups), the tagged subset of nodes, and the ways.
// Relations are a documented non-goal here (the original's
// multipolygon relation handling is left for a future extension since
// §6.1 does not name it among the supported inputs).
type Data struct {
	Nodes       map[int64]geom.Point
	TaggedNodes []TaggedNode
	Ways        []Way
}

// Rule is one "tags -> type" configuration line, matching
// load_osm_conf's Opt/type pairs. A tag value of "*" matches any
// value for that key, mirroring the original's wildcard convention.
type Rule struct {
	Tags map[string]string
	Type uint32
}

func (r Rule) matches(tags map[string]string) bool {
	for k, v := range r.Tags {
		got, ok := tags[k]
		if !ok {
			return false
		}
		if v != "*" && got != v {
			return false
		}
	}
	return true
}

// Unmatched is returned (not treated as an error) for every OSM
// element that matched no rule, so the caller can log it the way
// osm_to_vmap2 writes to stderr rather than aborting the whole import.
type Unmatched struct {
	Kind string // "node" or "way"
	ID   int64
}

// Import converts d's tagged nodes and ways into vmap2 objects
// according to rules, evaluated in order, first match wins, matching
// osm_to_vmap2's rule loop: a "none"-class rule match skips the
// element without complaint, a point rule can't claim a way's multi-
// point geometry (it downgrades to the way's bbox center), and a
// line/polygon rule cannot be used for a bare point node.
func Import(d *Data, rules []Rule, m *vmap2.Map) (unmatched []Unmatched, err error) {
	for _, n := range d.TaggedNodes {
		pos, ok := d.Nodes[n.ID]
		if !ok {
			return unmatched, formats.Errorf(formatName, "node does not exist: %d", n.ID)
		}
		done := false
		for _, r := range rules {
			if !r.matches(n.Tags) {
				continue
			}
			cl := vmap2.ClassOf(r.Type)
			if cl == vmap2.ClassNone {
				done = true
				break
			}
			if cl == vmap2.ClassLine || cl == vmap2.ClassPolygon {
				continue
			}
			o := vmap2.NewObj(r.Type)
			o.Name = n.Tags["name"]
			o.SetPoint(pos)
			if _, err := m.Add(o); err != nil {
				return unmatched, err
			}
			done = true
			break
		}
		if !done {
			unmatched = append(unmatched, Unmatched{Kind: "node", ID: n.ID})
		}
	}

	for _, w := range d.Ways {
		pts, err := wayPoints(d, w)
		if err != nil {
			return unmatched, err
		}
		done := false
		for _, r := range rules {
			if !r.matches(w.Tags) {
				continue
			}
			cl := vmap2.ClassOf(r.Type)
			if cl == vmap2.ClassNone {
				done = true
				break
			}
			o := vmap2.NewObj(r.Type)
			o.Name = w.Tags["name"]
			switch cl {
			case vmap2.ClassPoint:
				o.SetPoint(geom.Line(pts).BBox().Center())
			case vmap2.ClassLine, vmap2.ClassPolygon:
				o.Coords = geom.MultiLine{pts}
			default:
				return unmatched, formats.Errorf(formatName, "bad object type in configuration file: %s", vmap2.PrintType(r.Type))
			}
			if _, err := m.Add(o); err != nil {
				return unmatched, err
			}
			done = true
			break
		}
		if !done {
			unmatched = append(unmatched, Unmatched{Kind: "way", ID: w.ID})
		}
	}
	return unmatched, nil
}

func wayPoints(d *Data, w Way) (geom.Line, error) {
	pts := make(geom.Line, len(w.Nodes))
	for i, id := range w.Nodes {
		p, ok := d.Nodes[id]
		if !ok {
			return nil, formats.Errorf(formatName, "node does not exist: %d", id)
		}
		pts[i] = p
	}
	return pts, nil
}
