package catalog

import (
	"fmt"
	"io"
	"strconv"

	"vmap2toolkit/vmap2"
)

// TypeInfo is the per-type metadata a catalog entry carries: display
// name, description, per-format rendering hints and (for objects that
// carry labels) the defaults used when generating one. Grounded on
// original_source/mapdb/mapdb_types.h's MapBDTypeInfo, supplemented
// with original_source/vmap2/vmap2types.h's label_* fields.
type TypeInfo struct {
	Name    string
	Comm    string
	FigMask string

	MPStart, MPEnd int // inclusive MP format level range

	// TextType is the packed vmap2 type of the label objects attached
	// to this type, or vmap2.NoRefType if this type carries no label.
	TextType uint32

	LabelDefScale float64
	LabelDefAlign vmap2.Align
	LabelMaxNum   int // -1 = unlimited, -2 = automatic (mapsoft2 default)
}

func newTypeInfo() TypeInfo {
	return TypeInfo{TextType: vmap2.NoRefType, LabelDefScale: 1, LabelMaxNum: -2}
}

// Catalog is the full set of loaded type definitions, keyed by packed
// vmap2 type.
type Catalog map[uint32]TypeInfo

// Load reads a catalog file from r. Grounded line-for-line on
// MapDBTypeMap::load's command set (define/point/line/area/+), with
// the label_scale/label_align/label_maxnum feature directives added to
// carry the label defaults vmap2types.h tracks that the legacy text
// format never exposed.
func Load(r io.Reader) (Catalog, error) {
	cat := Catalog{}
	defs := Defs{}
	wr := newWordReader(r)
	var cur uint32
	haveCur := false

	for {
		words, lineNo, ok := wr.next()
		if !ok {
			break
		}
		for i := range words {
			words[i] = defs.Apply(words[i])
		}
		if err := applyLine(cat, defs, words, &cur, &haveCur); err != nil {
			return nil, &ParseError{Line: lineNo, Msg: err.Error()}
		}
	}
	return cat, nil
}

func applyLine(cat Catalog, defs Defs, vs []string, cur *uint32, haveCur *bool) error {
	switch vs[0] {
	case "define":
		*haveCur = false
		if len(vs) != 3 {
			return fmt.Errorf("define: 2 arguments expected: <key> <value>")
		}
		defs.Define(vs[1], vs[2])
		return nil

	case "point", "line", "area":
		if len(vs) != 2 {
			return fmt.Errorf("%s: 1 argument expected: <type>", vs[0])
		}
		n, err := strconv.Atoi(vs[1])
		if err != nil {
			return fmt.Errorf("%s: bad type number %q: %w", vs[0], vs[1], err)
		}
		var cl vmap2.Class
		switch vs[0] {
		case "point":
			cl = vmap2.ClassPoint
		case "line":
			cl = vmap2.ClassLine
		case "area":
			cl = vmap2.ClassPolygon
		}
		t := vmap2.MakeType(cl, uint32(n))
		cat[t] = newTypeInfo()
		*cur, *haveCur = t, true
		return nil

	case "+":
		if !*haveCur {
			return fmt.Errorf("+ expected after point, line, or area command")
		}
		info, ok := cat[*cur]
		if !ok {
			return fmt.Errorf("can't find object type %s", vmap2.PrintType(*cur))
		}
		if len(vs) < 2 {
			return fmt.Errorf("+: at least one argument expected")
		}
		if err := applyFeature(&info, vs); err != nil {
			return err
		}
		cat[*cur] = info
		return nil
	}
	return fmt.Errorf("unknown command: %s", vs[0])
}

func applyFeature(info *TypeInfo, vs []string) error {
	switch vs[1] {
	case "name":
		if len(vs) != 3 {
			return fmt.Errorf("+ name: 1 argument expected: <name>")
		}
		info.Name = vs[2]
	case "comm":
		if len(vs) != 3 {
			return fmt.Errorf("+ comm: 1 argument expected: <description>")
		}
		info.Comm = vs[2]
	case "fig_mask":
		if len(vs) != 3 {
			return fmt.Errorf("+ fig_mask: 1 argument expected: <fig mask>")
		}
		info.FigMask = vs[2]
	case "mp_levels":
		if len(vs) != 4 {
			return fmt.Errorf("+ mp_levels: 2 arguments expected: <start> <end>")
		}
		sl, err := strconv.Atoi(vs[2])
		if err != nil {
			return fmt.Errorf("+ mp_levels: bad start level: %w", err)
		}
		el, err := strconv.Atoi(vs[3])
		if err != nil {
			return fmt.Errorf("+ mp_levels: bad end level: %w", err)
		}
		info.MPStart, info.MPEnd = sl, el
	case "text_type":
		if len(vs) != 3 {
			return fmt.Errorf("+ text_type: 1 argument expected: <integer type>")
		}
		n, err := strconv.Atoi(vs[2])
		if err != nil {
			return fmt.Errorf("+ text_type: bad type number: %w", err)
		}
		info.TextType = vmap2.MakeType(vmap2.ClassText, uint32(n))
	case "label_scale":
		if len(vs) != 3 {
			return fmt.Errorf("+ label_scale: 1 argument expected: <float>")
		}
		f, err := strconv.ParseFloat(vs[2], 64)
		if err != nil {
			return fmt.Errorf("+ label_scale: %w", err)
		}
		info.LabelDefScale = f
	case "label_align":
		if len(vs) != 3 {
			return fmt.Errorf("+ label_align: 1 argument expected: <align>")
		}
		info.LabelDefAlign = vmap2.ParseAlign(vs[2])
	case "label_maxnum":
		if len(vs) != 3 {
			return fmt.Errorf("+ label_maxnum: 1 argument expected: <int>")
		}
		n, err := strconv.Atoi(vs[2])
		if err != nil {
			return fmt.Errorf("+ label_maxnum: %w", err)
		}
		info.LabelMaxNum = n
	default:
		return fmt.Errorf("unknown feature: %s", vs[1])
	}
	return nil
}

// Get looks up a type's info by packed vmap2 type.
func (c Catalog) Get(t uint32) (TypeInfo, bool) {
	info, ok := c[t]
	return info, ok
}
