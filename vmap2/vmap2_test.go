package vmap2

import (
	"math"
	"testing"

	"vmap2toolkit/geom"
)

func TestMakeTypeRoundTrip(t *testing.T) {
	typ := MakeType(ClassLine, 0x123)
	if ClassOf(typ) != ClassLine {
		t.Errorf("ClassOf: got %v", ClassOf(typ))
	}
	if TypeNum(typ) != 0x123 {
		t.Errorf("TypeNum: got %x", TypeNum(typ))
	}
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("area:0x2a")
	if err != nil {
		t.Fatalf("ParseType: %v", err)
	}
	if ClassOf(typ) != ClassPolygon || TypeNum(typ) != 0x2a {
		t.Errorf("got class=%v num=%x", ClassOf(typ), TypeNum(typ))
	}
	if _, err := ParseType("bogus"); err == nil {
		t.Errorf("expected error for malformed type string")
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	o := NewObj(MakeType(ClassLine, 7))
	o.Name = "river"
	o.Comm = "tributary"
	o.Tags = map[string]string{"water": "yes"}
	o.Coords = geom.MultiLine{{geom.Pt(1, 2), geom.Pt(3, 4)}}
	o.RefPt = geom.Pt(5, 6)

	data, err := Pack(o)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	back, err := Unpack(data)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if back.Type != o.Type || back.Name != o.Name || back.Comm != o.Comm {
		t.Errorf("header mismatch: %+v", back)
	}
	if !math.IsNaN(back.Angle) {
		t.Errorf("expected NaN angle, got %v", back.Angle)
	}
	if back.Scale != 1 {
		t.Errorf("expected default scale 1, got %v", back.Scale)
	}
	if back.Tags["water"] != "yes" {
		t.Errorf("tag not preserved: %+v", back.Tags)
	}
	if len(back.Coords) != 1 || len(back.Coords[0]) != 2 {
		t.Fatalf("coords not preserved: %+v", back.Coords)
	}
	if back.Coords[0][1] != o.Coords[0][1] {
		t.Errorf("point mismatch: %+v", back.Coords[0][1])
	}
}

func TestMapAddGetFind(t *testing.T) {
	m := NewMap()
	o := NewObj(MakeType(ClassPoint, 1))
	o.SetPoint(geom.Pt(10, 20))
	id, err := m.Add(o)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	got, ok := m.Get(id)
	if !ok || got.Point() != geom.Pt(10, 20) {
		t.Fatalf("Get: got %+v ok=%v", got, ok)
	}

	ids := m.Find(ClassPoint, 1, geom.Rect{X: 0, Y: 0, W: 100, H: 100})
	if len(ids) != 1 || ids[0] != id {
		t.Errorf("Find: got %v", ids)
	}

	if err := m.Del(id); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, ok := m.Get(id); ok {
		t.Errorf("object survived Del")
	}
}

func TestMapBBoxAndTypes(t *testing.T) {
	m := NewMap()
	t1 := MakeType(ClassPoint, 1)
	t2 := MakeType(ClassLine, 2)
	o1 := NewObj(t1)
	o1.SetPoint(geom.Pt(0, 0))
	o2 := NewObj(t2)
	o2.Coords = geom.MultiLine{{geom.Pt(10, 10), geom.Pt(20, 20)}}
	m.Add(o1)
	m.Add(o2)

	types := m.GetTypes()
	if !types[t1] || !types[t2] {
		t.Errorf("missing expected types: %+v", types)
	}
	bb := m.BBox()
	if bb.X != 0 || bb.Y != 0 || bb.W != 20 || bb.H != 20 {
		t.Errorf("unexpected bbox: %+v", bb)
	}
}

func TestKeepLabels(t *testing.T) {
	oldMap := NewMap()
	newMap := NewMap()

	oldLabel := NewObj(MakeType(ClassText, 1))
	oldLabel.Name = "hand-edited"
	oldLabel.SetPoint(geom.Pt(1, 1))
	oldMap.Add(oldLabel)

	staleLabel := NewObj(MakeType(ClassText, 1))
	staleLabel.Name = "stale"
	staleLabel.SetPoint(geom.Pt(2, 2))
	newMap.Add(staleLabel)

	road := NewObj(MakeType(ClassLine, 5))
	road.Coords = geom.MultiLine{{geom.Pt(0, 0), geom.Pt(1, 1)}}
	newMap.Add(road)

	if err := KeepLabels(oldMap, newMap); err != nil {
		t.Fatalf("KeepLabels: %v", err)
	}

	var names []string
	for _, o := range newMap.All() {
		if o.Class() == ClassText {
			names = append(names, o.Name)
		}
	}
	if len(names) != 1 || names[0] != "hand-edited" {
		t.Errorf("unexpected labels after KeepLabels: %v", names)
	}
}

func TestUpdateTag(t *testing.T) {
	src := NewMap()
	dst := NewMap()

	tagged := NewObj(MakeType(ClassPoint, 1))
	tagged.AddTags("keep")
	tagged.SetPoint(geom.Pt(0, 0))
	src.Add(tagged)

	untagged := NewObj(MakeType(ClassPoint, 2))
	untagged.SetPoint(geom.Pt(5, 5))
	dst.Add(untagged)

	if err := UpdateTag(src, dst, "keep"); err != nil {
		t.Fatalf("UpdateTag: %v", err)
	}
	for _, o := range dst.All() {
		if !o.HasTag("keep") {
			t.Errorf("untagged object survived UpdateTag: %+v", o)
		}
	}
	if dst.Len() != 1 {
		t.Errorf("expected 1 object after UpdateTag, got %d", dst.Len())
	}
}

func TestFixRounding(t *testing.T) {
	src := NewMap()
	o := NewObj(MakeType(ClassLine, 1))
	o.Coords = geom.MultiLine{{geom.Pt(10, 20), geom.Pt(10.5, 20.5)}}
	src.Add(o)

	dst := NewMap()
	drifted := NewObj(MakeType(ClassLine, 1))
	drifted.Coords = geom.MultiLine{{geom.Pt(10.0000001, 20.0000001), geom.Pt(10.5000001, 20.5000001)}}
	id, _ := dst.Add(drifted)

	if err := FixRounding(src, dst, 1.0); err != nil {
		t.Fatalf("FixRounding: %v", err)
	}
	got, _ := dst.Get(id)
	if got.Coords[0][0] != geom.Pt(10, 20) {
		t.Errorf("point not snapped: %+v", got.Coords[0][0])
	}
}

func TestMakeLabelAndUpdateLabels(t *testing.T) {
	m := NewMap()
	polyType := MakeType(ClassPolygon, 1)
	labType := MakeType(ClassText, 1)

	poly := NewObj(polyType)
	poly.Name = "lake"
	poly.Coords = geom.MultiLine{{geom.Pt(0, 0), geom.Pt(0, 10), geom.Pt(10, 10), geom.Pt(10, 0), geom.Pt(0, 0)}}
	m.Add(poly)

	if err := UpdateLabels(m, labType, 5, 50, 1, AlignC); err != nil {
		t.Fatalf("UpdateLabels: %v", err)
	}

	var found bool
	for _, o := range m.All() {
		if o.Class() == ClassText && o.RefType == polyType {
			found = true
			if o.Align != AlignC {
				t.Errorf("expected default align C, got %v", o.Align)
			}
		}
	}
	if !found {
		t.Errorf("UpdateLabels did not create a label for the polygon")
	}

	// Second call should not duplicate the label.
	if err := UpdateLabels(m, labType, 5, 50, 1, AlignC); err != nil {
		t.Fatalf("UpdateLabels (2nd): %v", err)
	}
	n := 0
	for _, o := range m.All() {
		if o.Class() == ClassText {
			n++
		}
	}
	if n != 1 {
		t.Errorf("expected exactly 1 label after two UpdateLabels calls, got %d", n)
	}
}

func TestCropRect(t *testing.T) {
	m := NewMap()
	o := NewObj(MakeType(ClassLine, 1))
	o.Coords = geom.MultiLine{{geom.Pt(-10, 0), geom.Pt(10, 0)}}
	id, _ := m.Add(o)

	r := geom.Rect{X: -1, Y: -1, W: 2, H: 2}
	if err := CropRect(m, r); err != nil {
		t.Fatalf("CropRect: %v", err)
	}
	got, ok := m.Get(id)
	if !ok {
		t.Fatalf("object deleted unexpectedly")
	}
	for _, line := range got.Coords {
		for _, p := range line {
			if p.X < -1.0001 || p.X > 1.0001 {
				t.Errorf("point outside crop rect: %+v", p)
			}
		}
	}
}

func TestCropRectDeletesFullyOutsideObjects(t *testing.T) {
	m := NewMap()
	o := NewObj(MakeType(ClassLine, 1))
	o.Coords = geom.MultiLine{{geom.Pt(100, 100), geom.Pt(200, 200)}}
	id, _ := m.Add(o)

	r := geom.Rect{X: 0, Y: 0, W: 1, H: 1}
	if err := CropRect(m, r); err != nil {
		t.Fatalf("CropRect: %v", err)
	}
	if _, ok := m.Get(id); ok {
		t.Errorf("expected object fully outside crop rect to be deleted")
	}
}

func TestFindRefs(t *testing.T) {
	m := NewMap()
	ptType := MakeType(ClassPoint, 1)
	labType := MakeType(ClassText, 9)

	pt := NewObj(ptType)
	pt.SetPoint(geom.Pt(0, 0))
	objID, _ := m.Add(pt)

	lab := NewObj(labType)
	lab.RefType = ptType
	lab.RefPt = geom.Pt(0.001, 0.001)
	lab.SetPoint(geom.Pt(0.001, 0.001))
	labID, _ := m.Add(lab)

	refs := m.FindRefs(1, 10)
	if refs[objID] != labID {
		t.Errorf("FindRefs: got %v, want {%d: %d}", refs, objID, labID)
	}
}
