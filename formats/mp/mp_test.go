package mp

import (
	"testing"

	"vmap2toolkit/geom"
	"vmap2toolkit/vmap2"
)

func TestImportSkipsEmptyAndUnknown(t *testing.T) {
	m := vmap2.NewMap()
	objs := []Object{
		{Class: ClassPoint, Type: 1, Label: "A", Coords: geom.MultiLine{{geom.Pt(1, 2)}}},
		{Class: ClassLine, Type: 2, Label: "B", Coords: nil}, // empty, skipped
		{Class: ClassPoint, Type: 99, Label: "C", Coords: geom.MultiLine{{geom.Pt(3, 4)}}},
	}
	known := func(typ uint32) bool {
		return vmap2.TypeNum(typ) != 99
	}

	skipped, err := Import(objs, m, known, true)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(skipped) != 1 || vmap2.TypeNum(skipped[0]) != 99 {
		t.Fatalf("skipped = %v, want one entry with type 99", skipped)
	}

	ids := m.FindType(vmap2.MakeType(vmap2.ClassPoint, 1), m.BBox())
	if len(ids) != 1 {
		t.Fatalf("expected one imported point, got %d", len(ids))
	}
	o, _ := m.Get(ids[0])
	if o.Name != "A" {
		t.Errorf("Name = %q, want A", o.Name)
	}
	if o.Scale != 1 {
		t.Errorf("Scale = %v, want 1 (default)", o.Scale)
	}
}

func TestImportRejectsBadClass(t *testing.T) {
	m := vmap2.NewMap()
	objs := []Object{{Class: 7, Type: 1, Coords: geom.MultiLine{{geom.Pt(0, 0)}}}}
	if _, err := Import(objs, m, nil, false); err == nil {
		t.Fatal("expected error for unknown MP class")
	}
}

func TestExportSkipsTextAndBadType(t *testing.T) {
	m := vmap2.NewMap()

	pt := vmap2.NewObj(vmap2.MakeType(vmap2.ClassPoint, 5))
	pt.Name = "Peak"
	pt.SetPoint(geom.Pt(1, 1))
	if _, err := m.Add(pt); err != nil {
		t.Fatalf("Add: %v", err)
	}

	big := vmap2.NewObj(vmap2.MakeType(vmap2.ClassLine, 0x8000))
	big.Coords = geom.MultiLine{{geom.Pt(0, 0), geom.Pt(1, 1)}}
	if _, err := m.Add(big); err != nil {
		t.Fatalf("Add: %v", err)
	}

	txt := vmap2.NewObj(vmap2.MakeType(vmap2.ClassText, 1))
	txt.SetPoint(geom.Pt(2, 2))
	if _, err := m.Add(txt); err != nil {
		t.Fatalf("Add: %v", err)
	}

	objs, badType, unknown := Export(m, func(uint32) TypeLevels { return TypeLevels{} })
	if len(objs) != 1 || objs[0].Label != "Peak" {
		t.Fatalf("objs = %+v, want one record for Peak", objs)
	}
	if len(badType) != 1 {
		t.Errorf("badType = %v, want one skipped record", badType)
	}
	if len(unknown) != 0 {
		t.Errorf("unknown = %v, want none", unknown)
	}
}

func TestTagStringSorted(t *testing.T) {
	got := tagString(map[string]string{"b": "", "a": "", "c": ""})
	if got != "a b c" {
		t.Errorf("tagString = %q, want %q", got, "a b c")
	}
	if tagString(nil) != "" {
		t.Errorf("tagString(nil) = %q, want empty", tagString(nil))
	}
}
