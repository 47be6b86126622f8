package catalog

import (
	"strings"
	"testing"

	"vmap2toolkit/vmap2"
)

const sampleCatalog = `
# comment line
define roadcol 0x8

point 10
+ name "spring"
+ comm "drinking water spring"

line 20
+ name road
+ fig_mask $roadcol
+ mp_levels 0 3
+ text_type 5

area 30
+ name lake
+ label_scale 1.5
+ label_align C
`

func TestLoadCatalog(t *testing.T) {
	cat, err := Load(strings.NewReader(sampleCatalog))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	pt := vmap2.MakeType(vmap2.ClassPoint, 10)
	info, ok := cat.Get(pt)
	if !ok || info.Name != "spring" || info.Comm != "drinking water spring" {
		t.Errorf("point 10: got %+v ok=%v", info, ok)
	}

	ln := vmap2.MakeType(vmap2.ClassLine, 20)
	info, ok = cat.Get(ln)
	if !ok {
		t.Fatalf("line 20 not found")
	}
	if info.FigMask != "0x8" {
		t.Errorf("define substitution failed: got fig_mask=%q", info.FigMask)
	}
	if info.MPStart != 0 || info.MPEnd != 3 {
		t.Errorf("mp_levels not parsed: %+v", info)
	}
	wantText := vmap2.MakeType(vmap2.ClassText, 5)
	if info.TextType != wantText {
		t.Errorf("text_type: got %x want %x", info.TextType, wantText)
	}

	area := vmap2.MakeType(vmap2.ClassPolygon, 30)
	info, ok = cat.Get(area)
	if !ok {
		t.Fatalf("area 30 not found")
	}
	if info.LabelDefScale != 1.5 || info.LabelDefAlign != vmap2.AlignC {
		t.Errorf("label defaults not parsed: %+v", info)
	}
}

func TestLoadCatalogRejectsUnknownCommand(t *testing.T) {
	if _, err := Load(strings.NewReader("bogus 1\n")); err == nil {
		t.Errorf("expected error for unknown command")
	}
}

func TestLoadCatalogRejectsFeatureWithoutType(t *testing.T) {
	if _, err := Load(strings.NewReader("+ name x\n")); err == nil {
		t.Errorf("expected error for + without a preceding type")
	}
}
