package render

import "testing"

const sampleStyle = `
# roads and labels
define roadcol #336699

line:0x0101
 + stroke $roadcol 2
 + group roads

point:5
 + fill #ff0000
 + name capitals

text:1
 + write black
 + font 10 sans

minsc 50000
minsc_color #f0f0f0
obj_scale 1.5

if $debug == 1
line:0x0102
 + stroke #00ff00 1
endif
`

func TestParseStylesheetBasic(t *testing.T) {
	ss, err := ParseStylesheet(sampleStyle, map[string]string{"debug": "0"})
	if err != nil {
		t.Fatalf("ParseStylesheet: %v", err)
	}
	if len(ss.Steps) != 3 {
		t.Fatalf("expected 3 steps (if-block excluded), got %d", len(ss.Steps))
	}
	if ss.Steps[0].Sel.TypeNo != 0x0101 {
		t.Errorf("expected type 0x0101, got %#x", ss.Steps[0].Sel.TypeNo)
	}
	if ss.Steps[0].Features[0].Name != "stroke" || ss.Steps[0].Features[0].Args[0] != "#336699" {
		t.Errorf("expected resolved define, got %+v", ss.Steps[0].Features[0])
	}
	if ss.Steps[0].Group != "roads" {
		t.Errorf("expected group roads, got %q", ss.Steps[0].Group)
	}
	if ss.Steps[1].Name != "capitals" {
		t.Errorf("expected name capitals, got %q", ss.Steps[1].Name)
	}
	if ss.MinSC != 50000 {
		t.Errorf("expected minsc 50000, got %v", ss.MinSC)
	}
	if ss.ObjScale != 1.5 {
		t.Errorf("expected obj_scale 1.5, got %v", ss.ObjScale)
	}
}

func TestParseStylesheetIfTrue(t *testing.T) {
	ss, err := ParseStylesheet(sampleStyle, map[string]string{"debug": "1"})
	if err != nil {
		t.Fatalf("ParseStylesheet: %v", err)
	}
	if len(ss.Steps) != 4 {
		t.Fatalf("expected 4 steps with debug=1, got %d", len(ss.Steps))
	}
}

func TestParseStylesheetUnterminatedIf(t *testing.T) {
	_, err := ParseStylesheet("if a == a\nline:1\n", nil)
	if err == nil {
		t.Errorf("expected error for unterminated if")
	}
}

func TestParseStylesheetBadSelector(t *testing.T) {
	_, err := ParseStylesheet("bogus:1\n", nil)
	if err == nil {
		t.Errorf("expected error for unknown selector class")
	}
}

func TestParseSetRefNom(t *testing.T) {
	ss, err := ParseStylesheet("set_ref nom p37 1000\n", nil)
	if err != nil {
		t.Fatalf("ParseStylesheet: %v", err)
	}
	if ss.SetRef == nil || ss.SetRef.Kind != "nom" || ss.SetRef.Name != "p37" || ss.SetRef.DPI != 1000 {
		t.Errorf("got %+v", ss.SetRef)
	}
}
