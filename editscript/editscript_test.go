package editscript

import (
	"strings"
	"testing"

	"vmap2toolkit/geom"
	"vmap2toolkit/vmap2"
)

func newTestMap(t *testing.T) (*vmap2.Map, uint32, uint32) {
	t.Helper()
	m := vmap2.NewMap()
	p := vmap2.NewObj(vmap2.MakeType(vmap2.ClassPoint, 1))
	p.Name = "Summit"
	p.SetPoint(geom.Pt(10, 20))
	pid, err := m.Add(p)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	l := vmap2.NewObj(vmap2.MakeType(vmap2.ClassLine, 2))
	l.Name = "Ridge"
	l.Coords = geom.MultiLine{{geom.Pt(0, 0), geom.Pt(1, 1)}}
	lid, err := m.Add(l)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	return m, pid, lid
}

func TestRunSetNameOnCondition(t *testing.T) {
	m, pid, lid := newTestMap(t)
	script, err := Parse(strings.NewReader("if type==point\nset_name Peak\n"), "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := script.Run(m); err != nil {
		t.Fatalf("Run: %v", err)
	}
	p, _ := m.Get(pid)
	if p.Name != "Peak" {
		t.Errorf("point name = %q, want Peak", p.Name)
	}
	l, _ := m.Get(lid)
	if l.Name != "Ridge" {
		t.Errorf("line name = %q, want unchanged Ridge", l.Name)
	}
}

func TestRunIfAndOr(t *testing.T) {
	m, pid, lid := newTestMap(t)
	// type==point and name==Summit is never satisfied literally (no
	// name== condition exists), so use type!=line to exercise and/or.
	script, err := Parse(strings.NewReader(
		"if type==point\nand type!=line\ndelete\n"+
			"if type==line\nor type==point\nset_name Hit\n"), "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := script.Run(m); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := m.Get(pid); ok {
		t.Errorf("point should have been deleted")
	}
	l, ok := m.Get(lid)
	if !ok || l.Name != "Hit" {
		t.Errorf("line = %+v, want name Hit", l)
	}
}

func TestRunThenInline(t *testing.T) {
	m, pid, _ := newTestMap(t)
	script, err := Parse(strings.NewReader("if type==point then set_name Inline\n"), "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := script.Run(m); err != nil {
		t.Fatalf("Run: %v", err)
	}
	p, _ := m.Get(pid)
	if p.Name != "Inline" {
		t.Errorf("got %q, want Inline", p.Name)
	}
}

func TestParseRejectsDanglingAnd(t *testing.T) {
	_, err := Parse(strings.NewReader("and type==point\n"), "")
	if err == nil {
		t.Fatal("expected error for leading 'and'")
	}
}

func TestParseAcceptsConsecutiveCommands(t *testing.T) {
	// two bare commands in a row, each applies unconditionally; no
	// error expected since neither is an if/and/or.
	_, err := Parse(strings.NewReader("set_name A\nset_name B\n"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCropRectDeletesOutsideObjects(t *testing.T) {
	m := vmap2.NewMap()
	l := vmap2.NewObj(vmap2.MakeType(vmap2.ClassLine, 1))
	l.Coords = geom.MultiLine{{geom.Pt(100, 100), geom.Pt(101, 101)}}
	id, _ := m.Add(l)

	script, err := Parse(strings.NewReader("crop_rect 0,0,10,10\n"), "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := script.Run(m); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := m.Get(id); ok {
		t.Errorf("object entirely outside crop rect should be deleted")
	}
}

func TestTrNameRenamesExactMatch(t *testing.T) {
	m, pid, _ := newTestMap(t)
	script, err := Parse(strings.NewReader("tr_name Summit Peak\n"), "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := script.Run(m); err != nil {
		t.Fatalf("Run: %v", err)
	}
	p, _ := m.Get(pid)
	if p.Name != "Peak" {
		t.Errorf("got %q, want Peak", p.Name)
	}
}

func TestReNameRegex(t *testing.T) {
	m, pid, _ := newTestMap(t)
	script, err := Parse(strings.NewReader(`re_name mm(.*) m$1`), "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := script.Run(m); err != nil {
		t.Fatalf("Run: %v", err)
	}
	p, _ := m.Get(pid)
	if p.Name != "Sumit" {
		t.Errorf("got %q, want Sumit", p.Name)
	}
}

func TestUnknownCommandErrors(t *testing.T) {
	m, _, _ := newTestMap(t)
	script, err := Parse(strings.NewReader("bogus_command\n"), "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := script.Run(m); err == nil {
		t.Fatal("expected error for unknown command")
	}
}
