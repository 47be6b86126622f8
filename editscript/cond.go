package editscript

import (
	"fmt"
	"strings"

	"vmap2toolkit/vmap2"
)

// evalCond evaluates one `if`/`and`/`or` clause's condition list
// against o: every condition word must hold (conjunction within a
// single clause), matching calc_cond in
// original_source/vmap2edit/vmap2edit.cpp.
func evalCond(words []string, o *vmap2.Obj) (bool, error) {
	for _, c := range words {
		ok, err := evalOne(c, o)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func evalOne(c string, o *vmap2.Obj) (bool, error) {
	switch {
	case strings.HasPrefix(c, "type=="):
		return classOrTypeMatch(c[len("type=="):], o.Type, true)
	case strings.HasPrefix(c, "type!="):
		eq, err := classOrTypeMatch(c[len("type!="):], o.Type, true)
		return !eq, err
	case strings.HasPrefix(c, "ref_type=="):
		return classOrTypeMatch(c[len("ref_type=="):], o.RefType, false)
	case strings.HasPrefix(c, "ref_type!="):
		eq, err := classOrTypeMatch(c[len("ref_type!="):], o.RefType, false)
		return !eq, err
	default:
		return false, fmt.Errorf("editscript: unknown condition: %s", c)
	}
}

// classOrTypeMatch handles both the bare class-name form
// ("type==point") and the full "class:number" spec form
// ("type==point:0x2a"), matching vmap2edit.cpp's calc_cond which
// special-cases the class names (point, line, area/polygon, text,
// none) before falling back to
// VMap2obj::make_type.
func classOrTypeMatch(spec string, typ uint32, isType bool) (bool, error) {
	switch strings.ToLower(spec) {
	case "point":
		return vmap2.ClassOf(typ) == vmap2.ClassPoint, nil
	case "line":
		return vmap2.ClassOf(typ) == vmap2.ClassLine, nil
	case "area", "polygon":
		return vmap2.ClassOf(typ) == vmap2.ClassPolygon, nil
	case "text":
		return vmap2.ClassOf(typ) == vmap2.ClassText, nil
	case "none":
		return vmap2.ClassOf(typ) == vmap2.ClassNone, nil
	}
	want, err := vmap2.ParseType(spec)
	if err != nil {
		field := "type"
		if !isType {
			field = "ref_type"
		}
		return false, fmt.Errorf("editscript: bad %s spec %q: %w", field, spec, err)
	}
	return typ == want, nil
}
