// Package render implements the stylesheet-driven drawing pipeline: a
// line-oriented DSL describing an ordered sequence of drawing steps
// over a typed object store, executed onto a raster canvas. Grounded
// on spec.md §4.4's grammar and on
// original_source/mapdb/gobj_mapdb.cpp / original_source/geo_render/*
// for step ordering and clip-path accumulation.
package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"vmap2toolkit/vmap2"
)

// SelectorKind distinguishes the three step-header forms the grammar
// allows: a type selector, "map", or "brd".
type SelectorKind int

const (
	SelType SelectorKind = iota
	SelMap
	SelBrd
)

// Selector identifies which objects (or pseudo-objects) a step applies to.
type Selector struct {
	Kind   SelectorKind
	Class  vmap2.Class
	TypeNo uint32
}

func (s Selector) String() string {
	switch s.Kind {
	case SelMap:
		return "map"
	case SelBrd:
		return "brd"
	default:
		return vmap2.PrintType(vmap2.MakeType(s.Class, s.TypeNo))
	}
}

// Feature is a single "+ name args..." line attached to a step (the
// step header itself is also folded into the first feature).
type Feature struct {
	Name string
	Args []string
}

// knownFeatures is the full feature vocabulary from spec.md §4.4's
// feature table, plus the two organizational directives (group/name)
// handled inline by applyStepDirective. ParseStylesheet rejects any
// feature name outside this set with a StylesheetError (§6.2's lint
// pass requirement); the error carries the line number but no file
// name.
var knownFeatures = map[string]bool{
	"stroke": true, "fill": true, "clip": true, "patt": true, "img": true,
	"smooth": true, "dash": true, "cap": true, "join": true, "operator": true,
	"font": true, "write": true, "lines": true, "circles": true,
	"draw_pos": true, "move_to": true, "rotate_to": true, "move_from": true,
	"rotate": true, "pulk_grid": true, "fi_grid": true, "grid_labels": true,
	"group": true, "name": true,
}

// Step is a selector plus its ordered feature list.
type Step struct {
	Sel      Selector
	Features []Feature
	Group    string
	Name     string
}

// Stylesheet is a fully parsed rendering configuration.
type Stylesheet struct {
	Steps []Step

	MaxTextSize float64
	FitPattSize bool
	MinSC       float64
	MinSCColor  color.NRGBA
	ObjScale    float64

	SetRef *RefSpec
	SetBrd *BrdSpec
}

// RefSpec captures the `set_ref` directive's argument.
type RefSpec struct {
	Kind string // "file", "nom", "nom_fi", "none"
	Path string
	Name string
	DPI  float64
}

// BrdSpec captures the `set_brd` directive's argument.
type BrdSpec struct {
	Kind string // "file", "none"
	Path string
}

func newStylesheet() *Stylesheet {
	return &Stylesheet{ObjScale: 1, MinSCColor: color.NRGBA{A: 0}}
}

// ParseStylesheet parses a stylesheet from text, resolving `define`
// substitutions and `if`/`else`/`endif` blocks against vars (merged
// with any defines encountered in the file itself). Grounded on
// spec.md §4.4's grammar; tokenization follows
// original_source/read_words/read_words.h (comments, quoting, escapes)
// the same way catalog.Load's DSL does.
func ParseStylesheet(text string, vars map[string]string) (*Stylesheet, error) {
	ss := newStylesheet()
	defs := map[string]string{}
	for k, v := range vars {
		defs[k] = v
	}

	// condStack[i] is whether the i-th nested if/else block is active.
	var condStack []bool
	active := func() bool {
		for _, c := range condStack {
			if !c {
				return false
			}
		}
		return true
	}

	var cur *Step
	lines := strings.Split(text, "\n")
	for lineNo, raw := range lines {
		line := stripComment(raw)
		words := splitStyleWords(line)
		if len(words) == 0 {
			continue
		}
		for i := range words {
			words[i] = applyDefs(words[i], defs)
		}

		switch words[0] {
		case "if":
			if len(words) != 4 {
				return nil, lineErr(lineNo, "if: expected WORD OP WORD")
			}
			ok, err := evalCond(words[1], words[2], words[3])
			if err != nil {
				return nil, lineErr(lineNo, err.Error())
			}
			condStack = append(condStack, ok)
			continue
		case "else":
			if len(condStack) == 0 {
				return nil, lineErr(lineNo, "else without if")
			}
			condStack[len(condStack)-1] = !condStack[len(condStack)-1]
			continue
		case "endif":
			if len(condStack) == 0 {
				return nil, lineErr(lineNo, "endif without if")
			}
			condStack = condStack[:len(condStack)-1]
			continue
		}

		if !active() {
			continue
		}

		switch words[0] {
		case "define":
			if len(words) != 3 {
				return nil, lineErr(lineNo, "define: 2 arguments expected")
			}
			defs[words[1]] = words[2]
		case "include":
			// File inclusion is a loader-level concern (relative path
			// resolution); callers pre-expand includes before calling
			// ParseStylesheet, so the directive is ignored here.
		case "set_ref":
			spec, err := parseRefSpec(words[1:])
			if err != nil {
				return nil, lineErr(lineNo, err.Error())
			}
			ss.SetRef = spec
		case "set_brd":
			spec, err := parseBrdSpec(words[1:])
			if err != nil {
				return nil, lineErr(lineNo, err.Error())
			}
			ss.SetBrd = spec
		case "max_text_size":
			f, err := parseFloatArg(words, "max_text_size")
			if err != nil {
				return nil, lineErr(lineNo, err.Error())
			}
			ss.MaxTextSize = f
		case "fit_patt_size":
			if len(words) != 2 {
				return nil, lineErr(lineNo, "fit_patt_size: 1 argument expected")
			}
			ss.FitPattSize = words[1] == "1" || strings.EqualFold(words[1], "true")
		case "minsc":
			f, err := parseFloatArg(words, "minsc")
			if err != nil {
				return nil, lineErr(lineNo, err.Error())
			}
			ss.MinSC = f
		case "minsc_color":
			if len(words) != 2 {
				return nil, lineErr(lineNo, "minsc_color: 1 argument expected")
			}
			c, err := ParseColor(words[1])
			if err != nil {
				return nil, lineErr(lineNo, err.Error())
			}
			ss.MinSCColor = c
		case "obj_scale":
			f, err := parseFloatArg(words, "obj_scale")
			if err != nil {
				return nil, lineErr(lineNo, err.Error())
			}
			ss.ObjScale = f
		case "+":
			if cur == nil {
				return nil, lineErr(lineNo, "+ feature line before any step header")
			}
			if len(words) < 2 {
				return nil, lineErr(lineNo, "+: at least one argument expected")
			}
			if !knownFeatures[words[1]] {
				return nil, lineErr(lineNo, fmt.Sprintf("unknown feature %q", words[1]))
			}
			if err := applyStepDirective(cur, words[1], words[2:]); err != nil {
				cur.Features = append(cur.Features, Feature{Name: words[1], Args: words[2:]})
			}
		default:
			sel, err := parseSelector(words[0])
			if err != nil {
				return nil, lineErr(lineNo, err.Error())
			}
			ss.Steps = append(ss.Steps, Step{Sel: sel})
			cur = &ss.Steps[len(ss.Steps)-1]
			if len(words) >= 2 {
				if !knownFeatures[words[1]] {
					return nil, lineErr(lineNo, fmt.Sprintf("unknown feature %q", words[1]))
				}
				if err := applyStepDirective(cur, words[1], words[2:]); err != nil {
					cur.Features = append(cur.Features, Feature{Name: words[1], Args: words[2:]})
				}
			}
		}
	}

	if len(condStack) != 0 {
		return nil, &StylesheetError{Line: len(lines), Msg: "unterminated if block"}
	}
	return ss, nil
}

// applyStepDirective handles the two organizational, non-drawing
// features (group/name) inline rather than recording them as a
// Feature to replay at render time. Returns a non-nil error (ignored
// by callers, used only as a "not handled here" signal) when name is
// an ordinary drawing feature.
func applyStepDirective(step *Step, name string, args []string) error {
	switch name {
	case "group":
		if len(args) == 1 {
			step.Group = args[0]
		}
		return nil
	case "name":
		if len(args) == 1 {
			step.Name = args[0]
		}
		return nil
	}
	return fmt.Errorf("not a step directive")
}

func parseSelector(tok string) (Selector, error) {
	switch tok {
	case "map":
		return Selector{Kind: SelMap}, nil
	case "brd":
		return Selector{Kind: SelBrd}, nil
	}
	parts := strings.SplitN(tok, ":", 2)
	if len(parts) != 2 {
		return Selector{}, fmt.Errorf("bad step header %q", tok)
	}
	var cl vmap2.Class
	switch parts[0] {
	case "point":
		cl = vmap2.ClassPoint
	case "line":
		cl = vmap2.ClassLine
	case "area":
		cl = vmap2.ClassPolygon
	case "text":
		cl = vmap2.ClassText
	default:
		return Selector{}, fmt.Errorf("unknown selector class %q", parts[0])
	}
	base := 10
	numStr := parts[1]
	if strings.HasPrefix(numStr, "0x") {
		base = 16
		numStr = numStr[2:]
	}
	n, err := strconv.ParseUint(numStr, base, 32)
	if err != nil {
		return Selector{}, fmt.Errorf("bad type number in %q: %w", tok, err)
	}
	return Selector{Kind: SelType, Class: cl, TypeNo: uint32(n)}, nil
}

func parseRefSpec(args []string) (*RefSpec, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("set_ref: at least one argument expected")
	}
	switch args[0] {
	case "none":
		return &RefSpec{Kind: "none"}, nil
	case "file":
		if len(args) != 2 {
			return nil, fmt.Errorf("set_ref file: 1 argument expected: <path>")
		}
		return &RefSpec{Kind: "file", Path: args[1]}, nil
	case "nom", "nom_fi":
		if len(args) != 3 {
			return nil, fmt.Errorf("set_ref %s: 2 arguments expected: <name> <dpi>", args[0])
		}
		dpi, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return nil, fmt.Errorf("set_ref %s: bad dpi: %w", args[0], err)
		}
		return &RefSpec{Kind: args[0], Name: args[1], DPI: dpi}, nil
	}
	return nil, fmt.Errorf("set_ref: unknown kind %q", args[0])
}

func parseBrdSpec(args []string) (*BrdSpec, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("set_brd: at least one argument expected")
	}
	switch args[0] {
	case "none":
		return &BrdSpec{Kind: "none"}, nil
	case "file":
		if len(args) != 2 {
			return nil, fmt.Errorf("set_brd file: 1 argument expected: <path>")
		}
		return &BrdSpec{Kind: "file", Path: args[1]}, nil
	}
	return nil, fmt.Errorf("set_brd: unknown kind %q", args[0])
}

func parseFloatArg(words []string, name string) (float64, error) {
	if len(words) != 2 {
		return 0, fmt.Errorf("%s: 1 argument expected", name)
	}
	return strconv.ParseFloat(words[1], 64)
}

func evalCond(lhs, op, rhs string) (bool, error) {
	switch op {
	case "==":
		return lhs == rhs, nil
	case "!=":
		return lhs != rhs, nil
	default:
		return false, fmt.Errorf("if: unknown operator %q", op)
	}
}

func applyDefs(s string, defs map[string]string) string {
	if !strings.Contains(s, "$") {
		return s
	}
	for k, v := range defs {
		s = strings.ReplaceAll(s, "$"+k, v)
	}
	return s
}

func stripComment(s string) string {
	escaped := false
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\':
			escaped = true
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		// '#' opens a comment only at the start of a line or as a word
		// of its own, so "#rrggbb" colours survive.
		case c == '#' && (strings.TrimSpace(s[:i]) == "" ||
			((s[i-1] == ' ' || s[i-1] == '\t') && (i+1 == len(s) || s[i+1] == ' ' || s[i+1] == '\t'))):
			return s[:i]
		}
	}
	return s
}

func splitStyleWords(s string) []string {
	var words []string
	var cur strings.Builder
	inWord := false
	escaped := false
	var quote byte
	flush := func() {
		if inWord {
			words = append(words, cur.String())
			cur.Reset()
			inWord = false
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			cur.WriteByte(c)
			inWord = true
			escaped = false
		case c == '\\':
			escaped = true
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				cur.WriteByte(c)
			}
			inWord = true
		case c == '"' || c == '\'':
			quote = c
			inWord = true
		case c == ' ' || c == '\t':
			flush()
		default:
			cur.WriteByte(c)
			inWord = true
		}
	}
	flush()
	return words
}

// StylesheetError reports a stylesheet parse failure at a specific
// line: an unknown command or feature, a wrong argument count, or an
// unterminated if block (§6.2's lint-pass error shape).
type StylesheetError struct {
	Line int
	Msg  string
}

func (e *StylesheetError) Error() string {
	return fmt.Sprintf("render: line %d: %s", e.Line, e.Msg)
}

func lineErr(lineNo int, msg string) error {
	return &StylesheetError{Line: lineNo + 1, Msg: msg}
}
