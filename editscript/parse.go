// Package editscript implements the conditional rewrite DSL (§4.7):
// a sequence of `if`/`and`/`or` condition statements each optionally
// followed by a command, applied object-by-object to an open
// vmap2.Map. Grounded on original_source/vmap2edit/vmap2edit.cpp (the
// if/and/or/command statement grouping and evaluation loop) and
// original_source/vmap2edit/actions.cpp (the command set).
package editscript

import (
	"fmt"
	"io"
)

type stmtKind int

const (
	kindIf stmtKind = iota
	kindAnd
	kindOr
	kindCmd
)

type statement struct {
	kind  stmtKind
	words []string
	line  int
}

// Script is a parsed edit-script: an ordered list of condition/command
// statements to apply to every object of a vmap2.Map.
type Script struct {
	stmts []statement
	// dir is the directory the script file itself lives in, used to
	// resolve relative `translate DICT.FILE` paths the way
	// vmap2edit.cpp resolves include/data paths relative to the
	// script's own location (file_get_prefix).
	dir string
}

// ParseError reports a malformed edit-script line, wrapping the
// source line number the way vmap2edit.cpp's read loop wraps every Err
// with "<fname>:<line>:".
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string { return fmt.Sprintf("editscript: line %d: %s", e.Line, e.Msg) }

// Parse reads an edit-script from r. dir is used to resolve relative
// paths in the `translate` command; pass "" when none are used.
func Parse(r io.Reader, dir string) (*Script, error) {
	wr := newWordReader(r)
	s := &Script{dir: dir}

	lastKind := func() (stmtKind, bool) {
		if len(s.stmts) == 0 {
			return 0, false
		}
		return s.stmts[len(s.stmts)-1].kind, true
	}

	for {
		words, line, ok := wr.next()
		if !ok {
			break
		}

		switch words[0] {
		case "if":
			if k, had := lastKind(); had && k != kindCmd {
				return nil, &ParseError{Line: line, Msg: "if: should follow a command"}
			}
			rest := words[1:]
			thenIdx := -1
			for i, w := range rest {
				if w == "then" {
					thenIdx = i
					break
				}
			}
			if thenIdx < 0 {
				s.stmts = append(s.stmts, statement{kind: kindIf, words: rest, line: line})
				continue
			}
			s.stmts = append(s.stmts, statement{kind: kindIf, words: rest[:thenIdx], line: line})
			if thenIdx+1 >= len(rest) {
				return nil, &ParseError{Line: line, Msg: "empty command after then"}
			}
			s.stmts = append(s.stmts, statement{kind: kindCmd, words: rest[thenIdx+1:], line: line})

		case "and":
			if k, had := lastKind(); !had || k == kindCmd {
				return nil, &ParseError{Line: line, Msg: "and: should not follow a command or be first"}
			}
			if len(words) < 2 {
				return nil, &ParseError{Line: line, Msg: "and: condition expected"}
			}
			s.stmts = append(s.stmts, statement{kind: kindAnd, words: words[1:], line: line})

		case "or":
			if k, had := lastKind(); !had || k == kindCmd {
				return nil, &ParseError{Line: line, Msg: "or: should not follow a command or be first"}
			}
			if len(words) < 2 {
				return nil, &ParseError{Line: line, Msg: "or: condition expected"}
			}
			s.stmts = append(s.stmts, statement{kind: kindOr, words: words[1:], line: line})

		default:
			s.stmts = append(s.stmts, statement{kind: kindCmd, words: words, line: line})
		}
	}
	return s, nil
}
