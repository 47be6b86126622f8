package editscript

import "vmap2toolkit/vmap2"

// Run applies the script to every object currently in m, in id order,
// matching vmap2edit.cpp's iter_start/iter_end loop: within each
// object, an `if` clause sets the running condition, `and`/`or`
// clauses combine into it, and a command runs only while the
// condition holds, after which the condition resets to true for the
// next group. Once a command removes the object from m, the remaining
// statements are skipped for it. A command error aborts the whole run (§7: "the edit
// runner is fatal on syntax errors and on any command error").
func (s *Script) Run(m *vmap2.Map) error {
	st := newState(s.dir)
	c := m.IterStart()
	for !c.End() {
		id, o, ok := c.Next()
		if !ok {
			break
		}
		cond := true
	stmts:
		for i := range s.stmts {
			stmt := &s.stmts[i]
			switch stmt.kind {
			case kindIf:
				v, err := evalCond(stmt.words, o)
				if err != nil {
					return err
				}
				cond = v
			case kindAnd:
				v, err := evalCond(stmt.words, o)
				if err != nil {
					return err
				}
				cond = cond && v
			case kindOr:
				v, err := evalCond(stmt.words, o)
				if err != nil {
					return err
				}
				cond = cond || v
			case kindCmd:
				if cond {
					if _, err := runCmd(stmt, i, st, m, id, o); err != nil {
						return err
					}
					if _, ok := m.Get(id); !ok {
						break stmts
					}
				}
				cond = true
			}
		}
	}
	return nil
}
