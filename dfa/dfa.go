package dfa

// StateID indexes a DFA state.
type StateID = uint32

// DFA is a deterministic finite automaton over the 8-bit byte alphabet:
// total (every state has exactly 256 outgoing transitions), with a
// single start state and a boolean FINAL flag per state (SPEC_FULL.md
// §4.4). DEADEND is deliberately not stored — it is a derived property
// (a state whose 256 transitions all loop to itself) recomputed on
// demand by IsDeadend.
type DFA struct {
	Start   StateID
	N       int
	Final   []bool
	Trans   *Table
	Comment string
}

// IsFinal reports whether q is an accepting state. States at or beyond
// N are treated as out of range rather than panicking, the half-open
// [0,N) bounds check SPEC_FULL.md §9's Open Question #1 settles on.
func (d *DFA) IsFinal(q StateID) bool {
	if int(q) >= d.N {
		return false
	}
	return d.Final[q]
}

// SetFinal sets q's accepting flag. Out-of-range q is a silent no-op,
// for the same half-open-bounds reason as IsFinal.
func (d *DFA) SetFinal(q StateID, v bool) {
	if int(q) >= d.N {
		return
	}
	d.Final[q] = v
}

// IsDeadend reports whether q is an absorbing state: every one of its
// 256 transitions loops back to itself. It does not look at FINAL, so an
// accepting self-loop state counts as DEADEND too.
func (d *DFA) IsDeadend(q StateID) bool {
	if int(q) >= d.N {
		return false
	}
	for b := 0; b < 256; b++ {
		if d.Trans.Get(q, byte(b)) != q {
			return false
		}
	}
	return true
}

// Step returns the state reached from q on byte b.
func (d *DFA) Step(q StateID, b byte) StateID {
	return d.Trans.Get(q, b)
}

// Accepts drives bs through the DFA from its start state and reports
// whether the state reached after the whole input is accepting. This is
// the harness SPEC_FULL.md §8's testable properties are checked
// against, not a standalone matching engine — the DFA itself is the
// deliverable, consumed by whatever scanner embeds it.
func (d *DFA) Accepts(bs []byte) bool {
	q := d.Start
	for _, b := range bs {
		q = d.Trans.Get(q, b)
	}
	return d.IsFinal(q)
}

// clone makes an independent copy, used by Minimize's degenerate-input
// no-op path so callers always receive a DFA they solely own.
func (d *DFA) clone() *DFA {
	finals := append([]bool(nil), d.Final...)
	buf := append([]byte(nil), d.Trans.buf...)
	table := &Table{bps: d.Trans.bps, malloc: d.Trans.malloc, buf: buf}
	return &DFA{Start: d.Start, N: d.N, Final: finals, Trans: table, Comment: d.Comment}
}

// packDFA builds a DFA from parallel per-state slices, the common tail
// end of subset construction, union and append.
func packDFA(start StateID, finals []bool, rows [][256]uint32, comment string) *DFA {
	n := len(finals)
	table := NewTable(n)
	for i := 0; i < n; i++ {
		for b := 0; b < 256; b++ {
			table.Set(uint32(i), byte(b), rows[i][b])
		}
	}
	return &DFA{Start: start, N: n, Final: finals, Trans: table, Comment: comment}
}
