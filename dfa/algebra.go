package dfa

import "github.com/fafsm/refa/internal/conv"

// pairKey identifies a product state during Union's construction.
type pairKey struct{ x, y StateID }

// Union implements SPEC_FULL.md §4.6's product construction: a new state
// per reachable (a-state, b-state) pair, accepting iff either side
// accepts. Once a pair is absorbing — both sides DEADEND, or either side
// is a DEADEND-AND-FINAL sink — the product state is collapsed into its
// own self-looping FINAL or non-FINAL sink instead of being expanded
// further, the DEADEND-collapse optimization SPEC_FULL.md names
// explicitly so Union of two already-minimal DFAs doesn't regenerate an
// unbounded fan of equivalent dead states.
func Union(a, b *DFA) (*DFA, error) {
	index := make(map[pairKey]uint32)
	var finals []bool
	var rows [][256]uint32
	var queue []pairKey

	getOrCreate := func(x, y StateID) uint32 {
		k := pairKey{x, y}
		if id, ok := index[k]; ok {
			return id
		}
		id := conv.IntToUint32(len(finals))
		index[k] = id
		finals = append(finals, a.IsFinal(x) || b.IsFinal(y))
		rows = append(rows, [256]uint32{})
		queue = append(queue, k)
		return id
	}

	start := getOrCreate(a.Start, b.Start)

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		id := index[p]

		aDead, bDead := a.IsDeadend(p.x), b.IsDeadend(p.y)
		absorbing := (aDead && bDead) || (aDead && a.IsFinal(p.x)) || (bDead && b.IsFinal(p.y))
		if absorbing {
			for b := 0; b < 256; b++ {
				rows[id][b] = id
			}
			continue
		}

		for byt := 0; byt < 256; byt++ {
			nx := a.Trans.Get(p.x, byte(byt))
			ny := b.Trans.Get(p.y, byte(byt))
			rows[id][byt] = getOrCreate(nx, ny)
		}
	}

	return packDFA(start, finals, rows, joinComments(a.Comment, b.Comment)), nil
}

// Append implements SPEC_FULL.md §4.6's free-middle concatenation A ·
// Σ* · B: find any one accepting state m of A (the initial state first,
// if it already accepts), append B's states after A's (excluding B's
// own initial, whose role merges into every one of A's accepting
// states), and overwrite each of A's accepting states' transitions and
// FINAL flag to match B's initial state's. The Σ* bridge is not an
// extra explicit state: it falls out of B's own initial state already
// looping over whatever bytes don't advance its own pattern, which
// SPEC_FULL.md's default unanchored compilation guarantees for every
// DFA this package produces.
//
// SPEC_FULL.md §9's Open Question #2 governs the no-accepting-state
// case: Append returns ErrNotApplicable rather than silently producing
// an automaton that can never match.
func Append(a, b *DFA) (*DFA, error) {
	m := -1
	if a.IsFinal(a.Start) {
		m = int(a.Start)
	}
	for i := 0; m == -1 && i < a.N; i++ {
		if a.IsFinal(uint32(i)) {
			m = i
		}
	}
	if m == -1 {
		return nil, ErrNotApplicable
	}

	remap := make([]uint32, b.N)
	next := uint32(a.N)
	for i := 0; i < b.N; i++ {
		if uint32(i) == b.Start {
			remap[i] = uint32(m)
			continue
		}
		remap[i] = next
		next++
	}
	total := int(next)

	finals := make([]bool, total)
	rows := make([][256]uint32, total)

	for i := 0; i < a.N; i++ {
		finals[i] = a.IsFinal(uint32(i))
		for byt := 0; byt < 256; byt++ {
			rows[i][byt] = a.Trans.Get(uint32(i), byte(byt))
		}
	}
	for i := 0; i < b.N; i++ {
		if uint32(i) == b.Start {
			continue
		}
		id := remap[i]
		finals[id] = b.IsFinal(uint32(i))
		for byt := 0; byt < 256; byt++ {
			rows[id][byt] = remap[b.Trans.Get(uint32(i), byte(byt))]
		}
	}

	bStartFinal := b.IsFinal(b.Start)
	for i := 0; i < a.N; i++ {
		if !a.IsFinal(uint32(i)) {
			continue
		}
		for byt := 0; byt < 256; byt++ {
			rows[i][byt] = remap[b.Trans.Get(b.Start, byte(byt))]
		}
		finals[i] = bStartFinal
	}

	merged := packDFA(a.Start, finals, rows, joinComments(a.Comment, b.Comment))
	return merged.Minimize()
}

// Compress shrinks the transition table's bits-per-state width to the
// smallest size that can still index d.N states (SPEC_FULL.md §4.6): a
// DFA built up through several Union/Append/Minimize passes and then
// narrowed back down can otherwise carry a wider table than its final
// state count needs.
func (d *DFA) Compress() {
	d.Trans.Compress(d.N)
}

func joinComments(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "\n" + b
	}
}
