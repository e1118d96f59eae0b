package dfa

import "github.com/fafsm/refa/internal/conv"

// Minimize implements SPEC_FULL.md §4.5: partition refinement down to
// the coarsest stable partition consistent with FINAL. States start
// split into {FINAL, not-FINAL}; a class is repeatedly split whenever
// two of its members disagree on which class at least one byte's
// transition lands in, until a full pass produces no further split.
// This is Moore's partition-refinement algorithm rather than the
// incremental worklist-with-preimage bookkeeping SPEC_FULL.md describes
// as the original's approach — same fixed point, same result, simpler
// to get right without a matching-engine-style byte scanner to test
// against; see DESIGN.md.
//
// SPEC_FULL.md §9's Open Question #4 is handled up front: if every
// state is accepting, or none is, Minimize returns an independent,
// unchanged copy rather than running a one-class partition through the
// refinement loop. The states of such a DFA are not merged, so the copy
// keeps the input's state count.
func (d *DFA) Minimize() (*DFA, error) {
	n := d.N
	if n == 0 {
		return d.clone(), nil
	}

	allFinal, allReject := true, true
	for i := 0; i < n; i++ {
		if d.Final[i] {
			allReject = false
		} else {
			allFinal = false
		}
	}
	if allFinal || allReject {
		return d.clone(), nil
	}

	classOf := make([]int, n)
	for i := 0; i < n; i++ {
		if d.Final[i] {
			classOf[i] = 1
		}
	}
	// The start state's class must be 0 (SPEC_FULL.md §4.5): swap labels
	// if the initial split put it in class 1.
	if classOf[d.Start] == 1 {
		for i := range classOf {
			classOf[i] = 1 - classOf[i]
		}
	}
	numClasses := 2

	for changed := true; changed; {
		changed = false
		members := make([][]int, numClasses)
		for i := 0; i < n; i++ {
			members[classOf[i]] = append(members[classOf[i]], i)
		}
		for _, grp := range members {
			if len(grp) <= 1 {
				continue
			}
			signature := func(s int) [256]int {
				var sig [256]int
				for b := 0; b < 256; b++ {
					sig[b] = classOf[d.Trans.Get(uint32(s), byte(b))]
				}
				return sig
			}
			base := signature(grp[0])
			var split []int
			for _, s := range grp[1:] {
				if signature(s) != base {
					split = append(split, s)
				}
			}
			if len(split) > 0 {
				newClass := numClasses
				numClasses++
				for _, s := range split {
					classOf[s] = newClass
				}
				changed = true
			}
		}
	}

	finals := make([]bool, numClasses)
	rows := make([][256]uint32, numClasses)
	seen := make([]bool, numClasses)
	for i := 0; i < n; i++ {
		c := classOf[i]
		if seen[c] {
			continue
		}
		seen[c] = true
		finals[c] = d.Final[i]
		for b := 0; b < 256; b++ {
			rows[c][b] = uint32(classOf[d.Trans.Get(uint32(i), byte(b))])
		}
	}

	newStart := classOf[d.Start]
	if newStart != 0 {
		swapClasses(finals, rows, 0, newStart)
		newStart = 0
	}

	return packDFA(conv.IntToUint32(newStart), finals, rows, d.Comment), nil
}

// swapClasses exchanges the labels of classes a and b throughout finals
// and rows, keeping the invariant that the start state is always class
// 0 without having to renumber every other class.
func swapClasses(finals []bool, rows [][256]uint32, a, b int) {
	finals[a], finals[b] = finals[b], finals[a]
	rows[a], rows[b] = rows[b], rows[a]
	for i := range rows {
		for j := range rows[i] {
			switch rows[i][j] {
			case uint32(a):
				rows[i][j] = uint32(b)
			case uint32(b):
				rows[i][j] = uint32(a)
			}
		}
	}
}
