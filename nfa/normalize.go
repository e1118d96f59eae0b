package nfa

import (
	"github.com/fafsm/refa/internal/container"
	"github.com/fafsm/refa/internal/sparse"
)

// Normalize implements SPEC_FULL.md §4.3 (`rebuild`): ε-elimination
// followed by reachability + garbage pruning. It returns a new *NFA whose
// states are all KindConsumer (no ε-edges remain), renumbered in
// depth-first order from the (possibly newly synthesized) initial state,
// with per-state SelfClosed/Prefinal flags computed.
func (n *NFA) Normalize() (*NFA, error) {
	consumers := make([]State, len(n.States))
	for i, s := range n.States {
		switch s.Kind {
		case KindByte:
			groups := canonicalizeGroups(n.closureAssertions(StateID(i)))
			consumers[i] = State{Kind: KindConsumer, Groups: groups}
		case KindMatch:
			consumers[i] = State{Kind: KindConsumer, Final: true}
		default: // KindSplit, KindEpsilon: no transitions of their own.
			consumers[i] = State{Kind: KindConsumer}
		}
	}

	start := n.Start
	if n.States[start].Kind == KindSplit || n.States[start].Kind == KindEpsilon {
		cl := epsilonClosure(n.States, start)
		var raw []rawAssertion
		final := false
		for _, s := range cl {
			switch n.States[s].Kind {
			case KindByte:
				raw = append(raw, rawAssertion{
					lo: n.States[s].Lo, hi: n.States[s].Hi,
					targets: epsilonClosure(n.States, n.States[s].Next),
				})
			case KindMatch:
				final = true
			}
		}
		consumers = append(consumers, State{Kind: KindConsumer, Groups: canonicalizeGroups(raw), Final: final})
		start = StateID(len(consumers) - 1)
	}

	order := dfsOrder(consumers, start)
	notRemovable := reverseReachFromFinal(consumers, order)

	keep := make([]bool, len(consumers))
	for _, id := range order {
		if notRemovable.Contains(id) {
			keep[id] = true
		}
	}

	newIndex := make([]int32, len(consumers))
	for i := range newIndex {
		newIndex[i] = -1
	}
	var kept []StateID
	for _, id := range order {
		if keep[id] {
			newIndex[id] = int32(len(kept))
			kept = append(kept, id)
		}
	}

	out := make([]State, len(kept))
	for newID, oldID := range kept {
		old := consumers[oldID]
		var groups []ByteGroup
		for _, g := range old.Groups {
			var targets []StateID
			for _, t := range g.Targets {
				if keep[t] {
					targets = append(targets, StateID(newIndex[t]))
				}
			}
			if len(targets) == 0 {
				continue
			}
			groups = append(groups, ByteGroup{Lo: g.Lo, Hi: g.Hi, Targets: targets})
		}
		out[newID] = State{Kind: KindConsumer, Groups: groups, Final: old.Final}
	}

	for i := range out {
		out[i].SelfClosed = isSelfClosed(out[i], StateID(i))
		out[i].Prefinal = isPrefinal(out, out[i])
	}

	return &NFA{States: out, Start: 0, Comment: n.Comment}, nil
}

// closureAssertions builds the one raw byte-range assertion an ordinary
// KindByte state contributes: its own [Lo,Hi] range transitioning to the
// ε-closure of its Next state (SPEC_FULL.md §4.3: "replace each non-ε
// transition δ(p,b) ∋ q by δ(p,b) ⊇ Eλ(q)").
func (n *NFA) closureAssertions(p StateID) []rawAssertion {
	s := n.States[p]
	if s.Lo > s.Hi {
		return nil
	}
	return []rawAssertion{{lo: s.Lo, hi: s.Hi, targets: epsilonClosure(n.States, s.Next)}}
}

type rawAssertion struct {
	lo, hi  byte
	targets []StateID
}

// epsilonClosure returns the sorted, deduplicated set of states reachable
// from start via only KindSplit/KindEpsilon edges, inclusive of start
// itself (SPEC_FULL.md §4.3's Eλ(q)). Grounded in internal/container's
// OrderedSet, documented there as existing precisely "to back ... ε-closure
// accumulation (package nfa)".
func epsilonClosure(states []State, start StateID) []StateID {
	set := container.NewOrderedSet(4)
	stack := []StateID{start}
	set.Insert(start)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		s := &states[cur]
		var next []StateID
		switch s.Kind {
		case KindEpsilon:
			if s.Next != InvalidState {
				next = []StateID{s.Next}
			}
		case KindSplit:
			next = []StateID{s.Left, s.Right}
		}
		for _, t := range next {
			if t != InvalidState && set.Insert(t) {
				stack = append(stack, t)
			}
		}
	}
	return append([]StateID(nil), set.Items()...)
}

// canonicalizeGroups turns a list of possibly-overlapping byte-range
// assertions into the canonical sorted, non-overlapping ByteGroup slice
// where each byte maps to the union of every target set asserting it.
// Needed because a synthesized initial state (see Normalize) can merge
// several original states' overlapping ranges; ordinary KindByte states
// pass a single non-overlapping assertion through unchanged.
func canonicalizeGroups(raw []rawAssertion) []ByteGroup {
	var sets [256]*container.OrderedSet
	for _, a := range raw {
		if a.lo > a.hi {
			continue
		}
		for b := int(a.lo); b <= int(a.hi); b++ {
			if sets[b] == nil {
				sets[b] = container.NewOrderedSet(len(a.targets))
			}
			for _, t := range a.targets {
				sets[b].Insert(t)
			}
		}
	}

	var groups []ByteGroup
	i := 0
	for i < 256 {
		if sets[i] == nil {
			i++
			continue
		}
		lo := i
		key := sets[i].Key()
		j := i + 1
		for j < 256 && sets[j] != nil && sets[j].Key() == key {
			j++
		}
		groups = append(groups, ByteGroup{
			Lo: byte(lo), Hi: byte(j - 1),
			Targets: append([]StateID(nil), sets[i].Items()...),
		})
		i = j
	}
	return groups
}

// dfsOrder returns every KindConsumer state reachable from start via δ,
// in depth-first discovery order (SPEC_FULL.md §4.3: "Depth-first from
// the new initial along δ collecting reachable states in depth order").
func dfsOrder(states []State, start StateID) []StateID {
	visited := make([]bool, len(states))
	var order []StateID
	var stack []StateID
	stack = append(stack, start)
	visited[start] = true
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, cur)
		for _, g := range states[cur].Groups {
			for _, t := range g.Targets {
				if !visited[t] {
					visited[t] = true
					stack = append(stack, t)
				}
			}
		}
	}
	return order
}

// reverseReachFromFinal computes, among the reachable set, which states
// are NOT removable: SPEC_FULL.md §4.3's removable predicate ("not
// accepting and every non-ε successor is itself removable") is exactly
// the complement of "can reach some accepting state", computed here as a
// multi-source BFS over the reverse edges of the reachable subgraph,
// seeded from every accepting state. Membership is tracked with
// sparse.SparseSet rather than a map[StateID]bool: the universe (every
// state index up to len(states)) is known up front and small, exactly
// the case the teacher's sparse set is built for, and Values()/Contains
// avoid a hash per state visited during the BFS.
func reverseReachFromFinal(states []State, reachable []StateID) *sparse.SparseSet {
	universe := uint32(len(states))
	reachSet := sparse.NewSparseSet(universe)
	for _, id := range reachable {
		reachSet.Insert(id)
	}

	preimage := make(map[StateID][]StateID)
	var queue []StateID
	notRemovable := sparse.NewSparseSet(universe)
	for _, id := range reachable {
		for _, g := range states[id].Groups {
			for _, t := range g.Targets {
				if reachSet.Contains(t) {
					preimage[t] = append(preimage[t], id)
				}
			}
		}
		if states[id].Final {
			notRemovable.Insert(id)
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, p := range preimage[cur] {
			if !notRemovable.Contains(p) {
				notRemovable.Insert(p)
				queue = append(queue, p)
			}
		}
	}
	return notRemovable
}

func isSelfClosed(s State, self StateID) bool {
	if len(s.Groups) != 1 {
		return false
	}
	g := s.Groups[0]
	if g.Lo != 0 || g.Hi != 255 {
		return false
	}
	return len(g.Targets) == 1 && g.Targets[0] == self
}

func isPrefinal(all []State, s State) bool {
	if len(s.Groups) == 0 {
		return false
	}
	for _, g := range s.Groups {
		for _, t := range g.Targets {
			if !all[t].Final {
				return false
			}
		}
	}
	return true
}
