// Package container provides the small set of shared data structures the
// compiler pipeline needs: an ordered, deduplicated set of state indices,
// a FIFO work queue, and a get-or-create index over sets of state indices.
//
// These are the Go-idiomatic rendering of SPEC_FULL.md §4.8's "Supporting
// containers", grounded in original_source/lib/simple_list.{h,c} (a FIFO
// and an ordered array) and original_source/lib/nfa_to_dfa.c's page-block
// ptr_queue and red-black tree. See DESIGN.md for why a slice-backed queue
// and a map-backed index replace the original's block-linked-list and
// red-black tree.
package container

import "sort"

// OrderedSet is a sorted, deduplicated set of uint32 values, the direct
// analogue of simple_list's SLIST_ARRAY with isorder set. It backs both
// ε-closure accumulation (package nfa) and NFA-state-set identity during
// subset construction (package dfa).
type OrderedSet struct {
	items []uint32
}

// NewOrderedSet returns an empty set with the given capacity hint.
func NewOrderedSet(capacity int) *OrderedSet {
	return &OrderedSet{items: make([]uint32, 0, capacity)}
}

// Insert adds v to the set via binary-search dedup, the insertion
// discipline SPEC_FULL.md §4.4 names explicitly ("insertion into an
// ordered vector with binary-search dedup"). Reports whether v was newly
// inserted.
func (s *OrderedSet) Insert(v uint32) bool {
	i := sort.Search(len(s.items), func(i int) bool { return s.items[i] >= v })
	if i < len(s.items) && s.items[i] == v {
		return false
	}
	s.items = append(s.items, 0)
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = v
	return true
}

// Contains reports whether v is a member.
func (s *OrderedSet) Contains(v uint32) bool {
	i := sort.Search(len(s.items), func(i int) bool { return s.items[i] >= v })
	return i < len(s.items) && s.items[i] == v
}

// Items returns the sorted backing slice. Callers must not mutate it.
func (s *OrderedSet) Items() []uint32 { return s.items }

// Len returns the number of members.
func (s *OrderedSet) Len() int { return len(s.items) }

// Reset empties the set for reuse without reallocating.
func (s *OrderedSet) Reset() { s.items = s.items[:0] }

// Key returns a canonical byte-string encoding of the sorted set, used by
// StateSetIndex as a map key (see DESIGN.md for why this replaces the
// original's red-black tree keyed by lexicographic comparison of the same
// vectors — the ordering itself is not observable through this
// interface, only deduplicated identity is).
func (s *OrderedSet) Key() string {
	buf := make([]byte, 4*len(s.items))
	for i, v := range s.items {
		buf[4*i] = byte(v)
		buf[4*i+1] = byte(v >> 8)
		buf[4*i+2] = byte(v >> 16)
		buf[4*i+3] = byte(v >> 24)
	}
	return string(buf)
}
