package container

// StateSetIndex is the "get-or-create" identity map SPEC_FULL.md §4.4
// describes as "a red-black tree keyed by lexicographic comparison of
// these vectors [that] maps S -> dfa_state_index". A plain Go map keyed
// by OrderedSet.Key() is the idiomatic substitution: insertion order is
// tracked separately by the caller's Queue, and no code anywhere needs to
// walk the index in sorted order, so a hash map's O(1) get-or-create is
// strictly more idiomatic than a hand-rolled balanced tree. See
// DESIGN.md.
type StateSetIndex struct {
	index map[string]uint32
}

// NewStateSetIndex returns an empty index.
func NewStateSetIndex() *StateSetIndex {
	return &StateSetIndex{index: make(map[string]uint32)}
}

// GetOrCreate looks up key (normally an OrderedSet.Key()). If present, it
// returns the stored index and false. If absent, it stores and returns
// next() and true — next is called lazily so callers only pay for an
// index allocation on an actual miss.
func (idx *StateSetIndex) GetOrCreate(key string, next func() uint32) (uint32, bool) {
	if v, ok := idx.index[key]; ok {
		return v, false
	}
	v := next()
	idx.index[key] = v
	return v, true
}

// Len returns the number of distinct keys stored.
func (idx *StateSetIndex) Len() int { return len(idx.index) }
