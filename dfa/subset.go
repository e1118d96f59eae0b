package dfa

import (
	"github.com/fafsm/refa/internal/container"
	"github.com/fafsm/refa/internal/conv"
	"github.com/fafsm/refa/nfa"
)

// SubsetConfig threads construction limits explicitly, mirroring
// nfa.CompilerConfig's no-package-globals discipline.
type SubsetConfig struct {
	// MaxStates bounds the DFA state count the subset construction may
	// produce; a pathological NFA can in principle blow up to 2^k
	// states, so this is the guard SPEC_FULL.md §7's StateLimit kind
	// exists for.
	MaxStates int
}

// DefaultSubsetConfig returns the config used when none is supplied.
func DefaultSubsetConfig() SubsetConfig {
	return SubsetConfig{MaxStates: 1 << 20}
}

type subsetWork struct {
	id  uint32
	set []uint32
}

// FromNFA implements SPEC_FULL.md §4.4's subset (powerset) construction:
// each DFA state is identified with a sorted, deduplicated set of NFA
// state indices, built breadth-first from {n.Start} via a get-or-create
// index over set identity, exactly the container.StateSetIndex /
// container.OrderedSet / container.Queue combination those types
// document themselves as existing for.
func FromNFA(n *nfa.NFA, cfg SubsetConfig) (*DFA, error) {
	if cfg.MaxStates <= 0 {
		cfg = DefaultSubsetConfig()
	}

	idx := container.NewStateSetIndex()
	queue := container.NewQueue[subsetWork](16)

	var finals []bool
	var rows [][256]uint32
	var buildErr error

	getOrCreate := func(set []uint32) uint32 {
		key := encodeStateSet(set)
		id, created := idx.GetOrCreate(key, func() uint32 {
			if buildErr != nil {
				return conv.IntToUint32(len(finals))
			}
			if len(finals) >= cfg.MaxStates {
				buildErr = stateLimitErrorf(cfg.MaxStates, len(finals)+1)
				return conv.IntToUint32(len(finals))
			}
			// len(finals) < cfg.MaxStates was just checked, so this
			// narrowing is within the construction's own state-count
			// ceiling, not raw untrusted input.
			id := conv.IntToUint32(len(finals))
			final := false
			for _, s := range set {
				if n.States[s].Final {
					final = true
					break
				}
			}
			finals = append(finals, final)
			rows = append(rows, [256]uint32{})
			return id
		})
		if created && buildErr == nil {
			queue.Push(subsetWork{id: id, set: set})
		}
		return id
	}

	start := getOrCreate([]uint32{n.Start})
	if buildErr != nil {
		return nil, buildErr
	}

	for {
		item, ok := queue.Pop()
		if !ok {
			break
		}

		var perByte [256]*container.OrderedSet
		for _, s := range item.set {
			for _, g := range n.States[s].Groups {
				for b := int(g.Lo); b <= int(g.Hi); b++ {
					if perByte[b] == nil {
						perByte[b] = container.NewOrderedSet(len(g.Targets))
					}
					for _, t := range g.Targets {
						perByte[b].Insert(t)
					}
				}
			}
		}

		for b := 0; b < 256; b++ {
			var target []uint32
			if perByte[b] != nil {
				target = perByte[b].Items()
			}
			// getOrCreate may grow rows, so index it afresh on each store.
			next := getOrCreate(target)
			rows[item.id][b] = next
			if buildErr != nil {
				return nil, buildErr
			}
		}
	}

	return packDFA(start, finals, rows, n.Comment), nil
}

// encodeStateSet is the same canonical byte encoding as
// container.OrderedSet.Key, applied directly to an already-sorted,
// already-deduplicated slice so the subset loop doesn't pay for
// rebuilding an OrderedSet purely to compute a map key.
func encodeStateSet(set []uint32) string {
	buf := make([]byte, 4*len(set))
	for i, v := range set {
		buf[4*i] = byte(v)
		buf[4*i+1] = byte(v >> 8)
		buf[4*i+2] = byte(v >> 16)
		buf[4*i+3] = byte(v >> 24)
	}
	return string(buf)
}
