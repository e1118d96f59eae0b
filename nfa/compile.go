package nfa

import "github.com/fafsm/refa/parser"

// CompilerConfig threads construction limits explicitly, per SPEC_FULL.md
// §3.1's "Configuration" note: no package-level mutable state, a small
// value struct passed into the constructor instead, grounded in the
// teacher's nfa.CompilerConfig shape.
type CompilerConfig struct {
	// MaxStates bounds the λ-NFA state count. Repetition is the only
	// construct that can make state count grow faster than pattern
	// length (a bounded {m,n} unrolls to O(n) copies), so this is the
	// practical guard SPEC_FULL.md's StateLimit error kind exists for.
	MaxStates int
}

// DefaultCompilerConfig returns the config used when none is supplied.
func DefaultCompilerConfig() CompilerConfig {
	return CompilerConfig{MaxStates: 1 << 20}
}

// Compiler builds a λ-NFA from a single parser.Tree (SPEC_FULL.md §4.2).
// A Compiler is single-use: one Compile call per instance, matching the
// core's single-threaded, single-owner object model (SPEC_FULL.md §5).
type Compiler struct {
	cfg    CompilerConfig
	states []State
}

// NewCompiler returns a Compiler governed by cfg.
func NewCompiler(cfg CompilerConfig) *Compiler {
	return &Compiler{cfg: cfg, states: make([]State, 0, 64)}
}

// Compile implements SPEC_FULL.md §4.2: Thompson-style construction of a
// λ-NFA from tree, with exactly one initial state and one accepting
// state. The tree's pattern text is copied onto the NFA as its comment.
func Compile(tree *parser.Tree, cfg CompilerConfig) (*NFA, error) {
	c := NewCompiler(cfg)
	start, end, err := c.compileNode(tree.Root)
	if err != nil {
		return nil, err
	}
	match := c.addMatch()
	c.patch(end, match)
	return &NFA{States: c.states, Start: start, Comment: tree.Comment}, nil
}

func (c *Compiler) alloc() (StateID, error) {
	if c.cfg.MaxStates > 0 && len(c.states) >= c.cfg.MaxStates {
		return 0, &StateLimitError{Limit: c.cfg.MaxStates, Count: len(c.states) + 1}
	}
	id := StateID(len(c.states))
	c.states = append(c.states, State{})
	return id, nil
}

func (c *Compiler) addPlaceholder() (StateID, error) {
	id, err := c.alloc()
	if err != nil {
		return 0, err
	}
	c.states[id] = State{Kind: KindEpsilon, Next: InvalidState}
	return id, nil
}

func (c *Compiler) addByte(lo, hi byte, next StateID) (StateID, error) {
	id, err := c.alloc()
	if err != nil {
		return 0, err
	}
	c.states[id] = State{Kind: KindByte, Lo: lo, Hi: hi, Next: next}
	return id, nil
}

func (c *Compiler) addSplit(left, right StateID) (StateID, error) {
	id, err := c.alloc()
	if err != nil {
		return 0, err
	}
	c.states[id] = State{Kind: KindSplit, Left: left, Right: right}
	return id, nil
}

func (c *Compiler) addMatch() StateID {
	id := StateID(len(c.states))
	c.states = append(c.states, State{Kind: KindMatch})
	return id
}

// patch finalizes a placeholder state's outgoing ε-edge to target. Every
// state reaching this call was allocated by addPlaceholder and is still
// KindEpsilon with Next == InvalidState; this is the recursive-descent
// replacement for the original source's parent-pointer backpatching
// (SPEC_FULL.md §9).
func (c *Compiler) patch(placeholder, target StateID) {
	c.states[placeholder].Next = target
}

// compileNode applies node's own (min,max) repetition to one compiled
// occurrence of its kind-specific body (SPEC_FULL.md §4.2 "Repetition
// {min,max}"), and is the single entry point concat/union/top-level
// compilation recurse through for each child.
func (c *Compiler) compileNode(n *parser.Node) (start, end StateID, err error) {
	min, max := n.Repeat()

	first := InvalidState
	havePrefix := false
	prevEnd := InvalidState
	for i := 0; i < min; i++ {
		s, e, err := c.compileAtomOnce(n)
		if err != nil {
			return 0, 0, err
		}
		if !havePrefix {
			first, havePrefix = s, true
		} else {
			c.patch(prevEnd, s)
		}
		prevEnd = e
	}

	switch {
	case max == -1:
		subStart, subEnd, err := c.compileAtomOnce(n)
		if err != nil {
			return 0, 0, err
		}
		loopEnd, err := c.addPlaceholder()
		if err != nil {
			return 0, 0, err
		}
		loop, err := c.addSplit(subStart, loopEnd)
		if err != nil {
			return 0, 0, err
		}
		c.patch(subEnd, loop)
		if havePrefix {
			c.patch(prevEnd, loop)
			return first, loopEnd, nil
		}
		return loop, loopEnd, nil

	case max > min:
		finalEnd, err := c.addPlaceholder()
		if err != nil {
			return 0, 0, err
		}
		cur := finalEnd
		for i := 0; i < max-min; i++ {
			subStart, subEnd, err := c.compileAtomOnce(n)
			if err != nil {
				return 0, 0, err
			}
			c.patch(subEnd, cur)
			cur, err = c.addSplit(subStart, cur)
			if err != nil {
				return 0, 0, err
			}
		}
		if havePrefix {
			c.patch(prevEnd, cur)
			return first, finalEnd, nil
		}
		return cur, finalEnd, nil

	default: // max == min
		if !havePrefix {
			// min == max == 0: the parser folds {0,0} to an Empty node
			// before this is ever reached, but an empty match is the
			// well-defined fallback here too.
			e, err := c.addPlaceholder()
			if err != nil {
				return 0, 0, err
			}
			return e, e, nil
		}
		return first, prevEnd, nil
	}
}

// compileAtomOnce builds exactly one occurrence of n's kind-specific
// body, ignoring n's own (min,max) (the caller, compileNode, applies
// that).
func (c *Compiler) compileAtomOnce(n *parser.Node) (start, end StateID, err error) {
	switch n.Kind() {
	case parser.KindChar:
		e, err := c.addPlaceholder()
		if err != nil {
			return 0, 0, err
		}
		s, err := c.addByte(n.Byte(), n.Byte(), e)
		if err != nil {
			return 0, 0, err
		}
		return s, e, nil

	case parser.KindCharClass:
		return c.compileCharClass(n.Class())

	case parser.KindConcat:
		return c.compileConcat(n.Children())

	case parser.KindUnion:
		return c.compileUnion(n.Children())

	case parser.KindEmpty:
		e, err := c.addPlaceholder()
		if err != nil {
			return 0, 0, err
		}
		return e, e, nil

	default:
		e, err := c.addPlaceholder()
		if err != nil {
			return 0, 0, err
		}
		return e, e, nil
	}
}

func (c *Compiler) compileConcat(children []*parser.Node) (start, end StateID, err error) {
	start, prevEnd, err := c.compileNode(children[0])
	if err != nil {
		return 0, 0, err
	}
	for _, ch := range children[1:] {
		s, e, err := c.compileNode(ch)
		if err != nil {
			return 0, 0, err
		}
		c.patch(prevEnd, s)
		prevEnd = e
	}
	return start, prevEnd, nil
}

func (c *Compiler) compileUnion(children []*parser.Node) (start, end StateID, err error) {
	end, err = c.addPlaceholder()
	if err != nil {
		return 0, 0, err
	}
	starts := make([]StateID, len(children))
	for i, ch := range children {
		s, e, err := c.compileNode(ch)
		if err != nil {
			return 0, 0, err
		}
		c.patch(e, end)
		starts[i] = s
	}
	start, err = c.chainSplits(starts)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// chainSplits builds a right-leaning chain of binary Split states
// fanning into every element of starts, the generalization of
// SPEC_FULL.md §4.2's "per child, allocate an in/out pair, add ε
// from/to them" to the Go State model's binary Split.
func (c *Compiler) chainSplits(starts []StateID) (StateID, error) {
	cur := starts[len(starts)-1]
	for i := len(starts) - 2; i >= 0; i-- {
		var err error
		cur, err = c.addSplit(starts[i], cur)
		if err != nil {
			return 0, err
		}
	}
	return cur, nil
}

type byteRun struct{ lo, hi byte }

// classRuns decomposes a CharClass's effective membership into maximal
// contiguous byte runs, via parser.CharClass's own Test predicate so this
// package never reaches into the class's bitmap representation directly.
func classRuns(cc parser.CharClass) []byteRun {
	var runs []byteRun
	inRun := false
	var lo byte
	for i := 0; i < 256; i++ {
		b := byte(i)
		if cc.Test(b) {
			if !inRun {
				lo, inRun = b, true
			}
			continue
		}
		if inRun {
			runs = append(runs, byteRun{lo, byte(i - 1)})
			inRun = false
		}
	}
	if inRun {
		runs = append(runs, byteRun{lo, 255})
	}
	return runs
}

// compileCharClass implements SPEC_FULL.md §4.2's CharClass rule ("for
// each byte b, if mask[b] xor inv then add δ(from,b) ∋ to") by fanning a
// Split chain over the class's maximal byte runs, reusing the same
// machinery as alternation. A class with no matching byte compiles to an
// unsatisfiable KindByte edge (Lo=1,Hi=0) rather than a special case.
func (c *Compiler) compileCharClass(cc parser.CharClass) (start, end StateID, err error) {
	runs := classRuns(cc)
	end, err = c.addPlaceholder()
	if err != nil {
		return 0, 0, err
	}
	if len(runs) == 0 {
		start, err = c.addByte(1, 0, end)
		return start, end, err
	}
	starts := make([]StateID, len(runs))
	for i, r := range runs {
		s, err := c.addByte(r.lo, r.hi, end)
		if err != nil {
			return 0, 0, err
		}
		starts[i] = s
	}
	start, err = c.chainSplits(starts)
	return start, end, err
}
