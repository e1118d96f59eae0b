package parser

// Kind discriminates a Node's payload, the direct mapping of SPEC_FULL.md
// §9's tagged-sum-type design note: one struct, one kind tag, accessor
// methods gated on kind (mirrors the teacher's nfa.State/nfa.StateKind
// shape).
type Kind uint8

const (
	KindChar Kind = iota
	KindCharClass
	KindConcat
	KindUnion
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindChar:
		return "Char"
	case KindCharClass:
		return "CharClass"
	case KindConcat:
		return "Concat"
	case KindUnion:
		return "Union"
	case KindEmpty:
		return "Empty"
	default:
		return "Unknown"
	}
}

// Node is a RegexTree node (SPEC_FULL.md §3): every node carries a
// (min,max) repetition pair (max=-1 meaning unbounded) plus a
// kind-dependent payload.
type Node struct {
	kind     Kind
	min, max int

	b        byte
	cc       CharClass
	children []*Node
}

// Kind returns the node's discriminant.
func (n *Node) Kind() Kind { return n.kind }

// Repeat returns the node's (min, max) repetition pair.
func (n *Node) Repeat() (min, max int) { return n.min, n.max }

// Byte returns the literal byte for a KindChar node. Zero-valued for
// other kinds.
func (n *Node) Byte() byte { return n.b }

// Class returns the character class for a KindCharClass node. Zero-valued
// for other kinds.
func (n *Node) Class() CharClass { return n.cc }

// Children returns the ordered child list for KindConcat/KindUnion nodes.
// Nil for other kinds.
func (n *Node) Children() []*Node { return n.children }

func newChar(b byte, min, max int) *Node {
	return &Node{kind: KindChar, b: b, min: min, max: max}
}

func newCharClass(cc CharClass, min, max int) *Node {
	return &Node{kind: KindCharClass, cc: cc, min: min, max: max}
}

func newConcat(children []*Node, min, max int) *Node {
	return &Node{kind: KindConcat, children: children, min: min, max: max}
}

func newUnion(children []*Node, min, max int) *Node {
	return &Node{kind: KindUnion, children: children, min: min, max: max}
}

func newEmpty(min, max int) *Node {
	return &Node{kind: KindEmpty, min: min, max: max}
}

// Tree is a parsed pattern: its Root node plus the flags that governed
// its construction and the original pattern text (propagated as the
// comment onto the NFA/DFA per SPEC_FULL.md §4.2).
type Tree struct {
	Root    *Node
	Flags   Flags
	Comment string
}

// Config threads parser behavior explicitly instead of relying on the
// global parse-error table SPEC_FULL.md §9 calls out in the original
// source. There are currently no tunables beyond the fixed maxDepth, but
// the struct exists so callers have one place to extend (and so this
// package never reaches for a package-level var for configuration).
type Config struct{}

// Parse implements SPEC_FULL.md §4.1/§4.2's Pass 1 + Pass 2: it turns a
// "/body/flags" pattern into a RegexTree, or a structured error carrying
// the offending source offset.
func Parse(pattern string, _ Config) (*Tree, error) {
	lr, err := tokenize(pattern)
	if err != nil {
		return nil, err
	}

	p := &p2{toks: lr.tokens, flags: lr.flags, src: pattern}

	// Consume BeginEnd.
	p.next()

	hasCaret := false
	if t := p.peek(); t.kind == tokMeta && t.b == '^' {
		hasCaret = true
		p.next()
	}

	root, err := p.parseAlt()
	if err != nil {
		return nil, err
	}

	hasDollar := false
	if t := p.peek(); t.kind == tokMeta && t.b == '$' {
		hasDollar = true
		p.next()
	}

	end := p.next()
	if end.kind != tokBeginEnd {
		return nil, &SyntaxError{Reason: NoEnd, Offset: end.offset, Source: pattern}
	}

	root = wrapAnchors(root, hasCaret, hasDollar, lr.flags)

	return &Tree{Root: root, Flags: lr.flags, Comment: pattern}, nil
}

// wrapAnchors implements SPEC_FULL.md §4.1's anchor-wrapping rule,
// resolved against original_source/lib/parser.c's actual branch structure
// (see DESIGN.md): the leading/trailing ".*" bridge is always added when
// the corresponding anchor is absent; when the anchor IS present but the
// 'm' flag is active, the true anchor is additionally softened into a
// pseudo-anchor so embedded newlines also qualify.
func wrapAnchors(root *Node, hasCaret, hasDollar bool, flags Flags) *Node {
	anyStar := newCharClass(anyByteClass(), 0, -1)

	switch {
	case !hasCaret:
		root = newConcat([]*Node{anyStar, root}, 1, 1)
	case flags.Multiline:
		pseudo := newUnion([]*Node{
			newEmpty(1, 1),
			newConcat([]*Node{anyStar, newChar('\n', 1, 1)}, 1, 1),
		}, 1, 1)
		root = newConcat([]*Node{pseudo, root}, 1, 1)
	}

	anyStarEnd := newCharClass(anyByteClass(), 0, -1)
	switch {
	case !hasDollar:
		root = newConcat([]*Node{root, anyStarEnd}, 1, 1)
	case flags.Multiline:
		pseudo := newUnion([]*Node{
			newConcat([]*Node{newChar('\n', 1, 1), anyStarEnd}, 1, 1),
			newEmpty(1, 1),
		}, 1, 1)
		root = newConcat([]*Node{root, pseudo}, 1, 1)
	}

	return root
}

// p2 is the Pass 2 recursive-descent builder. It keeps ancestry on the Go
// call stack (SPEC_FULL.md §9: "no parent pointer required, no cyclic
// ownership") instead of the original's per-node parent pointer and
// walk-back on ')'/'|'.
type p2 struct {
	toks  []token
	pos   int
	flags Flags
	src   string
}

func (p *p2) peek() token { return p.toks[p.pos] }

func (p *p2) next() token {
	t := p.toks[p.pos]
	p.pos++
	return t
}

// parseAlt parses a sequence of Concats separated by '|' at the current
// nesting level, producing a Union only when there is more than one
// alternative.
func (p *p2) parseAlt() (*Node, error) {
	first, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	children := []*Node{first}
	for {
		t := p.peek()
		if t.kind == tokMeta && t.b == '|' {
			p.next()
			n, err := p.parseConcat()
			if err != nil {
				return nil, err
			}
			children = append(children, n)
			continue
		}
		break
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return newUnion(children, 1, 1), nil
}

// parseConcat parses atoms until a '|', ')', or the end of the token
// stream, per SPEC_FULL.md §4.1: "'|' closes the current Concat... ')'"
func (p *p2) parseConcat() (*Node, error) {
	var children []*Node
	for {
		t := p.peek()
		if t.kind == tokBeginEnd {
			break
		}
		if t.kind == tokMeta && (t.b == '|' || t.b == ')') {
			break
		}
		// A '$' directly before the closing BeginEnd is the trailing
		// anchor, left for Parse to consume.
		if t.kind == tokMeta && t.b == '$' && p.toks[p.pos+1].kind == tokBeginEnd {
			break
		}
		n, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	switch len(children) {
	case 0:
		return newEmpty(1, 1), nil
	case 1:
		return children[0], nil
	default:
		return newConcat(children, 1, 1), nil
	}
}

// parseAtom parses a single atom (group, '.', literal byte, charset
// escape, or bracket class) followed by an optional quantifier.
func (p *p2) parseAtom() (*Node, error) {
	t := p.next()
	var node *Node

	switch {
	case t.kind == tokMeta && t.b == '(':
		child, err := p.parseAlt()
		if err != nil {
			return nil, err
		}
		closing := p.next()
		if !(closing.kind == tokMeta && closing.b == ')') {
			return nil, &SyntaxError{Reason: WrongSyntax, Offset: t.offset, Source: p.src}
		}
		node = child

	case t.kind == tokMeta && t.b == '.':
		node = newCharClass(dotClass(p.flags.DotAll), 1, 1)

	case t.kind == tokMeta && (t.b == '^' || t.b == '$'):
		return nil, &UnsupportedError{Offset: t.offset, What: "anchor not at pattern boundary"}

	case t.kind == tokByte:
		if p.flags.CaseInsensitive && isAlpha(t.b) {
			node = newCharClass(charClassFromByte(t.b, true), 1, 1)
		} else {
			node = newChar(t.b, 1, 1)
		}

	case t.kind == tokCharset:
		cc, _ := charsetClass(t.b)
		if p.flags.CaseInsensitive {
			cc = foldCase(cc)
		}
		node = newCharClass(cc, 1, 1)

	case t.kind == tokCharClass:
		cc := t.cc
		if p.flags.CaseInsensitive {
			cc = foldCase(cc)
		}
		node = newCharClass(cc, 1, 1)

	default:
		return nil, &SyntaxError{Reason: WrongSyntax, Offset: t.offset, Source: p.src}
	}

	if p.peek().kind == tokMinMax {
		q := p.next()
		if q.min == 0 && q.max == 0 {
			// Empty repetition {0,0} = Empty node (SPEC_FULL.md §8 boundary case).
			return newEmpty(1, 1), nil
		}
		node.min, node.max = q.min, q.max
	}

	return node, nil
}
