package parser

// tokenKind enumerates the token alphabet SPEC_FULL.md §4.1 Pass 1 emits:
// BeginEnd | Meta(c) | Byte(b) | Charset(s) | CharClass(mask,inv) | MinMax(min,max).
type tokenKind uint8

const (
	tokBeginEnd tokenKind = iota
	tokMeta
	tokByte
	tokCharset
	tokCharClass
	tokMinMax
)

// token is one element of the pass-1 token stream. Only the fields
// relevant to its kind are populated; this mirrors the tagged-union
// approach SPEC_FULL.md §9 asks for (one struct, one kind tag), scaled
// down to an internal lexer detail rather than the public AST type.
type token struct {
	kind   tokenKind
	offset int
	depth  int

	b        byte      // Meta char value, literal Byte value, or Charset letter
	cc       CharClass // for tokCharClass
	min, max int       // for tokMinMax
}

// maxDepth is the nesting ceiling named in SPEC_FULL.md §4.1 ("Depth must
// satisfy: stays in (0, 240]").
const maxDepth = 240
