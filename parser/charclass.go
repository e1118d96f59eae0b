package parser

// CharClass is a 256-bit membership mask plus an inversion flag, exactly
// the payload SPEC_FULL.md §3 assigns to a Node of kind CharClass. Effective
// membership of byte b is Mask.test(b) XOR Inverse — this lets every
// complemented escape (\D, \H, \S, \V, \W) be represented as the same mask
// as its positive counterpart with Inverse flipped, rather than as a
// separately computed complement bitset.
type CharClass struct {
	Mask    [32]byte
	Inverse bool
}

func (c *CharClass) set(b byte) {
	c.Mask[b>>3] |= 1 << (b & 7)
}

func (c *CharClass) isSet(b byte) bool {
	return c.Mask[b>>3]&(1<<(b&7)) != 0
}

// Test reports whether byte b is an effective member of the class.
func (c *CharClass) Test(b byte) bool {
	return c.isSet(b) != c.Inverse
}

// setRange sets bits [lo, hi] inclusive.
func (c *CharClass) setRange(lo, hi byte) {
	for b := int(lo); b <= int(hi); b++ {
		c.set(byte(b))
	}
}

// newByteClass returns a non-inverted class containing exactly the given
// bytes.
func newByteClass(bytes ...byte) CharClass {
	var c CharClass
	for _, b := range bytes {
		c.set(b)
	}
	return c
}

// newRangeClass returns a non-inverted class containing [lo, hi].
func newRangeClass(lo, hi byte) CharClass {
	var c CharClass
	c.setRange(lo, hi)
	return c
}

// anyByteClass returns the class containing every byte 0..255 (used as the
// dotall "any byte" class and as the unanchored .* bridging class).
func anyByteClass() CharClass {
	var c CharClass
	for i := range c.Mask {
		c.Mask[i] = 0xFF
	}
	return c
}

// dotClass returns the class for the body's '.' token: any byte except
// '\n' (0x0A), unless the 's' flag is active, in which case it is every
// byte (SPEC_FULL.md §4.1 and §8 boundary case ". under s matches \n").
func dotClass(dotAll bool) CharClass {
	if dotAll {
		return anyByteClass()
	}
	c := anyByteClass()
	c.Mask[0x0A>>3] &^= 1 << (0x0A & 7)
	return c
}

// Bit-exact escape classes, reproduced verbatim from SPEC_FULL.md's
// GLOSSARY. These intentionally diverge from
// original_source/lib/parser_inner.c's set_charset_bits_re/_cc tables
// (which lack \h/\v entirely and omit 0x0B from \s) — the GLOSSARY is
// authoritative here, see DESIGN.md.
func digitClass() CharClass   { return newRangeClass(0x30, 0x39) }
func hspaceClass() CharClass  { return newByteClass(0x09, 0x20, 0xA0) }
func spaceClass() CharClass {
	return newByteClass(0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x20)
}
func vspaceClass() CharClass {
	return newByteClass(0x0A, 0x0B, 0x0C, 0x0D, 0x85)
}
func wordClass() CharClass {
	c := newRangeClass(0x30, 0x39)
	c.setRange(0x41, 0x5A)
	c.set(0x5F)
	c.setRange(0x61, 0x7A)
	return c
}

// charsetClass resolves one of the body escapes d/D/h/H/s/S/v/V/w/W to its
// CharClass, using the Inverse-flip representation of the complement
// escapes described above.
func charsetClass(c byte) (CharClass, bool) {
	switch c {
	case 'd':
		return digitClass(), true
	case 'D':
		cc := digitClass()
		cc.Inverse = true
		return cc, true
	case 'h':
		return hspaceClass(), true
	case 'H':
		cc := hspaceClass()
		cc.Inverse = true
		return cc, true
	case 's':
		return spaceClass(), true
	case 'S':
		cc := spaceClass()
		cc.Inverse = true
		return cc, true
	case 'v':
		return vspaceClass(), true
	case 'V':
		cc := vspaceClass()
		cc.Inverse = true
		return cc, true
	case 'w':
		return wordClass(), true
	case 'W':
		cc := wordClass()
		cc.Inverse = true
		return cc, true
	default:
		return CharClass{}, false
	}
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// foldByte returns the case counterpart of an ASCII letter, or b unchanged.
func foldByte(b byte) byte {
	switch {
	case b >= 'A' && b <= 'Z':
		return b + 32
	case b >= 'a' && b <= 'z':
		return b - 32
	default:
		return b
	}
}

// foldCase returns a copy of c where every ASCII letter present also
// implies its case counterpart (SPEC_FULL.md §4.1: "the class is folded
// so that every ASCII letter present implies its case counterpart").
// Folding is applied to the underlying mask, independent of Inverse, so
// complemented classes fold correctly too (folding \W must still exclude
// both cases of any letter \w already excludes the counterpart of).
func foldCase(c CharClass) CharClass {
	out := c
	for b := 0; b < 256; b++ {
		if isAlpha(byte(b)) && c.isSet(byte(b)) {
			out.set(foldByte(byte(b)))
		}
	}
	return out
}

// charClassFromByte builds the CharClass for a literal byte, expanding to
// {lower, upper} under case-insensitivity if the byte is alphabetic
// (SPEC_FULL.md §4.1: "Literal byte under flag i expands to a CharClass of
// {lower, upper} if alphabetic").
func charClassFromByte(b byte, caseInsensitive bool) CharClass {
	if caseInsensitive && isAlpha(b) {
		return newByteClass(b, foldByte(b))
	}
	return newByteClass(b)
}
