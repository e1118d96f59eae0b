package parser

// Flags holds the trailing /flags of a pattern. Unknown flag bytes are
// silently ignored per SPEC_FULL.md §6.
type Flags struct {
	DotAll          bool // 's'
	Multiline       bool // 'm'
	CaseInsensitive bool // 'i'
}

func parseFlags(s string) Flags {
	var f Flags
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 's':
			f.DotAll = true
		case 'm':
			f.Multiline = true
		case 'i':
			f.CaseInsensitive = true
		}
	}
	return f
}

// lexResult is the output of Pass 1.
type lexResult struct {
	tokens []token
	flags  Flags
	source string
}

// tokenize runs Pass 1 over a full pattern of the form "/body/flags".
func tokenize(pattern string) (*lexResult, error) {
	if len(pattern) == 0 {
		return nil, &SyntaxError{Reason: TooShort, Offset: 0, Source: pattern}
	}
	if pattern[0] != '/' {
		return nil, &SyntaxError{Reason: NoBegin, Offset: 0, Source: pattern}
	}

	lx := &lexer{src: pattern}
	lx.push(token{kind: tokBeginEnd, offset: 0, depth: 0})
	lx.depth = 1
	lx.i = 1

	if err := lx.scanBody(); err != nil {
		return nil, err
	}

	// lx.i now sits just past the closing '/'.
	flags := parseFlags(pattern[lx.i:])
	lx.push(token{kind: tokBeginEnd, offset: len(pattern), depth: 0})

	return &lexResult{tokens: lx.toks, flags: flags, source: pattern}, nil
}

type lexer struct {
	src       string
	i         int
	depth     int
	toks      []token
	lastKind  tokenKind
	lastMeta  byte
	sawCaret  bool
	sawDollar bool
}

func (lx *lexer) push(t token) {
	lx.toks = append(lx.toks, t)
	lx.lastKind = t.kind
	if t.kind == tokMeta {
		lx.lastMeta = t.b
	} else {
		lx.lastMeta = 0
	}
}

// quantifierAllowedHere implements SPEC_FULL.md §4.1's quantifier-binding
// rule: a quantifier may not follow BeginEnd, '(', '|', or another
// quantifier.
func (lx *lexer) quantifierAllowedHere() bool {
	switch lx.lastKind {
	case tokBeginEnd, tokMinMax:
		return false
	case tokMeta:
		return lx.lastMeta != '(' && lx.lastMeta != '|'
	default:
		return true
	}
}

func (lx *lexer) err(r Reason) error {
	return &SyntaxError{Reason: r, Offset: lx.i, Source: lx.src}
}

func (lx *lexer) scanBody() error {
	s := lx.src
	for lx.i < len(s) {
		c := s[lx.i]
		off := lx.i

		switch c {
		case '/':
			// Closing delimiter: only valid once every '(' has matched.
			lx.i++
			if lx.depth != 1 {
				return &SyntaxError{Reason: NoClosedBracket, Offset: off, Source: s}
			}
			return nil

		case '(':
			lx.depth++
			if lx.depth > maxDepth {
				return &DepthError{Offset: off, Depth: lx.depth}
			}
			lx.push(token{kind: tokMeta, offset: off, depth: lx.depth, b: '('})
			lx.i++

		case ')':
			lx.depth--
			if lx.depth < 1 {
				return &SyntaxError{Reason: NoOpenBracket, Offset: off, Source: s}
			}
			lx.push(token{kind: tokMeta, offset: off, depth: lx.depth, b: ')'})
			lx.i++

		case '|':
			lx.push(token{kind: tokMeta, offset: off, depth: lx.depth, b: '|'})
			lx.i++

		case '.':
			lx.push(token{kind: tokMeta, offset: off, depth: lx.depth, b: '.'})
			lx.i++

		case '^':
			if lx.sawCaret {
				return &UnsupportedError{Offset: off, What: "duplicate ^ anchor"}
			}
			lx.sawCaret = true
			lx.push(token{kind: tokMeta, offset: off, depth: lx.depth, b: '^'})
			lx.i++

		case '$':
			if lx.sawDollar {
				return &UnsupportedError{Offset: off, What: "duplicate $ anchor"}
			}
			lx.sawDollar = true
			lx.push(token{kind: tokMeta, offset: off, depth: lx.depth, b: '$'})
			lx.i++

		case '*':
			if !lx.quantifierAllowedHere() {
				return &SyntaxError{Reason: WrongSyntax, Offset: off, Source: s}
			}
			lx.push(token{kind: tokMinMax, offset: off, depth: lx.depth, min: 0, max: -1})
			lx.i++
			lx.consumeLazyMarker()

		case '+':
			if !lx.quantifierAllowedHere() {
				return &SyntaxError{Reason: WrongSyntax, Offset: off, Source: s}
			}
			lx.push(token{kind: tokMinMax, offset: off, depth: lx.depth, min: 1, max: -1})
			lx.i++
			lx.consumeLazyMarker()

		case '?':
			if !lx.quantifierAllowedHere() {
				return &SyntaxError{Reason: WrongSyntax, Offset: off, Source: s}
			}
			lx.push(token{kind: tokMinMax, offset: off, depth: lx.depth, min: 0, max: 1})
			lx.i++
			lx.consumeLazyMarker()

		case '{':
			if !lx.quantifierAllowedHere() {
				return &SyntaxError{Reason: WrongSyntax, Offset: off, Source: s}
			}
			min, max, err := lx.scanMinMax()
			if err != nil {
				return err
			}
			lx.push(token{kind: tokMinMax, offset: off, depth: lx.depth, min: min, max: max})
			lx.consumeLazyMarker()

		case '[':
			cc, err := lx.scanCharClass()
			if err != nil {
				return err
			}
			lx.push(token{kind: tokCharClass, offset: off, depth: lx.depth, cc: cc})

		case '\\':
			if err := lx.scanBodyEscape(); err != nil {
				return err
			}

		default:
			lx.push(token{kind: tokByte, offset: off, depth: lx.depth, b: c})
			lx.i++
		}
	}

	return &SyntaxError{Reason: NoClosedBracket, Offset: lx.i, Source: s}
}

// consumeLazyMarker swallows a non-greedy '?' after a quantifier. Per
// SPEC_FULL.md §4.1 this is accepted but produces no behavioral change.
func (lx *lexer) consumeLazyMarker() {
	if lx.i < len(lx.src) && lx.src[lx.i] == '?' {
		lx.i++
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isOctDigit(b byte) bool { return b >= '0' && b <= '7' }
func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexVal(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	default:
		return int(b-'A') + 10
	}
}

// scanMinMax parses "{m}", "{m,}", or "{m,n}" with the cursor positioned
// at '{'.
func (lx *lexer) scanMinMax() (int, int, error) {
	s := lx.src
	i := lx.i + 1
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == start {
		return 0, 0, &SyntaxError{Reason: WrongSyntax, Offset: lx.i, Source: s}
	}
	min := atoi(s[start:i])

	if i < len(s) && s[i] == '}' {
		lx.i = i + 1
		return min, min, nil
	}
	if i >= len(s) || s[i] != ',' {
		return 0, 0, &SyntaxError{Reason: WrongSyntax, Offset: lx.i, Source: s}
	}
	i++ // ','
	start2 := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == start2 {
		if i >= len(s) || s[i] != '}' {
			return 0, 0, &SyntaxError{Reason: WrongSyntax, Offset: lx.i, Source: s}
		}
		lx.i = i + 1
		return min, -1, nil
	}
	max := atoi(s[start2:i])
	if i >= len(s) || s[i] != '}' {
		return 0, 0, &SyntaxError{Reason: WrongSyntax, Offset: lx.i, Source: s}
	}
	if min > max {
		return 0, 0, &SyntaxError{Reason: WrongSyntax, Offset: lx.i, Source: s}
	}
	lx.i = i + 1
	return min, max, nil
}

func atoi(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}

// scanBodyEscape handles a backslash escape in the regex body (outside a
// character class), advancing past it and pushing the resulting token.
func (lx *lexer) scanBodyEscape() error {
	s := lx.src
	off := lx.i
	if lx.i+1 >= len(s) {
		return &SyntaxError{Reason: WrongSyntax, Offset: off, Source: s}
	}
	c := s[lx.i+1]

	switch c {
	case 'a':
		lx.push(token{kind: tokByte, offset: off, depth: lx.depth, b: 0x07})
		lx.i += 2
	case 'e':
		lx.push(token{kind: tokByte, offset: off, depth: lx.depth, b: 0x1B})
		lx.i += 2
	case 'f':
		lx.push(token{kind: tokByte, offset: off, depth: lx.depth, b: 0x0C})
		lx.i += 2
	case 'n':
		lx.push(token{kind: tokByte, offset: off, depth: lx.depth, b: 0x0A})
		lx.i += 2
	case 'r':
		lx.push(token{kind: tokByte, offset: off, depth: lx.depth, b: 0x0D})
		lx.i += 2
	case 't':
		lx.push(token{kind: tokByte, offset: off, depth: lx.depth, b: 0x09})
		lx.i += 2
	case '{', '}', '[', ']', '(', ')', '^', '$', '.', '|', '*', '+', '?', '\\', '\'', '%', '=', '/', '#':
		lx.push(token{kind: tokByte, offset: off, depth: lx.depth, b: c})
		lx.i += 2
	case 'x':
		if lx.i+3 >= len(s) || !isHexDigit(s[lx.i+2]) || !isHexDigit(s[lx.i+3]) {
			return &SyntaxError{Reason: WrongSyntax, Offset: off, Source: s}
		}
		v := byte(hexVal(s[lx.i+2])<<4 | hexVal(s[lx.i+3]))
		lx.push(token{kind: tokByte, offset: off, depth: lx.depth, b: v})
		lx.i += 4
	case '0', '1':
		if lx.i+3 >= len(s) || !isOctDigit(s[lx.i+2]) || !isOctDigit(s[lx.i+3]) {
			return &SyntaxError{Reason: WrongSyntax, Offset: off, Source: s}
		}
		v := (int(c-'0') << 6) | (int(s[lx.i+2]-'0') << 3) | int(s[lx.i+3]-'0')
		lx.push(token{kind: tokByte, offset: off, depth: lx.depth, b: byte(v)})
		lx.i += 4
	case 'd', 'D', 'h', 'H', 's', 'S', 'v', 'V', 'w', 'W':
		lx.push(token{kind: tokCharset, offset: off, depth: lx.depth, b: c})
		lx.i += 2
	default:
		return &SyntaxError{Reason: WrongSyntax, Offset: off, Source: s}
	}
	return nil
}

// scanCharClass parses a bracket expression "[...]" with the cursor
// positioned at '['. Escape rules inside are a subset of the body's (no
// anchors, no quantifiers) per SPEC_FULL.md §4.1.
func (lx *lexer) scanCharClass() (CharClass, error) {
	s := lx.src
	start := lx.i
	i := lx.i + 1
	var cc CharClass

	if i < len(s) && s[i] == '^' {
		cc.Inverse = true
		i++
	}

	first := true
	for {
		if i >= len(s) {
			return CharClass{}, &SyntaxError{Reason: NoClosedBracket, Offset: start, Source: s}
		}
		c := s[i]

		if c == ']' && !first {
			lx.i = i + 1
			return cc, nil
		}
		first = false

		var lo byte
		var isEscMask bool
		var escMask [32]byte

		if c == '\\' {
			if i+1 >= len(s) {
				return CharClass{}, &SyntaxError{Reason: WrongSyntax, Offset: i, Source: s}
			}
			e := s[i+1]
			switch e {
			case ']', 'a', 'b', 'e', 'f', 'n', 'r', 't', '/', '&', '.', '\\', '-', '^', '$':
				lo = escapeLiteral(e)
				i += 2
			case 'x':
				if i+3 >= len(s) || !isHexDigit(s[i+2]) || !isHexDigit(s[i+3]) {
					return CharClass{}, &SyntaxError{Reason: WrongSyntax, Offset: i, Source: s}
				}
				lo = byte(hexVal(s[i+2])<<4 | hexVal(s[i+3]))
				i += 4
			case '0', '1':
				if i+3 >= len(s) || !isOctDigit(s[i+2]) || !isOctDigit(s[i+3]) {
					return CharClass{}, &SyntaxError{Reason: WrongSyntax, Offset: i, Source: s}
				}
				lo = byte((int(e-'0') << 6) | (int(s[i+2]-'0') << 3) | int(s[i+3]-'0'))
				i += 4
			case 'd', 'D', 'h', 'H', 's', 'S', 'v', 'V', 'w', 'W':
				sub, _ := charsetClass(e)
				escMask = effectiveBits(sub)
				isEscMask = true
				i += 2
			default:
				return CharClass{}, &SyntaxError{Reason: WrongSyntax, Offset: i, Source: s}
			}
		} else {
			lo = c
			i++
		}

		if isEscMask {
			for k := range cc.Mask {
				cc.Mask[k] |= escMask[k]
			}
			continue
		}

		// Range? a '-' is literal if it is the trailing byte before ']'
		// or cannot form lo <= hi.
		if i < len(s) && s[i] == '-' && i+1 < len(s) && s[i+1] != ']' {
			j := i + 1
			var hi byte
			if s[j] == '\\' {
				if j+1 >= len(s) {
					return CharClass{}, &SyntaxError{Reason: WrongSyntax, Offset: j, Source: s}
				}
				e := s[j+1]
				switch e {
				case ']', 'a', 'b', 'e', 'f', 'n', 'r', 't', '/', '&', '.', '\\', '-', '^', '$':
					hi = escapeLiteral(e)
					j += 2
				case 'x':
					if j+3 >= len(s) || !isHexDigit(s[j+2]) || !isHexDigit(s[j+3]) {
						return CharClass{}, &SyntaxError{Reason: WrongSyntax, Offset: j, Source: s}
					}
					hi = byte(hexVal(s[j+2])<<4 | hexVal(s[j+3]))
					j += 4
				default:
					return CharClass{}, &SyntaxError{Reason: WrongSyntax, Offset: j, Source: s}
				}
			} else {
				hi = s[j]
				j++
			}
			if hi >= lo {
				cc.setRange(lo, hi)
				i = j
				continue
			}
			// a > b: '-' is literal, lo stands alone, fall through.
		}

		cc.set(lo)
	}
}

// escapeLiteral maps a charclass-context escape letter to its literal
// byte value.
func escapeLiteral(e byte) byte {
	switch e {
	case 'a':
		return 0x07
	case 'b':
		return 0x08
	case 'e':
		return 0x1B
	case 'f':
		return 0x0C
	case 'n':
		return 0x0A
	case 'r':
		return 0x0D
	case 't':
		return 0x09
	default:
		return e // ']', '/', '&', '.', '\\', '-', '^', '$' stand for themselves
	}
}

// effectiveBits materializes a CharClass's effective membership as a
// plain (non-inverted) 256-bit mask, so it can be OR'd into another mask
// under construction (used when composing escapes inside "[...]").
func effectiveBits(c CharClass) [32]byte {
	if !c.Inverse {
		return c.Mask
	}
	var out [32]byte
	for i := range out {
		out[i] = ^c.Mask[i]
	}
	return out
}
