// Package parser implements the two-pass regex tokenizer and tree builder
// described in SPEC_FULL.md §4.1: a pattern of the form /body/flags is
// turned into a RegexTree, or a structured error carrying the offending
// source offset.
package parser

import "fmt"

// Reason enumerates the ways a pattern can fail to parse. These mirror the
// violation names used throughout SPEC_FULL.md §4.1.
type Reason uint8

const (
	// NoOpenBracket is raised when a ')' has no matching '(' (depth would
	// drop below 1).
	NoOpenBracket Reason = iota
	// NoClosedBracket is raised when an open '(' or '[' is never closed,
	// or when the pattern ends without a closing '/'.
	NoClosedBracket
	// TooDeep is raised when paren nesting exceeds the maximum depth.
	TooDeep
	// NoBegin is raised when the pattern does not start with '/'.
	NoBegin
	// NoEnd is raised when trailing bytes remain after the closing '/' and
	// its flags.
	NoEnd
	// WrongSyntax covers malformed quantifiers, bad escapes, and other
	// local syntax violations.
	WrongSyntax
	// TooShort is raised when the pattern has no body at all.
	TooShort
)

func (r Reason) String() string {
	switch r {
	case NoOpenBracket:
		return "no open bracket"
	case NoClosedBracket:
		return "no closed bracket"
	case TooDeep:
		return "nesting too deep"
	case NoBegin:
		return "pattern does not begin with /"
	case NoEnd:
		return "unexpected trailing bytes"
	case WrongSyntax:
		return "wrong syntax"
	case TooShort:
		return "pattern too short"
	default:
		return "unknown parse error"
	}
}

// SyntaxError is SPEC_FULL.md's ParseSyntax error kind: a malformed regex
// at a specific source offset.
type SyntaxError struct {
	Reason Reason
	Offset int
	Source string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("parser: %s at offset %d in %q", e.Reason, e.Offset, e.Source)
}

// DepthError is SPEC_FULL.md's ParseDepth error kind: nesting exceeded
// MaxDepth.
type DepthError struct {
	Offset int
	Depth  int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("parser: nesting depth %d exceeds maximum at offset %d", e.Depth, e.Offset)
}

// UnsupportedError is SPEC_FULL.md's ParseUnsupported error kind: an
// anchor placement (or other construct) that this engine cannot place in
// the tree.
type UnsupportedError struct {
	Offset int
	What   string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("parser: unsupported construct %q at offset %d", e.What, e.Offset)
}
