package nfa

import (
	"testing"

	"github.com/fafsm/refa/parser"
)

// simulate walks bs through the normalized NFA n starting from the set
// {n.Start}, returning whether the run ends in an accepting state.
func simulate(n *NFA, bs []byte) bool {
	cur := map[StateID]bool{n.Start: true}
	for _, b := range bs {
		next := map[StateID]bool{}
		for q := range cur {
			for _, t := range n.States[q].Targets(b) {
				next[t] = true
			}
		}
		cur = next
		if len(cur) == 0 {
			return false
		}
	}
	for q := range cur {
		if n.States[q].Final {
			return true
		}
	}
	return false
}

func compileAndNormalize(t *testing.T, pattern string) *NFA {
	t.Helper()
	tree, err := parser.Parse(pattern, parser.Config{})
	if err != nil {
		t.Fatalf("parse %q: %v", pattern, err)
	}
	raw, err := Compile(tree, DefaultCompilerConfig())
	if err != nil {
		t.Fatalf("compile %q: %v", pattern, err)
	}
	n, err := raw.Normalize()
	if err != nil {
		t.Fatalf("normalize %q: %v", pattern, err)
	}
	return n
}

func TestCompileLiteral(t *testing.T) {
	n := compileAndNormalize(t, "/abc/")
	cases := []struct {
		in   string
		want bool
	}{
		{"abc", true},
		{"xabcx", true},
		{"ab", false},
		{"abd", false},
	}
	for _, c := range cases {
		if got := simulate(n, []byte(c.in)); got != c.want {
			t.Errorf("abc on %q: got %v want %v", c.in, got, c.want)
		}
	}
}

func TestCompileCaseInsensitive(t *testing.T) {
	n := compileAndNormalize(t, "/abc/i")
	for _, s := range []string{"abc", "ABC", "AbC", "aBc"} {
		if !simulate(n, []byte(s)) {
			t.Errorf("abc/i on %q: want match", s)
		}
	}
	if simulate(n, []byte("abd")) {
		t.Errorf("abc/i on abd: want no match")
	}
}

func TestCompileHexEscape(t *testing.T) {
	n := compileAndNormalize(t, `/a\x01\xab\xCd\xeF/`)
	if !simulate(n, []byte{0x61, 0x01, 0xAB, 0xCD, 0xEF}) {
		t.Error("expected FINAL on 61 01 AB CD EF")
	}
}

func TestCompileDotAll(t *testing.T) {
	without := compileAndNormalize(t, "/a.b/")
	if simulate(without, []byte("a\nb")) {
		t.Error("'.' without s flag must not match \\n")
	}
	with := compileAndNormalize(t, "/a.b/s")
	if !simulate(with, []byte("a\nb")) {
		t.Error("'.' with s flag must match \\n")
	}
}

func TestCompileBoundedRepeat(t *testing.T) {
	n := compileAndNormalize(t, "/a.{2}b/")
	if !simulate(n, []byte("axxb")) {
		t.Error("a.{2}b should match axxb")
	}
	if simulate(n, []byte("axb")) {
		t.Error("a.{2}b should not match axb")
	}
	if simulate(n, []byte("axxxb")) {
		t.Error("a.{2}b should not match axxxb")
	}
}

func TestCompileUnboundedRepeat(t *testing.T) {
	n := compileAndNormalize(t, "/ab+c/")
	for _, s := range []string{"abc", "abbc", "abbbbbc"} {
		if !simulate(n, []byte(s)) {
			t.Errorf("ab+c should match %q", s)
		}
	}
	if simulate(n, []byte("ac")) {
		t.Error("ab+c should not match ac")
	}
}

func TestCompileAlternation(t *testing.T) {
	n := compileAndNormalize(t, "/cat|dog/")
	if !simulate(n, []byte("cat")) || !simulate(n, []byte("dog")) {
		t.Error("cat|dog should match both alternatives")
	}
	if simulate(n, []byte("cow")) {
		t.Error("cat|dog should not match cow")
	}
}

func TestNormalizeNoEpsilon(t *testing.T) {
	n := compileAndNormalize(t, "/a(b|c)*d/")
	for _, s := range n.States {
		if s.Kind != KindConsumer {
			t.Fatalf("post-normalize state not KindConsumer: %+v", s)
		}
	}
}

func TestNormalizeReachability(t *testing.T) {
	n := compileAndNormalize(t, "/abc/")
	reached := dfsOrder(n.States, n.Start)
	if len(reached) != len(n.States) {
		t.Errorf("normalize left %d unreachable states (reachable=%d, total=%d)",
			len(n.States)-len(reached), len(reached), len(n.States))
	}
}

func TestEmptyRepetitionIsEmptyNode(t *testing.T) {
	n := compileAndNormalize(t, "/ab{0,0}c/")
	if !simulate(n, []byte("ac")) {
		t.Error("a(b{0,0})c should behave as ac")
	}
	if simulate(n, []byte("abc")) {
		t.Error("a(b{0,0})c should not match abc")
	}
}
