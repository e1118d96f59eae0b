package main

import (
	"testing"

	"github.com/fafsm/refa/dfa"
	"github.com/fafsm/refa/nfa"
	"github.com/fafsm/refa/parser"
)

func buildDFA(t *testing.T, pattern string) *dfa.DFA {
	t.Helper()
	tree, err := parser.Parse(pattern, parser.Config{})
	if err != nil {
		t.Fatalf("parse %q: %v", pattern, err)
	}
	n, err := nfa.Compile(tree, nfa.DefaultCompilerConfig())
	if err != nil {
		t.Fatalf("compile %q: %v", pattern, err)
	}
	norm, err := n.Normalize()
	if err != nil {
		t.Fatalf("normalize %q: %v", pattern, err)
	}
	d, err := dfa.FromNFA(norm, dfa.DefaultSubsetConfig())
	if err != nil {
		t.Fatalf("subset %q: %v", pattern, err)
	}
	return d
}

// TestJoinDFAsSingleIsIdentity covers main_dfa_join's cnt==1 shortcut: a
// batch of one is returned unchanged.
func TestJoinDFAsSingleIsIdentity(t *testing.T) {
	d := buildDFA(t, "/abc/")
	opts := &Options{Threads: 4}
	got, err := joinDFAs([]*dfa.DFA{d}, opts.Threads, opts)
	if err != nil {
		t.Fatalf("joinDFAs: %v", err)
	}
	if got != d {
		t.Error("joinDFAs on a single-element batch must return that element unchanged")
	}
}

// TestJoinDFAsAccepts covers the claim-and-steal reduction end to end: a
// batch of several single-pattern DFAs joined with more than one worker
// must accept every pattern the batch came from.
func TestJoinDFAsAccepts(t *testing.T) {
	patterns := []string{"/abc/", "/de/", "/f+g/", "/h|i/"}
	batch := make([]*dfa.DFA, len(patterns))
	for i, p := range patterns {
		batch[i] = buildDFA(t, p)
	}

	opts := &Options{Threads: 3}
	joined, err := joinDFAs(batch, opts.Threads, opts)
	if err != nil {
		t.Fatalf("joinDFAs: %v", err)
	}

	cases := []struct {
		in   string
		want bool
	}{
		{"abc", true},
		{"de", true},
		{"fg", true},
		{"ffffg", true},
		{"h", true},
		{"i", true},
		{"zzz", false},
	}
	for _, c := range cases {
		if got := joined.Accepts([]byte(c.in)); got != c.want {
			t.Errorf("joined.Accepts(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

// TestJoinDFAsSingleWorker covers threads=1 falling back to a purely
// sequential reduction (no peer ever has anything to steal).
func TestJoinDFAsSingleWorker(t *testing.T) {
	batch := []*dfa.DFA{buildDFA(t, "/a/"), buildDFA(t, "/b/"), buildDFA(t, "/c/")}
	opts := &Options{Threads: 1}
	joined, err := joinDFAs(batch, opts.Threads, opts)
	if err != nil {
		t.Fatalf("joinDFAs: %v", err)
	}
	for _, in := range []string{"a", "b", "c"} {
		if !joined.Accepts([]byte(in)) {
			t.Errorf("joined.Accepts(%q) = false, want true", in)
		}
	}
}
