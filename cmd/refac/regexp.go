package main

import (
	"bufio"
	"os"

	"github.com/projectdiscovery/gologger"

	"github.com/fafsm/refa/nfa"
	"github.com/fafsm/refa/parser"
)

// loadRegexpBatch implements original_source/main.c's FAT_REGEXP /
// FAT_REGEXP_FILE branch of main(): each -input value is either a literal
// pattern (input-type regexp) or a path to a newline-separated pattern
// file (input-type regexp-file), read line by line exactly as
// thread_to_join's caller does with fgets.
func loadRegexpBatch(opts *Options) []string {
	if opts.inputKind == inputRegexp {
		return opts.Input
	}

	var patterns []string
	for _, path := range opts.Input {
		f, err := os.Open(path)
		if err != nil {
			gologger.Error().Msgf("bad file %s: %v", path, err)
			continue
		}
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := sc.Text()
			if line == "" {
				continue
			}
			patterns = append(patterns, line)
		}
		if err := sc.Err(); err != nil {
			gologger.Error().Msgf("reading %s: %v", path, err)
		}
		f.Close()
	}
	return patterns
}

// compileRegexpsToNFA implements main_regexp_to_nfa: each pattern is
// parsed and compiled independently; one that fails to parse is skipped
// rather than aborting the whole batch (original_source/main.c's
// `if (tree == NULL) continue;`).
func compileRegexpsToNFA(patterns []string, opts *Options) []*nfa.NFA {
	out := make([]*nfa.NFA, 0, len(patterns))
	for _, pattern := range patterns {
		tree, err := parser.Parse(pattern, parser.Config{})
		if err != nil {
			if opts.Verbose {
				gologger.Verbose().Msgf("skipping %q: parse error: %v", pattern, err)
			}
			continue
		}
		n, err := nfa.Compile(tree, nfa.DefaultCompilerConfig())
		if err != nil {
			if opts.Verbose {
				gologger.Verbose().Msgf("skipping %q: compile error: %v", pattern, err)
			}
			continue
		}
		n.Comment = pattern
		out = append(out, n)
	}
	return out
}
