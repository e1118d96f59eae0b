// Command refac ("regex-to-fa compiler") drives the parser/nfa/dfa
// pipeline as a batch CLI, SPEC_FULL.md §6.1's port of
// original_source/main.c's dispatch over FAT_REGEXP / FAT_REGEXP_FILE /
// FAT_DFA_FILE input, with an optional parallel -join reduction
// (join.go) and per-conversion -minimize.
package main

import (
	"os"

	"github.com/projectdiscovery/gologger"

	"github.com/fafsm/refa/dfa"
)

func main() {
	opts := ParseFlags()

	if len(opts.Input) == 0 {
		gologger.Fatal().Msgf("no -input given")
	}

	var batch []*dfa.DFA

	switch opts.inputKind {
	case inputRegexp, inputRegexpFile:
		patterns := loadRegexpBatch(opts)
		if len(patterns) == 0 {
			gologger.Fatal().Msgf("no patterns loaded")
		}
		nfas := compileRegexpsToNFA(patterns, opts)
		if len(nfas) == 0 {
			gologger.Fatal().Msgf("no patterns compiled")
		}
		batch = convertNFAsToDFA(nfas, opts)
	case inputDFAFile:
		batch = loadDFAFiles(opts)
	}

	if len(batch) == 0 {
		gologger.Fatal().Msgf("no dfa produced")
	}

	if opts.Verbose {
		for _, d := range batch {
			gologger.Verbose().Msgf("[dfa] state cnt: %d, bps: %d", d.N, d.Trans.BPS())
		}
	}

	var result *dfa.DFA
	if len(batch) > 1 && opts.Join {
		joined, err := joinDFAs(batch, opts.Threads, opts)
		if err != nil {
			gologger.Fatal().Msgf("join failed: %v", err)
		}
		result = joined
		if opts.Verbose {
			gologger.Verbose().Msgf("joined dfa %d", result.N)
		}
	} else if len(batch) == 1 {
		result = batch[0]
	}

	if result == nil || opts.Output == "" {
		return
	}

	out, err := os.OpenFile(opts.Output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		gologger.Fatal().Msgf("could not open output %s: %v", opts.Output, err)
	}
	defer out.Close()

	if err := result.Save(out, false); err != nil {
		gologger.Fatal().Msgf("could not write output: %v", err)
	}
}
