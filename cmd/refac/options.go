package main

import (
	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/levels"
)

// inputKind mirrors original_source/main.c's FAT_REGEXP/FAT_REGEXP_FILE/
// FAT_DFA_FILE constants (FAT_NFA_FILE has no CLI entry point here: this
// module never persists a bare NFA, only a compiled DFA, per SPEC_FULL.md
// §6.2 naming only the DFA format).
type inputKind int

const (
	inputRegexp inputKind = iota
	inputRegexpFile
	inputDFAFile
)

// Options is the parsed form of SPEC_FULL.md §6.1's flag table, grounded
// on projectdiscovery-alterx/internal/runner.Options: a single flat
// struct, no package-level mutable state.
type Options struct {
	Input      goflags.StringSlice
	InputType  string
	Output     string
	OutputType string
	Threads    int
	Verbose    bool
	Join       bool
	Minimize   bool

	inputKind inputKind
}

// ParseFlags builds a goflags.FlagSet matching SPEC_FULL.md §6.1's table,
// grounded on runner.ParseFlags's CreateGroup-organized style.
func ParseFlags() *Options {
	opts := &Options{}
	flagSet := goflags.NewFlagSet()
	flagSet.SetDescription("Compile regular expressions into byte-exact DFA images.")

	flagSet.CreateGroup("input", "Input",
		flagSet.StringSliceVarP(&opts.Input, "input", "i", nil,
			"regexp, regexp file, or dfa file, per -input-type (comma-separated, repeatable)", goflags.CommaSeparatedStringSliceOptions),
		flagSet.StringVar(&opts.InputType, "input-type", "regexp",
			"input kind: regexp, regexp-file, dfa-file"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.StringVarP(&opts.Output, "output", "o", "", "output DFA file path"),
		flagSet.StringVar(&opts.OutputType, "output-type", "dfa-file", "output kind (only dfa-file is supported)"),
	)

	flagSet.CreateGroup("reduce", "Reduction",
		flagSet.BoolVarP(&opts.Join, "join", "j", false, "join the whole batch into one DFA via pairwise union"),
		flagSet.BoolVarP(&opts.Minimize, "minimize", "m", false, "minimize each DFA after conversion"),
		flagSet.IntVarP(&opts.Threads, "threads", "t", 1, "worker count for -join reduction"),
	)

	flagSet.CreateGroup("debug", "Debug",
		flagSet.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("could not read flags: %s\n", err)
	}

	if opts.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}

	switch opts.InputType {
	case "regexp":
		opts.inputKind = inputRegexp
	case "regexp-file":
		opts.inputKind = inputRegexpFile
	case "dfa-file":
		opts.inputKind = inputDFAFile
	default:
		gologger.Fatal().Msgf("unknown -input-type: %s", opts.InputType)
	}

	if opts.OutputType != "dfa-file" {
		gologger.Fatal().Msgf("unknown -output-type: %s (only dfa-file is supported)", opts.OutputType)
	}

	if opts.Threads < 1 {
		opts.Threads = 1
	}

	return opts
}
