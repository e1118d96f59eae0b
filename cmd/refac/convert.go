package main

import (
	"os"

	"github.com/projectdiscovery/gologger"

	"github.com/fafsm/refa/dfa"
	"github.com/fafsm/refa/nfa"
)

// convertNFAsToDFA implements main_nfa_to_dfa: for each NFA, normalize
// (original_source's nfa_rebuild), build a DFA via subset construction
// (convert_nfa_to_dfa), then optionally minimize, exactly as main.c does
// inline in its -minimize branch of main_nfa_to_dfa. An NFA that fails
// either step is dropped from the batch with a logged reason rather than
// aborting the run.
func convertNFAsToDFA(nfas []*nfa.NFA, opts *Options) []*dfa.DFA {
	out := make([]*dfa.DFA, 0, len(nfas))
	for _, n := range nfas {
		normalized, err := n.Normalize()
		if err != nil {
			gologger.Error().Msgf("normalize %q: %v", n.Comment, err)
			continue
		}

		d, err := dfa.FromNFA(normalized, dfa.DefaultSubsetConfig())
		if err != nil {
			gologger.Error().Msgf("subset construction %q: %v", n.Comment, err)
			continue
		}

		if opts.Minimize {
			before := d.N
			minimized, err := d.Minimize()
			if err != nil {
				gologger.Error().Msgf("minimize %q: %v", n.Comment, err)
				continue
			}
			d = minimized
			if opts.Verbose {
				gologger.Verbose().Msgf("dfa minimized %d->%d", before, d.N)
			}
		}

		out = append(out, d)
	}
	return out
}

// loadDFAFiles implements main.c's FAT_DFA_FILE branch: each -input value
// is a path to a DFA image written by dfa.Save, skipping (and logging)
// any that fail to load.
func loadDFAFiles(opts *Options) []*dfa.DFA {
	out := make([]*dfa.DFA, 0, len(opts.Input))
	for _, path := range opts.Input {
		d, err := loadDFAFile(path)
		if err != nil {
			gologger.Error().Msgf("bad file %s: %v", path, err)
			continue
		}
		out = append(out, d)
	}
	return out
}

func loadDFAFile(path string) (*dfa.DFA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dfa.Load(f)
}
