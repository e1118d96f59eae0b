package main

import (
	"sync"

	"github.com/projectdiscovery/gologger"

	"github.com/fafsm/refa/dfa"
)

// The lane states below track, per worker lane, whether that lane has
// exhausted the shared work list and is offering its own accumulator up
// to be stolen.
// Mirrors original_source/main.c's `t_states[i]` array: 0 = still
// working, 1 = exhausted and stealable, 2 = stolen.
const (
	laneWorking = 0
	laneIdle    = 1
	laneStolen  = 2
)

// joinDFAs implements main_dfa_join / thread_to_join's claim-and-steal
// reduction: t_cnt lanes, each initialized with one DFA from the batch's
// first t_cnt entries, repeatedly union the next unclaimed DFA (indices
// t_cnt..cnt-1) into their own accumulator. Once the shared list is
// drained, an idle lane looks for a peer lane that has gone idle and
// steals its accumulator, unioning it in turn, until one lane remains.
// The pthread_mutex_t guarding `joined`/`t_states` becomes a single
// sync.Mutex guarding the same two pieces of shared state.
func joinDFAs(batch []*dfa.DFA, threads int, opts *Options) (*dfa.DFA, error) {
	if len(batch) == 1 {
		return batch[0], nil
	}

	tCnt := threads
	if len(batch)/2 < tCnt {
		tCnt = len(batch) / 2
	}
	if tCnt < 1 {
		tCnt = 1
	}

	lanes := make([]*dfa.DFA, tCnt)
	copy(lanes, batch[:tCnt])
	states := make([]int, tCnt)

	var mu sync.Mutex
	joined := 0
	var firstErr error

	worker := func(id int) {
		for {
			mu.Lock()
			var victim *dfa.DFA
			var stolenFrom = -1

			switch {
			case joined+tCnt < len(batch):
				victim = batch[tCnt+joined]
				joined++
			case joined == len(batch)-1:
				if id != 0 {
					lanes[0] = lanes[id]
				}
			default:
				for i := 0; i < tCnt; i++ {
					if states[i] == laneIdle {
						victim = lanes[i]
						states[i] = laneStolen
						stolenFrom = i
						joined++
						break
					}
				}
				if victim == nil {
					states[id] = laneIdle
				}
			}
			mu.Unlock()

			if victim == nil {
				return
			}

			before := lanes[id].N
			merged, err := dfa.Union(lanes[id], victim)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			if opts.Minimize {
				if m, err := merged.Minimize(); err == nil {
					merged = m
				}
			}
			merged.Compress()
			lanes[id] = merged

			if opts.Verbose {
				gologger.Verbose().Msgf("[lane:%d] joined %d->%d (stole lane %d)", id, before, merged.N, stolenFrom)
			}
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < tCnt; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			worker(id)
		}(i)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return lanes[0], nil
}
