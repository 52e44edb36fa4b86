package convergence

import "toroid/pkg/core"

// Populations returns the alive-cell count of every state.
func Populations(history []*core.Lattice) []int {
	pops := make([]int, len(history))
	for i, s := range history {
		pops[i] = s.Population()
	}
	return pops
}

// ClassifyHistory classifies a finished run using only its trailing window.
func ClassifyHistory(history []*core.Lattice, window int, opts Options) (Record, error) {
	states := history
	if window > 0 && len(states) > window {
		states = states[len(states)-window:]
	}
	res := Classify(Populations(states), opts)
	ind, err := Indicator(res, states)
	if err != nil {
		return Record{}, err
	}
	return Record{Type: res.Type, Constant: res.Constant, Step: len(history) - 1, Indicator: ind}, nil
}

// Replay walks a recorded history as if it were being simulated and returns
// the first convergence the classifier reports. ok is false when the run
// never converged.
func Replay(history []*core.Lattice, window int, opts Options) (rec Record, ok bool, err error) {
	pops := Populations(history)
	for i := range history {
		start := 0
		if window > 0 {
			start = max(i+1-window, 0)
		}
		res := Classify(pops[start:i+1], opts)
		if res.Type == None {
			continue
		}
		ind, err := Indicator(res, history[start:i+1])
		if err != nil {
			return Record{}, false, err
		}
		return Record{Type: res.Type, Constant: res.Constant, Step: i, Indicator: ind}, true, nil
	}
	return Record{}, false, nil
}
