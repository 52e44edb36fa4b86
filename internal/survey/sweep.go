package survey

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Scenario is one point of a sweep grid.
type Scenario struct {
	Width            int
	Height           int
	AliveProbability float64
}

func (s Scenario) String() string {
	return fmt.Sprintf("%dx%d p=%.2f", s.Width, s.Height, s.AliveProbability)
}

// Grid is the cartesian product of sizes and alive probabilities.
func Grid(sizes [][2]int, probabilities []float64) []Scenario {
	var out []Scenario
	for _, sz := range sizes {
		for _, p := range probabilities {
			out = append(out, Scenario{Width: sz[0], Height: sz[1], AliveProbability: p})
		}
	}
	return out
}

// ScenarioResult summarises one sweep point.
type ScenarioResult struct {
	Scenario Scenario
	Result   *Result
	Err      error
}

// Distinct is the number of distinct attractors found.
func (r ScenarioResult) Distinct() int {
	if r.Result == nil {
		return 0
	}
	return r.Result.Catalog.Len()
}

// Sweep surveys every scenario with a fixed pool of workers, each running one
// scenario at a time. Results are ordered by distinct attractor count, most
// first, then by scenario order.
func Sweep(ctx context.Context, base Params, scenarios []Scenario, workers int) []ScenarioResult {
	if workers <= 0 {
		workers = 1
	}
	perScenario := base
	perScenario.Batch.Workers = max(base.Batch.Workers/workers, 1)

	jobs := make(chan Scenario)
	results := make(chan ScenarioResult)
	order := make(map[Scenario]int, len(scenarios))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sc := range jobs {
				p := perScenario
				p.Width, p.Height, p.AliveProbability = sc.Width, sc.Height, sc.AliveProbability
				res, err := Run(ctx, p)
				results <- ScenarioResult{Scenario: sc, Result: res, Err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(jobs)
		for _, sc := range scenarios {
			select {
			case jobs <- sc:
			case <-ctx.Done():
				return
			}
		}
	}()

	for i, sc := range scenarios {
		if _, ok := order[sc]; !ok {
			order[sc] = i
		}
	}

	var all []ScenarioResult
	for res := range results {
		all = append(all, res)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Distinct() != all[j].Distinct() {
			return all[i].Distinct() > all[j].Distinct()
		}
		return order[all[i].Scenario] < order[all[j].Scenario]
	})
	return all
}
