package attractor

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"toroid/pkg/core"
)

// DefaultTolerance is the absolute torque difference under which two
// observations count as the same attractor.
const DefaultTolerance = 1e-8

// Entry is one distinct attractor in a catalog.
type Entry struct {
	State  *core.Lattice
	Torque float64
	Hits   int
}

// Catalog accumulates distinct attractors and their hit counts. Entries are
// never removed or merged; the first observation of a torque claims it.
type Catalog struct {
	mu        sync.Mutex
	tolerance float64
	entries   []*Entry
	total     int
}

// NewCatalog creates an empty catalog. A negative tolerance selects
// DefaultTolerance.
func NewCatalog(tolerance float64) *Catalog {
	if tolerance < 0 {
		tolerance = DefaultTolerance
	}
	return &Catalog{tolerance: tolerance}
}

// Observe canonicalizes l and records it. Empty lattices are not attractor
// shapes and are skipped; the return value reports whether l was counted.
func (c *Catalog) Observe(l *core.Lattice) bool {
	if l == nil || l.Population() == 0 {
		return false
	}
	c.merge(Canonicalize(l))
	return true
}

// ObserveAll records states in ascending population order so that small
// attractors claim their torque first. Canonicalization runs concurrently;
// merging into the catalog stays serial and ordered.
func (c *Catalog) ObserveAll(ctx context.Context, states []*core.Lattice, workers int) error {
	type item struct {
		state *core.Lattice
		pop   int
	}
	items := make([]item, 0, len(states))
	for _, s := range states {
		if s == nil {
			continue
		}
		if pop := s.Population(); pop > 0 {
			items = append(items, item{state: s, pop: pop})
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].pop < items[j].pop })

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	canon := make([]Canonical, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			canon[i] = Canonicalize(items[i].state)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, cn := range canon {
		c.merge(cn)
	}
	return nil
}

func (c *Catalog) merge(cn Canonical) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.total++
	best, bestDiff := -1, math.Inf(1)
	for i, e := range c.entries {
		if d := math.Abs(e.Torque - cn.Torque); d < bestDiff {
			best, bestDiff = i, d
		}
	}
	if best >= 0 && bestDiff <= c.tolerance {
		c.entries[best].Hits++
		return
	}
	c.entries = append(c.entries, &Entry{State: cn.State, Torque: cn.Torque, Hits: 1})
}

// Len returns the number of distinct attractors.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Total returns the number of counted observations.
func (c *Catalog) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Entries returns a copy of the entries in catalog order.
func (c *Catalog) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = *e
	}
	return out
}

// Frequency returns the relative frequency of entry i.
func (c *Catalog) Frequency(i int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.total == 0 || i < 0 || i >= len(c.entries) {
		return 0
	}
	return float64(c.entries[i].Hits) / float64(c.total)
}

// SortByPopulation reorders entries by the alive-cell count of their
// recentered state, keeping catalog order among equals.
func (c *Catalog) SortByPopulation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	sort.SliceStable(c.entries, func(i, j int) bool {
		return c.entries[i].State.Population() < c.entries[j].State.Population()
	})
}

// MostLikely returns the entry with the most hits and its frequency.
func (c *Catalog) MostLikely() (Entry, float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) == 0 {
		return Entry{}, 0, false
	}
	best := 0
	for i, e := range c.entries {
		if e.Hits > c.entries[best].Hits {
			best = i
		}
	}
	return *c.entries[best], float64(c.entries[best].Hits) / float64(c.total), true
}
