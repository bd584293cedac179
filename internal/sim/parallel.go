package sim

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/san-kum/vehsim/internal/vehicle"
)

// Factory builds the simulator and initial state for ensemble member i.
// Every call must return a fresh model instance.
type Factory func(i int) (*Simulator, vehicle.State, error)

// Member is the outcome of one ensemble member. Result is nil when the
// member could not be built; Err holds the build or run error.
type Member struct {
	Result *Result
	Err    error
}

type Ensemble struct {
	factory Factory
	numRuns int
	workers int
}

func NewEnsemble(factory Factory, numRuns int) *Ensemble {
	return &Ensemble{
		factory: factory,
		numRuns: numRuns,
		workers: runtime.NumCPU(),
	}
}

// SetWorkers bounds how many members run at once.
func (e *Ensemble) SetWorkers(n int) {
	if n > 0 {
		e.workers = n
	}
}

// RunMembers executes every member and returns the outcomes in member order.
func (e *Ensemble) RunMembers(ctx context.Context, cfg Config) []Member {
	members := make([]Member, e.numRuns)
	sem := make(chan struct{}, e.workers)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			sim, x0, err := e.factory(idx)
			if err != nil {
				members[idx].Err = err
				return
			}
			members[idx].Result, members[idx].Err = sim.Run(ctx, x0, cfg)
		}(i)
	}

	wg.Wait()
	return members
}

// Run executes every member. Results are indexed like the members; a member
// that failed to build has a nil result. The returned error joins the
// member errors.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	members := e.RunMembers(ctx, cfg)
	results := make([]*Result, len(members))
	errs := make([]error, len(members))
	for i, m := range members {
		results[i], errs[i] = m.Result, m.Err
	}
	return results, errors.Join(errs...)
}
