package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/san-kum/vehsim/internal/experiment"
)

// ErrNoCandidate is returned when no grid point produced the metric.
var ErrNoCandidate = errors.New("optim: no successful grid point")

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	// Maximize selects the largest metric value instead of the smallest.
	Maximize bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	return lo.Reduce(g.ranges, func(n int, r []float64, _ int) int { return n * len(r) }, 1)
}

// Builder makes the experiment for one grid point.
type Builder func(params map[string]float64) (*experiment.Experiment, error)

// Search runs one experiment per grid point and returns the point with the
// best value of metricName. Points whose build or run fails are skipped.
func (g *GridSearch) Search(ctx context.Context, build Builder, metricName string) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("%d parameter names for %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	if g.Maximize {
		best = math.Inf(-1)
	}
	var bestParams map[string]float64

	for i := 0; i < g.Size(); i++ {
		if err := ctx.Err(); err != nil {
			return bestParams, best, err
		}
		point := g.point(i)
		val, ok := evaluate(ctx, build, point, metricName)
		if ok && g.better(val, best) {
			best, bestParams = val, point
		}
	}

	if bestParams == nil {
		return nil, best, ErrNoCandidate
	}
	return bestParams, best, nil
}

// point decodes grid index i, with the last parameter varying fastest.
func (g *GridSearch) point(i int) map[string]float64 {
	p := make(map[string]float64, len(g.paramNames))
	for d := len(g.ranges) - 1; d >= 0; d-- {
		n := len(g.ranges[d])
		p[g.paramNames[d]] = g.ranges[d][i%n]
		i /= n
	}
	return p
}

func evaluate(ctx context.Context, build Builder, point map[string]float64, metricName string) (float64, bool) {
	exp, err := build(point)
	if err != nil {
		return 0, false
	}
	res, err := exp.Run(ctx)
	if err != nil {
		return 0, false
	}
	val, ok := res.Metrics[metricName]
	return val, ok
}

func (g *GridSearch) better(val, best float64) bool {
	if g.Maximize {
		return val > best
	}
	return val < best
}

// Linspace returns n evenly spaced values over [start, stop].
func Linspace(start, stop float64, n int) []float64 {
	if n <= 1 {
		return []float64{start}
	}
	step := (stop - start) / float64(n-1)
	return lo.Times(n, func(i int) float64 { return start + float64(i)*step })
}
