package packing

import (
	"cmp"
	"fmt"
	"slices"
)

// Engine runs the packing heuristics. An Engine holds only configuration and
// is safe for concurrent use.
type Engine struct {
	gridStep float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithGridStep sets the spacing of candidate positions. Non-positive values
// are ignored.
func WithGridStep(step float64) Option {
	return func(e *Engine) {
		if step > 0 {
			e.gridStep = step
		}
	}
}

// NewEngine creates an Engine with a unit grid unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{gridStep: DefaultGridStep}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GridStep returns the configured candidate spacing.
func (e *Engine) GridStep() float64 {
	return e.gridStep
}

// Pack runs a single decreasing strategy, first-fit or best-fit. Use Run for
// StrategyAuto.
func (e *Engine) Pack(items []Item, types []ContainerType, s Strategy) (RunResult, error) {
	if s != StrategyFirstFit && s != StrategyBestFit {
		return RunResult{}, fmt.Errorf("pack with %q: %w", s, ErrUnknownStrategy)
	}

	result := e.pack(items, types, selectorFor(s))
	result.Strategy = s
	result.Label = s.Label()
	return result, nil
}

func (e *Engine) pack(items []Item, types []ContainerType, selector Selector) RunResult {
	containers := []*Container{}
	unplaced := []Item{}

	for _, item := range sortByVolume(items) {
		if e.placeInOpen(item, containers) {
			continue
		}

		t, ok := selector.Select(item, types)
		if !ok {
			unplaced = append(unplaced, item)
			continue
		}

		c := newContainer(len(containers)+1, t)
		placement, ok := BestPlacement(item, c, e.gridStep)
		if !ok {
			// A qualifying type always has room for the item at the origin.
			unplaced = append(unplaced, item)
			continue
		}
		c.place(item, placement)
		containers = append(containers, c)
	}

	return RunResult{
		Containers:     containers,
		Unplaced:       unplaced,
		ContainerCount: len(containers),
		Efficiency:     Efficiency(containers),
	}
}

// placeInOpen adds item to the first open container, in opening order, that accepts it.
func (e *Engine) placeInOpen(item Item, containers []*Container) bool {
	for _, c := range containers {
		if !c.CanAccept(item, e.gridStep) {
			continue
		}
		placement, ok := BestPlacement(item, c, e.gridStep)
		if !ok {
			continue
		}
		c.place(item, placement)
		return true
	}
	return false
}

// sortByVolume returns a copy of items ordered by descending volume. Items of
// equal volume keep their input order.
func sortByVolume(items []Item) []Item {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b Item) int {
		return cmp.Compare(b.Volume(), a.Volume())
	})
	return sorted
}
