package packing

import (
	"fmt"
	"strings"
	"sync"
)

// Strategy names a packing strategy.
type Strategy string

const (
	// StrategyFirstFit sorts items by descending volume and opens the first qualifying container type.
	StrategyFirstFit Strategy = "first-fit-decreasing"
	// StrategyBestFit sorts items by descending volume and opens the qualifying type with the least waste.
	StrategyBestFit Strategy = "best-fit-decreasing"
	// StrategyAuto runs both strategies and keeps the better result.
	StrategyAuto Strategy = "auto"
)

// Strategies lists every accepted strategy.
var Strategies = []Strategy{StrategyFirstFit, StrategyBestFit, StrategyAuto}

// ParseStrategy accepts the full strategy names and the short forms ffd and bfd.
func ParseStrategy(raw string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(StrategyFirstFit), "ffd", "first-fit":
		return StrategyFirstFit, nil
	case string(StrategyBestFit), "bfd", "best-fit":
		return StrategyBestFit, nil
	case string(StrategyAuto):
		return StrategyAuto, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, raw)
	}
}

// Label returns the human-readable strategy name.
func (s Strategy) Label() string {
	switch s {
	case StrategyFirstFit:
		return "First Fit Decreasing"
	case StrategyBestFit:
		return "Best Fit Decreasing"
	case StrategyAuto:
		return "Auto"
	default:
		return string(s)
	}
}

func (s Strategy) String() string {
	return string(s)
}

// Run packs items with the given strategy. StrategyAuto runs first-fit and
// best-fit concurrently and returns the result chosen by Compare.
func (e *Engine) Run(items []Item, types []ContainerType, s Strategy) (RunResult, error) {
	if s != StrategyAuto {
		return e.Pack(items, types, s)
	}

	var (
		wg       sync.WaitGroup
		firstFit RunResult
		bestFit  RunResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		firstFit, _ = e.Pack(items, types, StrategyFirstFit)
	}()
	go func() {
		defer wg.Done()
		bestFit, _ = e.Pack(items, types, StrategyBestFit)
	}()
	wg.Wait()

	return Compare(firstFit, bestFit), nil
}

// Compare returns the result that uses fewer containers, or on a tie the one
// with higher efficiency. When both are equal the second result wins.
func Compare(a, b RunResult) RunResult {
	if a.ContainerCount != b.ContainerCount {
		if a.ContainerCount < b.ContainerCount {
			return a
		}
		return b
	}
	if a.Efficiency > b.Efficiency {
		return a
	}
	return b
}
