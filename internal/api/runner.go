package api

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/eugenenazirov/box-packer/internal/packing"
)

var (
	// ErrPackTimeout is returned when a packing run does not finish before its deadline.
	ErrPackTimeout = errors.New("packing run timed out")
	// ErrRunsBusy is returned when every run slot is taken.
	ErrRunsBusy = errors.New("too many packing runs in progress")
)

// Packer runs a packing strategy. *packing.Engine satisfies it.
type Packer interface {
	Run(items []packing.Item, types []packing.ContainerType, s packing.Strategy) (packing.RunResult, error)
}

// runSlots bounds how many engine runs execute at once. A slot is held until
// the engine returns, including runs whose request already timed out.
type runSlots chan struct{}

func newRunSlots(n int) runSlots {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return make(runSlots, n)
}

// tryAcquire takes a slot without waiting.
func (s runSlots) tryAcquire() bool {
	select {
	case s <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s runSlots) release() {
	<-s
}

type runOutcome struct {
	result packing.RunResult
	err    error
}

// runWithDeadline runs the packer in its own goroutine and waits for either
// the result or the deadline. On timeout the goroutine keeps running until
// the engine returns; its result is dropped. done, when set, is called once
// the engine has returned.
func runWithDeadline(
	ctx context.Context,
	timeout time.Duration,
	packer Packer,
	items []packing.Item,
	types []packing.ContainerType,
	strategy packing.Strategy,
	done func(),
) (packing.RunResult, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ch := make(chan runOutcome, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				ch <- runOutcome{err: fmt.Errorf("packing run panicked: %v", rec)}
			}
			if done != nil {
				done()
			}
		}()
		result, err := packer.Run(items, types, strategy)
		ch <- runOutcome{result: result, err: err}
	}()

	select {
	case out := <-ch:
		return out.result, out.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return packing.RunResult{}, fmt.Errorf("%w after %s", ErrPackTimeout, timeout)
		}
		return packing.RunResult{}, ctx.Err()
	}
}
