package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eugenenazirov/box-packer/internal/packing"
)

type funcPacker func([]packing.Item, []packing.ContainerType, packing.Strategy) (packing.RunResult, error)

func (f funcPacker) Run(items []packing.Item, types []packing.ContainerType, s packing.Strategy) (packing.RunResult, error) {
	return f(items, types, s)
}

func TestRunWithDeadlineReturnsResult(t *testing.T) {
	packer := funcPacker(func(_ []packing.Item, _ []packing.ContainerType, s packing.Strategy) (packing.RunResult, error) {
		return packing.RunResult{Strategy: s, ContainerCount: 3}, nil
	})

	result, err := runWithDeadline(context.Background(), time.Second, packer, nil, nil, packing.StrategyBestFit, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ContainerCount != 3 || result.Strategy != packing.StrategyBestFit {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestRunWithDeadlinePropagatesErrors(t *testing.T) {
	packer := funcPacker(func([]packing.Item, []packing.ContainerType, packing.Strategy) (packing.RunResult, error) {
		return packing.RunResult{}, packing.ErrUnknownStrategy
	})

	_, err := runWithDeadline(context.Background(), time.Second, packer, nil, nil, "bogus", nil)
	if !errors.Is(err, packing.ErrUnknownStrategy) {
		t.Fatalf("expected ErrUnknownStrategy, got %v", err)
	}
}

func TestRunWithDeadlineTimesOut(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	packer := funcPacker(func([]packing.Item, []packing.ContainerType, packing.Strategy) (packing.RunResult, error) {
		<-release
		return packing.RunResult{}, nil
	})

	_, err := runWithDeadline(context.Background(), 10*time.Millisecond, packer, nil, nil, packing.StrategyAuto, nil)
	if !errors.Is(err, ErrPackTimeout) {
		t.Fatalf("expected ErrPackTimeout, got %v", err)
	}
}

func TestRunWithDeadlineHonoursCancellation(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	packer := funcPacker(func([]packing.Item, []packing.ContainerType, packing.Strategy) (packing.RunResult, error) {
		<-release
		return packing.RunResult{}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runWithDeadline(ctx, time.Second, packer, nil, nil, packing.StrategyAuto, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunWithDeadlineRecoversPanics(t *testing.T) {
	packer := funcPacker(func([]packing.Item, []packing.ContainerType, packing.Strategy) (packing.RunResult, error) {
		panic("boom")
	})

	_, err := runWithDeadline(context.Background(), time.Second, packer, nil, nil, packing.StrategyAuto, nil)
	if err == nil {
		t.Fatalf("expected panic to surface as an error")
	}
}

func TestRunWithDeadlineCallsDoneAfterTimedOutRun(t *testing.T) {
	release := make(chan struct{})
	packer := funcPacker(func([]packing.Item, []packing.ContainerType, packing.Strategy) (packing.RunResult, error) {
		<-release
		return packing.RunResult{}, nil
	})

	done := make(chan struct{})
	_, err := runWithDeadline(context.Background(), 10*time.Millisecond, packer, nil, nil, packing.StrategyAuto, func() { close(done) })
	if !errors.Is(err, ErrPackTimeout) {
		t.Fatalf("expected ErrPackTimeout, got %v", err)
	}

	select {
	case <-done:
		t.Fatalf("done called before the engine returned")
	default:
	}

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("done not called after the engine returned")
	}
}

func TestRunSlotsTryAcquire(t *testing.T) {
	slots := newRunSlots(2)
	if !slots.tryAcquire() || !slots.tryAcquire() {
		t.Fatalf("expected two free slots")
	}
	if slots.tryAcquire() {
		t.Fatalf("expected slots to be exhausted")
	}
	slots.release()
	if !slots.tryAcquire() {
		t.Fatalf("expected a released slot to be reusable")
	}
}
