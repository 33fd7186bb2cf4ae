// Package validation checks packing input before it reaches the engine. Every
// problem in a submission is reported, not just the first one.
package validation

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/multierr"

	"github.com/eugenenazirov/box-packer/internal/packing"
)

var (
	// ErrInvalidInput is wrapped by every validation failure.
	ErrInvalidInput = errors.New("invalid packing input")
	// ErrNoItems is returned when a submission has no items.
	ErrNoItems = fmt.Errorf("%w: please add at least one item to pack", ErrInvalidInput)
	// ErrNoContainerTypes is returned when a submission has no container types.
	ErrNoContainerTypes = fmt.Errorf("%w: please add at least one container type", ErrInvalidInput)
)

// Request validates a full packing submission.
func Request(items []packing.Item, types []packing.ContainerType) error {
	return multierr.Append(Items(items), ContainerTypes(types))
}

// Items validates an item list: it must be non-empty and every item needs a
// name and positive, finite dimensions and weight.
func Items(items []packing.Item) error {
	if len(items) == 0 {
		return ErrNoItems
	}

	var err error
	for i, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			err = multierr.Append(err, fmt.Errorf("%w: item #%d has no name", ErrInvalidInput, i+1))
			continue
		}
		if !allPositive(item.Length, item.Breadth, item.Height, item.Weight) {
			err = multierr.Append(err, fmt.Errorf("%w: item %q has invalid dimensions or weight", ErrInvalidInput, item.Name))
		}
	}
	return err
}

// ContainerTypes validates a catalog with the same rules as Items.
func ContainerTypes(types []packing.ContainerType) error {
	if len(types) == 0 {
		return ErrNoContainerTypes
	}

	var err error
	for i, t := range types {
		if strings.TrimSpace(t.Name) == "" {
			err = multierr.Append(err, fmt.Errorf("%w: container type #%d has no name", ErrInvalidInput, i+1))
			continue
		}
		if !allPositive(t.Length, t.Breadth, t.Height, t.WeightCapacity) {
			err = multierr.Append(err, fmt.Errorf("%w: container type %q has invalid dimensions or weight capacity", ErrInvalidInput, t.Name))
		}
	}
	return err
}

// Messages flattens a validation error into its individual messages.
func Messages(err error) []string {
	errs := multierr.Errors(err)
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, strings.TrimPrefix(e.Error(), ErrInvalidInput.Error()+": "))
	}
	return out
}

func allPositive(values ...float64) bool {
	for _, v := range values {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
