package storage

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"

	"github.com/eugenenazirov/box-packer/internal/packing"
	"github.com/eugenenazirov/box-packer/internal/sample"
	"github.com/eugenenazirov/box-packer/internal/validation"
)

const maxContainerTypes = 20

var (
	// ErrInvalidContainerTypes indicates the provided catalog violates validation rules.
	ErrInvalidContainerTypes = errors.New("container types must contain between 1 and 20 valid entries")
)

// Storage provides access to the container type catalog used for packing.
type Storage interface {
	GetContainerTypes() ([]packing.ContainerType, error)
	SetContainerTypes(types []packing.ContainerType) error
}

// MemoryStorage keeps the catalog in-memory and guards access with a RWMutex.
// Catalog order is significant: first-fit opens the first qualifying type.
type MemoryStorage struct {
	mu             sync.RWMutex
	containerTypes []packing.ContainerType
}

// NewMemoryStorage initialises storage with a copy of the default catalog.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		containerTypes: DefaultContainerTypes(),
	}
}

// DefaultContainerTypes returns a copy of the default catalog.
func DefaultContainerTypes() []packing.ContainerType {
	return sample.ContainerTypes()
}

// GetContainerTypes returns a defensive copy of the current catalog.
func (s *MemoryStorage) GetContainerTypes() ([]packing.ContainerType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.containerTypes), nil
}

// SetContainerTypes validates, normalises, and stores the provided catalog.
func (s *MemoryStorage) SetContainerTypes(types []packing.ContainerType) error {
	normalized, err := normalizeContainerTypes(types)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.containerTypes = normalized
	s.mu.Unlock()

	return nil
}

// normalizeContainerTypes drops exact duplicates while keeping catalog order.
func normalizeContainerTypes(types []packing.ContainerType) ([]packing.ContainerType, error) {
	if err := validation.ContainerTypes(types); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContainerTypes, err)
	}

	unique := lo.Uniq(types)
	if len(unique) > maxContainerTypes {
		return nil, ErrInvalidContainerTypes
	}
	return unique, nil
}
