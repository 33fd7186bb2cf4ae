package storage

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eugenenazirov/box-packer/internal/packing"
)

const defaultRunCapacity = 50

// ErrRunNotFound is returned when a run ID is unknown or has been evicted.
var ErrRunNotFound = errors.New("run not found")

// Run is a completed packing run kept for later retrieval and export.
type Run struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"createdAt"`
	Duration  time.Duration     `json:"-"`
	Items     []packing.Item    `json:"-"`
	Result    packing.RunResult `json:"result"`
}

// RunStore keeps the most recent runs in memory, evicting the oldest first.
type RunStore struct {
	mu       sync.RWMutex
	capacity int
	order    []string
	runs     map[string]Run
	clock    func() time.Time
}

// NewRunStore creates a store holding at most capacity runs.
func NewRunStore(capacity int) *RunStore {
	if capacity <= 0 {
		capacity = defaultRunCapacity
	}
	return &RunStore{
		capacity: capacity,
		runs:     make(map[string]Run, capacity),
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Save stores run under a fresh ID and returns the stored copy.
func (s *RunStore) Save(run Run) Run {
	run.ID = uuid.NewString()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.clock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = run
	s.order = append(s.order, run.ID)
	for len(s.order) > s.capacity {
		delete(s.runs, s.order[0])
		s.order = s.order[1:]
	}
	return run
}

// Get returns the run with the given ID.
func (s *RunStore) Get(id string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return Run{}, ErrRunNotFound
	}
	return run, nil
}

// Len returns the number of stored runs.
func (s *RunStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
