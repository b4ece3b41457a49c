package panel

import (
	"context"
	"maps"
	"sync"
)

// State is the persisted panel selection of one container.
type State struct {
	Filters        map[string]string `json:"filters,omitempty"`
	SearchProperty string            `json:"searchProperty,omitempty"`
	SearchTerm     string            `json:"searchTerm,omitempty"`
	Sort           string            `json:"sort,omitempty"`
	Start          int               `json:"start,omitempty"`
	Amount         int               `json:"amount,omitempty"`
}

func newState() State {
	return State{Filters: make(map[string]string)}
}

func (s State) clone() State {
	out := s
	out.Filters = maps.Clone(s.Filters)
	if out.Filters == nil {
		out.Filters = make(map[string]string)
	}
	return out
}

// StateStore persists panel state between requests.
type StateStore interface {
	Load(ctx context.Context, container string) (State, error)
	Save(ctx context.Context, container string, state State) error
}

// MemoryStateStore is a process-local StateStore.
type MemoryStateStore struct {
	mu     sync.RWMutex
	states map[string]State
}

var _ StateStore = (*MemoryStateStore)(nil)

// NewMemoryStateStore returns an empty store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]State)}
}

// Load returns the stored state or an empty one.
func (s *MemoryStateStore) Load(_ context.Context, container string) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[container]
	if !ok {
		return newState(), nil
	}
	return state.clone(), nil
}

// Save stores a copy of state.
func (s *MemoryStateStore) Save(_ context.Context, container string, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[container] = state.clone()
	return nil
}
