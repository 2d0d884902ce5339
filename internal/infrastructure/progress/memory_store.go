package progress

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/football-insights/internal/domain/syncprogress"
)

// MemoryStore keeps progress in process. Saved states are copied so later
// mutations by the caller do not leak in.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]syncprogress.State
	saves  int
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]syncprogress.State), now: time.Now}
}

func (s *MemoryStore) Load(_ context.Context, job string) (syncprogress.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[job]
	if !ok {
		return syncprogress.Fresh(job, s.now()), nil
	}
	return copyState(state), nil
}

func (s *MemoryStore) Save(_ context.Context, state syncprogress.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[state.Job] = copyState(state)
	s.saves++
	return nil
}

// Saves counts Save calls.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func copyState(state syncprogress.State) syncprogress.State {
	state.ProcessedIDs = syncprogress.NewIDSet(state.ProcessedIDs.IDs()...)
	if state.Extra != nil {
		extra := make(map[string]int64, len(state.Extra))
		for k, v := range state.Extra {
			extra[k] = v
		}
		state.Extra = extra
	}
	return state
}
