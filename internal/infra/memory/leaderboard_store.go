package memory

import (
	"context"
	"sort"
	"sync"

	"trivia-game-service/internal/domain"
)

// LeaderboardStore keeps the persistent leaderboards in process memory.
// Suitable for tests and single-node demos; production deployments use the
// redis or postgres store.
type LeaderboardStore struct {
	mu     sync.RWMutex
	boards map[domain.Board]map[string]*domain.TallyEntry
}

func NewLeaderboardStore() *LeaderboardStore {
	boards := make(map[domain.Board]map[string]*domain.TallyEntry)
	for _, board := range domain.Boards() {
		boards[board] = make(map[string]*domain.TallyEntry)
	}
	return &LeaderboardStore{boards: boards}
}

// Merge adds each entry's counters into every board. Addition, not overwrite:
// a player's lifetime totals accumulate across games.
func (s *LeaderboardStore) Merge(_ context.Context, entries []domain.TallyEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, board := range domain.Boards() {
		for _, entry := range entries {
			current, ok := s.boards[board][entry.PlayerID]
			if !ok {
				current = &domain.TallyEntry{PlayerID: entry.PlayerID}
				s.boards[board][entry.PlayerID] = current
			}
			current.Name = entry.Name
			current.Correct += entry.Correct
			current.Incorrect += entry.Incorrect
			current.Timeout += entry.Timeout
		}
	}
	return nil
}

// Top returns up to limit entries ordered by correct count descending, then
// player id for determinism.
func (s *LeaderboardStore) Top(_ context.Context, board domain.Board, limit int) ([]domain.TallyEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries, ok := s.boards[board]
	if !ok {
		return nil, domain.ErrUnknownBoard
	}
	top := make([]domain.TallyEntry, 0, len(entries))
	for _, entry := range entries {
		top = append(top, *entry)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Correct != top[j].Correct {
			return top[i].Correct > top[j].Correct
		}
		return top[i].PlayerID < top[j].PlayerID
	})
	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}
