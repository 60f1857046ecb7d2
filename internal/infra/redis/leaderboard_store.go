package redis

import (
	"context"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"trivia-game-service/internal/domain"
)

// LeaderboardStore keeps the persistent leaderboards in Redis hashes, one
// hash per board and counter. HINCRBY gives the additive merge for free and
// stays correct when several instances finish ranked games concurrently.
type LeaderboardStore struct {
	client *redis.Client
}

func NewLeaderboardStore(client *redis.Client) *LeaderboardStore {
	return &LeaderboardStore{client: client}
}

func (s *LeaderboardStore) Merge(ctx context.Context, entries []domain.TallyEntry) error {
	pipe := s.client.Pipeline()
	for _, board := range domain.Boards() {
		for _, entry := range entries {
			if entry.Correct > 0 {
				pipe.HIncrBy(ctx, s.counterKey(board, "correct"), entry.PlayerID, int64(entry.Correct))
			}
			if entry.Incorrect > 0 {
				pipe.HIncrBy(ctx, s.counterKey(board, "incorrect"), entry.PlayerID, int64(entry.Incorrect))
			}
			if entry.Timeout > 0 {
				pipe.HIncrBy(ctx, s.counterKey(board, "timeout"), entry.PlayerID, int64(entry.Timeout))
			}
			pipe.HSet(ctx, s.namesKey(board), entry.PlayerID, entry.Name)
		}
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *LeaderboardStore) Top(ctx context.Context, board domain.Board, limit int) ([]domain.TallyEntry, error) {
	if !domain.ValidBoard(board) {
		return nil, domain.ErrUnknownBoard
	}

	correct, err := s.client.HGetAll(ctx, s.counterKey(board, "correct")).Result()
	if err != nil {
		return nil, err
	}
	incorrect, _ := s.client.HGetAll(ctx, s.counterKey(board, "incorrect")).Result()
	timeout, _ := s.client.HGetAll(ctx, s.counterKey(board, "timeout")).Result()
	names, _ := s.client.HGetAll(ctx, s.namesKey(board)).Result()

	ids := make(map[string]struct{}, len(correct))
	for id := range correct {
		ids[id] = struct{}{}
	}
	for id := range incorrect {
		ids[id] = struct{}{}
	}
	for id := range timeout {
		ids[id] = struct{}{}
	}

	top := make([]domain.TallyEntry, 0, len(ids))
	for id := range ids {
		top = append(top, domain.TallyEntry{
			PlayerID:  id,
			Name:      names[id],
			Correct:   atoi(correct[id]),
			Incorrect: atoi(incorrect[id]),
			Timeout:   atoi(timeout[id]),
		})
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

func (s *LeaderboardStore) counterKey(board domain.Board, counter string) string {
	return "trivia:lb:" + string(board) + ":" + counter
}

func (s *LeaderboardStore) namesKey(board domain.Board) string {
	return "trivia:lb:" + string(board) + ":names"
}

func atoi(raw string) int {
	n, _ := strconv.Atoi(raw)
	return n
}
