package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-game-service/internal/domain"
)

// LeaderboardStore persists the cross-session leaderboards in Postgres. The
// upsert adds incoming counters to the stored ones, so a ranked game merge is
// a single round trip per player per board.
type LeaderboardStore struct {
	pool *pgxpool.Pool
}

func NewLeaderboardStore(pool *pgxpool.Pool) *LeaderboardStore {
	return &LeaderboardStore{pool: pool}
}

func (s *LeaderboardStore) Merge(ctx context.Context, entries []domain.TallyEntry) error {
	for _, board := range domain.Boards() {
		for _, entry := range entries {
			_, err := s.pool.Exec(ctx, `
				INSERT INTO leaderboards (board, player_id, player_name, correct, incorrect, timeout)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (board, player_id) DO UPDATE SET
					player_name = EXCLUDED.player_name,
					correct   = leaderboards.correct + EXCLUDED.correct,
					incorrect = leaderboards.incorrect + EXCLUDED.incorrect,
					timeout   = leaderboards.timeout + EXCLUDED.timeout`,
				string(board), entry.PlayerID, entry.Name, entry.Correct, entry.Incorrect, entry.Timeout)
			if err != nil {
				return fmt.Errorf("merge leaderboard %s: %w", board, err)
			}
		}
	}
	return nil
}

func (s *LeaderboardStore) Top(ctx context.Context, board domain.Board, limit int) ([]domain.TallyEntry, error) {
	if !domain.ValidBoard(board) {
		return nil, domain.ErrUnknownBoard
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx, `
		SELECT player_id, player_name, correct, incorrect, timeout
		FROM leaderboards
		WHERE board=$1
		ORDER BY correct DESC, player_id
		LIMIT $2`, string(board), limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard %s: %w", board, err)
	}
	defer rows.Close()

	var top []domain.TallyEntry
	for rows.Next() {
		var entry domain.TallyEntry
		if err := rows.Scan(&entry.PlayerID, &entry.Name, &entry.Correct, &entry.Incorrect, &entry.Timeout); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		top = append(top, entry)
	}
	return top, rows.Err()
}
