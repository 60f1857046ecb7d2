package memory

import (
	"context"
	"testing"

	"trivia-game-service/internal/domain"
)

func TestLeaderboardStoreMergeIsAdditive(t *testing.T) {
	store := NewLeaderboardStore()
	ctx := context.Background()

	first := []domain.TallyEntry{
		{PlayerID: "u1", Name: "Alice", Correct: 3, Incorrect: 1},
		{PlayerID: "u2", Name: "Bob", Correct: 1, Timeout: 2},
	}
	second := []domain.TallyEntry{
		{PlayerID: "u1", Name: "Alice", Correct: 2},
	}
	if err := store.Merge(ctx, first); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if err := store.Merge(ctx, second); err != nil {
		t.Fatalf("merge: %v", err)
	}

	for _, board := range domain.Boards() {
		top, err := store.Top(ctx, board, 10)
		if err != nil {
			t.Fatalf("top %s: %v", board, err)
		}
		if len(top) != 2 {
			t.Fatalf("board %s has %d entries", board, len(top))
		}
		if top[0].PlayerID != "u1" || top[0].Correct != 5 || top[0].Incorrect != 1 {
			t.Fatalf("board %s: expected accumulated totals, got %+v", board, top[0])
		}
		if top[1].PlayerID != "u2" || top[1].Timeout != 2 {
			t.Fatalf("board %s: unexpected second entry %+v", board, top[1])
		}
	}
}

func TestLeaderboardStoreTopOrderingAndLimit(t *testing.T) {
	store := NewLeaderboardStore()
	ctx := context.Background()

	entries := []domain.TallyEntry{
		{PlayerID: "c", Name: "C", Correct: 2},
		{PlayerID: "a", Name: "A", Correct: 2},
		{PlayerID: "b", Name: "B", Correct: 7},
	}
	if err := store.Merge(ctx, entries); err != nil {
		t.Fatalf("merge: %v", err)
	}

	top, err := store.Top(ctx, domain.BoardWeekly, 2)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("limit not applied, got %d entries", len(top))
	}
	// Ties break on player id so rankings stay stable between reads.
	if top[0].PlayerID != "b" || top[1].PlayerID != "a" {
		t.Fatalf("unexpected ordering %v, %v", top[0].PlayerID, top[1].PlayerID)
	}

	if _, err := store.Top(ctx, domain.Board("yearly"), 10); err != domain.ErrUnknownBoard {
		t.Fatalf("expected unknown-board error, got %v", err)
	}
}
