package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"trivia-game-service/internal/app"
	"trivia-game-service/internal/domain"
)

// LeaderboardHandler serves read-only snapshots of the persistent boards.
type LeaderboardHandler struct {
	service *app.GameService
}

func NewLeaderboardHandler(service *app.GameService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

func (h *LeaderboardHandler) ServeTop(w http.ResponseWriter, r *http.Request) {
	board := domain.Board(r.URL.Query().Get("board"))
	if board == "" {
		board = domain.BoardAllTime
	}
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.service.Leaderboard(r.Context(), board, limit)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrUnknownBoard) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"board":   board,
		"entries": entries,
	})
}
