package domain

import "errors"

var (
	// ErrSetNotFound indicates the named question set does not exist.
	ErrSetNotFound = errors.New("question set not found")
	// ErrNoSets is returned when a random set is requested but none exist.
	ErrNoSets = errors.New("no question sets available")
	// ErrEmptySet is returned when a question set has no questions to play.
	ErrEmptySet = errors.New("question set has no questions")
	// ErrGameInProgress is returned when a channel already hosts an active game.
	ErrGameInProgress = errors.New("game already started in this channel")
	// ErrNoActiveGame is returned when an event targets a channel with no game.
	ErrNoActiveGame = errors.New("no active game in this channel")
	// ErrNoPlayers is returned when the host readies a game nobody joined.
	ErrNoPlayers = errors.New("need at least one player to start")
	// ErrTeamSlot indicates a join targeted a team slot outside the game's range.
	ErrTeamSlot = errors.New("no such team in this game")
	// ErrNotJoined is returned when a player leaves without having joined.
	ErrNotJoined = errors.New("player has not joined a team")
	// ErrUnknownBoard indicates a leaderboard name outside the known set.
	ErrUnknownBoard = errors.New("unknown leaderboard")
)
