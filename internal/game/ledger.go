package game

import (
	"fmt"
	"sort"
	"strings"

	"trivia-game-service/internal/domain"
)

// Outcome classifies how a question resolved. Only correct, incorrect and
// timeout touch the counters; nobuzz attributes nothing to anyone.
type Outcome string

const (
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
	OutcomeTimeout   Outcome = "timeout"
	OutcomeNoBuzz    Outcome = "nobuzz"
)

// teamNames is the palette for team slots, in slot order.
var teamNames = []string{"Red", "Blue", "Green", "Yellow"}

// MaxTeams is the largest number of team slots a game may use.
var MaxTeams = len(teamNames)

// Ledger tracks per-team and per-player correct/incorrect/timeout counters
// for one session. It is owned by the session goroutine and needs no locking;
// counters only grow until the session ends.
type Ledger struct {
	teams   []*domain.Team
	players map[string]*domain.Player
	order   []string
}

// NewLedger creates a ledger with numTeams team slots (clamped to 1..MaxTeams).
func NewLedger(numTeams int) *Ledger {
	if numTeams < 1 {
		numTeams = 1
	}
	if numTeams > MaxTeams {
		numTeams = MaxTeams
	}
	teams := make([]*domain.Team, numTeams)
	for i := range teams {
		teams[i] = &domain.Team{
			ID:      strings.ToLower(teamNames[i]),
			Name:    teamNames[i],
			Members: make(map[string]struct{}),
		}
	}
	return &Ledger{
		teams:   teams,
		players: make(map[string]*domain.Player),
	}
}

// Join assigns a player to the team slot, moving them if they already belong
// to another team. Returns the joined team and whether this was a switch.
func (l *Ledger) Join(playerID, name string, slot int) (*domain.Team, bool, error) {
	if slot < 0 || slot >= len(l.teams) {
		return nil, false, domain.ErrTeamSlot
	}
	team := l.teams[slot]

	if player, ok := l.players[playerID]; ok {
		if player.TeamID == team.ID {
			return team, false, nil
		}
		delete(l.teamByID(player.TeamID).Members, playerID)
		player.TeamID = team.ID
		player.Name = name
		team.Members[playerID] = struct{}{}
		return team, true, nil
	}

	l.players[playerID] = &domain.Player{ID: playerID, Name: name, TeamID: team.ID}
	l.order = append(l.order, playerID)
	team.Members[playerID] = struct{}{}
	return team, false, nil
}

// Leave removes the player record and their team membership.
func (l *Ledger) Leave(playerID string) error {
	player, ok := l.players[playerID]
	if !ok {
		return domain.ErrNotJoined
	}
	delete(l.teamByID(player.TeamID).Members, playerID)
	delete(l.players, playerID)
	for i, id := range l.order {
		if id == playerID {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return nil
}

// Player looks up a registered, team-assigned player.
func (l *Ledger) Player(playerID string) (*domain.Player, bool) {
	player, ok := l.players[playerID]
	return player, ok
}

// PlayerCount reports how many players have joined a team.
func (l *Ledger) PlayerCount() int {
	return len(l.players)
}

// Record increments the counter named by the outcome on the acting player and
// their team in one step. A nobuzz outcome or an unknown player is a
// programming error.
func (l *Ledger) Record(outcome Outcome, playerID string) {
	player, ok := l.players[playerID]
	if !ok {
		panic(fmt.Sprintf("game: recording outcome for unknown player %q", playerID))
	}
	team := l.teamByID(player.TeamID)
	switch outcome {
	case OutcomeCorrect:
		player.Correct++
		team.Correct++
	case OutcomeIncorrect:
		player.Incorrect++
		team.Incorrect++
	case OutcomeTimeout:
		player.Timeout++
		team.Timeout++
	default:
		panic(fmt.Sprintf("game: outcome %q does not mutate counters", outcome))
	}
}

// TeamStandings snapshots the teams ordered by derived score, descending.
// Ties keep slot order so output is deterministic.
func (l *Ledger) TeamStandings(losePoints bool) []domain.Standing {
	standings := make([]domain.Standing, 0, len(l.teams))
	for _, team := range l.teams {
		standings = append(standings, domain.Standing{
			ID:        team.ID,
			Name:      team.Name,
			Score:     domain.Score(team.Correct, team.Incorrect, team.Timeout, losePoints),
			Correct:   team.Correct,
			Incorrect: team.Incorrect,
			Timeout:   team.Timeout,
		})
	}
	sortStandings(standings)
	return standings
}

// PlayerStandings snapshots the players ordered by derived score, descending.
// Ties keep join order.
func (l *Ledger) PlayerStandings(losePoints bool) []domain.Standing {
	standings := make([]domain.Standing, 0, len(l.order))
	for _, id := range l.order {
		player := l.players[id]
		standings = append(standings, domain.Standing{
			ID:        player.ID,
			Name:      player.Name,
			Score:     domain.Score(player.Correct, player.Incorrect, player.Timeout, losePoints),
			Correct:   player.Correct,
			Incorrect: player.Incorrect,
			Timeout:   player.Timeout,
		})
	}
	sortStandings(standings)
	return standings
}

// Tallies exports the raw per-player counters for the ranked leaderboard merge.
func (l *Ledger) Tallies() []domain.TallyEntry {
	entries := make([]domain.TallyEntry, 0, len(l.order))
	for _, id := range l.order {
		player := l.players[id]
		entries = append(entries, domain.TallyEntry{
			PlayerID:  player.ID,
			Name:      player.Name,
			Correct:   player.Correct,
			Incorrect: player.Incorrect,
			Timeout:   player.Timeout,
		})
	}
	return entries
}

func (l *Ledger) teamByID(id string) *domain.Team {
	for _, team := range l.teams {
		if team.ID == id {
			return team
		}
	}
	panic(fmt.Sprintf("game: unknown team %q", id))
}

func sortStandings(standings []domain.Standing) {
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score > standings[j].Score
	})
}
