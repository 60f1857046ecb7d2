package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trivia-game-service/internal/domain"
)

func TestLedgerJoinSwitchLeave(t *testing.T) {
	ledger := NewLedger(2)

	team, switched, err := ledger.Join("u1", "Alice", 0)
	require.NoError(t, err)
	assert.False(t, switched)
	assert.Equal(t, "Red", team.Name)

	// Switching teams is remove-then-add.
	team, switched, err = ledger.Join("u1", "Alice", 1)
	require.NoError(t, err)
	assert.True(t, switched)
	assert.Equal(t, "Blue", team.Name)

	player, ok := ledger.Player("u1")
	require.True(t, ok)
	assert.Equal(t, "blue", player.TeamID)

	_, _, err = ledger.Join("u2", "Bob", 5)
	assert.ErrorIs(t, err, domain.ErrTeamSlot)

	require.NoError(t, ledger.Leave("u1"))
	assert.Equal(t, 0, ledger.PlayerCount())
	assert.ErrorIs(t, ledger.Leave("u1"), domain.ErrNotJoined)
}

func TestLedgerRecordMutatesPlayerAndTeam(t *testing.T) {
	ledger := NewLedger(1)
	_, _, err := ledger.Join("u1", "Alice", 0)
	require.NoError(t, err)

	ledger.Record(OutcomeCorrect, "u1")
	ledger.Record(OutcomeIncorrect, "u1")
	ledger.Record(OutcomeTimeout, "u1")

	player, _ := ledger.Player("u1")
	assert.Equal(t, 1, player.Correct)
	assert.Equal(t, 1, player.Incorrect)
	assert.Equal(t, 1, player.Timeout)

	teams := ledger.TeamStandings(true)
	require.Len(t, teams, 1)
	assert.Equal(t, 1, teams[0].Correct)
	assert.Equal(t, 1, teams[0].Incorrect)
	assert.Equal(t, 1, teams[0].Timeout)
	assert.Equal(t, -1, teams[0].Score, "losePoints: correct - incorrect - timeout")

	teams = ledger.TeamStandings(false)
	assert.Equal(t, 1, teams[0].Score, "without losePoints only correct counts")
}

func TestLedgerStandingsOrder(t *testing.T) {
	ledger := NewLedger(2)
	for _, join := range []struct {
		id, name string
		slot     int
	}{
		{"u1", "Alice", 0},
		{"u2", "Bob", 0},
		{"u3", "Cara", 1},
	} {
		_, _, err := ledger.Join(join.id, join.name, join.slot)
		require.NoError(t, err)
	}

	ledger.Record(OutcomeCorrect, "u3")
	ledger.Record(OutcomeCorrect, "u2")

	players := ledger.PlayerStandings(true)
	require.Len(t, players, 3)
	// Descending by score; the tie between Bob and Cara keeps join order.
	assert.Equal(t, "Bob", players[0].Name)
	assert.Equal(t, "Cara", players[1].Name)
	assert.Equal(t, "Alice", players[2].Name)

	teams := ledger.TeamStandings(true)
	require.Len(t, teams, 2)
	assert.Equal(t, "Red", teams[0].Name)
	assert.Equal(t, "Blue", teams[1].Name)
	assert.Equal(t, 1, teams[0].Score)
	assert.Equal(t, 1, teams[1].Score)
}

func TestLedgerRecordInvariants(t *testing.T) {
	ledger := NewLedger(1)
	_, _, err := ledger.Join("u1", "Alice", 0)
	require.NoError(t, err)

	assert.Panics(t, func() { ledger.Record(OutcomeCorrect, "ghost") })
	assert.Panics(t, func() { ledger.Record(OutcomeNoBuzz, "u1") })
}

func TestLedgerTallies(t *testing.T) {
	ledger := NewLedger(1)
	_, _, err := ledger.Join("u1", "Alice", 0)
	require.NoError(t, err)
	_, _, err = ledger.Join("u2", "Bob", 0)
	require.NoError(t, err)

	ledger.Record(OutcomeCorrect, "u2")

	tallies := ledger.Tallies()
	require.Len(t, tallies, 2)
	assert.Equal(t, domain.TallyEntry{PlayerID: "u1", Name: "Alice"}, tallies[0])
	assert.Equal(t, domain.TallyEntry{PlayerID: "u2", Name: "Bob", Correct: 1}, tallies[1])
}
