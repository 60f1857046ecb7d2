package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trivia-game-service/internal/domain"
)

func testSettings() Settings {
	return Settings{
		NumTeams:      1,
		LosePoints:    true,
		JoinWindow:    2 * time.Second,
		BuzzWindow:    2 * time.Second,
		AnswerPerPart: 250 * time.Millisecond,
		ResolveDelay:  10 * time.Millisecond,
	}
}

func newTestSession(questions []domain.Question, settings Settings) (*Session, chan Announcement) {
	announcements := make(chan Announcement, 128)
	notifier := NotifierFunc(func(a Announcement) error {
		announcements <- a
		return nil
	})
	session := NewSession("chan-1", "test-set", "host", questions, settings, Judge{}, notifier, zap.NewNop())
	return session, announcements
}

// awaitType reads announcements until one of the wanted type arrives.
func awaitType(t *testing.T, ch <-chan Announcement, want AnnouncementType) Announcement {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case a := <-ch:
			if a.Type == want {
				return a
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q announcement", want)
		}
	}
}

func post(t *testing.T, s *Session, ev Event) {
	t.Helper()
	require.NoError(t, s.Post(ev))
}

func join(t *testing.T, s *Session, ch <-chan Announcement, id, name string, slot int) {
	t.Helper()
	post(t, s, Event{Kind: EventJoin, PlayerID: id, PlayerName: name, TeamSlot: slot})
	awaitType(t, ch, AnnounceJoined)
}

func ready(t *testing.T, s *Session, ch <-chan Announcement) {
	t.Helper()
	post(t, s, Event{Kind: EventReady, PlayerID: "host"})
	awaitType(t, ch, AnnounceStarted)
}

func TestSessionNoBuzzLeavesCountersUntouched(t *testing.T) {
	settings := testSettings()
	settings.BuzzWindow = 100 * time.Millisecond
	session, ch := newTestSession([]domain.Question{
		{Text: "Capital of France?", Answers: []string{"paris"}},
	}, settings)
	go session.Run(context.Background())

	join(t, session, ch, "u1", "Alice", 0)
	ready(t, session, ch)
	awaitType(t, ch, AnnounceQuestion)

	// A buzz from someone who never joined must not claim the question.
	post(t, session, Event{Kind: EventBuzz, PlayerID: "ghost"})

	result := awaitType(t, ch, AnnounceResult)
	assert.Equal(t, OutcomeNoBuzz, result.Outcome)
	assert.Empty(t, result.Player)
	assert.Equal(t, []string{"paris"}, result.Answers, "answer revealed on nobuzz")

	over := awaitType(t, ch, AnnounceGameOver)
	require.Len(t, over.Players, 1)
	assert.Equal(t, domain.Standing{ID: "u1", Name: "Alice"}, over.Players[0])
	assert.Zero(t, over.Teams[0].Correct+over.Teams[0].Incorrect+over.Teams[0].Timeout)
}

func TestSessionFirstBuzzWinsAndOthersAreIgnored(t *testing.T) {
	session, ch := newTestSession([]domain.Question{
		{Text: "Capital of France?", Answers: []string{"paris"}},
	}, testSettings())
	go session.Run(context.Background())

	join(t, session, ch, "u1", "Alice", 0)
	join(t, session, ch, "u2", "Bob", 0)
	ready(t, session, ch)
	awaitType(t, ch, AnnounceQuestion)

	// Two near-simultaneous buzzes: only the first is honored.
	post(t, session, Event{Kind: EventBuzz, PlayerID: "u2"})
	post(t, session, Event{Kind: EventBuzz, PlayerID: "u1"})

	buzz := awaitType(t, ch, AnnounceBuzz)
	assert.Equal(t, "Bob", buzz.Player)

	// Submissions from the non-buzzer are ignored, so the answer window
	// elapses and times out against Bob.
	post(t, session, Event{Kind: EventAnswer, PlayerID: "u1", Text: "paris"})

	result := awaitType(t, ch, AnnounceResult)
	assert.Equal(t, OutcomeTimeout, result.Outcome)
	assert.Equal(t, "Bob", result.Player)

	over := awaitType(t, ch, AnnounceGameOver)
	require.Len(t, over.Players, 2)
	for _, standing := range over.Players {
		switch standing.ID {
		case "u1":
			assert.Zero(t, standing.Timeout, "Alice must be untouched")
		case "u2":
			assert.Equal(t, 1, standing.Timeout)
		}
	}
}

func TestSessionFullGameScenario(t *testing.T) {
	session, ch := newTestSession([]domain.Question{
		{Text: "Capital of France?", Answers: []string{"paris"}},
		{Text: "Largest planet?", Answers: []string{"jupiter"}},
		{Text: "Capital of Italy?", Answers: []string{"rome"}},
	}, testSettings())
	go session.Run(context.Background())

	join(t, session, ch, "u1", "Alice", 0)
	ready(t, session, ch)

	// Q1: buzz and answer correctly.
	awaitType(t, ch, AnnounceQuestion)
	post(t, session, Event{Kind: EventBuzz, PlayerID: "u1"})
	awaitType(t, ch, AnnounceBuzz)
	post(t, session, Event{Kind: EventAnswer, PlayerID: "u1", Text: "Paris"})
	result := awaitType(t, ch, AnnounceResult)
	assert.Equal(t, OutcomeCorrect, result.Outcome)
	assert.Empty(t, result.Answers, "no reveal needed on a correct answer")

	// Q2: buzz, then let the answer window lapse.
	awaitType(t, ch, AnnounceQuestion)
	post(t, session, Event{Kind: EventBuzz, PlayerID: "u1"})
	awaitType(t, ch, AnnounceBuzz)
	result = awaitType(t, ch, AnnounceResult)
	assert.Equal(t, OutcomeTimeout, result.Outcome)

	// Q3: buzz and answer wrong.
	awaitType(t, ch, AnnounceQuestion)
	post(t, session, Event{Kind: EventBuzz, PlayerID: "u1"})
	awaitType(t, ch, AnnounceBuzz)
	post(t, session, Event{Kind: EventAnswer, PlayerID: "u1", Text: "milan"})
	result = awaitType(t, ch, AnnounceResult)
	assert.Equal(t, OutcomeIncorrect, result.Outcome)
	assert.Equal(t, []string{"rome"}, result.Answers)

	over := awaitType(t, ch, AnnounceGameOver)
	require.Len(t, over.Players, 1)
	standing := over.Players[0]
	assert.Equal(t, 1, standing.Correct)
	assert.Equal(t, 1, standing.Incorrect)
	assert.Equal(t, 1, standing.Timeout)
	assert.Equal(t, -1, standing.Score)
	require.Len(t, over.Teams, 1)
	assert.Equal(t, -1, over.Teams[0].Score)

	<-session.Done()
	require.Len(t, session.Tallies(), 1)
	assert.Equal(t, domain.TallyEntry{
		PlayerID: "u1", Name: "Alice", Correct: 1, Incorrect: 1, Timeout: 1,
	}, session.Tallies()[0])
}

func TestSessionMultiPartAcceptsReverseOrder(t *testing.T) {
	session, ch := newTestSession([]domain.Question{
		{Text: "Name the city and its country.", Answers: []string{"paris", "france"}, Parts: 2},
	}, testSettings())
	go session.Run(context.Background())

	join(t, session, ch, "u1", "Alice", 0)
	ready(t, session, ch)

	question := awaitType(t, ch, AnnounceQuestion)
	assert.Equal(t, 2, question.Parts)

	post(t, session, Event{Kind: EventBuzz, PlayerID: "u1"})
	awaitType(t, ch, AnnounceBuzz)
	post(t, session, Event{Kind: EventAnswer, PlayerID: "u1", Text: "France"})
	post(t, session, Event{Kind: EventAnswer, PlayerID: "u1", Text: "Paris"})

	result := awaitType(t, ch, AnnounceResult)
	assert.Equal(t, OutcomeCorrect, result.Outcome)
}

func TestSessionControlCommandsDuringQuestion(t *testing.T) {
	settings := testSettings()
	settings.BuzzWindow = 300 * time.Millisecond
	session, ch := newTestSession([]domain.Question{
		{Text: "Q1", Answers: []string{"a1"}},
		{Text: "Q2", Answers: []string{"a2"}},
	}, settings)
	go session.Run(context.Background())

	join(t, session, ch, "u1", "Alice", 0)
	ready(t, session, ch)
	awaitType(t, ch, AnnounceQuestion)

	// Standings peeks are pure reads serviced while the question is open.
	post(t, session, Event{Kind: EventControl, PlayerID: "u1", Command: CommandTeamStandings})
	standings := awaitType(t, ch, AnnounceTeamStandings)
	require.Len(t, standings.Teams, 1)

	post(t, session, Event{Kind: EventControl, PlayerID: "u1", Command: CommandPlayerStandings})
	players := awaitType(t, ch, AnnouncePlayerStandings)
	require.Len(t, players.Players, 1)

	// End is cooperative: the in-flight question resolves, the next never runs.
	post(t, session, Event{Kind: EventControl, PlayerID: "u1", Command: CommandEnd})
	awaitType(t, ch, AnnounceEnding)
	awaitType(t, ch, AnnounceResult)

	awaitType(t, ch, AnnounceGameOver)
	<-session.Done()

	// Nothing after game over may present the second question.
	for {
		select {
		case a := <-ch:
			assert.NotEqual(t, AnnounceQuestion, a.Type, "second question must not start after end command")
			continue
		default:
		}
		break
	}
}

func TestSessionReadyNeedsPlayers(t *testing.T) {
	session, ch := newTestSession([]domain.Question{
		{Text: "Q1", Answers: []string{"a1"}},
	}, testSettings())
	go session.Run(context.Background())

	post(t, session, Event{Kind: EventReady, PlayerID: "host"})
	notice := awaitType(t, ch, AnnounceNotice)
	assert.Equal(t, domain.ErrNoPlayers.Error(), notice.Message)

	// Ready from someone other than the host is ignored too.
	join(t, session, ch, "u1", "Alice", 0)
	post(t, session, Event{Kind: EventReady, PlayerID: "u1"})
	post(t, session, Event{Kind: EventReady, PlayerID: "host"})
	awaitType(t, ch, AnnounceStarted)
	awaitType(t, ch, AnnounceQuestion)
}

func TestSessionJoinWindowExpiry(t *testing.T) {
	settings := testSettings()
	settings.JoinWindow = 80 * time.Millisecond
	session, ch := newTestSession([]domain.Question{
		{Text: "Q1", Answers: []string{"a1"}},
	}, settings)
	go session.Run(context.Background())

	aborted := awaitType(t, ch, AnnounceAborted)
	assert.Equal(t, "Game timed out", aborted.Message)

	<-session.Done()
	assert.ErrorIs(t, session.Post(Event{Kind: EventBuzz, PlayerID: "u1"}), domain.ErrNoActiveGame)
}

func TestSessionHostEndsDuringJoinPhase(t *testing.T) {
	session, ch := newTestSession([]domain.Question{
		{Text: "Q1", Answers: []string{"a1"}},
	}, testSettings())
	go session.Run(context.Background())

	join(t, session, ch, "u1", "Alice", 0)
	post(t, session, Event{Kind: EventControl, PlayerID: "host", Command: CommandEnd})

	aborted := awaitType(t, ch, AnnounceAborted)
	assert.Equal(t, "Game ended", aborted.Message)
	<-session.Done()
}

func TestSessionCancellationTearsDownOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	session, ch := newTestSession([]domain.Question{
		{Text: "Q1", Answers: []string{"a1"}},
	}, testSettings())
	done := make(chan struct{})
	go func() {
		session.Run(ctx)
		close(done)
	}()

	join(t, session, ch, "u1", "Alice", 0)
	ready(t, session, ch)
	awaitType(t, ch, AnnounceQuestion)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop after cancellation")
	}
	<-session.Done()
}
