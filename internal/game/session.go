package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"trivia-game-service/internal/domain"
)

// Settings are the tunable parameters for one session. Zero durations fall
// back to the defaults so tests can compress every window.
type Settings struct {
	NumTeams      int
	LosePoints    bool
	Ranked        bool
	JoinWindow    time.Duration
	BuzzWindow    time.Duration
	AnswerPerPart time.Duration
	ResolveDelay  time.Duration
}

const (
	defaultJoinWindow    = 5 * time.Minute
	defaultBuzzWindow    = 20 * time.Second
	defaultAnswerPerPart = 10 * time.Second
	defaultResolveDelay  = 4 * time.Second
)

func (s Settings) withDefaults() Settings {
	if s.JoinWindow <= 0 {
		s.JoinWindow = defaultJoinWindow
	}
	if s.BuzzWindow <= 0 {
		s.BuzzWindow = defaultBuzzWindow
	}
	if s.AnswerPerPart <= 0 {
		s.AnswerPerPart = defaultAnswerPerPart
	}
	if s.ResolveDelay <= 0 {
		s.ResolveDelay = defaultResolveDelay
	}
	return s
}

// Session drives one trivia game in a channel: the pre-game join phase, the
// question rounds, and the final standings. All state transitions happen on
// the single goroutine running Run, so no field needs a lock; inbound events
// are serialized through one channel.
type Session struct {
	channel   string
	setName   string
	hostID    string
	settings  Settings
	questions []domain.Question
	ledger    *Ledger
	judge     Judge
	notifier  Notifier
	log       *zap.Logger

	events chan Event
	done   chan struct{}
	once   sync.Once

	ending  bool
	started bool
	tallies []domain.TallyEntry
}

// NewSession builds a session over an already-resolved (and, if requested,
// already-shuffled) question list.
func NewSession(channel, setName, hostID string, questions []domain.Question, settings Settings, judge Judge, notifier Notifier, log *zap.Logger) *Session {
	return &Session{
		channel:   channel,
		setName:   setName,
		hostID:    hostID,
		settings:  settings.withDefaults(),
		questions: questions,
		ledger:    NewLedger(settings.NumTeams),
		judge:     judge,
		notifier:  notifier,
		log:       log.With(zap.String("channel", channel), zap.String("set", setName)),
		events:    make(chan Event, 64),
		done:      make(chan struct{}),
	}
}

// Post delivers an event to the session. It fails once the session is over so
// callers never block on a dead game.
func (s *Session) Post(ev Event) error {
	select {
	case <-s.done:
		return domain.ErrNoActiveGame
	default:
	}
	select {
	case s.events <- ev:
		return nil
	case <-s.done:
		return domain.ErrNoActiveGame
	}
}

// Done is closed after teardown has run.
func (s *Session) Done() <-chan struct{} { return s.done }

// Ranked reports whether the final tallies should be merged into the
// persistent leaderboards.
func (s *Session) Ranked() bool { return s.settings.Ranked }

// Channel returns the registry key this session occupies.
func (s *Session) Channel() string { return s.channel }

// Tallies returns the final per-player counters. Valid only after Done.
func (s *Session) Tallies() []domain.TallyEntry { return s.tallies }

// Run executes the full session. Teardown runs exactly once no matter which
// path exits: join timeout, explicit end, question exhaustion or cancellation.
func (s *Session) Run(ctx context.Context) {
	defer s.teardown()

	if !s.joinPhase(ctx) {
		return
	}
	s.started = true
	s.announce(Announcement{
		Type:    AnnounceStarted,
		Message: fmt.Sprintf("Game starting with set %s! Buzz in to claim a question.", s.setName),
		Teams:   s.ledger.TeamStandings(s.settings.LosePoints),
	})

	s.runRounds(ctx)

	s.announce(Announcement{
		Type:    AnnounceGameOver,
		Message: "Game Ended! Final Standings:",
		Teams:   s.ledger.TeamStandings(s.settings.LosePoints),
		Players: s.ledger.PlayerStandings(s.settings.LosePoints),
	})
}

// joinPhase collects player/team assignments until the host signals ready.
// Returns false when the game never starts: join window expiry, explicit end,
// or cancellation.
func (s *Session) joinPhase(ctx context.Context) bool {
	timer := time.NewTimer(s.settings.JoinWindow)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
			s.announce(Announcement{Type: AnnounceAborted, Message: "Game timed out"})
			return false
		case ev := <-s.events:
			switch ev.Kind {
			case EventJoin:
				team, switched, err := s.ledger.Join(ev.PlayerID, ev.PlayerName, ev.TeamSlot)
				if err != nil {
					s.announce(Announcement{Type: AnnounceNotice, Player: ev.PlayerName, Message: err.Error()})
					continue
				}
				verb := "joined"
				if switched {
					verb = "changed to"
				}
				s.announce(Announcement{
					Type:    AnnounceJoined,
					Player:  ev.PlayerName,
					Team:    team.Name,
					Message: fmt.Sprintf("%s has %s %s team!", ev.PlayerName, verb, team.Name),
				})
			case EventLeave:
				if err := s.ledger.Leave(ev.PlayerID); err != nil {
					s.announce(Announcement{Type: AnnounceNotice, Player: ev.PlayerName, Message: err.Error()})
					continue
				}
				s.announce(Announcement{
					Type:    AnnounceLeft,
					Player:  ev.PlayerName,
					Message: fmt.Sprintf("%s has left the game!", ev.PlayerName),
				})
			case EventReady:
				if ev.PlayerID != s.hostID {
					continue
				}
				if s.ledger.PlayerCount() == 0 {
					s.announce(Announcement{Type: AnnounceNotice, Message: domain.ErrNoPlayers.Error()})
					continue
				}
				return true
			case EventControl:
				if ev.Command == CommandEnd {
					if ev.PlayerID == s.hostID {
						s.announce(Announcement{Type: AnnounceAborted, Message: "Game ended"})
						return false
					}
					continue
				}
				s.handleControl(ev)
			}
		}
	}
}

// handleControl services the out-of-band commands that are legal in every
// wait state. Standings requests are pure reads; end is cooperative and only
// takes effect at the top of the question loop.
func (s *Session) handleControl(ev Event) {
	switch ev.Command {
	case CommandEnd:
		if s.ending {
			return
		}
		s.ending = true
		s.announce(Announcement{Type: AnnounceEnding, Message: "Game ending after next question!"})
	case CommandTeamStandings:
		s.announce(Announcement{Type: AnnounceTeamStandings, Teams: s.ledger.TeamStandings(s.settings.LosePoints)})
	case CommandPlayerStandings:
		s.announce(Announcement{Type: AnnouncePlayerStandings, Players: s.ledger.PlayerStandings(s.settings.LosePoints)})
	}
}

func (s *Session) announce(a Announcement) {
	if err := s.notifier.Announce(a); err != nil {
		s.log.Warn("announcement failed", zap.String("type", string(a.Type)), zap.Error(err))
	}
}

func (s *Session) teardown() {
	s.once.Do(func() {
		s.tallies = s.ledger.Tallies()
		close(s.done)
		s.log.Info("session closed",
			zap.Bool("started", s.started),
			zap.Int("players", s.ledger.PlayerCount()),
			zap.Int("questionsLeft", len(s.questions)))
	})
}
