package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"trivia-game-service/internal/domain"
	"trivia-game-service/internal/game"
)

// SetRepository loads question-set content (from cache/backing store).
type SetRepository interface {
	GetSet(ctx context.Context, name string) (domain.QuestionSet, error)
	ListSets(ctx context.Context) ([]string, error)
}

// SessionRegistry enforces one active game per channel. TryAcquire must be
// atomic: it returns false without mutating anything when the key is held.
type SessionRegistry interface {
	TryAcquire(key string) bool
	Release(key string)
}

// LeaderboardStore persists cross-session tallies for ranked games. Merge is
// additive across the all-time/daily/weekly/monthly boards.
type LeaderboardStore interface {
	Merge(ctx context.Context, entries []domain.TallyEntry) error
	Top(ctx context.Context, board domain.Board, limit int) ([]domain.TallyEntry, error)
}

// StartParams are the per-game options a host chooses.
type StartParams struct {
	SetName       string // empty picks a random set
	NumTeams      int
	Ranked        bool
	LosePoints    bool
	Shuffle       bool
	AnswerSeconds int // per answer part; 0 keeps the configured default
}

// GameService owns the active sessions and wires them to storage and the
// persistent leaderboards.
type GameService struct {
	sets     SetRepository
	registry SessionRegistry
	boards   LeaderboardStore
	defaults game.Settings
	judge    game.Judge
	log      *zap.Logger

	mu    sync.Mutex
	rng   *rand.Rand
	games map[string]*activeGame
}

type activeGame struct {
	session     *game.Session
	broadcaster *Broadcaster
	cancel      context.CancelFunc
}

func NewGameService(sets SetRepository, registry SessionRegistry, boards LeaderboardStore, defaults game.Settings, judge game.Judge, log *zap.Logger) *GameService {
	return &GameService{
		sets:     sets,
		registry: registry,
		boards:   boards,
		defaults: defaults,
		judge:    judge,
		log:      log,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		games:    make(map[string]*activeGame),
	}
}

// StartGame acquires the channel, resolves the question set and spawns the
// session goroutine. Every setup fault releases the channel before returning
// so a failed start never leaves it marked occupied.
func (s *GameService) StartGame(ctx context.Context, channel, hostID string, params StartParams) error {
	if !s.registry.TryAcquire(channel) {
		return domain.ErrGameInProgress
	}

	set, err := s.resolveSet(ctx, params.SetName)
	if err != nil {
		s.registry.Release(channel)
		return err
	}
	if len(set.Questions) == 0 {
		s.registry.Release(channel)
		return domain.ErrEmptySet
	}

	questions := set.Questions
	settings := s.defaults
	settings.NumTeams = params.NumTeams
	settings.LosePoints = params.LosePoints
	settings.Ranked = params.Ranked
	if params.AnswerSeconds > 0 {
		settings.AnswerPerPart = time.Duration(params.AnswerSeconds) * time.Second
	}

	s.mu.Lock()
	if params.Shuffle {
		questions = game.ShuffleQuestions(questions, s.rng)
	}
	broadcaster := NewBroadcaster()
	session := game.NewSession(channel, set.Name, hostID, questions, settings, s.judge, broadcaster, s.log)
	runCtx, cancel := context.WithCancel(context.Background())
	s.games[channel] = &activeGame{session: session, broadcaster: broadcaster, cancel: cancel}
	s.mu.Unlock()

	go s.runSession(runCtx, channel, session, broadcaster)
	return nil
}

func (s *GameService) runSession(ctx context.Context, channel string, session *game.Session, broadcaster *Broadcaster) {
	session.Run(ctx)

	if session.Ranked() {
		mergeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s.boards.Merge(mergeCtx, session.Tallies()); err != nil {
			s.log.Error("leaderboard merge failed", zap.String("channel", channel), zap.Error(err))
		}
		cancel()
	}

	s.mu.Lock()
	delete(s.games, channel)
	s.mu.Unlock()
	broadcaster.Close()
	s.registry.Release(channel)
}

// Dispatch routes a player event to the channel's session.
func (s *GameService) Dispatch(channel string, ev game.Event) error {
	g, ok := s.game(channel)
	if !ok {
		return domain.ErrNoActiveGame
	}
	return g.session.Post(ev)
}

// Subscribe attaches a listener to the channel's announcements.
func (s *GameService) Subscribe(channel string) (<-chan game.Announcement, func(), error) {
	g, ok := s.game(channel)
	if !ok {
		return nil, nil, domain.ErrNoActiveGame
	}
	ch, cancel := g.broadcaster.Subscribe()
	return ch, cancel, nil
}

// Active reports whether a game currently occupies the channel.
func (s *GameService) Active(channel string) bool {
	_, ok := s.game(channel)
	return ok
}

// Leaderboard reads the top entries of one persistent board.
func (s *GameService) Leaderboard(ctx context.Context, board domain.Board, limit int) ([]domain.TallyEntry, error) {
	if !domain.ValidBoard(board) {
		return nil, domain.ErrUnknownBoard
	}
	return s.boards.Top(ctx, board, limit)
}

// Shutdown cancels every running session. Teardown inside each session
// releases its channel.
func (s *GameService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.games {
		g.cancel()
	}
}

func (s *GameService) game(channel string) (*activeGame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[channel]
	return g, ok
}

func (s *GameService) resolveSet(ctx context.Context, name string) (domain.QuestionSet, error) {
	if name != "" {
		return s.sets.GetSet(ctx, name)
	}
	names, err := s.sets.ListSets(ctx)
	if err != nil {
		return domain.QuestionSet{}, err
	}
	if len(names) == 0 {
		return domain.QuestionSet{}, domain.ErrNoSets
	}
	s.mu.Lock()
	pick := names[s.rng.Intn(len(names))]
	s.mu.Unlock()
	return s.sets.GetSet(ctx, pick)
}
