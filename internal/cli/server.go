package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"trivia-game-service/internal/app"
	"trivia-game-service/internal/config"
	"trivia-game-service/internal/domain"
	"trivia-game-service/internal/game"
	"trivia-game-service/internal/infra/memory"
	pgstore "trivia-game-service/internal/infra/postgres"
	redisstore "trivia-game-service/internal/infra/redis"
	transport "trivia-game-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.Duration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.SetLoader = memory.NewStaticSetLoader(sampleSets())
	if pool != nil {
		loader = pgstore.NewSetLoader(pool)
	}

	setTTL := config.Duration(cfg.Sets.TTL, 10*time.Minute)
	var sets app.SetRepository
	if redisClient != nil {
		sets = redisstore.NewSetRepository(redisClient, loader, setTTL)
	} else {
		sets = memory.NewSetRepository(loader, setTTL)
	}

	var registry app.SessionRegistry = memory.NewSessionRegistry()
	if redisClient != nil {
		registry = redisstore.NewSessionRegistry(redisClient, redisTTL)
	}

	var boards app.LeaderboardStore = memory.NewLeaderboardStore()
	switch {
	case pool != nil:
		boards = pgstore.NewLeaderboardStore(pool)
	case redisClient != nil:
		boards = redisstore.NewLeaderboardStore(redisClient)
	}

	settings := game.Settings{
		JoinWindow:    config.Duration(cfg.Game.JoinWindow, 5*time.Minute),
		BuzzWindow:    config.Duration(cfg.Game.BuzzWindow, 20*time.Second),
		AnswerPerPart: config.Duration(cfg.Game.AnswerPerPart, 10*time.Second),
		ResolveDelay:  config.Duration(cfg.Game.ResolveDelay, 4*time.Second),
	}
	judge := game.Judge{K: cfg.Game.SimilarityK}

	service := app.NewGameService(sets, registry, boards, settings, judge, log)
	wsHandler := transport.NewWSHandler(service, log)
	lbHandler := transport.NewLeaderboardHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.HandleFunc("/leaderboards", lbHandler.ServeTop)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting trivia service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	service.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleSets provides a minimal question catalog; swap the loader for the
// Postgres-backed one in production.
func sampleSets() map[string]domain.QuestionSet {
	return map[string]domain.QuestionSet{
		"general-knowledge": {
			Name:        "general-knowledge",
			Description: "A little bit of everything.",
			Questions: []domain.Question{
				{
					Text:    "What is the capital of France?",
					Answers: []string{"paris"},
				},
				{
					Text:    "Name the two countries sharing the longest land border.",
					Answers: []string{"canada", "united states"},
					Parts:   2,
				},
				{
					Text:    "What does ATM stand for?",
					Answers: []string{"automated teller machine"},
				},
			},
		},
	}
}
