package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/explain"
	"trivia-quiz-service/internal/infra/memory"
	"trivia-quiz-service/internal/logger"
	transport "trivia-quiz-service/internal/transport/http"
	"trivia-quiz-service/internal/trivia"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
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
	log, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	leaderboard, closeStore := newLeaderboardService(ctx, cfg, log)
	defer closeStore()

	questions := trivia.NewSource(
		trivia.NewClient(cfg.Trivia.BaseURL, config.TTLDuration(cfg.Trivia.Timeout, trivia.DefaultTimeout)),
		log,
	)
	if cfg.Explain.APIKey == "" {
		log.Warn("no explanation api key configured; review will show fallback text")
	}
	explainer := explain.NewClient(explain.Options{
		BaseURL: cfg.Explain.BaseURL,
		APIKey:  cfg.Explain.APIKey,
		Model:   cfg.Explain.Model,
		Timeout: config.TTLDuration(cfg.Explain.Timeout, explain.DefaultTimeout),
	}, log)

	service := app.NewQuizService(questions, explainer, leaderboard, log)
	sessions := memory.NewSessionStore(config.TTLDuration(cfg.Session.TTL, 30*time.Minute))
	wsHandler := transport.NewWSHandler(service, sessions, cfg.Leaderboard.TopN, log)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewMux(wsHandler, leaderboard, cfg.Leaderboard.TopN, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiz service", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
