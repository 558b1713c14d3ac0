package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/domain"
)

func TestPrintLeaderboard(t *testing.T) {
	var buf bytes.Buffer
	err := printLeaderboard(&buf, domain.Leaderboard{Entries: []domain.LeaderboardEntry{
		{Username: "ann", Score: 9, TotalQuestions: 10, Percentage: 90, Difficulty: "Hard", Category: "Books",
			SubmittedAt: time.Date(2024, 11, 22, 9, 30, 0, 0, time.UTC)},
	}})
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"USERNAME", "ann", "9/10", "90%", "2024-11-22 09:30"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	buf.Reset()
	_ = printLeaderboard(&buf, domain.Leaderboard{Offline: true})
	if !strings.Contains(buf.String(), "offline") {
		t.Fatalf("expected offline notice, got %q", buf.String())
	}
}

func TestLeaderboardServiceFallsBackOffline(t *testing.T) {
	cfg := config.Default()
	cfg.Leaderboard.Backend = config.BackendRedis
	cfg.Redis.Addr = "127.0.0.1:1"

	svc, closer := newLeaderboardService(context.Background(), cfg, zap.NewNop())
	defer closer()
	if !svc.Offline() {
		t.Fatalf("expected offline leaderboard when redis is unreachable")
	}
}

func TestLeaderboardCommandWithSQLite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "leaderboard:\n  backend: sqlite\nsqlite:\n  path: " + filepath.Join(dir, "scores.db") + "\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"leaderboard", "--config", path, "--limit", "3"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "No scores yet.") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestLeaderboardCommandOfflineWithoutCredentials(t *testing.T) {
	for _, backend := range []string{config.BackendRedis, config.BackendPostgres, config.BackendFirestore} {
		t.Run(backend, func(t *testing.T) {
			t.Setenv("LEADERBOARD_BACKEND", backend)
			t.Setenv("REDIS_ADDR", "")
			t.Setenv("POSTGRES_URL", "")
			t.Setenv("FIRESTORE_PROJECT_ID", "")

			cmd := newRootCmd()
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetArgs([]string{"leaderboard", "--config", filepath.Join(t.TempDir(), "absent.yaml")})
			if err := cmd.Execute(); err != nil {
				t.Fatalf("execute: %v", err)
			}
			if !strings.Contains(out.String(), "Leaderboard is offline.") {
				t.Fatalf("expected offline notice, got %q", out.String())
			}
		})
	}
}

func TestOpenLeaderboardStoreRequiresConnectionSettings(t *testing.T) {
	cfg := config.Default()
	cfg.SQLite.Path = ""
	for _, backend := range []string{config.BackendRedis, config.BackendPostgres, config.BackendSQLite, config.BackendFirestore} {
		cfg.Leaderboard.Backend = backend
		store, closer, err := openLeaderboardStore(context.Background(), cfg, zap.NewNop())
		closer()
		if err == nil || store != nil {
			t.Fatalf("%s: expected missing-settings error, got store=%v err=%v", backend, store, err)
		}
	}
}
